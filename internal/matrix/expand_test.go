package matrix

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"buildall/internal/index"
	"buildall/internal/spec"
)

type testIndex struct {
	*index.Index
}

func newTestIndex() *testIndex {
	return &testIndex{Index: index.New()}
}

// add mirrors how channels name builds: "<prefix>_<number>" or just the number.
func (ti *testIndex) add(name, version, buildPrefix string, depends ...string) {
	build := "0"
	if buildPrefix != "" {
		build = buildPrefix + "_0"
	}
	ti.Add(index.Record{Name: name, Version: version, Build: build, Depends: depends})
}

func expandSet(t *testing.T, req Requirements, idx PackageIndex) []Case {
	t.Helper()
	set, err := Expand(req, idx)
	require.NoError(t, err)
	return set.Sorted()
}

func TestExpand_NoCase(t *testing.T) {
	idx := newTestIndex()
	idx.add("python", "2.7.2", "")
	idx.add("wibble", "3.5.0", "")

	got := expandSet(t, Requirements{Name: "pkgA", Build: []string{"wibble"}}, idx)
	assert.Equal(t, cases([]Pair{}), got)
}

func TestExpand_PythonItself(t *testing.T) {
	got := expandSet(t, Requirements{Name: "python", Version: "abc"}, newTestIndex())
	assert.Equal(t, cases([]Pair{{Name: Python, Version: "abc"}}), got)

	got = expandSet(t, Requirements{Name: "python", Version: "3.5.1"}, newTestIndex())
	assert.Equal(t, cases([]Pair{py35}), got)
}

func TestExpand_Python(t *testing.T) {
	idx := newTestIndex()
	idx.add("python", "2.7.2", "")
	idx.add("python", "3.5.0", "")

	got := expandSet(t, Requirements{Name: "pkgA", Build: []string{"python"}}, idx)
	assert.Equal(t, cases([]Pair{py27}, []Pair{py35}), got)
}

func TestExpand_ConstrainedPython(t *testing.T) {
	idx := newTestIndex()
	idx.add("python", "2.7.2", "")
	idx.add("python", "3.5.0", "")

	got := expandSet(t, Requirements{Name: "pkgA", Build: []string{"python <3"}}, idx)
	assert.Equal(t, cases([]Pair{py27}), got)
}

func TestExpand_NumpySimplestCase(t *testing.T) {
	idx := newTestIndex()
	idx.add("numpy", "1.8.0", "py27", "python <3")
	idx.add("python", "2.7.2", "")

	got := expandSet(t, Requirements{Name: "pkgA", Build: []string{"python", "numpy"}}, idx)
	assert.Equal(t, cases([]Pair{py27, {Name: Numpy, Version: "1.8"}}), got)
}

func TestExpand_NumpyWithoutPython(t *testing.T) {
	idx := newTestIndex()
	idx.add("numpy", "1.8.0", "py27", "python")
	idx.add("python", "2.7.2", "")

	got := expandSet(t, Requirements{Name: "pkgA", Build: []string{"numpy"}}, idx)
	assert.Equal(t, cases([]Pair{py27, {Name: Numpy, Version: "1.8"}}), got)
}

func TestExpand_NumpyRecordWithoutPythonDependency(t *testing.T) {
	idx := newTestIndex()
	idx.add("numpy", "1.8.0", "")
	idx.add("python", "2.7.2", "")

	got := expandSet(t, Requirements{Name: "pkgA", Build: []string{"numpy"}}, idx)
	assert.Equal(t, cases([]Pair{{Name: Numpy, Version: "1.8"}}), got)
}

func TestExpand_NumpyRepeatedPython27(t *testing.T) {
	idx := newTestIndex()
	idx.add("numpy", "1.8.0", "py27", "python <3")
	idx.add("python", "2.7.2", "")
	idx.add("python", "2.7.0", "")

	got := expandSet(t, Requirements{Name: "pkgA", Build: []string{"python", "numpy"}}, idx)
	assert.Equal(t, cases([]Pair{py27, {Name: Numpy, Version: "1.8"}}), got)
}

func TestExpand_NumpyRepeatedPython(t *testing.T) {
	idx := newTestIndex()
	idx.add("numpy", "1.8.0", "py27", "python <3")
	idx.add("numpy", "1.8.0", "py35", "python")
	idx.add("numpy", "1.9.0", "py35", "python >=3")
	idx.add("python", "2.7.2", "")
	idx.add("python", "3.5.0", "")

	np18 := Pair{Name: Numpy, Version: "1.8"}
	got := expandSet(t, Requirements{Name: "pkgA", Build: []string{"python", "numpy"}}, idx)
	assert.Equal(t, cases(
		[]Pair{py27, np18},
		[]Pair{py35, np18},
		[]Pair{py35, np19},
	), got)
}

func TestExpand_RecipePythonConstraintIsAuthoritative(t *testing.T) {
	idx := newTestIndex()
	idx.add("numpy", "1.9.0", "", "python")
	idx.add("python", "2.7.2", "")
	idx.add("python", "3.5.0", "")

	got := expandSet(t, Requirements{Name: "pkgA", Build: []string{"python >=3", "numpy"}}, idx)
	assert.Equal(t, cases([]Pair{py35, np19}), got)
}

func TestExpand_NumpyXX(t *testing.T) {
	idx := newTestIndex()
	pythons := []string{"2.7", "3.5"}
	numpys := []string{"1.9", "1.10"}
	for _, py := range pythons {
		idx.add("python", py, "")
		for _, np := range numpys {
			idx.add("numpy", np+".2", "py"+py[:1]+py[2:], "python "+py)
		}
	}

	all := func(nps []string) []Case {
		var out []Case
		for _, py := range pythons {
			for _, np := range nps {
				out = append(out, MustCase(Pair{Name: Python, Version: py}, Pair{Name: Numpy, Version: np}))
			}
		}
		return SortCases(out)
	}

	tests := []struct {
		deps     []string
		expected []Case
	}{
		{deps: []string{"numpy x.x", "python"}, expected: all(numpys)},
		{deps: []string{"numpy x.x", "numpy >1.6", "python"}, expected: all(numpys)},
		{deps: []string{"numpy x.x", "numpy >=1.10", "python"}, expected: all(numpys[1:])},
	}
	for _, tt := range tests {
		t.Run(fmt.Sprint(tt.deps), func(t *testing.T) {
			got := expandSet(t, Requirements{Name: "pkgA", Build: tt.deps, Run: tt.deps}, idx)
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestExpand_PlainNumpyAtBuildAndRunIsDropped(t *testing.T) {
	idx := newTestIndex()
	idx.add("numpy", "1.9.0", "py27", "python 2.7*")
	idx.add("python", "2.7.2", "")
	idx.add("python", "3.5.0", "")

	req := Requirements{Name: "pkgA", Build: []string{"python", "numpy"}, Run: []string{"python", "numpy"}}
	assert.Equal(t, cases([]Pair{py27}, []Pair{py35}), expandSet(t, req, idx))
}

func TestExpand_PlainNumpyAtRunTimeOverridesBuildPin(t *testing.T) {
	idx := newTestIndex()
	idx.add("numpy", "1.9.0", "py27", "python 2.7*")
	idx.add("python", "2.7.2", "")
	idx.add("python", "3.5.0", "")

	req := Requirements{Name: "pkgA", Build: []string{"python", "numpy x.x"}, Run: []string{"python", "numpy"}}
	assert.Equal(t, cases([]Pair{py27}, []Pair{py35}), expandSet(t, req, idx))
}

func TestExpand_SpacedOperator(t *testing.T) {
	idx := newTestIndex()
	idx.add("python", "2.7.2", "")
	idx.add("python", "3.5.0", "")

	got := expandSet(t, Requirements{Name: "pkgA", Build: []string{"python >= 3"}}, idx)
	assert.Equal(t, cases([]Pair{py35}), got)
}

func TestExpand_RunPinAddsDimension(t *testing.T) {
	idx := newTestIndex()
	idx.add("python", "2.7.2", "")
	idx.add("python", "3.5.0", "")

	req := Requirements{Name: "pkgA", Run: []string{"python x.x"}}
	assert.Equal(t, cases([]Pair{py27}, []Pair{py35}), expandSet(t, req, idx))
}

func TestExpand_OrthogonalDimensions(t *testing.T) {
	idx := newTestIndex()
	idx.add("python", "2.7.2", "")
	idx.add("python", "3.5.0", "")
	idx.add("perl", "5.20.3", "")
	idx.add("perl", "5.22.0", "")
	idx.add("perl", "5.22.1", "")
	idx.add("r", "3.2.2", "")

	pl520 := Pair{Name: Perl, Version: "5.20"}
	pl522 := Pair{Name: Perl, Version: "5.22"}
	r32 := Pair{Name: R, Version: "3.2"}

	got := expandSet(t, Requirements{Name: "pkgA", Build: []string{"python", "perl", "r"}}, idx)
	assert.Equal(t, cases(
		[]Pair{py27, pl520, r32},
		[]Pair{py27, pl522, r32},
		[]Pair{py35, pl520, r32},
		[]Pair{py35, pl522, r32},
	), got)

	got = expandSet(t, Requirements{Name: "pkgA", Build: []string{"perl"}}, idx)
	assert.Equal(t, cases([]Pair{pl520}, []Pair{pl522}), got)
}

func TestExpand_DimensionWithoutCandidatesKeepsCases(t *testing.T) {
	idx := newTestIndex()
	idx.add("python", "2.7.2", "")

	got := expandSet(t, Requirements{Name: "pkgA", Build: []string{"python", "perl"}}, idx)
	assert.Equal(t, cases([]Pair{py27}), got)

	got = expandSet(t, Requirements{Name: "pkgA", Build: []string{"r"}}, idx)
	assert.Equal(t, cases([]Pair{}), got)
}

func TestExpand_UnsupportedDimension(t *testing.T) {
	_, err := Expand(Requirements{Name: "pkgA", Build: []string{"python", "lua"}}, newTestIndex())
	var unsupported *UnsupportedDimensionError
	require.True(t, errors.As(err, &unsupported))
	assert.Equal(t, "lua", unsupported.Dimension)
	assert.Equal(t, "pkgA", unsupported.Package)
}

func TestExpand_MalformedSpec(t *testing.T) {
	_, err := Expand(Requirements{Name: "pkgA", Build: []string{"python 2.7 0 extra"}}, newTestIndex())
	var malformed *spec.MalformedSpecError
	assert.True(t, errors.As(err, &malformed))
}
