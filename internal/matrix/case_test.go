package matrix

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	py26  = Pair{Name: Python, Version: "2.6"}
	py27  = Pair{Name: Python, Version: "2.7"}
	py34  = Pair{Name: Python, Version: "3.4"}
	py35  = Pair{Name: Python, Version: "3.5"}
	o12   = Pair{Name: "other", Version: "1.2"}
	o13   = Pair{Name: "other", Version: "1.3"}
	np19  = Pair{Name: Numpy, Version: "1.9"}
	np110 = Pair{Name: Numpy, Version: "1.10"}
	np21  = Pair{Name: Numpy, Version: "2.1"}
)

func cases(tuples ...[]Pair) []Case {
	out := make([]Case, len(tuples))
	for i, pairs := range tuples {
		out[i] = MustCase(pairs...)
	}
	return out
}

func TestNewCase_RejectsDuplicateDimension(t *testing.T) {
	_, err := NewCase(py27, np19, py35)
	var dup *DuplicateDimensionError
	require.True(t, errors.As(err, &dup))
	assert.Equal(t, Python, dup.Dimension)

	c := MustCase(py27)
	_, err = c.With(py35)
	assert.Error(t, err)
}

func TestCase_Accessors(t *testing.T) {
	c := MustCase(py27, np110)

	v, ok := c.Version(Numpy)
	assert.True(t, ok)
	assert.Equal(t, "1.10", v)
	_, ok = c.Version(Perl)
	assert.False(t, ok)

	assert.Equal(t, 2, c.Len())
	assert.False(t, c.IsEmpty())
	assert.True(t, Case{}.IsEmpty())
	assert.Equal(t, "(python 2.7, numpy 1.10)", c.String())
	assert.Equal(t, "()", Case{}.String())

	pairs := c.Pairs()
	pairs[0] = py35
	v, _ = c.Version(Python)
	assert.Equal(t, "2.7", v)
}

func TestCase_EqualityIsPairSetEquality(t *testing.T) {
	a := MustCase(py27, np19)
	b := MustCase(np19, py27)
	assert.True(t, a.Equal(b))
	assert.Equal(t, a.Key(), b.Key())
	assert.False(t, a.Equal(MustCase(py27)))
}

func TestCaseSet(t *testing.T) {
	s := NewCaseSet(MustCase(py35), MustCase(py27))
	assert.False(t, s.Add(MustCase(py35)))
	assert.True(t, s.Add(MustCase(py27, np19)))
	assert.True(t, s.Contains(MustCase(np19, py27)))
	assert.Equal(t, 3, s.Len())
	assert.Equal(t, cases([]Pair{py35}, []Pair{py27}, []Pair{py27, np19}), s.Cases())

	var zero CaseSet
	assert.True(t, zero.Add(Case{}))
	assert.Equal(t, 1, zero.Len())
}

func TestSortCases(t *testing.T) {
	input := cases(
		[]Pair{py35, np110},
		[]Pair{py27, np110},
		[]Pair{py35, np19},
		[]Pair{py27},
		[]Pair{},
	)
	expected := cases(
		[]Pair{},
		[]Pair{py27},
		[]Pair{py27, np110},
		[]Pair{py35, np19},
		[]Pair{py35, np110},
	)
	assert.Equal(t, expected, SortCases(input))
	assert.Equal(t, "3.5", input[0].pairs[0].Version, "input must not be reordered")
}
