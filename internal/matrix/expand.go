package matrix

import (
	"buildall/internal/index"
	"buildall/internal/spec"
)

// Dimension names recognised by Expand.
const (
	Python = "python"
	Numpy  = "numpy"
	Perl   = "perl"
	R      = "r"
	// Lua is reserved: asking for it is an UnsupportedDimensionError.
	Lua = "lua"
)

// orthogonalDimensions multiply the python/numpy cases, in this order.
var orthogonalDimensions = []string{Perl, R}

var reservedDimensions = []string{Lua}

// Requirements is what the expander needs to know about one recipe.
type Requirements struct {
	Name    string
	Version string
	Build   []string
	Run     []string
}

// PackageIndex answers candidate queries. *index.Index satisfies it.
type PackageIndex interface {
	Lookup(ms spec.MatchSpec) []index.Record
}

// IsDimension reports whether name is a dimension Expand can act on.
func IsDimension(name string) bool {
	switch name {
	case Python, Numpy, Perl, R:
		return true
	}
	return false
}

// Expand returns the cases req has to be built for against idx. The result is
// never empty: a recipe that needs no special versioning gets the empty case.
func Expand(req Requirements, idx PackageIndex) (*CaseSet, error) {
	dims, err := dimensions(req)
	if err != nil {
		return nil, err
	}

	cases := NewCaseSet()
	pySpec, hasPython := dims[Python]
	if npSpec, ok := dims[Numpy]; ok {
		for _, np := range idx.Lookup(lookupSpec(npSpec)) {
			npPair := Pair{Name: Numpy, Version: spec.MinorVersion(np.Version)}
			pyDep, ok := np.Dependency(Python)
			if !ok {
				cases.Add(MustCase(npPair))
				continue
			}
			for _, py := range idx.Lookup(lookupSpec(pyDep)) {
				if hasPython && !pySpec.MatchVersion(py.Version) {
					continue
				}
				cases.Add(MustCase(Pair{Name: Python, Version: spec.MinorVersion(py.Version)}, npPair))
			}
		}
	} else if hasPython {
		for _, py := range idx.Lookup(lookupSpec(pySpec)) {
			cases.Add(MustCase(Pair{Name: Python, Version: spec.MinorVersion(py.Version)}))
		}
	}

	for _, dim := range orthogonalDimensions {
		ms, ok := dims[dim]
		if !ok {
			continue
		}
		cases = multiply(cases, dim, candidateMinors(idx, ms))
	}

	if cases.Len() == 0 && req.Name == Python {
		cases.Add(MustCase(Pair{Name: Python, Version: spec.MinorVersion(req.Version)}))
	}
	if cases.Len() == 0 {
		cases.Add(Case{})
	}
	return cases, nil
}

// dimensions collects the specs Expand acts on: dimension names from the build
// requirements, plus dimensions pinned with "x.x" in the run requirements.
func dimensions(req Requirements) (map[string]spec.MatchSpec, error) {
	build, err := spec.ParseSpecifications(req.Build)
	if err != nil {
		return nil, err
	}
	run, err := spec.ParseSpecifications(req.Run)
	if err != nil {
		return nil, err
	}

	for _, name := range reservedDimensions {
		if _, ok := build[name]; ok {
			return nil, &UnsupportedDimensionError{Package: req.Name, Dimension: name}
		}
	}

	dims := make(map[string]spec.MatchSpec)
	for name, ms := range build {
		if IsDimension(name) {
			dims[name] = ms
		}
	}
	for name, ms := range run {
		if !IsDimension(name) || !ms.Pin {
			continue
		}
		if existing, ok := dims[name]; ok {
			existing.Pin = true
			dims[name] = existing
			continue
		}
		dims[name] = ms
	}

	// numpy needed at run time without an "x.x" pin needs no matrix of its
	// own, whatever the build requirement says.
	if _, ok := build[Numpy]; ok {
		if r, ok := run[Numpy]; ok && !r.Pin {
			delete(dims, Numpy)
		}
	}
	return dims, nil
}

func lookupSpec(ms spec.MatchSpec) spec.MatchSpec {
	ms.Pin = false
	return ms
}

func candidateMinors(idx PackageIndex, ms spec.MatchSpec) []string {
	seen := make(map[string]bool)
	var minors []string
	for _, r := range idx.Lookup(lookupSpec(ms)) {
		minor := spec.MinorVersion(r.Version)
		if seen[minor] {
			continue
		}
		seen[minor] = true
		minors = append(minors, minor)
	}
	return minors
}

// multiply takes the Cartesian product of base with the candidate versions of
// dim. The base cases are superseded; with no candidates base is returned
// unchanged.
func multiply(base *CaseSet, dim string, versions []string) *CaseSet {
	if len(versions) == 0 {
		return base
	}
	seeds := base.Cases()
	if len(seeds) == 0 {
		seeds = []Case{{}}
	}
	out := NewCaseSet()
	for _, c := range seeds {
		for _, v := range versions {
			next, err := c.With(Pair{Name: dim, Version: v})
			if err != nil {
				continue
			}
			out.Add(next)
		}
	}
	return out
}
