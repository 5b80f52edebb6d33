package matrix

import (
	"sort"
	"strings"

	"buildall/internal/spec"
)

// Pair pins one dimension to a minor version.
type Pair struct {
	Name    string `json:"name" yaml:"name"`
	Version string `json:"version" yaml:"version"`
}

func (p Pair) String() string {
	return p.Name + " " + p.Version
}

// Case is an immutable tuple of pairs with distinct names. The zero value is
// the empty case.
type Case struct {
	pairs []Pair
}

// NewCase builds a case, rejecting repeated dimension names.
func NewCase(pairs ...Pair) (Case, error) {
	seen := make(map[string]bool, len(pairs))
	for _, p := range pairs {
		if seen[p.Name] {
			return Case{}, &DuplicateDimensionError{Dimension: p.Name}
		}
		seen[p.Name] = true
	}
	return Case{pairs: append([]Pair(nil), pairs...)}, nil
}

// MustCase is like NewCase but panics on error.
func MustCase(pairs ...Pair) Case {
	c, err := NewCase(pairs...)
	if err != nil {
		panic(err)
	}
	return c
}

// Pairs returns a copy of the pairs in case order.
func (c Case) Pairs() []Pair {
	return append([]Pair(nil), c.pairs...)
}

// Len returns the number of pairs.
func (c Case) Len() int {
	return len(c.pairs)
}

// IsEmpty reports whether this is the empty case.
func (c Case) IsEmpty() bool {
	return len(c.pairs) == 0
}

// Version returns the version pinned for a dimension.
func (c Case) Version(name string) (string, bool) {
	for _, p := range c.pairs {
		if p.Name == name {
			return p.Version, true
		}
	}
	return "", false
}

// With returns a new case with p appended.
func (c Case) With(p Pair) (Case, error) {
	return NewCase(append(c.Pairs(), p)...)
}

// Key identifies the case by its pair set: two cases holding the same pairs in
// a different order share a key.
func (c Case) Key() string {
	parts := make([]string, len(c.pairs))
	for i, p := range c.pairs {
		parts[i] = p.Name + "=" + p.Version
	}
	sort.Strings(parts)
	return strings.Join(parts, ";")
}

// Equal reports pair-set equality.
func (c Case) Equal(other Case) bool {
	return c.Key() == other.Key()
}

// String renders the case as "(python 2.7, numpy 1.8)".
func (c Case) String() string {
	parts := make([]string, len(c.pairs))
	for i, p := range c.pairs {
		parts[i] = p.String()
	}
	return "(" + strings.Join(parts, ", ") + ")"
}

// CaseSet is a de-duplicating collection of cases that remembers insertion
// order.
type CaseSet struct {
	byKey map[string]Case
	keys  []string
}

// NewCaseSet returns a set holding the given cases.
func NewCaseSet(cases ...Case) *CaseSet {
	s := &CaseSet{byKey: make(map[string]Case)}
	for _, c := range cases {
		s.Add(c)
	}
	return s
}

// Add inserts c and reports whether it was new.
func (s *CaseSet) Add(c Case) bool {
	if s.byKey == nil {
		s.byKey = make(map[string]Case)
	}
	key := c.Key()
	if _, ok := s.byKey[key]; ok {
		return false
	}
	s.byKey[key] = c
	s.keys = append(s.keys, key)
	return true
}

// Contains reports whether an equal case is in the set.
func (s *CaseSet) Contains(c Case) bool {
	_, ok := s.byKey[c.Key()]
	return ok
}

// Len returns the number of cases.
func (s *CaseSet) Len() int {
	return len(s.keys)
}

// Cases returns the cases in insertion order.
func (s *CaseSet) Cases() []Case {
	out := make([]Case, len(s.keys))
	for i, k := range s.keys {
		out[i] = s.byKey[k]
	}
	return out
}

// Sorted returns the cases in SortCases order.
func (s *CaseSet) Sorted() []Case {
	return SortCases(s.Cases())
}

// SortCases returns a sorted copy of cases. Pairs are compared position by
// position, by name and then by version; a shorter case sorts first when it is
// a prefix of a longer one.
func SortCases(cases []Case) []Case {
	out := append([]Case(nil), cases...)
	sort.SliceStable(out, func(i, j int) bool {
		return compareCases(out[i], out[j]) < 0
	})
	return out
}

func compareCases(a, b Case) int {
	for i := 0; i < len(a.pairs) && i < len(b.pairs); i++ {
		pa, pb := a.pairs[i], b.pairs[i]
		if pa.Name != pb.Name {
			return strings.Compare(pa.Name, pb.Name)
		}
		if c := spec.CompareVersions(pa.Version, pb.Version); c != 0 {
			return c
		}
	}
	switch {
	case len(a.pairs) < len(b.pairs):
		return -1
	case len(a.pairs) > len(b.pairs):
		return 1
	}
	return 0
}
