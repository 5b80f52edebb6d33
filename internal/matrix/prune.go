package matrix

import (
	"sort"

	"buildall/internal/spec"
)

// KeepTopNMajorVersions keeps, for every dimension, the n largest integer
// major versions seen across cases, and drops any case holding a pair outside
// that set. n == 0 keeps everything. Pairs without an integer major version
// are never the reason a case is dropped.
func KeepTopNMajorVersions(cases []Case, n int) []Case {
	if n <= 0 {
		return append([]Case(nil), cases...)
	}

	majors := make(map[string]map[int]bool)
	for _, c := range cases {
		for _, p := range c.pairs {
			major, _, ok, _ := spec.MajorMinor(p.Version)
			if !ok {
				continue
			}
			if majors[p.Name] == nil {
				majors[p.Name] = make(map[int]bool)
			}
			majors[p.Name][major] = true
		}
	}
	kept := make(map[string]map[int]bool, len(majors))
	for name, set := range majors {
		kept[name] = topN(set, n)
	}

	return keepWhere(cases, func(p Pair) bool {
		major, _, ok, _ := spec.MajorMinor(p.Version)
		return !ok || kept[p.Name][major]
	})
}

type majorKey struct {
	name  string
	major int
}

// KeepTopNMinorVersions keeps, for every (dimension, major version), the n
// largest integer minor versions. Majors are independent: python 2 and python
// 3 each keep their own n minors. n == 0 keeps everything.
func KeepTopNMinorVersions(cases []Case, n int) []Case {
	if n <= 0 {
		return append([]Case(nil), cases...)
	}

	minors := make(map[majorKey]map[int]bool)
	for _, c := range cases {
		for _, p := range c.pairs {
			major, minor, ok, hasMinor := spec.MajorMinor(p.Version)
			if !ok || !hasMinor {
				continue
			}
			key := majorKey{name: p.Name, major: major}
			if minors[key] == nil {
				minors[key] = make(map[int]bool)
			}
			minors[key][minor] = true
		}
	}
	kept := make(map[majorKey]map[int]bool, len(minors))
	for key, set := range minors {
		kept[key] = topN(set, n)
	}

	return keepWhere(cases, func(p Pair) bool {
		major, minor, ok, hasMinor := spec.MajorMinor(p.Version)
		if !ok || !hasMinor {
			return true
		}
		return kept[majorKey{name: p.Name, major: major}][minor]
	})
}

// Prune applies KeepTopNMajorVersions and then KeepTopNMinorVersions.
func Prune(cases []Case, majorN, minorN int) []Case {
	return KeepTopNMinorVersions(KeepTopNMajorVersions(cases, majorN), minorN)
}

// FilterCases keeps the cases satisfying every condition. A condition only
// applies to cases that have its dimension; the rest pass. Conditions naming
// the same dimension are ANDed. A case version is matched as its ".0"
// release, so "python 2.7.0" keeps a python 2.7 case.
func FilterCases(cases []Case, conditions []string) ([]Case, error) {
	specs, err := spec.ParseSpecifications(conditions)
	if err != nil {
		return nil, err
	}
	return keepWhere(cases, func(p Pair) bool {
		ms, ok := specs[p.Name]
		return !ok || ms.MatchVersion(p.Version+".0")
	}), nil
}

func keepWhere(cases []Case, keep func(Pair) bool) []Case {
	out := make([]Case, 0, len(cases))
	for _, c := range cases {
		ok := true
		for _, p := range c.pairs {
			if !keep(p) {
				ok = false
				break
			}
		}
		if ok {
			out = append(out, c)
		}
	}
	return out
}

func topN(set map[int]bool, n int) map[int]bool {
	values := make([]int, 0, len(set))
	for v := range set {
		values = append(values, v)
	}
	sort.Sort(sort.Reverse(sort.IntSlice(values)))
	if len(values) > n {
		values = values[:n]
	}
	kept := make(map[int]bool, len(values))
	for _, v := range values {
		kept[v] = true
	}
	return kept
}
