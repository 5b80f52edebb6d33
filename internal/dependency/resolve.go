package dependency

import "sort"

// Resolve returns the package names of deps in an order where every package
// follows all of its dependencies.
//
// The mapping is scanned repeatedly in sorted order; each scan places every
// package whose dependencies have all been placed, including those placed
// earlier in the same scan. Every dependency must itself be a key of deps,
// otherwise an UnknownDependencyError lists all of the offenders before any
// ordering happens. A scan that places nothing means the remainder is cyclic.
func Resolve(deps map[string][]string) ([]string, error) {
	if missing := unknownDependencies(deps); len(missing) > 0 {
		return nil, &UnknownDependencyError{Missing: missing}
	}

	remaining := make(map[string][]string, len(deps))
	for pkg, d := range deps {
		remaining[pkg] = d
	}
	placed := make(map[string]bool, len(deps))
	order := make([]string, 0, len(deps))
	ceiling := 2*len(deps) + 10

	for scan := 0; len(remaining) > 0; scan++ {
		if scan >= ceiling {
			return order, &OrderingFailedError{Scans: scan, Remaining: remaining}
		}
		progressed := false
		for _, pkg := range sortedKeys(remaining) {
			if !allPlaced(remaining[pkg], placed) {
				continue
			}
			placed[pkg] = true
			order = append(order, pkg)
			delete(remaining, pkg)
			progressed = true
		}
		if !progressed {
			return order, &CyclicDependencyError{Remaining: remaining}
		}
	}
	return order, nil
}

func unknownDependencies(deps map[string][]string) map[string][]string {
	missing := make(map[string][]string)
	for _, pkg := range sortedKeys(deps) {
		for _, dep := range deps[pkg] {
			if _, ok := deps[dep]; !ok {
				missing[pkg] = append(missing[pkg], dep)
			}
		}
	}
	return missing
}

func allPlaced(deps []string, placed map[string]bool) bool {
	for _, dep := range deps {
		if !placed[dep] {
			return false
		}
	}
	return true
}

func sortedKeys(m map[string][]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
