package dependency

import (
	"fmt"
	"strings"
)

// UnknownDependencyError is returned when packages depend on names that are
// not part of the mapping being ordered.
type UnknownDependencyError struct {
	// Missing maps each offending package to the unknown names it depends on.
	Missing map[string][]string
}

func (e *UnknownDependencyError) Error() string {
	var parts []string
	for _, pkg := range sortedKeys(e.Missing) {
		parts = append(parts, fmt.Sprintf("%s depends on %s", pkg, strings.Join(e.Missing[pkg], ", ")))
	}
	return fmt.Sprintf("unknown dependencies (not part of the package set): %s", strings.Join(parts, "; "))
}

// CyclicDependencyError is returned when the remaining packages depend on
// each other and no ordering exists.
type CyclicDependencyError struct {
	Remaining map[string][]string
}

func (e *CyclicDependencyError) Error() string {
	return fmt.Sprintf("dependencies could not be resolved, remaining dependencies: %s", formatMapping(e.Remaining))
}

// OrderingFailedError is returned when ordering hits its scan ceiling.
type OrderingFailedError struct {
	Scans     int
	Remaining map[string][]string
}

func (e *OrderingFailedError) Error() string {
	return fmt.Sprintf("ordering gave up after %d scans, remaining dependencies: %s", e.Scans, formatMapping(e.Remaining))
}

func formatMapping(m map[string][]string) string {
	var parts []string
	for _, pkg := range sortedKeys(m) {
		parts = append(parts, fmt.Sprintf("%s: [%s]", pkg, strings.Join(m[pkg], ", ")))
	}
	return "{" + strings.Join(parts, ", ") + "}"
}
