package matrix

import "fmt"

// UnsupportedDimensionError is returned when a recipe asks for version matrix
// treatment of a dimension that is reserved but not implemented.
type UnsupportedDimensionError struct {
	Package   string
	Dimension string
}

func (e *UnsupportedDimensionError) Error() string {
	return fmt.Sprintf("%s: version matrix for %q is not implemented", e.Package, e.Dimension)
}

// DuplicateDimensionError is returned when a case would hold two versions of
// the same dimension.
type DuplicateDimensionError struct {
	Dimension string
}

func (e *DuplicateDimensionError) Error() string {
	return fmt.Sprintf("case already has a version for %q", e.Dimension)
}
