package builder

import "fmt"

// BuildError is returned when building a distribution fails.
type BuildError struct {
	Dist string
	Err  error
}

func (e *BuildError) Error() string {
	return fmt.Sprintf("failed to build %s: %v", e.Dist, e.Err)
}

func (e *BuildError) Unwrap() error {
	return e.Err
}

// DestinationError is returned when a destination fails to take a
// distribution.
type DestinationError struct {
	Dist        string
	Destination string
	Err         error
}

func (e *DestinationError) Error() string {
	return fmt.Sprintf("%s: failed to make %s available: %v", e.Destination, e.Dist, e.Err)
}

func (e *DestinationError) Unwrap() error {
	return e.Err
}
