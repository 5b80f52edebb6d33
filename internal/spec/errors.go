package spec

import "fmt"

// MalformedSpecError reports a specification string that cannot be parsed.
type MalformedSpecError struct {
	Spec   string
	Reason string
}

func (e *MalformedSpecError) Error() string {
	return fmt.Sprintf("malformed specification %q: %s", e.Spec, e.Reason)
}

func malformed(spec, format string, args ...any) error {
	return &MalformedSpecError{Spec: spec, Reason: fmt.Sprintf(format, args...)}
}
