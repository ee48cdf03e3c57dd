package model

import "errors"

// ErrInvariant is wrapped by every InvariantError.
var ErrInvariant = errors.New("model invariant violated")

// InvariantError signals a logic defect in model construction, such as a
// cached symbol resolving to a container of the wrong type. It is raised
// with panic and recovered per top-level operation.
type InvariantError struct {
	Message string
}

// Error implements the error interface.
func (e *InvariantError) Error() string {
	return "invariant violated: " + e.Message
}

// Unwrap returns ErrInvariant.
func (e *InvariantError) Unwrap() error {
	return ErrInvariant
}
