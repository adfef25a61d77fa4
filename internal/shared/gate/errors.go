package gate

import (
	"errors"
	"fmt"
)

var (
	ErrUnauthenticated = errors.New("unauthenticated")
	ErrForbidden       = errors.New("forbidden")
	ErrNotFound        = errors.New("not found")
)

// DenyError carries a non-allow decision out of a service call.
// Resource names the target type for not-found messages ("Product").
type DenyError struct {
	Decision Decision
	Resource string
}

func (e *DenyError) Error() string {
	return fmt.Sprintf("gate: %s (%s)", e.Decision, e.Resource)
}

func (e *DenyError) Unwrap() error {
	switch e.Decision {
	case DenyUnauthenticated:
		return ErrUnauthenticated
	case DenyNotFound:
		return ErrNotFound
	default:
		return ErrForbidden
	}
}

// Err converts a decision into an error. Allow returns nil.
func Err(decision Decision, resource string) error {
	if decision == Allow {
		return nil
	}
	return &DenyError{Decision: decision, Resource: resource}
}

// NotFoundMessage is the client-facing message for a deny-not-found outcome.
func NotFoundMessage(resource string) string {
	if resource == "" {
		resource = "Resource"
	}
	return resource + " not found"
}
