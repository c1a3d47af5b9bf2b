package gate

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrInsufficientPermission is returned when the caller's role does not grant the route.
	ErrInsufficientPermission = errors.New("insufficient permission")
	// ErrResourceAccessDenied is returned when the resource is outside the caller's document groups.
	ErrResourceAccessDenied = errors.New("resource access denied")
)

// DenyError carries the decision that denied a request.
type DenyError struct {
	Decision Decision
}

// Error implements the error interface.
func (e *DenyError) Error() string {
	var b strings.Builder

	fmt.Fprintf(&b, "%s: route %q", e.Unwrap(), e.Decision.Route)

	if e.Decision.Reason != "" {
		fmt.Fprintf(&b, " (%s)", e.Decision.Reason)
	}

	if len(e.Decision.Required) > 0 {
		fmt.Fprintf(&b, " requires %s", strings.Join(e.Decision.Required, ", "))
	}

	return b.String()
}

// Unwrap returns the sentinel matching the deny reason.
func (e *DenyError) Unwrap() error {
	if e.Decision.Reason == ReasonResourceRestricted {
		return ErrResourceAccessDenied
	}

	return ErrInsufficientPermission
}
