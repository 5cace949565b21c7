package flights

import "fmt"

// ValidationError is returned when input is rejected before anything is
// persisted.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// NotFoundError is returned when a route id does not exist.
type NotFoundError struct {
	RouteID int64
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("route %d not found", e.RouteID)
}
