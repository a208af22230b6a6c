package planner

import "fmt"

// TransportError reports that no well-formed reply was obtained: the call
// failed, the status was not 2xx, or the body was not JSON.
type TransportError struct {
	Op         string
	StatusCode int
	Err        error
}

func (e *TransportError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("plan_trip %s (status %d): %v", e.Op, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("plan_trip %s: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// ApplicationError reports a well-formed reply whose status is not success.
type ApplicationError struct {
	Status string
	Detail string
}

func (e *ApplicationError) Error() string {
	return fmt.Sprintf("plan_trip status %q: %s", e.Status, e.Detail)
}
