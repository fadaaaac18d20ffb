package domain

import "fmt"

// ErrValidation reports a request that failed input validation before any
// upstream call was made.
type ErrValidation struct {
	Field   string
	Message string
}

func (e *ErrValidation) Error() string {
	return fmt.Sprintf("validation failed for %s: %s", e.Field, e.Message)
}

// ErrUpstream reports a business error returned by the OpenDART API itself:
// a well-formed response whose status is not "000". Upstream errors are
// final and must never be retried.
type ErrUpstream struct {
	Code    string
	Message string
}

func (e *ErrUpstream) Error() string {
	return fmt.Sprintf("upstream error %s: %s", e.Code, e.Message)
}

// ErrExternalService wraps a transport-level failure talking to a named
// external dependency.
type ErrExternalService struct {
	Service string
	Err     error
}

func (e *ErrExternalService) Error() string {
	return fmt.Sprintf("external service %s failed: %v", e.Service, e.Err)
}

func (e *ErrExternalService) Unwrap() error {
	return e.Err
}

// ErrTimeout reports an operation that ran out of time.
type ErrTimeout struct {
	Operation string
}

func (e *ErrTimeout) Error() string {
	return fmt.Sprintf("operation %s timed out", e.Operation)
}

// ErrCircuitOpen reports a call rejected because the breaker for the named
// service is open.
type ErrCircuitOpen struct {
	Service string
}

func (e *ErrCircuitOpen) Error() string {
	return fmt.Sprintf("circuit breaker open for %s", e.Service)
}

// ErrNotFound reports a missing resource.
type ErrNotFound struct {
	Resource string
	ID       string
}

func (e *ErrNotFound) Error() string {
	return fmt.Sprintf("%s not found: %s", e.Resource, e.ID)
}
