package saga

import (
	"fmt"

	"github.com/pkg/errors"
)

// ValidationError covers malformed events, duplicate transactions and domain
// rule violations. Participants convert it into a ROLLBACK_PENDING transition
// instead of propagating it to the caller.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// NewValidationError builds a ValidationError with a formatted message.
func NewValidationError(format string, args ...any) error {
	return &ValidationError{Message: fmt.Sprintf(format, args...)}
}

// IsValidationError reports whether err is, or wraps, a ValidationError.
func IsValidationError(err error) bool {
	var target *ValidationError
	return errors.As(err, &target)
}

// NotFoundError signals a missing aggregate or event. During compensation it
// marks an ordering invariant violation: compensate is only reachable for
// participants that previously executed.
type NotFoundError struct {
	Message string
}

func (e *NotFoundError) Error() string {
	return e.Message
}

// NewNotFoundError builds a NotFoundError with a formatted message.
func NewNotFoundError(format string, args ...any) error {
	return &NotFoundError{Message: fmt.Sprintf(format, args...)}
}

// IsNotFoundError reports whether err is, or wraps, a NotFoundError.
func IsNotFoundError(err error) bool {
	var target *NotFoundError
	return errors.As(err, &target)
}

// RoutingError means no transition row matched an event. It indicates a
// configuration defect between the table and the participants and must not be
// retried with the same inputs.
type RoutingError struct {
	Message string
}

func (e *RoutingError) Error() string {
	return e.Message
}

// NewRoutingError builds a RoutingError with a formatted message.
func NewRoutingError(format string, args ...any) error {
	return &RoutingError{Message: fmt.Sprintf(format, args...)}
}

// IsRoutingError reports whether err is, or wraps, a RoutingError.
func IsRoutingError(err error) bool {
	var target *RoutingError
	return errors.As(err, &target)
}

// CompensationError wraps a failure while reverting a participant's local
// aggregate. It is recorded in the event history and swallowed; the saga still
// proceeds to FAIL.
type CompensationError struct {
	Err error
}

func (e *CompensationError) Error() string {
	return "compensation failed: " + e.Err.Error()
}

func (e *CompensationError) Unwrap() error {
	return e.Err
}
