// Package enginerr defines the typed failures surfaced by the protocol
// engine. The messages are written for direct display in a ground-control UI.
package enginerr

import (
	"errors"
	"fmt"
)

// TimeoutError reports that no qualifying reply arrived within the
// operation's deadline.
type TimeoutError struct {
	Op string
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("%s timed out waiting for the vehicle", e.Op)
}

// RejectedError reports a reply that explicitly signals failure or denial.
type RejectedError struct {
	Op     string
	Result uint8
}

func (e *RejectedError) Error() string {
	return fmt.Sprintf("%s failed with result: %d", e.Op, e.Result)
}

// PreconditionError reports a failure detected before any message was sent.
type PreconditionError struct {
	Reason string
}

func (e *PreconditionError) Error() string {
	return e.Reason
}

// IsTimeout reports whether err is (or wraps) a TimeoutError.
func IsTimeout(err error) bool {
	var t *TimeoutError
	return errors.As(err, &t)
}

// IsRejected reports whether err is (or wraps) a RejectedError.
func IsRejected(err error) bool {
	var r *RejectedError
	return errors.As(err, &r)
}

// IsPrecondition reports whether err is (or wraps) a PreconditionError.
func IsPrecondition(err error) bool {
	var p *PreconditionError
	return errors.As(err, &p)
}
