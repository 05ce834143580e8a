package queue

import (
	"errors"
	"fmt"
)

// Reason identifies why a booking was rejected.
type Reason string

const (
	ReasonInvalidName       Reason = "invalid_name"
	ReasonInvalidDate       Reason = "invalid_date"
	ReasonPastDate          Reason = "past_date"
	ReasonBeyondHorizon     Reason = "beyond_horizon"
	ReasonWeekend           Reason = "weekend"
	ReasonOutsideHours      Reason = "outside_hours"
	ReasonDuplicateCustomer Reason = "duplicate_customer"
	ReasonSlotTaken         Reason = "slot_taken"
)

type ValidationError struct {
	Reason Reason
	msg    string
}

func (e *ValidationError) Error() string {
	return e.msg
}

func validationError(reason Reason, format string, args ...any) error {
	return &ValidationError{Reason: reason, msg: fmt.Sprintf(format, args...)}
}

// ReasonOf returns the rejection reason carried by err, if any.
func ReasonOf(err error) (Reason, bool) {
	var vErr *ValidationError
	if errors.As(err, &vErr) {
		return vErr.Reason, true
	}
	return "", false
}

var (
	ErrNotFound         = errors.New("appointment not found")
	ErrQueueEmpty       = errors.New("queue is empty")
	ErrInvalidHours     = errors.New("invalid business hours")
	ErrInvalidDuration  = errors.New("invalid slot duration")
	ErrStoreUnavailable = errors.New("store unavailable")
)

func storeUnavailable(op string, err error) error {
	return fmt.Errorf("%s: %w: %w", op, ErrStoreUnavailable, err)
}
