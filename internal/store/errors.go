package store

import "errors"

var (
	// ErrConflict reports that the (date, hour) slot is already booked.
	ErrConflict = errors.New("conflict")
	// ErrCustomerConflict reports that the customer already holds a booking that day.
	ErrCustomerConflict = errors.New("customer already booked")
	ErrNotFound         = errors.New("not found")
)
