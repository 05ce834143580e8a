package queue

import (
	"strings"
	"unicode"

	"smartqueue/backend/internal/domain"
)

// Bookings is the read view that booking validation and wait estimation run against.
type Bookings interface {
	SlotTaken(slot domain.Slot) bool
	CustomerBooked(date domain.Date, name string) bool
	// CountBefore counts records on date with an hour strictly below hour.
	CountBefore(date domain.Date, hour int) int
}

// ValidateBooking checks a reservation request against policy and the live
// bookings. Checks run in a fixed order and stop at the first failure.
func ValidateBooking(p domain.Policy, today domain.Date, name, date string, hour int, existing Bookings) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return validationError(ReasonInvalidName, "name is required")
	}
	if strings.ContainsFunc(name, unicode.IsDigit) {
		return validationError(ReasonInvalidName, "name must not contain digits")
	}

	d, err := domain.ParseDate(date)
	if err != nil {
		return validationError(ReasonInvalidDate, "date must be a valid YYYY-MM-DD calendar date")
	}
	if d.Before(today) {
		return validationError(ReasonPastDate, "date %s is in the past", d)
	}
	if d.After(today.AddYears(1)) {
		return validationError(ReasonBeyondHorizon, "date %s is more than one year ahead", d)
	}
	if d.IsWeekend() {
		return validationError(ReasonWeekend, "appointments are only available on weekdays")
	}
	if !p.InHours(hour) {
		return validationError(ReasonOutsideHours, "hour must be between %d and %d", p.OpenHour, p.CloseHour-1)
	}
	if existing.CustomerBooked(d, name) {
		return validationError(ReasonDuplicateCustomer, "%s already has an appointment on %s", name, d)
	}
	if existing.SlotTaken(domain.Slot{Date: d, Hour: hour}) {
		return validationError(ReasonSlotTaken, "slot %s is already booked", domain.Slot{Date: d, Hour: hour})
	}
	return nil
}

type WaitEstimate struct {
	Ahead   int
	Minutes int
}

func EstimateWait(date domain.Date, hour int, existing Bookings, durationMinutes int) WaitEstimate {
	ahead := existing.CountBefore(date, hour)
	return WaitEstimate{Ahead: ahead, Minutes: ahead * durationMinutes}
}

// Records adapts a plain slice to Bookings with linear scans.
type Records []domain.Appointment

func (r Records) SlotTaken(slot domain.Slot) bool {
	for _, appt := range r {
		if appt.Slot() == slot {
			return true
		}
	}
	return false
}

func (r Records) CustomerBooked(date domain.Date, name string) bool {
	for _, appt := range r {
		if appt.Date == date && strings.EqualFold(appt.CustomerName, name) {
			return true
		}
	}
	return false
}

func (r Records) CountBefore(date domain.Date, hour int) int {
	n := 0
	for _, appt := range r {
		if appt.Date == date && appt.Hour < hour {
			n++
		}
	}
	return n
}
