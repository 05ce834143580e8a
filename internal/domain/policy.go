package domain

const (
	DefaultOpenHour            = 9
	DefaultCloseHour           = 17
	DefaultSlotDurationMinutes = 15
)

// Policy is the per-queue booking configuration. Changing it never
// invalidates records that were valid when created.
type Policy struct {
	OpenHour            int
	CloseHour           int
	SlotDurationMinutes int
}

func DefaultPolicy() Policy {
	return Policy{
		OpenHour:            DefaultOpenHour,
		CloseHour:           DefaultCloseHour,
		SlotDurationMinutes: DefaultSlotDurationMinutes,
	}
}

// InHours reports whether hour lies in [OpenHour, CloseHour).
func (p Policy) InHours(hour int) bool {
	return hour >= p.OpenHour && hour < p.CloseHour
}
