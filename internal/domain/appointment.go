package domain

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// Appointment is one booked slot. It is never updated in place: a change is a
// cancel followed by a new reservation.
type Appointment struct {
	bun.BaseModel `bun:"table:appointments"`

	ID           uuid.UUID `bun:"id,pk,type:uuid"`
	CustomerName string    `bun:"customer_name,notnull"`
	Date         Date      `bun:"appointment_date,type:date,notnull"`
	Hour         int       `bun:"appointment_hour,notnull"`
	CreatedAt    time.Time `bun:"created_at,notnull"`
}

func (a Appointment) Slot() Slot {
	return Slot{Date: a.Date, Hour: a.Hour}
}

// FormattedTime renders the hour as HH:00.
func (a Appointment) FormattedTime() string {
	return FormatHour(a.Hour)
}

func (a *Appointment) BeforeAppendModel(ctx context.Context, query bun.Query) error {
	if _, ok := query.(*bun.InsertQuery); !ok {
		return nil
	}
	if a.ID == uuid.Nil {
		id, err := uuid.NewV7()
		if err != nil {
			return err
		}
		a.ID = id
	}
	if a.CreatedAt.IsZero() {
		a.CreatedAt = time.Now().UTC()
	}
	return nil
}

// Slot is a bookable (date, hour) unit of service capacity.
type Slot struct {
	Date Date
	Hour int
}

// Compare orders slots by date, then hour.
func (s Slot) Compare(o Slot) int {
	if c := s.Date.Compare(o.Date); c != 0 {
		return c
	}
	switch {
	case s.Hour < o.Hour:
		return -1
	case s.Hour > o.Hour:
		return 1
	}
	return 0
}

func (s Slot) String() string {
	return s.Date.String() + " " + FormatHour(s.Hour)
}

func FormatHour(hour int) string {
	return fmt.Sprintf("%02d:00", hour)
}
