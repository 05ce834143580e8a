package store

import (
	"context"

	"github.com/google/uuid"

	"smartqueue/backend/internal/domain"
)

// AppointmentStore is the durable backing of the queue. Every call must observe
// the effects of earlier successful calls from the same process.
type AppointmentStore interface {
	Save(ctx context.Context, appt domain.Appointment) error
	FindAllOrdered(ctx context.Context) ([]domain.Appointment, error)
	DeleteByID(ctx context.Context, id uuid.UUID) error
	ExistsByID(ctx context.Context, id uuid.UUID) (bool, error)
}

// Pinger is implemented by stores that can report connectivity.
type Pinger interface {
	Ping(ctx context.Context) error
}
