package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/uptrace/bun"

	"smartqueue/backend/internal/domain"
	"smartqueue/backend/internal/store"
)

// Constraint names created by the migrations.
const (
	slotConstraint     = "appointments_slot_key"
	customerConstraint = "appointments_customer_day_key"
	primaryKey         = "appointments_pkey"

	uniqueViolation = "23505"
)

type AppointmentStore struct {
	db *bun.DB
}

func NewAppointmentStore(db *bun.DB) *AppointmentStore {
	return &AppointmentStore{db: db}
}

// Save inserts appt while holding a per-day advisory lock, so concurrent
// writers for the same day reach the unique indexes one at a time.
func (s *AppointmentStore) Save(ctx context.Context, appt domain.Appointment) error {
	return s.inDayTransaction(ctx, appt.Date, func(ctx context.Context, tx bun.Tx) error {
		m := appt
		if _, err := tx.NewInsert().Model(&m).Exec(ctx); err != nil {
			return mapWriteError(err)
		}
		return nil
	})
}

func (s *AppointmentStore) FindAllOrdered(ctx context.Context) ([]domain.Appointment, error) {
	var rows []domain.Appointment
	err := s.db.NewSelect().
		Model(&rows).
		OrderExpr("appointment_date ASC, appointment_hour ASC").
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (s *AppointmentStore) DeleteByID(ctx context.Context, id uuid.UUID) error {
	res, err := s.db.NewDelete().
		Model((*domain.Appointment)(nil)).
		Where("id = ?", id).
		Exec(ctx)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (s *AppointmentStore) ExistsByID(ctx context.Context, id uuid.UUID) (bool, error) {
	return s.db.NewSelect().
		Model((*domain.Appointment)(nil)).
		Where("id = ?", id).
		Exists(ctx)
}

func (s *AppointmentStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *AppointmentStore) inDayTransaction(ctx context.Context, day domain.Date, fn func(ctx context.Context, tx bun.Tx) error) error {
	return s.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		if err := lockDay(ctx, tx, day); err != nil {
			return err
		}
		return fn(ctx, tx)
	})
}

func lockDay(ctx context.Context, tx bun.Tx, day domain.Date) error {
	_, err := tx.NewRaw("SELECT pg_advisory_xact_lock(hashtext(?))", "smartqueue:"+day.String()).Exec(ctx)
	return err
}

func mapWriteError(err error) error {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) || pgErr.Code != uniqueViolation {
		return err
	}
	switch pgErr.ConstraintName {
	case customerConstraint:
		return fmt.Errorf("%w: %s", store.ErrCustomerConflict, pgErr.ConstraintName)
	case slotConstraint, primaryKey:
		return fmt.Errorf("%w: %s", store.ErrConflict, pgErr.ConstraintName)
	default:
		return store.ErrConflict
	}
}
