// Package queue is the appointment queue manager: an ordered, durably backed
// set of reservations shared by every transport.
package queue

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"smartqueue/backend/internal/domain"
	"smartqueue/backend/internal/notify"
	"smartqueue/backend/internal/store"
)

// Notifier receives change events after a mutation commits. Publish must not block.
type Notifier interface {
	Publish(ctx context.Context, topic, payload string)
}

// Recorder observes queue outcomes, typically for metrics.
type Recorder interface {
	Reserved(result string)
	Canceled(result string)
	Served()
	Depth(n int)
}

const (
	ResultOK          = "ok"
	ResultNotFound    = "not_found"
	ResultUnavailable = "store_unavailable"
	ResultError       = "error"
)

const maxIDAttempts = 3

type nopNotifier struct{}

func (nopNotifier) Publish(context.Context, string, string) {}

type nopRecorder struct{}

func (nopRecorder) Reserved(string) {}
func (nopRecorder) Canceled(string) {}
func (nopRecorder) Served()         {}
func (nopRecorder) Depth(int)       {}

type Option func(*Queue)

func WithNotifier(n Notifier) Option {
	return func(q *Queue) {
		if n != nil {
			q.notifier = n
		}
	}
}

func WithRecorder(r Recorder) Option {
	return func(q *Queue) {
		if r != nil {
			q.recorder = r
		}
	}
}

func WithLogger(log *slog.Logger) Option {
	return func(q *Queue) {
		if log != nil {
			q.log = log
		}
	}
}

// WithClock overrides the source of "now" used to derive today's date.
func WithClock(now func() time.Time) Option {
	return func(q *Queue) {
		if now != nil {
			q.now = now
		}
	}
}

// WithLocation sets the zone in which "today" is evaluated.
func WithLocation(loc *time.Location) Option {
	return func(q *Queue) {
		if loc != nil {
			q.loc = loc
		}
	}
}

func WithPolicy(p domain.Policy) Option {
	return func(q *Queue) {
		q.policy = p
	}
}

type Queue struct {
	mu     sync.Mutex
	store  store.AppointmentStore
	policy domain.Policy
	index  *orderedIndex

	notifier Notifier
	recorder Recorder
	log      *slog.Logger
	now      func() time.Time
	loc      *time.Location
}

// New builds a queue and loads the live set from s.
func New(ctx context.Context, s store.AppointmentStore, opts ...Option) (*Queue, error) {
	q := &Queue{
		store:    s,
		policy:   domain.DefaultPolicy(),
		index:    newOrderedIndex(),
		notifier: nopNotifier{},
		recorder: nopRecorder{},
		log:      slog.Default(),
		now:      time.Now,
		loc:      time.Local,
	}
	for _, opt := range opts {
		opt(q)
	}
	if err := validateHours(q.policy.OpenHour, q.policy.CloseHour); err != nil {
		return nil, err
	}
	if q.policy.SlotDurationMinutes <= 0 {
		return nil, ErrInvalidDuration
	}

	existing, err := s.FindAllOrdered(ctx)
	if err != nil {
		return nil, storeUnavailable("load appointments", err)
	}
	for _, appt := range existing {
		if !q.index.insert(appt) {
			return nil, fmt.Errorf("load appointments: slot %s held by more than one appointment", appt.Slot())
		}
	}
	q.recorder.Depth(q.index.len())
	q.log.Info("queue loaded", slog.Int("appointments", q.index.len()))
	return q, nil
}

type ReserveInput struct {
	Name string
	Date string
	Hour int
}

func (q *Queue) Reserve(ctx context.Context, in ReserveInput) (domain.Appointment, error) {
	name := strings.TrimSpace(in.Name)

	q.mu.Lock()
	appt, err := q.reserveLocked(ctx, name, in.Date, in.Hour)
	// Depth is set under the lock so the gauge follows the index order.
	q.recorder.Depth(q.index.len())
	q.mu.Unlock()

	if err != nil {
		q.recorder.Reserved(resultOf(err))
		return domain.Appointment{}, err
	}
	q.recorder.Reserved(ResultOK)
	q.log.Info("appointment reserved",
		slog.String("appointment_id", appt.ID.String()),
		slog.String("slot", appt.Slot().String()),
	)
	q.notifier.Publish(ctx, notify.TopicQueueUpdate, notify.PayloadRefresh)
	return appt, nil
}

func (q *Queue) reserveLocked(ctx context.Context, name, date string, hour int) (domain.Appointment, error) {
	if err := ValidateBooking(q.policy, q.today(), name, date, hour, q.index); err != nil {
		return domain.Appointment{}, err
	}
	d, err := domain.ParseDate(date)
	if err != nil {
		return domain.Appointment{}, validationError(ReasonInvalidDate, "date must be a valid YYYY-MM-DD calendar date")
	}

	id, err := q.newID(ctx)
	if err != nil {
		return domain.Appointment{}, err
	}
	appt := domain.Appointment{
		ID:           id,
		CustomerName: name,
		Date:         d,
		Hour:         hour,
		CreatedAt:    q.now().UTC(),
	}

	if err := q.store.Save(ctx, appt); err != nil {
		switch {
		case errors.Is(err, store.ErrConflict):
			return domain.Appointment{}, validationError(ReasonSlotTaken, "slot %s is already booked", appt.Slot())
		case errors.Is(err, store.ErrCustomerConflict):
			return domain.Appointment{}, validationError(ReasonDuplicateCustomer, "%s already has an appointment on %s", name, d)
		default:
			return domain.Appointment{}, storeUnavailable("save appointment", err)
		}
	}

	if !q.index.insert(appt) {
		// Index and store disagree; undo the write.
		if err := q.store.DeleteByID(ctx, appt.ID); err != nil {
			q.log.Error("rollback reserved appointment", slog.String("appointment_id", appt.ID.String()), slog.Any("err", err))
		}
		return domain.Appointment{}, validationError(ReasonSlotTaken, "slot %s is already booked", appt.Slot())
	}
	return appt, nil
}

// newID returns a fresh v7 id that the store has never seen.
func (q *Queue) newID(ctx context.Context) (uuid.UUID, error) {
	for range maxIDAttempts {
		id, err := uuid.NewV7()
		if err != nil {
			return uuid.Nil, fmt.Errorf("generate id: %w", err)
		}
		if q.index.has(id) {
			continue
		}
		exists, err := q.store.ExistsByID(ctx, id)
		if err != nil {
			return uuid.Nil, storeUnavailable("check appointment id", err)
		}
		if !exists {
			return id, nil
		}
	}
	return uuid.Nil, errors.New("generate id: exhausted attempts")
}

// Cancel removes the appointment with id. It returns ErrNotFound when id is not live.
func (q *Queue) Cancel(ctx context.Context, id uuid.UUID) error {
	q.mu.Lock()
	err := q.cancelLocked(ctx, id)
	q.recorder.Depth(q.index.len())
	q.mu.Unlock()

	if err != nil {
		q.recorder.Canceled(resultOf(err))
		return err
	}
	q.recorder.Canceled(ResultOK)
	q.log.Info("appointment canceled", slog.String("appointment_id", id.String()))
	q.notifier.Publish(ctx, notify.TopicQueueUpdate, notify.PayloadRefresh)
	return nil
}

func (q *Queue) cancelLocked(ctx context.Context, id uuid.UUID) error {
	if !q.index.has(id) {
		return ErrNotFound
	}
	if err := q.store.DeleteByID(ctx, id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			// Removed behind our back; converge on the store's view.
			q.index.remove(id)
			return fmt.Errorf("%w: %w", ErrNotFound, err)
		}
		return storeUnavailable("delete appointment", err)
	}
	q.index.remove(id)
	return nil
}

// ServeNext removes and returns the earliest appointment. Telling the served
// customer it is their turn is left to the caller.
func (q *Queue) ServeNext(ctx context.Context) (domain.Appointment, error) {
	q.mu.Lock()
	appt, err := q.serveLocked(ctx)
	q.recorder.Depth(q.index.len())
	q.mu.Unlock()

	if err != nil {
		return domain.Appointment{}, err
	}
	q.recorder.Served()
	q.log.Info("appointment served",
		slog.String("appointment_id", appt.ID.String()),
		slog.String("slot", appt.Slot().String()),
	)
	q.notifier.Publish(ctx, notify.TopicQueueUpdate, notify.PayloadRefresh)
	return appt, nil
}

func (q *Queue) serveLocked(ctx context.Context) (domain.Appointment, error) {
	for {
		next, ok := q.index.first()
		if !ok {
			return domain.Appointment{}, ErrQueueEmpty
		}
		err := q.store.DeleteByID(ctx, next.ID)
		if errors.Is(err, store.ErrNotFound) {
			q.index.remove(next.ID)
			continue
		}
		if err != nil {
			return domain.Appointment{}, storeUnavailable("delete appointment", err)
		}
		q.index.remove(next.ID)
		return next, nil
	}
}

// PositionOf returns the 0-based rank of id in queue order.
func (q *Queue) PositionOf(id uuid.UUID) (int, error) {
	q.mu.Lock()
	defer q.mu.Unlock()

	pos, ok := q.index.rank(id)
	if !ok {
		return 0, ErrNotFound
	}
	return pos, nil
}

// WaitEstimate counts same-day appointments at earlier hours. Only the date
// format is validated; hour and weekday are taken as given.
func (q *Queue) WaitEstimate(date string, hour int) (WaitEstimate, error) {
	d, err := domain.ParseDate(date)
	if err != nil {
		return WaitEstimate{}, validationError(ReasonInvalidDate, "date must be a valid YYYY-MM-DD calendar date")
	}

	q.mu.Lock()
	defer q.mu.Unlock()
	return EstimateWait(d, hour, q.index, q.policy.SlotDurationMinutes), nil
}

func (q *Queue) SetDuration(ctx context.Context, minutes int) error {
	if minutes <= 0 {
		return ErrInvalidDuration
	}

	q.mu.Lock()
	q.policy.SlotDurationMinutes = minutes
	q.mu.Unlock()

	q.log.InfoContext(ctx, "slot duration changed", slog.Int("minutes", minutes))
	return nil
}

func (q *Queue) SetHours(ctx context.Context, openHour, closeHour int) error {
	if err := validateHours(openHour, closeHour); err != nil {
		return err
	}

	q.mu.Lock()
	q.policy.OpenHour = openHour
	q.policy.CloseHour = closeHour
	q.mu.Unlock()

	q.log.InfoContext(ctx, "business hours changed", slog.Int("open_hour", openHour), slog.Int("close_hour", closeHour))
	q.notifier.Publish(ctx, notify.TopicQueueUpdate, notify.PayloadRefresh)
	return nil
}

func validateHours(openHour, closeHour int) error {
	if openHour < 0 || closeHour > 24 || openHour >= closeHour {
		return fmt.Errorf("%w: open %d, close %d", ErrInvalidHours, openHour, closeHour)
	}
	return nil
}

// ListAll returns a copy of the live set in queue order.
func (q *Queue) ListAll() []domain.Appointment {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.index.snapshot()
}

func (q *Queue) Policy() domain.Policy {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.policy
}

func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.index.len()
}

func (q *Queue) today() domain.Date {
	return domain.DateOf(q.now().In(q.loc))
}

func resultOf(err error) string {
	if reason, ok := ReasonOf(err); ok {
		return string(reason)
	}
	switch {
	case errors.Is(err, ErrNotFound):
		return ResultNotFound
	case errors.Is(err, ErrStoreUnavailable):
		return ResultUnavailable
	default:
		return ResultError
	}
}
