// Package memory is a process-local AppointmentStore. It enforces the same
// uniqueness rules as the Postgres schema so the two are interchangeable.
package memory

import (
	"context"
	"slices"
	"strings"
	"sync"

	"github.com/google/uuid"

	"smartqueue/backend/internal/domain"
	"smartqueue/backend/internal/store"
)

type Store struct {
	mu   sync.RWMutex
	byID map[uuid.UUID]domain.Appointment
}

func New(seed ...domain.Appointment) *Store {
	s := &Store{byID: make(map[uuid.UUID]domain.Appointment, len(seed))}
	for _, appt := range seed {
		s.byID[appt.ID] = appt
	}
	return s
}

func (s *Store) Save(ctx context.Context, appt domain.Appointment) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.byID[appt.ID]; ok {
		return store.ErrConflict
	}
	for _, existing := range s.byID {
		if existing.Date != appt.Date {
			continue
		}
		if existing.Hour == appt.Hour {
			return store.ErrConflict
		}
		if strings.EqualFold(existing.CustomerName, appt.CustomerName) {
			return store.ErrCustomerConflict
		}
	}
	s.byID[appt.ID] = appt
	return nil
}

func (s *Store) FindAllOrdered(ctx context.Context) ([]domain.Appointment, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	out := make([]domain.Appointment, 0, len(s.byID))
	for _, appt := range s.byID {
		out = append(out, appt)
	}
	s.mu.RUnlock()

	slices.SortFunc(out, func(a, b domain.Appointment) int {
		return a.Slot().Compare(b.Slot())
	})
	return out, nil
}

func (s *Store) DeleteByID(ctx context.Context, id uuid.UUID) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.byID[id]; !ok {
		return store.ErrNotFound
	}
	delete(s.byID, id)
	return nil
}

func (s *Store) ExistsByID(ctx context.Context, id uuid.UUID) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.byID[id]
	return ok, nil
}

func (s *Store) Ping(ctx context.Context) error {
	return ctx.Err()
}
