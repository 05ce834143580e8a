package postgres

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"net/url"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"

	"smartqueue/backend/internal/domain"
	"smartqueue/backend/internal/store"
)

func openTestSchema(t *testing.T) *bun.DB {
	t.Helper()

	databaseURL := strings.TrimSpace(os.Getenv("SMARTQUEUE_TEST_DATABASE_URL"))
	if databaseURL == "" {
		t.Skip("SMARTQUEUE_TEST_DATABASE_URL not set")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	admin, err := Open(ctx, databaseURL, PoolConfig{MaxOpenConns: 1})
	if err != nil {
		t.Fatalf("Open error: %v", err)
	}
	t.Cleanup(func() { _ = Close(admin) })

	schema := "smartqueue_test_" + randomHex(t, 8)
	if _, err := admin.NewRaw("CREATE SCHEMA " + schema).Exec(ctx); err != nil {
		t.Fatalf("create schema: %v", err)
	}
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_, _ = admin.NewRaw("DROP SCHEMA IF EXISTS " + schema + " CASCADE").Exec(ctx)
	})

	u, err := url.Parse(databaseURL)
	if err != nil {
		t.Fatalf("parse database url: %v", err)
	}
	q := u.Query()
	q.Set("search_path", schema)
	u.RawQuery = q.Encode()

	db, err := Open(ctx, u.String(), PoolConfig{MaxOpenConns: 4})
	if err != nil {
		t.Fatalf("Open schema error: %v", err)
	}
	t.Cleanup(func() { _ = Close(db) })

	if _, err := NewMigrator(db).Up(ctx); err != nil {
		t.Fatalf("migrate up: %v", err)
	}
	return db
}

func TestPostgresIntegration_SaveFindDeleteAndConflicts(t *testing.T) {
	db := openTestSchema(t)
	s := NewAppointmentStore(db)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	day := domain.Date{Year: 2030, Month: time.March, Day: 5}
	late := domain.Appointment{ID: uuid.MustParse("00000000-0000-0000-0000-000000000901"), CustomerName: "Ada", Date: day, Hour: 14}
	early := domain.Appointment{ID: uuid.MustParse("00000000-0000-0000-0000-000000000902"), CustomerName: "Grace", Date: day, Hour: 9}

	for _, appt := range []domain.Appointment{late, early} {
		if err := s.Save(ctx, appt); err != nil {
			t.Fatalf("Save(%s) error = %v", appt.CustomerName, err)
		}
	}

	rows, err := s.FindAllOrdered(ctx)
	if err != nil {
		t.Fatalf("FindAllOrdered() error = %v", err)
	}
	if len(rows) != 2 || rows[0].ID != early.ID || rows[1].ID != late.ID {
		t.Fatalf("FindAllOrdered() = %+v", rows)
	}
	if rows[0].Date != day {
		t.Fatalf("date round trip = %s, want %s", rows[0].Date, day)
	}

	slotClash := domain.Appointment{ID: uuid.MustParse("00000000-0000-0000-0000-000000000903"), CustomerName: "Linus", Date: day, Hour: 9}
	if err := s.Save(ctx, slotClash); !errors.Is(err, store.ErrConflict) {
		t.Fatalf("Save(slot clash) error = %v, want %v", err, store.ErrConflict)
	}
	customerClash := domain.Appointment{ID: uuid.MustParse("00000000-0000-0000-0000-000000000904"), CustomerName: "ADA", Date: day, Hour: 11}
	if err := s.Save(ctx, customerClash); !errors.Is(err, store.ErrCustomerConflict) {
		t.Fatalf("Save(customer clash) error = %v, want %v", err, store.ErrCustomerConflict)
	}

	ok, err := s.ExistsByID(ctx, early.ID)
	if err != nil || !ok {
		t.Fatalf("ExistsByID() = %v, %v, want true, nil", ok, err)
	}
	if err := s.DeleteByID(ctx, early.ID); err != nil {
		t.Fatalf("DeleteByID() error = %v", err)
	}
	if err := s.DeleteByID(ctx, early.ID); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("second DeleteByID() error = %v, want %v", err, store.ErrNotFound)
	}
	ok, err = s.ExistsByID(ctx, early.ID)
	if err != nil || ok {
		t.Fatalf("ExistsByID() after delete = %v, %v, want false, nil", ok, err)
	}
}

func TestPostgresIntegration_MigrationStatus(t *testing.T) {
	db := openTestSchema(t)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	status, err := NewMigrator(db).Status(ctx)
	if err != nil {
		t.Fatalf("Status() error = %v", err)
	}
	if len(status.Pending) != 0 || len(status.Applied) == 0 {
		t.Fatalf("Status() = %+v, want all applied", status)
	}
}

func randomHex(t *testing.T, bytesLen int) string {
	t.Helper()
	b := make([]byte, bytesLen)
	if _, err := rand.Read(b); err != nil {
		t.Fatalf("rand.Read error: %v", err)
	}
	return hex.EncodeToString(b)
}
