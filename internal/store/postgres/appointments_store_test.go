package postgres

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"

	"smartqueue/backend/internal/store"
)

func TestMapWriteError(t *testing.T) {
	other := errors.New("connection refused")

	tests := []struct {
		name    string
		err     error
		wantErr error
	}{
		{
			name:    "slot index",
			err:     &pgconn.PgError{Code: "23505", ConstraintName: slotConstraint},
			wantErr: store.ErrConflict,
		},
		{
			name:    "customer index",
			err:     fmt.Errorf("insert: %w", &pgconn.PgError{Code: "23505", ConstraintName: customerConstraint}),
			wantErr: store.ErrCustomerConflict,
		},
		{
			name:    "primary key",
			err:     &pgconn.PgError{Code: "23505", ConstraintName: primaryKey},
			wantErr: store.ErrConflict,
		},
		{
			name:    "other pg error passes through",
			err:     &pgconn.PgError{Code: "40001"},
			wantErr: nil,
		},
		{
			name:    "non pg error passes through",
			err:     other,
			wantErr: other,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := mapWriteError(tt.err)
			if tt.wantErr == nil {
				if got != tt.err {
					t.Fatalf("mapWriteError() = %v, want original error", got)
				}
				return
			}
			if !errors.Is(got, tt.wantErr) {
				t.Fatalf("mapWriteError() = %v, want %v", got, tt.wantErr)
			}
		})
	}
}
