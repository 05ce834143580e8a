package postgres

import (
	"context"
	"fmt"

	"github.com/uptrace/bun"
	"github.com/uptrace/bun/migrate"

	"smartqueue/backend/internal/store/postgres/migrations"
)

type Migrator struct {
	m *migrate.Migrator
}

func NewMigrator(db *bun.DB) *Migrator {
	return &Migrator{m: migrate.NewMigrator(db, migrations.Migrations)}
}

// Up applies every pending migration and returns the applied group name, or
// an empty string when nothing was pending.
func (m *Migrator) Up(ctx context.Context) (string, error) {
	if err := m.m.Init(ctx); err != nil {
		return "", fmt.Errorf("init migrations: %w", err)
	}
	if err := m.m.Lock(ctx); err != nil {
		return "", fmt.Errorf("lock migrations: %w", err)
	}
	defer func() { _ = m.m.Unlock(ctx) }()

	group, err := m.m.Migrate(ctx)
	if err != nil {
		return "", fmt.Errorf("migrate: %w", err)
	}
	if group.IsZero() {
		return "", nil
	}
	return group.String(), nil
}

// Down rolls back the last applied group.
func (m *Migrator) Down(ctx context.Context) (string, error) {
	if err := m.m.Init(ctx); err != nil {
		return "", fmt.Errorf("init migrations: %w", err)
	}
	if err := m.m.Lock(ctx); err != nil {
		return "", fmt.Errorf("lock migrations: %w", err)
	}
	defer func() { _ = m.m.Unlock(ctx) }()

	group, err := m.m.Rollback(ctx)
	if err != nil {
		return "", fmt.Errorf("rollback: %w", err)
	}
	if group.IsZero() {
		return "", nil
	}
	return group.String(), nil
}

type MigrationStatus struct {
	Applied []string
	Pending []string
}

func (m *Migrator) Status(ctx context.Context) (MigrationStatus, error) {
	if err := m.m.Init(ctx); err != nil {
		return MigrationStatus{}, fmt.Errorf("init migrations: %w", err)
	}
	ms, err := m.m.MigrationsWithStatus(ctx)
	if err != nil {
		return MigrationStatus{}, fmt.Errorf("migration status: %w", err)
	}
	var out MigrationStatus
	for _, mig := range ms.Applied() {
		out.Applied = append(out.Applied, mig.Name)
	}
	for _, mig := range ms.Unapplied() {
		out.Pending = append(out.Pending, mig.Name)
	}
	return out, nil
}
