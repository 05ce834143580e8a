package main

import (
	"context"
	"fmt"
	"log/slog"

	"smartqueue/backend/internal/config"
	"smartqueue/backend/internal/store"
	"smartqueue/backend/internal/store/memory"
	"smartqueue/backend/internal/store/postgres"
	"smartqueue/backend/internal/transport/rest"
)

type openedStore struct {
	appointments store.AppointmentStore
	ready        rest.ReadyCheck
	close        func()
}

func openStore(ctx context.Context, cfg config.Config, log *slog.Logger) (openedStore, error) {
	if cfg.StoreDriver == config.StoreMemory {
		log.Warn("using in-memory store; appointments are lost on restart")
		s := memory.New()
		return openedStore{
			appointments: s,
			ready:        rest.ReadyCheck{Name: "store", Check: s.Ping},
			close:        func() {},
		}, nil
	}

	log.Info("connecting to database", databaseLogArgs(cfg.DatabaseURL)...)
	db, err := postgres.Open(ctx, cfg.DatabaseURL, postgres.PoolConfig{
		MaxOpenConns:    cfg.DBMaxOpenConns,
		MaxIdleConns:    cfg.DBMaxIdleConns,
		ConnMaxLifetime: cfg.DBConnMaxLifetime,
		ConnMaxIdleTime: cfg.DBConnMaxIdleTime,
	})
	if err != nil {
		args := append([]any{slog.Any("err", err)}, databaseLogArgs(cfg.DatabaseURL)...)
		log.Error("database connection failed", args...)
		return openedStore{}, fmt.Errorf("open database: %w", err)
	}
	closeDB := func() {
		if err := postgres.Close(db); err != nil {
			log.Warn("database close failed", slog.Any("err", err))
		}
	}

	if cfg.DBAutoMigrate {
		group, err := postgres.NewMigrator(db).Up(ctx)
		if err != nil {
			closeDB()
			return openedStore{}, err
		}
		if group != "" {
			log.Info("migrations applied", slog.String("group", group))
		}
	}

	s := postgres.NewAppointmentStore(db)
	return openedStore{
		appointments: s,
		ready:        rest.ReadyCheck{Name: "postgres", Check: s.Ping},
		close:        closeDB,
	}, nil
}
