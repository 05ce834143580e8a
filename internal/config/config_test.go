package config

import (
	"strings"
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.StoreDriver != StoreMemory {
		t.Fatalf("StoreDriver = %q, want %q", cfg.StoreDriver, StoreMemory)
	}
	if cfg.Queue.OpenHour != 9 || cfg.Queue.CloseHour != 17 || cfg.Queue.SlotDurationMinutes != 15 {
		t.Fatalf("Queue = %+v, want 9-17 with 15 minute slots", cfg.Queue)
	}
	if cfg.GRPCAddr() != "0.0.0.0:50051" {
		t.Fatalf("GRPCAddr() = %q, want %q", cfg.GRPCAddr(), "0.0.0.0:50051")
	}
	if cfg.Auth.TokenTTL != 8*time.Hour {
		t.Fatalf("TokenTTL = %v, want 8h", cfg.Auth.TokenTTL)
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("SMARTQUEUE_STORE_DRIVER", "Postgres")
	t.Setenv("SMARTQUEUE_QUEUE_OPEN_HOUR", "8")
	t.Setenv("SMARTQUEUE_QUEUE_TIMEZONE", "UTC")
	t.Setenv("GRPC_ADDR", "127.0.0.1:6000")
	t.Setenv("KAFKA_BROKERS", "k1:9092,k2:9092")
	t.Setenv("SMARTQUEUE_SHUTDOWN_TIMEOUT", "3s")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.StoreDriver != StorePostgres {
		t.Fatalf("StoreDriver = %q, want %q", cfg.StoreDriver, StorePostgres)
	}
	if cfg.Queue.OpenHour != 8 {
		t.Fatalf("OpenHour = %d, want 8", cfg.Queue.OpenHour)
	}
	if cfg.Queue.Location != time.UTC {
		t.Fatalf("Location = %v, want UTC", cfg.Queue.Location)
	}
	if cfg.GRPCAddr() != "127.0.0.1:6000" {
		t.Fatalf("GRPCAddr() = %q, want %q", cfg.GRPCAddr(), "127.0.0.1:6000")
	}
	if cfg.Notify.KafkaBrokers != "k1:9092,k2:9092" {
		t.Fatalf("KafkaBrokers = %q", cfg.Notify.KafkaBrokers)
	}
	if cfg.ShutdownTimeout != 3*time.Second {
		t.Fatalf("ShutdownTimeout = %v, want 3s", cfg.ShutdownTimeout)
	}
}

func TestLoad_Rejects(t *testing.T) {
	tests := []struct {
		name    string
		key     string
		value   string
		wantErr string
	}{
		{name: "unknown store", key: "SMARTQUEUE_STORE_DRIVER", value: "mongo", wantErr: "store.driver"},
		{name: "bad duration", key: "SMARTQUEUE_AUTH_TOKEN_TTL", value: "forever", wantErr: "auth.token_ttl"},
		{name: "bad timezone", key: "SMARTQUEUE_QUEUE_TIMEZONE", value: "Mars/Olympus", wantErr: "queue.timezone"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(tt.key, tt.value)
			_, err := Load()
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Fatalf("Load() error = %v, want containing %q", err, tt.wantErr)
			}
		})
	}
}

func TestLoad_CORSOriginsAndAutoMigrate(t *testing.T) {
	t.Setenv("SMARTQUEUE_HTTP_CORS_ORIGINS", " https://a.example, ,https://b.example ")
	t.Setenv("SMARTQUEUE_DATABASE_AUTO_MIGRATE", "true")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if got := strings.Join(cfg.CORSOrigins, "|"); got != "https://a.example|https://b.example" {
		t.Fatalf("CORSOrigins = %q", got)
	}
	if !cfg.DBAutoMigrate {
		t.Fatal("DBAutoMigrate = false, want true")
	}
}
