package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"time"

	"github.com/spf13/cobra"
	"go.opentelemetry.io/contrib/instrumentation/google.golang.org/grpc/otelgrpc"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"google.golang.org/grpc"

	"smartqueue/backend/internal/auth"
	"smartqueue/backend/internal/config"
	"smartqueue/backend/internal/domain"
	"smartqueue/backend/internal/metrics"
	"smartqueue/backend/internal/notify"
	"smartqueue/backend/internal/notify/hub"
	"smartqueue/backend/internal/notify/kafkanotify"
	"smartqueue/backend/internal/notify/redisnotify"
	"smartqueue/backend/internal/service/queue"
	"smartqueue/backend/internal/telemetry"
	grpcTransport "smartqueue/backend/internal/transport/grpc"
	"smartqueue/backend/internal/transport/rest"
)

func serveCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP and gRPC servers",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, log, err := loadConfig()
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			return serve(cmd.Context(), cfg, log)
		},
	}
}

func serve(ctx context.Context, cfg config.Config, log *slog.Logger) error {
	log.Info("starting",
		slog.String("http_addr", cfg.HTTPAddr),
		slog.String("grpc_addr", cfg.GRPCAddr()),
		slog.String("store", cfg.StoreDriver),
		slog.String("log_level", cfg.LogLevel),
	)

	shutdownTracing, err := telemetry.Setup(ctx, telemetry.Config{
		Enabled:     cfg.OTel.Enabled,
		ServiceName: serviceName,
		Endpoint:    cfg.OTel.Endpoint,
		SampleRatio: cfg.OTel.SampleRatio,
	})
	if err != nil {
		return fmt.Errorf("telemetry: %w", err)
	}
	defer func() {
		flushCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
		defer cancel()
		if err := shutdownTracing(flushCtx); err != nil {
			log.Warn("tracer shutdown failed", slog.Any("err", err))
		}
	}()

	collector := metrics.NewCollector()

	st, err := openStore(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer st.close()
	ready := []rest.ReadyCheck{st.ready}

	pushHub := hub.New(log)
	sinks := []notify.Sink{pushHub}

	if cfg.Notify.RedisAddr != "" {
		rdb, err := redisnotify.NewClient(ctx, redisnotify.Config{
			Addr:     cfg.Notify.RedisAddr,
			Password: cfg.Notify.RedisPassword,
			DB:       cfg.Notify.RedisDB,
		})
		if err != nil {
			return err
		}
		defer func() { _ = rdb.Close() }()
		sinks = append(sinks, redisnotify.NewSink(rdb, cfg.Notify.RedisChannelPrefix))
		ready = append(ready, rest.ReadyCheck{Name: "redis", Check: redisnotify.ReadyCheck(rdb)})
		log.Info("redis notifications enabled", slog.String("redis_addr", cfg.Notify.RedisAddr))
	}

	if brokers := kafkanotify.SplitBrokers(cfg.Notify.KafkaBrokers); len(brokers) > 0 {
		w := kafkanotify.NewWriter(brokers, cfg.Notify.KafkaTopic)
		defer func() {
			if err := w.Close(); err != nil {
				log.Warn("kafka writer close failed", slog.Any("err", err))
			}
		}()
		sinks = append(sinks, kafkanotify.NewSink(w))
		ready = append(ready, rest.ReadyCheck{Name: "kafka", Check: kafkanotify.ReadyCheck(brokers)})
		log.Info("kafka notifications enabled", slog.Any("brokers", brokers), slog.String("topic", cfg.Notify.KafkaTopic))
	}

	dispatcher := notify.NewDispatcher(log, sinks,
		notify.WithBuffer(cfg.Notify.Buffer),
		notify.WithRecorder(collector),
	)
	// Stopped after the servers so events raised during shutdown still flush.
	dispatchCtx, stopDispatch := context.WithCancel(context.WithoutCancel(ctx))
	dispatchDone := make(chan struct{})
	go func() {
		defer close(dispatchDone)
		_ = dispatcher.Run(dispatchCtx)
	}()
	defer func() {
		stopDispatch()
		<-dispatchDone
	}()

	q, err := queue.New(ctx, st.appointments,
		queue.WithPolicy(domain.Policy{
			OpenHour:            cfg.Queue.OpenHour,
			CloseHour:           cfg.Queue.CloseHour,
			SlotDurationMinutes: cfg.Queue.SlotDurationMinutes,
		}),
		queue.WithLocation(cfg.Queue.Location),
		queue.WithNotifier(dispatcher),
		queue.WithRecorder(collector),
		queue.WithLogger(log),
	)
	if err != nil {
		return fmt.Errorf("load queue: %w", err)
	}

	tokens, err := buildTokenManager(cfg.Auth, log)
	if err != nil {
		return err
	}

	grpcServer := grpc.NewServer(
		grpc.StatsHandler(otelgrpc.NewServerHandler()),
		grpc.ChainUnaryInterceptor(
			defaultRequestTimeoutInterceptor(cfg.GRPCRequestTimeout),
			grpcTransport.StaffAuthInterceptor(tokens),
		),
	)
	grpcTransport.RegisterQueueServiceServer(grpcServer, grpcTransport.NewQueueServer(q, dispatcher, log))

	lis, err := net.Listen("tcp", cfg.GRPCAddr())
	if err != nil {
		log.Error("grpc listen failed", slog.Any("err", err), slog.String("grpc_addr", cfg.GRPCAddr()))
		return err
	}

	router := rest.NewRouter(rest.Deps{
		Queue:          q,
		Notifier:       dispatcher,
		Tokens:         tokens,
		Hub:            pushHub,
		Metrics:        collector,
		MetricsHandler: collector.Handler(),
		Ready:          ready,
		CORSOrigins:    cfg.CORSOrigins,
		Log:            log,
	})
	httpServer := rest.NewServer(cfg.HTTPAddr, otelhttp.NewHandler(router, "smartqueue.http"), log)

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	grpcErr := make(chan error, 1)
	go func() {
		grpcErr <- grpcServer.Serve(lis)
	}()
	log.Info("grpc server started", slog.String("grpc_addr", cfg.GRPCAddr()))

	httpErr := make(chan error, 1)
	go func() {
		httpErr <- httpServer.Serve(runCtx, cfg.ShutdownTimeout)
	}()

	var runErr error
	httpStopped := false
	select {
	case <-ctx.Done():
		log.Info("shutdown signal received")
	case err := <-grpcErr:
		if err != nil && !errors.Is(err, grpc.ErrServerStopped) {
			log.Error("grpc server stopped with error", slog.Any("err", err))
			runErr = err
		}
	case err := <-httpErr:
		if err != nil {
			log.Error("http server stopped with error", slog.Any("err", err))
			runErr = err
		}
		httpStopped = true
	}

	cancel()
	stopGRPC(log, grpcServer, cfg.ShutdownTimeout)
	if !httpStopped {
		if err := <-httpErr; err != nil && runErr == nil {
			runErr = err
		}
	}
	return runErr
}

// buildTokenManager prefers a configured bcrypt hash and falls back to hashing
// a plaintext password. Without either, staff login stays disabled.
func buildTokenManager(cfg config.AuthConfig, log *slog.Logger) (*auth.Manager, error) {
	hash := cfg.StaffPasswordHash
	if hash == "" && cfg.StaffPassword != "" {
		h, err := auth.HashPassword(cfg.StaffPassword)
		if err != nil {
			return nil, fmt.Errorf("hash staff password: %w", err)
		}
		hash = h
	}
	if hash == "" {
		log.Warn("no staff password configured; staff login is disabled")
	}

	secret := cfg.JWTSecret
	if secret == "" {
		s, err := auth.RandomSecret()
		if err != nil {
			return nil, fmt.Errorf("generate jwt secret: %w", err)
		}
		secret = s
		log.Warn("no jwt secret configured; tokens will not survive a restart")
	}

	return auth.NewManager(auth.Config{
		StaffUsername:     cfg.StaffUsername,
		StaffPasswordHash: hash,
		Secret:            secret,
		Issuer:            cfg.Issuer,
		TokenTTL:          cfg.TokenTTL,
	})
}
