// Package rest is the JSON-over-HTTP surface for customers and staff.
package rest

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"smartqueue/backend/internal/auth"
	"smartqueue/backend/internal/domain"
	"smartqueue/backend/internal/notify"
	"smartqueue/backend/internal/notify/hub"
	"smartqueue/backend/internal/service/queue"
)

type queueService interface {
	Reserve(ctx context.Context, in queue.ReserveInput) (domain.Appointment, error)
	Cancel(ctx context.Context, id uuid.UUID) error
	ServeNext(ctx context.Context) (domain.Appointment, error)
	PositionOf(id uuid.UUID) (int, error)
	WaitEstimate(date string, hour int) (queue.WaitEstimate, error)
	ListAll() []domain.Appointment
	SetDuration(ctx context.Context, minutes int) error
	SetHours(ctx context.Context, openHour, closeHour int) error
	Policy() domain.Policy
	Len() int
}

type tokenManager interface {
	Authenticate(username, password string) error
	Issue(subject, role string) (auth.Token, error)
	Validate(token string) (auth.Claims, error)
}

type requestObserver interface {
	ObserveRequest(method, route string, status int, elapsed time.Duration)
}

type Deps struct {
	Queue    queueService
	Notifier notify.Publisher
	Tokens   tokenManager
	Hub      *hub.Hub
	Metrics  requestObserver
	// MetricsHandler is mounted at /metrics when set.
	MetricsHandler http.Handler
	Ready          []ReadyCheck
	CORSOrigins    []string
	Log            *slog.Logger
}

func NewRouter(d Deps) *gin.Engine {
	log := d.Log
	if log == nil {
		log = slog.Default()
	}

	r := gin.New()
	r.RedirectTrailingSlash = false
	r.Use(gin.Recovery(), withRequestID(), withAccessLog(log.With(slog.String("component", "http.access"))))
	if len(d.CORSOrigins) > 0 {
		r.Use(WithCORS(d.CORSOrigins))
	}
	if d.Metrics != nil {
		r.Use(withMetrics(d.Metrics))
	}

	health := &healthHandler{checks: d.Ready}
	r.GET("/healthz", health.live)
	r.GET("/readyz", health.ready)
	if d.MetricsHandler != nil {
		r.GET("/metrics", gin.WrapH(d.MetricsHandler))
	}

	customers := &customerHandler{svc: d.Queue, log: log.With(slog.String("component", "http.customer"))}
	customers.RegisterRoutes(r)

	staff := &staffHandler{svc: d.Queue, notifier: d.Notifier, log: log.With(slog.String("component", "http.staff"))}
	logins := &authHandler{tokens: d.Tokens, log: log.With(slog.String("component", "http.auth"))}
	logins.RegisterRoutes(r)
	staff.RegisterRoutes(r, requireRole(d.Tokens, auth.RoleEmployee))

	if d.Hub != nil {
		ws := &wsHandler{hub: d.Hub, log: log.With(slog.String("component", "http.ws"))}
		r.GET("/ws", ws.subscribe)
	}
	return r
}
