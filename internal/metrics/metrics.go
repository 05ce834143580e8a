// Package metrics exposes queue, notification and HTTP metrics to Prometheus.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "smartqueue"

type Collector struct {
	registry *prometheus.Registry

	ReservationsTotal  *prometheus.CounterVec
	CancellationsTotal *prometheus.CounterVec
	ServedTotal        prometheus.Counter
	QueueDepth         prometheus.Gauge

	NotificationsTotal   *prometheus.CounterVec
	NotificationsDropped *prometheus.CounterVec

	RequestsTotal   *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec
}

// NewCollector registers on a private registry so tests can build many collectors.
func NewCollector() *Collector {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	f := promauto.With(reg)

	return &Collector{
		registry: reg,

		ReservationsTotal: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "queue",
			Name:      "reservations_total",
			Help:      "Reservation attempts by result (ok or rejection reason).",
		}, []string{"result"}),

		CancellationsTotal: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "queue",
			Name:      "cancellations_total",
			Help:      "Cancellation attempts by result.",
		}, []string{"result"}),

		ServedTotal: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "queue",
			Name:      "served_total",
			Help:      "Appointments served.",
		}),

		QueueDepth: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "queue",
			Name:      "depth",
			Help:      "Live appointments in the queue.",
		}),

		NotificationsTotal: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "notify",
			Name:      "deliveries_total",
			Help:      "Notification deliveries by sink and outcome.",
		}, []string{"sink", "outcome"}),

		NotificationsDropped: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "notify",
			Name:      "dropped_total",
			Help:      "Notifications dropped because a sink's queue was full.",
		}, []string{"sink"}),

		RequestsTotal: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests by method, route, and status code.",
		}, []string{"method", "route", "status"}),

		RequestDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request latency distribution.",
			Buckets:   []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0, 2.5, 5.0},
		}, []string{"method", "route"}),
	}
}

func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{Registry: c.registry})
}

func (c *Collector) Reserved(result string) { c.ReservationsTotal.WithLabelValues(result).Inc() }
func (c *Collector) Canceled(result string) { c.CancellationsTotal.WithLabelValues(result).Inc() }
func (c *Collector) Served()                { c.ServedTotal.Inc() }
func (c *Collector) Depth(n int)            { c.QueueDepth.Set(float64(n)) }

func (c *Collector) Published(sink string, err error) {
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	c.NotificationsTotal.WithLabelValues(sink, outcome).Inc()
}

func (c *Collector) Dropped(sink string) { c.NotificationsDropped.WithLabelValues(sink).Inc() }

func (c *Collector) ObserveRequest(method, route string, status int, elapsed time.Duration) {
	c.RequestsTotal.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	c.RequestDuration.WithLabelValues(method, route).Observe(elapsed.Seconds())
}
