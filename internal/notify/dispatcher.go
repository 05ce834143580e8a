package notify

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
)

const DefaultBuffer = 256

// Recorder observes dispatcher outcomes.
type Recorder interface {
	Published(sink string, err error)
	Dropped(sink string)
}

type nopRecorder struct{}

func (nopRecorder) Published(string, error) {}
func (nopRecorder) Dropped(string)          {}

type DispatcherOption func(*Dispatcher)

// WithBuffer sets the per-sink queue length.
func WithBuffer(n int) DispatcherOption {
	return func(d *Dispatcher) {
		if n > 0 {
			d.buffer = n
		}
	}
}

func WithRecorder(r Recorder) DispatcherOption {
	return func(d *Dispatcher) {
		if r != nil {
			d.recorder = r
		}
	}
}

func WithDeliveryTimeout(timeout time.Duration) DispatcherOption {
	return func(d *Dispatcher) {
		if timeout > 0 {
			d.deliveryTimeout = timeout
		}
	}
}

type sinkQueue struct {
	sink   Sink
	events chan Event
}

// Dispatcher queues events without blocking the publisher. Every sink has its
// own queue and worker, so a stalled sink only loses its own events.
type Dispatcher struct {
	queues          []*sinkQueue
	buffer          int
	log             *slog.Logger
	recorder        Recorder
	deliveryTimeout time.Duration
	now             func() time.Time
}

func NewDispatcher(log *slog.Logger, sinks []Sink, opts ...DispatcherOption) *Dispatcher {
	if log == nil {
		log = slog.Default()
	}
	d := &Dispatcher{
		buffer:          DefaultBuffer,
		log:             log.With(slog.String("component", "notify.dispatcher")),
		recorder:        nopRecorder{},
		deliveryTimeout: 5 * time.Second,
		now:             time.Now,
	}
	for _, opt := range opts {
		opt(d)
	}
	for _, sink := range sinks {
		d.queues = append(d.queues, &sinkQueue{sink: sink, events: make(chan Event, d.buffer)})
	}
	return d
}

// Publish enqueues an event for every sink. A sink whose queue is full misses
// the event; the others still get it.
func (d *Dispatcher) Publish(ctx context.Context, topic, payload string) {
	ev := Event{ID: newEventID(), Topic: topic, Payload: payload, OccurredAt: d.now().UTC()}
	for _, q := range d.queues {
		select {
		case q.events <- ev:
		default:
			d.recorder.Dropped(q.sink.Name())
			d.log.WarnContext(ctx, "notification dropped",
				slog.String("sink", q.sink.Name()),
				slog.String("topic", topic),
			)
		}
	}
}

// Run delivers events until ctx is done, then flushes what each sink already
// has queued. It returns once every sink worker has stopped.
func (d *Dispatcher) Run(ctx context.Context) error {
	var wg sync.WaitGroup
	for _, q := range d.queues {
		wg.Add(1)
		go func() {
			defer wg.Done()
			d.work(ctx, q)
		}()
	}
	wg.Wait()
	return nil
}

func (d *Dispatcher) work(ctx context.Context, q *sinkQueue) {
	for {
		select {
		case <-ctx.Done():
			d.drain(q)
			return
		case ev := <-q.events:
			d.deliver(ctx, q.sink, ev)
		}
	}
}

func (d *Dispatcher) drain(q *sinkQueue) {
	ctx := context.Background()
	for {
		select {
		case ev := <-q.events:
			d.deliver(ctx, q.sink, ev)
		default:
			return
		}
	}
}

func (d *Dispatcher) deliver(ctx context.Context, sink Sink, ev Event) {
	sinkCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), d.deliveryTimeout)
	err := sink.Deliver(sinkCtx, ev)
	cancel()
	d.recorder.Published(sink.Name(), err)
	if err != nil {
		d.log.Warn("notification delivery failed",
			slog.String("sink", sink.Name()),
			slog.String("topic", ev.Topic),
			slog.Any("err", err),
		)
	}
}

func newEventID() uuid.UUID {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.New()
	}
	return id
}
