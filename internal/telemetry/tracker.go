package telemetry

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rxtech-lab/recipes-mcp/internal/metrics"
	"go.uber.org/zap"
)

// Sink receives tracked events. Emit failures are logged by the tracker and never reach the
// operation that produced the event.
type Sink interface {
	// Name identifies the sink in logs and metrics.
	Name() string
	// CanHandle is used to check if the sink wants events with this name
	CanHandle(name EventName) bool
	// Emit delivers one event
	Emit(ctx context.Context, event Event) error
}

type Tracker interface {
	AddSink(sink Sink) error
	Track(ctx context.Context, name EventName, payload Payload) Event
	TrackForSession(ctx context.Context, sessionID string, name EventName, payload Payload) Event
}

type tracker struct {
	mu     sync.RWMutex
	sinks  []Sink
	logger *zap.Logger
	now    func() time.Time
}

// NewTracker creates a tracker with no sinks. With no sinks Track only counts events.
func NewTracker(logger *zap.Logger) Tracker {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &tracker{
		sinks:  []Sink{},
		logger: logger,
		now:    time.Now,
	}
}

func (t *tracker) AddSink(sink Sink) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.sinks = append(t.sinks, sink)
	return nil
}

func (t *tracker) Track(ctx context.Context, name EventName, payload Payload) Event {
	return t.TrackForSession(ctx, "", name, payload)
}

func (t *tracker) TrackForSession(ctx context.Context, sessionID string, name EventName, payload Payload) Event {
	if payload == nil {
		payload = Payload{}
	}
	event := Event{
		ID:        uuid.NewString(),
		Name:      name,
		SessionID: sessionID,
		Timestamp: t.now().UTC(),
		Payload:   payload,
	}
	metrics.TelemetryEventsTotal.WithLabelValues(string(name)).Inc()

	t.mu.RLock()
	sinks := make([]Sink, len(t.sinks))
	copy(sinks, t.sinks)
	t.mu.RUnlock()

	for _, sink := range sinks {
		if !sink.CanHandle(name) {
			continue
		}
		if err := sink.Emit(ctx, event); err != nil {
			metrics.TelemetrySinkErrors.WithLabelValues(sink.Name()).Inc()
			t.logger.Warn("telemetry sink failed",
				zap.String("sink", sink.Name()),
				zap.String("event", string(name)),
				zap.Error(err),
			)
		}
	}
	return event
}
