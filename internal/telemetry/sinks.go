package telemetry

import (
	"context"

	"github.com/rxtech-lab/recipes-mcp/internal/models"
	"go.uber.org/zap"
)

// LogSink writes every event as one structured log line.
type LogSink struct {
	logger *zap.Logger
}

func NewLogSink(logger *zap.Logger) *LogSink {
	return &LogSink{logger: logger.Named("telemetry")}
}

func (s *LogSink) Name() string { return "log" }

func (s *LogSink) CanHandle(EventName) bool { return true }

func (s *LogSink) Emit(_ context.Context, event Event) error {
	fields := []zap.Field{
		zap.String("event", string(event.Name)),
		zap.String("event_id", event.ID),
		zap.Time("ts", event.Timestamp),
		zap.Any("props", map[string]any(event.Payload)),
	}
	if event.SessionID != "" {
		fields = append(fields, zap.String("session_id", event.SessionID))
	}
	s.logger.Info("telemetry event", fields...)
	return nil
}

// EventStore persists telemetry rows.
type EventStore interface {
	CreateEvent(event *models.TelemetryEvent) error
}

// DBSink persists events through an EventStore. An optional allow-list restricts which events are stored.
type DBSink struct {
	store EventStore
	only  map[EventName]struct{}
}

func NewDBSink(store EventStore, only ...EventName) *DBSink {
	sink := &DBSink{store: store}
	if len(only) > 0 {
		sink.only = make(map[EventName]struct{}, len(only))
		for _, name := range only {
			sink.only[name] = struct{}{}
		}
	}
	return sink
}

func (s *DBSink) Name() string { return "db" }

func (s *DBSink) CanHandle(name EventName) bool {
	if s.only == nil {
		return true
	}
	_, ok := s.only[name]
	return ok
}

func (s *DBSink) Emit(_ context.Context, event Event) error {
	record := &models.TelemetryEvent{
		ID:        event.ID,
		Name:      string(event.Name),
		Payload:   models.JSON(event.Payload),
		CreatedAt: event.Timestamp,
	}
	if event.SessionID != "" {
		sessionID := event.SessionID
		record.SessionID = &sessionID
	}
	return s.store.CreateEvent(record)
}
