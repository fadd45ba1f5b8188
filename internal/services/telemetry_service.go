package services

import (
	"github.com/rxtech-lab/recipes-mcp/internal/models"
	"gorm.io/gorm"
)

// TelemetryService persists telemetry events. It satisfies telemetry.EventStore.
type TelemetryService interface {
	CreateEvent(event *models.TelemetryEvent) error
	ListEvents(filter EventFilter) ([]models.TelemetryEvent, error)
	CountEvents(name string) (int64, error)
}

// EventFilter narrows ListEvents. Zero values match everything.
type EventFilter struct {
	Name      string
	SessionID string
	Limit     int
}

type telemetryService struct {
	db *gorm.DB
}

func NewTelemetryService(db *gorm.DB) TelemetryService {
	return &telemetryService{db: db}
}

func (s *telemetryService) CreateEvent(event *models.TelemetryEvent) error {
	return s.db.Create(event).Error
}

// ListEvents returns matching events, oldest first
func (s *telemetryService) ListEvents(filter EventFilter) ([]models.TelemetryEvent, error) {
	query := s.db.Model(&models.TelemetryEvent{})

	if filter.Name != "" {
		query = query.Where("name = ?", filter.Name)
	}
	if filter.SessionID != "" {
		query = query.Where("session_id = ?", filter.SessionID)
	}
	if filter.Limit > 0 {
		query = query.Limit(filter.Limit)
	}

	var events []models.TelemetryEvent
	err := query.Order("created_at ASC").Find(&events).Error
	return events, err
}

// CountEvents counts events by name, or all events when name is empty
func (s *telemetryService) CountEvents(name string) (int64, error) {
	query := s.db.Model(&models.TelemetryEvent{})
	if name != "" {
		query = query.Where("name = ?", name)
	}
	var count int64
	err := query.Count(&count).Error
	return count, err
}
