package models

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"time"
)

// JSON is a custom type for JSON fields
type JSON map[string]interface{}

// Implement the driver.Valuer interface for JSON type
func (j JSON) Value() (driver.Value, error) {
	if j == nil {
		return nil, nil
	}
	return json.Marshal(j)
}

// Implement the sql.Scanner interface for JSON type
func (j *JSON) Scan(value interface{}) error {
	if value == nil {
		*j = nil
		return nil
	}

	var bytes []byte
	switch v := value.(type) {
	case []byte:
		bytes = v
	case string:
		bytes = []byte(v)
	default:
		return errors.New("type assertion to []byte failed")
	}

	if len(bytes) == 0 {
		*j = nil
		return nil
	}

	return json.Unmarshal(bytes, j)
}

// String renders the payload as compact JSON, or "" when it cannot be encoded.
func (j JSON) String() string {
	if j == nil {
		return ""
	}
	b, err := json.Marshal(j)
	if err != nil {
		return ""
	}
	return string(b)
}

// TemplateRecord is the published form of a template in the database dataset source.
// Position preserves the publisher's ordering so listings stay stable across reloads.
type TemplateRecord struct {
	ID         uint           `gorm:"primaryKey" json:"id"`
	TemplateID string         `gorm:"uniqueIndex;not null" json:"template_id"`
	Position   int            `gorm:"index;not null" json:"position"`
	Status     TemplateStatus `gorm:"index;not null" json:"status"`
	Definition ActionTemplate `gorm:"serializer:json;type:text" json:"definition"`
	CreatedAt  time.Time      `json:"created_at"`
	UpdatedAt  time.Time      `json:"updated_at"`
}

// TelemetryEvent is one structured event persisted by the database sink
type TelemetryEvent struct {
	ID        string    `gorm:"primaryKey" json:"id"`
	Name      string    `gorm:"index;not null" json:"name"`
	SessionID *string   `gorm:"index;type:varchar(64)" json:"session_id,omitempty"`
	Payload   JSON      `gorm:"type:text" json:"payload"`
	CreatedAt time.Time `json:"created_at"`
}
