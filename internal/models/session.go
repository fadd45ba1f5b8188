package models

import "time"

// SessionStep is the presentation flow position of an action session
type SessionStep string

const (
	SessionStepSelect    SessionStep = "select"
	SessionStepConfigure SessionStep = "configure"
	SessionStepReview    SessionStep = "review"
	SessionStepExecute   SessionStep = "execute"
	SessionStepSucceeded SessionStep = "succeeded"
	SessionStepFailed    SessionStep = "failed"
)

// IsTerminal reports whether the flow has finished and must be restarted with a new selection.
func (s SessionStep) IsTerminal() bool {
	return s == SessionStepSucceeded || s == SessionStepFailed
}

// ActionSession carries the per-user flow state (selected template, step, simulated deprecation)
// explicitly so the store, compiler and resolver stay stateless.
type ActionSession struct {
	ID                  string      `gorm:"primaryKey" json:"id"`
	TemplateID          string      `gorm:"index" json:"template_id"`
	Step                SessionStep `gorm:"default:select;not null" json:"step"`
	SimulateDeprecation bool        `gorm:"default:false" json:"simulate_deprecation"`
	ReplacedFromID      string      `json:"replaced_from_id,omitempty"` // set once the user moved to a replacement
	Amount              string      `json:"amount,omitempty"`

	// Last execution outcome, user-facing copy only
	FailureCode    FailureCode `json:"failure_code,omitempty"`
	FailureLabel   string      `json:"failure_label,omitempty"`
	FailureMessage string      `json:"failure_message,omitempty"`
	ReceiptID      string      `json:"receipt_id,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	ExpiresAt time.Time `json:"expires_at"`
}
