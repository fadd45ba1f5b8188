package telemetry

import (
	"errors"
	"fmt"
	"time"
)

var ErrUnknownEvent = errors.New("unknown telemetry event")

// EventName is part of the telemetry contract. Sinks and dashboards key on these exact strings.
type EventName string

const (
	EventTemplateSelected       EventName = "template_selected"
	EventTemplateCompiled       EventName = "template_compiled"
	EventDeprecationEncountered EventName = "deprecation_encountered"
	EventReplacementChosen      EventName = "replacement_chosen"
	EventReplacementDangling    EventName = "replacement_dangling"
	EventActionProceedClicked   EventName = "action_proceed_clicked"
	EventExecutionFailed        EventName = "execution_failed"
	EventExecutionSucceeded     EventName = "execution_succeeded"
	EventCopySnippetClicked     EventName = "copy_snippet_clicked"
	EventWidgetRendered         EventName = "widget_rendered"
	EventTabViewed              EventName = "tab_viewed"
)

var knownEvents = map[EventName]struct{}{
	EventTemplateSelected:       {},
	EventTemplateCompiled:       {},
	EventDeprecationEncountered: {},
	EventReplacementChosen:      {},
	EventReplacementDangling:    {},
	EventActionProceedClicked:   {},
	EventExecutionFailed:        {},
	EventExecutionSucceeded:     {},
	EventCopySnippetClicked:     {},
	EventWidgetRendered:         {},
	EventTabViewed:              {},
}

// ParseEventName accepts only names in the contract.
func ParseEventName(s string) (EventName, error) {
	name := EventName(s)
	if _, ok := knownEvents[name]; !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownEvent, s)
	}
	return name, nil
}

// Payload is the flat key/value body of an event.
type Payload map[string]any

// Event is one tracked state transition.
type Event struct {
	ID        string    `json:"id"`
	Name      EventName `json:"event"`
	SessionID string    `json:"sessionId,omitempty"`
	Timestamp time.Time `json:"ts"`
	Payload   Payload   `json:"props"`
}
