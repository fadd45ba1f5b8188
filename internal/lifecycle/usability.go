package lifecycle

import (
	"errors"
	"fmt"

	"github.com/rxtech-lab/recipes-mcp/internal/models"
)

var ErrInvalidTransition = errors.New("invalid usability transition")

// Usability is the template state as the user experiences it.
//
//	active -> deprecated -> superseded
//
// demo-only is fixed at authoring time and never transitions.
type Usability string

const (
	UsabilityActive     Usability = "active"
	UsabilityDeprecated Usability = "deprecated"
	UsabilitySuperseded Usability = "superseded"
	UsabilityDemoOnly   Usability = "demo-only"
)

var allowedTransitions = map[Usability][]Usability{
	UsabilityActive:     {UsabilityDeprecated},
	UsabilityDeprecated: {UsabilitySuperseded},
}

// UsabilityOf derives the usability state before any user action.
func UsabilityOf(t *models.ActionTemplate, overrides Overrides) Usability {
	if t.Status == models.TemplateStatusDemoOnly {
		return UsabilityDemoOnly
	}
	if ResolveEffectiveStatus(t, overrides) == models.TemplateStatusDeprecated {
		return UsabilityDeprecated
	}
	return UsabilityActive
}

// Transition validates a move between usability states. Staying in place is always allowed.
func Transition(from, to Usability) error {
	if from == to {
		return nil
	}
	for _, next := range allowedTransitions[from] {
		if next == to {
			return nil
		}
	}
	return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, from, to)
}

// CanSupersede reports whether the user can be moved to the resolved replacement.
func (r Resolution) CanSupersede() bool {
	return r.Replacement != nil && Transition(r.Usability, UsabilitySuperseded) == nil
}
