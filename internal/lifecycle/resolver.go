package lifecycle

import (
	"github.com/rxtech-lab/recipes-mcp/internal/metrics"
	"github.com/rxtech-lab/recipes-mcp/internal/models"
	"github.com/rxtech-lab/recipes-mcp/internal/registry"
)

// Overrides are per-call adjustments supplied by the caller. They never persist and never
// touch the stored record.
type Overrides struct {
	// ForceDeprecated models the manual "simulate deprecation" toggle.
	ForceDeprecated bool `json:"forceDeprecated"`
}

// SnapshotSource yields the store snapshot a resolution runs against.
type SnapshotSource interface {
	Snapshot() *registry.Store
}

type staticSource struct {
	store *registry.Store
}

func (s staticSource) Snapshot() *registry.Store {
	return s.store
}

// Resolver answers lifecycle questions about templates against the current snapshot
type Resolver struct {
	source SnapshotSource
}

// NewResolver resolves against whatever snapshot source currently serves, usually a *registry.Registry.
func NewResolver(source SnapshotSource) *Resolver {
	return &Resolver{source: source}
}

// NewStoreResolver pins a resolver to one immutable store.
func NewStoreResolver(store *registry.Store) *Resolver {
	return &Resolver{source: staticSource{store: store}}
}

// Resolution is everything the presentation layer needs to render one template's lifecycle state.
type Resolution struct {
	Template        *models.ActionTemplate `json:"template"`
	EffectiveStatus models.TemplateStatus  `json:"effectiveStatus"`
	Usability       Usability              `json:"usability"`
	// Simulated is true when the deprecation comes only from an override.
	Simulated   bool                   `json:"simulated"`
	Replacement *models.ActionTemplate `json:"replacement,omitempty"`
	// DanglingReplacement flags a replacementId that does not resolve. The caller logs it and
	// lets the user continue with the original template.
	DanglingReplacement bool `json:"danglingReplacement"`
}

// ResolveEffectiveStatus returns the stored status unless the override forces deprecation.
func ResolveEffectiveStatus(t *models.ActionTemplate, overrides Overrides) models.TemplateStatus {
	if overrides.ForceDeprecated {
		return models.TemplateStatusDeprecated
	}
	return t.Status
}

// ResolveReplacement looks up the template's successor. It returns false when no successor is
// named or when the named id does not exist in the snapshot.
func (r *Resolver) ResolveReplacement(t *models.ActionTemplate) (*models.ActionTemplate, bool) {
	replacement, _, ok := r.resolveReplacement(t)
	return replacement, ok
}

func (r *Resolver) resolveReplacement(t *models.ActionTemplate) (*models.ActionTemplate, bool, bool) {
	if t == nil || !t.HasReplacement() {
		metrics.ReplacementLookupsTotal.WithLabelValues("none").Inc()
		return nil, false, false
	}
	replacement, ok := r.source.Snapshot().GetByID(t.ReplacementID)
	if !ok {
		metrics.ReplacementLookupsTotal.WithLabelValues("dangling").Inc()
		return nil, true, false
	}
	metrics.ReplacementLookupsTotal.WithLabelValues("resolved").Inc()
	return replacement, false, true
}

// Resolve computes effective status, usability and replacement in one pass.
func (r *Resolver) Resolve(t *models.ActionTemplate, overrides Overrides) Resolution {
	effective := ResolveEffectiveStatus(t, overrides)
	replacement, dangling, _ := r.resolveReplacement(t)

	return Resolution{
		Template:            t,
		EffectiveStatus:     effective,
		Usability:           UsabilityOf(t, overrides),
		Simulated:           overrides.ForceDeprecated && t.Status == models.TemplateStatusActive,
		Replacement:         replacement,
		DanglingReplacement: dangling,
	}
}

// Lookup fetches a template from the current snapshot and resolves it.
func (r *Resolver) Lookup(id string, overrides Overrides) (Resolution, bool) {
	t, ok := r.source.Snapshot().GetByID(id)
	if !ok {
		return Resolution{}, false
	}
	return r.Resolve(t, overrides), true
}
