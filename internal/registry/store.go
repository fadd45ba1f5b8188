package registry

import (
	"errors"
	"fmt"

	"github.com/rxtech-lab/recipes-mcp/internal/models"
)

var ErrTemplateNotFound = errors.New("template not found")

// Filter narrows a listing. Zero-valued fields match everything.
type Filter struct {
	Status   models.TemplateStatus
	Category models.Category
	ChainID  uint64
	// ExcludeDeprecated hides deprecated templates the way the action picker does.
	ExcludeDeprecated bool
}

// IsEmpty reports whether the filter matches every template.
func (f Filter) IsEmpty() bool {
	return f == Filter{}
}

func (f Filter) matches(t *models.ActionTemplate) bool {
	if f.Status != "" && t.Status != f.Status {
		return false
	}
	if f.Category != "" && t.Category != f.Category {
		return false
	}
	if f.ChainID != 0 && t.ChainID != f.ChainID {
		return false
	}
	if f.ExcludeDeprecated && t.Status == models.TemplateStatusDeprecated {
		return false
	}
	return true
}

// Store is an immutable, validated snapshot of the template dataset.
// It is safe for unlimited concurrent readers; nothing mutates it after NewStore returns.
type Store struct {
	templates []models.ActionTemplate
	byID      map[string]int
}

// NewStore validates templates as one set, normalizes token addresses and copies every record.
func NewStore(templates []models.ActionTemplate) (*Store, error) {
	normalized := make([]models.ActionTemplate, len(templates))
	for i, t := range templates {
		normalized[i] = t.Clone()
		normalized[i].Normalize()
	}

	if err := models.ValidateTemplateSet(normalized); err != nil {
		return nil, fmt.Errorf("failed to build template store: %w", err)
	}

	byID := make(map[string]int, len(normalized))
	for i, t := range normalized {
		byID[t.ID] = i
	}

	return &Store{
		templates: normalized,
		byID:      byID,
	}, nil
}

// EmptyStore is the snapshot served before the first dataset load.
func EmptyStore() *Store {
	return &Store{byID: map[string]int{}}
}

// GetByID returns a copy of the template with id. A miss is a normal outcome, not an error.
func (s *Store) GetByID(id string) (*models.ActionTemplate, bool) {
	idx, ok := s.byID[id]
	if !ok {
		return nil, false
	}
	t := s.templates[idx].Clone()
	return &t, true
}

// MustGet is GetByID for callers that treat a miss as ErrTemplateNotFound.
func (s *Store) MustGet(id string) (*models.ActionTemplate, error) {
	t, ok := s.GetByID(id)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrTemplateNotFound, id)
	}
	return t, nil
}

// List returns matching templates in insertion order.
func (s *Store) List(filter Filter) []models.ActionTemplate {
	result := make([]models.ActionTemplate, 0, len(s.templates))
	for i := range s.templates {
		if filter.matches(&s.templates[i]) {
			result = append(result, s.templates[i].Clone())
		}
	}
	return result
}

// Len returns the number of templates in the snapshot.
func (s *Store) Len() int {
	return len(s.templates)
}

// IDs returns template ids in insertion order.
func (s *Store) IDs() []string {
	ids := make([]string, len(s.templates))
	for i, t := range s.templates {
		ids[i] = t.ID
	}
	return ids
}

// CountByStatus is used for the registry gauges.
func (s *Store) CountByStatus() map[models.TemplateStatus]int {
	counts := make(map[models.TemplateStatus]int, 3)
	for _, t := range s.templates {
		counts[t.Status]++
	}
	return counts
}
