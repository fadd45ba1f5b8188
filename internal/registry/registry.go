package registry

import (
	"sync/atomic"

	"github.com/rxtech-lab/recipes-mcp/internal/metrics"
	"github.com/rxtech-lab/recipes-mcp/internal/models"
	"go.uber.org/zap"
)

// Registry serves the current template snapshot. Reloads replace the whole snapshot with a
// single pointer swap, so a reader holding a *Store never observes a mix of old and new data.
type Registry struct {
	current atomic.Pointer[Store]
	version atomic.Uint64
	logger  *zap.Logger
}

// Option configures a Registry.
type Option func(*Registry)

// WithLogger sets the logger used to report reloads.
func WithLogger(logger *zap.Logger) Option {
	return func(r *Registry) { r.logger = logger }
}

// New creates a registry serving an empty snapshot until the first Reload or Replace.
func New(opts ...Option) *Registry {
	r := &Registry{logger: zap.NewNop()}
	for _, opt := range opts {
		opt(r)
	}
	r.current.Store(EmptyStore())
	return r
}

// Snapshot returns the store to use for the duration of one request.
func (r *Registry) Snapshot() *Store {
	return r.current.Load()
}

// Version counts successful swaps. Zero means no dataset has been loaded yet.
func (r *Registry) Version() uint64 {
	return r.version.Load()
}

// Ready reports whether at least one dataset has been applied.
func (r *Registry) Ready() bool {
	return r.Version() > 0
}

// Replace swaps in an already-built store.
func (r *Registry) Replace(store *Store) {
	r.current.Store(store)
	version := r.version.Add(1)

	metrics.RegistrySnapshotVersion.Set(float64(version))
	metrics.RegistryReloadsTotal.WithLabelValues("applied").Inc()
	counts := store.CountByStatus()
	for _, status := range []models.TemplateStatus{models.TemplateStatusActive, models.TemplateStatusDeprecated, models.TemplateStatusDemoOnly} {
		metrics.RegistryTemplates.WithLabelValues(string(status)).Set(float64(counts[status]))
	}

	r.logger.Info("template snapshot applied",
		zap.Uint64("version", version),
		zap.Int("templates", store.Len()),
	)
}

// Reload builds a store from a complete replacement set. An invalid set is rejected and the
// previous snapshot keeps serving.
func (r *Registry) Reload(templates []models.ActionTemplate) error {
	store, err := NewStore(templates)
	if err != nil {
		metrics.RegistryReloadsTotal.WithLabelValues("rejected").Inc()
		r.logger.Warn("template dataset rejected", zap.Error(err))
		return err
	}
	r.Replace(store)
	return nil
}
