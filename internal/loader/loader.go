package loader

import (
	"context"
	"fmt"

	"github.com/rxtech-lab/recipes-mcp/internal/models"
	"github.com/rxtech-lab/recipes-mcp/internal/registry"
	"go.uber.org/zap"
)

// Loader moves datasets from a Source into the registry. Nothing reaches the registry without
// passing set validation.
type Loader struct {
	source   Source
	registry *registry.Registry
	logger   *zap.Logger
}

func New(source Source, reg *registry.Registry, logger *zap.Logger) *Loader {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Loader{source: source, registry: reg, logger: logger.Named("loader")}
}

func (l *Loader) Source() Source {
	return l.source
}

// Load reads the whole dataset from the source and applies it.
func (l *Loader) Load(ctx context.Context) error {
	templates, err := l.source.Load(ctx)
	if err != nil {
		return fmt.Errorf("failed to load templates from %s: %w", l.source.Name(), err)
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	return l.Apply(templates)
}

// Apply validates templates as one set and swaps them in. On error the registry keeps its
// current snapshot.
func (l *Loader) Apply(templates []models.ActionTemplate) error {
	if err := l.registry.Reload(templates); err != nil {
		return fmt.Errorf("templates from %s rejected: %w", l.source.Name(), err)
	}

	snapshot := l.registry.Snapshot()
	for _, tmpl := range snapshot.List(registry.Filter{}) {
		// deprecated templates cannot get here with a dangling replacement
		if tmpl.HasReplacement() {
			if _, ok := snapshot.GetByID(tmpl.ReplacementID); !ok {
				l.logger.Warn("replacement does not resolve",
					zap.String("template_id", tmpl.ID),
					zap.String("replacement_id", tmpl.ReplacementID),
				)
			}
		}
	}

	l.logger.Info("templates loaded",
		zap.String("source", l.source.Name()),
		zap.Int("templates", snapshot.Len()),
		zap.Uint64("version", l.registry.Version()),
	)
	return nil
}
