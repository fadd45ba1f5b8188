package server

import (
	"context"
	"fmt"

	"github.com/rxtech-lab/recipes-mcp/internal/config"
	"github.com/rxtech-lab/recipes-mcp/internal/engine"
	"github.com/rxtech-lab/recipes-mcp/internal/loader"
	"github.com/rxtech-lab/recipes-mcp/internal/registry"
	"github.com/rxtech-lab/recipes-mcp/internal/services"
	"github.com/rxtech-lab/recipes-mcp/internal/telemetry"
	"github.com/rxtech-lab/recipes-mcp/internal/tools"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Services is everything the binaries wire into the MCP and API servers.
type Services struct {
	Registry         *registry.Registry
	Loader           *loader.Loader
	Watcher          *loader.Watcher
	Tracker          telemetry.Tracker
	TemplateService  services.TemplateService
	TelemetryService services.TelemetryService
	SessionService   services.SessionService
	Engine           engine.Engine
	Config           *config.Config
	Logger           *zap.Logger
}

// OpenDatabase opens the configured database and migrates it.
func OpenDatabase(cfg *config.Config) (services.DBService, error) {
	switch cfg.DB.Driver {
	case "postgres":
		return services.NewPostgresDBService(cfg.DB.PostgresURL)
	case "sqlite", "":
		return services.NewSqliteDBService(cfg.DB.Path)
	default:
		return nil, fmt.Errorf("unsupported database driver: %s", cfg.DB.Driver)
	}
}

// InitializeServices builds the registry, loads the initial dataset and wires telemetry and
// the session service on top of db.
func InitializeServices(ctx context.Context, cfg *config.Config, db *gorm.DB, logger *zap.Logger) (*Services, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	templateService := services.NewTemplateService(db)
	telemetryService := services.NewTelemetryService(db)

	tracker := telemetry.NewTracker(logger)
	RegisterSinks(tracker, logger, telemetryService)

	reg := registry.New(registry.WithLogger(logger))

	source, err := newSource(ctx, cfg, templateService)
	if err != nil {
		return nil, err
	}
	templateLoader := loader.New(source, reg, logger)
	if err := templateLoader.Load(ctx); err != nil {
		return nil, err
	}

	simulated := engine.NewSimulatedEngine()
	if code := cfg.Engine.SimulatedFailureCode; code != "" {
		simulated.FailWith(code)
		logger.Info("simulated engine fails every execution", zap.String("code", string(code)))
	}

	svcs := &Services{
		Registry:         reg,
		Loader:           templateLoader,
		Tracker:          tracker,
		TemplateService:  templateService,
		TelemetryService: telemetryService,
		SessionService: services.NewSessionService(db, reg, tracker,
			services.WithSessionLogger(logger),
			services.WithDeprecationSimulation(cfg.Templates.AllowDeprecationSimulation),
		),
		Engine: simulated,
		Config: cfg,
		Logger: logger,
	}

	if cfg.Templates.Watch {
		fileSource, ok := source.(*loader.FileSource)
		if !ok {
			return nil, fmt.Errorf("template watching requires a file source, got %s", source.Name())
		}
		watcher := loader.NewWatcher(fileSource, templateLoader,
			loader.WithWatchDebounce(cfg.Templates.WatchDebounce),
			loader.WithWatchLogger(logger),
		)
		if err := watcher.Start(); err != nil {
			return nil, fmt.Errorf("failed to watch templates: %w", err)
		}
		svcs.Watcher = watcher
	}

	return svcs, nil
}

// RegisterSinks attaches the log and database telemetry sinks.
func RegisterSinks(tracker telemetry.Tracker, logger *zap.Logger, events telemetry.EventStore) {
	if err := tracker.AddSink(telemetry.NewLogSink(logger)); err != nil {
		logger.Error("failed to register log sink", zap.Error(err))
	}
	if err := tracker.AddSink(telemetry.NewDBSink(events)); err != nil {
		logger.Error("failed to register db sink", zap.Error(err))
	}
}

// ToolDeps returns the collaborators the MCP tools read from.
func (s *Services) ToolDeps() tools.Deps {
	return tools.Deps{
		Registry:                   s.Registry,
		Tracker:                    s.Tracker,
		AllowDeprecationSimulation: s.Config.Templates.AllowDeprecationSimulation,
	}
}

// Close stops the dataset watcher. The database is owned by the caller.
func (s *Services) Close() error {
	if s.Watcher != nil {
		return s.Watcher.Stop()
	}
	return nil
}

// newSource picks the dataset source. An empty template table is seeded from the embedded
// dataset so the db source always starts with something to serve.
func newSource(ctx context.Context, cfg *config.Config, templateService services.TemplateService) (loader.Source, error) {
	switch cfg.Templates.Source {
	case "file":
		return loader.NewFileSource(cfg.Templates.File), nil
	case "db":
		count, err := templateService.CountTemplates()
		if err != nil {
			return nil, fmt.Errorf("failed to count stored templates: %w", err)
		}
		if count == 0 {
			if err := SeedTemplates(ctx, templateService, loader.NewEmbeddedSource()); err != nil {
				return nil, err
			}
		}
		return loader.NewDBSource(templateService), nil
	case "embedded", "":
		return loader.NewEmbeddedSource(), nil
	default:
		return nil, fmt.Errorf("unsupported template source: %s", cfg.Templates.Source)
	}
}

// SeedTemplates publishes the dataset read from source into the template table.
func SeedTemplates(ctx context.Context, templateService services.TemplateService, source loader.Source) error {
	templates, err := source.Load(ctx)
	if err != nil {
		return fmt.Errorf("failed to read seed templates from %s: %w", source.Name(), err)
	}
	if err := templateService.ReplaceAll(templates); err != nil {
		return fmt.Errorf("failed to seed templates: %w", err)
	}
	return nil
}
