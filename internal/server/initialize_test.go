package server

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rxtech-lab/recipes-mcp/internal/config"
	"github.com/rxtech-lab/recipes-mcp/internal/loader"
	"github.com/rxtech-lab/recipes-mcp/internal/models"
	"github.com/rxtech-lab/recipes-mcp/internal/services"
	"github.com/rxtech-lab/recipes-mcp/internal/telemetry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig() *config.Config {
	return &config.Config{
		DB: config.DBConfig{Driver: "sqlite", Path: ":memory:"},
		Templates: config.TemplatesConfig{
			Source:                     "embedded",
			WatchDebounce:              20 * time.Millisecond,
			AllowDeprecationSimulation: true,
		},
		Log: config.LogConfig{Level: "info"},
	}
}

func openTestDB(t *testing.T, cfg *config.Config) services.DBService {
	dbService, err := OpenDatabase(cfg)
	require.NoError(t, err)
	t.Cleanup(func() { _ = dbService.Close() })
	return dbService
}

func TestInitializeServices_Embedded(t *testing.T) {
	cfg := testConfig()
	dbService := openTestDB(t, cfg)

	svcs, err := InitializeServices(context.Background(), cfg, dbService.GetDB(), nil)
	require.NoError(t, err)
	defer svcs.Close()

	assert.True(t, svcs.Registry.Ready())
	assert.Equal(t, 4, svcs.Registry.Snapshot().Len())
	assert.Equal(t, "embedded", svcs.Loader.Source().Name())
	assert.Nil(t, svcs.Watcher)

	deps := svcs.ToolDeps()
	assert.Same(t, svcs.Registry, deps.Registry)
	assert.True(t, deps.AllowDeprecationSimulation)
}

func TestInitializeServices_SimulatedFailureCode(t *testing.T) {
	cfg := testConfig()
	cfg.Engine.SimulatedFailureCode = models.FailureUserRejected
	dbService := openTestDB(t, cfg)

	svcs, err := InitializeServices(context.Background(), cfg, dbService.GetDB(), nil)
	require.NoError(t, err)

	ctx := context.Background()
	session, err := svcs.SessionService.Start(ctx)
	require.NoError(t, err)
	_, err = svcs.SessionService.Select(ctx, session.ID, "deposit-usdc-morpho-base")
	require.NoError(t, err)
	_, err = svcs.SessionService.Configure(ctx, session.ID, "100")
	require.NoError(t, err)

	session, err = svcs.SessionService.Execute(ctx, session.ID, svcs.Engine)
	require.NoError(t, err)
	assert.Equal(t, models.SessionStepFailed, session.Step)
	assert.Equal(t, models.FailureUserRejected, session.FailureCode)
	assert.Equal(t, "Transaction was rejected in your wallet.", session.FailureMessage)
}

func TestInitializeServices_TelemetryReachesDatabase(t *testing.T) {
	cfg := testConfig()
	dbService := openTestDB(t, cfg)

	svcs, err := InitializeServices(context.Background(), cfg, dbService.GetDB(), nil)
	require.NoError(t, err)

	svcs.Tracker.Track(context.Background(), telemetry.EventCopySnippetClicked, telemetry.Payload{"snippet": "compiled"})

	count, err := svcs.TelemetryService.CountEvents(string(telemetry.EventCopySnippetClicked))
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
}

func TestInitializeServices_DBSourceSeedsEmptyTable(t *testing.T) {
	cfg := testConfig()
	cfg.Templates.Source = "db"
	dbService := openTestDB(t, cfg)

	svcs, err := InitializeServices(context.Background(), cfg, dbService.GetDB(), nil)
	require.NoError(t, err)

	count, err := svcs.TemplateService.CountTemplates()
	require.NoError(t, err)
	assert.Equal(t, int64(4), count)
	assert.Equal(t, 4, svcs.Registry.Snapshot().Len())
	assert.Equal(t, "db", svcs.Loader.Source().Name())
}

func TestInitializeServices_DBSourceKeepsPublishedTemplates(t *testing.T) {
	cfg := testConfig()
	cfg.Templates.Source = "db"
	dbService := openTestDB(t, cfg)

	templates, err := loader.NewEmbeddedSource().Load(context.Background())
	require.NoError(t, err)
	require.NoError(t, services.NewTemplateService(dbService.GetDB()).ReplaceAll(templates[:2]))

	svcs, err := InitializeServices(context.Background(), cfg, dbService.GetDB(), nil)
	require.NoError(t, err)
	assert.Equal(t, 2, svcs.Registry.Snapshot().Len())
}

func TestInitializeServices_FileSourceWithWatcher(t *testing.T) {
	data, err := os.ReadFile(filepath.Join("..", "assets", "templates.yaml"))
	require.NoError(t, err)
	path := filepath.Join(t.TempDir(), "templates.yaml")
	require.NoError(t, os.WriteFile(path, data, 0o644))

	cfg := testConfig()
	cfg.Templates.Source = "file"
	cfg.Templates.File = path
	cfg.Templates.Watch = true
	dbService := openTestDB(t, cfg)

	svcs, err := InitializeServices(context.Background(), cfg, dbService.GetDB(), nil)
	require.NoError(t, err)
	require.NotNil(t, svcs.Watcher)
	assert.NoError(t, svcs.Close())
	assert.Equal(t, 4, svcs.Registry.Snapshot().Len())
}

func TestInitializeServices_Errors(t *testing.T) {
	t.Run("missing_file", func(t *testing.T) {
		cfg := testConfig()
		cfg.Templates.Source = "file"
		cfg.Templates.File = filepath.Join(t.TempDir(), "missing.yaml")
		dbService := openTestDB(t, cfg)

		_, err := InitializeServices(context.Background(), cfg, dbService.GetDB(), nil)
		assert.Error(t, err)
	})

	t.Run("unknown_source", func(t *testing.T) {
		cfg := testConfig()
		cfg.Templates.Source = "s3"
		dbService := openTestDB(t, cfg)

		_, err := InitializeServices(context.Background(), cfg, dbService.GetDB(), nil)
		assert.EqualError(t, err, "unsupported template source: s3")
	})

	t.Run("watch_requires_file", func(t *testing.T) {
		cfg := testConfig()
		cfg.Templates.Watch = true
		dbService := openTestDB(t, cfg)

		_, err := InitializeServices(context.Background(), cfg, dbService.GetDB(), nil)
		assert.ErrorContains(t, err, "requires a file source")
	})

	t.Run("invalid_seed", func(t *testing.T) {
		cfg := testConfig()
		dbService := openTestDB(t, cfg)
		broken := []models.ActionTemplate{{ID: "a"}, {ID: "a"}}

		err := SeedTemplates(context.Background(), services.NewTemplateService(dbService.GetDB()), staticSource(broken))
		assert.ErrorContains(t, err, "failed to seed templates")
	})
}

func TestOpenDatabase_UnsupportedDriver(t *testing.T) {
	cfg := testConfig()
	cfg.DB.Driver = "mysql"
	_, err := OpenDatabase(cfg)
	assert.EqualError(t, err, "unsupported database driver: mysql")
}

type staticSource []models.ActionTemplate

func (s staticSource) Load(context.Context) ([]models.ActionTemplate, error) {
	return s, nil
}

func (s staticSource) Name() string { return "static" }
