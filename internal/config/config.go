package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/rxtech-lab/recipes-mcp/internal/models"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

type Config struct {
	Server    ServerConfig
	DB        DBConfig
	Templates TemplatesConfig
	Admin     AdminConfig
	Engine    EngineConfig
	Log       LogConfig
}

type ServerConfig struct {
	Port int
}

type DBConfig struct {
	// Driver is "sqlite" or "postgres"
	Driver      string
	Path        string
	PostgresURL string
}

type TemplatesConfig struct {
	// Source is "embedded", "file" or "db". Empty picks file when File is set, embedded otherwise.
	Source                     string
	File                       string
	Watch                      bool
	WatchDebounce              time.Duration
	AllowDeprecationSimulation bool
}

type AdminConfig struct {
	JWTSecret string
}

// EngineConfig drives the simulated execution engine used by the demo binaries.
type EngineConfig struct {
	// SimulatedFailureCode makes every execution fail with this code. Empty means succeed.
	SimulatedFailureCode models.FailureCode
}

type LogConfig struct {
	Level string
}

func Load() (*Config, error) {
	cfg := &Config{
		Server: ServerConfig{
			Port: getEnvInt("PORT", 8080),
		},
		DB: DBConfig{
			Driver:      getEnv("DB_DRIVER", "sqlite"),
			Path:        getEnv("DB_PATH", defaultDBPath()),
			PostgresURL: getEnv("POSTGRES_URL", ""),
		},
		Templates: TemplatesConfig{
			Source:                     getEnv("TEMPLATES_SOURCE", ""),
			File:                       getEnv("TEMPLATES_FILE", ""),
			Watch:                      getEnvBool("TEMPLATES_WATCH", false),
			WatchDebounce:              time.Duration(getEnvInt("TEMPLATES_WATCH_DEBOUNCE_MS", 500)) * time.Millisecond,
			AllowDeprecationSimulation: getEnvBool("ALLOW_DEPRECATION_SIMULATION", true),
		},
		Admin: AdminConfig{
			JWTSecret: getEnv("ADMIN_JWT_SECRET", ""),
		},
		Engine: EngineConfig{
			SimulatedFailureCode: models.FailureCode(strings.ToUpper(getEnv("SIMULATED_FAILURE_CODE", ""))),
		},
		Log: LogConfig{
			Level: getEnv("LOG_LEVEL", "info"),
		},
	}

	if cfg.Templates.Source == "" {
		cfg.Templates.Source = "embedded"
		if cfg.Templates.File != "" {
			cfg.Templates.Source = "file"
		}
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	switch c.DB.Driver {
	case "sqlite":
	case "postgres":
		if c.DB.PostgresURL == "" {
			return fmt.Errorf("POSTGRES_URL is required when DB_DRIVER=postgres")
		}
	default:
		return fmt.Errorf("unsupported DB_DRIVER %q", c.DB.Driver)
	}

	switch c.Templates.Source {
	case "embedded", "db":
	case "file":
		if c.Templates.File == "" {
			return fmt.Errorf("TEMPLATES_FILE is required when TEMPLATES_SOURCE=file")
		}
	default:
		return fmt.Errorf("unsupported TEMPLATES_SOURCE %q", c.Templates.Source)
	}

	if c.Templates.Watch && c.Templates.Source != "file" {
		return fmt.Errorf("TEMPLATES_WATCH requires a templates file")
	}
	if code := c.Engine.SimulatedFailureCode; code != "" && !code.Valid() {
		return fmt.Errorf("unsupported SIMULATED_FAILURE_CODE %q", code)
	}
	if _, err := zapcore.ParseLevel(c.Log.Level); err != nil {
		return fmt.Errorf("invalid LOG_LEVEL: %w", err)
	}
	return nil
}

// NewLogger builds the process logger. A disabled logger discards everything.
func (c *Config) NewLogger(enabled bool) (*zap.Logger, error) {
	if !enabled {
		return zap.NewNop(), nil
	}
	level, err := zapcore.ParseLevel(c.Log.Level)
	if err != nil {
		return nil, fmt.Errorf("invalid LOG_LEVEL: %w", err)
	}
	config := zap.NewProductionConfig()
	config.Level = zap.NewAtomicLevelAt(level)
	logger, err := config.Build()
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	return logger, nil
}

func defaultDBPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "recipes.db"
	}
	return home + "/.recipes-mcp/recipes.db"
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}
