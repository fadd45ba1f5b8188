package services

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rxtech-lab/recipes-mcp/internal/models"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// DBService handles database connection and lifecycle management
type DBService interface {
	GetDB() *gorm.DB
	Close() error
}

type dbService struct {
	db *gorm.DB
}

// NewSqliteDBService creates a new DBService with SQLite connection.
// ":memory:" opens a private in-memory database.
func NewSqliteDBService(dbPath string) (DBService, error) {
	inMemory := strings.Contains(dbPath, ":memory:")
	if !inMemory {
		// Create directory if it doesn't exist
		dir := filepath.Dir(dbPath)
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	service, err := newDBService(sqlite.Open(dbPath))
	if err != nil {
		return nil, err
	}

	if inMemory {
		// every pooled connection would otherwise get its own empty database
		sqlDB, err := service.db.DB()
		if err != nil {
			return nil, fmt.Errorf("failed to access database pool: %w", err)
		}
		sqlDB.SetMaxOpenConns(1)
	}
	return service, nil
}

// NewPostgresDBService creates a new DBService with a PostgreSQL connection
func NewPostgresDBService(databaseURL string) (DBService, error) {
	if databaseURL == "" {
		return nil, fmt.Errorf("postgres url is required")
	}
	return newDBService(postgres.Open(databaseURL))
}

func newDBService(dialector gorm.Dialector) (*dbService, error) {
	// Configure GORM logger - only log errors and slow queries
	gormLogger := logger.New(
		log.New(os.Stderr, "\r\n", log.LstdFlags),
		logger.Config{
			SlowThreshold:             time.Second,
			LogLevel:                  logger.Error,
			IgnoreRecordNotFoundError: true,
			Colorful:                  false,
		},
	)

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: gormLogger,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	service := &dbService{db: db}
	if err := service.migrate(); err != nil {
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return service, nil
}

// GetDB returns the underlying GORM database instance
func (s *dbService) GetDB() *gorm.DB {
	return s.db
}

func (s *dbService) migrate() error {
	return s.db.AutoMigrate(
		&models.TemplateRecord{},
		&models.TelemetryEvent{},
		&models.ActionSession{},
	)
}

// Close closes the database connection
func (s *dbService) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
