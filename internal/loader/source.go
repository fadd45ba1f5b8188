package loader

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/rxtech-lab/recipes-mcp/internal/assets"
	"github.com/rxtech-lab/recipes-mcp/internal/models"
	"gopkg.in/yaml.v3"
)

var ErrUnsupportedFormat = errors.New("unsupported dataset format")

// Source provides a complete template dataset. Every call returns the whole set; sources never
// deliver partial updates.
type Source interface {
	Load(ctx context.Context) ([]models.ActionTemplate, error)
	// Name returns a human-readable identifier for this source.
	Name() string
}

// Dataset is the document shape of a published template file.
type Dataset struct {
	Templates []models.ActionTemplate `json:"templates" yaml:"templates"`
}

// DecodeYAML parses either a Dataset document or a bare list of templates. Unknown keys and
// unknown enum values are rejected.
func DecodeYAML(data []byte) ([]models.ActionTemplate, error) {
	var root yaml.Node
	if err := yaml.Unmarshal(data, &root); err != nil {
		return nil, fmt.Errorf("invalid yaml: %w", err)
	}
	if len(root.Content) == 0 {
		return []models.ActionTemplate{}, nil
	}

	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)

	if root.Content[0].Kind == yaml.SequenceNode {
		var templates []models.ActionTemplate
		if err := decoder.Decode(&templates); err != nil {
			return nil, fmt.Errorf("invalid template list: %w", err)
		}
		return templates, nil
	}

	var dataset Dataset
	if err := decoder.Decode(&dataset); err != nil {
		return nil, fmt.Errorf("invalid template dataset: %w", err)
	}
	return dataset.Templates, nil
}

// DecodeJSON parses either a Dataset document or a bare array of templates.
func DecodeJSON(data []byte) ([]models.ActionTemplate, error) {
	trimmed := bytes.TrimSpace(data)
	decoder := json.NewDecoder(bytes.NewReader(trimmed))
	decoder.DisallowUnknownFields()

	if len(trimmed) > 0 && trimmed[0] == '[' {
		var templates []models.ActionTemplate
		if err := decoder.Decode(&templates); err != nil {
			return nil, fmt.Errorf("invalid template list: %w", err)
		}
		return templates, nil
	}

	var dataset Dataset
	if err := decoder.Decode(&dataset); err != nil {
		return nil, fmt.Errorf("invalid template dataset: %w", err)
	}
	return dataset.Templates, nil
}

// EmbeddedSource serves the dataset compiled into the binary.
type EmbeddedSource struct {
	data []byte
}

func NewEmbeddedSource() *EmbeddedSource {
	return &EmbeddedSource{data: assets.DefaultTemplatesYAML}
}

func (s *EmbeddedSource) Load(ctx context.Context) ([]models.ActionTemplate, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	templates, err := DecodeYAML(s.data)
	if err != nil {
		return nil, fmt.Errorf("embedded source: %w", err)
	}
	return templates, nil
}

func (s *EmbeddedSource) Name() string {
	return "embedded"
}

// FileSource loads a dataset from a .yaml, .yml or .json file on disk.
type FileSource struct {
	path string
}

func NewFileSource(path string) *FileSource {
	return &FileSource{path: path}
}

func (s *FileSource) Load(ctx context.Context) ([]models.ActionTemplate, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(s.path)
	if err != nil {
		return nil, fmt.Errorf("file source: read %s: %w", s.path, err)
	}

	var templates []models.ActionTemplate
	switch strings.ToLower(filepath.Ext(s.path)) {
	case ".yaml", ".yml":
		templates, err = DecodeYAML(data)
	case ".json":
		templates, err = DecodeJSON(data)
	default:
		return nil, fmt.Errorf("file source: %w: %s", ErrUnsupportedFormat, s.path)
	}
	if err != nil {
		return nil, fmt.Errorf("file source: %s: %w", s.path, err)
	}
	return templates, nil
}

// Hash returns the SHA256 hex digest of the raw file bytes.
func (s *FileSource) Hash(_ context.Context) (string, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		return "", fmt.Errorf("file source: read %s: %w", s.path, err)
	}
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:]), nil
}

func (s *FileSource) Name() string {
	return "file:" + s.path
}

// Path returns the filesystem path this source reads from.
func (s *FileSource) Path() string { return s.path }

// RecordLister is the part of services.TemplateService the database source needs.
type RecordLister interface {
	ListTemplateRecords() ([]models.TemplateRecord, error)
}

// DBSource loads the dataset published to the database.
type DBSource struct {
	records RecordLister
}

func NewDBSource(records RecordLister) *DBSource {
	return &DBSource{records: records}
}

func (s *DBSource) Load(ctx context.Context) ([]models.ActionTemplate, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	records, err := s.records.ListTemplateRecords()
	if err != nil {
		return nil, fmt.Errorf("db source: %w", err)
	}
	templates := make([]models.ActionTemplate, 0, len(records))
	for _, record := range records {
		templates = append(templates, record.Definition)
	}
	return templates, nil
}

func (s *DBSource) Name() string {
	return "db"
}
