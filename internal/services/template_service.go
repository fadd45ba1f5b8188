package services

import (
	"fmt"

	"github.com/rxtech-lab/recipes-mcp/internal/models"
	"gorm.io/gorm"
)

// TemplateService handles the published template dataset stored in the database.
// The runtime registry never writes here; publishing is an import step.
type TemplateService interface {
	ListTemplateRecords() ([]models.TemplateRecord, error)
	GetTemplateRecord(templateID string) (*models.TemplateRecord, error)
	CountTemplates() (int64, error)
	// ReplaceAll validates templates as a set and replaces the whole published dataset
	ReplaceAll(templates []models.ActionTemplate) error
}

type templateService struct {
	db *gorm.DB
}

// NewTemplateService creates a new TemplateService
func NewTemplateService(db *gorm.DB) TemplateService {
	return &templateService{db: db}
}

// ListTemplateRecords returns every published template in publishing order
func (s *templateService) ListTemplateRecords() ([]models.TemplateRecord, error) {
	var records []models.TemplateRecord
	err := s.db.Order("position ASC").Order("id ASC").Find(&records).Error
	return records, err
}

// GetTemplateRecord returns one published template by its template id
func (s *templateService) GetTemplateRecord(templateID string) (*models.TemplateRecord, error) {
	var record models.TemplateRecord
	err := s.db.Where("template_id = ?", templateID).First(&record).Error
	if err != nil {
		return nil, err
	}
	return &record, nil
}

func (s *templateService) CountTemplates() (int64, error) {
	var count int64
	err := s.db.Model(&models.TemplateRecord{}).Count(&count).Error
	return count, err
}

func (s *templateService) ReplaceAll(templates []models.ActionTemplate) error {
	records := make([]models.TemplateRecord, 0, len(templates))
	normalized := make([]models.ActionTemplate, len(templates))
	for i, t := range templates {
		normalized[i] = t.Clone()
		normalized[i].Normalize()
	}
	if err := models.ValidateTemplateSet(normalized); err != nil {
		return fmt.Errorf("refusing to publish template dataset: %w", err)
	}
	for i, t := range normalized {
		records = append(records, models.TemplateRecord{
			TemplateID: t.ID,
			Position:   i,
			Status:     t.Status,
			Definition: t,
		})
	}

	return s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(&models.TemplateRecord{}).Error; err != nil {
			return fmt.Errorf("failed to clear template dataset: %w", err)
		}
		if len(records) == 0 {
			return nil
		}
		if err := tx.Create(&records).Error; err != nil {
			return fmt.Errorf("failed to insert template dataset: %w", err)
		}
		return nil
	})
}
