package repository

import (
	"github.com/yukikurage/taskflow-api/internal/models"
	"gorm.io/gorm"
)

// GormDocumentRepository is a GORM implementation of DocumentRepository
type GormDocumentRepository struct {
	db *gorm.DB
}

// NewDocumentRepository creates a new DocumentRepository
func NewDocumentRepository(db *gorm.DB) DocumentRepository {
	return &GormDocumentRepository{db: db}
}

// Create inserts a metadata row
func (r *GormDocumentRepository) Create(doc *models.TaskDocument) error {
	return r.db.Create(doc).Error
}

// FindByID finds a document by ID
func (r *GormDocumentRepository) FindByID(id string) (*models.TaskDocument, error) {
	var doc models.TaskDocument
	if err := r.db.Where("id = ?", id).First(&doc).Error; err != nil {
		return nil, err
	}
	return &doc, nil
}

// ListByTask lists documents newest first
func (r *GormDocumentRepository) ListByTask(taskID string) ([]models.TaskDocument, error) {
	docs := []models.TaskDocument{}
	if err := r.db.Where("task_id = ?", taskID).Order("created_at DESC").Find(&docs).Error; err != nil {
		return nil, err
	}
	return docs, nil
}
