package repository

import (
	"github.com/yukikurage/taskflow-api/internal/models"
	"gorm.io/gorm"
)

// GormNoteRepository is a GORM implementation of NoteRepository
type GormNoteRepository struct {
	db *gorm.DB
}

// NewNoteRepository creates a new NoteRepository
func NewNoteRepository(db *gorm.DB) NoteRepository {
	return &GormNoteRepository{db: db}
}

// Create appends a note
func (r *GormNoteRepository) Create(note *models.TaskNote) error {
	return r.db.Create(note).Error
}

// ListByTask lists notes newest first with their authors
func (r *GormNoteRepository) ListByTask(taskID string) ([]models.TaskNote, error) {
	notes := []models.TaskNote{}
	err := r.db.
		Preload("User", func(tx *gorm.DB) *gorm.DB { return tx.Unscoped() }).
		Where("task_id = ?", taskID).
		Order("created_at DESC").
		Find(&notes).Error
	if err != nil {
		return nil, err
	}
	return notes, nil
}
