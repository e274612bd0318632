package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type TaskDocument struct {
	ID         string    `gorm:"type:varchar(36);primarykey" json:"id"`
	TaskID     string    `gorm:"type:varchar(36);not null;index" json:"task_id"`
	FileName   string    `gorm:"type:varchar(255);not null" json:"file_name"`
	FilePath   string    `gorm:"type:varchar(512);not null;uniqueIndex" json:"file_path"`
	FileSize   int64     `gorm:"not null" json:"file_size"`
	UploadedBy string    `gorm:"type:varchar(36);not null" json:"uploaded_by"`
	CreatedAt  time.Time `gorm:"index" json:"created_at"`
}

func (d *TaskDocument) BeforeCreate(tx *gorm.DB) error {
	if d.ID == "" {
		d.ID = uuid.NewString()
	}
	return nil
}
