package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// TaskNote is append-only: there is no update or delete path for a single note.
type TaskNote struct {
	ID        string    `gorm:"type:varchar(36);primarykey" json:"id"`
	TaskID    string    `gorm:"type:varchar(36);not null;index" json:"task_id"`
	UserID    string    `gorm:"type:varchar(36);not null" json:"user_id"`
	Note      string    `gorm:"type:text;not null" json:"note"`
	CreatedAt time.Time `gorm:"index" json:"created_at"`

	// Relations
	User User `gorm:"foreignKey:UserID" json:"-"`
}

func (n *TaskNote) BeforeCreate(tx *gorm.DB) error {
	if n.ID == "" {
		n.ID = uuid.NewString()
	}
	return nil
}
