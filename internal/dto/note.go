package dto

import (
	"time"

	"github.com/yukikurage/taskflow-api/internal/models"
)

// TaskNoteDTO represents a note with its author
type TaskNoteDTO struct {
	ID        string          `json:"id"`
	TaskID    string          `json:"task_id"`
	UserID    string          `json:"user_id"`
	Note      string          `json:"note"`
	CreatedAt time.Time       `json:"created_at"`
	User      *UserSummaryDTO `json:"user,omitempty"`
}

// TaskDocumentDTO represents document metadata
type TaskDocumentDTO struct {
	ID         string    `json:"id"`
	TaskID     string    `json:"task_id"`
	FileName   string    `json:"file_name"`
	FilePath   string    `json:"file_path"`
	FileSize   int64     `json:"file_size"`
	UploadedBy string    `json:"uploaded_by"`
	CreatedAt  time.Time `json:"created_at"`
}

func ToTaskNoteDTO(note models.TaskNote) TaskNoteDTO {
	return TaskNoteDTO{
		ID:        note.ID,
		TaskID:    note.TaskID,
		UserID:    note.UserID,
		Note:      note.Note,
		CreatedAt: note.CreatedAt,
		User:      toUserSummary(note.User),
	}
}

func ToTaskNoteDTOs(notes []models.TaskNote) []TaskNoteDTO {
	out := make([]TaskNoteDTO, len(notes))
	for i, note := range notes {
		out[i] = ToTaskNoteDTO(note)
	}
	return out
}

func ToTaskDocumentDTO(doc models.TaskDocument) TaskDocumentDTO {
	return TaskDocumentDTO{
		ID:         doc.ID,
		TaskID:     doc.TaskID,
		FileName:   doc.FileName,
		FilePath:   doc.FilePath,
		FileSize:   doc.FileSize,
		UploadedBy: doc.UploadedBy,
		CreatedAt:  doc.CreatedAt,
	}
}

func ToTaskDocumentDTOs(docs []models.TaskDocument) []TaskDocumentDTO {
	out := make([]TaskDocumentDTO, len(docs))
	for i, doc := range docs {
		out[i] = ToTaskDocumentDTO(doc)
	}
	return out
}
