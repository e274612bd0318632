package services

import (
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/yukikurage/taskflow-api/internal/constants"
	"github.com/yukikurage/taskflow-api/internal/models"
	"github.com/yukikurage/taskflow-api/internal/repository"
)

var (
	ErrNoteEmpty   = errors.New("note cannot be empty")
	ErrNoteTooLong = errors.New("note is too long")
)

// NoteService appends and lists task notes
type NoteService struct {
	noteRepo repository.NoteRepository
	now      func() time.Time
}

func NewNoteService(noteRepo repository.NoteRepository) *NoteService {
	return &NoteService{
		noteRepo: noteRepo,
		now:      time.Now,
	}
}

// AddNote appends a note by author. The returned note carries the author.
func (s *NoteService) AddNote(taskID string, author *models.User, text string) (*models.TaskNote, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, ErrNoteEmpty
	}
	if utf8.RuneCountInString(text) > constants.MaxNoteLength {
		return nil, ErrNoteTooLong
	}

	note := &models.TaskNote{
		TaskID:    taskID,
		UserID:    author.ID,
		Note:      text,
		CreatedAt: s.now().UTC(),
	}

	if err := s.noteRepo.Create(note); err != nil {
		return nil, fmt.Errorf("failed to add note: %w", err)
	}

	note.User = *author
	return note, nil
}

// ListNotes returns the notes of a task newest first
func (s *NoteService) ListNotes(taskID string) ([]models.TaskNote, error) {
	notes, err := s.noteRepo.ListByTask(taskID)
	if err != nil {
		return nil, fmt.Errorf("failed to list notes: %w", err)
	}
	return notes, nil
}
