package repository

import (
	"time"

	"github.com/yukikurage/taskflow-api/internal/models"
)

// UserRepository defines the interface for user data access
type UserRepository interface {
	// Create creates a new user
	Create(user *models.User) error

	// FindByID finds an active user by ID
	FindByID(id string) (*models.User, error)

	// FindByEmail finds an active user by email
	FindByEmail(email string) (*models.User, error)

	// EmailTaken reports whether the email is held by any user, deleted or not
	EmailTaken(email string) (bool, error)

	// List lists active users, newest first, optionally filtered by role
	List(role *models.UserRole) ([]models.User, error)

	// Delete soft deletes a user; tasks referencing the user are kept
	Delete(id string) error
}

// TaskRepository defines the interface for task data access
type TaskRepository interface {
	// Create creates a new task
	Create(task *models.Task) error

	// FindByID finds a task by ID with assignee and assigner loaded
	FindByID(id string) (*models.Task, error)

	// List retrieves hydrated tasks, newest first
	List(filter TaskFilter) ([]models.Task, int64, error)

	// Update applies a partial update to a task
	Update(id string, updates map[string]interface{}) error

	// Delete removes a task with its notes and document rows and returns
	// the removed documents so their stored objects can be cleaned up
	Delete(id string) ([]models.TaskDocument, error)

	// Stats counts tasks by status within the filter scope
	Stats(filter TaskFilter, now time.Time) (*TaskStats, error)
}

// TaskFilter holds filtering options for listing tasks
type TaskFilter struct {
	AssignedTo *string
	Status     *models.TaskStatus
	// OverdueAt selects tasks that are overdue at the given instant
	OverdueAt *time.Time
	Page      int
	PageSize  int
}

// TaskStats holds aggregate task counts
type TaskStats struct {
	Total      int64
	Pending    int64
	InProgress int64
	Completed  int64
	Overdue    int64
	ByAssignee map[string]int64
}

// NoteRepository defines the interface for task note data access
type NoteRepository interface {
	// Create appends a note
	Create(note *models.TaskNote) error

	// ListByTask lists the notes of a task newest first with authors loaded
	ListByTask(taskID string) ([]models.TaskNote, error)
}

// DocumentRepository defines the interface for task document metadata
type DocumentRepository interface {
	// Create inserts a metadata row
	Create(doc *models.TaskDocument) error

	// FindByID finds a document by ID
	FindByID(id string) (*models.TaskDocument, error)

	// ListByTask lists the documents of a task newest first
	ListByTask(taskID string) ([]models.TaskDocument, error)
}
