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
	"gorm.io/gorm"
)

var (
	ErrTaskNotFound    = errors.New("task not found")
	ErrTitleRequired   = errors.New("title is required")
	ErrTitleTooLong    = errors.New("title is too long")
	ErrInvalidStatus   = errors.New("status must be pending, in_progress or completed")
	ErrInvalidPriority = errors.New("priority must be low, medium or high")
	ErrInvalidAssignee = errors.New("tasks can only be assigned to an existing employee")
)

// TaskService handles task business logic
type TaskService struct {
	taskRepo repository.TaskRepository
	userRepo repository.UserRepository
	now      func() time.Time
}

// NewTaskService creates a new TaskService
func NewTaskService(taskRepo repository.TaskRepository, userRepo repository.UserRepository) *TaskService {
	return &TaskService{
		taskRepo: taskRepo,
		userRepo: userRepo,
		now:      time.Now,
	}
}

// Now returns the service clock, used for overdue checks.
func (s *TaskService) Now() time.Time {
	return s.now().UTC()
}

// CreateTaskInput represents input for creating a task
type CreateTaskInput struct {
	Title       string
	Description string
	AssignedTo  string
	AssignedBy  string
	Priority    models.TaskPriority
	DueDate     *time.Time
	AdminNote   *string
}

// ListTasksInput represents filters for listing tasks
type ListTasksInput struct {
	// OwnerID restricts the list to tasks assigned to that user
	OwnerID     *string
	Status      *models.TaskStatus
	OverdueOnly bool
	Page        int
	PageSize    int
}

// UpdateTaskInput represents a partial update. Nil fields are untouched.
type UpdateTaskInput struct {
	Title          *string
	Description    *string
	AssignedTo     *string
	Status         *models.TaskStatus
	Priority       *models.TaskPriority
	DueDate        *time.Time
	ClearDueDate   bool
	AdminNote      *string
	ClearAdminNote bool
}

// CreateTask creates a pending task and returns it hydrated
func (s *TaskService) CreateTask(input CreateTaskInput) (*models.Task, error) {
	title, err := validateTitle(input.Title)
	if err != nil {
		return nil, err
	}

	priority := input.Priority
	if priority == "" {
		priority = models.TaskPriorityMedium
	}
	if !priority.Valid() {
		return nil, ErrInvalidPriority
	}

	if err := s.ensureEmployee(input.AssignedTo); err != nil {
		return nil, err
	}

	now := s.Now()
	task := &models.Task{
		Title:       title,
		Description: input.Description,
		AssignedTo:  input.AssignedTo,
		AssignedBy:  input.AssignedBy,
		Status:      models.TaskStatusPending,
		Priority:    priority,
		DueDate:     input.DueDate,
		AdminNote:   input.AdminNote,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.taskRepo.Create(task); err != nil {
		return nil, fmt.Errorf("failed to create task: %w", err)
	}

	return s.GetTask(task.ID)
}

// ListTasks returns hydrated tasks, newest first
func (s *TaskService) ListTasks(input ListTasksInput) ([]models.Task, int64, error) {
	filter := repository.TaskFilter{
		AssignedTo: input.OwnerID,
		Page:       input.Page,
		PageSize:   input.PageSize,
	}

	if input.Status != nil {
		if !input.Status.Valid() {
			return nil, 0, ErrInvalidStatus
		}
		filter.Status = input.Status
	}
	if input.OverdueOnly {
		now := s.Now()
		filter.OverdueAt = &now
	}

	tasks, total, err := s.taskRepo.List(filter)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list tasks: %w", err)
	}

	return tasks, total, nil
}

// GetTask returns a task with assignee and assigner loaded
func (s *TaskService) GetTask(taskID string) (*models.Task, error) {
	task, err := s.taskRepo.FindByID(taskID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTaskNotFound
		}
		return nil, fmt.Errorf("failed to find task: %w", err)
	}

	return task, nil
}

// UpdateTask applies a partial update
func (s *TaskService) UpdateTask(taskID string, input UpdateTaskInput) (*models.Task, error) {
	task, err := s.GetTask(taskID)
	if err != nil {
		return nil, err
	}

	updates := map[string]interface{}{}

	if input.Title != nil {
		title, err := validateTitle(*input.Title)
		if err != nil {
			return nil, err
		}
		updates["title"] = title
	}
	if input.Description != nil {
		updates["description"] = *input.Description
	}
	if input.AssignedTo != nil && *input.AssignedTo != task.AssignedTo {
		if err := s.ensureEmployee(*input.AssignedTo); err != nil {
			return nil, err
		}
		updates["assigned_to"] = *input.AssignedTo
	}
	if input.Status != nil {
		if !input.Status.Valid() {
			return nil, ErrInvalidStatus
		}
		updates["status"] = *input.Status
	}
	if input.Priority != nil {
		if !input.Priority.Valid() {
			return nil, ErrInvalidPriority
		}
		updates["priority"] = *input.Priority
	}
	if input.ClearDueDate {
		updates["due_date"] = nil
	} else if input.DueDate != nil {
		updates["due_date"] = *input.DueDate
	}
	if input.ClearAdminNote {
		updates["admin_note"] = nil
	} else if input.AdminNote != nil {
		updates["admin_note"] = *input.AdminNote
	}

	if len(updates) == 0 {
		return task, nil
	}

	return s.apply(taskID, updates)
}

// UpdateTaskStatus changes only the status. Setting the current status again succeeds.
func (s *TaskService) UpdateTaskStatus(taskID string, status models.TaskStatus) (*models.Task, error) {
	if !status.Valid() {
		return nil, ErrInvalidStatus
	}

	if _, err := s.GetTask(taskID); err != nil {
		return nil, err
	}

	return s.apply(taskID, map[string]interface{}{"status": status})
}

// UpdateAdminNote sets the admin note. A blank note clears it.
func (s *TaskService) UpdateAdminNote(taskID string, note string) (*models.Task, error) {
	if _, err := s.GetTask(taskID); err != nil {
		return nil, err
	}

	var value interface{}
	if trimmed := strings.TrimSpace(note); trimmed != "" {
		value = trimmed
	}

	return s.apply(taskID, map[string]interface{}{"admin_note": value})
}

// DeleteTask removes the task with its notes and documents. The returned
// documents still have stored objects that the caller must clean up.
func (s *TaskService) DeleteTask(taskID string) ([]models.TaskDocument, error) {
	docs, err := s.taskRepo.Delete(taskID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTaskNotFound
		}
		return nil, fmt.Errorf("failed to delete task: %w", err)
	}
	return docs, nil
}

// GetTaskStats counts tasks in the same scope as ListTasks
func (s *TaskService) GetTaskStats(ownerID *string) (*repository.TaskStats, error) {
	stats, err := s.taskRepo.Stats(repository.TaskFilter{AssignedTo: ownerID}, s.Now())
	if err != nil {
		return nil, fmt.Errorf("failed to count tasks: %w", err)
	}
	return stats, nil
}

func (s *TaskService) apply(taskID string, updates map[string]interface{}) (*models.Task, error) {
	updates["updated_at"] = s.Now()

	if err := s.taskRepo.Update(taskID, updates); err != nil {
		return nil, fmt.Errorf("failed to update task: %w", err)
	}

	return s.GetTask(taskID)
}

func (s *TaskService) ensureEmployee(userID string) error {
	if userID == "" {
		return ErrInvalidAssignee
	}

	user, err := s.userRepo.FindByID(userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrInvalidAssignee
		}
		return fmt.Errorf("failed to find assignee: %w", err)
	}
	if user.Role != models.RoleEmployee {
		return ErrInvalidAssignee
	}
	return nil
}

func validateTitle(title string) (string, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return "", ErrTitleRequired
	}
	if utf8.RuneCountInString(title) > constants.MaxTitleLength {
		return "", ErrTitleTooLong
	}
	return title, nil
}
