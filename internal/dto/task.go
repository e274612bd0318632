package dto

import (
	"time"

	"github.com/yukikurage/taskflow-api/internal/models"
	"github.com/yukikurage/taskflow-api/internal/repository"
	"github.com/yukikurage/taskflow-api/internal/utils"
)

// TaskDTO represents a hydrated task in API responses
type TaskDTO struct {
	ID             string              `json:"id"`
	Title          string              `json:"title"`
	Description    string              `json:"description"`
	AssignedTo     string              `json:"assigned_to"`
	AssignedBy     string              `json:"assigned_by"`
	Status         models.TaskStatus   `json:"status"`
	Priority       models.TaskPriority `json:"priority"`
	DueDate        *time.Time          `json:"due_date"`
	AdminNote      *string             `json:"admin_note"`
	IsOverdue      bool                `json:"is_overdue"`
	CreatedAt      time.Time           `json:"created_at"`
	UpdatedAt      time.Time           `json:"updated_at"`
	AssignedUser   *UserSummaryDTO     `json:"assigned_user,omitempty"`
	AssignedByUser *UserSummaryDTO     `json:"assigned_by_user,omitempty"`
}

// TaskListResponse lists tasks. Pagination is present when the request was paged.
type TaskListResponse struct {
	Tasks      []TaskDTO                 `json:"tasks"`
	Pagination *utils.PaginationResponse `json:"pagination,omitempty"`
}

// TaskCreatedResponse carries the new task and a soft warning about the notification
type TaskCreatedResponse struct {
	Task    TaskDTO `json:"task"`
	Warning string  `json:"warning,omitempty"`
}

// TaskStatsDTO holds dashboard counters
type TaskStatsDTO struct {
	Total      int64            `json:"total"`
	Pending    int64            `json:"pending"`
	InProgress int64            `json:"in_progress"`
	Completed  int64            `json:"completed"`
	Overdue    int64            `json:"overdue"`
	ByAssignee map[string]int64 `json:"by_assignee,omitempty"`
}

// ToTaskDTO converts a Task model to TaskDTO; now decides is_overdue
func ToTaskDTO(task models.Task, now time.Time) TaskDTO {
	return TaskDTO{
		ID:             task.ID,
		Title:          task.Title,
		Description:    task.Description,
		AssignedTo:     task.AssignedTo,
		AssignedBy:     task.AssignedBy,
		Status:         task.Status,
		Priority:       task.Priority,
		DueDate:        task.DueDate,
		AdminNote:      task.AdminNote,
		IsOverdue:      task.IsOverdue(now),
		CreatedAt:      task.CreatedAt,
		UpdatedAt:      task.UpdatedAt,
		AssignedUser:   toUserSummary(task.Assignee),
		AssignedByUser: toUserSummary(task.Assigner),
	}
}

// ToTaskListResponse converts tasks; pagination may be nil
func ToTaskListResponse(tasks []models.Task, now time.Time, pagination *utils.PaginationResponse) TaskListResponse {
	items := make([]TaskDTO, len(tasks))
	for i, task := range tasks {
		items[i] = ToTaskDTO(task, now)
	}
	return TaskListResponse{Tasks: items, Pagination: pagination}
}

// ToTaskStatsDTO converts repository counters
func ToTaskStatsDTO(stats *repository.TaskStats) TaskStatsDTO {
	return TaskStatsDTO{
		Total:      stats.Total,
		Pending:    stats.Pending,
		InProgress: stats.InProgress,
		Completed:  stats.Completed,
		Overdue:    stats.Overdue,
		ByAssignee: stats.ByAssignee,
	}
}
