package repository

import (
	"time"

	"github.com/yukikurage/taskflow-api/internal/models"
	"gorm.io/gorm"
)

// GormTaskRepository is a GORM implementation of TaskRepository
type GormTaskRepository struct {
	db *gorm.DB
}

// NewTaskRepository creates a new TaskRepository
func NewTaskRepository(db *gorm.DB) TaskRepository {
	return &GormTaskRepository{db: db}
}

// withUsers loads assignee and assigner, including soft-deleted users.
func withUsers(db *gorm.DB) *gorm.DB {
	unscoped := func(tx *gorm.DB) *gorm.DB { return tx.Unscoped() }
	return db.Preload("Assignee", unscoped).Preload("Assigner", unscoped)
}

// Create creates a new task
func (r *GormTaskRepository) Create(task *models.Task) error {
	return r.db.Create(task).Error
}

// FindByID finds a hydrated task by ID
func (r *GormTaskRepository) FindByID(id string) (*models.Task, error) {
	var task models.Task
	if err := withUsers(r.db).Where("tasks.id = ?", id).First(&task).Error; err != nil {
		return nil, err
	}
	return &task, nil
}

// filtered builds a fresh query with the filter conditions applied
func (r *GormTaskRepository) filtered(filter TaskFilter) *gorm.DB {
	query := r.db.Model(&models.Task{})

	if filter.AssignedTo != nil {
		query = query.Where("tasks.assigned_to = ?", *filter.AssignedTo)
	}
	if filter.Status != nil {
		query = query.Where("tasks.status = ?", *filter.Status)
	}
	if filter.OverdueAt != nil {
		query = query.Where("tasks.due_date IS NOT NULL AND tasks.due_date < ? AND tasks.status <> ?",
			*filter.OverdueAt, models.TaskStatusCompleted)
	}

	return query
}

// List retrieves tasks with filtering and optional pagination
func (r *GormTaskRepository) List(filter TaskFilter) ([]models.Task, int64, error) {
	var total int64
	if err := r.filtered(filter).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	listQuery := withUsers(r.filtered(filter)).Order("tasks.created_at DESC")
	if filter.Page > 0 && filter.PageSize > 0 {
		offset := (filter.Page - 1) * filter.PageSize
		listQuery = listQuery.Offset(offset).Limit(filter.PageSize)
	}

	tasks := []models.Task{}
	if err := listQuery.Find(&tasks).Error; err != nil {
		return nil, 0, err
	}

	return tasks, total, nil
}

// Update applies a partial update
func (r *GormTaskRepository) Update(id string, updates map[string]interface{}) error {
	return r.db.Model(&models.Task{}).Where("id = ?", id).Updates(updates).Error
}

// Delete removes a task and its child rows in a transaction
func (r *GormTaskRepository) Delete(id string) ([]models.TaskDocument, error) {
	var docs []models.TaskDocument

	err := r.db.Transaction(func(tx *gorm.DB) error {
		var task models.Task
		if err := tx.Where("id = ?", id).First(&task).Error; err != nil {
			return err
		}

		if err := tx.Where("task_id = ?", id).Find(&docs).Error; err != nil {
			return err
		}

		if err := tx.Where("task_id = ?", id).Delete(&models.TaskNote{}).Error; err != nil {
			return err
		}

		if err := tx.Where("task_id = ?", id).Delete(&models.TaskDocument{}).Error; err != nil {
			return err
		}

		return tx.Delete(&task).Error
	})
	if err != nil {
		return nil, err
	}

	return docs, nil
}

type groupCount struct {
	GroupKey string
	Count    int64
}

// Stats counts tasks by status, overdue state and assignee
func (r *GormTaskRepository) Stats(filter TaskFilter, now time.Time) (*TaskStats, error) {
	stats := &TaskStats{ByAssignee: map[string]int64{}}

	var byStatus []groupCount
	if err := r.filtered(filter).
		Select("tasks.status AS group_key, COUNT(*) AS count").
		Group("tasks.status").
		Scan(&byStatus).Error; err != nil {
		return nil, err
	}
	for _, row := range byStatus {
		stats.Total += row.Count
		switch models.TaskStatus(row.GroupKey) {
		case models.TaskStatusPending:
			stats.Pending = row.Count
		case models.TaskStatusInProgress:
			stats.InProgress = row.Count
		case models.TaskStatusCompleted:
			stats.Completed = row.Count
		}
	}

	overdueFilter := filter
	overdueFilter.OverdueAt = &now
	if err := r.filtered(overdueFilter).Count(&stats.Overdue).Error; err != nil {
		return nil, err
	}

	var byAssignee []groupCount
	if err := r.filtered(filter).
		Select("tasks.assigned_to AS group_key, COUNT(*) AS count").
		Group("tasks.assigned_to").
		Scan(&byAssignee).Error; err != nil {
		return nil, err
	}
	for _, row := range byAssignee {
		stats.ByAssignee[row.GroupKey] = row.Count
	}

	return stats, nil
}
