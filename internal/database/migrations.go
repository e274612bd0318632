package database

import (
	"fmt"

	"github.com/yukikurage/taskflow-api/internal/logger"
	"github.com/yukikurage/taskflow-api/internal/models"
	"gorm.io/gorm"
)

type compositeIndex struct {
	model   interface{}
	table   string
	name    string
	columns string
}

// AddIndexes adds the composite indexes behind the list queries.
// Single-column indexes are declared on the models.
func AddIndexes(db *gorm.DB) error {
	indexes := []compositeIndex{
		// role-scoped task list ordered by creation time
		{&models.Task{}, "tasks", "idx_tasks_assigned_to_created_at", "assigned_to, created_at"},
		// child collections are always read newest-first per task
		{&models.TaskNote{}, "task_notes", "idx_task_notes_task_id_created_at", "task_id, created_at"},
		{&models.TaskDocument{}, "task_documents", "idx_task_documents_task_id_created_at", "task_id, created_at"},
	}

	for _, idx := range indexes {
		if db.Migrator().HasIndex(idx.model, idx.name) {
			continue
		}

		sql := fmt.Sprintf("CREATE INDEX %s ON %s (%s)", idx.name, idx.table, idx.columns)
		if err := db.Exec(sql).Error; err != nil {
			return fmt.Errorf("failed to create index %s: %w", idx.name, err)
		}

		logger.Info("Created index", "name", idx.name, "table", idx.table, "columns", idx.columns)
	}

	return nil
}
