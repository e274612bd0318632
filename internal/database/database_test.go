package database

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yukikurage/taskflow-api/internal/config"
	"github.com/yukikurage/taskflow-api/internal/models"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func TestMigrate_CreatesTablesAndIndexes(t *testing.T) {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	require.NoError(t, Migrate(db))

	for _, m := range Models() {
		assert.True(t, db.Migrator().HasTable(m))
	}
	assert.True(t, db.Migrator().HasIndex(&models.TaskNote{}, "idx_task_notes_task_id_created_at"))

	// running twice is a no-op
	require.NoError(t, Migrate(db))
}

func TestDialectorFor(t *testing.T) {
	pg, err := dialectorFor(&config.Config{DBDriver: "postgres", DBHost: "db"})
	require.NoError(t, err)
	assert.Equal(t, "postgres", pg.Name())

	my, err := dialectorFor(&config.Config{DBDriver: "mysql", DatabaseURL: "u:p@tcp(db:3306)/x"})
	require.NoError(t, err)
	assert.Equal(t, "mysql", my.Name())

	_, err = dialectorFor(&config.Config{DBDriver: "oracle"})
	assert.Error(t, err)
}
