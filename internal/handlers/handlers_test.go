package handlers

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"github.com/yukikurage/taskflow-api/internal/constants"
	"github.com/yukikurage/taskflow-api/internal/database"
	"github.com/yukikurage/taskflow-api/internal/events"
	"github.com/yukikurage/taskflow-api/internal/mailer"
	"github.com/yukikurage/taskflow-api/internal/models"
	"github.com/yukikurage/taskflow-api/internal/repository"
	"github.com/yukikurage/taskflow-api/internal/services"
	"github.com/yukikurage/taskflow-api/internal/storage"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type fakeSender struct {
	mu         sync.Mutex
	configured bool
	err        error
	sent       []mailer.Message
}

func (f *fakeSender) Send(_ context.Context, msg mailer.Message) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, msg)
	return nil
}

func (f *fakeSender) Configured() bool { return f.configured }

func (f *fakeSender) Sent() []mailer.Message {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]mailer.Message(nil), f.sent...)
}

// testEnv wires the services against an in-memory database
type testEnv struct {
	db         *gorm.DB
	store      *storage.LocalStore
	sender     *fakeSender
	dispatcher *events.Dispatcher

	authService         *services.AuthService
	taskService         *services.TaskService
	noteService         *services.NoteService
	documentService     *services.DocumentService
	notificationService *services.NotificationService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	require.NoError(t, database.Migrate(db))

	store, err := storage.NewLocalStore(t.TempDir())
	require.NoError(t, err)

	dispatcher := events.NewDispatcher(5*time.Second, nil)
	t.Cleanup(dispatcher.Wait)

	sender := &fakeSender{}
	userRepo := repository.NewUserRepository(db)

	return &testEnv{
		db:                  db,
		store:               store,
		sender:              sender,
		dispatcher:          dispatcher,
		authService:         services.NewAuthService(userRepo),
		taskService:         services.NewTaskService(repository.NewTaskRepository(db), userRepo),
		noteService:         services.NewNoteService(repository.NewNoteRepository(db)),
		documentService:     services.NewDocumentService(repository.NewDocumentRepository(db), store, dispatcher, 1<<20),
		notificationService: services.NewNotificationService(sender, "http://app.test", dispatcher),
	}
}

func (e *testEnv) seedUser(t *testing.T, email, name string, role models.UserRole) *models.User {
	t.Helper()
	user, err := e.authService.Signup(services.SignupInput{
		Email:    email,
		Password: "supersecret",
		FullName: name,
		Role:     role,
	})
	require.NoError(t, err)
	return user
}

func (e *testEnv) seedTask(t *testing.T, title string, assignee, admin *models.User) *models.Task {
	t.Helper()
	task, err := e.taskService.CreateTask(services.CreateTaskInput{
		Title:      title,
		AssignedTo: assignee.ID,
		AssignedBy: admin.ID,
	})
	require.NoError(t, err)
	return task
}

// createAuthContext builds a test context as RequireAuth would leave it
func createAuthContext(method, url string, body []byte, user *models.User) (*gin.Context, *httptest.ResponseRecorder) {
	w := httptest.NewRecorder()
	var req *http.Request
	if body != nil {
		req = httptest.NewRequest(method, url, bytes.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, url, nil)
	}

	c, _ := gin.CreateTestContext(w)
	c.Request = req
	if user != nil {
		c.Set(constants.ContextKeyUserID, user.ID)
		c.Set(constants.ContextKeyCurrentUser, user)
	}

	return c, w
}

// setTaskContext simulates RequireTaskAccess
func setTaskContext(c *gin.Context, task *models.Task) {
	c.Set(constants.ContextKeyTask, task)
}
