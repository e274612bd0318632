package server

import (
	"net/http"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"github.com/yukikurage/taskflow-api/internal/constants"
	"github.com/yukikurage/taskflow-api/internal/events"
	"github.com/yukikurage/taskflow-api/internal/handlers"
	"github.com/yukikurage/taskflow-api/internal/mailer"
	"github.com/yukikurage/taskflow-api/internal/middleware"
	"github.com/yukikurage/taskflow-api/internal/repository"
	"github.com/yukikurage/taskflow-api/internal/services"
	"github.com/yukikurage/taskflow-api/internal/storage"
	"gorm.io/gorm"
)

// Dependencies are the long-lived resources the router is built from.
type Dependencies struct {
	DB           *gorm.DB
	SessionStore sessions.Store
	ObjectStore  storage.ObjectStore
	Dispatcher   *events.Dispatcher
	Mailer       mailer.Sender
	Chat         *services.ChatService

	AppURL        string
	MaxUploadSize int64
}

// NewRouter wires repositories, services and handlers into a gin engine.
func NewRouter(deps Dependencies) *gin.Engine {
	userRepo := repository.NewUserRepository(deps.DB)
	taskRepo := repository.NewTaskRepository(deps.DB)
	noteRepo := repository.NewNoteRepository(deps.DB)
	docRepo := repository.NewDocumentRepository(deps.DB)

	authService := services.NewAuthService(userRepo)
	taskService := services.NewTaskService(taskRepo, userRepo)
	noteService := services.NewNoteService(noteRepo)
	documentService := services.NewDocumentService(docRepo, deps.ObjectStore, deps.Dispatcher, deps.MaxUploadSize)
	notificationService := services.NewNotificationService(deps.Mailer, deps.AppURL, deps.Dispatcher)

	chatService := deps.Chat
	if chatService == nil {
		chatService = services.NewChatService(nil, 0)
	}

	authHandler := handlers.NewAuthHandler(authService)
	userHandler := handlers.NewUserHandler(authService)
	taskHandler := handlers.NewTaskHandler(taskService, documentService, notificationService)
	noteHandler := handlers.NewNoteHandler(noteService)
	documentHandler := handlers.NewDocumentHandler(documentService)
	chatHandler := handlers.NewChatHandler(chatService, taskService)
	emailHandler := handlers.NewEmailHandler(notificationService)

	r := gin.New()
	r.Use(middleware.RequestID(), middleware.RequestLogger(), middleware.Recovery())
	r.Use(sessions.Sessions(constants.SessionCookieName, deps.SessionStore))

	r.GET("/health", healthHandler(deps.DB))

	requireAuth := middleware.RequireAuth(authService)
	requireAdmin := middleware.RequireAdmin()
	requireTask := middleware.RequireTaskAccess(taskService)

	api := r.Group("/api")
	{
		auth := api.Group("/auth")
		{
			auth.POST("/signup", authHandler.Signup)
			auth.POST("/login", authHandler.Login)
			auth.POST("/logout", authHandler.Logout)
			auth.GET("/me", requireAuth, authHandler.GetCurrentUser)
			auth.GET("/landing", authHandler.Landing)
		}

		users := api.Group("/users")
		users.Use(requireAuth, requireAdmin)
		{
			users.GET("", userHandler.ListUsers)
			users.GET("/:id", userHandler.GetUser)
			users.DELETE("/:id", userHandler.DeleteUser)
		}

		tasks := api.Group("/tasks")
		tasks.Use(requireAuth)
		{
			tasks.GET("", taskHandler.ListTasks)
			tasks.GET("/stats", taskHandler.GetTaskStats)
			tasks.POST("", requireAdmin, taskHandler.CreateTask)
			tasks.GET("/:id", requireTask, taskHandler.GetTask)
			tasks.PATCH("/:id", requireAdmin, taskHandler.UpdateTask)
			tasks.PATCH("/:id/status", requireTask, taskHandler.UpdateTaskStatus)
			tasks.PUT("/:id/admin-note", requireAdmin, taskHandler.UpdateAdminNote)
			tasks.DELETE("/:id", requireAdmin, taskHandler.DeleteTask)

			tasks.GET("/:id/notes", requireTask, noteHandler.ListNotes)
			tasks.POST("/:id/notes", requireTask, noteHandler.AddNote)

			tasks.GET("/:id/documents", requireTask, documentHandler.ListDocuments)
			tasks.POST("/:id/documents", requireTask, documentHandler.UploadDocument)
			tasks.GET("/:id/documents/:document_id/download", requireTask, documentHandler.DownloadDocument)
		}

		api.POST("/chat", requireAuth, chatHandler.Chat)
		api.POST("/send-email", requireAuth, requireAdmin, emailHandler.SendTaskAssignment)
	}

	return r
}

func healthHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		sqlDB, err := db.DB()
		if err == nil {
			err = sqlDB.PingContext(c.Request.Context())
		}
		if err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status":  "unavailable",
				"message": "Database is unreachable",
			})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"status":  "ok",
			"message": "TaskFlow API is running",
		})
	}
}
