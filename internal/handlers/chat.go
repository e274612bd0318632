package handlers

import (
	"net/http"
	"strings"
	"unicode/utf8"

	"github.com/gin-gonic/gin"
	"github.com/yukikurage/taskflow-api/internal/constants"
	apierrors "github.com/yukikurage/taskflow-api/internal/errors"
	"github.com/yukikurage/taskflow-api/internal/logger"
	"github.com/yukikurage/taskflow-api/internal/middleware"
	"github.com/yukikurage/taskflow-api/internal/policy"
	"github.com/yukikurage/taskflow-api/internal/services"
)

type ChatHandler struct {
	chatService *services.ChatService
	taskService *services.TaskService
}

func NewChatHandler(chatService *services.ChatService, taskService *services.TaskService) *ChatHandler {
	return &ChatHandler{
		chatService: chatService,
		taskService: taskService,
	}
}

// Chat answers a question about the caller's tasks. Failures after
// validation come back as 200 with an error string.
func (h *ChatHandler) Chat(c *gin.Context) {
	user, ok := middleware.GetCurrentUser(c)
	if !ok {
		apierrors.UnauthorizedWithRedirect(c, "", constants.RouteLogin)
		return
	}

	type ChatRequest struct {
		Message string               `json:"message" binding:"required"`
		Tasks   *[]services.ChatTask `json:"tasks"`
	}

	var req ChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, validationMessage(err))
		return
	}

	message := strings.TrimSpace(req.Message)
	if message == "" {
		apierrors.BadRequest(c, "message is required")
		return
	}
	if utf8.RuneCountInString(message) > constants.MaxChatMessage {
		apierrors.BadRequest(c, "message is too long")
		return
	}

	var tasks []services.ChatTask
	if req.Tasks != nil {
		tasks = *req.Tasks
	} else {
		owned, _, err := h.taskService.ListTasks(services.ListTasksInput{OwnerID: policy.OwnerScope(user)})
		if err != nil {
			logger.FromContext(c.Request.Context()).Error("Failed to load tasks for chat", "user_id", user.ID, "error", err)
			apierrors.InternalError(c, "Failed to load tasks")
			return
		}
		tasks = services.ChatTasksFrom(owned)
	}

	c.JSON(http.StatusOK, h.chatService.Reply(c.Request.Context(), user.FullName, message, tasks))
}
