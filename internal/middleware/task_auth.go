package middleware

import (
	"errors"

	"github.com/gin-gonic/gin"
	"github.com/yukikurage/taskflow-api/internal/constants"
	apierrors "github.com/yukikurage/taskflow-api/internal/errors"
	"github.com/yukikurage/taskflow-api/internal/logger"
	"github.com/yukikurage/taskflow-api/internal/models"
	"github.com/yukikurage/taskflow-api/internal/policy"
	"github.com/yukikurage/taskflow-api/internal/services"
)

// RequireTaskAccess loads the task named by :id and checks that the current
// user may see it. Admins see every task; employees only their own.
func RequireTaskAccess(taskService *services.TaskService) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := GetCurrentUser(c)
		if !ok {
			apierrors.UnauthorizedWithRedirect(c, "", constants.RouteLogin)
			c.Abort()
			return
		}

		task, err := taskService.GetTask(c.Param("id"))
		if err != nil {
			if errors.Is(err, services.ErrTaskNotFound) {
				apierrors.NotFound(c, "Task not found")
			} else {
				logger.FromContext(c.Request.Context()).Error("Failed to load task", "task_id", c.Param("id"), "error", err)
				apierrors.InternalError(c, "")
			}
			c.Abort()
			return
		}

		if !policy.CanAccessTask(user, task) {
			apierrors.ForbiddenWithRedirect(c, "Access denied", constants.RouteEmployeeHome)
			c.Abort()
			return
		}

		c.Set(constants.ContextKeyTask, task)
		c.Next()
	}
}

// GetTask retrieves the task loaded by RequireTaskAccess
func GetTask(c *gin.Context) (*models.Task, bool) {
	value, exists := c.Get(constants.ContextKeyTask)
	if !exists {
		return nil, false
	}
	task, ok := value.(*models.Task)
	return task, ok && task != nil
}
