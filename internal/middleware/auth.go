package middleware

import (
	"errors"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"github.com/yukikurage/taskflow-api/internal/constants"
	apierrors "github.com/yukikurage/taskflow-api/internal/errors"
	"github.com/yukikurage/taskflow-api/internal/logger"
	"github.com/yukikurage/taskflow-api/internal/models"
	"github.com/yukikurage/taskflow-api/internal/services"
)

// RequireAuth resolves the session to a user profile. A session whose user
// no longer exists is cleared.
func RequireAuth(authService *services.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		session := sessions.Default(c)
		userID, _ := session.Get(constants.ContextKeyUserID).(string)

		if userID == "" {
			apierrors.UnauthorizedWithRedirect(c, "", constants.RouteLogin)
			c.Abort()
			return
		}

		user, err := authService.GetUser(userID)
		if err != nil {
			if errors.Is(err, services.ErrUserNotFound) {
				session.Clear()
				if saveErr := session.Save(); saveErr != nil {
					logger.FromContext(c.Request.Context()).Warn("Failed to clear stale session", "error", saveErr)
				}
				apierrors.UnauthorizedWithRedirect(c, "User profile not found", constants.RouteLogin)
				c.Abort()
				return
			}
			logger.FromContext(c.Request.Context()).Error("Failed to load session user", "user_id", userID, "error", err)
			apierrors.InternalError(c, "")
			c.Abort()
			return
		}

		// Store user in context for easy access in handlers
		c.Set(constants.ContextKeyUserID, user.ID)
		c.Set(constants.ContextKeyCurrentUser, user)
		c.Next()
	}
}

// GetCurrentUser retrieves the authenticated user from context
func GetCurrentUser(c *gin.Context) (*models.User, bool) {
	value, exists := c.Get(constants.ContextKeyCurrentUser)
	if !exists {
		return nil, false
	}

	user, ok := value.(*models.User)
	if !ok || user == nil {
		return nil, false
	}
	return user, true
}

