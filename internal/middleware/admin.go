package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/yukikurage/taskflow-api/internal/constants"
	apierrors "github.com/yukikurage/taskflow-api/internal/errors"
	"github.com/yukikurage/taskflow-api/internal/policy"
)

// RequireAdmin rejects non-admin users with a redirect to the employee home.
// Must run after RequireAuth.
func RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := GetCurrentUser(c)
		if !ok {
			apierrors.UnauthorizedWithRedirect(c, "", constants.RouteLogin)
			c.Abort()
			return
		}

		if !policy.CanManage(user) {
			apierrors.ForbiddenWithRedirect(c, "Admin access required", constants.RouteEmployeeHome)
			c.Abort()
			return
		}

		c.Next()
	}
}
