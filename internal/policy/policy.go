// Package policy holds the role and ownership rules shared by the HTTP
// middleware and the services.
package policy

import (
	"github.com/yukikurage/taskflow-api/internal/constants"
	"github.com/yukikurage/taskflow-api/internal/models"
)

// CanAccessTask reports whether user may read task, its notes and documents.
func CanAccessTask(user *models.User, task *models.Task) bool {
	if user == nil || task == nil {
		return false
	}
	return user.IsAdmin() || task.AssignedTo == user.ID
}

// CanSetStatus reports whether user may change the status of task.
func CanSetStatus(user *models.User, task *models.Task) bool {
	if user == nil || task == nil {
		return false
	}
	if user.IsAdmin() {
		return true
	}
	return user.Role == models.RoleEmployee && task.AssignedTo == user.ID
}

// CanManage reports whether user may create, edit and delete tasks and users.
func CanManage(user *models.User) bool {
	return user.IsAdmin()
}

// OwnerScope returns the assignee filter for task listings: nil for admins,
// the user's own id otherwise.
func OwnerScope(user *models.User) *string {
	if user.IsAdmin() {
		return nil
	}
	id := user.ID
	return &id
}

// HomeFor returns the landing route for user.
func HomeFor(user *models.User) string {
	switch {
	case user == nil:
		return constants.RouteLogin
	case user.IsAdmin():
		return constants.RouteAdminHome
	default:
		return constants.RouteEmployeeHome
	}
}
