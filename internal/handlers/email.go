package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yukikurage/taskflow-api/internal/dto"
	apierrors "github.com/yukikurage/taskflow-api/internal/errors"
	"github.com/yukikurage/taskflow-api/internal/logger"
	"github.com/yukikurage/taskflow-api/internal/mailer"
	"github.com/yukikurage/taskflow-api/internal/services"
)

type EmailHandler struct {
	notificationService *services.NotificationService
}

func NewEmailHandler(notificationService *services.NotificationService) *EmailHandler {
	return &EmailHandler{notificationService: notificationService}
}

type sendEmailRequest struct {
	EmployeeName    string  `json:"employeeName"`
	EmployeeEmail   string  `json:"employeeEmail"`
	TaskTitle       string  `json:"taskTitle"`
	TaskDescription string  `json:"taskDescription"`
	Priority        string  `json:"priority"`
	DueDate         *string `json:"dueDate"`
	AssignedBy      string  `json:"assignedBy"`
	AdminNote       string  `json:"adminNote"`
}

// SendTaskAssignment delivers an assignment e-mail synchronously.
func (h *EmailHandler) SendTaskAssignment(c *gin.Context) {
	var req sendEmailRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	data := mailer.TaskAssignment{
		EmployeeName:    req.EmployeeName,
		EmployeeEmail:   req.EmployeeEmail,
		TaskTitle:       req.TaskTitle,
		TaskDescription: req.TaskDescription,
		Priority:        req.Priority,
		AssignedBy:      req.AssignedBy,
		AdminNote:       req.AdminNote,
	}
	if req.DueDate != nil && *req.DueDate != "" {
		due, err := dto.ParseDate(*req.DueDate)
		if err != nil {
			apierrors.BadRequest(c, "dueDate must be a date")
			return
		}
		data.DueDate = due
	}

	err := h.notificationService.SendAssignment(c.Request.Context(), data)
	switch {
	case err == nil:
		c.JSON(http.StatusOK, gin.H{"success": true})
	case errors.Is(err, services.ErrMissingEmailData):
		apierrors.BadRequest(c, "Missing required email data")
	case errors.Is(err, services.ErrEmailNotConfigured):
		c.JSON(http.StatusOK, gin.H{
			"success": false,
			"message": "Email service not configured",
		})
	default:
		logger.FromContext(c.Request.Context()).Error("Failed to send assignment email", "to", req.EmployeeEmail, "error", err)
		apierrors.InternalError(c, "Failed to send email")
	}
}
