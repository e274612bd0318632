package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/yukikurage/taskflow-api/internal/constants"
	"github.com/yukikurage/taskflow-api/internal/dto"
	apierrors "github.com/yukikurage/taskflow-api/internal/errors"
	"github.com/yukikurage/taskflow-api/internal/logger"
	"github.com/yukikurage/taskflow-api/internal/middleware"
	"github.com/yukikurage/taskflow-api/internal/models"
	"github.com/yukikurage/taskflow-api/internal/policy"
	"github.com/yukikurage/taskflow-api/internal/services"
	"github.com/yukikurage/taskflow-api/internal/utils"
)

type TaskHandler struct {
	taskService         *services.TaskService
	documentService     *services.DocumentService
	notificationService *services.NotificationService
}

func NewTaskHandler(taskService *services.TaskService, documentService *services.DocumentService, notificationService *services.NotificationService) *TaskHandler {
	RegisterValidators()
	return &TaskHandler{
		taskService:         taskService,
		documentService:     documentService,
		notificationService: notificationService,
	}
}

// ListTasks returns the tasks visible to the current user.
// Admins see every task; employees only those assigned to them.
// Optional filters: status, overdue=true, page, limit.
func (h *TaskHandler) ListTasks(c *gin.Context) {
	user, ok := middleware.GetCurrentUser(c)
	if !ok {
		apierrors.UnauthorizedWithRedirect(c, "", constants.RouteLogin)
		return
	}

	input := services.ListTasksInput{OwnerID: policy.OwnerScope(user)}

	if status := c.Query("status"); status != "" {
		s := models.TaskStatus(status)
		input.Status = &s
	}
	if overdue := c.Query("overdue"); overdue != "" {
		value, err := strconv.ParseBool(overdue)
		if err != nil {
			apierrors.BadRequest(c, "overdue must be true or false")
			return
		}
		input.OverdueOnly = value
	}

	params, paged := utils.GetPaginationParams(c)
	if paged {
		input.Page = params.Page
		input.PageSize = params.Limit
	}

	tasks, total, err := h.taskService.ListTasks(input)
	if err != nil {
		respondTaskError(c, err)
		return
	}

	var pagination *utils.PaginationResponse
	if paged {
		pagination = utils.NewPaginationResponse(params, total)
	}

	c.JSON(http.StatusOK, dto.ToTaskListResponse(tasks, h.taskService.Now(), pagination))
}

// GetTaskStats returns dashboard counters in the same scope as ListTasks
func (h *TaskHandler) GetTaskStats(c *gin.Context) {
	user, ok := middleware.GetCurrentUser(c)
	if !ok {
		apierrors.UnauthorizedWithRedirect(c, "", constants.RouteLogin)
		return
	}

	stats, err := h.taskService.GetTaskStats(policy.OwnerScope(user))
	if err != nil {
		respondTaskError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToTaskStatsDTO(stats))
}

// GetTask returns a specific task by ID
// Task is already loaded by RequireTaskAccess middleware
func (h *TaskHandler) GetTask(c *gin.Context) {
	task, ok := middleware.GetTask(c)
	if !ok {
		apierrors.InternalError(c, "Task not found in context")
		return
	}

	c.JSON(http.StatusOK, dto.ToTaskDTO(*task, h.taskService.Now()))
}

// CreateTask creates a task assigned to an employee and queues the
// assignment e-mail.
func (h *TaskHandler) CreateTask(c *gin.Context) {
	user, ok := middleware.GetCurrentUser(c)
	if !ok {
		apierrors.UnauthorizedWithRedirect(c, "", constants.RouteLogin)
		return
	}

	type CreateTaskRequest struct {
		Title       string              `json:"title" binding:"required,max=255"`
		Description string              `json:"description"`
		AssignedTo  string              `json:"assigned_to" binding:"required"`
		Priority    models.TaskPriority `json:"priority" binding:"omitempty,task_priority"`
		DueDate     *string             `json:"due_date"`
		AdminNote   *string             `json:"admin_note"`
	}

	var req CreateTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, validationMessage(err))
		return
	}

	input := services.CreateTaskInput{
		Title:       req.Title,
		Description: req.Description,
		AssignedTo:  req.AssignedTo,
		AssignedBy:  user.ID,
		Priority:    req.Priority,
		AdminNote:   req.AdminNote,
	}
	if req.DueDate != nil {
		due, err := dto.ParseDate(*req.DueDate)
		if err != nil {
			apierrors.BadRequest(c, "due_date must be a date")
			return
		}
		input.DueDate = due
	}

	task, err := h.taskService.CreateTask(input)
	if err != nil {
		respondTaskError(c, err)
		return
	}

	warning := h.notificationService.NotifyTaskAssigned(task)

	c.JSON(http.StatusCreated, dto.TaskCreatedResponse{
		Task:    dto.ToTaskDTO(*task, h.taskService.Now()),
		Warning: warning,
	})
}

// UpdateTask applies a partial update. Absent fields are untouched;
// due_date and admin_note may be null to clear them.
func (h *TaskHandler) UpdateTask(c *gin.Context) {
	type UpdateTaskRequest struct {
		Title       *string              `json:"title" binding:"omitempty,max=255"`
		Description *string              `json:"description"`
		AssignedTo  *string              `json:"assigned_to"`
		Status      *models.TaskStatus   `json:"status" binding:"omitempty,task_status"`
		Priority    *models.TaskPriority `json:"priority" binding:"omitempty,task_priority"`
		DueDate     dto.NullableTime     `json:"due_date"`
		AdminNote   dto.NullableString   `json:"admin_note"`
	}

	var req UpdateTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, validationMessage(err))
		return
	}

	input := services.UpdateTaskInput{
		Title:       req.Title,
		Description: req.Description,
		AssignedTo:  req.AssignedTo,
		Status:      req.Status,
		Priority:    req.Priority,
	}
	if req.DueDate.Set {
		input.DueDate = req.DueDate.Value
		input.ClearDueDate = req.DueDate.Value == nil
	}
	if req.AdminNote.Set {
		input.AdminNote = req.AdminNote.Value
		input.ClearAdminNote = req.AdminNote.Value == nil
	}

	task, err := h.taskService.UpdateTask(c.Param("id"), input)
	if err != nil {
		respondTaskError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToTaskDTO(*task, h.taskService.Now()))
}

// UpdateTaskStatus changes only the status. Allowed for admins and the assignee.
func (h *TaskHandler) UpdateTaskStatus(c *gin.Context) {
	user, ok := middleware.GetCurrentUser(c)
	if !ok {
		apierrors.UnauthorizedWithRedirect(c, "", constants.RouteLogin)
		return
	}
	task, ok := middleware.GetTask(c)
	if !ok {
		apierrors.InternalError(c, "Task not found in context")
		return
	}

	if !policy.CanSetStatus(user, task) {
		apierrors.ForbiddenWithRedirect(c, "Access denied", constants.RouteEmployeeHome)
		return
	}

	type UpdateStatusRequest struct {
		Status models.TaskStatus `json:"status" binding:"required,task_status"`
	}

	var req UpdateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, validationMessage(err))
		return
	}

	updated, err := h.taskService.UpdateTaskStatus(task.ID, req.Status)
	if err != nil {
		respondTaskError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToTaskDTO(*updated, h.taskService.Now()))
}

// UpdateAdminNote sets the admin note of a task
func (h *TaskHandler) UpdateAdminNote(c *gin.Context) {
	type AdminNoteRequest struct {
		AdminNote string `json:"admin_note" binding:"max=5000"`
	}

	var req AdminNoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, validationMessage(err))
		return
	}

	task, err := h.taskService.UpdateAdminNote(c.Param("id"), req.AdminNote)
	if err != nil {
		respondTaskError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToTaskDTO(*task, h.taskService.Now()))
}

// DeleteTask removes a task with its notes and documents. Stored document
// objects are removed in the background.
func (h *TaskHandler) DeleteTask(c *gin.Context) {
	taskID := c.Param("id")

	docs, err := h.taskService.DeleteTask(taskID)
	if err != nil {
		respondTaskError(c, err)
		return
	}

	h.documentService.ScheduleObjectCleanup(taskID, docs)

	c.JSON(http.StatusOK, gin.H{
		"message": "Task deleted successfully",
	})
}

func respondTaskError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrTaskNotFound):
		apierrors.NotFound(c, "Task not found")
	case errors.Is(err, services.ErrTitleRequired),
		errors.Is(err, services.ErrTitleTooLong),
		errors.Is(err, services.ErrInvalidStatus),
		errors.Is(err, services.ErrInvalidPriority),
		errors.Is(err, services.ErrInvalidAssignee):
		apierrors.BadRequest(c, err.Error())
	default:
		logger.FromContext(c.Request.Context()).Error("Task request failed", "error", err)
		apierrors.InternalError(c, "Internal server error")
	}
}
