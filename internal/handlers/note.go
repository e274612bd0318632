package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yukikurage/taskflow-api/internal/constants"
	"github.com/yukikurage/taskflow-api/internal/dto"
	apierrors "github.com/yukikurage/taskflow-api/internal/errors"
	"github.com/yukikurage/taskflow-api/internal/logger"
	"github.com/yukikurage/taskflow-api/internal/middleware"
	"github.com/yukikurage/taskflow-api/internal/services"
)

type NoteHandler struct {
	noteService *services.NoteService
}

func NewNoteHandler(noteService *services.NoteService) *NoteHandler {
	return &NoteHandler{noteService: noteService}
}

// ListNotes returns the notes of the task loaded by RequireTaskAccess, newest first
func (h *NoteHandler) ListNotes(c *gin.Context) {
	task, ok := middleware.GetTask(c)
	if !ok {
		apierrors.InternalError(c, "Task not found in context")
		return
	}

	notes, err := h.noteService.ListNotes(task.ID)
	if err != nil {
		logger.FromContext(c.Request.Context()).Error("Failed to list notes", "task_id", task.ID, "error", err)
		apierrors.InternalError(c, "Failed to load notes")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"notes": dto.ToTaskNoteDTOs(notes),
	})
}

// AddNote appends a note written by the current user
func (h *NoteHandler) AddNote(c *gin.Context) {
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

	type AddNoteRequest struct {
		Note string `json:"note" binding:"required"`
	}

	var req AddNoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, validationMessage(err))
		return
	}

	note, err := h.noteService.AddNote(task.ID, user, req.Note)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrNoteEmpty), errors.Is(err, services.ErrNoteTooLong):
			apierrors.BadRequest(c, err.Error())
		default:
			logger.FromContext(c.Request.Context()).Error("Failed to add note", "task_id", task.ID, "error", err)
			apierrors.InternalError(c, "Failed to add note")
		}
		return
	}

	c.JSON(http.StatusCreated, dto.ToTaskNoteDTO(*note))
}
