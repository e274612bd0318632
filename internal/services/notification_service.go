package services

import (
	"context"
	"errors"
	"strings"

	"github.com/yukikurage/taskflow-api/internal/events"
	"github.com/yukikurage/taskflow-api/internal/mailer"
	"github.com/yukikurage/taskflow-api/internal/models"
)

var (
	ErrMissingEmailData   = errors.New("missing required email data")
	ErrEmailNotConfigured = errors.New("email service not configured")
)

// WarningEmailNotConfigured is attached to task creation responses when no
// notification could be queued.
const WarningEmailNotConfigured = "Task created, but the email service is not configured so the assignee was not notified"

// NotificationService sends task assignment e-mails
type NotificationService struct {
	sender     mailer.Sender
	appURL     string
	dispatcher *events.Dispatcher
}

func NewNotificationService(sender mailer.Sender, appURL string, dispatcher *events.Dispatcher) *NotificationService {
	return &NotificationService{
		sender:     sender,
		appURL:     appURL,
		dispatcher: dispatcher,
	}
}

func (s *NotificationService) Configured() bool {
	return s.sender != nil && s.sender.Configured()
}

// SendAssignment renders and delivers the notification synchronously.
func (s *NotificationService) SendAssignment(ctx context.Context, data mailer.TaskAssignment) error {
	if strings.TrimSpace(data.EmployeeEmail) == "" ||
		strings.TrimSpace(data.EmployeeName) == "" ||
		strings.TrimSpace(data.TaskTitle) == "" {
		return ErrMissingEmailData
	}
	if !s.Configured() {
		return ErrEmailNotConfigured
	}

	msg, err := mailer.RenderTaskAssignment(data, s.appURL)
	if err != nil {
		return err
	}

	return s.sender.Send(ctx, msg)
}

// AssignmentFor builds the notification data for a hydrated task.
func AssignmentFor(task *models.Task) mailer.TaskAssignment {
	data := mailer.TaskAssignment{
		EmployeeName:    task.Assignee.FullName,
		EmployeeEmail:   task.Assignee.Email,
		TaskTitle:       task.Title,
		TaskDescription: task.Description,
		Priority:        string(task.Priority),
		DueDate:         task.DueDate,
		AssignedBy:      task.Assigner.FullName,
	}
	if task.AdminNote != nil {
		data.AdminNote = *task.AdminNote
	}
	return data
}

// NotifyTaskAssigned queues the assignment e-mail for task and returns a
// warning for the client when nothing could be queued.
func (s *NotificationService) NotifyTaskAssigned(task *models.Task) string {
	if !s.Configured() {
		return WarningEmailNotConfigured
	}

	data := AssignmentFor(task)
	s.dispatcher.Go("task_assignment_email", map[string]string{
		"task_id": task.ID,
		"to":      data.EmployeeEmail,
	}, func(ctx context.Context) error {
		return s.SendAssignment(ctx, data)
	})
	return ""
}
