package services

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yukikurage/taskflow-api/internal/events"
	"github.com/yukikurage/taskflow-api/internal/mailer"
	"github.com/yukikurage/taskflow-api/internal/models"
)

type fakeSender struct {
	configured bool
	err        error

	mu   sync.Mutex
	sent []mailer.Message
}

func (f *fakeSender) Configured() bool { return f.configured }

func (f *fakeSender) Send(ctx context.Context, msg mailer.Message) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, msg)
	return f.err
}

type recordingSink struct {
	mu      sync.Mutex
	letters []events.DeadLetter
}

func (s *recordingSink) Record(ctx context.Context, letter events.DeadLetter) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.letters = append(s.letters, letter)
	return nil
}

func assignedTask() *models.Task {
	note := "use template B"
	return &models.Task{
		ID:        "task-1",
		Title:     "Write report",
		Priority:  models.TaskPriorityHigh,
		AdminNote: &note,
		Assignee:  models.User{FullName: "Eve", Email: "eve@example.com"},
		Assigner:  models.User{FullName: "Ada Admin"},
	}
}

func TestNotificationService_SendAssignmentValidation(t *testing.T) {
	svc := NewNotificationService(&fakeSender{configured: true}, "http://localhost:3000", events.NewDispatcher(time.Second, nil))

	err := svc.SendAssignment(context.Background(), mailer.TaskAssignment{EmployeeName: "Eve", TaskTitle: "x"})
	assert.ErrorIs(t, err, ErrMissingEmailData)

	unconfigured := NewNotificationService(&fakeSender{}, "http://localhost:3000", events.NewDispatcher(time.Second, nil))
	err = unconfigured.SendAssignment(context.Background(), mailer.TaskAssignment{
		EmployeeName: "Eve", EmployeeEmail: "eve@example.com", TaskTitle: "x",
	})
	assert.ErrorIs(t, err, ErrEmailNotConfigured)
}

func TestNotificationService_NotifyTaskAssigned(t *testing.T) {
	sender := &fakeSender{configured: true}
	dispatcher := events.NewDispatcher(time.Second, nil)
	svc := NewNotificationService(sender, "https://app.example.com", dispatcher)

	warning := svc.NotifyTaskAssigned(assignedTask())
	dispatcher.Wait()

	assert.Empty(t, warning)
	require.Len(t, sender.sent, 1)
	assert.Equal(t, "eve@example.com", sender.sent[0].To)
	assert.Contains(t, sender.sent[0].Text, "You have been assigned a new task by Ada Admin.")
	assert.Contains(t, sender.sent[0].Text, "Admin Note: use template B")
}

func TestNotificationService_NotifyWarnsWhenUnconfigured(t *testing.T) {
	sender := &fakeSender{}
	svc := NewNotificationService(sender, "https://app.example.com", events.NewDispatcher(time.Second, nil))

	assert.Equal(t, WarningEmailNotConfigured, svc.NotifyTaskAssigned(assignedTask()))
	assert.Empty(t, sender.sent)
}

func TestNotificationService_SendFailureIsDeadLettered(t *testing.T) {
	sender := &fakeSender{configured: true, err: errors.New("smtp: 535 auth failed")}
	sink := &recordingSink{}
	dispatcher := events.NewDispatcher(time.Second, sink)
	svc := NewNotificationService(sender, "https://app.example.com", dispatcher)

	assert.Empty(t, svc.NotifyTaskAssigned(assignedTask()))
	dispatcher.Wait()

	require.Len(t, sink.letters, 1)
	assert.Equal(t, "task_assignment_email", sink.letters[0].Job)
	assert.Contains(t, sink.letters[0].Error, "535")
}
