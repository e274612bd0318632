package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/sashabaranov/go-openai"
	"github.com/yukikurage/taskflow-api/internal/logger"
	"github.com/yukikurage/taskflow-api/internal/models"
)

const (
	chatNotConfigured = "OpenAI API key not configured. Please add your OpenAI API key to the server environment."
	chatInvalidKey    = "Invalid OpenAI API key. Please check your API key configuration."
	chatQuota         = "OpenAI API quota exceeded. Please check your usage limits."
	chatNoResponse    = "Sorry, I could not generate a response."
)

// ChatTask is the task snapshot handed to the model.
type ChatTask struct {
	Title       string  `json:"title"`
	Description string  `json:"description"`
	Status      string  `json:"status"`
	Priority    string  `json:"priority"`
	DueDate     *string `json:"due_date"`
	AdminNote   *string `json:"admin_note"`
}

// ChatTasksFrom snapshots tasks for the chat prompt.
func ChatTasksFrom(tasks []models.Task) []ChatTask {
	out := make([]ChatTask, len(tasks))
	for i, task := range tasks {
		out[i] = ChatTask{
			Title:       task.Title,
			Description: task.Description,
			Status:      string(task.Status),
			Priority:    string(task.Priority),
			AdminNote:   task.AdminNote,
		}
		if task.DueDate != nil {
			due := task.DueDate.UTC().Format(time.RFC3339)
			out[i].DueDate = &due
		}
	}
	return out
}

// ChatReply is always returned with HTTP 200; exactly one field is set.
type ChatReply struct {
	Message string `json:"message,omitempty"`
	Error   string `json:"error,omitempty"`
}

// ChatService answers questions about a user's tasks.
type ChatService struct {
	ai      *AIService
	timeout time.Duration
}

// NewChatService creates a ChatService. A nil ai means the key is not configured.
func NewChatService(ai *AIService, timeout time.Duration) *ChatService {
	return &ChatService{ai: ai, timeout: timeout}
}

func (s *ChatService) Configured() bool {
	return s.ai != nil
}

// Reply never fails: errors are folded into the reply.
func (s *ChatService) Reply(ctx context.Context, userName, message string, tasks []ChatTask) ChatReply {
	if !s.Configured() {
		return ChatReply{Error: chatNotConfigured}
	}

	prompt, err := BuildChatPrompt(userName, tasks)
	if err != nil {
		return ChatReply{Error: fmt.Sprintf("Failed to process chat request: %v", err)}
	}

	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	content, err := s.ai.Complete(ctx, prompt, message)
	if err != nil {
		logger.FromContext(ctx).Warn("Chat completion failed", "error", err)
		return ChatReply{Error: chatErrorMessage(err)}
	}

	if strings.TrimSpace(content) == "" {
		content = chatNoResponse
	}
	return ChatReply{Message: content}
}

// BuildChatPrompt renders the system instruction with the task snapshot
// embedded as indented JSON.
func BuildChatPrompt(userName string, tasks []ChatTask) (string, error) {
	if strings.TrimSpace(userName) == "" {
		userName = "an employee"
	}
	if tasks == nil {
		tasks = []ChatTask{}
	}

	snapshot, err := json.MarshalIndent(tasks, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to encode tasks: %w", err)
	}

	return fmt.Sprintf(`You are an AI assistant helping %s with their work tasks. You have access to their current task list and can help them:

1. Research and analyze their tasks
2. Break down complex tasks into smaller steps
3. Suggest approaches and best practices
4. Provide clarification on requirements
5. Offer time management and productivity tips
6. Help with task prioritization

Current tasks:
%s

Be helpful, concise, and professional. Focus on actionable advice and practical solutions. If asked about specific tasks, reference them by title. Always maintain a supportive and encouraging tone.`, userName, snapshot), nil
}

func chatErrorMessage(err error) string {
	status := 0
	var apiErr *openai.APIError
	var reqErr *openai.RequestError
	switch {
	case errors.As(err, &apiErr):
		status = apiErr.HTTPStatusCode
		if apiErr.Type == "insufficient_quota" || apiErr.Code == "insufficient_quota" {
			status = http.StatusTooManyRequests
		}
	case errors.As(err, &reqErr):
		status = reqErr.HTTPStatusCode
	}

	msg := err.Error()
	switch {
	case status == http.StatusUnauthorized || strings.Contains(msg, "API key"):
		return chatInvalidKey
	case status == http.StatusTooManyRequests || strings.Contains(msg, "quota"):
		return chatQuota
	default:
		return fmt.Sprintf("Failed to process chat request: %s", msg)
	}
}
