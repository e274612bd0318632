package services

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/sashabaranov/go-openai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yukikurage/taskflow-api/internal/models"
)

func newFakeOpenAI(t *testing.T, status int, body string) (*AIService, *openai.ChatCompletionRequest) {
	t.Helper()
	captured := &openai.ChatCompletionRequest{}

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/chat/completions", r.URL.Path)
		_ = json.NewDecoder(r.Body).Decode(captured)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(server.Close)

	cfg := openai.DefaultConfig("sk-test")
	cfg.BaseURL = server.URL + "/v1"
	return NewAIServiceWithConfig(cfg, ""), captured
}

func completion(content string) string {
	return `{"id":"chatcmpl-1","object":"chat.completion","model":"gpt-3.5-turbo","choices":[{"index":0,"message":{"role":"assistant","content":` +
		jsonString(content) + `},"finish_reason":"stop"}]}`
}

func jsonString(s string) string {
	b, _ := json.Marshal(s)
	return string(b)
}

func TestChatService_NotConfigured(t *testing.T) {
	svc := NewChatService(nil, time.Second)

	reply := svc.Reply(context.Background(), "Eve", "help", nil)
	assert.Empty(t, reply.Message)
	assert.Contains(t, reply.Error, "OpenAI API key not configured")
}

func TestOpenAIKeyConfigured(t *testing.T) {
	assert.False(t, OpenAIKeyConfigured(""))
	assert.False(t, OpenAIKeyConfigured("your-openai-api-key-here"))
	assert.True(t, OpenAIKeyConfigured("sk-live"))
}

func TestChatService_Success(t *testing.T) {
	ai, captured := newFakeOpenAI(t, http.StatusOK, completion("Start with the report."))
	svc := NewChatService(ai, time.Second)

	due := "2024-06-01T00:00:00Z"
	reply := svc.Reply(context.Background(), "Eve", "What first?", []ChatTask{
		{Title: "Report", Status: "pending", Priority: "high", DueDate: &due},
	})

	assert.Empty(t, reply.Error)
	assert.Equal(t, "Start with the report.", reply.Message)

	require.Len(t, captured.Messages, 2)
	assert.Equal(t, openai.ChatMessageRoleSystem, captured.Messages[0].Role)
	assert.Contains(t, captured.Messages[0].Content, "helping Eve")
	assert.Contains(t, captured.Messages[0].Content, `"title": "Report"`)
	assert.Equal(t, "What first?", captured.Messages[1].Content)
	assert.Equal(t, "gpt-3.5-turbo", captured.Model)
	assert.Equal(t, 500, captured.MaxTokens)
	assert.InDelta(t, 0.7, captured.Temperature, 0.001)
}

func TestChatService_EmptyCompletion(t *testing.T) {
	ai, _ := newFakeOpenAI(t, http.StatusOK, completion(""))
	reply := NewChatService(ai, time.Second).Reply(context.Background(), "Eve", "hi", nil)

	assert.Equal(t, "Sorry, I could not generate a response.", reply.Message)
}

func TestChatService_ErrorMapping(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		want   string
	}{
		{
			name:   "invalid key",
			status: http.StatusUnauthorized,
			body:   `{"error":{"message":"Incorrect API key provided","type":"invalid_request_error","code":"invalid_api_key"}}`,
			want:   "Invalid OpenAI API key. Please check your API key configuration.",
		},
		{
			name:   "quota",
			status: http.StatusTooManyRequests,
			body:   `{"error":{"message":"You exceeded your current quota","type":"insufficient_quota","code":"insufficient_quota"}}`,
			want:   "OpenAI API quota exceeded. Please check your usage limits.",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ai, _ := newFakeOpenAI(t, tt.status, tt.body)
			reply := NewChatService(ai, time.Second).Reply(context.Background(), "Eve", "hi", nil)
			assert.Empty(t, reply.Message)
			assert.Equal(t, tt.want, reply.Error)
		})
	}
}

func TestChatService_OtherFailure(t *testing.T) {
	ai, _ := newFakeOpenAI(t, http.StatusInternalServerError,
		`{"error":{"message":"The server had an error","type":"server_error"}}`)
	reply := NewChatService(ai, time.Second).Reply(context.Background(), "Eve", "hi", nil)

	assert.Empty(t, reply.Message)
	assert.Contains(t, reply.Error, "Failed to process chat request: ")
}

func TestChatService_Timeout(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	}))
	t.Cleanup(server.Close)

	cfg := openai.DefaultConfig("sk-test")
	cfg.BaseURL = server.URL + "/v1"
	svc := NewChatService(NewAIServiceWithConfig(cfg, ""), 50*time.Millisecond)

	reply := svc.Reply(context.Background(), "Eve", "hi", nil)
	assert.Contains(t, reply.Error, "Failed to process chat request: ")
}

func TestBuildChatPrompt_DefaultsAndSnapshot(t *testing.T) {
	prompt, err := BuildChatPrompt("", nil)
	require.NoError(t, err)
	assert.Contains(t, prompt, "helping an employee")
	assert.Contains(t, prompt, "Current tasks:\n[]")
}

func TestChatTasksFrom(t *testing.T) {
	due := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	note := "ship it"
	tasks := ChatTasksFrom([]models.Task{{
		Title:     "Report",
		Status:    models.TaskStatusInProgress,
		Priority:  models.TaskPriorityHigh,
		DueDate:   &due,
		AdminNote: &note,
	}})

	require.Len(t, tasks, 1)
	assert.Equal(t, "in_progress", tasks[0].Status)
	require.NotNil(t, tasks[0].DueDate)
	assert.Equal(t, "2024-06-01T00:00:00Z", *tasks[0].DueDate)
	assert.Equal(t, &note, tasks[0].AdminNote)
}
