package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/sashabaranov/go-openai"
	"github.com/yukikurage/taskflow-api/internal/constants"
)

type AIService struct {
	client *openai.Client
	model  string
}

func NewAIService(apiKey, model string) *AIService {
	return NewAIServiceWithConfig(openai.DefaultConfig(apiKey), model)
}

// NewAIServiceWithConfig allows pointing the client at another base URL.
func NewAIServiceWithConfig(cfg openai.ClientConfig, model string) *AIService {
	if model == "" {
		model = constants.DefaultChatModel
	}
	return &AIService{
		client: openai.NewClientWithConfig(cfg),
		model:  model,
	}
}

// OpenAIKeyConfigured reports whether key is a usable OpenAI API key.
func OpenAIKeyConfigured(key string) bool {
	key = strings.TrimSpace(key)
	return key != "" && key != constants.OpenAIKeyPlaceholder
}

// Complete sends one system instruction and one user message and returns
// the first choice. An empty string means the model produced no content.
func (s *AIService) Complete(ctx context.Context, systemPrompt, message string) (string, error) {
	if s == nil || s.client == nil {
		return "", fmt.Errorf("OpenAI client not initialized")
	}

	resp, err := s.client.CreateChatCompletion(
		ctx,
		openai.ChatCompletionRequest{
			Model: s.model,
			Messages: []openai.ChatCompletionMessage{
				{
					Role:    openai.ChatMessageRoleSystem,
					Content: systemPrompt,
				},
				{
					Role:    openai.ChatMessageRoleUser,
					Content: message,
				},
			},
			MaxTokens:   constants.ChatMaxTokens,
			Temperature: constants.ChatTemperature,
		},
	)
	if err != nil {
		return "", err
	}

	if len(resp.Choices) == 0 {
		return "", nil
	}

	return resp.Choices[0].Message.Content, nil
}
