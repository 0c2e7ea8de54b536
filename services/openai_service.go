package services

import (
	"context"
	"fmt"
	"time"

	openai "github.com/sashabaranov/go-openai"

	appConfig "github.com/esquivelfacundo/gastrodash/config"
)

// Chat roles used across the pipeline. They match the OpenAI wire values so
// conversation history maps straight onto completion requests.
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// ChatMessage is one role-tagged message sent to or received from the model
type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// CompletionOptions tunes a single model call
type CompletionOptions struct {
	MaxTokens   int
	Temperature float32
}

// ChatModel defines the interface for generative language model calls.
// The pipeline never talks to OpenAI directly; everything goes through this
// interface so tests can substitute a deterministic stub.
type ChatModel interface {
	Complete(ctx context.Context, messages []ChatMessage, opts CompletionOptions) (string, error)
}

// OpenAIChatModel implements ChatModel using the OpenAI chat completions API
type OpenAIChatModel struct {
	client  *openai.Client
	model   string
	timeout time.Duration
}

var chatModelInstance ChatModel

// InitChatModel initializes the chat model from application configuration
func InitChatModel() (ChatModel, error) {
	cfg := appConfig.GetConfig()
	if cfg.OpenAIAPIKey == "" {
		return nil, fmt.Errorf("OPENAI_API_KEY is required")
	}

	chatModelInstance = &OpenAIChatModel{
		client:  openai.NewClient(cfg.OpenAIAPIKey),
		model:   cfg.OpenAIModel,
		timeout: cfg.ModelTimeout,
	}
	return chatModelInstance, nil
}

// GetChatModel returns the initialized chat model instance
func GetChatModel() ChatModel {
	return chatModelInstance
}

// SetChatModel sets the chat model instance (primarily for testing)
func SetChatModel(model ChatModel) {
	chatModelInstance = model
}

// Complete issues one chat completion call and returns the text of the first
// choice. A hung upstream is bounded by the configured timeout.
func (m *OpenAIChatModel) Complete(ctx context.Context, messages []ChatMessage, opts CompletionOptions) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, m.timeout)
	defer cancel()

	reqMessages := make([]openai.ChatCompletionMessage, 0, len(messages))
	for _, msg := range messages {
		reqMessages = append(reqMessages, openai.ChatCompletionMessage{
			Role:    msg.Role,
			Content: msg.Content,
		})
	}

	resp, err := m.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       m.model,
		Messages:    reqMessages,
		MaxTokens:   opts.MaxTokens,
		Temperature: opts.Temperature,
	})
	if err != nil {
		return "", fmt.Errorf("chat completion failed: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("chat completion returned no choices")
	}

	return resp.Choices[0].Message.Content, nil
}
