// Package llm wraps the external generative-text endpoint. The model is
// only ever asked to restate facts it is given; it is never the source of
// product data.
package llm

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/sashabaranov/go-openai"
	"go.uber.org/zap"
)

// Formatter turns a prompt into natural text. Implementations may fail
// with *UpstreamError; callers degrade to the deterministic fallback
// instead of retrying.
type Formatter interface {
	Format(ctx context.Context, prompt string) (string, error)
}

// UpstreamError wraps any failure of the generative endpoint: transport
// errors, non-success statuses, and malformed payloads alike.
type UpstreamError struct {
	Err error
}

func (e *UpstreamError) Error() string {
	return "llm: upstream failure: " + e.Err.Error()
}

func (e *UpstreamError) Unwrap() error {
	return e.Err
}

// Config selects the endpoint and sampling parameters.
type Config struct {
	APIKey      string
	BaseURL     string
	Model       string
	MaxTokens   int
	Temperature float64
	Timeout     time.Duration
}

// Client is the production Formatter, speaking the chat-completion
// protocol. Low temperature keeps the restatement close to the input.
type Client struct {
	client      *openai.Client
	model       string
	maxTokens   int
	temperature float32
	logger      *zap.Logger
}

func NewClient(cfg Config, logger *zap.Logger) *Client {
	clientConfig := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientConfig.BaseURL = cfg.BaseURL
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	clientConfig.HTTPClient = &http.Client{Timeout: timeout}

	return &Client{
		client:      openai.NewClientWithConfig(clientConfig),
		model:       cfg.Model,
		maxTokens:   cfg.MaxTokens,
		temperature: float32(cfg.Temperature),
		logger:      logger,
	}
}

// Format issues one completion request and extracts the first candidate.
// There is no retry: a failed call surfaces immediately as *UpstreamError.
func (c *Client) Format(ctx context.Context, prompt string) (string, error) {
	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: c.model,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleUser,
				Content: prompt,
			},
		},
		MaxTokens:   c.maxTokens,
		Temperature: c.temperature,
	})
	if err != nil {
		c.logger.Error("completion request failed", zap.Error(err))
		return "", &UpstreamError{Err: err}
	}

	if len(resp.Choices) == 0 {
		return "", &UpstreamError{Err: errors.New("empty completion response")}
	}

	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}
