package llm

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"

	"godash/domain/core"
)

// Config holds the connection settings for the hosted model.
type Config struct {
	APIKey      string
	Model       string        // e.g. "gpt-4o-mini"
	BaseURL     string        // optional override (default: api.openai.com)
	Temperature float64       // 0.0-1.0, lower = more deterministic
	MaxTokens   int           // max tokens in the completion
	Timeout     time.Duration // per-request timeout
}

// OpenAIClient implements ports.LLMClient over the OpenAI chat completions
// API. The client owns model selection and token limits; callers only supply
// the prompt.
type OpenAIClient struct {
	client      *openai.Client
	model       string
	temperature float32
	maxTokens   int
	timeout     time.Duration
}

// NewOpenAIClient creates a chat-completion client from config.
func NewOpenAIClient(cfg Config) (*OpenAIClient, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, errors.New("missing OpenAI API key")
	}
	if strings.TrimSpace(cfg.Model) == "" {
		return nil, errors.New("missing model")
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 120 * time.Second
	}
	maxTokens := cfg.MaxTokens
	if maxTokens <= 0 {
		maxTokens = 4096
	}

	clientConfig := openai.DefaultConfig(cfg.APIKey)
	if base := strings.TrimSpace(cfg.BaseURL); base != "" {
		clientConfig.BaseURL = strings.TrimRight(base, "/")
	}
	clientConfig.HTTPClient = &http.Client{Timeout: timeout}

	return &OpenAIClient{
		client:      openai.NewClientWithConfig(clientConfig),
		model:       cfg.Model,
		temperature: float32(cfg.Temperature),
		maxTokens:   maxTokens,
		timeout:     timeout,
	}, nil
}

const systemContext = "You are a dashboard design assistant for tabular datasets. Respond with a single valid JSON object and nothing else."

// ChatCompletion sends one system+user exchange and returns the raw content
// of the first choice. JSON mode is enforced so the model cannot drift into
// conversational prose.
func (c *OpenAIClient) ChatCompletion(ctx context.Context, prompt string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: c.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemContext},
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
		Temperature: c.temperature,
		MaxTokens:   c.maxTokens,
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
	})
	if err != nil {
		var apiErr *openai.APIError
		if errors.As(err, &apiErr) {
			return "", core.NewUpstreamResponseError(fmt.Sprintf("openai status %d", apiErr.HTTPStatusCode), err)
		}
		return "", core.NewUpstreamResponseError("chat completion request failed", err)
	}
	if len(resp.Choices) == 0 {
		return "", core.NewUpstreamResponseError("response contained no choices", nil)
	}

	return resp.Choices[0].Message.Content, nil
}

// MockLLMClient is a canned-response client for tests.
type MockLLMClient struct {
	Response string // returned verbatim when Err is nil
	Err      error  // set to simulate transport failures
	Prompts  []string
}

func (m *MockLLMClient) ChatCompletion(ctx context.Context, prompt string) (string, error) {
	m.Prompts = append(m.Prompts, prompt)
	if m.Err != nil {
		return "", m.Err
	}
	return m.Response, nil
}
