package textgen

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"
)

const (
	DefaultGroqBaseURL = "https://api.groq.com/openai/v1"
	DefaultGroqModel   = "llama-3.3-70b-versatile"
)

// GroqConfig configures the Groq chat-completions backend.
type GroqConfig struct {
	APIKey  string
	Model   string
	BaseURL string
	// Timeout bounds a single completion call. Zero means no per-call limit.
	Timeout time.Duration
}

// GroqGenerator calls Groq's OpenAI-compatible chat completions endpoint.
type GroqGenerator struct {
	client  *openai.Client
	apiKey  string
	model   string
	timeout time.Duration
}

// NewGroqGenerator builds a generator. A missing API key is not an error here;
// it surfaces as a credential error on the first Complete call.
func NewGroqGenerator(cfg GroqConfig) *GroqGenerator {
	if cfg.Model == "" {
		cfg.Model = DefaultGroqModel
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultGroqBaseURL
	}

	clientCfg := openai.DefaultConfig(cfg.APIKey)
	clientCfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	clientCfg.HTTPClient = &http.Client{}

	return &GroqGenerator{
		client:  openai.NewClientWithConfig(clientCfg),
		apiKey:  cfg.APIKey,
		model:   cfg.Model,
		timeout: cfg.Timeout,
	}
}

func (g *GroqGenerator) Model() string { return g.model }

// Complete sends one system+user exchange and returns the first choice.
func (g *GroqGenerator) Complete(ctx context.Context, req Request) (string, error) {
	if strings.TrimSpace(g.apiKey) == "" {
		return "", NewCredentialError(ErrMissingAPIKey)
	}
	if g.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, g.timeout)
		defer cancel()
	}

	resp, err := g.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: g.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: req.System},
			{Role: openai.ChatMessageRoleUser, Content: req.User},
		},
		Temperature: req.Temperature,
		MaxTokens:   req.MaxTokens,
		TopP:        req.TopP,
	})
	if err != nil {
		return "", classifyOpenAIError(g.model, err)
	}
	if len(resp.Choices) == 0 || strings.TrimSpace(resp.Choices[0].Message.Content) == "" {
		return "", NewUnclassifiedError(ErrEmptyResponse)
	}
	return resp.Choices[0].Message.Content, nil
}

// classifyOpenAIError maps go-openai error shapes onto the Kind taxonomy.
func classifyOpenAIError(model string, err error) error {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		code, _ := apiErr.Code.(string)
		switch {
		case apiErr.HTTPStatusCode == http.StatusUnauthorized,
			apiErr.HTTPStatusCode == http.StatusForbidden,
			code == "invalid_api_key":
			return NewCredentialError(err)
		case apiErr.HTTPStatusCode == http.StatusTooManyRequests,
			code == "rate_limit_exceeded":
			return NewRateLimitError(err)
		case apiErr.HTTPStatusCode == http.StatusNotFound,
			code == "model_decommissioned",
			code == "model_not_found":
			return NewModelUnavailableError(model, err)
		}
		return NewUnclassifiedError(err)
	}

	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		switch reqErr.HTTPStatusCode {
		case http.StatusUnauthorized, http.StatusForbidden:
			return NewCredentialError(err)
		case http.StatusTooManyRequests:
			return NewRateLimitError(err)
		case http.StatusNotFound:
			return NewModelUnavailableError(model, err)
		}
	}
	return NewUnclassifiedError(fmt.Errorf("groq: %w", err))
}
