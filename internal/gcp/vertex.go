package gcp

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"cloud.google.com/go/vertexai/genai"
	"github.com/AssassinMaeve/Project-Sentinel/internal/textgen"
	"google.golang.org/api/googleapi"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

const DefaultVertexModel = "gemini-1.5-pro"

// VertexConfig configures the Vertex AI Gemini backend.
type VertexConfig struct {
	ProjectID string
	Region    string
	Model     string
	// Timeout bounds a single GenerateContent call. Zero means no per-call limit.
	Timeout time.Duration
}

// VertexGenerator implements textgen.Generator on top of Gemini.
// A GenerativeModel value is built per call so concurrent map calls never
// share mutable model configuration.
type VertexGenerator struct {
	baseClient *genai.Client
	model      string
	timeout    time.Duration
}

// NewVertexGenerator creates the shared genai client.
func NewVertexGenerator(ctx context.Context, cfg VertexConfig) (*VertexGenerator, error) {
	if cfg.ProjectID == "" || cfg.Region == "" {
		return nil, fmt.Errorf("NewVertexGenerator: projectID and region cannot be empty")
	}
	if cfg.Model == "" {
		cfg.Model = DefaultVertexModel
	}

	baseClient, err := genai.NewClient(ctx, cfg.ProjectID, cfg.Region)
	if err != nil {
		return nil, fmt.Errorf("genai.NewClient: %w", err)
	}

	return &VertexGenerator{
		baseClient: baseClient,
		model:      cfg.Model,
		timeout:    cfg.Timeout,
	}, nil
}

func (g *VertexGenerator) Model() string { return g.model }

// Complete runs one system+user exchange against Gemini.
func (g *VertexGenerator) Complete(ctx context.Context, req textgen.Request) (string, error) {
	if g.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, g.timeout)
		defer cancel()
	}

	model := g.baseClient.GenerativeModel(g.model)
	model.SystemInstruction = &genai.Content{
		Parts: []genai.Part{genai.Text(req.System)},
	}
	model.SetTemperature(req.Temperature)
	model.SetTopP(req.TopP)
	if req.MaxTokens > 0 {
		model.SetMaxOutputTokens(int32(req.MaxTokens))
	}
	// Incident narratives routinely describe violence and weapons.
	model.SafetySettings = []*genai.SafetySetting{
		{Category: genai.HarmCategoryHateSpeech, Threshold: genai.HarmBlockNone},
		{Category: genai.HarmCategoryDangerousContent, Threshold: genai.HarmBlockNone},
		{Category: genai.HarmCategorySexuallyExplicit, Threshold: genai.HarmBlockNone},
		{Category: genai.HarmCategoryHarassment, Threshold: genai.HarmBlockNone},
	}

	resp, err := model.GenerateContent(ctx, genai.Text(req.User))
	if err != nil {
		return "", classifyVertexError(g.model, err)
	}

	text := extractText(resp)
	if text == "" {
		return "", textgen.NewUnclassifiedError(textgen.ErrEmptyResponse)
	}
	return text, nil
}

func (g *VertexGenerator) Close() error {
	if g.baseClient != nil {
		return g.baseClient.Close()
	}
	return nil
}

// extractText concatenates the text parts of the first candidate.
func extractText(resp *genai.GenerateContentResponse) string {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil || len(resp.Candidates[0].Content.Parts) == 0 {
		return ""
	}

	var contentBuilder strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if txt, ok := part.(genai.Text); ok {
			contentBuilder.WriteString(string(txt))
		}
	}
	return strings.TrimSpace(contentBuilder.String())
}

// classifyVertexError maps REST and gRPC error shapes onto textgen kinds.
func classifyVertexError(model string, err error) error {
	var gerr *googleapi.Error
	if errors.As(err, &gerr) {
		switch gerr.Code {
		case http.StatusUnauthorized, http.StatusForbidden:
			return textgen.NewCredentialError(err)
		case http.StatusTooManyRequests:
			return textgen.NewRateLimitError(err)
		case http.StatusNotFound:
			return textgen.NewModelUnavailableError(model, err)
		}
		return textgen.NewUnclassifiedError(err)
	}

	if st, ok := status.FromError(err); ok {
		switch st.Code() {
		case codes.Unauthenticated, codes.PermissionDenied:
			return textgen.NewCredentialError(err)
		case codes.ResourceExhausted:
			return textgen.NewRateLimitError(err)
		case codes.NotFound:
			return textgen.NewModelUnavailableError(model, err)
		}
	}
	return textgen.NewUnclassifiedError(fmt.Errorf("vertex: %w", err))
}
