package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/AssassinMaeve/Project-Sentinel/internal/gcp"
	"github.com/AssassinMaeve/Project-Sentinel/internal/report"
	"github.com/AssassinMaeve/Project-Sentinel/internal/textgen"
)

const (
	ProviderGroq   = "groq"
	ProviderVertex = "vertex"
)

// DefaultLargeDocumentPages is the page count above which uploads are always
// processed with map-reduce.
const DefaultLargeDocumentPages = 50

// GenerationConfig selects the text-generation backend and the pipeline limits.
type GenerationConfig struct {
	Provider           string
	ProjectID          string
	VertexAIRegion     string
	VertexModel        string
	GroqAPIKey         string
	GroqModel          string
	GroqBaseURL        string
	CallTimeout        time.Duration
	LargeDocumentPages int
	Pipeline           report.Config
}

// loadGenerationConfig loads and validates the generation settings from the environment.
func loadGenerationConfig() (*GenerationConfig, error) {
	defaults := report.DefaultConfig()

	config := &GenerationConfig{
		Provider:           strings.ToLower(strings.TrimSpace(gcp.GetEnv("LLM_PROVIDER", ProviderGroq))),
		ProjectID:          gcp.GetEnv("PROJECT_ID", ""),
		VertexAIRegion:     gcp.GetEnv("VERTEX_AI_REGION", "us-central1"),
		VertexModel:        gcp.GetEnv("VERTEX_MODEL", gcp.DefaultVertexModel),
		GroqAPIKey:         gcp.GetEnv("GROQ_API_KEY", ""),
		GroqModel:          gcp.GetEnv("GROQ_MODEL", textgen.DefaultGroqModel),
		GroqBaseURL:        gcp.GetEnv("GROQ_BASE_URL", textgen.DefaultGroqBaseURL),
		CallTimeout:        gcp.GetEnvDuration("LLM_CALL_TIMEOUT", 2*time.Minute),
		LargeDocumentPages: gcp.GetEnvInt("REPORT_LARGE_DOCUMENT_PAGES", DefaultLargeDocumentPages),
		Pipeline: report.Config{
			TokenThreshold:  gcp.GetEnvInt("REPORT_TOKEN_THRESHOLD", defaults.TokenThreshold),
			ChunkTokens:     gcp.GetEnvInt("REPORT_CHUNK_TOKENS", defaults.ChunkTokens),
			MapCharLimit:    gcp.GetEnvInt("REPORT_MAP_CHAR_LIMIT", defaults.MapCharLimit),
			ReduceCharLimit: gcp.GetEnvInt("REPORT_REDUCE_CHAR_LIMIT", defaults.ReduceCharLimit),
			NotesCharLimit:  gcp.GetEnvInt("REPORT_NOTES_CHAR_LIMIT", defaults.NotesCharLimit),
			MapConcurrency:  gcp.GetEnvInt("REPORT_MAP_CONCURRENCY", 0),
			RequestTimeout:  gcp.GetEnvDuration("REPORT_REQUEST_TIMEOUT", 5*time.Minute),
			Sampling: textgen.Sampling{
				Temperature: gcp.GetEnvFloat("LLM_TEMPERATURE", defaults.Sampling.Temperature),
				MaxTokens:   gcp.GetEnvInt("LLM_MAX_TOKENS", defaults.Sampling.MaxTokens),
				TopP:        gcp.GetEnvFloat("LLM_TOP_P", defaults.Sampling.TopP),
			},
		},
	}

	if config.Provider == "" {
		config.Provider = ProviderGroq
	}
	switch config.Provider {
	case ProviderGroq:
		// A missing key is reported per request as a credential error.
	case ProviderVertex:
		if config.ProjectID == "" {
			return nil, fmt.Errorf("PROJECT_ID environment variable must be set for the vertex provider")
		}
	default:
		return nil, fmt.Errorf("unsupported LLM_PROVIDER %q", config.Provider)
	}
	return config, nil
}

// newGenerator builds the configured backend. The returned close function
// releases its clients.
func newGenerator(ctx context.Context, config *GenerationConfig) (textgen.Generator, func() error, error) {
	switch config.Provider {
	case ProviderVertex:
		gen, err := gcp.NewVertexGenerator(ctx, gcp.VertexConfig{
			ProjectID: config.ProjectID,
			Region:    config.VertexAIRegion,
			Model:     config.VertexModel,
			Timeout:   config.CallTimeout,
		})
		if err != nil {
			return nil, nil, fmt.Errorf("failed to create vertex generator: %w", err)
		}
		return gen, gen.Close, nil
	default:
		gen := textgen.NewGroqGenerator(textgen.GroqConfig{
			APIKey:  config.GroqAPIKey,
			Model:   config.GroqModel,
			BaseURL: config.GroqBaseURL,
			Timeout: config.CallTimeout,
		})
		return gen, func() error { return nil }, nil
	}
}
