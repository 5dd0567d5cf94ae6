package report

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/AssassinMaeve/Project-Sentinel/internal/textgen"
	"golang.org/x/sync/errgroup"
)

// Extractor runs the map phase: one extraction call per chunk.
type Extractor struct {
	gen         textgen.Generator
	sampling    textgen.Sampling
	charLimit   int
	concurrency int
	logger      *slog.Logger
}

// NewExtractor builds an Extractor from the pipeline config.
func NewExtractor(gen textgen.Generator, cfg Config, logger *slog.Logger) *Extractor {
	cfg = cfg.withDefaults()
	if logger == nil {
		logger = slog.Default()
	}
	return &Extractor{
		gen:         gen,
		sampling:    cfg.Sampling,
		charLimit:   cfg.MapCharLimit,
		concurrency: cfg.MapConcurrency,
		logger:      logger,
	}
}

// Extract pulls the incident facts out of a single chunk.
func (e *Extractor) Extract(ctx context.Context, chunk Chunk) (string, error) {
	return e.gen.Complete(ctx, textgen.Request{
		System:   AnalystSystemPrompt,
		User:     buildExtractionPrompt(chunk, e.charLimit),
		Sampling: e.sampling,
	})
}

// ExtractAll extracts every chunk concurrently and returns the summaries
// indexed by Chunk.Index. The first failure cancels the remaining calls and
// is returned; partial results are discarded.
func (e *Extractor) ExtractAll(ctx context.Context, chunks []Chunk) ([]string, error) {
	seen := make([]bool, len(chunks))
	for _, chunk := range chunks {
		if chunk.Index < 0 || chunk.Index >= len(chunks) || seen[chunk.Index] {
			return nil, fmt.Errorf("chunk index %d out of sequence for %d chunks", chunk.Index, len(chunks))
		}
		seen[chunk.Index] = true
	}

	summaries := make([]string, len(chunks))
	g, gctx := errgroup.WithContext(ctx)
	if e.concurrency > 0 {
		g.SetLimit(e.concurrency)
	}
	for _, chunk := range chunks {
		chunk := chunk
		g.Go(func() error {
			summary, err := e.Extract(gctx, chunk)
			if err != nil {
				e.logger.Error("Map phase extraction failed", "chunk", chunk.Index, "pages", chunk.PageRange(), "error", err)
				return fmt.Errorf("chunk %d (pages %s): %w", chunk.Index, chunk.PageRange(), err)
			}
			e.logger.Info("Chunk extracted.", "chunk", chunk.Index, "totalChunks", chunk.TotalChunks, "pages", chunk.PageRange())
			summaries[chunk.Index] = summary
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return summaries, nil
}
