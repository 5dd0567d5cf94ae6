// Package report turns officer notes and extracted document text into a
// formatted police incident report.
//
// Small inputs are written in a single generation call. Inputs at or above
// the token threshold, or requests that force it, go through map-reduce:
// the text is chunked on page boundaries, every chunk is summarised
// concurrently, and one final call writes the report from the summaries.
package report

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/AssassinMaeve/Project-Sentinel/internal/textgen"
)

// Stage is the pipeline's position in a single Generate call.
type Stage string

const (
	StageUnstarted  Stage = "UNSTARTED"
	StageSinglePass Stage = "SINGLE_PASS"
	StageChunked    Stage = "CHUNKED"
	StageCompleted  Stage = "COMPLETED"
	StageFailed     Stage = "FAILED"
)

// StageObserver is notified on every stage transition.
type StageObserver func(Stage)

// Result describes a finished report.
type Result struct {
	Report          string
	Strategy        Stage
	EstimatedTokens int
	ChunkCount      int
}

// Pipeline is the entry point for report generation. It holds no per-request
// state and is safe for concurrent use.
type Pipeline struct {
	gen         textgen.Generator
	cfg         Config
	extractor   *Extractor
	synthesizer *Synthesizer
	now         func() time.Time
	logger      *slog.Logger
}

// Option customises a Pipeline.
type Option func(*Pipeline)

// WithClock overrides the time source used for report dates.
func WithClock(now func() time.Time) Option {
	return func(p *Pipeline) { p.now = now }
}

// WithLogger sets the logger used by the pipeline and its phases.
func WithLogger(logger *slog.Logger) Option {
	return func(p *Pipeline) { p.logger = logger }
}

// NewPipeline wires the map and reduce phases around gen.
func NewPipeline(gen textgen.Generator, cfg Config, opts ...Option) *Pipeline {
	p := &Pipeline{
		gen:    gen,
		cfg:    cfg.withDefaults(),
		now:    time.Now,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(p)
	}
	p.extractor = NewExtractor(gen, p.cfg, p.logger)
	p.synthesizer = NewSynthesizer(gen, p.cfg, p.now)
	return p
}

// Config returns the effective configuration.
func (p *Pipeline) Config() Config { return p.cfg }

// Generate returns the formatted report for req.
func (p *Pipeline) Generate(ctx context.Context, req Request) (string, error) {
	res, err := p.Run(ctx, req, nil)
	if err != nil {
		return "", err
	}
	return res.Report, nil
}

// Run is Generate with stage notifications and strategy details.
func (p *Pipeline) Run(ctx context.Context, req Request, observe StageObserver) (Result, error) {
	if observe == nil {
		observe = func(Stage) {}
	}
	observe(StageUnstarted)

	if err := req.Validate(); err != nil {
		observe(StageFailed)
		return Result{}, err
	}

	if p.cfg.RequestTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.cfg.RequestTimeout)
		defer cancel()
	}

	res := Result{EstimatedTokens: EstimateTokens(req.NotesText)}
	logCtx := p.logger.With("officer", req.OfficerName, "estimatedTokens", res.EstimatedTokens)

	var err error
	if res.EstimatedTokens < p.cfg.TokenThreshold && !req.ForceChunked {
		res.Strategy = StageSinglePass
		observe(StageSinglePass)
		logCtx.Info("Generating report in a single pass.")
		res.Report, err = p.singlePass(ctx, req)
	} else {
		res.Strategy = StageChunked
		observe(StageChunked)
		res.Report, res.ChunkCount, err = p.chunked(ctx, logCtx, req)
	}
	if err != nil {
		logCtx.Error("Report generation failed", "strategy", res.Strategy, "error", err)
		observe(StageFailed)
		return Result{}, err
	}

	logCtx.Info("Report generation complete.", "strategy", res.Strategy, "chunkCount", res.ChunkCount)
	observe(StageCompleted)
	return res, nil
}

func (p *Pipeline) singlePass(ctx context.Context, req Request) (string, error) {
	notes := truncateRunes(req.NotesText, p.cfg.NotesCharLimit)
	return p.gen.Complete(ctx, textgen.Request{
		System:   NotesSystemPrompt,
		User:     buildNotesPrompt(notes, req.OfficerName, req.IncidentType, p.now()),
		Sampling: p.cfg.Sampling,
	})
}

func (p *Pipeline) chunked(ctx context.Context, logCtx *slog.Logger, req Request) (string, int, error) {
	chunks := ChunkDocument(req.NotesText, p.cfg.ChunkTokens)
	logCtx.Info("Generating report with map-reduce.", "chunkCount", len(chunks))

	summaries, err := p.extractor.ExtractAll(ctx, chunks)
	if err != nil {
		return "", len(chunks), fmt.Errorf("map phase: %w", err)
	}

	report, err := p.synthesizer.Synthesize(ctx, summaries, req.OfficerName)
	if err != nil {
		return "", len(chunks), fmt.Errorf("reduce phase: %w", err)
	}
	return report, len(chunks), nil
}
