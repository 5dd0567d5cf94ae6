package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"unicode/utf8"

	"cloud.google.com/go/storage"
	"github.com/AssassinMaeve/Project-Sentinel/internal/gcp"
	"github.com/AssassinMaeve/Project-Sentinel/internal/models"
	"github.com/AssassinMaeve/Project-Sentinel/internal/report"
	"github.com/AssassinMaeve/Project-Sentinel/internal/session"
	"github.com/AssassinMaeve/Project-Sentinel/internal/textgen"
	"github.com/google/uuid"
)

// ErrRefusal marks a report the model declined to write.
var ErrRefusal = errors.New("model response indicates refusal to write the report")

// ReportArchive stores finished reports.
type ReportArchive interface {
	Save(ctx context.Context, reportID, content string) (string, error)
}

// JobLedger records the lifecycle of each report.
type JobLedger interface {
	Create(ctx context.Context, job *models.ReportJob) error
	Update(ctx context.Context, reportID string, u models.ReportJobUpdate) error
}

// ReportGeneratorConfig holds configuration for the report-generator service.
type ReportGeneratorConfig struct {
	Generation     GenerationConfig
	ReportsBucket  string
	CollectionName string
}

// ReportGeneratorFunction holds dependencies for report generation.
// Archive and ledger are optional.
type ReportGeneratorFunction struct {
	pipeline *report.Pipeline
	archive  ReportArchive
	ledger   JobLedger
	config   ReportGeneratorConfig
	newID    func() string
	closers  []func() error
}

// NewReportGenerator creates a ReportGeneratorFunction from the environment.
func NewReportGenerator(ctx context.Context) (*ReportGeneratorFunction, error) {
	genConfig, err := loadGenerationConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	config := ReportGeneratorConfig{
		Generation:     *genConfig,
		ReportsBucket:  gcp.GetEnv("REPORTS_BUCKET", ""),
		CollectionName: gcp.GetEnv("FIRESTORE_COLLECTION", "reports"),
	}

	gen, closeGen, err := newGenerator(ctx, genConfig)
	if err != nil {
		return nil, err
	}
	f := &ReportGeneratorFunction{
		pipeline: report.NewPipeline(gen, genConfig.Pipeline),
		config:   config,
		newID:    uuid.NewString,
		closers:  []func() error{closeGen},
	}

	if config.ReportsBucket != "" {
		storageClient, err := storage.NewClient(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to create storage client: %w", err)
		}
		f.archive = gcp.NewReportArchive(storageClient, config.ReportsBucket)
		f.closers = append(f.closers, storageClient.Close)
	}

	if genConfig.ProjectID != "" && config.CollectionName != "" {
		firestoreClient, err := gcp.NewFirestoreClient(ctx, genConfig.ProjectID)
		if err != nil {
			return nil, fmt.Errorf("failed to create firestore client: %w", err)
		}
		f.ledger = gcp.NewJobStore(firestoreClient, config.CollectionName)
		f.closers = append(f.closers, firestoreClient.Close)
	}

	slog.Info("Report generator initialized.",
		"provider", genConfig.Provider,
		"archive", f.archive != nil,
		"ledger", f.ledger != nil)
	return f, nil
}

// Close releases every client opened by NewReportGenerator.
func (f *ReportGeneratorFunction) Close() error {
	var errs []error
	for _, c := range f.closers {
		errs = append(errs, c())
	}
	return errors.Join(errs...)
}

// Pipeline exposes the underlying pipeline, for example to reuse its limits.
func (f *ReportGeneratorFunction) Pipeline() *report.Pipeline { return f.pipeline }

// Process validates the request, generates the report, archives it and keeps
// the job ledger in step with the pipeline stages.
func (f *ReportGeneratorFunction) Process(ctx context.Context, req *models.GenerateReportRequest) (*models.GenerateReportResponse, error) {
	return f.generate(ctx, req, "", f.newID)
}

// generate runs one report under the ID returned by newID. Callers that can
// be retried pass a deterministic ID so the ledger job and archive object
// are reused instead of duplicated.
func (f *ReportGeneratorFunction) generate(ctx context.Context, req *models.GenerateReportRequest, source string, newID func() string) (*models.GenerateReportResponse, error) {
	pipeReq := report.Request{
		NotesText:    req.Notes,
		OfficerName:  req.OfficerName,
		IncidentType: req.IncidentType,
		ForceChunked: f.forceChunked(req),
	}
	if err := pipeReq.Validate(); err != nil {
		return nil, err
	}

	reportID := newID()
	logCtx := slog.With("reportId", reportID, "officer", req.OfficerName)
	logCtx.Info("Starting report generation.", "forceChunked", pipeReq.ForceChunked, "pageCount", req.PageCount)

	if f.ledger != nil {
		job := &models.ReportJob{
			ReportID:     reportID,
			UserID:       session.UserID(ctx),
			OfficerName:  req.OfficerName,
			IncidentType: req.IncidentType,
			Source:       source,
			Status:       models.StatusPending,
			PageCount:    req.PageCount,
		}
		err := f.ledger.Create(ctx, job)
		switch {
		case errors.Is(err, gcp.ErrJobExists):
			logCtx.Info("Resuming existing report job.")
			f.updateJob(ctx, logCtx, reportID, models.ReportJobUpdate{Status: models.StatusPending})
		case err != nil:
			logCtx.Error("Failed to create report job", "error", err)
			return nil, err
		}
	}

	res, err := f.pipeline.Run(ctx, pipeReq, f.observeStages(ctx, logCtx, reportID))
	if err != nil {
		return nil, f.handleError(ctx, logCtx, reportID, "report generation failed", err)
	}

	content := cleanModelOutput(res.Report)
	if isRefusal(content) {
		logCtx.Error("LLM refusal detected", "responseStart", openingText(content))
		return nil, f.handleError(ctx, logCtx, reportID, "report generation failed", textgen.NewUnclassifiedError(ErrRefusal))
	}

	var archiveURI string
	if f.archive != nil {
		archiveURI, err = f.archive.Save(ctx, reportID, content)
		if err != nil {
			return nil, f.handleError(ctx, logCtx, reportID, "failed to archive report", err)
		}
	}

	f.updateJob(ctx, logCtx, reportID, models.ReportJobUpdate{
		Status:     models.StatusCompleted,
		Strategy:   string(res.Strategy),
		ChunkCount: res.ChunkCount,
		ArchiveURI: archiveURI,
	})
	logCtx.Info("Report generation complete.", "strategy", res.Strategy, "archiveUri", archiveURI)

	return &models.GenerateReportResponse{
		Success:    true,
		Report:     content,
		ReportID:   reportID,
		Strategy:   string(res.Strategy),
		ArchiveURI: archiveURI,
	}, nil
}

// forceChunked routes flagged or long documents through map-reduce.
func (f *ReportGeneratorFunction) forceChunked(req *models.GenerateReportRequest) bool {
	limit := f.config.Generation.LargeDocumentPages
	if limit <= 0 {
		limit = DefaultLargeDocumentPages
	}
	return req.IsLargeDocument || req.PageCount > limit
}

// observeStages mirrors the strategy stage into the job ledger. Terminal
// stages are written by Process itself once archiving has finished.
func (f *ReportGeneratorFunction) observeStages(ctx context.Context, logCtx *slog.Logger, reportID string) report.StageObserver {
	return func(stage report.Stage) {
		switch stage {
		case report.StageSinglePass, report.StageChunked:
			f.updateJob(ctx, logCtx, reportID, models.ReportJobUpdate{Status: string(stage), Strategy: string(stage)})
		}
	}
}

func (f *ReportGeneratorFunction) updateJob(ctx context.Context, logCtx *slog.Logger, reportID string, u models.ReportJobUpdate) {
	if f.ledger == nil {
		return
	}
	if err := f.ledger.Update(ctx, reportID, u); err != nil {
		logCtx.Warn("Failed to update report job", "status", u.Status, "error", err)
	}
}

// handleError marks the job FAILED and returns the wrapped error. The ledger
// write survives cancellation of the request context.
func (f *ReportGeneratorFunction) handleError(ctx context.Context, logCtx *slog.Logger, reportID, message string, originalErr error) error {
	fullErr := fmt.Errorf("%s: %w", message, originalErr)
	logCtx.Error("Report generation error", "error", fullErr)
	if f.ledger != nil {
		u := models.ReportJobUpdate{Status: models.StatusFailed, ErrorDetails: fullErr.Error()}
		if err := f.ledger.Update(context.WithoutCancel(ctx), reportID, u); err != nil {
			logCtx.Error("CRITICAL: Failed to update status to FAILED", "updateError", err)
		}
	}
	return fullErr
}

// cleanModelOutput strips surrounding markdown fences from generated text.
func cleanModelOutput(s string) string {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "```markdown")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}

var refusalPhrases = []string{
	"i am unable to",
	"i'm unable to",
	"i cannot fulfill",
	"i cannot answer",
	"i cannot provide",
	"i can't assist",
	"as a large language model",
	"as an ai language model",
}

// refusalWindow bounds how much of the opening text is checked, so quoted
// statements inside a narrative are not mistaken for a refusal.
const refusalWindow = 300

// openingText returns at most the first refusalWindow runes of s.
func openingText(s string) string {
	if utf8.RuneCountInString(s) <= refusalWindow {
		return s
	}
	return string([]rune(s)[:refusalWindow])
}

func isRefusal(content string) bool {
	head := strings.ToLower(openingText(content))
	for _, phrase := range refusalPhrases {
		if strings.Contains(head, phrase) {
			return true
		}
	}
	return false
}
