package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"cloud.google.com/go/storage"
	"github.com/AssassinMaeve/Project-Sentinel/internal/gcp"
	"github.com/AssassinMaeve/Project-Sentinel/internal/models"
	"github.com/AssassinMaeve/Project-Sentinel/internal/report"
	"github.com/google/uuid"
)

// Object metadata keys read from uploaded case files.
const (
	MetadataOfficerName  = "officer-name"
	MetadataIncidentType = "incident-type"
)

// GCSEvent is the payload of a GCS object finalize event.
type GCSEvent struct {
	Bucket      string            `json:"bucket"`
	Name        string            `json:"name"`
	ContentType string            `json:"contentType"`
	Generation  string            `json:"generation"`
	Metadata    map[string]string `json:"metadata"`
}

// ReportID derives the report ID from the object version, so redelivered
// events for the same upload map to the same job and archive object.
func (e GCSEvent) ReportID() string {
	key := fmt.Sprintf("gs://%s/%s#%s", e.Bucket, e.Name, e.Generation)
	return uuid.NewSHA1(uuid.NameSpaceURL, []byte(key)).String()
}

// ObjectReader downloads uploaded objects.
type ObjectReader interface {
	ReadObject(ctx context.Context, bucket, object string, maxBytes int64) ([]byte, error)
}

// UploadReportFunction generates a report whenever a case PDF lands in the
// upload bucket.
type UploadReportFunction struct {
	reader    ObjectReader
	extractor *PDFExtractorFunction
	generator *ReportGeneratorFunction
}

// NewUploadReport creates an UploadReportFunction from the environment.
func NewUploadReport(ctx context.Context) (*UploadReportFunction, error) {
	extractor, err := NewPDFExtractor(ctx)
	if err != nil {
		return nil, err
	}
	generator, err := NewReportGenerator(ctx)
	if err != nil {
		return nil, err
	}
	storageClient, err := storage.NewClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create storage client: %w", err)
	}
	generator.closers = append(generator.closers, storageClient.Close)

	return &UploadReportFunction{
		reader:    gcp.NewObjectReader(storageClient),
		extractor: extractor,
		generator: generator,
	}, nil
}

// Process handles one finalized object. Events that can never succeed, such
// as non-PDF objects or PDFs without an officer, are logged and dropped
// instead of returned, so the trigger does not retry them.
func (f *UploadReportFunction) Process(ctx context.Context, e GCSEvent) (*models.GenerateReportResponse, error) {
	source := fmt.Sprintf("gs://%s/%s", e.Bucket, e.Name)
	logCtx := slog.With("source", source, "generation", e.Generation)

	if !isPDFObject(e) {
		logCtx.Info("Skipping non-PDF object.", "contentType", e.ContentType)
		return nil, nil
	}
	officerName := strings.TrimSpace(e.Metadata[MetadataOfficerName])
	if officerName == "" {
		logCtx.Warn("Skipping PDF without officer metadata.", "metadataKey", MetadataOfficerName)
		return nil, nil
	}

	data, err := f.reader.ReadObject(ctx, e.Bucket, e.Name, f.extractor.MaxBytes())
	if err != nil {
		if errors.Is(err, gcp.ErrObjectTooLarge) {
			logCtx.Warn("Skipping PDF over the size limit.", "maxBytes", f.extractor.MaxBytes())
			return nil, nil
		}
		return nil, err
	}

	extracted, err := f.extractor.Process(ctx, UploadedFile{Name: e.Name, ContentType: pdfContentType, Data: data})
	if err != nil {
		if ctx.Err() != nil {
			return nil, err
		}
		logCtx.Error("Skipping unreadable PDF.", "error", err)
		return nil, nil
	}

	res, err := f.generator.generate(ctx, &models.GenerateReportRequest{
		Notes:        extracted.Text,
		OfficerName:  officerName,
		IncidentType: strings.TrimSpace(e.Metadata[MetadataIncidentType]),
		PageCount:    extracted.Metadata.Pages,
	}, source, e.ReportID)
	if err != nil {
		var verr *report.ValidationError
		if errors.As(err, &verr) {
			logCtx.Warn("Skipping PDF without usable text.", "error", err)
			return nil, nil
		}
		return nil, err
	}
	return res, nil
}

// Close releases the underlying clients.
func (f *UploadReportFunction) Close() error { return f.generator.Close() }

func isPDFObject(e GCSEvent) bool {
	if e.ContentType != "" {
		return e.ContentType == pdfContentType
	}
	return strings.HasSuffix(strings.ToLower(e.Name), ".pdf")
}
