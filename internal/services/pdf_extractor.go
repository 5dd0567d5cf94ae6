package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/AssassinMaeve/Project-Sentinel/internal/gcp"
	"github.com/AssassinMaeve/Project-Sentinel/internal/models"
	"github.com/AssassinMaeve/Project-Sentinel/internal/pdftext"
)

const (
	pdfContentType = "application/pdf"
	// DefaultUploadMaxBytes caps uploaded PDFs at 32 MiB.
	DefaultUploadMaxBytes = 32 << 20
)

var (
	ErrNoFile       = errors.New("no file uploaded")
	ErrNotPDF       = errors.New("only PDF files are supported")
	ErrFileTooLarge = errors.New("file exceeds the upload size limit")
)

// UploadedFile is a PDF received from a client or a bucket.
type UploadedFile struct {
	Name        string
	ContentType string
	Data        []byte
}

// PDFExtractorConfig holds configuration for the pdf-extractor service.
type PDFExtractorConfig struct {
	MaxBytes int64
}

// PDFExtractorFunction turns uploaded PDFs into page-delimited text.
type PDFExtractorFunction struct {
	config  PDFExtractorConfig
	extract func([]byte) (*pdftext.Document, error)
}

// NewPDFExtractor creates a PDFExtractorFunction from the environment.
func NewPDFExtractor(_ context.Context) (*PDFExtractorFunction, error) {
	maxBytes := gcp.GetEnvInt("UPLOAD_MAX_BYTES", DefaultUploadMaxBytes)
	if maxBytes <= 0 {
		return nil, fmt.Errorf("UPLOAD_MAX_BYTES must be positive, got %d", maxBytes)
	}
	return &PDFExtractorFunction{
		config:  PDFExtractorConfig{MaxBytes: int64(maxBytes)},
		extract: pdftext.Extract,
	}, nil
}

// MaxBytes is the largest accepted upload.
func (f *PDFExtractorFunction) MaxBytes() int64 { return f.config.MaxBytes }

// Process validates the upload and extracts its text. Pages are separated by
// a form feed so the report pipeline can chunk on page boundaries.
func (f *PDFExtractorFunction) Process(ctx context.Context, file UploadedFile) (*models.PDFExtractResponse, error) {
	logCtx := slog.With("fileName", file.Name, "fileSize", len(file.Data))

	if len(file.Data) == 0 {
		return nil, ErrNoFile
	}
	if file.ContentType != pdfContentType {
		logCtx.Warn("Rejected upload with unsupported content type", "contentType", file.ContentType)
		return nil, ErrNotPDF
	}
	if int64(len(file.Data)) > f.config.MaxBytes {
		return nil, ErrFileTooLarge
	}

	logCtx.Info("Processing PDF.")
	doc, err := f.extract(file.Data)
	if err != nil {
		logCtx.Error("PDF extraction failed", "error", err)
		return nil, fmt.Errorf("failed to process PDF: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	logCtx.Info("PDF extraction complete.", "pages", doc.PageCount, "characters", len(doc.Text))

	return &models.PDFExtractResponse{
		Success: true,
		Text:    doc.Text,
		Metadata: &models.PDFMetadata{
			Pages:    doc.PageCount,
			FileName: file.Name,
			FileSize: int64(len(file.Data)),
		},
	}, nil
}
