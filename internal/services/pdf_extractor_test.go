package services

import (
	"context"
	"errors"
	"testing"

	"github.com/AssassinMaeve/Project-Sentinel/internal/pdftext"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestExtractor(doc *pdftext.Document, err error) *PDFExtractorFunction {
	return &PDFExtractorFunction{
		config: PDFExtractorConfig{MaxBytes: 16},
		extract: func([]byte) (*pdftext.Document, error) {
			return doc, err
		},
	}
}

func TestPDFExtractor_Process(t *testing.T) {
	f := newTestExtractor(&pdftext.Document{Text: "page one\fpage two", Pages: []string{"page one", "page two"}, PageCount: 2}, nil)

	res, err := f.Process(context.Background(), UploadedFile{Name: "case-0412.pdf", ContentType: "application/pdf", Data: []byte("%PDF-1.7")})

	require.NoError(t, err)
	assert.True(t, res.Success)
	assert.Equal(t, "page one\fpage two", res.Text)
	require.NotNil(t, res.Metadata)
	assert.Equal(t, 2, res.Metadata.Pages)
	assert.Equal(t, "case-0412.pdf", res.Metadata.FileName)
	assert.Equal(t, int64(8), res.Metadata.FileSize)
}

func TestPDFExtractor_RejectsBadUploads(t *testing.T) {
	f := newTestExtractor(&pdftext.Document{}, nil)

	tests := []struct {
		name string
		file UploadedFile
		want error
	}{
		{"empty", UploadedFile{Name: "a.pdf", ContentType: "application/pdf"}, ErrNoFile},
		{"wrong type", UploadedFile{Name: "notes.txt", ContentType: "text/plain", Data: []byte("notes")}, ErrNotPDF},
		{"too large", UploadedFile{Name: "big.pdf", ContentType: "application/pdf", Data: make([]byte, 17)}, ErrFileTooLarge},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.Process(context.Background(), tt.file)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestPDFExtractor_WrapsExtractionErrors(t *testing.T) {
	cause := errors.New("xref table corrupt")
	f := newTestExtractor(nil, cause)

	_, err := f.Process(context.Background(), UploadedFile{Name: "a.pdf", ContentType: "application/pdf", Data: []byte("%PDF")})
	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "failed to process PDF")
}

func TestNewPDFExtractor_Limits(t *testing.T) {
	f, err := NewPDFExtractor(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(DefaultUploadMaxBytes), f.MaxBytes())

	t.Setenv("UPLOAD_MAX_BYTES", "1024")
	f, err = NewPDFExtractor(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(1024), f.MaxBytes())

	t.Setenv("UPLOAD_MAX_BYTES", "0")
	_, err = NewPDFExtractor(context.Background())
	assert.Error(t, err)
}
