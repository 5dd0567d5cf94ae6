package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"

	"github.com/AssassinMaeve/Project-Sentinel/internal/gcp"
	"github.com/AssassinMaeve/Project-Sentinel/internal/models"
	"github.com/AssassinMaeve/Project-Sentinel/internal/pdftext"
	"github.com/AssassinMaeve/Project-Sentinel/internal/textgen"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type uploadFixture struct {
	fn     *UploadReportFunction
	ledger *fakeLedger
	calls  *int
}

func newUploadFixture(reader ObjectReader, doc *pdftext.Document, extractErr error) uploadFixture {
	calls := new(int)
	var mu sync.Mutex
	ledger := &fakeLedger{}
	extractor := &PDFExtractorFunction{
		config: PDFExtractorConfig{MaxBytes: 1 << 20},
		extract: func([]byte) (*pdftext.Document, error) {
			return doc, extractErr
		},
	}
	return uploadFixture{
		fn: &UploadReportFunction{
			reader:    reader,
			extractor: extractor,
			generator: newTestReportGenerator(echoGenerator(calls, &mu), nil, ledger),
		},
		ledger: ledger,
		calls:  calls,
	}
}

func caseEvent(metadata map[string]string) GCSEvent {
	return GCSEvent{Bucket: "uploads", Name: "cases/0412.pdf", ContentType: "application/pdf", Metadata: metadata}
}

func TestUploadReport_GeneratesFromPDF(t *testing.T) {
	reader := &fakeReader{objects: map[string][]byte{"uploads/cases/0412.pdf": []byte("%PDF-1.7")}}
	fx := newUploadFixture(reader, &pdftext.Document{Text: "Officer arrived.\fSuspect detained.", PageCount: 2}, nil)

	res, err := fx.fn.Process(context.Background(), caseEvent(map[string]string{
		MetadataOfficerName:  " J. Rivera ",
		MetadataIncidentType: "Assault",
	}))

	require.NoError(t, err)
	require.NotNil(t, res)
	assert.Equal(t, "SINGLE_PASS", res.Strategy)
	assert.Contains(t, res.Report, "J. Rivera")
	assert.Contains(t, res.Report, "Type: Assault")

	require.Len(t, fx.ledger.created, 1)
	job := fx.ledger.created[0]
	assert.Equal(t, "gs://uploads/cases/0412.pdf", job.Source)
	assert.Equal(t, 2, job.PageCount)
	assert.Equal(t, "J. Rivera", job.OfficerName)
	assert.Equal(t, "Assault", job.IncidentType)
}

func TestUploadReport_LargePDFIsChunked(t *testing.T) {
	pages := make([]string, 60)
	for i := range pages {
		pages[i] = words(10)
	}
	reader := &fakeReader{objects: map[string][]byte{"uploads/cases/0412.pdf": []byte("%PDF-1.7")}}
	fx := newUploadFixture(reader, &pdftext.Document{Text: strings.Join(pages, "\f"), PageCount: 60}, nil)

	res, err := fx.fn.Process(context.Background(), caseEvent(map[string]string{MetadataOfficerName: "Smith"}))

	require.NoError(t, err)
	assert.Equal(t, "CHUNKED", res.Strategy)
	assert.Equal(t, 2, *fx.calls)
}

func TestUploadReport_SkipsEventsThatCannotSucceed(t *testing.T) {
	doc := &pdftext.Document{Text: "notes", PageCount: 1}
	readerMustNotRun := &fakeReader{err: errors.New("unexpected read")}
	okReader := &fakeReader{objects: map[string][]byte{"uploads/cases/0412.pdf": []byte("%PDF")}}

	tests := []struct {
		name       string
		reader     ObjectReader
		doc        *pdftext.Document
		extractErr error
		event      GCSEvent
	}{
		{
			name:   "not a pdf",
			reader: readerMustNotRun,
			doc:    doc,
			event:  GCSEvent{Bucket: "uploads", Name: "photo.jpg", ContentType: "image/jpeg", Metadata: map[string]string{MetadataOfficerName: "Smith"}},
		},
		{
			name:   "no officer",
			reader: readerMustNotRun,
			doc:    doc,
			event:  caseEvent(nil),
		},
		{
			name:   "too large",
			reader: &fakeReader{err: gcp.ErrObjectTooLarge},
			doc:    doc,
			event:  caseEvent(map[string]string{MetadataOfficerName: "Smith"}),
		},
		{
			name:       "unreadable pdf",
			reader:     okReader,
			extractErr: errors.New("broken xref"),
			event:      caseEvent(map[string]string{MetadataOfficerName: "Smith"}),
		},
		{
			name:   "scanned pdf without text",
			reader: okReader,
			doc:    &pdftext.Document{Text: "\f\f", PageCount: 3},
			event:  caseEvent(map[string]string{MetadataOfficerName: "Smith"}),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fx := newUploadFixture(tt.reader, tt.doc, tt.extractErr)

			res, err := fx.fn.Process(context.Background(), tt.event)

			assert.NoError(t, err)
			assert.Nil(t, res)
			assert.Zero(t, *fx.calls)
			assert.Empty(t, fx.ledger.created)
		})
	}
}

func TestUploadReport_ReadErrorsAreReturnedForRetry(t *testing.T) {
	fx := newUploadFixture(&fakeReader{err: errors.New("503 backend error")}, nil, nil)

	_, err := fx.fn.Process(context.Background(), caseEvent(map[string]string{MetadataOfficerName: "Smith"}))
	assert.Error(t, err)
}

func TestGCSEvent_ReportIDIsStablePerObjectVersion(t *testing.T) {
	e := GCSEvent{Bucket: "uploads", Name: "cases/0412.pdf", Generation: "1760623500000000"}

	assert.Equal(t, e.ReportID(), e.ReportID())
	assert.Len(t, e.ReportID(), 36)

	reuploaded := e
	reuploaded.Generation = "1760623900000000"
	assert.NotEqual(t, e.ReportID(), reuploaded.ReportID())

	renamed := e
	renamed.Name = "cases/0413.pdf"
	assert.NotEqual(t, e.ReportID(), renamed.ReportID())
}

func TestUploadReport_RetryReusesJobAndArchive(t *testing.T) {
	var mu sync.Mutex
	attempts := 0
	flaky := textgen.GeneratorFunc(func(_ context.Context, req textgen.Request) (string, error) {
		mu.Lock()
		defer mu.Unlock()
		attempts++
		if attempts == 1 {
			return "", textgen.NewRateLimitError(errors.New("429"))
		}
		return req.User, nil
	})
	archive := &fakeArchive{}
	ledger := &fakeLedger{}
	generator := newTestReportGenerator(flaky, archive, ledger)
	generator.newID = func() string {
		t.Fatal("upload events must not mint random report IDs")
		return ""
	}
	fn := &UploadReportFunction{
		reader:    &fakeReader{objects: map[string][]byte{"uploads/cases/0412.pdf": []byte("%PDF-1.7")}},
		extractor: newTestExtractor(&pdftext.Document{Text: "Officer arrived.", PageCount: 1}, nil),
		generator: generator,
	}
	fn.extractor.config.MaxBytes = 1 << 20
	event := caseEvent(map[string]string{MetadataOfficerName: "Smith"})
	event.Generation = "1760623500000000"

	_, err := fn.Process(context.Background(), event)
	kind, ok := textgen.KindOf(err)
	require.True(t, ok)
	assert.Equal(t, textgen.KindRateLimit, kind)

	res, err := fn.Process(context.Background(), event)
	require.NoError(t, err)

	assert.Equal(t, event.ReportID(), res.ReportID)
	require.Len(t, ledger.created, 1)
	assert.Equal(t, event.ReportID(), ledger.created[0].ReportID)
	assert.Equal(t, []string{
		models.StatusSinglePass, models.StatusFailed,
		models.StatusPending, models.StatusSinglePass, models.StatusCompleted,
	}, ledger.statuses())
	assert.Len(t, archive.saved, 1)
	assert.Equal(t, fmt.Sprintf("gs://reports/%s/report.md", event.ReportID()), res.ArchiveURI)
}

func TestIsPDFObject(t *testing.T) {
	assert.True(t, isPDFObject(GCSEvent{Name: "a.bin", ContentType: "application/pdf"}))
	assert.False(t, isPDFObject(GCSEvent{Name: "a.pdf", ContentType: "text/plain"}))
	assert.True(t, isPDFObject(GCSEvent{Name: "SCAN.PDF"}))
	assert.False(t, isPDFObject(GCSEvent{Name: "scan.png"}))
}
