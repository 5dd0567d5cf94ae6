package gcp

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"cloud.google.com/go/storage"
	"google.golang.org/api/googleapi"
)

// ErrObjectTooLarge is returned by ReadObject when an object exceeds the read limit.
var ErrObjectTooLarge = errors.New("object exceeds size limit")

// SaveToGCSAtomically writes content to a GCS object only if it doesn't already exist.
// An existing object is not a failure; the write is skipped.
func SaveToGCSAtomically(ctx context.Context, bucket *storage.BucketHandle, objectName, contentType, content string) error {
	writer := bucket.Object(objectName).If(storage.Conditions{DoesNotExist: true}).NewWriter(ctx)
	writer.ContentType = contentType

	if _, err := io.Copy(writer, strings.NewReader(content)); err != nil {
		_ = writer.Close()
		if isPreconditionFailed(err) {
			slog.Info("Object already exists, skipping write.", "object", objectName)
			return nil
		}
		return fmt.Errorf("failed to write to GCS: %w", err)
	}

	// Small payloads are only sent on Close, so the precondition can fail here too.
	if err := writer.Close(); err != nil {
		if isPreconditionFailed(err) {
			slog.Info("Object already exists, skipping write.", "object", objectName)
			return nil
		}
		return fmt.Errorf("failed to finalize GCS write: %w", err)
	}
	return nil
}

func isPreconditionFailed(err error) bool {
	var gerr *googleapi.Error
	return errors.As(err, &gerr) && gerr.Code == http.StatusPreconditionFailed
}

// ReportObjectName is the archive location of a report inside its bucket.
func ReportObjectName(reportID string) string {
	return fmt.Sprintf("%s/report.md", reportID)
}

// ReportArchive stores finished reports as markdown objects.
type ReportArchive struct {
	bucket     *storage.BucketHandle
	bucketName string
}

func NewReportArchive(client *storage.Client, bucketName string) *ReportArchive {
	return &ReportArchive{
		bucket:     client.Bucket(bucketName),
		bucketName: bucketName,
	}
}

// Save writes the report once and returns its gs:// URI.
func (a *ReportArchive) Save(ctx context.Context, reportID, content string) (string, error) {
	objectName := ReportObjectName(reportID)
	if err := SaveToGCSAtomically(ctx, a.bucket, objectName, "text/markdown; charset=utf-8", content); err != nil {
		return "", fmt.Errorf("archive report %s: %w", reportID, err)
	}
	return fmt.Sprintf("gs://%s/%s", a.bucketName, objectName), nil
}

// ObjectReader downloads source documents dropped into upload buckets.
type ObjectReader struct {
	client *storage.Client
}

func NewObjectReader(client *storage.Client) *ObjectReader {
	return &ObjectReader{client: client}
}

// ReadObject returns the object's bytes. A positive maxBytes rejects larger
// objects with ErrObjectTooLarge.
func (r *ObjectReader) ReadObject(ctx context.Context, bucket, object string, maxBytes int64) ([]byte, error) {
	gcsReader, err := r.client.Bucket(bucket).Object(object).NewReader(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get GCS object reader for gs://%s/%s: %w", bucket, object, err)
	}
	defer gcsReader.Close()

	return readLimited(gcsReader, maxBytes)
}

func readLimited(r io.Reader, maxBytes int64) ([]byte, error) {
	if maxBytes <= 0 {
		return io.ReadAll(r)
	}
	data, err := io.ReadAll(io.LimitReader(r, maxBytes+1))
	if err != nil {
		return nil, err
	}
	if int64(len(data)) > maxBytes {
		return nil, ErrObjectTooLarge
	}
	return data, nil
}
