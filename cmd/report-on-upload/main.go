package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"sync"

	"github.com/AssassinMaeve/Project-Sentinel/internal/services"
	"github.com/GoogleCloudPlatform/functions-framework-go/functions"
	cloudevents "github.com/cloudevents/sdk-go/v2"
)

var (
	uploadInstance *services.UploadReportFunction
	once           sync.Once
	initErr        error
)

func init() {
	// --- Set up structured logging ---
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	// Triggered by google.cloud.storage.object.v1.finalized on the upload bucket.
	functions.CloudEvent("ReportOnUpload", reportOnUpload)
}

// main is required by the Go Functions Framework.
func main() {}

func reportOnUpload(ctx context.Context, e cloudevents.Event) error {
	once.Do(func() {
		uploadInstance, initErr = services.NewUploadReport(context.Background())
	})
	if initErr != nil {
		slog.Error("Critical error during function initialization", "error", initErr)
		return initErr
	}

	var gcsEvent services.GCSEvent
	if err := json.Unmarshal(e.Data(), &gcsEvent); err != nil {
		slog.Error("Failed to unmarshal event data", "error", err, "eventId", e.ID())
		return fmt.Errorf("json.Unmarshal: %w", err)
	}

	res, err := uploadInstance.Process(ctx, gcsEvent)
	if err != nil {
		// Returning the error marks the invocation failed so the trigger retries it.
		return err
	}
	if res != nil {
		slog.Info("Report generated from upload.", "eventId", e.ID(), "reportId", res.ReportID, "archiveUri", res.ArchiveURI)
	}
	return nil
}
