package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"sync"

	"github.com/AssassinMaeve/Project-Sentinel/internal/httpapi"
	"github.com/AssassinMaeve/Project-Sentinel/internal/services"
	"github.com/GoogleCloudPlatform/functions-framework-go/functions"
)

var (
	extractorInstance *services.PDFExtractorFunction
	once              sync.Once
	initErr           error
)

func init() {
	// --- Set up structured logging ---
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	functions.HTTP("HandleExtractPDF", handleExtractPDF)
}

// main is required by the Go Functions Framework.
func main() {}

// handleExtractPDF is the HTTP handler for POST /upload.
func handleExtractPDF(w http.ResponseWriter, r *http.Request) {
	once.Do(func() {
		extractorInstance, initErr = services.NewPDFExtractor(context.Background())
	})
	if initErr != nil {
		httpapi.InitFailureHandler(initErr).ServeHTTP(w, r)
		return
	}

	httpapi.UploadHandler(extractorInstance).ServeHTTP(w, r)
}
