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
	generatorInstance *services.ReportGeneratorFunction
	once              sync.Once
	initErr           error
)

func init() {
	// --- Set up structured logging ---
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	// "HandleGenerateReport" is the entry point name configured in GCP.
	functions.HTTP("HandleGenerateReport", handleGenerateReport)
}

// main is required by the Go Functions Framework.
func main() {}

// handleGenerateReport is the HTTP handler for POST /report.
func handleGenerateReport(w http.ResponseWriter, r *http.Request) {
	// Use sync.Once for robust, one-time initialization of clients.
	once.Do(func() {
		generatorInstance, initErr = services.NewReportGenerator(context.Background())
	})
	if initErr != nil {
		httpapi.InitFailureHandler(initErr).ServeHTTP(w, r)
		return
	}

	httpapi.ReportHandler(generatorInstance).ServeHTTP(w, r)
}
