// Command sentinel-server runs the report and upload endpoints as a single
// local HTTP server.
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/AssassinMaeve/Project-Sentinel/internal/gcp"
	"github.com/AssassinMaeve/Project-Sentinel/internal/httpapi"
	"github.com/AssassinMaeve/Project-Sentinel/internal/services"
	"github.com/AssassinMaeve/Project-Sentinel/internal/session"
	"github.com/joho/godotenv"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		slog.Warn("Could not load .env file", "error", err)
	}

	if err := run(); err != nil {
		slog.Error("Server stopped with error", "error", err)
		os.Exit(1)
	}
}

func run() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	generator, err := services.NewReportGenerator(ctx)
	if err != nil {
		return err
	}
	defer generator.Close()

	extractor, err := services.NewPDFExtractor(ctx)
	if err != nil {
		return err
	}

	routerConfig := httpapi.RouterConfig{
		Reports:         generator,
		PDFs:            extractor,
		SessionRequired: gcp.GetEnvBool("SESSION_REQUIRED", false),
	}
	if secret := gcp.GetEnv("JWT_SECRET", ""); secret != "" {
		routerConfig.Sessions = session.NewVerifier(secret)
	} else if routerConfig.SessionRequired {
		return errors.New("SESSION_REQUIRED is set but JWT_SECRET is empty")
	}

	server := &http.Server{
		Addr:              ":" + gcp.GetEnv("PORT", "8080"),
		Handler:           httpapi.NewRouter(routerConfig),
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("Sentinel server listening.", "addr", server.Addr, "sessions", routerConfig.Sessions != nil)
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	slog.Info("Shutting down server.")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}
