// Package httpapi exposes report generation and PDF extraction over HTTP.
// The handlers are shared by the Cloud Functions entry points and the local
// server.
package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/AssassinMaeve/Project-Sentinel/internal/models"
	"github.com/AssassinMaeve/Project-Sentinel/internal/report"
	"github.com/AssassinMaeve/Project-Sentinel/internal/services"
	"github.com/AssassinMaeve/Project-Sentinel/internal/textgen"
)

const (
	maxReportBodyBytes = 8 << 20
	// multipartOverhead leaves room for form boundaries around the file.
	multipartOverhead = 1 << 20
)

// ReportProcessor generates a report from a decoded request.
type ReportProcessor interface {
	Process(ctx context.Context, req *models.GenerateReportRequest) (*models.GenerateReportResponse, error)
}

// PDFProcessor extracts text from an uploaded PDF.
type PDFProcessor interface {
	Process(ctx context.Context, file services.UploadedFile) (*models.PDFExtractResponse, error)
	MaxBytes() int64
}

type errorResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
}

// ReportHandler serves POST requests with a GenerateReportRequest body.
func ReportHandler(p ReportProcessor) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			w.Header().Set("Allow", http.MethodPost)
			writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
			return
		}

		var req models.GenerateReportRequest
		if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxReportBodyBytes)).Decode(&req); err != nil {
			slog.Warn("Could not decode report request body", "error", err)
			writeError(w, http.StatusBadRequest, "Invalid JSON body")
			return
		}

		res, err := p.Process(r.Context(), &req)
		if err != nil {
			status, message := reportErrorResponse(err)
			writeError(w, status, message)
			return
		}
		writeJSON(w, http.StatusOK, res)
	}
}

// reportErrorResponse maps a generation error to its status code and a
// message that is safe to show to the client.
func reportErrorResponse(err error) (int, string) {
	var verr *report.ValidationError
	if errors.As(err, &verr) {
		return http.StatusBadRequest, verr.Message
	}
	var gerr *textgen.Error
	if errors.As(err, &gerr) {
		return http.StatusInternalServerError, gerr.Message
	}
	return http.StatusInternalServerError, "Failed to generate report"
}

// UploadHandler serves multipart POST requests carrying a PDF in the "file" field.
func UploadHandler(p PDFProcessor) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			w.Header().Set("Allow", http.MethodPost)
			writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
			return
		}

		r.Body = http.MaxBytesReader(w, r.Body, p.MaxBytes()+multipartOverhead)
		file, header, err := r.FormFile("file")
		if err != nil {
			var maxErr *http.MaxBytesError
			switch {
			case errors.As(err, &maxErr):
				writeError(w, http.StatusRequestEntityTooLarge, "File is too large")
			case errors.Is(err, http.ErrMissingFile):
				writeError(w, http.StatusBadRequest, "No file uploaded")
			default:
				slog.Warn("Could not parse upload form", "error", err)
				writeError(w, http.StatusBadRequest, "Invalid upload form")
			}
			return
		}
		defer file.Close()

		data, err := io.ReadAll(file)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Could not read uploaded file")
			return
		}

		res, err := p.Process(r.Context(), services.UploadedFile{
			Name:        header.Filename,
			ContentType: header.Header.Get("Content-Type"),
			Data:        data,
		})
		if err != nil {
			status, message := uploadErrorResponse(err)
			writeError(w, status, message)
			return
		}
		writeJSON(w, http.StatusOK, res)
	}
}

func uploadErrorResponse(err error) (int, string) {
	switch {
	case errors.Is(err, services.ErrNoFile):
		return http.StatusBadRequest, "No file uploaded"
	case errors.Is(err, services.ErrNotPDF):
		return http.StatusBadRequest, "Only PDF files are supported"
	case errors.Is(err, services.ErrFileTooLarge):
		return http.StatusRequestEntityTooLarge, "File is too large"
	}
	return http.StatusInternalServerError, "Failed to process PDF"
}

// InitFailureHandler answers every request with a 500 when a function's
// dependencies could not be created.
func InitFailureHandler(err error) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		slog.Error("CRITICAL: Service initialization failed", "error", err, "path", r.URL.Path)
		writeError(w, http.StatusInternalServerError, "Internal Server Error: failed to initialize service")
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorResponse{Success: false, Error: message})
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		slog.Error("Failed to write response", "error", err)
	}
}
