package httpapi

import (
	"net/http"

	"github.com/AssassinMaeve/Project-Sentinel/internal/session"
	"github.com/gorilla/mux"
)

// RouterConfig wires the local server.
type RouterConfig struct {
	Reports ReportProcessor
	PDFs    PDFProcessor
	// Sessions, when set, attaches the session user to /api requests.
	Sessions        *session.Verifier
	SessionRequired bool
}

// NewRouter builds the local server routes. Method checks are left to the
// handlers so every error answer has the same JSON shape.
func NewRouter(cfg RouterConfig) *mux.Router {
	router := mux.NewRouter()

	router.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}).Methods(http.MethodGet)

	api := router.PathPrefix("/api").Subrouter()
	if cfg.Sessions != nil {
		api.Use(cfg.Sessions.Middleware(cfg.SessionRequired))
	}
	api.Handle("/report", ReportHandler(cfg.Reports))
	api.Handle("/upload", UploadHandler(cfg.PDFs))

	return router
}
