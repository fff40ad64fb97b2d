// Package httphandler serves the published overview snapshots.
package httphandler

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/alisw/ci-overview/internal/application"
)

// ServerVersion is sent as the Server header on every response.
const ServerVersion = "ci-overview/1.2.0"

// Handler serves the current snapshot. Every request reads whatever the
// refresh service last published; nothing is recomputed per request.
type Handler struct {
	svc    *application.RefreshService
	logger *slog.Logger
}

// NewHandler creates a Handler reading snapshots from svc.
func NewHandler(svc *application.RefreshService, logger *slog.Logger) *Handler {
	return &Handler{svc: svc, logger: logger}
}

// NewServeMux registers the document and metrics routes wrapped with logging
// and recovery middleware. Unknown paths get the mux's default 404.
func NewServeMux(h *Handler, logger *slog.Logger) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /{$}", h.Document)
	mux.HandleFunc("GET /metrics", h.Metrics)

	// Recovery innermost so panics are caught before logging.
	wrapped := recoveryMiddleware(logger, mux)
	wrapped = loggingMiddleware(logger, wrapped)

	return wrapped
}

// Document returns the current HTML snapshot.
func (h *Handler) Document(w http.ResponseWriter, r *http.Request) {
	h.serve(w, r, h.svc.Snapshot().HTML, "text/html; charset=utf-8")
}

// Metrics returns the current metrics snapshot.
func (h *Handler) Metrics(w http.ResponseWriter, r *http.Request) {
	h.serve(w, r, h.svc.Snapshot().Metrics, "text/plain; charset=utf-8")
}

// serve writes one snapshot document. GET patterns also match HEAD; the
// explicit Content-Length keeps HEAD responses accurate.
func (h *Handler) serve(w http.ResponseWriter, r *http.Request, body []byte, contentType string) {
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Length", strconv.Itoa(len(body)))
	w.Header().Set("Server", ServerVersion)
	w.WriteHeader(http.StatusOK)

	if r.Method == http.MethodHead {
		return
	}
	if _, err := w.Write(body); err != nil {
		h.logger.Warn("snapshot write failed", "path", r.URL.Path, "error", err)
	}
}
