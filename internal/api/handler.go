// internal/api/handler.go
package api

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github-stars-snapshot/internal/database"
)

// Handler is the container for API dependencies.
type Handler struct {
	db     database.Querier
	logger *slog.Logger
}

// NewRouter creates and configures a new chi router with all API routes.
func NewRouter(db database.Querier, logger *slog.Logger) http.Handler {
	h := &Handler{
		db:     db,
		logger: logger,
	}

	r := chi.NewRouter()

	// Middleware stack
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger) // Chi's default logger
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))

	// API Routes
	r.Get("/health", h.healthCheck)
	r.Route("/api", func(r chi.Router) {
		r.Get("/db_version", h.getDBVersion)
	})

	return r
}

// healthCheck is a simple health endpoint.
func (h *Handler) healthCheck(w http.ResponseWriter, r *http.Request) {
	respondWithJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// getDBVersion reports the backing database's version string.
// GET /api/db_version
func (h *Handler) getDBVersion(w http.ResponseWriter, r *http.Request) {
	version, err := h.db.ServerVersion(r.Context())
	if err != nil {
		h.logger.Error("Failed to query database version", "error", err)
		respondWithError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	respondWithJSON(w, http.StatusOK, version)
}
