package api

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/cvlift/cvlift/internal/billing"
	"github.com/cvlift/cvlift/internal/content"
)

// Handler handles HTTP requests for the API
type Handler struct {
	provider     billing.Provider
	resolver     content.Resolver
	downloadName string
	version      string
	buildTime    string
	gitCommit    string
	startTime    time.Time
	validate     *validator.Validate
}

// NewHandler creates a new API handler
func NewHandler(provider billing.Provider, resolver content.Resolver, downloadName, version, buildTime, gitCommit string) *Handler {
	return &Handler{
		provider:     provider,
		resolver:     resolver,
		downloadName: downloadName,
		version:      version,
		buildTime:    buildTime,
		gitCommit:    gitCommit,
		startTime:    time.Now(),
		validate:     validator.New(),
	}
}

// RegisterRoutes registers all API routes. checkoutLimit is the rate limit
// middleware applied to the one endpoint that creates billable provider
// resources; pass nil to register it unwrapped.
func (h *Handler) RegisterRoutes(r chi.Router, checkoutLimit func(http.Handler) http.Handler) {
	if checkoutLimit != nil {
		r.With(checkoutLimit).Post("/create-checkout-session", h.createCheckoutSession)
	} else {
		r.Post("/create-checkout-session", h.createCheckoutSession)
	}
	r.Get("/download", h.download)
	r.Post("/webhook", h.providerWebhook)

	// Health check endpoints
	r.Get("/health", h.healthHandler)
	r.Get("/health/ready", h.readinessHandler)
	r.Get("/health/live", h.livenessHandler)

	// System info
	r.Get("/version", h.versionHandler)
}

// healthHandler provides basic health check
func (h *Handler) healthHandler(w http.ResponseWriter, r *http.Request) {
	response := map[string]interface{}{
		"status":    "ok",
		"timestamp": time.Now().UTC(),
		"version":   h.version,
	}

	h.writeJSONResponse(w, http.StatusOK, response)
}

// readinessHandler checks if the application is ready to serve traffic
func (h *Handler) readinessHandler(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	checks := map[string]string{
		"content": "ok",
	}

	statusCode := http.StatusOK

	// The deliverable must be resolvable before we can gate downloads
	if err := h.resolver.Health(ctx); err != nil {
		checks["content"] = "error: " + err.Error()
		statusCode = http.StatusServiceUnavailable
	}

	response := map[string]interface{}{
		"status":    "ready",
		"timestamp": time.Now().UTC(),
		"checks":    checks,
	}

	h.writeJSONResponse(w, statusCode, response)
}

// livenessHandler checks if the application is alive
func (h *Handler) livenessHandler(w http.ResponseWriter, r *http.Request) {
	response := map[string]interface{}{
		"status":    "alive",
		"timestamp": time.Now().UTC(),
		"uptime":    time.Since(h.startTime).String(),
	}

	h.writeJSONResponse(w, http.StatusOK, response)
}

// versionHandler returns version information
func (h *Handler) versionHandler(w http.ResponseWriter, r *http.Request) {
	response := map[string]interface{}{
		"version":    h.version,
		"build_time": h.buildTime,
		"git_commit": h.gitCommit,
	}

	h.writeJSONResponse(w, http.StatusOK, response)
}

// writeJSONResponse writes a JSON response
func (h *Handler) writeJSONResponse(w http.ResponseWriter, statusCode int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(data)
}
