package api

import (
	"encoding/json"
	"net/http"

	apperrors "github.com/cvlift/cvlift/internal/errors"
	"github.com/cvlift/cvlift/internal/logger"
	"github.com/cvlift/cvlift/internal/metrics"
	"github.com/cvlift/cvlift/pkg/utils"
)

type checkoutRequest struct {
	Email string `json:"email"`
	// Metadata is opaque to this service; it is copied onto the resulting
	// subscription so the webhook receiver can see it later.
	Metadata map[string]string `json:"metadata"`
}

// createCheckoutSession starts a subscription checkout session and returns
// the provider-hosted redirect URL. Every call creates a new remote session,
// so this endpoint is deliberately not idempotent.
func (h *Handler) createCheckoutSession(w http.ResponseWriter, r *http.Request) {
	var body checkoutRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		h.writeJSONResponse(w, http.StatusBadRequest, map[string]string{"message": "invalid json"})
		return
	}

	// The landing page checks this too, but the browser is not trusted
	if err := h.validate.Var(body.Email, "required,email"); err != nil {
		ve := apperrors.ValidationError{Field: "email", Message: "a valid email address is required"}
		metrics.RecordCheckoutSession("invalid_email")
		h.writeJSONResponse(w, apperrors.HTTPStatus(ve), map[string]string{"message": ve.Error()})
		return
	}

	sess, err := h.provider.CreateSubscriptionSession(r.Context(), body.Email, body.Metadata)
	if err != nil {
		logger.WithContext(r.Context()).Error("create checkout session failed",
			"error", err,
			"email", utils.MaskEmail(body.Email),
		)
		metrics.RecordCheckoutSession("error")
		h.writeJSONResponse(w, http.StatusInternalServerError, map[string]string{"message": err.Error()})
		return
	}

	logger.WithContext(r.Context()).Info("checkout session created",
		"session_id", sess.ID,
		"email", utils.MaskEmail(body.Email),
	)
	metrics.RecordCheckoutSession("created")
	h.writeJSONResponse(w, http.StatusOK, map[string]string{"url": sess.URL})
}
