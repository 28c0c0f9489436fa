package api

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/cvlift/cvlift/internal/logger"
	"github.com/cvlift/cvlift/internal/metrics"
	"github.com/cvlift/cvlift/pkg/utils"
)

// Stripe webhook payloads are small; cap reads well above any real event.
const webhookBodyLimit = 1 << 16

// providerWebhook receives signed events from the payment provider. The
// provider retries unacknowledged deliveries, so every event that passes
// signature verification is answered 200 {"received":true} even when no
// handler takes action.
func (h *Handler) providerWebhook(w http.ResponseWriter, r *http.Request) {
	payload, err := io.ReadAll(http.MaxBytesReader(w, r.Body, webhookBodyLimit))
	if err != nil {
		http.Error(w, "Webhook Error: could not read body", http.StatusBadRequest)
		return
	}

	sig := r.Header.Get("Stripe-Signature")
	event, err := h.provider.VerifyWebhook(payload, sig)
	if err != nil {
		logger.WithContext(r.Context()).Warn("webhook rejected",
			"error", err,
			"payload_fingerprint", utils.Fingerprint(payload),
		)
		metrics.RecordWebhookEvent("unverified", "rejected")
		http.Error(w, "Webhook Error: "+err.Error(), http.StatusBadRequest)
		return
	}

	log := logger.WithContext(r.Context())
	switch event.Type {
	case "checkout.session.completed":
		// Extension point for provisioning. Downloads re-verify against the
		// provider, so completion is only recorded in the logs for now.
		var sess struct {
			ID           string `json:"id"`
			Subscription string `json:"subscription"`
		}
		if err := json.Unmarshal(event.Raw, &sess); err != nil {
			log.Warn("checkout.session.completed with undecodable object", "event_id", event.ID)
		} else {
			log.Info("checkout session completed",
				"session_id", sess.ID,
				"subscription_id", sess.Subscription,
			)
		}
	case "invoice.paid":
		// Recurring payment succeeded; nothing to provision.
		log.Info("invoice paid", "event_id", event.ID)
	case "invoice.payment_failed":
		// Extension point for dunning notifications.
		log.Warn("invoice payment failed", "event_id", event.ID)
	default:
		log.Info("unhandled webhook event", "type", event.Type, "event_id", event.ID)
	}

	metrics.RecordWebhookEvent(event.Type, "acknowledged")
	h.writeJSONResponse(w, http.StatusOK, map[string]bool{"received": true})
}
