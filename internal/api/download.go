package api

import (
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/google/uuid"

	"github.com/cvlift/cvlift/internal/billing"
	apperrors "github.com/cvlift/cvlift/internal/errors"
	"github.com/cvlift/cvlift/internal/logger"
	"github.com/cvlift/cvlift/internal/metrics"
)

// Error bodies match what the landing page and support articles reference.
const (
	missingSessionMsg       = "Missing session_id."
	paymentNotFoundMsg      = "Payment not found. Please complete subscription to download."
	subscriptionInactiveMsg = "Subscription not active. Please contact support."
	serverErrorMsg          = "Server error."
)

// download gates the deliverable behind a live subscription check:
//  1. session_id present
//  2. session exists and references a subscription
//  3. that subscription is active or trialing
//
// The decision is re-verified against the provider on every request; there
// is no caching and repeated downloads for an active subscriber are allowed.
func (h *Handler) download(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	sessionID := r.URL.Query().Get("session_id")
	if sessionID == "" {
		metrics.RecordDownload("missing_parameter")
		http.Error(w, missingSessionMsg, apperrors.HTTPStatus(apperrors.ErrMissingParameter))
		return
	}

	sess, err := h.provider.GetSession(ctx, sessionID)
	if err != nil {
		h.gateFailure(w, r, "retrieve checkout session", err)
		return
	}
	if sess.SubscriptionID == "" {
		metrics.RecordDownload("payment_not_found")
		http.Error(w, paymentNotFoundMsg, http.StatusForbidden)
		return
	}

	sub, err := h.provider.GetSubscription(ctx, sess.SubscriptionID)
	if err != nil {
		h.gateFailure(w, r, "retrieve subscription", err)
		return
	}
	if !billing.StatusGrantsDownload(sub.Status) {
		metrics.RecordDownload("subscription_inactive")
		logger.WithContext(ctx).Info("download denied",
			"session_id", sessionID,
			"subscription_status", sub.Status,
		)
		http.Error(w, subscriptionInactiveMsg, http.StatusForbidden)
		return
	}

	rc, err := h.resolver.Resolve(ctx, sessionID)
	if err != nil {
		logger.WithContext(ctx).Error("resolve deliverable failed", "error", err)
		metrics.RecordDownload("error")
		http.Error(w, serverErrorMsg, http.StatusInternalServerError)
		return
	}
	defer rc.Close()

	deliveryID := uuid.NewString()
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", h.downloadName))
	if _, err := io.Copy(w, rc); err != nil {
		// Headers are already written; a broken pipe mid-stream is logged,
		// never turned into a late status change.
		logger.WithContext(ctx).Error("download stream interrupted",
			"error", err,
			"delivery_id", deliveryID,
		)
		return
	}

	metrics.RecordDownload("released")
	logger.WithContext(ctx).Info("deliverable released",
		"delivery_id", deliveryID,
		"session_id", sessionID,
		"subscription_status", sub.Status,
	)
}

// gateFailure translates billing lookup errors into the gate's responses.
func (h *Handler) gateFailure(w http.ResponseWriter, r *http.Request, op string, err error) {
	switch {
	case errors.Is(err, apperrors.ErrPaymentNotFound):
		metrics.RecordDownload("payment_not_found")
		http.Error(w, paymentNotFoundMsg, apperrors.HTTPStatus(err))
	case errors.Is(err, apperrors.ErrSubscriptionInactive):
		metrics.RecordDownload("subscription_inactive")
		http.Error(w, subscriptionInactiveMsg, apperrors.HTTPStatus(err))
	default:
		logger.WithContext(r.Context()).Error("billing lookup failed", "op", op, "error", err)
		metrics.RecordDownload("error")
		http.Error(w, serverErrorMsg, http.StatusInternalServerError)
	}
}
