package billing

import (
	"encoding/hex"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/cvlift/cvlift/config"
	apperrors "github.com/cvlift/cvlift/internal/errors"
	stripe "github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/webhook"
)

func TestStatusGrantsDownload(t *testing.T) {
	tests := []struct {
		status  string
		allowed bool
	}{
		{"active", true},
		{"trialing", true},
		{"past_due", false},
		{"canceled", false},
		{"incomplete", false},
		{"incomplete_expired", false},
		{"unpaid", false},
		{"paused", false},
		{"", false},
		{"Active", false}, // provider statuses are lowercase; no fuzzy matching
	}

	for _, tt := range tests {
		if got := StatusGrantsDownload(tt.status); got != tt.allowed {
			t.Errorf("StatusGrantsDownload(%q) = %v, want %v", tt.status, got, tt.allowed)
		}
	}
}

const testWebhookSecret = "whsec_test_secret"

// eventPayload builds a raw webhook body the way Stripe delivers it. The
// api_version field must match the pinned SDK version or parsing rejects it.
func eventPayload(eventType string) []byte {
	return []byte(fmt.Sprintf(
		`{"id":"evt_test_1","object":"event","api_version":%q,"type":%q,"data":{"object":{"id":"cs_test_1","subscription":"sub_test_1"}}}`,
		stripe.APIVersion, eventType,
	))
}

func signedHeader(at time.Time, payload []byte, secret string) string {
	sig := webhook.ComputeSignature(at, payload, secret)
	return fmt.Sprintf("t=%d,v1=%s", at.Unix(), hex.EncodeToString(sig))
}

func TestVerifyWebhook_ValidSignature(t *testing.T) {
	svc := NewStripeService(config.BillingConfig{StripeWebhookSecret: testWebhookSecret})

	payload := eventPayload("checkout.session.completed")
	header := signedHeader(time.Now(), payload, testWebhookSecret)

	ev, err := svc.VerifyWebhook(payload, header)
	if err != nil {
		t.Fatalf("expected valid signature to verify, got %v", err)
	}
	if ev.Type != "checkout.session.completed" {
		t.Errorf("expected event type to round-trip, got %q", ev.Type)
	}
	if ev.ID != "evt_test_1" {
		t.Errorf("expected event id to round-trip, got %q", ev.ID)
	}
	if len(ev.Raw) == 0 {
		t.Errorf("expected raw event object to be carried through")
	}
}

func TestVerifyWebhook_TamperedPayload(t *testing.T) {
	svc := NewStripeService(config.BillingConfig{StripeWebhookSecret: testWebhookSecret})

	payload := eventPayload("invoice.paid")
	header := signedHeader(time.Now(), payload, testWebhookSecret)

	// Flip a single byte after signing
	tampered := append([]byte(nil), payload...)
	tampered[len(tampered)/2] ^= 0x01

	if _, err := svc.VerifyWebhook(tampered, header); !errors.Is(err, apperrors.ErrSignatureInvalid) {
		t.Fatalf("expected ErrSignatureInvalid for tampered payload, got %v", err)
	}
}

func TestVerifyWebhook_WrongSecret(t *testing.T) {
	svc := NewStripeService(config.BillingConfig{StripeWebhookSecret: testWebhookSecret})

	payload := eventPayload("invoice.payment_failed")
	header := signedHeader(time.Now(), payload, "whsec_other_secret")

	if _, err := svc.VerifyWebhook(payload, header); !errors.Is(err, apperrors.ErrSignatureInvalid) {
		t.Fatalf("expected ErrSignatureInvalid for wrong secret, got %v", err)
	}
}

func TestVerifyWebhook_MalformedHeader(t *testing.T) {
	svc := NewStripeService(config.BillingConfig{StripeWebhookSecret: testWebhookSecret})

	if _, err := svc.VerifyWebhook(eventPayload("invoice.paid"), "not-a-signature"); !errors.Is(err, apperrors.ErrSignatureInvalid) {
		t.Fatalf("expected ErrSignatureInvalid for malformed header, got %v", err)
	}
}

func TestVerifyWebhook_StaleTimestamp(t *testing.T) {
	svc := NewStripeService(config.BillingConfig{StripeWebhookSecret: testWebhookSecret})

	payload := eventPayload("invoice.paid")
	// Outside the default tolerance window; replayed events must not verify
	header := signedHeader(time.Now().Add(-time.Hour), payload, testWebhookSecret)

	if _, err := svc.VerifyWebhook(payload, header); !errors.Is(err, apperrors.ErrSignatureInvalid) {
		t.Fatalf("expected ErrSignatureInvalid for stale timestamp, got %v", err)
	}
}
