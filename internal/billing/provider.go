package billing

import (
	"context"
	"encoding/json"
)

// CheckoutSession is the slice of a provider checkout session this service
// cares about. SubscriptionID is empty until the customer completes payment.
type CheckoutSession struct {
	ID             string
	SubscriptionID string
	URL            string
}

// Subscription carries the provider-maintained status of a recurring
// payment agreement.
type Subscription struct {
	ID     string
	Status string
}

// Event is a verified webhook notification from the provider.
type Event struct {
	ID   string
	Type string
	Raw  json.RawMessage
}

// Provider is the narrow surface of the payment provider the handlers use.
// Implementations translate provider failures into the internal/errors
// taxonomy so the gating logic can be tested with a fake.
type Provider interface {
	CreateSubscriptionSession(ctx context.Context, email string, metadata map[string]string) (*CheckoutSession, error)
	GetSession(ctx context.Context, id string) (*CheckoutSession, error)
	GetSubscription(ctx context.Context, id string) (*Subscription, error)
	VerifyWebhook(payload []byte, sigHeader string) (*Event, error)
}

// StatusGrantsDownload reports whether a subscription status releases the
// deliverable. The allowed set is exactly {active, trialing}; every other
// status (past_due, canceled, incomplete, ...) gates the download.
func StatusGrantsDownload(status string) bool {
	return status == "active" || status == "trialing"
}
