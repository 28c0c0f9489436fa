package billing

import (
	"context"
	"errors"
	"fmt"

	"github.com/cvlift/cvlift/config"
	apperrors "github.com/cvlift/cvlift/internal/errors"
	stripe "github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/checkout/session"
	"github.com/stripe/stripe-go/v76/subscription"
	"github.com/stripe/stripe-go/v76/webhook"
)

// StripeService implements Provider against the Stripe API.
type StripeService struct {
	cfg config.BillingConfig
}

func NewStripeService(cfg config.BillingConfig) *StripeService {
	stripe.Key = cfg.StripeSecretKey
	return &StripeService{cfg: cfg}
}

// CreateSubscriptionSession creates a subscription-mode checkout session for
// the configured price. Each call creates a new remote session resource.
func (s *StripeService) CreateSubscriptionSession(ctx context.Context, email string, metadata map[string]string) (*CheckoutSession, error) {
	if metadata == nil {
		metadata = map[string]string{}
	}
	params := &stripe.CheckoutSessionParams{
		Mode:               stripe.String(string(stripe.CheckoutSessionModeSubscription)),
		PaymentMethodTypes: stripe.StringSlice([]string{"card"}),
		CustomerEmail:      stripe.String(email),
		// {CHECKOUT_SESSION_ID} is templated by Stripe on redirect
		SuccessURL: stripe.String(s.cfg.Domain + "/download?session_id={CHECKOUT_SESSION_ID}"),
		CancelURL:  stripe.String(s.cfg.Domain + "/?canceled=true"),
		SubscriptionData: &stripe.CheckoutSessionSubscriptionDataParams{
			Metadata: metadata,
		},
	}
	params.LineItems = []*stripe.CheckoutSessionLineItemParams{
		{Price: stripe.String(s.cfg.StripePriceID), Quantity: stripe.Int64(1)},
	}
	params.Context = ctx

	sess, err := session.New(params)
	if err != nil {
		return nil, apperrors.UpstreamError{Op: "create checkout session", Err: err}
	}
	return &CheckoutSession{ID: sess.ID, SubscriptionID: subscriptionID(sess), URL: sess.URL}, nil
}

// GetSession retrieves a checkout session. An unknown id maps to
// ErrPaymentNotFound so the download gate treats stale and fabricated ids
// the same way.
func (s *StripeService) GetSession(ctx context.Context, id string) (*CheckoutSession, error) {
	params := &stripe.CheckoutSessionParams{}
	params.Context = ctx
	sess, err := session.Get(id, params)
	if err != nil {
		if isResourceMissing(err) {
			return nil, apperrors.ErrPaymentNotFound
		}
		return nil, apperrors.UpstreamError{Op: "retrieve checkout session", Err: err}
	}
	return &CheckoutSession{ID: sess.ID, SubscriptionID: subscriptionID(sess), URL: sess.URL}, nil
}

func (s *StripeService) GetSubscription(ctx context.Context, id string) (*Subscription, error) {
	params := &stripe.SubscriptionParams{}
	params.Context = ctx
	sub, err := subscription.Get(id, params)
	if err != nil {
		if isResourceMissing(err) {
			return nil, apperrors.ErrSubscriptionInactive
		}
		return nil, apperrors.UpstreamError{Op: "retrieve subscription", Err: err}
	}
	return &Subscription{ID: sub.ID, Status: string(sub.Status)}, nil
}

// VerifyWebhook checks the Stripe-Signature header against the configured
// signing secret and parses the event. The payload must be the raw request
// body; any re-serialization breaks the signature.
func (s *StripeService) VerifyWebhook(payload []byte, sigHeader string) (*Event, error) {
	event, err := webhook.ConstructEvent(payload, sigHeader, s.cfg.StripeWebhookSecret)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", apperrors.ErrSignatureInvalid, err)
	}
	ev := &Event{ID: event.ID, Type: string(event.Type)}
	if event.Data != nil {
		ev.Raw = event.Data.Raw
	}
	return ev, nil
}

func subscriptionID(sess *stripe.CheckoutSession) string {
	if sess == nil || sess.Subscription == nil {
		return ""
	}
	return sess.Subscription.ID
}

func isResourceMissing(err error) bool {
	var se *stripe.Error
	if errors.As(err, &se) {
		return se.Code == stripe.ErrorCodeResourceMissing
	}
	return false
}
