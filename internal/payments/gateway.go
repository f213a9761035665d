// Package payments wraps the Stripe SDK behind small interfaces so the
// reconciliation logic can be exercised without a live gateway.
package payments

import "context"

// Intent is a created payment intent the client completes with the secret.
type Intent struct {
	ID           string
	ClientSecret string
}

// Event is a normalized gateway webhook event.
type Event struct {
	ID        string
	Type      string
	IntentID  string
	BookingID int64
}

const (
	EventPaymentSucceeded = "payment_intent.succeeded"
	EventPaymentFailed    = "payment_intent.payment_failed"
)

type Gateway interface {
	CreateIntent(ctx context.Context, amountCents int64, bookingID int64) (*Intent, error)
}

// WebhookVerifier authenticates a raw webhook payload. Verification failure
// must happen before any state is touched.
type WebhookVerifier interface {
	Verify(payload []byte, signature string) (*Event, error)
}
