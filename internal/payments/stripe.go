package payments

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/google/uuid"
	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/paymentintent"
	"github.com/stripe/stripe-go/v76/webhook"

	"github.com/hoteler/hotel-bookings/internal/domain"
)

type StripeGateway struct {
	currency string
}

func NewStripeGateway(secretKey, currency string) *StripeGateway {
	stripe.Key = secretKey
	if currency == "" {
		currency = "usd"
	}
	return &StripeGateway{currency: currency}
}

func (g *StripeGateway) CreateIntent(ctx context.Context, amountCents int64, bookingID int64) (*Intent, error) {
	params := &stripe.PaymentIntentParams{
		Amount:   stripe.Int64(amountCents),
		Currency: stripe.String(g.currency),
	}
	params.Context = ctx
	params.AddMetadata("booking_id", strconv.FormatInt(bookingID, 10))
	params.SetIdempotencyKey(uuid.NewString())

	pi, err := paymentintent.New(params)
	if err != nil {
		return nil, fmt.Errorf("%w: create intent: %v", domain.ErrGateway, err)
	}

	return &Intent{ID: pi.ID, ClientSecret: pi.ClientSecret}, nil
}

type StripeVerifier struct {
	webhookSecret string
}

func NewStripeVerifier(webhookSecret string) *StripeVerifier {
	return &StripeVerifier{webhookSecret: webhookSecret}
}

func (v *StripeVerifier) Verify(payload []byte, signature string) (*Event, error) {
	ev, err := webhook.ConstructEvent(payload, signature, v.webhookSecret)
	if err != nil {
		return nil, fmt.Errorf("%w: webhook signature verification failed", domain.ErrUnauthorized)
	}

	out := &Event{ID: ev.ID, Type: string(ev.Type)}

	switch out.Type {
	case EventPaymentSucceeded, EventPaymentFailed:
		var pi stripe.PaymentIntent
		if err := json.Unmarshal(ev.Data.Raw, &pi); err != nil {
			return nil, fmt.Errorf("%w: malformed payment intent payload", domain.ErrValidation)
		}
		out.IntentID = pi.ID
		if raw, ok := pi.Metadata["booking_id"]; ok {
			if id, err := strconv.ParseInt(raw, 10, 64); err == nil {
				out.BookingID = id
			}
		}
	}
	return out, nil
}
