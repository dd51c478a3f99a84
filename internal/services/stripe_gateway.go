// internal/services/stripe_gateway.go
package services

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/stripe/stripe-go/v74"
	"github.com/stripe/stripe-go/v74/paymentintent"
	"github.com/stripe/stripe-go/v74/refund"
	"github.com/stripe/stripe-go/v74/webhook"

	"github.com/shopverse/storefront-backend/internal/config"
)

// StripeGateway is the production PaymentGateway. Transient failures
// (network errors, provider 5xx) are retried once; declined or incomplete
// payments are never retried.
type StripeGateway struct {
	webhookSecret string
}

func NewStripeGateway(cfg *config.Config) *StripeGateway {
	stripe.Key = cfg.Payment.StripeSecretKey

	return &StripeGateway{
		webhookSecret: cfg.Payment.StripeWebhookSecret,
	}
}

// isTransient reports whether a gateway error is worth one retry. Non-Stripe
// errors are treated as network failures.
func isTransient(err error) bool {
	stripeErr, ok := err.(*stripe.Error)
	if !ok {
		return true
	}
	return stripeErr.HTTPStatusCode >= 500
}

func withRetry[T any](call func() (T, error)) (T, error) {
	result, err := call()
	if err != nil && isTransient(err) {
		time.Sleep(200 * time.Millisecond)
		result, err = call()
	}
	return result, err
}

func (g *StripeGateway) CreateIntent(amountCents int64, currency string, metadata map[string]string) (*GatewayIntent, error) {
	pi, err := withRetry(func() (*stripe.PaymentIntent, error) {
		params := &stripe.PaymentIntentParams{
			Amount:   stripe.Int64(amountCents),
			Currency: stripe.String(currency),
		}
		for k, v := range metadata {
			params.AddMetadata(k, v)
		}
		return paymentintent.New(params)
	})
	if err != nil {
		return nil, err
	}

	return fromStripeIntent(pi), nil
}

func (g *StripeGateway) GetIntent(id string) (*GatewayIntent, error) {
	pi, err := withRetry(func() (*stripe.PaymentIntent, error) {
		return paymentintent.Get(id, nil)
	})
	if err != nil {
		return nil, err
	}

	return fromStripeIntent(pi), nil
}

func (g *StripeGateway) CreateRefund(intentID string, amountCents int64) (*GatewayRefund, error) {
	r, err := withRetry(func() (*stripe.Refund, error) {
		return refund.New(&stripe.RefundParams{
			PaymentIntent: stripe.String(intentID),
			Amount:        stripe.Int64(amountCents),
		})
	})
	if err != nil {
		return nil, err
	}

	return &GatewayRefund{
		ID:     r.ID,
		Amount: r.Amount,
		Status: string(r.Status),
	}, nil
}

func (g *StripeGateway) VerifyWebhook(payload []byte, signature string) (*GatewayEvent, error) {
	event, err := webhook.ConstructEvent(payload, signature, g.webhookSecret)
	if err != nil {
		return nil, err
	}

	gatewayEvent := &GatewayEvent{Type: string(event.Type)}

	switch event.Type {
	case EventPaymentSucceeded, EventPaymentFailed:
		var pi stripe.PaymentIntent
		if err := json.Unmarshal(event.Data.Raw, &pi); err != nil {
			return nil, fmt.Errorf("failed to parse webhook payload: %w", err)
		}
		gatewayEvent.Intent = fromStripeIntent(&pi)
	}

	return gatewayEvent, nil
}

func fromStripeIntent(pi *stripe.PaymentIntent) *GatewayIntent {
	return &GatewayIntent{
		ID:           pi.ID,
		ClientSecret: pi.ClientSecret,
		Status:       string(pi.Status),
		ReceiptEmail: pi.ReceiptEmail,
		Metadata:     pi.Metadata,
	}
}
