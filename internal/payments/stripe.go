package payments

import (
	"context"
	"errors"

	"github.com/stripe/stripe-go/v79"
	"github.com/stripe/stripe-go/v79/client"
)

// Provider creates payment intents with an external gateway.
type Provider interface {
	CreateIntent(ctx context.Context, amountCents int64, currency string) (string, error)
}

// StripeProvider is a thin passthrough to Stripe. The API client is held per
// provider instance so no package-global key is mutated.
type StripeProvider struct {
	api *client.API
}

func NewStripe(secretKey string) *StripeProvider {
	if secretKey == "" {
		return nil
	}
	api := &client.API{}
	api.Init(secretKey, nil)
	return &StripeProvider{api: api}
}

// CreateIntent returns the client secret for a new payment intent.
func (p *StripeProvider) CreateIntent(ctx context.Context, amountCents int64, currency string) (string, error) {
	if p == nil || p.api == nil {
		return "", errors.New("stripe provider not configured")
	}
	if amountCents < 1 {
		return "", errors.New("amount must be at least one cent")
	}

	params := &stripe.PaymentIntentParams{
		Amount:   stripe.Int64(amountCents),
		Currency: stripe.String(currency),
		AutomaticPaymentMethods: &stripe.PaymentIntentAutomaticPaymentMethodsParams{
			Enabled: stripe.Bool(true),
		},
	}
	params.Context = ctx

	intent, err := p.api.PaymentIntents.New(params)
	if err != nil {
		return "", err
	}
	return intent.ClientSecret, nil
}
