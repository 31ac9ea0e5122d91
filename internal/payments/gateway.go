package payments

import (
	"context"

	stripeapi "github.com/stripe/stripe-go/v82"

	pkgstripe "github.com/pasofino/tienda-backend/pkg/stripe"
)

// IntentStatusSucceeded is the only gateway status that marks an order paid.
const IntentStatusSucceeded = "succeeded"

// Intent is the gateway-side payment reference handed to the storefront.
type Intent struct {
	ID           string
	ClientSecret string
}

// Gateway exposes the subset of payment-provider operations the storefront
// needs, so the service can be tested against a stub.
type Gateway interface {
	CreateIntent(ctx context.Context, amountCents int64, currency string, metadata map[string]string) (*Intent, error)
	GetIntentStatus(ctx context.Context, intentID string) (string, error)
}

type stripeGateway struct {
	api *pkgstripe.Client
}

// NewStripeGateway wraps the shared Stripe client as a Gateway.
func NewStripeGateway(api *pkgstripe.Client) Gateway {
	if api == nil {
		return nil
	}
	return &stripeGateway{api: api}
}

func (g *stripeGateway) CreateIntent(ctx context.Context, amountCents int64, currency string, metadata map[string]string) (*Intent, error) {
	params := &stripeapi.PaymentIntentParams{
		Amount:   stripeapi.Int64(amountCents),
		Currency: stripeapi.String(currency),
		AutomaticPaymentMethods: &stripeapi.PaymentIntentAutomaticPaymentMethodsParams{
			Enabled: stripeapi.Bool(true),
		},
	}
	for key, value := range metadata {
		params.AddMetadata(key, value)
	}

	intent, err := g.api.CreateIntent(ctx, params)
	if err != nil {
		return nil, err
	}
	return &Intent{ID: intent.ID, ClientSecret: intent.ClientSecret}, nil
}

func (g *stripeGateway) GetIntentStatus(ctx context.Context, intentID string) (string, error) {
	intent, err := g.api.GetIntent(ctx, intentID)
	if err != nil {
		return "", err
	}
	return string(intent.Status), nil
}
