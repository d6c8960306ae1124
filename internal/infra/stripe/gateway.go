// Package stripe wraps the provider API calls the webhook core needs beyond
// the event payloads themselves.
package stripe

import (
	"context"

	"github.com/TravisHFan/at-Cloud-sign-up-system-sub002/internal/domain/purchase"
	"github.com/TravisHFan/at-Cloud-sign-up-system-sub002/internal/pkg/config"
	"github.com/TravisHFan/at-Cloud-sign-up-system-sub002/internal/pkg/errs"

	stripego "github.com/stripe/stripe-go/v79"
	"github.com/stripe/stripe-go/v79/client"
)

type Gateway struct {
	api *client.API
}

func NewGateway(cfg config.StripeConfig) *Gateway {
	api := &client.API{}
	api.Init(cfg.APIKey, nil)
	return &Gateway{api: api}
}

// PaymentMethodSnapshot fetches the card display data for a settled payment
// intent. Callers treat any error and any zero result as best-effort; the
// snapshot is cosmetic and never blocks a transition.
func (g *Gateway) PaymentMethodSnapshot(ctx context.Context, paymentIntentID string) (purchase.PaymentMethod, error) {
	params := &stripego.PaymentIntentParams{
		Params: stripego.Params{Context: ctx},
	}
	params.AddExpand("latest_charge")

	pi, err := g.api.PaymentIntents.Get(paymentIntentID, params)
	if err != nil {
		return purchase.PaymentMethod{}, errs.Wrap(err, "failed to fetch payment intent")
	}

	ch := pi.LatestCharge
	if ch == nil || ch.PaymentMethodDetails == nil || ch.PaymentMethodDetails.Card == nil {
		return purchase.PaymentMethod{}, nil
	}

	card := ch.PaymentMethodDetails.Card
	return purchase.PaymentMethod{
		Brand: string(card.Brand),
		Last4: card.Last4,
	}, nil
}
