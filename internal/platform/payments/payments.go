package payments

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/paymentintent"
)

// Intent is the result of initiating a charge. ClientSecret is handed to the
// browser to confirm the payment.
type Intent struct {
	ID           string
	ClientSecret string
	AmountCents  int64
	Currency     string
}

// Charger initiates payment collection for a booking total.
type Charger interface {
	CreateIntent(ctx context.Context, amountCents int64, currency string, bookingID string) (*Intent, error)
}

// StripeCharger creates Stripe PaymentIntents.
type StripeCharger struct{}

// NewStripeCharger configures the Stripe client with the given secret key.
func NewStripeCharger(secretKey string) *StripeCharger {
	stripe.Key = secretKey
	return &StripeCharger{}
}

func (s *StripeCharger) CreateIntent(_ context.Context, amountCents int64, currency string, bookingID string) (*Intent, error) {
	if amountCents <= 0 {
		return nil, fmt.Errorf("amount must be positive, got %d", amountCents)
	}
	params := &stripe.PaymentIntentParams{
		Amount:   stripe.Int64(amountCents),
		Currency: stripe.String(currency),
		AutomaticPaymentMethods: &stripe.PaymentIntentAutomaticPaymentMethodsParams{
			Enabled: stripe.Bool(true),
		},
	}
	params.AddMetadata("booking_id", bookingID)

	pi, err := paymentintent.New(params)
	if err != nil {
		return nil, fmt.Errorf("create payment intent: %w", err)
	}
	return &Intent{
		ID:           pi.ID,
		ClientSecret: pi.ClientSecret,
		AmountCents:  pi.Amount,
		Currency:     string(pi.Currency),
	}, nil
}

// Disabled is used when no Stripe key is configured. Bookings proceed and
// payment is collected out of band.
type Disabled struct{}

func NewDisabled() *Disabled {
	return &Disabled{}
}

func (d *Disabled) CreateIntent(_ context.Context, amountCents int64, currency string, bookingID string) (*Intent, error) {
	log.Debug().
		Str("booking_id", bookingID).
		Int64("amount_cents", amountCents).
		Msg("payments disabled, skipping intent creation")
	return nil, nil
}
