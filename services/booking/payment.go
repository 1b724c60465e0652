package booking

import (
	"context"
	"fmt"

	"salonbook/models"

	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/refund"
	"go.uber.org/zap"
)

// StripeRefundProcessor issues refunds through Stripe. Requests are keyed by
// booking id via an idempotency key, so retrying a refund for the same
// booking can never produce a second refund.
type StripeRefundProcessor struct {
	Logger *zap.Logger
}

func NewStripeRefundProcessor(logger *zap.Logger) *StripeRefundProcessor {
	return &StripeRefundProcessor{Logger: logger}
}

// RequestRefund initiates a refund for the booking's payment intent. The
// second return value reports whether Stripe settled the refund
// synchronously; otherwise confirmation arrives via the charge.refunded
// webhook event.
func (p *StripeRefundProcessor) RequestRefund(ctx context.Context, b *models.Booking) (string, bool, error) {
	if b.PaymentIntentID == "" {
		return "", false, fmt.Errorf("booking %s has no payment intent to refund", b.ID)
	}

	params := &stripe.RefundParams{
		PaymentIntent: stripe.String(b.PaymentIntentID),
		Metadata:      map[string]string{"bookingId": b.ID},
	}
	params.Context = ctx
	params.SetIdempotencyKey("refund-" + b.ID)

	r, err := refund.New(params)
	if err != nil {
		return "", false, fmt.Errorf("stripe refund failed for booking %s: %w", b.ID, err)
	}

	confirmed := r.Status == stripe.RefundStatusSucceeded
	p.Logger.Info("refund requested",
		zap.String("bookingID", b.ID),
		zap.String("refundID", r.ID),
		zap.Bool("confirmed", confirmed),
	)
	return r.ID, confirmed, nil
}
