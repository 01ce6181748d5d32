package checkout

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	d "github.com/jeffloic/artisan-showroom/internal/domain"
	"github.com/jeffloic/artisan-showroom/internal/pricing"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

func newReference() string {
	return "ART-" + uuid.NewString()
}

// Initiate opens a payment attempt for the current cart total. The cart is
// snapshotted here and the order is later built from that snapshot. The gateway
// call happens outside the lock; a second Initiate meanwhile sees INITIATED.
func (o *Orchestrator) Initiate(ctx context.Context, email string) (*d.PaymentSession, error) {
	ctx, span := tracer.Start(ctx, "checkout.Initiate")
	defer span.End()

	o.mu.Lock()
	if o.gateway == nil {
		o.mu.Unlock()
		return nil, ErrGatewayUnavailable
	}
	if o.status == d.CheckoutStatusInitiated {
		o.mu.Unlock()
		return nil, ErrCheckoutInProgress
	}
	snapshot := o.cart.Snapshot()
	total := snapshot.Total
	if snapshot.IsEmpty() || !total.IsPositive() {
		o.mu.Unlock()
		return nil, ErrEmptyCart
	}
	if err := o.transition(d.CheckoutStatusInitiated); err != nil {
		o.mu.Unlock()
		return nil, err
	}

	att := &attempt{
		reference: o.reference(),
		request: d.PaymentRequest{
			Amount:   pricing.ToMinorUnits(total),
			Currency: d.CurrencyGHS,
			Email:    email,
		},
		snapshot:  snapshot,
	}
	att.request.Reference = att.reference
	o.current = att
	gateway := o.gateway
	o.mu.Unlock()

	span.SetAttributes(
		attribute.String("payment.reference", att.reference),
		attribute.Int64("payment.amount", att.request.Amount),
	)

	session, err := gateway.Initialize(ctx, att.request)

	o.mu.Lock()
	defer o.mu.Unlock()
	if err != nil {
		if o.current == att {
			o.current = nil
			o.status = d.CheckoutStatusIdle
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, "initialize failed")
		o.logger.WarnContext(ctx, "payment initialize failed",
			"reference", att.reference,
			"error", err,
		)
		return nil, fmt.Errorf("%w: %w", ErrGatewayUnavailable, err)
	}

	if session == nil {
		session = &d.PaymentSession{}
	}
	session.Reference = att.reference
	if session.Amount == 0 {
		session.Amount = att.request.Amount
	}
	if session.Currency == "" {
		session.Currency = att.request.Currency
	}
	att.session = session

	o.logger.InfoContext(ctx, "checkout initiated",
		"reference", att.reference,
		"amount", att.request.Amount,
		"currency", att.request.Currency,
	)

	out := *session
	return &out, nil
}
