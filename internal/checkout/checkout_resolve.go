package checkout

import (
	"context"
	"errors"
	"fmt"

	d "github.com/jeffloic/artisan-showroom/internal/domain"
	"github.com/jeffloic/artisan-showroom/internal/pricing"
	"github.com/jeffloic/artisan-showroom/internal/repository"
	"go.opentelemetry.io/otel/attribute"
)

// Resolve applies a gateway result to the attempt identified by reference.
// A reference that already completed returns its stored outcome unchanged.
func (o *Orchestrator) Resolve(ctx context.Context, reference string, result d.PaymentResult) (Outcome, error) {
	ctx, span := tracer.Start(ctx, "checkout.Resolve")
	defer span.End()
	span.SetAttributes(
		attribute.String("payment.reference", reference),
		attribute.String("payment.outcome", string(result.Outcome)),
	)

	o.mu.Lock()
	defer o.mu.Unlock()

	if prior, ok := o.completed[reference]; ok {
		o.logger.InfoContext(ctx, "duplicate payment callback", "reference", reference, "status", prior.Status)
		return prior, nil
	}
	if o.status != d.CheckoutStatusInitiated || o.current == nil || o.current.reference != reference {
		return Outcome{}, fmt.Errorf("%w: %s", ErrUnknownReference, reference)
	}

	var out Outcome
	switch result.Outcome {
	case d.PaymentSucceeded:
		if err := o.transition(d.CheckoutStatusSucceeded); err != nil {
			return Outcome{}, err
		}
		out = o.complete(ctx, o.current)
	case d.PaymentCancelled:
		if err := o.transition(d.CheckoutStatusCancelled); err != nil {
			return Outcome{}, err
		}
		out = Outcome{Reference: reference, Status: d.CheckoutStatusCancelled, Message: MessageCancelled}
		o.logger.InfoContext(ctx, "payment cancelled", "reference", reference)
	case d.PaymentFailed:
		if err := o.transition(d.CheckoutStatusFailed); err != nil {
			return Outcome{}, err
		}
		out = Outcome{Reference: reference, Status: d.CheckoutStatusFailed, Message: failedMessage(result.Reason), Reason: result.Reason}
		o.logger.WarnContext(ctx, "payment failed", "reference", reference, "reason", result.Reason)
	case d.PaymentPending:
		return Outcome{Reference: reference, Status: d.CheckoutStatusInitiated, Message: MessagePending}, nil
	default:
		return Outcome{}, fmt.Errorf("unsupported payment outcome %q", result.Outcome)
	}

	o.completed[reference] = out
	o.current = nil
	return out, nil
}

// Confirm asks the gateway how the attempt ended and resolves it.
func (o *Orchestrator) Confirm(ctx context.Context, reference string) (Outcome, error) {
	o.mu.Lock()
	if prior, ok := o.completed[reference]; ok {
		o.mu.Unlock()
		return prior, nil
	}
	if o.status != d.CheckoutStatusInitiated || o.current == nil || o.current.reference != reference || o.current.session == nil {
		o.mu.Unlock()
		return Outcome{}, fmt.Errorf("%w: %s", ErrUnknownReference, reference)
	}
	session := *o.current.session
	gateway := o.gateway
	o.mu.Unlock()

	result, err := gateway.Verify(ctx, &session)
	if err != nil {
		return Outcome{}, fmt.Errorf("%w: %w", ErrGatewayUnavailable, err)
	}
	return o.Resolve(ctx, reference, result)
}

// Cancel resolves the pending attempt as cancelled by the shopper.
func (o *Orchestrator) Cancel(ctx context.Context, reference string) (Outcome, error) {
	return o.Resolve(ctx, reference, d.Cancelled())
}

// complete runs the post-payment sequence. The charge has already happened so
// nothing here may be interrupted by the caller going away, and the cart is
// reset whether or not the order was recorded. The order is built from the
// snapshot taken at Initiate, not from the live cart.
func (o *Orchestrator) complete(ctx context.Context, att *attempt) Outcome {
	ctx = context.WithoutCancel(ctx)

	charged := att.charged()
	order := d.NewPaidOrder(att.reference, att.snapshot, charged)

	var (
		recorded string
		err      error
	)
	if total := pricing.ToMinorUnits(order.TotalPaid); att.snapshot.IsEmpty() || total != charged {
		err = fmt.Errorf("%w: order %d, charged %d", ErrAmountMismatch, total, charged)
	} else {
		recorded, err = o.record(ctx, order)
	}

	o.cart.Clear()
	o.cart.Close()

	if err != nil {
		if !errors.Is(err, ErrAmountMismatch) {
			err = fmt.Errorf("%w: %w", ErrOrderPersistenceFailed, err)
		}
		o.logger.ErrorContext(ctx, "order not recorded after successful payment",
			"reference", att.reference,
			"order_id", order.ID,
			"error", err,
		)
		o.publishUnrecorded(ctx, order, err)
		return Outcome{
			Reference: att.reference,
			Status:    d.CheckoutStatusSucceeded,
			Recorded:  false,
			Message:   MessageUnrecorded,
		}
	}

	o.logger.InfoContext(ctx, "order recorded",
		"reference", att.reference,
		"order_id", recorded,
		"total_paid", order.TotalPaid.StringFixed(2),
	)
	return Outcome{
		Reference: att.reference,
		Status:    d.CheckoutStatusSucceeded,
		OrderID:   recorded,
		Recorded:  true,
		Message:   MessageSuccess,
	}
}

// record persists order at most once per reference and returns the id of the
// stored order. The id is empty when another process already holds the claim.
func (o *Orchestrator) record(ctx context.Context, order *d.Order) (string, error) {
	if o.claims != nil {
		claimed, err := o.claims.Claim(ctx, order.Reference)
		if err != nil {
			// store unreachable: fall through to the unique reference index
			o.logger.WarnContext(ctx, "idempotency claim failed", "reference", order.Reference, "error", err)
		} else if !claimed {
			o.logger.InfoContext(ctx, "order already claimed", "reference", order.Reference)
			return "", nil
		}
	}

	if o.orders == nil {
		return "", errors.New("no order store configured")
	}
	if err := o.orders.CreateOrder(ctx, order); err != nil {
		if errors.Is(err, repository.ErrDuplicateOrder) {
			o.logger.InfoContext(ctx, "order already recorded", "reference", order.Reference)
			return "", nil
		}
		return "", err
	}

	if o.events != nil {
		if err := o.events.OrderPlaced(ctx, order); err != nil {
			o.logger.WarnContext(ctx, "failed to publish order placed", "order_id", order.ID, "error", err)
		}
	}
	return order.ID, nil
}

func (o *Orchestrator) publishUnrecorded(ctx context.Context, order *d.Order, cause error) {
	if o.events == nil {
		return
	}
	if err := o.events.OrderUnrecorded(ctx, order, cause); err != nil {
		o.logger.ErrorContext(ctx, "failed to publish unrecorded order", "order_id", order.ID, "error", err)
	}
}
