package http

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/jeffloic/artisan-showroom/internal/checkout"
	"github.com/jeffloic/artisan-showroom/internal/domain"
	"github.com/jeffloic/artisan-showroom/internal/payment/paystack"
	"github.com/jeffloic/artisan-showroom/internal/repository"
)

// ErrUnmatchedPayment is the cause attached to charges no checkout could take.
var ErrUnmatchedPayment = errors.New("payment for a reference with no open checkout")

// PaystackWebhook resolves the tracked session for a signed Paystack event.
// Any verified event is acknowledged with 200 so Paystack stops retrying.
func (h *Handler) PaystackWebhook(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "unreadable body")
		return
	}
	event, err := h.paystack.ParseWebhook(body, r.Header.Get(paystack.SignatureHeader))
	if err != nil {
		if errors.Is(err, paystack.ErrInvalidSignature) {
			respondError(w, http.StatusUnauthorized, "invalid_signature", "invalid signature")
			return
		}
		respondError(w, http.StatusBadRequest, "invalid_request", "malformed event")
		return
	}

	switch event.Event {
	case paystack.EventChargeSuccess, paystack.EventChargeFailed:
		h.resolve(r.Context(), event.Notice())
	default:
		h.logger.DebugContext(r.Context(), "ignoring paystack event", "event", event.Event)
	}
	w.WriteHeader(http.StatusOK)
}

func (h *Handler) StripeWebhook(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "unreadable body")
		return
	}
	notice, ok, err := h.stripe.ParseWebhook(body, r.Header.Get("Stripe-Signature"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid_signature", "invalid stripe event")
		return
	}
	if ok {
		h.resolve(r.Context(), notice)
	}
	w.WriteHeader(http.StatusOK)
}

// resolve hands a verified notice to the session that owns its reference. A
// success nobody can take is stored as an unmatched order instead of dropped.
func (h *Handler) resolve(ctx context.Context, notice domain.PaymentNotice) {
	reference := notice.Reference
	s, ok := h.sessions.ByReference(reference)
	if !ok {
		h.logger.WarnContext(ctx, "payment callback for unknown session", "reference", reference, "outcome", notice.Result.Outcome)
		h.recordUnmatched(ctx, notice)
		return
	}

	result := notice.Result
	if mismatch := amountMismatch(s.Checkout, notice); mismatch != "" {
		h.logger.ErrorContext(ctx, "payment callback amount mismatch", "reference", reference, "detail", mismatch)
		h.recordUnmatched(ctx, notice)
		result = domain.Failed(mismatch)
	}

	out, err := s.Checkout.Resolve(ctx, reference, result)
	if err != nil {
		if errors.Is(err, checkout.ErrUnknownReference) {
			h.logger.InfoContext(ctx, "stale payment callback", "reference", reference)
			if result.Outcome == domain.PaymentSucceeded {
				h.recordUnmatched(ctx, notice)
			}
			return
		}
		h.logger.ErrorContext(ctx, "resolve payment callback", "reference", reference, "error", err)
		return
	}
	h.logger.InfoContext(ctx, "payment callback resolved",
		"reference", reference, "status", out.Status, "recorded", out.Recorded)
	// a charge landing on an attempt that already closed another way
	if result.Outcome == domain.PaymentSucceeded && out.Status != domain.CheckoutStatusSucceeded {
		h.recordUnmatched(ctx, notice)
	}
}

// amountMismatch compares a successful notice with the pending session. It
// returns an empty string when they agree or the gateway sent no amount.
func amountMismatch(c *checkout.Orchestrator, notice domain.PaymentNotice) string {
	if notice.Result.Outcome != domain.PaymentSucceeded || notice.Amount <= 0 {
		return ""
	}
	pending, ok := c.Pending()
	if !ok || pending.Reference != notice.Reference {
		return ""
	}
	if pending.Amount != notice.Amount {
		return fmt.Sprintf("amount mismatch: expected %d, charged %d", pending.Amount, notice.Amount)
	}
	if notice.Currency != "" && pending.Currency != "" && notice.Currency != pending.Currency {
		return fmt.Sprintf("currency mismatch: expected %s, charged %s", pending.Currency, notice.Currency)
	}
	return ""
}

func (h *Handler) recordUnmatched(ctx context.Context, notice domain.PaymentNotice) {
	if notice.Result.Outcome != domain.PaymentSucceeded || notice.Reference == "" {
		return
	}
	order := domain.NewUnmatchedOrder(notice.Reference, notice.Amount)
	if notice.Currency != "" {
		order.Currency = notice.Currency
	}

	err := errors.New("no order store configured")
	if h.orders != nil {
		err = h.orders.CreateOrder(ctx, order)
	}
	switch {
	case err == nil:
		h.logger.WarnContext(ctx, "unmatched payment recorded", "reference", order.Reference, "order_id", order.ID, "amount", order.AmountCharged)
		return
	case errors.Is(err, repository.ErrDuplicateOrder):
		h.logger.InfoContext(ctx, "payment already recorded", "reference", order.Reference)
		return
	}

	h.logger.ErrorContext(ctx, "unmatched payment not recorded", "reference", order.Reference, "amount", order.AmountCharged, "error", err)
	if h.unrecorded == nil {
		return
	}
	if err := h.unrecorded.OrderUnrecorded(ctx, order, fmt.Errorf("%w: %w", ErrUnmatchedPayment, err)); err != nil {
		h.logger.ErrorContext(ctx, "failed to publish unmatched payment", "reference", order.Reference, "error", err)
	}
}
