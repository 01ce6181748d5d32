package checkout

import (
	"fmt"

	d "github.com/jeffloic/artisan-showroom/internal/domain"
)

const (
	MessageSuccess         = "Payment Successful! Thank you for your order."
	MessageUnrecorded      = "Payment received, but order logging failed. Contact support."
	MessageCancelled       = "Payment window closed."
	MessagePending         = "Payment is still being processed."
	messageFailedFormatter = "Payment failed: %s"
)

// Outcome is the user-visible result of resolving a payment attempt.
type Outcome struct {
	Reference string           `json:"reference"`
	Status    d.CheckoutStatus `json:"status"`
	OrderID   string           `json:"order_id,omitempty"`
	Recorded  bool             `json:"recorded"`
	Message   string           `json:"message"`
	Reason    string           `json:"reason,omitempty"`
}

// Err maps the outcome to the matching sentinel, nil for a recorded success.
func (o Outcome) Err() error {
	switch o.Status {
	case d.CheckoutStatusSucceeded:
		if !o.Recorded {
			return ErrOrderPersistenceFailed
		}
		return nil
	case d.CheckoutStatusFailed:
		if o.Reason != "" {
			return fmt.Errorf("%w: %s", ErrPaymentFailed, o.Reason)
		}
		return ErrPaymentFailed
	case d.CheckoutStatusCancelled:
		return ErrPaymentCancelled
	case d.CheckoutStatusInitiated:
		return ErrPaymentPending
	default:
		return nil
	}
}

func failedMessage(reason string) string {
	if reason == "" {
		reason = "unknown reason"
	}
	return fmt.Sprintf(messageFailedFormatter, reason)
}
