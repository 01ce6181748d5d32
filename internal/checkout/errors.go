package checkout

import "errors"

var (
	ErrGatewayUnavailable     = errors.New("payment gateway unavailable")
	ErrCheckoutInProgress     = errors.New("checkout already in progress")
	ErrEmptyCart              = errors.New("cart is empty, nothing to checkout")
	ErrUnknownReference       = errors.New("unknown payment reference")
	ErrPaymentFailed          = errors.New("payment failed")
	ErrPaymentCancelled       = errors.New("payment cancelled")
	ErrPaymentPending         = errors.New("payment not settled yet")
	ErrOrderPersistenceFailed = errors.New("order persistence failed")
	ErrIllegalTransition      = errors.New("illegal transition of checkout status")
	ErrAmountMismatch         = errors.New("order total does not match amount charged")
)
