package domain

type CheckoutStatus string

const (
	CheckoutStatusIdle      CheckoutStatus = "IDLE"
	CheckoutStatusInitiated CheckoutStatus = "INITIATED"
	CheckoutStatusSucceeded CheckoutStatus = "SUCCEEDED"
	CheckoutStatusFailed    CheckoutStatus = "FAILED"
	CheckoutStatusCancelled CheckoutStatus = "CANCELLED"
)

var allowedTransitions = map[CheckoutStatus][]CheckoutStatus{
	CheckoutStatusIdle:      {CheckoutStatusInitiated},
	CheckoutStatusInitiated: {CheckoutStatusSucceeded, CheckoutStatusFailed, CheckoutStatusCancelled, CheckoutStatusIdle},
	CheckoutStatusSucceeded: {CheckoutStatusIdle},
	CheckoutStatusFailed:    {CheckoutStatusIdle},
	CheckoutStatusCancelled: {CheckoutStatusIdle},
}

func (s CheckoutStatus) IsTerminal() bool {
	return s == CheckoutStatusSucceeded || s == CheckoutStatusFailed || s == CheckoutStatusCancelled
}

// String representation (for logging)
func (s CheckoutStatus) String() string {
	return string(s)
}

func CanTransitionTo(from, to CheckoutStatus) bool {
	for _, next := range allowedTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}
