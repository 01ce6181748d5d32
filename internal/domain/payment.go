package domain

// PaymentRequest is the outbound charge request handed to a payment gateway.
type PaymentRequest struct {
	Amount    int64  `json:"amount"` // minor units (pesewas)
	Currency  string `json:"currency"`
	Reference string `json:"reference"`
	Email     string `json:"email"`
}

// PaymentSession is what the gateway hands back once a charge is initialised.
type PaymentSession struct {
	Reference        string `json:"reference"`
	AuthorizationURL string `json:"authorization_url,omitempty"`
	AccessCode       string `json:"access_code,omitempty"`
	ProviderID       string `json:"provider_id,omitempty"`
	ClientSecret     string `json:"client_secret,omitempty"`
	Amount           int64  `json:"amount"`
	Currency         string `json:"currency"`
}

type PaymentOutcome string

const (
	PaymentSucceeded PaymentOutcome = "SUCCESS"
	PaymentCancelled PaymentOutcome = "CANCELLED"
	PaymentFailed    PaymentOutcome = "FAILED"
	// PaymentPending means the gateway has not settled the attempt yet.
	PaymentPending PaymentOutcome = "PENDING"
)

// PaymentResult is the gateway callback folded into a value.
type PaymentResult struct {
	Outcome PaymentOutcome `json:"outcome"`
	Reason  string         `json:"reason,omitempty"`
}

// PaymentNotice is a verified gateway callback about one reference.
type PaymentNotice struct {
	Reference string
	Result    PaymentResult
	Amount    int64 // minor units; 0 when the gateway did not report one
	Currency  string
}

func Succeeded() PaymentResult {
	return PaymentResult{Outcome: PaymentSucceeded}
}

func Cancelled() PaymentResult {
	return PaymentResult{Outcome: PaymentCancelled}
}

func Failed(reason string) PaymentResult {
	return PaymentResult{Outcome: PaymentFailed, Reason: reason}
}

func Pending() PaymentResult {
	return PaymentResult{Outcome: PaymentPending}
}
