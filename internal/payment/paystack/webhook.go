package paystack

import (
	"crypto/hmac"
	"crypto/sha512"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/jeffloic/artisan-showroom/internal/domain"
)

const SignatureHeader = "x-paystack-signature"

var ErrInvalidSignature = errors.New("invalid paystack signature")

const (
	EventChargeSuccess = "charge.success"
	EventChargeFailed  = "charge.failed"
)

type Event struct {
	Event string `json:"event"`
	Data  struct {
		Reference       string `json:"reference"`
		Status          string `json:"status"`
		Amount          int64  `json:"amount"`
		Currency        string `json:"currency"`
		GatewayResponse string `json:"gateway_response"`
	} `json:"data"`
}

// Result maps the event to a payment result.
func (e Event) Result() domain.PaymentResult {
	if e.Event == EventChargeSuccess {
		return domain.Succeeded()
	}
	result := MapStatus(e.Data.Status, e.Data.GatewayResponse)
	if e.Event == EventChargeFailed && (result.Outcome == domain.PaymentSucceeded || result.Outcome == domain.PaymentPending) {
		reason := e.Data.GatewayResponse
		if reason == "" {
			reason = "charge failed"
		}
		return domain.Failed(reason)
	}
	return result
}

// Notice is the event reduced to what checkout needs.
func (e Event) Notice() domain.PaymentNotice {
	return domain.PaymentNotice{
		Reference: e.Data.Reference,
		Result:    e.Result(),
		Amount:    e.Data.Amount,
		Currency:  strings.ToUpper(e.Data.Currency),
	}
}

// Sign returns the hex HMAC-SHA512 of body, as Paystack puts in SignatureHeader.
func Sign(secretKey string, body []byte) string {
	mac := hmac.New(sha512.New, []byte(secretKey))
	mac.Write(body)
	return hex.EncodeToString(mac.Sum(nil))
}

func VerifySignature(secretKey string, body []byte, signature string) bool {
	if secretKey == "" || signature == "" {
		return false
	}
	expected := Sign(secretKey, body)
	return hmac.Equal([]byte(expected), []byte(strings.ToLower(strings.TrimSpace(signature))))
}

// ParseEvent checks the signature and decodes the webhook body.
func ParseEvent(secretKey string, body []byte, signature string) (Event, error) {
	if !VerifySignature(secretKey, body, signature) {
		return Event{}, ErrInvalidSignature
	}
	var e Event
	if err := json.Unmarshal(body, &e); err != nil {
		return Event{}, fmt.Errorf("decode paystack event: %w", err)
	}
	return e, nil
}

// ParseWebhook is ParseEvent with the client's secret key.
func (c *Client) ParseWebhook(body []byte, signature string) (Event, error) {
	return ParseEvent(c.secretKey, body, signature)
}
