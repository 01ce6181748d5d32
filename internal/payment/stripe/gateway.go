// Package stripe is a payment gateway backed by Stripe PaymentIntents.
package stripe

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/jeffloic/artisan-showroom/internal/domain"
	"github.com/stripe/stripe-go/v81"
	"github.com/stripe/stripe-go/v81/client"
	"github.com/stripe/stripe-go/v81/webhook"
)

var ErrMissingSecretKey = errors.New("stripe secret key is not configured")

const metadataReference = "reference"

type intentsAPI interface {
	New(params *stripe.PaymentIntentParams) (*stripe.PaymentIntent, error)
	Get(id string, params *stripe.PaymentIntentParams) (*stripe.PaymentIntent, error)
}

type Config struct {
	SecretKey     string
	WebhookSecret string
}

type Gateway struct {
	intents       intentsAPI
	webhookSecret string
	logger        *slog.Logger
}

func New(cfg Config, logger *slog.Logger) (*Gateway, error) {
	if strings.TrimSpace(cfg.SecretKey) == "" {
		return nil, ErrMissingSecretKey
	}
	if logger == nil {
		logger = slog.Default()
	}
	sc := client.New(cfg.SecretKey, nil)
	return &Gateway{
		intents:       sc.PaymentIntents,
		webhookSecret: cfg.WebhookSecret,
		logger:        logger,
	}, nil
}

func (g *Gateway) Initialize(ctx context.Context, req domain.PaymentRequest) (*domain.PaymentSession, error) {
	params := &stripe.PaymentIntentParams{
		Amount:   stripe.Int64(req.Amount),
		Currency: stripe.String(strings.ToLower(req.Currency)),
		AutomaticPaymentMethods: &stripe.PaymentIntentAutomaticPaymentMethodsParams{
			Enabled: stripe.Bool(true),
		},
	}
	if req.Email != "" {
		params.ReceiptEmail = stripe.String(req.Email)
	}
	params.Context = ctx
	params.AddMetadata(metadataReference, req.Reference)
	params.SetIdempotencyKey(req.Reference)

	pi, err := g.intents.New(params)
	if err != nil {
		return nil, fmt.Errorf("create payment intent: %w", err)
	}

	return &domain.PaymentSession{
		Reference:    req.Reference,
		ProviderID:   pi.ID,
		ClientSecret: pi.ClientSecret,
		Amount:       req.Amount,
		Currency:     req.Currency,
	}, nil
}

func (g *Gateway) Verify(ctx context.Context, session *domain.PaymentSession) (domain.PaymentResult, error) {
	if session.ProviderID == "" {
		return domain.PaymentResult{}, fmt.Errorf("session %s has no payment intent", session.Reference)
	}
	params := &stripe.PaymentIntentParams{}
	params.Context = ctx

	pi, err := g.intents.Get(session.ProviderID, params)
	if err != nil {
		return domain.PaymentResult{}, fmt.Errorf("get payment intent: %w", err)
	}
	if ref := pi.Metadata[metadataReference]; ref != "" && ref != session.Reference {
		return domain.PaymentResult{}, fmt.Errorf("payment intent %s belongs to reference %s", pi.ID, ref)
	}
	return MapIntent(pi), nil
}

// MapIntent converts a PaymentIntent status to a payment result.
func MapIntent(pi *stripe.PaymentIntent) domain.PaymentResult {
	switch pi.Status {
	case stripe.PaymentIntentStatusSucceeded:
		return domain.Succeeded()
	case stripe.PaymentIntentStatusCanceled:
		return domain.Cancelled()
	case stripe.PaymentIntentStatusRequiresPaymentMethod:
		if pi.LastPaymentError != nil {
			return domain.Failed(pi.LastPaymentError.Msg)
		}
		return domain.Pending()
	default:
		return domain.Pending()
	}
}

// ParseWebhook verifies a Stripe webhook and returns the payment notice it
// carries. ok is false for event types that carry no payment result.
func (g *Gateway) ParseWebhook(payload []byte, signature string) (notice domain.PaymentNotice, ok bool, err error) {
	event, err := webhook.ConstructEventWithOptions(payload, signature, g.webhookSecret, webhook.ConstructEventOptions{
		IgnoreAPIVersionMismatch: true,
	})
	if err != nil {
		return domain.PaymentNotice{}, false, fmt.Errorf("verify stripe webhook: %w", err)
	}

	switch event.Type {
	case "payment_intent.succeeded", "payment_intent.payment_failed", "payment_intent.canceled":
	default:
		return domain.PaymentNotice{}, false, nil
	}

	var pi stripe.PaymentIntent
	if err := json.Unmarshal(event.Data.Raw, &pi); err != nil {
		return domain.PaymentNotice{}, false, fmt.Errorf("decode payment intent: %w", err)
	}
	amount := pi.AmountReceived
	if amount == 0 && pi.Status == stripe.PaymentIntentStatusSucceeded {
		amount = pi.Amount
	}
	return domain.PaymentNotice{
		Reference: pi.Metadata[metadataReference],
		Result:    MapIntent(&pi),
		Amount:    amount,
		Currency:  strings.ToUpper(string(pi.Currency)),
	}, true, nil
}
