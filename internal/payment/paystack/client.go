// Package paystack is a payment gateway backed by the Paystack transactions API.
package paystack

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/jeffloic/artisan-showroom/internal/domain"
	"github.com/jeffloic/artisan-showroom/pkg/circuitbreaker"
	"golang.org/x/sync/singleflight"
)

const DefaultBaseURL = "https://api.paystack.co"

var (
	ErrMissingSecretKey = errors.New("paystack secret key is not configured")
	ErrRejected         = errors.New("paystack rejected the request")
	ErrUnavailable      = errors.New("paystack unavailable")
)

type Config struct {
	SecretKey   string
	BaseURL     string
	CallbackURL string
	Timeout     time.Duration
}

type Client struct {
	secretKey   string
	baseURL     string
	callbackURL string
	httpClient  *http.Client
	breaker     *circuitbreaker.Breaker[[]byte]
	verifies    singleflight.Group // one lookup per reference at a time
	logger      *slog.Logger
}

func NewClient(cfg Config, httpClient *http.Client, logger *slog.Logger) (*Client, error) {
	if strings.TrimSpace(cfg.SecretKey) == "" {
		return nil, ErrMissingSecretKey
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 15 * time.Second
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.Timeout}
	}
	if logger == nil {
		logger = slog.Default()
	}

	breakerCfg := circuitbreaker.DefaultConfig("paystack")
	breakerCfg.Logger = logger
	breakerCfg.IsSuccessful = func(err error) bool {
		// a refused request says nothing about the provider's health
		return err == nil || errors.Is(err, ErrRejected)
	}

	return &Client{
		secretKey:   cfg.SecretKey,
		baseURL:     strings.TrimRight(cfg.BaseURL, "/"),
		callbackURL: cfg.CallbackURL,
		httpClient:  httpClient,
		breaker:     circuitbreaker.New[[]byte](breakerCfg),
		logger:      logger,
	}, nil
}

type envelope struct {
	Status  bool            `json:"status"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

type initializeRequest struct {
	Email       string `json:"email"`
	Amount      int64  `json:"amount"`
	Currency    string `json:"currency"`
	Reference   string `json:"reference"`
	CallbackURL string `json:"callback_url,omitempty"`
}

type initializeData struct {
	AuthorizationURL string `json:"authorization_url"`
	AccessCode       string `json:"access_code"`
	Reference        string `json:"reference"`
}

type verifyData struct {
	ID              int64  `json:"id"`
	Status          string `json:"status"`
	Reference       string `json:"reference"`
	Amount          int64  `json:"amount"`
	Currency        string `json:"currency"`
	GatewayResponse string `json:"gateway_response"`
}

func (c *Client) Initialize(ctx context.Context, req domain.PaymentRequest) (*domain.PaymentSession, error) {
	body, err := json.Marshal(initializeRequest{
		Email:       req.Email,
		Amount:      req.Amount,
		Currency:    req.Currency,
		Reference:   req.Reference,
		CallbackURL: c.callbackURL,
	})
	if err != nil {
		return nil, fmt.Errorf("marshal initialize request: %w", err)
	}

	var data initializeData
	if err := c.call(ctx, http.MethodPost, "/transaction/initialize", body, &data); err != nil {
		return nil, err
	}

	return &domain.PaymentSession{
		Reference:        req.Reference,
		AuthorizationURL: data.AuthorizationURL,
		AccessCode:       data.AccessCode,
		Amount:           req.Amount,
		Currency:         req.Currency,
	}, nil
}

// Verify looks the transaction up and maps its status to a payment result.
func (c *Client) Verify(ctx context.Context, session *domain.PaymentSession) (domain.PaymentResult, error) {
	v, err, _ := c.verifies.Do(session.Reference, func() (interface{}, error) {
		var data verifyData
		path := "/transaction/verify/" + url.PathEscape(session.Reference)
		if err := c.call(ctx, http.MethodGet, path, nil, &data); err != nil {
			return nil, err
		}
		return data, nil
	})
	if err != nil {
		return domain.PaymentResult{}, err
	}
	data := v.(verifyData)

	result := MapStatus(data.Status, data.GatewayResponse)
	if result.Outcome == domain.PaymentSucceeded && session.Amount > 0 && data.Amount != session.Amount {
		c.logger.ErrorContext(ctx, "paystack amount mismatch",
			"reference", session.Reference,
			"expected", session.Amount,
			"charged", data.Amount,
		)
		return domain.Failed(fmt.Sprintf("amount mismatch: expected %d, charged %d", session.Amount, data.Amount)), nil
	}
	return result, nil
}

// MapStatus converts a Paystack transaction status to a payment result.
func MapStatus(status, gatewayResponse string) domain.PaymentResult {
	switch strings.ToLower(status) {
	case "success":
		return domain.Succeeded()
	case "abandoned":
		return domain.Cancelled()
	case "failed", "reversed":
		reason := gatewayResponse
		if reason == "" {
			reason = status
		}
		return domain.Failed(reason)
	default:
		// ongoing, pending, processing, queued
		return domain.Pending()
	}
}

func (c *Client) call(ctx context.Context, method, path string, body []byte, out any) error {
	raw, err := c.breaker.Execute(func() ([]byte, error) {
		return c.do(ctx, method, path, body)
	})
	if err != nil {
		if circuitbreaker.IsOpen(err) {
			return fmt.Errorf("%w: %w", ErrUnavailable, err)
		}
		return err
	}

	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return fmt.Errorf("decode paystack response: %w", err)
	}
	if !env.Status {
		return fmt.Errorf("%w: %s", ErrRejected, env.Message)
	}
	if err := json.Unmarshal(env.Data, out); err != nil {
		return fmt.Errorf("decode paystack data: %w", err)
	}
	return nil
}

func (c *Client) do(ctx context.Context, method, path string, body []byte) ([]byte, error) {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, fmt.Errorf("build paystack request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.secretKey)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("%w: read body: %w", ErrUnavailable, err)
	}

	switch {
	case resp.StatusCode >= 500:
		return nil, fmt.Errorf("%w: status %d", ErrUnavailable, resp.StatusCode)
	case resp.StatusCode >= 400:
		var env envelope
		_ = json.Unmarshal(raw, &env)
		return nil, fmt.Errorf("%w: status %d: %s", ErrRejected, resp.StatusCode, env.Message)
	}
	return raw, nil
}
