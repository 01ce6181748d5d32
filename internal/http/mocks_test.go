package http

import (
	"context"
	"errors"
	"net/url"
	"sync"
	"testing"

	"github.com/jeffloic/artisan-showroom/internal/domain"
	"github.com/jeffloic/artisan-showroom/internal/payment/paystack"
	"github.com/jeffloic/artisan-showroom/internal/repository"
)

type approveAll struct{}

func (approveAll) Roll() int { return 0 }

type refuseAll struct{}

func (refuseAll) Roll() int { return 97 }

// paystackSecret verifies webhooks with a fixed key.
type paystackSecret string

func (s paystackSecret) ParseWebhook(body []byte, signature string) (paystack.Event, error) {
	return paystack.ParseEvent(string(s), body, signature)
}

// MockStripeWebhooks returns a canned parse result.
type MockStripeWebhooks struct {
	Notice domain.PaymentNotice
	OK     bool
	Err    error
}

func (m *MockStripeWebhooks) ParseWebhook(_ []byte, _ string) (domain.PaymentNotice, bool, error) {
	return m.Notice, m.OK, m.Err
}

// MockUnrecorded implements UnrecordedEvents for testing
type MockUnrecorded struct {
	mu     sync.Mutex
	Orders []*domain.Order
	Causes []error
}

func (m *MockUnrecorded) OrderUnrecorded(_ context.Context, order *domain.Order, cause error) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Orders = append(m.Orders, order)
	m.Causes = append(m.Causes, cause)
	return nil
}

// brokenOrders fails every write.
type brokenOrders struct{}

func (brokenOrders) CreateOrder(context.Context, *domain.Order) error {
	return errors.New("connection refused")
}

func (brokenOrders) GetOrderByID(context.Context, string) (*domain.Order, error) {
	return nil, repository.ErrOrderNotFound
}

func (brokenOrders) GetOrderByReference(context.Context, string) (*domain.Order, error) {
	return nil, repository.ErrOrderNotFound
}

func mustURL(t *testing.T, raw string) *url.URL {
	t.Helper()
	u, err := url.Parse(raw)
	if err != nil {
		t.Fatalf("parse url: %v", err)
	}
	return u
}
