package checkout

import (
	"context"
	"sync"

	d "github.com/jeffloic/artisan-showroom/internal/domain"
)

// MockGateway implements PaymentGateway for testing
type MockGateway struct {
	mu          sync.Mutex
	Requests    []d.PaymentRequest
	InitErr     error
	Result      d.PaymentResult
	VerifyErr   error
	VerifyCalls int
	// Amount, when set, is reported on the session instead of the requested amount.
	Amount int64
	// Block, when set, holds Initialize until it is closed.
	Block chan struct{}
}

func (m *MockGateway) Initialize(_ context.Context, req d.PaymentRequest) (*d.PaymentSession, error) {
	if m.Block != nil {
		<-m.Block
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Requests = append(m.Requests, req)
	if m.InitErr != nil {
		return nil, m.InitErr
	}
	return &d.PaymentSession{
		Reference:        req.Reference,
		AuthorizationURL: "https://checkout.example/" + req.Reference,
		Amount:           m.Amount,
	}, nil
}

func (m *MockGateway) Verify(_ context.Context, _ *d.PaymentSession) (d.PaymentResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.VerifyCalls++
	return m.Result, m.VerifyErr
}

func (m *MockGateway) requestCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Requests)
}

// MockOrderStore implements OrderStore for testing
type MockOrderStore struct {
	mu      sync.Mutex
	Created []*d.Order
	Err     error
}

func (m *MockOrderStore) CreateOrder(_ context.Context, order *d.Order) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Created = append(m.Created, order)
	return m.Err
}

// MockClaims implements ReferenceClaimer for testing
type MockClaims struct {
	claimed map[string]bool
	Err     error
}

func (m *MockClaims) Claim(_ context.Context, reference string) (bool, error) {
	if m.Err != nil {
		return false, m.Err
	}
	if m.claimed == nil {
		m.claimed = make(map[string]bool)
	}
	if m.claimed[reference] {
		return false, nil
	}
	m.claimed[reference] = true
	return true, nil
}

// MockEvents implements OrderEvents for testing
type MockEvents struct {
	Placed     []*d.Order
	Unrecorded []*d.Order
	Causes     []error
}

func (m *MockEvents) OrderPlaced(_ context.Context, order *d.Order) error {
	m.Placed = append(m.Placed, order)
	return nil
}

func (m *MockEvents) OrderUnrecorded(_ context.Context, order *d.Order, cause error) error {
	m.Unrecorded = append(m.Unrecorded, order)
	m.Causes = append(m.Causes, cause)
	return nil
}
