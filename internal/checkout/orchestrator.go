// Package checkout drives one shopper's payment attempts from initiation to a
// recorded order.
package checkout

import (
	"context"
	"log/slog"
	"sync"

	d "github.com/jeffloic/artisan-showroom/internal/domain"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel"
)

var tracer = otel.Tracer("github.com/jeffloic/artisan-showroom/internal/checkout")

type PaymentGateway interface {
	Initialize(ctx context.Context, req d.PaymentRequest) (*d.PaymentSession, error)
	Verify(ctx context.Context, session *d.PaymentSession) (d.PaymentResult, error)
}

// Cart is the slice of the cart store checkout reads and resets.
type Cart interface {
	Total() decimal.Decimal
	Snapshot() d.CartSnapshot
	Clear()
	Close()
}

type OrderStore interface {
	CreateOrder(ctx context.Context, order *d.Order) error
}

// ReferenceClaimer grants a payment reference to exactly one caller.
type ReferenceClaimer interface {
	Claim(ctx context.Context, reference string) (bool, error)
}

type OrderEvents interface {
	OrderPlaced(ctx context.Context, order *d.Order) error
	OrderUnrecorded(ctx context.Context, order *d.Order, cause error) error
}

// attempt is one payment attempt. snapshot is the cart as it was charged.
type attempt struct {
	reference string
	request   d.PaymentRequest
	session   *d.PaymentSession
	snapshot  d.CartSnapshot
}

// charged is the amount the gateway took, in minor units.
func (a *attempt) charged() int64 {
	if a.session != nil && a.session.Amount > 0 {
		return a.session.Amount
	}
	return a.request.Amount
}

type Orchestrator struct {
	mu        sync.Mutex
	cart      Cart
	gateway   PaymentGateway
	orders    OrderStore
	claims    ReferenceClaimer
	events    OrderEvents
	logger    *slog.Logger
	reference func() string

	status    d.CheckoutStatus
	current   *attempt
	completed map[string]Outcome
}

type Option func(*Orchestrator)

func WithClaims(claims ReferenceClaimer) Option {
	return func(o *Orchestrator) { o.claims = claims }
}

func WithEvents(events OrderEvents) Option {
	return func(o *Orchestrator) { o.events = events }
}

// WithReferenceGenerator replaces the uuid reference source.
func WithReferenceGenerator(fn func() string) Option {
	return func(o *Orchestrator) { o.reference = fn }
}

// NewOrchestrator builds an orchestrator for one cart. A nil gateway is allowed
// and makes every checkout fail with ErrGatewayUnavailable.
func NewOrchestrator(cart Cart, gateway PaymentGateway, orders OrderStore, logger *slog.Logger, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		cart:      cart,
		gateway:   gateway,
		orders:    orders,
		logger:    logger,
		reference: newReference,
		status:    d.CheckoutStatusIdle,
		completed: make(map[string]Outcome),
	}
	for _, opt := range opts {
		opt(o)
	}
	if o.logger == nil {
		o.logger = slog.Default()
	}
	return o
}

func (o *Orchestrator) Status() d.CheckoutStatus {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.status
}

// Pending returns the session of the attempt awaiting a result, if any.
func (o *Orchestrator) Pending() (d.PaymentSession, bool) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.status != d.CheckoutStatusInitiated || o.current == nil || o.current.session == nil {
		return d.PaymentSession{}, false
	}
	return *o.current.session, true
}

// CanCheckout reports whether the checkout action should be enabled.
func (o *Orchestrator) CanCheckout() bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.gateway != nil && o.status != d.CheckoutStatusInitiated && o.cart.Total().IsPositive()
}

// Checkout runs Initiate and Confirm back to back, for gateways that settle
// synchronously.
func (o *Orchestrator) Checkout(ctx context.Context, email string) (Outcome, error) {
	session, err := o.Initiate(ctx, email)
	if err != nil {
		return Outcome{}, err
	}
	return o.Confirm(ctx, session.Reference)
}

// transition must be called with o.mu held.
func (o *Orchestrator) transition(to d.CheckoutStatus) error {
	from := o.status
	if from.IsTerminal() && to != d.CheckoutStatusIdle {
		from = d.CheckoutStatusIdle
	}
	if !d.CanTransitionTo(from, to) {
		return ErrIllegalTransition
	}
	o.status = to
	return nil
}
