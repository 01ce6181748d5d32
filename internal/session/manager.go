// Package session owns the per-shopper cart, selection and checkout objects.
package session

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jeffloic/artisan-showroom/internal/cart"
	"github.com/jeffloic/artisan-showroom/internal/checkout"
	d "github.com/jeffloic/artisan-showroom/internal/domain"
	"github.com/jeffloic/artisan-showroom/internal/selection"
	"golang.org/x/time/rate"
)

const DefaultTTL = 2 * time.Hour

var ErrNotFound = errors.New("session not found")

type Session struct {
	ID        string
	Cart      *cart.Store
	Selection *selection.Controller
	Checkout  *checkout.Orchestrator
	CreatedAt time.Time

	limiter  *rate.Limiter
	lastSeen time.Time
	done     chan struct{}
}

// AllowCheckout reports whether the session may start another checkout now.
func (s *Session) AllowCheckout() bool {
	return s.limiter.Allow()
}

// Done is closed when the session ends.
func (s *Session) Done() <-chan struct{} {
	return s.done
}

// Deps are shared by every session. Interface fields may be left nil.
type Deps struct {
	Catalog       selection.Catalog
	Gateway       checkout.PaymentGateway
	Orders        checkout.OrderStore
	Claims        checkout.ReferenceClaimer
	Events        checkout.OrderEvents
	Logger        *slog.Logger
	TTL           time.Duration
	CheckoutRate  rate.Limit
	CheckoutBurst int
}

type Manager struct {
	mu          sync.Mutex
	deps        Deps
	sessions    map[string]*Session
	byReference map[string]string
	now         func() time.Time
}

func NewManager(deps Deps) *Manager {
	if deps.TTL <= 0 {
		deps.TTL = DefaultTTL
	}
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}
	if deps.CheckoutRate == 0 {
		deps.CheckoutRate = rate.Every(5 * time.Second)
	}
	if deps.CheckoutBurst <= 0 {
		deps.CheckoutBurst = 3
	}
	return &Manager{
		deps:        deps,
		sessions:    make(map[string]*Session),
		byReference: make(map[string]string),
		now:         time.Now,
	}
}

// Create starts a session with an empty cart and the selection seeded from modelID.
func (m *Manager) Create(modelID string) *Session {
	store := cart.NewStore()

	var opts []checkout.Option
	if m.deps.Claims != nil {
		opts = append(opts, checkout.WithClaims(m.deps.Claims))
	}
	if m.deps.Events != nil {
		opts = append(opts, checkout.WithEvents(m.deps.Events))
	}

	now := m.now()
	s := &Session{
		ID:        uuid.NewString(),
		Cart:      store,
		Selection: selection.New(store, m.deps.Catalog, modelID),
		CreatedAt: now,
		limiter:   rate.NewLimiter(m.deps.CheckoutRate, m.deps.CheckoutBurst),
		lastSeen:  now,
		done:      make(chan struct{}),
	}
	s.Checkout = checkout.NewOrchestrator(store, m.deps.Gateway, m.deps.Orders,
		m.deps.Logger.With("session_id", s.ID), opts...)

	m.mu.Lock()
	m.sessions[s.ID] = s
	m.mu.Unlock()

	m.deps.Logger.Debug("session created", "session_id", s.ID, "model_id", s.Selection.Current().ModelID)
	return s
}

// Get returns a live session and marks it as seen.
func (m *Manager) Get(id string) (*Session, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[id]
	if !ok {
		return nil, false
	}
	s.lastSeen = m.now()
	return s, true
}

func (m *Manager) Touch(id string) bool {
	_, ok := m.Get(id)
	return ok
}

// End tears the session down: the cart is emptied and streams are released.
// A session with a payment still open is kept and End returns
// checkout.ErrCheckoutInProgress.
func (m *Manager) End(id string) error {
	m.mu.Lock()
	s, ok := m.sessions[id]
	if !ok {
		m.mu.Unlock()
		return ErrNotFound
	}
	if s.Checkout.Status() == d.CheckoutStatusInitiated {
		m.mu.Unlock()
		return checkout.ErrCheckoutInProgress
	}
	m.removeLocked(s)
	m.mu.Unlock()

	s.Cart.Clear()
	s.Cart.Close()
	m.deps.Logger.Debug("session ended", "session_id", id)
	return nil
}

func (m *Manager) removeLocked(s *Session) {
	delete(m.sessions, s.ID)
	for ref, id := range m.byReference {
		if id == s.ID {
			delete(m.byReference, ref)
		}
	}
	close(s.done)
}

// Track links a payment reference to a session so gateway callbacks can find it.
func (m *Manager) Track(reference, id string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.sessions[id]; ok {
		m.byReference[reference] = id
	}
}

func (m *Manager) ByReference(reference string) (*Session, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	id, ok := m.byReference[reference]
	if !ok {
		return nil, false
	}
	s, ok := m.sessions[id]
	return s, ok
}

func (m *Manager) Count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}

// Sweep ends sessions idle for longer than the TTL. A session waiting on a
// payment is never swept; it becomes eligible once the attempt resolves.
func (m *Manager) Sweep(now time.Time) int {
	var expired []*Session

	m.mu.Lock()
	for _, s := range m.sessions {
		idle := now.Sub(s.lastSeen)
		if idle <= m.deps.TTL {
			continue
		}
		// a payment page may still call back; the session stays until it resolves
		if s.Checkout.Status() == d.CheckoutStatusInitiated {
			continue
		}
		m.removeLocked(s)
		expired = append(expired, s)
	}
	m.mu.Unlock()

	for _, s := range expired {
		s.Cart.Clear()
		s.Cart.Close()
	}
	if len(expired) > 0 {
		m.deps.Logger.Info("expired idle sessions", "count", len(expired))
	}
	return len(expired)
}

// Run sweeps on interval until ctx is cancelled.
func (m *Manager) Run(ctx context.Context, interval time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			m.Sweep(m.now())
		case <-ctx.Done():
			return nil
		}
	}
}
