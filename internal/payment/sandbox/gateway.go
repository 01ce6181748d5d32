// Package sandbox is a local payment gateway for development. It approves most
// charges and refuses the rest with a card-style reason.
package sandbox

import (
	"context"
	"fmt"
	"math/rand"
	"sync"

	"github.com/jeffloic/artisan-showroom/internal/domain"
)

type Roller interface {
	Roll() int
}

type RandomRoller struct{}

func (RandomRoller) Roll() int {
	return rand.Intn(101) // 101 because Intn is exclusive of the upper bound
}

var refusals = []string{
	"insufficient funds",
	"card declined",
	"expired card",
	"suspected fraud",
	"limit exceeded",
}

func calcResult(roll int) domain.PaymentResult {
	if roll < 95 {
		return domain.Succeeded()
	}
	reason := roll - 95
	if reason == 0 || reason > len(refusals) {
		return domain.Failed("unknown reason")
	}
	return domain.Failed(refusals[reason-1])
}

type Gateway struct {
	mu      sync.Mutex
	roller  Roller
	results map[string]domain.PaymentResult
}

func New(roller Roller) *Gateway {
	if roller == nil {
		roller = RandomRoller{}
	}
	return &Gateway{
		roller:  roller,
		results: make(map[string]domain.PaymentResult),
	}
}

func (g *Gateway) Initialize(_ context.Context, req domain.PaymentRequest) (*domain.PaymentSession, error) {
	if req.Amount <= 0 {
		return nil, fmt.Errorf("sandbox: invalid amount %d", req.Amount)
	}
	return &domain.PaymentSession{
		Reference:  req.Reference,
		AccessCode: "sandbox",
		ProviderID: fmt.Sprintf("SBX-%s", req.Reference),
		Amount:     req.Amount,
		Currency:   req.Currency,
	}, nil
}

// Verify settles the attempt on first call; later calls return the same result.
func (g *Gateway) Verify(_ context.Context, session *domain.PaymentSession) (domain.PaymentResult, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if result, ok := g.results[session.Reference]; ok {
		return result, nil
	}
	result := calcResult(g.roller.Roll())
	g.results[session.Reference] = result
	return result, nil
}
