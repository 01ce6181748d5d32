package consumer

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/jeffloic/artisan-showroom/internal/domain"
	"github.com/jeffloic/artisan-showroom/internal/publisher"
	"github.com/jeffloic/artisan-showroom/internal/repository"
	"github.com/segmentio/kafka-go"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockReader struct {
	mu        sync.Mutex
	messages  []kafka.Message
	committed []kafka.Message
}

func (m *mockReader) FetchMessage(ctx context.Context) (kafka.Message, error) {
	m.mu.Lock()
	if len(m.messages) > 0 {
		msg := m.messages[0]
		m.messages = m.messages[1:]
		m.mu.Unlock()
		return msg, nil
	}
	m.mu.Unlock()
	<-ctx.Done()
	return kafka.Message{}, ctx.Err()
}

func (m *mockReader) CommitMessages(_ context.Context, msgs ...kafka.Message) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.committed = append(m.committed, msgs...)
	return nil
}

func (m *mockReader) Close() error {
	return nil
}

func (m *mockReader) committedCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.committed)
}

type mockRepo struct {
	mu      sync.Mutex
	errs    []error
	created []*domain.Order
}

func (m *mockRepo) CreateOrder(_ context.Context, order *domain.Order) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.errs) > 0 {
		err := m.errs[0]
		m.errs = m.errs[1:]
		if err != nil {
			return err
		}
	}
	m.created = append(m.created, order)
	return nil
}

type mockEvents struct {
	placed []*domain.Order
}

func (m *mockEvents) OrderPlaced(_ context.Context, order *domain.Order) error {
	m.placed = append(m.placed, order)
	return nil
}

func unrecordedMessage(t *testing.T, reference string, offset int64) kafka.Message {
	t.Helper()
	order := domain.NewPaidOrder(reference, domain.CartSnapshot{
		Items: []domain.CartLineItem{
			{ID: "a", Material: "Walnut", UnitPrice: decimal.NewFromInt(850), Quantity: 2},
		},
	}, 170000)
	payload, err := json.Marshal(publisher.OrderEvent{
		Type:  publisher.EventOrderUnrecorded,
		Order: order,
		Error: "db down",
	})
	require.NoError(t, err)
	return kafka.Message{Topic: publisher.TopicOrdersUnrecorded, Offset: offset, Value: payload}
}

func newTestReconciler(repo *mockRepo, events OrderEvents, reader *mockReader) *Reconciler {
	r := newReconciler(repo, events, reader, slog.New(slog.NewTextHandler(io.Discard, nil)))
	r.backoff = time.Millisecond
	r.maxAttempts = 3
	return r
}

func TestHandle_StoresOrder(t *testing.T) {
	repo := &mockRepo{}
	events := &mockEvents{}
	r := newTestReconciler(repo, events, &mockReader{})

	require.NoError(t, r.handle(context.Background(), unrecordedMessage(t, "ref-1", 0)))

	require.Len(t, repo.created, 1)
	order := repo.created[0]
	assert.Equal(t, "ref-1", order.Reference)
	assert.True(t, decimal.NewFromInt(1700).Equal(order.TotalPaid))
	assert.Equal(t, domain.OrderStatusPaid, order.Status)
	assert.Len(t, events.placed, 1)
}

func TestHandle_DuplicateIsSkipped(t *testing.T) {
	repo := &mockRepo{errs: []error{repository.ErrDuplicateOrder}}
	events := &mockEvents{}
	r := newTestReconciler(repo, events, &mockReader{})

	require.NoError(t, r.handle(context.Background(), unrecordedMessage(t, "ref-1", 0)))
	assert.Empty(t, repo.created)
	assert.Empty(t, events.placed)
}

func TestHandle_RetriesTransientErrors(t *testing.T) {
	repo := &mockRepo{errs: []error{errors.New("timeout"), errors.New("timeout"), nil}}
	r := newTestReconciler(repo, nil, &mockReader{})

	require.NoError(t, r.handle(context.Background(), unrecordedMessage(t, "ref-1", 0)))
	assert.Len(t, repo.created, 1)
}

func TestHandle_GivesUpAfterMaxAttempts(t *testing.T) {
	down := errors.New("connection refused")
	repo := &mockRepo{errs: []error{down, down, down}}
	r := newTestReconciler(repo, nil, &mockReader{})

	err := r.handle(context.Background(), unrecordedMessage(t, "ref-1", 0))
	assert.ErrorIs(t, err, down)
	assert.Empty(t, repo.created)
}

func TestHandle_MalformedMessageIsDropped(t *testing.T) {
	repo := &mockRepo{}
	r := newTestReconciler(repo, nil, &mockReader{})

	assert.NoError(t, r.handle(context.Background(), kafka.Message{Value: []byte("{not json")}))
	assert.NoError(t, r.handle(context.Background(), kafka.Message{Value: []byte(`{"type":"order.unrecorded"}`)}))
	assert.Empty(t, repo.created)
}

func TestRun_CommitsHandledMessages(t *testing.T) {
	repo := &mockRepo{}
	reader := &mockReader{messages: []kafka.Message{
		unrecordedMessage(t, "ref-1", 0),
		unrecordedMessage(t, "ref-2", 1),
	}}
	r := newTestReconciler(repo, nil, reader)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- r.Run(ctx) }()

	require.Eventually(t, func() bool { return reader.committedCount() == 2 }, time.Second, 5*time.Millisecond)
	cancel()
	assert.NoError(t, <-done)
	assert.Len(t, repo.created, 2)
}
