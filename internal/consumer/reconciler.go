// Package consumer replays paid orders that could not be stored at checkout.
package consumer

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/jeffloic/artisan-showroom/internal/domain"
	"github.com/jeffloic/artisan-showroom/internal/publisher"
	"github.com/jeffloic/artisan-showroom/internal/repository"
	"github.com/segmentio/kafka-go"
)

type OrderCreator interface {
	CreateOrder(ctx context.Context, order *domain.Order) error
}

type OrderEvents interface {
	OrderPlaced(ctx context.Context, order *domain.Order) error
}

type messageReader interface {
	FetchMessage(ctx context.Context) (kafka.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

type Reconciler struct {
	repo        OrderCreator
	events      OrderEvents
	reader      messageReader
	logger      *slog.Logger
	maxAttempts int
	backoff     time.Duration
}

func NewReconciler(repo OrderCreator, events OrderEvents, logger *slog.Logger, groupID string, brokers ...string) *Reconciler {
	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:  brokers,
		Topic:    publisher.TopicOrdersUnrecorded,
		GroupID:  groupID,
		MaxBytes: 10e6, // 10MB
	})
	return newReconciler(repo, events, reader, logger)
}

func newReconciler(repo OrderCreator, events OrderEvents, reader messageReader, logger *slog.Logger) *Reconciler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Reconciler{
		repo:        repo,
		events:      events,
		reader:      reader,
		logger:      logger,
		maxAttempts: 5,
		backoff:     time.Second,
	}
}

// Run consumes until ctx is cancelled.
func (c *Reconciler) Run(ctx context.Context) error {
	for {
		if ctx.Err() != nil {
			return nil
		}
		m, err := c.reader.FetchMessage(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return nil
			}
			if errors.Is(err, io.EOF) {
				return nil
			}
			c.logger.ErrorContext(ctx, "error reading message", "error", err)
			continue
		}

		if err := c.handle(ctx, m); err != nil {
			// left uncommitted so the group redelivers it after a restart
			c.logger.ErrorContext(ctx, "giving up on unrecorded order",
				"offset", m.Offset,
				"partition", m.Partition,
				"error", err,
			)
			continue
		}

		if err := c.reader.CommitMessages(ctx, m); err != nil {
			c.logger.ErrorContext(ctx, "error committing message", "offset", m.Offset, "error", err)
		}
	}
}

func (c *Reconciler) Close() error {
	return c.reader.Close()
}

// handle stores the order carried by m. Malformed messages are dropped, not retried.
func (c *Reconciler) handle(ctx context.Context, m kafka.Message) error {
	var event publisher.OrderEvent
	if err := json.Unmarshal(m.Value, &event); err != nil {
		c.logger.WarnContext(ctx, "error parsing message, skipping", "offset", m.Offset, "error", err)
		return nil
	}
	if event.Order == nil || event.Order.Reference == "" || event.Order.ID == "" {
		c.logger.WarnContext(ctx, "message has no order, skipping", "offset", m.Offset)
		return nil
	}
	order := event.Order
	if order.Currency == "" {
		order.Currency = domain.CurrencyGHS
	}
	if order.Status == "" {
		order.Status = domain.OrderStatusPaid
	}
	order.CreatedAt = time.Time{}

	var lastErr error
	for attempt := 1; attempt <= c.maxAttempts; attempt++ {
		err := c.repo.CreateOrder(ctx, order)
		if err == nil {
			c.logger.InfoContext(ctx, "unrecorded order stored",
				"order_id", order.ID,
				"reference", order.Reference,
				"attempt", attempt,
			)
			c.announce(ctx, order)
			return nil
		}
		if errors.Is(err, repository.ErrDuplicateOrder) {
			c.logger.InfoContext(ctx, "order already recorded, skipping", "reference", order.Reference)
			return nil
		}

		lastErr = err
		c.logger.WarnContext(ctx, "failed to store unrecorded order",
			"reference", order.Reference,
			"attempt", attempt,
			"error", err,
		)
		if attempt == c.maxAttempts {
			break
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(c.backoff * time.Duration(1<<(attempt-1))):
		}
	}
	return fmt.Errorf("store order %s after %d attempts: %w", order.Reference, c.maxAttempts, lastErr)
}

func (c *Reconciler) announce(ctx context.Context, order *domain.Order) {
	if c.events == nil {
		return
	}
	if err := c.events.OrderPlaced(ctx, order); err != nil {
		c.logger.WarnContext(ctx, "failed to publish order placed", "order_id", order.ID, "error", err)
	}
}
