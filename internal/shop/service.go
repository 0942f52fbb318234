// Package shop implements the storefront operations: catalog reads, customer
// registration, cart mutation, order building and the manager workflow.
package shop

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/m3rciful/storebot/core/logger"
	"github.com/m3rciful/storebot/core/metrics"
	"github.com/m3rciful/storebot/internal/domain"
	"github.com/m3rciful/storebot/internal/events"
	"github.com/m3rciful/storebot/internal/storage"
)

const (
	compCatalog   = "service.catalog"
	compCustomers = "service.customers"
	compCart      = "service.cart"
	compOrders    = "service.orders"
	compAdmin     = "service.admin"
)

// Service is the storefront application service shared by the bot and HTTP surfaces.
type Service struct {
	store   storage.Store
	events  events.Publisher
	numbers *NumberGenerator
	metrics *metrics.Shop
	now     func() time.Time
}

// Option customizes a Service.
type Option func(*Service)

// WithEvents sets the order event publisher.
func WithEvents(p events.Publisher) Option {
	return func(s *Service) {
		if p != nil {
			s.events = p
		}
	}
}

// WithNumbers sets the order number generator.
func WithNumbers(g *NumberGenerator) Option {
	return func(s *Service) {
		if g != nil {
			s.numbers = g
		}
	}
}

// WithMetrics sets the shop metrics recorder.
func WithMetrics(m *metrics.Shop) Option {
	return func(s *Service) { s.metrics = m }
}

// WithClock sets the clock used for event timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// New builds a Service on store.
func New(store storage.Store, opts ...Option) *Service {
	s := &Service{
		store:   store,
		events:  events.Nop{},
		numbers: NewNumberGenerator(),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Ping checks storage connectivity.
func (s *Service) Ping(ctx context.Context) error {
	return s.store.Ping(ctx)
}

// wrap turns storage.ErrNotFound into a domain not-found error for entity and annotates the rest with op.
func wrap(op, entity string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, storage.ErrNotFound) {
		return domain.NotFound(entity, err)
	}
	var de *domain.Error
	if errors.As(err, &de) {
		return err
	}
	return fmt.Errorf("%s: %w", op, err)
}

// customer resolves the caller, reporting ErrNotRegistered when unknown.
func (s *Service) customer(ctx context.Context, telegramID int64) (domain.Customer, error) {
	c, err := s.store.CustomerByTelegramID(ctx, telegramID)
	if errors.Is(err, storage.ErrNotFound) {
		return domain.Customer{}, domain.ErrNotRegistered
	}
	if err != nil {
		return domain.Customer{}, fmt.Errorf("lookup customer: %w", err)
	}
	return c, nil
}

func (s *Service) publish(ctx context.Context, e events.OrderEvent) {
	if err := s.events.Publish(ctx, e); err != nil {
		logger.Warn(ctx, compOrders, "event.publish",
			slog.String("status", "fail"),
			slog.String("event_type", string(e.Type)),
			slog.Int64("order_id", e.OrderID),
			slog.String("err", err.Error()),
		)
	}
}
