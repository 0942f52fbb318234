package shop

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/m3rciful/storebot/core/logger"
	"github.com/m3rciful/storebot/internal/domain"
	"github.com/m3rciful/storebot/internal/events"
	"github.com/m3rciful/storebot/internal/storage"
)

var errNotConfirmable = &domain.Error{Kind: domain.CodeInvalidTransition, Msg: "order can no longer be confirmed"}

// CreateOrder snapshots the caller's cart into a new order delivered by method.
// The cart itself is left untouched until ConfirmOrder.
func (s *Service) CreateOrder(ctx context.Context, telegramID int64, method domain.DeliveryMethod) (domain.OrderSummary, error) {
	if !method.Valid() {
		return domain.OrderSummary{}, &domain.Error{Kind: domain.CodeInvalidDelivery, Msg: "unknown delivery method " + string(method)}
	}
	c, err := s.customer(ctx, telegramID)
	if err != nil {
		return domain.OrderSummary{}, err
	}
	cart, err := s.store.CartByCustomer(ctx, c.ID)
	if errors.Is(err, storage.ErrNotFound) {
		return domain.OrderSummary{}, domain.ErrCartEmpty
	}
	if err != nil {
		return domain.OrderSummary{}, wrap("get cart", "cart", err)
	}
	lines, err := s.store.CartLines(ctx, cart.ID)
	if err != nil {
		return domain.OrderSummary{}, wrap("read cart", "cart", err)
	}
	if len(lines) == 0 {
		return domain.OrderSummary{}, domain.ErrCartEmpty
	}

	draft := domain.Order{
		Number:         s.numbers.Next(),
		CustomerID:     c.ID,
		DeliveryMethod: method,
		Status:         domain.StatusCreated,
		Address:        c.Address,
	}
	order, err := s.store.CreateOrder(ctx, draft, cart.ID)
	if errors.Is(err, storage.ErrDuplicate) {
		logger.Warn(ctx, compOrders, "order.number_clash", slog.String("order_number", draft.Number))
		draft.Number = s.numbers.Fallback()
		order, err = s.store.CreateOrder(ctx, draft, cart.ID)
	}
	if errors.Is(err, storage.ErrDuplicate) {
		return domain.OrderSummary{}, &domain.Error{Kind: domain.CodeDuplicateNumber, Msg: "order number already exists", Err: err}
	}
	if err != nil {
		return domain.OrderSummary{}, fmt.Errorf("create order: %w", err)
	}

	view := domain.NewCartView(lines)
	s.metrics.Order("created")
	s.publish(ctx, events.NewOrderEvent(events.OrderCreated, order, s.now()))
	logger.Info(ctx, compOrders, "order.create",
		slog.Int64("order_id", order.ID),
		slog.String("order_number", order.Number),
		slog.String("delivery", string(order.DeliveryMethod)),
		slog.Int("items", view.TotalItems),
	)
	return domain.OrderSummary{Order: order, TotalItems: view.TotalItems, TotalPrice: view.TotalPrice}, nil
}

// ConfirmOrder confirms the caller's most recent order and empties the cart in one step.
func (s *Service) ConfirmOrder(ctx context.Context, telegramID int64) (domain.Order, error) {
	c, err := s.customer(ctx, telegramID)
	if err != nil {
		return domain.Order{}, err
	}
	order, err := s.store.LatestOrder(ctx, c.ID)
	if err != nil {
		return domain.Order{}, wrap("latest order", "order", err)
	}
	if !order.Status.Cancellable() {
		return domain.Order{}, errNotConfirmable
	}
	var cartID int64
	cart, err := s.store.CartByCustomer(ctx, c.ID)
	switch {
	case err == nil:
		cartID = cart.ID
	case !errors.Is(err, storage.ErrNotFound):
		return domain.Order{}, wrap("get cart", "cart", err)
	}
	if err := s.store.ConfirmOrder(ctx, order.ID, cartID, domain.StatusPending); err != nil {
		return domain.Order{}, wrap("confirm order", "order", err)
	}
	prev := order.Status
	order.Confirmed = true
	order.Status = domain.StatusPending

	s.metrics.Order("confirmed")
	e := events.NewOrderEvent(events.OrderConfirmed, order, s.now())
	e.PreviousStatus = prev
	s.publish(ctx, e)
	logger.Info(ctx, compOrders, "order.confirm",
		slog.Int64("order_id", order.ID),
		slog.String("order_number", order.Number),
	)
	return order, nil
}

// CancelOrder cancels orderID on behalf of its owner.
func (s *Service) CancelOrder(ctx context.Context, telegramID, orderID int64) (domain.Order, error) {
	c, err := s.customer(ctx, telegramID)
	if err != nil {
		return domain.Order{}, err
	}
	order, err := s.store.OrderByID(ctx, orderID)
	if err != nil {
		return domain.Order{}, wrap("get order", "order", err)
	}
	return s.cancel(ctx, c, order)
}

// CancelLatest cancels the caller's most recent order.
func (s *Service) CancelLatest(ctx context.Context, telegramID int64) (domain.Order, error) {
	c, err := s.customer(ctx, telegramID)
	if err != nil {
		return domain.Order{}, err
	}
	order, err := s.store.LatestOrder(ctx, c.ID)
	if err != nil {
		return domain.Order{}, wrap("latest order", "order", err)
	}
	return s.cancel(ctx, c, order)
}

func (s *Service) cancel(ctx context.Context, c domain.Customer, order domain.Order) (domain.Order, error) {
	if order.CustomerID != c.ID {
		logger.Warn(ctx, compOrders, "order.cancel",
			slog.String("status", "fail"),
			slog.Int64("order_id", order.ID),
			slog.String("err_code", string(domain.CodeForbidden)),
		)
		return domain.Order{}, domain.ErrForbidden
	}
	if !order.Status.Cancellable() {
		return domain.Order{}, domain.ErrInvalidTransition
	}
	if err := s.store.SetOrderStatus(ctx, order.ID, domain.StatusCancelled); err != nil {
		return domain.Order{}, wrap("cancel order", "order", err)
	}
	prev := order.Status
	order.Status = domain.StatusCancelled

	s.metrics.Order("cancelled")
	e := events.NewOrderEvent(events.OrderCancelled, order, s.now())
	e.PreviousStatus = prev
	s.publish(ctx, e)
	logger.Info(ctx, compOrders, "order.cancel",
		slog.String("status", "ok"),
		slog.Int64("order_id", order.ID),
		slog.String("order_number", order.Number),
	)
	return order, nil
}

// ListOrders returns the caller's orders newest first with totals.
func (s *Service) ListOrders(ctx context.Context, telegramID int64) ([]domain.OrderSummary, error) {
	c, err := s.customer(ctx, telegramID)
	if err != nil {
		return nil, err
	}
	orders, err := s.store.ListCustomerOrders(ctx, c.ID)
	return orders, wrap("list orders", "order", err)
}
