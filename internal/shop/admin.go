package shop

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"

	"github.com/m3rciful/storebot/core/logger"
	"github.com/m3rciful/storebot/internal/domain"
	"github.com/m3rciful/storebot/internal/events"
	"github.com/m3rciful/storebot/internal/storage"
)

// IsManager reports whether telegramID belongs to an active staff member.
func (s *Service) IsManager(ctx context.Context, telegramID int64) (bool, error) {
	m, err := s.store.ManagerByTelegramID(ctx, telegramID)
	if errors.Is(err, storage.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("lookup manager: %w", err)
	}
	return m.IsStaff, nil
}

// OrdersByStatus lists orders currently in status.
func (s *Service) OrdersByStatus(ctx context.Context, status domain.OrderStatus) ([]domain.OrderSummary, error) {
	if !status.Valid() {
		return nil, &domain.Error{Kind: domain.CodeInvalidStatus, Msg: "unknown order status " + string(status)}
	}
	orders, err := s.store.ListOrdersByStatus(ctx, status)
	return orders, wrap("list orders", "order", err)
}

// OrderDetail returns an order with its customer and lines.
func (s *Service) OrderDetail(ctx context.Context, orderID int64) (domain.OrderDetail, error) {
	summary, err := s.store.OrderSummary(ctx, orderID)
	if err != nil {
		return domain.OrderDetail{}, wrap("get order", "order", err)
	}
	c, err := s.store.CustomerByID(ctx, summary.CustomerID)
	if err != nil {
		return domain.OrderDetail{}, wrap("get customer", "customer", err)
	}
	lines, err := s.store.OrderLines(ctx, orderID)
	if err != nil {
		return domain.OrderDetail{}, wrap("order lines", "order", err)
	}
	return domain.OrderDetail{Summary: summary, Customer: c, Lines: lines}, nil
}

// SetOrderStatus moves an order to any canonical status.
func (s *Service) SetOrderStatus(ctx context.Context, orderID int64, status domain.OrderStatus) (domain.Order, error) {
	if !status.Valid() {
		return domain.Order{}, &domain.Error{Kind: domain.CodeInvalidStatus, Msg: "unknown order status " + string(status)}
	}
	order, err := s.store.OrderByID(ctx, orderID)
	if err != nil {
		return domain.Order{}, wrap("get order", "order", err)
	}
	if order.Status == status {
		return order, nil
	}
	if err := s.store.SetOrderStatus(ctx, orderID, status); err != nil {
		return domain.Order{}, wrap("set status", "order", err)
	}
	prev := order.Status
	order.Status = status

	s.metrics.Transition(string(status))
	e := events.NewOrderEvent(events.OrderStatusChanged, order, s.now())
	e.PreviousStatus = prev
	s.publish(ctx, e)
	logger.Info(ctx, compAdmin, "order.status",
		slog.Int64("order_id", order.ID),
		slog.String("from", string(prev)),
		slog.String("to", string(status)),
	)
	return order, nil
}

// ListInventory returns every product with its stock.
func (s *Service) ListInventory(ctx context.Context) ([]domain.Product, error) {
	products, err := s.store.ListProducts(ctx, 0)
	return products, wrap("list inventory", "product", err)
}

// MaxStock is the largest value the stock column holds.
const MaxStock = math.MaxInt32

// SetStock overwrites the stock of productID.
func (s *Service) SetStock(ctx context.Context, productID int64, stock int) (domain.Product, error) {
	if stock < 0 || stock > MaxStock {
		return domain.Product{}, domain.ErrInvalidStock
	}
	if err := s.store.SetProductStock(ctx, productID, stock); err != nil {
		return domain.Product{}, wrap("set stock", "product", err)
	}
	p, err := s.store.ProductByID(ctx, productID)
	if err != nil {
		return domain.Product{}, wrap("get product", "product", err)
	}
	logger.Info(ctx, compAdmin, "inventory.stock",
		slog.Int64("product_id", productID),
		slog.Int("stock", stock),
	)
	return p, nil
}
