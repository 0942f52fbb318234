package shop

import (
	"context"
	"errors"
	"log/slog"

	"github.com/m3rciful/storebot/core/logger"
	"github.com/m3rciful/storebot/internal/domain"
	"github.com/m3rciful/storebot/internal/storage"
)

// AddResult describes the cart line after an add.
type AddResult struct {
	Product  domain.Product
	Quantity int
	Created  bool
}

// AddItem puts one unit of productID into the caller's cart, creating the cart or line when needed.
func (s *Service) AddItem(ctx context.Context, telegramID, productID int64) (AddResult, error) {
	c, err := s.customer(ctx, telegramID)
	if err != nil {
		return AddResult{}, err
	}
	p, err := s.store.ProductByID(ctx, productID)
	if err != nil {
		return AddResult{}, wrap("get product", "product", err)
	}
	cart, err := s.store.GetOrCreateCart(ctx, c.ID)
	if err != nil {
		return AddResult{}, wrap("get cart", "cart", err)
	}
	item, created, err := s.store.IncrementCartItem(ctx, cart.ID, p.ID)
	if err != nil {
		return AddResult{}, wrap("add item", "product", err)
	}
	s.metrics.CartAdd()
	logger.Info(ctx, compCart, "cart.add",
		slog.Int64("cart_id", cart.ID),
		slog.Int64("product_id", p.ID),
		slog.Int("qty", item.Quantity),
		slog.Bool("created", created),
	)
	return AddResult{Product: p, Quantity: item.Quantity, Created: created}, nil
}

// cartLine resolves the customer, product and cart backing a line mutation.
func (s *Service) cartLine(ctx context.Context, telegramID, productID int64) (domain.Cart, domain.Product, error) {
	c, err := s.customer(ctx, telegramID)
	if err != nil {
		return domain.Cart{}, domain.Product{}, err
	}
	p, err := s.store.ProductByID(ctx, productID)
	if err != nil {
		return domain.Cart{}, domain.Product{}, wrap("get product", "product", err)
	}
	cart, err := s.store.CartByCustomer(ctx, c.ID)
	if err != nil {
		return domain.Cart{}, domain.Product{}, wrap("get cart", "cart", err)
	}
	return cart, p, nil
}

// RemoveItem deletes the productID line from the caller's cart.
func (s *Service) RemoveItem(ctx context.Context, telegramID, productID int64) (domain.Product, error) {
	cart, p, err := s.cartLine(ctx, telegramID, productID)
	if err != nil {
		return domain.Product{}, err
	}
	if err := s.store.DeleteCartItem(ctx, cart.ID, p.ID); err != nil {
		return domain.Product{}, wrap("remove item", "cart_item", err)
	}
	logger.Info(ctx, compCart, "cart.remove",
		slog.Int64("cart_id", cart.ID),
		slog.Int64("product_id", p.ID),
	)
	return p, nil
}

// MaxQuantity caps a single cart line.
const MaxQuantity = 999

// SetQuantity overwrites the quantity of an existing line. Quantities outside 1..MaxQuantity are rejected.
func (s *Service) SetQuantity(ctx context.Context, telegramID, productID int64, quantity int) (domain.Product, error) {
	if quantity <= 0 || quantity > MaxQuantity {
		return domain.Product{}, domain.ErrInvalidQuantity
	}
	cart, p, err := s.cartLine(ctx, telegramID, productID)
	if err != nil {
		return domain.Product{}, err
	}
	if err := s.store.SetCartItemQuantity(ctx, cart.ID, p.ID, quantity); err != nil {
		return domain.Product{}, wrap("set quantity", "cart_item", err)
	}
	logger.Info(ctx, compCart, "cart.quantity",
		slog.Int64("cart_id", cart.ID),
		slog.Int64("product_id", p.ID),
		slog.Int("qty", quantity),
	)
	return p, nil
}

// ReadCart returns the caller's lines and totals. A customer without a cart gets an empty view.
func (s *Service) ReadCart(ctx context.Context, telegramID int64) (domain.CartView, error) {
	c, err := s.customer(ctx, telegramID)
	if err != nil {
		return domain.CartView{}, err
	}
	cart, err := s.store.CartByCustomer(ctx, c.ID)
	if errors.Is(err, storage.ErrNotFound) {
		return domain.NewCartView(nil), nil
	}
	if err != nil {
		return domain.CartView{}, wrap("get cart", "cart", err)
	}
	lines, err := s.store.CartLines(ctx, cart.ID)
	if err != nil {
		return domain.CartView{}, wrap("read cart", "cart", err)
	}
	return domain.NewCartView(lines), nil
}

// ClearCart deletes every line of the caller's cart.
func (s *Service) ClearCart(ctx context.Context, telegramID int64) error {
	c, err := s.customer(ctx, telegramID)
	if err != nil {
		return err
	}
	cart, err := s.store.CartByCustomer(ctx, c.ID)
	if errors.Is(err, storage.ErrNotFound) {
		return nil
	}
	if err != nil {
		return wrap("get cart", "cart", err)
	}
	if err := s.store.ClearCart(ctx, cart.ID); err != nil {
		return wrap("clear cart", "cart", err)
	}
	logger.Info(ctx, compCart, "cart.clear", slog.Int64("cart_id", cart.ID))
	return nil
}
