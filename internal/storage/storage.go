// Package storage defines the persistence boundary of the storefront.
// Lookups report absence with ErrNotFound instead of zero values so callers
// decide explicitly how a missing row is surfaced.
package storage

import (
	"context"
	"errors"

	"github.com/m3rciful/storebot/internal/domain"
)

var (
	// ErrNotFound is returned when a lookup matches no row.
	ErrNotFound = errors.New("storage: not found")
	// ErrDuplicate is returned when a write violates a unique constraint.
	ErrDuplicate = errors.New("storage: duplicate")
)

// CustomerRepository persists customers.
type CustomerRepository interface {
	CustomerByTelegramID(ctx context.Context, telegramID int64) (domain.Customer, error)
	CustomerByID(ctx context.Context, id int64) (domain.Customer, error)
	// PhoneTaken reports whether phone belongs to a customer other than telegramID.
	PhoneTaken(ctx context.Context, phone string, telegramID int64) (bool, error)
	// UpsertCustomerPhone creates the customer on first contact or updates the phone of an existing one.
	UpsertCustomerPhone(ctx context.Context, c domain.Customer) (domain.Customer, bool, error)
	UpdateCustomerAddress(ctx context.Context, telegramID int64, address string) (domain.Customer, error)
}

// ManagerRepository persists staff members.
type ManagerRepository interface {
	ManagerByTelegramID(ctx context.Context, telegramID int64) (domain.Manager, error)
	UpsertManager(ctx context.Context, m domain.Manager) (domain.Manager, error)
}

// CatalogRepository persists categories and products.
type CatalogRepository interface {
	ListCategories(ctx context.Context) ([]domain.Category, error)
	CategoryByID(ctx context.Context, id int64) (domain.Category, error)
	// ListProducts returns products of a category, or all products when categoryID is zero.
	ListProducts(ctx context.Context, categoryID int64) ([]domain.Product, error)
	ProductByID(ctx context.Context, id int64) (domain.Product, error)
	SearchProducts(ctx context.Context, query string, limit int) ([]domain.Product, error)
	SetProductStock(ctx context.Context, id int64, stock int) error
	UpsertCategory(ctx context.Context, c domain.Category) (domain.Category, error)
	UpsertProduct(ctx context.Context, p domain.Product) (domain.Product, error)
}

// CartRepository persists carts and their lines.
type CartRepository interface {
	CartByCustomer(ctx context.Context, customerID int64) (domain.Cart, error)
	GetOrCreateCart(ctx context.Context, customerID int64) (domain.Cart, error)
	// IncrementCartItem adds one unit of product, creating the line when absent.
	IncrementCartItem(ctx context.Context, cartID, productID int64) (domain.CartItem, bool, error)
	SetCartItemQuantity(ctx context.Context, cartID, productID int64, quantity int) error
	DeleteCartItem(ctx context.Context, cartID, productID int64) error
	ClearCart(ctx context.Context, cartID int64) error
	CartLines(ctx context.Context, cartID int64) ([]domain.Line, error)
}

// OrderRepository persists orders and their items.
type OrderRepository interface {
	// CreateOrder inserts the order and copies the cart lines of cartID into order items atomically.
	// A clashing order number yields ErrDuplicate.
	CreateOrder(ctx context.Context, o domain.Order, cartID int64) (domain.Order, error)
	OrderByID(ctx context.Context, id int64) (domain.Order, error)
	LatestOrder(ctx context.Context, customerID int64) (domain.Order, error)
	// ConfirmOrder marks the order confirmed with status and deletes the lines of cartID atomically.
	ConfirmOrder(ctx context.Context, orderID, cartID int64, status domain.OrderStatus) error
	SetOrderStatus(ctx context.Context, orderID int64, status domain.OrderStatus) error
	ListCustomerOrders(ctx context.Context, customerID int64) ([]domain.OrderSummary, error)
	ListOrdersByStatus(ctx context.Context, status domain.OrderStatus) ([]domain.OrderSummary, error)
	OrderSummary(ctx context.Context, orderID int64) (domain.OrderSummary, error)
	OrderLines(ctx context.Context, orderID int64) ([]domain.Line, error)
}

// Store aggregates all repositories.
type Store interface {
	CustomerRepository
	ManagerRepository
	CatalogRepository
	CartRepository
	OrderRepository
	Ping(ctx context.Context) error
}
