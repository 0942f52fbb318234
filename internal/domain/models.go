// Package domain holds the storefront entities shared by storage, services and the bot.
package domain

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Customer is an end user placing orders. Phone is empty until registration provides it.
type Customer struct {
	ID         int64     `db:"id" json:"id"`
	FirstName  string    `db:"first_name" json:"first_name"`
	LastName   string    `db:"last_name" json:"last_name"`
	Phone      string    `db:"phone" json:"phone"`
	Address    string    `db:"address" json:"address"`
	TelegramID int64     `db:"telegram_id" json:"telegram_id"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
}

// FullName joins first and last name skipping empty parts.
func (c Customer) FullName() string {
	return strings.TrimSpace(strings.TrimSpace(c.FirstName) + " " + strings.TrimSpace(c.LastName))
}

// Registered reports whether both phone and address were provided.
func (c Customer) Registered() bool {
	return c.Phone != "" && c.Address != ""
}

// Manager is a staff member allowed to administer orders and inventory.
type Manager struct {
	ID         int64  `db:"id" json:"id"`
	FirstName  string `db:"first_name" json:"first_name"`
	LastName   string `db:"last_name" json:"last_name"`
	Phone      string `db:"phone" json:"phone"`
	IsStaff    bool   `db:"is_staff" json:"is_staff"`
	TelegramID int64  `db:"telegram_id" json:"telegram_id"`
}

// Category groups products.
type Category struct {
	ID          int64  `db:"id" json:"id"`
	Title       string `db:"title" json:"title"`
	Description string `db:"description" json:"description,omitempty"`
}

// Product is a catalog entry. ImageRef is a URL or Telegram file id, never file content.
type Product struct {
	ID          int64           `db:"id" json:"id"`
	Title       string          `db:"title" json:"title"`
	Description *string         `db:"description" json:"description,omitempty"`
	Price       decimal.Decimal `db:"price" json:"price"`
	CategoryID  int64           `db:"category_id" json:"category_id"`
	ImageRef    string          `db:"image_ref" json:"image_ref,omitempty"`
	Stock       int             `db:"stock" json:"stock"`
}

// Cart is the single active pre-checkout basket of a customer.
type Cart struct {
	ID         int64 `db:"id"`
	CustomerID int64 `db:"customer_id"`
}

// CartItem is a (cart, product) line. Quantity is always >= 1.
type CartItem struct {
	ID        int64     `db:"id"`
	CartID    int64     `db:"cart_id"`
	ProductID int64     `db:"product_id"`
	Quantity  int       `db:"quantity"`
	AddedAt   time.Time `db:"added_at"`
}

// Line is a product/quantity pairing joined with product data, used for carts and orders alike.
type Line struct {
	ProductID int64           `db:"product_id" json:"product_id"`
	Title     string          `db:"title" json:"title"`
	Price     decimal.Decimal `db:"price" json:"price"`
	Quantity  int             `db:"quantity" json:"quantity"`
}

// Subtotal is price multiplied by quantity.
func (l Line) Subtotal() decimal.Decimal {
	return l.Price.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

// CartView is a cart read model with totals derived from its lines.
type CartView struct {
	Lines      []Line
	TotalItems int
	TotalPrice decimal.Decimal
}

// Empty reports whether the cart has no lines.
func (v CartView) Empty() bool { return len(v.Lines) == 0 }

// NewCartView sums quantities and price*quantity across lines.
func NewCartView(lines []Line) CartView {
	view := CartView{Lines: lines, TotalPrice: decimal.Zero}
	for _, l := range lines {
		view.TotalItems += l.Quantity
		view.TotalPrice = view.TotalPrice.Add(l.Subtotal())
	}
	return view
}

// Order is a snapshot of a cart plus delivery and status metadata.
type Order struct {
	ID             int64          `db:"id" json:"id"`
	Number         string         `db:"order_number" json:"order_number"`
	CustomerID     int64          `db:"customer_id" json:"customer_id"`
	DeliveryMethod DeliveryMethod `db:"delivery_method" json:"delivery_method"`
	Confirmed      bool           `db:"is_confirmed" json:"is_confirmed"`
	Status         OrderStatus    `db:"status" json:"status"`
	Address        string         `db:"address" json:"address"`
	CreatedAt      time.Time      `db:"created_at" json:"created_at"`
}

// OrderItem is an immutable (order, product) line.
type OrderItem struct {
	ID        int64     `db:"id"`
	OrderID   int64     `db:"order_id"`
	ProductID int64     `db:"product_id"`
	Quantity  int       `db:"quantity"`
	AddedAt   time.Time `db:"added_at"`
}

// OrderSummary annotates an order with derived totals.
type OrderSummary struct {
	Order
	TotalItems int             `db:"total_items" json:"total_items"`
	TotalPrice decimal.Decimal `db:"total_price" json:"total_price"`
}

// OrderDetail is the manager view of a single order.
type OrderDetail struct {
	Summary  OrderSummary
	Customer Customer
	Lines    []Line
}
