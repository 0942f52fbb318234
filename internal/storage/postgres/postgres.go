// Package postgres implements storage.Store on PostgreSQL through sqlx.
package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/m3rciful/storebot/internal/domain"
	"github.com/m3rciful/storebot/internal/storage"
)

const (
	defaultTimeout  = 5 * time.Second
	uniqueViolation = "23505"
)

// Store is the PostgreSQL storage.Store.
type Store struct {
	db      *sqlx.DB
	timeout time.Duration
}

var _ storage.Store = (*Store)(nil)

// New wraps an open connection pool.
func New(db *sqlx.DB) *Store {
	return &Store{db: db, timeout: defaultTimeout}
}

func (s *Store) ctx(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, s.timeout)
}

// mapErr translates driver errors into storage sentinels.
func mapErr(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return storage.ErrNotFound
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
		return fmt.Errorf("%w: %s", storage.ErrDuplicate, pqErr.Constraint)
	}
	return err
}

func affected(res sql.Result, err error) error {
	if err != nil {
		return mapErr(err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return storage.ErrNotFound
	}
	return nil
}

// withTx runs fn inside a transaction and commits when fn succeeds.
func (s *Store) withTx(ctx context.Context, fn func(tx *sqlx.Tx) error) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()
	if err := fn(tx); err != nil {
		return err
	}
	return tx.Commit()
}

func (s *Store) Ping(ctx context.Context) error {
	ctx, cancel := s.ctx(ctx)
	defer cancel()
	return s.db.PingContext(ctx)
}

// Customers

const customerColumns = `id, first_name, last_name, COALESCE(phone, '') AS phone, address, telegram_id, created_at`

func (s *Store) CustomerByTelegramID(ctx context.Context, telegramID int64) (domain.Customer, error) {
	ctx, cancel := s.ctx(ctx)
	defer cancel()
	var c domain.Customer
	err := s.db.GetContext(ctx, &c, `SELECT `+customerColumns+` FROM customers WHERE telegram_id = $1`, telegramID)
	return c, mapErr(err)
}

func (s *Store) CustomerByID(ctx context.Context, id int64) (domain.Customer, error) {
	ctx, cancel := s.ctx(ctx)
	defer cancel()
	var c domain.Customer
	err := s.db.GetContext(ctx, &c, `SELECT `+customerColumns+` FROM customers WHERE id = $1`, id)
	return c, mapErr(err)
}

func (s *Store) PhoneTaken(ctx context.Context, phone string, telegramID int64) (bool, error) {
	ctx, cancel := s.ctx(ctx)
	defer cancel()
	var taken bool
	err := s.db.GetContext(ctx, &taken,
		`SELECT EXISTS (SELECT 1 FROM customers WHERE phone = $1 AND telegram_id <> $2)`, phone, telegramID)
	return taken, mapErr(err)
}

func (s *Store) UpsertCustomerPhone(ctx context.Context, c domain.Customer) (domain.Customer, bool, error) {
	ctx, cancel := s.ctx(ctx)
	defer cancel()
	var out struct {
		domain.Customer
		Inserted bool `db:"inserted"`
	}
	err := s.db.GetContext(ctx, &out, `
		INSERT INTO customers (first_name, last_name, phone, telegram_id)
		VALUES ($1, $2, NULLIF($3, ''), $4)
		ON CONFLICT (telegram_id) DO UPDATE SET phone = EXCLUDED.phone
		RETURNING `+customerColumns+`, (xmax = 0) AS inserted`,
		c.FirstName, c.LastName, c.Phone, c.TelegramID)
	if err != nil {
		return domain.Customer{}, false, mapErr(err)
	}
	return out.Customer, out.Inserted, nil
}

func (s *Store) UpdateCustomerAddress(ctx context.Context, telegramID int64, address string) (domain.Customer, error) {
	ctx, cancel := s.ctx(ctx)
	defer cancel()
	var c domain.Customer
	err := s.db.GetContext(ctx, &c,
		`UPDATE customers SET address = $2 WHERE telegram_id = $1 RETURNING `+customerColumns, telegramID, address)
	return c, mapErr(err)
}

// Managers

func (s *Store) ManagerByTelegramID(ctx context.Context, telegramID int64) (domain.Manager, error) {
	ctx, cancel := s.ctx(ctx)
	defer cancel()
	var m domain.Manager
	err := s.db.GetContext(ctx, &m, `
		SELECT id, first_name, last_name, phone, is_staff, telegram_id
		FROM managers WHERE telegram_id = $1`, telegramID)
	return m, mapErr(err)
}

func (s *Store) UpsertManager(ctx context.Context, m domain.Manager) (domain.Manager, error) {
	ctx, cancel := s.ctx(ctx)
	defer cancel()
	var out domain.Manager
	err := s.db.GetContext(ctx, &out, `
		INSERT INTO managers (first_name, last_name, phone, is_staff, telegram_id)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (telegram_id) DO UPDATE SET
			first_name = EXCLUDED.first_name,
			last_name = EXCLUDED.last_name,
			phone = EXCLUDED.phone,
			is_staff = EXCLUDED.is_staff
		RETURNING id, first_name, last_name, phone, is_staff, telegram_id`,
		m.FirstName, m.LastName, m.Phone, m.IsStaff, m.TelegramID)
	return out, mapErr(err)
}

// Catalog

const productColumns = `id, title, description, price, category_id, image_ref, stock`

func (s *Store) ListCategories(ctx context.Context) ([]domain.Category, error) {
	ctx, cancel := s.ctx(ctx)
	defer cancel()
	var out []domain.Category
	err := s.db.SelectContext(ctx, &out, `SELECT id, title, description FROM categories ORDER BY id`)
	return out, mapErr(err)
}

func (s *Store) CategoryByID(ctx context.Context, id int64) (domain.Category, error) {
	ctx, cancel := s.ctx(ctx)
	defer cancel()
	var c domain.Category
	err := s.db.GetContext(ctx, &c, `SELECT id, title, description FROM categories WHERE id = $1`, id)
	return c, mapErr(err)
}

func (s *Store) ListProducts(ctx context.Context, categoryID int64) ([]domain.Product, error) {
	ctx, cancel := s.ctx(ctx)
	defer cancel()
	var out []domain.Product
	err := s.db.SelectContext(ctx, &out, `
		SELECT `+productColumns+` FROM products
		WHERE $1 = 0 OR category_id = $1
		ORDER BY id`, categoryID)
	return out, mapErr(err)
}

func (s *Store) ProductByID(ctx context.Context, id int64) (domain.Product, error) {
	ctx, cancel := s.ctx(ctx)
	defer cancel()
	var p domain.Product
	err := s.db.GetContext(ctx, &p, `SELECT `+productColumns+` FROM products WHERE id = $1`, id)
	return p, mapErr(err)
}

func (s *Store) SearchProducts(ctx context.Context, query string, limit int) ([]domain.Product, error) {
	ctx, cancel := s.ctx(ctx)
	defer cancel()
	if limit <= 0 {
		limit = 50
	}
	var out []domain.Product
	err := s.db.SelectContext(ctx, &out, `
		SELECT `+productColumns+` FROM products
		WHERE title ILIKE $1 ESCAPE '\'
		ORDER BY id
		LIMIT $2`, containsPattern(query), limit)
	return out, mapErr(err)
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// containsPattern builds an ILIKE pattern matching query literally anywhere in the value.
func containsPattern(query string) string {
	return "%" + likeEscaper.Replace(strings.TrimSpace(query)) + "%"
}

func (s *Store) SetProductStock(ctx context.Context, id int64, stock int) error {
	ctx, cancel := s.ctx(ctx)
	defer cancel()
	return affected(s.db.ExecContext(ctx, `UPDATE products SET stock = $2 WHERE id = $1`, id, stock))
}

func (s *Store) UpsertCategory(ctx context.Context, c domain.Category) (domain.Category, error) {
	ctx, cancel := s.ctx(ctx)
	defer cancel()
	var out domain.Category
	err := s.db.GetContext(ctx, &out, `
		INSERT INTO categories (title, description) VALUES ($1, $2)
		ON CONFLICT (title) DO UPDATE SET description = EXCLUDED.description
		RETURNING id, title, description`, c.Title, c.Description)
	return out, mapErr(err)
}

func (s *Store) UpsertProduct(ctx context.Context, p domain.Product) (domain.Product, error) {
	ctx, cancel := s.ctx(ctx)
	defer cancel()
	var out domain.Product
	err := s.db.GetContext(ctx, &out, `
		INSERT INTO products (title, description, price, category_id, image_ref, stock)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (category_id, title) DO UPDATE SET
			description = EXCLUDED.description,
			price = EXCLUDED.price,
			image_ref = EXCLUDED.image_ref,
			stock = EXCLUDED.stock
		RETURNING `+productColumns,
		p.Title, p.Description, p.Price, p.CategoryID, p.ImageRef, p.Stock)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23503" {
			return domain.Product{}, storage.ErrNotFound
		}
	}
	return out, mapErr(err)
}

// Carts

func (s *Store) CartByCustomer(ctx context.Context, customerID int64) (domain.Cart, error) {
	ctx, cancel := s.ctx(ctx)
	defer cancel()
	var c domain.Cart
	err := s.db.GetContext(ctx, &c, `SELECT id, customer_id FROM carts WHERE customer_id = $1`, customerID)
	return c, mapErr(err)
}

func (s *Store) GetOrCreateCart(ctx context.Context, customerID int64) (domain.Cart, error) {
	ctx, cancel := s.ctx(ctx)
	defer cancel()
	var c domain.Cart
	// The no-op update makes RETURNING yield the existing row on conflict.
	err := s.db.GetContext(ctx, &c, `
		INSERT INTO carts (customer_id) VALUES ($1)
		ON CONFLICT (customer_id) DO UPDATE SET customer_id = EXCLUDED.customer_id
		RETURNING id, customer_id`, customerID)
	return c, mapErr(err)
}

func (s *Store) IncrementCartItem(ctx context.Context, cartID, productID int64) (domain.CartItem, bool, error) {
	ctx, cancel := s.ctx(ctx)
	defer cancel()
	var out struct {
		domain.CartItem
		Inserted bool `db:"inserted"`
	}
	err := s.db.GetContext(ctx, &out, `
		INSERT INTO cart_items (cart_id, product_id, quantity)
		SELECT $1, p.id, 1 FROM products p WHERE p.id = $2
		ON CONFLICT (cart_id, product_id) DO UPDATE SET quantity = cart_items.quantity + 1
		RETURNING id, cart_id, product_id, quantity, added_at, (xmax = 0) AS inserted`,
		cartID, productID)
	if err != nil {
		return domain.CartItem{}, false, mapErr(err)
	}
	return out.CartItem, out.Inserted, nil
}

func (s *Store) SetCartItemQuantity(ctx context.Context, cartID, productID int64, quantity int) error {
	ctx, cancel := s.ctx(ctx)
	defer cancel()
	return affected(s.db.ExecContext(ctx,
		`UPDATE cart_items SET quantity = $3 WHERE cart_id = $1 AND product_id = $2`, cartID, productID, quantity))
}

func (s *Store) DeleteCartItem(ctx context.Context, cartID, productID int64) error {
	ctx, cancel := s.ctx(ctx)
	defer cancel()
	return affected(s.db.ExecContext(ctx,
		`DELETE FROM cart_items WHERE cart_id = $1 AND product_id = $2`, cartID, productID))
}

func (s *Store) ClearCart(ctx context.Context, cartID int64) error {
	ctx, cancel := s.ctx(ctx)
	defer cancel()
	_, err := s.db.ExecContext(ctx, `DELETE FROM cart_items WHERE cart_id = $1`, cartID)
	return mapErr(err)
}

func (s *Store) CartLines(ctx context.Context, cartID int64) ([]domain.Line, error) {
	ctx, cancel := s.ctx(ctx)
	defer cancel()
	var out []domain.Line
	err := s.db.SelectContext(ctx, &out, `
		SELECT ci.product_id, p.title, p.price, ci.quantity
		FROM cart_items ci
		JOIN products p ON p.id = ci.product_id
		WHERE ci.cart_id = $1
		ORDER BY ci.id`, cartID)
	return out, mapErr(err)
}

// Orders

const orderColumns = `o.id, o.order_number, o.customer_id, o.delivery_method, o.is_confirmed, o.status, o.address, o.created_at`

const summaryQuery = `
	SELECT ` + orderColumns + `,
		COALESCE(SUM(oi.quantity), 0) AS total_items,
		COALESCE(SUM(oi.quantity * p.price), 0) AS total_price
	FROM orders o
	LEFT JOIN order_items oi ON oi.order_id = o.id
	LEFT JOIN products p ON p.id = oi.product_id`

func (s *Store) CreateOrder(ctx context.Context, o domain.Order, cartID int64) (domain.Order, error) {
	ctx, cancel := s.ctx(ctx)
	defer cancel()
	var out domain.Order
	err := s.withTx(ctx, func(tx *sqlx.Tx) error {
		if err := tx.GetContext(ctx, &out, `
			INSERT INTO orders (order_number, customer_id, delivery_method, is_confirmed, status, address)
			VALUES ($1, $2, $3, $4, $5, $6)
			RETURNING id, order_number, customer_id, delivery_method, is_confirmed, status, address, created_at`,
			o.Number, o.CustomerID, o.DeliveryMethod, o.Confirmed, o.Status, o.Address); err != nil {
			return mapErr(err)
		}
		_, err := tx.ExecContext(ctx, `
			INSERT INTO order_items (order_id, product_id, quantity)
			SELECT $1, product_id, quantity FROM cart_items WHERE cart_id = $2`,
			out.ID, cartID)
		return mapErr(err)
	})
	if err != nil {
		return domain.Order{}, err
	}
	return out, nil
}

func (s *Store) OrderByID(ctx context.Context, id int64) (domain.Order, error) {
	ctx, cancel := s.ctx(ctx)
	defer cancel()
	var o domain.Order
	err := s.db.GetContext(ctx, &o, `SELECT `+orderColumns+` FROM orders o WHERE o.id = $1`, id)
	return o, mapErr(err)
}

func (s *Store) LatestOrder(ctx context.Context, customerID int64) (domain.Order, error) {
	ctx, cancel := s.ctx(ctx)
	defer cancel()
	var o domain.Order
	err := s.db.GetContext(ctx, &o, `
		SELECT `+orderColumns+` FROM orders o
		WHERE o.customer_id = $1
		ORDER BY o.created_at DESC, o.id DESC
		LIMIT 1`, customerID)
	return o, mapErr(err)
}

func (s *Store) ConfirmOrder(ctx context.Context, orderID, cartID int64, status domain.OrderStatus) error {
	ctx, cancel := s.ctx(ctx)
	defer cancel()
	return s.withTx(ctx, func(tx *sqlx.Tx) error {
		if err := affected(tx.ExecContext(ctx,
			`UPDATE orders SET is_confirmed = TRUE, status = $2 WHERE id = $1`, orderID, status)); err != nil {
			return err
		}
		_, err := tx.ExecContext(ctx, `DELETE FROM cart_items WHERE cart_id = $1`, cartID)
		return mapErr(err)
	})
}

func (s *Store) SetOrderStatus(ctx context.Context, orderID int64, status domain.OrderStatus) error {
	ctx, cancel := s.ctx(ctx)
	defer cancel()
	return affected(s.db.ExecContext(ctx, `UPDATE orders SET status = $2 WHERE id = $1`, orderID, status))
}

func (s *Store) ListCustomerOrders(ctx context.Context, customerID int64) ([]domain.OrderSummary, error) {
	ctx, cancel := s.ctx(ctx)
	defer cancel()
	var out []domain.OrderSummary
	err := s.db.SelectContext(ctx, &out, summaryQuery+`
		WHERE o.customer_id = $1
		GROUP BY o.id
		ORDER BY o.created_at DESC, o.id DESC`, customerID)
	return out, mapErr(err)
}

func (s *Store) ListOrdersByStatus(ctx context.Context, status domain.OrderStatus) ([]domain.OrderSummary, error) {
	ctx, cancel := s.ctx(ctx)
	defer cancel()
	var out []domain.OrderSummary
	err := s.db.SelectContext(ctx, &out, summaryQuery+`
		WHERE o.status = $1
		GROUP BY o.id
		ORDER BY o.created_at DESC, o.id DESC`, status)
	return out, mapErr(err)
}

func (s *Store) OrderSummary(ctx context.Context, orderID int64) (domain.OrderSummary, error) {
	ctx, cancel := s.ctx(ctx)
	defer cancel()
	var out domain.OrderSummary
	err := s.db.GetContext(ctx, &out, summaryQuery+`
		WHERE o.id = $1
		GROUP BY o.id`, orderID)
	return out, mapErr(err)
}

func (s *Store) OrderLines(ctx context.Context, orderID int64) ([]domain.Line, error) {
	ctx, cancel := s.ctx(ctx)
	defer cancel()
	var out []domain.Line
	err := s.db.SelectContext(ctx, &out, `
		SELECT oi.product_id, p.title, p.price, oi.quantity
		FROM order_items oi
		JOIN products p ON p.id = oi.product_id
		WHERE oi.order_id = $1
		ORDER BY oi.id`, orderID)
	return out, mapErr(err)
}
