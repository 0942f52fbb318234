// Package memory is an in-process storage.Store used by tests and local runs without PostgreSQL.
package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/m3rciful/storebot/internal/domain"
	"github.com/m3rciful/storebot/internal/storage"
)

type lineKey struct {
	owner   int64
	product int64
}

// Store keeps every table in maps guarded by a single mutex.
type Store struct {
	mu  sync.RWMutex
	now func() time.Time
	seq int64

	customers  map[int64]domain.Customer
	managers   map[int64]domain.Manager
	categories map[int64]domain.Category
	products   map[int64]domain.Product
	carts      map[int64]domain.Cart
	cartItems  map[lineKey]domain.CartItem
	orders     map[int64]domain.Order
	orderItems map[lineKey]domain.OrderItem
}

var _ storage.Store = (*Store)(nil)

// New returns an empty store.
func New() *Store {
	return &Store{
		now:        time.Now,
		customers:  make(map[int64]domain.Customer),
		managers:   make(map[int64]domain.Manager),
		categories: make(map[int64]domain.Category),
		products:   make(map[int64]domain.Product),
		carts:      make(map[int64]domain.Cart),
		cartItems:  make(map[lineKey]domain.CartItem),
		orders:     make(map[int64]domain.Order),
		orderItems: make(map[lineKey]domain.OrderItem),
	}
}

// SetClock overrides the timestamp source.
func (s *Store) SetClock(now func() time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.now = now
}

func (s *Store) nextID() int64 {
	s.seq++
	return s.seq
}

// Ping always succeeds.
func (s *Store) Ping(context.Context) error { return nil }

// Customers

func (s *Store) CustomerByTelegramID(_ context.Context, telegramID int64) (domain.Customer, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, c := range s.customers {
		if c.TelegramID == telegramID {
			return c, nil
		}
	}
	return domain.Customer{}, storage.ErrNotFound
}

func (s *Store) CustomerByID(_ context.Context, id int64) (domain.Customer, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.customers[id]
	if !ok {
		return domain.Customer{}, storage.ErrNotFound
	}
	return c, nil
}

func (s *Store) PhoneTaken(_ context.Context, phone string, telegramID int64) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, c := range s.customers {
		if c.Phone == phone && c.TelegramID != telegramID {
			return true, nil
		}
	}
	return false, nil
}

func (s *Store) UpsertCustomerPhone(_ context.Context, in domain.Customer) (domain.Customer, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, c := range s.customers {
		if c.Phone == in.Phone && c.TelegramID != in.TelegramID {
			return domain.Customer{}, false, storage.ErrDuplicate
		}
	}
	for id, c := range s.customers {
		if c.TelegramID == in.TelegramID {
			c.Phone = in.Phone
			s.customers[id] = c
			return c, false, nil
		}
	}
	in.ID = s.nextID()
	in.CreatedAt = s.now()
	s.customers[in.ID] = in
	return in, true, nil
}

func (s *Store) UpdateCustomerAddress(_ context.Context, telegramID int64, address string) (domain.Customer, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, c := range s.customers {
		if c.TelegramID == telegramID {
			c.Address = address
			s.customers[id] = c
			return c, nil
		}
	}
	return domain.Customer{}, storage.ErrNotFound
}

// Managers

func (s *Store) ManagerByTelegramID(_ context.Context, telegramID int64) (domain.Manager, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	m, ok := s.managers[telegramID]
	if !ok {
		return domain.Manager{}, storage.ErrNotFound
	}
	return m, nil
}

func (s *Store) UpsertManager(_ context.Context, m domain.Manager) (domain.Manager, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if prev, ok := s.managers[m.TelegramID]; ok {
		m.ID = prev.ID
	} else {
		m.ID = s.nextID()
	}
	s.managers[m.TelegramID] = m
	return m, nil
}

// Catalog

func (s *Store) ListCategories(context.Context) ([]domain.Category, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.Category, 0, len(s.categories))
	for _, c := range s.categories {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *Store) CategoryByID(_ context.Context, id int64) (domain.Category, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.categories[id]
	if !ok {
		return domain.Category{}, storage.ErrNotFound
	}
	return c, nil
}

func (s *Store) ListProducts(_ context.Context, categoryID int64) ([]domain.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []domain.Product
	for _, p := range s.products {
		if categoryID == 0 || p.CategoryID == categoryID {
			out = append(out, p)
		}
	}
	sortProducts(out)
	return out, nil
}

func (s *Store) ProductByID(_ context.Context, id int64) (domain.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.products[id]
	if !ok {
		return domain.Product{}, storage.ErrNotFound
	}
	return p, nil
}

func (s *Store) SearchProducts(_ context.Context, query string, limit int) ([]domain.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	q := strings.ToLower(strings.TrimSpace(query))
	var out []domain.Product
	for _, p := range s.products {
		if q == "" || strings.Contains(strings.ToLower(p.Title), q) {
			out = append(out, p)
		}
	}
	sortProducts(out)
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (s *Store) SetProductStock(_ context.Context, id int64, stock int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.products[id]
	if !ok {
		return storage.ErrNotFound
	}
	p.Stock = stock
	s.products[id] = p
	return nil
}

func (s *Store) UpsertCategory(_ context.Context, c domain.Category) (domain.Category, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, existing := range s.categories {
		if existing.Title == c.Title {
			c.ID = id
			s.categories[id] = c
			return c, nil
		}
	}
	c.ID = s.nextID()
	s.categories[c.ID] = c
	return c, nil
}

func (s *Store) UpsertProduct(_ context.Context, p domain.Product) (domain.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.categories[p.CategoryID]; !ok {
		return domain.Product{}, storage.ErrNotFound
	}
	for id, existing := range s.products {
		if existing.Title == p.Title && existing.CategoryID == p.CategoryID {
			p.ID = id
			s.products[id] = p
			return p, nil
		}
	}
	p.ID = s.nextID()
	s.products[p.ID] = p
	return p, nil
}

func sortProducts(ps []domain.Product) {
	sort.Slice(ps, func(i, j int) bool { return ps[i].ID < ps[j].ID })
}

// Carts

func (s *Store) CartByCustomer(_ context.Context, customerID int64) (domain.Cart, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.carts[customerID]
	if !ok {
		return domain.Cart{}, storage.ErrNotFound
	}
	return c, nil
}

func (s *Store) GetOrCreateCart(_ context.Context, customerID int64) (domain.Cart, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if c, ok := s.carts[customerID]; ok {
		return c, nil
	}
	c := domain.Cart{ID: s.nextID(), CustomerID: customerID}
	s.carts[customerID] = c
	return c, nil
}

func (s *Store) IncrementCartItem(_ context.Context, cartID, productID int64) (domain.CartItem, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.products[productID]; !ok {
		return domain.CartItem{}, false, storage.ErrNotFound
	}
	key := lineKey{owner: cartID, product: productID}
	if item, ok := s.cartItems[key]; ok {
		item.Quantity++
		s.cartItems[key] = item
		return item, false, nil
	}
	item := domain.CartItem{ID: s.nextID(), CartID: cartID, ProductID: productID, Quantity: 1, AddedAt: s.now()}
	s.cartItems[key] = item
	return item, true, nil
}

func (s *Store) SetCartItemQuantity(_ context.Context, cartID, productID int64, quantity int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := lineKey{owner: cartID, product: productID}
	item, ok := s.cartItems[key]
	if !ok {
		return storage.ErrNotFound
	}
	item.Quantity = quantity
	s.cartItems[key] = item
	return nil
}

func (s *Store) DeleteCartItem(_ context.Context, cartID, productID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := lineKey{owner: cartID, product: productID}
	if _, ok := s.cartItems[key]; !ok {
		return storage.ErrNotFound
	}
	delete(s.cartItems, key)
	return nil
}

func (s *Store) ClearCart(_ context.Context, cartID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.clearCartLocked(cartID)
	return nil
}

func (s *Store) clearCartLocked(cartID int64) {
	for key := range s.cartItems {
		if key.owner == cartID {
			delete(s.cartItems, key)
		}
	}
}

func (s *Store) CartLines(_ context.Context, cartID int64) ([]domain.Line, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	items := s.cartItemsLocked(cartID)
	lines := make([]domain.Line, 0, len(items))
	for _, item := range items {
		lines = append(lines, s.lineLocked(item.ProductID, item.Quantity))
	}
	return lines, nil
}

// cartItemsLocked returns the lines of cartID in insertion order.
func (s *Store) cartItemsLocked(cartID int64) []domain.CartItem {
	var items []domain.CartItem
	for key, item := range s.cartItems {
		if key.owner == cartID {
			items = append(items, item)
		}
	}
	sort.Slice(items, func(i, j int) bool { return items[i].ID < items[j].ID })
	return items
}

func (s *Store) lineLocked(productID int64, qty int) domain.Line {
	p := s.products[productID]
	return domain.Line{ProductID: productID, Title: p.Title, Price: p.Price, Quantity: qty}
}

// Orders

func (s *Store) CreateOrder(_ context.Context, o domain.Order, cartID int64) (domain.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.orders {
		if existing.Number == o.Number {
			return domain.Order{}, storage.ErrDuplicate
		}
	}
	o.ID = s.nextID()
	o.CreatedAt = s.now()
	s.orders[o.ID] = o
	for _, item := range s.cartItemsLocked(cartID) {
		s.orderItems[lineKey{owner: o.ID, product: item.ProductID}] = domain.OrderItem{
			ID:        s.nextID(),
			OrderID:   o.ID,
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
			AddedAt:   o.CreatedAt,
		}
	}
	return o, nil
}

func (s *Store) OrderByID(_ context.Context, id int64) (domain.Order, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	o, ok := s.orders[id]
	if !ok {
		return domain.Order{}, storage.ErrNotFound
	}
	return o, nil
}

func (s *Store) LatestOrder(_ context.Context, customerID int64) (domain.Order, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	orders := s.ordersLocked(func(o domain.Order) bool { return o.CustomerID == customerID })
	if len(orders) == 0 {
		return domain.Order{}, storage.ErrNotFound
	}
	return orders[0], nil
}

func (s *Store) ConfirmOrder(_ context.Context, orderID, cartID int64, status domain.OrderStatus) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	o, ok := s.orders[orderID]
	if !ok {
		return storage.ErrNotFound
	}
	o.Confirmed = true
	o.Status = status
	s.orders[orderID] = o
	s.clearCartLocked(cartID)
	return nil
}

func (s *Store) SetOrderStatus(_ context.Context, orderID int64, status domain.OrderStatus) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	o, ok := s.orders[orderID]
	if !ok {
		return storage.ErrNotFound
	}
	o.Status = status
	s.orders[orderID] = o
	return nil
}

func (s *Store) ListCustomerOrders(_ context.Context, customerID int64) ([]domain.OrderSummary, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.summariesLocked(s.ordersLocked(func(o domain.Order) bool { return o.CustomerID == customerID })), nil
}

func (s *Store) ListOrdersByStatus(_ context.Context, status domain.OrderStatus) ([]domain.OrderSummary, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.summariesLocked(s.ordersLocked(func(o domain.Order) bool { return o.Status == status })), nil
}

func (s *Store) OrderSummary(_ context.Context, orderID int64) (domain.OrderSummary, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	o, ok := s.orders[orderID]
	if !ok {
		return domain.OrderSummary{}, storage.ErrNotFound
	}
	return s.summariesLocked([]domain.Order{o})[0], nil
}

func (s *Store) OrderLines(_ context.Context, orderID int64) ([]domain.Line, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.orderLinesLocked(orderID), nil
}

func (s *Store) orderLinesLocked(orderID int64) []domain.Line {
	var items []domain.OrderItem
	for key, item := range s.orderItems {
		if key.owner == orderID {
			items = append(items, item)
		}
	}
	sort.Slice(items, func(i, j int) bool { return items[i].ID < items[j].ID })
	lines := make([]domain.Line, 0, len(items))
	for _, item := range items {
		lines = append(lines, s.lineLocked(item.ProductID, item.Quantity))
	}
	return lines
}

// ordersLocked returns matching orders newest first; ids break timestamp ties.
func (s *Store) ordersLocked(match func(domain.Order) bool) []domain.Order {
	var out []domain.Order
	for _, o := range s.orders {
		if match(o) {
			out = append(out, o)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID > out[j].ID
	})
	return out
}

func (s *Store) summariesLocked(orders []domain.Order) []domain.OrderSummary {
	out := make([]domain.OrderSummary, 0, len(orders))
	for _, o := range orders {
		view := domain.NewCartView(s.orderLinesLocked(o.ID))
		out = append(out, domain.OrderSummary{Order: o, TotalItems: view.TotalItems, TotalPrice: view.TotalPrice})
	}
	return out
}
