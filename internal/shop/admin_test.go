package shop

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m3rciful/storebot/internal/domain"
	"github.com/m3rciful/storebot/internal/events"
)

func TestIsManager(t *testing.T) {
	f := newFixture(t)
	_, err := f.store.UpsertManager(f.ctx, domain.Manager{TelegramID: staffID, Phone: "+70000000001", IsStaff: true})
	require.NoError(t, err)
	_, err = f.store.UpsertManager(f.ctx, domain.Manager{TelegramID: bobID, Phone: "+70000000002", IsStaff: false})
	require.NoError(t, err)

	ok, err := f.svc.IsManager(f.ctx, staffID)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = f.svc.IsManager(f.ctx, bobID)
	require.NoError(t, err)
	assert.False(t, ok, "inactive staff")

	ok, err = f.svc.IsManager(f.ctx, aliceID)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestSetOrderStatusAndFilter(t *testing.T) {
	f := newFixture(t)
	f.register(t, aliceID, "+79991234567")
	f.fillCart(t, aliceID)
	placed, err := f.svc.CreateOrder(f.ctx, aliceID, domain.DeliveryCourier)
	require.NoError(t, err)

	_, err = f.svc.SetOrderStatus(f.ctx, placed.ID, domain.OrderStatus("lost"))
	assert.Equal(t, domain.CodeInvalidStatus, domain.CodeOf(err))

	updated, err := f.svc.SetOrderStatus(f.ctx, placed.ID, domain.StatusCompleted)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusCompleted, updated.Status)

	done, err := f.svc.OrdersByStatus(f.ctx, domain.StatusCompleted)
	require.NoError(t, err)
	require.Len(t, done, 1)
	assert.Equal(t, placed.ID, done[0].ID)

	created, err := f.svc.OrdersByStatus(f.ctx, domain.StatusCreated)
	require.NoError(t, err)
	assert.Empty(t, created)

	last := f.events.Events[len(f.events.Events)-1]
	assert.Equal(t, events.OrderStatusChanged, last.Type)
	assert.Equal(t, domain.StatusCreated, last.PreviousStatus)
	assert.Equal(t, domain.StatusCompleted, last.Status)

	_, err = f.svc.SetOrderStatus(f.ctx, 999, domain.StatusPending)
	assert.True(t, domain.IsNotFound(err, "order"))
}

func TestOrderDetail(t *testing.T) {
	f := newFixture(t)
	c := f.register(t, aliceID, "+79991234567")
	f.fillCart(t, aliceID)
	placed, err := f.svc.CreateOrder(f.ctx, aliceID, domain.DeliveryMail)
	require.NoError(t, err)

	detail, err := f.svc.OrderDetail(f.ctx, placed.ID)
	require.NoError(t, err)
	assert.Equal(t, placed.Number, detail.Summary.Number)
	assert.Equal(t, c.Phone, detail.Customer.Phone)
	assert.Len(t, detail.Lines, 2)
	assert.Equal(t, 3, detail.Summary.TotalItems)
}

func TestInventory(t *testing.T) {
	f := newFixture(t)

	items, err := f.svc.ListInventory(f.ctx)
	require.NoError(t, err)
	assert.Len(t, items, 2)

	for _, bad := range []int{-1, 3_000_000_000} {
		_, err = f.svc.SetStock(f.ctx, f.cup.ID, bad)
		assert.ErrorIs(t, err, domain.ErrInvalidStock)
	}
	p, err := f.svc.Product(f.ctx, f.cup.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, p.Stock, "rejected values leave stock untouched")

	p, err = f.svc.SetStock(f.ctx, f.cup.ID, 0)
	require.NoError(t, err)
	assert.Equal(t, 0, p.Stock)

	_, err = f.svc.SetStock(f.ctx, 999, 3)
	assert.True(t, domain.IsNotFound(err, "product"))
}

func TestCatalogReads(t *testing.T) {
	f := newFixture(t)

	cats, err := f.svc.ListCategories(f.ctx)
	require.NoError(t, err)
	require.Len(t, cats, 1)

	products, err := f.svc.ListProducts(f.ctx, f.category.ID)
	require.NoError(t, err)
	assert.Len(t, products, 2)

	_, err = f.svc.ListProducts(f.ctx, 999)
	assert.True(t, domain.IsNotFound(err, "category"))

	found, err := f.svc.SearchProducts(f.ctx, "TEA", 0)
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, f.tea.ID, found[0].ID)

	_, err = f.svc.Product(f.ctx, 999)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
