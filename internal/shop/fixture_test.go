package shop

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/m3rciful/storebot/internal/domain"
	"github.com/m3rciful/storebot/internal/events"
	"github.com/m3rciful/storebot/internal/storage/memory"
)

const (
	aliceID int64 = 1001
	bobID   int64 = 1002
	staffID int64 = 9001
)

var fixedNow = time.Date(2026, 10, 17, 9, 30, 0, 0, time.UTC)

// seqSource replays values modulo n, cycling through vals.
type seqSource struct {
	vals []int
	pos  int
}

func (s *seqSource) IntN(n int) int {
	v := s.vals[s.pos%len(s.vals)]
	s.pos++
	return v % n
}

type fixture struct {
	ctx      context.Context
	store    *memory.Store
	svc      *Service
	events   *events.Recorder
	category domain.Category
	tea      domain.Product
	cup      domain.Product
}

func newFixture(t *testing.T, opts ...Option) *fixture {
	t.Helper()
	ctx := context.Background()
	store := memory.New()
	store.SetClock(func() time.Time { return fixedNow })

	cat, err := store.UpsertCategory(ctx, domain.Category{Title: "Tea"})
	require.NoError(t, err)
	tea, err := store.UpsertProduct(ctx, domain.Product{Title: "Green tea", Price: decimal.NewFromInt(100), CategoryID: cat.ID, Stock: 5})
	require.NoError(t, err)
	cup, err := store.UpsertProduct(ctx, domain.Product{Title: "Cup", Price: decimal.NewFromInt(50), CategoryID: cat.ID, Stock: 2})
	require.NoError(t, err)

	rec := &events.Recorder{}
	base := []Option{
		WithEvents(rec),
		WithClock(func() time.Time { return fixedNow }),
	}
	svc := New(store, append(base, opts...)...)
	return &fixture{ctx: ctx, store: store, svc: svc, events: rec, category: cat, tea: tea, cup: cup}
}

// register creates a fully registered customer.
func (f *fixture) register(t *testing.T, telegramID int64, phone string) domain.Customer {
	t.Helper()
	_, _, err := f.svc.RegisterPhone(f.ctx, Identity{TelegramID: telegramID, FirstName: "Test"}, phone)
	require.NoError(t, err)
	c, err := f.svc.RegisterAddress(f.ctx, telegramID, "12 Baker Street")
	require.NoError(t, err)
	return c
}

// fillCart puts two teas and one cup into the cart of telegramID.
func (f *fixture) fillCart(t *testing.T, telegramID int64) {
	t.Helper()
	for _, id := range []int64{f.tea.ID, f.tea.ID, f.cup.ID} {
		_, err := f.svc.AddItem(f.ctx, telegramID, id)
		require.NoError(t, err)
	}
}
