package bot

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	tele "gopkg.in/telebot.v4"

	tg "github.com/m3rciful/storebot/core/telegram"
	"github.com/m3rciful/storebot/internal/domain"
	"github.com/m3rciful/storebot/internal/shop"
	"github.com/m3rciful/storebot/internal/storage/memory"
)

func TestUserMessage(t *testing.T) {
	cases := []struct {
		err  error
		want string
	}{
		{domain.ErrInvalidTransition, msgNotCancellable},
		{&domain.Error{Kind: domain.CodeInvalidStatus, Msg: "unknown order status shipped"}, msgInvalidStatus},
		{fmt.Errorf("set quantity: %w", domain.ErrInvalidQuantity), msgInvalidQuantity},
		{domain.ErrInvalidStock, msgInvalidStock},
		{domain.NotFound("cart_item", nil), msgItemNotInCart},
		{domain.NotFound("order", nil), msgOrderNotFound},
		{errors.New("connection reset"), ""},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, userMessage(tc.err), "%v", tc.err)
	}
}

func TestNewPanicsOnTakenCallbackKey(t *testing.T) {
	reg := tg.NewRegistry()
	require.NoError(t, reg.RegisterCallback(cbCart, func(tele.Context) error { return nil }))

	assert.Panics(t, func() {
		New(Options{Shop: shop.New(memory.New()), Registry: reg})
	})
}

func TestNewRegistersEveryCallback(t *testing.T) {
	b := New(Options{Shop: shop.New(memory.New())})
	for _, key := range []string{cbMenu, cbCart, cbConfirm, cbCancel, cbAdminStatus, cbStock} {
		_, ok := b.Registry().GetCallback(key)
		assert.True(t, ok, key)
	}
}
