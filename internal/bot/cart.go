package bot

import (
	"strconv"
	"strings"

	"github.com/m3rciful/storebot/core/telegram/callbacks"
	"github.com/m3rciful/storebot/core/telegram/format"
	tghelpers "github.com/m3rciful/storebot/core/telegram/helpers"
	"github.com/m3rciful/storebot/core/telegram/state"
	"github.com/m3rciful/storebot/internal/domain"

	tele "gopkg.in/telebot.v4"
)

func (b *Bot) addToCart(c tele.Context) error {
	id, err := callbacks.PayloadInt64(c)
	if err != nil {
		return b.badPayload(c, err)
	}
	res, err := b.shop.AddItem(tghelpers.BuildContext(c), tghelpers.SenderID(c), id)
	if err != nil {
		return b.fail(c, err)
	}
	return tghelpers.SendMDV2(c, addedText(res.Product.Title, res.Quantity), addedMenu(res.Product))
}

func (b *Bot) cart(c tele.Context) error {
	view, err := b.shop.ReadCart(tghelpers.BuildContext(c), tghelpers.SenderID(c))
	if err != nil {
		return b.fail(c, err)
	}
	if view.Empty() {
		return tghelpers.SendText(c, msgCartEmpty)
	}
	return tghelpers.SendMDV2(c, cartText(view), cartMenu(view))
}

func (b *Bot) removeFromCart(c tele.Context) error {
	id, err := callbacks.PayloadInt64(c)
	if err != nil {
		return b.badPayload(c, err)
	}
	p, err := b.shop.RemoveItem(tghelpers.BuildContext(c), tghelpers.SenderID(c), id)
	if err != nil {
		return b.fail(c, err)
	}
	if err := tghelpers.SendMDV2(c, format.MD2("✅ ")+bold(p.Title)+format.MD2(" removed from cart")); err != nil {
		return err
	}
	return b.cart(c)
}

// askQuantity starts the quantity step for the product in the payload.
func (b *Bot) askQuantity(c tele.Context) error {
	id, err := callbacks.PayloadInt64(c)
	if err != nil {
		return b.badPayload(c, err)
	}
	p, err := b.shop.Product(tghelpers.BuildContext(c), id)
	if err != nil {
		return b.fail(c, err)
	}
	if err := b.fsm.Enter(c, StateAwaitingQuantity, p.ID); err != nil {
		return err
	}
	return tghelpers.SendMDV2(c, format.MD2("Send the new quantity for ")+bold(p.Title)+format.MD2(":"), abortMenu())
}

func (b *Bot) onQuantity(c tele.Context, s state.Session) error {
	if left, err := b.leaveStep(c); left {
		return err
	}
	qty, err := strconv.Atoi(strings.TrimSpace(c.Text()))
	if err != nil {
		return tghelpers.SendText(c, msgInvalidQuantity, abortMenu())
	}
	p, err := b.shop.SetQuantity(tghelpers.BuildContext(c), tghelpers.SenderID(c), s.Subject, qty)
	if domain.CodeOf(err) == domain.CodeInvalidQuantity {
		return tghelpers.SendText(c, msgInvalidQuantity, abortMenu())
	}
	if resetErr := b.fsm.Reset(c); resetErr != nil {
		return resetErr
	}
	if err != nil {
		return b.fail(c, err)
	}
	if err := tghelpers.SendMDV2(c, format.MD2("✅ Quantity of ")+bold(p.Title)+format.MD2(" changed to "+strconv.Itoa(qty))); err != nil {
		return err
	}
	return b.cart(c)
}

func (b *Bot) clearCart(c tele.Context) error {
	if err := b.shop.ClearCart(tghelpers.BuildContext(c), tghelpers.SenderID(c)); err != nil {
		return b.fail(c, err)
	}
	return tghelpers.SendText(c, msgCartCleared)
}
