package bot

import (
	"github.com/m3rciful/storebot/core/telegram/callbacks"
	"github.com/m3rciful/storebot/core/telegram/format"
	tghelpers "github.com/m3rciful/storebot/core/telegram/helpers"
	"github.com/m3rciful/storebot/internal/domain"

	tele "gopkg.in/telebot.v4"
)

// takeOrder offers delivery methods when the cart has something to order.
func (b *Bot) takeOrder(c tele.Context) error {
	view, err := b.shop.ReadCart(tghelpers.BuildContext(c), tghelpers.SenderID(c))
	if err != nil {
		return b.fail(c, err)
	}
	if view.Empty() {
		return tghelpers.SendText(c, msgCartEmpty)
	}
	return tghelpers.SendText(c, msgChooseDelivery, deliveryMenu())
}

func (b *Bot) createOrder(c tele.Context) error {
	method, err := domain.ParseDeliveryMethod(callbacks.CallbackPayload(c))
	if err != nil {
		return b.fail(c, err)
	}
	order, err := b.shop.CreateOrder(tghelpers.BuildContext(c), tghelpers.SenderID(c), method)
	if err != nil {
		return b.fail(c, err)
	}
	return tghelpers.SendMDV2(c, orderCreatedText(order), confirmMenu())
}

func (b *Bot) confirmOrder(c tele.Context) error {
	order, err := b.shop.ConfirmOrder(tghelpers.BuildContext(c), tghelpers.SenderID(c))
	if err != nil {
		return b.fail(c, err)
	}
	return tghelpers.SendMDV2(c, format.MD2("✅ Order ")+bold(order.Number)+format.MD2(" confirmed and passed to processing"))
}

func (b *Bot) cancelLatest(c tele.Context) error {
	order, err := b.shop.CancelLatest(tghelpers.BuildContext(c), tghelpers.SenderID(c))
	if err != nil {
		return b.fail(c, err)
	}
	return tghelpers.SendMDV2(c, format.MD2("❌ Order ")+bold(order.Number)+format.MD2(" cancelled"))
}

// cancelOrder cancels the order in the payload on behalf of its owner.
func (b *Bot) cancelOrder(c tele.Context) error {
	id, err := callbacks.PayloadInt64(c)
	if err != nil {
		return b.badPayload(c, err)
	}
	order, err := b.shop.CancelOrder(tghelpers.BuildContext(c), tghelpers.SenderID(c), id)
	if domain.CodeOf(err) == domain.CodeForbidden {
		return c.Respond(&tele.CallbackResponse{Text: msgForbidden, ShowAlert: true})
	}
	if err != nil {
		return b.fail(c, err)
	}
	return tghelpers.SendMDV2(c, format.MD2("✅ Order ")+bold(order.Number)+format.MD2(" cancelled"))
}

// orders sends one card per order, most recent first.
func (b *Bot) orders(c tele.Context) error {
	list, err := b.shop.ListOrders(tghelpers.BuildContext(c), tghelpers.SenderID(c))
	if err != nil {
		return b.fail(c, err)
	}
	if len(list) == 0 {
		return tghelpers.SendText(c, msgNoOrders)
	}
	for _, o := range list {
		if err := tghelpers.SendMDV2(c, orderText(o), orderMenu(o)); err != nil {
			return err
		}
	}
	return nil
}
