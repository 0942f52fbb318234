package bot

import (
	"log/slog"
	"strconv"
	"strings"

	"github.com/m3rciful/storebot/core/logger"
	"github.com/m3rciful/storebot/core/telegram/callbacks"
	"github.com/m3rciful/storebot/core/telegram/format"
	tghelpers "github.com/m3rciful/storebot/core/telegram/helpers"
	"github.com/m3rciful/storebot/core/telegram/state"
	"github.com/m3rciful/storebot/internal/domain"

	tele "gopkg.in/telebot.v4"
)

func (b *Bot) denied(c tele.Context) error {
	if c.Callback() != nil {
		return c.Respond(&tele.CallbackResponse{Text: msgAccessDenied, ShowAlert: true})
	}
	return tghelpers.SendText(c, msgAccessDenied)
}

func (b *Bot) admin(c tele.Context) error {
	return tghelpers.SendMDV2(c, bold("🛠 Admin")+"\n"+format.MD2("Orders by status:"), adminMenu())
}

func (b *Bot) adminOrders(c tele.Context) error {
	status, err := domain.ParseOrderStatus(callbacks.CallbackPayload(c))
	if err != nil {
		return b.badPayload(c, err)
	}
	list, err := b.shop.OrdersByStatus(tghelpers.BuildContext(c), status)
	if err != nil {
		return b.fail(c, err)
	}
	if len(list) == 0 {
		return tghelpers.SendText(c, "📭 No orders with status "+status.Display(), adminOrdersMenu(nil))
	}
	return tghelpers.SendText(c, "📋 "+status.Display()+" orders:", adminOrdersMenu(list))
}

func (b *Bot) adminOrder(c tele.Context) error {
	id, err := callbacks.PayloadInt64(c)
	if err != nil {
		return b.badPayload(c, err)
	}
	return b.renderOrderDetail(c, id)
}

func (b *Bot) renderOrderDetail(c tele.Context, id int64) error {
	detail, err := b.shop.OrderDetail(tghelpers.BuildContext(c), id)
	if err != nil {
		return b.fail(c, err)
	}
	return tghelpers.SendMDV2(c, orderDetailText(detail), adminOrderMenu(detail.Summary))
}

// adminStatus applies "<order id>|<status>" and tells the customer about it.
func (b *Bot) adminStatus(c tele.Context) error {
	id, raw, err := callbacks.PayloadIDAndString(c, payloadSep)
	if err != nil {
		return b.badPayload(c, err)
	}
	status, err := domain.ParseOrderStatus(raw)
	if err != nil {
		return b.badPayload(c, err)
	}
	ctx := tghelpers.BuildContext(c)
	order, err := b.shop.SetOrderStatus(ctx, id, status)
	if err != nil {
		return b.fail(c, err)
	}
	detail, err := b.shop.OrderDetail(ctx, order.ID)
	if err != nil {
		return b.fail(c, err)
	}
	b.notifyCustomer(c, detail.Customer.TelegramID, order)
	if err := tghelpers.SendMDV2(c, format.MD2("✅ Order ")+bold(order.Number)+format.MD2(" is now "+status.Display())); err != nil {
		return err
	}
	return tghelpers.SendMDV2(c, orderDetailText(detail), adminOrderMenu(detail.Summary))
}

// notifyCustomer messages the order owner. Failures are only logged since the change is already stored.
func (b *Bot) notifyCustomer(c tele.Context, telegramID int64, order domain.Order) {
	if telegramID == 0 || telegramID == tghelpers.SenderID(c) {
		return
	}
	_, err := c.Bot().Send(&tele.User{ID: telegramID}, statusNotice(order), &tele.SendOptions{ParseMode: tele.ModeMarkdownV2})
	if err != nil {
		logger.Warn(tghelpers.BuildContext(c), logger.CompTelegram, "notify.customer",
			slog.String("status", "fail"),
			slog.Int64("order_id", order.ID),
			slog.Any("err", err),
		)
	}
}

func (b *Bot) inventory(c tele.Context) error {
	products, err := b.shop.ListInventory(tghelpers.BuildContext(c))
	if err != nil {
		return b.fail(c, err)
	}
	return tghelpers.SendMDV2(c, inventoryText(products), inventoryMenu(products))
}

func (b *Bot) askStock(c tele.Context) error {
	id, err := callbacks.PayloadInt64(c)
	if err != nil {
		return b.badPayload(c, err)
	}
	p, err := b.shop.Product(tghelpers.BuildContext(c), id)
	if err != nil {
		return b.fail(c, err)
	}
	if err := b.fsm.Enter(c, StateAwaitingStock, p.ID); err != nil {
		return err
	}
	return tghelpers.SendMDV2(c,
		format.MD2("Send the new stock for ")+bold(p.Title)+format.MD2(" (currently "+strconv.Itoa(p.Stock)+"):"),
		abortMenu())
}

// onStock rechecks staff membership since the session may outlive it.
func (b *Bot) onStock(c tele.Context, s state.Session) error {
	if left, err := b.leaveStep(c); left {
		return err
	}
	ctx := tghelpers.BuildContext(c)
	ok, err := b.shop.IsManager(ctx, tghelpers.SenderID(c))
	if err != nil || !ok {
		if resetErr := b.fsm.Reset(c); resetErr != nil {
			return resetErr
		}
		return b.denied(c)
	}
	stock, err := strconv.Atoi(strings.TrimSpace(c.Text()))
	if err != nil {
		return tghelpers.SendText(c, msgInvalidStock, abortMenu())
	}
	p, err := b.shop.SetStock(ctx, s.Subject, stock)
	if domain.CodeOf(err) == domain.CodeInvalidStock {
		return tghelpers.SendText(c, msgInvalidStock, abortMenu())
	}
	if resetErr := b.fsm.Reset(c); resetErr != nil {
		return resetErr
	}
	if err != nil {
		return b.fail(c, err)
	}
	return tghelpers.SendMDV2(c,
		format.MD2("✅ Stock of ")+bold(p.Title)+format.MD2(" set to "+strconv.Itoa(p.Stock)),
		inventoryMenu(nil))
}
