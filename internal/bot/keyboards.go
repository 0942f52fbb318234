package bot

import (
	"fmt"

	"github.com/m3rciful/storebot/core/telegram/callbacks"
	"github.com/m3rciful/storebot/core/telegram/keyboard"
	"github.com/m3rciful/storebot/internal/domain"

	tele "gopkg.in/telebot.v4"
)

func idData(id int64) string { return callbacks.Join(payloadSep, id) }

func mainReplyKeyboard() *tele.ReplyMarkup {
	return keyboard.ReplyButtons(
		[]string{labelCatalog, labelCart},
		[]string{labelOrders, labelProfile},
	)
}

func mainMenu() *tele.ReplyMarkup {
	return keyboard.InlineButtonsRows(
		[]keyboard.InlineBtn{{Text: "🗂 Categories", Unique: cbCategories}},
		[]keyboard.InlineBtn{{Text: "🛒 Cart", Unique: cbCart}},
		[]keyboard.InlineBtn{{Text: "📦 My orders", Unique: cbOrders}},
		[]keyboard.InlineBtn{{Text: "👤 Profile", Unique: cbProfile}},
	)
}

func categoriesMenu(cats []domain.Category) *tele.ReplyMarkup {
	buttons := make([]keyboard.InlineBtn, 0, len(cats))
	for _, c := range cats {
		buttons = append(buttons, keyboard.InlineBtn{Text: c.Title, Unique: cbCategory, Data: idData(c.ID)})
	}
	return keyboard.InlineButtonsNPerRow(buttons, 1)
}

func productsMenu(products []domain.Product) *tele.ReplyMarkup {
	buttons := make([]keyboard.InlineBtn, 0, len(products))
	for _, p := range products {
		buttons = append(buttons, keyboard.InlineBtn{Text: p.Title, Unique: cbProduct, Data: idData(p.ID)})
	}
	return keyboard.InlineButtonsNPerRow(buttons, 1,
		[]keyboard.InlineBtn{{Text: "⬅️ Back to categories", Unique: cbCategories}})
}

func productMenu(p domain.Product) *tele.ReplyMarkup {
	return keyboard.InlineButtonsRows(
		[]keyboard.InlineBtn{{Text: "🛒 Add to cart", Unique: cbToCart, Data: idData(p.ID)}},
		[]keyboard.InlineBtn{{Text: "⬅️ Back to products", Unique: cbCategory, Data: idData(p.CategoryID)}},
	)
}

func addedMenu(p domain.Product) *tele.ReplyMarkup {
	return keyboard.InlineButtonsRows(
		[]keyboard.InlineBtn{{Text: "🛒 Go to cart", Unique: cbCart}},
		[]keyboard.InlineBtn{{Text: "⬅️ Back to products", Unique: cbCategory, Data: idData(p.CategoryID)}},
	)
}

func cartMenu(v domain.CartView) *tele.ReplyMarkup {
	rows := make([][]keyboard.InlineBtn, 0, len(v.Lines)+2)
	for _, l := range v.Lines {
		rows = append(rows, []keyboard.InlineBtn{
			{Text: "✏️ " + l.Title, Unique: cbQuantity, Data: idData(l.ProductID)},
			{Text: "🗑", Unique: cbRemove, Data: idData(l.ProductID)},
		})
	}
	rows = append(rows,
		[]keyboard.InlineBtn{{Text: "🗑 Clear cart", Unique: cbClearCart}, {Text: "📦 Checkout", Unique: cbTakeOrder}},
	)
	return keyboard.InlineButtonsRows(rows...)
}

func deliveryMenu() *tele.ReplyMarkup {
	buttons := make([]keyboard.InlineBtn, 0, len(domain.DeliveryMethods))
	for _, m := range domain.DeliveryMethods {
		buttons = append(buttons, keyboard.InlineBtn{Text: m.Display(), Unique: cbDelivery, Data: string(m)})
	}
	return keyboard.InlineButtonsNPerRow(buttons, 2)
}

func confirmMenu() *tele.ReplyMarkup {
	return keyboard.InlineButtonsRows([]keyboard.InlineBtn{
		{Text: "✅ Confirm", Unique: cbConfirm},
		{Text: "❌ Cancel", Unique: cbCancelLatest},
	})
}

func orderMenu(o domain.OrderSummary) *tele.ReplyMarkup {
	if !o.Status.Cancellable() {
		return nil
	}
	return keyboard.InlineButtonsRows([]keyboard.InlineBtn{{Text: "❌ Cancel order", Unique: cbCancel, Data: idData(o.ID)}})
}

func profileMenu() *tele.ReplyMarkup {
	return keyboard.InlineButtonsRows(
		[]keyboard.InlineBtn{{Text: "📱 Change phone", Unique: cbEditPhone}, {Text: "🏠 Change address", Unique: cbEditAddress}},
		[]keyboard.InlineBtn{{Text: "⬅️ Menu", Unique: cbMenu}},
	)
}

func abortMenu() *tele.ReplyMarkup {
	return keyboard.SingleCancelMarkup(cbAbortInput)
}

func adminMenu() *tele.ReplyMarkup {
	buttons := make([]keyboard.InlineBtn, 0, len(domain.OrderStatuses))
	for _, s := range domain.OrderStatuses {
		buttons = append(buttons, keyboard.InlineBtn{Text: "📋 " + s.Display(), Unique: cbAdminOrders, Data: string(s)})
	}
	return keyboard.InlineButtonsNPerRow(buttons, 2,
		[]keyboard.InlineBtn{{Text: "📦 Inventory", Unique: cbInventory}})
}

func adminOrdersMenu(orders []domain.OrderSummary) *tele.ReplyMarkup {
	buttons := make([]keyboard.InlineBtn, 0, len(orders))
	for _, o := range orders {
		buttons = append(buttons, keyboard.InlineBtn{
			Text:   fmt.Sprintf("%s · %s", o.Number, money(o.TotalPrice)),
			Unique: cbAdminOrder,
			Data:   idData(o.ID),
		})
	}
	return keyboard.InlineButtonsNPerRow(buttons, 1,
		[]keyboard.InlineBtn{{Text: "⬅️ Admin menu", Unique: cbAdmin}})
}

func adminOrderMenu(o domain.OrderSummary) *tele.ReplyMarkup {
	buttons := make([]keyboard.InlineBtn, 0, len(domain.OrderStatuses))
	for _, s := range domain.OrderStatuses {
		if s == o.Status {
			continue
		}
		buttons = append(buttons, keyboard.InlineBtn{
			Text:   "➡️ " + s.Display(),
			Unique: cbAdminStatus,
			Data:   callbacks.Join(payloadSep, o.ID, string(s)),
		})
	}
	return keyboard.InlineButtonsNPerRow(buttons, 2,
		[]keyboard.InlineBtn{{Text: "⬅️ Back", Unique: cbAdminOrders, Data: string(o.Status)}})
}

func inventoryMenu(products []domain.Product) *tele.ReplyMarkup {
	buttons := make([]keyboard.InlineBtn, 0, len(products))
	for _, p := range products {
		buttons = append(buttons, keyboard.InlineBtn{
			Text:   fmt.Sprintf("✏️ %s (%d)", p.Title, p.Stock),
			Unique: cbStock,
			Data:   idData(p.ID),
		})
	}
	return keyboard.InlineButtonsNPerRow(buttons, 1,
		[]keyboard.InlineBtn{{Text: "⬅️ Admin menu", Unique: cbAdmin}})
}
