package bot

import (
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	tele "gopkg.in/telebot.v4"

	"github.com/m3rciful/storebot/core/telegram/state"
	"github.com/m3rciful/storebot/internal/domain"
	"github.com/m3rciful/storebot/internal/events"
)

func TestRegistrationFlow(t *testing.T) {
	h := newHarness(t)

	h.text(aliceID, "/start")
	first := h.api.lastText(t)
	assert.Contains(t, first.str("text"), "Welcome to the store")
	assert.Contains(t, first.str("reply_markup"), "request_contact")
	assert.Equal(t, StateAwaitingPhone, h.session(aliceID).State)

	h.text(aliceID, "12")
	assert.Equal(t, msgInvalidPhone, h.api.lastText(t).str("text"))
	assert.Equal(t, StateAwaitingPhone, h.session(aliceID).State, "invalid input keeps the step")

	h.contact(aliceID, aliceID, "+1 555 000 1111")
	assert.Contains(t, h.api.lastText(t).str("text"), "Phone saved")
	assert.Equal(t, StateAwaitingAddress, h.session(aliceID).State)

	h.text(aliceID, "x st")
	assert.Equal(t, msgInvalidAddress, h.api.lastText(t).str("text"))

	h.text(aliceID, "12 Baker Street")
	assert.Contains(t, joined(h.api.texts()), "Registration complete")
	assert.False(t, h.session(aliceID).Active())

	c, err := h.svc.Profile(h.ctx, aliceID)
	require.NoError(t, err)
	assert.Equal(t, "+15550001111", c.Phone)
	assert.Equal(t, "12 Baker Street", c.Address)

	h.api.reset()
	h.text(aliceID, "/start")
	assert.Contains(t, joined(h.api.texts()), "Welcome back")
}

func TestRegistrationRejectsForeignContactAndTakenPhone(t *testing.T) {
	h := newHarness(t)
	h.register(bobID, "+15550002222")

	h.text(aliceID, "/start")
	h.contact(aliceID, bobID, "+15550002222")
	assert.Equal(t, msgForeignContact, h.api.lastText(t).str("text"))

	h.text(aliceID, "+15550002222")
	assert.Equal(t, msgPhoneInUse, h.api.lastText(t).str("text"))
	assert.Equal(t, StateAwaitingPhone, h.session(aliceID).State)
}

func TestCatalogBrowsing(t *testing.T) {
	h := newHarness(t)

	h.press(aliceID, cbCategories)
	msg := h.api.lastText(t)
	assert.Equal(t, "🗂 Categories:", msg.str("text"))
	assert.Contains(t, msg.str("reply_markup"), "Tea")

	h.press(aliceID, cbCategory, h.category.ID)
	msg = h.api.lastText(t)
	assert.Equal(t, "📚 Products:", msg.str("text"))
	assert.Contains(t, msg.str("reply_markup"), "Green tea")

	h.press(aliceID, cbProduct, h.tea.ID)
	photos := h.api.byMethod("sendPhoto")
	require.Len(t, photos, 1)
	assert.Equal(t, h.tea.ImageRef, photos[0].str("photo"))
	assert.Contains(t, photos[0].str("caption"), "Sencha from Shizuoka")

	h.press(aliceID, cbProduct, h.cup.ID)
	assert.Contains(t, h.api.lastText(t).str("text"), "No description")

	h.press(aliceID, cbProduct, 9999)
	assert.Equal(t, msgProductNotFound, h.api.lastText(t).str("text"))

	h.press(aliceID, cbCategory, 9999)
	assert.Equal(t, msgCategoryNotFound, h.api.lastText(t).str("text"))
}

func TestProductPhotoFallsBackToText(t *testing.T) {
	h := newHarness(t)
	h.api.failPhoto = true

	h.press(aliceID, cbProduct, h.tea.ID)
	require.Len(t, h.api.byMethod("sendPhoto"), 1)
	assert.Contains(t, h.api.lastText(t).str("text"), "Green tea")
}

func TestCartRequiresRegistration(t *testing.T) {
	h := newHarness(t)
	h.press(aliceID, cbToCart, h.tea.ID)
	assert.Equal(t, msgNotRegistered, h.api.lastText(t).str("text"))
}

func TestCartFlow(t *testing.T) {
	h := newHarness(t)
	h.register(aliceID, "+15550001111")

	h.press(aliceID, cbCart)
	assert.Equal(t, msgCartEmpty, h.api.lastText(t).str("text"))

	h.press(aliceID, cbToCart, h.tea.ID)
	h.press(aliceID, cbToCart, h.tea.ID)
	assert.Contains(t, h.api.lastText(t).str("text"), "2 pcs")
	h.press(aliceID, cbToCart, h.cup.ID)

	h.press(aliceID, cbCart)
	msg := h.api.lastText(t)
	assert.Contains(t, msg.str("text"), "Total items: 3, sum: 16\\.00")
	assert.Contains(t, msg.str("reply_markup"), cbTakeOrder)

	h.press(aliceID, cbRemove, h.cup.ID)
	assert.Contains(t, joined(h.api.texts()), "removed from cart")
	view, err := h.svc.ReadCart(h.ctx, aliceID)
	require.NoError(t, err)
	assert.Equal(t, 2, view.TotalItems)

	h.press(aliceID, cbClearCart)
	assert.Equal(t, msgCartCleared, h.api.lastText(t).str("text"))
	view, err = h.svc.ReadCart(h.ctx, aliceID)
	require.NoError(t, err)
	assert.True(t, view.Empty())
}

func TestQuantityStepOnlyWhileAwaiting(t *testing.T) {
	h := newHarness(t)
	h.register(aliceID, "+15550001111")
	h.press(aliceID, cbToCart, h.tea.ID)

	h.text(aliceID, "5")
	assert.Equal(t, msgUnknownText, h.api.lastText(t).str("text"), "digits outside the step are not quantities")

	h.press(aliceID, cbQuantity, h.tea.ID)
	s := h.session(aliceID)
	assert.Equal(t, StateAwaitingQuantity, s.State)
	assert.Equal(t, h.tea.ID, s.Subject)

	h.text(aliceID, "abc")
	assert.Equal(t, msgInvalidQuantity, h.api.lastText(t).str("text"))
	h.text(aliceID, "0")
	assert.Equal(t, msgInvalidQuantity, h.api.lastText(t).str("text"))
	h.text(aliceID, "3000000000")
	assert.Equal(t, msgInvalidQuantity, h.api.lastText(t).str("text"))
	assert.Equal(t, StateAwaitingQuantity, h.session(aliceID).State)

	h.text(aliceID, "3")
	assert.Contains(t, joined(h.api.texts()), "changed to 3")
	assert.False(t, h.session(aliceID).Active())

	view, err := h.svc.ReadCart(h.ctx, aliceID)
	require.NoError(t, err)
	assert.Equal(t, 3, view.TotalItems)
}

func TestMenuLabelLeavesStep(t *testing.T) {
	h := newHarness(t)
	h.register(aliceID, "+15550001111")
	h.press(aliceID, cbToCart, h.tea.ID)
	h.press(aliceID, cbQuantity, h.tea.ID)

	h.text(aliceID, labelCart)
	assert.False(t, h.session(aliceID).Active())
	assert.Contains(t, h.api.lastText(t).str("text"), "Your cart")
}

func TestAbortInput(t *testing.T) {
	h := newHarness(t)
	h.register(aliceID, "+15550001111")
	h.press(aliceID, cbEditAddress)
	assert.Equal(t, StateAwaitingAddress, h.session(aliceID).State)

	h.text(aliceID, "/cancel")
	assert.Equal(t, msgInputCancelled, h.api.lastText(t).str("text"))
	assert.Equal(t, state.StateIdle, h.session(aliceID).State)
}

func TestCheckoutFlow(t *testing.T) {
	h := newHarness(t)
	h.register(aliceID, "+15550001111")

	h.press(aliceID, cbTakeOrder)
	assert.Equal(t, msgCartEmpty, h.api.lastText(t).str("text"))

	h.press(aliceID, cbToCart, h.tea.ID)
	h.press(aliceID, cbTakeOrder)
	msg := h.api.lastText(t)
	assert.Equal(t, msgChooseDelivery, msg.str("text"))
	assert.Contains(t, msg.str("reply_markup"), string(domain.DeliveryCourier))

	h.press(aliceID, cbDelivery, string(domain.DeliveryCourier))
	msg = h.api.lastText(t)
	assert.Contains(t, msg.str("text"), "Order created")
	assert.Contains(t, msg.str("text"), "Courier")
	assert.Contains(t, msg.str("reply_markup"), cbConfirm)

	h.press(aliceID, cbConfirm)
	assert.Contains(t, h.api.lastText(t).str("text"), "confirmed")

	view, err := h.svc.ReadCart(h.ctx, aliceID)
	require.NoError(t, err)
	assert.True(t, view.Empty(), "confirm empties the cart")

	orders, err := h.svc.ListOrders(h.ctx, aliceID)
	require.NoError(t, err)
	require.Len(t, orders, 1)
	assert.Equal(t, domain.StatusPending, orders[0].Status)
	assert.Equal(t, 1, orders[0].TotalItems, "order items survive the cart clear")
	assert.Equal(t, []events.Type{events.OrderCreated, events.OrderConfirmed}, h.events.Types())

	h.api.reset()
	h.press(aliceID, cbOrders)
	cards := h.api.byMethod("sendMessage")
	require.Len(t, cards, 1)
	assert.Contains(t, cards[0].str("text"), "Processing")
	assert.Contains(t, cards[0].str("reply_markup"), cbCancel)

	h.press(aliceID, cbDelivery, "teleport")
	assert.Equal(t, msgInvalidDelivery, h.api.lastText(t).str("text"))
}

func TestCancelLatestOrder(t *testing.T) {
	h := newHarness(t)
	h.register(aliceID, "+15550001111")
	h.press(aliceID, cbToCart, h.cup.ID)
	h.press(aliceID, cbDelivery, string(domain.DeliveryMail))

	h.press(aliceID, cbCancelLatest)
	assert.Contains(t, h.api.lastText(t).str("text"), "cancelled")

	h.press(aliceID, cbCancelLatest)
	assert.Equal(t, msgNotCancellable, h.api.lastText(t).str("text"))
}

func TestCancelForeignOrderIsForbidden(t *testing.T) {
	h := newHarness(t)
	h.register(aliceID, "+15550001111")
	h.register(bobID, "+15550002222")
	h.press(aliceID, cbToCart, h.tea.ID)
	h.press(aliceID, cbDelivery, string(domain.DeliverySelfPickup))
	orders, err := h.svc.ListOrders(h.ctx, aliceID)
	require.NoError(t, err)
	require.Len(t, orders, 1)
	orderID := orders[0].ID

	h.api.reset()
	h.press(bobID, cbCancel, orderID)
	answers := h.api.byMethod("answerCallbackQuery")
	require.NotEmpty(t, answers)
	assert.Equal(t, msgForbidden, answers[0].str("text"))

	o, err := h.store.OrderByID(h.ctx, orderID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusCreated, o.Status)

	h.press(aliceID, cbCancel, orderID)
	o, err = h.store.OrderByID(h.ctx, orderID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusCancelled, o.Status)
}

func TestProfile(t *testing.T) {
	h := newHarness(t)
	h.press(aliceID, cbProfile)
	assert.Equal(t, msgNotRegistered, h.api.lastText(t).str("text"))

	h.register(aliceID, "+15550001111")
	h.press(aliceID, cbProfile)
	msg := h.api.lastText(t)
	assert.Contains(t, msg.str("text"), "\\+15550001111")
	assert.Contains(t, msg.str("reply_markup"), cbEditPhone)
}

func TestAdminRequiresManager(t *testing.T) {
	h := newHarness(t)

	h.text(aliceID, "/admin")
	assert.Equal(t, msgAccessDenied, h.api.lastText(t).str("text"))

	h.api.reset()
	h.press(aliceID, cbInventory)
	answers := h.api.byMethod("answerCallbackQuery")
	require.NotEmpty(t, answers)
	assert.Equal(t, msgAccessDenied, answers[0].str("text"))
	assert.Empty(t, h.api.byMethod("sendMessage"))

	h.text(managerID, "/admin")
	assert.Contains(t, h.api.lastText(t).str("reply_markup"), cbAdminOrders)
}

func TestAdminStatusChangeNotifiesCustomer(t *testing.T) {
	h := newHarness(t)
	h.register(aliceID, "+15550001111")
	h.press(aliceID, cbToCart, h.tea.ID)
	h.press(aliceID, cbDelivery, string(domain.DeliveryCourier))
	h.press(aliceID, cbConfirm)
	orders, err := h.svc.ListOrders(h.ctx, aliceID)
	require.NoError(t, err)
	orderID := orders[0].ID

	h.api.reset()
	h.press(managerID, cbAdminOrders, string(domain.StatusPending))
	assert.Contains(t, h.api.lastText(t).str("reply_markup"), orders[0].Number)

	h.press(managerID, cbAdminOrder, orderID)
	assert.Contains(t, h.api.lastText(t).str("text"), "Green tea")

	h.api.reset()
	h.press(managerID, cbAdminStatus, orderID, string(domain.StatusDelivery))
	o, err := h.store.OrderByID(h.ctx, orderID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusDelivery, o.Status)

	var notified bool
	for _, m := range h.api.byMethod("sendMessage") {
		if m.str("chat_id") == strconv.FormatInt(aliceID, 10) {
			notified = true
			assert.Contains(t, m.str("text"), "In delivery")
		}
	}
	assert.True(t, notified, "customer receives the status notice")
	assert.Contains(t, h.events.Types(), events.OrderStatusChanged)

	h.press(aliceID, cbAdminStatus, orderID, string(domain.StatusCompleted))
	o, err = h.store.OrderByID(h.ctx, orderID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusDelivery, o.Status, "customers cannot change status")
}

func TestStockStep(t *testing.T) {
	h := newHarness(t)

	h.press(managerID, cbInventory)
	assert.Contains(t, h.api.lastText(t).str("text"), "Green tea: 10 in stock")

	h.press(managerID, cbStock, h.cup.ID)
	assert.Equal(t, StateAwaitingStock, h.session(managerID).State)

	h.text(managerID, "-1")
	assert.Equal(t, msgInvalidStock, h.api.lastText(t).str("text"))
	h.text(managerID, "3000000000")
	assert.Equal(t, msgInvalidStock, h.api.lastText(t).str("text"))
	assert.Equal(t, StateAwaitingStock, h.session(managerID).State)

	h.text(managerID, "12")
	assert.Contains(t, h.api.lastText(t).str("text"), "set to 12")
	p, err := h.store.ProductByID(h.ctx, h.cup.ID)
	require.NoError(t, err)
	assert.Equal(t, 12, p.Stock)
	assert.False(t, h.session(managerID).Active())
}

func TestUnknownCallbackAndBadPayload(t *testing.T) {
	h := newHarness(t)

	h.press(aliceID, "no_such_button")
	answers := h.api.byMethod("answerCallbackQuery")
	require.Len(t, answers, 1)
	assert.Equal(t, msgUnknownAction, answers[0].str("text"))

	h.api.reset()
	h.press(aliceID, cbProduct, "not-a-number")
	answers = h.api.byMethod("answerCallbackQuery")
	require.NotEmpty(t, answers)
	assert.Equal(t, msgUnknownAction, answers[0].str("text"))
	assert.Empty(t, h.api.byMethod("sendMessage"))
}

func TestInlineSearch(t *testing.T) {
	h := newHarness(t)

	h.tb.ProcessUpdate(tele.Update{ID: h.id(), Query: &tele.Query{ID: "q1", Sender: h.user(aliceID), Text: "green"}})
	answers := h.api.byMethod("answerInlineQuery")
	require.Len(t, answers, 1)
	assert.Equal(t, "q1", answers[0].str("inline_query_id"))

	results, ok := answers[0].Params["results"].([]any)
	require.True(t, ok)
	require.Len(t, results, 1)
	first, ok := results[0].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "Green tea", first["title"])
	assert.Equal(t, strconv.FormatInt(h.tea.ID, 10), first["id"])
}
