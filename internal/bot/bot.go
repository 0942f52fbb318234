// Package bot wires the storefront conversation onto the Telegram runtime:
// commands, callback buttons, the per-user state machine and inline search.
package bot

import (
	"fmt"

	"github.com/m3rciful/storebot/core/metrics"
	tg "github.com/m3rciful/storebot/core/telegram"
	"github.com/m3rciful/storebot/core/telegram/commands"
	"github.com/m3rciful/storebot/core/telegram/middleware"
	"github.com/m3rciful/storebot/core/telegram/router"
	"github.com/m3rciful/storebot/core/telegram/state"
	"github.com/m3rciful/storebot/internal/shop"

	tele "gopkg.in/telebot.v4"
)

// Conversation steps awaiting free-form input.
const (
	StateAwaitingPhone    state.State = "awaiting_phone"
	StateAwaitingAddress  state.State = "awaiting_address"
	StateAwaitingQuantity state.State = "awaiting_quantity"
	StateAwaitingStock    state.State = "awaiting_stock"
)

// Callback unique keys.
const (
	cbMenu         = "menu"
	cbCategories   = "categories"
	cbCategory     = "category"
	cbProduct      = "product"
	cbToCart       = "to_cart"
	cbCart         = "cart"
	cbRemove       = "remove_from_cart"
	cbQuantity     = "change_quantity"
	cbClearCart    = "clear_cart"
	cbTakeOrder    = "take_order"
	cbDelivery     = "delivery"
	cbConfirm      = "confirm_order"
	cbCancelLatest = "cancel_order"
	cbOrders       = "orders"
	cbCancel       = "cancel"
	cbProfile      = "profile"
	cbEditPhone    = "edit_phone"
	cbEditAddress  = "edit_address"
	cbAbortInput   = "abort_input"
	cbAdmin        = "admin"
	cbAdminOrders  = "admin_orders"
	cbAdminOrder   = "admin_order"
	cbAdminStatus  = "admin_status"
	cbInventory    = "inventory"
	cbStock        = "stock"
)

const payloadSep = "|"

// Options configures the bot surface.
type Options struct {
	Shop     *shop.Service
	Sessions state.Store
	Registry *tg.Registry
	Metrics  *metrics.Updates
}

// Bot holds the handlers of the storefront conversation.
type Bot struct {
	shop    *shop.Service
	fsm     *state.Machine
	reg     *tg.Registry
	metrics *metrics.Updates
	staff   tele.MiddlewareFunc
}

// New registers commands, callbacks and conversation steps on opts.Registry.
// It panics when a callback key is already taken in the registry.
func New(opts Options) *Bot {
	reg := opts.Registry
	if reg == nil {
		reg = tg.NewRegistry()
	}
	sessions := opts.Sessions
	if sessions == nil {
		sessions = state.NewMemoryStore(0)
	}
	b := &Bot{
		shop:    opts.Shop,
		fsm:     state.NewMachine(sessions),
		reg:     reg,
		metrics: opts.Metrics,
	}
	b.staff = middleware.ManagerOnly(middleware.ManagerOptions{Checker: b.shop, OnReject: b.denied})

	b.registerCommands()
	b.registerCallbacks()
	b.registerSteps()

	fb := b.Fallbacks()
	reg.SetCallbackNotFound(fb.UnknownCallback())
	return b
}

// Registry returns the registry the bot registered on.
func (b *Bot) Registry() *tg.Registry { return b.reg }

// Routes returns every telebot route of the storefront.
func (b *Bot) Routes() []tg.Route {
	fb := b.Fallbacks()
	routes := router.CommandRoutes(b.reg, router.CommandRouteOptions{
		Managers:        b.shop,
		OnManagerReject: b.denied,
		Metrics:         b.metrics,
	})
	routes = append(routes, router.CallbackRoute(b.reg, router.CallbackOptions{
		NotFound: fb.UnknownCallback(),
		Metrics:  b.metrics,
	}))
	routes = append(routes, router.TextRoutes(b.fsm, b.reg, router.TextOptions{
		UnknownText:     fb.UnknownText(),
		UnknownDocument: fb.UnknownDocument(),
		Metrics:         b.metrics,
	})...)
	return append(routes, router.InlineRoute(b.search, b.metrics))
}

func (b *Bot) registerCommands() {
	b.reg.RegisterCommand("/start", commands.Command{Handler: b.start, Description: "Start the bot"})
	b.reg.RegisterCommand("/menu", commands.Command{Handler: b.menu, Description: "Show the main menu", Aliases: []string{labelMenu}})
	b.reg.RegisterCommand("/catalog", commands.Command{Handler: b.categories, Description: "Browse categories", Aliases: []string{labelCatalog}})
	b.reg.RegisterCommand("/cart", commands.Command{Handler: b.cart, Description: "Show your cart", Aliases: []string{labelCart}})
	b.reg.RegisterCommand("/orders", commands.Command{Handler: b.orders, Description: "Show your orders", Aliases: []string{labelOrders}})
	b.reg.RegisterCommand("/profile", commands.Command{Handler: b.profile, Description: "Show your profile", Aliases: []string{labelProfile}})
	b.reg.RegisterCommand("/cancel", commands.Command{Handler: b.abortInput, Description: "Cancel the current input", Hidden: true})
	b.reg.RegisterCommand("/admin", commands.Command{Handler: b.admin, Description: "Manage orders and stock", ManagerOnly: true})
}

func (b *Bot) registerCallbacks() {
	customer := map[string]tele.HandlerFunc{
		cbMenu:         b.menu,
		cbCategories:   b.categories,
		cbCategory:     b.category,
		cbProduct:      b.product,
		cbToCart:       b.addToCart,
		cbCart:         b.cart,
		cbRemove:       b.removeFromCart,
		cbQuantity:     b.askQuantity,
		cbClearCart:    b.clearCart,
		cbTakeOrder:    b.takeOrder,
		cbDelivery:     b.createOrder,
		cbConfirm:      b.confirmOrder,
		cbCancelLatest: b.cancelLatest,
		cbOrders:       b.orders,
		cbCancel:       b.cancelOrder,
		cbProfile:      b.profile,
		cbEditPhone:    b.askPhone,
		cbEditAddress:  b.askAddress,
		cbAbortInput:   b.abortInput,
	}
	staff := map[string]tele.HandlerFunc{
		cbAdmin:       b.admin,
		cbAdminOrders: b.adminOrders,
		cbAdminOrder:  b.adminOrder,
		cbAdminStatus: b.adminStatus,
		cbInventory:   b.inventory,
		cbStock:       b.askStock,
	}
	for key, h := range customer {
		b.mustRegisterCallback(key, h)
	}
	for key, h := range staff {
		b.mustRegisterCallback(key, b.staff(h))
	}
}

// mustRegisterCallback panics on a wiring mistake so a button is never left unrouted.
func (b *Bot) mustRegisterCallback(key string, h tele.HandlerFunc) {
	if err := b.reg.RegisterCallback(key, h); err != nil {
		panic(fmt.Sprintf("bot: register callback %q: %v", key, err))
	}
}

func (b *Bot) registerSteps() {
	b.fsm.Handle(StateAwaitingPhone, b.onPhone)
	b.fsm.Handle(StateAwaitingAddress, b.onAddress)
	b.fsm.Handle(StateAwaitingQuantity, b.onQuantity)
	b.fsm.Handle(StateAwaitingStock, b.onStock)
}
