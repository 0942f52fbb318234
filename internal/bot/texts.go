package bot

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/m3rciful/storebot/core/telegram/format"
	"github.com/m3rciful/storebot/internal/domain"
)

// Reply keyboard labels. Each one is an alias of a slash command.
const (
	labelMenu    = "🏠 Menu"
	labelCatalog = "🗂 Catalog"
	labelCart    = "🛒 Cart"
	labelOrders  = "📦 My orders"
	labelProfile = "👤 Profile"
	labelContact = "📱 Share phone number"
)

var menuLabels = map[string]struct{}{
	labelMenu: {}, labelCatalog: {}, labelCart: {}, labelOrders: {}, labelProfile: {},
}

func isMenuLabel(text string) bool {
	_, ok := menuLabels[strings.TrimSpace(text)]
	return ok
}

const (
	msgChooseAction     = "Choose an action:"
	msgAskPhone         = "Send your phone number in international format, e.g. +15551234567, or tap the button below."
	msgAskAddress       = "Now send your delivery address."
	msgNotRegistered    = "❌ Please register first with /start"
	msgPhoneInUse       = "❌ This phone number is already used by another customer."
	msgInvalidPhone     = "❌ That does not look like a phone number. Use 10 to 15 digits, optionally starting with +."
	msgForeignContact   = "❌ Please share your own contact."
	msgInvalidAddress   = "❌ The address is too short. Please send the full delivery address."
	msgInvalidQuantity  = "❌ Quantity must be a whole number from 1 to 999."
	msgInvalidStock     = "❌ Stock must be a whole number, 0 or more."
	msgCartEmpty        = "🛒 Your cart is empty"
	msgCartCleared      = "✅ Cart cleared"
	msgNoCategories     = "📭 No categories yet"
	msgNoProducts       = "📭 No products in this category"
	msgNoOrders         = "📭 You have no orders yet"
	msgProductNotFound  = "❌ Product not found"
	msgCategoryNotFound = "❌ Category not found"
	msgOrderNotFound    = "❌ Order not found"
	msgItemNotInCart    = "❌ This product is no longer in your cart"
	msgForbidden        = "❌ You cannot cancel someone else's order"
	msgNotCancellable   = "❌ This order can no longer be changed"
	msgInvalidStatus    = "❌ Unknown order status."
	msgInvalidDelivery  = "❌ Unknown delivery method"
	msgChooseDelivery   = "Choose a delivery method:"
	msgInputCancelled   = "Input cancelled."
	msgAccessDenied     = "⛔ This section is for managers only."
	msgUnknownText      = "I did not understand that. Use the menu below."
	msgUnknownDocument  = "Files are not accepted here."
	msgUnknownAction    = "This button is no longer available"
	msgSlowDown         = "Too many requests, please slow down."
	msgGenericError     = "❌ Something went wrong. Please try again later."
)

func bold(s string) string { return "*" + format.MD2(s) + "*" }

func money(d decimal.Decimal) string { return d.StringFixed(2) }

func welcomeBack(c domain.Customer) string {
	name := c.FirstName
	if name == "" {
		name = "friend"
	}
	return format.MD2(fmt.Sprintf("Welcome back, %s!", name))
}

func welcomeNew(first string) string {
	greeting := "Welcome to the store!"
	if first != "" {
		greeting = fmt.Sprintf("Welcome to the store, %s!", first)
	}
	return format.MD2(greeting + "\n\n" + msgAskPhone)
}

func profileText(c domain.Customer) string {
	var sb strings.Builder
	sb.WriteString(bold("👤 Profile") + "\n\n")
	fmt.Fprintf(&sb, "Name: %s\n", format.MD2(orDash(c.FullName())))
	fmt.Fprintf(&sb, "Phone: %s\n", format.MD2(orDash(c.Phone)))
	fmt.Fprintf(&sb, "Address: %s", format.MD2(orDash(c.Address)))
	return sb.String()
}

func registrationComplete(c domain.Customer) string {
	return format.MD2("✅ Registration complete!") + "\n\n" + profileText(c)
}

func productCaption(p domain.Product) string {
	desc := format.DerefString(p.Description, "No description")
	var sb strings.Builder
	sb.WriteString("📦 " + bold(p.Title) + "\n")
	sb.WriteString(format.MD2("💰 Price: "+money(p.Price)) + "\n")
	sb.WriteString(format.MD2("📝 "+desc) + "\n")
	sb.WriteString(format.MD2(fmt.Sprintf("🏷 In stock: %d", p.Stock)))
	return sb.String()
}

func addedText(title string, qty int) string {
	return format.MD2("✅ ") + bold(title) + format.MD2(fmt.Sprintf(" added to cart (%d pcs)", qty))
}

func cartText(v domain.CartView) string {
	var sb strings.Builder
	sb.WriteString(bold("🛒 Your cart:") + "\n\n")
	for i, l := range v.Lines {
		fmt.Fprintf(&sb, "%s\n", format.MD2(fmt.Sprintf("%d. %s: %s × %d = %s",
			i+1, l.Title, money(l.Price), l.Quantity, money(l.Subtotal()))))
	}
	sb.WriteString("\n" + format.MD2(fmt.Sprintf("Total items: %d, sum: %s", v.TotalItems, money(v.TotalPrice))))
	return sb.String()
}

func orderCreatedText(o domain.OrderSummary) string {
	var sb strings.Builder
	sb.WriteString(format.MD2("✅ Order created.") + "\n\n")
	fmt.Fprintf(&sb, "Order number: %s\n", bold(o.Number))
	fmt.Fprintf(&sb, "%s\n", format.MD2("🏠 Address: "+orDash(o.Address)))
	fmt.Fprintf(&sb, "%s\n", format.MD2("🚚 Delivery: "+o.DeliveryMethod.Display()))
	fmt.Fprintf(&sb, "%s", format.MD2(fmt.Sprintf("🛍 Items: %d, sum: %s", o.TotalItems, money(o.TotalPrice))))
	return sb.String()
}

func orderText(o domain.OrderSummary) string {
	var sb strings.Builder
	sb.WriteString("📦 " + bold("Order "+o.Number) + "\n\n")
	fmt.Fprintf(&sb, "%s\n", format.MD2("🏠 Address: "+orDash(o.Address)))
	fmt.Fprintf(&sb, "%s\n", format.MD2("🚚 Delivery: "+o.DeliveryMethod.Display()))
	fmt.Fprintf(&sb, "%s\n", format.MD2(fmt.Sprintf("🛍 Items: %d pcs", o.TotalItems)))
	fmt.Fprintf(&sb, "%s\n", format.MD2("💰 Sum: "+money(o.TotalPrice)))
	fmt.Fprintf(&sb, "%s", format.MD2("🛃 Status: "+o.Status.Display()))
	return sb.String()
}

func orderDetailText(d domain.OrderDetail) string {
	var sb strings.Builder
	sb.WriteString(orderText(d.Summary) + "\n\n")
	sb.WriteString(bold("Customer") + "\n")
	fmt.Fprintf(&sb, "%s\n", format.MD2(orDash(d.Customer.FullName())))
	fmt.Fprintf(&sb, "%s\n\n", format.MD2("📞 "+orDash(d.Customer.Phone)))
	sb.WriteString(bold("Items") + "\n")
	for _, l := range d.Lines {
		fmt.Fprintf(&sb, "%s\n", format.MD2(fmt.Sprintf("• %s × %d = %s", l.Title, l.Quantity, money(l.Subtotal()))))
	}
	return strings.TrimRight(sb.String(), "\n")
}

func statusNotice(o domain.Order) string {
	return format.MD2("📬 Your order ") + bold(o.Number) + format.MD2(" is now: "+o.Status.Display())
}

func inventoryText(products []domain.Product) string {
	if len(products) == 0 {
		return format.MD2("📭 The catalog is empty")
	}
	var sb strings.Builder
	sb.WriteString(bold("📦 Inventory") + "\n\n")
	for _, p := range products {
		fmt.Fprintf(&sb, "%s\n", format.MD2(fmt.Sprintf("%d. %s: %d in stock", p.ID, p.Title, p.Stock)))
	}
	return strings.TrimRight(sb.String(), "\n")
}

func orDash(s string) string {
	if strings.TrimSpace(s) == "" {
		return "—"
	}
	return s
}
