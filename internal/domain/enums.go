package domain

import "strings"

// DeliveryMethod enumerates how an order reaches the customer.
type DeliveryMethod string

const (
	DeliverySelfPickup  DeliveryMethod = "self_pickup"
	DeliveryPickupPoint DeliveryMethod = "pick_up_point"
	DeliveryMail        DeliveryMethod = "mail"
	DeliveryCourier     DeliveryMethod = "courier"
)

// DeliveryMethods lists methods in menu order.
var DeliveryMethods = []DeliveryMethod{
	DeliverySelfPickup,
	DeliveryPickupPoint,
	DeliveryMail,
	DeliveryCourier,
}

var deliveryNames = map[DeliveryMethod]string{
	DeliverySelfPickup:  "Self pickup",
	DeliveryPickupPoint: "Pickup point",
	DeliveryMail:        "Mail",
	DeliveryCourier:     "Courier",
}

// Valid reports whether m is a known method.
func (m DeliveryMethod) Valid() bool {
	_, ok := deliveryNames[m]
	return ok
}

// Display returns the human readable method name.
func (m DeliveryMethod) Display() string {
	if name, ok := deliveryNames[m]; ok {
		return name
	}
	return "Not specified"
}

// ParseDeliveryMethod normalizes raw input into a known method.
func ParseDeliveryMethod(raw string) (DeliveryMethod, error) {
	m := DeliveryMethod(strings.ToLower(strings.TrimSpace(raw)))
	if !m.Valid() {
		return "", &Error{Kind: CodeInvalidDelivery, Msg: "unknown delivery method " + raw}
	}
	return m, nil
}

// OrderStatus is the canonical order lifecycle.
type OrderStatus string

const (
	StatusCreated   OrderStatus = "created"
	StatusPending   OrderStatus = "pending"
	StatusDelivery  OrderStatus = "delivery"
	StatusCompleted OrderStatus = "completed"
	StatusCancelled OrderStatus = "cancelled"
)

// OrderStatuses lists statuses in workflow order.
var OrderStatuses = []OrderStatus{
	StatusCreated,
	StatusPending,
	StatusDelivery,
	StatusCompleted,
	StatusCancelled,
}

var statusNames = map[OrderStatus]string{
	StatusCreated:   "Created",
	StatusPending:   "Processing",
	StatusDelivery:  "In delivery",
	StatusCompleted: "Completed",
	StatusCancelled: "Cancelled",
}

// Valid reports whether s is a canonical status.
func (s OrderStatus) Valid() bool {
	_, ok := statusNames[s]
	return ok
}

// Display returns the human readable status.
func (s OrderStatus) Display() string {
	if name, ok := statusNames[s]; ok {
		return name
	}
	return string(s)
}

// Cancellable reports whether a customer may still cancel an order in this status.
func (s OrderStatus) Cancellable() bool {
	return s == StatusCreated || s == StatusPending
}

// ParseOrderStatus normalizes raw input into a canonical status.
func ParseOrderStatus(raw string) (OrderStatus, error) {
	s := OrderStatus(strings.ToLower(strings.TrimSpace(raw)))
	if !s.Valid() {
		return "", &Error{Kind: CodeInvalidStatus, Msg: "unknown order status " + raw}
	}
	return s, nil
}
