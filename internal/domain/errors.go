package domain

import (
	"errors"
	"fmt"
)

// Code classifies domain failures. Handlers map codes to user-facing replies
// and the router logs them as err_code.
type Code string

const (
	CodeNotFound          Code = "NOT_FOUND"
	CodeNotRegistered     Code = "NOT_REGISTERED"
	CodePhoneInUse        Code = "PHONE_IN_USE"
	CodeInvalidPhone      Code = "INVALID_PHONE"
	CodeInvalidAddress    Code = "INVALID_ADDRESS"
	CodeInvalidQuantity   Code = "INVALID_QUANTITY"
	CodeInvalidDelivery   Code = "INVALID_DELIVERY"
	CodeInvalidStatus     Code = "INVALID_STATUS"
	CodeInvalidStock      Code = "INVALID_STOCK"
	CodeCartEmpty         Code = "CART_EMPTY"
	CodeForbidden         Code = "FORBIDDEN"
	CodeInvalidTransition Code = "INVALID_TRANSITION"
	CodeDuplicateNumber   Code = "DUPLICATE_ORDER_NUMBER"
)

// Error is a typed domain failure.
type Error struct {
	Kind   Code
	Entity string
	Msg    string
	Err    error
}

func (e *Error) Error() string {
	msg := e.Msg
	if msg == "" {
		msg = string(e.Kind)
		if e.Entity != "" {
			msg = e.Entity + " " + msg
		}
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

func (e *Error) Unwrap() error { return e.Err }

// Code exposes the classification for log enrichment.
func (e *Error) Code() string { return string(e.Kind) }

// Is matches errors carrying the same code; Entity is compared only when the target sets it.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	if t.Kind != e.Kind {
		return false
	}
	return t.Entity == "" || t.Entity == e.Entity
}

// Sentinels for errors.Is checks.
var (
	ErrNotFound          = &Error{Kind: CodeNotFound}
	ErrNotRegistered     = &Error{Kind: CodeNotRegistered, Msg: "customer is not registered"}
	ErrPhoneInUse        = &Error{Kind: CodePhoneInUse, Msg: "phone number already in use"}
	ErrInvalidPhone      = &Error{Kind: CodeInvalidPhone, Msg: "invalid phone number"}
	ErrInvalidAddress    = &Error{Kind: CodeInvalidAddress, Msg: "address is too short"}
	ErrInvalidQuantity   = &Error{Kind: CodeInvalidQuantity, Msg: "quantity is out of range"}
	ErrInvalidStock      = &Error{Kind: CodeInvalidStock, Msg: "stock is out of range"}
	ErrCartEmpty         = &Error{Kind: CodeCartEmpty, Msg: "cart is empty"}
	ErrForbidden         = &Error{Kind: CodeForbidden, Msg: "order belongs to another customer"}
	ErrInvalidTransition = &Error{Kind: CodeInvalidTransition, Msg: "order can no longer be cancelled"}
	ErrDuplicateNumber   = &Error{Kind: CodeDuplicateNumber, Msg: "order number already exists"}
)

// NotFound builds a not-found error for entity, wrapping the storage cause.
func NotFound(entity string, cause error) error {
	return &Error{Kind: CodeNotFound, Entity: entity, Err: cause}
}

// CodeOf returns the domain code of err or an empty code.
func CodeOf(err error) Code {
	var de *Error
	if errors.As(err, &de) {
		return de.Kind
	}
	return ""
}

// IsNotFound reports whether err is a not-found domain error, optionally for entity.
func IsNotFound(err error, entity ...string) bool {
	target := &Error{Kind: CodeNotFound}
	if len(entity) > 0 {
		target.Entity = entity[0]
	}
	return errors.Is(err, target)
}
