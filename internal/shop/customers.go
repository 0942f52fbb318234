package shop

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/m3rciful/storebot/core/logger"
	"github.com/m3rciful/storebot/internal/domain"
	"github.com/m3rciful/storebot/internal/storage"
)

// MinAddressLength is the shortest accepted delivery address after trimming.
const MinAddressLength = 6

var phonePattern = regexp.MustCompile(`^\+?[0-9]{10,15}$`)

// Identity is the Telegram profile of the caller.
type Identity struct {
	TelegramID int64
	FirstName  string
	LastName   string
}

// NormalizePhone strips separators users commonly type and validates the result.
func NormalizePhone(raw string) (string, error) {
	phone := strings.Map(func(r rune) rune {
		switch r {
		case ' ', '-', '(', ')':
			return -1
		}
		return r
	}, strings.TrimSpace(raw))
	if !phonePattern.MatchString(phone) {
		return "", domain.ErrInvalidPhone
	}
	return phone, nil
}

// Welcome returns the known customer or ErrNotRegistered on first contact.
func (s *Service) Welcome(ctx context.Context, telegramID int64) (domain.Customer, error) {
	return s.customer(ctx, telegramID)
}

// Profile returns the customer record.
func (s *Service) Profile(ctx context.Context, telegramID int64) (domain.Customer, error) {
	return s.customer(ctx, telegramID)
}

// RegisterPhone binds phone to the caller, creating the customer on first contact.
// Repeating the call for the same user only updates the phone.
func (s *Service) RegisterPhone(ctx context.Context, who Identity, raw string) (domain.Customer, bool, error) {
	phone, err := NormalizePhone(raw)
	if err != nil {
		return domain.Customer{}, false, err
	}
	taken, err := s.store.PhoneTaken(ctx, phone, who.TelegramID)
	if err != nil {
		return domain.Customer{}, false, fmt.Errorf("check phone: %w", err)
	}
	if taken {
		return domain.Customer{}, false, domain.ErrPhoneInUse
	}
	c, created, err := s.store.UpsertCustomerPhone(ctx, domain.Customer{
		FirstName:  who.FirstName,
		LastName:   who.LastName,
		Phone:      phone,
		TelegramID: who.TelegramID,
	})
	if errors.Is(err, storage.ErrDuplicate) {
		return domain.Customer{}, false, domain.ErrPhoneInUse
	}
	if err != nil {
		return domain.Customer{}, false, fmt.Errorf("save phone: %w", err)
	}
	logger.Info(ctx, compCustomers, "customer.phone",
		slog.Int64("customer_id", c.ID),
		slog.Bool("created", created),
	)
	return c, created, nil
}

// RegisterAddress stores the delivery address of an existing customer.
func (s *Service) RegisterAddress(ctx context.Context, telegramID int64, raw string) (domain.Customer, error) {
	address := strings.TrimSpace(raw)
	if utf8.RuneCountInString(address) < MinAddressLength {
		return domain.Customer{}, domain.ErrInvalidAddress
	}
	c, err := s.store.UpdateCustomerAddress(ctx, telegramID, address)
	if errors.Is(err, storage.ErrNotFound) {
		return domain.Customer{}, domain.ErrNotRegistered
	}
	if err != nil {
		return domain.Customer{}, fmt.Errorf("save address: %w", err)
	}
	logger.Info(ctx, compCustomers, "customer.address", slog.Int64("customer_id", c.ID))
	return c, nil
}
