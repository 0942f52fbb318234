package bot

import (
	"errors"
	"log/slog"
	"strings"

	"github.com/m3rciful/storebot/core/logger"
	tghelpers "github.com/m3rciful/storebot/core/telegram/helpers"
	"github.com/m3rciful/storebot/core/telegram/keyboard"
	"github.com/m3rciful/storebot/core/telegram/state"
	"github.com/m3rciful/storebot/internal/domain"
	"github.com/m3rciful/storebot/internal/shop"

	tele "gopkg.in/telebot.v4"
)

// start greets returning customers and walks new ones through phone then address.
func (b *Bot) start(c tele.Context) error {
	ctx := tghelpers.BuildContext(c)
	cust, err := b.shop.Welcome(ctx, tghelpers.SenderID(c))
	switch {
	case errors.Is(err, domain.ErrNotRegistered):
		first, _ := tghelpers.SenderNames(c)
		if err := b.fsm.Enter(c, StateAwaitingPhone, 0); err != nil {
			return err
		}
		return tghelpers.SendMDV2(c, welcomeNew(first), keyboard.ContactRequest(labelContact))
	case err != nil:
		return b.fail(c, err)
	case cust.Address == "":
		if err := b.fsm.Enter(c, StateAwaitingAddress, 0); err != nil {
			return err
		}
		return tghelpers.SendText(c, msgAskAddress, keyboard.RemoveKeyboard())
	}
	if err := b.fsm.Reset(c); err != nil {
		return err
	}
	if err := tghelpers.SendMDV2(c, welcomeBack(cust), mainReplyKeyboard()); err != nil {
		return err
	}
	return tghelpers.SendText(c, msgChooseAction, mainMenu())
}

func (b *Bot) menu(c tele.Context) error {
	return tghelpers.SendText(c, msgChooseAction, mainMenu())
}

func (b *Bot) profile(c tele.Context) error {
	cust, err := b.shop.Profile(tghelpers.BuildContext(c), tghelpers.SenderID(c))
	if err != nil {
		return b.fail(c, err)
	}
	return tghelpers.SendMDV2(c, profileText(cust), profileMenu())
}

func (b *Bot) askPhone(c tele.Context) error {
	if err := b.fsm.Enter(c, StateAwaitingPhone, 0); err != nil {
		return err
	}
	return tghelpers.SendText(c, msgAskPhone, keyboard.ContactRequest(labelContact))
}

func (b *Bot) askAddress(c tele.Context) error {
	if _, err := b.shop.Profile(tghelpers.BuildContext(c), tghelpers.SenderID(c)); err != nil {
		return b.fail(c, err)
	}
	if err := b.fsm.Enter(c, StateAwaitingAddress, 0); err != nil {
		return err
	}
	return tghelpers.SendText(c, msgAskAddress, abortMenu())
}

// abortInput leaves any conversation step.
func (b *Bot) abortInput(c tele.Context) error {
	if err := b.fsm.Reset(c); err != nil {
		return err
	}
	return tghelpers.SendText(c, msgInputCancelled, mainReplyKeyboard())
}

// leaveStep lets menu labels escape a pending step instead of being read as input.
func (b *Bot) leaveStep(c tele.Context) (bool, error) {
	if !isMenuLabel(c.Text()) {
		return false, nil
	}
	if err := b.fsm.Reset(c); err != nil {
		return true, err
	}
	_, cmd, ok := b.reg.LookupCommand(strings.TrimSpace(c.Text()))
	if !ok || cmd.Handler == nil {
		return true, nil
	}
	return true, cmd.Handler(c)
}

func (b *Bot) onPhone(c tele.Context, _ state.Session) error {
	if left, err := b.leaveStep(c); left {
		return err
	}
	raw := c.Text()
	if contact := c.Message().Contact; contact != nil {
		if contact.UserID != 0 && contact.UserID != tghelpers.SenderID(c) {
			return tghelpers.SendText(c, msgForeignContact)
		}
		raw = contact.PhoneNumber
	}
	first, last := tghelpers.SenderNames(c)
	ctx := tghelpers.BuildContext(c)
	cust, created, err := b.shop.RegisterPhone(ctx, shop.Identity{
		TelegramID: tghelpers.SenderID(c),
		FirstName:  first,
		LastName:   last,
	}, raw)
	if err != nil {
		return b.fail(c, err)
	}
	logger.Debug(ctx, logger.CompTelegram, "register.phone", slog.Bool("created", created))
	if cust.Address == "" {
		if err := b.fsm.Enter(c, StateAwaitingAddress, 0); err != nil {
			return err
		}
		return tghelpers.SendText(c, "✅ Phone saved. "+msgAskAddress, keyboard.RemoveKeyboard())
	}
	if err := b.fsm.Reset(c); err != nil {
		return err
	}
	return tghelpers.SendText(c, "✅ Phone updated.", mainReplyKeyboard())
}

func (b *Bot) onAddress(c tele.Context, _ state.Session) error {
	if left, err := b.leaveStep(c); left {
		return err
	}
	cust, err := b.shop.RegisterAddress(tghelpers.BuildContext(c), tghelpers.SenderID(c), c.Text())
	if err != nil {
		return b.fail(c, err)
	}
	if err := b.fsm.Reset(c); err != nil {
		return err
	}
	if err := tghelpers.SendMDV2(c, registrationComplete(cust), mainReplyKeyboard()); err != nil {
		return err
	}
	return tghelpers.SendText(c, msgChooseAction, mainMenu())
}
