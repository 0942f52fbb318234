package bot

import (
	"log/slog"

	"github.com/m3rciful/storebot/core/logger"
	tghelpers "github.com/m3rciful/storebot/core/telegram/helpers"
	"github.com/m3rciful/storebot/internal/domain"

	tele "gopkg.in/telebot.v4"
)

// userMessage maps a domain failure to the reply shown to the user.
// Unknown errors map to an empty string.
func userMessage(err error) string {
	switch domain.CodeOf(err) {
	case domain.CodeNotRegistered:
		return msgNotRegistered
	case domain.CodePhoneInUse:
		return msgPhoneInUse
	case domain.CodeInvalidPhone:
		return msgInvalidPhone
	case domain.CodeInvalidAddress:
		return msgInvalidAddress
	case domain.CodeInvalidQuantity:
		return msgInvalidQuantity
	case domain.CodeInvalidStock:
		return msgInvalidStock
	case domain.CodeInvalidDelivery:
		return msgInvalidDelivery
	case domain.CodeCartEmpty:
		return msgCartEmpty
	case domain.CodeForbidden:
		return msgForbidden
	case domain.CodeInvalidTransition:
		return msgNotCancellable
	case domain.CodeInvalidStatus:
		return msgInvalidStatus
	case domain.CodeNotFound:
		switch {
		case domain.IsNotFound(err, "product"):
			return msgProductNotFound
		case domain.IsNotFound(err, "category"):
			return msgCategoryNotFound
		case domain.IsNotFound(err, "order"):
			return msgOrderNotFound
		case domain.IsNotFound(err, "cart"), domain.IsNotFound(err, "cart_item"):
			return msgItemNotInCart
		}
		return msgGenericError
	}
	return ""
}

// fail answers the user for err. Expected domain failures are reported and
// swallowed; anything else gets an apology and is returned for the router to log.
func (b *Bot) fail(c tele.Context, err error) error {
	ctx := tghelpers.BuildContext(c)
	if msg := userMessage(err); msg != "" {
		logger.Info(ctx, logger.CompTelegram, "handler.rejected",
			slog.String("err_code", string(domain.CodeOf(err))),
			slog.String("err", logger.SanitizeLimit(err.Error(), 256)),
		)
		return tghelpers.SendText(c, msg)
	}
	if sendErr := tghelpers.SendText(c, msgGenericError); sendErr != nil {
		logger.Warn(ctx, logger.CompTelegram, "reply.error", slog.Any("err", sendErr))
	}
	return err
}

// badPayload handles callbacks whose payload could not be parsed.
func (b *Bot) badPayload(c tele.Context, err error) error {
	logger.Warn(tghelpers.BuildContext(c), logger.CompTelegram, "callback.payload",
		slog.String("status", "fail"),
		slog.Any("err", err),
	)
	return c.Respond(&tele.CallbackResponse{Text: msgUnknownAction})
}
