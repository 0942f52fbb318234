package bot

import (
	tghelpers "github.com/m3rciful/storebot/core/telegram/helpers"
	"github.com/m3rciful/storebot/core/telegram/ui"

	tele "gopkg.in/telebot.v4"
)

type fallbacks struct{}

// Fallbacks returns the replies for updates no route claims.
func (b *Bot) Fallbacks() ui.FallbackProvider { return fallbacks{} }

func (fallbacks) UnknownText() tele.HandlerFunc {
	return func(c tele.Context) error {
		return tghelpers.SendText(c, msgUnknownText, mainReplyKeyboard())
	}
}

func (fallbacks) UnknownDocument() tele.HandlerFunc {
	return func(c tele.Context) error {
		return tghelpers.SendText(c, msgUnknownDocument)
	}
}

func (fallbacks) UnknownCallback() tele.HandlerFunc {
	return func(c tele.Context) error {
		return c.Respond(&tele.CallbackResponse{Text: msgUnknownAction})
	}
}

// RateLimited answers updates dropped by the rate limiter.
func (b *Bot) RateLimited(c tele.Context) error {
	if c.Callback() != nil {
		return c.Respond(&tele.CallbackResponse{Text: msgSlowDown})
	}
	return tghelpers.SendText(c, msgSlowDown)
}
