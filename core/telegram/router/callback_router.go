package router

import (
	"log/slog"

	"github.com/m3rciful/storebot/core/metrics"
	tg "github.com/m3rciful/storebot/core/telegram"
	tgcallbacks "github.com/m3rciful/storebot/core/telegram/callbacks"

	tele "gopkg.in/telebot.v4"
)

// CallbackOptions customises callback routing.
type CallbackOptions struct {
	NotFound tele.HandlerFunc
	Metrics  *metrics.Updates
}

// CallbackRoute routes every callback through the registry by its unique key.
func CallbackRoute(reg *tg.Registry, opts CallbackOptions) tg.Route {
	handler := func(c tele.Context) error {
		cb := c.Callback()
		if cb == nil {
			return nil
		}
		key, _ := tgcallbacks.ParseCallbackData(cb)
		s := newSummary("callback", "callback."+normalizeHandlerName(key), opts.Metrics, slog.String("cb_key", key))

		h, ok := reg.GetCallback(key)
		if !ok {
			h = reg.CallbackNotFound()
			if h == nil {
				h = opts.NotFound
			}
			s.extras = append(s.extras, slog.String("reason", "not_found"))
		} else {
			// Acknowledge so the client stops the spinner; handlers may still answer with text.
			defer func() { _ = c.Respond() }()
		}
		if h == nil {
			s.status = "skip"
			s.log(c, nil)
			return nil
		}
		return s.run(c, func() error { return h(c) })
	}
	return tg.Route{Endpoint: tele.OnCallback, Handler: handler}
}
