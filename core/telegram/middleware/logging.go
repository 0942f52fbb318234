package middleware

import (
	"log/slog"
	"sync"
	"time"

	"github.com/m3rciful/storebot/core/logger"
	tgcallbacks "github.com/m3rciful/storebot/core/telegram/callbacks"
	tghelpers "github.com/m3rciful/storebot/core/telegram/helpers"

	tele "gopkg.in/telebot.v4"
)

// seenUpdates remembers recently logged update ids so nested routes log a receipt once.
type seenUpdates struct {
	mu      sync.Mutex
	keepFor time.Duration
	ids     map[int]time.Time
}

var receipts = &seenUpdates{keepFor: 10 * time.Second, ids: make(map[int]time.Time)}

func (s *seenUpdates) firstTime(id int, now time.Time) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	for k, ts := range s.ids {
		if now.Sub(ts) > s.keepFor {
			delete(s.ids, k)
		}
	}
	if _, ok := s.ids[id]; ok {
		return false
	}
	s.ids[id] = now
	return true
}

// LoggerMiddleware sets the update rid and request context, then logs one sampled receipt line per update.
func LoggerMiddleware(next tele.HandlerFunc) tele.HandlerFunc {
	return func(c tele.Context) error {
		upd := c.Update()
		userID, chatID := tghelpers.SenderID(c), tghelpers.ChatID(c)
		rid := logger.BuildRID(upd.ID, chatID, userID)
		c.Set(tghelpers.RIDKey, rid)
		ctx := tghelpers.BuildContext(c)

		if logger.ShouldSampleDebug() && receipts.firstTime(upd.ID, time.Now()) {
			attrs := []slog.Attr{
				slog.String("status", "ok"),
				slog.String("kind", UpdateKind(upd)),
			}
			if chat := c.Chat(); chat != nil {
				attrs = append(attrs, slog.String("chat_type", string(chat.Type)))
			}
			if u := c.Sender(); u != nil && u.Username != "" {
				attrs = append(attrs, slog.String("username", logger.SanitizeLimit(u.Username, 64)))
			}
			switch {
			case upd.Callback != nil:
				key, payload := tgcallbacks.ParseCallbackData(upd.Callback)
				attrs = append(attrs,
					slog.String("cb_key", logger.SanitizeLimit(key, 128)),
					slog.String("payload", logger.SanitizeLimit(payload, 256)),
				)
			case upd.Message != nil:
				attrs = append(attrs, slog.String("payload", logger.SanitizeLimit(c.Text(), 256)))
			case upd.Query != nil:
				attrs = append(attrs, slog.String("payload", logger.SanitizeLimit(upd.Query.Text, 256)))
			}
			logger.Debug(ctx, logger.CompTelegram, "update.received", attrs...)
		}
		return next(c)
	}
}
