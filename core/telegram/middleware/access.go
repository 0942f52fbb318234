package middleware

import (
	"context"
	"log/slog"

	"github.com/m3rciful/storebot/core/logger"
	tghelpers "github.com/m3rciful/storebot/core/telegram/helpers"

	tele "gopkg.in/telebot.v4"
)

// ManagerChecker resolves staff membership by Telegram id.
type ManagerChecker interface {
	IsManager(ctx context.Context, telegramID int64) (bool, error)
}

// ManagerOptions configures ManagerOnly.
type ManagerOptions struct {
	Checker  ManagerChecker
	OnReject tele.HandlerFunc
}

// ManagerOnly lets only staff members reach next. Lookup failures are treated as a rejection.
func ManagerOnly(opts ManagerOptions) tele.MiddlewareFunc {
	return func(next tele.HandlerFunc) tele.HandlerFunc {
		return func(c tele.Context) error {
			ctx := tghelpers.BuildContext(c)
			ok := false
			if opts.Checker != nil {
				var err error
				ok, err = opts.Checker.IsManager(ctx, tghelpers.SenderID(c))
				if err != nil {
					logger.Error(ctx, logger.CompTelegram, "access.check", slog.String("status", "fail"), slog.Any("err", err))
				}
			}
			if ok {
				return next(c)
			}
			logger.Info(ctx, logger.CompTelegram, "access.denied", slog.String("outcome", "rejected"))
			if opts.OnReject != nil {
				return opts.OnReject(c)
			}
			return nil
		}
	}
}
