package router

import (
	"context"
	"log/slog"

	"github.com/m3rciful/storebot/core/logger"
	"github.com/m3rciful/storebot/core/metrics"
	tg "github.com/m3rciful/storebot/core/telegram"
	"github.com/m3rciful/storebot/core/telegram/middleware"

	tele "gopkg.in/telebot.v4"
)

// CommandRouteOptions configures command routes.
type CommandRouteOptions struct {
	Managers        middleware.ManagerChecker
	OnManagerReject tele.HandlerFunc
	Metrics         *metrics.Updates
}

// CommandRoutes wraps every registered command with logging and, for
// manager-only commands, the staff check.
func CommandRoutes(reg *tg.Registry, opts CommandRouteOptions) []tg.Route {
	if reg == nil {
		return nil
	}
	gate := middleware.ManagerOnly(middleware.ManagerOptions{
		Checker:  opts.Managers,
		OnReject: opts.OnManagerReject,
	})

	cmds := reg.Commands()
	routes := make([]tg.Route, 0, len(cmds))
	for name, def := range cmds {
		h := def.Handler
		if def.ManagerOnly {
			h = gate(h)
		}
		handlerName := normalizeHandlerName(name)
		routes = append(routes, tg.Route{
			Endpoint: name,
			Handler: func(c tele.Context) error {
				return newSummary("command", handlerName, opts.Metrics).run(c, func() error { return h(c) })
			},
		})
	}

	logger.Info(context.Background(), logger.CompWire, "tg.wire",
		slog.String("status", "ok"),
		slog.Int("commands", len(cmds)),
		slog.Int("callbacks", len(reg.ListCallbacks())),
	)
	return routes
}
