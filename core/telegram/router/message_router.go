package router

import (
	"github.com/m3rciful/storebot/core/metrics"
	tg "github.com/m3rciful/storebot/core/telegram"

	tele "gopkg.in/telebot.v4"
)

// FSM routes replies of users with an active conversation state.
type FSM interface {
	InProgress(c tele.Context) bool
	Dispatch(c tele.Context) error
}

// TextOptions controls fallback behaviour for text, contact and document updates.
type TextOptions struct {
	UnknownText     tele.HandlerFunc
	UnknownDocument tele.HandlerFunc
	Metrics         *metrics.Updates
}

// TextRoutes builds the text, contact and document routes. Active
// conversations take precedence over command aliases and fallbacks.
func TextRoutes(fsm FSM, reg *tg.Registry, opts TextOptions) []tg.Route {
	inConversation := func(c tele.Context) bool {
		return fsm != nil && fsm.InProgress(c)
	}

	text := func(c tele.Context) error {
		if inConversation(c) {
			return newSummary("text", "fsm", opts.Metrics).run(c, func() error { return fsm.Dispatch(c) })
		}
		if reg != nil {
			if key, cmd, ok := reg.LookupCommand(c.Text()); ok && cmd.Handler != nil && !cmd.ManagerOnly {
				return newSummary("text", normalizeHandlerName(key), opts.Metrics).run(c, func() error { return cmd.Handler(c) })
			}
			if fb := reg.TextFallback(); fb != nil {
				return newSummary("text", "fallback", opts.Metrics).run(c, func() error { return fb(c) })
			}
		}
		if opts.UnknownText != nil {
			return newSummary("text", "unknown_text", opts.Metrics).run(c, func() error { return opts.UnknownText(c) })
		}
		s := newSummary("text", "unknown_text", opts.Metrics)
		s.status = "skip"
		s.log(c, nil)
		return nil
	}

	contact := func(c tele.Context) error {
		if inConversation(c) {
			return newSummary("contact", "fsm_contact", opts.Metrics).run(c, func() error { return fsm.Dispatch(c) })
		}
		return text(c)
	}

	document := func(c tele.Context) error {
		if inConversation(c) {
			return newSummary("document", "fsm_document", opts.Metrics).run(c, func() error { return fsm.Dispatch(c) })
		}
		if opts.UnknownDocument != nil {
			return newSummary("document", "unexpected_document", opts.Metrics).run(c, func() error { return opts.UnknownDocument(c) })
		}
		s := newSummary("document", "unexpected_document", opts.Metrics)
		s.status = "skip"
		s.log(c, nil)
		return nil
	}

	return []tg.Route{
		{Endpoint: tele.OnText, Handler: text},
		{Endpoint: tele.OnContact, Handler: contact},
		{Endpoint: tele.OnDocument, Handler: document},
	}
}

// InlineRoute wraps the inline query handler with logging and metrics.
func InlineRoute(h tele.HandlerFunc, m *metrics.Updates) tg.Route {
	return tg.Route{
		Endpoint: tele.OnQuery,
		Handler: func(c tele.Context) error {
			return newSummary("inline_query", "inline_search", m).run(c, func() error { return h(c) })
		},
	}
}
