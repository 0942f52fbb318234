package middleware

import tele "gopkg.in/telebot.v4"

const countersKey = "reply_counters"

type replyCounters struct {
	messages int
	keyboard bool
}

// countingContext counts successful replies sent through the wrapped context.
type countingContext struct {
	tele.Context
	counters *replyCounters
}

func (m countingContext) track(err error, opts []any) error {
	if err != nil {
		return err
	}
	m.counters.messages++
	for _, o := range opts {
		switch v := o.(type) {
		case *tele.SendOptions:
			m.counters.keyboard = m.counters.keyboard || (v != nil && v.ReplyMarkup != nil)
		case *tele.ReplyMarkup:
			m.counters.keyboard = m.counters.keyboard || v != nil
		}
	}
	return nil
}

func (m countingContext) Send(what any, opts ...any) error {
	return m.track(m.Context.Send(what, opts...), opts)
}

func (m countingContext) Reply(what any, opts ...any) error {
	return m.track(m.Context.Reply(what, opts...), opts)
}

func (m countingContext) Edit(what any, opts ...any) error {
	return m.track(m.Context.Edit(what, opts...), opts)
}

func (m countingContext) EditOrSend(what any, opts ...any) error {
	return m.track(m.Context.EditOrSend(what, opts...), opts)
}

func (m countingContext) EditOrReply(what any, opts ...any) error {
	return m.track(m.Context.EditOrReply(what, opts...), opts)
}

// MessageMetricsMiddleware counts replies and keyboard usage per update.
func MessageMetricsMiddleware(next tele.HandlerFunc) tele.HandlerFunc {
	return func(c tele.Context) error {
		counters := &replyCounters{}
		c.Set(countersKey, counters)
		return next(countingContext{Context: c, counters: counters})
	}
}

// GetCounters returns replies sent so far and whether any carried a keyboard.
func GetCounters(c tele.Context) (int, bool) {
	if rc, ok := c.Get(countersKey).(*replyCounters); ok && rc != nil {
		return rc.messages, rc.keyboard
	}
	return 0, false
}
