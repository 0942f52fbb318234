package state

import (
	"errors"
	"log/slog"

	"github.com/m3rciful/storebot/core/logger"
	tghelpers "github.com/m3rciful/storebot/core/telegram/helpers"

	tele "gopkg.in/telebot.v4"
)

const sessionKey = "fsm_session"

// Handler consumes a reply sent while the user is in the session's state.
type Handler func(c tele.Context, s Session) error

// Machine routes replies to the handler of the sender's current state.
type Machine struct {
	store    Store
	handlers map[State]Handler
}

// NewMachine returns a machine backed by store.
func NewMachine(store Store) *Machine {
	return &Machine{store: store, handlers: make(map[State]Handler)}
}

// Handle registers h for st. Registering twice replaces the handler.
func (m *Machine) Handle(st State, h Handler) {
	if h == nil || st == StateIdle {
		return
	}
	m.handlers[st] = h
}

// Session returns the sender's session; missing sessions and store failures read as idle.
func (m *Machine) Session(c tele.Context) Session {
	if s, ok := c.Get(sessionKey).(Session); ok {
		return s
	}
	ctx := tghelpers.BuildContext(c)
	s, err := m.store.Get(ctx, tghelpers.SenderID(c))
	switch {
	case errors.Is(err, ErrNoSession):
		s = Idle()
	case err != nil:
		logger.Warn(ctx, logger.CompSession, "session.get", slog.String("status", "fail"), slog.Any("err", err))
		s = Idle()
	}
	c.Set(sessionKey, s)
	return s
}

// Enter moves the sender to st about subject.
func (m *Machine) Enter(c tele.Context, st State, subject int64) error {
	s := Session{State: st, Subject: subject}
	ctx := tghelpers.BuildContext(c)
	if err := m.store.Set(ctx, tghelpers.SenderID(c), s); err != nil {
		return err
	}
	c.Set(sessionKey, s)
	logger.Debug(ctx, logger.CompSession, "session.enter", slog.String("state", string(st)), slog.Int64("subject", subject))
	return nil
}

// Reset returns the sender to idle.
func (m *Machine) Reset(c tele.Context) error {
	ctx := tghelpers.BuildContext(c)
	if err := m.store.Clear(ctx, tghelpers.SenderID(c)); err != nil {
		return err
	}
	c.Set(sessionKey, Idle())
	return nil
}

// InProgress reports whether the sender has an active state with a registered handler.
func (m *Machine) InProgress(c tele.Context) bool {
	s := m.Session(c)
	_, ok := m.handlers[s.State]
	return s.Active() && ok
}

// Dispatch runs the handler of the sender's current state.
func (m *Machine) Dispatch(c tele.Context) error {
	s := m.Session(c)
	h, ok := m.handlers[s.State]
	if !ok {
		return nil
	}
	logger.Debug(tghelpers.BuildContext(c), logger.CompSession, "session.dispatch", slog.String("state", string(s.State)))
	return h(c, s)
}
