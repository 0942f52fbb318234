// Package state keeps a per-user conversation state and routes free-form
// replies to the handler registered for it. Sessions live in a Store so the
// bot can run against process memory or Redis.
package state

import (
	"context"
	"errors"
	"time"
)

// State names a conversation step.
type State string

// StateIdle means no conversation is in progress.
const StateIdle State = "idle"

// Session is the tagged conversation state of one user. Subject carries the
// entity the step is about (e.g. a product id) and is zero when unused.
type Session struct {
	State     State     `json:"state"`
	Subject   int64     `json:"subject,omitempty"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Active reports whether the session awaits input.
func (s Session) Active() bool {
	return s.State != "" && s.State != StateIdle
}

// Idle returns the empty session.
func Idle() Session { return Session{State: StateIdle} }

// ErrNoSession is returned by stores when a user has no session.
var ErrNoSession = errors.New("state: no session")

// Store persists sessions keyed by Telegram user id.
type Store interface {
	Get(ctx context.Context, userID int64) (Session, error)
	Set(ctx context.Context, userID int64, s Session) error
	Clear(ctx context.Context, userID int64) error
}
