package telegram

import (
	"context"
	"errors"
	"sync"

	tele "gopkg.in/telebot.v4"
)

// ErrNotReady is returned when an update arrives before the bot is built.
var ErrNotReady = errors.New("telegram: bot not ready")

// UpdateProcessor runs a single update synchronously and reports the error
// the handler chain produced, so the webhook can answer with it.
type UpdateProcessor struct {
	mu     sync.Mutex
	bot    *tele.Bot
	errs   map[int]error
	onDrop func(error, tele.Context)
}

// NewUpdateProcessor returns a processor; call Attach once the bot exists.
func NewUpdateProcessor() *UpdateProcessor {
	return &UpdateProcessor{errs: make(map[int]error)}
}

// Attach binds the bot. The bot must be built with Synchronous set and
// OnError pointing at CaptureError.
func (p *UpdateProcessor) Attach(b *tele.Bot, fallback func(error, tele.Context)) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.bot = b
	p.onDrop = fallback
}

// CaptureError is the bot OnError hook. Errors of updates not being
// processed by Process go to the fallback handler.
func (p *UpdateProcessor) CaptureError(err error, c tele.Context) {
	p.mu.Lock()
	if c != nil {
		if _, tracked := p.errs[c.Update().ID]; tracked {
			p.errs[c.Update().ID] = err
			p.mu.Unlock()
			return
		}
	}
	fallback := p.onDrop
	p.mu.Unlock()
	if fallback != nil {
		fallback(err, c)
	}
}

// Process dispatches upd and returns the handler error.
func (p *UpdateProcessor) Process(ctx context.Context, upd tele.Update) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	p.mu.Lock()
	b := p.bot
	if b == nil {
		p.mu.Unlock()
		return ErrNotReady
	}
	p.errs[upd.ID] = nil
	p.mu.Unlock()

	b.ProcessUpdate(upd)

	p.mu.Lock()
	defer p.mu.Unlock()
	err := p.errs[upd.ID]
	delete(p.errs, upd.ID)
	return err
}
