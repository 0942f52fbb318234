package telegram

import (
	"fmt"
	"strings"
	"time"

	tele "gopkg.in/telebot.v4"

	coreconfig "github.com/m3rciful/storebot/core/config"
)

const defaultLongPollTimeout = 10 * time.Second

// PollerOptions configures BuildPoller.
type PollerOptions struct {
	RunMode                string
	LongPollTimeoutSeconds int
	WebhookURL             string
	SecretToken            string
	AllowedUpdates         []string
}

// BuildPoller returns a long poller, or a WebhookPoller whose updates arrive
// through UpdateProcessor from the HTTP listener.
func BuildPoller(opts PollerOptions) tele.Poller {
	if strings.EqualFold(strings.TrimSpace(opts.RunMode), coreconfig.RunModeWebhook) {
		return &WebhookPoller{
			URL:            opts.WebhookURL,
			SecretToken:    opts.SecretToken,
			AllowedUpdates: opts.AllowedUpdates,
		}
	}
	timeout := defaultLongPollTimeout
	if opts.LongPollTimeoutSeconds > 0 {
		timeout = time.Duration(opts.LongPollTimeoutSeconds) * time.Second
	}
	return &tele.LongPoller{Timeout: timeout, AllowedUpdates: opts.AllowedUpdates}
}

// WebhookPoller registers the public webhook URL and idles until the bot stops.
type WebhookPoller struct {
	URL            string
	SecretToken    string
	AllowedUpdates []string
	// SetWebhook overrides the Bot API call, for tests.
	SetWebhook func(b *tele.Bot, w *tele.Webhook) error

	err error
}

// Poll implements tele.Poller.
func (p *WebhookPoller) Poll(b *tele.Bot, _ chan tele.Update, stop chan struct{}) {
	set := p.SetWebhook
	if set == nil {
		set = func(b *tele.Bot, w *tele.Webhook) error { return b.SetWebhook(w) }
	}
	hook := &tele.Webhook{
		SecretToken:    p.SecretToken,
		AllowedUpdates: p.AllowedUpdates,
		Endpoint:       &tele.WebhookEndpoint{PublicURL: p.URL},
	}
	if err := set(b, hook); err != nil {
		p.err = fmt.Errorf("telegram: set webhook: %w", err)
		b.OnError(p.err, nil)
	}
	<-stop
}

// Err returns the SetWebhook failure, if any.
func (p *WebhookPoller) Err() error { return p.err }
