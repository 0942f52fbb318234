package telegram

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	tele "gopkg.in/telebot.v4"

	"github.com/m3rciful/storebot/core/telegram/commands"
)

func newProcessorBot(t *testing.T) (*tele.Bot, *UpdateProcessor, *[]error) {
	t.Helper()
	p := NewUpdateProcessor()
	var dropped []error
	b, err := tele.NewBot(tele.Settings{Offline: true, Synchronous: true, OnError: p.CaptureError})
	require.NoError(t, err)
	p.Attach(b, func(err error, _ tele.Context) { dropped = append(dropped, err) })
	return b, p, &dropped
}

func TestUpdateProcessorReturnsHandlerError(t *testing.T) {
	b, p, dropped := newProcessorBot(t)
	boom := errors.New("boom")
	b.Handle(tele.OnText, func(c tele.Context) error {
		if c.Text() == "fail" {
			return boom
		}
		return nil
	})

	msg := func(id int, text string) tele.Update {
		return tele.Update{ID: id, Message: &tele.Message{Text: text, Sender: &tele.User{ID: 1}, Chat: &tele.Chat{ID: 1}}}
	}
	require.NoError(t, p.Process(context.Background(), msg(1, "ok")))
	assert.ErrorIs(t, p.Process(context.Background(), msg(2, "fail")), boom)
	require.NoError(t, p.Process(context.Background(), msg(3, "ok")), "errors must not leak between updates")

	b.ProcessUpdate(msg(4, "fail"))
	assert.Equal(t, []error{boom}, *dropped, "untracked errors go to the fallback")
}

func TestUpdateProcessorNotReady(t *testing.T) {
	p := NewUpdateProcessor()
	assert.ErrorIs(t, p.Process(context.Background(), tele.Update{ID: 1}), ErrNotReady)
}

func TestBuildPoller(t *testing.T) {
	lp, ok := BuildPoller(PollerOptions{RunMode: "longpoll"}).(*tele.LongPoller)
	require.True(t, ok)
	assert.Equal(t, 10*time.Second, lp.Timeout)

	wp, ok := BuildPoller(PollerOptions{RunMode: "webhook", WebhookURL: "https://shop.example/webhook", SecretToken: "s3"}).(*WebhookPoller)
	require.True(t, ok)
	assert.Equal(t, "https://shop.example/webhook", wp.URL)
}

func TestWebhookPollerRegistersAndBlocks(t *testing.T) {
	b, err := tele.NewBot(tele.Settings{Offline: true})
	require.NoError(t, err)

	var got *tele.Webhook
	p := &WebhookPoller{
		URL:         "https://shop.example/webhook",
		SecretToken: "s3",
		SetWebhook: func(_ *tele.Bot, w *tele.Webhook) error {
			got = w
			return nil
		},
	}
	stop := make(chan struct{})
	done := make(chan struct{})
	go func() {
		p.Poll(b, nil, stop)
		close(done)
	}()

	select {
	case <-done:
		t.Fatal("poller returned before stop")
	case <-time.After(20 * time.Millisecond):
	}
	close(stop)
	<-done

	require.NotNil(t, got)
	assert.Equal(t, "https://shop.example/webhook", got.Endpoint.PublicURL)
	assert.Equal(t, "s3", got.SecretToken)
	assert.NoError(t, p.Err())
}

func TestRegistry(t *testing.T) {
	reg := NewRegistry()
	noop := func(tele.Context) error { return nil }
	reg.RegisterCommand("/start", commands.Command{Handler: noop, Description: "Start"})
	reg.RegisterCommand("/admin", commands.Command{Handler: noop, Description: "Admin", ManagerOnly: true})
	reg.RegisterCommand("cart", commands.Command{Handler: noop, Description: "Cart"})
	reg.RegisterCommand("/cart", commands.Command{Handler: noop, Description: "Cart", Aliases: []string{"🛒 Cart"}})

	visible := reg.ListCommands(true)
	require.Len(t, visible, 2)
	assert.Equal(t, "cart", visible[0].Text)
	assert.Equal(t, "start", visible[1].Text)
	assert.Len(t, reg.ListCommands(false), 3)

	key, _, ok := reg.LookupCommand("🛒 Cart")
	assert.True(t, ok)
	assert.Equal(t, "/cart", key)
	key, _, ok = reg.LookupCommand("start")
	assert.True(t, ok)
	assert.Equal(t, "/start", key)
	_, _, ok = reg.LookupCommand("")
	assert.False(t, ok)
}
