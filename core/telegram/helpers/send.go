package helpers

import (
	"errors"
	"log/slog"
	"strings"
	"sync/atomic"

	"github.com/m3rciful/storebot/core/logger"
	"github.com/m3rciful/storebot/core/telegram/sender"

	tele "gopkg.in/telebot.v4"
)

var globalDispatcher atomic.Pointer[sender.Dispatcher]

// SetDispatcher wires the asynchronous sender used by helper functions. Nil sends inline.
func SetDispatcher(d *sender.Dispatcher) {
	globalDispatcher.Store(d)
}

func sendAsync(c tele.Context, action, endpoint string, run func() error) error {
	disp := globalDispatcher.Load()
	if disp == nil {
		return run()
	}

	ctx := BuildContext(c)
	err := disp.Enqueue(ctx, action, endpoint, run)
	if errors.Is(err, sender.ErrQueueFull) || errors.Is(err, sender.ErrQueueClosed) {
		logger.Warn(ctx, logger.CompTelegram, "queue.fallback",
			slog.String("action", action),
			slog.Any("err", err),
		)
		return run()
	}
	return err
}

// SendText sends text with optional options to the current chat.
func SendText(c tele.Context, text string, opts ...any) error {
	return sendAsync(c, "send.text", "sendMessage", func() error {
		return c.Send(text, opts...)
	})
}

// SendMDV2 sends a MarkdownV2 message with optional reply markup.
func SendMDV2(c tele.Context, text string, markup ...*tele.ReplyMarkup) error {
	return SendText(c, text, &tele.SendOptions{ParseMode: tele.ModeMarkdownV2, ReplyMarkup: first(markup)})
}

// SendPhoto sends a photo by URL or file id with a MarkdownV2 caption.
// When the photo is rejected the caption is sent as text instead.
func SendPhoto(c tele.Context, ref, caption string, markup ...*tele.ReplyMarkup) error {
	opts := &tele.SendOptions{ParseMode: tele.ModeMarkdownV2, ReplyMarkup: first(markup)}
	return sendAsync(c, "send.photo", "sendPhoto", func() error {
		photo := &tele.Photo{File: photoFile(ref), Caption: caption}
		if err := c.Send(photo, opts); err != nil {
			logger.Debug(BuildContext(c), logger.CompTelegram, "send.photo.fallback", slog.Any("err", err))
			return c.Send(caption, opts)
		}
		return nil
	})
}

// EditOrSendMDV2 edits the callback message or sends a new one.
func EditOrSendMDV2(c tele.Context, text string, markup ...*tele.ReplyMarkup) error {
	opts := &tele.SendOptions{ParseMode: tele.ModeMarkdownV2, ReplyMarkup: first(markup)}
	if c.Callback() == nil || c.Message() == nil || c.Message().Photo != nil {
		return SendText(c, text, opts)
	}
	return c.EditOrSend(text, opts)
}

func photoFile(ref string) tele.File {
	if strings.HasPrefix(ref, "http://") || strings.HasPrefix(ref, "https://") {
		return tele.FromURL(ref)
	}
	return tele.File{FileID: ref}
}

func first(markup []*tele.ReplyMarkup) *tele.ReplyMarkup {
	if len(markup) > 0 {
		return markup[0]
	}
	return nil
}
