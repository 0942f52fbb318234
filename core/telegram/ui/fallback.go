package ui

import tele "gopkg.in/telebot.v4"

// FallbackProvider exposes handlers for updates that match no command,
// callback or conversation step.
type FallbackProvider interface {
	UnknownText() tele.HandlerFunc
	UnknownDocument() tele.HandlerFunc
	UnknownCallback() tele.HandlerFunc
}
