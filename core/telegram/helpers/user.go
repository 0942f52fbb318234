package helpers

import tele "gopkg.in/telebot.v4"

// SenderID returns the Telegram id of the update author or 0.
func SenderID(c tele.Context) int64 {
	if c == nil {
		return 0
	}
	if u := c.Sender(); u != nil {
		return u.ID
	}
	return 0
}

// ChatID returns the current chat id or 0.
func ChatID(c tele.Context) int64 {
	if c == nil {
		return 0
	}
	if ch := c.Chat(); ch != nil {
		return ch.ID
	}
	return 0
}

// SenderNames returns the first and last name of the update author.
func SenderNames(c tele.Context) (string, string) {
	if c == nil || c.Sender() == nil {
		return "", ""
	}
	return c.Sender().FirstName, c.Sender().LastName
}
