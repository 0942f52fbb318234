package commands

import tele "gopkg.in/telebot.v4"

// Command represents a bot command with its handler, description, and metadata.
type Command struct {
	Handler     tele.HandlerFunc
	Description string
	// ManagerOnly restricts the command to staff members.
	ManagerOnly bool
	Hidden      bool
	// Aliases also match plain text, e.g. reply keyboard labels.
	Aliases []string
}
