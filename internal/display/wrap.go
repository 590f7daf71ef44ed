package display

import (
	"strings"

	"github.com/muesli/reflow/wordwrap"
)

// DialogueWidth is the column NPC speech is wrapped at.
const DialogueWidth = 60

// Wrap word-wraps text to width columns.
func Wrap(text string, width int) string {
	return wordwrap.String(text, width)
}

// Speech formats a line spoken by name, wrapped to DialogueWidth.
func Speech(name, text string) string {
	return Wrap(Capitalize(name)+": "+strings.TrimSpace(text), DialogueWidth)
}

// Capitalize returns s with its first character uppercased.
func Capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
