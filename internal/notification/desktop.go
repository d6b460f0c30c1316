package notification

import (
	"unicode/utf8"

	"github.com/gen2brain/beeep"
	"github.com/rs/zerolog"
)

// DesktopHandler sends desktop notifications
type DesktopHandler struct {
	notify func(title, body string) error
	log    zerolog.Logger
}

// NewDesktopHandler creates a new desktop handler
func NewDesktopHandler(log zerolog.Logger) *DesktopHandler {
	return &DesktopHandler{
		notify: func(title, body string) error {
			return beeep.Notify(title, body, "")
		},
		log: log,
	}
}

// SendAttachment shows msg as a desktop notification
func (d *DesktopHandler) SendAttachment(msg Message) {
	title := msg.Title
	if title == "" {
		title = msg.Fallback
	}
	if title == "" {
		title = "deco-slack"
	}

	if err := d.notify(title, truncateText(msg.Text, 200)); err != nil {
		d.log.Warn().Err(err).Str("title", title).Msg("failed to send desktop notification")
	}
}

// truncateText truncates text to at most maxLen bytes without splitting a rune
func truncateText(text string, maxLen int) string {
	if len(text) <= maxLen {
		return text
	}
	cut := maxLen - 3
	for cut > 0 && !utf8.RuneStart(text[cut]) {
		cut--
	}
	return text[:cut] + "..."
}
