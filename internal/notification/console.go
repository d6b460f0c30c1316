package notification

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/charmbracelet/lipgloss"
)

// Slack's named attachment colors
var namedColors = map[string]lipgloss.Color{
	"good":    lipgloss.Color("#2EB67D"),
	"warning": lipgloss.Color("#ECB22E"),
	"danger":  lipgloss.Color("#E01E5A"),
}

// ConsoleHandler records every delivered message and prints it
type ConsoleHandler struct {
	mu       sync.Mutex
	out      io.Writer
	styled   bool
	messages []Message
}

// ConsoleOption configures a ConsoleHandler
type ConsoleOption func(*ConsoleHandler)

// WithWriter sets the destination of the rendered messages (default stdout)
func WithWriter(w io.Writer) ConsoleOption {
	return func(h *ConsoleHandler) {
		if w != nil {
			h.out = w
		}
	}
}

// WithStyle renders titles in the attachment color
func WithStyle() ConsoleOption {
	return func(h *ConsoleHandler) {
		h.styled = true
	}
}

// NewConsoleHandler creates a new console handler
func NewConsoleHandler(opts ...ConsoleOption) *ConsoleHandler {
	h := &ConsoleHandler{
		out:      os.Stdout,
		messages: make([]Message, 0),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// SendAttachment records msg and writes it to the console
func (h *ConsoleHandler) SendAttachment(msg Message) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.messages = append(h.messages, msg)
	fmt.Fprintln(h.out, h.render(msg))
}

// Messages returns a copy of the delivered messages in delivery order
func (h *ConsoleHandler) Messages() []Message {
	h.mu.Lock()
	defer h.mu.Unlock()

	msgs := make([]Message, len(h.messages))
	copy(msgs, h.messages)
	return msgs
}

// Len returns the number of delivered messages
func (h *ConsoleHandler) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.messages)
}

// Reset clears the message log
func (h *ConsoleHandler) Reset() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.messages = h.messages[:0]
}

func (h *ConsoleHandler) render(msg Message) string {
	parts := make([]string, 0, 3)
	if msg.Text != "" {
		parts = append(parts, msg.Text)
	}
	if msg.Title != "" {
		title := msg.Title
		if h.styled {
			title = titleStyle(msg.Color).Render(title)
		}
		parts = append(parts, title)
	}
	if msg.Color != "" {
		parts = append(parts, msg.Color)
	}
	return strings.Join(parts, " ")
}

func titleStyle(color string) lipgloss.Style {
	style := lipgloss.NewStyle().Bold(true)
	if c, ok := namedColors[color]; ok {
		return style.Foreground(c)
	}
	if strings.HasPrefix(color, "#") {
		return style.Foreground(lipgloss.Color(color))
	}
	return style
}
