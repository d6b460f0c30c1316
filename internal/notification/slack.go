package notification

import (
	"github.com/rs/zerolog"

	"github.com/polidog/deco-slack/internal/slack"
)

// Poster is the transport used by SlackHandler
type Poster interface {
	PostAttachment(channelID, text string, att slack.Attachment) error
}

// SlackHandler delivers messages to a Slack channel
type SlackHandler struct {
	client  Poster
	channel string
	log     zerolog.Logger
}

// NewSlackHandler creates a handler posting to channel through client.
// Missing credentials are reported once and do not fail construction.
func NewSlackHandler(client Poster, token, channel string, log zerolog.Logger) *SlackHandler {
	if token == "" || channel == "" {
		log.Warn().
			Bool("token_set", token != "").
			Bool("channel_set", channel != "").
			Msg("slack token or channel is not configured; notifications will not be delivered")
	}
	return &SlackHandler{
		client:  client,
		channel: channel,
		log:     log,
	}
}

// Channel returns the destination channel
func (s *SlackHandler) Channel() string {
	return s.channel
}

// SendAttachment posts msg with its text as the message body
func (s *SlackHandler) SendAttachment(msg Message) {
	if err := s.client.PostAttachment(s.channel, msg.Text, toAttachment(msg)); err != nil {
		s.log.Warn().
			Err(err).
			Str("channel", s.channel).
			Str("title", msg.Title).
			Msg("failed to send slack notification")
	}
}

func toAttachment(msg Message) slack.Attachment {
	return slack.Attachment{
		Title:          msg.Title,
		TitleLink:      msg.TitleLink,
		Text:           msg.Text,
		Color:          msg.Color,
		Fallback:       msg.Fallback,
		AttachmentType: msg.AttachmentType,
		Pretext:        msg.Pretext,
		Footer:         msg.Footer,
	}
}
