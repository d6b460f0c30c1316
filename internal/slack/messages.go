package slack

import (
	"github.com/slack-go/slack"
)

type Attachment struct {
	Title          string
	TitleLink      string
	Text           string
	Color          string
	Fallback       string
	AttachmentType string
	Pretext        string
	Footer         string
}

func (a Attachment) toSlack() slack.Attachment {
	return slack.Attachment{
		Title:     a.Title,
		TitleLink: a.TitleLink,
		Text:      a.Text,
		Color:     a.Color,
		Fallback:  a.Fallback,
		Pretext:   a.Pretext,
		Footer:    a.Footer,
		// AttachmentType has no slack-go counterpart; the API treats
		// every legacy attachment as "default".
	}
}

// PostAttachment posts text with att as its single attachment
func (c *Client) PostAttachment(channelID, text string, att Attachment) error {
	_, _, err := c.api.PostMessage(
		channelID,
		slack.MsgOptionText(text, false),
		slack.MsgOptionAttachments(att.toSlack()),
	)
	return err
}
