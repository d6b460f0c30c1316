package notification

// Message represents a resolved attachment ready for delivery
type Message struct {
	Title          string `yaml:"title,omitempty" json:"title,omitempty"`
	Text           string `yaml:"text,omitempty" json:"text,omitempty"`
	TitleLink      string `yaml:"title_link,omitempty" json:"title_link,omitempty"`
	Color          string `yaml:"color,omitempty" json:"color,omitempty"`
	Fallback       string `yaml:"fallback,omitempty" json:"fallback,omitempty"`
	AttachmentType string `yaml:"attachment_type,omitempty" json:"attachment_type,omitempty"`
	Pretext        string `yaml:"pretext,omitempty" json:"pretext,omitempty"`
	Footer         string `yaml:"footer,omitempty" json:"footer,omitempty"`
}

// Handler delivers attachments somewhere.
//
// Implementations must not let a delivery failure escape: a broken
// notification channel never changes the outcome of the notified call.
type Handler interface {
	SendAttachment(msg Message)
}

// HandlerFunc adapts an ordinary function to the Handler interface
type HandlerFunc func(msg Message)

// SendAttachment calls f(msg)
func (f HandlerFunc) SendAttachment(msg Message) {
	f(msg)
}
