package deco

import (
	"bytes"
	"fmt"
	"reflect"

	"github.com/polidog/deco-slack/internal/notification"
)

// Template is the blueprint of the message sent for one lifecycle event.
// It is never modified by the pipeline; each dispatch derives a copy.
type Template struct {
	notification.Message `yaml:",inline"`

	// Stacktrace appends the failure and goroutine stack to Text.
	// Only meaningful for the error template.
	Stacktrace bool `yaml:"stacktrace,omitempty"`

	// TextFormatter and TitleFormatter override Text and Title. They receive
	// the call's result on success and the failure on error.
	TextFormatter  func(v any) string `yaml:"-"`
	TitleFormatter func(v any) string `yaml:"-"`

	// Func is called with the call's arguments before delivery.
	Func func(args ...any) `yaml:"-"`
}

// derive returns a fresh message built from the template. Formatters
// only run when resolve is set.
func (t *Template) derive(v any, resolve bool) notification.Message {
	msg := t.Message
	if !resolve {
		return msg
	}
	if t.TextFormatter != nil {
		msg.Text = t.TextFormatter(v)
	}
	if t.TitleFormatter != nil {
		msg.Title = t.TitleFormatter(v)
	}
	return msg
}

func (t *Template) call(args []any) {
	if t.Func != nil {
		t.Func(args...)
	}
}

func clone(t *Template) *Template {
	if t == nil {
		return nil
	}
	c := *t
	return &c
}

// formatStacktrace renders a failure and its stack in a code block
func formatStacktrace(failure error, stack []byte) string {
	return fmt.Sprintf("\n```%T: %v\n\n%s```", failure, failure, stack)
}

var pkgPath = reflect.TypeOf(Decorator{}).PkgPath()

// trimStack drops the leading frames that belong to debug.Stack and the
// decorator, so the trace starts at the failing call.
func trimStack(stack []byte) []byte {
	lines := bytes.Split(bytes.TrimRight(stack, "\n"), []byte("\n"))
	if len(lines) == 0 {
		return stack
	}
	// lines[0] is the goroutine header, then function/file line pairs
	frames := lines[1:]
	for len(frames) >= 2 && isDecoratorFrame(frames[0]) {
		frames = frames[2:]
	}

	out := make([][]byte, 0, len(frames)+1)
	out = append(out, lines[0])
	out = append(out, frames...)
	return append(bytes.Join(out, []byte("\n")), '\n')
}

func isDecoratorFrame(fn []byte) bool {
	return bytes.HasPrefix(fn, []byte("runtime/debug.")) ||
		bytes.HasPrefix(fn, []byte(pkgPath+".(*Decorator).")) ||
		bytes.HasPrefix(fn, []byte(pkgPath+".Wrap["))
}
