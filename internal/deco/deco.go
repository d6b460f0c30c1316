// Package deco wraps functions so that their start, success and failure
// are reported to a notification.Handler.
//
// A wrapped call runs on the caller's goroutine:
//
//	start template?  -> deliver start
//	call fn
//	  ok             -> deliver success (if configured), return result
//	  error / panic  -> deliver error (if configured), return error / re-panic
//
// The wrapped function's result and error are passed through unchanged.
package deco

import (
	"fmt"
	"io"
	"runtime/debug"

	"github.com/rs/zerolog"

	"github.com/polidog/deco-slack/internal/config"
	"github.com/polidog/deco-slack/internal/logx"
	"github.com/polidog/deco-slack/internal/notification"
	"github.com/polidog/deco-slack/internal/slack"
)

// Config selects the templates and the handler of a Decorator
type Config struct {
	Start   *Template `yaml:"start"`
	Success *Template `yaml:"success"`
	Error   *Template `yaml:"error"`

	// Mocking selects the console handler instead of Slack.
	Mocking bool `yaml:"mocking"`

	// Handler, when set, receives every message regardless of Mocking.
	Handler notification.Handler `yaml:"-"`
}

// Func is the signature of a function that can be wrapped
type Func[R any] func(args ...any) (R, error)

// Decorator holds the resolved handler and a private copy of the templates
type Decorator struct {
	start   *Template
	success *Template
	failure *Template
	handler notification.Handler
}

// Option configures how New builds the default handlers
type Option func(*options)

type options struct {
	slack       config.Slack
	slackOpts   []slack.Option
	consoleOpts []notification.ConsoleOption
	log         *zerolog.Logger
}

// WithSlack sets explicit connection parameters; empty fields fall back to
// the environment.
func WithSlack(s config.Slack) Option {
	return func(o *options) {
		o.slack = s
	}
}

// WithSlackClientOptions passes options to the Slack Web API client
func WithSlackClientOptions(opts ...slack.Option) Option {
	return func(o *options) {
		o.slackOpts = append(o.slackOpts, opts...)
	}
}

// WithConsoleOutput sets where the console handler writes
func WithConsoleOutput(w io.Writer) Option {
	return func(o *options) {
		o.consoleOpts = append(o.consoleOpts, notification.WithWriter(w))
	}
}

// WithConsoleStyle enables colored titles in the console handler
func WithConsoleStyle() Option {
	return func(o *options) {
		o.consoleOpts = append(o.consoleOpts, notification.WithStyle())
	}
}

// WithLogger sets the diagnostic logger of the default handlers
func WithLogger(log zerolog.Logger) Option {
	return func(o *options) {
		o.log = &log
	}
}

// New resolves the handler once and returns a Decorator. An explicit
// cfg.Handler wins, then the console handler when cfg.Mocking is set,
// otherwise a Slack handler configured from opts and the environment.
func New(cfg Config, opts ...Option) (*Decorator, error) {
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	handler, err := resolveHandler(cfg, &o)
	if err != nil {
		return nil, err
	}

	return &Decorator{
		start:   clone(cfg.Start),
		success: clone(cfg.Success),
		failure: clone(cfg.Error),
		handler: handler,
	}, nil
}

func resolveHandler(cfg Config, o *options) (notification.Handler, error) {
	if cfg.Handler != nil {
		return cfg.Handler, nil
	}
	if cfg.Mocking {
		return notification.NewConsoleHandler(o.consoleOpts...), nil
	}

	log := logx.Default()
	if o.log != nil {
		log = *o.log
	}

	settings := config.ResolveSlack(o.slack)
	client, err := slack.NewClient(settings.Token, o.slackOpts...)
	if err != nil {
		return nil, fmt.Errorf("creating slack client: %w", err)
	}
	return notification.NewSlackHandler(client, settings.Token, settings.Channel, log), nil
}

// Handler returns the handler chosen at construction
func (d *Decorator) Handler() notification.Handler {
	return d.handler
}

// Wrap returns fn decorated with d's lifecycle notifications
func Wrap[R any](d *Decorator, fn Func[R]) Func[R] {
	return func(args ...any) (result R, err error) {
		d.notifyStart(args)

		completed := false
		defer func() {
			if completed {
				return
			}
			// recover returns nil only for runtime.Goexit
			r := recover()
			if r == nil {
				return
			}
			d.notifyError(args, panicError(r))
			panic(r)
		}()

		result, err = fn(args...)
		completed = true

		if err != nil {
			d.notifyError(args, err)
			return result, err
		}
		d.notifySuccess(args, result)
		return result, nil
	}
}

func (d *Decorator) notifyStart(args []any) {
	if d.start == nil {
		return
	}
	msg := d.start.derive(nil, false)
	d.start.call(args)
	d.handler.SendAttachment(msg)
}

func (d *Decorator) notifySuccess(args []any, result any) {
	if d.success == nil {
		return
	}
	msg := d.success.derive(result, true)
	d.success.call(args)
	d.handler.SendAttachment(msg)
}

// notifyError runs inside the wrapper (or its deferred recover), so the
// captured stack still holds the failing call.
func (d *Decorator) notifyError(args []any, failure error) {
	if d.failure == nil {
		return
	}
	msg := d.failure.derive(failure, true)
	if d.failure.Stacktrace {
		msg.Text += formatStacktrace(failure, trimStack(debug.Stack()))
	}
	d.failure.call(args)
	d.handler.SendAttachment(msg)
}

// PanicError carries a recovered panic value to error formatters
type PanicError struct {
	Value any
}

func (e *PanicError) Error() string {
	return fmt.Sprintf("panic: %v", e.Value)
}

func panicError(r any) error {
	if err, ok := r.(error); ok {
		return err
	}
	return &PanicError{Value: r}
}
