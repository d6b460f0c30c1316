package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"

	"github.com/polidog/deco-slack/internal/config"
	"github.com/polidog/deco-slack/internal/deco"
	"github.com/polidog/deco-slack/internal/logx"
	"github.com/polidog/deco-slack/internal/notification"
	"github.com/polidog/deco-slack/internal/slack"
)

type App struct {
	env          *config.Env
	log          zerolog.Logger
	configPath   string
	slack        config.Slack
	slackOpts    []slack.Option
	mocking      bool
	desktop      bool
	styled       bool
	attachOutput bool
	stdin        io.Reader
	stdout       io.Writer
	stderr       io.Writer
}

// Option is a functional option for App
type Option func(*App)

// WithConfigPath sets the job file, overriding DECO_SLACK_CONFIG
func WithConfigPath(path string) Option {
	return func(a *App) {
		a.configPath = path
	}
}

// WithSlack sets explicit connection parameters; they win over the job
// file and the environment
func WithSlack(s config.Slack) Option {
	return func(a *App) {
		a.slack = s
	}
}

// WithSlackClientOptions passes options to the Slack Web API client
func WithSlackClientOptions(opts ...slack.Option) Option {
	return func(a *App) {
		a.slackOpts = append(a.slackOpts, opts...)
	}
}

// WithMocking prints notifications instead of posting them
func WithMocking() Option {
	return func(a *App) {
		a.mocking = true
	}
}

// WithDesktop sends notifications to the desktop instead of Slack
func WithDesktop() Option {
	return func(a *App) {
		a.desktop = true
	}
}

// WithStyle colors console notifications
func WithStyle() Option {
	return func(a *App) {
		a.styled = true
	}
}

// WithAttachOutput adds the command output to success and error messages
func WithAttachOutput() Option {
	return func(a *App) {
		a.attachOutput = true
	}
}

// WithIO replaces the process standard streams
func WithIO(stdin io.Reader, stdout, stderr io.Writer) Option {
	return func(a *App) {
		a.stdin = stdin
		a.stdout = stdout
		a.stderr = stderr
	}
}

func New(opts ...Option) (*App, error) {
	env, err := config.LoadEnv()
	if err != nil {
		return nil, fmt.Errorf("failed to load settings: %w", err)
	}

	app := &App{
		env:    env,
		stdin:  os.Stdin,
		stdout: os.Stdout,
		stderr: os.Stderr,
	}
	for _, opt := range opts {
		opt(app)
	}
	app.log = logx.NewWithWriter(app.stderr, env.LogLevel)
	return app, nil
}

// Run executes the command as a notified job. It returns the exit code the
// process should end with and the command's error, if any.
func (a *App) Run(ctx context.Context, name string, args []string) (int, error) {
	job, err := a.loadJob(filepath.Base(name))
	if err != nil {
		return 1, err
	}

	cfg := job.Config
	cfg.Mocking = cfg.Mocking || a.mocking
	if a.desktop {
		cfg.Handler = notification.NewDesktopHandler(a.log)
	}
	if a.attachOutput {
		cfg.Success = withOutputText(cfg.Success)
		cfg.Error = withFailureText(cfg.Error)
	}

	d, err := deco.New(cfg, a.decoOptions(job.Slack)...)
	if err != nil {
		return 1, fmt.Errorf("failed to set up notifications: %w", err)
	}

	callArgs := make([]any, 0, len(args)+1)
	callArgs = append(callArgs, name)
	for _, arg := range args {
		callArgs = append(callArgs, arg)
	}

	run := deco.Wrap(d, a.command(ctx))
	if _, err := run(callArgs...); err != nil {
		var cmdErr *CommandError
		if errors.As(err, &cmdErr) {
			return cmdErr.ExitCode, err
		}
		return 1, err
	}
	return 0, nil
}

// Check verifies the Slack credentials the run command would use
func (a *App) Check() (*slack.Identity, config.Slack, error) {
	settings := a.slackSettings(config.Slack{})
	if path := a.jobPath(); path != "" {
		job, err := LoadJob(path)
		if err != nil {
			return nil, settings, err
		}
		settings = a.slackSettings(job.Slack)
	}

	if settings.Token == "" {
		return nil, settings, fmt.Errorf("no slack token: set %s%s or slack.token in the job file", settings.Prefix, config.TokenEnv)
	}

	client, err := slack.NewClient(settings.Token, a.slackOpts...)
	if err != nil {
		return nil, settings, err
	}
	id, err := client.Verify()
	if err != nil {
		return nil, settings, fmt.Errorf("slack auth.test failed: %w", err)
	}
	return id, settings, nil
}

func (a *App) decoOptions(fromJob config.Slack) []deco.Option {
	opts := []deco.Option{
		deco.WithSlack(a.mergeSlack(fromJob)),
		deco.WithSlackClientOptions(a.slackOpts...),
		deco.WithConsoleOutput(a.stdout),
		deco.WithLogger(a.log),
	}
	if a.styled {
		opts = append(opts, deco.WithConsoleStyle())
	}
	return opts
}

// mergeSlack layers flags over the job file
func (a *App) mergeSlack(fromJob config.Slack) config.Slack {
	merged := fromJob
	if a.slack.Token != "" {
		merged.Token = a.slack.Token
	}
	if a.slack.Channel != "" {
		merged.Channel = a.slack.Channel
	}
	if a.slack.Prefix != "" {
		merged.Prefix = a.slack.Prefix
	}
	if merged.Prefix == "" {
		merged.Prefix = a.env.Prefix
	}
	return merged
}

func (a *App) slackSettings(fromJob config.Slack) config.Slack {
	return config.ResolveSlack(a.mergeSlack(fromJob))
}

// jobPath returns the job file to read, or "" when none applies
func (a *App) jobPath() string {
	if a.configPath != "" {
		return a.configPath
	}
	if a.env.ConfigFile != "" {
		return a.env.ConfigFile
	}
	path, err := config.DefaultJobFile()
	if err != nil {
		return ""
	}
	if _, err := os.Stat(path); err != nil {
		return ""
	}
	return path
}

func (a *App) loadJob(name string) (*Job, error) {
	path := a.jobPath()
	if path == "" {
		a.log.Debug().Str("command", name).Msg("no job file, using default templates")
		return DefaultJob(name), nil
	}
	a.log.Debug().Str("path", path).Msg("loading job file")
	return LoadJob(path)
}
