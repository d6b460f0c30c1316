package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/polidog/deco-slack/internal/app"
	"github.com/polidog/deco-slack/internal/config"
)

var runCmd = &cobra.Command{
	Use:   "run [flags] -- <command> [args...]",
	Short: "Run a command and notify its lifecycle",
	Long: `Run a command and send a notification before it starts, after it
succeeds and after it fails. The exit code of the command is preserved.

Examples:
  deco-slack run -- ./backup.sh --full
  deco-slack run --mock -- make test
  deco-slack run -c nightly.yaml --attach-output -- pg_dump app`,
	Args:                  cobra.MinimumNArgs(1),
	DisableFlagsInUseLine: true,
	RunE:                  runRun,
}

func init() {
	// Everything after the command name belongs to the command
	runCmd.Flags().SetInterspersed(false)
	runCmd.Flags().Bool("mock", false, "Print notifications instead of posting them")
	runCmd.Flags().Bool("desktop", false, "Send notifications to the desktop instead of Slack")
	runCmd.Flags().Bool("color", false, "Color printed notifications (with --mock)")
	runCmd.Flags().Bool("attach-output", false, "Include the command output in success and error messages")
}

func runRun(cmd *cobra.Command, args []string) error {
	opts := commonOptions(cmd)
	if mock, _ := cmd.Flags().GetBool("mock"); mock {
		opts = append(opts, app.WithMocking())
	}
	if desktop, _ := cmd.Flags().GetBool("desktop"); desktop {
		opts = append(opts, app.WithDesktop())
	}
	if color, _ := cmd.Flags().GetBool("color"); color {
		opts = append(opts, app.WithStyle())
	}
	if attach, _ := cmd.Flags().GetBool("attach-output"); attach {
		opts = append(opts, app.WithAttachOutput())
	}

	application, err := app.New(opts...)
	if err != nil {
		return err
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	code, err := application.Run(ctx, args[0], args[1:])
	if err != nil {
		var exitErr *exec.ExitError
		if !errors.As(err, &exitErr) {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}
	}
	if code != 0 {
		cancel()
		os.Exit(code)
	}
	return nil
}

func commonOptions(cmd *cobra.Command) []app.Option {
	var opts []app.Option

	path, _ := cmd.Flags().GetString("config")
	if path != "" {
		opts = append(opts, app.WithConfigPath(path))
	}

	token, _ := cmd.Flags().GetString("token")
	channel, _ := cmd.Flags().GetString("channel")
	prefix, _ := cmd.Flags().GetString("prefix")
	opts = append(opts, app.WithSlack(config.Slack{
		Token:   token,
		Channel: channel,
		Prefix:  prefix,
	}))
	return opts
}
