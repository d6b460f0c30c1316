package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/polidog/deco-slack/internal/app"
	"github.com/polidog/deco-slack/internal/config"
)

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Verify the Slack credentials",
	Args:  cobra.NoArgs,
	RunE:  runCheck,
}

func runCheck(cmd *cobra.Command, args []string) error {
	application, err := app.New(commonOptions(cmd)...)
	if err != nil {
		return err
	}

	id, settings, err := application.Check()
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "team:    %s (%s)\n", id.Team, id.TeamID)
	fmt.Fprintf(out, "user:    %s (%s)\n", id.User, id.UserID)
	if settings.Channel == "" {
		fmt.Fprintf(out, "channel: not set (%s%s)\n", settings.Prefix, config.ChannelEnv)
	} else {
		fmt.Fprintf(out, "channel: %s\n", settings.Channel)
	}
	return nil
}
