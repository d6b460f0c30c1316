package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "deco-slack",
	Short: "Notify Slack when a job starts, succeeds or fails",
	Long: `deco-slack runs a command and posts start, success and error
notifications for it to a Slack channel.

Credentials are read from SLACK_TOKEN and SLACK_CHANNEL. Set
DECO_SLACK_PREFIX to read <PREFIX>SLACK_TOKEN and <PREFIX>SLACK_CHANNEL
instead.`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringP("config", "c", "", "Job file (overrides DECO_SLACK_CONFIG, default ~/.deco-slack/job.yaml)")
	rootCmd.PersistentFlags().String("token", "", "Slack token (overrides SLACK_TOKEN)")
	rootCmd.PersistentFlags().String("channel", "", "Slack channel (overrides SLACK_CHANNEL)")
	rootCmd.PersistentFlags().String("prefix", "", "Environment variable prefix (overrides DECO_SLACK_PREFIX)")

	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(checkCmd)
	rootCmd.AddCommand(versionCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
