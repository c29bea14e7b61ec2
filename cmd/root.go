package cmd

import (
	"os"

	"github.com/spf13/cobra"

	"nathanbeddoewebdev/vultrdyn/cmd/commands/auth"
	daemoncmd "nathanbeddoewebdev/vultrdyn/cmd/commands/daemon"
	"nathanbeddoewebdev/vultrdyn/cmd/commands/initcfg"
	"nathanbeddoewebdev/vultrdyn/cmd/commands/once"
	"nathanbeddoewebdev/vultrdyn/cmd/commands/records"
	"nathanbeddoewebdev/vultrdyn/cmd/commands/verify"
	"nathanbeddoewebdev/vultrdyn/internal/cli"
)

// rootCmd represents the base command when called without any subcommands.
// Running it with no subcommand starts the monitoring daemon.
func rootCmd() *cobra.Command {
	var cmd = &cobra.Command{
		Use:   "vultrdyn",
		Short: "A dynamic DNS updater for domains hosted on Vultr",
		Long: `vultrdyn keeps DNS records on Vultr pointed at this machine's public IP
address. It periodically resolves the public address, and when it changes,
updates or creates the configured records.

Quick start:
  vultrdyn init                    # Write a starter configuration
  vultrdyn auth login              # Store your Vultr API key
  vultrdyn once                    # Run a single check-and-update cycle
  vultrdyn                         # Run continuously`,
		SilenceUsage: true,
		RunE:         daemoncmd.Run,
	}

	cmd.PersistentFlags().String(cli.FlagConfig, "config.json", "Path to the configuration file")
	cmd.PersistentFlags().String(cli.FlagLogLevel, "info", "Log level (debug, info, warn, error)")
	cmd.PersistentFlags().String(cli.FlagLogFile, "", "Also write logs to this file (size-rotated)")

	cmd.AddCommand(daemoncmd.NewCommand())
	cmd.AddCommand(once.NewCommand())
	cmd.AddCommand(verify.NewCommand())
	cmd.AddCommand(initcfg.NewCommand())
	cmd.AddCommand(auth.NewCommand())
	cmd.AddCommand(records.NewCommand())

	return cmd
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	var root = rootCmd()
	err := root.Execute()
	if err != nil {
		os.Exit(1)
	}
}
