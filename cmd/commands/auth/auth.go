// Package auth provides the "auth" subcommands for managing the Vultr API
// key in the OS keychain.
package auth

import (
	"github.com/spf13/cobra"
)

// NewCommand returns the top-level "auth" Cobra command with all subcommands attached.
func NewCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "auth",
		Short: "Manage the Vultr API key",
		Long:  `Store, inspect, and remove the Vultr API key kept in the local keychain.`,
	}

	cmd.AddCommand(LoginCommand())
	cmd.AddCommand(StatusCommand())
	cmd.AddCommand(LogoutCommand())

	return cmd
}
