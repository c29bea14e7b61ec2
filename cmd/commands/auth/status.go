package auth

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"nathanbeddoewebdev/vultrdyn/internal/auth"
	"nathanbeddoewebdev/vultrdyn/internal/dns/vultr"
)

// StatusCommand returns the "auth status" subcommand.
func StatusCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show whether an API key is stored and working",
		Long: `Show whether a Vultr API key is stored in the keychain, and verify it
against the live API.

Example:
  vultrdyn auth status`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store := auth.DefaultStore()
			out := cmd.OutOrStdout()

			token, err := store.GetToken()
			switch {
			case errors.Is(err, auth.ErrTokenNotFound):
				fmt.Fprintln(out, "not logged in (no API key in keychain)")
				return nil
			case err != nil:
				return fmt.Errorf("failed to read keychain: %w", err)
			}

			client := vultr.New(token)
			email, err := client.VerifyAuth(cmd.Context())
			if err != nil {
				fmt.Fprintf(out, "logged in, but the stored key failed verification: %v\n", err)
				return nil
			}

			fmt.Fprintf(out, "logged in (account %s)\n", email)
			return nil
		},
		SilenceUsage: true,
	}

	return cmd
}
