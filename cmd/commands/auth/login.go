package auth

import (
	"fmt"
	"os"
	"strings"

	"golang.org/x/term"

	"github.com/spf13/cobra"

	"nathanbeddoewebdev/vultrdyn/internal/auth"
)

// LoginCommand returns the "auth login" subcommand.
func LoginCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Store the Vultr API key in the local keychain",
		Long: `Store the Vultr API key using the local keychain. The key is read from a
hidden prompt unless --token is given.

Example:
  vultrdyn auth login`,
		Args: cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			token, err := cmd.Flags().GetString("token")
			if err != nil {
				fmt.Fprintln(os.Stderr, err)
				return
			}

			token = strings.TrimSpace(token)
			if token == "" {
				fmt.Fprint(os.Stdout, "Enter Vultr API key: ")
				bytes, err := term.ReadPassword(int(os.Stdin.Fd()))
				fmt.Fprintln(os.Stdout)
				if err != nil {
					fmt.Fprintln(os.Stderr, err)
					return
				}
				token = strings.TrimSpace(string(bytes))
			}

			if token == "" {
				fmt.Fprintln(os.Stderr, "API key cannot be empty")
				return
			}

			store := auth.DefaultStore()
			if err := store.SetToken(token); err != nil {
				fmt.Fprintln(os.Stderr, err)
				return
			}

			fmt.Fprintln(os.Stdout, "Saved Vultr API key")
		},
	}

	cmd.Flags().String("token", "", "API key (optional, overrides prompt)")

	return cmd
}
