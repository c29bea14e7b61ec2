package auth

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"nathanbeddoewebdev/vultrdyn/internal/auth"
)

// LogoutCommand returns the "auth logout" subcommand.
func LogoutCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Remove the stored API key from the keychain",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			store := auth.DefaultStore()
			if err := store.DeleteToken(); err != nil {
				if errors.Is(err, auth.ErrTokenNotFound) {
					fmt.Fprintln(os.Stdout, "No API key was stored.")
					return
				}
				fmt.Fprintln(os.Stderr, err)
				return
			}
			fmt.Fprintln(os.Stdout, "Removed stored Vultr API key")
		},
	}
}
