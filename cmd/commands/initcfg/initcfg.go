// Package initcfg provides the "init" subcommand, which writes a starter
// configuration, either a static sample file or one built interactively.
package initcfg

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/huh/spinner"
	"github.com/spf13/cobra"

	"nathanbeddoewebdev/vultrdyn/internal/cli"
	"nathanbeddoewebdev/vultrdyn/internal/config"
	"nathanbeddoewebdev/vultrdyn/internal/dns/vultr"
	"nathanbeddoewebdev/vultrdyn/internal/tui"
)

// NewCommand returns the "init" subcommand.
func NewCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write a starter configuration file",
		Long: `Write a sample configuration to config.sample.json, ready to edit and
rename. With --interactive, walk through a setup wizard instead and write
the result directly to the configured path.

Examples:
  vultrdyn init
  vultrdyn init --interactive
  vultrdyn init --interactive --config /etc/vultrdyn/config.json`,
		Args: cobra.NoArgs,
		RunE: runInit,
	}

	cmd.Flags().Bool("interactive", false, "Build the configuration through a setup wizard")
	cmd.Flags().Bool("force", false, "Overwrite the target file if it already exists")

	return cmd
}

func runInit(cmd *cobra.Command, args []string) error {
	interactive, _ := cmd.Flags().GetBool("interactive")
	force, _ := cmd.Flags().GetBool("force")
	out := cmd.OutOrStdout()

	if !interactive {
		const samplePath = "config.sample.json"
		if err := checkOverwrite(samplePath, force); err != nil {
			return err
		}
		if err := config.Sample().Save(samplePath); err != nil {
			return err
		}
		fmt.Fprintf(out, "Wrote %s. Edit it and rename it to config.json.\n", samplePath)
		return nil
	}

	path := cli.ConfigPath(cmd)
	if err := checkOverwrite(path, force); err != nil {
		return err
	}

	cfg, err := tui.InitWizard()
	if err != nil {
		if errors.Is(err, tui.ErrInitAborted) {
			fmt.Fprintln(out, "Setup cancelled.")
			return nil
		}
		return err
	}

	if cfg.APIKey != "" {
		if err := checkKey(cmd.Context(), cfg.APIKey, out); err != nil {
			return err
		}
	}

	if err := cfg.Save(path); err != nil {
		return err
	}
	fmt.Fprintf(out, "%s %s written.\n", tui.Mark(true), path)
	if cfg.APIKey == "" {
		fmt.Fprintln(out, tui.Muted.Render("No API key set. Run 'vultrdyn auth login' before starting the daemon."))
	}
	return nil
}

// checkKey verifies the entered API key against the live API behind a
// spinner, so a typo is caught before the config is written.
func checkKey(ctx context.Context, apiKey string, out io.Writer) error {
	client := vultr.New(apiKey)

	var email string
	var verifyErr error
	err := spinner.New().
		Title("Verifying API key...").
		Action(func() {
			email, verifyErr = client.VerifyAuth(ctx)
		}).
		Run()
	if err != nil {
		return err
	}
	if verifyErr != nil {
		return fmt.Errorf("API key verification failed: %w", verifyErr)
	}

	fmt.Fprintf(out, "%s API key verified (account %s)\n", tui.Mark(true), email)
	return nil
}

func checkOverwrite(path string, force bool) error {
	if force {
		return nil
	}
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("%s already exists, use --force to overwrite", path)
	}
	return nil
}
