// Package once provides the "once" subcommand: a single check-and-update
// cycle with a non-zero exit code on failure, suitable for cron.
package once

import (
	"fmt"

	"github.com/spf13/cobra"

	"nathanbeddoewebdev/vultrdyn/internal/cli"
	"nathanbeddoewebdev/vultrdyn/internal/publicip"
	"nathanbeddoewebdev/vultrdyn/internal/updater"
)

// NewCommand returns the "once" subcommand.
func NewCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "once",
		Short: "Run a single check-and-update cycle and exit",
		Long: `Resolve the public IP and reconcile all configured records once. Exits
non-zero when the address cannot be resolved or any target fails.

Examples:
  vultrdyn once
  vultrdyn once --force    # update even if the address seems unchanged`,
		Args: cobra.NoArgs,
		RunE: runOnce,
	}

	cmd.Flags().Bool("force", false, "Update records even when the IP appears unchanged")

	return cmd
}

func runOnce(cmd *cobra.Command, args []string) error {
	force, _ := cmd.Flags().GetBool("force")

	log, err := cli.Logger(cmd)
	if err != nil {
		return err
	}
	defer log.Sync()

	cfg, _, err := cli.LoadConfig(cmd)
	if err != nil {
		return err
	}

	svc, client, err := cli.NewService(cfg, log)
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	if err := cli.CheckConnectivity(ctx, client, log); err != nil {
		return fmt.Errorf("failed to connect to the Vultr API, check your API key: %w", err)
	}

	resolver := publicip.NewResolver(publicip.WithLogger(log))
	u := updater.New(svc, resolver, cfg.Targets, updater.WithLogger(log))

	if force {
		err = u.ForceUpdate(ctx)
	} else {
		err = u.CheckAndUpdate(ctx)
	}

	for _, result := range u.History() {
		fmt.Fprintln(cmd.OutOrStdout(), result.String())
	}
	return err
}
