// Package verify provides the "verify" subcommand: a read-only check of
// every configured record against the live public address.
package verify

import (
	"fmt"

	"github.com/spf13/cobra"

	"nathanbeddoewebdev/vultrdyn/internal/cli"
	"nathanbeddoewebdev/vultrdyn/internal/publicip"
	"nathanbeddoewebdev/vultrdyn/internal/tui"
	"nathanbeddoewebdev/vultrdyn/internal/updater"
)

// NewCommand returns the "verify" subcommand.
func NewCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "verify",
		Short: "Check whether all records match the current public IP",
		Long: `Resolve the public IP and report, per configured record, whether the
live value matches it. Nothing is modified. Exits non-zero when any record
is missing or stale.`,
		Args: cobra.NoArgs,
		RunE: runVerify,
	}
}

func runVerify(cmd *cobra.Command, args []string) error {
	log, err := cli.Logger(cmd)
	if err != nil {
		return err
	}
	defer log.Sync()

	cfg, _, err := cli.LoadConfig(cmd)
	if err != nil {
		return err
	}

	svc, _, err := cli.NewService(cfg, log)
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	resolver := publicip.NewResolver(publicip.WithLogger(log))
	u := updater.New(svc, resolver, cfg.Targets, updater.WithLogger(log))

	address, results, err := u.Verify(ctx)
	if err != nil {
		return fmt.Errorf("could not determine public IP: %w", err)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "%s %s\n\n", tui.Title.Render("Current public IP:"), address)

	stale := 0
	for _, r := range results {
		name := r.Target.FullName()
		switch {
		case !r.Exists:
			stale++
			fmt.Fprintf(out, "%s %s: %s\n", tui.Mark(false), name, r.Err)
		case r.Matches:
			fmt.Fprintf(out, "%s %s: %s (TTL %d)\n", tui.Mark(true), name, r.CurrentValue, r.TTL)
		default:
			stale++
			fmt.Fprintf(out, "%s %s: %s %s\n", tui.Mark(false), name, r.CurrentValue,
				tui.Warning.Render("(stale)"))
		}
	}

	if stale > 0 {
		return fmt.Errorf("%d of %d records need updating", stale, len(results))
	}
	fmt.Fprintf(out, "\n%s\n", tui.Success.Render("All records up to date."))
	return nil
}
