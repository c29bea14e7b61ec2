package records

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"nathanbeddoewebdev/vultrdyn/internal/cli"
	"nathanbeddoewebdev/vultrdyn/internal/dns/domain"
	"nathanbeddoewebdev/vultrdyn/internal/tui"
)

// CleanupCommand returns the "records cleanup" subcommand.
func CleanupCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cleanup <domain>",
		Short: "Remove duplicate records for a name interactively",
		Long: `Find duplicate records for a (name, type) pair on the given domain and
remove all but one. Duplicates arise when the same logical record was
created under different name representations ("", "@", or the full domain
for the root). You pick which record to keep; the rest are deleted after
confirmation.

Examples:
  vultrdyn records cleanup example.com
  vultrdyn records cleanup example.com --subdomain blog --type AAAA`,
		Args: cobra.ExactArgs(1),
		RunE: runCleanup,
	}

	cmd.Flags().String("subdomain", "", "Subdomain to inspect (empty for the root record)")
	cmd.Flags().String("type", string(domain.RecordTypeA), "Record type to inspect (A or AAAA)")

	return cmd
}

func runCleanup(cmd *cobra.Command, args []string) error {
	domainName := args[0]
	subdomain, _ := cmd.Flags().GetString("subdomain")
	recordType, _ := cmd.Flags().GetString("type")

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
	matches, err := svc.FindRecords(ctx, domainName, subdomain, domain.RecordType(recordType))
	if err != nil {
		return fmt.Errorf("failed to inspect records: %w", err)
	}

	out := cmd.OutOrStdout()
	switch len(matches) {
	case 0:
		fmt.Fprintln(out, "No matching records found.")
		return nil
	case 1:
		fmt.Fprintf(out, "Single record found (%s), nothing to clean up.\n", matches[0].Content)
		return nil
	}

	deletions, err := tui.CleanupForm(matches)
	if err != nil {
		if errors.Is(err, tui.ErrCleanupAborted) {
			fmt.Fprintln(out, "Cleanup cancelled.")
			return nil
		}
		return err
	}

	for _, r := range deletions {
		if err := svc.DeleteRecord(ctx, domainName, r.ID); err != nil {
			return fmt.Errorf("failed to delete record %s: %w", r.ID, err)
		}
		fmt.Fprintf(out, "%s deleted %s (ID %s)\n", tui.Mark(true), r.Content, r.ID)
	}

	fmt.Fprintf(out, "Kept 1 record, deleted %d.\n", len(deletions))
	return nil
}
