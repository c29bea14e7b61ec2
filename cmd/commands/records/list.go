package records

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"nathanbeddoewebdev/vultrdyn/internal/cli"
)

// ListCommand returns the "records list" subcommand.
func ListCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list <domain>",
		Short: "List all DNS records for a domain",
		Long: `List every DNS record on the given domain, with names exactly as the
API reports them. Root records may appear as "", "@", or the domain itself
depending on how they were created.

Examples:
  vultrdyn records list example.com
  vultrdyn records list example.com --type A`,
		Args: cobra.ExactArgs(1),
		RunE: runList,
	}

	cmd.Flags().String("type", "", "Filter records by type (A, AAAA, CNAME, MX, TXT, etc.)")

	return cmd
}

func runList(cmd *cobra.Command, args []string) error {
	domainName := args[0]
	typeFilter, _ := cmd.Flags().GetString("type")

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

	records, err := svc.ListRecords(cmd.Context(), domainName)
	if err != nil {
		return fmt.Errorf("failed to list records: %w", err)
	}

	if typeFilter != "" {
		filtered := records[:0]
		for _, r := range records {
			if strings.EqualFold(string(r.Type), typeFilter) {
				filtered = append(filtered, r)
			}
		}
		records = filtered
	}

	if len(records) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "No records found.")
		return nil
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 3, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tTYPE\tCONTENT\tTTL\tPRIORITY")
	fmt.Fprintln(w, "--\t----\t----\t-------\t---\t--------")

	for _, r := range records {
		name := r.Name
		if name == "" {
			name = `""`
		}
		prio := ""
		if r.Priority > 0 {
			prio = fmt.Sprintf("%d", r.Priority)
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%d\t%s\n",
			r.ID,
			name,
			string(r.Type),
			r.Content,
			r.TTL,
			prio,
		)
	}

	return w.Flush()
}
