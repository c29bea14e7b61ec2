// Package records provides the "records" subcommands: raw record listing
// and interactive cleanup of duplicate records.
package records

import (
	"github.com/spf13/cobra"
)

// NewCommand returns the top-level "records" Cobra command with all subcommands attached.
func NewCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "records",
		Short: "Inspect and tidy DNS records on Vultr",
		Long: `Utilities for working with raw Vultr DNS records: list every record on a
domain as the API reports it, and clean up duplicates left behind by other
tooling.`,
	}

	cmd.AddCommand(ListCommand())
	cmd.AddCommand(CleanupCommand())

	return cmd
}
