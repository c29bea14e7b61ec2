// Package daemon provides the "daemon" subcommand, the long-running
// monitoring mode. The root command delegates here when invoked bare.
package daemon

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"nathanbeddoewebdev/vultrdyn/internal/auth"
	"nathanbeddoewebdev/vultrdyn/internal/cli"
	"nathanbeddoewebdev/vultrdyn/internal/daemon"
)

// NewCommand returns the "daemon" subcommand.
func NewCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "daemon",
		Short: "Run continuously, updating records when the public IP changes",
		Long: `Run the monitoring loop: resolve the public IP every check interval and
reconcile all configured records when it changes. The configuration file is
watched for changes and reloaded without a restart. Stop with SIGINT or
SIGTERM.`,
		Args: cobra.NoArgs,
		RunE: Run,
	}
}

// Run starts the daemon loop. It is also the root command's default action.
func Run(cmd *cobra.Command, args []string) error {
	log, err := cli.Logger(cmd)
	if err != nil {
		return err
	}
	defer log.Sync()

	cfg, cfgPath, err := cli.LoadConfig(cmd)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	d := daemon.New(cfgPath, cfg, auth.DefaultStore(), log)
	return d.Run(ctx)
}
