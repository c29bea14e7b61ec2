// Package cli holds the plumbing shared by all commands: global flag
// handling, logger construction, config loading, and service wiring.
package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"nathanbeddoewebdev/vultrdyn/internal/auth"
	"nathanbeddoewebdev/vultrdyn/internal/config"
	"nathanbeddoewebdev/vultrdyn/internal/dns/services"
	"nathanbeddoewebdev/vultrdyn/internal/dns/vultr"
	"nathanbeddoewebdev/vultrdyn/internal/logging"
)

// Flag names registered as persistent flags on the root command.
const (
	FlagConfig   = "config"
	FlagLogLevel = "log-level"
	FlagLogFile  = "log-file"
)

// Logger builds the application logger from the global flags.
func Logger(cmd *cobra.Command) (*zap.SugaredLogger, error) {
	level, _ := cmd.Flags().GetString(FlagLogLevel)
	file, _ := cmd.Flags().GetString(FlagLogFile)
	return logging.New(level, file)
}

// ConfigPath returns the configuration file path from the global flag.
func ConfigPath(cmd *cobra.Command) string {
	path, _ := cmd.Flags().GetString(FlagConfig)
	return path
}

// LoadConfig loads and validates the configuration named by the global flag.
func LoadConfig(cmd *cobra.Command) (*config.Config, string, error) {
	path := ConfigPath(cmd)
	cfg, err := config.Load(path)
	if err != nil {
		return nil, path, err
	}
	return cfg, path, nil
}

// NewService builds the Vultr-backed DNS service for the given config,
// resolving the API key from the config value or the OS keyring.
func NewService(cfg *config.Config, log *zap.SugaredLogger) (*services.Service, *vultr.Client, error) {
	apiKey, err := auth.ResolveAPIKey(cfg.APIKey, auth.DefaultStore())
	if err != nil {
		return nil, nil, fmt.Errorf("no API key available: set api_key in the config or run 'vultrdyn auth login': %w", err)
	}
	client := vultr.New(apiKey)
	return services.New(client, services.WithLogger(log)), client, nil
}

// CheckConnectivity verifies API access and logs the account, returning the
// verification error unchanged for the caller to handle.
func CheckConnectivity(ctx context.Context, client *vultr.Client, log *zap.SugaredLogger) error {
	email, err := client.VerifyAuth(ctx)
	if err != nil {
		return err
	}
	log.Infow("API connection successful", "account", email)
	return nil
}
