// Package cmd holds the storefront command line: the API server and its
// maintenance commands.
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/zylpheon/TheZylpheonAdmin/config"
	"github.com/zylpheon/TheZylpheonAdmin/logger"
)

var configDir string

var rootCmd = &cobra.Command{
	Use:   "storefront",
	Short: "Clothing storefront and admin API",
	Long: `storefront serves the customer storefront (catalog, cart, checkout, order
history) and the admin panel API (catalog, orders and user management).`,
	SilenceUsage: true,
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configDir, "config", "./config", "Directory containing config.yml")
}

// bootstrap loads configuration and builds the process logger.
func bootstrap() (*config.Config, *zap.Logger, error) {
	cfg, err := config.LoadConfig(configDir)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load config: %w", err)
	}
	log, err := logger.New(cfg.Log.Level, cfg.Log.Development)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to build logger: %w", err)
	}
	return cfg, log, nil
}
