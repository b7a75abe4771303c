// Package cmd provides the CLI commands for the scpctl application.
package cmd

import (
	"fmt"

	"github.com/andrei-cloud/go_hsm/internal/config"
	"github.com/andrei-cloud/go_hsm/internal/logging"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var cfg *config.Config

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "scpctl",
	Short: "GlobalPlatform secure channel protocol engine",
	Long: `scpctl derives SCP01/02/03 session keys, generates host and card
cryptograms, wraps APDUs for secure messaging, validates delete/install/load
receipts and R-MACs, and signs data with RSA-SHA1 for card content
management.`,
	SilenceErrors: true,
	SilenceUsage:  true,
	PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
		if err := config.Initialize(); err != nil {
			return fmt.Errorf("failed to initialize configuration: %w", err)
		}
		cfg = config.Get()

		flags := cmd.Flags()
		if flags.Changed("log-level") {
			cfg.Log.Level, _ = flags.GetString("log-level")
		}
		if flags.Changed("log-format") {
			cfg.Log.Format, _ = flags.GetString("log-format")
		}

		human := cfg.Log.Format != "json"
		debug := cfg.Log.Level == "debug"
		logging.InitLogger(debug, human)

		return nil
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().
		String("log-level", "info", "logging level (debug or info; any other value logs at info)")
	rootCmd.PersistentFlags().String("log-format", "", "logging format (human, json)")

	viper.BindPFlag("log.level", rootCmd.PersistentFlags().Lookup("log-level"))
	viper.BindPFlag("log.format", rootCmd.PersistentFlags().Lookup("log-format"))
}
