// Package cmd implements the lyceumctl operator commands.
package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"lyceum/internal/app/bootstrap"
	"lyceum/internal/platform/config"
)

var (
	// Global flags
	configPath   string
	outputFormat string

	// Shared app instance, built per invocation.
	app *bootstrap.App
)

var rootCmd = &cobra.Command{
	Use:   "lyceumctl",
	Short: "Operator CLI for the lyceum marketplace",
	Long: `lyceumctl runs maintenance tasks against a lyceum deployment:
schema migration, session token minting and role administration.

Configuration is read the same way the API reads it: LYCEUM_CONFIG or
--config for a YAML file, then LYCEUM_* environment overrides.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if cmd.Name() == "completion" || cmd.Name() == "help" {
			return nil
		}
		cfg, err := loadConfig()
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		if cfg.StorageDriver == config.StorageMemory {
			fmt.Fprintln(cmd.ErrOrStderr(), "warning: storage_driver=memory, changes are not persisted")
		}
		app, err = bootstrap.Build(cmd.Context(), cfg, cfg.NewLogger(cmd.ErrOrStderr()))
		if err != nil {
			return fmt.Errorf("failed to build app: %w", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if app != nil {
			_ = app.Close()
			app = nil
		}
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "YAML config file (default: $LYCEUM_CONFIG)")
	rootCmd.PersistentFlags().StringVarP(&outputFormat, "output", "o", "table", "Output format: table, json")
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.ExecuteContext(context.Background())
}

func loadConfig() (config.Config, error) {
	if configPath != "" {
		return config.LoadFile(configPath)
	}
	return config.Load()
}

// formatOutput prints v as JSON, or calls table for the default format.
func formatOutput(w io.Writer, v any, table func(io.Writer)) error {
	switch outputFormat {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	case "table", "":
		table(w)
		return nil
	default:
		return fmt.Errorf("unknown output format %q", outputFormat)
	}
}
