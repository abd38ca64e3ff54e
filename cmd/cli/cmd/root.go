// Package cmd provides the finwise CLI commands.
package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/dvloznov/finwise/internal/app"
	"github.com/dvloznov/finwise/internal/config"
	"github.com/dvloznov/finwise/internal/logger"
)

var (
	envFile  string
	logLevel string

	cfg *config.Config
	log zerolog.Logger
)

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "finwise",
	Short: "Personal finance coaching from the command line",
	Long: `finwise imports transactions, classifies them and produces
coaching insights using the same configuration as the API server.

Example:
  finwise import statements/jan.csv
  finwise classify "Swiggy order" --amount 450 --type expense
  finwise coach`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		loaded, err := config.Load(envFile)
		if err != nil {
			return err
		}
		cfg = loaded

		level := cfg.LogLevel
		if logLevel != "" {
			level = logLevel
		}
		log = logger.NewWithLevel(level)
		cmd.SetContext(logger.WithContext(cmd.Context(), log))
		return nil
	},
}

// Execute adds all child commands to the root command and runs it.
func Execute() error {
	return rootCmd.ExecuteContext(context.Background())
}

func init() {
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", ".env", "dotenv file to load before reading the environment")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "override LOG_LEVEL (debug, info, warn, error)")

	rootCmd.AddCommand(importCmd)
	rootCmd.AddCommand(classifyCmd)
	rootCmd.AddCommand(coachCmd)
	rootCmd.AddCommand(uploadCmd)
}

func openApp(ctx context.Context) (*app.App, error) {
	a, err := app.New(ctx, cfg, log)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize: %w", err)
	}
	return a, nil
}

func printJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
