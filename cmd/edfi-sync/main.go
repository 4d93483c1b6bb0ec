package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/mcbagz/edSIS/internal/config"
	"github.com/mcbagz/edSIS/internal/logger"

	"github.com/spf13/cobra"
)

var Version = "dev"

// Set by the root command before any subcommand runs.
var (
	cfg       *config.Config
	logCloser io.Closer
)

func main() {
	var (
		configPath string
		source     string
		logLevel   string
	)

	rootCmd := &cobra.Command{
		Use:           "edfi-sync",
		Short:         "Synchronize schools and students from the SIS into Ed-Fi",
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if configPath != "" {
				os.Setenv("CONFIG_PATH", configPath)
			}

			loaded, err := config.Load()
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}
			if source != "" {
				loaded.Extract.Source = source
			}
			if logLevel != "" {
				loaded.Logging.Level = logLevel
			}

			closer, err := logger.Init(loaded.Logging.Level, loaded.Logging.Format, loaded.Logging.File)
			if err != nil {
				return fmt.Errorf("failed to open log file: %w", err)
			}

			cfg = loaded
			logCloser = closer
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if logCloser != nil {
				logCloser.Close()
			}
		},
	}

	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Path to config.yaml (overrides CONFIG_PATH)")
	rootCmd.PersistentFlags().StringVarP(&source, "source", "s", "", "Extraction source: api, file or xlsx")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level: debug, info, warn, error")

	rootCmd.AddCommand(runCmd())
	rootCmd.AddCommand(fetchCmd())
	rootCmd.AddCommand(checkCmd())
	rootCmd.AddCommand(requeueCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
