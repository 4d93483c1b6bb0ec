package main

import (
	"context"
	"fmt"
	"os"

	"github.com/mcbagz/edSIS/internal/bootstrap"
	"github.com/mcbagz/edSIS/internal/config"

	"github.com/spf13/cobra"
)

func fetchCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "fetch",
		Short: "Extract schools and students from the SIS into snapshots without loading",
		RunE: func(cmd *cobra.Command, args []string) error {
			if cfg.Extract.Source != config.SourceAPI {
				return fmt.Errorf("fetch reads from the SIS API, not the %q source", cfg.Extract.Source)
			}
			if err := cfg.ValidateSIS(); err != nil {
				return err
			}
			cfg.Extract.Snapshot = true

			orch, err := bootstrap.NewPipeline(cfg, nil)
			if err != nil {
				return err
			}

			counts, err := orch.Fetch(context.Background())
			if err != nil {
				return fmt.Errorf("fetch failed: %w", err)
			}
			return printJSON(os.Stdout, counts)
		},
	}
}
