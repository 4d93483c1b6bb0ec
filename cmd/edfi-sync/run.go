package main

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/mcbagz/edSIS/internal/bootstrap"
	"github.com/mcbagz/edSIS/internal/config"
	"github.com/mcbagz/edSIS/internal/db"
	"github.com/mcbagz/edSIS/internal/logger"
	"github.com/mcbagz/edSIS/internal/pipeline"

	"github.com/spf13/cobra"
)

func runCmd() *cobra.Command {
	var (
		snapshot     bool
		placeholders string
	)

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run one full sync: authenticate, extract, map and load",
		Long: `Run one full sync. Schools are loaded before students.

Per-record failures are counted and reported in the summary; the command
still exits 0. Authentication or extraction failures abort the run and
exit non-zero.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Flags().Changed("snapshot") {
				cfg.Extract.Snapshot = snapshot
			}
			if placeholders != "" {
				cfg.Mapping.Placeholders = placeholders
			}
			if err := cfg.Validate(); err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			rec, closeDB, err := openRecorder(ctx, cfg)
			if err != nil {
				return err
			}
			defer closeDB()

			orch, err := bootstrap.NewPipeline(cfg, rec)
			if err != nil {
				return err
			}

			summary, runErr := orch.Run(ctx)
			if err := printJSON(os.Stdout, summary); err != nil {
				return err
			}
			if runErr != nil {
				return fmt.Errorf("sync aborted: %w", runErr)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&snapshot, "snapshot", false, "Save raw SIS responses to storage while extracting")
	cmd.Flags().StringVar(&placeholders, "placeholders", "", "Placeholder policy: include or omit")

	return cmd
}

// openRecorder returns a ledger-backed recorder when the database is enabled.
func openRecorder(ctx context.Context, cfg *config.Config) (pipeline.Recorder, func(), error) {
	if !cfg.Database.Enabled {
		return nil, func() {}, nil
	}

	database, err := db.NewConnection(cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	if err := db.Migrate(ctx, database); err != nil {
		database.Close()
		return nil, nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	log := logger.Get()
	log.Info().Msg("Recording run to the database ledger")
	return db.NewRecorder(db.NewRepository(database)), closer(database), nil
}

func closer(database *sql.DB) func() {
	return func() { database.Close() }
}
