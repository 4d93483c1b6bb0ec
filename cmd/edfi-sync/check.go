package main

import (
	"context"
	"fmt"
	"os"

	"github.com/mcbagz/edSIS/internal/auth"
	"github.com/mcbagz/edSIS/internal/httpclient"
	"github.com/mcbagz/edSIS/internal/loader"
	"github.com/mcbagz/edSIS/internal/model"

	"github.com/spf13/cobra"
)

func checkCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "Test the Ed-Fi connection: token, API root and school count",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := cfg.ValidateEdFi(); err != nil {
				return err
			}

			ctx := context.Background()
			cred, err := auth.NewProvider(cfg).Acquire(ctx, model.SystemEdFi)
			if err != nil {
				return fmt.Errorf("token request failed: %w", err)
			}

			probe := loader.NewProbe(cfg, httpclient.New(cfg.EdFi.Timeout, cfg.EdFi.InsecureSkipVerify))
			report, err := probe.Check(ctx, cred)
			if err != nil {
				return fmt.Errorf("connection test failed: %w", err)
			}
			return printJSON(os.Stdout, report)
		},
	}
}
