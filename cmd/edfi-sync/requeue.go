package main

import (
	"context"
	"fmt"

	"github.com/mcbagz/edSIS/internal/queue"

	"github.com/spf13/cobra"
)

func requeueCmd() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "requeue",
		Short: "Move dead-lettered sync jobs back onto the sync queue",
		RunE: func(cmd *cobra.Command, args []string) error {
			redisClient, err := queue.NewRedisClient(cfg)
			if err != nil {
				return fmt.Errorf("failed to connect to Redis: %w", err)
			}
			defer redisClient.Close()

			ctx := context.Background()
			moved, err := queue.NewConsumer(redisClient, cfg).RequeueDeadLetters(ctx, limit)
			if err != nil {
				return fmt.Errorf("requeue stopped after %d jobs: %w", moved, err)
			}

			depth, err := queue.NewProducer(redisClient, cfg).QueueDepth(ctx)
			if err != nil {
				return err
			}
			fmt.Printf("Requeued %d jobs, %d now waiting\n", moved, depth)
			return nil
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 100, "Maximum jobs to requeue")

	return cmd
}
