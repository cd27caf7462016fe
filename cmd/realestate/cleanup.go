package main

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/spf13/cobra"

	"github.com/heartmarshall/realestate-backend/internal/adapter/postgres"
	"github.com/heartmarshall/realestate-backend/internal/adapter/postgres/image"
)

const cleanupTimeout = 5 * time.Minute

// newCleanupCmd physically removes images soft-deleted before the retention
// window. It is intended to be invoked by an external cron job.
func newCleanupCmd(env *runtimeEnv) *cobra.Command {
	var retention time.Duration

	cmd := &cobra.Command{
		Use:   "cleanup",
		Short: "Purge soft-deleted property images past the retention period",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if retention == 0 {
				retention = env.cfg.Listing.ImageRetention()
			}
			if retention < 0 {
				return fmt.Errorf("retention must be >= 0 (got %s)", retention)
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), cleanupTimeout)
			defer cancel()

			pool, err := postgres.NewPool(ctx, env.cfg.Database)
			if err != nil {
				return fmt.Errorf("connect to database: %w", err)
			}
			defer pool.Close()

			threshold := time.Now().Add(-retention)
			deleted, err := image.New(pool).PurgeDeleted(ctx, threshold)
			if err != nil {
				env.logger.Error("image purge failed",
					slog.String("error", err.Error()),
					slog.Time("threshold", threshold),
				)
				return err
			}

			env.logger.Info("image purge completed",
				slog.Int64("deleted", deleted),
				slog.Time("threshold", threshold),
			)
			return nil
		},
	}

	cmd.Flags().DurationVar(&retention, "retention", 0, "override listing.image_retention_days (e.g. 72h)")
	return cmd
}
