// Command realestate runs the property listings backend and its maintenance
// tasks: schema migrations and purging of soft-deleted images.
//
// Exit codes: 0 = success, 1 = error.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/heartmarshall/realestate-backend/internal/app"
	"github.com/heartmarshall/realestate-backend/internal/config"
)

// runtimeEnv is populated by the root command before any subcommand runs.
type runtimeEnv struct {
	cfg    *config.Config
	logger *slog.Logger
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		stop()
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	env := &runtimeEnv{}
	var configPath string

	root := &cobra.Command{
		Use:           "realestate",
		Short:         "Real-estate listings backend",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if cmd.Annotations["skipConfig"] == "true" {
				return nil
			}
			if configPath != "" {
				if err := os.Setenv("CONFIG_PATH", configPath); err != nil {
					return fmt.Errorf("set CONFIG_PATH: %w", err)
				}
			}

			cfg, err := config.Load()
			if err != nil {
				return err
			}
			env.cfg = cfg
			env.logger = app.NewLogger(cfg.Log)
			return nil
		},
	}

	root.PersistentFlags().StringVarP(&configPath, "config", "c", "", "path to config.yaml (overrides CONFIG_PATH)")

	root.AddCommand(
		newServeCmd(env),
		newMigrateCmd(env),
		newCleanupCmd(env),
		newVersionCmd(),
	)
	return root
}
