package main

import (
	"context"
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/saturnino-fabrica-de-software/rollcall/internal/app"
	"github.com/saturnino-fabrica-de-software/rollcall/internal/config"
)

func newRootCmd() *cobra.Command {
	var envFile string

	root := &cobra.Command{
		Use:   "rollcall",
		Short: "Face based attendance and performance alerts",
		Long: `rollcall records attendance from captured frames, enrolls employee faces
and reports threshold alerts. It reads the same environment as the API
server (STORAGE_DRIVER, DATA_DIR, DATABASE_URL, PROVIDER_TYPE, ...).`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			// .env file is optional, don't fail if not found
			if envFile != "" {
				if err := godotenv.Load(envFile); err != nil {
					return fmt.Errorf("load %s: %w", envFile, err)
				}
				return nil
			}
			_ = godotenv.Load()
			return nil
		},
	}
	root.PersistentFlags().StringVar(&envFile, "env-file", "", "Environment file to load instead of ./.env")

	root.AddCommand(newCaptureCmd(), newAlertsCmd(), newEnrollCmd(), newMigrateCmd())
	return root
}

// openApp loads the configuration and wires the services. Logs go to stderr.
func openApp(ctx context.Context) (*app.App, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	logger := config.NewLoggerTo(cfg.Environment, os.Stderr)
	return app.Open(ctx, cfg, logger)
}
