package main

import (
	"fmt"
	"os"
	"strconv"

	"github.com/kelseyhightower/envconfig"
	"github.com/spf13/cobra"

	"github.com/saturnino-fabrica-de-software/rollcall/internal/config"
	"github.com/saturnino-fabrica-de-software/rollcall/internal/database"
)

// migrateEnv is the part of the configuration schema changes need; no JWT
// secret or provider is required.
type migrateEnv struct {
	Environment string `envconfig:"ENV" default:"development"`
	DatabaseURL string `envconfig:"DATABASE_URL" required:"true"`
}

func newMigrateCmd() *cobra.Command {
	var steps int

	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Manage the postgres schema",
		Long: `Applies or inspects the embedded postgres schema at DATABASE_URL. The API
applies pending migrations on boot; these commands are for operators.`,
	}

	run := func(apply func(*database.Migrator) (database.Status, error)) func(*cobra.Command, []string) error {
		return func(cmd *cobra.Command, args []string) error {
			var env migrateEnv
			if err := envconfig.Process("", &env); err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			logger := config.NewLoggerTo(env.Environment, os.Stderr)

			db, err := database.NewPool(database.DefaultPoolConfig(env.DatabaseURL))
			if err != nil {
				return err
			}
			defer func() { _ = db.Close() }()

			migrator, err := database.NewMigrator(db, "rollcall", logger)
			if err != nil {
				return err
			}
			defer func() { _ = migrator.Close() }()

			status, err := apply(migrator)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), status)
			return nil
		}
	}

	up := &cobra.Command{
		Use:   "up",
		Short: "Apply pending migrations",
		Args:  cobra.NoArgs,
		RunE:  run(func(m *database.Migrator) (database.Status, error) { return m.Up() }),
	}

	down := &cobra.Command{
		Use:   "down",
		Short: "Roll back migrations",
		Args:  cobra.NoArgs,
		RunE: run(func(m *database.Migrator) (database.Status, error) {
			return m.Down(steps)
		}),
	}
	down.Flags().IntVar(&steps, "steps", 1, "Number of migrations to roll back")

	status := &cobra.Command{
		Use:   "status",
		Short: "Print the applied schema version",
		Args:  cobra.NoArgs,
		RunE:  run(func(m *database.Migrator) (database.Status, error) { return m.Status() }),
	}

	force := &cobra.Command{
		Use:     "force VERSION",
		Short:   "Mark VERSION as applied after fixing a dirty migration by hand",
		Example: `  rollcall migrate force 1`,
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			version, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("version must be a number: %w", err)
			}
			return run(func(m *database.Migrator) (database.Status, error) {
				return m.Force(version)
			})(cmd, args)
		},
	}

	cmd.AddCommand(up, down, status, force)
	return cmd
}
