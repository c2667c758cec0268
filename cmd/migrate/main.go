package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/spf13/cobra"

	"climate-dashboard/internal/config"
	"climate-dashboard/migrations"
)

func main() {
	var configPath string

	root := &cobra.Command{
		Use:           "migrate",
		Short:         "Apply the simulation run archive schema",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&configPath, "config", os.Getenv(config.EnvConfigPath), "path to config file")

	for _, direction := range []migrations.Direction{migrations.Up, migrations.Down} {
		root.AddCommand(&cobra.Command{
			Use:   string(direction),
			Short: fmt.Sprintf("Run the %s migration", direction),
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				return run(cmd.Context(), configPath, direction)
			},
		})
	}

	if err := root.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintf(os.Stderr, "Migration failed: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, configPath string, direction migrations.Direction) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	name, content, err := migrations.Read(direction)
	if err != nil {
		return err
	}

	connectCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	db, err := sqlx.ConnectContext(connectCtx, "postgres", cfg.Database.Connection().DSN())
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer db.Close()

	fmt.Println("Connected to database successfully")
	fmt.Printf("Running migration: %s\n", name)

	if _, err := db.ExecContext(ctx, content); err != nil {
		return fmt.Errorf("failed to execute migration: %w", err)
	}

	fmt.Println("Migration completed successfully")
	return nil
}
