package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/locvowork/employee_activity_nlq/internal/bootstrap"
	"github.com/locvowork/employee_activity_nlq/internal/database"
)

var (
	demoMode bool
	strategy string
)

var rootCmd = &cobra.Command{
	Use:          "nlq",
	Short:        "Ask natural-language questions about employee activity",
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&demoMode, "demo", false, "use a seeded in-memory SQLite database")
	rootCmd.PersistentFlags().StringVar(&strategy, "strategy", "", "synthesis strategy (template, model); overrides NLQ_STRATEGY")

	rootCmd.AddCommand(askCmd)
	rootCmd.AddCommand(benchCmd)
}

// newApp wires the application from the environment and the persistent flags.
func newApp(ctx context.Context) (*bootstrap.App, error) {
	if demoMode {
		os.Setenv("DB_DRIVER", database.DriverSQLite)
		os.Setenv("SQLITE_PATH", ":memory:")
	}
	if strategy != "" {
		os.Setenv("NLQ_STRATEGY", strategy)
	}

	app := bootstrap.NewApp()
	if err := app.Initialize(ctx); err != nil {
		return nil, err
	}
	if demoMode {
		if err := database.NewDataSeeder(app.DB).SeedData(ctx, database.DefaultSeedOptions()); err != nil {
			app.Close()
			return nil, fmt.Errorf("seed demo data: %w", err)
		}
	}
	return app, nil
}
