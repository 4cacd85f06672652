package main

import (
	"fmt"

	"beerorder/cmd"
	"beerorder/internal/adapters/out/postgres/migrations"

	"github.com/spf13/cobra"
)

var migrateCmd = &cobra.Command{
	Use:       "migrate [up|down]",
	Short:     "Apply or roll back database migrations",
	Args:      cobra.MatchAll(cobra.MaximumNArgs(1), cobra.OnlyValidArgs),
	ValidArgs: []string{"up", "down"},
	RunE:      runMigrate,
}

func init() {
	rootCmd.AddCommand(migrateCmd)
}

func runMigrate(_ *cobra.Command, args []string) error {
	configs, err := cmd.LoadConfig()
	if err != nil {
		return err
	}

	db, err := openDatabase(configs)
	if err != nil {
		return err
	}
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	defer func() { _ = sqlDB.Close() }()

	logger := newLogger(configs.LogLevel)
	if len(args) == 1 && args[0] == "down" {
		if err = migrations.Down(sqlDB); err != nil {
			return err
		}
		logger.Info("Rolled back the latest migration")
		return nil
	}

	if err = migrations.Up(sqlDB); err != nil {
		return fmt.Errorf("migrate up: %w", err)
	}
	logger.Info("Database is up to date")
	return nil
}
