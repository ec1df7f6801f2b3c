package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/usdt-vault/vault_service/internal/infrastructure/database"
)

var migrateCmd = &cobra.Command{
	Use:       "migrate [up|down]",
	Short:     "Apply or roll back the Postgres schema",
	Args:      cobra.MatchAll(cobra.MaximumNArgs(1), cobra.OnlyValidArgs),
	ValidArgs: []string{string(database.MigrateUp), string(database.MigrateDown)},
	RunE:      runMigrate,
}

func init() {
	rootCmd.AddCommand(migrateCmd)
}

func runMigrate(_ *cobra.Command, args []string) error {
	cfg, log, err := bootstrap()
	if err != nil {
		return err
	}
	if cfg.Database.URL == "" {
		return errors.New("database url is not configured")
	}

	direction := database.MigrateUp
	if len(args) == 1 {
		direction = database.MigrateDirection(args[0])
	}
	if err := database.RunMigrations(cfg.Database.URL, cfg.Database.MigrationsPath, direction); err != nil {
		return err
	}
	log.Info("Migrations applied", "direction", direction)
	fmt.Printf("migrations %s: done\n", direction)
	return nil
}
