package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/usdt-vault/vault_service/internal/domain/services/pin"
	"github.com/usdt-vault/vault_service/internal/infrastructure/di"
)

var adminCmd = &cobra.Command{
	Use:   "admin",
	Short: "Operator commands",
}

var resetPINCmd = &cobra.Command{
	Use:   "reset-pin <username>",
	Short: "Clear a user's failed PIN attempts and lift the lock",
	Args:  cobra.ExactArgs(1),
	RunE:  runResetPIN,
}

func init() {
	adminCmd.AddCommand(resetPINCmd)
	rootCmd.AddCommand(adminCmd)
}

func runResetPIN(_ *cobra.Command, args []string) error {
	cfg, log, err := bootstrap()
	if err != nil {
		return err
	}

	ctx := context.Background()
	store := di.NewStoreBuilder(cfg, log.Zap()).Build(ctx)
	defer store.Close()

	pins := pin.NewService(store.Users(), pin.Config{
		MaxAttempts: cfg.Security.PINMaxAttempts,
		BcryptCost:  cfg.Security.BcryptCost,
	}, log.Zap())
	if err := pins.ResetFailuresByUsername(ctx, args[0]); err != nil {
		return fmt.Errorf("reset pin for %s: %w", args[0], err)
	}
	fmt.Printf("PIN attempts reset for %s\n", args[0])
	return nil
}
