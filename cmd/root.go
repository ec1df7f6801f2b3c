package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/usdt-vault/vault_service/internal/infrastructure/config"
	"github.com/usdt-vault/vault_service/pkg/logger"
	"github.com/usdt-vault/vault_service/pkg/version"
)

var rootCmd = &cobra.Command{
	Use:           "vault",
	Short:         "USDT Vault service",
	Long:          "Ledger, savings goals and investment plans backed by a read-only view of a BEP20 USDT wallet.",
	Version:       version.Get().Version,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          runServe,
}

// Execute is the main entry point called from main.go.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

// bootstrap loads configuration and builds the process logger.
func bootstrap() (*config.Config, *logger.Logger, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load config: %w", err)
	}
	return cfg, logger.New(cfg.LogLevel, cfg.Environment), nil
}
