package main

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/usdt-vault/vault_service/internal/cli"
	"github.com/usdt-vault/vault_service/internal/infrastructure/cache"
	"github.com/usdt-vault/vault_service/internal/infrastructure/di"
)

const walletViewTimeout = 30 * time.Second

var (
	flagAddress  string
	flagUsername string
	flagLimit    int
)

var walletCmd = &cobra.Command{
	Use:   "wallet",
	Short: "Show one wallet's balance and recent transactions",
	Long:  "Reads the balance and recent transfers of a single address. --address and --username fall back to WALLET_ADDRESS and WALLET_USERNAME.",
	RunE:  runWallet,
}

func init() {
	walletCmd.Flags().StringVarP(&flagAddress, "address", "a", "", "Wallet address (defaults to WALLET_ADDRESS)")
	walletCmd.Flags().StringVarP(&flagUsername, "username", "u", "", "Display name (defaults to WALLET_USERNAME)")
	walletCmd.Flags().IntVarP(&flagLimit, "limit", "l", 10, "Number of transactions to show")
	rootCmd.AddCommand(walletCmd)
}

func runWallet(_ *cobra.Command, _ []string) error {
	cfg, log, err := bootstrap()
	if err != nil {
		return err
	}

	address := flagAddress
	if address == "" {
		address = cfg.Wallet.Address
	}
	if address == "" {
		return errors.New("no wallet address: pass --address or set WALLET_ADDRESS")
	}
	username := flagUsername
	if username == "" {
		username = cfg.Wallet.Username
	}

	ctx, cancel := context.WithTimeout(context.Background(), walletViewTimeout)
	defer cancel()

	chain, err := di.NewChainServicesBuilder(cfg, cache.NewMemoryCache(), log.Zap()).Build(ctx)
	if err != nil {
		return err
	}
	defer chain.RPC.Close()

	overview, err := chain.Wallet.Overview(ctx, address, flagLimit)
	if err != nil {
		return err
	}
	fmt.Println(cli.RenderWallet(username, overview))
	return nil
}
