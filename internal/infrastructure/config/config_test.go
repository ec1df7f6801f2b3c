package config

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("DATABASE_URL", "")
	t.Setenv("MONGODB_URI", "")
	t.Setenv("STORE_DRIVER", "")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "development", cfg.Environment)
	assert.Equal(t, StoreDriverNone, cfg.Store.Driver)
	assert.Equal(t, "https://bsc-dataseed.binance.org/", cfg.Chain.RPCURL)
	assert.Equal(t, "0x55d398326f99059ff775485246999027b3197955", cfg.Chain.TokenAddress)
	assert.Equal(t, "https://api.bscscan.com/api", cfg.Explorer.BaseURL)
	assert.Equal(t, 30, cfg.Chain.BalanceCacheTTL)
	assert.Equal(t, "@hashyz", cfg.Wallet.Username)
	assert.Equal(t, 5, cfg.Security.PINMaxAttempts)
	assert.True(t, cfg.Pricing.NativePrice().Equal(decimal.NewFromInt(300)))
	assert.NotEmpty(t, cfg.JWT.Secret)
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("DATABASE_URL", "")
	t.Setenv("MONGODB_URI", "mongodb://localhost:27017")
	t.Setenv("STORE_DRIVER", "")
	t.Setenv("BSCSCAN_API_KEY", "explorer-key")
	t.Setenv("WALLET_ADDRESS", "0x55d398326f99059fF775485246999027B3197955")
	t.Setenv("PORT", "9090")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, StoreDriverMongo, cfg.Store.Driver)
	assert.Equal(t, "explorer-key", cfg.Explorer.APIKey)
	assert.Equal(t, "0x55d398326f99059fF775485246999027B3197955", cfg.Wallet.Address)
	assert.Equal(t, 9090, cfg.Server.Port)
}

func TestLoad_ProductionRequiresSecret(t *testing.T) {
	t.Setenv("ENVIRONMENT", "production")
	t.Setenv("JWT_SECRET", "")

	_, err := Load()
	assert.Error(t, err)
}

func TestValidate_UnknownDriver(t *testing.T) {
	cfg := &Config{
		JWT:      JWTConfig{Secret: "x"},
		Store:    StoreConfig{Driver: "cassandra"},
		Chain:    ChainConfig{RPCURL: "http://node"},
		Explorer: ExplorerConfig{BaseURL: "http://explorer"},
		Pricing:  PricingConfig{NativeUSD: "300"},
		Security: SecurityConfig{PINMaxAttempts: 5},
	}
	assert.Error(t, validate(cfg))

	cfg.Store.Driver = StoreDriverMemory
	assert.NoError(t, validate(cfg))
}

func TestPricing_InvalidFallsBack(t *testing.T) {
	p := PricingConfig{NativeUSD: "not-a-number"}
	assert.True(t, p.NativePrice().Equal(decimal.NewFromInt(300)))
}
