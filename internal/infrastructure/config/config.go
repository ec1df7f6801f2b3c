package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
	"github.com/spf13/viper"
)

const (
	StoreDriverPostgres = "postgres"
	StoreDriverMongo    = "mongo"
	StoreDriverMemory   = "memory"
	StoreDriverNone     = "none"

	developmentJWTSecret = "development-only-jwt-secret-change-me"
)

// Config holds all configuration for the application
type Config struct {
	Environment    string               `mapstructure:"environment"`
	LogLevel       string               `mapstructure:"log_level"`
	Server         ServerConfig         `mapstructure:"server"`
	Store          StoreConfig          `mapstructure:"store"`
	Database       DatabaseConfig       `mapstructure:"database"`
	Mongo          MongoConfig          `mapstructure:"mongo"`
	Redis          RedisConfig          `mapstructure:"redis"`
	JWT            JWTConfig            `mapstructure:"jwt"`
	Chain          ChainConfig          `mapstructure:"chain"`
	Explorer       ExplorerConfig       `mapstructure:"explorer"`
	Pricing        PricingConfig        `mapstructure:"pricing"`
	Wallet         WalletConfig         `mapstructure:"wallet"`
	Security       SecurityConfig       `mapstructure:"security"`
	Reconciliation ReconciliationConfig `mapstructure:"reconciliation"`
	NATS           NATSConfig           `mapstructure:"nats"`
	Tracing        TracingConfig        `mapstructure:"tracing"`
}

type ServerConfig struct {
	Port            int      `mapstructure:"port"`
	Host            string   `mapstructure:"host"`
	ReadTimeout     int      `mapstructure:"read_timeout"`
	WriteTimeout    int      `mapstructure:"write_timeout"`
	AllowedOrigins  []string `mapstructure:"allowed_origins"`
	RateLimitPerMin int      `mapstructure:"rate_limit_per_min"`
	MaxBodyBytes    int64    `mapstructure:"max_body_bytes"`
}

// StoreConfig selects the ledger store backend.
// An empty driver is resolved from whichever connection string is present.
type StoreConfig struct {
	Driver string `mapstructure:"driver"`
}

type DatabaseConfig struct {
	URL             string `mapstructure:"url"`
	Host            string `mapstructure:"host"`
	Port            int    `mapstructure:"port"`
	Name            string `mapstructure:"name"`
	User            string `mapstructure:"user"`
	Password        string `mapstructure:"password"`
	SSLMode         string `mapstructure:"ssl_mode"`
	MaxOpenConns    int    `mapstructure:"max_open_conns"`
	MaxIdleConns    int    `mapstructure:"max_idle_conns"`
	ConnMaxLifetime int    `mapstructure:"conn_max_lifetime"`
	QueryTimeout    int    `mapstructure:"query_timeout"`
	MaxRetries      int    `mapstructure:"max_retries"`
	MigrationsPath  string `mapstructure:"migrations_path"`
}

type MongoConfig struct {
	URI            string `mapstructure:"uri"`
	Database       string `mapstructure:"database"`
	ConnectTimeout int    `mapstructure:"connect_timeout"`
}

type RedisConfig struct {
	Enabled    bool   `mapstructure:"enabled"`
	Host       string `mapstructure:"host"`
	Port       int    `mapstructure:"port"`
	Password   string `mapstructure:"password"`
	DB         int    `mapstructure:"db"`
	MaxRetries int    `mapstructure:"max_retries"`
	PoolSize   int    `mapstructure:"pool_size"`
}

type JWTConfig struct {
	Secret     string `mapstructure:"secret"`
	AccessTTL  int    `mapstructure:"access_token_ttl"`
	RefreshTTL int    `mapstructure:"refresh_token_ttl"`
	Issuer     string `mapstructure:"issuer"`
}

// ChainConfig describes the JSON-RPC node and the tracked token.
// Timeouts and TTLs are in seconds.
type ChainConfig struct {
	Name            string `mapstructure:"name"`
	RPCURL          string `mapstructure:"rpc_url"`
	TokenAddress    string `mapstructure:"token_address"`
	TokenSymbol     string `mapstructure:"token_symbol"`
	NativeSymbol    string `mapstructure:"native_symbol"`
	NativeDecimals  int    `mapstructure:"native_decimals"`
	Timeout         int    `mapstructure:"timeout"`
	BalanceCacheTTL int    `mapstructure:"balance_cache_ttl"`
}

type ExplorerConfig struct {
	BaseURL         string  `mapstructure:"base_url"`
	APIKey          string  `mapstructure:"api_key"`
	Timeout         int     `mapstructure:"timeout"`
	RateLimitPerSec float64 `mapstructure:"rate_limit_per_sec"`
	MaxRetries      int     `mapstructure:"max_retries"`
	DefaultLimit    int     `mapstructure:"default_limit"`
}

type PricingConfig struct {
	NativeUSD string `mapstructure:"native_usd"`
}

// WalletConfig configures the standalone single-wallet viewer.
type WalletConfig struct {
	Address  string `mapstructure:"address"`
	Username string `mapstructure:"username"`
}

type SecurityConfig struct {
	BcryptCost        int `mapstructure:"bcrypt_cost"`
	PINMaxAttempts    int `mapstructure:"pin_max_attempts"`
	PasswordMinLength int `mapstructure:"password_min_length"`
	UsernameMinLength int `mapstructure:"username_min_length"`
}

type ReconciliationConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Schedule string `mapstructure:"schedule"`
	Timeout  int    `mapstructure:"timeout"`
}

type NATSConfig struct {
	URL           string `mapstructure:"url"`
	SubjectPrefix string `mapstructure:"subject_prefix"`
}

type TracingConfig struct {
	Enabled      bool    `mapstructure:"enabled"`
	CollectorURL string  `mapstructure:"collector_url"`
	SampleRate   float64 `mapstructure:"sample_rate"`
	Insecure     bool    `mapstructure:"insecure"`
}

// IsProduction reports whether the service runs in a production-like environment.
func (c *Config) IsProduction() bool {
	return c.Environment == "production" || c.Environment == "staging"
}

// NativePrice returns the configured native-coin fiat price.
func (c PricingConfig) NativePrice() decimal.Decimal {
	d, err := decimal.NewFromString(c.NativeUSD)
	if err != nil {
		return decimal.NewFromInt(300)
	}
	return d
}

// Load loads configuration from environment variables and config files
func Load() (*Config, error) {
	// Load .env file if it exists (ignore errors if file doesn't exist)
	_ = godotenv.Load()

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("./configs")
	v.AddConfigPath(".")

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	overrideFromEnv(v)

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	if config.Database.URL == "" && config.Database.Host != "" && config.Database.Name != "" {
		config.Database.URL = fmt.Sprintf(
			"postgres://%s:%s@%s:%d/%s?sslmode=%s",
			config.Database.User,
			config.Database.Password,
			config.Database.Host,
			config.Database.Port,
			config.Database.Name,
			config.Database.SSLMode,
		)
	}

	config.Store.Driver = resolveStoreDriver(&config)

	if config.JWT.Secret == "" && !config.IsProduction() {
		config.JWT.Secret = developmentJWTSecret
	}

	if err := validate(&config); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &config, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("environment", "development")
	v.SetDefault("log_level", "info")

	v.SetDefault("server.port", 8080)
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.read_timeout", 30)
	v.SetDefault("server.write_timeout", 30)
	v.SetDefault("server.allowed_origins", []string{"*"})
	v.SetDefault("server.rate_limit_per_min", 120)
	v.SetDefault("server.max_body_bytes", 1<<20)

	v.SetDefault("store.driver", "")

	// Database left without host/name so that an unconfigured deployment
	// starts with the store unavailable instead of failing.
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.user", "postgres")
	v.SetDefault("database.ssl_mode", "disable")
	v.SetDefault("database.max_open_conns", 25)
	v.SetDefault("database.max_idle_conns", 5)
	v.SetDefault("database.conn_max_lifetime", 3600)
	v.SetDefault("database.query_timeout", 30)
	v.SetDefault("database.max_retries", 3)
	v.SetDefault("database.migrations_path", "file://migrations")

	v.SetDefault("mongo.database", "usdt_vault")
	v.SetDefault("mongo.connect_timeout", 10)

	v.SetDefault("redis.enabled", false)
	v.SetDefault("redis.host", "localhost")
	v.SetDefault("redis.port", 6379)
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.max_retries", 3)
	v.SetDefault("redis.pool_size", 10)

	v.SetDefault("jwt.access_token_ttl", 3600)
	v.SetDefault("jwt.refresh_token_ttl", 604800)
	v.SetDefault("jwt.issuer", "usdt-vault")

	v.SetDefault("chain.name", "bsc")
	v.SetDefault("chain.rpc_url", "https://bsc-dataseed.binance.org/")
	v.SetDefault("chain.token_address", "0x55d398326f99059ff775485246999027b3197955")
	v.SetDefault("chain.token_symbol", "USDT")
	v.SetDefault("chain.native_symbol", "BNB")
	v.SetDefault("chain.native_decimals", 18)
	v.SetDefault("chain.timeout", 10)
	v.SetDefault("chain.balance_cache_ttl", 30)

	v.SetDefault("explorer.base_url", "https://api.bscscan.com/api")
	v.SetDefault("explorer.timeout", 10)
	v.SetDefault("explorer.rate_limit_per_sec", 5)
	v.SetDefault("explorer.max_retries", 0)
	v.SetDefault("explorer.default_limit", 100)

	v.SetDefault("pricing.native_usd", "300")

	v.SetDefault("wallet.username", "@hashyz")

	v.SetDefault("security.bcrypt_cost", 12)
	v.SetDefault("security.pin_max_attempts", 5)
	v.SetDefault("security.password_min_length", 8)
	v.SetDefault("security.username_min_length", 3)

	v.SetDefault("reconciliation.enabled", false)
	v.SetDefault("reconciliation.schedule", "*/15 * * * *")
	v.SetDefault("reconciliation.timeout", 120)

	v.SetDefault("nats.subject_prefix", "vault")

	v.SetDefault("tracing.enabled", false)
	v.SetDefault("tracing.collector_url", "localhost:4317")
	v.SetDefault("tracing.sample_rate", 0.1)
	v.SetDefault("tracing.insecure", false)
}

func overrideFromEnv(v *viper.Viper) {
	if port := os.Getenv("PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			v.Set("server.port", p)
		}
	}

	if dbURL := os.Getenv("DATABASE_URL"); dbURL != "" {
		v.Set("database.url", dbURL)
	}
	if mongoURI := os.Getenv("MONGODB_URI"); mongoURI != "" {
		v.Set("mongo.uri", mongoURI)
	}
	if driver := os.Getenv("STORE_DRIVER"); driver != "" {
		v.Set("store.driver", strings.ToLower(driver))
	}

	if redisURL := os.Getenv("REDIS_HOST"); redisURL != "" {
		v.Set("redis.host", redisURL)
		v.Set("redis.enabled", true)
	}

	if jwtSecret := os.Getenv("JWT_SECRET"); jwtSecret != "" {
		v.Set("jwt.secret", jwtSecret)
	}

	if rpcURL := os.Getenv("BSC_RPC_URL"); rpcURL != "" {
		v.Set("chain.rpc_url", rpcURL)
	}
	if apiKey := os.Getenv("BSCSCAN_API_KEY"); apiKey != "" {
		v.Set("explorer.api_key", apiKey)
	}

	if address := os.Getenv("WALLET_ADDRESS"); address != "" {
		v.Set("wallet.address", address)
	}
	if username := os.Getenv("WALLET_USERNAME"); username != "" {
		v.Set("wallet.username", username)
	}

	if natsURL := os.Getenv("NATS_URL"); natsURL != "" {
		v.Set("nats.url", natsURL)
	}

	if endpoint := os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT"); endpoint != "" {
		v.Set("tracing.collector_url", endpoint)
		v.Set("tracing.enabled", true)
	}
}

func resolveStoreDriver(config *Config) string {
	if config.Store.Driver != "" {
		return config.Store.Driver
	}
	switch {
	case config.Database.URL != "":
		return StoreDriverPostgres
	case config.Mongo.URI != "":
		return StoreDriverMongo
	default:
		return StoreDriverNone
	}
}

func validate(config *Config) error {
	if config.JWT.Secret == "" {
		return fmt.Errorf("JWT secret is required")
	}
	if config.IsProduction() && len(config.JWT.Secret) < 32 {
		return fmt.Errorf("JWT secret must be at least 32 characters in %s", config.Environment)
	}

	switch config.Store.Driver {
	case StoreDriverPostgres:
		if config.Database.URL == "" {
			return fmt.Errorf("database url is required for the postgres store")
		}
	case StoreDriverMongo:
		if config.Mongo.URI == "" {
			return fmt.Errorf("mongo uri is required for the mongo store")
		}
	case StoreDriverMemory, StoreDriverNone:
	default:
		return fmt.Errorf("unknown store driver %q", config.Store.Driver)
	}

	if config.Chain.RPCURL == "" {
		return fmt.Errorf("chain rpc url is required")
	}
	if config.Explorer.BaseURL == "" {
		return fmt.Errorf("explorer base url is required")
	}
	if _, err := decimal.NewFromString(config.Pricing.NativeUSD); err != nil {
		return fmt.Errorf("pricing.native_usd must be a decimal: %w", err)
	}
	if config.Security.PINMaxAttempts <= 0 {
		return fmt.Errorf("security.pin_max_attempts must be positive")
	}

	return nil
}
