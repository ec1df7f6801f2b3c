package routes

import (
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "github.com/usdt-vault/vault_service/docs"
	"github.com/usdt-vault/vault_service/internal/api/handlers"
	"github.com/usdt-vault/vault_service/internal/api/middleware"
	"github.com/usdt-vault/vault_service/internal/infrastructure/di"
	"github.com/usdt-vault/vault_service/pkg/idempotency"
	"github.com/usdt-vault/vault_service/pkg/tracing"
)

// APIHandlers groups the /api/v1 handlers.
type APIHandlers struct {
	Auth      *handlers.AuthHandlers
	Account   *handlers.AccountHandlers
	PIN       *handlers.PINHandlers
	Ledger    *handlers.LedgerHandlers
	Savings   *handlers.SavingsHandlers
	Investing *handlers.InvestingHandlers
	Wallet    *handlers.WalletHandlers
}

// SetupRoutes configures all application routes
func SetupRoutes(container *di.Container) *gin.Engine {
	router := gin.New()
	handlers.RegisterValidators()

	// Global middleware - order matters for security
	router.Use(tracing.HTTPMiddleware()) // Tracing should be early in the chain
	router.Use(middleware.RequestID())
	router.Use(middleware.MetricsMiddleware())
	router.Use(middleware.RequestSizeLimit())
	router.Use(middleware.InputValidation())
	router.Use(middleware.Logger(container.Logger))
	router.Use(middleware.Recovery(container.Logger))
	router.Use(middleware.CORS(container.Config.Server.AllowedOrigins))
	router.Use(middleware.RateLimit(container.Config.Server.RateLimitPerMin))
	router.Use(middleware.SecurityHeaders())

	healthHandler := handlers.NewHealthHandler(container.Readiness, container.ZapLog)

	// Health checks (no auth required)
	router.GET("/health", healthHandler.Health)
	router.GET("/ready", healthHandler.Ready)
	router.GET("/live", healthHandler.Live)
	router.GET("/version", healthHandler.Version)
	router.GET("/metrics", handlers.Metrics())

	// Swagger documentation (development only)
	if !container.Config.IsProduction() {
		router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := APIHandlers{
		Auth:      handlers.NewAuthHandlers(container.AccountService, container.ZapLog),
		Account:   handlers.NewAccountHandlers(container.AccountService, container.ZapLog),
		PIN:       handlers.NewPINHandlers(container.PINService, container.ZapLog),
		Ledger:    handlers.NewLedgerHandlers(container.LedgerService, container.ZapLog),
		Savings:   handlers.NewSavingsHandlers(container.SavingsService, container.ZapLog),
		Investing: handlers.NewInvestingHandlers(container.InvestingService, container.ZapLog),
		Wallet:    handlers.NewWalletHandlers(container.WalletService(), container.ZapLog),
	}

	RegisterAPI(
		router.Group("/api/v1"),
		api,
		middleware.Authentication(container.AccountService),
		container.AuthRateLimiter.Limit(),
		idempotency.Middleware(container.Cache, idempotency.DefaultTTL, container.ZapLog),
	)
	return router
}

// RegisterAPI mounts the versioned API. authLimit guards the credential
// endpoints on top of the global limiter; idempotent wraps balance mutations.
func RegisterAPI(v1 *gin.RouterGroup, h APIHandlers, authenticated, authLimit, idempotent gin.HandlerFunc) {
	// Authentication routes (no auth required)
	auth := v1.Group("/auth")
	{
		auth.POST("/register", authLimit, h.Auth.Register)
		auth.POST("/login", authLimit, h.Auth.Login)
		auth.POST("/refresh", h.Auth.Refresh)
		auth.POST("/logout", authenticated, h.Auth.Logout)
	}

	// Public chain views
	v1.GET("/profiles", h.Account.PublicProfile)
	v1.GET("/chain/status", h.Wallet.ChainStatus)
	wallets := v1.Group("/wallets/:address")
	{
		wallets.GET("/balance", h.Wallet.Balance)
		wallets.GET("/transactions", h.Wallet.Transactions)
		wallets.GET("/transactions/export", h.Wallet.Export)
	}

	protected := v1.Group("/")
	protected.Use(authenticated)
	{
		me := protected.Group("/me")
		{
			me.GET("", h.Account.Me)
			me.GET("/stats", h.Account.Stats)
			me.PUT("/wallet", h.Account.LinkWallet)
			me.DELETE("/wallet", h.Account.UnlinkWallet)

			me.GET("/pin", h.PIN.Status)
			me.POST("/pin", h.PIN.Set)
			me.PUT("/pin", h.PIN.Change)
			me.POST("/pin/verify", authLimit, h.PIN.Verify)
		}

		ledger := protected.Group("/ledger")
		{
			ledger.GET("/transactions", h.Ledger.ListTransactions)
			ledger.GET("/transactions/export", h.Ledger.Export)
			ledger.POST("/deposits", idempotent, h.Ledger.Deposit)
			ledger.POST("/withdrawals", idempotent, h.Ledger.Withdraw)
		}

		goals := protected.Group("/goals")
		{
			goals.GET("", h.Savings.ListGoals)
			goals.POST("", h.Savings.CreateGoal)
			goals.DELETE("/:id", h.Savings.DeleteGoal)
			goals.POST("/:id/deposit", idempotent, h.Savings.Deposit)
			goals.POST("/:id/withdraw", idempotent, h.Savings.Withdraw)
			goals.PUT("/:id/auto-save", h.Savings.UpdateAutoSave)
		}

		plans := protected.Group("/plans")
		{
			plans.GET("", h.Investing.ListPlans)
			plans.POST("", h.Investing.CreatePlan)
			plans.DELETE("/:id", h.Investing.DeletePlan)
			plans.PUT("/:id/amount", h.Investing.UpdateAmount)
			plans.POST("/:id/pause", h.Investing.Pause)
			plans.POST("/:id/resume", h.Investing.Resume)
		}
	}
}
