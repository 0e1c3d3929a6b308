package handler

import (
	"gameserver-market/internal/adapter/http/middleware"
	redisStore "gameserver-market/internal/adapter/storage/redis"
	"gameserver-market/internal/core/ports"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
)

// RouterDeps holds all dependencies needed to set up routes.
type RouterDeps struct {
	AuthSvc        ports.AuthService
	LedgerSvc      ports.LedgerService
	CheckoutSvc    ports.CheckoutService
	CatalogSvc     ports.CatalogService
	AdminSvc       ports.AdminService
	TokenSvc       ports.TokenService
	RateLimitStore *redisStore.RateLimitStore // nil = rate limiting disabled
	HealthCheckers []ports.HealthChecker
	Logger         zerolog.Logger
}

// SetupRouter initialises the Gin engine with all routes and middleware.
func SetupRouter(deps RouterDeps) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()

	// Global middleware
	r.Use(middleware.Recovery(deps.Logger))
	r.Use(middleware.RequestID())
	r.Use(middleware.RequestLogger(deps.Logger))
	r.Use(middleware.Metrics())
	r.Use(middleware.MaxBodySize(1 << 20)) // 1 MB request body limit

	// Operational endpoints
	r.GET("/health", HealthCheck(deps.HealthCheckers...))
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// Rate limit rules
	rules := middleware.DefaultRateLimitRules()

	// Helper: return rate limiter middleware if store is available, else noop.
	rl := func(group string) gin.HandlerFunc {
		if deps.RateLimitStore == nil {
			return func(c *gin.Context) { c.Next() }
		}
		rule, ok := rules[group]
		if !ok {
			return func(c *gin.Context) { c.Next() }
		}
		return middleware.RateLimiter(deps.RateLimitStore, group, rule, deps.Logger)
	}

	v1 := r.Group("/api/v1")

	// --- Public catalog ---
	catalogHandler := NewCatalogHandler(deps.CatalogSvc)
	catalog := v1.Group("/catalog")
	{
		catalog.GET("", rl("player_read"), catalogHandler.ListProducts)
		catalog.GET("/:id", rl("player_read"), catalogHandler.GetProduct)
	}

	// --- Player routes (trusted X-User-Id identity) ---
	playerIdentity := middleware.PlayerIdentity()
	ledgerHandler := NewLedgerHandler(deps.LedgerSvc)
	checkoutHandler := NewCheckoutHandler(deps.CheckoutSvc)

	// Storefront switch, readable without identity.
	v1.GET("/site/status", rl("player_read"), checkoutHandler.SiteStatus)

	balance := v1.Group("/balance", playerIdentity)
	{
		balance.GET("", rl("player_read"), ledgerHandler.GetBalance)
		balance.POST("/deposit", rl("deposit"), ledgerHandler.Deposit)
	}

	v1.GET("/transactions", playerIdentity, rl("player_read"), ledgerHandler.ListTransactions)
	v1.POST("/checkout", playerIdentity, rl("checkout"), checkoutHandler.Checkout)
	v1.GET("/orders/:id", playerIdentity, rl("player_read"), checkoutHandler.GetOrder)

	// --- Admin routes (JWT) ---
	authHandler := NewAuthHandler(deps.AuthSvc)
	v1.POST("/admin/login", rl("admin_login"), authHandler.Login)

	adminAuth := middleware.AdminAuth(deps.TokenSvc, deps.Logger)
	adminHandler := NewAdminHandler(deps.AdminSvc)

	admin := v1.Group("/admin", adminAuth, rl("admin"))
	{
		admin.GET("/accounts", adminHandler.ListAccounts)
		admin.POST("/accounts/:id/credit", adminHandler.Credit)
		admin.POST("/accounts/:id/reset", adminHandler.ResetBalance)
		admin.PUT("/accounts/:id/status", adminHandler.SetAccountStatus)
		admin.DELETE("/accounts/:id", adminHandler.DeleteAccount)

		admin.GET("/orders", adminHandler.ListOrders)
		admin.PUT("/orders/:id/status", adminHandler.SetOrderStatus)

		admin.POST("/products", adminHandler.CreateProduct)
		admin.DELETE("/products/:id", adminHandler.DeleteProduct)

		admin.GET("/admins", adminHandler.ListAdmins)
		admin.POST("/admins", adminHandler.CreateAdmin)
		admin.PUT("/admins/:id/status", adminHandler.SetAdminStatus)
		admin.DELETE("/admins/:id", adminHandler.DeleteAdmin)

		admin.PUT("/site", adminHandler.SetSiteEnabled)
		admin.GET("/stats", adminHandler.Stats)
		admin.GET("/auth-events", adminHandler.ListAuthEvents)
	}

	return r
}
