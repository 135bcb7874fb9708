package handler

import (
	"balance-ledger/internal/adapter/http/middleware"
	redisStore "balance-ledger/internal/adapter/storage/redis"
	"balance-ledger/internal/core/ports"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// RouterDeps holds all dependencies needed to set up routes.
type RouterDeps struct {
	AuthSvc        ports.AuthService
	LedgerSvc      ports.LedgerService
	ReportingSvc   ports.ReportingService
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
	r.Use(middleware.MaxBodySize(1 << 20)) // 1 MB request body limit

	// Health check (deep — verifies PostgreSQL + Redis)
	r.GET("/health", HealthCheck(deps.HealthCheckers...))

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

	// API v1 routes
	v1 := r.Group("/api/v1")

	// --- Public routes (no auth) ---
	authHandler := NewAuthHandler(deps.AuthSvc)
	auth := v1.Group("/auth")
	{
		auth.POST("/register", rl("auth_register"), authHandler.Register)
		auth.POST("/login", rl("auth_login"), authHandler.Login)
	}

	// --- JWT-authenticated routes ---
	jwtAuth := middleware.JWTAuth(deps.TokenSvc, deps.Logger)
	ledgerHandler := NewLedgerHandler(deps.LedgerSvc)
	reportHandler := NewReportHandler(deps.ReportingSvc)

	funds := v1.Group("/funds", jwtAuth)
	{
		funds.POST("/deposit", rl("funds"), ledgerHandler.Deposit)
		funds.POST("/reserve", rl("funds"), ledgerHandler.Reserve)
		funds.POST("/recognize", rl("funds"), ledgerHandler.Recognize)
		funds.POST("/transfer", rl("transfer"), ledgerHandler.Transfer)
	}

	v1.GET("/balance", jwtAuth, rl("reports"), ledgerHandler.GetBalance)

	transactions := v1.Group("/transactions", jwtAuth)
	{
		transactions.GET("", rl("reports"), reportHandler.ListTransactions)
	}

	reports := v1.Group("/reports", jwtAuth)
	{
		reports.GET("", rl("reports"), reportHandler.ListReports)
		reports.GET("/totals", rl("reports"), reportHandler.GetTotals)
	}

	return r
}
