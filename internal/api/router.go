package api

import (
	"fmt"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"gorm.io/gorm"

	"github.com/Giftea/skillbazaar/internal/app"
	"github.com/Giftea/skillbazaar/internal/cache"
	"github.com/Giftea/skillbazaar/internal/handlers"
	"github.com/Giftea/skillbazaar/internal/middleware"
	"github.com/Giftea/skillbazaar/internal/payments"
	"github.com/Giftea/skillbazaar/internal/services"
)

// NewRouter builds the Gin engine, wires middleware, and registers the
// marketplace routes.
func NewRouter(db *gorm.DB, payClient payments.Client, cfg *app.Config) (*gin.Engine, error) {
	if db == nil {
		return nil, fmt.Errorf("database handle must be provided")
	}
	if payClient == nil {
		return nil, fmt.Errorf("payment client must be provided")
	}
	if cfg == nil {
		return nil, fmt.Errorf("config must be provided")
	}

	skills, err := services.NewSkillService(db)
	if err != nil {
		return nil, err
	}
	analytics, err := services.NewAnalyticsService(skills)
	if err != nil {
		return nil, err
	}
	executor, err := services.NewExecutorService(skills, payClient,
		services.WithExecutionTimeout(cfg.Execution.Timeout))
	if err != nil {
		return nil, err
	}
	health := services.NewHealthService(cfg.Health.ProbeTimeout)
	store := cache.NewMemory()

	rootHandler := handlers.NewRootHandler(skills)
	skillHandler := handlers.NewSkillHandler(skills, store, cfg.Cache.SkillsTTL)
	executeHandler := handlers.NewExecuteHandler(executor)
	healthHandler := handlers.NewSkillHealthHandler(skills, health)
	analyticsHandler := handlers.NewAnalyticsHandler(analytics, store, cfg.Cache.AnalyticsTTL)
	walletHandler := handlers.NewWalletHandler(payClient, store, cfg.Cache.BalanceTTL)

	r := gin.New()

	// Global middleware
	r.Use(middleware.Recovery())
	r.Use(middleware.Logger())
	r.Use(middleware.Metrics())
	r.Use(middleware.SecurityHeaders())
	r.Use(middleware.CORS())
	// Basic rate limiting: 100 requests/minute per IP+route
	r.Use(middleware.RateLimit(100, time.Minute))

	r.GET("/", rootHandler.Info)
	r.GET("/health", handlers.ServiceHealth(db))

	skillRoutes := r.Group("/skills")
	{
		skillRoutes.GET("", skillHandler.List)
		skillRoutes.POST("/register", skillHandler.Register)
		skillRoutes.GET("/:name", skillHandler.Get)
		skillRoutes.GET("/:name/info", skillHandler.Info)
		skillRoutes.POST("/:name/execute", executeHandler.Execute)
		skillRoutes.GET("/:name/health", healthHandler.Probe)
	}

	r.GET("/analytics", analyticsHandler.Summary)
	r.GET("/wallet/balance", walletHandler.Balance)

	if cfg.Monitoring.Prometheus.Enabled {
		endpoint := strings.TrimSpace(cfg.Monitoring.Prometheus.Endpoint)
		if endpoint == "" {
			endpoint = "/metrics"
		}
		r.GET(endpoint, gin.WrapH(promhttp.Handler()))
	}

	r.NoRoute(middleware.NotFoundHandler)

	return r, nil
}
