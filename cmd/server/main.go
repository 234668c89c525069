package main

import (
	"context"
	"log"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"github.com/dealscope/comps-api/internal/api"
	"github.com/dealscope/comps-api/internal/cache"
	"github.com/dealscope/comps-api/internal/database"
	"github.com/dealscope/comps-api/internal/logger"
	"github.com/dealscope/comps-api/internal/middleware"
	"github.com/dealscope/comps-api/internal/similarity"
	"github.com/dealscope/comps-api/internal/textsim"
	"github.com/dealscope/comps-api/pkg/config"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found")
	}

	cfg := config.New()

	appLogger, err := logger.New(cfg.Environment)
	if err != nil {
		log.Fatal("Failed to create logger:", err)
	}

	db, err := database.New(cfg.DatabaseURL)
	if err != nil {
		appLogger.Fatal("Failed to connect to database", err)
	}
	defer db.Close()

	if err := database.RunMigrations(cfg.DatabaseURL); err != nil {
		appLogger.Fatal("Failed to run migrations", err)
	}

	// Result cache: Redis when configured, in-process otherwise
	var resultCache cache.ResultCache
	var cachePing func(ctx context.Context) error
	if cfg.HasRedis() {
		redisCache, err := cache.NewRedisCache(cache.RedisConfig{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		}, cfg.CacheTTL)
		if err != nil {
			appLogger.Fatal("Failed to connect to redis", err)
		}
		defer redisCache.Close()
		resultCache = redisCache
		cachePing = redisCache.Ping
		appLogger.Info("Using redis result cache", "addr", cfg.RedisAddr)
	} else {
		resultCache = cache.NewMemoryCache(cfg.CacheTTL)
		appLogger.Info("Using in-memory result cache")
	}

	// Description-similarity collaborator; nil leaves the dimension
	// unavailable for every candidate.
	var oracle similarity.TextSimilarity
	if cfg.HasTextSim() {
		oracle = textsim.NewClient(cfg.TextSimURL, cfg.TextSimAPIKey, cfg.TextSimTimeout)
		appLogger.Info("Using text-similarity collaborator", "url", cfg.TextSimURL)
	} else {
		appLogger.Warn("No text-similarity collaborator configured; description dimension disabled")
	}

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(middleware.RequestLoggingMiddleware(appLogger))
	r.Use(middleware.SecurityHeadersMiddleware())
	r.Use(middleware.CORSMiddleware(cfg))
	r.Use(middleware.RequestSizeMiddleware(cfg.MaxRequestSize))
	if cfg.EnableRateLimit {
		r.Use(middleware.RateLimitMiddleware(100))
	}
	r.Use(gin.Recovery())

	api.SetupRoutes(r, api.Deps{
		DB:        db,
		Config:    cfg,
		Logger:    appLogger,
		Cache:     resultCache,
		Oracle:    oracle,
		CachePing: cachePing,
	})

	appLogger.Info("Server starting", "port", cfg.Port)
	if err := r.Run(":" + cfg.Port); err != nil {
		appLogger.Fatal("Failed to start server", err)
	}
}
