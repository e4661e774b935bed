package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"shmboard/config"
	"shmboard/handlers"
	"shmboard/middleware"
	"shmboard/services"
	"shmboard/utils"
)

func main() {
	// 1. Config
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger, err := utils.NewLogger(cfg.Log.Level, cfg.Log.Encoding)
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	defer logger.Sync()

	logger.Info("configuration loaded",
		zap.String("server", fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)),
		zap.String("rpc", cfg.Shardeum.RPCURL),
		zap.Bool("redis", cfg.Redis.Enabled),
		zap.Bool("mongodb", cfg.MongoDB.Enabled))

	// 2. Core Services
	geo := utils.NewGeoResolver(cfg.GeoIP.DBPath, logger)
	defer geo.Close()

	mongoService, err := services.NewMongoDBService(cfg, logger)
	if err != nil {
		logger.Warn("MongoDB connection failed, history is kept in memory only", zap.Error(err))
		mongoService, _ = services.NewMongoDBService(config.Default(), logger)
	}
	defer mongoService.Close()

	// Cache Service (with Redis + In-Memory fallback)
	cache := services.NewCacheService(cfg, logger)

	rpc := services.NewShardeumClient(cfg, logger)
	prices := services.NewPriceClient(cfg)
	provider := services.NewNetworkDataProvider(cfg, rpc, prices, cache, logger)

	calculatorService := services.NewCalculatorService(provider, logger)
	leaderboardService := services.NewLeaderboardService(cfg, cache, geo, logger)
	adminService := services.NewAdminService(cfg, cache, logger)

	var notifier services.RewardNotifier
	discordBot, err := services.NewDiscordBotService(cfg, provider, calculatorService, logger)
	if err != nil {
		logger.Warn("Discord bot initialization failed, notifications disabled", zap.Error(err))
	} else {
		defer discordBot.Close()
		notifier = discordBot
	}

	historyService := services.NewHistoryService(cfg, provider, mongoService, notifier, logger)

	// 3. Start Background Services
	cache.StartHealthCheck(30 * time.Second)
	provider.StartRefresh(cfg.RefreshIntervalDuration())
	historyService.Start()
	logger.Info("background services started", zap.String("cache_mode", string(cache.GetCacheMode())))

	// 4. Web Server
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(middleware.LoggerMiddleware(logger))
	e.Use(middleware.RecoverMiddleware(logger))
	e.Use(middleware.CORSMiddleware(cfg.Server.AllowedOrigins))

	// 5. Handlers
	h := handlers.NewHandler(cfg, cache, provider, logger)
	calculatorHandlers := handlers.NewCalculatorHandlers(calculatorService)
	leaderboardHandlers := handlers.NewLeaderboardHandlers(leaderboardService)
	adminHandlers := handlers.NewAdminHandlers(adminService)
	historyHandlers := handlers.NewHistoryHandlers(historyService)
	cacheHandlers := handlers.NewCacheHandlers(cache, provider)

	// 6. Routes
	// System
	e.GET("/health", h.GetHealth)
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))
	e.GET("/cache/status", cacheHandlers.GetCacheStatus)
	e.POST("/cache/clear", cacheHandlers.ClearCache)

	api := e.Group("/api")

	api.GET("/status", h.GetStatus)
	api.GET("/price", h.GetPrice)
	api.GET("/network", h.GetNetwork)

	calculator := api.Group("/calculator")
	calculator.GET("/estimate", calculatorHandlers.Estimate)
	calculator.POST("/estimate", calculatorHandlers.Estimate)

	api.GET("/leaderboard", leaderboardHandlers.GetLeaderboard)
	api.GET("/loserboard", leaderboardHandlers.GetLoserboard)

	admin := api.Group("/admin")
	admin.GET("/validators", adminHandlers.ListValidators)
	admin.POST("/validators/:publicKey", adminHandlers.UpdateValidator)
	admin.GET("/avatars", adminHandlers.ListAvatars)

	history := api.Group("/history")
	history.GET("/network", historyHandlers.GetNetworkHistory)

	// 7. Start Server with Graceful Shutdown
	serverAddr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)

	go func() {
		logger.Info("server running", zap.String("address", "http://"+serverAddr))
		if err := e.Start(serverAddr); err != nil && err != http.ErrServerClosed {
			logger.Fatal("shutting down the server", zap.Error(err))
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit
	logger.Info("graceful shutdown initiated")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	historyService.Stop()
	provider.Stop()
	cache.Stop()

	if err := e.Shutdown(ctx); err != nil {
		logger.Error("server shutdown failed", zap.Error(err))
	}
	logger.Info("server exited cleanly")
}
