// Package main provides the main entry point for the ZapLinks smart link service
package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/redis/go-redis/v9"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"zaplinks/app/handlers"
	"zaplinks/app/router"
	"zaplinks/app/scheduler"
	"zaplinks/app/services"
	businessflow "zaplinks/business_flow"
	"zaplinks/config"
	"zaplinks/repository"
)

// Application represents the main application structure
type Application struct {
	router    router.Router
	config    *config.ProductionConfig
	server    *fiber.App
	stopFuncs []func()
}

func main() {
	log.Println("Starting ZapLinks application...")

	// Load production configuration
	cfg, err := config.LoadProductionConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Initialize application
	app, err := initializeApplication(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize application: %v", err)
	}

	// Setup routes
	app.router.SetupRoutes()

	// Handle shutdown signals
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	// Start server in goroutine
	go func() {
		address := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
		log.Printf("Server starting on %s", address)

		if err := app.server.Listen(address); err != nil {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	// Wait for shutdown signal
	<-sigChan
	log.Println("Shutting down gracefully...")

	// Stop background workers
	for _, fn := range app.stopFuncs {
		fn()
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer shutdownCancel()

	if err := app.server.ShutdownWithContext(shutdownCtx); err != nil {
		log.Printf("Error during shutdown: %v", err)
	}

	log.Println("Server stopped")
}

// initializeDatabase initializes the database connection with connection pooling
func initializeDatabase(cfg config.DatabaseConfig) (*gorm.DB, error) {
	dsn := fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		cfg.Host, cfg.Port, cfg.User, cfg.Password, cfg.Name, cfg.SSLMode)

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}

	sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	sqlDB.SetConnMaxIdleTime(cfg.ConnMaxIdleTime)

	if err := sqlDB.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	log.Printf("Database connection established with %d max open connections, %d max idle connections",
		cfg.MaxOpenConns, cfg.MaxIdleConns)

	return db, nil
}

// initializeCache initializes the Redis client and verifies connectivity
func initializeCache(cfg config.CacheConfig) (*redis.Client, error) {
	if !cfg.Enabled || cfg.Provider != "redis" {
		return nil, nil
	}

	opt, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		return nil, fmt.Errorf("invalid redis url: %w", err)
	}
	opt.DB = cfg.RedisDB

	rc := redis.NewClient(opt)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rc.Ping(ctx).Err(); err != nil {
		_ = rc.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	log.Printf("Redis connection established (db=%d)", cfg.RedisDB)
	return rc, nil
}

// startCacheHealthMonitor starts a background goroutine that periodically pings Redis
// to detect connectivity issues. The returned cancel function stops the monitor.
func startCacheHealthMonitor(parent context.Context, client *redis.Client, interval time.Duration) func() {
	monitorCtx, cancel := context.WithCancel(parent)
	if interval <= 0 {
		interval = 30 * time.Second
	}
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-monitorCtx.Done():
				return
			case <-ticker.C:
				ctx, c := context.WithTimeout(context.Background(), 3*time.Second)
				if err := client.Ping(ctx).Err(); err != nil {
					log.Printf("Redis healthcheck failed: %v", err)
				}
				c()
			}
		}
	}()
	return cancel
}

// initializeZAPIClient picks the real gateway client or the mock depending
// on configuration. The mock keeps local development working without
// gateway credentials.
func initializeZAPIClient(cfg *config.ProductionConfig) services.ZAPIClient {
	if cfg.ZAPI.BaseURL == "mock" {
		log.Println("Using mock Z-API client")
		return services.NewMockZAPIClient()
	}
	return services.NewZAPIClient(&cfg.ZAPI)
}

// initializeApplication initializes the main application components
func initializeApplication(cfg *config.ProductionConfig) (*Application, error) {
	db, err := initializeDatabase(cfg.Database)
	if err != nil {
		return nil, err
	}

	rc, err := initializeCache(cfg.Cache)
	if err != nil {
		return nil, err
	}

	var stopFuncs []func()
	var redisClient redis.UniversalClient
	if rc != nil {
		redisClient = rc
		stopFuncs = append(stopFuncs, startCacheHealthMonitor(context.Background(), rc, cfg.Cache.CleanupInterval))
	}

	// Repositories
	campaignRepo := repository.NewCampaignRepository(db)
	groupRepo := repository.NewCampaignGroupRepository(db)
	smartLinkRepo := repository.NewSmartLinkRepository(db)
	clickRepo := repository.NewClickEventRepository(db)
	domainRepo := repository.NewCustomDomainRepository(db)

	// External services
	zapiClient := initializeZAPIClient(cfg)
	domainProber := services.NewDomainProber(10 * time.Second)

	// Business flows
	redirectFlow := businessflow.NewRedirectFlow(smartLinkRepo, groupRepo, clickRepo, zapiClient, redisClient, &cfg.Redirect)
	campaignFlow := businessflow.NewCampaignFlow(campaignRepo, groupRepo)
	smartLinkFlow := businessflow.NewSmartLinkFlow(smartLinkRepo, campaignRepo, clickRepo)
	domainFlow := businessflow.NewDomainFlow(domainRepo, domainProber)
	messagingFlow := businessflow.NewMessagingFlow(zapiClient)

	// Handlers
	redirectHandler := handlers.NewRedirectHandler(redirectFlow)
	campaignHandler := handlers.NewCampaignHandler(campaignFlow)
	smartLinkHandler := handlers.NewSmartLinkHandler(smartLinkFlow)
	domainHandler := handlers.NewDomainHandler(domainFlow)
	zapiHandler := handlers.NewZAPIHandler(messagingFlow)

	// Router
	appRouter := router.NewFiberRouter(cfg, redirectHandler, campaignHandler, smartLinkHandler, domainHandler, zapiHandler)

	// Background member count sync
	if cfg.Scheduler.Enabled {
		sync := scheduler.NewMemberSyncScheduler(groupRepo, zapiClient, redisClient, cfg.Redirect, cfg.Logging, cfg.Scheduler.Interval)
		stopFuncs = append(stopFuncs, sync.Start(context.Background()))
		log.Printf("Member sync scheduler started with interval %s", cfg.Scheduler.Interval)
	}

	return &Application{
		router:    appRouter,
		config:    cfg,
		server:    appRouter.GetApp(),
		stopFuncs: stopFuncs,
	}, nil
}
