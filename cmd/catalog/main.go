package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"

	"github.com/minhvt/product_catalog/internal/config"
	"github.com/minhvt/product_catalog/internal/delivery/events"
	"github.com/minhvt/product_catalog/internal/domain"
	pkgcache "github.com/minhvt/product_catalog/internal/pkg/cache"
	"github.com/minhvt/product_catalog/internal/pkg/database"
	"github.com/minhvt/product_catalog/internal/pkg/logger"
	cacheRepo "github.com/minhvt/product_catalog/internal/repository/cache"
	"github.com/minhvt/product_catalog/internal/repository/postgres"
	"github.com/minhvt/product_catalog/internal/usecase/catalog"
	"github.com/minhvt/product_catalog/internal/usecase/category"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	appLogger := logger.New(cfg.Env)
	appLogger.Info("Starting catalog service...")

	appLogger.Info("Connecting to PostgreSQL...")
	db, err := database.WaitForDB(cfg, 10, 2*time.Second)
	if err != nil {
		appLogger.Fatal("Failed to connect to database", err)
	}
	defer db.Close()

	if err := database.RunMigrations(db); err != nil {
		appLogger.Fatal("Failed to run migrations", err)
	}
	appLogger.Info("Connected to PostgreSQL successfully")

	var (
		categoryCache catalog.CategoryCache
		statsCache    catalog.StatisticsCache
	)

	switch cfg.Cache.Backend {
	case config.CacheBackendRedis:
		appLogger.Info("Connecting to Redis...")
		redisClient, err := pkgcache.WaitForRedis(cfg, 10, 2*time.Second)
		if err != nil {
			appLogger.Fatal("Failed to connect to Redis", err)
		}
		defer redisClient.Close()

		categoryCache = cacheRepo.NewCategoryRedis(redisClient, cfg.Cache.CategoryTTL, appLogger)
		statsCache = cacheRepo.NewStatisticsRedis(redisClient, cfg.Cache.StatsTTL, appLogger)
		appLogger.Info("Using Redis cache backend")
	default:
		categoryCache = cacheRepo.NewMemory[uuid.UUID, *domain.Category](cfg.Cache.CategoryTTL, nil)
		statsCache = cacheRepo.NewValue[*domain.ProductStatistics](cfg.Cache.StatsTTL, nil)
		appLogger.Info("Using in-memory cache backend")
	}

	appLogger.Info("Connecting to NATS...")
	publisher, err := events.NewPublisher(cfg, appLogger)
	if err != nil {
		appLogger.Fatal("Failed to create NATS publisher", err)
	}
	defer publisher.Close()

	streamConfig := events.NewStreamConfig(publisher.JetStream(), appLogger)
	if err := streamConfig.EnsureStream(); err != nil {
		appLogger.Fatal("Failed to ensure stream", err)
	}

	productRepo := postgres.NewProductRepository(db)
	categoryRepo := postgres.NewCategoryRepository(db)
	attributeRepo := postgres.NewProductAttributeRepository(db)
	imageRepo := postgres.NewProductImageRepository(db)

	catalogService := catalog.NewService(
		productRepo,
		categoryRepo,
		attributeRepo,
		imageRepo,
		categoryCache,
		statsCache,
		publisher,
		appLogger,
	)
	categoryService := category.NewService(categoryRepo, categoryCache, statsCache, publisher, appLogger)

	// Mutations on other instances invalidate the caches here too
	consumer, err := events.NewConsumer(cfg, appLogger)
	if err != nil {
		appLogger.Fatal("Failed to create NATS consumer", err)
	}
	defer consumer.Close()

	if err := consumer.Subscribe(events.StreamSubjects, events.InvalidationHandler(appLogger, categoryCache, statsCache)); err != nil {
		appLogger.Fatal("Failed to subscribe to catalog events", err)
	}

	// Warm the caches and prove the read path before accepting work
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	stats, err := catalogService.GetStatistics(ctx)
	if err != nil {
		appLogger.Error("Statistics warmup failed", err)
	} else {
		appLogger.WithFields(map[string]interface{}{
			"total_products": stats.TotalProducts,
			"total_stock":    stats.TotalStock,
		}).Info("Catalog statistics loaded")
	}

	categories, err := categoryService.ListActive(ctx)
	if err != nil {
		appLogger.Error("Category warmup failed", err)
	} else {
		appLogger.Infof("Loaded %d active categories", len(categories))
	}
	cancel()

	appLogger.Info("Catalog service ready")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	appLogger.Info("Catalog service stopped gracefully")
}
