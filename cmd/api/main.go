package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/jhoicas/Produccion-api/internal/application/inventory"
	"github.com/jhoicas/Produccion-api/internal/application/production"
	"github.com/jhoicas/Produccion-api/internal/infrastructure/cache"
	"github.com/jhoicas/Produccion-api/internal/infrastructure/notification"
	"github.com/jhoicas/Produccion-api/internal/infrastructure/postgres"
	httpRouter "github.com/jhoicas/Produccion-api/internal/interfaces/http"
	"github.com/jhoicas/Produccion-api/pkg/config"
	"github.com/jhoicas/Produccion-api/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:   cfg.App.Env,
		Level: cfg.App.LogLevel,
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("app", cfg.App.Name).
		Msg("iniciando aplicación")

	if cfg.JWT.Secret == "" {
		log.Fatal().Msg("JWT_SECRET es obligatorio")
	}

	ctx := context.Background()
	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		log.Fatal().Err(err).Msg("conexión a PostgreSQL")
	}
	defer pool.Close()

	if cfg.DB.EnsureSchema {
		if err := postgres.EnsureSchema(ctx, pool); err != nil {
			log.Fatal().Err(err).Msg("crear esquema")
		}
	}

	productRepo := cache.NewProductRepository(postgres.NewProductRepository(pool), cfg.Cache.ProductSize, cfg.Cache.ProductTTL)
	recipeRepo := postgres.NewRecipeRepository(pool)
	stockRepo := postgres.NewStockItemRepository(pool)
	movementRepo := postgres.NewStockMovementRepository(pool)
	alertRepo := postgres.NewStockAlertRepository(pool)
	planRepo := postgres.NewProductionPlanRepository(pool)
	recordRepo := postgres.NewAvailabilityRecordRepository(pool)
	divergenceRepo := postgres.NewDivergenceRepository(pool)

	inventoryTx := postgres.NewInventoryTxRunner(pool, cfg.DB.TxMaxAttempts, log)
	productionTx := postgres.NewProductionTxRunner(pool, cfg.DB.TxMaxAttempts, log)

	// Alertas a Kafka si hay brokers; si no, al log.
	var notifier inventory.Notifier
	if cfg.Kafka.Enabled() {
		kafkaNotifier := notification.NewKafkaNotifier(cfg.Kafka.Brokers, cfg.Kafka.AlertsTopic, cfg.Kafka.NotifyTimeout, log)
		defer func() {
			if err := kafkaNotifier.Close(); err != nil {
				log.Error().Err(err).Msg("cerrar productor Kafka")
			}
		}()
		notifier = kafkaNotifier
	} else {
		notifier = notification.NewLogNotifier(log)
	}

	adjustUC := inventory.NewAdjustStockUseCase(inventoryTx, notifier, log)
	stockUC := inventory.NewStockUseCase(stockRepo, movementRepo, alertRepo, productRepo)
	replenishmentUC := inventory.NewReplenishmentUseCase(alertRepo, stockRepo, productRepo)
	availabilityUC := production.NewAvailabilityUseCase(recipeRepo, productRepo, stockRepo, log)
	planUC := production.NewPlanUseCase(productionTx, planRepo, recordRepo, divergenceRepo, recipeRepo, log)
	executionUC := production.NewExecutionUseCase(productionTx, planRepo, recipeRepo, productRepo, stockRepo, adjustUC, log)

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
		IdleTimeout:  time.Second * 60,
	})
	app.Use(recover.New())

	httpRouter.Router(app, httpRouter.RouterDeps{
		StockUC:         stockUC,
		AdjustStockUC:   adjustUC,
		ReplenishmentUC: replenishmentUC,
		AvailabilityUC:  availabilityUC,
		PlanUC:          planUC,
		ExecutionUC:     executionUC,
		JWTSecret:       cfg.JWT.Secret,
		MetricsPath:     cfg.Telemetry.MetricsPath,
	})

	go func() {
		if err := app.Listen(cfg.HTTP.Addr()); err != nil {
			log.Error().Err(err).Msg("servidor HTTP finalizado")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("señal de apagado recibida, cerrando servidor...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("apagado del servidor")
	}

	log.Info().Msg("aplicación detenida")
}
