package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"

	"github.com/casaintegra/lotes-api/internal/application/inventory"
	"github.com/casaintegra/lotes-api/internal/application/usecase"
	"github.com/casaintegra/lotes-api/internal/infrastructure/postgres"
	httpRouter "github.com/casaintegra/lotes-api/internal/interfaces/http"
	"github.com/casaintegra/lotes-api/pkg/config"
	"github.com/casaintegra/lotes-api/pkg/logger"
)

func runMigrations(dsn, dir string) error {
	sqlDB, err := goose.OpenDBWithDriver("pgx", dsn)
	if err != nil {
		return err
	}
	defer func() { _ = sqlDB.Close() }()
	return goose.Up(sqlDB, dir)
}

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

	if err := runMigrations(cfg.DB.ConnectionString(), cfg.DB.MigrationsDir); err != nil {
		log.Fatal().Err(err).Msg("migraciones")
	}

	ctx := context.Background()
	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		log.Fatal().Err(err).Msg("conexión a PostgreSQL")
	}
	defer pool.Close()

	lotRepo := postgres.NewLotRepository(pool)
	histRepo := postgres.NewHistoryRepository(pool)
	productRepo := postgres.NewProductRepository(pool)
	siteRepo := postgres.NewSiteRepository(pool)
	txRunner := postgres.NewTxRunner(pool)

	productUC := usecase.NewProductUseCase(productRepo)
	siteUC := usecase.NewSiteUseCase(siteRepo)
	receptionUC := inventory.NewReceptionUseCase(txRunner)
	deploymentUC := inventory.NewDeploymentUseCase(txRunner, siteRepo)
	returnUC := inventory.NewReturnUseCase(txRunner)
	replacementUC := inventory.NewReplacementUseCase(txRunner)
	reservationUC := inventory.NewReservationUseCase(txRunner)
	fulfillmentUC := inventory.NewFulfillmentUseCase(txRunner, siteRepo)
	queryUC := inventory.NewQueryUseCase(lotRepo, histRepo)

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 10,
		IdleTimeout:  time.Second * 60,
	})
	app.Use(recover.New())

	// Swagger UI en local: http://localhost:<port>/docs
	if _, err := os.Stat("./docs/swagger.json"); err == nil {
		app.Use(swagger.New(swagger.Config{
			BasePath: "/",
			FilePath: "./docs/swagger.json",
			Path:     "docs",
			Title:    "CasaIntegra Lotes API",
		}))
	}

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "service": cfg.App.Name})
	})

	httpRouter.Router(app, httpRouter.RouterDeps{
		ProductUC:     productUC,
		SiteUC:        siteUC,
		ReceptionUC:   receptionUC,
		DeploymentUC:  deploymentUC,
		ReturnUC:      returnUC,
		ReplacementUC: replacementUC,
		ReservationUC: reservationUC,
		FulfillmentUC: fulfillmentUC,
		QueryUC:       queryUC,
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
