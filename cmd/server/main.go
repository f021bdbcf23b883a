package main

import (
	"database/sql"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	identity "github.com/goliatone/go-identity"
	"github.com/joho/godotenv"
	"github.com/pressly/goose/v3"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/sqliteshim"
)

const shutdownTimeout = 10 * time.Second

// slogAdapter bridges the process slog.Logger into the identity.Logger
// interface, which takes a message followed by key value pairs.
type slogAdapter struct {
	l *slog.Logger
}

func (s slogAdapter) Debug(format string, args ...any) { s.l.Debug(format, args...) }
func (s slogAdapter) Info(format string, args ...any)  { s.l.Info(format, args...) }
func (s slogAdapter) Warn(format string, args ...any)  { s.l.Warn(format, args...) }
func (s slogAdapter) Error(format string, args ...any) { s.l.Error(format, args...) }

func main() {
	// .env is optional, real deployments configure through the environment
	_ = godotenv.Load()

	cfg, err := identity.LoadConfig()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	level := slog.LevelInfo
	if cfg.IsDevelopment() {
		level = slog.LevelDebug
	}

	logHandler := slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: level})
	logger := slogAdapter{l: slog.New(logHandler)}

	sqldb, err := sql.Open(sqliteshim.ShimName, cfg.DatabaseDSN)
	if err != nil {
		logger.Error("failed to open database", "dsn", cfg.DatabaseDSN, "error", err)
		os.Exit(1)
	}
	defer sqldb.Close()

	db := bun.NewDB(sqldb, sqlitedialect.New())

	if err := runMigrations(sqldb); err != nil {
		logger.Error("failed to run migrations", "error", err)
		os.Exit(1)
	}

	repo := identity.NewRepositoryManager(db)

	provider := identity.NewUserProvider(repo.Users()).
		WithLogger(logger)

	auther := identity.NewAuthenticator(provider, cfg).
		WithLogger(logger)

	routeAuth := identity.NewHTTPAuthenticator(auther.TokenService(), repo).
		WithLogger(logger)

	controller := identity.NewAuthController(
		identity.WithControllerRepo(repo),
		identity.WithControllerAuther(auther),
		identity.WithControllerTokens(auther.TokenService()),
		identity.WithControllerLogger(logger),
		identity.WithControllerDevelopment(cfg.IsDevelopment()),
	)

	app := buildApp(controller, routeAuth)

	errChan := make(chan error, 1)
	go func() {
		logger.Info("identity server listening", "address", cfg.ServerAddress)
		errChan <- app.Listen(cfg.ServerAddress)
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errChan:
		logger.Error("server stopped", "error", err)
		os.Exit(1)
	case sig := <-quit:
		logger.Info("shutting down", "signal", sig.String())
	}

	if err := app.ShutdownWithTimeout(shutdownTimeout); err != nil {
		logger.Error("graceful shutdown failed", "error", err)
		os.Exit(1)
	}

	logger.Info("server stopped cleanly")
}

// buildApp assembles the HTTP surface: security headers and CORS run before
// any routing, then the health probe and the identity API.
func buildApp(controller *identity.AuthController, routeAuth *identity.RouteAuthenticator) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName: "go-identity",
	})

	app.Use(helmet.New())
	app.Use(cors.New())

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"success": true,
			"status":  "ok",
		})
	})

	identity.RegisterAuthRoutes(app, controller, routeAuth)

	return app
}

func runMigrations(db *sql.DB) error {
	goose.SetBaseFS(identity.GetMigrationsFS())

	if err := goose.SetDialect("sqlite3"); err != nil {
		return err
	}

	return goose.Up(db, "data/sql/migrations")
}
