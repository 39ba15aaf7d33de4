package main

import (
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/localnerve/fictiondb/internal/config"
	"github.com/localnerve/fictiondb/internal/database"
	"github.com/localnerve/fictiondb/internal/server"
	"github.com/localnerve/fictiondb/internal/services"

	_ "github.com/localnerve/fictiondb/docs/api" // Swagger docs
)

// @title FictionDB API
// @version 1.0.0
// @description Fanfiction reading tracker data service with multi-database support
// @termsOfService http://swagger.io/terms/

// @contact.name API Support
// @contact.url https://github.com/localnerve/fictiondb
// @contact.email info@localnerve.com

// @license.name AGPL-3.0
// @license.url https://www.gnu.org/licenses/agpl-3.0.html

// @host localhost:3000
// @BasePath /api
// @schemes http https

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}
	setupLogger(cfg)

	db, err := database.Connect(cfg)
	if err != nil {
		slog.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer database.Close(db)

	// Run auto-migrations and seed the theme catalog
	if err := database.AutoMigrate(db); err != nil {
		slog.Error("failed to run migrations", "error", err)
		os.Exit(1)
	}
	if err := database.Seed(db); err != nil {
		slog.Error("failed to seed database", "error", err)
		os.Exit(1)
	}

	if err := services.InitTagCache(cfg.TagCacheMaxKeys, cfg.TagCacheMaxCost); err != nil {
		slog.Error("failed to create tag cache", "error", err)
		os.Exit(1)
	}

	auth, err := services.NewAuthenticator(cfg, db, "http://localhost:"+cfg.Port)
	if err != nil {
		slog.Error("failed to initialize authentication", "provider", cfg.AuthProvider, "error", err)
		os.Exit(1)
	}

	app := server.New(cfg, db, auth, server.Options{
		RequestLog: true,
		Metrics:    true,
		Swagger:    true,
	})

	// Graceful shutdown
	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-c
		slog.Info("gracefully shutting down")
		_ = app.Shutdown()
	}()

	slog.Info("starting server", "port", cfg.Port, "auth", cfg.AuthProvider)
	if err := app.Listen(":" + cfg.Port); err != nil {
		slog.Error("failed to start server", "error", err)
		os.Exit(1)
	}

	slog.Info("server stopped")
}

func setupLogger(cfg *config.Config) {
	opts := &slog.HandlerOptions{Level: cfg.SlogLevel()}

	var handler slog.Handler
	if cfg.LogFormat == "json" {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		handler = slog.NewTextHandler(os.Stdout, opts)
	}
	slog.SetDefault(slog.New(handler))
}
