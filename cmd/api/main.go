package main

import (
	"log/slog"
	"os"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/lmittmann/tint"

	"go-zettelkasten/database/migrations"
	"go-zettelkasten/internal/api/routes"
	"go-zettelkasten/internal/config"
	"go-zettelkasten/internal/database"
)

func main() {
	logger := slog.New(tint.NewHandler(os.Stderr, &tint.Options{
		Level:      slog.LevelInfo,
		TimeFormat: time.Kitchen,
	}))
	slog.SetDefault(logger)

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		logger.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	// Initialize Database
	if err := database.Initialize(cfg, logger); err != nil {
		logger.Error("failed to initialize database", "error", err)
		os.Exit(1)
	}

	// Run Migrations
	if err := migrations.Migrate(); err != nil {
		logger.Error("failed to run migrations", "error", err)
		os.Exit(1)
	}

	// Initialize Router
	router := gin.Default()
	router.HandleMethodNotAllowed = true
	routes.SetupRoutes(router)

	// Start Server
	logger.Info("starting server", "port", cfg.Server.Port)
	if err := router.Run(":" + cfg.Server.Port); err != nil {
		logger.Error("server stopped", "error", err)
		os.Exit(1)
	}
}
