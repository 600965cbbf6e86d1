package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"wallethunter/internal/config"
	"wallethunter/internal/db"
	httpServer "wallethunter/internal/http"
	"wallethunter/internal/logger"
	"wallethunter/internal/schema"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

func main() {
	cfg := config.Load(false)
	logger.Init(cfg.LogLevel, cfg.LogJSON)

	store, err := db.Open(cfg.DBPath)
	if err != nil {
		logger.Fatal("failed to open store", "path", cfg.DBPath, "error", err)
	}
	defer store.Close()

	// The process cannot serve without a usable schema.
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	if err := schema.Reconcile(ctx, store); err != nil {
		cancel()
		logger.Fatal("schema reconciliation failed", "error", err)
	}
	cancel()
	logger.Info("store ready", "path", cfg.DBPath)

	r := gin.Default()

	r.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.CORSAllowedOrigins,
		AllowMethods:     []string{"GET", "POST", "PATCH", "OPTIONS"},
		AllowHeaders:     []string{"Content-Type", "X-API-Key"},
		AllowCredentials: false,
		MaxAge:           12 * time.Hour,
	}))

	httpServer.RegisterRoutes(r, store, cfg)

	srv := &http.Server{
		Addr:    ":" + cfg.AppPort,
		Handler: r,
	}

	go func() {
		logger.Info("server started", "port", cfg.AppPort)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("listen failed", "error", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Fatal("server forced to shutdown", "error", err)
	}

	logger.Info("server exited")
}
