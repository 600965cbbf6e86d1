package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"wallethunter/internal/bot"
	"wallethunter/internal/config"
	"wallethunter/internal/db"
	"wallethunter/internal/logger"
	"wallethunter/internal/repository"
	"wallethunter/internal/schema"
	"wallethunter/internal/service"
)

func main() {
	cfg := config.Load(true)
	logger.Init(cfg.LogLevel, cfg.LogJSON)

	store, err := db.Open(cfg.DBPath)
	if err != nil {
		logger.Fatal("failed to open store", "path", cfg.DBPath, "error", err)
	}
	defer store.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	if err := schema.Reconcile(ctx, store); err != nil {
		cancel()
		logger.Fatal("schema reconciliation failed", "error", err)
	}
	cancel()
	logger.Info("store ready", "path", cfg.DBPath, "admins", cfg.AdminIDs)

	repo := repository.NewUserRepository(store)
	admin := service.NewAdminService(store, repo)

	b, err := bot.New(cfg.BotToken, repo, admin, cfg.AdminIDs, cfg.WalletHunterURL, cfg.DominoURL)
	if err != nil {
		logger.Fatal("failed to create bot", "error", err)
	}

	go b.Start()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down bot...")
	b.Stop()
	logger.Info("bot exited")
}
