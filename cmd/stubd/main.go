package main

import (
	"log"
	"os"
	"os/signal"
	"syscall"

	"horizon-client/internal/config"
	"horizon-client/internal/stub"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("[MAIN] No .env file found, relying on system env vars")
	}

	cfg := config.Load()

	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("failed to build logger: %v", err)
	}
	defer logger.Sync()

	srv, err := stub.NewServer(cfg.Stub, logger)
	if err != nil {
		logger.Fatal("failed to build stub server", zap.Error(err))
	}

	go func() {
		if err := srv.Run(); err != nil {
			logger.Fatal("stub server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("stub server stopped")
}
