package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"

	"github.com/fernetbarato/fernet-barato/api/internal/config"
	"github.com/fernetbarato/fernet-barato/api/internal/logging"
	"github.com/fernetbarato/fernet-barato/api/internal/server"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	logger, err := logging.New(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		log.Fatalf("init logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	connectCtx, cancel := context.WithTimeout(ctx, cfg.MongoConnectTimeout)
	defer cancel()

	clientOptions := options.Client().ApplyURI(cfg.MongoURI).SetServerAPIOptions(options.ServerAPI(options.ServerAPIVersion1))
	client, err := mongo.Connect(connectCtx, clientOptions)
	if err != nil {
		logger.Fatal("mongo connect", zap.Error(err))
	}

	app, err := server.New(connectCtx, cfg, client, logger)
	if err != nil {
		logger.Fatal("build server", zap.Error(err))
	}
	if err := app.Run(ctx); err != nil {
		logger.Fatal("server stopped", zap.Error(err))
	}
}
