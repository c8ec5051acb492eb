package config

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

func ConnectDB(ctx context.Context, cfg Config, log *zap.Logger) (*mongo.Client, error) {
	clientOptions := options.Client().ApplyURI(cfg.MongoURI).SetTimeout(cfg.StoreTimeout)
	client, err := mongo.Connect(ctx, clientOptions)
	if err != nil {
		return nil, fmt.Errorf("error connecting to database: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	if err := client.Ping(pingCtx, nil); err != nil {
		CloseDBConnection(client, log)
		return nil, fmt.Errorf("MongoDB ping failed: %w", err)
	}

	log.Info("connected to MongoDB", zap.String("database", cfg.Database))
	return client, nil
}

func CloseDBConnection(client *mongo.Client, log *zap.Logger) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := client.Disconnect(ctx); err != nil {
		log.Error("error closing MongoDB connection", zap.Error(err))
		return
	}
	log.Info("MongoDB connection closed")
}
