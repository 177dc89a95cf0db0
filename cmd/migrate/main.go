package main

import (
	"context"
	"time"

	mongoMigration "paws/internal/migrations/mongo"
	"paws/pkg/config"
)

const (
	JobName      = "mongo-migration"
	MigrationTTL = 120 * time.Second
)

func main() {
	cfg := config.Load(JobName)
	cfg.SetMongo()
	defer cfg.Client.GracefulShutdown()

	ctx, cancel := context.WithTimeout(context.Background(), MigrationTTL)
	defer cancel()

	cfg.Log.Info("Starting Mongo migration job")
	db := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
	if err := mongoMigration.RunMigration(ctx, db, cfg.Log); err != nil {
		cfg.Log.Error("Migration failed", "error", err)
		cancel()
		cfg.Client.GracefulShutdown()
		cfg.Log.Fatal("Migration job aborted")
	}
	cfg.Log.Info("Migration completed successfully")
}
