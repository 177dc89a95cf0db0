//go:build integration

package testutil

import (
	"io"
	"os"
	"testing"
	"time"

	"paws/pkg/client"
	"paws/pkg/config"
	"paws/pkg/logger"
)

type TestEnv struct {
	MongoURI     string
	DatabaseName string
}

func NewTestEnv() *TestEnv {
	return &TestEnv{
		MongoURI:     getEnv("TEST_MONGO_URI", DefaultMongoURI),
		DatabaseName: getEnv("TEST_DB_NAME", DefaultDatabaseName),
	}
}

// Setup connects to Mongo, drops everything in the test database and returns
// a config wired to it, the way the services build theirs.
func (e *TestEnv) Setup(t *testing.T) (*MongoHelper, *config.Config) {
	t.Helper()

	mongo := NewMongoHelper(t, e.MongoURI, e.DatabaseName)
	mongo.CleanDatabase(t)

	log := logger.New(logger.Config{Level: logger.ERROR, Output: io.Discard})
	cfg := &config.Config{
		MongoURI:             e.MongoURI,
		MongoDatabaseName:    e.DatabaseName,
		MongoConnTimeout:     ConnectionTimeout,
		VIPApprovedThreshold: 2,
		ReadTimeout:          5 * time.Second,
		WriteTimeout:         5 * time.Second,
		Log:                  log,
		Client:               client.NewClient(),
	}
	cfg.SetMongo()

	t.Cleanup(func() {
		mongo.CleanDatabase(t)
		mongo.Close(t)
		cfg.Client.GracefulShutdown()
	})
	return mongo, cfg
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
