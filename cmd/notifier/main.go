package main

import (
	"context"
	"errors"
	"os/signal"
	"syscall"

	"paws/internal/bookings/repository"
	"paws/internal/notifier"
	"paws/pkg/config"
	"paws/pkg/kafka"
	kafka_config "paws/pkg/kafka/config"
	kafka_middleware "paws/pkg/kafka/middleware"

	"github.com/slack-go/slack"
)

const ServiceName = "notifier"

// The notifier consumes booking events and keeps the staff approval channel
// in sync: it posts a message per pending request and edits it on review.
func main() {
	cfg := config.Load(ServiceName)
	if !cfg.SlackEnabled() {
		cfg.Log.Fatal("SLACK_BOT_TOKEN and SLACK_CHANNEL_ID are required")
	}

	kafkaCfg, err := kafka_config.Load()
	if err != nil {
		cfg.Log.Fatal("Invalid Kafka configuration", "error", err)
	}
	kafkaCfg.LogConfiguration(cfg.Log)

	cfg.SetMongo()
	defer cfg.Client.GracefulShutdown()

	messenger := notifier.NewMessenger(slack.New(cfg.SlackBotToken), cfg.SlackChannelID)
	eventHandler := notifier.NewEventHandler(repository.NewMongoBookingRepository(cfg), messenger, cfg.Log.Component("slack"))

	consumer, err := kafka.NewConsumer(kafkaCfg, eventHandler.Handle, cfg.Log)
	if err != nil {
		cfg.Log.Fatal("Failed to create Kafka consumer", "error", err)
	}

	metrics := kafka_middleware.NewMetrics()
	consumer.Use(kafka_middleware.LoggingConsumerMiddleware(cfg.Log))
	consumer.Use(metrics.ConsumerMiddleware())

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg.Log.Info("Starting notifier", "topic", kafkaCfg.BookingTopic, "group_id", kafkaCfg.ConsumerGroupID)
	if err := consumer.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
		cfg.Log.Error("Consumer stopped", "error", err)
	}

	if err := consumer.Close(); err != nil {
		cfg.Log.Error("Failed to close consumer", "error", err)
	}
	metrics.Log(cfg.Log)
	cfg.Log.Info("Notifier stopped")
}
