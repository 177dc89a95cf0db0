package kafka_middleware

import (
	"context"
	"time"

	"paws/pkg/kafka"
	"paws/pkg/logger"
)

func LoggingProducerMiddleware(log *logger.Logger) kafka.ProducerMiddleware {
	return func(ctx context.Context, msg kafka.Message, next func(ctx context.Context, msg kafka.Message) error) error {
		start := time.Now()
		err := next(ctx, msg)

		attrs := []any{
			"topic", msg.Topic,
			"key", msg.Key,
			"event_type", msg.GetEventType(),
			"event_id", msg.GetEventID(),
			"correlation_id", msg.GetCorrelationID(),
			"duration_ms", time.Since(start).Milliseconds(),
		}
		if err != nil {
			log.Error("Failed to publish message", append(attrs, "error", err)...)
		} else {
			log.Debug("Published message", attrs...)
		}
		return err
	}
}

func LoggingConsumerMiddleware(log *logger.Logger) kafka.ConsumerMiddleware {
	return func(ctx context.Context, msg kafka.Message, next kafka.MessageHandler) error {
		start := time.Now()
		err := next(ctx, msg)

		attrs := []any{
			"topic", msg.Topic,
			"partition", msg.Partition,
			"offset", msg.Offset,
			"key", msg.Key,
			"event_type", msg.GetEventType(),
			"event_id", msg.GetEventID(),
			"duration_ms", time.Since(start).Milliseconds(),
		}
		if err != nil {
			log.Warn("Failed to process message", append(attrs, "error", err)...)
		} else {
			log.Info("Processed message", attrs...)
		}
		return err
	}
}
