package kafka

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	kafka_config "paws/pkg/kafka/config"
	"paws/pkg/logger"

	"github.com/segmentio/kafka-go"
)

// Reader is the subset of *kafka.Reader the consumer uses.
type Reader interface {
	FetchMessage(ctx context.Context) (kafka.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

type Consumer struct {
	reader       Reader
	dlqWriter    Writer
	topic        string
	groupID      string
	maxRetries   int
	retryBackoff time.Duration
	handler      MessageHandler
	middleware   []ConsumerMiddleware
	log          *logger.Logger
	closed       bool
	mu           sync.RWMutex
	wg           sync.WaitGroup
}

type ConsumerMiddleware func(ctx context.Context, msg Message, next MessageHandler) error

func NewConsumer(cfg *kafka_config.Config, handler MessageHandler, log *logger.Logger) (*Consumer, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config cannot be nil")
	}
	if len(cfg.Brokers) == 0 {
		return nil, fmt.Errorf("at least one broker is required")
	}
	if cfg.BookingTopic == "" {
		return nil, fmt.Errorf("topic cannot be empty")
	}
	if cfg.ConsumerGroupID == "" {
		return nil, fmt.Errorf("group ID cannot be empty")
	}
	if handler == nil {
		return nil, fmt.Errorf("message handler cannot be nil")
	}

	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:           cfg.Brokers,
		Topic:             cfg.BookingTopic,
		GroupID:           cfg.ConsumerGroupID,
		MinBytes:          cfg.ConsumerMinBytes,
		MaxBytes:          cfg.ConsumerMaxBytes,
		MaxWait:           cfg.ConsumerMaxWait,
		CommitInterval:    cfg.ConsumerCommitInterval,
		HeartbeatInterval: cfg.ConsumerHeartbeatInterval,
		SessionTimeout:    cfg.ConsumerSessionTimeout,
		RebalanceTimeout:  cfg.ConsumerRebalanceTimeout,
		StartOffset:       cfg.ConsumerStartOffset,
		ErrorLogger:       errorLogger(log, "consumer"),
	})

	var dlqWriter Writer
	if cfg.BookingDLQTopic != "" {
		dlqWriter = newDLQWriter(cfg, cfg.BookingDLQTopic, compressionFor(cfg.ProducerCompression), log)
	}

	c := NewConsumerWithReader(reader, dlqWriter, cfg.BookingTopic, cfg.ConsumerGroupID, handler, log)
	c.maxRetries = cfg.ConsumerMaxRetries
	c.retryBackoff = cfg.ConsumerRetryBackoff
	return c, nil
}

// NewConsumerWithReader builds a consumer on top of an existing reader.
func NewConsumerWithReader(reader Reader, dlqWriter Writer, topic, groupID string, handler MessageHandler, log *logger.Logger) *Consumer {
	return &Consumer{
		reader:       reader,
		dlqWriter:    dlqWriter,
		topic:        topic,
		groupID:      groupID,
		maxRetries:   kafka_config.DefaultConsumerMaxRetries,
		retryBackoff: kafka_config.DefaultConsumerRetryBackoff,
		handler:      handler,
		log:          log,
	}
}

func (c *Consumer) Use(middleware ConsumerMiddleware) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.middleware = append(c.middleware, middleware)
}

// Start consumes until ctx is cancelled. Each message is committed after it
// was handled or parked in the DLQ, never before.
func (c *Consumer) Start(ctx context.Context) error {
	c.mu.RLock()
	if c.closed {
		c.mu.RUnlock()
		return ErrConsumerClosed
	}
	c.wg.Add(1)
	c.mu.RUnlock()
	defer c.wg.Done()

	c.log.Info("Kafka consumer started", "topic", c.topic, "group_id", c.groupID)

	for {
		kafkaMsg, err := c.reader.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return ctx.Err()
			}
			c.log.Error("Failed to fetch message", "topic", c.topic, "error", err)
			if !sleep(ctx, time.Second) {
				return ctx.Err()
			}
			continue
		}

		msg := convertMessage(kafkaMsg)
		if err := c.processMessage(ctx, msg); err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			c.log.Error("Message processing failed",
				"topic", msg.Topic,
				"offset", msg.Offset,
				"key", msg.Key,
				"event_id", msg.GetEventID(),
				"error", err,
			)
		}

		if err := c.reader.CommitMessages(ctx, kafkaMsg); err != nil {
			c.log.Error("Failed to commit offset", "topic", msg.Topic, "offset", msg.Offset, "error", err)
		}
	}
}

func (c *Consumer) processMessage(ctx context.Context, msg Message) error {
	c.mu.RLock()
	chain := c.middleware
	c.mu.RUnlock()

	handler := c.handler
	for i := len(chain) - 1; i >= 0; i-- {
		middleware := chain[i]
		next := handler
		handler = func(ctx context.Context, m Message) error {
			return middleware(ctx, m, next)
		}
	}

	for {
		err := handler(ctx, msg)
		if err == nil {
			return nil
		}

		retries := msg.GetRetryCount()
		if ShouldRetry(err, retries, c.maxRetries) {
			msg.IncrementRetryCount()
			c.log.Warn("Retrying message",
				"event_id", msg.GetEventID(),
				"attempt", retries+1,
				"max_retries", c.maxRetries,
				"error", err,
			)
			if !sleep(ctx, c.retryBackoff*time.Duration(retries+1)) {
				return ctx.Err()
			}
			continue
		}

		if c.dlqWriter != nil {
			if dlqErr := c.dlqWriter.WriteMessages(ctx, toDLQMessage(msg, c.topic, err, c.groupID)); dlqErr != nil {
				return fmt.Errorf("failed to send message to DLQ: %v (original error: %w)", dlqErr, err)
			}
			c.log.Warn("Message sent to DLQ", "event_id", msg.GetEventID(), "retries", retries, "error", err)
		}
		return err
	}
}

func convertMessage(kafkaMsg kafka.Message) Message {
	msg := Message{
		Key:       string(kafkaMsg.Key),
		Value:     kafkaMsg.Value,
		Headers:   make(map[string]string, len(kafkaMsg.Headers)),
		Topic:     kafkaMsg.Topic,
		Partition: kafkaMsg.Partition,
		Offset:    kafkaMsg.Offset,
		Timestamp: kafkaMsg.Time,
	}
	for _, header := range kafkaMsg.Headers {
		msg.Headers[header.Key] = string(header.Value)
	}
	return msg
}

func sleep(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return ctx.Err() == nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}

// Close waits for Start to return; cancel its context first.
func (c *Consumer) Close() error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil
	}
	c.closed = true
	c.mu.Unlock()

	c.wg.Wait()

	err := c.reader.Close()
	if c.dlqWriter != nil {
		if dlqErr := c.dlqWriter.Close(); err == nil {
			err = dlqErr
		}
	}
	return err
}
