package kafka

import (
	"context"
	"fmt"
	"sync"
	"time"

	kafka_config "paws/pkg/kafka/config"
	"paws/pkg/logger"

	"github.com/segmentio/kafka-go"
	"github.com/segmentio/kafka-go/compress"
)

// Writer is the subset of *kafka.Writer the producer and consumer use.
type Writer interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

type Producer struct {
	writer     Writer
	dlqWriter  Writer
	topic      string
	middleware []ProducerMiddleware
	closed     bool
	mu         sync.RWMutex
}

type ProducerMiddleware func(ctx context.Context, msg Message, next func(ctx context.Context, msg Message) error) error

func NewProducer(cfg *kafka_config.Config, topic string, dlqTopic string, log *logger.Logger) (*Producer, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config cannot be nil")
	}
	if len(cfg.Brokers) == 0 {
		return nil, fmt.Errorf("at least one broker is required")
	}
	if topic == "" {
		return nil, fmt.Errorf("topic cannot be empty")
	}

	compression := compressionFor(cfg.ProducerCompression)
	writer := &kafka.Writer{
		Addr:         kafka.TCP(cfg.Brokers...),
		Topic:        topic,
		Balancer:     &kafka.Hash{}, // per-booking ordering
		RequiredAcks: requiredAcksFor(cfg.ProducerRequireAcks),
		Compression:  compression,
		MaxAttempts:  cfg.ProducerMaxAttempts,
		BatchTimeout: cfg.ProducerBatchTimeout,
		ErrorLogger:  errorLogger(log, "producer"),
	}

	var dlqWriter Writer
	if dlqTopic != "" {
		dlqWriter = newDLQWriter(cfg, dlqTopic, compression, log)
	}

	return NewProducerWithWriter(writer, dlqWriter, topic), nil
}

// NewProducerWithWriter builds a producer on top of existing writers.
func NewProducerWithWriter(writer Writer, dlqWriter Writer, topic string) *Producer {
	return &Producer{
		writer:    writer,
		dlqWriter: dlqWriter,
		topic:     topic,
	}
}

func (p *Producer) Topic() string {
	return p.topic
}

func (p *Producer) Use(middleware ProducerMiddleware) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.middleware = append(p.middleware, middleware)
}

func (p *Producer) Publish(ctx context.Context, msg Message) error {
	p.mu.RLock()
	closed := p.closed
	chain := p.middleware
	p.mu.RUnlock()

	if closed {
		return ErrProducerClosed
	}
	if msg.Key == "" {
		return ErrEmptyKey
	}
	if len(msg.Value) == 0 {
		return ErrEmptyValue
	}
	if msg.Topic == "" {
		msg.Topic = p.topic
	}

	handler := p.publishInternal
	for i := len(chain) - 1; i >= 0; i-- {
		middleware := chain[i]
		next := handler
		handler = func(ctx context.Context, m Message) error {
			return middleware(ctx, m, next)
		}
	}

	return handler(ctx, msg)
}

func (p *Producer) publishInternal(ctx context.Context, msg Message) error {
	err := p.writer.WriteMessages(ctx, toKafkaMessage(msg))
	if err == nil {
		return nil
	}

	if p.dlqWriter != nil {
		if dlqErr := p.dlqWriter.WriteMessages(ctx, toDLQMessage(msg, p.topic, err, "")); dlqErr != nil {
			return fmt.Errorf("failed to send to DLQ: %v (original error: %w)", dlqErr, err)
		}
	}
	return err
}

func (p *Producer) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return nil
	}
	p.closed = true

	err := p.writer.Close()
	if p.dlqWriter != nil {
		if dlqErr := p.dlqWriter.Close(); err == nil {
			err = dlqErr
		}
	}
	return err
}

func toKafkaMessage(msg Message) kafka.Message {
	kafkaMsg := kafka.Message{
		Key:   []byte(msg.Key),
		Value: msg.Value,
		Time:  msg.Timestamp,
	}
	for k, v := range msg.Headers {
		kafkaMsg.Headers = append(kafkaMsg.Headers, kafka.Header{Key: k, Value: []byte(v)})
	}
	return kafkaMsg
}

func toDLQMessage(msg Message, topic string, cause error, groupID string) kafka.Message {
	headers := make(map[string]string, len(msg.Headers)+4)
	for k, v := range msg.Headers {
		headers[k] = v
	}
	headers[HeaderOriginalTopic] = topic
	headers[HeaderDLQError] = cause.Error()
	headers[HeaderDLQTimestamp] = time.Now().UTC().Format(time.RFC3339)
	if groupID != "" {
		headers[HeaderDLQGroup] = groupID
	}

	msg.Headers = headers
	msg.Timestamp = time.Now()
	return toKafkaMessage(msg)
}

func newDLQWriter(cfg *kafka_config.Config, topic string, compression compress.Compression, log *logger.Logger) *kafka.Writer {
	return &kafka.Writer{
		Addr:         kafka.TCP(cfg.Brokers...),
		Topic:        topic,
		Balancer:     &kafka.Hash{},
		RequiredAcks: kafka.RequireAll,
		Compression:  compression,
		MaxAttempts:  3,
		ErrorLogger:  errorLogger(log, "dlq"),
	}
}

func compressionFor(name string) compress.Compression {
	switch name {
	case "none":
		return compress.None
	case "gzip":
		return compress.Gzip
	case "lz4":
		return compress.Lz4
	case "zstd":
		return compress.Zstd
	default:
		return compress.Snappy
	}
}

func requiredAcksFor(acks int) kafka.RequiredAcks {
	switch acks {
	case 0:
		return kafka.RequireNone
	case 1:
		return kafka.RequireOne
	default:
		return kafka.RequireAll
	}
}

func errorLogger(log *logger.Logger, component string) kafka.Logger {
	return kafka.LoggerFunc(func(msg string, args ...any) {
		log.Error("kafka client error", "component", component, "detail", fmt.Sprintf(msg, args...))
	})
}
