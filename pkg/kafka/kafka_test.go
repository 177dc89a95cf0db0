package kafka

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"testing"
	"time"

	"paws/pkg/logger"

	"github.com/segmentio/kafka-go"
)

type fakeWriter struct {
	mu       sync.Mutex
	messages []kafka.Message
	err      error
	closed   bool
}

func (w *fakeWriter) WriteMessages(ctx context.Context, msgs ...kafka.Message) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.err != nil {
		return w.err
	}
	w.messages = append(w.messages, msgs...)
	return nil
}

func (w *fakeWriter) Close() error {
	w.closed = true
	return nil
}

type fakeReader struct {
	mu        sync.Mutex
	pending   []kafka.Message
	committed []kafka.Message
	drained   chan struct{}
}

func newFakeReader(msgs ...kafka.Message) *fakeReader {
	return &fakeReader{pending: msgs, drained: make(chan struct{})}
}

func (r *fakeReader) FetchMessage(ctx context.Context) (kafka.Message, error) {
	r.mu.Lock()
	if len(r.pending) > 0 {
		msg := r.pending[0]
		r.pending = r.pending[1:]
		r.mu.Unlock()
		return msg, nil
	}
	r.mu.Unlock()
	<-ctx.Done()
	return kafka.Message{}, ctx.Err()
}

func (r *fakeReader) CommitMessages(ctx context.Context, msgs ...kafka.Message) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.committed = append(r.committed, msgs...)
	if len(r.pending) == 0 {
		select {
		case <-r.drained:
		default:
			close(r.drained)
		}
	}
	return nil
}

func (r *fakeReader) Close() error { return nil }

func testLogger() *logger.Logger {
	return logger.New(logger.Config{Level: "error", Format: logger.JSON, Output: io.Discard})
}

func headerMap(msg kafka.Message) map[string]string {
	out := make(map[string]string, len(msg.Headers))
	for _, h := range msg.Headers {
		out[h.Key] = string(h.Value)
	}
	return out
}

func TestMessageBuilder(t *testing.T) {
	msg, err := NewMessage().
		WithKey("b1").
		WithValue(map[string]string{"status": "PENDING"}).
		WithEventType("booking.pending").
		WithCorrelationID("req-1").
		Build()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if msg.GetEventID() == "" {
		t.Error("expected generated event id")
	}
	if msg.GetEventType() != "booking.pending" || msg.GetCorrelationID() != "req-1" {
		t.Errorf("headers = %v", msg.Headers)
	}
	if string(msg.Value) != `{"status":"PENDING"}` {
		t.Errorf("value = %s", msg.Value)
	}
}

func TestMessageBuilder_EncodingError(t *testing.T) {
	_, err := NewMessage().WithKey("b1").WithValue(make(chan int)).Build()
	if !errors.Is(err, ErrInvalidMessage) {
		t.Errorf("expected ErrInvalidMessage, got %v", err)
	}
}

func TestRetryCount(t *testing.T) {
	msg := Message{}
	for i := 0; i < 12; i++ {
		msg.IncrementRetryCount()
	}
	if got := msg.GetRetryCount(); got != 12 {
		t.Errorf("retry count = %d, want 12", got)
	}
}

func TestClassifyError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want ErrorType
	}{
		{"nil", nil, ErrorTypeUnknown},
		{"tagged transient", NewTransientError("slack", errors.New("x")), ErrorTypeTransient},
		{"tagged permanent", NewPermanentError("bad", errors.New("x")), ErrorTypePermanent},
		{"deadline", fmt.Errorf("post: %w", context.DeadlineExceeded), ErrorTypeTransient},
		{"connection refused", errors.New("dial tcp: Connection Refused"), ErrorTypeTransient},
		{"unknown", errors.New("channel_not_found"), ErrorTypePermanent},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ClassifyError(tt.err); got != tt.want {
				t.Errorf("ClassifyError() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestProducer_Publish(t *testing.T) {
	w := &fakeWriter{}
	p := NewProducerWithWriter(w, nil, "paws.booking-requests")

	var seen []string
	p.Use(func(ctx context.Context, msg Message, next func(context.Context, Message) error) error {
		seen = append(seen, msg.Topic)
		return next(ctx, msg)
	})

	msg, _ := NewMessage().WithKey("b1").WithValue("x").WithEventType("booking.pending").Build()
	if err := p.Publish(context.Background(), msg); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(w.messages) != 1 {
		t.Fatalf("expected 1 written message, got %d", len(w.messages))
	}
	if string(w.messages[0].Key) != "b1" {
		t.Errorf("key = %s", w.messages[0].Key)
	}
	if headerMap(w.messages[0])[HeaderEventType] != "booking.pending" {
		t.Error("event type header missing")
	}
	if len(seen) != 1 || seen[0] != "paws.booking-requests" {
		t.Errorf("middleware saw %v", seen)
	}
}

func TestProducer_Validation(t *testing.T) {
	p := NewProducerWithWriter(&fakeWriter{}, nil, "t")

	if err := p.Publish(context.Background(), Message{Value: []byte("x")}); !errors.Is(err, ErrEmptyKey) {
		t.Errorf("expected ErrEmptyKey, got %v", err)
	}
	if err := p.Publish(context.Background(), Message{Key: "k"}); !errors.Is(err, ErrEmptyValue) {
		t.Errorf("expected ErrEmptyValue, got %v", err)
	}

	_ = p.Close()
	if err := p.Publish(context.Background(), Message{Key: "k", Value: []byte("x")}); !errors.Is(err, ErrProducerClosed) {
		t.Errorf("expected ErrProducerClosed, got %v", err)
	}
}

func TestProducer_FailureGoesToDLQ(t *testing.T) {
	writeErr := errors.New("leader not available")
	dlq := &fakeWriter{}
	p := NewProducerWithWriter(&fakeWriter{err: writeErr}, dlq, "t")

	err := p.Publish(context.Background(), Message{Key: "k", Value: []byte("x"), Headers: map[string]string{}})
	if !errors.Is(err, writeErr) {
		t.Errorf("expected original error, got %v", err)
	}
	if len(dlq.messages) != 1 {
		t.Fatalf("expected DLQ message, got %d", len(dlq.messages))
	}
	headers := headerMap(dlq.messages[0])
	if headers[HeaderOriginalTopic] != "t" || headers[HeaderDLQError] == "" {
		t.Errorf("dlq headers = %v", headers)
	}
}

func TestConsumer_ProcessesAndCommits(t *testing.T) {
	reader := newFakeReader(
		kafka.Message{Topic: "t", Key: []byte("b1"), Value: []byte(`{}`), Offset: 1},
		kafka.Message{Topic: "t", Key: []byte("b2"), Value: []byte(`{}`), Offset: 2},
	)

	var mu sync.Mutex
	var keys []string
	handler := func(ctx context.Context, msg Message) error {
		mu.Lock()
		defer mu.Unlock()
		keys = append(keys, msg.Key)
		return nil
	}

	c := NewConsumerWithReader(reader, nil, "t", "g", handler, testLogger())
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- c.Start(ctx) }()

	select {
	case <-reader.drained:
	case <-time.After(2 * time.Second):
		t.Fatal("consumer did not drain messages")
	}
	cancel()
	<-done

	if len(keys) != 2 || keys[0] != "b1" || keys[1] != "b2" {
		t.Errorf("handled keys = %v", keys)
	}
	if len(reader.committed) != 2 {
		t.Errorf("committed %d messages, want 2", len(reader.committed))
	}
}

func TestConsumer_RetriesTransientThenDLQ(t *testing.T) {
	dlq := &fakeWriter{}
	attempts := 0
	handler := func(ctx context.Context, msg Message) error {
		attempts++
		return NewTransientError("slack unavailable", errors.New("503"))
	}

	c := NewConsumerWithReader(newFakeReader(), dlq, "t", "g", handler, testLogger())
	c.retryBackoff = 0
	c.maxRetries = 2

	err := c.processMessage(context.Background(), Message{Key: "b1", Value: []byte(`{}`), Headers: map[string]string{}})
	if err == nil {
		t.Fatal("expected error")
	}
	if attempts != 3 {
		t.Errorf("attempts = %d, want 3", attempts)
	}
	if len(dlq.messages) != 1 {
		t.Fatalf("expected DLQ message, got %d", len(dlq.messages))
	}
	if headerMap(dlq.messages[0])[HeaderDLQGroup] != "g" {
		t.Error("expected consumer group header on DLQ message")
	}
}

func TestConsumer_PermanentErrorNotRetried(t *testing.T) {
	attempts := 0
	handler := func(ctx context.Context, msg Message) error {
		attempts++
		return NewPermanentError("bad payload", errors.New("x"))
	}

	c := NewConsumerWithReader(newFakeReader(), nil, "t", "g", handler, testLogger())
	c.retryBackoff = 0

	if err := c.processMessage(context.Background(), Message{Headers: map[string]string{}}); err == nil {
		t.Fatal("expected error")
	}
	if attempts != 1 {
		t.Errorf("attempts = %d, want 1", attempts)
	}
}
