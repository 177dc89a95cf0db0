package kafka_config

import "time"

const (
	DefaultKafkaBrokers = "localhost:9092"
	DefaultKafkaEnabled = true

	DefaultBookingTopic    = "paws.booking-requests"
	DefaultBookingDLQTopic = "paws.booking-requests.dlq"
	DefaultConsumerGroupID = "paws-notifier"

	DefaultProducerMaxAttempts  = 3
	DefaultProducerBatchTimeout = 10 * time.Millisecond
	DefaultProducerRequireAcks  = -1 // all replicas
	DefaultProducerCompression  = "snappy"

	DefaultConsumerStartOffset       = -2 // oldest, so a new group replays pending requests
	DefaultConsumerMinBytes          = 1
	DefaultConsumerMaxBytes          = 10 * 1024 * 1024 // 10MB
	DefaultConsumerMaxWait           = 500 * time.Millisecond
	DefaultConsumerCommitInterval    = 0 // synchronous commits
	DefaultConsumerHeartbeatInterval = 3 * time.Second
	DefaultConsumerSessionTimeout    = 10 * time.Second
	DefaultConsumerRebalanceTimeout  = 60 * time.Second
	DefaultConsumerMaxRetries        = 3
	DefaultConsumerRetryBackoff      = 500 * time.Millisecond
)
