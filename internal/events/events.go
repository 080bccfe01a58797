// Package events publishes record changes for downstream consumers.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/claude/gymchat/internal/models"
	"github.com/segmentio/kafka-go"
)

// Kind names a record change.
type Kind string

const (
	RecordLogged Kind = "record.logged"
	RecordUndone Kind = "record.undone"
)

// Event is one record change.
type Event struct {
	Kind   Kind          `json:"kind"`
	UserID string        `json:"user_id"`
	Record models.Record `json:"record"`
	At     time.Time     `json:"at"`
}

// Publisher delivers events. Implementations must be safe for concurrent use.
type Publisher interface {
	Publish(ctx context.Context, e Event) error
}

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// Kafka publishes events as JSON to a single topic, keyed by user so each
// user's events stay ordered within a partition.
type Kafka struct {
	writer  messageWriter
	timeout time.Duration
}

// DefaultTimeout bounds one publish when NewKafka is given zero.
const DefaultTimeout = 2 * time.Second

// NewKafka creates a Kafka publisher. Each publish makes a single attempt
// bounded by timeout, so a slow broker delays a reply by at most timeout and
// never produces duplicate events.
func NewKafka(brokers []string, topic string, timeout time.Duration) *Kafka {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Kafka{
		writer: &kafka.Writer{
			Addr:         kafka.TCP(brokers...),
			Topic:        topic,
			Balancer:     &kafka.Hash{},
			RequiredAcks: kafka.RequireAll,
			Compression:  kafka.Snappy,
			MaxAttempts:  1,
			BatchTimeout: 10 * time.Millisecond,
			WriteTimeout: timeout,
			ReadTimeout:  timeout,
		},
		timeout: timeout,
	}
}

func (k *Kafka) Publish(ctx context.Context, e Event) error {
	value, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("encoding event: %w", err)
	}
	msg := kafka.Message{
		Key:   []byte(e.UserID),
		Value: value,
		Time:  e.At,
		Headers: []kafka.Header{
			{Key: "kind", Value: []byte(e.Kind)},
		},
	}
	ctx, cancel := context.WithTimeout(ctx, k.timeout)
	defer cancel()
	if err := k.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("writing event: %w", err)
	}
	return nil
}

// Close flushes and releases the writer.
func (k *Kafka) Close() error {
	return k.writer.Close()
}
