package dispatch

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/sony/gobreaker/v2"
)

// Task names consumed by out-of-process workers.
const (
	TaskOrderConfirmation   = "order.confirmation"
	TaskRegenerateIndexPage = "index.regenerate"
)

// Dispatcher enqueues fire-and-forget work. Delivery is at-least-once;
// callers never wait for a consumer to process the task.
type Dispatcher interface {
	Enqueue(ctx context.Context, task string, payload any) error
}

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

type KafkaDispatcher struct {
	timeout time.Duration
	writer  messageWriter
	breaker *gobreaker.CircuitBreaker[any]
}

func NewKafkaDispatcher(brokers ...string) *KafkaDispatcher {
	w := &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Topic:                  "storefront-tasks",
		Balancer:               &kafka.LeastBytes{},
		AllowAutoTopicCreation: true,
	}
	return newKafkaDispatcher(w)
}

func newKafkaDispatcher(w messageWriter) *KafkaDispatcher {
	breaker := gobreaker.NewCircuitBreaker[any](gobreaker.Settings{
		Name:    "task-dispatch",
		Timeout: 30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
	})
	return &KafkaDispatcher{
		timeout: 5 * time.Second,
		writer:  w,
		breaker: breaker,
	}
}

func (d *KafkaDispatcher) Enqueue(ctx context.Context, task string, payload any) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal task payload: %w", err)
	}

	msg := kafka.Message{
		Key:   []byte(task), // tasks of one kind keep their relative order
		Value: data,
		Headers: []kafka.Header{
			{Key: "task", Value: []byte(task)},
		},
	}

	_, err = d.breaker.Execute(func() (any, error) {
		writeCtx, cancel := context.WithTimeout(ctx, d.timeout)
		defer cancel()
		return nil, d.writer.WriteMessages(writeCtx, msg)
	})
	if err != nil {
		return fmt.Errorf("enqueue task %s: %w", task, err)
	}
	return nil
}

func (d *KafkaDispatcher) Close() error {
	return d.writer.Close()
}
