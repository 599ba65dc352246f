package dispatch

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/segmentio/kafka-go"
	"github.com/sony/gobreaker/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockWriter struct {
	messages []kafka.Message
	err      error
}

func (m *mockWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	if m.err != nil {
		return m.err
	}
	m.messages = append(m.messages, msgs...)
	return nil
}

func (m *mockWriter) Close() error { return nil }

func TestEnqueue_WritesTaskMessage(t *testing.T) {
	writer := &mockWriter{}
	d := newKafkaDispatcher(writer)

	payload := map[string]any{"order_id": "20260829134507421a2b3c4d5e6f"}
	err := d.Enqueue(context.Background(), TaskOrderConfirmation, payload)
	require.NoError(t, err)

	require.Len(t, writer.messages, 1)
	msg := writer.messages[0]
	assert.Equal(t, []byte(TaskOrderConfirmation), msg.Key)

	require.Len(t, msg.Headers, 1)
	assert.Equal(t, "task", msg.Headers[0].Key)
	assert.Equal(t, []byte(TaskOrderConfirmation), msg.Headers[0].Value)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(msg.Value, &decoded))
	assert.Equal(t, "20260829134507421a2b3c4d5e6f", decoded["order_id"])
}

func TestEnqueue_WriterFailure(t *testing.T) {
	writer := &mockWriter{err: errors.New("broker unreachable")}
	d := newKafkaDispatcher(writer)

	err := d.Enqueue(context.Background(), TaskOrderConfirmation, struct{}{})
	require.ErrorContains(t, err, "enqueue task")
}

func TestEnqueue_BreakerOpensAfterConsecutiveFailures(t *testing.T) {
	writer := &mockWriter{err: errors.New("broker unreachable")}
	d := newKafkaDispatcher(writer)

	for i := 0; i < 5; i++ {
		err := d.Enqueue(context.Background(), TaskRegenerateIndexPage, struct{}{})
		require.Error(t, err)
	}

	// the breaker is open now and the writer is no longer called
	err := d.Enqueue(context.Background(), TaskRegenerateIndexPage, struct{}{})
	assert.ErrorIs(t, err, gobreaker.ErrOpenState)
}

func TestEnqueue_UnserializablePayload(t *testing.T) {
	writer := &mockWriter{}
	d := newKafkaDispatcher(writer)

	err := d.Enqueue(context.Background(), TaskOrderConfirmation, make(chan int))
	require.ErrorContains(t, err, "marshal task payload")
	assert.Empty(t, writer.messages)
}
