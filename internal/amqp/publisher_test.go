package amqp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/dafibh/arthaku/internal/websocket"
	"github.com/rabbitmq/amqp091-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type published struct {
	exchange string
	key      string
	msg      amqp091.Publishing
}

type fakeChannel struct {
	mu       sync.Mutex
	messages []published
	failures int
	attempts int
	closed   bool
}

func (f *fakeChannel) PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp091.Publishing) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.attempts++
	if f.failures > 0 {
		f.failures--
		return errors.New("channel closed")
	}
	f.messages = append(f.messages, published{exchange: exchange, key: key, msg: msg})
	return nil
}

func (f *fakeChannel) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed = true
	return nil
}

func (f *fakeChannel) snapshot() []published {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]published(nil), f.messages...)
}

func TestPublisher_DeliversInOrder(t *testing.T) {
	ch := &fakeChannel{}
	p := newPublisher(ch, "arthaku.events", 8, time.Millisecond)

	p.Publish(websocket.BudgetUpdated(map[string]string{"period": "2024-03"}))
	p.Publish(websocket.IncomeSynced(map[string]int64{"income": 100}))
	require.NoError(t, p.Close())

	msgs := ch.snapshot()
	require.Len(t, msgs, 2)
	assert.Equal(t, "arthaku.events", msgs[0].exchange)
	assert.Equal(t, "budget.updated", msgs[0].key)
	assert.Equal(t, "income.synced", msgs[1].key)
	assert.Equal(t, "application/json", msgs[0].msg.ContentType)
	assert.Equal(t, amqp091.Persistent, msgs[0].msg.DeliveryMode)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(msgs[0].msg.Body, &body))
	assert.Equal(t, "budget.updated", body["type"])
	assert.True(t, ch.closed)
}

func TestPublisher_RetriesTransientFailure(t *testing.T) {
	ch := &fakeChannel{failures: 2}
	p := newPublisher(ch, "arthaku.events", 8, time.Millisecond)

	p.Publish(websocket.LedgerReplaced(nil))
	require.NoError(t, p.Close())

	assert.Len(t, ch.snapshot(), 1)
	assert.Equal(t, 3, ch.attempts)
}

func TestPublisher_GivesUpAfterMaxAttempts(t *testing.T) {
	ch := &fakeChannel{failures: 10}
	p := newPublisher(ch, "arthaku.events", 8, time.Millisecond)

	p.Publish(websocket.LedgerReplaced(nil))
	require.NoError(t, p.Close())

	assert.Empty(t, ch.snapshot())
	assert.Equal(t, maxAttempts, ch.attempts)
}

func TestPublisher_PublishAfterCloseIsIgnored(t *testing.T) {
	ch := &fakeChannel{}
	p := newPublisher(ch, "arthaku.events", 8, time.Millisecond)
	require.NoError(t, p.Close())

	assert.NotPanics(t, func() { p.Publish(websocket.BudgetUpdated(nil)) })
	assert.NoError(t, p.Close())
	assert.Empty(t, ch.snapshot())
}

func TestExponentialBackoff(t *testing.T) {
	tests := []struct {
		attempt  int
		expected time.Duration
	}{
		{0, 200 * time.Millisecond},
		{1, 400 * time.Millisecond},
		{2, 800 * time.Millisecond},
		{4, 3200 * time.Millisecond},
		{5, maxBackoff},
		{20, maxBackoff},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("attempt_%d", tt.attempt), func(t *testing.T) {
			assert.Equal(t, tt.expected, exponentialBackoff(200*time.Millisecond, tt.attempt))
		})
	}
}
