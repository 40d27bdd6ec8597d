package amqp

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/dafibh/arthaku/internal/websocket"
	"github.com/rabbitmq/amqp091-go"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

const (
	// DefaultBufferSize is how many events may wait for the worker
	DefaultBufferSize = 256
	publishTimeout    = 5 * time.Second
	maxAttempts       = 3
	maxBackoff        = 5 * time.Second
)

// Channel is the subset of *amqp091.Channel the publisher needs
type Channel interface {
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp091.Publishing) error
	Close() error
}

// Publisher forwards engine events to a topic exchange. Publish never blocks;
// a single worker delivers events in order and drops them when the buffer
// is full.
type Publisher struct {
	conn     *amqp091.Connection
	channel  Channel
	exchange string
	backoff  time.Duration

	mu     sync.Mutex
	closed bool
	queue  chan websocket.Event
	done   chan struct{}

	logger zerolog.Logger
}

// Ensure Publisher implements websocket.EventPublisher
var _ websocket.EventPublisher = (*Publisher)(nil)

// NewPublisher dials the broker, declares the exchange and starts the worker
func NewPublisher(url, exchange string) (*Publisher, error) {
	conn, err := amqp091.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("dial AMQP: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("open channel: %w", err)
	}

	err = ch.ExchangeDeclare(
		exchange, // name
		"topic",  // type
		true,     // durable
		false,    // auto-deleted
		false,    // internal
		false,    // no-wait
		nil,      // arguments
	)
	if err != nil {
		ch.Close()
		conn.Close()
		return nil, fmt.Errorf("declare exchange: %w", err)
	}

	p := newPublisher(ch, exchange, DefaultBufferSize, 200*time.Millisecond)
	p.conn = conn
	return p, nil
}

func newPublisher(ch Channel, exchange string, buffer int, backoff time.Duration) *Publisher {
	p := &Publisher{
		channel:  ch,
		exchange: exchange,
		backoff:  backoff,
		queue:    make(chan websocket.Event, buffer),
		done:     make(chan struct{}),
		logger:   log.With().Str("component", "amqp_publisher").Logger(),
	}
	go p.run()
	return p
}

// Publish queues the event for delivery
func (p *Publisher) Publish(event websocket.Event) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return
	}
	select {
	case p.queue <- event:
	default:
		p.logger.Warn().Str("type", event.Type).Msg("Event buffer full, dropping event")
	}
}

// Close drains queued events and closes the broker connection
func (p *Publisher) Close() error {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return nil
	}
	p.closed = true
	close(p.queue)
	p.mu.Unlock()

	<-p.done

	if p.channel != nil {
		p.channel.Close()
	}
	if p.conn != nil {
		return p.conn.Close()
	}
	return nil
}

func (p *Publisher) run() {
	defer close(p.done)

	for event := range p.queue {
		if err := p.deliver(event); err != nil {
			p.logger.Error().Err(err).Str("type", event.Type).Msg("Failed to publish event")
		}
	}
}

func (p *Publisher) deliver(event websocket.Event) error {
	body, err := event.ToJSON()
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}

	msg := amqp091.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp091.Persistent,
		Timestamp:    event.Timestamp,
		Type:         event.Type,
		Body:         body,
	}

	for attempt := 0; ; attempt++ {
		ctx, cancel := context.WithTimeout(context.Background(), publishTimeout)
		err = p.channel.PublishWithContext(
			ctx,
			p.exchange, // exchange
			event.Type, // routing key
			false,      // mandatory
			false,      // immediate
			msg,
		)
		cancel()
		if err == nil {
			p.logger.Debug().Str("type", event.Type).Str("exchange", p.exchange).Msg("Published event")
			return nil
		}
		if attempt+1 >= maxAttempts {
			return fmt.Errorf("publish message: %w", err)
		}
		time.Sleep(exponentialBackoff(p.backoff, attempt))
	}
}

// exponentialBackoff doubles base per attempt, capped at maxBackoff
func exponentialBackoff(base time.Duration, attempt int) time.Duration {
	d := base
	for i := 0; i < attempt; i++ {
		d *= 2
		if d >= maxBackoff {
			return maxBackoff
		}
	}
	return d
}
