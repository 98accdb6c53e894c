package rabbitmq

import (
	"context"
	"encoding/json"
	"log"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

const publishTimeout = 5 * time.Second

// Publisher sends domain and audit events to a topic exchange. Events are
// JSON-encoded and published persistent.
type Publisher interface {
	Publish(ctx context.Context, routingKey string, event any) error
	Close() error
}

type amqpPublisher struct {
	mu       sync.Mutex
	conn     *amqp.Connection
	channel  *amqp.Channel
	exchange string
}

// NewPublisher dials the broker and declares exchange as a durable topic
// exchange.
func NewPublisher(amqpURL, exchange string) (Publisher, error) {
	conn, err := amqp.Dial(amqpURL)
	if err != nil {
		return nil, err
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, err
	}

	err = ch.ExchangeDeclare(
		exchange,
		"topic",
		true,  // durable
		false, // auto-deleted
		false, // internal
		false, // no-wait
		nil,
	)
	if err != nil {
		ch.Close()
		conn.Close()
		return nil, err
	}

	return &amqpPublisher{conn: conn, channel: ch, exchange: exchange}, nil
}

func (p *amqpPublisher) Publish(ctx context.Context, routingKey string, event any) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.channel == nil {
		return amqp.ErrClosed
	}

	body, err := json.Marshal(event)
	if err != nil {
		return err
	}

	if ctx == nil {
		ctx = context.Background()
	}
	ctx, cancel := context.WithTimeout(ctx, publishTimeout)
	defer cancel()

	return p.channel.PublishWithContext(ctx,
		p.exchange,
		routingKey,
		false, // mandatory
		false, // immediate
		amqp.Publishing{
			ContentType:  "application/json",
			Body:         body,
			Timestamp:    time.Now(),
			DeliveryMode: amqp.Persistent,
		},
	)
}

func (p *amqpPublisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.channel != nil {
		_ = p.channel.Close()
		p.channel = nil
	}
	if p.conn != nil {
		_ = p.conn.Close()
		p.conn = nil
	}
	return nil
}

type noopPublisher struct{}

// NewNoopPublisher returns a publisher that drops events, used when no broker
// is configured so the service degrades instead of failing.
func NewNoopPublisher() Publisher { return noopPublisher{} }

func (noopPublisher) Publish(ctx context.Context, routingKey string, event any) error {
	log.Printf("warning: RabbitMQ not configured; skipping publish for routing key %s", routingKey)
	return nil
}

func (noopPublisher) Close() error { return nil }
