package events

import (
	"context"
	"encoding/json"
	"log"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

// Publisher sends an event under a routing key. Callers treat failures as
// non-fatal: the triggering state change has already been committed.
type Publisher interface {
	Publish(ctx context.Context, routingKey string, event interface{}) error
}

// dialTimeout bounds the TCP connect and AMQP handshake while p.mu is held.
const dialTimeout = 2 * time.Second

// NewPublisher returns an AMQP publisher when url is set, otherwise a LogPublisher.
func NewPublisher(url, exchange string) Publisher {
	if url == "" {
		log.Printf("[events] RABBITMQ_URL not set, events are logged only")
		return LogPublisher{}
	}
	return &AMQPPublisher{url: url, exchange: exchange}
}

// LogPublisher writes events to the log instead of a broker.
type LogPublisher struct{}

func (LogPublisher) Publish(_ context.Context, routingKey string, event interface{}) error {
	body, err := json.Marshal(event)
	if err != nil {
		return err
	}
	log.Printf("[events] %s %s", routingKey, body)
	return nil
}

// AMQPPublisher publishes persistent JSON messages to a durable topic exchange.
// The connection is opened lazily and re-opened after a failure.
type AMQPPublisher struct {
	url      string
	exchange string

	mu   sync.Mutex
	conn *amqp.Connection
	ch   *amqp.Channel
}

func (p *AMQPPublisher) channel() (*amqp.Channel, error) {
	if p.ch != nil && !p.ch.IsClosed() {
		return p.ch, nil
	}
	p.closeLocked()
	conn, err := amqp.DialConfig(p.url, amqp.Config{
		Heartbeat: 10 * time.Second,
		Locale:    "en_US",
		Dial:      amqp.DefaultDial(dialTimeout),
	})
	if err != nil {
		return nil, err
	}
	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, err
	}
	if err := ch.ExchangeDeclare(
		p.exchange, // name
		"topic",    // kind
		true,       // durable
		false,      // autoDelete
		false,      // internal
		false,      // noWait
		nil,        // args
	); err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return nil, err
	}
	p.conn, p.ch = conn, ch
	return ch, nil
}

func (p *AMQPPublisher) Publish(ctx context.Context, routingKey string, event interface{}) error {
	body, err := json.Marshal(event)
	if err != nil {
		log.Printf("[events] marshal %s failed: %v", routingKey, err)
		return err
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	ch, err := p.channel()
	if err != nil {
		log.Printf("[events] rabbitmq unavailable: %v", err)
		return err
	}
	pub := amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Timestamp:    time.Now().UTC(),
		Body:         body,
	}
	if err := ch.PublishWithContext(ctx, p.exchange, routingKey, false, false, pub); err != nil {
		log.Printf("[events] publish %s failed: %v", routingKey, err)
		p.closeLocked()
		return err
	}
	return nil
}

// Close releases the broker connection.
func (p *AMQPPublisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.closeLocked()
	return nil
}

func (p *AMQPPublisher) closeLocked() {
	if p.ch != nil {
		_ = p.ch.Close()
		p.ch = nil
	}
	if p.conn != nil {
		_ = p.conn.Close()
		p.conn = nil
	}
}
