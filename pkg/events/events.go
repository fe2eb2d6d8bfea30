// Package events publishes loan lifecycle events to a RabbitMQ topic exchange.
package events

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

// Routing keys
const (
	ApplicationSubmitted = "loan.application.submitted"
	ApplicationApproved  = "loan.application.approved"
	ApplicationDeclined  = "loan.application.declined"
	PaymentCompleted     = "loan.payment.completed"
	LoanPaidOff          = "loan.paid"
)

// Publisher sends an event body under a routing key.
type Publisher interface {
	Publish(ctx context.Context, routingKey string, body interface{}) error
	Close()
}

// AMQPPublisher publishes JSON events to a durable topic exchange.
type AMQPPublisher struct {
	mu       sync.Mutex
	conn     *amqp.Connection
	channel  *amqp.Channel
	exchange string
	logger   *slog.Logger
}

// LogPublisher logs events instead of publishing them. It is used when no
// broker is configured or the broker is unreachable at startup.
type LogPublisher struct {
	Logger *slog.Logger
}

func (p *LogPublisher) Publish(ctx context.Context, routingKey string, body interface{}) error {
	p.Logger.Info("event not published, broker unavailable", "routing_key", routingKey, "body", body)
	return nil
}

func (p *LogPublisher) Close() {}

// Connect dials the broker and declares the exchange. An empty URL or a
// failed dial yields a LogPublisher so the service can still start.
func Connect(amqpURL, exchange string, logger *slog.Logger) Publisher {
	if strings.TrimSpace(amqpURL) == "" {
		logger.Warn("AMQP_URL not set, events will only be logged")
		return &LogPublisher{Logger: logger}
	}

	p, err := NewAMQPPublisher(amqpURL, exchange, logger)
	if err != nil {
		logger.Warn("could not connect to broker, events will only be logged", "error", err)
		return &LogPublisher{Logger: logger}
	}
	return p
}

// NewAMQPPublisher opens a connection and channel and declares the exchange.
func NewAMQPPublisher(amqpURL, exchange string, logger *slog.Logger) (*AMQPPublisher, error) {
	cleanURL, err := SanitizeURL(amqpURL)
	if err != nil {
		return nil, err
	}

	conn, err := amqp.DialConfig(cleanURL, amqp.Config{Dial: amqp.DefaultDial(10 * time.Second)})
	if err != nil {
		return nil, fmt.Errorf("dial broker: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("open channel: %w", err)
	}

	if err := declare(ch, exchange); err != nil {
		conn.Close()
		return nil, err
	}

	return &AMQPPublisher{conn: conn, channel: ch, exchange: exchange, logger: logger}, nil
}

// Publish marshals body to JSON and publishes it. A failed publish reopens
// the channel and retries once.
func (p *AMQPPublisher) Publish(ctx context.Context, routingKey string, body interface{}) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}

	msg := amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Timestamp:    time.Now(),
		Body:         payload,
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	err = p.channel.PublishWithContext(ctx, p.exchange, routingKey, false, false, msg)
	if err == nil {
		p.logger.Debug("event published", "exchange", p.exchange, "routing_key", routingKey)
		return nil
	}

	p.logger.Warn("publish failed, reopening channel", "routing_key", routingKey, "error", err)
	ch, chErr := p.conn.Channel()
	if chErr != nil {
		return errors.Join(err, chErr)
	}
	if declErr := declare(ch, p.exchange); declErr != nil {
		return errors.Join(err, declErr)
	}
	p.channel = ch

	return p.channel.PublishWithContext(ctx, p.exchange, routingKey, false, false, msg)
}

// Close closes the channel and connection.
func (p *AMQPPublisher) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.channel != nil {
		p.channel.Close()
	}
	if p.conn != nil {
		p.conn.Close()
	}
}

func declare(ch *amqp.Channel, exchange string) error {
	if err := ch.ExchangeDeclare(exchange, "topic", true, false, false, false, nil); err != nil {
		return fmt.Errorf("declare exchange %q: %w", exchange, err)
	}
	return nil
}

// SanitizeURL strips quotes and stray prefixes from an AMQP URL and checks its scheme.
func SanitizeURL(raw string) (string, error) {
	clean := strings.Trim(strings.TrimSpace(raw), "\"'")
	if idx := strings.Index(strings.ToLower(clean), "amqp"); idx > 0 {
		clean = clean[idx:]
	}

	u, err := url.Parse(clean)
	if err != nil {
		return "", err
	}
	if u.Scheme != "amqp" && u.Scheme != "amqps" {
		return "", errors.New("AMQP scheme must be either 'amqp://' or 'amqps://'")
	}
	return clean, nil
}
