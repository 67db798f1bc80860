package rabbitmq

import (
	"errors"
	"fmt"
	"sync"
	"time"

	amqp "github.com/streadway/amqp"
	"go.uber.org/zap"
)

// ErrMalformed marks a message that can never be processed. Such messages are
// rejected without requeue.
var ErrMalformed = errors.New("malformed message")

// Client holds the RabbitMQ connection and channel.
type Client struct {
	conn    *amqp.Connection
	channel *amqp.Channel
	mu      sync.Mutex // amqp.Channel is not safe for concurrent publishing
	cfg     Config
	logger  *zap.Logger
}

// Config holds RabbitMQ connection details.
type Config struct {
	URL string
	// Exchange is the topic exchange events are published to.
	Exchange string
	// Queue receives every message whose routing key matches BindingKey.
	Queue      string
	BindingKey string
}

// NewClient connects to RabbitMQ, opens a channel and declares the exchange, the
// queue and the binding between them.
func NewClient(cfg Config, logger *zap.Logger) (*Client, error) {
	conn, err := amqp.Dial(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to open channel: %w", err)
	}

	if err := declare(ch, cfg); err != nil {
		ch.Close()
		conn.Close()
		return nil, err
	}

	logger.Info("RabbitMQ client connected",
		zap.String("exchange", cfg.Exchange),
		zap.String("queue", cfg.Queue))

	return &Client{
		conn:    conn,
		channel: ch,
		cfg:     cfg,
		logger:  logger,
	}, nil
}

func declare(ch *amqp.Channel, cfg Config) error {
	err := ch.ExchangeDeclare(
		cfg.Exchange, // name
		"topic",      // kind
		true,         // durable
		false,        // auto-deleted
		false,        // internal
		false,        // no-wait
		nil,          // arguments
	)
	if err != nil {
		return fmt.Errorf("failed to declare exchange %s: %w", cfg.Exchange, err)
	}

	_, err = ch.QueueDeclare(
		cfg.Queue, // name
		true,      // durable (persists messages across broker restarts)
		false,     // delete when unused
		false,     // exclusive
		false,     // no-wait
		nil,       // arguments
	)
	if err != nil {
		return fmt.Errorf("failed to declare queue %s: %w", cfg.Queue, err)
	}

	if err := ch.QueueBind(cfg.Queue, cfg.BindingKey, cfg.Exchange, false, nil); err != nil {
		return fmt.Errorf("failed to bind queue %s: %w", cfg.Queue, err)
	}
	return nil
}

// Close closes the RabbitMQ connection and channel.
func (c *Client) Close() error {
	var errs []error
	if c.channel != nil {
		if err := c.channel.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close channel: %w", err))
		}
	}
	if c.conn != nil {
		if err := c.conn.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close connection: %w", err))
		}
	}
	return errors.Join(errs...)
}

// Publish sends a persistent JSON message.
func (c *Client) Publish(exchange, routingKey string, body []byte) error {
	if c.channel == nil {
		return fmt.Errorf("RabbitMQ channel is not available")
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	err := c.channel.Publish(
		exchange,
		routingKey,
		false, // mandatory
		false, // immediate
		amqp.Publishing{
			ContentType:  "application/json",
			Body:         body,
			DeliveryMode: amqp.Persistent,
			Timestamp:    time.Now(),
		})
	if err != nil {
		return fmt.Errorf("failed to publish message: %w", err)
	}
	return nil
}

// ConsumeOrderEvents starts a goroutine that feeds every message of the configured
// queue to handler. It returns once the consumer is registered; the goroutine ends
// when the channel closes.
func (c *Client) ConsumeOrderEvents(handler func(msg amqp.Delivery) error) error {
	if c.channel == nil {
		return fmt.Errorf("RabbitMQ channel is not available for consumption")
	}

	msgs, err := c.channel.Consume(
		c.cfg.Queue, // queue
		"",          // consumer tag
		false,       // auto-ack
		false,       // exclusive
		false,       // no-local
		false,       // no-wait
		nil,         // args
	)
	if err != nil {
		return fmt.Errorf("failed to register consumer: %w", err)
	}

	c.logger.Info("waiting for order events", zap.String("queue", c.cfg.Queue))
	go func() {
		for msg := range msgs {
			Dispatch(msg, handler, c.logger)
		}
		c.logger.Info("order event consumer stopped")
	}()
	return nil
}

// Dispatch runs handler on msg and settles it: ack on success, reject on
// ErrMalformed, nack with requeue on any other error.
func Dispatch(msg amqp.Delivery, handler func(msg amqp.Delivery) error, logger *zap.Logger) {
	err := handler(msg)
	switch {
	case err == nil:
		if ackErr := msg.Ack(false); ackErr != nil {
			logger.Error("failed to ack message", zap.Uint64("tag", msg.DeliveryTag), zap.Error(ackErr))
		}
	case errors.Is(err, ErrMalformed):
		logger.Warn("dropping malformed message", zap.Uint64("tag", msg.DeliveryTag), zap.Error(err))
		if rejErr := msg.Reject(false); rejErr != nil {
			logger.Error("failed to reject message", zap.Uint64("tag", msg.DeliveryTag), zap.Error(rejErr))
		}
	default:
		logger.Warn("error processing message, requeueing", zap.Uint64("tag", msg.DeliveryTag), zap.Error(err))
		if nackErr := msg.Nack(false, true); nackErr != nil {
			logger.Error("failed to nack message", zap.Uint64("tag", msg.DeliveryTag), zap.Error(nackErr))
		}
	}
}
