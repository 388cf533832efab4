// Package messaging publishes order events to RabbitMQ.
package messaging

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/streadway/amqp"
)

var errNotConnected = errors.New("no connection to RabbitMQ")

type Config struct {
	URL        string
	Exchange   string
	RetryCount int
	RetryDelay time.Duration
}

// Client owns one AMQP connection and channel and redials when the broker
// drops the connection.
type Client struct {
	config Config
	log    logrus.FieldLogger

	mu         sync.RWMutex
	connection *amqp.Connection
	channel    *amqp.Channel
	closing    bool
}

func NewClient(config Config, log logrus.FieldLogger) *Client {
	if config.RetryCount <= 0 {
		config.RetryCount = 5
	}
	if config.RetryDelay <= 0 {
		config.RetryDelay = 2 * time.Second
	}
	return &Client{config: config, log: log}
}

// Connect dials the broker and declares the topic exchange, retrying up to
// RetryCount times.
func (c *Client) Connect(ctx context.Context) error {
	var err error
	for attempt := 1; attempt <= c.config.RetryCount; attempt++ {
		if err = c.dial(); err == nil {
			return nil
		}
		c.log.WithError(err).WithField("attempt", attempt).Warn("rabbitmq connect failed")
		if attempt == c.config.RetryCount {
			break
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(c.config.RetryDelay):
		}
	}
	return fmt.Errorf("connect to rabbitmq: %w", err)
}

func (c *Client) dial() error {
	conn, err := amqp.Dial(c.config.URL)
	if err != nil {
		return err
	}
	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return fmt.Errorf("open channel: %w", err)
	}
	err = ch.ExchangeDeclare(
		c.config.Exchange, // name
		"topic",           // type
		true,              // durable
		false,             // auto-deleted
		false,             // internal
		false,             // no-wait
		nil,               // arguments
	)
	if err != nil {
		ch.Close()
		conn.Close()
		return fmt.Errorf("declare exchange %q: %w", c.config.Exchange, err)
	}

	c.mu.Lock()
	c.connection = conn
	c.channel = ch
	c.mu.Unlock()

	c.log.WithField("exchange", c.config.Exchange).Info("connected to rabbitmq")
	go c.watch(conn)
	return nil
}

// watch redials once conn closes unexpectedly.
func (c *Client) watch(conn *amqp.Connection) {
	err, ok := <-conn.NotifyClose(make(chan *amqp.Error, 1))
	c.mu.RLock()
	closing := c.closing
	c.mu.RUnlock()
	if closing || !ok {
		return
	}

	c.log.WithError(err).Warn("rabbitmq connection lost, reconnecting")
	if err := c.Connect(context.Background()); err != nil {
		c.log.WithError(err).Error("rabbitmq reconnect failed")
	}
}

// Publish sends msg on the configured exchange.
func (c *Client) Publish(routingKey string, msg amqp.Publishing) error {
	c.mu.RLock()
	ch := c.channel
	connected := c.connection != nil && !c.connection.IsClosed()
	c.mu.RUnlock()
	if ch == nil || !connected {
		return errNotConnected
	}
	return ch.Publish(c.config.Exchange, routingKey, false, false, msg)
}

func (c *Client) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closing {
		return nil
	}
	c.closing = true

	var errs []error
	if c.channel != nil {
		if err := c.channel.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close channel: %w", err))
		}
	}
	if c.connection != nil {
		if err := c.connection.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close connection: %w", err))
		}
	}
	return errors.Join(errs...)
}
