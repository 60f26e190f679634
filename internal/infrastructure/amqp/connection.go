package amqp

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/cenkalti/backoff"
	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/automak-sensors/device-management/internal/infrastructure/config"
)

// Exchange kinds.
const (
	ExchangeDirect = "direct"
	ExchangeFanout = "fanout"
)

const (
	durable          = true
	deleteWhenUnused = false
	internal         = false
	noWait           = false
	mandatory        = false
	immediate        = false

	contentTypeJSON = "application/json"

	reconnectInitialInterval = 5 * time.Second
	reconnectMaxInterval     = 2 * time.Minute
)

// Logger is the optional logging interface for reconnect events.
type Logger interface {
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

// Connection is a RabbitMQ connection with a single publishing channel.
// All methods are safe for concurrent use.
type Connection struct {
	url        string
	maxElapsed time.Duration

	mu       sync.Mutex
	conn     *amqp.Connection
	channel  *amqp.Channel
	declared map[string]struct{}
	closed   bool
	logger   Logger
}

// New creates an unconnected Connection from the amqp config section.
func New(cfg config.AMQPConfig) *Connection {
	return &Connection{
		url:        cfg.URL,
		maxElapsed: time.Duration(cfg.MaxElapsedTime) * time.Second,
		declared:   make(map[string]struct{}),
	}
}

// SetLogger sets a logger for reconnect events.
func (c *Connection) SetLogger(logger Logger) {
	c.mu.Lock()
	c.logger = logger
	c.mu.Unlock()
}

// Start dials the broker, retrying with exponential backoff until it
// succeeds, the configured max elapsed time passes, or ctx ends. Once
// connected, a background watcher redials if the broker drops the link.
func (c *Connection) Start(ctx context.Context) error {
	b := backoff.NewExponentialBackOff()
	if c.maxElapsed > 0 {
		b.MaxElapsedTime = c.maxElapsed
	}

	if err := backoff.Retry(c.dial, backoff.WithContext(b, ctx)); err != nil {
		return fmt.Errorf("%w: %w", ErrConnectionFailed, err)
	}

	go c.watch()
	return nil
}

// dial opens a connection and channel and swaps them in.
func (c *Connection) dial() error {
	conn, err := amqp.Dial(c.url)
	if err != nil {
		return err
	}
	ch, err := conn.Channel()
	if err != nil {
		conn.Close() //nolint:errcheck // best effort cleanup on error path
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		ch.Close()   //nolint:errcheck // closed while dialling
		conn.Close() //nolint:errcheck // closed while dialling
		return backoff.Permanent(ErrNotConnected)
	}
	c.conn, c.channel = conn, ch
	// Exchanges survive reconnects but the channel is new; redeclare lazily.
	c.declared = make(map[string]struct{})
	return nil
}

// watch blocks until the current connection closes and redials forever
// unless Close was called.
func (c *Connection) watch() {
	for {
		c.mu.Lock()
		conn := c.conn
		c.mu.Unlock()
		if conn == nil {
			return
		}

		reason := <-conn.NotifyClose(make(chan *amqp.Error, 1))
		if c.isClosed() {
			return
		}
		c.log(func(l Logger) { l.Warn("amqp connection lost, reconnecting", "reason", reason) })

		b := backoff.NewExponentialBackOff()
		b.InitialInterval = reconnectInitialInterval
		b.MaxInterval = reconnectMaxInterval
		b.MaxElapsedTime = 0 // never stop

		if err := backoff.Retry(c.dial, b); err != nil {
			return
		}
		c.log(func(l Logger) { l.Info("amqp reconnected") })
	}
}

// PublishPersistent marshals body to JSON and publishes it as a persistent
// message, declaring the durable exchange on first use.
func (c *Connection) PublishPersistent(ctx context.Context, exchange, kind, key string, body any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("encoding JSON message: %w", err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed || c.channel == nil || c.channel.IsClosed() {
		return ErrNotConnected
	}

	if _, ok := c.declared[exchange]; !ok {
		if err := c.channel.ExchangeDeclare(exchange, kind, durable, deleteWhenUnused, internal, noWait, nil); err != nil {
			return fmt.Errorf("%w: declaring exchange %s: %w", ErrPublishFailed, exchange, err)
		}
		c.declared[exchange] = struct{}{}
	}

	err = c.channel.PublishWithContext(ctx, exchange, key, mandatory, immediate, amqp.Publishing{
		ContentType:  contentTypeJSON,
		DeliveryMode: amqp.Persistent,
		Timestamp:    time.Now().UTC(),
		Body:         payload,
	})
	if err != nil {
		return fmt.Errorf("%w: %w", ErrPublishFailed, err)
	}
	return nil
}

// HealthCheck reports ErrNotConnected while the broker link is down.
func (c *Connection) HealthCheck(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("amqp health check: %w", err)
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed || c.conn == nil || c.conn.IsClosed() {
		return ErrNotConnected
	}
	return nil
}

// Close stops reconnecting and closes the channel and connection.
func (c *Connection) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return nil
	}
	c.closed = true

	if c.channel != nil {
		c.channel.Close() //nolint:errcheck // connection close below reports the error that matters
	}
	if c.conn != nil && !c.conn.IsClosed() {
		if err := c.conn.Close(); err != nil {
			return fmt.Errorf("closing amqp connection: %w", err)
		}
	}
	return nil
}

func (c *Connection) isClosed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closed
}

func (c *Connection) log(fn func(Logger)) {
	c.mu.Lock()
	l := c.logger
	c.mu.Unlock()
	if l != nil {
		fn(l)
	}
}
