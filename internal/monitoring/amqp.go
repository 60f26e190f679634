package monitoring

import (
	"context"
	"fmt"
	"time"

	"github.com/automak-sensors/device-management/internal/infrastructure/amqp"
)

// DefaultExchange is the direct exchange monitoring commands go to.
const DefaultExchange = "sensor.monitoring"

// AMQPPublisher is the subset of *amqp.Connection used here.
type AMQPPublisher interface {
	PublishPersistent(ctx context.Context, exchange, kind, key string, body any) error
}

// AMQPClient publishes monitoring commands to RabbitMQ.
type AMQPClient struct {
	publisher AMQPPublisher
	exchange  string
	now       func() time.Time
	logger    Logger
}

// NewAMQPClient publishes to exchange, or DefaultExchange when empty.
func NewAMQPClient(publisher AMQPPublisher, exchange string) *AMQPClient {
	if exchange == "" {
		exchange = DefaultExchange
	}
	return &AMQPClient{
		publisher: publisher,
		exchange:  exchange,
		now:       time.Now,
		logger:    noopLogger{},
	}
}

// SetLogger sets the logger.
func (c *AMQPClient) SetLogger(l Logger) {
	c.logger = l
}

// RoutingKey returns the routing key for an action, e.g.
// "sensor.monitoring.enable". Keys do not depend on the configured exchange.
func RoutingKey(action string) string {
	return DefaultExchange + "." + action
}

// Activate publishes an enable command.
func (c *AMQPClient) Activate(ctx context.Context, sensorID string) error {
	return c.publish(ctx, sensorID, ActionEnable)
}

// Deactivate publishes a disable command.
func (c *AMQPClient) Deactivate(ctx context.Context, sensorID string) error {
	return c.publish(ctx, sensorID, ActionDisable)
}

func (c *AMQPClient) publish(ctx context.Context, sensorID, action string) error {
	key := RoutingKey(action)
	cmd := newCommand(sensorID, action, c.now)

	if err := c.publisher.PublishPersistent(ctx, c.exchange, amqp.ExchangeDirect, key, cmd); err != nil {
		return fmt.Errorf("%w: publishing %s to %s: %w", ErrMonitoringUnavailable, key, c.exchange, err)
	}

	c.logger.Info("monitoring "+action+" published", "sensor_id", sensorID, "routing_key", key)
	return nil
}
