package monitoring

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/automak-sensors/device-management/internal/infrastructure/mqtt"
)

// MQTTPublisher is the subset of *mqtt.Client used here.
type MQTTPublisher interface {
	Publish(topic string, payload []byte, qos byte, retained bool) error
}

// MQTTClient publishes monitoring commands to the MQTT broker.
type MQTTClient struct {
	publisher MQTTPublisher
	topics    mqtt.Topics
	qos       byte
	now       func() time.Time
	logger    Logger
}

// NewMQTTClient publishes at qos under topicPrefix.
func NewMQTTClient(publisher MQTTPublisher, topicPrefix string, qos byte) *MQTTClient {
	return &MQTTClient{
		publisher: publisher,
		topics:    mqtt.Topics{Prefix: topicPrefix},
		qos:       qos,
		now:       time.Now,
		logger:    noopLogger{},
	}
}

// SetLogger sets the logger.
func (c *MQTTClient) SetLogger(l Logger) {
	c.logger = l
}

// Activate publishes an enable command.
func (c *MQTTClient) Activate(ctx context.Context, sensorID string) error {
	return c.publish(ctx, sensorID, ActionEnable)
}

// Deactivate publishes a disable command.
func (c *MQTTClient) Deactivate(ctx context.Context, sensorID string) error {
	return c.publish(ctx, sensorID, ActionDisable)
}

func (c *MQTTClient) publish(ctx context.Context, sensorID, action string) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%w: %w", ErrMonitoringUnavailable, err)
	}

	payload, err := json.Marshal(newCommand(sensorID, action, c.now))
	if err != nil {
		return fmt.Errorf("encoding monitoring command: %w", err)
	}

	topic := c.topics.MonitoringCommand(sensorID, action)
	if err := c.publisher.Publish(topic, payload, c.qos, false); err != nil {
		return fmt.Errorf("%w: publishing to %s: %w", ErrMonitoringUnavailable, topic, err)
	}

	c.logger.Info("monitoring "+action+" published", "sensor_id", sensorID, "topic", topic)
	return nil
}
