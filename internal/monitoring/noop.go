package monitoring

import "context"

// NoopClient accepts every request without contacting anything. It backs
// monitoring.backend "none" for local development.
type NoopClient struct {
	logger Logger
}

// NewNoopClient returns a client that only logs.
func NewNoopClient(logger Logger) *NoopClient {
	if logger == nil {
		logger = noopLogger{}
	}
	return &NoopClient{logger: logger}
}

// Activate logs and succeeds.
func (c *NoopClient) Activate(_ context.Context, sensorID string) error {
	c.logger.Info("monitoring backend disabled, skipping enable", "sensor_id", sensorID)
	return nil
}

// Deactivate logs and succeeds.
func (c *NoopClient) Deactivate(_ context.Context, sensorID string) error {
	c.logger.Info("monitoring backend disabled, skipping disable", "sensor_id", sensorID)
	return nil
}
