package influxdb

import (
	"time"

	"github.com/influxdata/influxdb-client-go/v2/api/write"
)

// MeasurementSensorMonitoring is the measurement written per transition.
const MeasurementSensorMonitoring = "sensor_monitoring"

// RecordEnablement queues a sensor_monitoring point for an enable or
// disable. A zero at uses the current time. Dropped silently after Close.
func (c *Client) RecordEnablement(sensorID string, enabled bool, at time.Time) {
	if !c.IsConnected() {
		return
	}
	c.writeAPI.WritePoint(enablementPoint(sensorID, enabled, at))
}

func enablementPoint(sensorID string, enabled bool, at time.Time) *write.Point {
	if at.IsZero() {
		at = time.Now()
	}
	state := 0
	if enabled {
		state = 1
	}
	return write.NewPoint(
		MeasurementSensorMonitoring,
		map[string]string{"sensor_id": sensorID},
		map[string]any{"enabled": enabled, "state": state},
		at,
	)
}
