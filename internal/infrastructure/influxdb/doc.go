// Package influxdb records sensor enablement transitions as time-series
// points so monitoring coverage can be charted over time.
//
// Writes are non-blocking and batched by the client library. Asynchronous
// write failures are delivered to the callback set with SetOnError.
//
// Measurement: sensor_monitoring
//
//	tags:   sensor_id
//	fields: enabled (bool), state (int, 1 = enabled)
//
// The integration is optional: Connect returns ErrDisabled when
// influxdb.enabled is false and the caller carries on without it.
package influxdb
