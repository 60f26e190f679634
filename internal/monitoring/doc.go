// Package monitoring implements the clients that tell the sensor monitoring
// subsystem to start or stop watching a sensor.
//
// Every client satisfies sensor.Monitor. The backend is chosen by
// monitoring.backend in config.yaml:
//
//	http  PUT {base}/api/sensors/{id}/monitoring/enable
//	      DELETE {base}/api/sensors/{id}/monitoring/disable
//	mqtt  publish Command to {prefix}/{id}/{enable|disable}
//	amqp  persistent publish to the direct exchange, routing key
//	      sensor.monitoring.{enable|disable}
//	none  log only
//
// Failures are returned wrapped in ErrMonitoringUnavailable. Clients never
// retry; the registry reports the failure to its caller.
package monitoring
