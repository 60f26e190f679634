// Package logging provides structured logging for the device management
// service.
//
// It wraps log/slog so every component logs the same way: JSON output in
// production, text output for local development, and a fixed set of
// default attributes (service, version) on each entry.
//
// Configuration comes from the logging section of config.yaml:
//
//	logging:
//	  level: "info"      # debug, info, warn, error
//	  format: "json"     # json, text
//	  output: "stdout"   # stdout, stderr
//
// Usage:
//
//	logger := logging.New(cfg.Logging, version)
//	logger.Info("sensor enabled", "sensor_id", id)
//
// Never log broker passwords, InfluxDB tokens or AMQP URLs with embedded
// credentials.
package logging
