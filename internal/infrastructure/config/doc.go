// Package config handles loading and validating the device management
// service configuration.
//
// This package manages:
//   - Loading configuration from YAML files
//   - Overriding with environment variables (AUTOMAK_*)
//   - Validation of required fields
//   - Default value handling
//
// Sensitive values (broker passwords, InfluxDB tokens, AMQP credentials)
// should be supplied through environment variables rather than the file.
//
// Usage:
//
//	cfg, err := config.Load("configs/config.yaml")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(cfg.Monitoring.Backend)
package config
