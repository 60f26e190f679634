// Package api implements the HTTP REST API and WebSocket server of the
// device management service.
//
// This package provides:
//   - REST endpoints for sensor registration, lookup, paging and enablement
//   - the audit trail query endpoint
//   - a WebSocket hub broadcasting sensor lifecycle events
//   - the middleware stack (request ID, logging, recovery, CORS, body limit)
//
// # Error mapping
//
// Handlers translate registry sentinel errors into the JSON error envelope:
//
//	sensor.ErrInvalidSensor, ErrInvalidPage, ErrInvalidSort  400
//	sensor.ErrSensorNotFound                                  404
//	sensor.ErrSensorExists                                    409
//	sensor.ErrMonitoringFailed                                502
//	anything else                                             500
//
// A 502 from enable or disable means the new flag was stored but the
// monitoring service did not acknowledge it. No rollback is attempted.
package api
