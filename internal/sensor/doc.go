// Package sensor provides the Sensor Registry: registration, lookup,
// paged listing and enablement of field sensors.
//
// The registry owns no transport or storage of its own. It is assembled
// from injected collaborators:
//
//	┌────────────┐   ┌──────────────┐   ┌───────────────┐
//	│ api        │──▶│   Registry   │──▶│  Repository   │ SQLite
//	│ handlers   │   │ (registry.go)│   └───────────────┘
//	└────────────┘   │              │──▶ Monitor       http / mqtt / amqp
//	                 │              │──▶ IDGenerator   UUIDv7
//	                 │              │··▶ Auditor, StateRecorder (optional)
//	                 └──────────────┘
//
// # Enablement contract
//
// Enable and Disable look the sensor up, overwrite the enabled flag,
// persist it, and only then notify the monitoring collaborator. There is
// no compensation: when the notification fails the stored flag already
// reflects the request and the error is returned wrapped in
// ErrMonitoringFailed. Transitions are not guarded by the current value,
// so enabling twice notifies twice. Concurrent writers race and the last
// write wins.
package sensor
