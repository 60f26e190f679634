package sensor

import "errors"

// Domain errors for the sensor package. Check them with errors.Is.
var (
	// ErrSensorNotFound is returned when a sensor ID does not exist.
	ErrSensorNotFound = errors.New("sensor: not found")

	// ErrSensorExists is returned when inserting a sensor whose ID is taken.
	ErrSensorExists = errors.New("sensor: already exists")

	// ErrInvalidSensor is returned when create or update input fails validation.
	ErrInvalidSensor = errors.New("sensor: invalid")

	// ErrInvalidPage is returned for a negative page number or page size.
	ErrInvalidPage = errors.New("sensor: invalid page request")

	// ErrInvalidSort is returned for an unknown sort field or direction.
	ErrInvalidSort = errors.New("sensor: invalid sort")

	// ErrMonitoringFailed wraps errors from the monitoring collaborator.
	// The sensor record has already been written when it is returned.
	ErrMonitoringFailed = errors.New("sensor: monitoring notification failed")
)
