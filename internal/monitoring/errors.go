package monitoring

import "errors"

// ErrMonitoringUnavailable wraps every transport or remote failure of a
// monitoring client.
var ErrMonitoringUnavailable = errors.New("monitoring: service unavailable")
