package monitoring

import "time"

// Actions carried by a Command.
const (
	ActionEnable  = "enable"
	ActionDisable = "disable"
)

// Command is the message body published by the broker-based clients.
type Command struct {
	SensorID  string    `json:"sensor_id"`
	Action    string    `json:"action"`
	Timestamp time.Time `json:"timestamp"`
}

func newCommand(sensorID, action string, now func() time.Time) Command {
	return Command{SensorID: sensorID, Action: action, Timestamp: now().UTC()}
}

// Logger is the logging interface used by the clients.
type Logger interface {
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
}

type noopLogger struct{}

func (noopLogger) Info(string, ...any) {}
func (noopLogger) Warn(string, ...any) {}
