package mqtt

import "strings"

// DefaultMonitoringPrefix is the topic root for monitoring commands.
const DefaultMonitoringPrefix = "automak/monitoring"

// StatusTopic carries the retained online/offline status of this service.
const StatusTopic = "automak/device-management/status"

// Topics builds monitoring topics under a configurable prefix.
//
//	Topics{Prefix: "automak/monitoring"}.MonitoringCommand("s-1", "enable")
//	// automak/monitoring/s-1/enable
type Topics struct {
	Prefix string
}

func (t Topics) prefix() string {
	p := strings.TrimSuffix(t.Prefix, "/")
	if p == "" {
		return DefaultMonitoringPrefix
	}
	return p
}

// MonitoringCommand is the topic for an enable or disable command
// addressed to one sensor.
func (t Topics) MonitoringCommand(sensorID, action string) string {
	return t.prefix() + "/" + sensorID + "/" + action
}

// AllMonitoringCommands matches every monitoring command.
func (t Topics) AllMonitoringCommands() string {
	return t.prefix() + "/+/+"
}
