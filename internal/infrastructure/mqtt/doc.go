// Package mqtt provides the MQTT broker connection used to deliver
// monitoring commands to the sensor monitoring subsystem.
//
// It manages the connection with auto-reconnect, publishes with QoS
// guarantees, announces the service's presence on a retained status topic
// and registers a Last Will so the broker reports an unexpected exit.
//
// Usage:
//
//	client, err := mqtt.Connect(cfg.MQTT)
//	if err != nil {
//	    return err
//	}
//	defer client.Close()
//
//	topic := mqtt.Topics{Prefix: "automak/monitoring"}.MonitoringCommand("s-1", "enable")
//	err = client.Publish(topic, payload, 1, false)
//
// TLS should be enabled (mqtt.broker.tls) outside local development.
package mqtt
