package amqp

import "errors"

// Errors returned by the connection. Check them with errors.Is.
var (
	// ErrNotConnected is returned when publishing before Start or after Close.
	ErrNotConnected = errors.New("amqp: not connected")

	// ErrConnectionFailed is returned when Start gives up dialling.
	ErrConnectionFailed = errors.New("amqp: connection failed")

	// ErrPublishFailed is returned when the broker rejects a publish.
	ErrPublishFailed = errors.New("amqp: publish failed")
)
