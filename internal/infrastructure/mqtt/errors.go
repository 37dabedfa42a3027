package mqtt

import "errors"

// Domain-specific errors for MQTT operations.
var (
	// ErrNotConnected is returned when operating on a disconnected client.
	ErrNotConnected = errors.New("mqtt: client not connected")

	// ErrConnectionFailed is returned when the initial connection fails.
	ErrConnectionFailed = errors.New("mqtt: connection failed")

	ErrPublishFailed   = errors.New("mqtt: publish failed")
	ErrSubscribeFailed = errors.New("mqtt: subscribe failed")

	// ErrInvalidQoS is returned for QoS levels other than 0, 1 or 2.
	ErrInvalidQoS = errors.New("mqtt: invalid QoS level (must be 0, 1, or 2)")

	// ErrInvalidTopic is returned for an empty topic.
	ErrInvalidTopic = errors.New("mqtt: topic cannot be empty")
)
