package mqtt

import "errors"

var (
	// ErrNotConnected is returned when publishing or subscribing without a
	// broker connection.
	ErrNotConnected = errors.New("mqtt: not connected")

	// ErrConnectionFailed is returned when the initial connection fails.
	ErrConnectionFailed = errors.New("mqtt: connection failed")

	// ErrPublishFailed is returned when a publish is not acknowledged.
	ErrPublishFailed = errors.New("mqtt: publish failed")

	// ErrSubscribeFailed is returned when a subscription is rejected.
	ErrSubscribeFailed = errors.New("mqtt: subscribe failed")

	// ErrInvalidTopic is returned for empty topics.
	ErrInvalidTopic = errors.New("mqtt: invalid topic")

	// ErrInvalidQoS is returned for QoS values above 2.
	ErrInvalidQoS = errors.New("mqtt: invalid QoS (must be 0, 1, or 2)")
)
