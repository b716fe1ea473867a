package protocol

import "errors"

var (
	// ErrUnknownType is returned for a message whose type is not defined here.
	ErrUnknownType = errors.New("unknown message type")

	// ErrEmptyPayload is returned when a message that requires data has none.
	ErrEmptyPayload = errors.New("empty message payload")
)
