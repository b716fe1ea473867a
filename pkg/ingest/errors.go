package ingest

import "errors"

var (
	// ErrZMQDisabled is returned by Stream when built without the zmq tag.
	ErrZMQDisabled = errors.New("zeromq ingest not compiled in (build with -tags zmq)")

	// ErrNotLandmarks is returned for a message that carries no landmark frame.
	ErrNotLandmarks = errors.New("message is not a landmarks frame")
)
