package session

import "errors"

// ErrSessionNotFound is returned when no session with the given ID is connected.
var ErrSessionNotFound = errors.New("session not found")
