// Package protocol defines the WebSocket messages exchanged between a
// landmark producer (browser or camera process) and the metrics server.
package protocol

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/fxamacker/cbor/v2"

	"github.com/teslashibe/go-mindwave/pkg/affect"
	"github.com/teslashibe/go-mindwave/pkg/landmark"
)

// MessageType identifies the type of WebSocket message
type MessageType string

const (
	// Producer → Server messages
	TypeLandmarks MessageType = "landmarks" // One frame of face landmarks, empty when no face
	TypeThumbnail MessageType = "thumbnail" // Small JPEG of the scene for luminance sampling
	TypeStart     MessageType = "start"     // Begin an assessment
	TypeStop      MessageType = "stop"      // End an assessment

	// Server → Producer messages
	TypeSession MessageType = "session" // Session accepted
	TypeMetrics MessageType = "metrics" // Per-frame display metrics
	TypeError   MessageType = "error"   // Rejected message

	// Bidirectional
	TypePing MessageType = "ping" // Health check
	TypePong MessageType = "pong" // Health check response
)

// Known reports whether t is a message type this package defines.
func (t MessageType) Known() bool {
	switch t {
	case TypeLandmarks, TypeThumbnail, TypeStart, TypeStop,
		TypeSession, TypeMetrics, TypeError, TypePing, TypePong:
		return true
	}
	return false
}

// Encoding selects the wire format of a message.
type Encoding int

const (
	JSON Encoding = iota // text frames
	CBOR                 // binary frames
)

func (e Encoding) String() string {
	if e == CBOR {
		return "cbor"
	}
	return "json"
}

// Message is the base wrapper for all WebSocket messages
type Message struct {
	Type      MessageType     `json:"type"`
	Timestamp int64           `json:"ts,omitempty"` // Unix milliseconds
	Data      json.RawMessage `json:"data,omitempty"`

	encoding Encoding
	raw      cbor.RawMessage
}

// binaryMessage is the CBOR form of Message.
type binaryMessage struct {
	Type      MessageType     `cbor:"type"`
	Timestamp int64           `cbor:"ts,omitempty"`
	Data      cbor.RawMessage `cbor:"data,omitempty"`
}

// NewMessage creates a new message with the current timestamp
func NewMessage(msgType MessageType, data any) (*Message, error) {
	var rawData json.RawMessage
	if data != nil {
		var err error
		rawData, err = json.Marshal(data)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal message data: %w", err)
		}
	}

	return &Message{
		Type:      msgType,
		Timestamp: time.Now().UnixMilli(),
		Data:      rawData,
	}, nil
}

// NewBinaryMessage creates a CBOR-encoded message with the current timestamp.
func NewBinaryMessage(msgType MessageType, data any) (*Message, error) {
	var rawData cbor.RawMessage
	if data != nil {
		var err error
		rawData, err = cbor.Marshal(data)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal message data: %w", err)
		}
	}

	return &Message{
		Type:      msgType,
		Timestamp: time.Now().UnixMilli(),
		encoding:  CBOR,
		raw:       rawData,
	}, nil
}

// Encoding reports the wire format the message was parsed from or built for.
func (m *Message) Encoding() Encoding {
	return m.encoding
}

// Empty reports whether the message carries no payload.
func (m *Message) Empty() bool {
	if m.encoding == CBOR {
		return len(m.raw) == 0
	}
	return len(m.Data) == 0 || string(m.Data) == "null"
}

// ParseData unmarshals the message data into the provided struct
func (m *Message) ParseData(v any) error {
	if m.encoding == CBOR {
		if m.raw == nil {
			return nil
		}
		return cbor.Unmarshal(m.raw, v)
	}
	if m.Data == nil {
		return nil
	}
	return json.Unmarshal(m.Data, v)
}

// Bytes returns the encoded message in its own encoding.
func (m *Message) Bytes() ([]byte, error) {
	if m.encoding == CBOR {
		return cbor.Marshal(binaryMessage{Type: m.Type, Timestamp: m.Timestamp, Data: m.raw})
	}
	return json.Marshal(m)
}

// ParseMessage parses a JSON message from bytes
func ParseMessage(data []byte) (*Message, error) {
	var msg Message
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, fmt.Errorf("failed to parse message: %w", err)
	}
	return &msg, nil
}

// ParseBinaryMessage parses a CBOR message from bytes
func ParseBinaryMessage(data []byte) (*Message, error) {
	var bm binaryMessage
	if err := cbor.Unmarshal(data, &bm); err != nil {
		return nil, fmt.Errorf("failed to parse binary message: %w", err)
	}
	return &Message{
		Type:      bm.Type,
		Timestamp: bm.Timestamp,
		encoding:  CBOR,
		raw:       bm.Data,
	}, nil
}

// Decode parses data in the given encoding and rejects unknown types.
func Decode(data []byte, enc Encoding) (*Message, error) {
	var (
		msg *Message
		err error
	)
	if enc == CBOR {
		msg, err = ParseBinaryMessage(data)
	} else {
		msg, err = ParseMessage(data)
	}
	if err != nil {
		return nil, err
	}
	if !msg.Type.Known() {
		return msg, fmt.Errorf("%w: %q", ErrUnknownType, msg.Type)
	}
	return msg, nil
}

// Encode builds a message of msgType in enc and returns its bytes.
func Encode(msgType MessageType, data any, enc Encoding) ([]byte, error) {
	var (
		msg *Message
		err error
	)
	if enc == CBOR {
		msg, err = NewBinaryMessage(msgType, data)
	} else {
		msg, err = NewMessage(msgType, data)
	}
	if err != nil {
		return nil, err
	}
	return msg.Bytes()
}

// =============================================================================
// Producer → Server Message Types
// =============================================================================

// LandmarksData carries one frame of face landmarks. An empty point list
// means the detector found no face in this frame.
type LandmarksData struct {
	Points  []landmark.Point `json:"points"`
	Width   int              `json:"width"`
	Height  int              `json:"height"`
	FrameID uint64           `json:"frame_id,omitempty"`
}

// ThumbnailData contains a small scene image
type ThumbnailData struct {
	Width  int    `json:"width"`
	Height int    `json:"height"`
	Format string `json:"format"` // "jpeg", "png"
	Data   string `json:"data"`   // base64 encoded
}

// StartData opens an assessment. Both fields are optional.
type StartData struct {
	Subject string `json:"subject,omitempty"`
	Note    string `json:"note,omitempty"`
}

// =============================================================================
// Server → Producer Message Types
// =============================================================================

// SessionData acknowledges a connection
type SessionData struct {
	ID     string `json:"id"`
	Active bool   `json:"active"` // whether frames are being assessed
}

// MetricsData wraps the display metrics of one frame
type MetricsData struct {
	Session string `json:"session"`
	FrameID uint64 `json:"frame_id,omitempty"`
	affect.DisplayMetrics
}

// ErrorData describes a rejected message
type ErrorData struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// =============================================================================
// Bidirectional Message Types
// =============================================================================

// PingData contains ping information
type PingData struct {
	ID        string `json:"id"`
	Timestamp int64  `json:"ts"`
}

// PongData contains pong response
type PongData struct {
	ID        string `json:"id"`
	PingTS    int64  `json:"ping_ts"`
	PongTS    int64  `json:"pong_ts"`
	LatencyMs int64  `json:"latency_ms"`
}
