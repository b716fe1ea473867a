package protocol

import (
	"encoding/base64"
	"time"

	"github.com/teslashibe/go-mindwave/pkg/affect"
	"github.com/teslashibe/go-mindwave/pkg/landmark"
)

// =============================================================================
// Helper functions for creating messages
// =============================================================================

// NewLandmarksMessage creates a landmarks message. A nil frame encodes "no face".
func NewLandmarksMessage(f *landmark.Frame, frameID uint64) (*Message, error) {
	data := LandmarksData{FrameID: frameID}
	if f != nil {
		data.Points = f.Points
		data.Width = f.Width
		data.Height = f.Height
	}
	return NewMessage(TypeLandmarks, data)
}

// NewThumbnailMessage creates a thumbnail message from raw JPEG data
func NewThumbnailMessage(width, height int, jpegData []byte) (*Message, error) {
	return NewMessage(TypeThumbnail, ThumbnailData{
		Width:  width,
		Height: height,
		Format: "jpeg",
		Data:   base64.StdEncoding.EncodeToString(jpegData),
	})
}

// NewMetricsMessage creates a metrics message in the given encoding
func NewMetricsMessage(session string, frameID uint64, m affect.DisplayMetrics, enc Encoding) (*Message, error) {
	data := MetricsData{Session: session, FrameID: frameID, DisplayMetrics: m}
	if enc == CBOR {
		return NewBinaryMessage(TypeMetrics, data)
	}
	return NewMessage(TypeMetrics, data)
}

// NewErrorMessage creates an error message
func NewErrorMessage(code, message string) (*Message, error) {
	return NewMessage(TypeError, ErrorData{Code: code, Message: message})
}

// NewPingMessage creates a ping message
func NewPingMessage(id string) (*Message, error) {
	return NewMessage(TypePing, PingData{ID: id, Timestamp: time.Now().UnixMilli()})
}

// NewPongMessage creates a pong response message
func NewPongMessage(id string, pingTS, pongTS int64) (*Message, error) {
	return NewMessage(TypePong, PongData{
		ID:        id,
		PingTS:    pingTS,
		PongTS:    pongTS,
		LatencyMs: pongTS - pingTS,
	})
}

// =============================================================================
// Helper functions for parsing messages
// =============================================================================

// GetLandmarksData extracts landmarks data from a message
func (m *Message) GetLandmarksData() (*LandmarksData, error) {
	if m.Empty() {
		return nil, ErrEmptyPayload
	}
	var data LandmarksData
	if err := m.ParseData(&data); err != nil {
		return nil, err
	}
	return &data, nil
}

// Frame converts the payload to a landmark frame, or nil when no face was found.
func (d *LandmarksData) Frame() *landmark.Frame {
	if len(d.Points) == 0 {
		return nil
	}
	return &landmark.Frame{Points: d.Points, Width: d.Width, Height: d.Height}
}

// GetThumbnailData extracts thumbnail data from a message
func (m *Message) GetThumbnailData() (*ThumbnailData, error) {
	if m.Empty() {
		return nil, ErrEmptyPayload
	}
	var data ThumbnailData
	if err := m.ParseData(&data); err != nil {
		return nil, err
	}
	return &data, nil
}

// DecodeThumbnail decodes the base64 image data
func (t *ThumbnailData) DecodeThumbnail() ([]byte, error) {
	return base64.StdEncoding.DecodeString(t.Data)
}

// GetStartData extracts start data from a message. The payload is optional.
func (m *Message) GetStartData() (*StartData, error) {
	var data StartData
	if err := m.ParseData(&data); err != nil {
		return nil, err
	}
	return &data, nil
}

// GetSessionData extracts session data from a message
func (m *Message) GetSessionData() (*SessionData, error) {
	var data SessionData
	if err := m.ParseData(&data); err != nil {
		return nil, err
	}
	return &data, nil
}

// GetMetricsData extracts metrics data from a message
func (m *Message) GetMetricsData() (*MetricsData, error) {
	if m.Empty() {
		return nil, ErrEmptyPayload
	}
	var data MetricsData
	if err := m.ParseData(&data); err != nil {
		return nil, err
	}
	return &data, nil
}

// GetErrorData extracts error data from a message
func (m *Message) GetErrorData() (*ErrorData, error) {
	var data ErrorData
	if err := m.ParseData(&data); err != nil {
		return nil, err
	}
	return &data, nil
}

// GetPingData extracts ping data from a message
func (m *Message) GetPingData() (*PingData, error) {
	var data PingData
	if err := m.ParseData(&data); err != nil {
		return nil, err
	}
	return &data, nil
}

// GetPongData extracts pong data from a message
func (m *Message) GetPongData() (*PongData, error) {
	var data PongData
	if err := m.ParseData(&data); err != nil {
		return nil, err
	}
	return &data, nil
}
