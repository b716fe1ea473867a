package protocol

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/teslashibe/go-mindwave/pkg/affect"
	"github.com/teslashibe/go-mindwave/pkg/landmark"
)

func testFrame() *landmark.Frame {
	return landmark.NewFrame(640, 480).
		Set(landmark.NoseTip, 0.5, 0.5).
		Set(landmark.UpperLip, 0.5, 0.6)
}

func TestNewMessage(t *testing.T) {
	tests := []struct {
		name    string
		msgType MessageType
		data    any
		wantErr bool
	}{
		{
			name:    "landmarks message",
			msgType: TypeLandmarks,
			data:    LandmarksData{Width: 640, Height: 480},
		},
		{
			name:    "start message",
			msgType: TypeStart,
			data:    StartData{Subject: "p-01"},
		},
		{
			name:    "nil data",
			msgType: TypeStop,
			data:    nil,
		},
		{
			name:    "unmarshalable data",
			msgType: TypeMetrics,
			data:    make(chan int),
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			msg, err := NewMessage(tt.msgType, tt.data)
			if (err != nil) != tt.wantErr {
				t.Fatalf("NewMessage() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr {
				return
			}
			if msg.Type != tt.msgType {
				t.Errorf("NewMessage() type = %v, want %v", msg.Type, tt.msgType)
			}
			if msg.Timestamp == 0 {
				t.Error("NewMessage() timestamp should be set")
			}
			if msg.Encoding() != JSON {
				t.Errorf("Encoding = %v, want json", msg.Encoding())
			}
		})
	}
}

func TestLandmarksRoundTrip(t *testing.T) {
	f := testFrame()
	msg, err := NewLandmarksMessage(f, 42)
	if err != nil {
		t.Fatalf("NewLandmarksMessage() error = %v", err)
	}

	bytes, err := msg.Bytes()
	if err != nil {
		t.Fatalf("Bytes() error = %v", err)
	}

	parsed, err := Decode(bytes, JSON)
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	if parsed.Type != TypeLandmarks {
		t.Errorf("Type = %v, want %v", parsed.Type, TypeLandmarks)
	}

	data, err := parsed.GetLandmarksData()
	if err != nil {
		t.Fatalf("GetLandmarksData() error = %v", err)
	}
	if data.FrameID != 42 {
		t.Errorf("FrameID = %v, want 42", data.FrameID)
	}

	got := data.Frame()
	if got == nil {
		t.Fatal("Frame() = nil, want a frame")
	}
	if got.Width != 640 || got.Height != 480 {
		t.Errorf("size = %dx%d, want 640x480", got.Width, got.Height)
	}
	if len(got.Points) != landmark.RefinedLandmarks {
		t.Errorf("len(Points) = %d, want %d", len(got.Points), landmark.RefinedLandmarks)
	}
	if got.Points[landmark.UpperLip] != f.Points[landmark.UpperLip] {
		t.Errorf("UpperLip = %+v, want %+v", got.Points[landmark.UpperLip], f.Points[landmark.UpperLip])
	}
}

func TestLandmarksNoFace(t *testing.T) {
	msg, err := NewLandmarksMessage(nil, 7)
	if err != nil {
		t.Fatalf("NewLandmarksMessage() error = %v", err)
	}
	data, err := msg.GetLandmarksData()
	if err != nil {
		t.Fatalf("GetLandmarksData() error = %v", err)
	}
	if data.Frame() != nil {
		t.Error("Frame() should be nil when no points were sent")
	}
}

func TestBinaryRoundTrip(t *testing.T) {
	f := testFrame()
	raw, err := Encode(TypeLandmarks, LandmarksData{Points: f.Points, Width: f.Width, Height: f.Height, FrameID: 3}, CBOR)
	if err != nil {
		t.Fatalf("Encode() error = %v", err)
	}

	// binary frames are not JSON
	if json.Valid(raw) {
		t.Fatal("CBOR encoding produced valid JSON")
	}

	msg, err := Decode(raw, CBOR)
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	if msg.Encoding() != CBOR {
		t.Errorf("Encoding = %v, want cbor", msg.Encoding())
	}
	if msg.Timestamp == 0 {
		t.Error("timestamp should survive CBOR round trip")
	}

	data, err := msg.GetLandmarksData()
	if err != nil {
		t.Fatalf("GetLandmarksData() error = %v", err)
	}
	if data.FrameID != 3 {
		t.Errorf("FrameID = %v, want 3", data.FrameID)
	}
	if got := data.Frame(); got == nil || got.Points[landmark.NoseTip] != f.Points[landmark.NoseTip] {
		t.Errorf("NoseTip did not survive CBOR round trip: %+v", got)
	}
}

func TestMetricsMessage(t *testing.T) {
	m := affect.DisplayMetrics{
		Stress: 42.5,
		Label:  "Alert",
		Status: affect.StatusFor(true, false),
		Affect: affect.Vector{Neutral: 80, Happiness: 20},
		Frame:  9,
	}

	for _, enc := range []Encoding{JSON, CBOR} {
		t.Run(enc.String(), func(t *testing.T) {
			msg, err := NewMetricsMessage("s-1", 9, m, enc)
			if err != nil {
				t.Fatalf("NewMetricsMessage() error = %v", err)
			}
			raw, err := msg.Bytes()
			if err != nil {
				t.Fatalf("Bytes() error = %v", err)
			}
			parsed, err := Decode(raw, enc)
			if err != nil {
				t.Fatalf("Decode() error = %v", err)
			}

			data, err := parsed.GetMetricsData()
			if err != nil {
				t.Fatalf("GetMetricsData() error = %v", err)
			}
			if data.Session != "s-1" {
				t.Errorf("Session = %q, want s-1", data.Session)
			}
			if data.Stress != 42.5 {
				t.Errorf("Stress = %v, want 42.5", data.Stress)
			}
			if data.Label != "Alert" {
				t.Errorf("Label = %q, want Alert", data.Label)
			}
			if data.Affect.Happiness != 20 {
				t.Errorf("Happiness = %v, want 20", data.Affect.Happiness)
			}
			if data.Status.Message != affect.MessageTracking {
				t.Errorf("Status.Message = %q, want %q", data.Status.Message, affect.MessageTracking)
			}
		})
	}
}

func TestMetricsJSONShape(t *testing.T) {
	msg, err := NewMetricsMessage("s-1", 0, affect.DisplayMetrics{Stress: 10}, JSON)
	if err != nil {
		t.Fatalf("NewMetricsMessage() error = %v", err)
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(msg.Data, &fields); err != nil {
		t.Fatalf("unmarshal data: %v", err)
	}
	// display metrics are flattened next to the session id
	for _, key := range []string{"session", "stress", "affect", "status", "display"} {
		if _, ok := fields[key]; !ok {
			t.Errorf("metrics payload missing %q", key)
		}
	}
}

func TestDecode_UnknownType(t *testing.T) {
	_, err := Decode([]byte(`{"type":"motor","ts":1}`), JSON)
	if !errors.Is(err, ErrUnknownType) {
		t.Errorf("Decode() error = %v, want ErrUnknownType", err)
	}

	if _, err := Decode([]byte(`not json`), JSON); err == nil {
		t.Error("Decode() should fail on malformed input")
	}
}

func TestEmptyPayload(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{"missing data", `{"type":"landmarks"}`},
		{"null data", `{"type":"landmarks","data":null}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			msg, err := Decode([]byte(tt.raw), JSON)
			if err != nil {
				t.Fatalf("Decode() error = %v", err)
			}
			if _, err := msg.GetLandmarksData(); !errors.Is(err, ErrEmptyPayload) {
				t.Errorf("GetLandmarksData() error = %v, want ErrEmptyPayload", err)
			}
		})
	}
}

func TestThumbnailMessage(t *testing.T) {
	jpegData := []byte{0xFF, 0xD8, 0xFF, 0xE0, 0x00, 0x10} // Fake JPEG header

	msg, err := NewThumbnailMessage(64, 48, jpegData)
	if err != nil {
		t.Fatalf("NewThumbnailMessage() error = %v", err)
	}

	data, err := msg.GetThumbnailData()
	if err != nil {
		t.Fatalf("GetThumbnailData() error = %v", err)
	}
	if data.Format != "jpeg" {
		t.Errorf("Format = %v, want jpeg", data.Format)
	}

	decoded, err := data.DecodeThumbnail()
	if err != nil {
		t.Fatalf("DecodeThumbnail() error = %v", err)
	}
	if string(decoded) != string(jpegData) {
		t.Errorf("decoded = %x, want %x", decoded, jpegData)
	}
}

func TestStartWithoutPayload(t *testing.T) {
	msg, err := Decode([]byte(`{"type":"start"}`), JSON)
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	data, err := msg.GetStartData()
	if err != nil {
		t.Fatalf("GetStartData() error = %v", err)
	}
	if data.Subject != "" {
		t.Errorf("Subject = %q, want empty", data.Subject)
	}
}

func TestPingPongMessage(t *testing.T) {
	pingMsg, err := NewPingMessage("test-123")
	if err != nil {
		t.Fatalf("NewPingMessage() error = %v", err)
	}

	pingData, err := pingMsg.GetPingData()
	if err != nil {
		t.Fatalf("GetPingData() error = %v", err)
	}
	if pingData.ID != "test-123" {
		t.Errorf("ID = %v, want test-123", pingData.ID)
	}
	if pingData.Timestamp == 0 {
		t.Error("ping timestamp should be set")
	}

	now := time.Now().UnixMilli()
	pongMsg, err := NewPongMessage("test-123", pingData.Timestamp, now)
	if err != nil {
		t.Fatalf("NewPongMessage() error = %v", err)
	}

	pongData, err := pongMsg.GetPongData()
	if err != nil {
		t.Fatalf("GetPongData() error = %v", err)
	}
	if pongData.ID != "test-123" {
		t.Errorf("ID = %v, want test-123", pongData.ID)
	}
	if pongData.LatencyMs < 0 {
		t.Errorf("LatencyMs = %v, should be >= 0", pongData.LatencyMs)
	}
}
