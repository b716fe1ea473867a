// Replay streams a recorded JSON-lines landmark session into a running
// mindwave server and prints the metrics it answers with.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/teslashibe/go-mindwave/internal/log"
	"github.com/teslashibe/go-mindwave/pkg/ingest"
	"github.com/teslashibe/go-mindwave/pkg/protocol"
)

func main() {
	server := flag.String("server", "ws://localhost:8080", "Mindwave server base URL")
	id := flag.String("session", "", "Session ID (random when empty)")
	file := flag.String("file", "", "JSON-lines recording to replay (required)")
	speed := flag.Float64("speed", 1, "Playback speed; 0 sends as fast as possible")
	useCBOR := flag.Bool("cbor", false, "Send binary CBOR frames instead of JSON text")
	out := flag.String("out", "", "Write received metrics as JSON lines to this file")
	logLevel := flag.String("log-level", "info", "Log level: debug, info, warn, error")
	flag.Parse()

	log.Init(*logLevel)

	if *file == "" {
		fmt.Fprintln(os.Stderr, "usage: replay -file recording.jsonl [-server ws://host:port] [-speed 1] [-cbor]")
		os.Exit(2)
	}
	if *id == "" {
		*id = "replay-" + uuid.NewString()[:8]
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	enc := protocol.JSON
	if *useCBOR {
		enc = protocol.CBOR
	}
	if err := run(ctx, *server+"/ws/session/"+*id, *file, *out, *speed, enc); err != nil && !errors.Is(err, context.Canceled) {
		log.Error("replay failed", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, url, file, outPath string, speed float64, enc protocol.Encoding) error {
	f, err := os.Open(file)
	if err != nil {
		return err
	}
	msgs, err := ingest.ReadRecording(f)
	f.Close()
	if err != nil {
		return fmt.Errorf("read %s: %w", file, err)
	}
	log.Info("loaded recording", "file", file, "messages", len(msgs))

	var sink io.Writer = os.Stdout
	if outPath != "" {
		of, err := os.Create(outPath)
		if err != nil {
			return err
		}
		defer of.Close()
		sink = of
	}

	ws, _, err := websocket.DefaultDialer.DialContext(ctx, url, nil)
	if err != nil {
		return fmt.Errorf("dial %s: %w", url, err)
	}
	defer ws.Close()
	log.Info("connected", "url", url, "encoding", enc)

	var wg sync.WaitGroup
	wg.Add(1)
	received := 0
	go func() {
		defer wg.Done()
		received = readMetrics(ws, sink)
	}()

	frameType := websocket.TextMessage
	if enc == protocol.CBOR {
		frameType = websocket.BinaryMessage
	}
	start := time.Now()
	err = ingest.Player{Speed: speed}.Play(ctx, msgs, func(msg *protocol.Message) error {
		data, err := reencode(msg, enc)
		if err != nil {
			return err
		}
		return ws.WriteMessage(frameType, data)
	})
	if err != nil {
		return err
	}

	// let the last replies arrive before closing
	time.Sleep(500 * time.Millisecond)
	ws.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, "replay done"))
	ws.SetReadDeadline(time.Now().Add(time.Second))
	wg.Wait()

	log.Info("replay complete", "sent", len(msgs), "metrics", received, "elapsed", time.Since(start).Round(time.Millisecond))
	return nil
}

// readMetrics writes every metrics reply as a JSON line until the
// connection closes, and returns how many it saw.
func readMetrics(ws *websocket.Conn, w io.Writer) int {
	n := 0
	out := json.NewEncoder(w)
	for {
		frameType, data, err := ws.ReadMessage()
		if err != nil {
			return n
		}
		enc := protocol.JSON
		if frameType == websocket.BinaryMessage {
			enc = protocol.CBOR
		}
		msg, err := protocol.Decode(data, enc)
		if err != nil {
			log.Warn("unreadable reply", "error", err)
			continue
		}

		switch msg.Type {
		case protocol.TypeMetrics:
			m, err := msg.GetMetricsData()
			if err != nil {
				log.Warn("bad metrics payload", "error", err)
				continue
			}
			n++
			out.Encode(m)
		case protocol.TypeSession:
			if s, err := msg.GetSessionData(); err == nil {
				log.Info("session", "id", s.ID, "active", s.Active)
			}
		case protocol.TypeError:
			if e, err := msg.GetErrorData(); err == nil {
				log.Warn("server error", "code", e.Code, "message", e.Message)
			}
		}
	}
}

// reencode converts a recorded JSON message to the wire encoding.
func reencode(msg *protocol.Message, enc protocol.Encoding) ([]byte, error) {
	if enc == protocol.JSON {
		return msg.Bytes()
	}
	var data any
	if !msg.Empty() {
		if err := msg.ParseData(&data); err != nil {
			return nil, fmt.Errorf("%s payload: %w", msg.Type, err)
		}
	}
	return protocol.Encode(msg.Type, data, enc)
}
