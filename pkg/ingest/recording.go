package ingest

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"io"
	"time"

	"github.com/teslashibe/go-mindwave/pkg/protocol"
)

// maxLine fits a refined 478-point frame with room to spare.
const maxLine = 1 << 20

// ReadRecording parses a JSON-lines recording: one protocol message per
// line. Blank lines and lines starting with '#' are skipped.
func ReadRecording(r io.Reader) ([]*protocol.Message, error) {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 64*1024), maxLine)

	var msgs []*protocol.Message
	line := 0
	for sc.Scan() {
		line++
		text := bytes.TrimSpace(sc.Bytes())
		if len(text) == 0 || text[0] == '#' {
			continue
		}
		msg, err := protocol.Decode(text, protocol.JSON)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		msgs = append(msgs, msg)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("line %d: %w", line+1, err)
	}
	return msgs, nil
}

// Player replays recorded messages.
type Player struct {
	// Speed scales the recorded gaps between messages; 0 sends as fast as
	// possible, 1 is real time.
	Speed float64

	sleep func(ctx context.Context, d time.Duration) error
}

// Play calls emit for each message, waiting out the recorded timestamp gaps.
// It stops at the first emit error or when ctx is done.
func (p Player) Play(ctx context.Context, msgs []*protocol.Message, emit func(*protocol.Message) error) error {
	sleep := p.sleep
	if sleep == nil {
		sleep = sleepCtx
	}

	var prev int64
	for i, msg := range msgs {
		if p.Speed > 0 && i > 0 && prev > 0 && msg.Timestamp > prev {
			gap := time.Duration(float64(time.Duration(msg.Timestamp-prev)*time.Millisecond) / p.Speed)
			if err := sleep(ctx, gap); err != nil {
				return err
			}
		}
		if msg.Timestamp > 0 {
			prev = msg.Timestamp
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := emit(msg); err != nil {
			return fmt.Errorf("message %d: %w", i, err)
		}
	}
	return nil
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// WriteRecording writes messages as JSON lines.
func WriteRecording(w io.Writer, msgs []*protocol.Message) error {
	bw := bufio.NewWriter(w)
	for _, msg := range msgs {
		data, err := msg.Bytes()
		if err != nil {
			return err
		}
		bw.Write(data)
		bw.WriteByte('\n')
	}
	return bw.Flush()
}
