package device

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/gtudan/co2monitor/internal/protocol"
)

// Replay plays back a capture file: one hex-encoded raw frame per line,
// blank lines and lines starting with '#' are ignored. It satisfies Device.
//
//	# co2 1013 ppm
//	98e4662094 46bf62
type Replay struct {
	name     string
	scanner  *bufio.Scanner
	closer   io.Closer
	interval time.Duration
	line     int
	started  bool
}

// OpenReplay opens a capture file. interval paces successive frames; zero
// replays as fast as the consumer reads.
func OpenReplay(path string, interval time.Duration) (*Replay, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, Classify(StepOpen, path, err)
	}
	r := NewReplay(path, f, interval)
	r.closer = f
	return r, nil
}

// NewReplay plays back frames from rd.
func NewReplay(name string, rd io.Reader, interval time.Duration) *Replay {
	return &Replay{
		name:     name,
		scanner:  bufio.NewScanner(rd),
		interval: interval,
	}
}

// ReadFrame returns the next frame. Malformed lines produce a retryable
// error; the end of the capture returns io.EOF, which ends a stream.
func (r *Replay) ReadFrame(ctx context.Context, timeout time.Duration) (protocol.RawFrame, error) {
	if r.started && r.interval > 0 {
		wait := r.interval
		if timeout > 0 && wait > timeout {
			wait = timeout
		}
		t := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			t.Stop()
			return protocol.RawFrame{}, ctx.Err()
		case <-t.C:
		}
	}
	r.started = true

	for r.scanner.Scan() {
		r.line++
		text := strings.TrimSpace(r.scanner.Text())
		if text == "" || strings.HasPrefix(text, "#") {
			continue
		}
		frame, err := protocol.ParseRawFrame(text)
		if err != nil {
			return frame, &DeviceError{
				Step:      StepRead,
				Kind:      KindIO,
				Path:      fmt.Sprintf("%s:%d", r.name, r.line),
				Err:       err,
				Retryable: true,
			}
		}
		return frame, nil
	}
	if err := r.scanner.Err(); err != nil {
		return protocol.RawFrame{}, Classify(StepRead, r.name, err)
	}
	return protocol.RawFrame{}, io.EOF
}

// Close closes the capture file, if any.
func (r *Replay) Close() error {
	if r.closer != nil {
		return r.closer.Close()
	}
	return nil
}

// WriteCapture writes frames in the format Replay reads, with an optional
// comment per frame.
func WriteCapture(w io.Writer, frames []protocol.RawFrame, comments []string) error {
	for i, f := range frames {
		if i < len(comments) && comments[i] != "" {
			if _, err := fmt.Fprintf(w, "# %s\n", comments[i]); err != nil {
				return err
			}
		}
		if _, err := fmt.Fprintln(w, f.String()); err != nil {
			return err
		}
	}
	return nil
}
