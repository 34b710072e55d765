package protocol

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"time"
)

// DefaultReadTimeout bounds a single device read.
const DefaultReadTimeout = 10 * time.Second

// ErrNoData is returned by a FrameSource when no report arrived within the
// read timeout. The stream treats it as transient.
var ErrNoData = errors.New("no data within read timeout")

// FrameSource delivers raw reports from a device. ReadFrame blocks for at
// most timeout.
type FrameSource interface {
	ReadFrame(ctx context.Context, timeout time.Duration) (RawFrame, error)
}

// Outcome classifies what happened to a single frame.
type Outcome string

const (
	OutcomeOK            Outcome = "ok"
	OutcomePlaintext     Outcome = "plaintext"
	OutcomeChecksum      Outcome = "checksum"
	OutcomeUnknownOpcode Outcome = "unknown_opcode"
	OutcomeNoData        Outcome = "no_data"
	OutcomeTransient     Outcome = "transient"
)

// Observer is notified once per frame (or per transient read failure).
// frame is the zero value for OutcomeNoData and OutcomeTransient.
type Observer func(outcome Outcome, frame DecryptedFrame)

// StreamOption configures a Stream
type StreamOption func(*Stream)

// WithReadTimeout overrides DefaultReadTimeout.
func WithReadTimeout(d time.Duration) StreamOption {
	return func(s *Stream) {
		if d > 0 {
			s.timeout = d
		}
	}
}

// WithObserver installs a per-frame callback.
func WithObserver(o Observer) StreamOption {
	return func(s *Stream) { s.observer = o }
}

// WithPlaintextFallback accepts frames that validate without
// deobfuscation. Some firmware revisions stream them that way.
func WithPlaintextFallback() StreamOption {
	return func(s *Stream) { s.plaintext = true }
}

// Stream turns a FrameSource into a sequence of Readings. It keeps one frame
// in flight and is not safe for concurrent use.
type Stream struct {
	src       FrameSource
	timeout   time.Duration
	observer  Observer
	plaintext bool
	err       error // sticky fatal error
}

// NewStream creates a stream reading from src.
func NewStream(src FrameSource, opts ...StreamOption) *Stream {
	s := &Stream{
		src:     src,
		timeout: DefaultReadTimeout,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Next blocks until the next valid Reading. Frames that fail validation or
// carry an unknown opcode are skipped, as are transient read errors. A
// fatal source error or ctx cancellation ends the stream; every later call
// returns the same error.
func (s *Stream) Next(ctx context.Context) (Reading, error) {
	for s.err == nil {
		if err := ctx.Err(); err != nil {
			s.err = err
			break
		}

		raw, err := s.src.ReadFrame(ctx, s.timeout)
		if err != nil {
			switch {
			case ctx.Err() != nil:
				s.err = ctx.Err()
			case errors.Is(err, ErrNoData):
				s.notify(OutcomeNoData, DecryptedFrame{})
			case isTemporary(err):
				s.notify(OutcomeTransient, DecryptedFrame{})
			default:
				s.err = fmt.Errorf("read frame: %w", err)
			}
			continue
		}

		frame, outcome, ok := s.unpack(raw)
		if !ok {
			s.notify(OutcomeChecksum, frame)
			continue
		}

		reading, ok := Decode(frame)
		if !ok {
			s.notify(OutcomeUnknownOpcode, frame)
			continue
		}
		s.notify(outcome, frame)
		return reading, nil
	}
	return nil, s.err
}

// All returns a lazy, infinite sequence of readings. Iteration stops after
// the first error is yielded.
func (s *Stream) All(ctx context.Context) iter.Seq2[Reading, error] {
	return func(yield func(Reading, error) bool) {
		for {
			r, err := s.Next(ctx)
			if !yield(r, err) || err != nil {
				return
			}
		}
	}
}

// Err returns the error that ended the stream, if any.
func (s *Stream) Err() error {
	return s.err
}

func (s *Stream) unpack(raw RawFrame) (DecryptedFrame, Outcome, bool) {
	frame := Deobfuscate(raw)
	if Validate(frame) == nil {
		return frame, OutcomeOK, true
	}
	if s.plaintext {
		plain := DecryptedFrame(raw)
		if Validate(plain) == nil {
			return plain, OutcomePlaintext, true
		}
	}
	return frame, OutcomeChecksum, false
}

func (s *Stream) notify(outcome Outcome, frame DecryptedFrame) {
	if s.observer != nil {
		s.observer(outcome, frame)
	}
}

// isTemporary reports whether err advertises itself as retryable.
func isTemporary(err error) bool {
	var t interface{ Temporary() bool }
	return errors.As(err, &t) && t.Temporary()
}
