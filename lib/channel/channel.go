// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package channel moves exact-length byte sequences reliably over an
// unreliable, partial-delivery byte stream (a socket or pipe).
//
// Stream supplies guaranteed-complete reads and writes plus the
// 4-byte big-endian length-prefix framing protocol. MessageChannel
// binds a serial.Codec to a Stream, exposing typed send and receive of
// whole values.
//
// Concurrency follows Go's natural model: every stream operation
// blocks only its calling goroutine, so concurrently scheduled work in
// the same process proceeds while a transfer waits for the peer. A
// single Stream permits at most one in-flight transfer per side at a
// time — overlapping calls on the same side would interleave partial
// reads or writes and corrupt both messages, so the guard rejects them
// with ErrConcurrentTransfer. The two sides may proceed concurrently
// with each other. No locks are involved; safety comes from the
// single-transfer-per-side discipline.
//
// If a transfer is abandoned partway (the calling goroutine gives up
// after an error, or the process is shutting down), the stream's byte
// position is indeterminate. There is no resynchronization primitive:
// close the underlying stream and re-establish it.
package channel

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync/atomic"
)

// ErrUnexpectedEndOfStream indicates the underlying stream closed in
// the middle of a transfer. Fatal to the channel: the caller must not
// continue using it and should reconnect if applicable.
var ErrUnexpectedEndOfStream = errors.New("unexpected end of stream")

// ErrConcurrentTransfer indicates a second receive (or send) was
// attempted while one was already in flight on the same side of the
// channel. This is a caller bug — access per side must be serialized.
var ErrConcurrentTransfer = errors.New("concurrent transfer on one channel side")

// ErrMessageTooLarge indicates a message whose encoded size cannot be
// represented in the 4-byte length prefix.
var ErrMessageTooLarge = errors.New("message too large for frame")

// ErrFrameMismatch indicates a codec whose Size disagreed with its
// Write or Read: an encode that did not fill its frame exactly, or a
// decode that did not consume its frame exactly. On receive the
// channel's byte position is desynchronized and the channel must be
// treated as unusable.
var ErrFrameMismatch = errors.New("frame length mismatch")

// Tap observes complete frame payloads crossing a stream, for
// transcript recording (see lib/capture). Taps see payloads after a
// send completes and after a receive fully materializes; they are
// advisory and must not retain the slice past the call.
type Tap interface {
	RecordSend(payload []byte)
	RecordReceive(payload []byte)
}

// Stream is a named bidirectional byte stream with guaranteed-complete
// read/write primitives. The underlying stream handle is exclusively
// owned by the Stream; no other reader or writer may touch it. There
// is no internal buffering across calls — each logical receive or send
// is self-contained.
type Stream struct {
	conn   io.ReadWriter
	name   string
	logger *slog.Logger
	tap    Tap

	receiving atomic.Bool
	sending   atomic.Bool
}

// Option configures a Stream at construction.
type Option func(*Stream)

// WithLogger sets the logger used for decode-failure diagnostics.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Stream) { s.logger = logger }
}

// WithTap attaches a frame observer for transcript recording.
func WithTap(tap Tap) Option {
	return func(s *Stream) { s.tap = tap }
}

// NewStream creates a stream channel over conn. The name is an opaque
// label used in diagnostics and error messages; it carries no protocol
// meaning.
func NewStream(conn io.ReadWriter, name string, options ...Option) *Stream {
	stream := &Stream{conn: conn, name: name, logger: slog.Default()}
	for _, option := range options {
		option(stream)
	}
	return stream
}

// Name returns the stream's diagnostic label.
func (s *Stream) Name() string {
	return s.name
}

// acquireReceive claims the receive side for one logical transfer.
func (s *Stream) acquireReceive() error {
	if !s.receiving.CompareAndSwap(false, true) {
		return fmt.Errorf("channel %s: %w: receive already in flight", s.name, ErrConcurrentTransfer)
	}
	return nil
}

func (s *Stream) releaseReceive() {
	s.receiving.Store(false)
}

// acquireSend claims the send side for one logical transfer.
func (s *Stream) acquireSend() error {
	if !s.sending.CompareAndSwap(false, true) {
		return fmt.Errorf("channel %s: %w: send already in flight", s.name, ErrConcurrentTransfer)
	}
	return nil
}

func (s *Stream) releaseSend() {
	s.sending.Store(false)
}

// fill reads from the stream into buffer until at least target bytes
// are present, starting from the filled offset. Partial reads continue
// from the current fill offset and are never discarded. Returns the
// new fill offset.
func (s *Stream) fill(buffer []byte, filled, target int) (int, error) {
	for filled < target {
		count, err := s.conn.Read(buffer[filled:])
		filled += count
		if filled >= target {
			// A reader may return the final bytes together with io.EOF.
			// The transfer is complete; the condition surfaces on the
			// next one. Same completion-before-error order as
			// io.ReadFull.
			break
		}
		if err != nil {
			if errors.Is(err, io.EOF) || errors.Is(err, io.ErrClosedPipe) {
				return filled, fmt.Errorf("channel %s: %w: got %d of %d bytes",
					s.name, ErrUnexpectedEndOfStream, filled, target)
			}
			return filled, fmt.Errorf("channel %s: reading stream: %w", s.name, err)
		}
		if count == 0 {
			// A zero-byte read with no error means the peer closed.
			return filled, fmt.Errorf("channel %s: %w: got %d of %d bytes",
				s.name, ErrUnexpectedEndOfStream, filled, target)
		}
	}
	return filled, nil
}

// drain writes all of data to the stream, continuing through short
// writes. A zero-byte write result is treated as peer closed.
func (s *Stream) drain(data []byte) error {
	written := 0
	for written < len(data) {
		count, err := s.conn.Write(data[written:])
		written += count
		if written >= len(data) {
			break
		}
		if err != nil {
			if errors.Is(err, io.EOF) || errors.Is(err, io.ErrClosedPipe) {
				return fmt.Errorf("channel %s: %w: wrote %d of %d bytes",
					s.name, ErrUnexpectedEndOfStream, written, len(data))
			}
			return fmt.Errorf("channel %s: writing stream: %w", s.name, err)
		}
		if count == 0 {
			return fmt.Errorf("channel %s: %w: wrote %d of %d bytes",
				s.name, ErrUnexpectedEndOfStream, written, len(data))
		}
	}
	return nil
}

// ReceiveExact reads exactly n bytes from the stream, retrying short
// reads until the count is met. If the stream closes first, the whole
// operation fails with ErrUnexpectedEndOfStream and no partial data is
// returned.
func (s *Stream) ReceiveExact(n int) ([]byte, error) {
	if err := s.acquireReceive(); err != nil {
		return nil, err
	}
	defer s.releaseReceive()
	buffer := make([]byte, n)
	if _, err := s.fill(buffer, 0, n); err != nil {
		return nil, err
	}
	return buffer, nil
}

// SendExact writes all of data to the stream, retrying short writes
// until the count is met. If the stream closes first, the operation
// fails with ErrUnexpectedEndOfStream.
func (s *Stream) SendExact(data []byte) error {
	if err := s.acquireSend(); err != nil {
		return err
	}
	defer s.releaseSend()
	return s.drain(data)
}

// receiveLengthPrefix reads the 4-byte big-endian frame length. Caller
// must hold the receive side.
func (s *Stream) receiveLengthPrefix() (uint32, error) {
	var prefix [4]byte
	if _, err := s.fill(prefix[:], 0, len(prefix)); err != nil {
		return 0, fmt.Errorf("reading length prefix: %w", err)
	}
	return binary.BigEndian.Uint32(prefix[:]), nil
}

// sendLengthPrefix writes the 4-byte big-endian frame length. Caller
// must hold the send side.
func (s *Stream) sendLengthPrefix(n uint32) error {
	var prefix [4]byte
	binary.BigEndian.PutUint32(prefix[:], n)
	if err := s.drain(prefix[:]); err != nil {
		return fmt.Errorf("writing length prefix: %w", err)
	}
	return nil
}

// ReceiveLengthPrefix reads a 4-byte big-endian unsigned frame length.
func (s *Stream) ReceiveLengthPrefix() (uint32, error) {
	if err := s.acquireReceive(); err != nil {
		return 0, err
	}
	defer s.releaseReceive()
	return s.receiveLengthPrefix()
}

// SendLengthPrefix writes a 4-byte big-endian unsigned frame length.
func (s *Stream) SendLengthPrefix(n uint32) error {
	if err := s.acquireSend(); err != nil {
		return err
	}
	defer s.releaseSend()
	return s.sendLengthPrefix(n)
}
