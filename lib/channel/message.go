// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package channel

import (
	"fmt"
	"math"

	"github.com/bureau-foundation/caswire/lib/serial"
	"github.com/bureau-foundation/caswire/lib/wirebuf"
)

// MessageChannel binds one codec to a stream, exposing send and
// receive of whole values of T. Each message travels as one frame:
// a 4-byte big-endian length prefix followed by exactly that many
// payload bytes, laid out by the codec.
//
// The framing leans entirely on the codec's exact-size contract. Both
// directions verify full buffer consumption: a send whose encode does
// not land exactly on Size(value) is rejected before any bytes reach
// the stream (the channel stays clean), and a receive whose decode
// does not consume the whole frame fails with ErrFrameMismatch (the
// channel is desynchronized and must be abandoned).
type MessageChannel[T any, C serial.Codec[T]] struct {
	stream *Stream
	codec  C
}

// Bind creates a message channel carrying values of T over stream.
func Bind[T any, C serial.Codec[T]](stream *Stream, codec C) *MessageChannel[T, C] {
	return &MessageChannel[T, C]{stream: stream, codec: codec}
}

// Stream returns the underlying stream channel.
func (mc *MessageChannel[T, C]) Stream() *Stream {
	return mc.stream
}

// Receive reads one framed value from the stream. The frame payload is
// decoded as it arrives: the decode buffer's readiness hook pulls
// bytes from the stream on demand, so decoding begins before the whole
// payload has been delivered.
func (mc *MessageChannel[T, C]) Receive() (T, error) {
	var zero T
	stream := mc.stream
	if err := stream.acquireReceive(); err != nil {
		return zero, err
	}
	defer stream.releaseReceive()

	length, err := stream.receiveLengthPrefix()
	if err != nil {
		return zero, fmt.Errorf("channel %s: %w", stream.name, err)
	}

	backing := make([]byte, length)
	filled := 0
	buffer := wirebuf.NewStreaming(backing, func(offset int) error {
		if offset < filled {
			return nil
		}
		newFilled, err := stream.fill(backing, filled, offset+1)
		filled = newFilled
		return err
	})

	value, err := mc.codec.Read(buffer)
	if err != nil {
		stream.logger.Error("frame decode failed",
			"channel", stream.name,
			"frame_length", length,
			"error", err,
			"dump", buffer.Dump(),
		)
		return zero, fmt.Errorf("channel %s: decoding %d-byte frame: %w", stream.name, length, err)
	}
	if buffer.Remaining() != 0 {
		stream.logger.Error("frame not fully consumed",
			"channel", stream.name,
			"frame_length", length,
			"consumed", buffer.Cursor(),
			"dump", buffer.Dump(),
		)
		return zero, fmt.Errorf("channel %s: %w: decode consumed %d of %d frame bytes",
			stream.name, ErrFrameMismatch, buffer.Cursor(), length)
	}

	if stream.tap != nil {
		stream.tap.RecordReceive(backing)
	}
	return value, nil
}

// Send writes one framed value to the stream: the length prefix
// derived from the codec's Size, then the encoded payload.
func (mc *MessageChannel[T, C]) Send(value T) error {
	stream := mc.stream
	size := mc.codec.Size(value)
	if size < 0 || uint64(size) > math.MaxUint32 {
		return fmt.Errorf("channel %s: %w: encoded size %d", stream.name, ErrMessageTooLarge, size)
	}

	// Encode before claiming the stream so an exact-size violation
	// never puts bytes on the wire.
	buffer := wirebuf.New(size)
	if err := mc.codec.Write(buffer, value); err != nil {
		return fmt.Errorf("channel %s: encoding %d-byte message: %w", stream.name, size, err)
	}
	if buffer.Remaining() != 0 {
		return fmt.Errorf("channel %s: %w: encode produced %d of %d declared bytes",
			stream.name, ErrFrameMismatch, buffer.Cursor(), size)
	}

	if err := stream.acquireSend(); err != nil {
		return err
	}
	defer stream.releaseSend()

	if err := stream.sendLengthPrefix(uint32(size)); err != nil {
		return fmt.Errorf("channel %s: %w", stream.name, err)
	}
	if err := stream.drain(buffer.Bytes()); err != nil {
		return err
	}

	if stream.tap != nil {
		stream.tap.RecordSend(buffer.Bytes())
	}
	return nil
}
