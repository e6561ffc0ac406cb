// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package wirebuf provides the fixed-capacity cursor buffer that all
// caswire encoding and decoding operates on.
//
// A Buffer is created for exactly one read pass or one write pass over
// one logical message and discarded afterwards. The cursor advances
// monotonically and there is no rewind. All multi-byte integers are
// big-endian. This is a wire-format commitment shared with every
// decoder of the format, not an implementation choice.
//
// A readiness hook can be attached at construction. The hook is invoked
// once per byte offset immediately before that offset is touched, which
// lets a streaming consumer materialize bytes on demand — the message
// channel uses this to decode a frame while its bytes are still
// arriving from the network. In-memory buffers have no hook and access
// the backing slice directly.
package wirebuf

import (
	"encoding/binary"
	"errors"
	"fmt"
)

// ErrOverrun indicates an access past the buffer's capacity. This is
// always either a bug in a caller (a codec whose Size disagrees with
// its Write or Read) or a corrupted wire payload — never a condition
// to retry.
var ErrOverrun = errors.New("buffer overrun")

// ReadinessHook guards access to a byte offset. It is called once per
// offset immediately before that offset is read or written, in
// ascending order. Returning an error aborts the access without
// advancing the cursor.
type ReadinessHook func(offset int) error

// Buffer is a fixed-capacity byte region with a monotonically
// advancing read/write cursor. Capacity is fixed at creation and the
// backing region is never resized. A Buffer is owned by a single pass
// and must not be shared between concurrent tasks.
type Buffer struct {
	backing []byte
	cursor  int
	ready   ReadinessHook
}

// New creates a zeroed buffer of the given capacity for a write pass.
func New(capacity int) *Buffer {
	return &Buffer{backing: make([]byte, capacity)}
}

// FromBytes creates a buffer for a read pass over fully materialized
// bytes. The buffer takes ownership of data for the duration of the
// pass; slices returned by ReadBytes are copies and remain valid after
// the caller reclaims data.
func FromBytes(data []byte) *Buffer {
	return &Buffer{backing: data}
}

// NewStreaming creates a buffer for a read pass over backing bytes
// that may not all be materialized yet. The hook is invoked once per
// offset before that offset is read, giving the producer a chance to
// fill backing up to and including the offset.
func NewStreaming(backing []byte, hook ReadinessHook) *Buffer {
	return &Buffer{backing: backing, ready: hook}
}

// Cursor returns the current read/write offset.
func (b *Buffer) Cursor() int {
	return b.cursor
}

// Capacity returns the fixed size of the backing region.
func (b *Buffer) Capacity() int {
	return len(b.backing)
}

// Remaining returns the number of bytes between the cursor and
// capacity.
func (b *Buffer) Remaining() int {
	return len(b.backing) - b.cursor
}

// Bytes returns the backing region. For a completed write pass this is
// the encoded message, ready for transmission.
func (b *Buffer) Bytes() []byte {
	return b.backing
}

// require checks that width bytes are available at the cursor and runs
// the readiness hook over the range about to be touched. It does not
// advance the cursor.
func (b *Buffer) require(width int) error {
	// A negative width can only come from a hostile length field that
	// wrapped during conversion to int on a 32-bit platform; treat it
	// as the overrun it encodes rather than letting make panic.
	if width < 0 || b.cursor+width > len(b.backing) {
		return fmt.Errorf("%w: %d bytes at offset %d exceeds capacity %d",
			ErrOverrun, width, b.cursor, len(b.backing))
	}
	if b.ready != nil {
		for offset := b.cursor; offset < b.cursor+width; offset++ {
			if err := b.ready(offset); err != nil {
				return fmt.Errorf("readiness at offset %d: %w", offset, err)
			}
		}
	}
	return nil
}

// WriteUint8 writes a single byte and advances the cursor by 1.
func (b *Buffer) WriteUint8(value uint8) error {
	if err := b.require(1); err != nil {
		return err
	}
	b.backing[b.cursor] = value
	b.cursor++
	return nil
}

// ReadUint8 reads a single byte and advances the cursor by 1.
func (b *Buffer) ReadUint8() (uint8, error) {
	if err := b.require(1); err != nil {
		return 0, err
	}
	value := b.backing[b.cursor]
	b.cursor++
	return value, nil
}

// WriteChar writes a single raw byte (a one-byte character) and
// advances the cursor by 1.
func (b *Buffer) WriteChar(value byte) error {
	return b.WriteUint8(value)
}

// ReadChar reads a single raw byte and advances the cursor by 1.
func (b *Buffer) ReadChar() (byte, error) {
	return b.ReadUint8()
}

// WriteUint16 writes a big-endian 16-bit integer and advances the
// cursor by 2.
func (b *Buffer) WriteUint16(value uint16) error {
	if err := b.require(2); err != nil {
		return err
	}
	binary.BigEndian.PutUint16(b.backing[b.cursor:], value)
	b.cursor += 2
	return nil
}

// ReadUint16 reads a big-endian 16-bit integer and advances the cursor
// by 2.
func (b *Buffer) ReadUint16() (uint16, error) {
	if err := b.require(2); err != nil {
		return 0, err
	}
	value := binary.BigEndian.Uint16(b.backing[b.cursor:])
	b.cursor += 2
	return value, nil
}

// WriteUint32 writes a big-endian 32-bit integer and advances the
// cursor by 4.
func (b *Buffer) WriteUint32(value uint32) error {
	if err := b.require(4); err != nil {
		return err
	}
	binary.BigEndian.PutUint32(b.backing[b.cursor:], value)
	b.cursor += 4
	return nil
}

// ReadUint32 reads a big-endian 32-bit integer and advances the cursor
// by 4.
func (b *Buffer) ReadUint32() (uint32, error) {
	if err := b.require(4); err != nil {
		return 0, err
	}
	value := binary.BigEndian.Uint32(b.backing[b.cursor:])
	b.cursor += 4
	return value, nil
}

// WriteUint64 writes a big-endian 64-bit integer and advances the
// cursor by 8.
func (b *Buffer) WriteUint64(value uint64) error {
	if err := b.require(8); err != nil {
		return err
	}
	binary.BigEndian.PutUint64(b.backing[b.cursor:], value)
	b.cursor += 8
	return nil
}

// ReadUint64 reads a big-endian 64-bit integer and advances the cursor
// by 8.
func (b *Buffer) ReadUint64() (uint64, error) {
	if err := b.require(8); err != nil {
		return 0, err
	}
	value := binary.BigEndian.Uint64(b.backing[b.cursor:])
	b.cursor += 8
	return value, nil
}

// WriteBytes writes raw bytes with no length prefix or terminator and
// advances the cursor by len(data).
func (b *Buffer) WriteBytes(data []byte) error {
	if err := b.require(len(data)); err != nil {
		return err
	}
	copy(b.backing[b.cursor:], data)
	b.cursor += len(data)
	return nil
}

// ReadBytes reads exactly length raw bytes, independent of any
// terminator, and advances the cursor by length. The returned slice is
// a copy and remains valid after the buffer is discarded.
func (b *Buffer) ReadBytes(length int) ([]byte, error) {
	if err := b.require(length); err != nil {
		return nil, err
	}
	data := make([]byte, length)
	copy(data, b.backing[b.cursor:])
	b.cursor += length
	return data, nil
}
