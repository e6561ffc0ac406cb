// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package capture records the frames crossing a stream channel to an
// on-disk transcript for offline inspection. Capture sits entirely
// off the wire path: a Writer observes complete frame payloads
// through the channel.Tap hook and never touches the stream itself.
//
// Transcript layout: an 8-byte magic, a 1-byte compression tag, then
// a (possibly compressed) stream of CBOR values — one Header followed
// by zero or more Records. CBOR uses lib/codec's deterministic
// encoding, so identical sessions produce byte-identical transcripts.
package capture

import (
	"bytes"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"

	"github.com/bureau-foundation/caswire/lib/codec"
)

// fileMagic identifies a caswire capture transcript.
var fileMagic = [8]byte{'c', 'a', 's', 'w', 'c', 'a', 'p', '1'}

// formatVersion is the current transcript format version, recorded in
// the header for forward compatibility.
const formatVersion = 1

// CompressionTag identifies the compression applied to the transcript
// body. The tag is stored as one raw byte after the magic; these
// values are format constants — changing them breaks existing
// transcripts.
type CompressionTag uint8

const (
	// CompressionNone stores the body uncompressed. Use when the
	// frames are already compressed or the transcript is short-lived.
	CompressionNone CompressionTag = 0

	// CompressionLZ4 applies LZ4 frame compression. Fast default for
	// binary frame data.
	CompressionLZ4 CompressionTag = 1

	// CompressionZstd applies zstd compression. Better ratios for
	// text-heavy payloads at higher CPU cost.
	CompressionZstd CompressionTag = 2
)

// String returns the human-readable name of a compression tag.
func (tag CompressionTag) String() string {
	switch tag {
	case CompressionNone:
		return "none"
	case CompressionLZ4:
		return "lz4"
	case CompressionZstd:
		return "zstd"
	default:
		return fmt.Sprintf("unknown(%d)", tag)
	}
}

// ParseCompressionTag parses a compression tag from its string
// representation.
func ParseCompressionTag(name string) (CompressionTag, error) {
	switch name {
	case "none":
		return CompressionNone, nil
	case "lz4":
		return CompressionLZ4, nil
	case "zstd":
		return CompressionZstd, nil
	default:
		return 0, fmt.Errorf("unknown compression tag: %q", name)
	}
}

// Direction records which side of the channel a frame crossed.
type Direction uint8

const (
	// DirectionSend is a frame written by the captured process.
	DirectionSend Direction = 1

	// DirectionReceive is a frame read by the captured process.
	DirectionReceive Direction = 2
)

// String returns the human-readable name of a direction.
func (d Direction) String() string {
	switch d {
	case DirectionSend:
		return "send"
	case DirectionReceive:
		return "receive"
	default:
		return fmt.Sprintf("unknown(%d)", d)
	}
}

// Header is the first CBOR value in a transcript.
type Header struct {
	// FormatVersion is the transcript format version.
	FormatVersion int `cbor:"format_version"`

	// Channel is the diagnostic name of the captured stream.
	Channel string `cbor:"channel"`

	// CreatedUnix is the transcript creation time in Unix seconds.
	CreatedUnix int64 `cbor:"created_unix"`
}

// Record is one captured frame payload. The length prefix is not
// stored — it is reconstructible as len(Payload).
type Record struct {
	// Direction is the side of the channel the frame crossed.
	Direction Direction `cbor:"direction"`

	// Sequence numbers records in capture order, starting at 1.
	Sequence uint64 `cbor:"sequence"`

	// Payload is the complete frame payload.
	Payload []byte `cbor:"payload"`
}

// Writer appends captured frames to a transcript. It implements
// channel.Tap, so attach it with channel.WithTap. Records from the
// two channel sides may arrive concurrently; Writer serializes them
// internally.
//
// Tap hooks cannot report errors, so the first write failure is
// latched and returned by Close (and Err); subsequent records are
// dropped.
type Writer struct {
	mu       sync.Mutex
	body     io.Writer
	flush    func() error
	encoder  *codec.Encoder
	sequence uint64
	firstErr error
}

// NewWriter starts a transcript on w for the named channel. The
// magic, compression tag, and header are written immediately.
func NewWriter(w io.Writer, channelName string, compression CompressionTag) (*Writer, error) {
	if _, err := w.Write(fileMagic[:]); err != nil {
		return nil, fmt.Errorf("writing transcript magic: %w", err)
	}
	if _, err := w.Write([]byte{byte(compression)}); err != nil {
		return nil, fmt.Errorf("writing compression tag: %w", err)
	}

	writer := &Writer{}
	switch compression {
	case CompressionNone:
		writer.body = w
	case CompressionLZ4:
		compressor := lz4.NewWriter(w)
		writer.body = compressor
		writer.flush = compressor.Close
	case CompressionZstd:
		compressor, err := zstd.NewWriter(w)
		if err != nil {
			return nil, fmt.Errorf("initializing zstd compressor: %w", err)
		}
		writer.body = compressor
		writer.flush = compressor.Close
	default:
		return nil, fmt.Errorf("unknown compression tag: %d", compression)
	}

	writer.encoder = codec.NewEncoder(writer.body)
	header := Header{
		FormatVersion: formatVersion,
		Channel:       channelName,
		CreatedUnix:   time.Now().Unix(),
	}
	if err := writer.encoder.Encode(header); err != nil {
		return nil, fmt.Errorf("writing transcript header: %w", err)
	}
	return writer, nil
}

// RecordSend captures a frame sent by this process.
func (w *Writer) RecordSend(payload []byte) {
	w.record(DirectionSend, payload)
}

// RecordReceive captures a frame received by this process.
func (w *Writer) RecordReceive(payload []byte) {
	w.record(DirectionReceive, payload)
}

func (w *Writer) record(direction Direction, payload []byte) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.firstErr != nil {
		return
	}
	w.sequence++
	// The tap contract forbids retaining the payload slice past the
	// call, and the CBOR encoder may defer reading it.
	record := Record{
		Direction: direction,
		Sequence:  w.sequence,
		Payload:   bytes.Clone(payload),
	}
	if err := w.encoder.Encode(record); err != nil {
		w.firstErr = fmt.Errorf("writing transcript record %d: %w", w.sequence, err)
	}
}

// Err returns the first record-write failure, if any.
func (w *Writer) Err() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.firstErr
}

// Close flushes the compressor. The underlying writer is not closed —
// the caller manages its lifecycle. Returns the first record-write
// failure if one occurred.
func (w *Writer) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.flush != nil {
		if err := w.flush(); err != nil && w.firstErr == nil {
			w.firstErr = fmt.Errorf("flushing transcript: %w", err)
		}
		w.flush = nil
	}
	return w.firstErr
}

// Reader iterates the records of a transcript.
type Reader struct {
	header  Header
	decoder *codec.Decoder
	release func()
}

// NewReader opens a transcript, validating the magic and decoding the
// header.
func NewReader(r io.Reader) (*Reader, error) {
	var preamble [9]byte
	if _, err := io.ReadFull(r, preamble[:]); err != nil {
		return nil, fmt.Errorf("reading transcript preamble: %w", err)
	}
	if !bytes.Equal(preamble[:8], fileMagic[:]) {
		return nil, fmt.Errorf("not a caswire transcript (magic %x)", preamble[:8])
	}

	reader := &Reader{}
	var body io.Reader
	switch tag := CompressionTag(preamble[8]); tag {
	case CompressionNone:
		body = r
	case CompressionLZ4:
		body = lz4.NewReader(r)
	case CompressionZstd:
		decompressor, err := zstd.NewReader(r)
		if err != nil {
			return nil, fmt.Errorf("initializing zstd decompressor: %w", err)
		}
		body = decompressor
		reader.release = decompressor.Close
	default:
		return nil, fmt.Errorf("unknown compression tag: %d", tag)
	}

	reader.decoder = codec.NewDecoder(body)
	if err := reader.decoder.Decode(&reader.header); err != nil {
		reader.Close()
		return nil, fmt.Errorf("reading transcript header: %w", err)
	}
	if reader.header.FormatVersion != formatVersion {
		reader.Close()
		return nil, fmt.Errorf("unsupported transcript format version %d", reader.header.FormatVersion)
	}
	return reader, nil
}

// Header returns the transcript header.
func (r *Reader) Header() Header {
	return r.header
}

// Next returns the next record, or io.EOF after the last one.
func (r *Reader) Next() (Record, error) {
	var record Record
	if err := r.decoder.Decode(&record); err != nil {
		if err == io.EOF {
			return record, io.EOF
		}
		return record, fmt.Errorf("reading transcript record: %w", err)
	}
	return record, nil
}

// Close releases decompressor resources. The underlying reader is not
// closed.
func (r *Reader) Close() {
	if r.release != nil {
		r.release()
		r.release = nil
	}
}
