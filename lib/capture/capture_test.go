// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package capture

import (
	"bytes"
	"errors"
	"io"
	"net"
	"reflect"
	"testing"
	"time"

	"github.com/bureau-foundation/caswire/lib/channel"
	"github.com/bureau-foundation/caswire/lib/serial"
	"github.com/bureau-foundation/caswire/lib/testutil"
	"github.com/bureau-foundation/caswire/lib/wirebuf"
)

const testTimeout = 5 * time.Second

func TestTranscriptRoundTrip(t *testing.T) {
	t.Parallel()
	compressions := []CompressionTag{CompressionNone, CompressionLZ4, CompressionZstd}
	for _, compression := range compressions {
		t.Run(compression.String(), func(t *testing.T) {
			t.Parallel()
			var transcript bytes.Buffer
			writer, err := NewWriter(&transcript, "test/roundtrip", compression)
			if err != nil {
				t.Fatalf("NewWriter: %v", err)
			}

			payloads := [][]byte{
				[]byte("first frame"),
				{},
				bytes.Repeat([]byte{0xAB}, 4096),
			}
			writer.RecordSend(payloads[0])
			writer.RecordReceive(payloads[1])
			writer.RecordSend(payloads[2])
			if err := writer.Close(); err != nil {
				t.Fatalf("Close: %v", err)
			}

			reader, err := NewReader(bytes.NewReader(transcript.Bytes()))
			if err != nil {
				t.Fatalf("NewReader: %v", err)
			}
			defer reader.Close()

			header := reader.Header()
			if header.Channel != "test/roundtrip" {
				t.Errorf("header channel %q, want %q", header.Channel, "test/roundtrip")
			}
			if header.FormatVersion != 1 {
				t.Errorf("header format version %d, want 1", header.FormatVersion)
			}

			wantDirections := []Direction{DirectionSend, DirectionReceive, DirectionSend}
			for index, want := range payloads {
				record, err := reader.Next()
				if err != nil {
					t.Fatalf("record %d: %v", index, err)
				}
				if record.Sequence != uint64(index+1) {
					t.Errorf("record %d sequence %d, want %d", index, record.Sequence, index+1)
				}
				if record.Direction != wantDirections[index] {
					t.Errorf("record %d direction %s, want %s", index, record.Direction, wantDirections[index])
				}
				if !bytes.Equal(record.Payload, want) {
					t.Errorf("record %d payload %x, want %x", index, record.Payload, want)
				}
			}
			if _, err := reader.Next(); err != io.EOF {
				t.Errorf("after last record: got %v, want io.EOF", err)
			}
		})
	}
}

func TestWriterDoesNotRetainPayload(t *testing.T) {
	t.Parallel()
	var transcript bytes.Buffer
	writer, err := NewWriter(&transcript, "test/retain", CompressionNone)
	if err != nil {
		t.Fatalf("NewWriter: %v", err)
	}

	payload := []byte("original")
	writer.RecordSend(payload)
	copy(payload, "CLOBBER!")
	if err := writer.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	reader, err := NewReader(bytes.NewReader(transcript.Bytes()))
	if err != nil {
		t.Fatalf("NewReader: %v", err)
	}
	defer reader.Close()
	record, err := reader.Next()
	if err != nil {
		t.Fatalf("Next: %v", err)
	}
	if string(record.Payload) != "original" {
		t.Errorf("payload %q, want %q", record.Payload, "original")
	}
}

func TestReaderRejectsBadPreamble(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name  string
		input []byte
	}{
		{"empty", nil},
		{"truncated magic", []byte("caswc")},
		{"wrong magic", append([]byte("notacap1"), 0)},
		{"unknown compression", append(fileMagic[:], 99)},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			t.Parallel()
			if _, err := NewReader(bytes.NewReader(test.input)); err == nil {
				t.Error("NewReader accepted a malformed transcript")
			}
		})
	}
}

func TestWriterRejectsUnknownCompression(t *testing.T) {
	t.Parallel()
	var transcript bytes.Buffer
	if _, err := NewWriter(&transcript, "test/unknown", CompressionTag(99)); err == nil {
		t.Error("NewWriter accepted an unknown compression tag")
	}
}

func TestCompressionTagNames(t *testing.T) {
	t.Parallel()
	for _, tag := range []CompressionTag{CompressionNone, CompressionLZ4, CompressionZstd} {
		parsed, err := ParseCompressionTag(tag.String())
		if err != nil {
			t.Errorf("ParseCompressionTag(%q): %v", tag.String(), err)
		}
		if parsed != tag {
			t.Errorf("parsed %v, want %v", parsed, tag)
		}
	}
	if _, err := ParseCompressionTag("gzip"); err == nil {
		t.Error("ParseCompressionTag accepted an unknown name")
	}
}

// failAfterWriter fails every write after the first n bytes.
type failAfterWriter struct {
	remaining int
}

func (w *failAfterWriter) Write(p []byte) (int, error) {
	if len(p) > w.remaining {
		n := w.remaining
		w.remaining = 0
		return n, errors.New("disk full")
	}
	w.remaining -= len(p)
	return len(p), nil
}

func TestWriterLatchesFirstError(t *testing.T) {
	t.Parallel()
	// Room for the preamble and header, not for any record.
	writer, err := NewWriter(&failAfterWriter{remaining: 256}, "test/latch", CompressionNone)
	if err != nil {
		t.Fatalf("NewWriter: %v", err)
	}

	writer.RecordSend(bytes.Repeat([]byte{1}, 1024))
	first := writer.Err()
	if first == nil {
		t.Fatal("record write past the failure point reported no error")
	}
	// Later records are dropped without disturbing the latched error.
	writer.RecordReceive([]byte("dropped"))
	if got := writer.Close(); got != first {
		t.Errorf("Close returned %v, want the latched %v", got, first)
	}
}

// TestCaptureTapOnLiveChannel runs a transcript writer as the tap of a
// real message exchange and replays the captured frames.
func TestCaptureTapOnLiveChannel(t *testing.T) {
	t.Parallel()
	local, remote := net.Pipe()
	defer local.Close()
	defer remote.Close()

	var transcript bytes.Buffer
	writer, err := NewWriter(&transcript, "test/live", CompressionLZ4)
	if err != nil {
		t.Fatalf("NewWriter: %v", err)
	}

	codec := serial.SequenceOf(serial.String{})
	captured := channel.Bind(channel.NewStream(local, "test/live", channel.WithTap(writer)), codec)
	peer := channel.Bind(channel.NewStream(remote, "test/live-peer"), codec)

	outbound := []string{"alpha", "beta"}
	sent := make(chan error, 1)
	go func() {
		sent <- captured.Send(outbound)
	}()
	if _, err := peer.Receive(); err != nil {
		t.Fatalf("peer Receive: %v", err)
	}
	if err := testutil.RequireReceive(t, sent, testTimeout, "send completed"); err != nil {
		t.Fatalf("Send: %v", err)
	}

	inbound := []string{"gamma"}
	received := make(chan error, 1)
	go func() {
		received <- peer.Send(inbound)
	}()
	if _, err := captured.Receive(); err != nil {
		t.Fatalf("Receive: %v", err)
	}
	if err := testutil.RequireReceive(t, received, testTimeout, "peer send completed"); err != nil {
		t.Fatalf("peer Send: %v", err)
	}

	if err := writer.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	reader, err := NewReader(bytes.NewReader(transcript.Bytes()))
	if err != nil {
		t.Fatalf("NewReader: %v", err)
	}
	defer reader.Close()

	first, err := reader.Next()
	if err != nil {
		t.Fatalf("first record: %v", err)
	}
	if first.Direction != DirectionSend {
		t.Errorf("first record direction %s, want send", first.Direction)
	}
	if got := decodeStrings(t, codec, first.Payload); !reflect.DeepEqual(got, outbound) {
		t.Errorf("first record decodes to %#v, want %#v", got, outbound)
	}

	second, err := reader.Next()
	if err != nil {
		t.Fatalf("second record: %v", err)
	}
	if second.Direction != DirectionReceive {
		t.Errorf("second record direction %s, want receive", second.Direction)
	}
	if got := decodeStrings(t, codec, second.Payload); !reflect.DeepEqual(got, inbound) {
		t.Errorf("second record decodes to %#v, want %#v", got, inbound)
	}

	if _, err := reader.Next(); err != io.EOF {
		t.Errorf("after last record: got %v, want io.EOF", err)
	}
}

func decodeStrings(t *testing.T, codec serial.Sequence[string, serial.String], payload []byte) []string {
	t.Helper()
	buffer := wirebuf.FromBytes(payload)
	value, err := codec.Read(buffer)
	if err != nil {
		t.Fatalf("decoding captured payload %x: %v", payload, err)
	}
	if buffer.Remaining() != 0 {
		t.Fatalf("captured payload has %d undecoded bytes", buffer.Remaining())
	}
	return value
}
