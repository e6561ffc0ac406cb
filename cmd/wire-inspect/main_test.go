// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/bureau-foundation/caswire/lib/capture"
)

// sampleTranscript builds an in-memory transcript with one frame in
// each direction.
func sampleTranscript(t *testing.T) []byte {
	t.Helper()
	var transcript bytes.Buffer
	writer, err := capture.NewWriter(&transcript, "test/inspect", capture.CompressionNone)
	if err != nil {
		t.Fatalf("NewWriter: %v", err)
	}
	writer.RecordSend([]byte{0, 0, 0, 42})
	writer.RecordReceive([]byte("payload bytes"))
	if err := writer.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	return transcript.Bytes()
}

func openTranscript(t *testing.T, data []byte) *capture.Reader {
	t.Helper()
	reader, err := capture.NewReader(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("NewReader: %v", err)
	}
	t.Cleanup(reader.Close)
	return reader
}

func TestPrintTranscriptJSON(t *testing.T) {
	t.Parallel()
	reader := openTranscript(t, sampleTranscript(t))

	var out bytes.Buffer
	if err := printTranscript(&out, reader, Config{Format: "json"}); err != nil {
		t.Fatalf("printTranscript: %v", err)
	}

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("got %d output lines, want 2:\n%s", len(lines), out.String())
	}

	var first jsonRecord
	if err := json.Unmarshal([]byte(lines[0]), &first); err != nil {
		t.Fatalf("parsing first line: %v", err)
	}
	if first.Sequence != 1 || first.Direction != "send" || first.Length != 4 {
		t.Errorf("first record = %+v, want sequence 1, direction send, length 4", first)
	}
	if !bytes.Equal(first.Payload, []byte{0, 0, 0, 42}) {
		t.Errorf("first payload %x, want 0000002a", first.Payload)
	}
}

func TestPrintTranscriptHexTruncation(t *testing.T) {
	t.Parallel()
	reader := openTranscript(t, sampleTranscript(t))

	var out bytes.Buffer
	config := Config{Format: "hex", MaxPayloadDump: 4}
	if err := printTranscript(&out, reader, config); err != nil {
		t.Fatalf("printTranscript: %v", err)
	}

	rendered := out.String()
	if !strings.Contains(rendered, `transcript of channel "test/inspect"`) {
		t.Errorf("missing transcript header in:\n%s", rendered)
	}
	if !strings.Contains(rendered, "#1 send, 4 bytes") {
		t.Errorf("missing first record banner in:\n%s", rendered)
	}
	if !strings.Contains(rendered, "#2 receive, 13 bytes") {
		t.Errorf("missing second record banner in:\n%s", rendered)
	}
	// The 13-byte payload is capped at 4 rendered bytes.
	if !strings.Contains(rendered, "... 9 more bytes") {
		t.Errorf("missing truncation marker in:\n%s", rendered)
	}
	if strings.Contains(rendered, "payload bytes") {
		t.Errorf("truncated payload rendered in full:\n%s", rendered)
	}
}

func TestLoadConfig(t *testing.T) {
	directory := t.TempDir()
	path := filepath.Join(directory, "config.yaml")
	contents := "format: diag\nmax_payload_dump: 128\n"
	if err := os.WriteFile(path, []byte(contents), 0o600); err != nil {
		t.Fatalf("writing config: %v", err)
	}

	config, err := loadConfig(path)
	if err != nil {
		t.Fatalf("loadConfig: %v", err)
	}
	if config.Format != "diag" || config.MaxPayloadDump != 128 {
		t.Errorf("loaded %+v, want format diag, max_payload_dump 128", config)
	}
}

func TestLoadConfigDefaults(t *testing.T) {
	t.Setenv("WIRE_INSPECT_CONFIG", "")
	config, err := loadConfig("")
	if err != nil {
		t.Fatalf("loadConfig: %v", err)
	}
	if config.Format != "hex" || config.MaxPayloadDump != 0 {
		t.Errorf("defaults = %+v, want format hex, no dump cap", config)
	}
}

func TestLoadConfigFromEnvironment(t *testing.T) {
	directory := t.TempDir()
	path := filepath.Join(directory, "config.yaml")
	if err := os.WriteFile(path, []byte("format: json\n"), 0o600); err != nil {
		t.Fatalf("writing config: %v", err)
	}
	t.Setenv("WIRE_INSPECT_CONFIG", path)

	config, err := loadConfig("")
	if err != nil {
		t.Fatalf("loadConfig: %v", err)
	}
	if config.Format != "json" {
		t.Errorf("format %q, want json", config.Format)
	}
}

func TestLoadConfigRejectsUnknownFormat(t *testing.T) {
	directory := t.TempDir()
	path := filepath.Join(directory, "config.yaml")
	if err := os.WriteFile(path, []byte("format: xml\n"), 0o600); err != nil {
		t.Fatalf("writing config: %v", err)
	}
	if _, err := loadConfig(path); err == nil {
		t.Error("loadConfig accepted an unknown format")
	}
}
