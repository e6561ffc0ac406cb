// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package serial

import (
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/bureau-foundation/caswire/lib/wirebuf"
)

// Uint8 is the codec for an unsigned 8-bit integer: 1 byte.
type Uint8 struct{}

func (Uint8) Size(uint8) int { return 1 }

func (Uint8) Write(buffer *wirebuf.Buffer, value uint8) error {
	return buffer.WriteUint8(value)
}

func (Uint8) Read(buffer *wirebuf.Buffer) (uint8, error) {
	return buffer.ReadUint8()
}

func (Uint8) Pretty(value uint8) string { return strconv.FormatUint(uint64(value), 10) }

func (Uint8) ToJSON(value uint8) ([]byte, error) { return json.Marshal(value) }

func (Uint8) FromJSON(data []byte) (uint8, error) {
	var value uint8
	err := json.Unmarshal(data, &value)
	return value, err
}

// Uint16 is the codec for an unsigned 16-bit integer: 2 bytes,
// big-endian.
type Uint16 struct{}

func (Uint16) Size(uint16) int { return 2 }

func (Uint16) Write(buffer *wirebuf.Buffer, value uint16) error {
	return buffer.WriteUint16(value)
}

func (Uint16) Read(buffer *wirebuf.Buffer) (uint16, error) {
	return buffer.ReadUint16()
}

func (Uint16) Pretty(value uint16) string { return strconv.FormatUint(uint64(value), 10) }

func (Uint16) ToJSON(value uint16) ([]byte, error) { return json.Marshal(value) }

func (Uint16) FromJSON(data []byte) (uint16, error) {
	var value uint16
	err := json.Unmarshal(data, &value)
	return value, err
}

// Uint32 is the codec for an unsigned 32-bit integer: 4 bytes,
// big-endian.
type Uint32 struct{}

func (Uint32) Size(uint32) int { return 4 }

func (Uint32) Write(buffer *wirebuf.Buffer, value uint32) error {
	return buffer.WriteUint32(value)
}

func (Uint32) Read(buffer *wirebuf.Buffer) (uint32, error) {
	return buffer.ReadUint32()
}

func (Uint32) Pretty(value uint32) string { return strconv.FormatUint(uint64(value), 10) }

func (Uint32) ToJSON(value uint32) ([]byte, error) { return json.Marshal(value) }

func (Uint32) FromJSON(data []byte) (uint32, error) {
	var value uint32
	err := json.Unmarshal(data, &value)
	return value, err
}

// Uint64 is the codec for an unsigned 64-bit integer: 8 bytes,
// big-endian.
type Uint64 struct{}

func (Uint64) Size(uint64) int { return 8 }

func (Uint64) Write(buffer *wirebuf.Buffer, value uint64) error {
	return buffer.WriteUint64(value)
}

func (Uint64) Read(buffer *wirebuf.Buffer) (uint64, error) {
	return buffer.ReadUint64()
}

func (Uint64) Pretty(value uint64) string { return strconv.FormatUint(value, 10) }

func (Uint64) ToJSON(value uint64) ([]byte, error) { return json.Marshal(value) }

func (Uint64) FromJSON(data []byte) (uint64, error) {
	var value uint64
	err := json.Unmarshal(data, &value)
	return value, err
}

// Char is the codec for a single raw byte: 1 byte.
type Char struct{}

func (Char) Size(byte) int { return 1 }

func (Char) Write(buffer *wirebuf.Buffer, value byte) error {
	return buffer.WriteChar(value)
}

func (Char) Read(buffer *wirebuf.Buffer) (byte, error) {
	return buffer.ReadChar()
}

func (Char) Pretty(value byte) string { return fmt.Sprintf("%q", value) }

func (Char) ToJSON(value byte) ([]byte, error) { return json.Marshal(value) }

func (Char) FromJSON(data []byte) (byte, error) {
	var value byte
	err := json.Unmarshal(data, &value)
	return value, err
}

// String is the codec for a string: a 4-byte big-endian byte length
// followed by that many raw bytes, no terminator, no padding.
type String struct{}

func (String) Size(value string) int { return 4 + len(value) }

func (String) Write(buffer *wirebuf.Buffer, value string) error {
	if err := buffer.WriteUint32(uint32(len(value))); err != nil {
		return fmt.Errorf("writing string length: %w", err)
	}
	if err := buffer.WriteBytes([]byte(value)); err != nil {
		return fmt.Errorf("writing string bytes: %w", err)
	}
	return nil
}

func (String) Read(buffer *wirebuf.Buffer) (string, error) {
	length, err := buffer.ReadUint32()
	if err != nil {
		return "", fmt.Errorf("reading string length: %w", err)
	}
	data, err := buffer.ReadBytes(int(length))
	if err != nil {
		return "", fmt.Errorf("reading string bytes: %w", err)
	}
	return string(data), nil
}

func (String) Pretty(value string) string { return strconv.Quote(value) }

func (String) ToJSON(value string) ([]byte, error) { return json.Marshal(value) }

func (String) FromJSON(data []byte) (string, error) {
	var value string
	err := json.Unmarshal(data, &value)
	return value, err
}

// Bytes is the codec for a free-form byte blob: a 4-byte big-endian
// length followed by that many raw bytes. The JSON diagnostic form is
// base64, following encoding/json's []byte convention.
type Bytes struct{}

func (Bytes) Size(value []byte) int { return 4 + len(value) }

func (Bytes) Write(buffer *wirebuf.Buffer, value []byte) error {
	if err := buffer.WriteUint32(uint32(len(value))); err != nil {
		return fmt.Errorf("writing blob length: %w", err)
	}
	if err := buffer.WriteBytes(value); err != nil {
		return fmt.Errorf("writing blob bytes: %w", err)
	}
	return nil
}

func (Bytes) Read(buffer *wirebuf.Buffer) ([]byte, error) {
	length, err := buffer.ReadUint32()
	if err != nil {
		return nil, fmt.Errorf("reading blob length: %w", err)
	}
	data, err := buffer.ReadBytes(int(length))
	if err != nil {
		return nil, fmt.Errorf("reading blob bytes: %w", err)
	}
	return data, nil
}

func (Bytes) Pretty(value []byte) string { return fmt.Sprintf("%d bytes", len(value)) }

func (Bytes) ToJSON(value []byte) ([]byte, error) { return json.Marshal(value) }

func (Bytes) FromJSON(data []byte) ([]byte, error) {
	var value []byte
	err := json.Unmarshal(data, &value)
	return value, err
}
