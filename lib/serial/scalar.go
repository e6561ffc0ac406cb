// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package serial

import (
	"encoding/json"
	"fmt"
	"unicode/utf8"

	"github.com/bureau-foundation/caswire/lib/wirebuf"
)

// Scalar is the codec for any type with a lossless byte-string
// projection: a 4-byte big-endian length followed by the raw
// projection bytes. Most domain leaf types (hashes, identifiers,
// free-form blobs) are built on this combinator.
//
// restore must accept exactly the bytes project produced and
// reconstruct an equal value; restore failures surface as ErrMalformed
// (the payload carried a projection the type rejects).
type Scalar[S any] struct {
	name    string
	project func(S) []byte
	restore func([]byte) (S, error)
}

// ScalarOf builds a scalar codec from a projection pair. The name
// appears in diagnostic output and error messages only.
func ScalarOf[S any](name string, project func(S) []byte, restore func([]byte) (S, error)) Scalar[S] {
	return Scalar[S]{name: name, project: project, restore: restore}
}

func (s Scalar[S]) Size(value S) int {
	return 4 + len(s.project(value))
}

func (s Scalar[S]) Write(buffer *wirebuf.Buffer, value S) error {
	projection := s.project(value)
	if err := buffer.WriteUint32(uint32(len(projection))); err != nil {
		return fmt.Errorf("writing %s length: %w", s.name, err)
	}
	if err := buffer.WriteBytes(projection); err != nil {
		return fmt.Errorf("writing %s bytes: %w", s.name, err)
	}
	return nil
}

func (s Scalar[S]) Read(buffer *wirebuf.Buffer) (S, error) {
	var zero S
	length, err := buffer.ReadUint32()
	if err != nil {
		return zero, fmt.Errorf("reading %s length: %w", s.name, err)
	}
	projection, err := buffer.ReadBytes(int(length))
	if err != nil {
		return zero, fmt.Errorf("reading %s bytes: %w", s.name, err)
	}
	value, err := s.restore(projection)
	if err != nil {
		return zero, fmt.Errorf("%w: restoring %s from %d projection bytes: %v",
			ErrMalformed, s.name, len(projection), err)
	}
	return value, nil
}

func (s Scalar[S]) Pretty(value S) string {
	projection := s.project(value)
	if utf8.Valid(projection) {
		return fmt.Sprintf("%s(%q)", s.name, projection)
	}
	return fmt.Sprintf("%s(%x)", s.name, projection)
}

func (s Scalar[S]) ToJSON(value S) ([]byte, error) {
	projection := s.project(value)
	if utf8.Valid(projection) {
		return json.Marshal(string(projection))
	}
	// Non-textual projections render as base64, following
	// encoding/json's []byte convention.
	return json.Marshal(projection)
}

func (s Scalar[S]) FromJSON(data []byte) (S, error) {
	var zero S
	var text string
	if err := json.Unmarshal(data, &text); err != nil {
		return zero, fmt.Errorf("%w: %s JSON: %v", ErrMalformed, s.name, err)
	}
	if value, err := s.restore([]byte(text)); err == nil {
		return value, nil
	}
	// The projection may have been base64-encoded binary; retry with
	// the []byte convention.
	var raw []byte
	if err := json.Unmarshal(data, &raw); err != nil {
		return zero, fmt.Errorf("%w: %s JSON: %v", ErrMalformed, s.name, err)
	}
	value, err := s.restore(raw)
	if err != nil {
		return zero, fmt.Errorf("%w: restoring %s: %v", ErrMalformed, s.name, err)
	}
	return value, nil
}
