// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package codec provides caswire's standard CBOR encoding
// configuration.
//
// CBOR is a diagnostics format here, never a wire format: the frame
// and combinator layouts in lib/serial and lib/channel are
// hand-specified big-endian structures, and nothing on the wire path
// consults this package. CBOR carries the capture transcript format
// (lib/capture) — file headers and frame records — and backs the
// wire-inspect tool's diagnostic notation output.
//
// The encoder uses Core Deterministic Encoding (RFC 8949 §4.2):
// sorted map keys, smallest integer encoding, no indefinite-length
// items. Same logical data always produces identical bytes, so a
// transcript of the same session hashes identically regardless of
// which process wrote it.
//
// For buffer-oriented operations:
//
//	data, err := codec.Marshal(value)
//	err = codec.Unmarshal(data, &value)
//
// For stream-oriented operations (transcript files):
//
//	encoder := codec.NewEncoder(file)
//	decoder := codec.NewDecoder(file)
package codec
