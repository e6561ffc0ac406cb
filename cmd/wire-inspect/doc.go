// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Wire-inspect prints the frames recorded in a caswire capture
// transcript (see lib/capture). Each record is listed with its
// sequence number, direction, and payload length, followed by the
// payload rendered per --format:
//
//   - hex: hex dump (default)
//   - diag: CBOR diagnostic notation when the payload parses as a
//     single CBOR item, hex dump otherwise
//   - json: one JSON object per record with the payload base64-encoded
//
// Defaults may be set in a YAML config file given by --config or the
// WIRE_INSPECT_CONFIG environment variable. There is no automatic
// config discovery.
//
// Exit codes:
//
//	0  transcript printed
//	1  error (unreadable transcript, bad arguments)
package main
