// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package serial defines the serialization capability every value
// carried by caswire must satisfy, the leaf codecs for primitive
// types, and generic combinators that lift element codecs into codecs
// for compound shapes (sequences, optionals, pairs, wrapped scalars).
//
// The capability is deliberately minimal: an exact encoded size, a
// write that produces exactly that many bytes, and a read that
// consumes exactly what the matching write produced. The length-prefix
// framing in lib/channel depends on the exact-size contract; a codec
// whose Size disagrees with its Write desynchronizes every subsequent
// message on a channel, so the channel verifies full buffer
// consumption after every encode and decode.
//
// Combinators take their element codec as a generic type parameter
// rather than a boxed interface value, so the Size/Write/Read triple
// is statically matched to the element type at every use site:
//
//	codec := serial.SequenceOf(serial.PairOf(serial.String{}, serial.OptionOf(serial.Uint32{})))
//
// composes with no new codec logic and no dynamic dispatch.
//
// Pretty, ToJSON, and FromJSON are diagnostic conversions for human
// inspection and debug tooling. They are never consulted by Write or
// Read and carry no weight for wire correctness.
package serial

import (
	"errors"

	"github.com/bureau-foundation/caswire/lib/wirebuf"
)

// ErrMalformed indicates a decoded value outside the expected shape of
// its codec (for example a scalar projection the restore function
// rejects). Fatal to the current message; the enclosing channel's byte
// position may already be desynchronized and should be treated as
// suspect.
var ErrMalformed = errors.New("malformed encoding")

// ErrMalformedOptional indicates an optional encoding whose element
// count was neither 0 nor 1.
var ErrMalformedOptional = errors.New("malformed optional encoding")

// Codec is the serialization capability for values of type T.
//
// Size must be a pure function of the value. Write must advance the
// buffer's cursor by exactly Size(value) bytes; Read must advance it
// by exactly the number of bytes the matching Write produced. A
// freshly created buffer of capacity Size(value) is fully and exactly
// consumed by Write, and reading those bytes back reproduces a value
// equal to the original.
type Codec[T any] interface {
	// Size returns the exact byte length Write will produce for value.
	Size(value T) int

	// Write encodes value into buffer, advancing the cursor by
	// exactly Size(value) bytes.
	Write(buffer *wirebuf.Buffer, value T) error

	// Read decodes one value from buffer, advancing the cursor by
	// exactly the number of bytes the matching Write produced.
	Read(buffer *wirebuf.Buffer) (T, error)

	// Pretty returns a human-readable rendering of value. Diagnostic
	// only.
	Pretty(value T) string

	// ToJSON returns a JSON rendering of value. Diagnostic only.
	ToJSON(value T) ([]byte, error)

	// FromJSON reconstructs a value from its ToJSON form. Diagnostic
	// only.
	FromJSON(data []byte) (T, error)
}
