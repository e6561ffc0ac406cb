// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package cas

import (
	"fmt"

	"github.com/bureau-foundation/caswire/lib/serial"
	"github.com/bureau-foundation/caswire/lib/wirebuf"
)

// Entry is one name→address binding inside a node.
type Entry = serial.Pair[string, Hash]

// Node is an ordered list of entries. Encoding preserves entry order
// exactly; callers that want canonical addresses must sort before
// encoding.
type Node = []Entry

// Commit points at a tree node, an optional parent commit, and a
// message.
type Commit = serial.Pair[Hash, serial.Pair[*Hash, string]]

// NewCommit assembles a Commit value.
func NewCommit(tree Hash, parent *Hash, message string) Commit {
	return Commit{
		First:  tree,
		Second: serial.Pair[*Hash, string]{First: parent, Second: message},
	}
}

// HashCodec returns the wire codec for a Hash: a scalar wrapping the
// raw 32-byte digest (so 4 bytes of length prefix plus 32 bytes of
// digest on the wire).
func HashCodec() serial.Scalar[Hash] {
	return serial.ScalarOf("hash",
		func(hash Hash) []byte { return hash[:] },
		func(projection []byte) (Hash, error) {
			var hash Hash
			if len(projection) != len(hash) {
				return hash, fmt.Errorf("hash projection is %d bytes, want %d", len(projection), len(hash))
			}
			copy(hash[:], projection)
			return hash, nil
		},
	)
}

// BlobCodec returns the wire codec for raw content bytes.
func BlobCodec() serial.Bytes {
	return serial.Bytes{}
}

// EntryCodec returns the wire codec for a single node entry: the name
// followed by the address.
func EntryCodec() serial.PairCodec[string, Hash, serial.String, serial.Scalar[Hash]] {
	return serial.PairOf(serial.String{}, HashCodec())
}

// NodeCodec returns the wire codec for a node: a counted sequence of
// entries in order.
func NodeCodec() serial.Sequence[Entry, serial.PairCodec[string, Hash, serial.String, serial.Scalar[Hash]]] {
	return serial.SequenceOf(EntryCodec())
}

// CommitCodec returns the wire codec for a commit: the tree address,
// then the optional parent address, then the message.
func CommitCodec() serial.PairCodec[
	Hash, serial.Pair[*Hash, string],
	serial.Scalar[Hash],
	serial.PairCodec[*Hash, string, serial.Option[Hash, serial.Scalar[Hash]], serial.String],
] {
	return serial.PairOf(HashCodec(), serial.PairOf(OptionOfHash(), serial.String{}))
}

// OptionOfHash returns the wire codec for an optional Hash.
func OptionOfHash() serial.Option[Hash, serial.Scalar[Hash]] {
	return serial.OptionOf(HashCodec())
}

// Address encodes value with its codec into an exact-size buffer and
// returns the node-domain BLAKE3 address of the encoding. The encode
// must fill the buffer exactly — a codec whose Size disagrees with
// its Write is a bug, and addressing a partial encoding would mint a
// wrong address for the value.
func Address[T any, C serial.Codec[T]](codec C, value T) (Hash, error) {
	buffer := wirebuf.New(codec.Size(value))
	if err := codec.Write(buffer, value); err != nil {
		return Hash{}, fmt.Errorf("encoding for addressing: %w", err)
	}
	if buffer.Remaining() != 0 {
		return Hash{}, fmt.Errorf("encoding for addressing: produced %d of %d declared bytes",
			buffer.Cursor(), buffer.Capacity())
	}
	return HashNode(buffer.Bytes()), nil
}
