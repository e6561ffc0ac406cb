// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package cas provides the content-addressed store's leaf types and
// their serialization capabilities: BLAKE3 content hashes, store
// entries, and the node and commit shapes. Every codec here is
// composed purely from the combinators in lib/serial — new compound
// shapes require no new codec logic.
//
// Hashes use keyed BLAKE3 with ASCII domain-separation keys, so the
// same bytes hashed as a blob and as a node encoding can never
// collide across domains.
package cas

import (
	"encoding/hex"
	"fmt"

	"github.com/zeebo/blake3"
)

// Hash is a 32-byte BLAKE3 digest. All store addresses (blob and
// node) are this size.
type Hash [32]byte

// domainKey is a 32-byte key for BLAKE3 keyed hashing. The byte
// values are the ASCII encoding of the domain name, zero-padded to 32
// bytes, so the keys are inspectable in hex dumps without sacrificing
// any cryptographic property.
type domainKey [32]byte

// Domain separation keys. These are fixed protocol constants —
// changing them invalidates every existing address in that domain.
var (
	blobDomainKey = domainKey{
		'c', 'a', 's', 'w', 'i', 'r', 'e', '.', 'c', 'a', 's', '.',
		'b', 'l', 'o', 'b', 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0,
	}

	nodeDomainKey = domainKey{
		'c', 'a', 's', 'w', 'i', 'r', 'e', '.', 'c', 'a', 's', '.',
		'n', 'o', 'd', 'e', 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0,
	}
)

// HashBlob computes the blob-domain address of raw content bytes.
func HashBlob(data []byte) Hash {
	return keyedHash(blobDomainKey, data)
}

// HashNode computes the node-domain address of an encoded node or
// commit. Callers normally go through Address, which produces the
// encoding and hashes it in one step.
func HashNode(encoded []byte) Hash {
	return keyedHash(nodeDomainKey, encoded)
}

func keyedHash(key domainKey, data []byte) Hash {
	// NewKeyed requires exactly 32 bytes, which domainKey guarantees.
	// The error is only returned for wrong key length, so this cannot
	// fail with our fixed-size type.
	hasher, err := blake3.NewKeyed(key[:])
	if err != nil {
		panic("cas: BLAKE3 keyed hash initialization failed: " + err.Error())
	}
	hasher.Write(data)
	var hash Hash
	copy(hash[:], hasher.Sum(nil))
	return hash
}

// String returns the hex-encoded form of the hash. This is the
// canonical format in log output and diagnostics.
func (h Hash) String() string {
	return hex.EncodeToString(h[:])
}

// ParseHash parses a 64-character hex string into a Hash.
func ParseHash(hexString string) (Hash, error) {
	var hash Hash
	decoded, err := hex.DecodeString(hexString)
	if err != nil {
		return hash, fmt.Errorf("parsing hash: %w", err)
	}
	if len(decoded) != len(hash) {
		return hash, fmt.Errorf("hash is %d bytes, want %d", len(decoded), len(hash))
	}
	copy(hash[:], decoded)
	return hash, nil
}
