// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package serial

import (
	"encoding/json"
	"fmt"

	"github.com/bureau-foundation/caswire/lib/wirebuf"
)

// Pair is an ordered 2-tuple. The components carry no semantic roles
// beyond first and second; the diagnostic JSON form uses those neutral
// labels.
type Pair[K, V any] struct {
	First  K
	Second V
}

// PairCodec encodes a Pair as the K-encoding immediately followed by
// the V-encoding, with no separator or length prefix — each component
// codec derives its own length. The binary layout carries no field
// labels; the labels in the JSON form exist purely for human
// inspection.
type PairCodec[K, V any, CK Codec[K], CV Codec[V]] struct {
	first  CK
	second CV
}

// PairOf builds a pair codec from the two component codecs.
func PairOf[K, V any, CK Codec[K], CV Codec[V]](first CK, second CV) PairCodec[K, V, CK, CV] {
	return PairCodec[K, V, CK, CV]{first: first, second: second}
}

func (p PairCodec[K, V, CK, CV]) Size(value Pair[K, V]) int {
	return p.first.Size(value.First) + p.second.Size(value.Second)
}

func (p PairCodec[K, V, CK, CV]) Write(buffer *wirebuf.Buffer, value Pair[K, V]) error {
	if err := p.first.Write(buffer, value.First); err != nil {
		return fmt.Errorf("writing pair first component: %w", err)
	}
	if err := p.second.Write(buffer, value.Second); err != nil {
		return fmt.Errorf("writing pair second component: %w", err)
	}
	return nil
}

func (p PairCodec[K, V, CK, CV]) Read(buffer *wirebuf.Buffer) (Pair[K, V], error) {
	var value Pair[K, V]
	first, err := p.first.Read(buffer)
	if err != nil {
		return value, fmt.Errorf("reading pair first component: %w", err)
	}
	second, err := p.second.Read(buffer)
	if err != nil {
		return value, fmt.Errorf("reading pair second component: %w", err)
	}
	value.First = first
	value.Second = second
	return value, nil
}

func (p PairCodec[K, V, CK, CV]) Pretty(value Pair[K, V]) string {
	return "(" + p.first.Pretty(value.First) + ", " + p.second.Pretty(value.Second) + ")"
}

// pairJSON is the diagnostic JSON shape of a pair.
type pairJSON struct {
	First  json.RawMessage `json:"first"`
	Second json.RawMessage `json:"second"`
}

func (p PairCodec[K, V, CK, CV]) ToJSON(value Pair[K, V]) ([]byte, error) {
	first, err := p.first.ToJSON(value.First)
	if err != nil {
		return nil, fmt.Errorf("rendering pair first component: %w", err)
	}
	second, err := p.second.ToJSON(value.Second)
	if err != nil {
		return nil, fmt.Errorf("rendering pair second component: %w", err)
	}
	return json.Marshal(pairJSON{First: first, Second: second})
}

func (p PairCodec[K, V, CK, CV]) FromJSON(data []byte) (Pair[K, V], error) {
	var value Pair[K, V]
	var fields pairJSON
	if err := json.Unmarshal(data, &fields); err != nil {
		return value, fmt.Errorf("%w: pair JSON: %v", ErrMalformed, err)
	}
	first, err := p.first.FromJSON(fields.First)
	if err != nil {
		return value, fmt.Errorf("parsing pair first component: %w", err)
	}
	second, err := p.second.FromJSON(fields.Second)
	if err != nil {
		return value, fmt.Errorf("parsing pair second component: %w", err)
	}
	value.First = first
	value.Second = second
	return value, nil
}
