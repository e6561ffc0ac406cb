// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package serial

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/bureau-foundation/caswire/lib/wirebuf"
)

// Sequence is the codec for an ordered list of E: a 4-byte big-endian
// element count followed by that many E-encodings in list order. Order
// is preserved exactly — elements are not sorted or deduplicated.
type Sequence[E any, C Codec[E]] struct {
	Element C
}

// SequenceOf builds a sequence codec from an element codec.
func SequenceOf[E any, C Codec[E]](element C) Sequence[E, C] {
	return Sequence[E, C]{Element: element}
}

func (s Sequence[E, C]) Size(values []E) int {
	size := 4
	for _, value := range values {
		size += s.Element.Size(value)
	}
	return size
}

func (s Sequence[E, C]) Write(buffer *wirebuf.Buffer, values []E) error {
	if err := buffer.WriteUint32(uint32(len(values))); err != nil {
		return fmt.Errorf("writing sequence count: %w", err)
	}
	for index, value := range values {
		if err := s.Element.Write(buffer, value); err != nil {
			return fmt.Errorf("writing sequence element %d: %w", index, err)
		}
	}
	return nil
}

func (s Sequence[E, C]) Read(buffer *wirebuf.Buffer) ([]E, error) {
	count, err := buffer.ReadUint32()
	if err != nil {
		return nil, fmt.Errorf("reading sequence count: %w", err)
	}
	// A corrupt count can claim far more elements than the buffer
	// holds. Cap the preallocation at the remaining byte count; the
	// element reads below fail with an overrun before the claimed
	// count is ever reached. Compare in uint64 so a count that does
	// not fit a 32-bit int never reaches the conversion.
	capacity := buffer.Remaining()
	if uint64(count) < uint64(capacity) {
		capacity = int(count)
	}
	values := make([]E, 0, capacity)
	for index := 0; index < int(count); index++ {
		value, err := s.Element.Read(buffer)
		if err != nil {
			return nil, fmt.Errorf("reading sequence element %d of %d: %w", index, count, err)
		}
		values = append(values, value)
	}
	return values, nil
}

func (s Sequence[E, C]) Pretty(values []E) string {
	parts := make([]string, len(values))
	for index, value := range values {
		parts[index] = s.Element.Pretty(value)
	}
	return "[" + strings.Join(parts, "; ") + "]"
}

func (s Sequence[E, C]) ToJSON(values []E) ([]byte, error) {
	elements := make([]json.RawMessage, len(values))
	for index, value := range values {
		element, err := s.Element.ToJSON(value)
		if err != nil {
			return nil, fmt.Errorf("rendering sequence element %d: %w", index, err)
		}
		elements[index] = element
	}
	return json.Marshal(elements)
}

func (s Sequence[E, C]) FromJSON(data []byte) ([]E, error) {
	var elements []json.RawMessage
	if err := json.Unmarshal(data, &elements); err != nil {
		return nil, fmt.Errorf("%w: sequence JSON: %v", ErrMalformed, err)
	}
	values := make([]E, 0, len(elements))
	for index, element := range elements {
		value, err := s.Element.FromJSON(element)
		if err != nil {
			return nil, fmt.Errorf("parsing sequence element %d: %w", index, err)
		}
		values = append(values, value)
	}
	return values, nil
}
