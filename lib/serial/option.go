// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package serial

import (
	"bytes"
	"fmt"

	"github.com/bureau-foundation/caswire/lib/wirebuf"
)

// Option is the codec for zero-or-one E, represented as *E with nil
// for absence. The encoding delegates to Sequence with length 0 or 1;
// any decoded length other than 0 or 1 fails with
// ErrMalformedOptional.
type Option[E any, C Codec[E]] struct {
	sequence Sequence[E, C]
}

// OptionOf builds an optional codec from an element codec.
func OptionOf[E any, C Codec[E]](element C) Option[E, C] {
	return Option[E, C]{sequence: SequenceOf(element)}
}

func (o Option[E, C]) asList(value *E) []E {
	if value == nil {
		return nil
	}
	return []E{*value}
}

func (o Option[E, C]) Size(value *E) int {
	return o.sequence.Size(o.asList(value))
}

func (o Option[E, C]) Write(buffer *wirebuf.Buffer, value *E) error {
	return o.sequence.Write(buffer, o.asList(value))
}

func (o Option[E, C]) Read(buffer *wirebuf.Buffer) (*E, error) {
	values, err := o.sequence.Read(buffer)
	if err != nil {
		return nil, err
	}
	switch len(values) {
	case 0:
		return nil, nil
	case 1:
		return &values[0], nil
	default:
		return nil, fmt.Errorf("%w: element count %d", ErrMalformedOptional, len(values))
	}
}

func (o Option[E, C]) Pretty(value *E) string {
	if value == nil {
		return "none"
	}
	return "some " + o.sequence.Element.Pretty(*value)
}

func (o Option[E, C]) ToJSON(value *E) ([]byte, error) {
	if value == nil {
		return []byte("null"), nil
	}
	return o.sequence.Element.ToJSON(*value)
}

func (o Option[E, C]) FromJSON(data []byte) (*E, error) {
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		return nil, nil
	}
	value, err := o.sequence.Element.FromJSON(data)
	if err != nil {
		return nil, err
	}
	return &value, nil
}
