// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package wirebuf

import (
	"encoding/hex"
	"fmt"
	"strings"
)

// Dump renders the buffer's cursor position, capacity, and a hex dump
// of the full backing region. Used for decode-failure diagnostics; the
// output is advisory and its format is not part of any contract.
func (b *Buffer) Dump() string {
	var out strings.Builder
	fmt.Fprintf(&out, "buffer cursor=%d capacity=%d\n", b.cursor, len(b.backing))
	out.WriteString(hex.Dump(b.backing))
	return out.String()
}
