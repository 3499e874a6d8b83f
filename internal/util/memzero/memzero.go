// Package memzero scrubs sensitive byte buffers once they are no
// longer needed: shared secrets, derived keys, and IVs that would
// otherwise sit in the heap for the lifetime of the garbage collector.
package memzero

import "crypto/subtle"

// Zero overwrites b with zeros in a constant-time friendly way.
func Zero(b []byte) {
	if len(b) == 0 {
		return
	}
	zero := make([]byte, len(b))
	subtle.ConstantTimeCopy(1, b, zero)
}
