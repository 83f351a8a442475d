// Package postings implements the postings encoder (C3, spec §4.3) and
// decoder (C9, spec §4.9): delta encoding of docIds and positions into
// unsigned LEB128 varints, and the reverse.
//
// The varint format itself (spec §3, GLOSSARY) is exactly
// encoding/binary's Uvarint/PutUvarint, so this package builds directly on
// the standard library rather than a third-party bit-packing dependency —
// no library in the retrieval pack implements this exact delta+varint
// posting codec (see DESIGN.md).
package postings

import "encoding/binary"

// appendUvarint appends the unsigned varint encoding of v to buf.
func appendUvarint(buf []byte, v uint64) []byte {
	var tmp [binary.MaxVarintLen64]byte
	n := binary.PutUvarint(tmp[:], v)
	return append(buf, tmp[:n]...)
}
