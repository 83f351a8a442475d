package postings

// PositionalEntry is one doc's occurrences of a (term, field) pair in a
// field that carries positions (title, authors). Positions must already be
// sorted strictly increasing.
type PositionalEntry struct {
	DocID     uint32
	Positions []uint32
}

// FreqEntry is one doc's occurrence count for a (term, field) pair in a
// frequency-only field.
type FreqEntry struct {
	DocID uint32
	TF    uint32
}

// EncodePositional emits entries (docId-delta, nPos, posDelta...) per spec
// §3. entries must already be sorted by ascending DocID.
func EncodePositional(entries []PositionalEntry) []byte {
	buf := make([]byte, 0, len(entries)*4)
	var prevDoc uint32
	for _, e := range entries {
		buf = appendUvarint(buf, uint64(e.DocID-prevDoc))
		prevDoc = e.DocID
		buf = appendUvarint(buf, uint64(len(e.Positions)))
		var prevPos uint32
		for _, p := range e.Positions {
			buf = appendUvarint(buf, uint64(p-prevPos))
			prevPos = p
		}
	}
	return buf
}

// EncodeFreq emits entries (docId-delta, tf) per spec §3. entries must
// already be sorted by ascending DocID.
func EncodeFreq(entries []FreqEntry) []byte {
	buf := make([]byte, 0, len(entries)*2)
	var prevDoc uint32
	for _, e := range entries {
		buf = appendUvarint(buf, uint64(e.DocID-prevDoc))
		prevDoc = e.DocID
		buf = appendUvarint(buf, uint64(e.TF))
	}
	return buf
}
