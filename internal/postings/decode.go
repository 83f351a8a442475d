package postings

import (
	"encoding/binary"
	"errors"
	"fmt"
)

// ErrDecode indicates a corrupt posting list: a malformed varint, a length
// mismatch against the declared byte range, or a non-increasing delta.
// Fatal per spec §7 (DecodeError) — it always indicates a corrupt artifact.
var ErrDecode = errors.New("postings: corrupt posting list")

func readUvarint(data []byte, pos int) (v uint64, next int, err error) {
	v, n := binary.Uvarint(data[pos:])
	if n <= 0 {
		return 0, pos, fmt.Errorf("%w: malformed varint at byte %d", ErrDecode, pos)
	}
	return v, pos + n, nil
}

// DecodePositional decodes a byte range encoded by EncodePositional. It
// must consume exactly len(data) bytes.
func DecodePositional(data []byte) (docs []uint32, positions [][]uint32, err error) {
	pos := 0
	var prevDoc uint64
	first := true
	for pos < len(data) {
		var delta, nPos uint64
		delta, pos, err = readUvarint(data, pos)
		if err != nil {
			return nil, nil, err
		}
		if !first && delta == 0 {
			return nil, nil, fmt.Errorf("%w: non-increasing docId delta", ErrDecode)
		}
		first = false
		docID := prevDoc + delta
		prevDoc = docID
		nPos, pos, err = readUvarint(data, pos)
		if err != nil {
			return nil, nil, err
		}
		posList := make([]uint32, nPos)
		var prevPos uint64
		firstPos := true
		for i := uint64(0); i < nPos; i++ {
			var pdelta uint64
			pdelta, pos, err = readUvarint(data, pos)
			if err != nil {
				return nil, nil, err
			}
			if !firstPos && pdelta == 0 {
				return nil, nil, fmt.Errorf("%w: non-increasing position delta", ErrDecode)
			}
			firstPos = false
			p := prevPos + pdelta
			posList[i] = uint32(p)
			prevPos = p
		}
		docs = append(docs, uint32(docID))
		positions = append(positions, posList)
	}
	if pos != len(data) {
		return nil, nil, fmt.Errorf("%w: trailing %d bytes", ErrDecode, len(data)-pos)
	}
	return docs, positions, nil
}

// DecodeFreq decodes a byte range encoded by EncodeFreq. It must consume
// exactly len(data) bytes.
func DecodeFreq(data []byte) (docs []uint32, tfs []uint32, err error) {
	pos := 0
	var prevDoc uint64
	first := true
	for pos < len(data) {
		var delta, tf uint64
		delta, pos, err = readUvarint(data, pos)
		if err != nil {
			return nil, nil, err
		}
		if !first && delta == 0 {
			return nil, nil, fmt.Errorf("%w: non-increasing docId delta", ErrDecode)
		}
		first = false
		docID := prevDoc + delta
		prevDoc = docID
		tf, pos, err = readUvarint(data, pos)
		if err != nil {
			return nil, nil, err
		}
		docs = append(docs, uint32(docID))
		tfs = append(tfs, uint32(tf))
	}
	if pos != len(data) {
		return nil, nil, fmt.Errorf("%w: trailing %d bytes", ErrDecode, len(data)-pos)
	}
	return docs, tfs, nil
}
