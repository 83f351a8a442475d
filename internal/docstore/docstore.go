// Package docstore implements the docstore emitter (C4, spec §4.4): a
// byte blob of one retrievable record per docId plus an offset array, and
// the key->id side map. Each record is encoded as one self-delimiting JSON
// line, a line-delimited structured text format the spec explicitly allows.
package docstore

import (
	"encoding/json"
	"fmt"

	"github.com/AntonIsraelsson/cryptobib-search/internal/types"
)

type record struct {
	ID         uint32 `json:"id"`
	Key        string `json:"key"`
	Title      string `json:"title"`
	AuthorsStr string `json:"authors_str"`
	Venue      string `json:"venue,omitempty"`
	Year       int32  `json:"year,omitempty"`
	PageRange  string `json:"page_range,omitempty"`
	DOI        string `json:"doi,omitempty"`
}

// Encode serializes records (assumed indexed by docId == index) into a
// single blob plus a length-(numDocs+1) offset array, the doc.blob.bin /
// doc.index.bin pair (spec §4.5).
func Encode(records []types.Record) (blob []byte, offsets []uint32) {
	offsets = make([]uint32, len(records)+1)
	var off uint32
	for i, r := range records {
		offsets[i] = off
		line, err := json.Marshal(toWire(r))
		if err != nil {
			// Record fields are all plain strings/ints; Marshal can
			// only fail here on an unsupported type, which would be
			// a programming error, not a runtime condition.
			panic(fmt.Sprintf("docstore: encode record %d: %v", r.ID, err))
		}
		line = append(line, '\n')
		blob = append(blob, line...)
		off += uint32(len(line))
	}
	offsets[len(records)] = off
	return blob, offsets
}

func toWire(r types.Record) record {
	return record{
		ID:         r.ID,
		Key:        r.Key,
		Title:      r.Title,
		AuthorsStr: r.AuthorsStr,
		Venue:      r.Venue,
		Year:       r.Year,
		PageRange:  r.PageRange,
		DOI:        r.DOI,
	}
}

// Decode materializes the record at docId from blob using offsets.
func Decode(blob []byte, offsets []uint32, docID uint32) (types.Result, error) {
	if int(docID)+1 >= len(offsets) {
		return types.Result{}, fmt.Errorf("docstore: docId %d out of range", docID)
	}
	start, end := offsets[docID], offsets[docID+1]
	if end < start || int(end) > len(blob) {
		return types.Result{}, fmt.Errorf("docstore: corrupt offsets for docId %d", docID)
	}
	var rec record
	if err := json.Unmarshal(blob[start:end], &rec); err != nil {
		return types.Result{}, fmt.Errorf("docstore: decode docId %d: %w", docID, err)
	}
	return types.Result{
		ID:         rec.ID,
		Key:        rec.Key,
		Title:      rec.Title,
		AuthorsStr: rec.AuthorsStr,
		Venue:      rec.Venue,
		Year:       rec.Year,
		PageRange:  rec.PageRange,
		DOI:        rec.DOI,
	}, nil
}

// BuildKeyMap produces the key->docId side artifact (idmap.json), a
// bijection onto {0,...,numDocs-1} per spec §3 invariants.
func BuildKeyMap(records []types.Record) map[string]uint32 {
	m := make(map[string]uint32, len(records))
	for _, r := range records {
		m[r.Key] = r.ID
	}
	return m
}
