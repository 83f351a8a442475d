package postings

import (
	"reflect"
	"testing"
)

func TestPositionalRoundTrip(t *testing.T) {
	entries := []PositionalEntry{
		{DocID: 0, Positions: []uint32{0, 3, 7}},
		{DocID: 2, Positions: []uint32{1}},
		{DocID: 9, Positions: []uint32{0, 1, 2}},
	}
	data := EncodePositional(entries)
	docs, positions, err := DecodePositional(data)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	wantDocs := []uint32{0, 2, 9}
	if !reflect.DeepEqual(docs, wantDocs) {
		t.Errorf("docs = %v, want %v", docs, wantDocs)
	}
	for i, e := range entries {
		if !reflect.DeepEqual(positions[i], e.Positions) {
			t.Errorf("positions[%d] = %v, want %v", i, positions[i], e.Positions)
		}
	}
}

func TestPositionalReencodeMatchesOriginalBytes(t *testing.T) {
	entries := []PositionalEntry{
		{DocID: 1, Positions: []uint32{0, 5}},
		{DocID: 4, Positions: []uint32{2}},
	}
	data := EncodePositional(entries)
	docs, positions, err := DecodePositional(data)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	var reconstructed []PositionalEntry
	for i, d := range docs {
		reconstructed = append(reconstructed, PositionalEntry{DocID: d, Positions: positions[i]})
	}
	again := EncodePositional(reconstructed)
	if !reflect.DeepEqual(data, again) {
		t.Errorf("re-encoded bytes differ from original")
	}
}

func TestFreqRoundTrip(t *testing.T) {
	entries := []FreqEntry{
		{DocID: 0, TF: 2},
		{DocID: 5, TF: 1},
		{DocID: 100, TF: 9},
	}
	data := EncodeFreq(entries)
	docs, tfs, err := DecodeFreq(data)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	for i, e := range entries {
		if docs[i] != e.DocID || tfs[i] != e.TF {
			t.Errorf("entry %d = (%d,%d), want (%d,%d)", i, docs[i], tfs[i], e.DocID, e.TF)
		}
	}
}

func TestDecodeEmpty(t *testing.T) {
	docs, positions, err := DecodePositional(nil)
	if err != nil || docs != nil || positions != nil {
		t.Errorf("expected empty decode, got %v %v %v", docs, positions, err)
	}
}

func TestDecodeRejectsMalformedVarint(t *testing.T) {
	// A single 0xFF byte with the continuation bit set but no follow-up
	// byte is an incomplete varint.
	_, _, err := DecodeFreq([]byte{0xFF})
	if err == nil {
		t.Fatal("expected error for truncated varint")
	}
}

func TestDecodeRejectsTrailingBytes(t *testing.T) {
	data := EncodeFreq([]FreqEntry{{DocID: 0, TF: 1}})
	data = append(data, 0x00, 0x00)
	_, _, err := DecodeFreq(data)
	if err == nil {
		t.Fatal("expected error for malformed/extra bytes")
	}
}

func TestDecodeRejectsNonIncreasingDocID(t *testing.T) {
	// A second entry with docDelta=0 after the first implies a duplicate docId.
	data := EncodeFreq([]FreqEntry{{DocID: 3, TF: 1}})
	data = append(data, EncodeFreq([]FreqEntry{{DocID: 0, TF: 1}})...)
	_, _, err := DecodeFreq(data)
	if err == nil {
		t.Fatal("expected error for non-increasing docId")
	}
}
