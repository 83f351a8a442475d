package docstore

import (
	"testing"

	"github.com/AntonIsraelsson/cryptobib-search/internal/types"
)

func sample() []types.Record {
	return []types.Record{
		{ID: 0, Key: "K1", Title: "Authenticated Encryption", AuthorsStr: "Rogaway, P", Venue: "CCS", Year: 2002},
		{ID: 1, Key: "K2", Title: "Zero Knowledge Proofs", AuthorsStr: "Bellare, M; Rogaway, P", Venue: "CRYPTO", Year: 1993},
	}
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	recs := sample()
	blob, offsets := Encode(recs)
	if len(offsets) != len(recs)+1 {
		t.Fatalf("offsets len = %d, want %d", len(offsets), len(recs)+1)
	}
	for _, r := range recs {
		got, err := Decode(blob, offsets, r.ID)
		if err != nil {
			t.Fatalf("Decode(%d): %v", r.ID, err)
		}
		if got.Key != r.Key || got.Title != r.Title || got.Year != r.Year {
			t.Errorf("Decode(%d) = %+v, want key=%s title=%s year=%d", r.ID, got, r.Key, r.Title, r.Year)
		}
	}
}

func TestDecodeOutOfRange(t *testing.T) {
	recs := sample()
	blob, offsets := Encode(recs)
	if _, err := Decode(blob, offsets, 99); err == nil {
		t.Fatal("expected error for out-of-range docId")
	}
}

func TestBuildKeyMapIsBijection(t *testing.T) {
	recs := sample()
	m := BuildKeyMap(recs)
	if len(m) != len(recs) {
		t.Fatalf("keymap len = %d, want %d", len(m), len(recs))
	}
	seen := make(map[uint32]bool)
	for _, id := range m {
		if seen[id] {
			t.Fatalf("duplicate docId %d in keymap", id)
		}
		seen[id] = true
	}
}
