package artifact

import (
	"os"
	"testing"

	"github.com/AntonIsraelsson/cryptobib-search/internal/types"
)

func TestTierRoundTrip(t *testing.T) {
	dir := t.TempDir()
	w := NewWriter(dir)

	termBlob := []byte("appleauthzebra")
	termOffsets := []uint32{0, 5, 9, 14} // "apple","auth","zebra"
	numTerms := 3

	start := map[types.Field][]uint32{
		types.FieldTitle:   {0, 10, 0},
		types.FieldAuthors: {0, 0, 20},
		types.FieldKey:     {0, 0, 0},
	}
	length := map[types.Field][]uint32{
		types.FieldTitle:   {5, 5, 0},
		types.FieldAuthors: {0, 0, 5},
		types.FieldKey:     {0, 0, 0},
	}
	postings := make([]byte, 25)

	meta := Meta{Version: "v1", BuildID: "test-build"}
	if err := w.WriteTier(types.TierCore, meta, termBlob, termOffsets, start, length, postings); err != nil {
		t.Fatalf("WriteTier: %v", err)
	}

	tier, err := LoadTier(dir, types.TierCore)
	if err != nil {
		t.Fatalf("LoadTier: %v", err)
	}
	if tier.Dict.Len() != numTerms {
		t.Fatalf("Len() = %d, want %d", tier.Dict.Len(), numTerms)
	}
	if tier.Dict.Term(0) != "apple" || tier.Dict.Term(1) != "auth" || tier.Dict.Term(2) != "zebra" {
		t.Fatalf("terms = %q %q %q", tier.Dict.Term(0), tier.Dict.Term(1), tier.Dict.Term(2))
	}
	if got := tier.Ptrs.Start[types.FieldAuthors][2]; got != 20 {
		t.Errorf("authors start[2] = %d, want 20", got)
	}
	if tier.Meta.Version != "v1" {
		t.Errorf("meta version = %q", tier.Meta.Version)
	}
}

func TestLowerBound(t *testing.T) {
	dir := t.TempDir()
	w := NewWriter(dir)
	termBlob := []byte("appleauthzebra")
	termOffsets := []uint32{0, 5, 9, 14}
	start := map[types.Field][]uint32{types.FieldTitle: {0, 0, 0}, types.FieldAuthors: {0, 0, 0}, types.FieldKey: {0, 0, 0}}
	length := map[types.Field][]uint32{types.FieldTitle: {0, 0, 0}, types.FieldAuthors: {0, 0, 0}, types.FieldKey: {0, 0, 0}}
	w.WriteTier(types.TierCore, Meta{Version: "v1"}, termBlob, termOffsets, start, length, nil)
	tier, err := LoadTier(dir, types.TierCore)
	if err != nil {
		t.Fatalf("LoadTier: %v", err)
	}
	for i := 0; i < tier.Dict.Len(); i++ {
		term := tier.Dict.Term(i)
		if got := tier.Dict.LowerBound(term); got != i {
			t.Errorf("LowerBound(%q) = %d, want %d", term, got, i)
		}
	}
}

func TestLoadTierRejectsLengthMismatch(t *testing.T) {
	dir := t.TempDir()
	w := NewWriter(dir)
	termBlob := []byte("abc")
	termOffsets := []uint32{0, 3}
	start := map[types.Field][]uint32{types.FieldTitle: {0}, types.FieldAuthors: {0}, types.FieldKey: {0}}
	length := map[types.Field][]uint32{types.FieldTitle: {0}, types.FieldAuthors: {0}, types.FieldKey: {0}}
	if err := w.WriteTier(types.TierCore, Meta{Version: "v1"}, termBlob, termOffsets, start, length, nil); err != nil {
		t.Fatalf("WriteTier: %v", err)
	}
	// Corrupt meta.json's NumTerms so it disagrees with dict.bin.
	metaPath := dir + "/" + CoreMetaFile
	badMeta := []byte(`{"version":"v1","num_terms":99}`)
	if err := os.WriteFile(metaPath, badMeta, 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadTier(dir, types.TierCore); err == nil {
		t.Fatal("expected load error on numTerms mismatch")
	}
}
