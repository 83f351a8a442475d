package dict

import "testing"

func TestFinalizeSortsAndPermutes(t *testing.T) {
	b := NewBuilder()
	idZebra := b.Intern("zebra")
	idApple := b.Intern("apple")
	idMango := b.Intern("mango")

	d := b.Finalize()
	want := []string{"apple", "mango", "zebra"}
	for i, term := range want {
		if d.Terms[i] != term {
			t.Fatalf("Terms[%d] = %q, want %q", i, d.Terms[i], term)
		}
	}
	if d.Permutation[idZebra] != 2 {
		t.Errorf("zebra permuted to %d, want 2", d.Permutation[idZebra])
	}
	if d.Permutation[idApple] != 0 {
		t.Errorf("apple permuted to %d, want 0", d.Permutation[idApple])
	}
	if d.Permutation[idMango] != 1 {
		t.Errorf("mango permuted to %d, want 1", d.Permutation[idMango])
	}
}

func TestInternIsIdempotent(t *testing.T) {
	b := NewBuilder()
	id1 := b.Intern("rogaway")
	id2 := b.Intern("rogaway")
	if id1 != id2 {
		t.Errorf("Intern not idempotent: %d != %d", id1, id2)
	}
}

func TestBlobRoundTrip(t *testing.T) {
	b := NewBuilder()
	b.Intern("authenticated")
	b.Intern("encryption")
	d := b.Finalize()
	blob, offsets := d.Blob()
	if len(offsets) != len(d.Terms)+1 {
		t.Fatalf("offsets len = %d, want %d", len(offsets), len(d.Terms)+1)
	}
	for i, term := range d.Terms {
		got := string(blob[offsets[i]:offsets[i+1]])
		if got != term {
			t.Errorf("blob[%d] = %q, want %q", i, got, term)
		}
	}
}
