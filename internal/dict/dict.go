// Package dict implements the dictionary builder (C2, spec §4.2): it
// accumulates distinct terms across a tier's fields in insertion order,
// then finalizes them into a byte-wise sorted term blob plus offset array,
// producing the permutation callers use to reindex their posting maps.
package dict

import "sort"

// Builder accumulates terms for one tier. Term ids it hands out during
// accumulation are insertion-order ("provisional"); Finalize renumbers them
// to sorted order and returns the permutation old->new.
type Builder struct {
	ids   map[string]int
	terms []string
}

// NewBuilder returns an empty Builder.
func NewBuilder() *Builder {
	return &Builder{ids: make(map[string]int)}
}

// Intern returns the provisional term id for term, assigning a new one on
// first sight.
func (b *Builder) Intern(term string) int {
	if id, ok := b.ids[term]; ok {
		return id
	}
	id := len(b.terms)
	b.ids[term] = id
	b.terms = append(b.terms, term)
	return id
}

// Dict is the finalized, sorted term dictionary for one tier.
type Dict struct {
	Terms []string // sorted, unique, byte-wise increasing

	// Permutation maps a provisional (insertion-order) term id to its
	// final sorted term id. len(Permutation) == len(Terms).
	Permutation []int
}

// Finalize sorts the accumulated terms by byte order and computes the
// insertion-order -> sorted-order permutation.
func (b *Builder) Finalize() *Dict {
	n := len(b.terms)
	order := make([]int, n)
	for i := range order {
		order[i] = i
	}
	sort.Slice(order, func(i, j int) bool {
		return b.terms[order[i]] < b.terms[order[j]]
	})
	sorted := make([]string, n)
	perm := make([]int, n)
	for newID, oldID := range order {
		sorted[newID] = b.terms[oldID]
		perm[oldID] = newID
	}
	return &Dict{Terms: sorted, Permutation: perm}
}

// Blob concatenates Terms into a single byte blob plus a length-(n+1)
// offset array delimiting term i as blob[offsets[i]:offsets[i+1]], the
// on-disk layout of dict.bin (spec §4.5).
func (d *Dict) Blob() (blob []byte, offsets []uint32) {
	offsets = make([]uint32, len(d.Terms)+1)
	var off uint32
	for i, term := range d.Terms {
		offsets[i] = off
		off += uint32(len(term))
	}
	offsets[len(d.Terms)] = off
	blob = make([]byte, 0, off)
	for _, term := range d.Terms {
		blob = append(blob, term...)
	}
	return blob, offsets
}
