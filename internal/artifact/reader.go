package artifact

import (
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/AntonIsraelsson/cryptobib-search/internal/types"
)

// ErrLoad indicates a fatal artifact load failure: missing file, malformed
// header, or an out-of-range length (spec §7, LoadError).
var ErrLoad = errors.New("artifact: load error")

// Dict is the decoded, validated term dictionary for one tier: a packed
// blob plus an offset array, searched directly rather than materialized
// into a []string (spec §4.6, §9 "sorted arrays + binary search").
type Dict struct {
	Blob    []byte
	Offsets []uint32
}

// Len returns the number of terms.
func (d *Dict) Len() int { return len(d.Offsets) - 1 }

// Term returns term i.
func (d *Dict) Term(i int) string {
	return string(d.Blob[d.Offsets[i]:d.Offsets[i+1]])
}

// LowerBound returns the index of the first term >= target.
func (d *Dict) LowerBound(target string) int {
	return sort.Search(d.Len(), func(i int) bool { return d.Term(i) >= target })
}

// PrefixMap buckets term ids by their first min(4,|term|) bytes into the
// [lo, hi) range of term ids sharing that prefix, built once at load time
// (spec §4.6). Prefix expansion in package resolve binary-searches the whole
// dictionary and does not consult this map.
type PrefixMap map[string][2]int

func buildPrefixMap(d *Dict) PrefixMap {
	pm := make(PrefixMap)
	for i := 0; i < d.Len(); i++ {
		term := d.Term(i)
		n := len(term)
		if n > 4 {
			n = 4
		}
		key := term[:n]
		r, ok := pm[key]
		if !ok {
			pm[key] = [2]int{i, i + 1}
		} else {
			pm[key] = [2]int{r[0], i + 1}
		}
	}
	return pm
}

// Ptrs is the decoded per-term pointer table for one tier.
type Ptrs struct {
	Start  map[types.Field][]uint32
	Length map[types.Field][]uint32
}

// Tier bundles everything loaded for one tier.
type Tier struct {
	Meta      Meta
	Dict      *Dict
	PrefixMap PrefixMap
	Ptrs      *Ptrs
	Postings  []byte
}

// Docstore bundles the shared, tier-independent docstore artifacts.
type Docstore struct {
	Offsets []uint32
	Blob    []byte
}

func readFile(dir, name string) ([]byte, error) {
	data, err := os.ReadFile(filepath.Join(dir, name))
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrLoad, name, err)
	}
	return data, nil
}

func decodeDict(data []byte, name string) (*Dict, error) {
	if len(data) < 8 {
		return nil, fmt.Errorf("%w: %s: truncated header", ErrLoad, name)
	}
	numTerms := binary.LittleEndian.Uint32(data[0:4])
	termBytesLen := binary.LittleEndian.Uint32(data[4:8])
	offsetsStart := 8
	offsetsLen := int(numTerms+1) * 4
	if offsetsStart+offsetsLen > len(data) {
		return nil, fmt.Errorf("%w: %s: offsets run past end of file", ErrLoad, name)
	}
	offsets := make([]uint32, numTerms+1)
	for i := range offsets {
		offsets[i] = binary.LittleEndian.Uint32(data[offsetsStart+i*4 : offsetsStart+i*4+4])
		if i > 0 && offsets[i] < offsets[i-1] {
			return nil, fmt.Errorf("%w: %s: non-nondecreasing term offsets", ErrLoad, name)
		}
		if offsets[i] > termBytesLen {
			return nil, fmt.Errorf("%w: %s: offset %d exceeds termBytesLen %d", ErrLoad, name, offsets[i], termBytesLen)
		}
	}
	blobStart := offsetsStart + offsetsLen
	blobEnd := blobStart + int(termBytesLen)
	if blobEnd > len(data) {
		return nil, fmt.Errorf("%w: %s: term blob runs past end of file", ErrLoad, name)
	}
	return &Dict{Blob: data[blobStart:blobEnd], Offsets: offsets}, nil
}

func decodePtrs(data []byte, tier types.Tier, numTerms int, postingsLen int, name string) (*Ptrs, error) {
	fields := fieldOrderFor(tier)
	want := len(fields) * numTerms * 8
	if len(data) != want {
		return nil, fmt.Errorf("%w: %s: expected %d bytes, got %d", ErrLoad, name, want, len(data))
	}
	start := make(map[types.Field][]uint32, len(fields))
	length := make(map[types.Field][]uint32, len(fields))
	pos := 0
	for _, f := range fields {
		s := make([]uint32, numTerms)
		for i := 0; i < numTerms; i++ {
			s[i] = binary.LittleEndian.Uint32(data[pos : pos+4])
			pos += 4
		}
		l := make([]uint32, numTerms)
		for i := 0; i < numTerms; i++ {
			l[i] = binary.LittleEndian.Uint32(data[pos : pos+4])
			pos += 4
		}
		for i := 0; i < numTerms; i++ {
			end := uint64(s[i]) + uint64(l[i])
			if end > uint64(postingsLen) {
				return nil, fmt.Errorf("%w: %s: field %v term %d range [%d,%d) exceeds postings length %d", ErrLoad, name, f, i, s[i], end, postingsLen)
			}
		}
		start[f] = s
		length[f] = l
	}
	return &Ptrs{Start: start, Length: length}, nil
}

// LoadTier reads and validates one tier's artifacts from dir.
func LoadTier(dir string, tier types.Tier) (*Tier, error) {
	dictFile, ptrsFile, postingsFile, metaFile := CoreDictFile, CorePtrsFile, CorePostingsFile, CoreMetaFile
	if tier == types.TierExtended {
		dictFile, ptrsFile, postingsFile, metaFile = ExtDictFile, ExtPtrsFile, ExtPostingsFile, ExtMetaFile
	}

	metaRaw, err := readFile(dir, metaFile)
	if err != nil {
		return nil, err
	}
	var meta Meta
	if err := json.Unmarshal(metaRaw, &meta); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrLoad, metaFile, err)
	}

	dictRaw, err := readFile(dir, dictFile)
	if err != nil {
		return nil, err
	}
	dict, err := decodeDict(dictRaw, dictFile)
	if err != nil {
		return nil, err
	}
	if dict.Len() != int(meta.NumTerms) {
		return nil, fmt.Errorf("%w: %s: numTerms %d does not match %s (%d)", ErrLoad, dictFile, dict.Len(), metaFile, meta.NumTerms)
	}

	postings, err := readFile(dir, postingsFile)
	if err != nil {
		return nil, err
	}

	ptrsRaw, err := readFile(dir, ptrsFile)
	if err != nil {
		return nil, err
	}
	ptrs, err := decodePtrs(ptrsRaw, tier, dict.Len(), len(postings), ptrsFile)
	if err != nil {
		return nil, err
	}

	return &Tier{
		Meta:      meta,
		Dict:      dict,
		PrefixMap: buildPrefixMap(dict),
		Ptrs:      ptrs,
		Postings:  postings,
	}, nil
}

// LoadDocstore reads doc.index.bin and doc.blob.bin.
func LoadDocstore(dir string, numDocs uint32) (*Docstore, error) {
	idxRaw, err := readFile(dir, DocIndexFile)
	if err != nil {
		return nil, err
	}
	wantLen := int(numDocs+1) * 4
	if len(idxRaw) != wantLen {
		return nil, fmt.Errorf("%w: %s: expected %d bytes, got %d", ErrLoad, DocIndexFile, wantLen, len(idxRaw))
	}
	offsets := make([]uint32, numDocs+1)
	for i := range offsets {
		offsets[i] = binary.LittleEndian.Uint32(idxRaw[i*4 : i*4+4])
		if i > 0 && offsets[i] < offsets[i-1] {
			return nil, fmt.Errorf("%w: %s: non-nondecreasing offsets", ErrLoad, DocIndexFile)
		}
	}
	blob, err := readFile(dir, DocBlobFile)
	if err != nil {
		return nil, err
	}
	if int(offsets[len(offsets)-1]) > len(blob) {
		return nil, fmt.Errorf("%w: %s: final offset %d exceeds blob length %d", ErrLoad, DocBlobFile, offsets[len(offsets)-1], len(blob))
	}
	return &Docstore{Offsets: offsets, Blob: blob}, nil
}

// LoadIDMap reads idmap.json.
func LoadIDMap(dir string) (map[string]uint32, error) {
	raw, err := readFile(dir, IDMapFile)
	if err != nil {
		return nil, err
	}
	var m map[string]uint32
	if err := json.Unmarshal(raw, &m); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrLoad, IDMapFile, err)
	}
	return m, nil
}
