package artifact

import (
	"encoding/binary"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/AntonIsraelsson/cryptobib-search/internal/types"
)

// Writer packs builder output into the fixed on-disk layout (spec §4.5),
// writing each file atomically (temp file + rename) to targetDir.
type Writer struct {
	Dir string
}

func NewWriter(dir string) *Writer {
	return &Writer{Dir: dir}
}

func (w *Writer) writeAtomic(name string, data []byte) error {
	if err := os.MkdirAll(w.Dir, 0o755); err != nil {
		return fmt.Errorf("artifact: mkdir %s: %w", w.Dir, err)
	}
	tmp, err := os.CreateTemp(w.Dir, "."+name+".tmp-*")
	if err != nil {
		return fmt.Errorf("artifact: create temp for %s: %w", name, err)
	}
	tmpPath := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("artifact: write %s: %w", name, err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("artifact: sync %s: %w", name, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("artifact: close %s: %w", name, err)
	}
	if err := os.Rename(tmpPath, filepath.Join(w.Dir, name)); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("artifact: rename into place %s: %w", name, err)
	}
	return nil
}

func le32(v uint32) []byte {
	b := make([]byte, 4)
	binary.LittleEndian.PutUint32(b, v)
	return b
}

// EncodeDict packs termBlob/termOffsets into dict.bin's byte layout: u32
// numTerms, u32 termBytesLen, u32[numTerms+1] termOffsets, u8[...] termBlob.
func EncodeDict(termBlob []byte, termOffsets []uint32) []byte {
	numTerms := uint32(len(termOffsets) - 1)
	termBytesLen := uint32(len(termBlob))
	buf := make([]byte, 0, 8+4*len(termOffsets)+len(termBlob))
	buf = append(buf, le32(numTerms)...)
	buf = append(buf, le32(termBytesLen)...)
	for _, off := range termOffsets {
		buf = append(buf, le32(off)...)
	}
	buf = append(buf, termBlob...)
	return buf
}

// EncodePtrs packs the per-term pointer table for a tier's fixed field
// order into ptrs.bin's struct-of-arrays layout (spec §4.5).
func EncodePtrs(tier types.Tier, start, length map[types.Field][]uint32, numTerms int) []byte {
	fields := fieldOrderFor(tier)
	buf := make([]byte, 0, len(fields)*numTerms*8)
	for _, f := range fields {
		s := start[f]
		l := length[f]
		for i := 0; i < numTerms; i++ {
			buf = append(buf, le32(s[i])...)
		}
		for i := 0; i < numTerms; i++ {
			buf = append(buf, le32(l[i])...)
		}
	}
	return buf
}

// EncodeDocIndex packs the numDocs+1 doc.index.bin offset array.
func EncodeDocIndex(offsets []uint32) []byte {
	buf := make([]byte, 0, 4*len(offsets))
	for _, off := range offsets {
		buf = append(buf, le32(off)...)
	}
	return buf
}

// WriteTier writes dict.bin, ptrs.bin, postings.bin, meta.json for one
// tier.
func (w *Writer) WriteTier(tier types.Tier, meta Meta, termBlob []byte, termOffsets []uint32, start, length map[types.Field][]uint32, postings []byte) error {
	dictFile, ptrsFile, postingsFile, metaFile := CoreDictFile, CorePtrsFile, CorePostingsFile, CoreMetaFile
	if tier == types.TierExtended {
		dictFile, ptrsFile, postingsFile, metaFile = ExtDictFile, ExtPtrsFile, ExtPostingsFile, ExtMetaFile
	}
	numTerms := len(termOffsets) - 1
	if err := w.writeAtomic(dictFile, EncodeDict(termBlob, termOffsets)); err != nil {
		return err
	}
	if err := w.writeAtomic(ptrsFile, EncodePtrs(tier, start, length, numTerms)); err != nil {
		return err
	}
	if err := w.writeAtomic(postingsFile, postings); err != nil {
		return err
	}
	meta.NumTerms = uint32(numTerms)
	metaJSON, err := json.MarshalIndent(meta, "", "  ")
	if err != nil {
		return fmt.Errorf("artifact: marshal %s: %w", metaFile, err)
	}
	return w.writeAtomic(metaFile, metaJSON)
}

// WriteDocstore writes doc.index.bin and doc.blob.bin.
func (w *Writer) WriteDocstore(offsets []uint32, blob []byte) error {
	if err := w.writeAtomic(DocIndexFile, EncodeDocIndex(offsets)); err != nil {
		return err
	}
	return w.writeAtomic(DocBlobFile, blob)
}

// WriteIDMap writes the key->docId side artifact.
func (w *Writer) WriteIDMap(idmap map[string]uint32) error {
	data, err := json.MarshalIndent(idmap, "", "  ")
	if err != nil {
		return fmt.Errorf("artifact: marshal idmap: %w", err)
	}
	return w.writeAtomic(IDMapFile, data)
}
