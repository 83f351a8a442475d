// Package builder orchestrates the offline index build (spec §2 "Data flow
// (build)"): normalize/tokenize each record's fields (C1), accumulate terms
// per tier (C2), encode postings (C3), emit the docstore (C4), and pack
// everything into the fixed on-disk artifact layout (C5).
package builder

import (
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/AntonIsraelsson/cryptobib-search/internal/artifact"
	"github.com/AntonIsraelsson/cryptobib-search/internal/dict"
	"github.com/AntonIsraelsson/cryptobib-search/internal/docstore"
	"github.com/AntonIsraelsson/cryptobib-search/internal/logging"
	"github.com/AntonIsraelsson/cryptobib-search/internal/postings"
	"github.com/AntonIsraelsson/cryptobib-search/internal/text"
	"github.com/AntonIsraelsson/cryptobib-search/internal/types"
)

// Option configures one Builder, analogous to the teacher's builder.Option.
type Option struct {
	TargetDir string
	Version   string
}

// Builder runs one build pass over an in-memory record set. The source
// acquisition that produces those records is explicitly out of scope
// (spec §1); Build takes them as a plain slice.
type Builder struct {
	opt *Option
}

func New(opt *Option) *Builder {
	return &Builder{opt: opt}
}

// fieldText extracts the raw text a tier field derives from record r.
func fieldText(r types.Record, f types.Field) string {
	switch f {
	case types.FieldTitle:
		return r.Title
	case types.FieldAuthors:
		return r.AuthorsStr
	case types.FieldKey:
		return r.Key
	case types.FieldVenue:
		return r.Venue
	case types.FieldYear:
		if r.Year == 0 {
			return ""
		}
		return yearString(r.Year)
	case types.FieldDOI:
		return r.DOI
	}
	return ""
}

func yearString(y int32) string {
	digits := [4]byte{}
	v := y
	for i := 3; i >= 0; i-- {
		digits[i] = byte('0' + v%10)
		v /= 10
	}
	return string(digits[:])
}

// postingAccum collects, per term, per docId, positional or count
// occurrences for one (tier, field) pair ahead of dictionary sorting.
type postingAccum struct {
	positional map[string]map[uint32][]uint32
	freq       map[string]map[uint32]uint32
}

func newPostingAccum() *postingAccum {
	return &postingAccum{
		positional: make(map[string]map[uint32][]uint32),
		freq:       make(map[string]map[uint32]uint32),
	}
}

func (a *postingAccum) addPositional(term string, docID uint32, pos uint32) {
	byDoc, ok := a.positional[term]
	if !ok {
		byDoc = make(map[uint32][]uint32)
		a.positional[term] = byDoc
	}
	byDoc[docID] = append(byDoc[docID], pos)
}

func (a *postingAccum) addFreq(term string, docID uint32) {
	byDoc, ok := a.freq[term]
	if !ok {
		byDoc = make(map[uint32]uint32)
		a.freq[term] = byDoc
	}
	byDoc[docID]++
}

// buildTier runs C1-C3 for one tier over records and returns the artifact
// writer inputs for C5.
func buildTier(tier types.Tier, fields []types.Field, records []types.Record) (termBlob []byte, termOffsets []uint32, start, length map[types.Field][]uint32, postingsBlob []byte) {
	accum := make(map[types.Field]*postingAccum, len(fields))
	for _, f := range fields {
		accum[f] = newPostingAccum()
	}

	b := dict.NewBuilder()
	for _, r := range records {
		for _, f := range fields {
			tokens, positions := text.TokenizeField(fieldText(r, f))
			a := accum[f]
			for i, tok := range tokens {
				b.Intern(tok)
				if f.Positional() {
					a.addPositional(tok, r.ID, uint32(positions[i]))
				} else {
					a.addFreq(tok, r.ID)
				}
			}
		}
	}

	d := b.Finalize()
	termBlob, termOffsets = d.Blob()
	numTerms := len(d.Terms)

	start = make(map[types.Field][]uint32, len(fields))
	length = make(map[types.Field][]uint32, len(fields))
	for _, f := range fields {
		start[f] = make([]uint32, numTerms)
		length[f] = make([]uint32, numTerms)
	}

	for _, f := range fields {
		a := accum[f]
		for termID, term := range d.Terms {
			if f.Positional() {
				byDoc, ok := a.positional[term]
				if !ok {
					continue
				}
				entries := make([]postings.PositionalEntry, 0, len(byDoc))
				for docID, posList := range byDoc {
					sort.Slice(posList, func(i, j int) bool { return posList[i] < posList[j] })
					entries = append(entries, postings.PositionalEntry{DocID: docID, Positions: posList})
				}
				sort.Slice(entries, func(i, j int) bool { return entries[i].DocID < entries[j].DocID })
				data := postings.EncodePositional(entries)
				start[f][termID] = uint32(len(postingsBlob))
				length[f][termID] = uint32(len(data))
				postingsBlob = append(postingsBlob, data...)
			} else {
				byDoc, ok := a.freq[term]
				if !ok {
					continue
				}
				entries := make([]postings.FreqEntry, 0, len(byDoc))
				for docID, tf := range byDoc {
					entries = append(entries, postings.FreqEntry{DocID: docID, TF: tf})
				}
				sort.Slice(entries, func(i, j int) bool { return entries[i].DocID < entries[j].DocID })
				data := postings.EncodeFreq(entries)
				start[f][termID] = uint32(len(postingsBlob))
				length[f][termID] = uint32(len(data))
				postingsBlob = append(postingsBlob, data...)
			}
		}
	}

	return termBlob, termOffsets, start, length, postingsBlob
}

// Build runs the full C1-C5 pipeline over records and writes every
// artifact file into opt.TargetDir.
func (b *Builder) Build(records []types.Record) error {
	ts := time.Now()
	buildID := uuid.New().String()
	logging.Info("builder: starting build", len(records), "records", buildID)

	w := artifact.NewWriter(b.opt.TargetDir)

	coreBlob, coreOffsets, coreStart, coreLength, corePostings := buildTier(types.TierCore, types.CoreFields, records)
	logging.Info("builder: core tier terms", len(coreOffsets)-1, "postings bytes", len(corePostings))
	coreMeta := artifact.Meta{Version: b.opt.Version, BuildID: buildID, NumDocs: uint32(len(records))}
	if err := w.WriteTier(types.TierCore, coreMeta, coreBlob, coreOffsets, coreStart, coreLength, corePostings); err != nil {
		return err
	}

	extBlob, extOffsets, extStart, extLength, extPostings := buildTier(types.TierExtended, types.ExtFields, records)
	logging.Info("builder: extended tier terms", len(extOffsets)-1, "postings bytes", len(extPostings))
	extMeta := artifact.Meta{Version: b.opt.Version, BuildID: buildID}
	if err := w.WriteTier(types.TierExtended, extMeta, extBlob, extOffsets, extStart, extLength, extPostings); err != nil {
		return err
	}

	docBlob, docOffsets := docstore.Encode(records)
	if err := w.WriteDocstore(docOffsets, docBlob); err != nil {
		return err
	}
	if err := w.WriteIDMap(docstore.BuildKeyMap(records)); err != nil {
		return err
	}

	logging.Info("builder: build complete", time.Since(ts), buildID)
	return nil
}
