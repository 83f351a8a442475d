// Package matcher implements the matcher/scorer (C10, spec §4.10): union
// within a token's resolved terms, conjunction across tokens, positional
// phrase adjacency, field-weighted scoring, and the total deterministic
// ordering.
package matcher

import (
	"sort"

	"github.com/AntonIsraelsson/cryptobib-search/internal/artifact"
	"github.com/AntonIsraelsson/cryptobib-search/internal/docstore"
	"github.com/AntonIsraelsson/cryptobib-search/internal/postings"
	"github.com/AntonIsraelsson/cryptobib-search/internal/query"
	"github.com/AntonIsraelsson/cryptobib-search/internal/resolve"
	"github.com/AntonIsraelsson/cryptobib-search/internal/types"
)

// fieldMask is a bitset over the (small, fixed) set of fields.
type fieldMask uint8

func bit(f types.Field) fieldMask { return fieldMask(1) << uint(f) }

// tokenDocs is the per-bag-token working set built in step 2 of spec §4.10:
// for every doc the token's resolved terms touch, which fields touched it,
// and whether any of those touches came from the token's exact dictionary
// match (as opposed to prefix-only expansion).
type tokenDocs struct {
	fields      map[uint32]fieldMask
	exactFields map[uint32]fieldMask
}

func newTokenDocs() *tokenDocs {
	return &tokenDocs{fields: make(map[uint32]fieldMask), exactFields: make(map[uint32]fieldMask)}
}

func (td *tokenDocs) sortedDocs() []uint32 {
	docs := make([]uint32, 0, len(td.fields))
	for d := range td.fields {
		docs = append(docs, d)
	}
	sort.Slice(docs, func(i, j int) bool { return docs[i] < docs[j] })
	return docs
}

func decodeDocsForField(tier *artifact.Tier, field types.Field, termID int) ([]uint32, error) {
	start := tier.Ptrs.Start[field][termID]
	length := tier.Ptrs.Length[field][termID]
	if length == 0 {
		return nil, nil
	}
	data := tier.Postings[start : start+length]
	if field.Positional() {
		docs, _, err := postings.DecodePositional(data)
		return docs, err
	}
	docs, _, err := postings.DecodeFreq(data)
	return docs, err
}

// decodePositionalField decodes a positional posting list into a
// docID->sorted-positions map for phrase matching.
func decodePositionalField(tier *artifact.Tier, field types.Field, termID int) (map[uint32][]uint32, error) {
	start := tier.Ptrs.Start[field][termID]
	length := tier.Ptrs.Length[field][termID]
	if length == 0 {
		return nil, nil
	}
	docs, positions, err := postings.DecodePositional(tier.Postings[start : start+length])
	if err != nil {
		return nil, err
	}
	m := make(map[uint32][]uint32, len(docs))
	for i, d := range docs {
		m[d] = positions[i]
	}
	return m, nil
}

// resolveToken builds the tokenDocs for one bag token across whichever
// tiers are loaded.
func resolveToken(core, ext *artifact.Tier, token string, allowPrefix bool) (*tokenDocs, error) {
	td := newTokenDocs()
	apply := func(tier *artifact.Tier, fields []types.Field) error {
		res := resolve.Resolve(tier, token, allowPrefix)
		if res.ExactID != -1 {
			for _, f := range fields {
				docs, err := decodeDocsForField(tier, f, res.ExactID)
				if err != nil {
					return err
				}
				for _, d := range docs {
					td.fields[d] |= bit(f)
					td.exactFields[d] |= bit(f)
				}
			}
		}
		for _, id := range res.PrefixIDs {
			for _, f := range fields {
				docs, err := decodeDocsForField(tier, f, id)
				if err != nil {
					return err
				}
				for _, d := range docs {
					td.fields[d] |= bit(f)
				}
			}
		}
		return nil
	}
	if core != nil {
		if err := apply(core, types.CoreFields); err != nil {
			return nil, err
		}
	}
	if ext != nil {
		if err := apply(ext, types.ExtFields); err != nil {
			return nil, err
		}
	}
	return td, nil
}

// intersectSorted intersects n ascending-sorted uint32 slices via
// sequential sort-merge, in ascending order of slice length.
func intersectSorted(lists [][]uint32) []uint32 {
	if len(lists) == 0 {
		return nil
	}
	sorted := append([][]uint32(nil), lists...)
	sort.Slice(sorted, func(i, j int) bool { return len(sorted[i]) < len(sorted[j]) })
	result := sorted[0]
	for _, next := range sorted[1:] {
		if len(result) == 0 {
			return nil
		}
		result = mergeIntersect(result, next)
	}
	return result
}

func mergeIntersect(a, b []uint32) []uint32 {
	var out []uint32
	i, j := 0, 0
	for i < len(a) && j < len(b) {
		switch {
		case a[i] == b[j]:
			out = append(out, a[i])
			i++
			j++
		case a[i] < b[j]:
			i++
		default:
			j++
		}
	}
	return out
}

func containsPos(sorted []uint32, target uint32) bool {
	i := sort.Search(len(sorted), func(i int) bool { return sorted[i] >= target })
	return i < len(sorted) && sorted[i] == target
}

// phraseFieldMatches returns the set of docIDs where phrase occurs as
// strictly-consecutive positions in field of the core tier. A phrase token
// that fails exact lookup yields zero matches for the whole phrase.
func phraseFieldMatches(core *artifact.Tier, phrase []string, field types.Field) (map[uint32]bool, error) {
	perToken := make([]map[uint32][]uint32, len(phrase))
	for i, tok := range phrase {
		id, found := resolve.Exact(core, tok)
		if !found {
			return map[uint32]bool{}, nil
		}
		m, err := decodePositionalField(core, field, id)
		if err != nil {
			return nil, err
		}
		perToken[i] = m
	}
	result := make(map[uint32]bool)
	for docID, firstPositions := range perToken[0] {
		for _, p0 := range firstPositions {
			ok := true
			for k := 1; k < len(phrase); k++ {
				posList, exists := perToken[k][docID]
				if !exists || !containsPos(posList, p0+uint32(k)) {
					ok = false
					break
				}
			}
			if ok {
				result[docID] = true
				break
			}
		}
	}
	return result, nil
}

// phraseMatch reports whether a phrase matches docID, and whether it
// matched in the title field (for bonus purposes).
type phraseMatch struct {
	titleDocs   map[uint32]bool
	authorsDocs map[uint32]bool
}

func matchPhrase(core *artifact.Tier, phrase []string) (*phraseMatch, error) {
	titleDocs, err := phraseFieldMatches(core, phrase, types.FieldTitle)
	if err != nil {
		return nil, err
	}
	authorsDocs, err := phraseFieldMatches(core, phrase, types.FieldAuthors)
	if err != nil {
		return nil, err
	}
	return &phraseMatch{titleDocs: titleDocs, authorsDocs: authorsDocs}, nil
}

func (pm *phraseMatch) matches(docID uint32) bool {
	return pm.titleDocs[docID] || pm.authorsDocs[docID]
}

// Scored is one ranked result before docstore materialization.
type Scored struct {
	DocID uint32
	Score float64
}

// Options mirrors the caller-facing search options (spec §6).
type Options struct {
	Limit int
}

const (
	defaultLimit = 50
	minLimit     = 1
	maxLimit     = 1000
)

// ClampLimit applies spec §4.10 step 7's clamping rule.
func ClampLimit(limit int) int {
	if limit == 0 {
		return defaultLimit
	}
	if limit < minLimit {
		return minLimit
	}
	if limit > maxLimit {
		return maxLimit
	}
	return limit
}

// Match runs the full pipeline (spec §4.10 steps 2-7) and returns ranked
// docIds. ext may be nil if the extended tier is not loaded/needed. ds is
// used only for tie-break fields (year, title, key).
func Match(core, ext *artifact.Tier, ds *artifact.Docstore, parsed query.Parsed, opts Options) ([]Scored, error) {
	if len(parsed.Tokens) == 0 && len(parsed.Phrases) == 0 {
		return nil, nil
	}

	tokenInfos := make([]*tokenDocs, len(parsed.Tokens))
	docLists := make([][]uint32, len(parsed.Tokens))
	for i, tok := range parsed.Tokens {
		isTerminal := i == len(parsed.Tokens)-1
		allowPrefix := isTerminal && parsed.LastIsPrefix
		td, err := resolveToken(core, ext, tok, allowPrefix)
		if err != nil {
			return nil, err
		}
		tokenInfos[i] = td
		docLists[i] = td.sortedDocs()
		if len(docLists[i]) == 0 {
			return nil, nil
		}
	}

	var candidates []uint32
	if len(docLists) > 0 {
		candidates = intersectSorted(docLists)
		if len(candidates) == 0 {
			return nil, nil
		}
	}

	phraseInfos := make([]*phraseMatch, len(parsed.Phrases))
	for i, phrase := range parsed.Phrases {
		pm, err := matchPhrase(core, phrase)
		if err != nil {
			return nil, err
		}
		phraseInfos[i] = pm
	}

	if len(candidates) == 0 && len(parsed.Phrases) > 0 && len(parsed.Tokens) == 0 {
		// Pure phrase query: candidates come from the first phrase's
		// matches, intersected with the rest below.
		first := phraseInfos[0]
		seen := make(map[uint32]bool)
		for d := range first.titleDocs {
			seen[d] = true
		}
		for d := range first.authorsDocs {
			seen[d] = true
		}
		for d := range seen {
			candidates = append(candidates, d)
		}
		sort.Slice(candidates, func(i, j int) bool { return candidates[i] < candidates[j] })
	}

	for _, pm := range phraseInfos {
		filtered := candidates[:0:0]
		for _, d := range candidates {
			if pm.matches(d) {
				filtered = append(filtered, d)
			}
		}
		candidates = filtered
		if len(candidates) == 0 {
			return nil, nil
		}
	}

	results := make([]Scored, 0, len(candidates))
	for _, docID := range candidates {
		var score float64
		for i, td := range tokenInfos {
			mask := td.fields[docID]
			if mask == 0 {
				continue
			}
			best := bestFieldWeight(mask)
			isTerminal := i == len(tokenInfos)-1
			if isTerminal && parsed.LastIsPrefix && td.exactFields[docID] == 0 {
				best *= types.PrefixMultiplier
			}
			score += best
		}
		for _, pm := range phraseInfos {
			if pm.titleDocs[docID] {
				score += types.PhraseBonusTitle
			} else if pm.authorsDocs[docID] {
				score += types.PhraseBonusAuthors
			}
		}
		results = append(results, Scored{DocID: docID, Score: score})
	}

	if err := sortResults(results, ds); err != nil {
		return nil, err
	}

	limit := ClampLimit(opts.Limit)
	if limit < len(results) {
		results = results[:limit]
	}
	return results, nil
}

func bestFieldWeight(mask fieldMask) float64 {
	var best float64
	for f := types.FieldTitle; f <= types.FieldDOI; f++ {
		if mask&bit(f) != 0 {
			if w := types.FieldWeight(f); w > best {
				best = w
			}
		}
	}
	return best
}

func sortResults(results []Scored, ds *artifact.Docstore) error {
	type tieBreak struct {
		year  int32
		title string
		key   string
	}
	cache := make(map[uint32]tieBreak, len(results))
	for _, r := range results {
		rec, err := docstore.Decode(ds.Blob, ds.Offsets, r.DocID)
		if err != nil {
			return err
		}
		cache[r.DocID] = tieBreak{year: rec.Year, title: rec.Title, key: rec.Key}
	}
	sort.SliceStable(results, func(i, j int) bool {
		if results[i].Score != results[j].Score {
			return results[i].Score > results[j].Score
		}
		ti, tj := cache[results[i].DocID], cache[results[j].DocID]
		if ti.year != tj.year {
			return ti.year > tj.year
		}
		if ti.title != tj.title {
			return ti.title < tj.title
		}
		return ti.key < tj.key
	})
	return nil
}
