// Package resolve implements the term resolver (C8, spec §4.8): binary
// search for exact matches and prefix range expansion over a tier's
// dictionary.
package resolve

import (
	"github.com/AntonIsraelsson/cryptobib-search/internal/artifact"
)

// MaxPrefixExpansion bounds the number of termIds a single prefix
// expansion may contribute (spec §4.8).
const MaxPrefixExpansion = 128

// Resolution is the outcome of resolving one token against one tier's
// dictionary.
type Resolution struct {
	ExactID   int   // -1 if no exact match
	PrefixIDs []int // additional (non-exact) termIds from prefix expansion; empty unless requested
	Found     bool  // true iff ExactID >= 0 or len(PrefixIDs) > 0
}

// prefixUpperBound returns the lexicographically smallest string that is
// greater than every string having token as a byte prefix, by
// incrementing the last byte that is not already 0xFF (dropping trailing
// 0xFF bytes). An all-0xFF token has no finite upper bound; callers treat
// that as "through the end of the dictionary".
func prefixUpperBound(token string) (string, bool) {
	b := []byte(token)
	for i := len(b) - 1; i >= 0; i-- {
		if b[i] != 0xFF {
			b[i]++
			return string(b[:i+1]), true
		}
	}
	return "", false
}

// Exact resolves token to an exact dictionary entry only (used for phrase
// tokens, which never prefix-expand per spec §4.8).
func Exact(t *artifact.Tier, token string) (id int, found bool) {
	i := t.Dict.LowerBound(token)
	if i < t.Dict.Len() && t.Dict.Term(i) == token {
		return i, true
	}
	return -1, false
}

// Resolve resolves token against tier t. When allowPrefix is true (the
// terminal bag token with lastIsPrefix set), it additionally expands to
// every term having token as a byte prefix, capped at MaxPrefixExpansion
// and taken in dictionary order when the true range is larger.
func Resolve(t *artifact.Tier, token string, allowPrefix bool) Resolution {
	exactID, found := Exact(t, token)
	res := Resolution{ExactID: -1}
	if found {
		res.ExactID = exactID
		res.Found = true
	}
	if !allowPrefix {
		return res
	}
	lo := t.Dict.LowerBound(token)
	var hi int
	if upper, ok := prefixUpperBound(token); ok {
		hi = t.Dict.LowerBound(upper)
	} else {
		hi = t.Dict.Len()
	}
	if hi > lo+MaxPrefixExpansion {
		hi = lo + MaxPrefixExpansion
	}
	for i := lo; i < hi; i++ {
		if i == res.ExactID {
			continue
		}
		res.PrefixIDs = append(res.PrefixIDs, i)
		res.Found = true
	}
	return res
}
