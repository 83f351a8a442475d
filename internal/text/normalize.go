// Package text implements the normalizer/tokenizer (spec §4.1). It replaces
// the teacher's preprocessor.Preprocessor, which wrapped github.com/huichen/sego
// (a Chinese segmenter) around a stopword file; this corpus is English
// bibliographic text, so normalization instead uses golang.org/x/text's
// Unicode normalization forms plus a fixed small stopword set, following the
// same New()/Segment()-shaped contract the teacher exposed.
package text

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// stripCombining strips Unicode combining marks in the U+0300-U+036F block
// left behind by NFKD decomposition, isolating base letters from accents.
var stripCombining = transform.Chain(
	norm.NFKD,
	runes.Remove(runes.In(&unicode.RangeTable{R16: []unicode.Range16{{Lo: 0x0300, Hi: 0x036F, Stride: 1}}})),
	norm.NFKD,
)

// Normalize performs Unicode NFKD decomposition, drops combining marks in
// U+0300-U+036F, and lowercases with strings.ToLower. Output is
// deterministic UTF-8: identical input bytes always normalize identically.
func Normalize(s string) string {
	out, _, err := transform.String(stripCombining, s)
	if err != nil {
		// transform.String only errors on malformed input it cannot
		// recover from; fall back to the raw string rather than fail
		// normalization, since decode errors here are not fatal per
		// spec §7 (normalization is not an artifact-load path).
		out = s
	}
	return strings.ToLower(out)
}
