package text

// Stopwords is the fixed English stopword set (spec §4.1). Unlike the
// teacher's util.InitStopwords, which loaded an arbitrary word list from a
// file at runtime, the set here is small and fixed by the spec, so it is a
// compile-time table rather than a loaded resource.
var Stopwords = map[string]bool{
	"the": true, "a": true, "an": true, "and": true, "or": true,
	"of": true, "on": true, "for": true, "to": true, "in": true,
	"by": true, "with": true, "at": true, "as": true, "from": true,
	"via": true,
}

func isTokenRune(r rune) bool {
	return (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9')
}

// Tokenize splits s (assumed already Normalize'd) on maximal runs of
// characters outside [a-z0-9], drops empty tokens and stopwords, and
// returns the surviving tokens alongside their 0-based positions in the
// non-stopword stream. Positions do not advance for dropped stopwords.
func Tokenize(s string) (tokens []string, positions []int) {
	runesIn := []rune(s)
	n := len(runesIn)
	pos := 0
	i := 0
	for i < n {
		if !isTokenRune(runesIn[i]) {
			i++
			continue
		}
		start := i
		for i < n && isTokenRune(runesIn[i]) {
			i++
		}
		tok := string(runesIn[start:i])
		if tok == "" || Stopwords[tok] {
			continue
		}
		tokens = append(tokens, tok)
		positions = append(positions, pos)
		pos++
	}
	return tokens, positions
}

// TokenizeField normalizes and tokenizes free text in one step, the
// combined contract builder callers use for every field.
func TokenizeField(s string) (tokens []string, positions []int) {
	return Tokenize(Normalize(s))
}
