package index

import "regexp"

// yearPattern and doiPattern implement the tier classifier of spec §4.10
// step 1: a bag token forces the extended tier if it looks like a
// four-digit year, or carries a DOI prefix, or matches a structured
// identifier (letters+digits, e.g. an ISBN-like token).
var (
	yearPattern       = regexp.MustCompile(`^[0-9]{4}$`)
	doiDigitPattern   = regexp.MustCompile(`10\.[0-9]`)
	identifierPattern = regexp.MustCompile(`^[a-z]+[0-9]+$|^[0-9]+[a-z]+$`)
)

// needsExtended reports whether the query forces the extended tier to be
// loaded: any bag token that looks like a four-digit year or a structured
// identifier, or raw query text carrying a DOI prefix. Tokenization strips
// the "." a DOI prefix depends on, so that check runs over the raw query
// text rather than the parsed bag tokens. This never errors: the
// classifier always yields a valid decision (§7, ClassificationError is
// never surfaced).
func needsExtended(rawQuery string, tokens []string) bool {
	if doiDigitPattern.MatchString(rawQuery) {
		return true
	}
	for _, tok := range tokens {
		if yearPattern.MatchString(tok) {
			return true
		}
		if identifierPattern.MatchString(tok) {
			return true
		}
	}
	return false
}
