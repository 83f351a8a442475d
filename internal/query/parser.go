// Package query implements the query parser (C7, spec §4.7): splitting a
// free-text query string into quoted phrases and a bag of tokens, with a
// trailing-prefix marker.
package query

import (
	"strings"

	"github.com/AntonIsraelsson/cryptobib-search/internal/text"
)

// Parsed is the structured result of parsing a query string.
type Parsed struct {
	Phrases      [][]string // each phrase: >=1 normalized non-stopword token
	Tokens       []string   // bag tokens, in order
	LastIsPrefix bool
}

// Parse implements the procedure of spec §4.7: normalize, extract balanced
// double-quote phrases, tokenize the remainder into bag tokens, and decide
// whether the trailing bag token is eligible for prefix expansion. An
// unbalanced trailing quote is a contract, not incidental: its content
// falls back to bag tokens rather than forming a phrase.
func Parse(raw string) Parsed {
	normalized := text.Normalize(raw)
	runes := []rune(normalized)
	n := len(runes)

	var phrases [][]string
	var remainder strings.Builder

	i := 0
	for i < n {
		if runes[i] != '"' {
			start := i
			for i < n && runes[i] != '"' {
				i++
			}
			remainder.WriteString(string(runes[start:i]))
			remainder.WriteByte(' ')
			continue
		}
		// runes[i] == '"': look for a closing quote.
		j := i + 1
		for j < n && runes[j] != '"' {
			j++
		}
		if j >= n {
			// Unbalanced trailing open quote: its content becomes bag
			// tokens, not a phrase.
			remainder.WriteString(string(runes[i+1:]))
			remainder.WriteByte(' ')
			i = n
			break
		}
		content := string(runes[i+1 : j])
		toks, _ := text.Tokenize(content)
		if len(toks) > 0 {
			phrases = append(phrases, toks)
		}
		i = j + 1
	}

	tokens, _ := text.Tokenize(remainder.String())

	trimmed := strings.TrimRight(normalized, " \t\n\r")
	endsWithQuote := len(trimmed) > 0 && trimmed[len(trimmed)-1] == '"'
	lastIsPrefix := len(tokens) > 0 && !endsWithQuote

	return Parsed{Phrases: phrases, Tokens: tokens, LastIsPrefix: lastIsPrefix}
}
