// Package normalize reduces tokens to the stems the index keys on:
// lowercase, then Porter2 stemming, matching
// original_source/src/inverted_index.rs's words_to_stems (lowercase then
// porter_stemmer::stem), with the Rust crate's stemmer swapped for the
// Go ecosystem's own Porter2 implementation.
package normalize

import (
	"strings"

	"github.com/surgebase/porter2"

	"github.com/standardbeagle/searchd/internal/tokenizer"
)

// Stem lowercases token (Unicode-aware) and reduces it with the Porter2
// algorithm. It is deterministic: the same token always yields the same
// stem.
func Stem(token string) string {
	return porter2.Stem(strings.ToLower(token))
}

// StemAll maps a set of tokens to the set of their stems, collapsing any
// collisions (e.g. "running" and "runs" both stem to "run").
func StemAll(tokens tokenizer.TokenSet) map[string]struct{} {
	stems := make(map[string]struct{}, len(tokens))
	for tok := range tokens {
		stems[Stem(tok)] = struct{}{}
	}
	return stems
}
