// Package tokenizer extracts word tokens from byte streams in memory
// bounded by the read buffer size plus the size of the tokens produced,
// not by the size of the input. It is a direct port of the scan/carry
// state machine in original_source/src/word_filtering.rs
// (scan_for_words/bytes_to_str), reshaped from Rust's enum return values
// into a small tagged struct since Go has no sum types.
package tokenizer

import (
	"fmt"
	"io"
	"unicode"
	"unicode/utf8"
)

// DefaultBufferSize is the read chunk size. The spec recommends 256-512
// bytes; 320 leaves room for a few multi-byte runes without forcing a
// second read on most lines of prose.
const DefaultBufferSize = 320

// IsWordRune reports whether r is a word character: any Unicode letter or
// number, or the ASCII apostrophe. Both the streaming and in-memory
// tokenizers share this definition, per the spec's §4.1 contract.
func IsWordRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsNumber(r) || r == '\''
}

// TokenSet is the deduplicated output of a tokenization pass.
type TokenSet map[string]struct{}

// Tokenizer streams word tokens out of an io.Reader.
type Tokenizer struct {
	r       io.Reader
	bufSize int
}

// New returns a Tokenizer reading from r with DefaultBufferSize chunks.
func New(r io.Reader) *Tokenizer {
	return NewSize(r, DefaultBufferSize)
}

// NewSize returns a Tokenizer reading from r in chunks of bufSize bytes.
func NewSize(r io.Reader, bufSize int) *Tokenizer {
	if bufSize <= 0 {
		bufSize = DefaultBufferSize
	}
	return &Tokenizer{r: r, bufSize: bufSize}
}

// Tokenize reads the entire stream and returns the set of distinct tokens.
// It fails on an I/O error, on any complete-but-invalid UTF-8 code point,
// or if a multi-byte code point is still incomplete at end of input.
func (t *Tokenizer) Tokenize() (TokenSet, error) {
	tokens := make(TokenSet)
	emit := func(s string) {
		if s != "" {
			tokens[s] = struct{}{}
		}
	}

	buf := make([]byte, t.bufSize)
	var carry []byte
	var pending string
	havePending := false

	for {
		n, readErr := t.r.Read(buf)
		if n > 0 {
			data := buf[:n]
			if len(carry) > 0 {
				data = append(append(make([]byte, 0, len(carry)+n), carry...), data...)
				carry = nil
			}

			valid, remainder, decErr := splitValidUTF8(data)
			if decErr != nil {
				return nil, decErr
			}
			if len(remainder) > 0 {
				carry = append([]byte(nil), remainder...)
			}
			if valid != "" {
				havePending, pending = applyScan(scanChunk(valid), havePending, pending, emit)
			}
		}
		if readErr != nil {
			if readErr == io.EOF {
				break
			}
			return nil, fmt.Errorf("tokenizer: read: %w", readErr)
		}
	}

	if len(carry) > 0 {
		return nil, fmt.Errorf("tokenizer: unexpected end of input inside a UTF-8 code point")
	}
	if havePending {
		emit(pending)
	}
	return tokens, nil
}

// TokenizeString is the non-streaming variant for query strings already
// held entirely in memory. There is no decode step and no error to
// return: any invalid UTF-8 byte in s decodes as utf8.RuneError, which is
// not a word character, so it separates tokens like punctuation does.
func TokenizeString(s string) TokenSet {
	tokens := make(TokenSet)
	havePending := false
	var pending string
	havePending, pending = applyScan(scanChunk(s), havePending, pending, func(w string) {
		if w != "" {
			tokens[w] = struct{}{}
		}
	})
	if havePending && pending != "" {
		tokens[pending] = struct{}{}
	}
	return tokens
}

// splitValidUTF8 returns the longest valid-UTF-8 prefix of p, with the
// trailing bytes of an as-yet-incomplete code point (if any) returned
// separately so the caller can prepend them to the next read. It errors
// only on a byte sequence that is already known to be malformed, never on
// one that is merely short.
func splitValidUTF8(p []byte) (valid string, remainder []byte, err error) {
	for i := 0; i < len(p); {
		r, size := utf8.DecodeRune(p[i:])
		if r == utf8.RuneError {
			if size == 0 {
				break
			}
			if size == 1 {
				if !utf8.FullRune(p[i:]) {
					return string(p[:i]), p[i:], nil
				}
				return "", nil, fmt.Errorf("tokenizer: invalid UTF-8 byte sequence at offset %d", i)
			}
		}
		i += size
	}
	return string(p), nil, nil
}

type scanKind int

const (
	kindNoWords scanKind = iota
	kindSingleRun
	kindWords
)

// scanResult is the chunk classification described in spec §4.1: exactly
// one of NoWords, SingleRun, or Words{words, leadingRun, trailingRun}.
type scanResult struct {
	kind           scanKind
	singleRun      string
	words          []string
	leadingRun     bool
	trailingRun    string
	hasTrailingRun bool
}

type runSpan struct{ start, end int }

// wordRuns finds the maximal contiguous word-character runs in s, as byte
// offset ranges.
func wordRuns(s string) []runSpan {
	var runs []runSpan
	inRun := false
	runStart := 0
	for i, r := range s {
		if IsWordRune(r) {
			if !inRun {
				inRun = true
				runStart = i
			}
			continue
		}
		if inRun {
			runs = append(runs, runSpan{runStart, i})
			inRun = false
		}
	}
	if inRun {
		runs = append(runs, runSpan{runStart, len(s)})
	}
	return runs
}

// scanChunk classifies a decoded chunk per the spec's scan-result
// categories. A run that reaches the end of the chunk might continue in
// the next chunk, so it is reported as a trailing run rather than a
// completed word.
func scanChunk(s string) scanResult {
	runs := wordRuns(s)
	if len(runs) == 0 {
		return scanResult{kind: kindNoWords}
	}
	if len(runs) == 1 && runs[0].start == 0 && runs[0].end == len(s) {
		return scanResult{kind: kindSingleRun, singleRun: s}
	}

	last := runs[len(runs)-1]
	hasTrailing := last.end == len(s)
	wordCount := len(runs)
	if hasTrailing {
		wordCount--
	}

	words := make([]string, 0, wordCount)
	for _, span := range runs[:wordCount] {
		words = append(words, s[span.start:span.end])
	}

	res := scanResult{
		kind:       kindWords,
		words:      words,
		leadingRun: runs[0].start == 0,
	}
	if hasTrailing {
		res.hasTrailingRun = true
		res.trailingRun = s[last.start:last.end]
	}
	return res
}

// applyScan implements the emission rule from spec §4.1 given the pending
// carried-over run P and a chunk's scan result R, returning the new
// pending state.
func applyScan(res scanResult, havePending bool, pending string, emit func(string)) (bool, string) {
	switch res.kind {
	case kindNoWords:
		if havePending {
			emit(pending)
		}
		return false, ""

	case kindSingleRun:
		if havePending {
			return true, pending + res.singleRun
		}
		return true, res.singleRun

	default: // kindWords
		words := res.words
		if havePending {
			if res.leadingRun && len(words) > 0 {
				merged := make([]string, len(words))
				copy(merged, words)
				merged[0] = pending + merged[0]
				words = merged
			} else {
				emit(pending)
			}
		}
		for _, w := range words {
			emit(w)
		}
		if res.hasTrailingRun {
			return true, res.trailingRun
		}
		return false, ""
	}
}
