// Package index implements the concurrent stem -> document-set mapping,
// striped across buckets the way the teacher's ShardedTrigramStorage
// stripes trigram postings across TrigramBucket locks
// (internal/core/trigram_sharded_storage.go): each bucket owns its own
// mutex so inserts touching stems in different buckets never serialize
// (stems that hash to the same bucket share its lock), matching
// §4.3's concurrency contract.
package index

import (
	"sort"
	"sync"

	"github.com/cespare/xxhash/v2"

	"github.com/standardbeagle/searchd/internal/docid"
	"github.com/standardbeagle/searchd/internal/normalize"
	"github.com/standardbeagle/searchd/internal/tokenizer"
)

// DefaultBucketCount is the number of stripes the index is split across.
// A power of two so bucket selection is a mask, not a modulo.
const DefaultBucketCount = 64

// bucket holds postings for the stems that hash into it, guarded by its
// own lock so unrelated stems in other buckets never contend.
type bucket struct {
	mu       sync.Mutex
	postings map[string]map[*docid.Doc]struct{}
}

// Index is the concurrent stem -> posting-set map described in spec §3/§4.3.
type Index struct {
	buckets  []*bucket
	mask     uint64
	interner *docid.Interner
}

// New returns an empty Index with DefaultBucketCount buckets, sharing doc
// interning with the caller-supplied interner so the ingestion driver and
// server see the same *docid.Doc identities.
func New(interner *docid.Interner) *Index {
	return NewSize(interner, DefaultBucketCount)
}

// NewSize returns an empty Index with bucketCount buckets, rounded up to
// the next power of two.
func NewSize(interner *docid.Interner, bucketCount int) *Index {
	n := nextPow2(bucketCount)
	buckets := make([]*bucket, n)
	for i := range buckets {
		buckets[i] = &bucket{postings: make(map[string]map[*docid.Doc]struct{})}
	}
	return &Index{buckets: buckets, mask: uint64(n - 1), interner: interner}
}

func nextPow2(n int) int {
	if n < 1 {
		n = 1
	}
	p := 1
	for p < n {
		p <<= 1
	}
	return p
}

func (ix *Index) bucketFor(stem string) *bucket {
	h := xxhash.Sum64String(stem)
	return ix.buckets[h&ix.mask]
}

// Insert normalizes tokens to stems, interns documentPath, and upserts the
// document into every stem's posting set, per §4.3's insert operation.
// Insert is idempotent: inserting the same document twice leaves the
// posting sets unchanged beyond the first call.
func (ix *Index) Insert(documentPath string, tokens tokenizer.TokenSet) {
	stems := normalize.StemAll(tokens)
	if len(stems) == 0 {
		return
	}
	doc := ix.interner.Intern(documentPath)
	for s := range stems {
		b := ix.bucketFor(s)
		b.mu.Lock()
		set, ok := b.postings[s]
		if !ok {
			set = make(map[*docid.Doc]struct{}, 1)
			b.postings[s] = set
		}
		set[doc] = struct{}{}
		b.mu.Unlock()
	}
}

// snapshot returns a copy of the posting set for stem, or nil if the stem
// is absent. §4.3 requires a snapshot, not a live view, so concurrent
// inserts during a query cannot corrupt the caller's ranking pass.
func (ix *Index) snapshot(stem string) []*docid.Doc {
	b := ix.bucketFor(stem)
	b.mu.Lock()
	defer b.mu.Unlock()
	set, ok := b.postings[stem]
	if !ok || len(set) == 0 {
		return nil
	}
	out := make([]*docid.Doc, 0, len(set))
	for d := range set {
		out = append(out, d)
	}
	return out
}

// Result is one (document, rank) pair of a query's ordered output.
type Result struct {
	Document string `json:"document"`
	Rank     int    `json:"rank"`
}

// Query tokenizes and normalizes queryString, then ranks every document by
// the number of distinct query stems it contains, per §4.3 step 4-5.
// Results are sorted by rank descending; ties break on ascending document
// path, a choice recorded in DESIGN.md since the spec leaves the
// tie-break unspecified.
func (ix *Index) Query(queryString string) []Result {
	stems := normalize.StemAll(tokenizer.TokenizeString(queryString))
	if len(stems) == 0 {
		return nil
	}

	ranks := make(map[*docid.Doc]int)
	for s := range stems {
		for _, d := range ix.snapshot(s) {
			ranks[d]++
		}
	}
	if len(ranks) == 0 {
		return nil
	}

	results := make([]Result, 0, len(ranks))
	for d, r := range ranks {
		results = append(results, Result{Document: d.Path, Rank: r})
	}
	sort.Slice(results, func(i, j int) bool {
		if results[i].Rank != results[j].Rank {
			return results[i].Rank > results[j].Rank
		}
		return results[i].Document < results[j].Document
	})
	return results
}
