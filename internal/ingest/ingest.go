// Package ingest partitions a file list across a fixed worker count and
// feeds each worker's files through the tokenizer into the index, per
// spec §4.4. Partitioning and per-file error handling follow §4.4
// directly; joining workers with errgroup instead of a bare
// sync.WaitGroup is adopted from the teacher's own go.mod dependency so
// a worker's fatal (non-per-file) error is still surfaced to the caller.
package ingest

import (
	"context"
	"os"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/standardbeagle/searchd/internal/errors"
	"github.com/standardbeagle/searchd/internal/index"
	"github.com/standardbeagle/searchd/internal/tokenizer"
)

// Filter decides which enumerated file paths are ingested, grounded on
// the teacher's FileScanner.shouldExcludeFast/shouldIncludeFast
// (internal/indexing/pipeline_types.go), rebuilt around doublestar
// instead of a hand-rolled matcher.
type Filter struct {
	Include []string
	Exclude []string

	// MaxFileSize caps the size of files ScanDirectory will enumerate, in
	// bytes. Zero means no cap.
	MaxFileSize int64
}

// Allows reports whether path passes the include/exclude glob lists. An
// empty Include list matches everything. A pattern error is treated as
// "no match" for that pattern rather than aborting the scan, matching the
// teacher's log-and-continue behavior for malformed patterns.
func (f Filter) Allows(path string) bool {
	for _, pat := range f.Exclude {
		if ok, _ := doublestar.Match(pat, path); ok {
			return false
		}
	}
	if len(f.Include) == 0 {
		return true
	}
	for _, pat := range f.Include {
		if ok, _ := doublestar.Match(pat, path); ok {
			return true
		}
	}
	return false
}

// Partition splits files into n contiguous segments of floor(len(files)/n)
// files each. Per §4.4 step 1, the len(files) mod n remainder is dropped,
// a quirk carried intentionally from the source rather than guessed away.
func Partition(files []string, n int) [][]string {
	if n <= 0 {
		return nil
	}
	segSize := len(files) / n
	segments := make([][]string, n)
	for i := 0; i < n; i++ {
		start := i * segSize
		segments[i] = files[start : start+segSize]
	}
	return segments
}

// Run partitions files across n workers and ingests each worker's segment
// into ix, per §4.4. A per-file open/decode error is logged and that
// worker moves on to its next file; Run only returns an error if a worker
// fails in a way that is not a per-file condition. The only such case is
// cancellation of ctx, which stops each worker before its next file and
// makes Run return ctx's error.
func Run(ctx context.Context, log zerolog.Logger, ix *index.Index, files []string, n int) error {
	segments := Partition(files, n)
	dropped := len(files) - n*(len(files)/n)
	if dropped > 0 {
		log.Warn().Int("dropped", dropped).Int("workers", n).Msg("ingest: remainder files dropped by partitioning")
	}

	g, ctx := errgroup.WithContext(ctx)
	for workerID, segment := range segments {
		workerID, segment := workerID, segment
		g.Go(func() error {
			return ingestSegment(ctx, log, ix, workerID, segment)
		})
	}
	return g.Wait()
}

func ingestSegment(ctx context.Context, log zerolog.Logger, ix *index.Index, workerID int, segment []string) error {
	for _, path := range segment {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		tokens, err := tokenizeFile(path)
		if err != nil {
			log.Error().
				Int("worker", workerID).
				Str("path", path).
				Err(err).
				Msg("ingest: skipping file")
			continue
		}
		ix.Insert(path, tokens)
	}
	return nil
}

func tokenizeFile(path string) (tokenizer.TokenSet, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.NewIngestError("open", path, err)
	}
	defer f.Close()

	tokens, err := tokenizer.New(f).Tokenize()
	if err != nil {
		return nil, errors.NewIngestError("tokenize", path, err)
	}
	return tokens, nil
}

// ScanDirectory enumerates the regular files directly inside dir, one
// level deep (non-recursive), per §6's "Filesystem" note, applying filter
// to each candidate path and skipping any file larger than
// filter.MaxFileSize (when set).
func ScanDirectory(dir string, filter Filter) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, errors.NewIngestError("scan", dir, err)
	}

	var files []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		info, err := e.Info()
		if err != nil || !info.Mode().IsRegular() {
			continue
		}
		if filter.MaxFileSize > 0 && info.Size() > filter.MaxFileSize {
			continue
		}
		path := dir + string(os.PathSeparator) + e.Name()
		if filter.Allows(path) {
			files = append(files, path)
		}
	}
	return files, nil
}
