// Package scanner discovers ebook files under a set of root directories.
package scanner

import (
	"math"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/panjf2000/ants/v2"
	"github.com/spf13/afero"

	"github.com/shelfwise/shelfwise/internal/catalog"
	"github.com/shelfwise/shelfwise/internal/logger"
)

// Scanner walks root directories and collects files whose extension is
// in the supported-format set.
type Scanner struct {
	fs      afero.Fs
	formats map[string]struct{}
	workers int
}

// New returns a Scanner over the real filesystem. formats entries are
// matched case-insensitively and must include the leading dot.
func New(formats []string, workers int) *Scanner {
	s := &Scanner{
		fs:      afero.NewOsFs(),
		formats: make(map[string]struct{}, len(formats)),
		workers: workers,
	}
	if s.workers <= 0 {
		s.workers = 4
	}
	for _, f := range formats {
		s.formats[strings.ToLower(f)] = struct{}{}
	}
	return s
}

// WithFs replaces the filesystem, for tests.
func (s *Scanner) WithFs(fs afero.Fs) *Scanner {
	s.fs = fs
	return s
}

// Scan walks each directory recursively and returns one FileRecord per
// unique canonical path. Directories that cannot be opened are skipped;
// Scan returns partial results rather than failing. Output is ordered
// by root directory, then walk order, so it is stable for a fixed
// filesystem state.
func (s *Scanner) Scan(dirs []string) []catalog.FileRecord {
	partial := make([][]catalog.FileRecord, len(dirs))

	pool, err := ants.NewPool(s.workers)
	if err != nil {
		// Degenerate fallback: scan serially.
		for i, dir := range dirs {
			partial[i] = s.scanDir(dir)
		}
		return dedupe(flatten(partial))
	}
	defer pool.Release()

	var wg sync.WaitGroup
	for i, dir := range dirs {
		i, dir := i, dir
		wg.Add(1)
		submitErr := pool.Submit(func() {
			defer wg.Done()
			partial[i] = s.scanDir(dir)
		})
		if submitErr != nil {
			partial[i] = s.scanDir(dir)
			wg.Done()
		}
	}
	wg.Wait()

	records := dedupe(flatten(partial))
	logger.Get().Debug().Int("files", len(records)).Int("directories", len(dirs)).Msg("scan complete")
	return records
}

// scanDir walks a single root. Walk errors (permission denied, vanished
// entries) are skipped so the rest of the tree still gets scanned.
func (s *Scanner) scanDir(root string) []catalog.FileRecord {
	var out []catalog.FileRecord
	_ = afero.Walk(s.fs, root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			logger.Get().Debug().Err(err).Str("path", path).Msg("skipping unreadable path")
			return nil
		}
		if info.IsDir() {
			return nil
		}
		ext := strings.ToLower(filepath.Ext(path))
		if _, ok := s.formats[ext]; !ok {
			return nil
		}
		// Walk lstats, so a symlink reports its own byte size; record
		// the target's instead.
		size := info.Size()
		if info.Mode()&os.ModeSymlink != 0 {
			if st, err := s.fs.Stat(path); err == nil {
				size = st.Size()
			}
		}
		full := canonicalPath(path)
		out = append(out, catalog.FileRecord{
			Filename:  filepath.Base(full),
			FullPath:  full,
			Directory: filepath.Dir(full),
			Extension: ext,
			SizeMB:    sizeMB(size),
		})
		return nil
	})
	return out
}

// canonicalPath resolves path to an absolute, symlink-free form. When
// symlink resolution fails (e.g. on an in-memory filesystem) the
// cleaned absolute path is used instead.
func canonicalPath(path string) string {
	abs, err := filepath.Abs(path)
	if err != nil {
		abs = filepath.Clean(path)
	}
	if resolved, err := filepath.EvalSymlinks(abs); err == nil {
		return resolved
	}
	return abs
}

func sizeMB(bytes int64) float64 {
	return math.Round(float64(bytes)/(1<<20)*100) / 100
}

func flatten(partial [][]catalog.FileRecord) []catalog.FileRecord {
	var out []catalog.FileRecord
	for _, p := range partial {
		out = append(out, p...)
	}
	return out
}

// dedupe keeps the first record per canonical path. A file reachable
// via two overlapping roots appears exactly once.
func dedupe(records []catalog.FileRecord) []catalog.FileRecord {
	seen := make(map[string]struct{}, len(records))
	out := make([]catalog.FileRecord, 0, len(records))
	for _, r := range records {
		if _, ok := seen[r.FullPath]; ok {
			continue
		}
		seen[r.FullPath] = struct{}{}
		out = append(out, r)
	}
	return out
}
