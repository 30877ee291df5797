package catalog

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"sync"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/gofrs/flock"

	"github.com/shelfwise/shelfwise/internal/logger"
	"github.com/shelfwise/shelfwise/internal/metrics"
)

// ErrNoCatalog indicates no catalog file exists yet.
var ErrNoCatalog = errors.New("no catalog file")

// ScanFunc produces file records for a set of root directories.
type ScanFunc func(dirs []string) []FileRecord

// StoreOptions configures a Store.
type StoreOptions struct {
	// Path is the catalog JSON file.
	Path string
	// MaxAge is the age beyond which a catalog is always stale.
	MaxAge time.Duration
	// RefreshHour is the local hour (0-23) of the daily maintenance window.
	RefreshHour int
	// Scan produces the book list during a build.
	Scan ScanFunc
	// DefaultDirs supplies root directories when no explicit set is given.
	DefaultDirs func() []string
	// Now is the clock; nil means time.Now. Tests inject a fixed clock.
	Now func() time.Time
}

// Store owns the single persisted catalog. Build and Deduplicate are
// serialized by an in-process mutex plus a file lock, and every write
// replaces the catalog atomically (write to temp file, then rename), so
// a failed write leaves the previous catalog intact.
type Store struct {
	path        string
	maxAge      time.Duration
	refreshHour int
	scan        ScanFunc
	defaultDirs func() []string
	now         func() time.Time

	mu    sync.Mutex
	flock *flock.Flock
}

// NewStore returns a Store for opts.Path.
func NewStore(opts StoreOptions) *Store {
	if opts.MaxAge <= 0 {
		opts.MaxAge = 7 * 24 * time.Hour
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.DefaultDirs == nil {
		opts.DefaultDirs = func() []string { return nil }
	}
	return &Store{
		path:        opts.Path,
		maxAge:      opts.MaxAge,
		refreshHour: opts.RefreshHour,
		scan:        opts.Scan,
		defaultDirs: opts.DefaultDirs,
		now:         opts.Now,
		flock:       flock.New(opts.Path + ".lock"),
	}
}

// Path returns the catalog file location.
func (s *Store) Path() string { return s.path }

// IsStale reports whether c needs a rebuild: no catalog, older than the
// max age, or polled during the daily refresh hour with at least 23
// hours elapsed since the last refresh.
//
// The hour window is only honored when something actually calls IsStale
// during that hour; a service idle through the whole window skips that
// day's refresh and is caught by the max-age cap instead. That matches
// the historical behavior and is deliberate.
func (s *Store) IsStale(c *Catalog) bool {
	if c == nil || c.Metadata.LastRefreshEpoch <= 0 {
		return true
	}
	now := s.now()
	last := time.Unix(int64(c.Metadata.LastRefreshEpoch), 0)
	age := now.Sub(last)
	if age > s.maxAge {
		return true
	}
	if now.Hour() == s.refreshHour && age >= 23*time.Hour {
		return true
	}
	return false
}

// Build scans dirs and persists a fresh catalog. When force is false and
// the persisted catalog is still fresh, it is returned unchanged without
// rescanning.
func (s *Store) Build(dirs []string, force bool) (*Catalog, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !force {
		if existing, err := s.read(); err == nil && !s.IsStale(existing) {
			logger.Get().Debug().Msg("catalog is fresh, skipping rebuild")
			return existing, nil
		}
	}
	return s.build(dirs)
}

// build does the actual scan + persist. Caller holds s.mu.
func (s *Store) build(dirs []string) (*Catalog, error) {
	start := time.Now()
	books := dedupeBooks(s.scan(dirs))
	elapsed := time.Since(start)
	refresh := s.now()

	fp := fingerprint(books)
	if prev, err := s.read(); err == nil && prev.Metadata.Fingerprint == fp && fp != "" {
		logger.Get().Debug().Str("fingerprint", fp).Msg("book set unchanged since last build")
	}

	c := &Catalog{
		Metadata: Metadata{
			LastRefreshEpoch:  float64(refresh.Unix()),
			RefreshDate:       refresh.Format(time.RFC3339),
			TotalBooks:        len(books),
			SourceDirectories: append([]string(nil), dirs...),
			BuildTimeSeconds:  round2(elapsed.Seconds()),
			Fingerprint:       fp,
		},
		Books: books,
		Stats: ComputeStats(books),
	}
	if err := s.persist(c); err != nil {
		return nil, err
	}

	metrics.CatalogBuilds.Inc()
	metrics.CatalogBuildDuration.Observe(elapsed.Seconds())
	metrics.BooksIndexed.Set(float64(len(books)))
	logger.Get().Info().
		Int("books", len(books)).
		Int("directories", len(dirs)).
		Float64("seconds", round2(elapsed.Seconds())).
		Msg("catalog built")
	return c, nil
}

// Load reads the persisted catalog. A missing, unreadable, or malformed
// file (no books/metadata keys) triggers a fresh build from the default
// directories; Load never returns a malformed catalog.
func (s *Store) Load() (*Catalog, error) {
	c, err := s.read()
	if err == nil {
		return c, nil
	}
	if !errors.Is(err, ErrNoCatalog) {
		logger.Get().Warn().Err(err).Msg("catalog unusable, rebuilding")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.build(s.defaultDirs())
}

// Books is the staleness-aware convenience wrapper: it rebuilds when
// forced or stale and loads otherwise.
func (s *Store) Books(force bool) ([]FileRecord, error) {
	if force {
		c, err := s.Build(s.defaultDirs(), true)
		if err != nil {
			return nil, err
		}
		return c.Books, nil
	}
	c, err := s.Load()
	if err != nil {
		return nil, err
	}
	if s.IsStale(c) {
		if c, err = s.Build(s.defaultDirs(), true); err != nil {
			return nil, err
		}
	}
	return c.Books, nil
}

// Deduplicate removes duplicate book entries by canonical path, keeping
// the first occurrence, and persists the result. The read and the write
// happen under the writer lock, so a concurrent Build cannot land
// between them and get overwritten by a stale snapshot. Running it
// twice in a row changes nothing the second time.
func (s *Store) Deduplicate() (*Catalog, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, err := s.read()
	if err != nil {
		if !errors.Is(err, ErrNoCatalog) {
			logger.Get().Warn().Err(err).Msg("catalog unusable, rebuilding")
		}
		// build already dedupes the scanned set.
		return s.build(s.defaultDirs())
	}

	before := len(c.Books)
	books := dedupeBooks(c.Books)
	c.Books = books
	c.Metadata.TotalBooks = len(books)
	c.Metadata.Fingerprint = fingerprint(books)
	c.Stats = ComputeStats(books)
	if err := s.persist(c); err != nil {
		return nil, err
	}
	if removed := before - len(books); removed > 0 {
		logger.Get().Info().Int("removed", removed).Msg("duplicate catalog entries removed")
	}
	return c, nil
}

// read loads and validates the catalog file without any fallback.
func (s *Store) read() (*Catalog, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrNoCatalog
		}
		return nil, fmt.Errorf("cannot read catalog %s: %w", s.path, err)
	}

	// Require the top-level keys before trusting the document.
	var probe map[string]json.RawMessage
	if err := json.Unmarshal(data, &probe); err != nil {
		return nil, fmt.Errorf("invalid catalog JSON %s: %w", s.path, err)
	}
	for _, key := range []string{"books", "metadata"} {
		if _, ok := probe[key]; !ok {
			return nil, fmt.Errorf("catalog %s is missing %q", s.path, key)
		}
	}

	var c Catalog
	if err := json.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("invalid catalog JSON %s: %w", s.path, err)
	}
	return &c, nil
}

// persist writes c next to the catalog file and renames it into place.
func (s *Store) persist(c *Catalog) error {
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("cannot create catalog dir %s: %w", dir, err)
	}

	if err := s.flock.Lock(); err != nil {
		return fmt.Errorf("cannot lock catalog: %w", err)
	}
	defer func() { _ = s.flock.Unlock() }()

	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return fmt.Errorf("cannot marshal catalog: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".catalog-*.json")
	if err != nil {
		return fmt.Errorf("cannot create temp catalog: %w", err)
	}
	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmp.Name())
		return fmt.Errorf("cannot write temp catalog: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmp.Name())
		return err
	}
	if err := os.Rename(tmp.Name(), s.path); err != nil {
		_ = os.Remove(tmp.Name())
		return fmt.Errorf("cannot install catalog: %w", err)
	}
	return nil
}

// dedupeBooks keeps the first record per full path, preserving order.
func dedupeBooks(books []FileRecord) []FileRecord {
	seen := make(map[string]struct{}, len(books))
	out := make([]FileRecord, 0, len(books))
	for _, b := range books {
		if _, ok := seen[b.FullPath]; ok {
			continue
		}
		seen[b.FullPath] = struct{}{}
		out = append(out, b)
	}
	return out
}

// fingerprint hashes the book set independent of encounter order.
func fingerprint(books []FileRecord) string {
	paths := make([]string, len(books))
	for i, b := range books {
		paths[i] = b.FullPath + "|" + strconv.FormatFloat(b.SizeMB, 'f', 2, 64)
	}
	sort.Strings(paths)
	h := xxhash.New()
	for _, p := range paths {
		_, _ = h.WriteString(p)
		_, _ = h.WriteString("\n")
	}
	return fmt.Sprintf("%016x", h.Sum64())
}
