package scanner

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/require"
)

func testFs(t *testing.T) afero.Fs {
	t.Helper()
	fs := afero.NewMemMapFs()
	files := map[string]int64{
		"/library/fiction/dune.epub":       2 << 20,
		"/library/fiction/dune.txt":        1024,
		"/library/manuals/printer.pdf":     5 << 20,
		"/library/manuals/notes/todo.md":   256,
		"/downloads/dune.epub":             2 << 20,
		"/downloads/archive/old-book.mobi": 1 << 20,
	}
	for path, size := range files {
		require.NoError(t, afero.WriteFile(fs, path, make([]byte, size), 0o644))
	}
	return fs
}

func TestScan_FiltersUnsupportedExtensions(t *testing.T) {
	s := New([]string{".epub", ".pdf", ".mobi"}, 2).WithFs(testFs(t))

	records := s.Scan([]string{"/library"})
	require.Len(t, records, 2)
	for _, r := range records {
		require.Contains(t, []string{".epub", ".pdf"}, r.Extension)
	}
}

func TestScan_RecursesIntoSubdirectories(t *testing.T) {
	s := New([]string{".epub", ".pdf", ".mobi"}, 2).WithFs(testFs(t))

	records := s.Scan([]string{"/downloads"})
	require.Len(t, records, 2)

	paths := make(map[string]struct{})
	for _, r := range records {
		paths[r.FullPath] = struct{}{}
	}
	require.Contains(t, paths, "/downloads/archive/old-book.mobi")
}

func TestScan_OverlappingRootsDedup(t *testing.T) {
	s := New([]string{".epub", ".pdf", ".mobi"}, 2).WithFs(testFs(t))

	// /library/fiction is inside /library; dune.epub is reachable twice.
	records := s.Scan([]string{"/library", "/library/fiction"})
	count := 0
	for _, r := range records {
		if r.FullPath == "/library/fiction/dune.epub" {
			count++
		}
	}
	require.Equal(t, 1, count, "file reachable via two roots must appear once")
}

func TestScan_RepeatedScansAreIdentical(t *testing.T) {
	s := New([]string{".epub", ".pdf", ".mobi"}, 4).WithFs(testFs(t))
	dirs := []string{"/library", "/downloads"}

	first := s.Scan(dirs)
	second := s.Scan(dirs)
	require.Equal(t, first, second, "scan order must be stable for a fixed filesystem")
}

func TestScan_SkipsMissingDirectory(t *testing.T) {
	s := New([]string{".epub"}, 2).WithFs(testFs(t))

	records := s.Scan([]string{"/does-not-exist", "/downloads"})
	require.Len(t, records, 1)
	require.Equal(t, "dune.epub", records[0].Filename)
}

func TestScan_RecordFields(t *testing.T) {
	s := New([]string{".EPUB"}, 1).WithFs(testFs(t))

	records := s.Scan([]string{"/downloads"})
	require.Len(t, records, 1)

	r := records[0]
	require.Equal(t, "dune.epub", r.Filename)
	require.Equal(t, "/downloads/dune.epub", r.FullPath)
	require.Equal(t, "/downloads", r.Directory)
	require.Equal(t, ".epub", r.Extension, "extension is stored lowercase")
	require.Equal(t, 2.0, r.SizeMB)
}

func TestScan_SymlinkRecordsTargetSize(t *testing.T) {
	targetDir := t.TempDir()
	target := filepath.Join(targetDir, "big.epub")
	require.NoError(t, os.WriteFile(target, make([]byte, 3<<20), 0o644))

	linkDir := t.TempDir()
	if err := os.Symlink(target, filepath.Join(linkDir, "link.epub")); err != nil {
		t.Skipf("symlinks unavailable: %v", err)
	}

	s := New([]string{".epub"}, 1)
	records := s.Scan([]string{linkDir})
	require.Len(t, records, 1)
	require.Equal(t, 3.0, records[0].SizeMB, "size must be the target's, not the link's")

	resolved, err := filepath.EvalSymlinks(target)
	require.NoError(t, err)
	require.Equal(t, resolved, records[0].FullPath)
}

func TestSizeMB_Rounding(t *testing.T) {
	require.Equal(t, 0.0, sizeMB(0))
	require.Equal(t, 1.5, sizeMB(3<<19))
	require.Equal(t, 0.1, sizeMB(104858)) // ~0.1000003 MB
}
