package scanner

import (
	"os"
	"path/filepath"

	"github.com/spf13/afero"
)

// containerMounts are the fixed mount points checked when running in a
// container with host volumes attached.
var containerMounts = []string{
	"/mnt/documents",
	"/mnt/downloads",
	"/mnt/books",
	"/mnt/desktop",
	"/mnt/ebooks",
	"/mnt/calibre",
	"/mnt/kindle",
}

// DefaultDirectories returns the candidate root directories that exist
// right now: known container mount points, common home subfolders, and
// the working directory plus its books/ebooks subfolders. It has no
// side effects and is cheap to re-run, since directory existence can
// change between calls.
func DefaultDirectories() []string {
	candidates := append([]string(nil), containerMounts...)

	if home, err := os.UserHomeDir(); err == nil {
		candidates = append(candidates,
			filepath.Join(home, "Documents"),
			filepath.Join(home, "Downloads"),
			filepath.Join(home, "Books"),
			filepath.Join(home, "Desktop"),
			filepath.Join(home, "Calibre Library"),
		)
	}

	if cwd, err := os.Getwd(); err == nil {
		candidates = append(candidates,
			cwd,
			filepath.Join(cwd, "books"),
			filepath.Join(cwd, "ebooks"),
		)
	}

	return filterExisting(afero.NewOsFs(), candidates)
}

// filterExisting keeps candidates that exist and are directories.
func filterExisting(fs afero.Fs, candidates []string) []string {
	out := make([]string, 0, len(candidates))
	for _, dir := range candidates {
		info, err := fs.Stat(dir)
		if err != nil || !info.IsDir() {
			continue
		}
		out = append(out, dir)
	}
	return out
}
