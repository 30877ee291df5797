package convert

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

// unavailable returns a converter whose binary cannot be found, the
// common case on machines without calibre installed.
func unavailable() *Calibre {
	return NewCalibre().WithBinary("definitely-not-ebook-convert")
}

func TestConvert_MissingInput(t *testing.T) {
	c := unavailable()
	defer c.Cleanup()

	ok, msg, out := c.Convert(context.Background(), "/no/such/book.epub")
	require.False(t, ok)
	require.Equal(t, "input file does not exist", msg)
	require.Empty(t, out)
}

func TestConvert_EpubWithoutCalibre(t *testing.T) {
	c := unavailable()
	defer c.Cleanup()

	path := filepath.Join(t.TempDir(), "book.epub")
	require.NoError(t, os.WriteFile(path, []byte("epub bytes"), 0o644))

	ok, msg, out := c.Convert(context.Background(), path)
	require.False(t, ok)
	require.Contains(t, msg, "ebook-convert is not installed")
	require.Empty(t, out)
}

func TestConvert_UnhandledFormatIsCopied(t *testing.T) {
	c := unavailable()
	defer c.Cleanup()

	path := filepath.Join(t.TempDir(), "manual.pdf")
	content := []byte("%PDF-1.4 fake")
	require.NoError(t, os.WriteFile(path, content, 0o644))

	ok, msg, out := c.Convert(context.Background(), path)
	require.True(t, ok, "copy without conversion counts as success")
	require.Contains(t, msg, "no conversion performed")
	require.Equal(t, "manual_converted.pdf", filepath.Base(out))

	copied, err := os.ReadFile(out)
	require.NoError(t, err)
	require.Equal(t, content, copied)
}

func TestCleanup_RemovesTempDirAndIsIdempotent(t *testing.T) {
	c := unavailable()

	path := filepath.Join(t.TempDir(), "notes.txt")
	require.NoError(t, os.WriteFile(path, []byte("x"), 0o644))

	ok, _, out := c.Convert(context.Background(), path)
	require.True(t, ok)

	dir := filepath.Dir(out)
	_, err := os.Stat(dir)
	require.NoError(t, err)

	c.Cleanup()
	_, err = os.Stat(dir)
	require.True(t, os.IsNotExist(err))

	c.Cleanup()
	c.Cleanup()
}
