// Package convert wraps Calibre's ebook-convert command for best-effort
// Kindle format conversion.
package convert

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/shelfwise/shelfwise/internal/logger"
)

// DefaultTimeout bounds a single ebook-convert invocation. The external
// tool may hang; conversions past this limit are reported as failures.
const DefaultTimeout = 5 * time.Minute

// Calibre runs ebook-convert conversion chains. Each Calibre instance
// owns at most one temp directory, released by Cleanup.
type Calibre struct {
	binary    string
	timeout   time.Duration
	available bool

	mu      sync.Mutex
	tempDir string
}

// NewCalibre returns a converter using the ebook-convert binary on
// PATH. Availability is probed once; converting without calibre fails
// with a clear message rather than an opaque exec error.
func NewCalibre() *Calibre {
	c := &Calibre{binary: "ebook-convert", timeout: DefaultTimeout}
	if _, err := exec.LookPath(c.binary); err == nil {
		c.available = true
	}
	return c
}

// WithBinary overrides the converter binary, for tests.
func (c *Calibre) WithBinary(binary string) *Calibre {
	c.binary = binary
	_, err := exec.LookPath(binary)
	c.available = err == nil
	return c
}

// Available reports whether ebook-convert was found on PATH.
func (c *Calibre) Available() bool { return c.available }

// Convert converts path for Kindle compatibility and returns
// (success, message, outputPath). EPUB goes through the
// EPUB→MOBI→EPUB chain; MOBI/AZW/AZW3 convert to EPUB; any other
// format is copied unconverted, which counts as success. On failure
// outputPath is empty and the caller should fall back to the original.
func (c *Calibre) Convert(ctx context.Context, path string) (bool, string, string) {
	if _, err := os.Stat(path); err != nil {
		return false, "input file does not exist", ""
	}

	ext := strings.ToLower(filepath.Ext(path))
	switch ext {
	case ".epub":
		return c.epubChain(ctx, path)
	case ".mobi", ".azw", ".azw3":
		return c.toEpub(ctx, path)
	default:
		out, err := c.fallbackCopy(path, ext)
		if err != nil {
			return false, fmt.Sprintf("failed to copy file: %v", err), ""
		}
		return true, "unsupported format for conversion: file copied (no conversion performed)", out
	}
}

// Cleanup removes any temporary conversion artifacts. Safe to call
// multiple times and when nothing was converted.
func (c *Calibre) Cleanup() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.tempDir == "" {
		return
	}
	if err := os.RemoveAll(c.tempDir); err != nil {
		logger.Get().Warn().Err(err).Str("dir", c.tempDir).Msg("failed to clean conversion temp dir")
		return
	}
	c.tempDir = ""
}

// epubChain converts EPUB → MOBI → EPUB for Kindle compatibility.
func (c *Calibre) epubChain(ctx context.Context, epubPath string) (bool, string, string) {
	mobi, err := c.tempFile(epubPath, "_converted.mobi")
	if err != nil {
		return false, err.Error(), ""
	}
	if msg, err := c.run(ctx, epubPath, mobi, "--output-profile", "kindle", "--mobi-file-type", "new"); err != nil {
		return false, fmt.Sprintf("EPUB to MOBI conversion failed: %s", msg), ""
	}

	final, err := c.tempFile(epubPath, "_final.epub")
	if err != nil {
		return false, err.Error(), ""
	}
	if msg, err := c.run(ctx, mobi, final, "--output-profile", "tablet", "--epub-version", "2"); err != nil {
		return false, fmt.Sprintf("MOBI to EPUB conversion failed: %s", msg), ""
	}
	return true, "converted EPUB through MOBI for Kindle compatibility", final
}

// toEpub converts MOBI/AZW/AZW3 to EPUB.
func (c *Calibre) toEpub(ctx context.Context, path string) (bool, string, string) {
	out, err := c.tempFile(path, "_converted.epub")
	if err != nil {
		return false, err.Error(), ""
	}
	if msg, err := c.run(ctx, path, out, "--output-profile", "tablet", "--epub-version", "2"); err != nil {
		return false, msg, ""
	}
	return true, "converted to EPUB for Kindle compatibility", out
}

// run invokes ebook-convert with a bounded timeout and returns a
// human-readable message alongside the error.
func (c *Calibre) run(ctx context.Context, input, output string, extraArgs ...string) (string, error) {
	if !c.available {
		return "ebook-convert is not installed or not on PATH", errors.New("ebook-convert unavailable")
	}

	runCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	args := append([]string{input, output}, extraArgs...)
	cmd := exec.CommandContext(runCtx, c.binary, args...)
	out, err := cmd.CombinedOutput()
	if err != nil {
		if errors.Is(runCtx.Err(), context.DeadlineExceeded) {
			return fmt.Sprintf("conversion timed out (%s)", c.timeout), err
		}
		detail := strings.TrimSpace(string(out))
		if detail == "" {
			detail = err.Error()
		}
		return fmt.Sprintf("calibre conversion failed: %s", detail), err
	}
	return "conversion successful", nil
}

// fallbackCopy copies path into the temp dir without conversion.
func (c *Calibre) fallbackCopy(path, ext string) (string, error) {
	out, err := c.tempFile(path, "_converted"+ext)
	if err != nil {
		return "", err
	}
	src, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer src.Close()
	dst, err := os.Create(out)
	if err != nil {
		return "", err
	}
	if _, err := io.Copy(dst, src); err != nil {
		_ = dst.Close()
		return "", err
	}
	if err := dst.Close(); err != nil {
		return "", err
	}
	return out, nil
}

// tempFile returns a path inside the converter's temp dir named after
// the original file's stem plus suffix.
func (c *Calibre) tempFile(original, suffix string) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.tempDir == "" {
		dir, err := os.MkdirTemp("", "shelfwise-convert-")
		if err != nil {
			return "", fmt.Errorf("cannot create conversion temp dir: %w", err)
		}
		c.tempDir = dir
	}
	stem := strings.TrimSuffix(filepath.Base(original), filepath.Ext(original))
	return filepath.Join(c.tempDir, stem+suffix), nil
}
