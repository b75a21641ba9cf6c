// Package archive stores comparison results on disk as zstd-compressed,
// content-addressed JSON so past runs can be recalled and re-rendered.
package archive

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/klauspost/compress/zstd"

	"github.com/dbtbench/dbtbench/internal/reporting"
)

const entryExt = ".json.zst"

// Archive is a directory of archived analysis reports.
type Archive struct {
	dir string
	mu  sync.Mutex
}

// New creates an archive rooted at the given directory. An empty dir
// disables archiving; every operation becomes a no-op.
func New(dir string) *Archive {
	return &Archive{dir: dir}
}

// Key derives the archive key for a baseline/candidate report pair by
// hashing both files' contents. The same pair always lands on the same
// entry, so re-running a comparison overwrites rather than duplicates.
func Key(baselinePath, candidatePath string) (string, error) {
	h := sha256.New()
	for _, path := range []string{baselinePath, candidatePath} {
		if err := hashFile(h, path); err != nil {
			return "", fmt.Errorf("hashing %s: %w", path, err)
		}
		// Null byte delimiter prevents boundary collisions between files.
		if _, err := h.Write([]byte{0}); err != nil {
			return "", err
		}
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

// Put stores an analysis report under the given key.
func (a *Archive) Put(key string, report *reporting.AnalysisReport) error {
	if a.dir == "" {
		return nil
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	if err := os.MkdirAll(a.dir, 0755); err != nil {
		return fmt.Errorf("creating archive directory: %w", err)
	}

	data, err := report.JSON()
	if err != nil {
		return fmt.Errorf("marshaling report: %w", err)
	}

	f, err := os.Create(a.entryPath(key))
	if err != nil {
		return fmt.Errorf("creating archive entry: %w", err)
	}
	defer f.Close() //nolint:errcheck

	enc, err := zstd.NewWriter(f)
	if err != nil {
		return fmt.Errorf("creating zstd writer: %w", err)
	}
	if _, err := enc.Write(data); err != nil {
		enc.Close() //nolint:errcheck
		return fmt.Errorf("writing archive entry: %w", err)
	}
	if err := enc.Close(); err != nil {
		return fmt.Errorf("flushing archive entry: %w", err)
	}
	return f.Close()
}

// Get retrieves an archived report. The second return is false on a miss;
// a corrupt entry is also treated as a miss rather than an error.
func (a *Archive) Get(key string) (*reporting.AnalysisReport, bool) {
	if a.dir == "" {
		return nil, false
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	f, err := os.Open(a.entryPath(key))
	if err != nil {
		return nil, false
	}
	defer f.Close() //nolint:errcheck

	dec, err := zstd.NewReader(f)
	if err != nil {
		return nil, false
	}
	defer dec.Close()

	data, err := io.ReadAll(dec)
	if err != nil {
		return nil, false
	}

	var report reporting.AnalysisReport
	if err := json.Unmarshal(data, &report); err != nil {
		return nil, false
	}
	return &report, true
}

// List returns all archived keys in sorted order.
func (a *Archive) List() ([]string, error) {
	if a.dir == "" {
		return nil, nil
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	entries, err := os.ReadDir(a.dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading archive directory: %w", err)
	}

	var keys []string
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasSuffix(name, entryExt) {
			continue
		}
		keys = append(keys, strings.TrimSuffix(name, entryExt))
	}
	sort.Strings(keys)
	return keys, nil
}

// Clear removes all archived reports. The directory is only removed when it
// contains nothing but archive entries.
func (a *Archive) Clear() error {
	if a.dir == "" {
		return nil
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	if _, err := os.Stat(a.dir); os.IsNotExist(err) {
		return nil
	}

	entries, err := os.ReadDir(a.dir)
	if err != nil {
		return fmt.Errorf("reading archive directory: %w", err)
	}

	if len(entries) > 0 {
		hasValidEntry := false
		for _, entry := range entries {
			if entry.IsDir() {
				return fmt.Errorf("archive directory contains subdirectories - refusing to delete for safety")
			}
			if strings.HasSuffix(entry.Name(), entryExt) {
				hasValidEntry = true
			} else {
				return fmt.Errorf("archive directory contains non-archive files - refusing to delete for safety")
			}
		}
		if !hasValidEntry {
			return fmt.Errorf("no valid archive entries found in directory - refusing to delete for safety")
		}
	}

	return os.RemoveAll(a.dir)
}

func (a *Archive) entryPath(key string) string {
	return filepath.Join(a.dir, key+entryExt)
}

func hashFile(h io.Writer, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close() //nolint:errcheck

	if _, err := io.Copy(h, f); err != nil {
		return err
	}
	return nil
}
