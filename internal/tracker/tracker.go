// Package tracker records which dataset archives have already been
// published. The backing store is a flat append-only text file, one archive
// path per line; it is the pipeline's sole idempotency mechanism.
package tracker

import (
	"bufio"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// Tracker holds the uploaded-archive set in memory and appends to the
// backing file on every mark. A path once marked stays marked; there is no
// removal operation.
type Tracker struct {
	path     string
	uploaded map[string]struct{}
	file     *os.File
}

// New loads the tracker file at path, creating it (and parent directories)
// when absent.
func New(path string) (*Tracker, error) {
	if strings.TrimSpace(path) == "" {
		return nil, errors.New("tracker: missing file path")
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("tracker: create directory: %w", err)
		}
	}

	uploaded := make(map[string]struct{})
	existing, err := os.Open(path)
	if err == nil {
		scanner := bufio.NewScanner(existing)
		for scanner.Scan() {
			if line := strings.TrimSpace(scanner.Text()); line != "" {
				uploaded[line] = struct{}{}
			}
		}
		scanErr := scanner.Err()
		existing.Close()
		if scanErr != nil {
			return nil, fmt.Errorf("tracker: read %s: %w", path, scanErr)
		}
	} else if !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("tracker: open %s: %w", path, err)
	}

	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("tracker: open %s for append: %w", path, err)
	}

	return &Tracker{path: path, uploaded: uploaded, file: file}, nil
}

// IsUploaded reports whether the archive path has completed a successful
// upload in this or any earlier run.
func (t *Tracker) IsUploaded(path string) bool {
	_, ok := t.uploaded[path]
	return ok
}

// MarkUploaded appends the path to the backing file and flushes before
// returning. Marking an already-marked path is a no-op.
func (t *Tracker) MarkUploaded(path string) error {
	if t.IsUploaded(path) {
		return nil
	}
	if _, err := fmt.Fprintln(t.file, path); err != nil {
		return fmt.Errorf("tracker: append %s: %w", path, err)
	}
	if err := t.file.Sync(); err != nil {
		return fmt.Errorf("tracker: flush: %w", err)
	}
	t.uploaded[path] = struct{}{}
	return nil
}

// Count returns how many archives are marked uploaded.
func (t *Tracker) Count() int {
	return len(t.uploaded)
}

// Close releases the backing file handle.
func (t *Tracker) Close() error {
	return t.file.Close()
}
