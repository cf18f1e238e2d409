package testsupport

import (
	"archive/zip"
	"os"
	"path/filepath"
	"testing"
)

// WriteFile writes content to path, creating parent directories as needed.
func WriteFile(t testing.TB, path, content string) {
	t.Helper()

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir for %s: %v", path, err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

// WriteZip creates a ZIP archive at path containing one empty member per
// name. Member names may include directory components.
func WriteZip(t testing.TB, path string, members ...string) {
	t.Helper()

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir for %s: %v", path, err)
	}
	file, err := os.Create(path)
	if err != nil {
		t.Fatalf("create %s: %v", path, err)
	}
	defer file.Close()

	writer := zip.NewWriter(file)
	for _, member := range members {
		entry, err := writer.Create(member)
		if err != nil {
			t.Fatalf("create zip member %s: %v", member, err)
		}
		if _, err := entry.Write([]byte("x")); err != nil {
			t.Fatalf("write zip member %s: %v", member, err)
		}
	}
	if err := writer.Close(); err != nil {
		t.Fatalf("close zip %s: %v", path, err)
	}
}
