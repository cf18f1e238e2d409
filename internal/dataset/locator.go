package dataset

import (
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"golang.org/x/text/unicode/norm"

	"github.com/ARISA-Lab-LLC/ESCSP-AZUS/internal/services"
)

const archivePrefix = "ESID"

// Normalize walks the directory tree and renames archive files into their
// canonical form: the first "#" in an "ESID#...zip" name becomes "_", and
// names are normalized to NFC so identifier derivation is deterministic
// across filesystems.
func Normalize(directory string) error {
	if err := checkDirectory(directory); err != nil {
		return err
	}
	return filepath.WalkDir(directory, func(path string, entry fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if entry.IsDir() {
			return nil
		}
		name := entry.Name()
		canonical := norm.NFC.String(name)
		if strings.HasPrefix(canonical, archivePrefix+"#") && strings.HasSuffix(canonical, "zip") {
			canonical = strings.Replace(canonical, "#", "_", 1)
		}
		if canonical == name {
			return nil
		}
		return os.Rename(path, filepath.Join(filepath.Dir(path), canonical))
	})
}

// Locate returns the dataset archive paths under root: ZIP files directly in
// the root plus those inside per-dataset "ESID_..." subdirectories. The
// result is sorted for deterministic processing order.
func Locate(root string) ([]string, error) {
	if err := checkDirectory(root); err != nil {
		return nil, err
	}

	entries, err := os.ReadDir(root)
	if err != nil {
		return nil, services.Wrap(services.ErrConfiguration, "locator", "read directory", root, err)
	}

	var archives []string
	for _, entry := range entries {
		path := filepath.Join(root, entry.Name())
		if entry.IsDir() {
			if !strings.HasPrefix(entry.Name(), archivePrefix+"_") {
				continue
			}
			nested, err := os.ReadDir(path)
			if err != nil {
				return nil, services.Wrap(services.ErrConfiguration, "locator", "read directory", path, err)
			}
			for _, inner := range nested {
				if !inner.IsDir() && isArchive(inner.Name()) {
					archives = append(archives, filepath.Join(path, inner.Name()))
				}
			}
			continue
		}
		if isArchive(entry.Name()) {
			archives = append(archives, path)
		}
	}

	sort.Strings(archives)
	return archives, nil
}

// DeriveID extracts the dataset identifier from an archive filename: the
// last underscore-separated element of the stem.
func DeriveID(archivePath string) string {
	stem := strings.TrimSuffix(filepath.Base(archivePath), filepath.Ext(archivePath))
	parts := strings.Split(stem, "_")
	return strings.TrimSpace(parts[len(parts)-1])
}

func isArchive(name string) bool {
	return strings.EqualFold(filepath.Ext(name), ".zip")
}

func checkDirectory(directory string) error {
	if strings.TrimSpace(directory) == "" {
		return services.Wrap(services.ErrConfiguration, "locator", "check directory", "missing directory", nil)
	}
	info, err := os.Stat(directory)
	if err != nil {
		return services.Wrap(services.ErrConfiguration, "locator", "check directory", "invalid directory "+directory, err)
	}
	if !info.IsDir() {
		return services.Wrap(services.ErrConfiguration, "locator", "check directory", directory+" is not a directory", nil)
	}
	return nil
}
