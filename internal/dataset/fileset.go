package dataset

import (
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/ARISA-Lab-LLC/ESCSP-AZUS/internal/services"
)

const (
	// DescriptionFile becomes the record description and is never uploaded.
	DescriptionFile = "README.html"
	// MarkdownFile is uploaded first when present.
	MarkdownFile = "README.md"
)

// FileSet is the resolved set of local files one dataset uploads. The
// description source and its markdown companion are held in dedicated
// fields; Additional never contains either of them or the archive.
type FileSet struct {
	ESID            string
	Archive         string
	DescriptionHTML string
	Markdown        string
	Additional      []string
}

// UploadOrder returns the files in transfer order: markdown first, then the
// additional metadata files, the archive last. Failing on a small metadata
// file is cheaper than failing after the archive transfer.
func (fs *FileSet) UploadOrder() []string {
	files := make([]string, 0, len(fs.Additional)+2)
	if fs.Markdown != "" {
		files = append(files, fs.Markdown)
	}
	files = append(files, fs.Additional...)
	files = append(files, fs.Archive)
	return files
}

// ManifestName returns the per-dataset upload manifest filename.
func ManifestName(esid string) string {
	return fmt.Sprintf("ESID_%s_to_upload.csv", esid)
}

// Resolve determines the file set for one archive. When an upload manifest
// exists alongside the archive it is authoritative and strict: every listed
// file must exist. Without a manifest the configured default list is used
// and missing files are only logged.
func Resolve(archivePath string, defaults []string, logger *slog.Logger) (*FileSet, error) {
	info, err := os.Stat(archivePath)
	if err != nil {
		return nil, services.Wrap(services.ErrNotFound, "fileset", "stat archive", archivePath, err)
	}
	if info.IsDir() {
		return nil, services.Wrap(services.ErrValidation, "fileset", "stat archive", archivePath+" is not a file", nil)
	}

	esid := DeriveID(archivePath)
	dir := filepath.Dir(archivePath)

	fileSet := &FileSet{ESID: esid, Archive: archivePath}

	manifestPath := filepath.Join(dir, ManifestName(esid))
	if _, err := os.Stat(manifestPath); err == nil {
		names, err := readManifest(manifestPath)
		if err != nil {
			return nil, err
		}
		if err := fileSet.populate(dir, names, true, logger); err != nil {
			return nil, err
		}
		return fileSet, nil
	}

	if err := fileSet.populate(dir, defaults, false, logger); err != nil {
		return nil, err
	}
	return fileSet, nil
}

func (fs *FileSet) populate(dir string, names []string, strict bool, logger *slog.Logger) error {
	archiveName := filepath.Base(fs.Archive)
	var missing []string
	for _, name := range names {
		if name == archiveName {
			// The manifest lists the archive itself; it is always last
			// and never duplicated into the additional list.
			continue
		}
		path := filepath.Join(dir, name)
		info, err := os.Stat(path)
		if err != nil || info.IsDir() {
			missing = append(missing, name)
			continue
		}
		switch name {
		case DescriptionFile:
			fs.DescriptionHTML = path
		case MarkdownFile:
			fs.Markdown = path
		default:
			fs.Additional = append(fs.Additional, path)
		}
	}
	if len(missing) == 0 {
		return nil
	}
	if strict {
		return services.Wrap(services.ErrNotFound, "fileset", "resolve manifest",
			fmt.Sprintf("missing files listed in manifest: %s", strings.Join(missing, ", ")), nil)
	}
	if logger != nil {
		logger.Warn("default files missing from dataset directory",
			"esid", fs.ESID, "missing", strings.Join(missing, ", "))
	}
	return nil
}

func readManifest(path string) ([]string, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, services.Wrap(services.ErrNotFound, "fileset", "open manifest", path, err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		return nil, services.Wrap(services.ErrValidation, "fileset", "read manifest header", path, err)
	}
	column := -1
	for i, name := range header {
		if strings.TrimSpace(name) == "File Name" {
			column = i
			break
		}
	}
	if column < 0 {
		return nil, services.Wrap(services.ErrValidation, "fileset", "read manifest header",
			"manifest CSV missing 'File Name' column", nil)
	}

	var names []string
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, services.Wrap(services.ErrValidation, "fileset", "read manifest row", path, err)
		}
		if column >= len(row) {
			continue
		}
		if name := strings.TrimSpace(row[column]); name != "" {
			names = append(names, name)
		}
	}
	return names, nil
}
