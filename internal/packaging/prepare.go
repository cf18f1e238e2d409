package packaging

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/ARISA-Lab-LLC/ESCSP-AZUS/internal/services"
)

// PrepareResult reports the artifacts produced for one dataset directory.
type PrepareResult struct {
	ESID          string
	MarkdownPath  string
	InventoryPath string
	ArchivePath   string
	ManifestPath  string
	Uploads       []string
}

// Prepare runs the full packaging sequence for one dataset directory: the
// README Markdown companion, the file_list.csv inventory, the package
// archive with verification, and the upload manifest. templatePath names the
// inventory template CSV.
func Prepare(esid, dir, templatePath string, logger *slog.Logger) (*PrepareResult, error) {
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With("esid", esid)

	result := &PrepareResult{ESID: esid}

	htmlPath := filepath.Join(dir, "README.html")
	if _, err := os.Stat(htmlPath); err == nil {
		mdPath, err := WriteMarkdownCompanion(htmlPath)
		if err != nil {
			return nil, err
		}
		result.MarkdownPath = mdPath
		logger.Info("wrote markdown companion", "path", mdPath)
	} else {
		logger.Warn("README.html not present, skipping markdown companion")
	}

	list, err := GenerateFileList(dir, templatePath, "", logger)
	if err != nil {
		return nil, err
	}
	result.InventoryPath = list.Path
	logger.Info("wrote inventory", "path", list.Path, "files", len(list.Names))

	archivePath, err := BuildArchive(esid, dir, list.Names, logger)
	if err != nil {
		return nil, err
	}
	result.ArchivePath = archivePath

	expected := make([]string, 0, len(list.Names))
	for _, name := range list.Names {
		if name != ArchiveName(esid) {
			expected = append(expected, name)
		}
	}
	missing, err := VerifyArchive(archivePath, expected, logger)
	if err != nil {
		return nil, err
	}
	if len(missing) > 0 {
		return nil, services.Wrap(services.ErrValidation, "packaging", "verify",
			fmt.Sprintf("archive is missing %d files", len(missing)), nil)
	}

	manifestPath, uploads, err := WriteManifest(esid, dir, list.Names)
	if err != nil {
		return nil, err
	}
	result.ManifestPath = manifestPath
	result.Uploads = uploads
	logger.Info("wrote upload manifest", "path", manifestPath, "uploads", len(uploads))

	return result, nil
}
