package packaging

import (
	"archive/zip"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"golang.org/x/sys/unix"

	"github.com/ARISA-Lab-LLC/ESCSP-AZUS/internal/services"
)

// Preflight checks that dir is writable and that the filesystem holding it
// has at least requiredBytes available before an archive build begins.
func Preflight(dir string, requiredBytes uint64) error {
	info, err := os.Stat(dir)
	if err != nil {
		return services.Wrap(services.ErrConfiguration, "packaging", "preflight", fmt.Sprintf("stat %s", dir), err)
	}
	if !info.IsDir() {
		return services.Wrap(services.ErrConfiguration, "packaging", "preflight", fmt.Sprintf("%s is not a directory", dir), nil)
	}
	if err := unix.Access(dir, unix.R_OK|unix.W_OK|unix.X_OK); err != nil {
		return services.Wrap(services.ErrConfiguration, "packaging", "preflight", fmt.Sprintf("insufficient permissions on %s", dir), err)
	}

	var stat unix.Statfs_t
	if err := unix.Statfs(dir, &stat); err != nil {
		return services.Wrap(services.ErrConfiguration, "packaging", "preflight", fmt.Sprintf("statfs %s", dir), err)
	}
	available := stat.Bavail * uint64(stat.Bsize)
	if available < requiredBytes {
		return services.Wrap(services.ErrConfiguration, "packaging", "preflight",
			fmt.Sprintf("%s has %d bytes free, need %d", dir, available, requiredBytes), nil)
	}
	return nil
}

// ArchiveName returns the package archive file name for a dataset identifier.
func ArchiveName(esid string) string {
	return fmt.Sprintf("ESID_%s.zip", esid)
}

// BuildArchive assembles the dataset package ESID_<esid>.zip inside dir from
// the named files. Entries are stored flat, under their base names only. The
// free-space preflight is sized from the inputs before any writing starts.
// Missing input files fail the build.
func BuildArchive(esid, dir string, names []string, logger *slog.Logger) (string, error) {
	if logger == nil {
		logger = slog.Default()
	}

	archiveName := ArchiveName(esid)
	var missing []string
	var sources []string
	var totalBytes uint64
	for _, name := range names {
		if name == archiveName {
			continue
		}
		path := filepath.Join(dir, name)
		info, err := os.Stat(path)
		if err != nil {
			missing = append(missing, name)
			continue
		}
		sources = append(sources, path)
		totalBytes += uint64(info.Size())
	}
	if len(missing) > 0 {
		sort.Strings(missing)
		return "", services.Wrap(services.ErrValidation, "packaging", "archive",
			fmt.Sprintf("missing files: %s", strings.Join(missing, ", ")), nil)
	}
	if len(sources) == 0 {
		return "", services.Wrap(services.ErrValidation, "packaging", "archive", "no files to package", nil)
	}
	if err := Preflight(dir, totalBytes); err != nil {
		return "", err
	}

	archivePath := filepath.Join(dir, archiveName)
	out, err := os.Create(archivePath)
	if err != nil {
		return "", services.Wrap(nil, "packaging", "archive", "create archive", err)
	}
	defer out.Close()

	writer := zip.NewWriter(out)
	for _, source := range sources {
		if err := addArchiveMember(writer, source); err != nil {
			writer.Close()
			return "", err
		}
	}
	if err := writer.Close(); err != nil {
		return "", services.Wrap(nil, "packaging", "archive", "finalize archive", err)
	}
	if err := out.Sync(); err != nil {
		return "", services.Wrap(nil, "packaging", "archive", "sync archive", err)
	}

	if info, err := os.Stat(archivePath); err == nil {
		logger.Info("package archive built",
			"archive", archiveName,
			"files", len(sources),
			"bytes", info.Size())
	}
	return archivePath, nil
}

// VerifyArchive confirms the archive holds exactly the expected members and
// returns the names missing from it. Extra members are reported but do not
// fail verification.
func VerifyArchive(archivePath string, expected []string, logger *slog.Logger) ([]string, error) {
	if logger == nil {
		logger = slog.Default()
	}
	reader, err := zip.OpenReader(archivePath)
	if err != nil {
		return nil, services.Wrap(services.ErrValidation, "packaging", "verify", fmt.Sprintf("open %s", filepath.Base(archivePath)), err)
	}
	defer reader.Close()

	actual := make(map[string]struct{}, len(reader.File))
	for _, member := range reader.File {
		actual[member.Name] = struct{}{}
	}

	var missing []string
	expectedSet := make(map[string]struct{}, len(expected))
	for _, name := range expected {
		expectedSet[name] = struct{}{}
		if _, ok := actual[name]; !ok {
			missing = append(missing, name)
		}
	}
	for name := range actual {
		if _, ok := expectedSet[name]; !ok {
			logger.Warn("unexpected archive member", "archive", filepath.Base(archivePath), "member", name)
		}
	}
	sort.Strings(missing)
	return missing, nil
}

func addArchiveMember(writer *zip.Writer, source string) error {
	file, err := os.Open(source)
	if err != nil {
		return services.Wrap(nil, "packaging", "archive", fmt.Sprintf("open %s", filepath.Base(source)), err)
	}
	defer file.Close()

	info, err := file.Stat()
	if err != nil {
		return services.Wrap(nil, "packaging", "archive", fmt.Sprintf("stat %s", filepath.Base(source)), err)
	}
	header, err := zip.FileInfoHeader(info)
	if err != nil {
		return services.Wrap(nil, "packaging", "archive", fmt.Sprintf("header for %s", filepath.Base(source)), err)
	}
	header.Name = filepath.Base(source)
	header.Method = zip.Deflate

	member, err := writer.CreateHeader(header)
	if err != nil {
		return services.Wrap(nil, "packaging", "archive", fmt.Sprintf("add %s", filepath.Base(source)), err)
	}
	if _, err := io.Copy(member, file); err != nil {
		return services.Wrap(nil, "packaging", "archive", fmt.Sprintf("write %s", filepath.Base(source)), err)
	}
	return nil
}
