package packaging

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/ARISA-Lab-LLC/ESCSP-AZUS/internal/services"
)

// ListFileName is the inventory written alongside every dataset archive.
const ListFileName = "file_list.csv"

// Column names the inventory template must carry. Other template columns
// are copied through untouched.
const (
	columnFileName = "File Name"
	columnFileType = "File Type"
	columnDesc     = "Description"
	columnSizeKB   = "File size (KB)"
	columnDict     = "Associated Data Dictionary"
	columnHash     = "SHA-512 Hash"
	columnNotes    = "Notes"
)

const (
	listSelfDescription = "A machine and human readable file that gives the following information on each file in the record: File Name, File Type, Description, File size in kilobytes, name of the Associated Data Dictionary for the file, and the calculated SHA-512 hash of the file as a unique identifier to ensure data integrity during transfer and compression."
	listSelfNotes       = "File cannot include its own hash or file size as their inclusion would then change the hash."
	wavDescription      = "A WAV formatted file generated by the AudioMoth device containing the audio recorded at a site. The recording start time is stamped into the filename using a YYYYMMDD_HHMMSS format."
)

// FileList is the generated inventory plus the file names it records.
type FileList struct {
	Path  string
	Names []string
}

// GenerateFileList builds the file_list.csv inventory for a dataset
// directory. The template CSV supplies the header row and one row per file
// pattern; the File Name cell of each template row is treated as a glob
// relative to dir, and every regular file it matches produces one output row
// with the size and SHA-512 columns filled in. The inventory's own row and
// one row per WAV recording are appended after the template rows.
func GenerateFileList(dir, templatePath, outPath string, logger *slog.Logger) (*FileList, error) {
	if logger == nil {
		logger = slog.Default()
	}
	info, err := os.Stat(dir)
	if err != nil || !info.IsDir() {
		return nil, services.Wrap(services.ErrConfiguration, "packaging", "file list", fmt.Sprintf("dataset directory %s is not usable", dir), err)
	}

	headers, rows, err := readTemplate(templatePath)
	if err != nil {
		return nil, err
	}
	if outPath == "" {
		outPath = filepath.Join(dir, ListFileName)
	}

	out, err := os.Create(outPath)
	if err != nil {
		return nil, services.Wrap(services.ErrConfiguration, "packaging", "file list", "create inventory", err)
	}
	defer out.Close()

	writer := csv.NewWriter(out)
	if err := writer.Write(headers); err != nil {
		return nil, services.Wrap(nil, "packaging", "file list", "write header", err)
	}

	list := &FileList{Path: outPath}

	for _, row := range rows {
		pattern := strings.TrimSpace(row[columnFileName])
		if pattern == "" {
			continue
		}
		matches, err := filepath.Glob(filepath.Join(dir, pattern))
		if err != nil {
			return nil, services.Wrap(services.ErrValidation, "packaging", "file list", fmt.Sprintf("bad pattern %q", pattern), err)
		}
		if len(matches) == 0 {
			logger.Warn("inventory pattern matched no files", "pattern", pattern)
			continue
		}
		sort.Strings(matches)
		for _, match := range matches {
			stat, err := os.Stat(match)
			if err != nil || stat.IsDir() {
				continue
			}
			digest, err := SHA512File(match)
			if err != nil {
				return nil, services.Wrap(nil, "packaging", "file list", fmt.Sprintf("hash %s", filepath.Base(match)), err)
			}
			entry := cloneRow(row)
			entry[columnFileName] = filepath.Base(match)
			entry[columnSizeKB] = formatKB(stat.Size())
			entry[columnHash] = digest
			if err := writer.Write(rowValues(headers, entry)); err != nil {
				return nil, services.Wrap(nil, "packaging", "file list", "write row", err)
			}
			list.Names = append(list.Names, filepath.Base(match))
		}
	}

	selfRow := map[string]string{
		columnFileName: ListFileName,
		columnFileType: "Comma Separated Value (.CSV)",
		columnDesc:     listSelfDescription,
		columnSizeKB:   "N/A",
		columnDict:     "file_list_data_dict.csv",
		columnHash:     "N/A",
		columnNotes:    listSelfNotes,
	}
	if err := writer.Write(rowValues(headers, selfRow)); err != nil {
		return nil, services.Wrap(nil, "packaging", "file list", "write row", err)
	}
	list.Names = append(list.Names, ListFileName)

	recordings, err := wavFiles(dir)
	if err != nil {
		return nil, err
	}
	for _, wav := range recordings {
		stat, err := os.Stat(wav)
		if err != nil {
			return nil, services.Wrap(nil, "packaging", "file list", fmt.Sprintf("stat %s", filepath.Base(wav)), err)
		}
		digest, err := SHA512File(wav)
		if err != nil {
			return nil, services.Wrap(nil, "packaging", "file list", fmt.Sprintf("hash %s", filepath.Base(wav)), err)
		}
		row := map[string]string{
			columnFileName: filepath.Base(wav),
			columnFileType: "Waveform Audio File Format (.WAV)",
			columnDesc:     wavDescription,
			columnSizeKB:   formatKB(stat.Size()),
			columnDict:     "WAV_data_dict.csv",
			columnHash:     digest,
			columnNotes:    "",
		}
		if err := writer.Write(rowValues(headers, row)); err != nil {
			return nil, services.Wrap(nil, "packaging", "file list", "write row", err)
		}
		list.Names = append(list.Names, filepath.Base(wav))
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, services.Wrap(nil, "packaging", "file list", "flush inventory", err)
	}
	return list, nil
}

// ReadFileList returns the File Name column values of an existing inventory.
func ReadFileList(path string) ([]string, error) {
	file, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, services.Wrap(services.ErrNotFound, "packaging", "file list", fmt.Sprintf("inventory %s not found", path), nil)
		}
		return nil, services.Wrap(nil, "packaging", "file list", "open inventory", err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1
	records, err := reader.ReadAll()
	if err != nil {
		return nil, services.Wrap(services.ErrValidation, "packaging", "file list", "parse inventory", err)
	}
	if len(records) == 0 {
		return nil, services.Wrap(services.ErrValidation, "packaging", "file list", "inventory is empty", nil)
	}
	nameCol := -1
	for i, header := range records[0] {
		if strings.TrimSpace(header) == columnFileName {
			nameCol = i
			break
		}
	}
	if nameCol < 0 {
		return nil, services.Wrap(services.ErrValidation, "packaging", "file list", "inventory is missing the File Name column", nil)
	}
	names := make([]string, 0, len(records)-1)
	for _, record := range records[1:] {
		if nameCol >= len(record) {
			continue
		}
		if name := strings.TrimSpace(record[nameCol]); name != "" {
			names = append(names, name)
		}
	}
	return names, nil
}

func readTemplate(path string) ([]string, []map[string]string, error) {
	file, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil, services.Wrap(services.ErrNotFound, "packaging", "file list", fmt.Sprintf("template %s not found", path), nil)
		}
		return nil, nil, services.Wrap(nil, "packaging", "file list", "open template", err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1
	records, err := reader.ReadAll()
	if err != nil {
		return nil, nil, services.Wrap(services.ErrValidation, "packaging", "file list", "parse template", err)
	}
	if len(records) == 0 {
		return nil, nil, services.Wrap(services.ErrValidation, "packaging", "file list", "template has no header row", nil)
	}

	headers := make([]string, len(records[0]))
	for i, header := range records[0] {
		headers[i] = strings.TrimSpace(strings.TrimPrefix(header, "\uFEFF"))
	}
	for _, required := range []string{columnFileName, columnSizeKB, columnHash} {
		if !containsHeader(headers, required) {
			return nil, nil, services.Wrap(services.ErrValidation, "packaging", "file list", fmt.Sprintf("template is missing the %q column", required), nil)
		}
	}

	rows := make([]map[string]string, 0, len(records)-1)
	for _, record := range records[1:] {
		row := make(map[string]string, len(headers))
		for i, header := range headers {
			if i < len(record) {
				row[header] = record[i]
			} else {
				row[header] = ""
			}
		}
		rows = append(rows, row)
	}
	return headers, rows, nil
}

func wavFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, services.Wrap(services.ErrConfiguration, "packaging", "file list", fmt.Sprintf("read %s", dir), err)
	}
	var recordings []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if strings.EqualFold(filepath.Ext(entry.Name()), ".wav") {
			recordings = append(recordings, filepath.Join(dir, entry.Name()))
		}
	}
	sort.Strings(recordings)
	return recordings, nil
}

func containsHeader(headers []string, name string) bool {
	for _, header := range headers {
		if header == name {
			return true
		}
	}
	return false
}

func cloneRow(row map[string]string) map[string]string {
	clone := make(map[string]string, len(row))
	for key, value := range row {
		clone[key] = value
	}
	return clone
}

func rowValues(headers []string, row map[string]string) []string {
	values := make([]string, len(headers))
	for i, header := range headers {
		values[i] = row[header]
	}
	return values
}

func formatKB(sizeBytes int64) string {
	return fmt.Sprintf("%.2f", float64(sizeBytes)/1024.0)
}
