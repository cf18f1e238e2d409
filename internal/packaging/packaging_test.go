package packaging

import (
	"archive/zip"
	"encoding/csv"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ARISA-Lab-LLC/ESCSP-AZUS/internal/services"
	"github.com/ARISA-Lab-LLC/ESCSP-AZUS/internal/testsupport"
)

const templateHeader = "File Name,File Type,Description,File size (KB),Associated Data Dictionary,SHA-512 Hash,Notes\n"

func writeTemplate(t *testing.T, dir string, rows ...string) string {
	t.Helper()
	path := filepath.Join(dir, "template.csv")
	testsupport.WriteFile(t, path, templateHeader+strings.Join(rows, "\n")+"\n")
	return path
}

func readCSV(t *testing.T, path string) [][]string {
	t.Helper()
	file, err := os.Open(path)
	if err != nil {
		t.Fatalf("open %s: %v", path, err)
	}
	defer file.Close()
	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1
	records, err := reader.ReadAll()
	if err != nil {
		t.Fatalf("parse %s: %v", path, err)
	}
	return records
}

func TestGenerateFileListFollowsTemplatePatterns(t *testing.T) {
	dir := t.TempDir()
	testsupport.WriteFile(t, filepath.Join(dir, "README.md"), "readme body")
	testsupport.WriteFile(t, filepath.Join(dir, "CONFIG.TXT"), "device config")
	testsupport.WriteFile(t, filepath.Join(dir, "20240406_120000.WAV"), "audio")
	template := writeTemplate(t, dir,
		"README.md,Markdown (.md),Site description,,README_data_dict.csv,,",
		"*.TXT,Plain text (.TXT),Device configuration,,CONFIG_data_dict.csv,,",
		"missing-*.bin,Binary,Never matches,,,,")

	list, err := GenerateFileList(dir, template, "", slog.Default())
	if err != nil {
		t.Fatalf("GenerateFileList: %v", err)
	}

	want := []string{"README.md", "CONFIG.TXT", ListFileName, "20240406_120000.WAV"}
	if len(list.Names) != len(want) {
		t.Fatalf("names = %v, want %v", list.Names, want)
	}
	for i, name := range want {
		if list.Names[i] != name {
			t.Fatalf("names[%d] = %q, want %q", i, list.Names[i], name)
		}
	}

	records := readCSV(t, list.Path)
	if len(records) != 5 {
		t.Fatalf("row count = %d, want 5", len(records))
	}
	readme := records[1]
	if readme[0] != "README.md" || readme[4] != "README_data_dict.csv" {
		t.Fatalf("readme row = %v", readme)
	}
	if readme[3] == "" || readme[5] == "" {
		t.Fatalf("readme row missing size or hash: %v", readme)
	}
	self := records[3]
	if self[0] != ListFileName || self[3] != "N/A" || self[5] != "N/A" {
		t.Fatalf("inventory self row = %v", self)
	}
	wav := records[4]
	if wav[0] != "20240406_120000.WAV" || wav[4] != "WAV_data_dict.csv" {
		t.Fatalf("wav row = %v", wav)
	}
	if len(wav[5]) != 128 {
		t.Fatalf("wav hash length = %d, want 128", len(wav[5]))
	}
}

func TestGenerateFileListRejectsTemplateWithoutRequiredColumns(t *testing.T) {
	dir := t.TempDir()
	template := filepath.Join(dir, "template.csv")
	testsupport.WriteFile(t, template, "File Name,Notes\nREADME.md,\n")

	_, err := GenerateFileList(dir, template, "", slog.Default())
	if !errors.Is(err, services.ErrValidation) {
		t.Fatalf("err = %v, want validation marker", err)
	}
}

func TestGenerateFileListMissingTemplate(t *testing.T) {
	dir := t.TempDir()
	_, err := GenerateFileList(dir, filepath.Join(dir, "absent.csv"), "", slog.Default())
	if !errors.Is(err, services.ErrNotFound) {
		t.Fatalf("err = %v, want not-found marker", err)
	}
}

func TestBuildArchiveAndVerify(t *testing.T) {
	dir := t.TempDir()
	testsupport.WriteFile(t, filepath.Join(dir, "README.md"), "readme")
	testsupport.WriteFile(t, filepath.Join(dir, "20240406_120000.WAV"), "audio")
	testsupport.WriteFile(t, filepath.Join(dir, ListFileName), "File Name\nREADME.md\n")

	names := []string{"README.md", "20240406_120000.WAV", ListFileName}
	archivePath, err := BuildArchive("007", dir, names, slog.Default())
	if err != nil {
		t.Fatalf("BuildArchive: %v", err)
	}
	if filepath.Base(archivePath) != "ESID_007.zip" {
		t.Fatalf("archive name = %s", filepath.Base(archivePath))
	}

	reader, err := zip.OpenReader(archivePath)
	if err != nil {
		t.Fatalf("open archive: %v", err)
	}
	defer reader.Close()
	members := make(map[string]bool)
	for _, member := range reader.File {
		if strings.Contains(member.Name, "/") {
			t.Fatalf("member %q is not flat", member.Name)
		}
		members[member.Name] = true
	}
	for _, name := range names {
		if !members[name] {
			t.Fatalf("archive missing %s", name)
		}
	}

	missing, err := VerifyArchive(archivePath, names, slog.Default())
	if err != nil {
		t.Fatalf("VerifyArchive: %v", err)
	}
	if len(missing) != 0 {
		t.Fatalf("missing = %v", missing)
	}

	missing, err = VerifyArchive(archivePath, append(names, "absent.csv"), slog.Default())
	if err != nil {
		t.Fatalf("VerifyArchive: %v", err)
	}
	if len(missing) != 1 || missing[0] != "absent.csv" {
		t.Fatalf("missing = %v, want [absent.csv]", missing)
	}
}

func TestBuildArchiveReportsMissingInputs(t *testing.T) {
	dir := t.TempDir()
	testsupport.WriteFile(t, filepath.Join(dir, "README.md"), "readme")

	_, err := BuildArchive("007", dir, []string{"README.md", "gone.csv"}, slog.Default())
	if !errors.Is(err, services.ErrValidation) {
		t.Fatalf("err = %v, want validation marker", err)
	}
	if !strings.Contains(err.Error(), "gone.csv") {
		t.Fatalf("error does not name the missing file: %v", err)
	}
}

func TestWriteManifestExcludesRecordings(t *testing.T) {
	dir := t.TempDir()
	names := []string{"README.md", "20240406_120000.WAV", "20240407_120000.wav", ListFileName}

	path, listed, err := WriteManifest("007", dir, names)
	if err != nil {
		t.Fatalf("WriteManifest: %v", err)
	}
	if filepath.Base(path) != "ESID_007_to_upload.csv" {
		t.Fatalf("manifest name = %s", filepath.Base(path))
	}
	want := []string{"ESID_007.zip", "README.md", ListFileName}
	if len(listed) != len(want) {
		t.Fatalf("listed = %v, want %v", listed, want)
	}
	for i, name := range want {
		if listed[i] != name {
			t.Fatalf("listed[%d] = %q, want %q", i, listed[i], name)
		}
	}

	records := readCSV(t, path)
	if records[0][0] != "File Name" {
		t.Fatalf("header = %v", records[0])
	}
	if records[1][0] != "ESID_007.zip" {
		t.Fatalf("first manifest entry = %q, want the archive", records[1][0])
	}
}

func TestMarkdownFromHTML(t *testing.T) {
	source := `<html><body>
<h2>Eclipse Soundscapes</h2>
<p>Recordings from <strong>one site</strong> during the <em>2024</em> eclipse.</p>
<ul><li>First item</li><li>Second <a href="https://example.org/dict">dictionary</a></li></ul>
</body></html>`

	markdown, err := MarkdownFromHTML(source)
	if err != nil {
		t.Fatalf("MarkdownFromHTML: %v", err)
	}
	for _, want := range []string{
		"## Eclipse Soundscapes",
		"**one site**",
		"*2024*",
		"- First item",
		"[dictionary](https://example.org/dict)",
	} {
		if !strings.Contains(markdown, want) {
			t.Fatalf("markdown missing %q:\n%s", want, markdown)
		}
	}
}

func TestPrepareProducesAllArtifacts(t *testing.T) {
	dir := t.TempDir()
	testsupport.WriteFile(t, filepath.Join(dir, "README.html"), "<h1>Site 007</h1><p>Description</p>")
	testsupport.WriteFile(t, filepath.Join(dir, "CONFIG.TXT"), "device config")
	testsupport.WriteFile(t, filepath.Join(dir, "20240406_120000.WAV"), "audio")
	template := writeTemplate(t, dir,
		"README.html,HTML (.html),Site description,,README_data_dict.csv,,",
		"README.md,Markdown (.md),Site description,,README_data_dict.csv,,",
		"CONFIG.TXT,Plain text (.TXT),Device configuration,,CONFIG_data_dict.csv,,")

	result, err := Prepare("007", dir, template, slog.Default())
	if err != nil {
		t.Fatalf("Prepare: %v", err)
	}

	markdown, err := os.ReadFile(result.MarkdownPath)
	if err != nil {
		t.Fatalf("read markdown companion: %v", err)
	}
	if !strings.Contains(string(markdown), "# Site 007") {
		t.Fatalf("markdown companion = %q", markdown)
	}

	if _, err := os.Stat(result.ArchivePath); err != nil {
		t.Fatalf("archive not written: %v", err)
	}
	if len(result.Uploads) == 0 || result.Uploads[0] != "ESID_007.zip" {
		t.Fatalf("uploads = %v", result.Uploads)
	}
	for _, name := range result.Uploads {
		if strings.EqualFold(filepath.Ext(name), ".wav") {
			t.Fatalf("manifest lists a recording: %v", result.Uploads)
		}
	}

	names, err := ReadFileList(result.InventoryPath)
	if err != nil {
		t.Fatalf("ReadFileList: %v", err)
	}
	found := false
	for _, name := range names {
		if name == "20240406_120000.WAV" {
			found = true
		}
	}
	if !found {
		t.Fatalf("inventory does not list the recording: %v", names)
	}
}
