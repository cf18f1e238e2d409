package results_test

import (
	"encoding/csv"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/ARISA-Lab-LLC/ESCSP-AZUS/internal/results"
	"github.com/ARISA-Lab-LLC/ESCSP-AZUS/internal/services/invenio"
	"github.com/ARISA-Lab-LLC/ESCSP-AZUS/internal/uploader"
)

type fakeTracker struct {
	marked []string
	err    error
}

func (f *fakeTracker) MarkUploaded(path string) error {
	if f.err != nil {
		return f.err
	}
	f.marked = append(f.marked, path)
	return nil
}

func readCSV(t *testing.T, path string) [][]string {
	t.Helper()
	file, err := os.Open(path)
	if err != nil {
		t.Fatalf("open %s: %v", path, err)
	}
	defer file.Close()
	rows, err := csv.NewReader(file).ReadAll()
	if err != nil {
		t.Fatalf("read %s: %v", path, err)
	}
	return rows
}

func successOutcome(t *testing.T) uploader.Outcome {
	t.Helper()
	var record invenio.Record
	raw := `{"id":"42","created":"2024-04-20","status":"draft","links":{"self_html":"https://example.org/records/42"},"pids":{"doi":{"identifier":"10.5281/zenodo.42"}}}`
	if err := json.Unmarshal([]byte(raw), &record); err != nil {
		t.Fatalf("unmarshal fixture: %v", err)
	}
	return uploader.Outcome{Successful: true, DraftID: "42", Record: &record}
}

func TestRecordRoutesSuccessAndMarksTracker(t *testing.T) {
	dir := t.TempDir()
	tracker := &fakeTracker{}
	recorder := &results.Recorder{
		SuccessFile: filepath.Join(dir, "success.csv"),
		FailureFile: filepath.Join(dir, "failure.csv"),
		Tracker:     tracker,
	}

	if err := recorder.Record("007", "/data/ESID_007.zip", successOutcome(t)); err != nil {
		t.Fatalf("Record returned error: %v", err)
	}

	rows := readCSV(t, recorder.SuccessFile)
	if len(rows) != 2 {
		t.Fatalf("expected header plus one row, got %d rows", len(rows))
	}
	if rows[0][0] != "esid" || rows[0][13] != "error_message" {
		t.Fatalf("unexpected header: %v", rows[0])
	}
	if rows[1][0] != "007" || rows[1][1] != "42" || rows[1][2] != "10.5281/zenodo.42" {
		t.Fatalf("unexpected row: %v", rows[1])
	}
	if rows[1][11] != "https://example.org/records/42" {
		t.Fatalf("expected record link in row, got %v", rows[1])
	}

	if len(tracker.marked) != 1 || tracker.marked[0] != "/data/ESID_007.zip" {
		t.Fatalf("expected exactly one mark, got %v", tracker.marked)
	}
	if _, err := os.Stat(recorder.FailureFile); !os.IsNotExist(err) {
		t.Fatal("failure file must not be created on success")
	}
}

func TestRecordRoutesFailureWithoutMarking(t *testing.T) {
	dir := t.TempDir()
	tracker := &fakeTracker{}
	recorder := &results.Recorder{
		SuccessFile: filepath.Join(dir, "success.csv"),
		FailureFile: filepath.Join(dir, "failure.csv"),
		Tracker:     tracker,
	}

	outcome := uploader.Outcome{
		DraftID: "42",
		Failure: &uploader.Failure{Kind: "HTTPError", Message: "api returned 400"},
	}
	if err := recorder.Record("007", "/data/ESID_007.zip", outcome); err != nil {
		t.Fatalf("Record returned error: %v", err)
	}

	rows := readCSV(t, recorder.FailureFile)
	if len(rows) != 2 {
		t.Fatalf("expected header plus one row, got %d", len(rows))
	}
	if rows[1][12] != "HTTPError" || rows[1][13] != "api returned 400" {
		t.Fatalf("unexpected error columns: %v", rows[1])
	}
	if len(tracker.marked) != 0 {
		t.Fatalf("failures must never mark the tracker, got %v", tracker.marked)
	}
}

func TestAppendDoesNotRepeatHeader(t *testing.T) {
	path := filepath.Join(t.TempDir(), "results.csv")
	for i := 0; i < 2; i++ {
		if err := results.Append(path, results.PersistedResult{ESID: "001"}); err != nil {
			t.Fatalf("Append returned error: %v", err)
		}
	}
	rows := readCSV(t, path)
	if len(rows) != 3 {
		t.Fatalf("expected one header and two rows, got %d", len(rows))
	}
	if rows[1][0] != "001" || rows[2][0] != "001" {
		t.Fatalf("unexpected rows: %v", rows)
	}
}
