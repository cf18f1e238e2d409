// Package results persists upload outcomes to flat CSV logs and advances
// the upload tracker on success.
package results

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/ARISA-Lab-LLC/ESCSP-AZUS/internal/services/invenio"
	"github.com/ARISA-Lab-LLC/ESCSP-AZUS/internal/uploader"
)

// PersistedResult is one row of a results CSV: the dataset identifier, the
// remote identifiers assigned to it, and the error classification when the
// attempt failed. Rows are written once and never updated.
type PersistedResult struct {
	ESID         string
	ID           string
	DOI          string
	RecID        string
	Created      string
	Modified     string
	Updated      string
	Owners       string
	Status       string
	State        string
	Submitted    string
	Link         string
	ErrorType    string
	ErrorMessage string
}

var csvHeader = []string{
	"esid", "id", "doi", "recid", "created", "modified", "updated",
	"owners", "status", "state", "submitted", "link",
	"error_type", "error_message",
}

func (r PersistedResult) row() []string {
	return []string{
		r.ESID, r.ID, r.DOI, r.RecID, r.Created, r.Modified, r.Updated,
		r.Owners, r.Status, r.State, r.Submitted, r.Link,
		r.ErrorType, r.ErrorMessage,
	}
}

// FromOutcome maps an upload outcome onto a result row.
func FromOutcome(esid string, outcome uploader.Outcome) PersistedResult {
	result := PersistedResult{ESID: esid}
	if record := outcome.Record; record != nil {
		result.applyRecord(record)
	}
	if outcome.Failure != nil {
		result.ErrorType = outcome.Failure.Kind
		result.ErrorMessage = outcome.Failure.Message
	}
	return result
}

// FromRecord maps a repository record onto a result row, used by the
// published-records export.
func FromRecord(record *invenio.Record) PersistedResult {
	var result PersistedResult
	result.applyRecord(record)
	return result
}

func (r *PersistedResult) applyRecord(record *invenio.Record) {
	r.ID = record.ID.String()
	r.DOI = record.DOIValue()
	r.RecID = record.RecID.String()
	r.Created = record.Created
	r.Modified = record.Modified
	r.Updated = record.Updated
	r.Owners = record.Owners.String()
	r.Status = record.Status
	r.State = record.State
	r.Submitted = record.SubmittedValue()
	r.Link = record.Links.SelfHTML
}

// Tracker is the subset of the upload tracker the recorder needs.
type Tracker interface {
	MarkUploaded(path string) error
}

// Recorder routes outcomes into the success or failure CSV and marks the
// archive uploaded only after a success row is durably written. A crash
// between remote success and the local mark costs at most a redundant
// publish on the next run, never a lost record of success.
type Recorder struct {
	SuccessFile string
	FailureFile string
	Tracker     Tracker
}

// Record appends the outcome's row to the matching CSV. On success it then
// advances the tracker for the archive path.
func (r *Recorder) Record(esid, archivePath string, outcome uploader.Outcome) error {
	result := FromOutcome(esid, outcome)

	target := r.FailureFile
	if outcome.Successful {
		target = r.SuccessFile
	}
	if err := Append(target, result); err != nil {
		return err
	}

	if outcome.Successful && r.Tracker != nil {
		if err := r.Tracker.MarkUploaded(archivePath); err != nil {
			return fmt.Errorf("mark uploaded: %w", err)
		}
	}
	return nil
}

// RecordFailure writes a bare failure row, used for datasets that fail
// before the upload driver runs (for example, no matching collector).
func (r *Recorder) RecordFailure(esid, errorType, message string) error {
	return Append(r.FailureFile, PersistedResult{
		ESID:         esid,
		ErrorType:    errorType,
		ErrorMessage: message,
	})
}

// Append writes one result row to path, emitting the header first when the
// file does not yet exist.
func Append(path string, result PersistedResult) error {
	_, statErr := os.Stat(path)
	writeHeader := errors.Is(statErr, fs.ErrNotExist)

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("results: create directory: %w", err)
		}
	}
	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("results: open %s: %w", path, err)
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	if writeHeader {
		if err := writer.Write(csvHeader); err != nil {
			return fmt.Errorf("results: write header: %w", err)
		}
	}
	if err := writer.Write(result.row()); err != nil {
		return fmt.Errorf("results: write row: %w", err)
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		return fmt.Errorf("results: flush %s: %w", path, err)
	}
	return nil
}
