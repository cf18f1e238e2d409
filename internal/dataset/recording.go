package dataset

import (
	"archive/zip"
	"path"
	"strings"
	"time"

	"github.com/ARISA-Lab-LLC/ESCSP-AZUS/internal/services"
)

// RecordingDateFormat is the wire format for derived recording dates.
const RecordingDateFormat = "2006-01-02"

// Recordings before this year are stray device-clock artifacts and ignored.
const minRecordingYear = 2023

// RecordingWindow scans the archive's WAV member names for their recording
// dates (stems of the form YYYYMMDD_HHMMSS) and returns the earliest and
// latest day. Members that do not parse are skipped; an archive with no
// parseable dates is an error.
func RecordingWindow(archivePath string) (first, last string, err error) {
	reader, err := zip.OpenReader(archivePath)
	if err != nil {
		return "", "", services.Wrap(services.ErrValidation, "recording", "open archive", archivePath, err)
	}
	defer reader.Close()

	var earliest, latest time.Time
	for _, member := range reader.File {
		name := path.Base(member.Name)
		if !strings.EqualFold(path.Ext(name), ".wav") {
			continue
		}
		stem := strings.TrimSuffix(name, path.Ext(name))
		dateStr, _, _ := strings.Cut(stem, "_")
		date, parseErr := time.Parse("20060102", dateStr)
		if parseErr != nil {
			continue
		}
		if date.Year() < minRecordingYear {
			continue
		}
		if earliest.IsZero() || date.Before(earliest) {
			earliest = date
		}
		if latest.IsZero() || date.After(latest) {
			latest = date
		}
	}

	if earliest.IsZero() {
		return "", "", services.Wrap(services.ErrValidation, "recording", "scan archive",
			"no valid dates found in the WAV file names", nil)
	}
	return earliest.Format(RecordingDateFormat), latest.Format(RecordingDateFormat), nil
}
