package collectors

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/ARISA-Lab-LLC/ESCSP-AZUS/internal/services"
)

// Category classifies a dataset group within a project. For Eclipse
// Soundscapes the categories map to eclipse types; the pipeline only
// treats the value as a string.
type Category string

const (
	CategoryAnnular Category = "Annular"
	CategoryTotal   Category = "Total"
	CategoryPartial Category = "Partial"
)

var categoryLabels = map[Category]string{
	CategoryAnnular: "Annular Solar Eclipse",
	CategoryTotal:   "Total Solar Eclipse",
	CategoryPartial: "Partial Solar Eclipse",
}

var titleCaser = cases.Title(language.English)

// Label returns the human-readable event label used in record titles,
// e.g. "Total Solar Eclipse".
func (c Category) Label() string {
	if label, ok := categoryLabels[c]; ok {
		return label
	}
	return titleCaser.String(strings.TrimSpace(string(c))) + " Solar Eclipse"
}

// Collector is one validated row of a collectors CSV: the per-dataset
// attributes recorded by the site volunteer.
type Collector struct {
	ESID              string
	Affiliation       string
	FilesDateTimeMode string
	Version           string
	Latitude          string
	Longitude         string
	EventDate         string
	Category          Category
	Coverage          string
	StartTimeUTC      string
	TotalityStartUTC  string
	MaximumUTC        string
	TotalityEndUTC    string
	EndTimeUTC        string
	Subjects          string

	// Derived from the archive's WAV member names before metadata assembly.
	FirstRecordingDay string
	LastRecordingDay  string
}

// column names one CSV column: the canonical header plus accepted
// alternate spellings. Lookups try the canonical name first.
type column struct {
	name    string
	aliases []string
}

var baseColumns = []column{
	{name: "ESID", aliases: []string{"esid"}},
	{name: "Data Collector Affiliations", aliases: []string{"affiliation"}},
	{name: "Latitude", aliases: []string{"latitude"}},
	{name: "Longitude", aliases: []string{"longitude"}},
	{name: "Local Eclipse Type", aliases: []string{"eclipse_type"}},
	{name: "Eclipse Percent (%)", aliases: []string{"eclipse_coverage"}},
	{name: "WAV Files Time & Date Settings", aliases: []string{"files_date_time_mode"}},
	{name: "Eclipse Date", aliases: []string{"eclipse_date"}},
	{name: "Eclipse Start Time (UTC) (1st Contact)", aliases: []string{"eclipse_start_time_utc"}},
	{name: "Eclipse Maximum (UTC)", aliases: []string{"eclipse_maximum_time_utc"}},
	{name: "Eclipse End Time (UTC) (4th Contact)", aliases: []string{"eclipse_end_time_utc"}},
	{name: "Version", aliases: []string{"version"}},
	{name: "Keywords and subjects", aliases: []string{"subjects"}},
}

var totalityColumns = []column{
	{name: "Totality Start Time (UTC) (2nd Contact)", aliases: []string{"eclipse_totality_start_time_utc"}},
	{name: "Totality End Time (UTC) (3rd Contact)", aliases: []string{"eclipse_totality_end_time_utc"}},
}

// ParseCSV reads the collectors CSV for one dataset group. Every expected
// header must be present; total-eclipse groups additionally require the
// totality contact-time columns.
func ParseCSV(path string, category Category) ([]Collector, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, services.Wrap(services.ErrConfiguration, "collectors", "open csv", path, err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1

	headerRow, err := reader.Read()
	if err == io.EOF {
		return nil, services.Wrap(services.ErrValidation, "collectors", "read header", "no headers found in the CSV file", nil)
	}
	if err != nil {
		return nil, services.Wrap(services.ErrValidation, "collectors", "read header", path, err)
	}

	byHeader := make(map[string]int, len(headerRow))
	for i, name := range headerRow {
		byHeader[strings.TrimSpace(name)] = i
	}

	// Resolve each column to its index under the canonical header or any
	// accepted alias. Totality contact times are required only for total
	// eclipse groups but are read whenever present.
	index := make(map[string]int, len(baseColumns)+len(totalityColumns))
	var missing []string
	resolve := func(cols []column, required bool) {
		for _, col := range cols {
			i, ok := byHeader[col.name]
			for _, alias := range col.aliases {
				if ok {
					break
				}
				i, ok = byHeader[alias]
			}
			if !ok {
				if required {
					missing = append(missing, col.name)
				}
				continue
			}
			index[col.name] = i
		}
	}
	resolve(baseColumns, true)
	resolve(totalityColumns, category == CategoryTotal)
	if len(missing) > 0 {
		return nil, services.Wrap(services.ErrValidation, "collectors", "validate headers",
			fmt.Sprintf("expected CSV headers not found: %s", strings.Join(missing, ", ")), nil)
	}

	field := func(row []string, name string) string {
		i, ok := index[name]
		if !ok || i >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[i])
	}

	var parsed []Collector
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, services.Wrap(services.ErrValidation, "collectors", "read row", path, err)
		}
		parsed = append(parsed, Collector{
			ESID:              field(row, "ESID"),
			Affiliation:       field(row, "Data Collector Affiliations"),
			FilesDateTimeMode: field(row, "WAV Files Time & Date Settings"),
			Version:           field(row, "Version"),
			Latitude:          field(row, "Latitude"),
			Longitude:         field(row, "Longitude"),
			EventDate:         field(row, "Eclipse Date"),
			Category:          category,
			Coverage:          field(row, "Eclipse Percent (%)"),
			StartTimeUTC:      field(row, "Eclipse Start Time (UTC) (1st Contact)"),
			TotalityStartUTC:  field(row, "Totality Start Time (UTC) (2nd Contact)"),
			MaximumUTC:        field(row, "Eclipse Maximum (UTC)"),
			TotalityEndUTC:    field(row, "Totality End Time (UTC) (3rd Contact)"),
			EndTimeUTC:        field(row, "Eclipse End Time (UTC) (4th Contact)"),
			Subjects:          field(row, "Keywords and subjects"),
		})
	}
	return parsed, nil
}

// SplitValues splits a colon-delimited list field, trimming entries and
// dropping empty ones.
func SplitValues(value string) []string {
	var values []string
	for _, part := range strings.Split(value, ":") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			values = append(values, trimmed)
		}
	}
	return values
}
