package metadata

import (
	"encoding/csv"
	"io"
	"log/slog"
	"os"
	"strings"
)

// relatedIdentifiers loads citation links from an optional CSV. A missing
// file or missing required column yields an empty list with a logged note;
// citation enrichment must never block publication.
func (b *Builder) relatedIdentifiers(path string) []RelatedIdentifier {
	rows := b.readEnrichmentCSV(path, "related identifiers", []string{"identifier", "scheme", "relation_type"})
	var identifiers []RelatedIdentifier
	for _, row := range rows {
		identifier := strings.TrimSpace(row["identifier"])
		if identifier == "" {
			continue
		}
		entry := RelatedIdentifier{
			Identifier:   identifier,
			Scheme:       strings.TrimSpace(row["scheme"]),
			RelationType: strings.TrimSpace(row["relation_type"]),
		}
		if rt := strings.TrimSpace(row["resource_type"]); rt != "" {
			entry.ResourceType = &ResourceType{ID: rt}
		}
		identifiers = append(identifiers, entry)
	}
	return identifiers
}

// references loads bibliographic citation strings from an optional CSV with
// a single "reference" column.
func (b *Builder) references(path string) []string {
	rows := b.readEnrichmentCSV(path, "references", []string{"reference"})
	var references []string
	for _, row := range rows {
		if ref := strings.TrimSpace(row["reference"]); ref != "" {
			references = append(references, ref)
		}
	}
	return references
}

func (b *Builder) readEnrichmentCSV(path, kind string, required []string) []map[string]string {
	if strings.TrimSpace(path) == "" {
		return nil
	}
	file, err := os.Open(path)
	if err != nil {
		b.note(kind+" CSV not found, skipping", "path", path)
		return nil
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		b.note(kind+" CSV unreadable, skipping", "path", path, "error", err)
		return nil
	}
	index := make(map[string]int, len(header))
	for i, name := range header {
		index[strings.TrimSpace(name)] = i
	}
	for _, name := range required {
		if _, ok := index[name]; !ok {
			b.note(kind+" CSV missing required column, skipping", "path", path, "column", name)
			return nil
		}
	}

	var rows []map[string]string
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			b.note(kind+" CSV row unreadable, skipping remainder", "path", path, "error", err)
			break
		}
		values := make(map[string]string, len(index))
		for name, i := range index {
			if i < len(row) {
				values[name] = row[i]
			}
		}
		rows = append(rows, values)
	}
	return rows
}

func (b *Builder) note(msg string, args ...any) {
	if b.Logger != nil {
		b.Logger.Info(msg, args...)
	} else {
		slog.Default().Info(msg, args...)
	}
}
