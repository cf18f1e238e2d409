package metadata_test

import (
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/ARISA-Lab-LLC/ESCSP-AZUS/internal/collectors"
	"github.com/ARISA-Lab-LLC/ESCSP-AZUS/internal/config"
	"github.com/ARISA-Lab-LLC/ESCSP-AZUS/internal/metadata"
	"github.com/ARISA-Lab-LLC/ESCSP-AZUS/internal/services"
	"github.com/ARISA-Lab-LLC/ESCSP-AZUS/internal/testsupport"
)

func testBuilder() *metadata.Builder {
	identity := config.Default().Identity
	identity.Creators = []config.Person{
		{Type: "organizational", Name: "ARISA Lab, L.L.C.", Role: "hostinginstitution"},
		{Type: "personal", GivenName: "Taylor", FamilyName: "Reyes", ORCID: "0000-0000-0000-0001", Role: "researcher", Affiliations: []string{"ARISA Lab, L.L.C."}},
	}
	identity.Funding = []config.Funding{{
		FunderID:    "027ka1x80",
		AwardTitle:  "Eclipse Soundscapes: Citizen Science Project",
		AwardNumber: "80NSSC21M0008",
		AwardURL:    "https://science.nasa.gov/sciact-team/eclipse-soundscapes/",
	}}
	return &metadata.Builder{
		Identity: identity,
		Now:      func() time.Time { return time.Date(2024, 4, 20, 12, 0, 0, 0, time.UTC) },
	}
}

func testCollector() collectors.Collector {
	return collectors.Collector{
		ESID:              "007",
		Affiliation:       "Public Library: Astronomy Club",
		EventDate:         "2024-04-08",
		Category:          collectors.CategoryTotal,
		Version:           "2024.1.0",
		Subjects:          "eclipse: soundscape: audio",
		FirstRecordingDay: "2024-04-06",
		LastRecordingDay:  "2024-04-10",
	}
}

func descriptionFixture(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "README.html")
	testsupport.WriteFile(t, path, "<p>Audio recordings from ESID#007.</p>")
	return path
}

func TestBuildAssemblesPayload(t *testing.T) {
	builder := testBuilder()
	built, err := builder.Build(metadata.Input{
		Collector:       testCollector(),
		DescriptionPath: descriptionFixture(t),
	})
	if err != nil {
		t.Fatalf("Build returned error: %v", err)
	}
	payload := built.Payload

	if payload.Title != "2024-04-08 Total Solar Eclipse ESID#007" {
		t.Fatalf("unexpected title: %q", payload.Title)
	}
	if payload.Description != "<p>Audio recordings from ESID#007.</p>" {
		t.Fatalf("description must be the file text verbatim, got %q", payload.Description)
	}
	if payload.PublicationDate != "2024-04-20" {
		t.Fatalf("unexpected publication date: %q", payload.PublicationDate)
	}

	last := payload.Creators[len(payload.Creators)-1]
	if last.PersonOrOrg.FamilyName != "Volunteer Scientist" || last.Role.ID != "datacollector" {
		t.Fatalf("expected anonymized volunteer creator last, got %+v", last)
	}
	if len(last.Affiliations) != 2 || last.Affiliations[0].Name != "Public Library" {
		t.Fatalf("unexpected volunteer affiliations: %+v", last.Affiliations)
	}

	if len(payload.Subjects) != 3 || payload.Subjects[2].Subject != "audio" {
		t.Fatalf("unexpected subjects: %+v", payload.Subjects)
	}
	if len(payload.Funding) != 1 || payload.Funding[0].Award.Number != "80NSSC21M0008" {
		t.Fatalf("unexpected funding: %+v", payload.Funding)
	}
	if len(built.PIDs) != 0 {
		t.Fatalf("expected no pids without reservation, got %v", built.PIDs)
	}
}

func TestBuildRequiresDescription(t *testing.T) {
	builder := testBuilder()
	_, err := builder.Build(metadata.Input{
		Collector:       testCollector(),
		DescriptionPath: filepath.Join(t.TempDir(), "README.html"),
	})
	if err == nil {
		t.Fatal("expected error for missing description source")
	}
	if !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestBuildDateEntries(t *testing.T) {
	builder := testBuilder()
	cases := []struct {
		name        string
		first, last string
		wantCount   int
		wantDate    string
	}{
		{"interval", "2024-04-06", "2024-04-10", 1, "2024-04-06/2024-04-10"},
		{"single day", "2024-04-08", "2024-04-08", 1, "2024-04-08"},
		{"only first", "2024-04-08", "", 1, "2024-04-08"},
		{"only last", "", "2024-04-10", 1, "2024-04-10"},
		{"none", "", "", 0, ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			collector := testCollector()
			collector.FirstRecordingDay = tc.first
			collector.LastRecordingDay = tc.last
			built, err := builder.Build(metadata.Input{
				Collector:       collector,
				DescriptionPath: descriptionFixture(t),
			})
			if err != nil {
				t.Fatalf("Build returned error: %v", err)
			}
			dates := built.Payload.Dates
			if len(dates) != tc.wantCount {
				t.Fatalf("expected %d date entries, got %+v", tc.wantCount, dates)
			}
			if tc.wantCount > 0 && dates[0].Date != tc.wantDate {
				t.Fatalf("unexpected date entry: %+v", dates[0])
			}
		})
	}
}

func TestBuildReserveDOI(t *testing.T) {
	builder := testBuilder()
	built, err := builder.Build(metadata.Input{
		Collector:       testCollector(),
		DescriptionPath: descriptionFixture(t),
		ReserveDOI:      true,
	})
	if err != nil {
		t.Fatalf("Build returned error: %v", err)
	}
	pid, ok := built.PIDs["doi"]
	if !ok || pid.Provider != "datacite" {
		t.Fatalf("expected doi reservation pid, got %v", built.PIDs)
	}
}

func TestEnrichmentIsLenient(t *testing.T) {
	builder := testBuilder()
	dir := t.TempDir()

	related := filepath.Join(dir, "related.csv")
	testsupport.WriteFile(t, related,
		"identifier,scheme,relation_type,resource_type\n"+
			"10.1038/s41597-024-03940-2,doi,cites,publication-article\n"+
			",doi,cites,\n")
	badRefs := filepath.Join(dir, "refs.csv")
	testsupport.WriteFile(t, badRefs, "citation\nWrong column\n")

	built, err := builder.Build(metadata.Input{
		Collector:             testCollector(),
		DescriptionPath:       descriptionFixture(t),
		RelatedIdentifiersCSV: related,
		ReferencesCSV:         badRefs,
	})
	if err != nil {
		t.Fatalf("Build returned error: %v", err)
	}
	if len(built.Payload.RelatedIdentifiers) != 1 {
		t.Fatalf("expected one related identifier, got %+v", built.Payload.RelatedIdentifiers)
	}
	if built.Payload.RelatedIdentifiers[0].ResourceType.ID != "publication-article" {
		t.Fatalf("unexpected resource type: %+v", built.Payload.RelatedIdentifiers[0])
	}
	if built.Payload.References != nil {
		t.Fatalf("malformed references CSV must yield empty list, got %v", built.Payload.References)
	}

	// Missing files are skipped, never an error.
	built, err = builder.Build(metadata.Input{
		Collector:             testCollector(),
		DescriptionPath:       descriptionFixture(t),
		RelatedIdentifiersCSV: filepath.Join(dir, "missing.csv"),
	})
	if err != nil {
		t.Fatalf("Build returned error: %v", err)
	}
	if built.Payload.RelatedIdentifiers != nil {
		t.Fatalf("expected no identifiers for missing CSV, got %v", built.Payload.RelatedIdentifiers)
	}
}

func TestParseAccess(t *testing.T) {
	if metadata.ParseAccess("restricted").String() != "restricted" {
		t.Fatal("restricted should parse")
	}
	if metadata.ParseAccess("anything").String() != "public" {
		t.Fatal("unknown values default to public")
	}
}
