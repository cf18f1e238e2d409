package metadata

import (
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/ARISA-Lab-LLC/ESCSP-AZUS/internal/collectors"
	"github.com/ARISA-Lab-LLC/ESCSP-AZUS/internal/config"
	"github.com/ARISA-Lab-LLC/ESCSP-AZUS/internal/services"
)

const publicationDateFormat = "2006-01-02"

// Builder turns project identity configuration plus per-dataset collector
// attributes into a record metadata payload. Output is pure data; no
// network calls happen here.
type Builder struct {
	Identity config.Identity
	Logger   *slog.Logger

	// Now is overridable for tests; defaults to time.Now.
	Now func() time.Time
}

// Input carries everything dataset-specific the builder needs.
type Input struct {
	Collector             collectors.Collector
	DescriptionPath       string
	RelatedIdentifiersCSV string
	ReferencesCSV         string
	ReserveDOI            bool
}

// Built is the assembled draft payload plus the pids block requested from
// the repository (empty unless DOI reservation was asked for).
type Built struct {
	Payload *Payload
	PIDs    map[string]PIDRequest
}

// Build assembles the payload for one dataset. The description source file
// must exist; its full text becomes the description verbatim.
func (b *Builder) Build(in Input) (*Built, error) {
	if in.DescriptionPath == "" {
		return nil, services.Wrap(services.ErrValidation, "metadata", "load description",
			"description source README.html is required but was not provided", nil)
	}
	description, err := os.ReadFile(in.DescriptionPath)
	if err != nil {
		return nil, services.Wrap(services.ErrValidation, "metadata", "load description", in.DescriptionPath, err)
	}

	collector := in.Collector

	payload := &Payload{
		ResourceType:    ResourceType{ID: b.Identity.ResourceType},
		Title:           fmt.Sprintf("%s %s ESID#%s", collector.EventDate, collector.Category.Label(), collector.ESID),
		PublicationDate: b.now().Format(publicationDateFormat),
		Creators:        b.buildCreators(collector),
		Contributors:    b.buildContributors(),
		Description:     string(description),
		Rights:          []License{{ID: b.Identity.License}},
		Languages:       []Language{{ID: b.Identity.Language}},
		Dates:           recordingDates(collector.FirstRecordingDay, collector.LastRecordingDay),
		Version:         collector.Version,
		Publisher:       b.Identity.Publisher,
		Funding:         b.buildFunding(),
		Subjects:        buildSubjects(collector.Subjects),
	}

	payload.RelatedIdentifiers = b.relatedIdentifiers(in.RelatedIdentifiersCSV)
	payload.References = b.references(in.ReferencesCSV)

	built := &Built{Payload: payload, PIDs: map[string]PIDRequest{}}
	if in.ReserveDOI {
		built.PIDs["doi"] = PIDRequest{Provider: "datacite", Client: "zenodo"}
	}
	return built, nil
}

func (b *Builder) now() time.Time {
	if b.Now != nil {
		return b.Now()
	}
	return time.Now()
}

// recordingDates emits at most one date entry: an interval when both days
// are known and differ, a single day when they agree or only one is known,
// nothing when neither is known.
func recordingDates(first, last string) []DateEntry {
	switch {
	case first != "" && last != "" && first != last:
		return []DateEntry{{
			Date:        first + "/" + last,
			Type:        DateType{ID: "collected"},
			Description: "Recording period",
		}}
	case first != "":
		return []DateEntry{{
			Date:        first,
			Type:        DateType{ID: "collected"},
			Description: "Day of recording",
		}}
	case last != "":
		return []DateEntry{{
			Date:        last,
			Type:        DateType{ID: "collected"},
			Description: "Day of recording",
		}}
	default:
		return nil
	}
}

func (b *Builder) buildCreators(collector collectors.Collector) []Creator {
	creators := make([]Creator, 0, len(b.Identity.Creators)+1)
	for _, person := range b.Identity.Creators {
		creators = append(creators, Creator{
			PersonOrOrg:  convertPerson(person),
			Role:         roleFor(person.Role),
			Affiliations: convertAffiliations(person.Affiliations),
		})
	}

	// One anonymized entry credits the site volunteer without naming them.
	var affiliations []Affiliation
	for _, name := range collectors.SplitValues(collector.Affiliation) {
		affiliations = append(affiliations, Affiliation{Name: name})
	}
	creators = append(creators, Creator{
		PersonOrOrg:  PersonOrganization{Type: "personal", FamilyName: "Volunteer Scientist"},
		Role:         &Role{ID: "datacollector"},
		Affiliations: affiliations,
	})
	return creators
}

func (b *Builder) buildContributors() []Contributor {
	var contributors []Contributor
	for _, person := range b.Identity.Contributors {
		role := Role{ID: person.Role}
		if role.ID == "" {
			role.ID = "projectmember"
		}
		contributors = append(contributors, Contributor{
			PersonOrOrg:  convertPerson(person),
			Role:         role,
			Affiliations: convertAffiliations(person.Affiliations),
		})
	}
	return contributors
}

func (b *Builder) buildFunding() []Funding {
	var funding []Funding
	for _, entry := range b.Identity.Funding {
		item := Funding{}
		if entry.FunderID != "" || entry.FunderName != "" {
			item.Funder = &Funder{ID: entry.FunderID, Name: entry.FunderName}
		}
		if entry.AwardTitle != "" || entry.AwardNumber != "" || entry.AwardURL != "" {
			award := &Award{Number: entry.AwardNumber}
			if entry.AwardTitle != "" {
				award.Title = &AwardTitle{En: entry.AwardTitle}
			}
			if entry.AwardURL != "" {
				award.Identifiers = []Identifier{{Scheme: "url", Identifier: entry.AwardURL}}
			}
			item.Award = award
		}
		if item.Funder != nil || item.Award != nil {
			funding = append(funding, item)
		}
	}
	return funding
}

func buildSubjects(raw string) []Subject {
	var subjects []Subject
	for _, value := range collectors.SplitValues(raw) {
		subjects = append(subjects, Subject{Subject: value})
	}
	return subjects
}

func convertPerson(person config.Person) PersonOrganization {
	converted := PersonOrganization{
		Type:       person.Type,
		Name:       person.Name,
		GivenName:  person.GivenName,
		FamilyName: person.FamilyName,
	}
	if person.ORCID != "" {
		converted.Identifiers = []Identifier{{Scheme: "orcid", Identifier: person.ORCID}}
	}
	return converted
}

func convertAffiliations(names []string) []Affiliation {
	var affiliations []Affiliation
	for _, name := range names {
		if name != "" {
			affiliations = append(affiliations, Affiliation{Name: name})
		}
	}
	return affiliations
}

func roleFor(id string) *Role {
	if id == "" {
		return nil
	}
	return &Role{ID: id}
}
