package metadata

// Identifier is a scheme-qualified identifier of a person, organization,
// or award.
type Identifier struct {
	Scheme     string `json:"scheme"`
	Identifier string `json:"identifier"`
}

// PersonOrganization names a person or an organization.
type PersonOrganization struct {
	Type        string       `json:"type"`
	GivenName   string       `json:"given_name,omitempty"`
	FamilyName  string       `json:"family_name,omitempty"`
	Name        string       `json:"name,omitempty"`
	Identifiers []Identifier `json:"identifiers,omitempty"`
}

// Affiliation ties a person to an organization or institution.
type Affiliation struct {
	ID   string `json:"id,omitempty"`
	Name string `json:"name,omitempty"`
}

// Role is a controlled-vocabulary role identifier.
type Role struct {
	ID string `json:"id"`
}

// Creator credits a person or organization for the record.
type Creator struct {
	PersonOrOrg  PersonOrganization `json:"person_or_org"`
	Role         *Role              `json:"role,omitempty"`
	Affiliations []Affiliation      `json:"affiliations,omitempty"`
}

// Contributor describes a person or organization that contributed to the
// record without primary credit.
type Contributor struct {
	PersonOrOrg  PersonOrganization `json:"person_or_org"`
	Role         Role               `json:"role"`
	Affiliations []Affiliation      `json:"affiliations,omitempty"`
}

// ResourceType is a controlled-vocabulary resource type identifier.
type ResourceType struct {
	ID string `json:"id"`
}

// License is a rights statement identifier.
type License struct {
	ID string `json:"id"`
}

// Language is an ISO-639-3 language identifier.
type Language struct {
	ID string `json:"id"`
}

// DateType identifies what a date entry describes.
type DateType struct {
	ID string `json:"id"`
}

// DateEntry is a date or date interval relevant to the record.
type DateEntry struct {
	Date        string   `json:"date"`
	Type        DateType `json:"type"`
	Description string   `json:"description,omitempty"`
}

// Funder names a funding provider.
type Funder struct {
	ID   string `json:"id,omitempty"`
	Name string `json:"name,omitempty"`
}

// AwardTitle is the localized title of an award.
type AwardTitle struct {
	En string `json:"en"`
}

// Award describes a grant sponsored by a funder.
type Award struct {
	ID          string       `json:"id,omitempty"`
	Title       *AwardTitle  `json:"title,omitempty"`
	Number      string       `json:"number,omitempty"`
	Identifiers []Identifier `json:"identifiers,omitempty"`
}

// Funding pairs a funder with an award.
type Funding struct {
	Funder *Funder `json:"funder,omitempty"`
	Award  *Award  `json:"award,omitempty"`
}

// Subject is a keyword or classification describing the record.
type Subject struct {
	ID      string `json:"id,omitempty"`
	Subject string `json:"subject,omitempty"`
}

// RelatedIdentifier links the record to a related resource such as a paper
// or another dataset.
type RelatedIdentifier struct {
	Identifier   string        `json:"identifier"`
	Scheme       string        `json:"scheme"`
	RelationType string        `json:"relation_type"`
	ResourceType *ResourceType `json:"resource_type,omitempty"`
}

// Payload is the metadata block of a draft record. It is built fresh for
// every dataset and never mutated after construction.
type Payload struct {
	ResourceType       ResourceType        `json:"resource_type"`
	Title              string              `json:"title"`
	Creators           []Creator           `json:"creators"`
	PublicationDate    string              `json:"publication_date"`
	Rights             []License           `json:"rights,omitempty"`
	Description        string              `json:"description,omitempty"`
	Contributors       []Contributor       `json:"contributors,omitempty"`
	Languages          []Language          `json:"languages,omitempty"`
	Dates              []DateEntry         `json:"dates,omitempty"`
	Version            string              `json:"version,omitempty"`
	Publisher          string              `json:"publisher,omitempty"`
	Funding            []Funding           `json:"funding,omitempty"`
	Subjects           []Subject           `json:"subjects,omitempty"`
	RelatedIdentifiers []RelatedIdentifier `json:"related_identifiers,omitempty"`
	References         []string            `json:"references,omitempty"`
}

// PIDRequest asks the repository to reserve a persistent identifier at
// draft-creation time.
type PIDRequest struct {
	Identifier string `json:"identifier,omitempty"`
	Provider   string `json:"provider,omitempty"`
	Client     string `json:"client,omitempty"`
}
