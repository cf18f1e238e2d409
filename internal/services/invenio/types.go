package invenio

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"
)

// DraftRequest is the body sent to the record-creation endpoint.
type DraftRequest struct {
	Access       AccessSpec     `json:"access"`
	Files        FilesSpec      `json:"files"`
	Metadata     any            `json:"metadata"`
	Parent       *ParentSpec    `json:"parent,omitempty"`
	CustomFields map[string]any `json:"custom_fields,omitempty"`
	PIDs         map[string]PID `json:"pids,omitempty"`
}

// AccessSpec carries the record and file access levels.
type AccessSpec struct {
	Record string `json:"record"`
	Files  string `json:"files"`
}

// FilesSpec toggles file support on the draft.
type FilesSpec struct {
	Enabled bool `json:"enabled"`
}

// ParentSpec associates the draft with a community at creation time. This
// links the record only; routing it through the community review queue takes
// a separate review request.
type ParentSpec struct {
	Communities *CommunitiesSpec `json:"communities,omitempty"`
}

// CommunitiesSpec names the communities a record belongs to.
type CommunitiesSpec struct {
	IDs []string `json:"ids,omitempty"`
}

// PID describes a persistent identifier entry, used to request DOI
// reservation on draft creation.
type PID struct {
	Identifier string `json:"identifier,omitempty"`
	Provider   string `json:"provider,omitempty"`
	Client     string `json:"client,omitempty"`
}

// LooseString decodes any scalar JSON value into its string form. The API
// mixes strings and numbers for fields such as record ids and owner lists
// depending on endpoint version.
type LooseString string

func (s *LooseString) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || string(trimmed) == "null" {
		*s = ""
		return nil
	}
	if trimmed[0] == '"' {
		var v string
		if err := json.Unmarshal(trimmed, &v); err != nil {
			return err
		}
		*s = LooseString(v)
		return nil
	}
	*s = LooseString(trimmed)
	return nil
}

func (s LooseString) String() string { return string(s) }

// Record is the repository's record or draft representation. Only the
// fields the pipeline reports on are decoded.
type Record struct {
	ID           LooseString    `json:"id"`
	ConceptRecID LooseString    `json:"conceptrecid"`
	RecID        LooseString    `json:"recid"`
	DOI          string         `json:"doi"`
	ConceptDOI   string         `json:"conceptdoi"`
	DOIURL       string         `json:"doi_url"`
	Created      string         `json:"created"`
	Modified     string         `json:"modified"`
	Updated      string         `json:"updated"`
	Owners       LooseString    `json:"owners"`
	Status       string         `json:"status"`
	State        string         `json:"state"`
	Submitted    LooseString    `json:"submitted"`
	Title        string         `json:"title"`
	Links        RecordLinks    `json:"links"`
	PIDs         map[string]PID `json:"pids"`
	Metadata     struct {
		Title string `json:"title"`
	} `json:"metadata"`
}

// RecordLinks holds the subset of record links the pipeline uses.
type RecordLinks struct {
	Self     string `json:"self"`
	SelfHTML string `json:"self_html"`
}

// DOIValue returns the record's DOI, preferring the pids block over the
// legacy top-level field.
func (r *Record) DOIValue() string {
	if r == nil {
		return ""
	}
	if pid, ok := r.PIDs["doi"]; ok && pid.Identifier != "" {
		return pid.Identifier
	}
	return r.DOI
}

// TitleValue returns the record title from whichever field carries it.
func (r *Record) TitleValue() string {
	if r == nil {
		return ""
	}
	if r.Title != "" {
		return r.Title
	}
	return r.Metadata.Title
}

// SubmittedValue normalizes the submitted flag to "true"/"false"/"".
func (r *Record) SubmittedValue() string {
	v := strings.TrimSpace(string(r.Submitted))
	if v == "" {
		return ""
	}
	if parsed, err := strconv.ParseBool(v); err == nil {
		return strconv.FormatBool(parsed)
	}
	return v
}

// FileEntry is one upload slot on a draft.
type FileEntry struct {
	Key   string    `json:"key"`
	Links FileLinks `json:"links"`
}

// FileLinks holds the slot's transfer and commit URLs.
type FileLinks struct {
	Self    string `json:"self"`
	Content string `json:"content"`
	Commit  string `json:"commit"`
}

type fileInitResponse struct {
	Entries []FileEntry `json:"entries"`
}

// RecordPage is one page of a user record search.
type RecordPage struct {
	Hits struct {
		Hits  []Record `json:"hits"`
		Total int      `json:"total"`
	} `json:"hits"`
	Links struct {
		Next string `json:"next"`
	} `json:"links"`
}

// RequestInfo is one entry from the user request search.
type RequestInfo struct {
	ID     LooseString `json:"id"`
	Status string      `json:"status"`
	IsOpen bool        `json:"is_open"`
	Type   string      `json:"type"`
	Title  string      `json:"title"`
}

// RequestPage is one page of a user request search.
type RequestPage struct {
	Hits struct {
		Hits  []RequestInfo `json:"hits"`
		Total int           `json:"total"`
	} `json:"hits"`
	Links struct {
		Next string `json:"next"`
	} `json:"links"`
}
