package uploader

import (
	"encoding/json"
	"errors"
	"net"
	"net/url"

	"github.com/ARISA-Lab-LLC/ESCSP-AZUS/internal/services"
	"github.com/ARISA-Lab-LLC/ESCSP-AZUS/internal/services/invenio"
)

// Failure carries the classified error attached to a failed upload.
type Failure struct {
	Kind    string
	Message string
}

// Outcome is the tagged result of one dataset upload attempt. Exactly one
// of Record or Failure is meaningful depending on Successful.
type Outcome struct {
	Successful bool
	DraftID    string
	Record     *invenio.Record
	Raw        json.RawMessage
	Failure    *Failure
}

// Classify maps an error onto the failure kind recorded in the results CSV:
// HTTPError for non-success API responses, RequestException for transport
// problems, otherwise a name derived from the error marker.
func Classify(err error) Failure {
	var apiErr *invenio.APIError
	if errors.As(err, &apiErr) {
		return Failure{Kind: "HTTPError", Message: err.Error()}
	}
	var urlErr *url.Error
	var netErr net.Error
	if errors.As(err, &urlErr) || errors.As(err, &netErr) {
		return Failure{Kind: "RequestException", Message: err.Error()}
	}
	switch {
	case errors.Is(err, services.ErrValidation):
		return Failure{Kind: "ValidationError", Message: err.Error()}
	case errors.Is(err, services.ErrNotFound):
		return Failure{Kind: "NotFoundError", Message: err.Error()}
	case errors.Is(err, services.ErrConfiguration):
		return Failure{Kind: "ConfigurationError", Message: err.Error()}
	default:
		return Failure{Kind: "Error", Message: err.Error()}
	}
}
