package invenio

import (
	"fmt"
	"os"
	"strings"
)

const (
	// EnvToken names the environment variable holding the API access token.
	EnvToken = "INVENIO_RDM_ACCESS_TOKEN"
	// EnvBaseURL names the environment variable holding the API base URL.
	EnvBaseURL = "INVENIO_RDM_BASE_URL"

	// tokenPlaceholder is the unsubstituted value shipped in the sample env
	// file. Treat it the same as an unset token.
	tokenPlaceholder = "ZENODO_ACESS_TOKEN"
)

// Credentials holds the bearer token and base URL used to reach the
// repository API.
type Credentials struct {
	Token   string
	BaseURL string
}

// CredentialsFromEnv reads credentials from the environment. The base URL
// from the environment overrides defaultBaseURL when present.
func CredentialsFromEnv(defaultBaseURL string) (Credentials, error) {
	token := strings.TrimSpace(os.Getenv(EnvToken))
	if token == "" || token == tokenPlaceholder {
		return Credentials{}, fmt.Errorf("%s not set or still using the placeholder value", EnvToken)
	}

	baseURL := strings.TrimSpace(os.Getenv(EnvBaseURL))
	if baseURL == "" {
		baseURL = strings.TrimSpace(defaultBaseURL)
	}
	if baseURL == "" {
		return Credentials{}, fmt.Errorf("%s not set and no base URL configured", EnvBaseURL)
	}

	return Credentials{Token: token, BaseURL: strings.TrimRight(baseURL, "/")}, nil
}
