package invenio

import (
	"fmt"
	"strings"
)

// APIError describes a non-success HTTP response from the repository.
type APIError struct {
	StatusCode int
	Status     string
	Body       string
}

func (e *APIError) Error() string {
	body := strings.TrimSpace(e.Body)
	if body == "" {
		return fmt.Sprintf("api returned %s", e.Status)
	}
	if len(body) > 512 {
		body = body[:512] + "..."
	}
	return fmt.Sprintf("api returned %s: %s", e.Status, body)
}
