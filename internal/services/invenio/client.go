package invenio

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// HTTPDoer describes the HTTP client used by the repository service.
type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Client talks to an InvenioRDM-compatible API.
type Client struct {
	baseURL string
	token   string
	client  HTTPDoer
}

// New constructs a client for the given credentials. When doer is nil a
// default HTTP client with the provided timeout is used.
func New(creds Credentials, timeout time.Duration, doer HTTPDoer) *Client {
	if doer == nil {
		doer = &http.Client{Timeout: timeout}
	}
	return &Client{
		baseURL: strings.TrimRight(strings.TrimSpace(creds.BaseURL), "/"),
		token:   strings.TrimSpace(creds.Token),
		client:  doer,
	}
}

// BaseURL returns the normalized API base URL.
func (c *Client) BaseURL() string { return c.baseURL }

func (c *Client) endpoint(parts ...string) string {
	return c.baseURL + "/api/" + strings.Join(parts, "/")
}

// CreateDraft creates a new draft record and returns the decoded record
// together with the raw response body for audit capture.
func (c *Client) CreateDraft(ctx context.Context, body DraftRequest) (*Record, json.RawMessage, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, nil, fmt.Errorf("encode draft request: %w", err)
	}
	raw, err := c.doJSON(ctx, http.MethodPost, c.endpoint("records"), payload)
	if err != nil {
		return nil, raw, fmt.Errorf("create draft: %w", err)
	}
	var record Record
	if err := json.Unmarshal(raw, &record); err != nil {
		return nil, raw, fmt.Errorf("decode draft response: %w", err)
	}
	return &record, raw, nil
}

// InitFiles initializes an upload slot for one filename on the draft. The
// response lists every slot currently attached to the draft, not only the
// one just created.
func (c *Client) InitFiles(ctx context.Context, draftID, key string) ([]FileEntry, error) {
	payload, err := json.Marshal([]map[string]string{{"key": key}})
	if err != nil {
		return nil, fmt.Errorf("encode file init request: %w", err)
	}
	raw, err := c.doJSON(ctx, http.MethodPost, c.endpoint("records", draftID, "draft", "files"), payload)
	if err != nil {
		return nil, fmt.Errorf("init file %s: %w", key, err)
	}
	var decoded fileInitResponse
	if err := json.Unmarshal(raw, &decoded); err != nil {
		return nil, fmt.Errorf("decode file init response: %w", err)
	}
	return decoded.Entries, nil
}

// UploadContent streams raw bytes to an upload slot's content URL.
func (c *Client) UploadContent(ctx context.Context, contentURL string, body io.Reader, size int64) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPut, contentURL, body)
	if err != nil {
		return fmt.Errorf("build content request: %w", err)
	}
	req.Header.Set("Content-Type", "application/octet-stream")
	if size >= 0 {
		req.ContentLength = size
	}
	c.authorize(req)

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("upload content: %w", err)
	}
	defer resp.Body.Close()
	if err := responseError(resp); err != nil {
		return fmt.Errorf("upload content: %w", err)
	}
	return nil
}

// CommitFile finalizes an upload slot.
func (c *Client) CommitFile(ctx context.Context, commitURL string) error {
	if _, err := c.doJSON(ctx, http.MethodPost, commitURL, nil); err != nil {
		return fmt.Errorf("commit file: %w", err)
	}
	return nil
}

// CreateReview attaches a community review request to the draft.
func (c *Client) CreateReview(ctx context.Context, draftID, communityID string) error {
	payload, err := json.Marshal(map[string]any{
		"receiver": map[string]string{"community": communityID},
		"type":     "community-submission",
	})
	if err != nil {
		return fmt.Errorf("encode review request: %w", err)
	}
	if _, err := c.doJSON(ctx, http.MethodPut, c.endpoint("records", draftID, "draft", "review"), payload); err != nil {
		return fmt.Errorf("create review request: %w", err)
	}
	return nil
}

// SubmitReview submits the draft into its community's review queue and
// returns the resulting record state.
func (c *Client) SubmitReview(ctx context.Context, draftID string) (*Record, json.RawMessage, error) {
	raw, err := c.doJSON(ctx, http.MethodPost, c.endpoint("records", draftID, "draft", "actions", "submit-review"), nil)
	if err != nil {
		return nil, raw, fmt.Errorf("submit review: %w", err)
	}
	var record Record
	if err := json.Unmarshal(raw, &record); err != nil {
		return nil, raw, fmt.Errorf("decode submit-review response: %w", err)
	}
	return &record, raw, nil
}

// Publish publishes the draft and returns the published record.
func (c *Client) Publish(ctx context.Context, draftID string) (*Record, json.RawMessage, error) {
	raw, err := c.doJSON(ctx, http.MethodPost, c.endpoint("records", draftID, "draft", "actions", "publish"), nil)
	if err != nil {
		return nil, raw, fmt.Errorf("publish draft: %w", err)
	}
	var record Record
	if err := json.Unmarshal(raw, &record); err != nil {
		return nil, raw, fmt.Errorf("decode publish response: %w", err)
	}
	return &record, raw, nil
}

// DeleteDraft removes an unpublished draft.
func (c *Client) DeleteDraft(ctx context.Context, draftID string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, c.endpoint("records", draftID, "draft"), nil)
	if err != nil {
		return fmt.Errorf("build delete request: %w", err)
	}
	c.authorize(req)

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("delete draft: %w", err)
	}
	defer resp.Body.Close()
	if err := responseError(resp); err != nil {
		return fmt.Errorf("delete draft: %w", err)
	}
	return nil
}

// SearchUserRecords fetches one page of the caller's records.
func (c *Client) SearchUserRecords(ctx context.Context, page, size int, extra url.Values) (*RecordPage, error) {
	query := searchQuery(page, size, extra)
	raw, err := c.doJSON(ctx, http.MethodGet, c.endpoint("user", "records")+"?"+query.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("search user records: %w", err)
	}
	var decoded RecordPage
	if err := json.Unmarshal(raw, &decoded); err != nil {
		return nil, fmt.Errorf("decode record search response: %w", err)
	}
	return &decoded, nil
}

// SearchUserRequests fetches one page of the caller's requests.
func (c *Client) SearchUserRequests(ctx context.Context, page, size int, extra url.Values) (*RequestPage, error) {
	query := searchQuery(page, size, extra)
	raw, err := c.doJSON(ctx, http.MethodGet, c.endpoint("user", "requests")+"?"+query.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("search user requests: %w", err)
	}
	var decoded RequestPage
	if err := json.Unmarshal(raw, &decoded); err != nil {
		return nil, fmt.Errorf("decode request search response: %w", err)
	}
	return &decoded, nil
}

// AcceptRequest accepts one open request, such as a community submission.
func (c *Client) AcceptRequest(ctx context.Context, requestID string) error {
	if _, err := c.doJSON(ctx, http.MethodPost, c.endpoint("requests", requestID, "actions", "accept"), nil); err != nil {
		return fmt.Errorf("accept request %s: %w", requestID, err)
	}
	return nil
}

func searchQuery(page, size int, extra url.Values) url.Values {
	query := url.Values{}
	for key, values := range extra {
		for _, value := range values {
			query.Add(key, value)
		}
	}
	if page > 0 {
		query.Set("page", strconv.Itoa(page))
	}
	if size > 0 {
		query.Set("size", strconv.Itoa(size))
	}
	if query.Get("sort") == "" {
		query.Set("sort", "newest")
	}
	return query
}

func (c *Client) authorize(req *http.Request) {
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
}

func (c *Client) doJSON(ctx context.Context, method, requestURL string, payload []byte) (json.RawMessage, error) {
	var body io.Reader
	if payload != nil {
		body = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, requestURL, body)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")
	c.authorize(req)

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	raw, readErr := io.ReadAll(resp.Body)
	if err := responseError(resp, raw); err != nil {
		return raw, err
	}
	if readErr != nil {
		return nil, fmt.Errorf("read response: %w", readErr)
	}
	return raw, nil
}

func responseError(resp *http.Response, body ...[]byte) error {
	if resp.StatusCode < http.StatusBadRequest {
		return nil
	}
	var raw []byte
	if len(body) > 0 {
		raw = body[0]
	} else {
		raw, _ = io.ReadAll(io.LimitReader(resp.Body, 4096))
	}
	return &APIError{StatusCode: resp.StatusCode, Status: resp.Status, Body: string(raw)}
}
