package records

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/ARISA-Lab-LLC/ESCSP-AZUS/internal/services/invenio"
)

type requestFixture struct {
	id     string
	title  string
	open   bool
	reject bool
}

type fakeAccount struct {
	mu       sync.Mutex
	accepted []string
	requests []requestFixture
}

func (f *fakeAccount) handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/user/records", func(w http.ResponseWriter, r *http.Request) {
		page := r.URL.Query().Get("page")
		switch page {
		case "", "1":
			f.writePage(w, map[string]any{
				"hits": map[string]any{
					"hits": []map[string]any{
						{"id": "rec-1", "recid": 101, "doi": "10.5281/zenodo.101", "doi_url": "https://doi.org/10.5281/zenodo.101", "title": "ESID 101", "status": "published", "state": "done", "submitted": true, "created": "2024-05-01"},
						{"id": "rec-2", "recid": 102, "title": "ESID 102", "status": "draft", "state": "unsubmitted"},
					},
					"total": 3,
				},
				"links": map[string]any{"next": "http://example/api/user/records?page=2"},
			})
		default:
			f.writePage(w, map[string]any{
				"hits": map[string]any{
					"hits": []map[string]any{
						{"id": "rec-3", "recid": 103, "doi": "10.5281/zenodo.103", "title": "ESID 103", "status": "published", "state": "done", "submitted": true},
					},
					"total": 3,
				},
				"links": map[string]any{},
			})
		}
	})
	// Requests are served from a live list so that accepting one re-windows
	// later pages, the way the real open-request search behaves.
	mux.HandleFunc("GET /api/user/requests", func(w http.ResponseWriter, r *http.Request) {
		page, _ := strconv.Atoi(r.URL.Query().Get("page"))
		if page < 1 {
			page = 1
		}
		size, _ := strconv.Atoi(r.URL.Query().Get("size"))
		if size < 1 {
			size = 2
		}

		f.mu.Lock()
		pending := append([]requestFixture(nil), f.requests...)
		f.mu.Unlock()

		start := min((page-1)*size, len(pending))
		end := min(start+size, len(pending))
		hits := []map[string]any{}
		for _, fixture := range pending[start:end] {
			status := "submitted"
			if !fixture.open {
				status = "accepted"
			}
			hits = append(hits, map[string]any{
				"id": fixture.id, "status": status, "is_open": fixture.open, "title": fixture.title,
			})
		}
		links := map[string]any{}
		if end < len(pending) {
			links["next"] = fmt.Sprintf("http://example/api/user/requests?page=%d", page+1)
		}
		f.writePage(w, map[string]any{
			"hits":  map[string]any{"hits": hits, "total": len(pending)},
			"links": links,
		})
	})
	mux.HandleFunc("POST /api/requests/{id}/actions/accept", func(w http.ResponseWriter, r *http.Request) {
		id := r.PathValue("id")
		f.mu.Lock()
		f.accepted = append(f.accepted, id)
		reject := false
		for i, fixture := range f.requests {
			if fixture.id != id {
				continue
			}
			if fixture.reject {
				reject = true
				break
			}
			f.requests = append(f.requests[:i], f.requests[i+1:]...)
			break
		}
		f.mu.Unlock()
		if reject {
			http.Error(w, `{"message":"conflict"}`, http.StatusConflict)
			return
		}
		f.writePage(w, map[string]any{"id": id, "status": "accepted"})
	})
	return mux
}

func (f *fakeAccount) writePage(w http.ResponseWriter, body map[string]any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(body); err != nil {
		panic(fmt.Sprintf("encode response: %v", err))
	}
}

func newService(t *testing.T) (*Service, *fakeAccount) {
	t.Helper()
	account := &fakeAccount{
		requests: []requestFixture{
			{id: "req-1", title: "ESID 101 review", open: true},
			{id: "req-2", title: "already done", open: false},
			{id: "req-3", title: "ESID 103 review", open: true, reject: true},
		},
	}
	server := httptest.NewServer(account.handler())
	t.Cleanup(server.Close)
	client := invenio.New(invenio.Credentials{Token: "token", BaseURL: server.URL}, 5*time.Second, nil)
	svc := NewService(client, slog.Default())
	svc.PageSize = 2
	svc.Now = func() time.Time { return time.Date(2024, 5, 2, 13, 4, 5, 0, time.UTC) }
	return svc, account
}

func TestExportPublishedWritesTimestampedCSV(t *testing.T) {
	svc, _ := newService(t)
	dir := t.TempDir()

	path, count, err := svc.ExportPublished(context.Background(), dir)
	if err != nil {
		t.Fatalf("ExportPublished: %v", err)
	}
	if count != 2 {
		t.Fatalf("count = %d, want 2", count)
	}
	if filepath.Base(path) != "records_20240502130405.csv" {
		t.Fatalf("file name = %s", filepath.Base(path))
	}

	file, err := os.Open(path)
	if err != nil {
		t.Fatalf("open export: %v", err)
	}
	defer file.Close()
	rows, err := csv.NewReader(file).ReadAll()
	if err != nil {
		t.Fatalf("parse export: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("row count = %d, want header + 2", len(rows))
	}
	if rows[0][0] != "id" || rows[0][5] != "title" {
		t.Fatalf("header = %v", rows[0])
	}
	if rows[1][0] != "rec-1" || rows[1][2] != "10.5281/zenodo.101" || rows[1][9] != "true" {
		t.Fatalf("first row = %v", rows[1])
	}
	if rows[2][0] != "rec-3" {
		t.Fatalf("second row = %v, draft record must be filtered out", rows[2])
	}
}

func TestAcceptOpenRequestsHandlesRewindowedPages(t *testing.T) {
	svc, account := newService(t)
	// Three open requests with a page size of two: accepting the first page
	// shrinks the open set, so the third request slides into page one and a
	// single page walk would miss it.
	account.requests = []requestFixture{
		{id: "req-a", title: "ESID 201 review", open: true},
		{id: "req-b", title: "ESID 202 review", open: true},
		{id: "req-c", title: "ESID 203 review", open: true},
	}

	accepted, failed, err := svc.AcceptOpenRequests(context.Background())
	if err != nil {
		t.Fatalf("AcceptOpenRequests: %v", err)
	}
	if accepted != 3 || failed != 0 {
		t.Fatalf("accepted = %d failed = %d, want 3 and 0", accepted, failed)
	}

	account.mu.Lock()
	defer account.mu.Unlock()
	seen := map[string]bool{}
	for _, id := range account.accepted {
		seen[id] = true
	}
	if !seen["req-a"] || !seen["req-b"] || !seen["req-c"] {
		t.Fatalf("every open request must be accepted, calls = %v", account.accepted)
	}
}

func TestAcceptOpenRequestsSkipsClosedAndCountsFailures(t *testing.T) {
	svc, account := newService(t)

	accepted, failed, err := svc.AcceptOpenRequests(context.Background())
	if err != nil {
		t.Fatalf("AcceptOpenRequests: %v", err)
	}
	if accepted != 1 || failed != 1 {
		t.Fatalf("accepted = %d failed = %d, want 1 and 1", accepted, failed)
	}

	account.mu.Lock()
	defer account.mu.Unlock()
	if len(account.accepted) != 2 {
		t.Fatalf("accept calls = %v, closed request must be skipped", account.accepted)
	}
	for _, id := range account.accepted {
		if id == "req-2" {
			t.Fatalf("closed request req-2 was accepted")
		}
	}
}
