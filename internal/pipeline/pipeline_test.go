package pipeline_test

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gofrs/flock"

	"github.com/ARISA-Lab-LLC/ESCSP-AZUS/internal/config"
	"github.com/ARISA-Lab-LLC/ESCSP-AZUS/internal/pipeline"
	"github.com/ARISA-Lab-LLC/ESCSP-AZUS/internal/services/invenio"
	"github.com/ARISA-Lab-LLC/ESCSP-AZUS/internal/testsupport"
)

const collectorsHeader = "ESID,Data Collector Affiliations,Latitude,Longitude,Local Eclipse Type,Eclipse Percent (%),WAV Files Time & Date Settings,Eclipse Date,Eclipse Start Time (UTC) (1st Contact),Eclipse Maximum (UTC),Eclipse End Time (UTC) (4th Contact),Version,Keywords and subjects"

// requestLog records the paths a fake server handled.
type requestLog struct {
	mu    sync.Mutex
	paths []string
}

func (l *requestLog) add(path string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.paths = append(l.paths, path)
}

func (l *requestLog) count(suffix string) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	n := 0
	for _, path := range l.paths {
		if strings.HasSuffix(path, suffix) {
			n++
		}
	}
	return n
}

// fakeServer accepts the whole draft protocol for any dataset.
func fakeServer(t *testing.T) (*httptest.Server, *requestLog) {
	t.Helper()
	log := &requestLog{}
	var server *httptest.Server
	server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path := r.URL.Path
		log.add(path)
		switch {
		case r.Method == http.MethodPost && path == "/api/records":
			w.WriteHeader(http.StatusCreated)
			fmt.Fprintf(w, `{"id":"d1","links":{"self_html":"%s/records/d1"}}`, server.URL)
		case r.Method == http.MethodPost && strings.HasSuffix(path, "/draft/files"):
			body, _ := io.ReadAll(r.Body)
			key := strings.TrimSuffix(strings.TrimPrefix(string(body), `[{"key":"`), `"}]`)
			fmt.Fprintf(w, `{"entries":[{"key":%q,"links":{"content":"%s/content/%s","commit":"%s/commit/%s"}}]}`,
				key, server.URL, key, server.URL, key)
		case r.Method == http.MethodPut && strings.HasPrefix(path, "/content/"):
			w.WriteHeader(http.StatusOK)
		case r.Method == http.MethodPost && strings.HasPrefix(path, "/commit/"):
			io.WriteString(w, `{}`)
		case r.Method == http.MethodPut && strings.HasSuffix(path, "/draft/review"):
			io.WriteString(w, `{}`)
		case r.Method == http.MethodPost && strings.HasSuffix(path, "/actions/submit-review"):
			io.WriteString(w, `{"id":"d1","status":"pending","is_open":true}`)
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	t.Cleanup(server.Close)
	return server, log
}

func setupRun(t *testing.T, serverURL string, extra ...testsupport.ConfigOption) *config.Config {
	t.Helper()
	dataDir := t.TempDir()

	// Archive with the forbidden separator; the run normalizes it first.
	testsupport.WriteZip(t, filepath.Join(dataDir, "ESID#007.zip"),
		"20240406_120000.WAV", "20240410_090000.WAV", "CONFIG.TXT")
	testsupport.WriteFile(t, filepath.Join(dataDir, "README.html"), "<p>desc</p>")
	testsupport.WriteFile(t, filepath.Join(dataDir, "README.md"), "desc")

	// Archive without collector info; upload must fail before any call.
	testsupport.WriteZip(t, filepath.Join(dataDir, "ESID_099.zip"), "20240406_120000.WAV")

	collectorsCSV := filepath.Join(dataDir, "collectors.csv")
	testsupport.WriteFile(t, collectorsCSV, collectorsHeader+"\n"+
		"007,Public Library,35.1,-106.6,Annular,90,UTC,2024-04-08,15:00,16:30,18:00,2024.1.0,eclipse\n")

	opts := append([]testsupport.ConfigOption{
		testsupport.WithBaseURL(serverURL),
		testsupport.WithGroup("Annular", dataDir, collectorsCSV),
	}, extra...)
	return testsupport.NewConfig(t, opts...)
}

func newClient(cfg *config.Config) *invenio.Client {
	return invenio.New(invenio.Credentials{Token: "token", BaseURL: cfg.API.BaseURL}, 5*time.Second, nil)
}

func TestRunPublishesAndRecords(t *testing.T) {
	server, _ := fakeServer(t)
	cfg := setupRun(t, server.URL)

	runner := pipeline.New(cfg, newClient(cfg), nil)
	stats, err := runner.Run(context.Background())
	if err != nil {
		t.Fatalf("Run returned error: %v", err)
	}
	if stats.Processed != 2 || stats.Successful != 1 || stats.Failed != 1 || stats.Skipped != 0 {
		t.Fatalf("unexpected stats: %+v", stats)
	}

	// Normalization renamed the archive before upload.
	group := cfg.Groups[0]
	if _, err := os.Stat(filepath.Join(group.Dir, "ESID_007.zip")); err != nil {
		t.Fatalf("expected normalized archive name: %v", err)
	}

	assertRowCount(t, cfg.Uploads.SuccessResultsFile, 1)
	assertRowCount(t, cfg.Uploads.FailureResultsFile, 1)
}

func TestRunRoutesDraftsThroughCommunity(t *testing.T) {
	server, calls := fakeServer(t)
	cfg := setupRun(t, server.URL,
		testsupport.WithCommunity("2ca990ba-e151-4741-a456-6b80da71c69d"))

	runner := pipeline.New(cfg, newClient(cfg), nil)
	stats, err := runner.Run(context.Background())
	if err != nil {
		t.Fatalf("Run returned error: %v", err)
	}
	if stats.Successful != 1 {
		t.Fatalf("unexpected stats: %+v", stats)
	}
	if calls.count("/draft/review") != 1 || calls.count("/actions/submit-review") != 1 {
		t.Fatalf("expected one review request and one submission, paths: %v", calls.paths)
	}
}

func TestRunSkipsUploadedDatasets(t *testing.T) {
	server, _ := fakeServer(t)
	cfg := setupRun(t, server.URL)

	first := pipeline.New(cfg, newClient(cfg), nil)
	if _, err := first.Run(context.Background()); err != nil {
		t.Fatalf("first run returned error: %v", err)
	}

	second := pipeline.New(cfg, newClient(cfg), nil)
	stats, err := second.Run(context.Background())
	if err != nil {
		t.Fatalf("second run returned error: %v", err)
	}
	if stats.Skipped != 1 {
		t.Fatalf("expected the published dataset to be skipped, stats: %+v", stats)
	}
	if stats.Successful != 0 {
		t.Fatalf("nothing new to publish, stats: %+v", stats)
	}

	// The unmatched dataset is retried each run and fails again.
	assertRowCount(t, cfg.Uploads.SuccessResultsFile, 1)
	assertRowCount(t, cfg.Uploads.FailureResultsFile, 2)
}

func TestRunRefusesConcurrentInvocation(t *testing.T) {
	server, _ := fakeServer(t)
	cfg := setupRun(t, server.URL)

	held := flock.New(cfg.Paths.LockFile)
	locked, err := held.TryLock()
	if err != nil || !locked {
		t.Fatalf("could not pre-acquire lock: %v", err)
	}
	defer held.Unlock()

	runner := pipeline.New(cfg, newClient(cfg), nil)
	if _, err := runner.Run(context.Background()); err == nil {
		t.Fatal("expected run to refuse while the lock is held")
	}
}

func assertRowCount(t *testing.T, path string, want int) {
	t.Helper()
	file, err := os.Open(path)
	if err != nil {
		t.Fatalf("open %s: %v", path, err)
	}
	defer file.Close()
	rows, err := csv.NewReader(file).ReadAll()
	if err != nil {
		t.Fatalf("read %s: %v", path, err)
	}
	if len(rows) != want+1 {
		t.Fatalf("%s: expected %d data rows, got %d", filepath.Base(path), want, len(rows)-1)
	}
}
