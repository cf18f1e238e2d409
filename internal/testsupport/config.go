package testsupport

import (
	"path/filepath"
	"testing"

	"github.com/ARISA-Lab-LLC/ESCSP-AZUS/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*configBuilder)

type configBuilder struct {
	t   testing.TB
	cfg *config.Config
}

// NewConfig produces a config seeded with unique temp directories per test.
// It defaults common fields and applies any provided options.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfgVal := config.Default()
	cfgVal.Paths.ResultsDir = filepath.Join(base, "results")
	cfgVal.Paths.AuditDir = filepath.Join(base, "audit")
	cfgVal.Paths.LogDir = filepath.Join(base, "logs")
	cfgVal.Paths.TrackerFile = filepath.Join(base, "uploaded_files.txt")
	cfgVal.Paths.LockFile = filepath.Join(base, "azus.lock")
	cfgVal.Uploads.SuccessResultsFile = filepath.Join(base, "results", "successful_results.csv")
	cfgVal.Uploads.FailureResultsFile = filepath.Join(base, "results", "failed_results.csv")
	cfgVal.API.BaseURL = "https://example.org"

	builder := &configBuilder{
		t:   t,
		cfg: &cfgVal,
	}

	for _, opt := range opts {
		opt(builder)
	}

	return builder.cfg
}

// WithGroup appends a dataset group to the test config.
func WithGroup(category, dir, collectorsCSV string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Groups = append(b.cfg.Groups, config.DatasetGroup{
			Category:      category,
			Dir:           dir,
			CollectorsCSV: collectorsCSV,
		})
	}
}

// WithCommunity sets the community drafts are routed to for review.
func WithCommunity(id string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Identity.CommunityID = id
	}
}

// WithBaseURL points the test config at the given API base URL.
func WithBaseURL(url string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.API.BaseURL = url
	}
}
