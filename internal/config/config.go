package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths contains directory configuration for local pipeline state.
type Paths struct {
	ResultsDir  string `toml:"results_dir"`
	AuditDir    string `toml:"audit_dir"`
	LogDir      string `toml:"log_dir"`
	TrackerFile string `toml:"tracker_file"`
	LockFile    string `toml:"lock_file"`
}

// DatasetGroup describes one directory of dataset bundles plus the
// collectors CSV that carries per-site attributes for those bundles.
type DatasetGroup struct {
	Category      string `toml:"category"`
	Dir           string `toml:"dir"`
	CollectorsCSV string `toml:"collectors_csv"`
}

// Uploads contains behavior switches for the publication pipeline.
type Uploads struct {
	AutoPublish           bool     `toml:"auto_publish"`
	DeleteFailures        bool     `toml:"delete_failures"`
	ReserveDOI            bool     `toml:"reserve_doi"`
	SuccessResultsFile    string   `toml:"successful_results_file"`
	FailureResultsFile    string   `toml:"failure_results_file"`
	RelatedIdentifiersCSV string   `toml:"related_identifiers_csv"`
	ReferencesCSV         string   `toml:"references_csv"`
	DefaultFiles          []string `toml:"default_files"`
}

// API contains connection settings for the remote repository. The bearer
// token is never read from the config file; it comes from the environment.
type API struct {
	BaseURL        string `toml:"base_url"`
	RequestTimeout int    `toml:"request_timeout"`
}

// Person describes one creator or contributor in the project identity.
type Person struct {
	Type         string   `toml:"type"`
	Name         string   `toml:"name"`
	GivenName    string   `toml:"given_name"`
	FamilyName   string   `toml:"family_name"`
	ORCID        string   `toml:"orcid"`
	Role         string   `toml:"role"`
	Affiliations []string `toml:"affiliations"`
}

// Funding describes one funding entry attached to every record.
type Funding struct {
	FunderID    string `toml:"funder_id"`
	FunderName  string `toml:"funder_name"`
	AwardTitle  string `toml:"award_title"`
	AwardNumber string `toml:"award_number"`
	AwardURL    string `toml:"award_url"`
}

// Identity is the project-wide record identity shared by every dataset:
// who made it, who paid for it, how it is licensed, and which community
// (if any) drafts are routed to for review.
type Identity struct {
	ResourceType string            `toml:"resource_type"`
	Publisher    string            `toml:"publisher"`
	License      string            `toml:"license"`
	Language     string            `toml:"language"`
	CommunityID  string            `toml:"community_id"`
	Creators     []Person          `toml:"creators"`
	Contributors []Person          `toml:"contributors"`
	Funding      []Funding         `toml:"funding"`
	CustomFields map[string]any    `toml:"custom_fields"`
	AccessRecord string            `toml:"access_record"`
	AccessFiles  string            `toml:"access_files"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
}

// Config encapsulates all configuration values for AZUS.
//
// Configuration sections by subsystem:
//   - Paths: local state directories, tracker and lock files
//   - Groups: dataset directories paired with collectors CSVs
//   - Uploads: pipeline behavior (publish/delete/reserve-DOI, result CSVs)
//   - API: remote repository base URL and timeouts
//   - Identity: project-wide creators, funding, license, community
//   - Logging: log format and level
type Config struct {
	Paths    Paths          `toml:"paths"`
	Groups   []DatasetGroup `toml:"groups"`
	Uploads  Uploads        `toml:"uploads"`
	API      API            `toml:"api"`
	Identity Identity       `toml:"identity"`
	Logging  Logging        `toml:"logging"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath("~/.config/azus/config.toml")
}

// Load locates, parses, and validates a configuration file. The returned
// config has all path fields expanded and normalized.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := DefaultConfigPath()
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs("azus.toml")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}

	return defaultPath, false, nil
}

// EnsureDirectories creates the local state directories the pipeline writes to.
func (c *Config) EnsureDirectories() error {
	for _, dir := range []string{c.Paths.ResultsDir, c.Paths.AuditDir, c.Paths.LogDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	return nil
}

// SampleConfig returns the embedded sample configuration document.
func SampleConfig() string {
	return sampleConfig
}

// CreateSample writes the embedded sample configuration to the given path.
func CreateSample(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}
	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}

// ExpandPath resolves ~ prefixes and returns an absolute, cleaned path.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}
