package config

import (
	"fmt"
	"path/filepath"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	if err := c.normalizeGroups(); err != nil {
		return err
	}
	c.normalizeUploads()
	c.normalizeAPI()
	c.normalizeIdentity()
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if c.Paths.ResultsDir, err = expandPath(c.Paths.ResultsDir); err != nil {
		return fmt.Errorf("paths.results_dir: %w", err)
	}
	if c.Paths.AuditDir, err = expandPath(c.Paths.AuditDir); err != nil {
		return fmt.Errorf("paths.audit_dir: %w", err)
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	if c.Paths.TrackerFile, err = expandPath(c.Paths.TrackerFile); err != nil {
		return fmt.Errorf("paths.tracker_file: %w", err)
	}
	if c.Paths.LockFile, err = expandPath(c.Paths.LockFile); err != nil {
		return fmt.Errorf("paths.lock_file: %w", err)
	}
	return nil
}

func (c *Config) normalizeGroups() error {
	for i := range c.Groups {
		group := &c.Groups[i]
		group.Category = strings.TrimSpace(group.Category)
		var err error
		if group.Dir, err = expandPath(strings.TrimSpace(group.Dir)); err != nil {
			return fmt.Errorf("groups[%d].dir: %w", i, err)
		}
		if group.CollectorsCSV, err = expandPath(strings.TrimSpace(group.CollectorsCSV)); err != nil {
			return fmt.Errorf("groups[%d].collectors_csv: %w", i, err)
		}
	}
	return nil
}

func (c *Config) normalizeUploads() {
	c.Uploads.SuccessResultsFile = strings.TrimSpace(c.Uploads.SuccessResultsFile)
	if c.Uploads.SuccessResultsFile == "" {
		c.Uploads.SuccessResultsFile = defaultSuccessResults
	}
	c.Uploads.FailureResultsFile = strings.TrimSpace(c.Uploads.FailureResultsFile)
	if c.Uploads.FailureResultsFile == "" {
		c.Uploads.FailureResultsFile = defaultFailureResults
	}
	// Result files are relative to the results directory unless absolute.
	if !filepath.IsAbs(c.Uploads.SuccessResultsFile) {
		c.Uploads.SuccessResultsFile = filepath.Join(c.Paths.ResultsDir, c.Uploads.SuccessResultsFile)
	}
	if !filepath.IsAbs(c.Uploads.FailureResultsFile) {
		c.Uploads.FailureResultsFile = filepath.Join(c.Paths.ResultsDir, c.Uploads.FailureResultsFile)
	}
	c.Uploads.RelatedIdentifiersCSV = strings.TrimSpace(c.Uploads.RelatedIdentifiersCSV)
	c.Uploads.ReferencesCSV = strings.TrimSpace(c.Uploads.ReferencesCSV)
	if len(c.Uploads.DefaultFiles) == 0 {
		c.Uploads.DefaultFiles = append([]string(nil), defaultUploadFiles...)
	}
}

func (c *Config) normalizeAPI() {
	c.API.BaseURL = strings.TrimRight(strings.TrimSpace(c.API.BaseURL), "/")
	if c.API.RequestTimeout <= 0 {
		c.API.RequestTimeout = defaultRequestTimeout
	}
}

func (c *Config) normalizeIdentity() {
	id := &c.Identity
	id.ResourceType = strings.TrimSpace(id.ResourceType)
	if id.ResourceType == "" {
		id.ResourceType = defaultResourceType
	}
	id.Publisher = strings.TrimSpace(id.Publisher)
	if id.Publisher == "" {
		id.Publisher = defaultPublisher
	}
	id.License = strings.TrimSpace(id.License)
	if id.License == "" {
		id.License = defaultLicense
	}
	id.Language = strings.TrimSpace(id.Language)
	if id.Language == "" {
		id.Language = defaultLanguage
	}
	id.CommunityID = strings.TrimSpace(id.CommunityID)
	id.AccessRecord = strings.ToLower(strings.TrimSpace(id.AccessRecord))
	if id.AccessRecord == "" {
		id.AccessRecord = defaultAccess
	}
	id.AccessFiles = strings.ToLower(strings.TrimSpace(id.AccessFiles))
	if id.AccessFiles == "" {
		id.AccessFiles = defaultAccess
	}
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = defaultLogFormat
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}
