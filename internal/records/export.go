package records

import (
	"context"
	"encoding/csv"
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"path/filepath"
	"time"

	"github.com/ARISA-Lab-LLC/ESCSP-AZUS/internal/logging"
	"github.com/ARISA-Lab-LLC/ESCSP-AZUS/internal/services"
	"github.com/ARISA-Lab-LLC/ESCSP-AZUS/internal/services/invenio"
)

// DefaultPageSize is used when a caller does not pick a page size.
const DefaultPageSize = 10

var exportColumns = []string{
	"id", "conceptrecid", "doi", "conceptdoi", "doi_url", "title", "recid",
	"status", "state", "submitted", "created", "modified", "updated",
}

// Service runs record maintenance flows against one repository account.
type Service struct {
	Client   *invenio.Client
	Logger   *slog.Logger
	PageSize int
	Now      func() time.Time
}

// NewService builds a Service with default paging and clock.
func NewService(client *invenio.Client, logger *slog.Logger) *Service {
	return &Service{
		Client:   client,
		Logger:   logging.WithComponent(logger, "records"),
		PageSize: DefaultPageSize,
		Now:      time.Now,
	}
}

// ExportPublished pages through the user's records, keeps the published
// ones, and writes them to records_<timestamp>.csv inside dir. It returns
// the file path and the number of rows written.
func (s *Service) ExportPublished(ctx context.Context, dir string) (string, int, error) {
	if dir == "" {
		return "", 0, services.Wrap(services.ErrConfiguration, "records", "export", "output directory is empty", nil)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", 0, services.Wrap(services.ErrConfiguration, "records", "export", fmt.Sprintf("create %s", dir), err)
	}

	published, err := s.collectPublished(ctx)
	if err != nil {
		return "", 0, err
	}

	name := fmt.Sprintf("records_%s.csv", s.now().Format("20060102150405"))
	path := filepath.Join(dir, name)
	out, err := os.Create(path)
	if err != nil {
		return "", 0, services.Wrap(nil, "records", "export", "create export file", err)
	}
	defer out.Close()

	writer := csv.NewWriter(out)
	if err := writer.Write(exportColumns); err != nil {
		return "", 0, services.Wrap(nil, "records", "export", "write header", err)
	}
	for _, record := range published {
		row := []string{
			record.ID.String(),
			record.ConceptRecID.String(),
			record.DOIValue(),
			record.ConceptDOI,
			record.DOIURL,
			record.TitleValue(),
			record.RecID.String(),
			record.Status,
			record.State,
			record.SubmittedValue(),
			record.Created,
			record.Modified,
			record.Updated,
		}
		if err := writer.Write(row); err != nil {
			return "", 0, services.Wrap(nil, "records", "export", "write row", err)
		}
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		return "", 0, services.Wrap(nil, "records", "export", "flush export file", err)
	}

	s.Logger.Info("exported published records", "path", path, "records", len(published))
	return path, len(published), nil
}

func (s *Service) collectPublished(ctx context.Context) ([]invenio.Record, error) {
	extra := url.Values{}
	extra.Set("shared_with_me", "false")

	var published []invenio.Record
	for page := 1; ; page++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		result, err := s.Client.SearchUserRecords(ctx, page, s.pageSize(), extra)
		if err != nil {
			return nil, services.Wrap(services.ErrHTTP, "records", "export", fmt.Sprintf("search page %d", page), err)
		}
		for _, record := range result.Hits.Hits {
			if record.Status == "published" {
				published = append(published, record)
			}
		}
		if result.Links.Next == "" || len(result.Hits.Hits) == 0 {
			break
		}
	}
	return published, nil
}

func (s *Service) pageSize() int {
	if s.PageSize > 0 {
		return s.PageSize
	}
	return DefaultPageSize
}

func (s *Service) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}
