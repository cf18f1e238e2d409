// Package pipeline orchestrates a publication run: it iterates configured
// dataset groups, discovers archives that have not been uploaded yet, and
// drives each one through metadata assembly, the upload protocol, and
// result recording.
package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/gofrs/flock"
	"github.com/google/uuid"

	"github.com/ARISA-Lab-LLC/ESCSP-AZUS/internal/collectors"
	"github.com/ARISA-Lab-LLC/ESCSP-AZUS/internal/config"
	"github.com/ARISA-Lab-LLC/ESCSP-AZUS/internal/dataset"
	"github.com/ARISA-Lab-LLC/ESCSP-AZUS/internal/logging"
	"github.com/ARISA-Lab-LLC/ESCSP-AZUS/internal/metadata"
	"github.com/ARISA-Lab-LLC/ESCSP-AZUS/internal/results"
	"github.com/ARISA-Lab-LLC/ESCSP-AZUS/internal/services"
	"github.com/ARISA-Lab-LLC/ESCSP-AZUS/internal/services/invenio"
	"github.com/ARISA-Lab-LLC/ESCSP-AZUS/internal/tracker"
	"github.com/ARISA-Lab-LLC/ESCSP-AZUS/internal/uploader"
)

// Stats aggregates the outcome counts of one run.
type Stats struct {
	Processed  int
	Successful int
	Failed     int
	Skipped    int
}

// Runner executes the publication pipeline for every configured dataset
// group, one dataset at a time.
type Runner struct {
	cfg    *config.Config
	logger *slog.Logger
	client *invenio.Client
	runID  string
}

// New builds a runner. The client must be authenticated; the runner never
// reads credentials itself.
func New(cfg *config.Config, client *invenio.Client, logger *slog.Logger) *Runner {
	return &Runner{
		cfg:    cfg,
		logger: logging.WithComponent(logger, "pipeline"),
		client: client,
		runID:  uuid.NewString(),
	}
}

// RunID identifies this run in logs and audit file names.
func (r *Runner) RunID() string { return r.runID }

// Run processes every configured group sequentially. A second concurrent
// invocation against the same tracker file is refused via the lock file;
// two runs sharing one tracker could duplicate-publish.
func (r *Runner) Run(ctx context.Context) (Stats, error) {
	var stats Stats

	if len(r.cfg.Groups) == 0 {
		return stats, services.Wrap(services.ErrConfiguration, "pipeline", "run", "no dataset groups configured", nil)
	}

	lock := flock.New(r.cfg.Paths.LockFile)
	locked, err := lock.TryLock()
	if err != nil {
		return stats, services.Wrap(services.ErrConfiguration, "pipeline", "acquire lock", r.cfg.Paths.LockFile, err)
	}
	if !locked {
		return stats, services.Wrap(services.ErrConfiguration, "pipeline", "acquire lock",
			"another pipeline invocation holds the lock", nil)
	}
	defer lock.Unlock()

	uploads, err := tracker.New(r.cfg.Paths.TrackerFile)
	if err != nil {
		return stats, services.Wrap(services.ErrConfiguration, "pipeline", "open tracker", r.cfg.Paths.TrackerFile, err)
	}
	defer uploads.Close()

	driver := &uploader.Driver{
		Client:         r.client,
		Logger:         r.logger,
		AuditDir:       r.cfg.Paths.AuditDir,
		RunID:          r.runID,
		CommunityID:    r.cfg.Identity.CommunityID,
		AutoPublish:    r.cfg.Uploads.AutoPublish,
		DeleteFailures: r.cfg.Uploads.DeleteFailures,
		AccessRecord:   metadata.ParseAccess(r.cfg.Identity.AccessRecord),
		AccessFiles:    metadata.ParseAccess(r.cfg.Identity.AccessFiles),
		CustomFields:   r.cfg.Identity.CustomFields,
	}
	recorder := &results.Recorder{
		SuccessFile: r.cfg.Uploads.SuccessResultsFile,
		FailureFile: r.cfg.Uploads.FailureResultsFile,
		Tracker:     uploads,
	}
	builder := &metadata.Builder{
		Identity: r.cfg.Identity,
		Logger:   r.logger,
		Now:      time.Now,
	}

	r.logger.Info("starting run", "run_id", r.runID, "groups", len(r.cfg.Groups))

	for _, group := range r.cfg.Groups {
		if err := r.processGroup(ctx, group, uploads, driver, recorder, builder, &stats); err != nil {
			return stats, err
		}
	}

	r.logger.Info("run complete",
		"processed", stats.Processed,
		"successful", stats.Successful,
		"failed", stats.Failed,
		"skipped", stats.Skipped)
	return stats, nil
}

func (r *Runner) processGroup(
	ctx context.Context,
	group config.DatasetGroup,
	uploads *tracker.Tracker,
	driver *uploader.Driver,
	recorder *results.Recorder,
	builder *metadata.Builder,
	stats *Stats,
) error {
	category := collectors.Category(group.Category)
	logger := r.logger.With("group", group.Category)

	if err := dataset.Normalize(group.Dir); err != nil {
		return err
	}

	siteInfo, err := collectors.ParseCSV(group.CollectorsCSV, category)
	if err != nil {
		return err
	}
	byESID := make(map[string]collectors.Collector, len(siteInfo))
	for _, collector := range siteInfo {
		byESID[collector.ESID] = collector
	}

	archives, err := dataset.Locate(group.Dir)
	if err != nil {
		return err
	}
	if len(archives) == 0 {
		logger.Info("no dataset archives found", "dir", group.Dir)
		return nil
	}

	for _, archive := range archives {
		if err := ctx.Err(); err != nil {
			return err
		}
		if uploads.IsUploaded(archive) {
			logger.Info("already uploaded, skipping", "archive", archive)
			stats.Skipped++
			continue
		}

		esid := dataset.DeriveID(archive)
		stats.Processed++

		collector, ok := byESID[esid]
		if !ok {
			logger.Error("no collector info for dataset", "esid", esid)
			if err := recorder.RecordFailure(esid, "", "Unable to find data collector info"); err != nil {
				return err
			}
			stats.Failed++
			continue
		}

		outcome := r.uploadDataset(ctx, archive, collector, driver, builder, logger)
		if err := recorder.Record(esid, archive, outcome); err != nil {
			return err
		}
		if outcome.Successful {
			stats.Successful++
		} else {
			stats.Failed++
		}
	}
	return nil
}

// uploadDataset resolves one archive's files and metadata, then drives the
// upload. Failures before the driver runs are folded into the same tagged
// outcome shape so the recorder routes them uniformly.
func (r *Runner) uploadDataset(
	ctx context.Context,
	archive string,
	collector collectors.Collector,
	driver *uploader.Driver,
	builder *metadata.Builder,
	logger *slog.Logger,
) uploader.Outcome {
	files, err := dataset.Resolve(archive, r.cfg.Uploads.DefaultFiles, logger)
	if err != nil {
		failure := uploader.Classify(err)
		return uploader.Outcome{Failure: &failure}
	}

	first, last, err := dataset.RecordingWindow(archive)
	if err != nil {
		failure := uploader.Classify(err)
		return uploader.Outcome{Failure: &failure}
	}
	collector.FirstRecordingDay = first
	collector.LastRecordingDay = last

	built, err := builder.Build(metadata.Input{
		Collector:             collector,
		DescriptionPath:       files.DescriptionHTML,
		RelatedIdentifiersCSV: r.cfg.Uploads.RelatedIdentifiersCSV,
		ReferencesCSV:         r.cfg.Uploads.ReferencesCSV,
		ReserveDOI:            r.cfg.Uploads.ReserveDOI,
	})
	if err != nil {
		failure := uploader.Classify(err)
		return uploader.Outcome{Failure: &failure}
	}

	logger.Info("uploading dataset",
		"esid", files.ESID,
		"files", len(files.UploadOrder()),
		"recording_window", fmt.Sprintf("%s..%s", first, last))
	return driver.Upload(ctx, files, built)
}
