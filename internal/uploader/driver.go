package uploader

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/ARISA-Lab-LLC/ESCSP-AZUS/internal/dataset"
	"github.com/ARISA-Lab-LLC/ESCSP-AZUS/internal/metadata"
	"github.com/ARISA-Lab-LLC/ESCSP-AZUS/internal/services/invenio"
)

// Driver executes the per-dataset upload protocol. One Driver serves a
// whole run; per-dataset state lives on the call stack.
type Driver struct {
	Client *invenio.Client
	Logger *slog.Logger

	// AuditDir receives per-dataset request/response JSON copies; RunID
	// distinguishes files across runs.
	AuditDir string
	RunID    string

	CommunityID    string
	AutoPublish    bool
	DeleteFailures bool

	AccessRecord metadata.Access
	AccessFiles  metadata.Access
	CustomFields map[string]any
}

// Upload runs the full protocol for one dataset: draft creation, file
// transfers in upload order, optional review submission, optional publish.
// The first failure stops the sequence; when failure cleanup is enabled the
// draft is deleted best-effort.
func (d *Driver) Upload(ctx context.Context, files *dataset.FileSet, built *metadata.Built) Outcome {
	logger := d.logger().With("esid", files.ESID)

	body := d.buildDraftRequest(built)
	d.writeAudit(auditName(files.ESID, "metadata", d.RunID), body, logger)

	record, raw, err := d.Client.CreateDraft(ctx, body)
	d.writeAudit(auditName(files.ESID, "draft", d.RunID), map[string]any{
		"request":  body,
		"response": raw,
	}, logger)
	if err != nil {
		failure := Classify(err)
		logger.Error("draft creation failed", "kind", failure.Kind, "error", err)
		return Outcome{Failure: &failure}
	}

	draftID := record.ID.String()
	if draftID == "" {
		failure := Failure{Kind: "NoDraftId", Message: "draft response contained no record id"}
		logger.Error("draft creation returned no id")
		return Outcome{Failure: &failure}
	}
	logger.Info("draft created", "draft_id", draftID)

	result := Outcome{DraftID: draftID, Record: record, Raw: raw}

	for _, path := range files.UploadOrder() {
		if err := d.uploadFile(ctx, draftID, path); err != nil {
			return d.fail(ctx, result, err, logger)
		}
		logger.Info("file uploaded", "file", filepath.Base(path))
	}

	if d.CommunityID != "" {
		if err := d.Client.CreateReview(ctx, draftID, d.CommunityID); err != nil {
			return d.fail(ctx, result, err, logger)
		}
		reviewed, reviewRaw, err := d.Client.SubmitReview(ctx, draftID)
		if err != nil {
			return d.fail(ctx, result, err, logger)
		}
		result.Record, result.Raw = reviewed, reviewRaw
		logger.Info("draft submitted for community review", "community", d.CommunityID)
	}

	if d.AutoPublish {
		published, publishRaw, err := d.Client.Publish(ctx, draftID)
		if err != nil {
			return d.fail(ctx, result, err, logger)
		}
		result.Record, result.Raw = published, publishRaw
		logger.Info("record published", "doi", published.DOIValue())
	}

	result.Successful = true
	return result
}

func (d *Driver) buildDraftRequest(built *metadata.Built) invenio.DraftRequest {
	request := invenio.DraftRequest{
		Access: invenio.AccessSpec{
			Record: d.AccessRecord.String(),
			Files:  d.AccessFiles.String(),
		},
		Files:        invenio.FilesSpec{Enabled: true},
		Metadata:     built.Payload,
		CustomFields: d.CustomFields,
	}
	if d.CommunityID != "" {
		request.Parent = &invenio.ParentSpec{
			Communities: &invenio.CommunitiesSpec{IDs: []string{d.CommunityID}},
		}
	}
	if len(built.PIDs) > 0 {
		pids := make(map[string]invenio.PID, len(built.PIDs))
		for name, pid := range built.PIDs {
			pids[name] = invenio.PID{Identifier: pid.Identifier, Provider: pid.Provider, Client: pid.Client}
		}
		request.PIDs = pids
	}
	return request
}

// uploadFile runs the three-step slot protocol for one file: init, content
// transfer, commit. The init response lists every slot on the draft, so the
// target is matched by filename key rather than position.
func (d *Driver) uploadFile(ctx context.Context, draftID, path string) error {
	key := filepath.Base(path)

	entries, err := d.Client.InitFiles(ctx, draftID, key)
	if err != nil {
		return err
	}
	var slot *invenio.FileEntry
	for i := range entries {
		if entries[i].Key == key {
			slot = &entries[i]
			break
		}
	}
	if slot == nil {
		return fmt.Errorf("upload slot for %s missing from init response", key)
	}

	file, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open %s: %w", path, err)
	}
	defer file.Close()
	info, err := file.Stat()
	if err != nil {
		return fmt.Errorf("stat %s: %w", path, err)
	}

	if err := d.Client.UploadContent(ctx, slot.Links.Content, file, info.Size()); err != nil {
		return err
	}
	return d.Client.CommitFile(ctx, slot.Links.Commit)
}

func (d *Driver) fail(ctx context.Context, result Outcome, err error, logger *slog.Logger) Outcome {
	failure := Classify(err)
	logger.Error("upload failed", "kind", failure.Kind, "error", err)

	if d.DeleteFailures && result.DraftID != "" {
		if deleteErr := d.Client.DeleteDraft(ctx, result.DraftID); deleteErr != nil {
			// Cleanup failure never changes the computed outcome.
			logger.Warn("failed to delete draft after failure", "draft_id", result.DraftID, "error", deleteErr)
		} else {
			logger.Info("draft deleted after failure", "draft_id", result.DraftID)
		}
	}

	result.Successful = false
	result.Failure = &failure
	return result
}

func (d *Driver) logger() *slog.Logger {
	if d.Logger != nil {
		return d.Logger
	}
	return slog.Default()
}
