package uploader

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
)

func auditName(esid, kind, runID string) string {
	if runID == "" {
		return fmt.Sprintf("ESID_%s_%s.json", esid, kind)
	}
	return fmt.Sprintf("ESID_%s_%s_%s.json", esid, kind, runID)
}

// writeAudit mirrors an outgoing request or exchange into the audit
// directory. Audit failures are downgraded to warnings; they must never
// abort an upload.
func (d *Driver) writeAudit(name string, payload any, logger *slog.Logger) {
	if d.AuditDir == "" {
		return
	}
	if err := os.MkdirAll(d.AuditDir, 0o755); err != nil {
		logger.Warn("audit directory unavailable", "dir", d.AuditDir, "error", err)
		return
	}
	encoded, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		logger.Warn("audit payload not serializable", "file", name, "error", err)
		return
	}
	path := filepath.Join(d.AuditDir, name)
	if err := os.WriteFile(path, encoded, 0o644); err != nil {
		logger.Warn("audit write failed", "file", path, "error", err)
	}
}
