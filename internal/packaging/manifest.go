package packaging

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/ARISA-Lab-LLC/ESCSP-AZUS/internal/services"
)

// WriteManifest creates ESID_<esid>_to_upload.csv in dir. The manifest names
// every file the uploader should push: the package archive first, then every
// inventory entry that is not a WAV recording. Returns the manifest path and
// the listed names in order.
func WriteManifest(esid, dir string, inventoryNames []string) (string, []string, error) {
	archiveName := ArchiveName(esid)
	listed := []string{archiveName}
	for _, name := range inventoryNames {
		if strings.EqualFold(filepath.Ext(name), ".wav") {
			continue
		}
		if name == archiveName {
			continue
		}
		listed = append(listed, name)
	}

	manifestPath := filepath.Join(dir, fmt.Sprintf("ESID_%s_to_upload.csv", esid))
	out, err := os.Create(manifestPath)
	if err != nil {
		return "", nil, services.Wrap(services.ErrConfiguration, "packaging", "manifest", "create manifest", err)
	}
	defer out.Close()

	writer := csv.NewWriter(out)
	if err := writer.Write([]string{"File Name"}); err != nil {
		return "", nil, services.Wrap(nil, "packaging", "manifest", "write header", err)
	}
	for _, name := range listed {
		if err := writer.Write([]string{name}); err != nil {
			return "", nil, services.Wrap(nil, "packaging", "manifest", "write row", err)
		}
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		return "", nil, services.Wrap(nil, "packaging", "manifest", "flush manifest", err)
	}
	return manifestPath, listed, nil
}
