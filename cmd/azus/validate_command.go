package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/ARISA-Lab-LLC/ESCSP-AZUS/internal/collectors"
	"github.com/ARISA-Lab-LLC/ESCSP-AZUS/internal/dataset"
)

// newValidateCommand checks every dataset group offline: collectors CSVs
// parse, archives resolve to file sets, and each archive has a matching
// collector row. No network calls are made.
func newValidateCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "validate",
		Short: "Check dataset bundles and collector CSVs without uploading",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			logger, err := ctx.ensureLogger()
			if err != nil {
				return err
			}

			var rows [][]string
			problems := 0
			for _, group := range cfg.Groups {
				if err := dataset.Normalize(group.Dir); err != nil {
					return err
				}
				sites, err := collectors.ParseCSV(group.CollectorsCSV, collectors.Category(group.Category))
				if err != nil {
					return err
				}
				byESID := make(map[string]collectors.Collector, len(sites))
				for _, site := range sites {
					byESID[site.ESID] = site
				}

				archives, err := dataset.Locate(group.Dir)
				if err != nil {
					return err
				}
				for _, archive := range archives {
					esid := dataset.DeriveID(archive)
					problem := ""

					if _, ok := byESID[esid]; !ok {
						problem = "no collector row"
					}
					files := 0
					if problem == "" {
						set, err := dataset.Resolve(archive, cfg.Uploads.DefaultFiles, logger)
						if err != nil {
							problem = err.Error()
						} else {
							files = len(set.UploadOrder())
							if _, _, err := dataset.RecordingWindow(archive); err != nil {
								problem = err.Error()
							}
						}
					}
					if problem != "" {
						problems++
					}
					rows = append(rows, []string{group.Category, esid, strconv.Itoa(files), problem})
				}
			}

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, renderTable(
				[]string{"Category", "ESID", "Files", "Problem"},
				rows,
				[]columnAlignment{alignLeft, alignLeft, alignRight, alignLeft},
			))
			if problems > 0 {
				return fmt.Errorf("%d dataset(s) failed validation", problems)
			}
			fmt.Fprintf(out, "%d dataset(s) ready to upload\n", len(rows))
			return nil
		},
	}
}
