package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/ARISA-Lab-LLC/ESCSP-AZUS/internal/dataset"
	"github.com/ARISA-Lab-LLC/ESCSP-AZUS/internal/tracker"
)

func newStatusCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show per-group upload progress",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}

			track, err := tracker.New(cfg.Paths.TrackerFile)
			if err != nil {
				return err
			}
			defer track.Close()

			rows := make([][]string, 0, len(cfg.Groups))
			for _, group := range cfg.Groups {
				archives, err := dataset.Locate(group.Dir)
				if err != nil {
					rows = append(rows, []string{group.Category, group.Dir, "-", "-", err.Error()})
					continue
				}
				uploaded := 0
				for _, archive := range archives {
					if track.IsUploaded(archive) {
						uploaded++
					}
				}
				rows = append(rows, []string{
					group.Category,
					group.Dir,
					strconv.Itoa(len(archives)),
					strconv.Itoa(uploaded),
					"",
				})
			}

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, renderTable(
				[]string{"Category", "Directory", "Bundles", "Uploaded", "Problem"},
				rows,
				[]columnAlignment{alignLeft, alignLeft, alignRight, alignRight, alignLeft},
			))
			fmt.Fprintf(out, "Tracker: %d dataset(s) recorded in %s\n", track.Count(), cfg.Paths.TrackerFile)
			return nil
		},
	}
}
