package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/ARISA-Lab-LLC/ESCSP-AZUS/internal/pipeline"
)

func newUploadCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "upload",
		Short: "Publish every unprocessed dataset bundle to the repository",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			logger, err := ctx.ensureLogger()
			if err != nil {
				return err
			}
			client, err := ctx.newClient()
			if err != nil {
				return err
			}

			runner := pipeline.New(cfg, client, logger)
			stats, err := runner.Run(cmd.Context())
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, renderTable(
				[]string{"Processed", "Successful", "Failed", "Skipped"},
				[][]string{{
					strconv.Itoa(stats.Processed),
					strconv.Itoa(stats.Successful),
					strconv.Itoa(stats.Failed),
					strconv.Itoa(stats.Skipped),
				}},
				[]columnAlignment{alignRight, alignRight, alignRight, alignRight},
			))

			if stats.Failed > 0 {
				return fmt.Errorf("%d dataset(s) failed; see %s", stats.Failed, cfg.Uploads.FailureResultsFile)
			}
			return nil
		},
	}
}
