package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ARISA-Lab-LLC/ESCSP-AZUS/internal/records"
)

func newRecordsCommand(ctx *commandContext) *cobra.Command {
	var dir string
	var size int

	cmd := &cobra.Command{
		Use:   "records",
		Short: "Export the account's published records to a timestamped CSV",
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

			target := dir
			if target == "" {
				target = cfg.Paths.ResultsDir
			}
			svc := records.NewService(client, logger)
			if size > 0 {
				svc.PageSize = size
			}

			path, count, err := svc.ExportPublished(cmd.Context(), target)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Wrote %d published record(s) to %s\n", count, path)
			return nil
		},
	}

	cmd.Flags().StringVar(&dir, "dir", "", "Output directory (defaults to the results directory)")
	cmd.Flags().IntVar(&size, "size", records.DefaultPageSize, "Search page size")
	return cmd
}

func newRequestsCommand(ctx *commandContext) *cobra.Command {
	var size int

	cmd := &cobra.Command{
		Use:   "requests",
		Short: "Accept the account's open review requests",
		RunE: func(cmd *cobra.Command, args []string) error {
			logger, err := ctx.ensureLogger()
			if err != nil {
				return err
			}
			client, err := ctx.newClient()
			if err != nil {
				return err
			}

			svc := records.NewService(client, logger)
			if size > 0 {
				svc.PageSize = size
			}

			accepted, failed, err := svc.AcceptOpenRequests(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Accepted %d request(s), %d failed\n", accepted, failed)
			if failed > 0 {
				return fmt.Errorf("%d request(s) could not be accepted", failed)
			}
			return nil
		},
	}

	cmd.Flags().IntVar(&size, "size", records.DefaultPageSize, "Search page size")
	return cmd
}
