package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ARISA-Lab-LLC/ESCSP-AZUS/internal/packaging"
)

func newPackageCommand(ctx *commandContext) *cobra.Command {
	var esid string
	var dir string
	var templatePath string

	cmd := &cobra.Command{
		Use:   "package",
		Short: "Assemble the upload package for one dataset directory",
		Long: "Builds the file inventory with sizes and SHA-512 digests, the dataset\n" +
			"archive, the upload manifest, and the Markdown README companion for a\n" +
			"single staging directory.",
		RunE: func(cmd *cobra.Command, args []string) error {
			logger, err := ctx.ensureLogger()
			if err != nil {
				return err
			}
			result, err := packaging.Prepare(esid, dir, templatePath, logger)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, renderTable(
				[]string{"Artifact", "Path"},
				[][]string{
					{"Inventory", result.InventoryPath},
					{"Archive", result.ArchivePath},
					{"Manifest", result.ManifestPath},
					{"Markdown", result.MarkdownPath},
				},
				[]columnAlignment{alignLeft, alignLeft},
			))
			fmt.Fprintf(out, "%d file(s) queued for upload\n", len(result.Uploads))
			return nil
		},
	}

	cmd.Flags().StringVar(&esid, "esid", "", "Dataset identifier")
	cmd.Flags().StringVar(&dir, "dir", "", "Dataset staging directory")
	cmd.Flags().StringVar(&templatePath, "template", "", "Inventory template CSV")
	_ = cmd.MarkFlagRequired("esid")
	_ = cmd.MarkFlagRequired("dir")
	_ = cmd.MarkFlagRequired("template")
	return cmd
}
