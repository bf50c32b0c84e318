// SPDX-License-Identifier: MIT
// Copyright (c) 2026 mwkit
// Source: github.com/mwkit/bsa

package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mwkit/bsa"
)

// NewExtractCmd creates the extract subcommand. It extracts a single entry
// into the output directory, by default dropping the entry's directory part.
func NewExtractCmd(verbose *bool) *cobra.Command {
	var fullPath bool

	cmd := &cobra.Command{
		Use:   "extract ARCHIVE FILE [OUTDIR]",
		Short: "Extract a single entry from an archive",
		Args:  cobra.RangeArgs(2, 3),
		RunE: func(cmd *cobra.Command, args []string) error {
			archivePath := args[0]
			name := args[1]

			outDir := "."
			if len(args) == 3 {
				outDir = args[2]
			}

			a, err := bsa.OpenWithOptions(archivePath, bsa.OpenOptions{
				Logger: newLogger(*verbose),
			})
			if err != nil {
				return err
			}

			ok, err := a.Exists(bsa.NormalizeName(name))
			if err != nil {
				return err
			}
			if !ok {
				return fmt.Errorf("file %q not found in archive %s", name, archivePath)
			}

			return a.Extract(cmd.Context(), outDir, bsa.ExtractOptions{
				Logger:  newLogger(*verbose),
				Names:   []string{name},
				Flatten: !fullPath,
				OnEntryDone: func(entry bsa.Entry, _ int64, outputPath string) {
					fmt.Fprintf(cmd.OutOrStdout(), "Extracting %s to %s\n", entry.Name, outputPath)
				},
			})
		},
	}

	cmd.Flags().BoolVarP(&fullPath, "full-path", "f", false, "Recreate the entry's directory hierarchy under OUTDIR")

	return cmd
}
