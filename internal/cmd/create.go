// SPDX-License-Identifier: MIT
// Copyright (c) 2026 mwkit
// Source: github.com/mwkit/bsa

package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mwkit/bsa"
)

// NewCreateCmd creates the create subcommand. It builds an archive either
// from explicitly listed files, stored under their given paths, or from a
// directory tree collected with optional exclude patterns.
func NewCreateCmd(verbose *bool) *cobra.Command {
	var (
		fromDir string
		exclude []string
	)

	cmd := &cobra.Command{
		Use:   "create ARCHIVE [FILES...]",
		Short: "Create an archive from files on disk",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			archivePath := args[0]
			files := args[1:]

			if len(files) > 0 && fromDir != "" {
				return errors.New("pass either FILES or --from-dir, not both")
			}
			if len(files) == 0 && fromDir == "" {
				return errors.New("nothing to pack: pass FILES or --from-dir")
			}

			opts := bsa.CreateOptions{
				Logger: newLogger(*verbose),
			}

			var (
				a   *bsa.Archive
				err error
			)

			if fromDir != "" {
				rules, matcherOpts := SelectionRules(nil, exclude)

				sources, collectErr := bsa.CollectFiles(fromDir, bsa.CollectOptions{
					Rules:          rules,
					MatcherOptions: matcherOpts,
				})
				if collectErr != nil {
					return collectErr
				}

				a, err = bsa.CreateFromSources(archivePath, sources, opts)
			} else {
				a, err = bsa.CreateWithOptions(archivePath, files, opts)
			}
			if err != nil {
				return err
			}

			entries, err := a.Entries()
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Created %s with %d entries (%d bytes)\n",
				archivePath, len(entries), a.Size())

			return nil
		},
	}

	cmd.Flags().StringVar(&fromDir, "from-dir", "", "Pack every file under this directory instead of listing FILES")
	cmd.Flags().StringArrayVar(&exclude, "exclude", nil, "Glob pattern of collected files to skip (repeatable, with --from-dir)")

	return cmd
}
