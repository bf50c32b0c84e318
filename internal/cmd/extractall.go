// SPDX-License-Identifier: MIT
// Copyright (c) 2026 mwkit
// Source: github.com/mwkit/bsa

package cmd

import (
	"fmt"
	"sync/atomic"

	"github.com/spf13/cobra"
	"github.com/woozymasta/pathrules"

	"github.com/mwkit/bsa"
)

// NewExtractAllCmd creates the extract-all subcommand. It extracts every
// entry, or the rule-selected subset, into the output directory with the
// full directory hierarchy.
func NewExtractAllCmd(verbose *bool) *cobra.Command {
	var (
		include []string
		exclude []string
		workers int
	)

	cmd := &cobra.Command{
		Use:     "extract-all ARCHIVE [OUTDIR]",
		Aliases: []string{"extractall"},
		Short:   "Extract every entry from an archive",
		Args:    cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			outDir := "."
			if len(args) == 2 {
				outDir = args[1]
			}

			a, err := bsa.OpenWithOptions(args[0], bsa.OpenOptions{
				Logger: newLogger(*verbose),
			})
			if err != nil {
				return err
			}

			rules, matcherOpts := SelectionRules(include, exclude)

			var done atomic.Int64
			err = a.Extract(cmd.Context(), outDir, bsa.ExtractOptions{
				Logger:               newLogger(*verbose),
				Select:               rules,
				SelectMatcherOptions: matcherOpts,
				MaxWorkers:           workers,
				OnEntryDone: func(bsa.Entry, int64, string) {
					done.Add(1)
				},
			})
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Extracted %d entries to %s\n", done.Load(), outDir)

			return nil
		},
	}

	cmd.Flags().StringArrayVar(&include, "include", nil, "Glob pattern of entries to extract (repeatable)")
	cmd.Flags().StringArrayVar(&exclude, "exclude", nil, "Glob pattern of entries to skip (repeatable)")
	cmd.Flags().IntVar(&workers, "workers", 0, "Number of parallel extraction workers (0 means GOMAXPROCS)")

	return cmd
}

// SelectionRules builds an ordered rule list from include and exclude
// patterns. The later rule wins for overlapping paths, so excludes take
// priority over includes. With include patterns present, unmatched entries
// are dropped; with only excludes, everything else stays in.
func SelectionRules(include, exclude []string) ([]pathrules.Rule, pathrules.MatcherOptions) {
	rules := make([]pathrules.Rule, 0, len(include)+len(exclude))
	for _, pattern := range include {
		rules = append(rules, pathrules.Rule{Action: pathrules.ActionInclude, Pattern: pattern})
	}

	for _, pattern := range exclude {
		rules = append(rules, pathrules.Rule{Action: pathrules.ActionExclude, Pattern: pattern})
	}

	defaultAction := pathrules.ActionInclude
	if len(include) > 0 {
		defaultAction = pathrules.ActionExclude
	}

	return rules, pathrules.MatcherOptions{
		CaseInsensitive: true,
		DefaultAction:   defaultAction,
	}
}
