// SPDX-License-Identifier: MIT
// Copyright (c) 2026 mwkit
// Source: github.com/mwkit/bsa

package cmd

import (
	"fmt"
	"sync/atomic"

	"github.com/spf13/cobra"

	"github.com/mwkit/bsa"
)

// NewRepackCmd creates the repack subcommand. It streams entries from a
// source archive into a new one, optionally keeping only a rule-selected
// subset, and rebuilds the directory and hash table along the way.
func NewRepackCmd(verbose *bool) *cobra.Command {
	var (
		include []string
		exclude []string
	)

	cmd := &cobra.Command{
		Use:   "repack SRC DST",
		Short: "Rewrite an archive, optionally keeping a subset of entries",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			rules, matcherOpts := SelectionRules(include, exclude)

			var done atomic.Int64
			a, err := bsa.RepackWithOptions(args[0], args[1], bsa.RepackOptions{
				Logger:               newLogger(*verbose),
				Select:               rules,
				SelectMatcherOptions: matcherOpts,
				OnEntryDone: func(bsa.Entry) {
					done.Add(1)
				},
			})
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Repacked %d entries into %s (%d bytes)\n",
				done.Load(), args[1], a.Size())

			return nil
		},
	}

	cmd.Flags().StringArrayVar(&include, "include", nil, "Glob pattern of entries to keep (repeatable)")
	cmd.Flags().StringArrayVar(&exclude, "exclude", nil, "Glob pattern of entries to drop (repeatable)")

	return cmd
}
