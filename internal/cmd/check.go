// SPDX-License-Identifier: MIT
// Copyright (c) 2026 mwkit
// Source: github.com/mwkit/bsa

package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mwkit/bsa"
)

// NewCheckCmd creates the check subcommand. It recomputes the name hash of
// every entry and compares it with the hash table stored in the archive
// directory, which regular decoding never verifies.
func NewCheckCmd(verbose *bool) *cobra.Command {
	return &cobra.Command{
		Use:   "check ARCHIVE",
		Short: "Verify the stored name hash table of an archive",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := bsa.OpenWithOptions(args[0], bsa.OpenOptions{
				Logger: newLogger(*verbose),
			})
			if err != nil {
				return err
			}

			mismatches, err := a.CheckHashes()
			if err != nil {
				return err
			}

			entries, err := a.Entries()
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if len(mismatches) == 0 {
				fmt.Fprintf(out, "%s: hash table matches all %d entries\n", args[0], len(entries))
				return nil
			}

			for _, m := range mismatches {
				fmt.Fprintf(out, "entry %d %s: stored 0x%016x, computed 0x%016x\n",
					m.Index, m.Name, m.Stored, m.Computed)
			}

			return fmt.Errorf("%d of %d hash table entries do not match", len(mismatches), len(entries))
		},
	}
}
