// SPDX-License-Identifier: MIT
// Copyright (c) 2026 mwkit
// Source: github.com/mwkit/bsa

package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mwkit/bsa"
)

// NewListCmd creates the list subcommand. It prints the entries stored in an
// archive, one per line, with size and payload offset in long format.
func NewListCmd(verbose *bool) *cobra.Command {
	var (
		longFormat bool
		prefix     string
	)

	cmd := &cobra.Command{
		Use:   "list ARCHIVE",
		Short: "List the entries stored in an archive",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			entries, err := bsa.ListWithOptions(args[0], bsa.OpenOptions{
				Logger:          newLogger(*verbose),
				EntryPathPrefix: prefix,
			})
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			for _, entry := range entries {
				if longFormat {
					fmt.Fprintf(out, "%-50s%8d@ 0x%x\n", entry.Name, entry.Size, entry.Offset)
					continue
				}

				fmt.Fprintln(out, entry.Name)
			}

			return nil
		},
	}

	cmd.Flags().BoolVarP(&longFormat, "long", "l", false, "Include size and offset in the listing")
	cmd.Flags().StringVarP(&prefix, "prefix", "p", "", "List only entries under this archive path")

	return cmd
}
