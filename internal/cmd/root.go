// SPDX-License-Identifier: MIT
// Copyright (c) 2026 mwkit
// Source: github.com/mwkit/bsa

package cmd

import (
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/mwkit/bsa/version"
)

// NewRootCmd creates the root cobra command for the bsatool CLI with all
// subcommands and command groups attached.
func NewRootCmd() *cobra.Command {
	var verbose bool

	rootCmd := &cobra.Command{
		Use:   "bsatool",
		Short: "bsatool - inspect, extract, and build Morrowind BSA archives",
		Long: `bsatool works with Bethesda Softworks Archive files in the original
Morrowind layout.

Use subcommands to perform different operations:
  - list: show the entries stored in an archive
  - extract: extract a single entry
  - extract-all: extract every entry into a directory
  - create: build an archive from files on disk
  - repack: rewrite an archive, optionally keeping a subset of entries
  - check: verify the stored name hash table
  - mount: expose an archive as a read-only FUSE filesystem`,
		Version:       version.GetFullVersion(),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().BoolVar(&verbose, "verbose", false, "Log debug diagnostics to stderr")

	groupArchive := "archive"
	groupFilesystem := "filesystem"

	rootCmd.AddGroup(&cobra.Group{
		ID:    groupArchive,
		Title: "Archive Operations",
	})
	rootCmd.AddGroup(&cobra.Group{
		ID:    groupFilesystem,
		Title: "Filesystem Operations",
	})

	listCmd := NewListCmd(&verbose)
	extractCmd := NewExtractCmd(&verbose)
	extractAllCmd := NewExtractAllCmd(&verbose)
	createCmd := NewCreateCmd(&verbose)
	repackCmd := NewRepackCmd(&verbose)
	checkCmd := NewCheckCmd(&verbose)
	mountCmd := NewMountCmd(&verbose)

	listCmd.GroupID = groupArchive
	extractCmd.GroupID = groupArchive
	extractAllCmd.GroupID = groupArchive
	createCmd.GroupID = groupArchive
	repackCmd.GroupID = groupArchive
	checkCmd.GroupID = groupArchive
	mountCmd.GroupID = groupFilesystem

	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(extractCmd)
	rootCmd.AddCommand(extractAllCmd)
	rootCmd.AddCommand(createCmd)
	rootCmd.AddCommand(repackCmd)
	rootCmd.AddCommand(checkCmd)
	rootCmd.AddCommand(mountCmd)

	return rootCmd
}

// newLogger returns a debug-level stderr logger when verbose is set, a
// discarding logger otherwise.
func newLogger(verbose bool) *slog.Logger {
	if !verbose {
		return slog.New(slog.DiscardHandler)
	}

	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelDebug,
	}))
}
