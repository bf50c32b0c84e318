// SPDX-License-Identifier: MIT
// Copyright (c) 2026 mwkit
// Source: github.com/mwkit/bsa

package cmd

import (
	"fmt"
	"os"
	"os/signal"

	"bazil.org/fuse"
	"bazil.org/fuse/fs"
	_ "bazil.org/fuse/fs/fstestutil"
	"github.com/spf13/cobra"

	"github.com/mwkit/bsa"
	"github.com/mwkit/bsa/internal/bsafs"
	"github.com/mwkit/bsa/version"
)

// NewMountCmd creates the mount subcommand. It exposes an archive as a
// read-only FUSE filesystem until interrupted.
func NewMountCmd(verbose *bool) *cobra.Command {
	return &cobra.Command{
		Use:   "mount ARCHIVE MOUNTPOINT",
		Short: "Mount an archive as a read-only FUSE filesystem",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			archivePath := args[0]
			mountpoint := args[1]

			a, err := bsa.OpenWithOptions(archivePath, bsa.OpenOptions{
				Logger: newLogger(*verbose),
			})
			if err != nil {
				return err
			}

			filesystem, err := bsafs.New(a)
			if err != nil {
				return err
			}

			c, err := fuse.Mount(
				mountpoint,
				fuse.FSName("bsatool"),
				fuse.Subtype("bsafs"),
				fuse.ReadOnly(),
			)
			if err != nil {
				return err
			}
			defer func() { _ = c.Close() }()

			sigChan := make(chan os.Signal, 1)
			signal.Notify(sigChan, os.Interrupt)
			go func() {
				<-sigChan
				fmt.Fprintln(cmd.OutOrStdout(), "Received interrupt signal, unmounting...")

				_ = fuse.Unmount(mountpoint)
				_ = c.Close()

				os.Exit(0)
			}()

			fmt.Fprintf(cmd.OutOrStdout(), "bsatool %s mounted %s at %s\n",
				version.GetVersion(), archivePath, mountpoint)

			return fs.Serve(c, filesystem)
		},
	}
}
