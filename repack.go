// SPDX-License-Identifier: MIT
// Copyright (c) 2026 mwkit
// Source: github.com/mwkit/bsa

package bsa

import "io"

// Repack rewrites the archive at srcPath into a new archive at dstPath and
// returns the written result. The payload of every entry is streamed straight
// from the source archive, so repacking never loads whole archives into
// memory. Entry order and duplicate names are preserved.
func Repack(srcPath, dstPath string) (*Archive, error) {
	return RepackWithOptions(srcPath, dstPath, RepackOptions{})
}

// RepackWithOptions rewrites srcPath into dstPath keeping only the entries
// accepted by the selection rules. With no rules every entry survives, which
// makes a plain repack a normalizer for archives produced by other tools:
// directory sizes are recomputed and the hash table is rebuilt from the
// stored names.
func RepackWithOptions(srcPath, dstPath string, opts RepackOptions) (*Archive, error) {
	opts.applyDefaults()

	src, err := OpenWithOptions(srcPath, OpenOptions{Logger: opts.Logger})
	if err != nil {
		return nil, err
	}

	entries, err := src.Entries()
	if err != nil {
		return nil, err
	}

	selected, err := SelectEntries(entries, opts.Select, opts.SelectMatcherOptions)
	if err != nil {
		return nil, err
	}

	sources := make([]Source, 0, len(selected))
	for _, entry := range selected {
		sources = append(sources, Source{
			Name: entry.Name,
			Size: int64(entry.Size),
			Open: func() (io.ReadCloser, error) {
				return src.openEntryPayload(entry)
			},
		})
	}

	dst, err := CreateFromSources(dstPath, sources, CreateOptions{
		Logger:           opts.Logger,
		OnEntryDone:      opts.OnEntryDone,
		WriterBufferSize: opts.WriterBufferSize,
	})
	if err != nil {
		return nil, err
	}

	opts.Logger.Debug("archive repacked",
		"src", srcPath,
		"dst", dstPath,
		"entries", len(sources))

	return dst, nil
}
