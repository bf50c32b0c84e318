// SPDX-License-Identifier: MIT
// Copyright (c) 2026 mwkit
// Source: github.com/mwkit/bsa

/*
Package bsa provides read, extract, create, repack, and hash operations for
Morrowind-era BSA (Bethesda Softworks Archive) archives. It is designed for
streaming workflows: creating accepts caller-provided streams (Source.Open),
and reading/extracting works without loading full archive payload into
memory.

Format rules (summary):
  - entry names are a flat namespace with backslash separators;
  - the format treats names case-insensitively and stores them lowercased;
  - the directory carries a 64-bit name hash per entry, written on create
    and carried along on read without verification;
  - payload offsets are stored relative to the data section and resolved
    to absolute file positions during decode;
  - duplicate names are legal, the last occurrence wins lookups.

# Reading

Open an archive and list or read entries:

	a, err := bsa.Open("morrowind.bsa")
	if err != nil {
	    return err
	}
	entries, err := a.Entries()
	if err != nil {
	    return err
	}
	for _, e := range entries {
	    data, _ := a.ReadEntry(e.Name)
	    // use data
	}

An Archive holds no open file handle between calls, so there is nothing to
Close. Every payload read opens its own handle:

	rc, err := a.OpenEntry(`meshes\m\probe_journeyman_01.nif`)
	if err != nil {
	    return err
	}
	defer rc.Close()

For metadata-only scans, use fast helpers without keeping an Archive:

	entries, err := bsa.List("morrowind.bsa")
	if err != nil {
	    return err
	}
	_ = entries

Lookups are exact matches on the stored name. Convert caller paths first
when they may carry upper case or forward slashes:

	ok, err := a.Exists(bsa.NormalizeName("Meshes/M/Probe_Journeyman_01.nif"))
	if err != nil {
	    return err
	}
	_ = ok

# Extracting

Extract all entries to a directory (parallel workers):

	if err := a.Extract(ctx, "out/", bsa.ExtractOptions{MaxWorkers: 4}); err != nil {
	    return err
	}

Path sanitization is enabled by default during extraction.
Disable it explicitly when raw names are required:

	if err := a.Extract(ctx, "out/", bsa.ExtractOptions{
	    MaxWorkers: 4,
	    RawNames:   true,
	}); err != nil {
	    return err
	}

Limit extraction to explicit names or to path rules:

	err = a.Extract(ctx, "out/", bsa.ExtractOptions{
	    Names: []string{`textures\menu_thick_border_top_left_corner.dds`},
	})
	err = a.Extract(ctx, "out/", bsa.ExtractOptions{
	    Select: []pathrules.Rule{
	        {Action: pathrules.ActionInclude, Pattern: "meshes/**"},
	    },
	    SelectMatcherOptions: pathrules.MatcherOptions{
	        CaseInsensitive: true,
	        DefaultAction:   pathrules.ActionExclude,
	    },
	})

# Creating

Create from files on disk, entry names derived from the paths:

	a, err := bsa.Create("out.bsa", []string{"readme.txt", "sub/data.bin"})
	if err != nil {
	    return err
	}

Entry order follows the caller, nothing is sorted behind your back. Create
from stream-oriented sources when payloads do not live on disk:

	sources := []bsa.Source{
	    {Name: `scripts\main.txt`, Open: func() (io.ReadCloser, error) { return os.Open("src/main.txt") }, Size: 512},
	}
	a, err := bsa.CreateFromSources("out.bsa", sources, bsa.CreateOptions{
	    OnEntryDone: func(entry bsa.Entry) {
	        // progress callback per written entry
	    },
	})

To gather sources from a directory tree with path rules:

	sources, err := bsa.CollectFiles("data/", bsa.CollectOptions{
	    Rules: []pathrules.Rule{
	        {Action: pathrules.ActionExclude, Pattern: "*.bak"},
	    },
	})
	if err != nil {
	    return err
	}
	a, err = bsa.CreateFromSources("out.bsa", sources, bsa.CreateOptions{})

A freshly created Archive answers lookups and metadata queries, but its
entry offsets stay relative to the data section until the file is decoded
again. Reopen the written file before extracting from it.

# Repacking

Rewrite an archive entry by entry, optionally keeping a subset:

	a, err := bsa.RepackWithOptions("morrowind.bsa", "meshes.bsa", bsa.RepackOptions{
	    Select: []pathrules.Rule{
	        {Action: pathrules.ActionInclude, Pattern: "meshes/**"},
	    },
	    SelectMatcherOptions: pathrules.MatcherOptions{
	        CaseInsensitive: true,
	        DefaultAction:   pathrules.ActionExclude,
	    },
	})

# Hashes

NameHash implements the 64-bit name hash the original tooling stored in the
directory. Verify a foreign archive's hash table against its names:

	mismatches, err := bsa.CheckHashes("mod.bsa")
	if err != nil {
	    return err
	}
	for _, m := range mismatches {
	    // m.Stored vs m.Computed for entry m.Name
	}
*/
package bsa
