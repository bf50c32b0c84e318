// SPDX-License-Identifier: MIT
// Copyright (c) 2026 mwkit
// Source: github.com/mwkit/bsa

package bsa

import (
	"encoding/binary"
	"fmt"
	"os"
)

// CheckHashes re-reads the trailing hash table and verifies every slot
// against the hash of its stored name. Decode never consults the hash table,
// so this is the explicit integrity pass for tooling that wants one.
//
// It returns one HashMismatch per disagreeing slot in directory order; an
// empty result means the table is consistent. The pass re-parses the full
// stored directory, so an Archive opened with EntryPathPrefix still checks
// every slot, not just the visible entries.
func (a *Archive) CheckHashes() ([]HashMismatch, error) {
	if a == nil || a.state == stateEmpty {
		return nil, ErrNotOpen
	}

	f, err := os.Open(a.path)
	if err != nil {
		return nil, fmt.Errorf("open archive: %w", err)
	}
	defer func() { _ = f.Close() }()

	fi, err := f.Stat()
	if err != nil {
		return nil, fmt.Errorf("stat archive: %w", err)
	}

	dir, err := parseDirectory(f, fi.Size())
	if err != nil {
		return nil, err
	}

	table := make([]byte, len(dir.entries)*hashRecordSize)
	tableOffset := int64(headerSize) + int64(dir.dirSize)
	if len(table) > 0 {
		if _, err := f.ReadAt(table, tableOffset); err != nil {
			return nil, fmt.Errorf("read hash table: %w", err)
		}
	}

	var mismatches []HashMismatch
	for i := range dir.entries {
		stored := binary.LittleEndian.Uint64(table[i*hashRecordSize:])
		computed := entryNameHash(dir.entries[i].Name)
		if stored == computed {
			continue
		}

		mismatches = append(mismatches, HashMismatch{
			Name:     dir.entries[i].Name,
			Index:    i,
			Stored:   stored,
			Computed: computed,
		})
	}

	return mismatches, nil
}

// CheckHashes opens the archive at path and verifies its hash table.
func CheckHashes(path string) ([]HashMismatch, error) {
	a, err := Open(path)
	if err != nil {
		return nil, err
	}

	return a.CheckHashes()
}
