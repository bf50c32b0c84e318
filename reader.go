// SPDX-License-Identifier: MIT
// Copyright (c) 2026 mwkit
// Source: github.com/mwkit/bsa

package bsa

import (
	"encoding/binary"
	"fmt"
	"io"
	"math"
	"os"
	"strings"
)

// Archive is a loaded BSA container.
//
// An Archive starts empty, transitions to loaded by exactly one successful
// Open or Create, and is immutable afterwards. A loaded Archive is safe for
// concurrent queries: payload reads open their own file handles and share no
// cursor state.
type Archive struct {
	// path is the backing archive file used by payload reads.
	path string
	// size is total archive size in bytes at decode time.
	size int64
	// dirSize is the declared directory byte count from the header.
	dirSize uint32
	// entries holds entry metadata in directory order.
	entries []Entry
	// lookup maps stored names to directory indexes; later duplicates win.
	lookup map[string]int
	// state tracks the empty/loaded/written lifecycle.
	state archiveState
}

// directory is the parsed result of one decode pass.
type directory struct {
	// dirSize is the declared directory byte count from the header.
	dirSize uint32
	// entries holds entry metadata in directory order.
	entries []Entry
	// lookup maps stored names to directory indexes; later duplicates win.
	lookup map[string]int
}

// Open opens and decodes the archive directory at path into a fresh Archive.
func Open(path string) (*Archive, error) {
	return OpenWithOptions(path, OpenOptions{})
}

// OpenWithOptions opens and decodes the archive directory at path into a
// fresh Archive using explicit options.
func OpenWithOptions(path string, opts OpenOptions) (*Archive, error) {
	a := &Archive{}
	if err := a.OpenWithOptions(path, opts); err != nil {
		return nil, err
	}

	return a, nil
}

// Open decodes the archive directory at path into this instance.
//
// An Archive instance accepts exactly one successful Open or Create; any
// further attempt fails with ErrAlreadyOpen. A failed decode returns the
// error and leaves the instance empty.
func (a *Archive) Open(path string) error {
	return a.OpenWithOptions(path, OpenOptions{})
}

// OpenWithOptions decodes the archive directory at path into this instance
// using explicit options.
func (a *Archive) OpenWithOptions(path string, opts OpenOptions) error {
	if a.state != stateEmpty {
		return ErrAlreadyOpen
	}

	opts.applyDefaults()

	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open archive: %w", err)
	}
	defer func() { _ = f.Close() }()

	fi, err := f.Stat()
	if err != nil {
		return fmt.Errorf("stat archive: %w", err)
	}

	dir, err := parseDirectory(f, fi.Size())
	if err != nil {
		return err
	}

	if opts.EntryPathPrefix != "" {
		dir.entries = filterEntriesByPrefix(dir.entries, opts.EntryPathPrefix)
		dir.lookup = make(map[string]int, len(dir.entries))
		for i := range dir.entries {
			dir.lookup[dir.entries[i].Name] = i
		}
	}

	a.path = path
	a.size = fi.Size()
	a.dirSize = dir.dirSize
	a.entries = dir.entries
	a.lookup = dir.lookup
	a.state = stateLoaded

	opts.Logger.Debug("archive decoded",
		"path", path,
		"entries", len(dir.entries),
		"dir_size", dir.dirSize,
		"size", fi.Size())

	return nil
}

// Path returns the backing archive file path.
func (a *Archive) Path() string {
	if a == nil {
		return ""
	}

	return a.path
}

// Size returns the total archive size in bytes, zero while empty.
func (a *Archive) Size() int64 {
	if a == nil {
		return 0
	}

	return a.size
}

// parseDirectory reads and validates the archive directory with sequential
// reads, leaving the file positioned at the start of the hash table.
func parseDirectory(f *os.File, fsize int64) (*directory, error) {
	if fsize < headerSize {
		return nil, fmt.Errorf("%w: %d bytes", ErrFileTooSmall, fsize)
	}

	var head [headerSize]byte
	if _, err := io.ReadFull(f, head[:]); err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}

	if binary.LittleEndian.Uint32(head[0:4]) != magic {
		return nil, ErrBadHeader
	}

	dirSize := binary.LittleEndian.Uint32(head[4:8])
	fileNum := binary.LittleEndian.Uint32(head[8:12])

	// Every entry occupies at least minEntryBytes past the header, so either
	// bound exceeding the remainder guarantees a corrupt directory.
	rest := uint64(fsize) - headerSize
	if uint64(fileNum)*minEntryBytes > rest || uint64(dirSize)+uint64(fileNum)*entryRecordSize > rest {
		return nil, ErrDirectorySizeInvalid
	}

	// The directory holds fileNum size/offset pairs followed by fileNum
	// name-offset words. The words are consumed for positioning only: names
	// are recovered by null-splitting the name table instead.
	tableBytes := uint64(fileNum) * (entryRecordSize + nameOffsetSize)
	if uint64(dirSize) < tableBytes {
		return nil, ErrDirectorySizeInvalid
	}

	words := make([]byte, tableBytes)
	if _, err := io.ReadFull(f, words); err != nil {
		return nil, fmt.Errorf("read directory: %w", err)
	}

	nameBlock := make([]byte, uint64(dirSize)-tableBytes)
	if _, err := io.ReadFull(f, nameBlock); err != nil {
		return nil, fmt.Errorf("read name table: %w", err)
	}

	names := strings.Split(string(nameBlock), "\x00")
	if uint64(len(names)) < uint64(fileNum) {
		return nil, ErrDirectorySizeInvalid
	}

	pos, err := f.Seek(0, io.SeekCurrent)
	if err != nil {
		return nil, fmt.Errorf("seek: %w", err)
	}

	if expected := int64(headerSize) + int64(dirSize); pos != expected {
		return nil, fmt.Errorf("%w: expected %d, actual %d", ErrPositionMismatch, expected, pos)
	}

	// Payload offsets are stored relative to the byte past the hash table.
	dataStart := uint64(headerSize) + uint64(dirSize) + uint64(fileNum)*hashRecordSize

	dir := &directory{
		dirSize: dirSize,
		entries: make([]Entry, 0, fileNum),
		lookup:  make(map[string]int, fileNum),
	}

	for i := uint64(0); i < uint64(fileNum); i++ {
		size := binary.LittleEndian.Uint32(words[i*entryRecordSize:])
		rel := binary.LittleEndian.Uint32(words[i*entryRecordSize+4:])

		abs := dataStart + uint64(rel)
		if abs+uint64(size) > uint64(fsize) || abs > math.MaxUint32 {
			return nil, ErrOffsetOutsideArchive
		}

		name := names[i]
		dir.lookup[name] = len(dir.entries)
		dir.entries = append(dir.entries, Entry{
			Name:   name,
			Size:   size,
			Offset: uint32(abs), //nolint:gosec // bounded by the range check above
		})
	}

	return dir, nil
}
