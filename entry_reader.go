// SPDX-License-Identifier: MIT
// Copyright (c) 2026 mwkit
// Source: github.com/mwkit/bsa

package bsa

import (
	"fmt"
	"io"
	"os"
)

// entryReader streams one payload from its own file handle.
type entryReader struct {
	*io.SectionReader
	f *os.File
}

// Close closes the handle backing this payload stream.
func (er *entryReader) Close() error {
	return er.f.Close()
}

// Exists reports whether name is present in the directory lookup.
// It fails with ErrNotOpen on an empty Archive rather than reporting false.
func (a *Archive) Exists(name string) (bool, error) {
	if a == nil || a.state == stateEmpty {
		return false, ErrNotOpen
	}

	_, ok := a.lookup[name]
	return ok, nil
}

// Entry returns metadata of the named entry.
// Lookup is a case-sensitive exact match on the stored name; convert inputs
// with NormalizeName first when they may carry "/" separators or upper case.
func (a *Archive) Entry(name string) (Entry, error) {
	if a == nil || a.state == stateEmpty {
		return Entry{}, ErrNotOpen
	}

	idx, ok := a.lookup[name]
	if !ok {
		return Entry{}, fmt.Errorf("%w: %s", ErrEntryNotFound, name)
	}

	return a.entries[idx], nil
}

// Entries returns a copy of the directory in directory order.
func (a *Archive) Entries() ([]Entry, error) {
	if a == nil || a.state == stateEmpty {
		return nil, ErrNotOpen
	}

	entries := make([]Entry, len(a.entries))
	copy(entries, a.entries)
	return entries, nil
}

// ReadEntry reads the full payload of the named entry.
// Short reads propagate as errors, payloads are never silently truncated.
func (a *Archive) ReadEntry(name string) ([]byte, error) {
	entry, err := a.Entry(name)
	if err != nil {
		return nil, err
	}

	rc, err := a.openEntryPayload(entry)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rc.Close() }()

	buf := make([]byte, entry.Size)
	if _, err := io.ReadFull(rc, buf); err != nil {
		return nil, fmt.Errorf("read entry %s: %w", name, err)
	}

	return buf, nil
}

// OpenEntry opens the named entry payload for streaming reads.
// Every call opens its own handle on the backing file, so streams from one
// Archive are independent and safe to use concurrently. The caller must
// close the returned stream.
func (a *Archive) OpenEntry(name string) (io.ReadCloser, error) {
	entry, err := a.Entry(name)
	if err != nil {
		return nil, err
	}

	return a.openEntryPayload(entry)
}

// openEntryPayload opens one payload stream for resolved entry metadata.
func (a *Archive) openEntryPayload(entry Entry) (*entryReader, error) {
	f, err := os.Open(a.path)
	if err != nil {
		return nil, fmt.Errorf("open archive: %w", err)
	}

	return &entryReader{
		SectionReader: io.NewSectionReader(f, int64(entry.Offset), int64(entry.Size)),
		f:             f,
	}, nil
}
