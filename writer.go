// SPDX-License-Identifier: MIT
// Copyright (c) 2026 mwkit
// Source: github.com/mwkit/bsa

package bsa

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"
	"math"
	"os"
	"sync"
)

const (
	// createCopyBufferSize is per-call temporary buffer used by streaming payload copy.
	createCopyBufferSize = 64 * 1024
)

var (
	// defaultCreateWriterPool reuses default-sized bufio writers between Create calls.
	defaultCreateWriterPool = sync.Pool{
		New: func() any {
			return bufio.NewWriterSize(io.Discard, DefaultWriteBuffer)
		},
	}
	// defaultCreateCopyBufferPool reuses payload copy buffers between Create calls.
	defaultCreateCopyBufferPool = sync.Pool{
		New: func() any {
			return new([createCopyBufferSize]byte)
		},
	}
)

// createPlan is the fully resolved directory layout computed before any byte
// is written.
type createPlan struct {
	// entries holds normalized names, payload sizes, and relative offsets.
	entries []Entry
	// sources holds the payload sources aligned with entries.
	sources []Source
	// dirSize is the directory byte count for the header.
	dirSize uint32
	// total is the payload section byte count.
	total uint64
}

// Create writes a new archive at path from the given source files and returns
// the written Archive. Entry names are the normalized source paths.
func Create(path string, files []string) (*Archive, error) {
	return CreateWithOptions(path, files, CreateOptions{})
}

// CreateWithOptions writes a new archive at path from the given source files
// using explicit options and returns the written Archive.
func CreateWithOptions(path string, files []string, opts CreateOptions) (*Archive, error) {
	a := &Archive{}
	if err := a.CreateWithOptions(path, files, opts); err != nil {
		return nil, err
	}

	return a, nil
}

// CreateFromSources writes a new archive at path from explicit sources and
// returns the written Archive.
func CreateFromSources(path string, sources []Source, opts CreateOptions) (*Archive, error) {
	a := &Archive{}
	if err := a.CreateFromSources(path, sources, opts); err != nil {
		return nil, err
	}

	return a, nil
}

// Create writes a new archive at path from the given source files.
// Entry names are the normalized source paths, so relative inputs produce
// relative archive names.
func (a *Archive) Create(path string, files []string) error {
	return a.CreateWithOptions(path, files, CreateOptions{})
}

// CreateWithOptions writes a new archive at path from the given source files
// using explicit options.
func (a *Archive) CreateWithOptions(path string, files []string, opts CreateOptions) error {
	sources := make([]Source, 0, len(files))
	for _, file := range files {
		sources = append(sources, Source{Name: file, Path: file})
	}

	return a.CreateFromSources(path, sources, opts)
}

// CreateFromSources writes a new archive at path from explicit sources.
//
// Sources are packed in the order given; an empty source list produces a
// valid header-only archive. An Archive instance accepts exactly one
// successful Open or Create, any further attempt fails with ErrAlreadyOpen.
// A failed encode returns the error and leaves the instance empty; partial
// output files are not removed.
func (a *Archive) CreateFromSources(path string, sources []Source, opts CreateOptions) error {
	if a.state != stateEmpty {
		return ErrAlreadyOpen
	}

	opts.applyDefaults()

	plan, err := planCreate(sources)
	if err != nil {
		return err
	}

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o644)
	if err != nil {
		return fmt.Errorf("create archive: %w", err)
	}
	defer func() {
		if f != nil {
			_ = f.Close()
		}
	}()

	w, releaseWriter := acquireCreateWriter(f, opts.WriterBufferSize)
	defer releaseWriter()

	if err := writeDirectory(w, plan); err != nil {
		return err
	}

	copyBuf, releaseCopyBuffer := acquireCreateCopyBuffer()
	defer releaseCopyBuffer()

	for i := range plan.sources {
		if err := writeSourcePayload(w, plan.sources[i], plan.entries[i], copyBuf); err != nil {
			return err
		}

		if opts.OnEntryDone != nil {
			opts.OnEntryDone(plan.entries[i])
		}
	}

	if err := w.Flush(); err != nil {
		return fmt.Errorf("flush archive: %w", err)
	}

	if err := f.Sync(); err != nil {
		return fmt.Errorf("sync archive: %w", err)
	}

	if err := f.Close(); err != nil {
		return fmt.Errorf("close archive: %w", err)
	}
	f = nil

	a.path = path
	a.dirSize = plan.dirSize
	a.size = int64(headerSize) + int64(plan.dirSize) +
		int64(len(plan.entries))*hashRecordSize + int64(plan.total) //nolint:gosec // all bounded by planCreate
	a.entries = plan.entries
	a.lookup = make(map[string]int, len(plan.entries))
	for i := range plan.entries {
		a.lookup[plan.entries[i].Name] = i
	}
	a.state = stateWritten

	opts.Logger.Debug("archive created",
		"path", path,
		"entries", len(plan.entries),
		"dir_size", plan.dirSize,
		"size", a.size)

	return nil
}

// planCreate normalizes names, resolves payload sizes, and lays out relative
// offsets and the directory byte count.
func planCreate(sources []Source) (*createPlan, error) {
	plan := &createPlan{
		entries: make([]Entry, 0, len(sources)),
		sources: make([]Source, 0, len(sources)),
	}

	var nameBytes, total uint64
	for _, src := range sources {
		name, err := normalizeCreateEntryName(src.Name)
		if err != nil {
			return nil, err
		}

		size, err := resolveSourceSize(src)
		if err != nil {
			return nil, err
		}

		if size > math.MaxUint32-total {
			return nil, fmt.Errorf("%w: payload section exceeds 4 GiB at %s", ErrSizeOverflow, name)
		}

		plan.entries = append(plan.entries, Entry{
			Name:   name,
			Size:   uint32(size), //nolint:gosec // bounded by resolveSourceSize
			Offset: uint32(total),
		})

		src.Name = name
		plan.sources = append(plan.sources, src)

		nameBytes += uint64(len(name)) + 1
		total += size
	}

	dirSize := uint64(len(plan.entries))*(entryRecordSize+nameOffsetSize) + nameBytes
	if dirSize > math.MaxUint32 {
		return nil, fmt.Errorf("%w: directory size %d", ErrSizeOverflow, dirSize)
	}

	plan.dirSize = uint32(dirSize)
	plan.total = total

	return plan, nil
}

// resolveSourceSize determines one payload size up front: the whole directory
// precedes the payload section on disk, so sizes must be known before the
// first byte is written.
func resolveSourceSize(src Source) (uint64, error) {
	if src.Open != nil {
		if src.Size < 0 || src.Size > math.MaxUint32 {
			return 0, fmt.Errorf("%w: source %s size %d", ErrSizeOverflow, src.Name, src.Size)
		}

		return uint64(src.Size), nil
	}

	fi, err := os.Stat(src.Path)
	if err != nil {
		return 0, fmt.Errorf("stat source: %w", err)
	}

	if fi.Size() > math.MaxUint32 {
		return 0, fmt.Errorf("%w: source %s size %d", ErrSizeOverflow, src.Path, fi.Size())
	}

	return uint64(fi.Size()), nil
}

// writeDirectory writes header, size/offset pairs, name-offset words, the
// name table, and the hash table, verifying byte accounting at every section
// boundary.
func writeDirectory(w *bufio.Writer, plan *createPlan) error {
	sw := &sectionWriter{w: w}
	fileNum := uint64(len(plan.entries))

	if err := sw.writeUint32(magic); err != nil {
		return fmt.Errorf("write magic: %w", err)
	}
	if err := sw.writeUint32(plan.dirSize); err != nil {
		return fmt.Errorf("write directory size: %w", err)
	}
	if err := sw.writeUint32(uint32(fileNum)); err != nil { //nolint:gosec // bounded by dirSize check in planCreate
		return fmt.Errorf("write file count: %w", err)
	}
	if err := sw.checkpoint(headerSize); err != nil {
		return err
	}

	for _, entry := range plan.entries {
		if err := sw.writeUint32(entry.Size); err != nil {
			return fmt.Errorf("write entry size: %w", err)
		}
		if err := sw.writeUint32(entry.Offset); err != nil {
			return fmt.Errorf("write entry offset: %w", err)
		}
	}

	var nameOffset uint32
	for _, entry := range plan.entries {
		if err := sw.writeUint32(nameOffset); err != nil {
			return fmt.Errorf("write name offset: %w", err)
		}

		nameOffset += uint32(len(entry.Name)) + 1 //nolint:gosec // bounded by dirSize check in planCreate
	}
	if err := sw.checkpoint(headerSize + fileNum*(entryRecordSize+nameOffsetSize)); err != nil {
		return err
	}

	for _, entry := range plan.entries {
		if err := sw.writeString(entry.Name); err != nil {
			return fmt.Errorf("write entry name: %w", err)
		}
		if err := sw.writeByte(0); err != nil {
			return fmt.Errorf("write entry name terminator: %w", err)
		}
	}
	if err := sw.checkpoint(headerSize + uint64(plan.dirSize)); err != nil {
		return err
	}

	for _, entry := range plan.entries {
		if err := sw.writeUint64(entryNameHash(entry.Name)); err != nil {
			return fmt.Errorf("write entry hash: %w", err)
		}
	}

	return sw.checkpoint(headerSize + uint64(plan.dirSize) + fileNum*hashRecordSize)
}

// writeSourcePayload streams one payload and re-verifies its planned size.
func writeSourcePayload(dst io.Writer, src Source, entry Entry, copyBuf []byte) error {
	rc, err := openSource(src)
	if err != nil {
		return err
	}

	copyErr := copyPayloadExact(dst, rc, int64(entry.Size), copyBuf)
	closeErr := rc.Close()
	if copyErr != nil {
		return fmt.Errorf("write payload %s: %w", entry.Name, copyErr)
	}
	if closeErr != nil {
		return fmt.Errorf("close source %s: %w", entry.Name, closeErr)
	}

	return nil
}

// openSource opens the payload stream for one planned source.
func openSource(src Source) (io.ReadCloser, error) {
	if src.Open != nil {
		rc, err := src.Open()
		if err != nil {
			return nil, fmt.Errorf("open source %s: %w", src.Name, err)
		}

		return rc, nil
	}

	f, err := os.Open(src.Path)
	if err != nil {
		return nil, fmt.Errorf("open source %s: %w", src.Path, err)
	}

	return f, nil
}

// copyPayloadExact streams exactly want bytes from src to dst. A shorter or
// longer source fails with ErrBytesWrittenMismatch: source files must not
// change size between planning and payload write.
func copyPayloadExact(dst io.Writer, src io.Reader, want int64, buf []byte) error {
	if len(buf) == 0 {
		buf = make([]byte, 32*1024)
	}

	var written int64
	stalled := 0
	for written < want {
		limit := int64(len(buf))
		if left := want - written; left < limit {
			limit = left
		}

		n, readErr := src.Read(buf[:limit])
		if n > 0 {
			stalled = 0
			nw, writeErr := dst.Write(buf[:n])
			written += int64(nw)
			if writeErr != nil {
				return writeErr
			}
			if nw != n {
				return io.ErrShortWrite
			}
		} else if readErr == nil {
			stalled++
			if stalled > 100 {
				return io.ErrNoProgress
			}

			continue
		}

		if readErr == io.EOF {
			break
		}
		if readErr != nil {
			return readErr
		}
	}

	if written != want {
		return fmt.Errorf("%w: expected %d, actual %d", ErrBytesWrittenMismatch, want, written)
	}

	// Probe one extra byte so a source that grew since planning is caught.
	var probe [1]byte
	n, err := src.Read(probe[:])
	if n > 0 {
		return fmt.Errorf("%w: expected %d, source is longer", ErrBytesWrittenMismatch, want)
	}
	if err != nil && err != io.EOF {
		return err
	}

	return nil
}

// acquireCreateWriter returns a buffered writer and release callback for Create.
func acquireCreateWriter(out io.Writer, size int) (*bufio.Writer, func()) {
	if size == DefaultWriteBuffer {
		w := defaultCreateWriterPool.Get().(*bufio.Writer) //nolint:forcetypeassert // pool contains only *bufio.Writer
		w.Reset(out)

		return w, func() {
			w.Reset(io.Discard)
			defaultCreateWriterPool.Put(w)
		}
	}

	return bufio.NewWriterSize(out, size), func() {}
}

// acquireCreateCopyBuffer returns reusable payload copy buffer and release callback.
func acquireCreateCopyBuffer() ([]byte, func()) {
	arr := defaultCreateCopyBufferPool.Get().(*[createCopyBufferSize]byte) //nolint:forcetypeassert // pool contains only fixed-size buffers
	buf := arr[:]

	return buf, func() {
		defaultCreateCopyBufferPool.Put(arr)
	}
}

// sectionWriter counts bytes written through the directory sections so byte
// accounting can be verified at each section boundary.
type sectionWriter struct {
	w       *bufio.Writer
	written uint64
}

func (sw *sectionWriter) writeBytes(p []byte) error {
	n, err := sw.w.Write(p)
	sw.written += uint64(n) //nolint:gosec // n is never negative
	return err
}

func (sw *sectionWriter) writeString(s string) error {
	n, err := sw.w.WriteString(s)
	sw.written += uint64(n) //nolint:gosec // n is never negative
	return err
}

func (sw *sectionWriter) writeByte(b byte) error {
	if err := sw.w.WriteByte(b); err != nil {
		return err
	}

	sw.written++
	return nil
}

func (sw *sectionWriter) writeUint32(v uint32) error {
	var buf [4]byte
	binary.LittleEndian.PutUint32(buf[:], v)
	return sw.writeBytes(buf[:])
}

func (sw *sectionWriter) writeUint64(v uint64) error {
	var buf [8]byte
	binary.LittleEndian.PutUint64(buf[:], v)
	return sw.writeBytes(buf[:])
}

// checkpoint verifies the running byte count at a section boundary.
func (sw *sectionWriter) checkpoint(expected uint64) error {
	if sw.written != expected {
		return fmt.Errorf("%w: expected %d, actual %d", ErrBytesWrittenMismatch, expected, sw.written)
	}

	return nil
}
