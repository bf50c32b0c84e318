// SPDX-License-Identifier: MIT
// Copyright (c) 2026 mwkit
// Source: github.com/mwkit/bsa

package bsa

import (
	"context"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"runtime"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"
)

// extractCopyBufferSize defines per-task buffer size for file copy during extraction.
const extractCopyBufferSize = 64 * 1024

// extractCopyBufferPool reuses copy buffers across extraction tasks.
var extractCopyBufferPool = sync.Pool{
	New: func() any {
		return new([extractCopyBufferSize]byte)
	},
}

// extractWorkItem stores one selected entry with prepared output relative paths.
type extractWorkItem struct {
	relPath string
	relDir  string
	entry   Entry
}

// Extract writes selected entries to dstDir. Extraction is parallelized by
// MaxWorkers; the first error cancels the remaining work.
//
// Extract requires an archive loaded by Open: a freshly created archive must
// be re-opened before its payloads can be extracted.
func (a *Archive) Extract(ctx context.Context, dstDir string, opts ExtractOptions) error {
	if a == nil || a.state != stateLoaded {
		return ErrNotOpen
	}

	opts.applyDefaults()

	entries := filterEntriesByNames(a.entries, opts.Names)
	entries, err := SelectEntries(entries, opts.Select, opts.SelectMatcherOptions)
	if err != nil {
		return err
	}

	if len(entries) == 0 {
		return nil
	}

	workItems, err := prepareExtractWorkItems(entries, opts.Flatten, opts.RawNames)
	if err != nil {
		return err
	}

	if len(workItems) == 0 {
		return nil
	}

	dstRootAbs, err := filepath.Abs(dstDir)
	if err != nil {
		return fmt.Errorf("resolve output dir: %w", err)
	}

	if err := os.MkdirAll(dstRootAbs, 0o750); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}

	if err := prepareExtractDirs(dstRootAbs, workItems); err != nil {
		return err
	}

	workers := opts.MaxWorkers
	if workers < 1 {
		workers = runtime.GOMAXPROCS(0)
	}

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for _, task := range workItems {
		g.Go(func() error {
			return a.extractPreparedEntry(ctx, dstRootAbs, task, opts)
		})
	}

	if err := g.Wait(); err != nil {
		return err
	}

	opts.Logger.Debug("archive extracted",
		"path", a.path,
		"entries", len(workItems),
		"dir", dstRootAbs)

	return nil
}

// prepareExtractWorkItems maps selected entries to relative output paths.
// Raw mode keeps normalized stored names; the default mode rewrites them to
// unique filesystem-safe paths.
func prepareExtractWorkItems(entries []Entry, flatten, rawNames bool) ([]extractWorkItem, error) {
	var rels []string
	if rawNames {
		rels = make([]string, len(entries))
		for i := range entries {
			if strings.TrimSpace(entries[i].Name) == "" {
				continue
			}

			normalized, err := normalizeExtractEntryPath(entryNameToSlash(entries[i].Name))
			if err != nil {
				return nil, fmt.Errorf("normalize entry path %s: %w", entries[i].Name, err)
			}

			if flatten {
				normalized = path.Base(normalized)
			}

			rels[i] = normalized
		}
	} else {
		sanitized, err := sanitizeEntryOutputPaths(entries, flatten)
		if err != nil {
			return nil, err
		}

		rels = sanitized
	}

	workItems := make([]extractWorkItem, 0, len(entries))
	for i := range entries {
		if rels[i] == "" {
			continue
		}

		relPath := filepath.FromSlash(rels[i])
		relDir := filepath.Dir(relPath)
		if relDir == "." {
			relDir = ""
		}

		workItems = append(workItems, extractWorkItem{
			relPath: relPath,
			relDir:  relDir,
			entry:   entries[i],
		})
	}

	return workItems, nil
}

// prepareExtractDirs creates every parent directory the work items need, once
// per directory, before the workers start racing over them.
func prepareExtractDirs(dstRootAbs string, workItems []extractWorkItem) error {
	created := make(map[string]struct{}, len(workItems))
	for _, task := range workItems {
		if task.relDir == "" {
			continue
		}

		dirPath := filepath.Join(dstRootAbs, task.relDir)
		key := strings.ToLower(dirPath)
		if _, done := created[key]; done {
			continue
		}
		created[key] = struct{}{}

		if err := os.MkdirAll(dirPath, 0o750); err != nil {
			return fmt.Errorf("create output directory %s: %w", dirPath, err)
		}
	}

	return nil
}

// extractPreparedEntry writes one prepared work item to the destination root.
func (a *Archive) extractPreparedEntry(
	ctx context.Context,
	dstRootAbs string,
	task extractWorkItem,
	opts ExtractOptions,
) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	outPath := filepath.Join(dstRootAbs, task.relPath)

	rc, err := a.openEntryPayload(task.entry)
	if err != nil {
		return err
	}
	defer func() { _ = rc.Close() }()

	file, err := openExtractFile(outPath, opts.FileMode)
	if err != nil {
		return fmt.Errorf("open %s: %w", task.entry.Name, err)
	}

	bufArr := extractCopyBufferPool.Get().(*[extractCopyBufferSize]byte) //nolint:forcetypeassert // pool contains only fixed-size buffers
	written, copyErr := copyExtractData(file, rc, bufArr[:])
	extractCopyBufferPool.Put(bufArr)

	closeErr := file.Close()
	if copyErr != nil {
		return fmt.Errorf("write %s: %w", task.entry.Name, copyErr)
	}
	if closeErr != nil {
		return fmt.Errorf("close %s: %w", task.entry.Name, closeErr)
	}

	if written != int64(task.entry.Size) {
		return fmt.Errorf("%w: entry %s expected %d, actual %d",
			ErrBytesWrittenMismatch, task.entry.Name, task.entry.Size, written)
	}

	if opts.OnEntryDone != nil {
		opts.OnEntryDone(task.entry, written, outPath)
	}

	return nil
}

// openExtractFile opens output path according to selected extract file mode.
func openExtractFile(path string, mode ExtractFileMode) (*os.File, error) {
	switch mode {
	case ExtractFileModeAuto:
		file, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o600)
		if err == nil {
			return file, nil
		}

		if !os.IsExist(err) {
			return nil, err
		}

		return os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o600)
	case ExtractFileModeTruncate:
		return os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o600)
	case ExtractFileModeCreateOnly:
		return os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o600)
	default:
		return nil, fmt.Errorf("unknown extract file mode %q", mode)
	}
}

// copyExtractData copies one entry stream to the output file through the
// caller's buffer. io.Copy would route around the buffer via the *os.File
// ReadFrom fast path.
func copyExtractData(dst *os.File, src io.Reader, buf []byte) (int64, error) {
	if len(buf) == 0 {
		return 0, io.ErrShortBuffer
	}

	var total int64
	for {
		n, readErr := src.Read(buf)
		if n > 0 {
			wn, writeErr := dst.Write(buf[:n])
			total += int64(wn)
			if writeErr != nil {
				return total, writeErr
			}
			if wn != n {
				return total, io.ErrShortWrite
			}
		}

		switch readErr {
		case nil:
		case io.EOF:
			return total, nil
		default:
			return total, readErr
		}
	}
}

// normalizeExtractEntryPath converts an entry path to clean slash-separated
// relative form. Blank paths, NUL bytes, absolute paths, drive prefixes, and
// ".." segments are rejected with ErrInvalidExtractPath. Case is preserved.
func normalizeExtractEntryPath(entryPath string) (string, error) {
	raw := strings.TrimSpace(entryPath)
	switch {
	case raw == "",
		strings.ContainsRune(raw, 0),
		strings.HasPrefix(raw, "/"),
		strings.HasPrefix(raw, `\`):
		return "", ErrInvalidExtractPath
	}

	raw = strings.ReplaceAll(raw, `\`, "/")
	if hasWindowsAbsDrivePrefix(raw) {
		return "", ErrInvalidExtractPath
	}

	var b strings.Builder
	b.Grow(len(raw))
	for part := range strings.SplitSeq(raw, "/") {
		switch part {
		case "", ".":
			continue
		case "..":
			return "", ErrInvalidExtractPath
		}

		if b.Len() > 0 {
			b.WriteByte('/')
		}
		b.WriteString(part)
	}
	if b.Len() == 0 {
		return "", ErrInvalidExtractPath
	}

	return b.String(), nil
}

// hasWindowsAbsDrivePrefix reports whether path starts with a drive-root prefix like C:/.
func hasWindowsAbsDrivePrefix(path string) bool {
	if len(path) < 3 || path[1] != ':' || path[2] != '/' {
		return false
	}

	drive := path[0] | 0x20
	return drive >= 'a' && drive <= 'z'
}
