// SPDX-License-Identifier: MIT
// Copyright (c) 2026 mwkit
// Source: github.com/mwkit/bsa

package bsa

import (
	"io"
	"log/slog"

	"github.com/woozymasta/pathrules"
)

// Internal binary layout and format limits.
const (
	// headerSize is the fixed BSA header: magic, dirsize, filenum.
	headerSize = 12
	// entryRecordSize is one size/offset word pair in the directory.
	entryRecordSize = 8
	// nameOffsetSize is one filename-offset word in the directory.
	nameOffsetSize = 4
	// hashRecordSize is one 64-bit slot in the trailing hash table.
	hashRecordSize = 8
	// minEntryBytes is the conservative per-entry on-disk floor used by the
	// decode corruption guard: size/offset pair, name-offset word, hash slot,
	// and a one-byte null-terminated name.
	minEntryBytes = 21
)

// magic is the version field of every supported archive.
// On disk the four bytes are 0x00 0x01 0x00 0x00, little-endian.
const magic uint32 = 0x00000100

// Default tuning values.
const (
	// DefaultWriteBuffer is the buffered writer size used by Create.
	DefaultWriteBuffer = 4 * 1024 * 1024
)

// Entry describes one archived file.
type Entry struct {
	// Name is the stored entry name: lower-case, backslash-separated.
	Name string `json:"name" yaml:"name"`
	// Size is the declared payload length in bytes.
	Size uint32 `json:"size" yaml:"size"`
	// Offset is the payload position. After Open it is absolute from the
	// start of the archive file. After Create it stays relative to the data
	// section until the written archive is decoded again.
	Offset uint32 `json:"offset" yaml:"offset"`
}

// Source describes one payload for Create.
type Source struct {
	// Name is the archive entry name; normalized during Create.
	Name string `json:"name" yaml:"name"`
	// Path is the source file on disk, used when Open is nil.
	Path string `json:"path,omitempty" yaml:"path,omitempty"`
	// Open overrides Path with a custom payload stream factory.
	Open func() (io.ReadCloser, error) `json:"-" yaml:"-"`
	// Size is the payload length in bytes, required when Open is set;
	// otherwise it is taken from a stat of Path.
	Size int64 `json:"size,omitempty" yaml:"size,omitempty"`
}

// archiveState tracks the single-shot lifecycle of one Archive instance.
type archiveState uint8

const (
	// stateEmpty is the initial state; queries fail with ErrNotOpen.
	stateEmpty archiveState = iota
	// stateLoaded marks an archive populated by a successful decode.
	stateLoaded
	// stateWritten marks an archive populated by a successful encode.
	stateWritten
)

// OpenOptions configures archive decode behavior.
type OpenOptions struct {
	// Logger receives debug diagnostics; nil discards them.
	Logger *slog.Logger `json:"-" yaml:"-"`
	// EntryPathPrefix keeps only entries under this archive path, or the
	// exact entry when it names a file. Separators and case are normalized
	// before matching; empty keeps the whole directory.
	EntryPathPrefix string `json:"entry_path_prefix,omitempty" yaml:"entry_path_prefix,omitempty"`
}

// CreateOptions configures archive encode behavior.
type CreateOptions struct {
	// Logger receives debug diagnostics; nil discards them.
	Logger *slog.Logger `json:"-" yaml:"-"`
	// OnEntryDone is called after one entry payload is fully written.
	OnEntryDone func(entry Entry) `json:"-" yaml:"-"`
	// WriterBufferSize is buffered writer size in bytes.
	WriterBufferSize int `json:"writer_buffer_size,omitempty" yaml:"writer_buffer_size,omitempty"`
}

// ExtractOptions configures Extract behavior.
type ExtractOptions struct {
	// OnEntryDone is called after one entry is fully written to disk.
	OnEntryDone func(entry Entry, written int64, outputPath string) `json:"-" yaml:"-"`
	// Logger receives debug diagnostics; nil discards them.
	Logger *slog.Logger `json:"-" yaml:"-"`
	// Names limits extraction to the given archive names; nil means all
	// entries. Names are normalized before lookup.
	Names []string `json:"names,omitempty" yaml:"names,omitempty"`
	// Select defines ordered path rules for entry selection.
	Select []pathrules.Rule `json:"select,omitempty" yaml:"select,omitempty"`
	// SelectMatcherOptions control selection rule matching.
	SelectMatcherOptions pathrules.MatcherOptions `json:"select_matcher_options,omitzero" yaml:"select_matcher_options,omitzero"`
	// FileMode controls output file creation policy.
	FileMode ExtractFileMode `json:"file_mode,omitempty" yaml:"file_mode,omitempty"`
	// MaxWorkers is number of extraction workers (zero means GOMAXPROCS).
	MaxWorkers int `json:"max_workers,omitempty" yaml:"max_workers,omitempty"`
	// Flatten drops entry directories and writes bare file names.
	Flatten bool `json:"flatten,omitempty" yaml:"flatten,omitempty"`
	// RawNames disables default path sanitization during extract.
	// When false (default), extract rewrites names to filesystem-safe output paths.
	RawNames bool `json:"raw_names,omitempty" yaml:"raw_names,omitempty"`
}

// ExtractFileMode controls output file open behavior during extraction.
type ExtractFileMode string

// Output file creation policies for extraction.
const (
	// ExtractFileModeAuto first tries create-only, then falls back to truncate for existing files.
	ExtractFileModeAuto ExtractFileMode = "auto"
	// ExtractFileModeTruncate opens existing files with truncate and creates missing files.
	ExtractFileModeTruncate ExtractFileMode = "truncate"
	// ExtractFileModeCreateOnly creates files only when absent and fails on existing files.
	ExtractFileModeCreateOnly ExtractFileMode = "create_only"
)

// RepackOptions configures archive-to-archive rewrite.
type RepackOptions struct {
	// Logger receives debug diagnostics; nil discards them.
	Logger *slog.Logger `json:"-" yaml:"-"`
	// OnEntryDone is called after one entry payload is rewritten.
	OnEntryDone func(entry Entry) `json:"-" yaml:"-"`
	// Select defines ordered path rules choosing which entries survive.
	Select []pathrules.Rule `json:"select,omitempty" yaml:"select,omitempty"`
	// SelectMatcherOptions control selection rule matching.
	SelectMatcherOptions pathrules.MatcherOptions `json:"select_matcher_options,omitzero" yaml:"select_matcher_options,omitzero"`
	// WriterBufferSize is buffered writer size in bytes.
	WriterBufferSize int `json:"writer_buffer_size,omitempty" yaml:"writer_buffer_size,omitempty"`
}

// CollectOptions configures directory-to-input collection for Create.
type CollectOptions struct {
	// Rules defines ordered include/exclude rules matched against
	// slash-separated paths relative to the collection root.
	Rules []pathrules.Rule `json:"rules,omitempty" yaml:"rules,omitempty"`
	// MatcherOptions control rule matching.
	MatcherOptions pathrules.MatcherOptions `json:"matcher_options,omitzero" yaml:"matcher_options,omitzero"`
}

// HashMismatch reports one hash table slot that disagrees with its stored name.
type HashMismatch struct {
	// Name is the stored entry name.
	Name string `json:"name" yaml:"name"`
	// Index is the entry position in directory order.
	Index int `json:"index" yaml:"index"`
	// Stored is the 64-bit hash recorded in the archive.
	Stored uint64 `json:"stored" yaml:"stored"`
	// Computed is NameHash of the stored null-terminated name.
	Computed uint64 `json:"computed" yaml:"computed"`
}

// applyDefaults fills zero-valued open options with defaults.
func (opts *OpenOptions) applyDefaults() {
	if opts.Logger == nil {
		opts.Logger = slog.New(slog.DiscardHandler)
	}
}

// applyDefaults fills zero-valued create options with defaults.
func (opts *CreateOptions) applyDefaults() {
	if opts.Logger == nil {
		opts.Logger = slog.New(slog.DiscardHandler)
	}

	if opts.WriterBufferSize < 4096 {
		opts.WriterBufferSize = DefaultWriteBuffer
	}
}

// applyDefaults fills zero-valued extract options with defaults.
func (opts *ExtractOptions) applyDefaults() {
	if opts.Logger == nil {
		opts.Logger = slog.New(slog.DiscardHandler)
	}

	if opts.FileMode == "" {
		opts.FileMode = ExtractFileModeAuto
	}

	if opts.SelectMatcherOptions == (pathrules.MatcherOptions{}) {
		opts.SelectMatcherOptions = pathrules.MatcherOptions{
			CaseInsensitive: true,
			DefaultAction:   pathrules.ActionInclude,
		}
	}

	if opts.SelectMatcherOptions.DefaultAction == pathrules.ActionUnknown {
		opts.SelectMatcherOptions.DefaultAction = pathrules.ActionInclude
	}
}

// applyDefaults fills zero-valued repack options with defaults.
func (opts *RepackOptions) applyDefaults() {
	if opts.Logger == nil {
		opts.Logger = slog.New(slog.DiscardHandler)
	}

	if opts.SelectMatcherOptions == (pathrules.MatcherOptions{}) {
		opts.SelectMatcherOptions = pathrules.MatcherOptions{
			CaseInsensitive: true,
			DefaultAction:   pathrules.ActionInclude,
		}
	}

	if opts.SelectMatcherOptions.DefaultAction == pathrules.ActionUnknown {
		opts.SelectMatcherOptions.DefaultAction = pathrules.ActionInclude
	}
}

// applyDefaults fills zero-valued collect options with defaults.
func (opts *CollectOptions) applyDefaults() {
	if opts.MatcherOptions == (pathrules.MatcherOptions{}) {
		opts.MatcherOptions = pathrules.MatcherOptions{
			CaseInsensitive: true,
			DefaultAction:   pathrules.ActionInclude,
		}
	}

	if opts.MatcherOptions.DefaultAction == pathrules.ActionUnknown {
		opts.MatcherOptions.DefaultAction = pathrules.ActionInclude
	}
}
