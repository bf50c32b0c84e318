// SPDX-License-Identifier: MIT
// Copyright (c) 2026 mwkit
// Source: github.com/mwkit/bsa

package bsa

import "errors"

// Sentinel errors for BSA operations. Use errors.Is in callers.
var (
	// ErrNotOpen means the archive was queried before a successful Open or Create.
	ErrNotOpen = errors.New("archive file is not open")
	// ErrAlreadyOpen means Open or Create was called on an already loaded archive.
	ErrAlreadyOpen = errors.New("archive file already open")
	// ErrFileTooSmall means the file is shorter than the fixed 12-byte header.
	ErrFileTooSmall = errors.New("file too small to be a valid BSA archive")
	// ErrBadHeader means the first four bytes do not match the BSA magic.
	ErrBadHeader = errors.New("unrecognized BSA header")
	// ErrDirectorySizeInvalid means declared directory sizes cannot fit the file.
	ErrDirectorySizeInvalid = errors.New("directory information larger than entire archive, file may be corrupt")
	// ErrPositionMismatch means the read position after the directory disagrees with dirsize.
	ErrPositionMismatch = errors.New("directory read position mismatch")
	// ErrOffsetOutsideArchive means one or more entry payloads point past end of file.
	ErrOffsetOutsideArchive = errors.New("archive contains offsets outside itself")
	// ErrEntryNotFound means the requested name is not present in the archive.
	ErrEntryNotFound = errors.New("file not found in BSA archive")
	// ErrBytesWrittenMismatch means a write or payload read produced an unexpected byte count.
	ErrBytesWrittenMismatch = errors.New("written byte count mismatch")
	// ErrSizeOverflow means a source, offset, or directory size exceeds the 32-bit format limits.
	ErrSizeOverflow = errors.New("size exceeds archive format limits")
	// ErrInvalidEntryName means a source name is empty or invalid after normalization.
	ErrInvalidEntryName = errors.New("invalid entry name")
	// ErrInvalidExtractPath means an entry name is invalid for an extraction destination.
	ErrInvalidExtractPath = errors.New("invalid extract path")
	// ErrInvalidPattern means one or more include/exclude rules are invalid.
	ErrInvalidPattern = errors.New("invalid path rules")
)
