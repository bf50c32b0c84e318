// SPDX-License-Identifier: MIT
// Copyright (c) 2026 mwkit
// Source: github.com/mwkit/bsa

package bsa

import (
	"fmt"
	"path"
	"strings"
)

// NormalizeName converts an input path to canonical archive entry form:
// ASCII lower case with "\" separators. This is the form Create records
// and the form stored names carry after decode.
func NormalizeName(raw string) string {
	return strings.ReplaceAll(asciiLower(raw), "/", `\`)
}

// NormalizePath converts a slash or backslash path to normalized slash-separated form.
// It trims spaces, removes leading "./" and "/", and cleans "." segments.
func NormalizePath(raw string) string {
	raw = normalizePathForMatching(raw)
	raw = strings.TrimPrefix(raw, "/")
	raw = path.Clean("/" + raw)
	raw = strings.TrimPrefix(raw, "/")
	if raw == "." {
		return ""
	}

	return strings.TrimSuffix(raw, "/")
}

// normalizePathForMatching normalizes user/input paths for matcher use.
func normalizePathForMatching(path string) string {
	path = strings.TrimSpace(path)
	path = strings.ReplaceAll(path, `\`, `/`)
	path = strings.TrimPrefix(path, "./")
	return path
}

// normalizeCreateEntryName validates and converts one Create input name to
// canonical archive form. Blank and NUL-bearing names cannot be represented
// in the null-terminated name block and are rejected.
func normalizeCreateEntryName(raw string) (string, error) {
	if strings.TrimSpace(raw) == "" {
		return "", fmt.Errorf("%w: %q", ErrInvalidEntryName, raw)
	}
	if strings.ContainsRune(raw, 0) {
		return "", fmt.Errorf("%w: %q", ErrInvalidEntryName, raw)
	}

	return NormalizeName(raw), nil
}

// entryNameToSlash converts a stored entry name to slash-separated form for
// rule matching and output path construction.
func entryNameToSlash(name string) string {
	return strings.ReplaceAll(name, `\`, "/")
}

// asciiLower lowercases ASCII letters only, leaving all other bytes intact.
// Returns the input string unchanged (no allocation) when nothing to fold.
func asciiLower(s string) string {
	for i := 0; i < len(s); i++ {
		if s[i] >= 'A' && s[i] <= 'Z' {
			b := []byte(s)
			for j := i; j < len(b); j++ {
				if b[j] >= 'A' && b[j] <= 'Z' {
					b[j] += 'a' - 'A'
				}
			}

			return string(b)
		}
	}

	return s
}
