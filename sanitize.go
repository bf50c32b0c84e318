// SPDX-License-Identifier: MIT
// Copyright (c) 2026 mwkit
// Source: github.com/mwkit/bsa

package bsa

import (
	"fmt"
	"hash/fnv"
	"path"
	"strconv"
	"strings"
	"unicode"
)

const (
	// maxSanitizedSegmentLen caps one output path segment at a length every
	// common filesystem accepts.
	maxSanitizedSegmentLen = 240
)

var (
	// reservedDOSNames contains case-insensitive reserved DOS/Windows device names.
	reservedDOSNames = map[string]struct{}{
		"aux":     {},
		"clock$":  {},
		"com1":    {},
		"com2":    {},
		"com3":    {},
		"com4":    {},
		"com5":    {},
		"com6":    {},
		"com7":    {},
		"com8":    {},
		"com9":    {},
		"con":     {},
		"config$": {},
		"lpt1":    {},
		"lpt2":    {},
		"lpt3":    {},
		"lpt4":    {},
		"lpt5":    {},
		"lpt6":    {},
		"lpt7":    {},
		"lpt8":    {},
		"lpt9":    {},
		"nul":     {},
		"prn":     {},
	}
)

// SanitizePath converts one archive-style path into a filesystem-safe
// slash-separated relative path. The result is deterministic for a given
// input. An empty input stays empty.
func SanitizePath(pathValue string) (string, error) {
	normalized := NormalizePath(pathValue)
	if normalized == "" {
		return "", nil
	}

	sanitized, err := sanitizeRelativePath(normalized)
	if err == nil {
		_, err = normalizeExtractEntryPath(sanitized)
	}
	if err != nil {
		return "", err
	}

	return sanitized, nil
}

// sanitizeEntryOutputPaths maps stored entry names to unique filesystem-safe
// relative output paths, aligned by entry index. Duplicate stored names are
// legal in an archive, so colliding outputs get deterministic numeric
// suffixes instead of overwriting each other.
func sanitizeEntryOutputPaths(entries []Entry, flatten bool) ([]string, error) {
	out := make([]string, len(entries))
	used := make(map[string]struct{}, len(entries))
	nextSuffix := make(map[string]int, len(entries))

	for i := range entries {
		relativePath := entryNameToSlash(entries[i].Name)
		normalizedPath, err := normalizeExtractEntryPath(relativePath)
		if err == nil {
			relativePath = normalizedPath
		}

		if flatten {
			relativePath = path.Base(relativePath)
		}

		sanitized, err := sanitizeRelativePath(relativePath)
		if err != nil {
			return nil, fmt.Errorf("sanitize path %s: %w", entries[i].Name, err)
		}

		sanitized, err = makeSanitizedPathUnique(sanitized, used, nextSuffix)
		if err != nil {
			return nil, fmt.Errorf("sanitize path %s: %w", entries[i].Name, err)
		}

		if _, err := normalizeExtractEntryPath(sanitized); err != nil {
			return nil, fmt.Errorf("sanitize path %s: %w", entries[i].Name, err)
		}

		out[i] = sanitized
	}

	return out, nil
}

// sanitizeRelativePath runs every segment of a slash-separated relative path
// through sanitizePathSegment, dropping empty and "." segments. A path with
// nothing left collapses to "_".
func sanitizeRelativePath(relativePath string) (string, error) {
	var b strings.Builder
	kept := 0
	for part := range strings.SplitSeq(relativePath, "/") {
		part = strings.TrimSpace(part)
		if part == "" || part == "." {
			continue
		}

		segment, err := sanitizePathSegment(part)
		if err != nil {
			return "", err
		}

		if kept > 0 {
			b.WriteByte('/')
		}
		b.WriteString(segment)
		kept++
	}
	if kept == 0 {
		return "_", nil
	}

	return b.String(), nil
}

// sanitizePathSegment rewrites one path segment so it is acceptable to
// Windows and Unix filesystems alike: control and separator-like runes
// become underscores, trailing dots and spaces are cut, reserved device
// names get an underscore prefix, and overlong segments are shortened
// deterministically.
func sanitizePathSegment(segment string) (string, error) {
	segment = strings.TrimSpace(segment)
	if segment == "" {
		return "_", nil
	}
	rawReserved := isReservedDeviceName(segment)

	runes := []rune(segment)
	for i, r := range runes {
		if isUnsafeControlCharRune(r) || strings.ContainsRune(`<>:"/\|?*`, r) {
			runes[i] = '_'
		}
	}

	sanitized := strings.TrimRight(string(runes), ". ")
	if sanitized == "" {
		sanitized = "_"
	}

	base, _, _ := strings.Cut(sanitized, ".")
	if rawReserved || isReservedDeviceName(base) {
		sanitized = "_" + sanitized
	}

	if len(sanitized) > maxSanitizedSegmentLen {
		sanitized = shortenSegmentDeterministic(sanitized, maxSanitizedSegmentLen)
	}
	if sanitized == "" {
		return "", ErrInvalidExtractPath
	}

	return sanitized, nil
}

// isUnsafeControlCharRune reports whether rune is unsafe for file names and should be replaced.
func isUnsafeControlCharRune(r rune) bool {
	// U+FFFD often appears from invalid byte sequences in mangled names.
	return r == '�' || unicode.IsControl(r) || unicode.In(r, unicode.Cf)
}

// isReservedDeviceName reports whether name matches a reserved DOS/Windows
// device identifier. Windows ignores trailing dots, spaces, and colons as
// well as anything after the first dot when resolving device names, so the
// comparison does too.
func isReservedDeviceName(name string) bool {
	candidate := strings.ToLower(strings.TrimRight(strings.TrimSpace(name), ". :"))
	candidate, _, _ = strings.Cut(candidate, ".")
	candidate = strings.TrimRight(candidate, ". :")
	if candidate == "" {
		return false
	}

	_, ok := reservedDOSNames[candidate]
	return ok
}

// makeSanitizedPathUnique reserves pathValue in used, appending "~N" before
// the extension when the lower-cased path was already taken. nextSuffix
// remembers the next free N per colliding path so repeated duplicates do not
// rescan from 2.
func makeSanitizedPathUnique(pathValue string, used map[string]struct{}, nextSuffix map[string]int) (string, error) {
	key := strings.ToLower(pathValue)
	if _, taken := used[key]; !taken {
		used[key] = struct{}{}
		return pathValue, nil
	}

	dir, name := path.Dir(pathValue), path.Base(pathValue)
	idx := nextSuffix[key]
	if idx < 2 {
		idx = 2
	}

	for ; idx < 1000000; idx++ {
		candidate := withNumericSuffix(name, idx)
		if dir != "." {
			candidate = dir + "/" + candidate
		}

		candidateKey := strings.ToLower(candidate)
		if _, taken := used[candidateKey]; taken {
			continue
		}

		used[candidateKey] = struct{}{}
		nextSuffix[key] = idx + 1
		return candidate, nil
	}

	return "", ErrInvalidExtractPath
}

// withNumericSuffix inserts "~N" between base name and extension, shortening
// the base when the combined segment would exceed the length cap.
func withNumericSuffix(name string, n int) string {
	ext := path.Ext(name)
	base := name[:len(name)-len(ext)]
	suffix := "~" + strconv.Itoa(n)
	if room := maxSanitizedSegmentLen - len(ext) - len(suffix); len(base) > room {
		base = shortenSegmentDeterministic(base, max(room, 1))
	}

	return base + suffix + ext
}

// shortenSegmentDeterministic cuts value down to maxLen bytes, replacing the
// tail with a hash of the full value so distinct long names stay distinct.
func shortenSegmentDeterministic(value string, maxLen int) string {
	if len(value) <= maxLen {
		return value
	}
	if maxLen <= 10 {
		return value[:maxLen]
	}

	h := fnv.New32a()
	_, _ = h.Write([]byte(value))
	tail := fmt.Sprintf("~%08x", h.Sum32())
	keep := maxLen - len(tail)
	if keep < 1 {
		keep = 1
	}

	return value[:keep] + tail
}
