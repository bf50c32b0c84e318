// SPDX-License-Identifier: MIT
// Copyright (c) 2026 mwkit
// Source: github.com/mwkit/bsa

package bsa

import (
	"fmt"
	"strings"

	"github.com/woozymasta/pathrules"
)

// selectMatcher holds compiled include/exclude rules for path selection.
type selectMatcher struct {
	matcher *pathrules.Matcher
}

// newSelectMatcher compiles selection path rules. A nil matcher means no
// rules were given; it accepts every path.
func newSelectMatcher(rules []pathrules.Rule, opts pathrules.MatcherOptions) (*selectMatcher, error) {
	rules = normalizeSelectRules(rules)
	if len(rules) == 0 {
		return nil, nil
	}

	matcher, err := pathrules.NewMatcher(rules, opts)
	if err != nil {
		return nil, fmt.Errorf("%w: compile rules: %w", ErrInvalidPattern, err)
	}

	return &selectMatcher{matcher: matcher}, nil
}

// normalizeSelectRules normalizes rule patterns and drops empty patterns.
func normalizeSelectRules(rules []pathrules.Rule) []pathrules.Rule {
	normalized := make([]pathrules.Rule, 0, len(rules))
	for _, rule := range rules {
		pattern := normalizePathForMatching(rule.Pattern)
		if pattern == "" {
			continue
		}

		normalized = append(normalized, pathrules.Rule{
			Action:  rule.Action,
			Pattern: pattern,
		})
	}

	return normalized
}

// Match reports whether path is accepted by the selection rules.
func (m *selectMatcher) Match(path string) bool {
	if m == nil || m.matcher == nil {
		return true
	}

	candidate := NormalizePath(path)
	if candidate == "" {
		return false
	}

	return m.matcher.Included(candidate, false)
}

// SelectEntries keeps entries whose slash-normalized names are accepted by
// the given rules. With no rules the input is returned unchanged.
func SelectEntries(entries []Entry, rules []pathrules.Rule, opts pathrules.MatcherOptions) ([]Entry, error) {
	matcher, err := newSelectMatcher(rules, opts)
	if err != nil {
		return nil, err
	}

	if matcher == nil {
		return entries, nil
	}

	out := make([]Entry, 0, len(entries))
	for _, entry := range entries {
		if !matcher.Match(entryNameToSlash(entry.Name)) {
			continue
		}

		out = append(out, entry)
	}

	return out, nil
}

// filterEntriesByNames keeps entries whose stored name matches one of the
// normalized lookup names, preserving directory order.
func filterEntriesByNames(entries []Entry, names []string) []Entry {
	if len(names) == 0 {
		return entries
	}

	wanted := make(map[string]struct{}, len(names))
	for _, name := range names {
		wanted[NormalizeName(name)] = struct{}{}
	}

	out := make([]Entry, 0, len(names))
	for _, entry := range entries {
		if _, ok := wanted[entry.Name]; !ok {
			continue
		}

		out = append(out, entry)
	}

	return out
}

// filterEntriesByPrefix keeps entries under prefix (or the exact entry when
// prefix names a file). Prefix separators and case are normalized first.
func filterEntriesByPrefix(entries []Entry, prefix string) []Entry {
	prefix = NormalizePath(asciiLower(prefix))
	if prefix == "" {
		return entries
	}

	prefixWithSlash := prefix + "/"
	out := make([]Entry, 0, len(entries))
	for _, entry := range entries {
		entryPath := entryNameToSlash(entry.Name)
		if entryPath == prefix || strings.HasPrefix(entryPath, prefixWithSlash) {
			out = append(out, entry)
		}
	}

	return out
}
