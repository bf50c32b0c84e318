// SPDX-License-Identifier: MIT
// Copyright (c) 2026 mwkit
// Source: github.com/mwkit/bsa

package bsa

import (
	"fmt"
	"io/fs"
	"path/filepath"
)

// CollectFiles walks root and returns pack sources for every regular file
// accepted by the collect rules.
//
// Source names are slash-separated paths relative to root, so the resulting
// archive names mirror the directory layout once Create normalizes them.
// Output follows the lexical walk order. Symbolic links are not followed.
func CollectFiles(root string, opts CollectOptions) ([]Source, error) {
	opts.applyDefaults()

	matcher, err := newSelectMatcher(opts.Rules, opts.MatcherOptions)
	if err != nil {
		return nil, err
	}

	var sources []Source
	err = filepath.WalkDir(root, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}

		if d.IsDir() || !d.Type().IsRegular() {
			return nil
		}

		rel, relErr := filepath.Rel(root, path)
		if relErr != nil {
			return fmt.Errorf("relative path for %s: %w", path, relErr)
		}

		name := filepath.ToSlash(rel)
		if !matcher.Match(name) {
			return nil
		}

		sources = append(sources, Source{Name: name, Path: path})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("collect files: %w", err)
	}

	return sources, nil
}
