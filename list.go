// SPDX-License-Identifier: MIT
// Copyright (c) 2026 mwkit
// Source: github.com/mwkit/bsa

package bsa

// List opens an archive and returns its directory in entry order without any
// payload reads.
func List(path string) ([]Entry, error) {
	return ListWithOptions(path, OpenOptions{})
}

// ListWithOptions opens an archive and returns its directory using explicit
// options.
func ListWithOptions(path string, opts OpenOptions) ([]Entry, error) {
	a, err := OpenWithOptions(path, opts)
	if err != nil {
		return nil, err
	}

	return a.Entries()
}
