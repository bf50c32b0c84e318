// SPDX-License-Identifier: MIT
// Copyright (c) 2026 mwkit
// Source: github.com/mwkit/bsa

// Action entrypoint for CI pipelines. It extracts a BSA archive into a
// workspace directory or packs one from a directory tree, driven entirely
// by action inputs.
package main

import (
	"context"
	"strconv"
	"strings"
	"sync/atomic"

	"github.com/sethvargo/go-githubactions"

	"github.com/mwkit/bsa"
	"github.com/mwkit/bsa/internal/cmd"
)

func main() {
	command := strings.TrimSpace(githubactions.GetInput("command"))
	archive := strings.TrimSpace(githubactions.GetInput("archive"))
	dest := strings.TrimSpace(githubactions.GetInput("dest"))
	dir := strings.TrimSpace(githubactions.GetInput("dir"))
	include := splitPatterns(githubactions.GetInput("include"))
	exclude := splitPatterns(githubactions.GetInput("exclude"))
	workersStr := strings.TrimSpace(githubactions.GetInput("workers"))

	if archive == "" {
		githubactions.Fatalf("input 'archive' is required")
	}
	if command == "" {
		command = "extract"
	}

	workers := 0
	if workersStr != "" {
		parsed, err := strconv.Atoi(workersStr)
		if err != nil {
			githubactions.Warningf("ignoring invalid 'workers' input %q: %v", workersStr, err)
		} else {
			workers = parsed
		}
	}

	switch command {
	case "extract":
		runExtract(archive, dest, include, exclude, workers)
	case "create":
		runCreate(archive, dir, exclude)
	default:
		githubactions.Fatalf("unknown command %q, expected extract or create", command)
	}
}

func runExtract(archive, dest string, include, exclude []string, workers int) {
	if dest == "" {
		dest = "."
	}

	a, err := bsa.Open(archive)
	if err != nil {
		githubactions.Fatalf("failed to open archive %q: %v", archive, err)
	}

	rules, matcherOpts := cmd.SelectionRules(include, exclude)

	var count atomic.Int64
	err = a.Extract(context.Background(), dest, bsa.ExtractOptions{
		Select:               rules,
		SelectMatcherOptions: matcherOpts,
		MaxWorkers:           workers,
		OnEntryDone: func(_ bsa.Entry, _ int64, outputPath string) {
			githubactions.Infof("extracted %s", outputPath)
			count.Add(1)
		},
	})
	if err != nil {
		githubactions.Fatalf("failed to extract %q: %v", archive, err)
	}

	githubactions.Infof("extracted %d entries from %s to %s", count.Load(), archive, dest)
	githubactions.SetOutput("entries", strconv.FormatInt(count.Load(), 10))
}

func runCreate(archive, dir string, exclude []string) {
	if dir == "" {
		githubactions.Fatalf("input 'dir' is required for the create command")
	}

	rules, matcherOpts := cmd.SelectionRules(nil, exclude)

	sources, err := bsa.CollectFiles(dir, bsa.CollectOptions{
		Rules:          rules,
		MatcherOptions: matcherOpts,
	})
	if err != nil {
		githubactions.Fatalf("failed to collect files from %q: %v", dir, err)
	}

	a, err := bsa.CreateFromSources(archive, sources, bsa.CreateOptions{})
	if err != nil {
		githubactions.Fatalf("failed to create archive %q: %v", archive, err)
	}

	githubactions.Infof("created %s with %d entries (%d bytes)", archive, len(sources), a.Size())
	githubactions.SetOutput("entries", strconv.Itoa(len(sources)))
}

// splitPatterns accepts newline or comma separated pattern lists.
func splitPatterns(raw string) []string {
	fields := strings.FieldsFunc(raw, func(r rune) bool {
		return r == '\n' || r == ','
	})

	patterns := make([]string, 0, len(fields))
	for _, field := range fields {
		field = strings.TrimSpace(field)
		if field == "" {
			continue
		}
		patterns = append(patterns, field)
	}

	return patterns
}
