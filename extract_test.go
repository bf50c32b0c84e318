// SPDX-License-Identifier: MIT
// Copyright (c) 2026 mwkit
// Source: github.com/mwkit/bsa

package bsa

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/woozymasta/pathrules"
)

// openTestArchive writes an archive from sources and reopens it for reading.
func openTestArchive(t *testing.T, sources []Source) *Archive {
	t.Helper()

	p := filepath.Join(t.TempDir(), "test.bsa")
	if _, err := CreateFromSources(p, sources, CreateOptions{}); err != nil {
		t.Fatalf("CreateFromSources: %v", err)
	}

	a, err := Open(p)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}

	return a
}

func extractFixtureSources() []Source {
	return []Source{
		memSource("readme.txt", "hello"),
		memSource(`sub\data.bin`, "\x01\x02\x03"),
		memSource(`meshes\m\probe.nif`, "nif"),
	}
}

func readExtracted(t *testing.T, dstDir, rel string) []byte {
	t.Helper()

	data, err := os.ReadFile(filepath.Join(dstDir, filepath.FromSlash(rel)))
	if err != nil {
		t.Fatalf("read extracted %s: %v", rel, err)
	}

	return data
}

func TestExtract_FullHierarchy(t *testing.T) {
	t.Parallel()

	a := openTestArchive(t, extractFixtureSources())
	dstDir := filepath.Join(t.TempDir(), "out")

	if err := a.Extract(context.Background(), dstDir, ExtractOptions{}); err != nil {
		t.Fatalf("Extract: %v", err)
	}

	if got := readExtracted(t, dstDir, "readme.txt"); string(got) != "hello" {
		t.Errorf("readme.txt=%q, want hello", got)
	}
	if got := readExtracted(t, dstDir, "sub/data.bin"); string(got) != "\x01\x02\x03" {
		t.Errorf("sub/data.bin=% x, want 01 02 03", got)
	}
	if got := readExtracted(t, dstDir, "meshes/m/probe.nif"); string(got) != "nif" {
		t.Errorf("meshes/m/probe.nif=%q, want nif", got)
	}
}

func TestExtract_Flatten(t *testing.T) {
	t.Parallel()

	a := openTestArchive(t, extractFixtureSources())
	dstDir := filepath.Join(t.TempDir(), "out")

	if err := a.Extract(context.Background(), dstDir, ExtractOptions{Flatten: true}); err != nil {
		t.Fatalf("Extract: %v", err)
	}

	for rel, want := range map[string]string{
		"readme.txt": "hello",
		"data.bin":   "\x01\x02\x03",
		"probe.nif":  "nif",
	} {
		if got := readExtracted(t, dstDir, rel); string(got) != want {
			t.Errorf("%s=%q, want %q", rel, got, want)
		}
	}

	if _, err := os.Stat(filepath.Join(dstDir, "sub")); !os.IsNotExist(err) {
		t.Error("flatten must not create entry subdirectories")
	}
}

func TestExtract_NamesFilter(t *testing.T) {
	t.Parallel()

	a := openTestArchive(t, extractFixtureSources())
	dstDir := filepath.Join(t.TempDir(), "out")

	// Requested names may use any case and separator; they are normalized
	// before matching stored names.
	opts := ExtractOptions{Names: []string{"SUB/Data.BIN"}}
	if err := a.Extract(context.Background(), dstDir, opts); err != nil {
		t.Fatalf("Extract: %v", err)
	}

	if got := readExtracted(t, dstDir, "sub/data.bin"); string(got) != "\x01\x02\x03" {
		t.Errorf("sub/data.bin=% x, want 01 02 03", got)
	}
	if _, err := os.Stat(filepath.Join(dstDir, "readme.txt")); !os.IsNotExist(err) {
		t.Error("unrequested readme.txt must not be extracted")
	}
}

func TestExtract_SelectRules(t *testing.T) {
	t.Parallel()

	a := openTestArchive(t, extractFixtureSources())
	dstDir := filepath.Join(t.TempDir(), "out")

	opts := ExtractOptions{
		Select: []pathrules.Rule{
			{Action: pathrules.ActionInclude, Pattern: "meshes/**"},
		},
		SelectMatcherOptions: pathrules.MatcherOptions{
			CaseInsensitive: true,
			DefaultAction:   pathrules.ActionExclude,
		},
	}
	if err := a.Extract(context.Background(), dstDir, opts); err != nil {
		t.Fatalf("Extract: %v", err)
	}

	if got := readExtracted(t, dstDir, "meshes/m/probe.nif"); string(got) != "nif" {
		t.Errorf("meshes/m/probe.nif=%q, want nif", got)
	}
	if _, err := os.Stat(filepath.Join(dstDir, "readme.txt")); !os.IsNotExist(err) {
		t.Error("excluded readme.txt must not be extracted")
	}
}

func TestExtract_OnEntryDone(t *testing.T) {
	t.Parallel()

	a := openTestArchive(t, extractFixtureSources())
	dstDir := filepath.Join(t.TempDir(), "out")

	var mu sync.Mutex
	written := make(map[string]int64)

	opts := ExtractOptions{
		OnEntryDone: func(entry Entry, n int64, outputPath string) {
			mu.Lock()
			defer mu.Unlock()

			written[entry.Name] = n
			if !strings.HasPrefix(outputPath, dstDir) {
				t.Errorf("output path %q not under %q", outputPath, dstDir)
			}
		},
	}
	if err := a.Extract(context.Background(), dstDir, opts); err != nil {
		t.Fatalf("Extract: %v", err)
	}

	if len(written) != 3 {
		t.Fatalf("callbacks for %d entries, want 3", len(written))
	}
	if written["readme.txt"] != 5 {
		t.Errorf("readme.txt written=%d, want 5", written["readme.txt"])
	}
	if written[`sub\data.bin`] != 3 {
		t.Errorf("sub\\data.bin written=%d, want 3", written[`sub\data.bin`])
	}
}

func TestExtract_RequiresLoadedArchive(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()

	// A freshly written archive still holds relative offsets; extraction
	// demands a reopened one.
	created, err := CreateFromSources(filepath.Join(dir, "w.bsa"), []Source{memSource("a.txt", "a")}, CreateOptions{})
	if err != nil {
		t.Fatalf("CreateFromSources: %v", err)
	}
	if err := created.Extract(context.Background(), filepath.Join(dir, "out"), ExtractOptions{}); !errors.Is(err, ErrNotOpen) {
		t.Fatalf("extract written archive err=%v, want ErrNotOpen", err)
	}

	var empty Archive
	if err := empty.Extract(context.Background(), filepath.Join(dir, "out"), ExtractOptions{}); !errors.Is(err, ErrNotOpen) {
		t.Fatalf("extract empty archive err=%v, want ErrNotOpen", err)
	}
}

func TestExtract_CreateOnlyMode(t *testing.T) {
	t.Parallel()

	a := openTestArchive(t, []Source{memSource("readme.txt", "hello")})
	dstDir := t.TempDir()

	existing := filepath.Join(dstDir, "readme.txt")
	if err := os.WriteFile(existing, []byte("old"), 0o600); err != nil {
		t.Fatalf("write existing file: %v", err)
	}

	err := a.Extract(context.Background(), dstDir, ExtractOptions{FileMode: ExtractFileModeCreateOnly})
	if err == nil {
		t.Fatal("create-only extract over existing file must fail")
	}
	if !strings.Contains(err.Error(), "readme.txt") {
		t.Errorf("err=%v, want mention of readme.txt", err)
	}

	if got, readErr := os.ReadFile(existing); readErr != nil || string(got) != "old" {
		t.Errorf("existing file=%q, %v, must stay untouched", got, readErr)
	}
}

func TestExtract_AutoModeOverwrites(t *testing.T) {
	t.Parallel()

	a := openTestArchive(t, []Source{memSource("readme.txt", "hello")})
	dstDir := t.TempDir()

	existing := filepath.Join(dstDir, "readme.txt")
	if err := os.WriteFile(existing, []byte("old content, longer than new"), 0o600); err != nil {
		t.Fatalf("write existing file: %v", err)
	}

	if err := a.Extract(context.Background(), dstDir, ExtractOptions{}); err != nil {
		t.Fatalf("Extract: %v", err)
	}

	if got := readExtracted(t, dstDir, "readme.txt"); string(got) != "hello" {
		t.Errorf("readme.txt=%q, want hello", got)
	}
}

func TestExtract_TraversalEntryName(t *testing.T) {
	t.Parallel()

	a := openTestArchive(t, []Source{memSource("../evil.txt", "x")})
	dstDir := filepath.Join(t.TempDir(), "out")

	// Raw mode refuses names that would escape the destination.
	err := a.Extract(context.Background(), dstDir, ExtractOptions{RawNames: true})
	if !errors.Is(err, ErrInvalidExtractPath) {
		t.Fatalf("raw extract err=%v, want ErrInvalidExtractPath", err)
	}

	// The default mode rewrites the parent segment and keeps the payload
	// inside the destination.
	if err := a.Extract(context.Background(), dstDir, ExtractOptions{}); err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if got := readExtracted(t, dstDir, "_/evil.txt"); string(got) != "x" {
		t.Errorf("_/evil.txt=%q, want x", got)
	}
	if _, err := os.Stat(filepath.Join(filepath.Dir(dstDir), "evil.txt")); !os.IsNotExist(err) {
		t.Error("payload escaped the destination directory")
	}
}

func TestExtract_NoMatchesWritesNothing(t *testing.T) {
	t.Parallel()

	a := openTestArchive(t, extractFixtureSources())
	dstDir := filepath.Join(t.TempDir(), "out")

	opts := ExtractOptions{Names: []string{"ghost.txt"}}
	if err := a.Extract(context.Background(), dstDir, opts); err != nil {
		t.Fatalf("Extract: %v", err)
	}

	if _, err := os.Stat(dstDir); !os.IsNotExist(err) {
		t.Error("destination dir must not be created when nothing matches")
	}
}

func TestExtract_ContextCanceled(t *testing.T) {
	t.Parallel()

	a := openTestArchive(t, extractFixtureSources())
	dstDir := filepath.Join(t.TempDir(), "out")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := a.Extract(ctx, dstDir, ExtractOptions{MaxWorkers: 1})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("err=%v, want context.Canceled", err)
	}
}

func TestExtract_ZeroSizeEntry(t *testing.T) {
	t.Parallel()

	a := openTestArchive(t, []Source{memSource("empty.txt", "")})
	dstDir := filepath.Join(t.TempDir(), "out")

	if err := a.Extract(context.Background(), dstDir, ExtractOptions{}); err != nil {
		t.Fatalf("Extract: %v", err)
	}

	fi, err := os.Stat(filepath.Join(dstDir, "empty.txt"))
	if err != nil {
		t.Fatalf("stat empty.txt: %v", err)
	}
	if fi.Size() != 0 {
		t.Errorf("empty.txt size=%d, want 0", fi.Size())
	}
}
