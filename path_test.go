// SPDX-License-Identifier: MIT
// Copyright (c) 2026 mwkit
// Source: github.com/mwkit/bsa

package bsa

import (
	"errors"
	"testing"
)

func TestNormalizeName(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		in   string
		want string
	}{
		{in: "", want: ""},
		{in: "readme.txt", want: "readme.txt"},
		{in: "Readme.TXT", want: "readme.txt"},
		{in: "Meshes/M/Probe_Journeyman_01.nif", want: `meshes\m\probe_journeyman_01.nif`},
		{in: `Meshes\M\Probe_Journeyman_01.nif`, want: `meshes\m\probe_journeyman_01.nif`},
		{in: "mixed/Path\\Form.dds", want: `mixed\path\form.dds`},
		{in: "ünïcode.TXT", want: "ünïcode.txt"},
	}

	for _, tc := range testCases {
		if got := NormalizeName(tc.in); got != tc.want {
			t.Errorf("NormalizeName(%q)=%q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestNormalizePath(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		in   string
		want string
	}{
		{in: "", want: ""},
		{in: ".", want: ""},
		{in: "/", want: ""},
		{in: "a/b/c.txt", want: "a/b/c.txt"},
		{in: `a\b\c.txt`, want: "a/b/c.txt"},
		{in: "./a/b.txt", want: "a/b.txt"},
		{in: "/a/b.txt", want: "a/b.txt"},
		{in: "  a/b.txt  ", want: "a/b.txt"},
		{in: "a//b/./c.txt", want: "a/b/c.txt"},
	}

	for _, tc := range testCases {
		if got := NormalizePath(tc.in); got != tc.want {
			t.Errorf("NormalizePath(%q)=%q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestNormalizeCreateEntryName(t *testing.T) {
	t.Parallel()

	got, err := normalizeCreateEntryName("Sub/File.TXT")
	if err != nil {
		t.Fatalf("normalizeCreateEntryName: %v", err)
	}
	if want := `sub\file.txt`; got != want {
		t.Errorf("got %q, want %q", got, want)
	}

	for _, bad := range []string{"", "   ", "\t", "nul\x00byte"} {
		if _, err := normalizeCreateEntryName(bad); !errors.Is(err, ErrInvalidEntryName) {
			t.Errorf("normalizeCreateEntryName(%q) err=%v, want ErrInvalidEntryName", bad, err)
		}
	}
}

func TestEntryNameToSlash(t *testing.T) {
	t.Parallel()

	if got := entryNameToSlash(`meshes\m\probe.nif`); got != "meshes/m/probe.nif" {
		t.Errorf("got %q, want meshes/m/probe.nif", got)
	}
	if got := entryNameToSlash("plain.txt"); got != "plain.txt" {
		t.Errorf("got %q, want plain.txt", got)
	}
}

func TestASCIILower(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		in   string
		want string
	}{
		{in: "", want: ""},
		{in: "already lower", want: "already lower"},
		{in: "MiXeD Case", want: "mixed case"},
		{in: "ÄÖÜ stay", want: "ÄÖÜ stay"},
		{in: "Digits123!", want: "digits123!"},
	}

	for _, tc := range testCases {
		if got := asciiLower(tc.in); got != tc.want {
			t.Errorf("asciiLower(%q)=%q, want %q", tc.in, got, tc.want)
		}
	}
}
