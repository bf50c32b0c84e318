package bsa

import (
	"bytes"
	"encoding/binary"
	"os"
	"path/filepath"
	"testing"
)

// manualEntry describes one entry for hand-built archive fixtures.
type manualEntry struct {
	name    string
	payload []byte
}

// buildManualBSA lays out a complete archive byte-for-byte from entries.
// Name-offset words and hash slots are produced the same way the original
// tooling wrote them, so fixtures round trip against Create output.
func buildManualBSA(t testing.TB, entries []manualEntry) []byte {
	t.Helper()

	var nameBytes int
	for _, e := range entries {
		nameBytes += len(e.name) + 1
	}
	dirSize := 12*len(entries) + nameBytes

	var buf bytes.Buffer
	writeU32 := func(v uint32) {
		var word [4]byte
		binary.LittleEndian.PutUint32(word[:], v)
		buf.Write(word[:])
	}

	writeU32(magic)
	writeU32(uint32(dirSize))
	writeU32(uint32(len(entries)))

	var rel uint32
	for _, e := range entries {
		writeU32(uint32(len(e.payload)))
		writeU32(rel)
		rel += uint32(len(e.payload))
	}

	var nameOffset uint32
	for _, e := range entries {
		writeU32(nameOffset)
		nameOffset += uint32(len(e.name)) + 1
	}

	for _, e := range entries {
		buf.WriteString(e.name)
		buf.WriteByte(0)
	}

	for _, e := range entries {
		var slot [8]byte
		binary.LittleEndian.PutUint64(slot[:], entryNameHash(e.name))
		buf.Write(slot[:])
	}

	for _, e := range entries {
		buf.Write(e.payload)
	}

	return buf.Bytes()
}

// writeManualBSA writes a hand-built archive into a temp dir and returns its path.
func writeManualBSA(t testing.TB, entries []manualEntry) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "manual.bsa")
	if err := os.WriteFile(path, buildManualBSA(t, entries), 0o644); err != nil {
		t.Fatal(err)
	}

	return path
}

func TestOpen_ManualArchive(t *testing.T) {
	path := writeManualBSA(t, []manualEntry{
		{name: "readme.txt", payload: []byte("hello")},
		{name: `sub\data.bin`, payload: []byte{0x01, 0x02, 0x03}},
	})

	a, err := Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}

	entries, err := a.Entries()
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(entries))
	}

	if entries[0].Name != "readme.txt" || entries[0].Size != 5 {
		t.Errorf("entry 0: name=%q size=%d", entries[0].Name, entries[0].Size)
	}
	if entries[1].Name != `sub\data.bin` || entries[1].Size != 3 {
		t.Errorf("entry 1: name=%q size=%d", entries[1].Name, entries[1].Size)
	}

	// dirSize = 2*12 + 11 + 13 = 48; payloads start past the 16-byte hash
	// table at 12 + 48 + 16 = 76.
	if entries[0].Offset != 76 {
		t.Errorf("entry 0 offset=%d, want 76", entries[0].Offset)
	}
	if entries[1].Offset != 81 {
		t.Errorf("entry 1 offset=%d, want 81", entries[1].Offset)
	}

	data, err := a.ReadEntry("readme.txt")
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "hello" {
		t.Errorf("readme.txt payload=%q", data)
	}

	data, err = a.ReadEntry(`sub\data.bin`)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(data, []byte{0x01, 0x02, 0x03}) {
		t.Errorf("sub\\data.bin payload=%v", data)
	}
}

func TestOpen_EmptyArchive(t *testing.T) {
	t.Parallel()

	path := writeManualBSA(t, nil)

	a, err := Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}

	entries, err := a.Entries()
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 0 {
		t.Fatalf("expected no entries, got %d", len(entries))
	}
	if a.Size() != headerSize {
		t.Fatalf("Size()=%d, want %d", a.Size(), headerSize)
	}
}

func TestOpen_PayloadOrderIndependentOfDirectoryOrder(t *testing.T) {
	t.Parallel()

	// Directory lists b.txt first but stores its payload after a.txt's, so
	// reads must key strictly off the stored offsets, not directory order.
	var buf bytes.Buffer
	writeU32 := func(v uint32) {
		var word [4]byte
		binary.LittleEndian.PutUint32(word[:], v)
		buf.Write(word[:])
	}

	const dirSize = 2*12 + 6 + 6
	writeU32(magic)
	writeU32(dirSize)
	writeU32(2)
	writeU32(4) // b.txt size
	writeU32(2) // b.txt offset, past a.txt payload
	writeU32(2) // a.txt size
	writeU32(0) // a.txt offset
	writeU32(0)
	writeU32(6)
	buf.WriteString("b.txt\x00a.txt\x00")
	for _, name := range []string{"b.txt", "a.txt"} {
		var slot [8]byte
		binary.LittleEndian.PutUint64(slot[:], entryNameHash(name))
		buf.Write(slot[:])
	}
	buf.WriteString("aaBBBB")

	path := filepath.Join(t.TempDir(), "reversed.bsa")
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		t.Fatal(err)
	}

	a, err := Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}

	entries, err := a.Entries()
	if err != nil {
		t.Fatal(err)
	}
	if entries[0].Name != "b.txt" || entries[1].Name != "a.txt" {
		t.Fatalf("directory order changed: %q, %q", entries[0].Name, entries[1].Name)
	}

	data, err := a.ReadEntry("b.txt")
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "BBBB" {
		t.Errorf("b.txt payload=%q, want BBBB", data)
	}

	data, err = a.ReadEntry("a.txt")
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "aa" {
		t.Errorf("a.txt payload=%q, want aa", data)
	}
}

func TestOpen_DuplicateNamesLastWins(t *testing.T) {
	t.Parallel()

	path := writeManualBSA(t, []manualEntry{
		{name: "dup.txt", payload: []byte("first")},
		{name: "dup.txt", payload: []byte("second")},
	})

	a, err := Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}

	entries, err := a.Entries()
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 2 {
		t.Fatalf("expected both duplicate entries listed, got %d", len(entries))
	}

	data, err := a.ReadEntry("dup.txt")
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "second" {
		t.Errorf("duplicate lookup resolved to %q, want the later entry", data)
	}
}

func TestOpen_ZeroSizeEntry(t *testing.T) {
	t.Parallel()

	path := writeManualBSA(t, []manualEntry{
		{name: "empty.dat", payload: nil},
		{name: "tail.dat", payload: []byte("x")},
	})

	a, err := Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}

	data, err := a.ReadEntry("empty.dat")
	if err != nil {
		t.Fatal(err)
	}
	if len(data) != 0 {
		t.Errorf("empty entry payload=%v", data)
	}

	data, err = a.ReadEntry("tail.dat")
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "x" {
		t.Errorf("tail entry payload=%q", data)
	}
}

func TestList_ManualArchive(t *testing.T) {
	t.Parallel()

	path := writeManualBSA(t, []manualEntry{
		{name: "one.nif", payload: []byte("1")},
		{name: "two.nif", payload: []byte("22")},
	})

	entries, err := List(path)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(entries))
	}
	if entries[0].Name != "one.nif" || entries[1].Name != "two.nif" {
		t.Fatalf("listing order: %q, %q", entries[0].Name, entries[1].Name)
	}
}
