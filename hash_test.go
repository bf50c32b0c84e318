package bsa

import "testing"

func TestNameHash_KnownVectors(t *testing.T) {
	t.Parallel()

	// Expected values trace the legacy construction by hand: the low half
	// XORs the first len/2 code points at byte-shift positions, the high
	// half folds every code point through the shift-dependent rotation.
	testCases := []struct {
		in   string
		want uint64
	}{
		{in: "", want: 0},
		{in: "a", want: 0x8000003000000000},
		{in: "ab", want: 0x8000623000000061},
		{in: "a/b", want: 0x80622F3000000061},
		{in: `a\b`, want: 0x80625C3000000061},
		{in: "abcde", want: 0xAF231B1200006261},
	}

	for _, tc := range testCases {
		if got := NameHash(tc.in); got != tc.want {
			t.Errorf("NameHash(%q)=0x%016X, want 0x%016X", tc.in, got, tc.want)
		}
	}
}

func TestNameHash_CaseFold(t *testing.T) {
	t.Parallel()

	pairs := [][2]string{
		{"A", "a"},
		{"AbCdE", "abcde"},
		{`Meshes\Base_Anim.NIF`, `meshes\base_anim.nif`},
		{"UPPER/lower.TXT", "upper/lower.txt"},
	}

	for _, pair := range pairs {
		if NameHash(pair[0]) != NameHash(pair[1]) {
			t.Errorf("NameHash(%q) != NameHash(%q), case must not matter", pair[0], pair[1])
		}
	}
}

func TestNameHash_SeparatorsAreNotFolded(t *testing.T) {
	t.Parallel()

	// The raw hash treats "/" and "\" as distinct code points; separator
	// folding is the caller's job via NormalizeName.
	if NameHash("a/b") == NameHash(`a\b`) {
		t.Fatal("separator variants must hash differently")
	}
}

func TestNameHash_Deterministic(t *testing.T) {
	t.Parallel()

	names := []string{
		"readme.txt",
		`meshes\m\probe_journeyman_01.nif`,
		`textures\menu_thick_border_top_left_corner.dds`,
	}

	for _, name := range names {
		first := NameHash(name)
		for i := 0; i < 3; i++ {
			if got := NameHash(name); got != first {
				t.Fatalf("NameHash(%q) unstable: 0x%016X then 0x%016X", name, first, got)
			}
		}
	}
}

func TestNameHash_SingleCharacterChange(t *testing.T) {
	t.Parallel()

	if NameHash(`meshes\a.nif`) == NameHash(`meshes\b.nif`) {
		t.Fatal("single character change should alter the hash")
	}
	if NameHash("abc") == NameHash("abd") {
		t.Fatal("single character change should alter the hash")
	}
}

func TestEntryNameHash_AppendsTerminator(t *testing.T) {
	t.Parallel()

	// Hash table slots cover the stored name including its null terminator.
	if entryNameHash("a.txt") != NameHash("a.txt\x00") {
		t.Fatal("entryNameHash must hash the null-terminated name")
	}
	if entryNameHash("a.txt") == NameHash("a.txt") {
		t.Fatal("terminator must be part of the hashed bytes")
	}
}
