package fmindex

import (
	"bytes"
	"math/rand"
	"sort"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/Soham-Moholkar/csidx/bitrank"
	"github.com/Soham-Moholkar/csidx/ssa"
	"github.com/Soham-Moholkar/csidx/sufsort"
	"github.com/Soham-Moholkar/csidx/wavelet"
)

func classicalBuilder(bits []bool) wavelet.RankDict {
	return bitrank.Build(bits, bitrank.DefaultSuperBlockBits, bitrank.DefaultSubBlockBits)
}

func buildIndex(t *testing.T, text []byte, stride uint32) *Index {
	t.Helper()
	sa := sufsort.BuildSA(text)
	bwt := sufsort.BuildBWT(text, sa)
	c := BuildCTable(text)
	tree := wavelet.Build(bwt, classicalBuilder)
	sampled, err := ssa.Build(sa, stride)
	require.NoError(t, err)
	return New(uint64(len(text)), c, tree, sampled, text)
}

func naiveOccurrences(text, pattern []byte) []uint64 {
	var out []uint64
	if len(pattern) == 0 || len(pattern) > len(text) {
		return out
	}
	for i := 0; i+len(pattern) <= len(text); i++ {
		if bytes.Equal(text[i:i+len(pattern)], pattern) {
			out = append(out, uint64(i))
		}
	}
	return out
}

func sortedU64(xs []uint64) []uint64 {
	out := append([]uint64(nil), xs...)
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

func TestConcreteScenarios(t *testing.T) {
	type scenario struct {
		text    string
		pattern string
		count   uint64
		locate  []uint64
	}
	scenarios := []scenario{
		{"banana$", "ana", 2, []uint64{1, 3}},
		{"banana$", "a", 3, []uint64{1, 3, 5}},
		{"abababab$", "aba", 3, []uint64{0, 2, 4}},
		{"abcdefg$", "xyz", 0, nil},
		{"aabaabaa$", "aa", 3, []uint64{0, 3, 6}},
	}
	for _, sc := range scenarios {
		t.Run(sc.text+"/"+sc.pattern, func(t *testing.T) {
			idx := buildIndex(t, []byte(sc.text), 1)
			require.Equal(t, sc.count, idx.Count([]byte(sc.pattern)))
			got, err := idx.Locate([]byte(sc.pattern), 1000)
			require.NoError(t, err)
			require.Equal(t, sc.locate, sortedU64(got))
		})
	}
}

func TestFullAlphabetCoverage(t *testing.T) {
	text := make([]byte, 0, 256)
	for b := 1; b <= 255; b++ {
		text = append(text, byte(b))
	}
	text = append(text, 0x00) // '$' (0x24) is already in 1..255; 0x00 is the unique minimum
	idx := buildIndex(t, text, 4)
	for k := 1; k <= 255; k++ {
		pattern := []byte{byte(k)}
		require.Equal(t, uint64(1), idx.Count(pattern), "k=%d", k)
		got, err := idx.Locate(pattern, 10)
		require.NoError(t, err)
		require.Equal(t, []uint64{uint64(k - 1)}, got, "k=%d", k)
	}
}

func TestEmptyPattern(t *testing.T) {
	idx := buildIndex(t, []byte("banana$"), 2)
	require.Equal(t, idx.N(), idx.Count(nil))
	got, err := idx.Locate(nil, 100)
	require.NoError(t, err)
	require.Empty(t, got)
}

func TestPatternLongerThanText(t *testing.T) {
	idx := buildIndex(t, []byte("ab$"), 1)
	require.Equal(t, uint64(0), idx.Count([]byte("abcdef")))
}

func TestPatternByteNotInText(t *testing.T) {
	idx := buildIndex(t, []byte("banana$"), 1)
	require.Equal(t, uint64(0), idx.Count([]byte("z")))
}

func TestTextLengthOne(t *testing.T) {
	idx := buildIndex(t, []byte("\x00"), 1)
	require.Equal(t, uint64(1), idx.Count([]byte{0}))
}

func TestRepeatedByteText(t *testing.T) {
	text := append(bytes.Repeat([]byte{'a'}, 50), 0x00)
	idx := buildIndex(t, text, 3)
	require.Equal(t, uint64(50), idx.Count([]byte{'a'}))
	got, err := idx.Locate([]byte{'a'}, 1000)
	require.NoError(t, err)
	require.ElementsMatch(t, naiveOccurrences(text, []byte{'a'}), got)
}

func TestExtract(t *testing.T) {
	text := []byte("mississippi\x00")
	idx := buildIndex(t, text, 4)
	require.Equal(t, text[2:9], idx.Extract(2, 7))
	require.Equal(t, text[len(text)-3:], idx.Extract(uint64(len(text)-3), 100)) // clamps
	require.Nil(t, idx.Extract(uint64(len(text)), 5))
}

func TestPropertyAgainstNaiveScan(t *testing.T) {
	rng := rand.New(rand.NewSource(99))
	for trial := 0; trial < 30; trial++ {
		n := rng.Intn(300) + 2
		text := make([]byte, n)
		for i := 0; i < n-1; i++ {
			text[i] = byte('a' + rng.Intn(5))
		}
		text[n-1] = 0x00
		idx := buildIndex(t, text, uint32(1+rng.Intn(8)))

		for p := 0; p < 10; p++ {
			plen := 1 + rng.Intn(minInt(8, n))
			pattern := make([]byte, plen)
			for i := range pattern {
				pattern[i] = byte('a' + rng.Intn(5))
			}
			want := naiveOccurrences(text, pattern)
			require.Equal(t, uint64(len(want)), idx.Count(pattern), "text=%q pattern=%q", text, pattern)
			got, err := idx.Locate(pattern, n+1)
			require.NoError(t, err)
			require.ElementsMatch(t, want, got, "text=%q pattern=%q", text, pattern)
		}
	}
}

func TestLFRoundTrip(t *testing.T) {
	text := []byte("banana$")
	idx := buildIndex(t, text, 1)
	// Iterated LF from row 0 walks the text backward through the sentinel.
	pos := uint64(0)
	visited := make([]uint64, 0, len(text))
	for i := 0; i < len(text); i++ {
		visited = append(visited, pos)
		pos = idx.LF(pos)
	}
	require.Equal(t, uint64(0), pos) // cycles back after n steps
	require.Len(t, visited, len(text))
}

func TestLocateLimit(t *testing.T) {
	text := append(bytes.Repeat([]byte{'a'}, 20), 0x00)
	idx := buildIndex(t, text, 2)
	got, err := idx.Locate([]byte{'a'}, 5)
	require.NoError(t, err)
	require.Len(t, got, 5)
}
