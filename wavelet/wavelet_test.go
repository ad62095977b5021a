package wavelet

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/Soham-Moholkar/csidx/bitrank"
	"github.com/Soham-Moholkar/csidx/learnedrank"
)

func classicalBuilder(bits []bool) RankDict {
	return bitrank.Build(bits, bitrank.DefaultSuperBlockBits, bitrank.DefaultSubBlockBits)
}

func learnedBuilder(bits []bool) RankDict {
	return learnedrank.Build(bits, learnedrank.DefaultCoarseStride, learnedrank.DefaultMicroStride, learnedrank.DefaultTailPopcountR)
}

func naiveRank(data []byte, c byte, i uint64) uint64 {
	var n uint64
	for j := uint64(0); j < i && j < uint64(len(data)); j++ {
		if data[j] == c {
			n++
		}
	}
	return n
}

func TestRankAccessAgainstNaive(t *testing.T) {
	for _, build := range []Builder{classicalBuilder, learnedBuilder} {
		rng := rand.New(rand.NewSource(11))
		data := make([]byte, 500)
		for i := range data {
			data[i] = byte(rng.Intn(6)) // small alphabet exercises all 8 levels sparsely
		}
		tree := Build(data, build)
		require.Equal(t, uint64(len(data)), tree.Size())

		for i, want := range data {
			require.Equal(t, want, tree.Access(uint64(i)))
		}
		for _, c := range []byte{0, 1, 2, 3, 4, 5, 200} {
			for i := 0; i <= len(data); i += 13 {
				require.Equal(t, naiveRank(data, c, uint64(i)), tree.Rank(c, uint64(i)), "c=%d i=%d", c, i)
			}
		}
	}
}

func TestEmpty(t *testing.T) {
	tree := Build(nil, classicalBuilder)
	require.Equal(t, uint64(0), tree.Size())
	require.Equal(t, uint64(0), tree.Rank('a', 0))
	require.Equal(t, uint64(0), tree.Rank('a', 10))
}

func TestFullByteAlphabet(t *testing.T) {
	data := make([]byte, 256)
	for i := range data {
		data[i] = byte(i)
	}
	tree := Build(data, classicalBuilder)
	for i, want := range data {
		require.Equal(t, want, tree.Access(uint64(i)))
		require.Equal(t, uint64(1), tree.Rank(want, uint64(i+1)))
		require.Equal(t, uint64(0), tree.Rank(want, uint64(i)))
	}
}

func TestFromLevelsRoundTrip(t *testing.T) {
	data := []byte("mississippi\x00")
	tree := Build(data, classicalBuilder)
	var dicts [levels]RankDict
	for i := 0; i < levels; i++ {
		dicts[i] = tree.Level(i)
	}
	restored := FromLevels(tree.Size(), dicts)
	for i, want := range data {
		require.Equal(t, want, restored.Access(uint64(i)))
	}
}
