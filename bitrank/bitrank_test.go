package bitrank

import (
	"math/rand"
	"testing"

	"github.com/hillbig/rsdic"
	"github.com/stretchr/testify/require"
)

func TestValidate(t *testing.T) {
	require.NoError(t, Validate(2048, 256))
	require.Error(t, Validate(2048, 0))
	require.Error(t, Validate(2048, 100)) // not a multiple of 64
	require.Error(t, Validate(0, 256))
	require.Error(t, Validate(300, 256)) // not a multiple of subBlockBits
}

func TestBuildEmpty(t *testing.T) {
	d := Build(nil, DefaultSuperBlockBits, DefaultSubBlockBits)
	require.Equal(t, uint64(0), d.Size())
	require.Equal(t, uint64(0), d.Rank1(0))
	require.Equal(t, uint64(0), d.Rank0(0))
	require.False(t, d.Get(0))
}

func TestRankAgainstNaive(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	for _, n := range []int{0, 1, 63, 64, 65, 1000, 4097} {
		bits := make([]bool, n)
		for i := range bits {
			bits[i] = rng.Intn(2) == 1
		}
		d := Build(bits, DefaultSuperBlockBits, DefaultSubBlockBits)
		require.Equal(t, uint64(n), d.Size())

		var naiveOnes uint64
		for i := 0; i <= n; i++ {
			require.Equal(t, naiveOnes, d.Rank1(uint64(i)), "n=%d i=%d", n, i)
			require.Equal(t, uint64(i)-naiveOnes, d.Rank0(uint64(i)), "n=%d i=%d", n, i)
			if i < n {
				require.Equal(t, bits[i], d.Get(uint64(i)))
				if bits[i] {
					naiveOnes++
				}
			}
		}
		// out-of-range i clamps to N
		require.Equal(t, naiveOnes, d.Rank1(uint64(n)+10))
	}
}

// TestRankAgainstRSDic cross-checks this implementation against an
// independent third-party rank/select dictionary rather than a hand-rolled
// oracle, for the same random bit sequences.
func TestRankAgainstRSDic(t *testing.T) {
	rng := rand.New(rand.NewSource(2))
	for _, n := range []int{0, 100, 1000, 5000} {
		bits := make([]bool, n)
		rs := rsdic.New()
		for i := range bits {
			bits[i] = rng.Intn(2) == 1
			rs.PushBack(bits[i])
		}
		d := Build(bits, DefaultSuperBlockBits, DefaultSubBlockBits)
		for i := 0; i <= n; i += 7 {
			require.Equal(t, rs.Rank(uint64(i), true), d.Rank1(uint64(i)), "n=%d i=%d", n, i)
		}
	}
}

func TestFromWordsMatchesBuild(t *testing.T) {
	n := 300
	bits := make([]bool, n)
	rng := rand.New(rand.NewSource(3))
	for i := range bits {
		bits[i] = rng.Intn(2) == 1
	}
	words := make([]uint64, (n+63)/64)
	for i, b := range bits {
		if b {
			words[i/64] |= 1 << (uint(i) % 64)
		}
	}
	viaBuild := Build(bits, DefaultSuperBlockBits, DefaultSubBlockBits)
	viaWords := FromWords(words, uint64(n), DefaultSuperBlockBits, DefaultSubBlockBits)
	for i := 0; i <= n; i++ {
		require.Equal(t, viaBuild.Rank1(uint64(i)), viaWords.Rank1(uint64(i)))
	}
}

func TestExportRoundTrip(t *testing.T) {
	bits := []bool{true, false, true, true, false, false, true}
	d := Build(bits, 128, 64)
	words, n, superBits, subBits := d.Export()
	restored := FromWords(words, n, superBits, subBits)
	for i := 0; i <= len(bits); i++ {
		require.Equal(t, d.Rank1(uint64(i)), restored.Rank1(uint64(i)))
	}
}

func TestBuildPanicsOnBadBlockSizes(t *testing.T) {
	require.Panics(t, func() { Build([]bool{true}, 100, 100) })
}
