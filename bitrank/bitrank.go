// Package bitrank implements the classical two-level succinct rank
// dictionary (C1): a packed bit sequence augmented with absolute counters
// at super-block boundaries and relative counters at sub-block boundaries,
// giving O(1) rank1/rank0 queries with roughly 7.8% space overhead at the
// default block sizes.
//
// The layout follows this module's convention for small, value-owning
// succinct structures: a struct holding flat slices, built once, read
// many times, safe for concurrent read-only use.
package bitrank

import (
	"fmt"
	"math/bits"

	"github.com/Soham-Moholkar/csidx/errutil"
)

const (
	// DefaultSuperBlockBits is the default super-block period in bits.
	DefaultSuperBlockBits = 2048
	// DefaultSubBlockBits is the default sub-block period in bits.
	DefaultSubBlockBits = 256
)

// Dict is a classical (non-learned) bit-rank dictionary. The zero value is
// not usable; construct with Build or FromWords.
type Dict struct {
	n       uint64
	words   []uint64
	super   []uint32
	sub     []uint16
	superSz uint32
	subSz   uint32
	ones    uint64
}

// Validate checks the block-size constraints from the configuration surface:
// superBlockBits must be a positive multiple of subBlockBits, and
// subBlockBits must be a positive multiple of 64.
func Validate(superBlockBits, subBlockBits uint32) error {
	if subBlockBits == 0 || subBlockBits%64 != 0 {
		return errParam("sub_block_bits must be a positive multiple of 64, got %d", subBlockBits)
	}
	if superBlockBits == 0 || superBlockBits%subBlockBits != 0 {
		return errParam("super_block_bits must be a positive multiple of sub_block_bits, got %d (sub=%d)", superBlockBits, subBlockBits)
	}
	return nil
}

// Build packs bits (one bool per logical bit, length N) and computes the
// two-level rank index using the given block periods. Build is infallible
// for any bit sequence once the block sizes have passed Validate.
func Build(b []bool, superBlockBits, subBlockBits uint32) *Dict {
	if err := Validate(superBlockBits, subBlockBits); err != nil {
		errutil.Bug("bitrank: %v", err)
	}
	n := uint64(len(b))
	words := make([]uint64, (n+63)/64)
	for i, bit := range b {
		if bit {
			words[i/64] |= 1 << (uint(i) % 64)
		}
	}
	return FromWords(words, n, superBlockBits, subBlockBits)
}

// FromWords builds a Dict over already-packed 64-bit words (LSB-first
// within each word), given the logical bit count n. This is the path used
// when a bit plane arrives pre-packed: by Build after packing, and by the
// format reader when it decodes a wavelet level.
func FromWords(words []uint64, n uint64, superBlockBits, subBlockBits uint32) *Dict {
	if err := Validate(superBlockBits, subBlockBits); err != nil {
		errutil.Bug("bitrank: %v", err)
	}
	d := &Dict{
		n:       n,
		words:   words,
		superSz: superBlockBits,
		subSz:   subBlockBits,
	}
	d.buildIndex()
	return d
}

func (d *Dict) buildIndex() {
	numSuper := int((d.n + uint64(d.superSz) - 1) / uint64(d.superSz))
	numSub := int((d.n + uint64(d.subSz) - 1) / uint64(d.subSz))
	if d.n == 0 {
		numSuper, numSub = 0, 0
	}
	d.super = make([]uint32, numSuper+1)
	d.sub = make([]uint16, numSub+1)

	subPerSuper := uint64(d.superSz) / uint64(d.subSz)
	var running uint64
	var runningSinceSuper uint64
	subIdx := 0
	for pos := uint64(0); pos < d.n; pos += uint64(d.subSz) {
		if subIdx%int(subPerSuper) == 0 {
			runningSinceSuper = 0
			d.super[subIdx/int(subPerSuper)] = uint32(running)
		}
		d.sub[subIdx] = uint16(runningSinceSuper)
		end := pos + uint64(d.subSz)
		if end > d.n {
			end = d.n
		}
		c := rangePopcount(d.words, pos, end)
		running += c
		runningSinceSuper += c
		subIdx++
	}
	d.ones = running
}

// rangePopcount counts set bits of words in the half-open bit range [lo, hi).
func rangePopcount(words []uint64, lo, hi uint64) uint64 {
	if lo >= hi {
		return 0
	}
	loWord, hiWord := lo/64, (hi-1)/64
	var total uint64
	for w := loWord; w <= hiWord; w++ {
		if w >= uint64(len(words)) {
			break
		}
		word := words[w]
		wordStart := w * 64
		if wordStart < lo {
			word &^= (uint64(1) << (lo - wordStart)) - 1
		}
		if wordStart+64 > hi {
			keep := hi - wordStart
			if keep < 64 {
				word &= (uint64(1) << keep) - 1
			}
		}
		total += uint64(bits.OnesCount64(word))
	}
	return total
}

// Size returns the logical number of bits, N.
func (d *Dict) Size() uint64 { return d.n }

// Get returns the raw bit at position i, or false if i is out of range.
func (d *Dict) Get(i uint64) bool {
	if i >= d.n {
		return false
	}
	return (d.words[i/64]>>(i%64))&1 == 1
}

// Rank1 returns the number of set bits in [0, i). Out-of-range i is clamped
// to N, matching the contract rank1(0)=0, rank1(i>=N)=popcount(B).
func (d *Dict) Rank1(i uint64) uint64 {
	if i >= d.n {
		return d.ones
	}
	if i == 0 {
		return 0
	}
	subIdx := i / uint64(d.subSz)
	superIdx := subIdx / (uint64(d.superSz) / uint64(d.subSz))
	base := uint64(d.super[superIdx]) + uint64(d.sub[subIdx])
	subStart := subIdx * uint64(d.subSz)
	return base + rangePopcount(d.words, subStart, i)
}

// Rank0 returns the number of zero bits in [0, i).
func (d *Dict) Rank0(i uint64) uint64 {
	if i > d.n {
		i = d.n
	}
	return i - d.Rank1(i)
}

func errParam(format string, args ...any) error {
	return fmt.Errorf(format, args...)
}

// Export exposes the packed words and block-size parameters needed to
// serialize this dictionary. The super/sub counter tables are not
// exported: FromWords recomputes them deterministically from words and
// the block sizes, so the format only needs to persist the smaller input.
func (d *Dict) Export() (words []uint64, n uint64, superBlockBits, subBlockBits uint32) {
	return d.words, d.n, d.superSz, d.subSz
}
