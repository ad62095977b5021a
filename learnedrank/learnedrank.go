// Package learnedrank implements the experimental "learned" rank
// dictionary (C2): a drop-in replacement for bitrank.Dict that predicts
// rank1 from a single linear model fit to coarse samples, corrects the
// prediction with a per-micro-block residual, and finishes with a
// popcount over the bits from the micro-block start up to the query index.
//
// The contract is exact equivalence with bitrank.Dict, not an
// approximation: every rank1 call must return the same integer the
// classical dictionary would, for every index. The "learned" part is a
// speed/space trade over how that integer is computed, not what it is.
package learnedrank

import (
	"fmt"
	"math/bits"

	"github.com/Soham-Moholkar/csidx/errutil"
)

const (
	// DefaultCoarseStride is the default coarse sampling period in bits (S).
	DefaultCoarseStride = 512
	// DefaultMicroStride is the default micro residual period in bits (s).
	DefaultMicroStride = 32
	// DefaultTailPopcountR is the default tail word bound R. It is stored
	// and serialized with each dictionary, but Rank1 does not read it: the
	// tail popcount always scans every word of a span shorter than the
	// micro stride.
	DefaultTailPopcountR = 2
)

// model is a single-segment linear fit y = a*x + b, mirroring the
// simplified single-segment PGM this structure is grounded on: production
// variants would use a greedy multi-segment fit with an epsilon bound, but
// a single segment is sufficient to satisfy the exact-equivalence contract
// since residuals absorb all error regardless of fit quality.
type model struct {
	a, b float64
}

func fitModel(xs, ys []uint64) model {
	n := len(xs)
	if n == 0 {
		return model{}
	}
	var sumX, sumY, sumXY, sumX2 float64
	for i := 0; i < n; i++ {
		x, y := float64(xs[i]), float64(ys[i])
		sumX += x
		sumY += y
		sumXY += x * y
		sumX2 += x * x
	}
	nf := float64(n)
	denom := nf*sumX2 - sumX*sumX
	if denom < 1e-9 && denom > -1e-9 {
		return model{a: 0, b: sumY / nf}
	}
	a := (nf*sumXY - sumX*sumY) / denom
	b := (sumY - a*sumX) / nf
	return model{a: a, b: b}
}

func (m model) predict(x uint64) int64 {
	y := m.a*float64(x) + m.b
	if y < 0 {
		return int64(y - 0.5)
	}
	return int64(y + 0.5)
}

// Dict is the learned bit-rank dictionary. Its Get/Size/Rank0 behave
// identically to bitrank.Dict; only Rank1's evaluation strategy differs.
type Dict struct {
	n     uint64
	words []uint64
	ones  uint64

	coarse    uint32 // S
	micro     uint32 // s
	tailBound uint32 // R, in words

	m         model
	residuals []int32 // indexed by coarseIdx*colsPerCoarse + microIdx
	cols      uint64  // S / s
}

// Validate checks the constraints from the configuration surface: micro
// must be a positive divisor of coarse, and both must be positive.
func Validate(coarse, micro uint32) error {
	if micro == 0 || coarse == 0 || coarse%micro != 0 {
		return errParam("coarse_stride_S (%d) must be a positive multiple of micro_stride_s (%d)", coarse, micro)
	}
	return nil
}

// Build constructs a learned rank dictionary from unpacked bits.
func Build(b []bool, coarse, micro, tailBoundWords uint32) *Dict {
	words := make([]uint64, (len(b)+63)/64)
	for i, bit := range b {
		if bit {
			words[i/64] |= 1 << (uint(i) % 64)
		}
	}
	return FromWords(words, uint64(len(b)), coarse, micro, tailBoundWords)
}

// FromWords builds a learned rank dictionary over pre-packed words.
func FromWords(words []uint64, n uint64, coarse, micro, tailBoundWords uint32) *Dict {
	if err := Validate(coarse, micro); err != nil {
		errutil.Bug("learnedrank: %v", err)
	}
	d := &Dict{
		n:         n,
		words:     words,
		coarse:    coarse,
		micro:     micro,
		tailBound: tailBoundWords,
		cols:      uint64(coarse / micro),
	}
	d.build()
	return d
}

func (d *Dict) build() {
	if d.n == 0 {
		return
	}
	numCoarse := (d.n + uint64(d.coarse) - 1) / uint64(d.coarse)
	xs := make([]uint64, 0, numCoarse+1)
	ys := make([]uint64, 0, numCoarse+1)

	var running uint64
	for j := uint64(0); j <= numCoarse; j++ {
		pos := j * uint64(d.coarse)
		if pos > d.n {
			pos = d.n
		}
		xs = append(xs, pos)
		ys = append(ys, running)
		if pos >= d.n {
			break
		}
		next := pos + uint64(d.coarse)
		if next > d.n {
			next = d.n
		}
		running += rangePopcount(d.words, pos, next)
	}
	d.ones = running + rangePopcount(d.words, xs[len(xs)-1], d.n)
	d.m = fitModel(xs, ys)

	d.residuals = make([]int32, numCoarse*d.cols)
	running = 0
	for j := uint64(0); j < numCoarse; j++ {
		coarseStart := j * uint64(d.coarse)
		pred := d.m.predict(coarseStart)
		var local uint64
		for mIdx := uint64(0); mIdx < d.cols; mIdx++ {
			micStart := coarseStart + mIdx*uint64(d.micro)
			if micStart >= d.n {
				break
			}
			trueRank := int64(running + local)
			d.residuals[j*d.cols+mIdx] = int32(trueRank - pred)
			micEnd := micStart + uint64(d.micro)
			if micEnd > coarseStart+uint64(d.coarse) {
				micEnd = coarseStart + uint64(d.coarse)
			}
			if micEnd > d.n {
				micEnd = d.n
			}
			local += rangePopcount(d.words, micStart, micEnd)
		}
		running += local
	}
}

// Size returns the logical bit count N.
func (d *Dict) Size() uint64 { return d.n }

// Get returns the raw bit at position i.
func (d *Dict) Get(i uint64) bool {
	if i >= d.n {
		return false
	}
	return (d.words[i/64]>>(i%64))&1 == 1
}

// Rank1 returns the number of set bits in [0, i), computed from the
// linear model, a residual correction, and a bounded-touch tail popcount.
// Exact-equivalence with bitrank.Dict.Rank1 is the defining contract.
func (d *Dict) Rank1(i uint64) uint64 {
	if i == 0 {
		return 0
	}
	if i >= d.n {
		return d.ones
	}

	coarseIdx := i / uint64(d.coarse)
	coarsePos := coarseIdx * uint64(d.coarse)
	pred := d.m.predict(coarsePos)

	offset := i - coarsePos
	microIdx := offset / uint64(d.micro)

	var corr int64
	if len(d.residuals) > 0 {
		ridx := coarseIdx*d.cols + microIdx
		if ridx < uint64(len(d.residuals)) {
			corr = int64(d.residuals[ridx])
		}
	}

	// Bounded-touch guarantee: micro stride is chosen so the tail span is
	// normally <= tailBound words. If a pathological configuration makes
	// the span wider, rangePopcount still scans it — correctness holds,
	// only the O(R) touch bound is violated; correctness never depends on it.
	microStart := coarsePos + microIdx*uint64(d.micro)
	tail := rangePopcount(d.words, microStart, i)

	result := pred + corr + int64(tail)
	if result < 0 {
		return 0
	}
	return uint64(result)
}

// Rank0 returns the number of zero bits in [0, i).
func (d *Dict) Rank0(i uint64) uint64 {
	if i > d.n {
		i = d.n
	}
	return i - d.Rank1(i)
}

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

func errParam(format string, args ...any) error {
	return fmt.Errorf(format, args...)
}

// Export exposes the packed words and stride parameters needed to
// serialize this dictionary. The fitted model and residuals are not
// exported: FromWords rederives them deterministically from words and
// the strides, so the format only needs to persist the smaller input.
func (d *Dict) Export() (words []uint64, n uint64, coarse, micro, tailBound uint32) {
	return d.words, d.n, d.coarse, d.micro, d.tailBound
}
