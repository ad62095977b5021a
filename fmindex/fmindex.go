// Package fmindex implements the FM search engine (C6): the C table,
// backward search, the LF mapping, and the three public query operations
// count, locate, and extract, composed from a wavelet tree (C3) and a
// sampled suffix array (C4).
package fmindex

import (
	"errors"

	"github.com/Soham-Moholkar/csidx/ssa"
	"github.com/Soham-Moholkar/csidx/wavelet"
)

// ErrLFOverran signals that an LF walk during Locate visited n or more
// rows without reaching a sampled position — an internal-consistency
// failure indicating a corrupted index or a text missing its sentinel.
var ErrLFOverran = errors.New("fmindex: LF walk overran text length (corrupted index or missing sentinel byte)")

// CTable is the 257-entry cumulative byte-frequency table: CTable[c] is
// the number of text bytes strictly less than c, with CTable[256] == n.
type CTable [257]uint64

// BuildCTable computes the C table for t.
func BuildCTable(t []byte) CTable {
	var freq [256]uint64
	for _, b := range t {
		freq[b]++
	}
	var c CTable
	var running uint64
	for i := 0; i < 256; i++ {
		c[i] = running
		running += freq[i]
	}
	c[256] = running
	return c
}

// Index is the immutable, read-only FM-index handle. Every query method is
// a pure function of an Index value: multiple goroutines may call Count,
// Locate, and Extract concurrently against the same Index with no
// synchronization.
type Index struct {
	n    uint64
	c    CTable
	w    *wavelet.Tree
	sa   *ssa.SSA
	text []byte // always retained; see New
}

// New assembles an Index from its already-built components. text must be
// the original indexed text (length n); csidx.Open supplies it from the
// mmap'd Text section, so extract is O(len) for every reopened index.
func New(n uint64, c CTable, w *wavelet.Tree, sa *ssa.SSA, text []byte) *Index {
	return &Index{n: n, c: c, w: w, sa: sa, text: text}
}

// N returns the indexed text length.
func (idx *Index) N() uint64 { return idx.n }

// CTable returns a copy of the C table.
func (idx *Index) CTable() CTable { return idx.c }

func (idx *Index) occ(c byte, i uint64) uint64 { return idx.w.Rank(c, i) }

func (idx *Index) bwtAt(i uint64) byte { return idx.w.Access(i) }

// LF is the last-to-first mapping: LF(i) = C[B[i]] + occ(B[i], i).
// Iterating LF from a row walks one character backward in the text.
func (idx *Index) LF(i uint64) uint64 {
	c := idx.bwtAt(i)
	return idx.c[c] + idx.occ(c, i)
}

// Count returns the number of occurrences of pattern in the text. Count is
// total: it never fails, and returns n for the empty pattern (when n>0),
// matching this implementation's chosen empty-pattern semantics.
func (idx *Index) Count(pattern []byte) uint64 {
	if len(pattern) == 0 {
		if idx.n > 0 {
			return idx.n
		}
		return 0
	}
	sp, ep, ok := idx.backwardSearch(pattern)
	if !ok {
		return 0
	}
	return ep - sp
}

// backwardSearch implements a two-state machine: Active(sp,ep) narrows
// one pattern byte at a time from the right; Empty is absorbing.
func (idx *Index) backwardSearch(pattern []byte) (sp, ep uint64, ok bool) {
	sp, ep = 0, idx.n
	for i := len(pattern) - 1; i >= 0; i-- {
		c := pattern[i]
		nsp := idx.c[c] + idx.occ(c, sp)
		nep := idx.c[c] + idx.occ(c, ep)
		if nsp >= nep {
			return 0, 0, false
		}
		sp, ep = nsp, nep
	}
	return sp, ep, true
}

// Locate returns up to limit positions in the text where pattern occurs.
// The order is the iteration order of the backward-search interval, not
// text order; callers needing sorted output must sort the result
// themselves. The only fatal condition is ErrLFOverran, which indicates a
// corrupted index or a text that never received its sentinel byte.
func (idx *Index) Locate(pattern []byte, limit int) ([]uint64, error) {
	if len(pattern) == 0 || limit <= 0 {
		return nil, nil
	}
	sp, ep, ok := idx.backwardSearch(pattern)
	if !ok {
		return nil, nil
	}
	out := make([]uint64, 0, minInt(int(ep-sp), limit))
	for i := sp; i < ep && len(out) < limit; i++ {
		bp, k := i, uint64(0)
		for bp%uint64(idx.sa.Stride) != 0 {
			bp = idx.LF(bp)
			k++
			if k >= idx.n {
				return nil, ErrLFOverran
			}
		}
		pos := (uint64(idx.sa.SampleAt(bp)) + k) % idx.n
		out = append(out, pos)
	}
	return out, nil
}

// Extract returns text[pos : min(pos+length, n)). The text is always
// retained by this implementation (see New), so extraction is O(length)
// regardless of whether the Index was freshly built or reloaded from an
// mmap'd file — no LF-walk reconstruction path is needed or provided.
func (idx *Index) Extract(pos, length uint64) []byte {
	if pos >= idx.n {
		return nil
	}
	end := pos + length
	if end > idx.n {
		end = idx.n
	}
	return idx.text[pos:end]
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}
