// Package sufsort builds the suffix array and BWT of a text (C5).
//
// BuildSA uses prefix-doubling rank sort: O(n log^2 n) time, O(n) extra
// space for the rank/temp-rank pair reused in place between doubling
// rounds. This is the production path. NaiveSA, an O(n^2 log n)
// comparator sort, exists purely as an independent correctness oracle
// for tests.
package sufsort

import (
	"bytes"
	"sort"
)

// BuildSA returns the suffix array of t: SA[i] is the starting position of
// the i-th suffix in lexicographic order.
func BuildSA(t []byte) []uint32 {
	n := len(t)
	if n == 0 {
		return []uint32{}
	}
	sa := make([]int, n)
	rank := make([]int, n)
	tmp := make([]int, n)
	for i := 0; i < n; i++ {
		sa[i] = i
		rank[i] = int(t[i])
	}

	less := func(k int, a, b int) bool {
		if rank[a] != rank[b] {
			return rank[a] < rank[b]
		}
		ra, rb := -1, -1
		if a+k < n {
			ra = rank[a+k]
		}
		if b+k < n {
			rb = rank[b+k]
		}
		return ra < rb
	}

	for k := 1; ; k *= 2 {
		kk := k
		sort.Slice(sa, func(i, j int) bool { return less(kk, sa[i], sa[j]) })

		tmp[sa[0]] = 0
		for i := 1; i < n; i++ {
			tmp[sa[i]] = tmp[sa[i-1]]
			if less(kk, sa[i-1], sa[i]) {
				tmp[sa[i]]++
			}
		}
		copy(rank, tmp)

		if rank[sa[n-1]] == n-1 || k >= n {
			break
		}
	}

	result := make([]uint32, n)
	for i, v := range sa {
		result[i] = uint32(v)
	}
	return result
}

// NaiveSA sorts {0,...,n-1} by suffix comparator directly, O(n^2 log n).
// Used only as a test oracle for BuildSA — never on production-sized texts.
func NaiveSA(t []byte) []uint32 {
	n := len(t)
	idx := make([]int, n)
	for i := range idx {
		idx[i] = i
	}
	sort.Slice(idx, func(i, j int) bool {
		return bytes.Compare(t[idx[i]:], t[idx[j]:]) < 0
	})
	result := make([]uint32, n)
	for i, v := range idx {
		result[i] = uint32(v)
	}
	return result
}

// BuildBWT computes B[i] = T[SA[i]-1], or T[n-1] when SA[i] == 0.
func BuildBWT(t []byte, sa []uint32) []byte {
	n := len(t)
	b := make([]byte, n)
	for i, s := range sa {
		if s == 0 {
			b[i] = t[n-1]
		} else {
			b[i] = t[s-1]
		}
	}
	return b
}
