package core

import "iter"

// Combinations yields every k-element subset of items in lexicographic
// index order. Each yielded slice is freshly allocated.
func Combinations(items []int, k int) iter.Seq[[]int] {
	return func(yield func([]int) bool) {
		n := len(items)
		if k < 0 || k > n {
			return
		}
		idx := make([]int, k)
		for i := range idx {
			idx[i] = i
		}
		for {
			c := make([]int, k)
			for i, j := range idx {
				c[i] = items[j]
			}
			if !yield(c) {
				return
			}
			i := k - 1
			for i >= 0 && idx[i] == i+n-k {
				i--
			}
			if i < 0 {
				return
			}
			idx[i]++
			for j := i + 1; j < k; j++ {
				idx[j] = idx[j-1] + 1
			}
		}
	}
}

// PowerSet yields every subset of items, smallest first, starting with the
// empty set.
func PowerSet(items []int) iter.Seq[[]int] {
	return func(yield func([]int) bool) {
		for size := 0; size <= len(items); size++ {
			for c := range Combinations(items, size) {
				if !yield(c) {
					return
				}
			}
		}
	}
}

// vertexRange returns [1..n].
func vertexRange(n int) []int {
	out := make([]int, n)
	for i := range out {
		out[i] = i + 1
	}
	return out
}
