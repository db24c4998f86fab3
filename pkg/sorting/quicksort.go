// Package sorting provides an in-place partition-exchange sort whose stack
// depth is bounded by log2(n), whatever the input order.
package sorting

// Stats describes one QuickSort run
type Stats struct {
	// MaxDepth is the deepest pending-range stack reached
	MaxDepth int
	// Partitions is the number of partition passes
	Partitions int
}

type span struct{ lo, hi int }

// QuickSort sorts items in place using Hoare partitioning around the middle
// element. The smaller side of each partition is sorted first and the larger
// one is pushed, so the explicit stack never holds more than log2(n) ranges.
// The sort is not stable; callers needing determinism must make cmp total.
func QuickSort[T any](items []T, cmp func(a, b T) int) Stats {
	var stats Stats
	if len(items) < 2 {
		return stats
	}

	stack := make([]span, 0, 64)
	lo, hi := 0, len(items)-1
	for {
		for hi-lo > 0 {
			if hi-lo < 12 {
				insertionSort(items[lo:hi+1], cmp)
				break
			}

			stats.Partitions++
			j := partition(items, lo, hi, cmp)

			// [lo, j] and [j+1, hi]: continue with the smaller one
			if j-lo < hi-j-1 {
				stack = append(stack, span{j + 1, hi})
				hi = j
			} else {
				stack = append(stack, span{lo, j})
				lo = j + 1
			}
			if len(stack) > stats.MaxDepth {
				stats.MaxDepth = len(stack)
			}
		}

		if len(stack) == 0 {
			return stats
		}
		top := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		lo, hi = top.lo, top.hi
	}
}

// partition rearranges items[lo..hi] so that every element of [lo, j] is
// <= every element of [j+1, hi] and returns j. lo <= j < hi.
func partition[T any](items []T, lo, hi int, cmp func(a, b T) int) int {
	pivot := items[lo+(hi-lo)/2]
	i, j := lo-1, hi+1
	for {
		for {
			i++
			if cmp(items[i], pivot) >= 0 {
				break
			}
		}
		for {
			j--
			if cmp(items[j], pivot) <= 0 {
				break
			}
		}
		if i >= j {
			return j
		}
		items[i], items[j] = items[j], items[i]
	}
}

func insertionSort[T any](items []T, cmp func(a, b T) int) {
	for i := 1; i < len(items); i++ {
		for j := i; j > 0 && cmp(items[j], items[j-1]) < 0; j-- {
			items[j], items[j-1] = items[j-1], items[j]
		}
	}
}
