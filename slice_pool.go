package lmm

import (
	"sync"
)

var intSlicePool = sync.Pool{
	New: func() interface{} {
		return make([]int, 0)
	},
}

// allocCounts returns a copy of counts backed by a pooled slice.
func allocCounts(counts []int) []int {
	s := intSlicePool.Get().([]int)
	return append(s, counts...)
}

func freeCounts(s []int) {
	if cap(s) > 0 {
		intSlicePool.Put(s[:0])
	}
}
