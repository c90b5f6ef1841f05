package lmm

import (
	"expvar"

	"github.com/hashicorp/golang-lru"

	"github.com/timpalpant/lmm/game"
	"github.com/timpalpant/lmm/strategy"
)

var (
	searches            = expvar.NewInt("lmm/searches")
	candidatesEvaluated = expvar.NewInt("lmm/candidates_evaluated")
	cacheHits           = expvar.NewInt("lmm/cache_hits")
	cacheMisses         = expvar.NewInt("lmm/cache_misses")
	cacheHitRate        = expvar.NewFloat("lmm/cache_hit_rate")
)

// payoffCache remembers the row player's payoff vector A·y for column
// strategies y. Many column tuples share the same multiplicities, and every
// row task revisits the same column strategies, so hits are common.
type payoffCache struct {
	payoffs *game.Matrix
	cache   *lru.Cache
}

func newPayoffCache(payoffs *game.Matrix, size int) *payoffCache {
	pc := &payoffCache{payoffs: payoffs}
	if size > 0 {
		cache, err := lru.New(size)
		if err != nil {
			panic(err)
		}
		pc.cache = cache
	}
	return pc
}

// get returns A·y for the k-uniform strategy y with the given counts.
// buf is used, and returned, when the cache is disabled.
func (pc *payoffCache) get(counts []int, y strategy.Mixed, buf []float64) []float64 {
	if pc.cache == nil {
		return pc.payoffs.MulVecTo(buf, y)
	}

	key := strategy.Key(counts)
	if cached, ok := pc.cache.Get(key); ok {
		cacheHits.Add(1)
		return cached.([]float64)
	}

	cacheMisses.Add(1)
	result := pc.payoffs.MulVec(y)
	pc.cache.Add(key, result)
	return result
}

func updateHitRate() {
	hits, misses := cacheHits.Value(), cacheMisses.Value()
	if hits+misses > 0 {
		cacheHitRate.Set(float64(hits) / float64(hits+misses))
	}
}
