package lmm

import (
	"context"
	"math"
	"sync"
	"sync/atomic"

	"github.com/timpalpant/lmm/multiset"
	"github.com/timpalpant/lmm/strategy"
)

const notFound = math.MaxUint64

type rowTask struct {
	seq    uint64
	counts []int
}

type hit struct {
	seq      uint64
	row, col strategy.Mixed
}

// runParallel partitions the row multisets across a pool of workers, each
// running the full inner loop over column multisets for its row.
//
// In deterministic mode the hit with the lowest row sequence number wins:
// rows after it are skipped or aborted, rows before it run to completion,
// so the answer matches runSequential. Otherwise the first hit stops all
// workers.
func (s *searcher) runParallel(ctx context.Context) (*Equilibrium, error) {
	rows, err := multiset.New(s.n, s.k)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var (
		best   uint64 = notFound
		mu     sync.Mutex
		result *hit
		retErr error
		wg     sync.WaitGroup
	)

	superseded := func(seq uint64) bool {
		b := atomic.LoadUint64(&best)
		if s.opts.deterministic {
			return b < seq
		}
		return b != notFound
	}

	record := func(h *hit) {
		mu.Lock()
		defer mu.Unlock()
		if result != nil && (!s.opts.deterministic || result.seq < h.seq) {
			return
		}
		result = h
		atomic.StoreUint64(&best, h.seq)
	}

	fail := func(err error) {
		mu.Lock()
		defer mu.Unlock()
		if retErr == nil {
			retErr = err
		}
		cancel()
	}

	tasks := make(chan rowTask, s.opts.workers)
	s.transition(enumerating)
	for i := 0; i < s.opts.workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ws := s.newWorkspace()
			for task := range tasks {
				seq := task.seq
				if superseded(seq) {
					freeCounts(task.counts)
					continue
				}

				ok, err := s.searchRow(ctx, task.counts, ws, func() bool {
					return superseded(seq)
				})
				freeCounts(task.counts)
				if err != nil {
					fail(err)
					continue
				}

				if ok {
					record(&hit{
						seq: seq,
						row: append(strategy.Mixed(nil), ws.row...),
						col: append(strategy.Mixed(nil), ws.col...),
					})
				}
			}
		}()
	}

dispatch:
	for seq := uint64(0); rows.Next(); seq++ {
		if superseded(seq) {
			break
		}

		task := rowTask{seq: seq, counts: allocCounts(rows.Counts())}
		select {
		case tasks <- task:
		case <-ctx.Done():
			freeCounts(task.counts)
			break dispatch
		}
	}
	close(tasks)
	wg.Wait()

	if retErr != nil {
		return nil, retErr
	}
	if err := ctx.Err(); err != nil && result == nil {
		return nil, err
	}

	if result == nil {
		s.transition(exhausted)
		return nil, s.exhaustedError()
	}

	s.transition(found)
	s.opts.logger.Debugf("equilibrium found at row strategy #%d", result.seq)
	return s.newEquilibrium(result.row, result.col), nil
}
