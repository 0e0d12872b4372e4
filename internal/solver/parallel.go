package solver

import (
	"context"
	"sync"
	"sync/atomic"

	"golang.org/x/sync/errgroup"

	"github.com/rybkr/orepack/internal/board"
)

// sharedFrontier is a LIFO stack of boards shared by several workers.
// The search is exhausted once the stack is empty and no worker is expanding
// a board, since only expanding workers can push new ones.
type sharedFrontier struct {
	mu        sync.Mutex
	cond      *sync.Cond
	items     []*board.Board
	busy      int
	closed    bool
	exhausted bool
}

func newSharedFrontier(seed *board.Board) *sharedFrontier {
	f := &sharedFrontier{items: []*board.Board{seed}}
	f.cond = sync.NewCond(&f.mu)
	return f
}

// pop blocks until a board is available and marks the caller busy.
// It returns false once the search is exhausted or the frontier was closed.
func (f *sharedFrontier) pop() (*board.Board, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()

	for len(f.items) == 0 && f.busy > 0 && !f.closed {
		f.cond.Wait()
	}
	if len(f.items) == 0 && f.busy == 0 {
		f.exhausted = true
	}
	if f.closed || f.exhausted {
		f.closed = true
		f.cond.Broadcast()
		return nil, false
	}

	n := len(f.items) - 1
	b := f.items[n]
	f.items[n] = nil
	f.items = f.items[:n]
	f.busy++
	return b, true
}

func (f *sharedFrontier) push(b *board.Board) {
	f.mu.Lock()
	f.items = append(f.items, b)
	f.mu.Unlock()
	f.cond.Signal()
}

// done marks the end of one expansion.
func (f *sharedFrontier) done() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.busy--
	if f.busy == 0 && len(f.items) == 0 {
		f.cond.Broadcast()
	}
}

// close wakes every waiting worker and makes further pops fail.
func (f *sharedFrontier) close() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed = true
	f.cond.Broadcast()
}

// drained reports whether the search ran out of boards, as opposed to being
// closed with boards left.
func (f *sharedFrontier) drained() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.exhausted
}

func (f *sharedFrontier) len() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.items)
}

// searchParallel shards the frontier across workers. The registry makes
// register-then-check atomic per candidate and the best record has its own
// lock, so each grid is still explored at most once.
// It returns nil once the frontier drained, or the context error that closed it.
func (s *Solver) searchParallel(ctx context.Context, workers int) (Stats, error) {
	g, gctx := errgroup.WithContext(ctx)
	frontier := newSharedFrontier(s.initial)
	stop := context.AfterFunc(gctx, frontier.close)
	defer stop()

	var (
		mu       sync.Mutex
		total    Stats
		expanded atomic.Int64
	)

	for w := range workers {
		g.Go(func() error {
			var stats Stats
			defer func() {
				s.log.Debug().Int("worker", w).Int("expanded", stats.Expanded).Msg("worker-done")
				mu.Lock()
				total.add(stats)
				mu.Unlock()
			}()

			for {
				b, ok := frontier.pop()
				if !ok {
					break
				}
				s.expand(b, &stats, frontier.push)
				frontier.done()

				n := int(expanded.Add(1))
				if s.options.LogEvery > 0 && n%s.options.LogEvery == 0 {
					s.logProgress(n, frontier.len())
				}
			}

			if frontier.drained() {
				return nil
			}
			return ctx.Err()
		})
	}
	err := g.Wait()
	// A worker closed out early may not have seen the last expansion drain
	// the frontier.
	if frontier.drained() {
		err = nil
	}

	return total, err
}
