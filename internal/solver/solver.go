package solver

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/rybkr/orepack/internal/board"
)

var ErrTimeout = errors.New("solver timeout exceeded")

// State is the lifecycle state of a Solver.
type State int

const (
	Running State = iota
	Exhausted
)

func (s State) String() string {
	if s == Exhausted {
		return "exhausted"
	}
	return "running"
}

// Result is the outcome of a search.
type Result struct {
	RunID    string
	Best     *board.Board // nil if no miner could be placed
	Score    int
	Miners   int
	Duration time.Duration
	Stats    Stats
	State    State
}

// Solver runs a depth-first search for the miner placement covering the most
// ore while keeping every miner connected to the exit.
type Solver struct {
	initial  *board.Board
	options  *Options
	moves    MoveGenerator
	reporter Reporter
	registry *Registry
	log      zerolog.Logger
	runID    string

	best  bestRecord
	start time.Time
}

// New creates a solver for the given board.
func New(b *board.Board, options *Options) *Solver {
	if options == nil {
		options = DefaultOptions()
	}

	s := &Solver{
		initial:  b,
		options:  options,
		moves:    options.Moves,
		reporter: options.Reporter,
		registry: NewRegistry(),
		runID:    uuid.NewString(),
	}
	if s.moves == nil {
		s.moves = OreMoves{}
	}
	if s.reporter == nil {
		s.reporter = nopReporter{}
	}
	s.log = options.Logger.With().Str("run_id", s.runID).Logger()

	return s
}

// RunID returns the identifier attached to this solver's logs and result.
func (s *Solver) RunID() string {
	return s.runID
}

// Registry returns the explored-state registry of this solver.
func (s *Solver) Registry() *Registry {
	return s.registry
}

// Solve explores the placement space until the frontier is empty.
// If the context ends or the timeout passes first, Solve returns the best
// result found so far together with ErrTimeout or the context's error.
//
// Each call starts from the initial board with an empty registry and no best
// record. Calls must not overlap.
func (s *Solver) Solve(ctx context.Context) (*Result, error) {
	ctx, cancel := s.makeContext(ctx)
	defer cancel()

	s.reset()

	workers := min(max(s.options.Workers, 1), MaxWorkers)
	s.start = time.Now()
	s.log.Info().
		Int("width", s.initial.Width()).
		Int("height", s.initial.Height()).
		Int("ores", len(s.initial.Ores())).
		Int("workers", workers).
		Msg("search-start")

	var (
		stats Stats
		err   error
	)
	if workers == 1 {
		stats, err = s.search(ctx)
	} else {
		stats, err = s.searchParallel(ctx, workers)
	}

	res := s.result(stats)
	if err == nil {
		res.State = Exhausted
	} else if errors.Is(err, context.DeadlineExceeded) {
		err = ErrTimeout
	}

	s.log.Info().
		Int("score", res.Score).
		Int("miners", res.Miners).
		Int("expanded", stats.Expanded).
		Int("registered", stats.Registered).
		Dur("duration", res.Duration).
		Stringer("state", res.State).
		Msg("search-done")
	s.reporter.Finished(res)

	return res, err
}

// search is the sequential driver: a LIFO frontier seeded with the initial
// board, expanded until empty. It returns the context error if the context
// ended with boards still on the frontier.
func (s *Solver) search(ctx context.Context) (Stats, error) {
	var stats Stats
	frontier := []*board.Board{s.initial}
	push := func(b *board.Board) { frontier = append(frontier, b) }

	for len(frontier) > 0 {
		if err := ctx.Err(); err != nil {
			return stats, err
		}

		b := frontier[len(frontier)-1]
		frontier[len(frontier)-1] = nil
		frontier = frontier[:len(frontier)-1]

		s.expand(b, &stats, push)
		s.logProgress(stats.Expanded, len(frontier))
	}

	return stats, nil
}

// expand tries every candidate move on b. Boards that are new and connected
// are pushed and then offered to the best-found record. Boards failing the
// path check stay registered so they are never tried again.
func (s *Solver) expand(b *board.Board, stats *Stats, push func(*board.Board)) {
	stats.Expanded++

	for _, p := range s.moves.Moves(b) {
		stats.Attempted++

		next := b.Place(p.X, p.Y)
		if next == nil {
			stats.Rejected++
			continue
		}
		if s.options.RequireGain && next.Score() == b.Score() {
			stats.Rejected++
			continue
		}
		if !s.registry.TryRegister(next) {
			stats.Duplicates++
			continue
		}
		if !next.CheckPath() {
			stats.Disconnected++
			continue
		}

		stats.Accepted++
		push(next)
		s.offer(next)
	}
}

// offer replaces the best-found record with b if b scores higher, or scores
// the same with no more miners.
func (s *Solver) offer(b *board.Board) {
	s.best.mu.Lock()
	defer s.best.mu.Unlock()

	score, miners := b.Score(), b.MinerCount()
	if score < s.best.score || (score == s.best.score && miners > s.best.miners) {
		return
	}

	s.best.score = score
	s.best.miners = miners
	s.best.board = b
	s.best.improvements++

	rec := Record{Score: score, Miners: miners, Board: b, Elapsed: time.Since(s.start)}
	s.log.Debug().Int("score", score).Int("miners", miners).Uint64("hash", b.Hash()).Msg("best-found")
	s.reporter.Improved(rec)
}

// Best returns the current best-found record. It is safe to call while a
// search is running.
func (s *Solver) Best() (Record, bool) {
	s.best.mu.Lock()
	defer s.best.mu.Unlock()
	if s.best.board == nil {
		return Record{}, false
	}
	return Record{
		Score:   s.best.score,
		Miners:  s.best.miners,
		Board:   s.best.board,
		Elapsed: time.Since(s.start),
	}, true
}

// reset clears what a previous Solve left behind.
func (s *Solver) reset() {
	s.registry = NewRegistry()
	s.best.mu.Lock()
	s.best.score, s.best.miners, s.best.improvements = 0, 0, 0
	s.best.board = nil
	s.best.mu.Unlock()
}

func (s *Solver) result(stats Stats) *Result {
	s.best.mu.Lock()
	defer s.best.mu.Unlock()

	stats.Improvements = s.best.improvements
	stats.Registered = s.registry.Len()
	return &Result{
		RunID:    s.runID,
		Best:     s.best.board,
		Score:    s.best.score,
		Miners:   s.best.miners,
		Duration: time.Since(s.start),
		Stats:    stats,
		State:    Running,
	}
}

func (s *Solver) logProgress(expanded, frontier int) {
	if s.options.LogEvery <= 0 || expanded%s.options.LogEvery != 0 {
		return
	}
	s.log.Debug().
		Int("expanded", expanded).
		Int("frontier", frontier).
		Int("registered", s.registry.Len()).
		Msg("search-progress")
}

// makeContext applies the configured timeout, if any.
func (s *Solver) makeContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.options.Timeout > 0 {
		return context.WithTimeout(ctx, s.options.Timeout)
	}
	return context.WithCancel(ctx)
}

// bestRecord is the best board found so far. Both counters start at zero.
type bestRecord struct {
	mu           sync.Mutex
	score        int
	miners       int
	board        *board.Board
	improvements int
}
