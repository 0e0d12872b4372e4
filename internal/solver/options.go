package solver

import (
	"time"

	"github.com/rs/zerolog"
)

const (
	DefaultLogEvery = 100_000
	MaxWorkers      = 256
)

// Options configures a search run.
type Options struct {
	Workers     int           // Workers expanding the frontier; 1 runs the sequential driver
	Timeout     time.Duration // Timeout limits search time (0 = run to exhaustion)
	RequireGain bool          // RequireGain skips placements covering no ore; approximate
	LogEvery    int           // LogEvery emits a progress log line every N expansions (0 = never)

	// Moves produces candidate placements. nil means OreMoves.
	Moves MoveGenerator

	// Reporter receives best-found records and the final result. nil discards them.
	Reporter Reporter

	// Logger receives structured progress logs. The zero value discards them.
	Logger zerolog.Logger
}

// DefaultOptions returns sequential, exhaustive search options.
func DefaultOptions() *Options {
	return &Options{
		Workers:     1,
		Timeout:     0,
		RequireGain: false,
		LogEvery:    DefaultLogEvery,
		Moves:       OreMoves{},
		Reporter:    nil,
		Logger:      zerolog.Nop(),
	}
}
