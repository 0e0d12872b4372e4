package generator

import (
	"errors"
	"fmt"
	"math/rand"
	"time"

	"github.com/rybkr/orepack/internal/board"
	"github.com/rybkr/orepack/internal/solver"
)

const (
	MinSize       = 3
	MaxSize       = 64
	DefaultWidth  = 12
	DefaultHeight = 8

	// DefaultMaxAttempts bounds the retries of Generate when Options.MaxAttempts
	// is zero.
	DefaultMaxAttempts = 10_000

	// minOpenTiles is what one connected miner needs besides walls: its
	// footprint, the exit and one open tile on its border.
	minOpenTiles = 6
)

var (
	ErrGenerationFailed = errors.New("failed to generate a minable grid")
	ErrInvalidSize      = fmt.Errorf("width and height must be between %d and %d", MinSize, MaxSize)
	ErrInvalidCounts    = errors.New("ore, wall and patch counts do not fit the grid")
)

// Generator creates random input grids: ore patches grown from seed tiles,
// scattered walls and a single exit.
type Generator struct {
	options *Options
	rng     *rand.Rand
	accept  func(*board.Board) bool
}

// New creates a grid generator with the given options.
func New(options *Options) *Generator {
	if options == nil {
		options = DefaultOptions(DefaultWidth, DefaultHeight)
	}

	seed := options.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}

	return &Generator{
		options: options,
		rng:     rand.New(rand.NewSource(seed)),
		accept:  minable,
	}
}

// Generate creates a new grid and its initial board.
// With EnsureMinable set, it retries until at least one miner can be placed
// over ore and still reach the exit. It gives up with ErrGenerationFailed once
// the timeout passes or MaxAttempts grids were rejected, whichever is first.
func (g *Generator) Generate() (*board.Board, error) {
	if err := g.options.validate(); err != nil {
		return nil, err
	}

	start := time.Now()
	timeout := g.options.Timeout
	attempts := g.options.MaxAttempts
	if attempts <= 0 {
		attempts = DefaultMaxAttempts
	}

	for range attempts {
		if timeout > 0 && time.Since(start) >= timeout {
			break
		}

		b, err := board.New(g.generateGrid())
		if err != nil {
			return nil, err
		}

		if g.options.EnsureMinable && !g.accept(b) {
			continue
		}

		return b, nil
	}
	return nil, ErrGenerationFailed
}

// generateGrid lays out one random grid. Exit first, then ore patches, then
// walls on whatever terrain is left.
func (g *Generator) generateGrid() board.Grid {
	w, h := g.options.Width, g.options.Height
	grid := board.Grid{
		Width:  w,
		Height: h,
		Tiles:  make([]board.Tile, w*h),
	}

	exit := g.rng.Intn(w * h)
	grid.Tiles[exit] = board.Exit
	grid.Exit = board.Point{X: exit % w, Y: exit / w}
	grid.HasExit = true

	g.growPatches(grid.Tiles, w, h)

	walls := 0
	for _, pos := range g.rng.Perm(w * h) {
		if walls >= g.options.WallCount {
			break
		}
		if grid.Tiles[pos] == board.Empty {
			grid.Tiles[pos] = board.Wall
			walls++
		}
	}

	return grid
}

// growPatches turns OreCount empty tiles into ore, grown as contiguous patches
// around Patches random seeds.
//
// The growth is a multi-source BFS from all seeds at once. Each BFS level is
// shuffled before it is expanded so patch outlines vary instead of growing as
// diamonds. Growth stops as soon as OreCount tiles are ore; if every patch is
// boxed in before that, new seeds are drawn from the remaining empty tiles.
func (g *Generator) growPatches(tiles []board.Tile, w, h int) {
	target := g.options.OreCount
	placed := 0

	queue := make([]int, 0, w*h)
	for _, pos := range g.rng.Perm(w * h) {
		if len(queue) >= g.options.Patches {
			break
		}
		if tiles[pos] == board.Empty {
			queue = append(queue, pos)
		}
	}

	head := 0
	for placed < target {
		if head == len(queue) {
			// Every patch is boxed in; reseed on any empty tile.
			reseeded := false
			for _, pos := range g.rng.Perm(w * h) {
				if tiles[pos] == board.Empty {
					queue = append(queue, pos)
					reseeded = true
					break
				}
			}
			if !reseeded {
				return
			}
		}

		levelEnd := len(queue)
		// Fisher-Yates shuffle of the current level, [head, levelEnd).
		for i := levelEnd - 1; i > head; i-- {
			j := head + g.rng.Intn(i-head+1)
			queue[i], queue[j] = queue[j], queue[i]
		}

		for head < levelEnd && placed < target {
			pos := queue[head]
			head++
			if tiles[pos] != board.Empty {
				continue
			}
			tiles[pos] = board.Ore
			placed++
			for _, nb := range orthogonalNeighbors(pos, w, h) {
				if tiles[nb] == board.Empty {
					queue = append(queue, nb)
				}
			}
		}
	}
}

// minable reports whether some placement over ore reaches the exit.
func minable(b *board.Board) bool {
	for _, p := range (solver.OreMoves{}).Moves(b) {
		if next := b.Place(p.X, p.Y); next != nil && next.CheckPath() {
			return true
		}
	}
	return false
}

// orthogonalNeighbors returns the in-bounds orthogonal neighbors of pos.
// A stack-local [4]int backs the result slice to avoid heap allocation.
func orthogonalNeighbors(pos, w, h int) []int {
	row, col := pos/w, pos%w
	var buf [4]int
	n := 0
	if row > 0 {
		buf[n] = pos - w
		n++
	}
	if row < h-1 {
		buf[n] = pos + w
		n++
	}
	if col > 0 {
		buf[n] = pos - 1
		n++
	}
	if col < w-1 {
		buf[n] = pos + 1
		n++
	}
	return buf[:n]
}

// GenerateWithSize is a convenience function to generate a grid of the given
// size with default densities.
func GenerateWithSize(width, height int) (*board.Board, error) {
	gen := New(DefaultOptions(width, height))
	return gen.Generate()
}
