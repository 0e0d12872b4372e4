package solver

import (
	"errors"
	"fmt"

	"github.com/zyedidia/generic/mapset"

	"github.com/rybkr/orepack/internal/board"
)

const (
	MovesOre  = "ore"
	MovesScan = "scan"
)

var ErrUnknownStrategy = errors.New("unknown move strategy")

// MoveGenerator produces the top-left coordinates worth trying next on a board.
// Candidate order only decides which of several equally good boards is found
// first.
type MoveGenerator interface {
	Moves(b *board.Board) []board.Point
}

// NewMoveGenerator resolves a strategy name.
func NewMoveGenerator(name string) (MoveGenerator, error) {
	switch name {
	case MovesOre, "":
		return OreMoves{}, nil
	case MovesScan:
		return ScanMoves{}, nil
	default:
		return nil, fmt.Errorf("%w: %q (use %q or %q)", ErrUnknownStrategy, name, MovesOre, MovesScan)
	}
}

// oreAnchors are the top-left offsets that put an ore tile under each of the
// four miner corners.
var oreAnchors = [4]board.Point{{X: 0, Y: 0}, {X: -1, Y: 0}, {X: 0, Y: -1}, {X: -1, Y: -1}}

// OreMoves anchors candidates on ore tiles that are still uncovered. Only a
// placement touching such a tile can raise the score.
type OreMoves struct{}

// Moves returns, for every uncovered ore tile, the placements that cover it.
// Placements leaving the grid are dropped and each coordinate appears once.
func (OreMoves) Moves(b *board.Board) []board.Point {
	ores := b.Ores()
	moves := make([]board.Point, 0, len(ores)*len(oreAnchors))
	seen := mapset.New[board.Point]()

	for _, ore := range ores {
		for _, off := range oreAnchors {
			p := board.Point{X: ore.X + off.X, Y: ore.Y + off.Y}
			if !fits(b, p) || seen.Has(p) {
				continue
			}
			seen.Put(p)
			moves = append(moves, p)
		}
	}
	return moves
}

// ScanMoves tries every top-left coordinate whose footprint fits the grid.
// It finds the same best score as OreMoves but also tries zero-gain placements.
type ScanMoves struct{}

// Moves returns all in-bounds top-left coordinates in row-major order.
func (ScanMoves) Moves(b *board.Board) []board.Point {
	if b.Width() < 2 || b.Height() < 2 {
		return nil
	}
	moves := make([]board.Point, 0, (b.Width()-1)*(b.Height()-1))
	for y := range b.Height() - 1 {
		for x := range b.Width() - 1 {
			moves = append(moves, board.Point{X: x, Y: y})
		}
	}
	return moves
}

// fits reports whether a miner with its top-left corner at p lies on the board.
func fits(b *board.Board, p board.Point) bool {
	return b.InBounds(p.X, p.Y) && b.InBounds(p.X+1, p.Y+1)
}
