package board

import (
	"errors"
	"fmt"
)

// Configuration errors. All of them are fatal and raised before any search.
var (
	ErrNoExit        = errors.New("grid has no exit")
	ErrMultipleExits = errors.New("grid has more than one exit")
	ErrInvalidTile   = errors.New("unrecognized tile character")
	ErrEmptyGrid     = errors.New("grid is empty")
	ErrRaggedGrid    = errors.New("grid rows differ in length")
)

// validate checks the shape of the grid and that it holds exactly one exit,
// located where the parser said it is.
func (g Grid) validate() error {
	if g.Width <= 0 || g.Height <= 0 {
		return fmt.Errorf("%w: %dx%d", ErrEmptyGrid, g.Width, g.Height)
	}
	if len(g.Tiles) != g.Width*g.Height {
		return fmt.Errorf("%w: %d tiles for a %dx%d grid", ErrRaggedGrid, len(g.Tiles), g.Width, g.Height)
	}
	if !g.HasExit {
		return ErrNoExit
	}
	if g.At(g.Exit.X, g.Exit.Y) != Exit {
		return fmt.Errorf("%w: no exit tile at %s", ErrNoExit, g.Exit)
	}

	exits := 0
	for pos, t := range g.Tiles {
		if int(t) >= tileCount {
			return fmt.Errorf("%w: tile value %d at %s", ErrInvalidTile, t, Point{X: pos % g.Width, Y: pos / g.Width})
		}
		if t == Exit {
			exits++
		}
	}
	if exits > 1 {
		return fmt.Errorf("%w: found %d", ErrMultipleExits, exits)
	}
	return nil
}
