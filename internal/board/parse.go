package board

import (
	"bufio"
	"fmt"
	"io"
	"strings"
	"unicode/utf8"
)

// Parse reads a grid from its text form: one line per row, one character per
// tile. Trailing whitespace on each line and trailing blank lines are ignored.
//
// Parse does not require an exit; New does. A grid without one parses fine
// and is rejected when the board is constructed.
func Parse(r io.Reader) (Grid, error) {
	var rows []string
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		rows = append(rows, strings.TrimRight(scanner.Text(), " \t\r"))
	}
	if err := scanner.Err(); err != nil {
		return Grid{}, fmt.Errorf("reading grid: %w", err)
	}
	for len(rows) > 0 && rows[len(rows)-1] == "" {
		rows = rows[:len(rows)-1]
	}
	if len(rows) == 0 {
		return Grid{}, ErrEmptyGrid
	}

	g := Grid{
		Width:  utf8.RuneCountInString(rows[0]),
		Height: len(rows),
	}
	g.Tiles = make([]Tile, 0, g.Width*g.Height)

	for y, row := range rows {
		if n := utf8.RuneCountInString(row); n != g.Width {
			return Grid{}, fmt.Errorf("%w: line %d has %d tiles, expected %d", ErrRaggedGrid, y+1, n, g.Width)
		}
		x := 0
		for _, ch := range row {
			t, ok := TileFromChar(ch)
			if !ok {
				return Grid{}, fmt.Errorf("%w: '%c' at line %d, column %d", ErrInvalidTile, ch, y+1, x+1)
			}
			if t == Exit {
				if g.HasExit {
					return Grid{}, fmt.Errorf("%w: second exit at line %d, column %d", ErrMultipleExits, y+1, x+1)
				}
				g.Exit = Point{X: x, Y: y}
				g.HasExit = true
			}
			g.Tiles = append(g.Tiles, t)
			x++
		}
	}

	return g, nil
}

// ParseString is Parse over a string.
func ParseString(s string) (Grid, error) {
	return Parse(strings.NewReader(s))
}

// Load parses a grid and constructs its initial Board.
func Load(r io.Reader) (*Board, error) {
	g, err := Parse(r)
	if err != nil {
		return nil, err
	}
	return New(g)
}

// NewFromString parses s and constructs its initial Board.
func NewFromString(s string) (*Board, error) {
	return Load(strings.NewReader(s))
}
