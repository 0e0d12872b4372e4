package board

import (
	"fmt"
	"slices"
	"strings"
)

// Point is a grid coordinate. X grows to the right, Y grows downwards.
type Point struct {
	X, Y int
}

func (p Point) String() string {
	return fmt.Sprintf("(%d,%d)", p.X, p.Y)
}

// Grid is the parsed input of a run. It is built once by the parser and
// never mutated afterwards.
type Grid struct {
	Width   int
	Height  int
	Tiles   []Tile // row-major, len == Width*Height
	Exit    Point
	HasExit bool
}

// At returns the tile at (x, y) of the grid. Out of bounds reads return Wall.
func (g Grid) At(x, y int) Tile {
	if x < 0 || y < 0 || x >= g.Width || y >= g.Height {
		return Wall
	}
	return g.Tiles[y*g.Width+x]
}

// footprint holds the offsets of the four miner cells, in minerCorners order.
var footprint = [4]Point{{0, 0}, {1, 0}, {0, 1}, {1, 1}}

// Board is an immutable snapshot of the grid with its placed miners.
// Place returns a new Board and never mutates the receiver, so a parent may
// stay on the search frontier while its children are explored.
type Board struct {
	tiles  []Tile
	width  int
	height int

	// miners holds the top-left corner of each placed miner in placement order.
	// It is history only and does not take part in equality.
	miners []Point
	score  int

	// exit and ores are fixed at construction and shared by every derived Board.
	exit Point
	ores []Point

	// hash is the zobrist hash of tiles, maintained incrementally by Place
	// with the table resolved once in New.
	hash    uint64
	zobrist *zobristTable
}

// New creates the initial Board for a parsed grid: no miners and score zero.
// Returns a configuration error if the grid has no exit.
func New(g Grid) (*Board, error) {
	if err := g.validate(); err != nil {
		return nil, err
	}

	b := &Board{
		tiles:   slices.Clone(g.Tiles),
		width:   g.Width,
		height:  g.Height,
		exit:    g.Exit,
		zobrist: zobristFor(len(g.Tiles)),
	}
	for pos, t := range b.tiles {
		if t == Ore {
			b.ores = append(b.ores, Point{X: pos % b.width, Y: pos / b.width})
		}
	}
	b.hash = b.zobrist.hash(b.tiles)
	return b, nil
}

// Place attempts to put a miner with its top-left corner at (x, y).
// It returns nil if the footprint leaves the grid or covers anything other
// than empty or ore tiles. Rejection is an expected outcome, not an error.
func (b *Board) Place(x, y int) *Board {
	if x < 0 || y < 0 || x+1 >= b.width || y+1 >= b.height {
		return nil
	}

	gain := 0
	for _, off := range footprint {
		switch b.tiles[b.index(x+off.X, y+off.Y)] {
		case Ore:
			gain++
		case Empty:
		default:
			return nil
		}
	}

	tiles := slices.Clone(b.tiles)
	z := b.zobrist
	hash := b.hash
	for i, off := range footprint {
		pos := b.index(x+off.X, y+off.Y)
		hash ^= z.cell(pos, tiles[pos]) ^ z.cell(pos, minerCorners[i])
		tiles[pos] = minerCorners[i]
	}

	miners := make([]Point, len(b.miners), len(b.miners)+1)
	copy(miners, b.miners)
	miners = append(miners, Point{X: x, Y: y})

	return &Board{
		tiles:   tiles,
		width:   b.width,
		height:  b.height,
		miners:  miners,
		score:   b.score + gain,
		exit:    b.exit,
		ores:    b.ores,
		hash:    hash,
		zobrist: z,
	}
}

// Width returns the number of columns.
func (b *Board) Width() int { return b.width }

// Height returns the number of rows.
func (b *Board) Height() int { return b.height }

// Exit returns the exit coordinate.
func (b *Board) Exit() Point { return b.exit }

// Score returns the number of ore tiles covered by miners.
func (b *Board) Score() int { return b.score }

// MinerCount returns the number of placed miners.
func (b *Board) MinerCount() int { return len(b.miners) }

// Miners returns a copy of the top-left corners of all placed miners,
// in placement order.
func (b *Board) Miners() []Point {
	return slices.Clone(b.miners)
}

// At returns the tile at (x, y). Out of bounds reads return Wall.
func (b *Board) At(x, y int) Tile {
	if !b.InBounds(x, y) {
		return Wall
	}
	return b.tiles[b.index(x, y)]
}

// InBounds reports whether (x, y) lies on the board.
func (b *Board) InBounds(x, y int) bool {
	return x >= 0 && y >= 0 && x < b.width && y < b.height
}

// Ores returns the coordinates of ore tiles not yet covered by a miner,
// in row-major order.
func (b *Board) Ores() []Point {
	ores := make([]Point, 0, len(b.ores))
	for _, p := range b.ores {
		if b.tiles[b.index(p.X, p.Y)] == Ore {
			ores = append(ores, p)
		}
	}
	return ores
}

// Clone creates an independent copy of the Board.
func (b *Board) Clone() *Board {
	if b == nil {
		return nil
	}
	clone := *b
	clone.tiles = slices.Clone(b.tiles)
	clone.miners = slices.Clone(b.miners)
	return &clone
}

// Key returns the grid contents as a string. Two boards have the same key
// iff their tiles are identical, whatever order their miners were placed in.
func (b *Board) Key() string {
	var sb strings.Builder
	sb.Grow(len(b.tiles))
	for _, t := range b.tiles {
		sb.WriteByte(byte(t))
	}
	return sb.String()
}

// Hash returns a 64-bit hash of the grid contents.
// Equal boards always hash equal.
func (b *Board) Hash() uint64 {
	return b.hash
}

// Equal reports whether b and other have cell-for-cell identical grids.
func (b *Board) Equal(other *Board) bool {
	if b == nil || other == nil {
		return b == other
	}
	return b.width == other.width && b.height == other.height && slices.Equal(b.tiles, other.tiles)
}

// String renders the board one row per line using the display characters.
func (b *Board) String() string {
	var sb strings.Builder
	sb.Grow((b.width + 1) * b.height * 3)

	for y := range b.height {
		if y > 0 {
			sb.WriteByte('\n')
		}
		for x := range b.width {
			sb.WriteRune(b.tiles[b.index(x, y)].Char())
		}
	}

	return sb.String()
}

// Format returns a human-readable board representation with a frame and a
// summary line.
func (b *Board) Format() string {
	var sb strings.Builder
	line := "+" + strings.Repeat("-", b.width) + "+\n"
	sb.WriteString(line)

	for y := range b.height {
		sb.WriteByte('|')
		for x := range b.width {
			sb.WriteRune(b.tiles[b.index(x, y)].Char())
		}
		sb.WriteString("|\n")
	}
	sb.WriteString(line)
	fmt.Fprintf(&sb, "score %d, miners %d", b.score, len(b.miners))

	return sb.String()
}

// Grid returns the board contents as an input Grid, suitable for starting a
// new run from this state.
func (b *Board) Grid() Grid {
	return Grid{
		Width:   b.width,
		Height:  b.height,
		Tiles:   slices.Clone(b.tiles),
		Exit:    b.exit,
		HasExit: true,
	}
}

func (b *Board) index(x, y int) int {
	return y*b.width + x
}
