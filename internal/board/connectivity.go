package board

// minerBorder lists the eight cells bordering a miner footprint, relative to
// its top-left corner:
//
//	.01.
//	7┌┐2
//	6└┘3
//	.54.
var minerBorder = [8]Point{
	{0, -1}, {1, -1},
	{2, 0}, {2, 1},
	{1, 2}, {0, 2},
	{-1, 1}, {-1, 0},
}

// CheckPath reports whether every placed miner has at least one bordering
// tile that is reachable from the exit through open terrain.
// Border cells outside the grid never count as reachable.
func (b *Board) CheckPath() bool {
	if len(b.miners) == 0 {
		return true
	}
	filled := b.floodFill()

	for _, m := range b.miners {
		if !b.touchesReachable(filled, m) {
			return false
		}
	}
	return true
}

// Reachable returns a row-major mask of the tiles reachable from the exit,
// the exit itself included.
func (b *Board) Reachable() []bool {
	filled := b.floodFill()
	mask := make([]bool, len(filled))
	for pos, t := range filled {
		mask[pos] = t == Exit
	}
	return mask
}

// touchesReachable reports whether any in-bounds border cell of the miner at
// m is marked reachable in filled.
func (b *Board) touchesReachable(filled []Tile, m Point) bool {
	for _, off := range minerBorder {
		x, y := m.X+off.X, m.Y+off.Y
		if !b.InBounds(x, y) {
			continue
		}
		if filled[b.index(x, y)] == Exit {
			return true
		}
	}
	return false
}

// floodFill returns a working copy of the tiles in which every empty or ore
// tile reachable from the exit by orthogonal steps is overwritten with Exit.
// The board itself is left untouched.
func (b *Board) floodFill() []Tile {
	tiles := make([]Tile, len(b.tiles))
	copy(tiles, b.tiles)

	stack := make([]int, 0, 64)
	stack = append(stack, b.index(b.exit.X, b.exit.Y))

	for len(stack) > 0 {
		pos := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		x, y := pos%b.width, pos/b.width

		// Explore all 4 orthogonal neighbors.
		neighbors := [4]int{
			pos - b.width, // up
			pos + b.width, // down
			pos - 1,       // left
			pos + 1,       // right
		}
		valid := [4]bool{
			y > 0,
			y < b.height-1,
			x > 0,
			x < b.width-1,
		}

		for i, nb := range neighbors {
			if !valid[i] {
				continue
			}
			if tiles[nb].Placeable() {
				tiles[nb] = Exit
				stack = append(stack, nb)
			}
		}
	}

	return tiles
}
