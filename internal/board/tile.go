package board

// Tile is the terrain classification of a single grid cell.
type Tile uint8

const (
	Empty Tile = iota
	Ore
	Exit
	Wall
	MinerTL
	MinerTR
	MinerBL
	MinerBR

	tileCount = 8
)

// tileChars maps each Tile to its display character.
var tileChars = [tileCount]rune{
	Empty:   '.',
	Ore:     '#',
	Exit:    'E',
	Wall:    'X',
	MinerTL: '┌',
	MinerTR: '┐',
	MinerBL: '└',
	MinerBR: '┘',
}

// minerCorners lists the corner markers in footprint order: TL, TR, BL, BR.
var minerCorners = [4]Tile{MinerTL, MinerTR, MinerBL, MinerBR}

// Char returns the display character for t.
func (t Tile) Char() rune {
	if int(t) >= tileCount {
		return '?'
	}
	return tileChars[t]
}

// String implements fmt.Stringer.
func (t Tile) String() string {
	return string(t.Char())
}

// Open reports whether t can be crossed by a path to the exit.
// Only empty, ore and exit tiles are open.
func (t Tile) Open() bool {
	return t == Empty || t == Ore || t == Exit
}

// Placeable reports whether a miner corner may be placed over t.
func (t Tile) Placeable() bool {
	return t == Empty || t == Ore
}

// IsMiner reports whether t is one of the four miner corner markers.
func (t Tile) IsMiner() bool {
	return t >= MinerTL && t <= MinerBR
}

// TileFromChar returns the Tile for a display character.
func TileFromChar(r rune) (Tile, bool) {
	for t, c := range tileChars {
		if c == r {
			return Tile(t), true
		}
	}
	return 0, false
}
