package board

import "sync"

// zobristTable holds one random key per (cell, tile) pair for grids with a
// given cell count.
type zobristTable struct {
	keys []uint64
}

type zobristStore struct {
	mu     sync.Mutex
	tables map[int]*zobristTable
}

var zobristTables = &zobristStore{tables: make(map[int]*zobristTable)}

// zobristFor returns the shared table for grids of cells cells. Tables are
// seeded deterministically from the cell count. Boards look their table up
// once in New and carry it, so Place never takes the store lock.
func zobristFor(cells int) *zobristTable {
	zobristTables.mu.Lock()
	defer zobristTables.mu.Unlock()
	if table, ok := zobristTables.tables[cells]; ok {
		return table
	}
	rng := splitmix64{state: 0x9e3779b97f4a7c15 ^ uint64(cells)}
	table := &zobristTable{keys: make([]uint64, cells*tileCount)}
	for i := range table.keys {
		table.keys[i] = rng.next()
	}
	zobristTables.tables[cells] = table
	return table
}

func (z *zobristTable) cell(pos int, t Tile) uint64 {
	return z.keys[pos*tileCount+int(t)]
}

// hash hashes a full tile slice from scratch.
func (z *zobristTable) hash(tiles []Tile) uint64 {
	var hash uint64
	for pos, t := range tiles {
		hash ^= z.cell(pos, t)
	}
	return hash
}

type splitmix64 struct {
	state uint64
}

func (s *splitmix64) next() uint64 {
	s.state += 0x9e3779b97f4a7c15
	z := s.state
	z = (z ^ (z >> 30)) * 0xbf58476d1ce4e5b9
	z = (z ^ (z >> 27)) * 0x94d049bb133111eb
	return z ^ (z >> 31)
}
