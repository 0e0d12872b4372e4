package board

import (
	"math/rand"
	"testing"
)

func TestCheckPathEmptyBoard(t *testing.T) {
	b := mustBoard(t, squareGrid)
	if !b.CheckPath() {
		t.Fatalf("a board without miners is always connected")
	}
}

func TestCheckPathWalledMiner(t *testing.T) {
	b, err := Preset("pocket")
	if err != nil {
		t.Fatalf("Preset: %v", err)
	}
	next := b.Place(1, 1)
	if next == nil {
		t.Fatalf("expected placement over the sealed ore to be valid")
	}
	if next.CheckPath() {
		t.Fatalf("expected a miner surrounded by walls to be disconnected")
	}
}

func TestCheckPathOutOfBoundsIsNotReachable(t *testing.T) {
	// The left border of a miner at (0,0) lies outside the grid. Reading it
	// with wraparound would land on the reachable column at x=3.
	b := mustBoard(t, "##X.\n##XE\nXXX.")
	next := b.Place(0, 0)
	if next == nil {
		t.Fatalf("expected corner placement to be valid")
	}
	if next.CheckPath() {
		t.Fatalf("out-of-bounds border cells must not count as reachable")
	}
}

func TestCheckPathEdgeMinerWithOpenSide(t *testing.T) {
	b := mustBoard(t, "##.\n##.\n..E")
	next := b.Place(0, 0)
	if next == nil {
		t.Fatalf("expected corner placement to be valid")
	}
	if !next.CheckPath() {
		t.Fatalf("expected miner at the corner to reach the exit through its right side")
	}
}

func TestCheckPathBlockedByAnotherMiner(t *testing.T) {
	// The second miner seals the only corridor to the first one.
	b := mustBoard(t, "XXXXXX\nX##..E\nX##..X\nXXXXXX")
	first := b.Place(1, 1)
	if first == nil || !first.CheckPath() {
		t.Fatalf("expected first miner to be connected")
	}
	second := first.Place(3, 1)
	if second == nil {
		t.Fatalf("expected second placement to be valid")
	}
	if second.CheckPath() {
		t.Fatalf("expected the first miner to be cut off by the second")
	}
}

func TestCheckPathLeavesBoardUntouched(t *testing.T) {
	b := mustBoard(t, squareGrid).Place(1, 1)
	before := b.String()
	b.CheckPath()
	b.Reachable()
	if b.String() != before {
		t.Fatalf("CheckPath mutated the board")
	}
}

func TestReachableShrinksMonotonically(t *testing.T) {
	for _, name := range PresetNames() {
		t.Run(name, func(t *testing.T) {
			initial, err := Preset(name)
			if err != nil {
				t.Fatalf("Preset: %v", err)
			}
			rng := rand.New(rand.NewSource(3))
			boards := randomWalk(initial, rng, 200)
			for i := 1; i < len(boards); i++ {
				parent, child := boards[i-1].Reachable(), boards[i].Reachable()
				for pos := range child {
					if child[pos] && !parent[pos] {
						t.Fatalf("cell %d became reachable after a placement", pos)
					}
				}
			}
		})
	}
}

func TestReachableMask(t *testing.T) {
	b := mustBoard(t, "E.X.\n..X.\nXXX.")
	mask := b.Reachable()
	want := []bool{
		true, true, false, false,
		true, true, false, false,
		false, false, false, false,
	}
	for pos := range want {
		if mask[pos] != want[pos] {
			t.Fatalf("mask[%d] = %v, want %v", pos, mask[pos], want[pos])
		}
	}
}
