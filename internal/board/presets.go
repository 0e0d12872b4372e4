package board

import (
	"fmt"
	"math/rand"
	"slices"
	"strings"
)

// presets is the collection of hand-crafted sample grids, keyed by name.
//
// Invariants (verified at package init):
//   - Every row of a preset has the same width.
//   - Every preset holds exactly one exit.
var presets = map[string][]string{
	// Four ore tiles in a block next to the exit; one miner covers them all.
	"square": {
		"E...",
		".##.",
		".##.",
		"....",
		"....",
	},

	// Walled corridor; only miners that keep the corridor open survive.
	"corridor": {
		"XXXXXXXXXX",
		"E...#..##X",
		"X##.##.##X",
		"X##....#.X",
		"XXXXXXXXXX",
	},

	// Three ore blocks around the exit, one against walls and the bottom edge.
	"field": {
		"........",
		".##..##.",
		".##..##.",
		"...E....",
		".##XX...",
		".##XX...",
	},

	// Ore sealed off by walls; no miner over it can reach the exit.
	"pocket": {
		"XXXXXX",
		"X##X.E",
		"X##X..",
		"XXXX..",
	},
}

func init() {
	// Validate all presets at startup so broken grids surface immediately.
	for name := range presets {
		if _, err := Preset(name); err != nil {
			panic("presets: preset " + name + " failed validation: " + err.Error())
		}
	}
}

// PresetNames returns the names of all built-in grids, sorted.
func PresetNames() []string {
	names := make([]string, 0, len(presets))
	for name := range presets {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// PresetText returns the text form of a built-in grid.
func PresetText(name string) (string, bool) {
	rows, ok := presets[name]
	if !ok {
		return "", false
	}
	return strings.Join(rows, "\n"), true
}

// Preset returns the initial Board of a built-in grid.
func Preset(name string) (*Board, error) {
	text, ok := PresetText(name)
	if !ok {
		return nil, fmt.Errorf("unknown preset %q (available: %s)", name, strings.Join(PresetNames(), ", "))
	}
	return NewFromString(text)
}

// RandomPreset returns the initial Board of a randomly selected built-in grid.
func RandomPreset(rng *rand.Rand) *Board {
	names := PresetNames()
	b, err := Preset(names[rng.Intn(len(names))])
	if err != nil {
		// Already validated in init; this branch is unreachable in production.
		panic("presets: RandomPreset: " + err.Error())
	}
	return b
}
