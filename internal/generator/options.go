package generator

import (
	"time"
)

// Options configures grid generation.
type Options struct {
	Width         int           // Columns, MinSize..MaxSize
	Height        int           // Rows, MinSize..MaxSize
	OreCount      int           // Ore tiles to grow across all patches
	Patches       int           // Number of ore patches
	WallCount     int           // Wall tiles scattered over the remaining terrain
	Timeout       time.Duration // Timeout limits generation time (0 = no limit)
	MaxAttempts   int           // Grids tried before giving up (0 = DefaultMaxAttempts)
	Seed          int64         // Seed for reproducible grids (0 = random)
	EnsureMinable bool          // EnsureMinable requires one connected placement over ore
}

// DefaultOptions returns generator options for a width×height grid, with
// roughly a quarter of the tiles ore and a tenth walls.
func DefaultOptions(width, height int) *Options {
	width = min(max(width, MinSize), MaxSize)
	height = min(max(height, MinSize), MaxSize)
	cells := width * height
	return &Options{
		Width:         width,
		Height:        height,
		OreCount:      cells / 4,
		Patches:       max(1, cells/40),
		WallCount:     cells / 10,
		Timeout:       5 * time.Second,
		Seed:          0,
		EnsureMinable: true,
	}
}

func (o *Options) validate() error {
	if o.Width < MinSize || o.Width > MaxSize || o.Height < MinSize || o.Height > MaxSize {
		return ErrInvalidSize
	}
	free := o.Width*o.Height - 1 // one tile is the exit
	if o.OreCount < 0 || o.WallCount < 0 || o.OreCount+o.WallCount > free {
		return ErrInvalidCounts
	}
	if o.Patches < 1 || (o.OreCount > 0 && o.Patches > o.OreCount) {
		return ErrInvalidCounts
	}
	if o.EnsureMinable && (o.OreCount == 0 || o.Width*o.Height-o.WallCount < minOpenTiles) {
		return ErrInvalidCounts
	}
	return nil
}
