package cmd

import (
	"fmt"
	"math/rand"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/rybkr/orepack/internal/board"
	"github.com/rybkr/orepack/internal/generator"
)

var (
	numGrids   int
	gridWidth  int
	gridHeight int
	oreCount   string
	wallCount  int
	patchCount int
	seed       int64
	outputFile string
	genLimit   time.Duration
)

func init() {
	genCmd := &cobra.Command{
		Use:   "gen",
		Short: "Generate random grids",
		Long: `Generate one or more random grids with ore patches, walls and one exit.
Every generated grid allows at least one miner over ore to reach the exit.

Examples:
  orepack gen --width 16 --height 10
  orepack gen -n 5 --ore 20:30 --walls 12
  orepack gen -n 3 -o grid-*.txt`,
		RunE: runGen,
	}

	genCmd.Flags().IntVarP(&numGrids, "number", "n", 1, "Number of grids to generate")
	genCmd.Flags().IntVar(&gridWidth, "width", generator.DefaultWidth, "Grid width")
	genCmd.Flags().IntVar(&gridHeight, "height", generator.DefaultHeight, "Grid height")
	genCmd.Flags().StringVar(&oreCount, "ore", "", "Ore tiles, a number or range like 20:30 (default a quarter of the grid)")
	genCmd.Flags().IntVar(&wallCount, "walls", -1, "Wall tiles (default a tenth of the grid)")
	genCmd.Flags().IntVar(&patchCount, "patches", 0, "Number of ore patches (default one per 40 tiles)")
	genCmd.Flags().Int64Var(&seed, "seed", 0, "Random seed for reproducible grids (0 = random)")
	genCmd.Flags().StringVarP(&outputFile, "output", "o", "", "Output file; '*' is replaced by the grid number")
	genCmd.Flags().DurationVar(&genLimit, "timeout", 5*time.Second, "Give up on a grid after this long (0 = stop only after the retry limit)")

	rootCmd.AddCommand(genCmd)
}

// parseCountRange reads "N" or "LO:HI" and returns the inclusive bounds.
func parseCountRange(s string) (lo, hi int, err error) {
	first, rest, isRange := strings.Cut(s, ":")
	if lo, err = strconv.Atoi(strings.TrimSpace(first)); err != nil {
		return 0, 0, fmt.Errorf("ore count %q is not a number or LO:HI range", s)
	}
	if !isRange {
		return lo, lo, nil
	}
	if hi, err = strconv.Atoi(strings.TrimSpace(rest)); err != nil {
		return 0, 0, fmt.Errorf("ore count %q is not a number or LO:HI range", s)
	}
	if lo > hi {
		return 0, 0, fmt.Errorf("ore range %d:%d is empty", lo, hi)
	}
	return lo, hi, nil
}

// gridFilename expands the '*' wildcard of pattern with the 1-based grid
// number. Without a wildcard, grids after the first get a numeric suffix.
func gridFilename(pattern string, i, total int) string {
	if strings.Contains(pattern, "*") {
		return strings.ReplaceAll(pattern, "*", strconv.Itoa(i+1))
	}
	if total == 1 {
		return pattern
	}
	return fmt.Sprintf("%s.%d", pattern, i+1)
}

func runGen(cmd *cobra.Command, args []string) error {
	base := generator.DefaultOptions(gridWidth, gridHeight)
	if gridWidth != base.Width || gridHeight != base.Height {
		return fmt.Errorf("%w: got %dx%d", generator.ErrInvalidSize, gridWidth, gridHeight)
	}

	minOre, maxOre := base.OreCount, base.OreCount
	if oreCount != "" {
		var err error
		minOre, maxOre, err = parseCountRange(oreCount)
		if err != nil {
			return err
		}
	}

	rngSeed := seed
	if rngSeed == 0 {
		rngSeed = time.Now().UnixNano()
	}
	rng := rand.New(rand.NewSource(rngSeed))

	for i := 0; i < numGrids; i++ {
		opts := generator.DefaultOptions(gridWidth, gridHeight)
		opts.OreCount = minOre
		if maxOre > minOre {
			opts.OreCount = minOre + rng.Intn(maxOre-minOre+1)
		}
		if wallCount >= 0 {
			opts.WallCount = wallCount
		}
		if patchCount > 0 {
			opts.Patches = patchCount
		}
		opts.Seed = rng.Int63() | 1
		opts.Timeout = genLimit

		b, err := generator.New(opts).Generate()
		if err != nil {
			return fmt.Errorf("generation failed: %w", err)
		}
		logger.Debug().Int("grid", i+1).Int("ore", opts.OreCount).Uint64("hash", b.Hash()).Msg("generated")

		if outputFile == "" {
			if i > 0 {
				fmt.Fprintln(cmd.OutOrStdout())
			}
			fmt.Fprintln(cmd.OutOrStdout(), b)
			continue
		}

		filename := gridFilename(outputFile, i, numGrids)
		if err := writeGrid(filename, b); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Generated grid #%d in %s\n", i+1, filename)
	}

	return nil
}

func writeGrid(filename string, b *board.Board) error {
	if err := os.WriteFile(filename, []byte(b.String()+"\n"), 0o644); err != nil {
		return fmt.Errorf("failed to write grid: %w", err)
	}
	return nil
}
