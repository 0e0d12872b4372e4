package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math/rand"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/rybkr/orepack/internal/board"
	"github.com/rybkr/orepack/internal/solver"
)

var (
	workers     int
	solveLimit  time.Duration
	moves       string
	requireGain bool
	preset      string
	reportFile  string
	quiet       bool
)

func init() {
	solveCmd := &cobra.Command{
		Use:   "solve [grid-file]",
		Short: "Search for the best miner placement on a grid",
		Long: `Search for the placement of miners that covers the most ore while every
miner keeps a path to the exit. The grid is read from the given file, from a
built-in preset, or from stdin when neither is given.

Each time a better placement is found it is printed with its score.

Examples:
  orepack solve input.txt
  orepack solve --preset field -w 4
  orepack gen | orepack solve --timeout 30s -o report.html`,
		Args: cobra.MaximumNArgs(1),
		RunE: runSolve,
	}

	solveCmd.Flags().IntVarP(&workers, "workers", "w", 1, "Number of search workers")
	solveCmd.Flags().DurationVar(&solveLimit, "timeout", 0, "Stop the search after this long and keep the best so far (0 = no limit)")
	solveCmd.Flags().StringVar(&moves, "moves", solver.MovesOre, "Candidate strategy: ore or scan")
	solveCmd.Flags().BoolVar(&requireGain, "require-gain", false, "Skip placements that cover no ore (approximate)")
	solveCmd.Flags().StringVarP(&preset, "preset", "p", "", fmt.Sprintf("Built-in grid: %s, or random", strings.Join(board.PresetNames(), ", ")))
	solveCmd.Flags().StringVarP(&reportFile, "output", "o", "", "Write an HTML report to this file (e.g., report.html)")
	solveCmd.Flags().BoolVarP(&quiet, "quiet", "q", false, "Only print the final board and totals")

	rootCmd.AddCommand(solveCmd)
}

// loadBoard reads the initial board from the preset, the file argument or in.
func loadBoard(args []string, in io.Reader) (*board.Board, error) {
	switch {
	case preset == "random":
		return board.RandomPreset(rand.New(rand.NewSource(time.Now().UnixNano()))), nil
	case preset != "":
		return board.Preset(preset)
	case len(args) == 1:
		file, err := os.Open(args[0])
		if err != nil {
			return nil, fmt.Errorf("failed to open grid: %w", err)
		}
		defer file.Close()
		return board.Load(file)
	default:
		return board.Load(in)
	}
}

func runSolve(cmd *cobra.Command, args []string) error {
	initial, err := loadBoard(args, cmd.InOrStdin())
	if err != nil {
		return err
	}

	gen, err := solver.NewMoveGenerator(moves)
	if err != nil {
		return err
	}

	opts := solver.DefaultOptions()
	opts.Workers = workers
	opts.Timeout = solveLimit
	opts.Moves = gen
	opts.RequireGain = requireGain
	opts.Reporter = solver.NewTextReporter(cmd.OutOrStdout(), quiet)
	opts.Logger = logger

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	res, err := solver.New(initial, opts).Solve(ctx)
	switch {
	case errors.Is(err, solver.ErrTimeout):
		logger.Warn().Dur("timeout", solveLimit).Msg("search stopped at timeout; best so far reported")
	case errors.Is(err, context.Canceled):
		logger.Warn().Msg("search interrupted; best so far reported")
	case err != nil:
		return err
	}

	if reportFile != "" {
		filename := reportFile
		// Ensure .html extension
		if filepath.Ext(filename) != ".html" {
			filename = filename + ".html"
		}
		if err := writeHTMLReport(filename, initial, res); err != nil {
			return fmt.Errorf("failed to write HTML report: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Wrote report to %s\n", filename)
	}

	return nil
}
