package cmd

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/rybkr/orepack/internal/board"
	"github.com/rybkr/orepack/internal/generator"
	"github.com/rybkr/orepack/internal/solver"
)

// resetFlags restores the flag variables, which persist between executions
// of rootCmd in one process.
func resetFlags() {
	workers, solveLimit, moves, requireGain = 1, 0, solver.MovesOre, false
	preset, reportFile, quiet = "", "", false
	numGrids, gridWidth, gridHeight = 1, generator.DefaultWidth, generator.DefaultHeight
	oreCount, wallCount, patchCount, seed, outputFile, genLimit = "", -1, 0, 0, "", 5*time.Second
}

func execute(t *testing.T, args ...string) string {
	t.Helper()
	resetFlags()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(append([]string{"--log-level", "error"}, args...))
	if err := rootCmd.Execute(); err != nil {
		t.Fatalf("%v: %v\n%s", args, err, out.String())
	}
	return out.String()
}

func TestParseCountRange(t *testing.T) {
	tests := []struct {
		in       string
		min, max int
		wantErr  bool
	}{
		{"12", 12, 12, false},
		{"10:20", 10, 20, false},
		{" 3 : 4 ", 3, 4, false},
		{"20:10", 0, 0, true},
		{"a", 0, 0, true},
		{"1:2:3", 0, 0, true},
	}
	for _, tt := range tests {
		min, max, err := parseCountRange(tt.in)
		if (err != nil) != tt.wantErr {
			t.Fatalf("parseCountRange(%q) error = %v", tt.in, err)
		}
		if min != tt.min || max != tt.max {
			t.Fatalf("parseCountRange(%q) = %d, %d", tt.in, min, max)
		}
	}
}

func TestParseCountRangeMessage(t *testing.T) {
	if _, _, err := parseCountRange("lots"); err == nil || !strings.Contains(err.Error(), "LO:HI") {
		t.Fatalf("err = %v, want a hint at the LO:HI form", err)
	}
}

func TestGenRejectsTinyGrid(t *testing.T) {
	resetFlags()
	gridWidth, gridHeight, genLimit = 2, 2, 0

	if err := runGen(rootCmd, nil); !errors.Is(err, generator.ErrInvalidSize) {
		t.Fatalf("err = %v, want ErrInvalidSize", err)
	}
}

func TestGridFilename(t *testing.T) {
	if got := gridFilename("g-*.txt", 1, 3); got != "g-2.txt" {
		t.Fatalf("got %q", got)
	}
	if got := gridFilename("g.txt", 0, 1); got != "g.txt" {
		t.Fatalf("got %q", got)
	}
	if got := gridFilename("g.txt", 2, 3); got != "g.txt.3" {
		t.Fatalf("got %q", got)
	}
}

func TestLoadBoard(t *testing.T) {
	resetFlags()

	preset = "square"
	b, err := loadBoard(nil, nil)
	if err != nil || b.Width() != 4 {
		t.Fatalf("preset: %v", err)
	}

	preset = "random"
	if b, err := loadBoard(nil, nil); err != nil || b == nil {
		t.Fatalf("random preset: %v", err)
	}

	preset = "missing"
	if _, err := loadBoard(nil, nil); err == nil {
		t.Fatalf("expected an error for an unknown preset")
	}

	preset = ""
	b, err = loadBoard(nil, strings.NewReader("E#\n##"))
	if err != nil || b.Height() != 2 {
		t.Fatalf("stdin: %v", err)
	}

	if _, err := loadBoard([]string{filepath.Join(t.TempDir(), "none.txt")}, nil); err == nil {
		t.Fatalf("expected an error for a missing file")
	}
}

func TestSolveCommand(t *testing.T) {
	out := execute(t, "solve", "--preset", "square")
	for _, want := range []string{"patches covered:4, number of miners:1", "Took "} {
		if !strings.Contains(out, want) {
			t.Fatalf("output missing %q:\n%s", want, out)
		}
	}
}

func TestGenThenSolve(t *testing.T) {
	dir := t.TempDir()
	pattern := filepath.Join(dir, "grid-*.txt")
	execute(t, "gen", "-n", "2", "--seed", "7", "--width", "8", "--height", "6", "--ore", "8", "-o", pattern)

	for _, name := range []string{"grid-1.txt", "grid-2.txt"} {
		path := filepath.Join(dir, name)
		if _, err := os.Stat(path); err != nil {
			t.Fatalf("missing %s: %v", name, err)
		}
	}

	report := filepath.Join(dir, "report")
	out := execute(t, "solve", "-q", "-w", "2", "--timeout", "20s", "-o", report, filepath.Join(dir, "grid-1.txt"))
	if !strings.Contains(out, "Took ") {
		t.Fatalf("unexpected output:\n%s", out)
	}

	html, err := os.ReadFile(report + ".html")
	if err != nil {
		t.Fatalf("report not written: %v", err)
	}
	if !strings.Contains(string(html), "Best placement") {
		t.Fatalf("report missing the best placement")
	}
}

func TestHTMLReportWithoutPlacement(t *testing.T) {
	b, err := board.Preset("pocket")
	if err != nil {
		t.Fatalf("Preset: %v", err)
	}
	res := &solver.Result{RunID: "run", State: solver.Exhausted}

	path := filepath.Join(t.TempDir(), "r.html")
	if err := writeHTMLReport(path, b, res); err != nil {
		t.Fatalf("writeHTMLReport: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if !strings.Contains(string(data), "No miner could be placed") || !strings.Contains(string(data), `class="wall"`) {
		t.Fatalf("unexpected report:\n%s", data)
	}
}
