package solver

import (
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/rybkr/orepack/internal/board"
)

// Record is a new best-found board.
type Record struct {
	Score   int
	Miners  int
	Board   *board.Board
	Elapsed time.Duration // time since the search started
}

// Reporter receives the results of a search as they are found.
// Improved calls are serialized and arrive in the order records were set.
type Reporter interface {
	Improved(rec Record)
	Finished(res *Result)
}

// TextReporter writes records and the final summary as plain text.
type TextReporter struct {
	mu    sync.Mutex
	w     io.Writer
	quiet bool
}

// NewTextReporter creates a TextReporter writing to w. When quiet is set,
// intermediate records are not written, only the final summary.
func NewTextReporter(w io.Writer, quiet bool) *TextReporter {
	return &TextReporter{w: w, quiet: quiet}
}

// Improved writes the record and its board.
func (r *TextReporter) Improved(rec Record) {
	if r.quiet {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	fmt.Fprintf(r.w, "patches covered:%d, number of miners:%d\n", rec.Score, rec.Miners)
	fmt.Fprintln(r.w, rec.Board)
}

// Finished writes the totals and the elapsed time.
func (r *TextReporter) Finished(res *Result) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.quiet && res.Best != nil {
		fmt.Fprintln(r.w, res.Best)
	}
	fmt.Fprintf(r.w, "patches covered:%d, number of miners:%d\n", res.Score, res.Miners)
	fmt.Fprintf(r.w, "Took %v to finish.\n", res.Duration)
}

// nopReporter discards everything.
type nopReporter struct{}

func (nopReporter) Improved(Record)   {}
func (nopReporter) Finished(*Result) {}

// ReporterFuncs adapts plain functions to Reporter. Nil fields are skipped.
type ReporterFuncs struct {
	OnImproved func(rec Record)
	OnFinished func(res *Result)
}

func (f ReporterFuncs) Improved(rec Record) {
	if f.OnImproved != nil {
		f.OnImproved(rec)
	}
}

func (f ReporterFuncs) Finished(res *Result) {
	if f.OnFinished != nil {
		f.OnFinished(res)
	}
}
