package server

import (
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/rybkr/orepack/internal/board"
	"github.com/rybkr/orepack/internal/generator"
	"github.com/rybkr/orepack/internal/solver"
)

var ErrBadParameter = errors.New("invalid parameter")

// solveParams are the per-request search settings.
type solveParams struct {
	Workers int    `json:"workers"`
	Timeout string `json:"timeout"`
	Moves   string `json:"moves"`
}

type solveResponse struct {
	RunID      string       `json:"run_id"`
	Score      int          `json:"score"`
	Miners     int          `json:"miners"`
	Board      string       `json:"board"`
	State      string       `json:"state"`
	DurationMs float64      `json:"duration_ms"`
	Stats      solver.Stats `json:"stats"`
}

type improvedPayload struct {
	Score     int     `json:"score"`
	Miners    int     `json:"miners"`
	Board     string  `json:"board"`
	ElapsedMs float64 `json:"elapsed_ms"`
}

func (s *Server) handlePresets(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string][]string{"presets": board.PresetNames()})
}

func (s *Server) handlePreset(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	text, ok := board.PresetText(name)
	if !ok {
		writeError(w, http.StatusNotFound, fmt.Errorf("unknown preset %q", name))
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"name": name, "grid": text})
}

func (s *Server) handleGenerate(w http.ResponseWriter, r *http.Request) {
	width, err := intParam(r.URL.Query(), "width", generator.DefaultWidth)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	height, err := intParam(r.URL.Query(), "height", generator.DefaultHeight)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	if width < generator.MinSize || width > generator.MaxSize || height < generator.MinSize || height > generator.MaxSize {
		writeError(w, http.StatusBadRequest, generator.ErrInvalidSize)
		return
	}

	b, err := generator.GenerateWithSize(width, height)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"width":  b.Width(),
		"height": b.Height(),
		"ores":   len(b.Ores()),
		"grid":   b.String(),
	})
}

func (s *Server) handleSolve(w http.ResponseWriter, r *http.Request) {
	b, err := board.Load(http.MaxBytesReader(w, r.Body, s.config.MaxGridBytes))
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	q := r.URL.Query()
	params := solveParams{Timeout: q.Get("timeout"), Moves: q.Get("moves")}
	if params.Workers, err = intParam(q, "workers", 1); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	opts, err := s.solverOptions(params)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	res, err := solver.New(b, opts).Solve(r.Context())
	if err != nil && !errors.Is(err, solver.ErrTimeout) {
		// The client went away; nobody is left to answer.
		return
	}
	writeJSON(w, http.StatusOK, newSolveResponse(res))
}

// solverOptions turns request parameters into solver options, clamped to the
// server's limits.
func (s *Server) solverOptions(p solveParams) (*solver.Options, error) {
	moves, err := solver.NewMoveGenerator(p.Moves)
	if err != nil {
		return nil, err
	}

	timeout := s.config.SolveTimeout
	if p.Timeout != "" {
		d, err := time.ParseDuration(p.Timeout)
		if err != nil || d < 0 {
			return nil, fmt.Errorf("%w: timeout %q", ErrBadParameter, p.Timeout)
		}
		if d > 0 && d < timeout {
			timeout = d
		}
	}

	opts := solver.DefaultOptions()
	opts.Workers = min(max(p.Workers, 1), s.config.MaxWorkers)
	opts.Timeout = timeout
	opts.Moves = moves
	opts.Logger = s.log
	return opts, nil
}

func newSolveResponse(res *solver.Result) solveResponse {
	resp := solveResponse{
		RunID:      res.RunID,
		Score:      res.Score,
		Miners:     res.Miners,
		State:      res.State.String(),
		DurationMs: millis(res.Duration),
		Stats:      res.Stats,
	}
	if res.Best != nil {
		resp.Board = res.Best.String()
	}
	return resp
}

func newImprovedPayload(rec solver.Record) improvedPayload {
	return improvedPayload{
		Score:     rec.Score,
		Miners:    rec.Miners,
		Board:     rec.Board.String(),
		ElapsedMs: millis(rec.Elapsed),
	}
}

func intParam(q url.Values, name string, def int) (int, error) {
	raw := strings.TrimSpace(q.Get(name))
	if raw == "" {
		return def, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%w: %s %q", ErrBadParameter, name, raw)
	}
	return v, nil
}

// loadGrid parses a grid sent inline, such as in a websocket message.
func (s *Server) loadGrid(text string) (*board.Board, error) {
	if int64(len(text)) > s.config.MaxGridBytes {
		return nil, fmt.Errorf("%w: grid larger than %d bytes", ErrBadParameter, s.config.MaxGridBytes)
	}
	return board.NewFromString(text)
}

func millis(d time.Duration) float64 {
	return float64(d) / float64(time.Millisecond)
}
