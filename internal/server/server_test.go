package server

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/rybkr/orepack/internal/board"
)

const squareGrid = "E...\n.##.\n.##.\n....\n...."

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	ts := httptest.NewServer(New(DefaultConfig(), zerolog.Nop()).Handler())
	t.Cleanup(ts.Close)
	return ts
}

func decode(t *testing.T, resp *http.Response, v any) {
	t.Helper()
	defer resp.Body.Close()
	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		t.Fatalf("decode: %v", err)
	}
}

func TestPing(t *testing.T) {
	ts := newTestServer(t)
	resp, err := http.Get(ts.URL + "/api/ping")
	if err != nil {
		t.Fatalf("GET: %v", err)
	}
	var body map[string]bool
	decode(t, resp, &body)
	if resp.StatusCode != http.StatusOK || !body["ok"] {
		t.Fatalf("status %d, body %v", resp.StatusCode, body)
	}
}

func TestPresets(t *testing.T) {
	ts := newTestServer(t)

	resp, err := http.Get(ts.URL + "/api/presets")
	if err != nil {
		t.Fatalf("GET: %v", err)
	}
	var list struct {
		Presets []string `json:"presets"`
	}
	decode(t, resp, &list)
	if len(list.Presets) != len(board.PresetNames()) {
		t.Fatalf("got presets %v", list.Presets)
	}

	resp, err = http.Get(ts.URL + "/api/presets/square")
	if err != nil {
		t.Fatalf("GET: %v", err)
	}
	var one struct {
		Grid string `json:"grid"`
	}
	decode(t, resp, &one)
	if _, err := board.NewFromString(one.Grid); err != nil {
		t.Fatalf("preset grid does not load: %v", err)
	}

	resp, err = http.Get(ts.URL + "/api/presets/nope")
	if err != nil {
		t.Fatalf("GET: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("unknown preset status %d, want 404", resp.StatusCode)
	}
}

func TestSolveEndpoint(t *testing.T) {
	ts := newTestServer(t)

	resp, err := http.Post(ts.URL+"/api/solve?workers=2", "text/plain", strings.NewReader(squareGrid))
	if err != nil {
		t.Fatalf("POST: %v", err)
	}
	var body solveResponse
	decode(t, resp, &body)

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status %d", resp.StatusCode)
	}
	if body.Score != 4 || body.Miners != 1 || body.State != "exhausted" {
		t.Fatalf("got %+v", body)
	}
	if body.RunID == "" || !strings.Contains(body.Board, ".┌┐.") {
		t.Fatalf("missing run id or board: %+v", body)
	}
	if body.Stats.Expanded == 0 {
		t.Fatalf("expected stats, got %+v", body.Stats)
	}
}

func TestSolveEndpointRejects(t *testing.T) {
	ts := newTestServer(t)

	tests := []struct {
		name  string
		query string
		grid  string
	}{
		{"no exit", "", "....\n.##."},
		{"two exits", "", "E..E\n.##."},
		{"bad tile", "", "E.?.\n.##."},
		{"bad workers", "?workers=many", squareGrid},
		{"bad timeout", "?timeout=soon", squareGrid},
		{"bad moves", "?moves=diagonal", squareGrid},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, err := http.Post(ts.URL+"/api/solve"+tt.query, "text/plain", strings.NewReader(tt.grid))
			if err != nil {
				t.Fatalf("POST: %v", err)
			}
			var body map[string]string
			decode(t, resp, &body)
			if resp.StatusCode != http.StatusBadRequest || body["error"] == "" {
				t.Fatalf("status %d, body %v", resp.StatusCode, body)
			}
		})
	}
}

func TestGenerateEndpoint(t *testing.T) {
	ts := newTestServer(t)

	resp, err := http.Get(ts.URL + "/api/generate?width=10&height=6")
	if err != nil {
		t.Fatalf("GET: %v", err)
	}
	var body struct {
		Width  int    `json:"width"`
		Height int    `json:"height"`
		Grid   string `json:"grid"`
	}
	decode(t, resp, &body)
	if body.Width != 10 || body.Height != 6 {
		t.Fatalf("got %dx%d", body.Width, body.Height)
	}
	if _, err := board.NewFromString(body.Grid); err != nil {
		t.Fatalf("generated grid does not load: %v", err)
	}

	for _, query := range []string{"width=1", "width=2&height=2"} {
		resp, err = http.Get(ts.URL + "/api/generate?" + query)
		if err != nil {
			t.Fatalf("GET: %v", err)
		}
		resp.Body.Close()
		if resp.StatusCode != http.StatusBadRequest {
			t.Fatalf("%s: status %d, want 400", query, resp.StatusCode)
		}
	}
}

func TestSolveWebsocket(t *testing.T) {
	ts := newTestServer(t)
	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws/solve"

	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("Dial: %v", err)
	}
	defer conn.Close()

	req := wsMessage{Type: "solve", Payload: mustMarshal(map[string]any{"grid": squareGrid})}
	if err := conn.WriteJSON(req); err != nil {
		t.Fatalf("WriteJSON: %v", err)
	}

	conn.SetReadDeadline(time.Now().Add(10 * time.Second))
	improved := 0
	for {
		var msg wsMessage
		if err := conn.ReadJSON(&msg); err != nil {
			t.Fatalf("ReadJSON: %v", err)
		}
		switch msg.Type {
		case "improved":
			var rec improvedPayload
			if err := json.Unmarshal(msg.Payload, &rec); err != nil {
				t.Fatalf("improved payload: %v", err)
			}
			if rec.Board == "" {
				t.Fatalf("improved record without a board")
			}
			improved++
		case "finished":
			var res solveResponse
			if err := json.Unmarshal(msg.Payload, &res); err != nil {
				t.Fatalf("finished payload: %v", err)
			}
			if improved == 0 || res.Score != 4 || res.Miners != 1 {
				t.Fatalf("improved %d, finished with %d/%d", improved, res.Score, res.Miners)
			}
			return
		case "error":
			t.Fatalf("server error: %s", msg.Payload)
		}
	}
}

func TestWebsocketBadRequest(t *testing.T) {
	ts := newTestServer(t)
	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws/solve"

	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("Dial: %v", err)
	}
	defer conn.Close()

	req := wsMessage{Type: "solve", Payload: mustMarshal(map[string]any{"grid": "...."})}
	if err := conn.WriteJSON(req); err != nil {
		t.Fatalf("WriteJSON: %v", err)
	}

	conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	var msg wsMessage
	if err := conn.ReadJSON(&msg); err != nil {
		t.Fatalf("ReadJSON: %v", err)
	}
	if msg.Type != "error" {
		t.Fatalf("got %q message, want error", msg.Type)
	}
}

func dialSolve(t *testing.T, ts *httptest.Server) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws/solve"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("Dial: %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	conn.SetReadDeadline(time.Now().Add(15 * time.Second))
	return conn
}

// readUntil reads messages until one of type want arrives. Improvement and
// ping messages are skipped; any other type fails the test.
func readUntil(t *testing.T, conn *websocket.Conn, want string) wsMessage {
	t.Helper()
	for {
		var msg wsMessage
		if err := conn.ReadJSON(&msg); err != nil {
			t.Fatalf("ReadJSON waiting for %q: %v", want, err)
		}
		switch msg.Type {
		case want:
			return msg
		case "improved", "ping":
		default:
			t.Fatalf("got %q message (%s) while waiting for %q", msg.Type, msg.Payload, want)
		}
	}
}

func TestWebsocketCancelAndSingleSearch(t *testing.T) {
	ts := newTestServer(t)
	conn := dialSolve(t, ts)

	bigGrid := "E" + strings.Repeat("#", 11) + strings.Repeat("\n"+strings.Repeat("#", 12), 11)
	send := func(msg wsMessage) {
		if err := conn.WriteJSON(msg); err != nil {
			t.Fatalf("WriteJSON: %v", err)
		}
	}

	send(wsMessage{Type: "solve", Payload: mustMarshal(map[string]any{"grid": bigGrid, "timeout": "20s"})})
	readUntil(t, conn, "improved")

	// A second search on the same connection is refused while the first runs.
	send(wsMessage{Type: "solve", Payload: mustMarshal(map[string]any{"grid": squareGrid})})
	msg := readUntil(t, conn, "error")
	if !strings.Contains(string(msg.Payload), "already running") {
		t.Fatalf("unexpected error payload %s", msg.Payload)
	}

	send(wsMessage{Type: "cancel"})
	msg = readUntil(t, conn, "finished")
	var res solveResponse
	if err := json.Unmarshal(msg.Payload, &res); err != nil {
		t.Fatalf("finished payload: %v", err)
	}
	if res.State != "running" || res.Score == 0 || res.Board == "" {
		t.Fatalf("cancelled search finished with %+v", res)
	}

	// The connection accepts a new search once the cancelled one finished.
	send(wsMessage{Type: "solve", Payload: mustMarshal(map[string]any{"grid": squareGrid})})
	msg = readUntil(t, conn, "finished")
	if err := json.Unmarshal(msg.Payload, &res); err != nil {
		t.Fatalf("finished payload: %v", err)
	}
	if res.State != "exhausted" || res.Score != 4 {
		t.Fatalf("follow-up search finished with %+v", res)
	}
}
