package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/rybkr/orepack/internal/solver"
)

type wsMessage struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

type wsSolveRequest struct {
	Grid string `json:"grid"`
	solveParams
}

// wsSession is one websocket connection. It runs at most one search at a
// time and streams that search's improvements to the client.
type wsSession struct {
	server *Server
	log    zerolog.Logger
	send   chan []byte

	ctx    context.Context
	cancel context.CancelFunc

	busy     atomic.Bool
	mu       sync.Mutex
	stopRun  context.CancelFunc
	searches sync.WaitGroup
}

func (s *Server) serveWS(w http.ResponseWriter, r *http.Request) {
	upgrader := websocket.Upgrader{CheckOrigin: func(r *http.Request) bool { return true }}
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	sess := &wsSession{
		server: s,
		log:    s.log.With().Str("request_id", middleware.GetReqID(r.Context())).Logger(),
		send:   make(chan []byte, 16),
		ctx:    ctx,
		cancel: cancel,
	}
	sess.log.Debug().Msg("ws-open")

	writerDone := make(chan struct{})
	go func() {
		defer close(writerDone)
		defer cancel()
		if err := writeWSWithHeartbeat(conn, sess.send, s.config.PingInterval); err != nil {
			sess.log.Debug().Err(err).Msg("ws-write")
			// Unblocks the read loop.
			conn.Close()
		}
	}()

	sess.readLoop(conn)

	cancel()
	sess.searches.Wait()
	close(sess.send)
	<-writerDone
	conn.Close()
	sess.log.Debug().Msg("ws-closed")
}

func (sess *wsSession) readLoop(conn *websocket.Conn) {
	for {
		_, message, err := conn.ReadMessage()
		if err != nil {
			return
		}
		var msg wsMessage
		if err := json.Unmarshal(message, &msg); err != nil {
			sess.sendError(errors.New("invalid message"))
			continue
		}

		switch msg.Type {
		case "solve":
			sess.startSolve(msg.Payload)
		case "cancel":
			sess.mu.Lock()
			if sess.stopRun != nil {
				sess.stopRun()
			}
			sess.mu.Unlock()
		case "pong", "ping":
		default:
			sess.sendError(errors.New("unknown message type " + msg.Type))
		}
	}
}

func (sess *wsSession) startSolve(payload json.RawMessage) {
	var req wsSolveRequest
	if err := json.Unmarshal(payload, &req); err != nil {
		sess.sendError(errors.New("invalid solve payload"))
		return
	}
	b, err := sess.server.loadGrid(req.Grid)
	if err != nil {
		sess.sendError(err)
		return
	}
	opts, err := sess.server.solverOptions(req.solveParams)
	if err != nil {
		sess.sendError(err)
		return
	}
	if !sess.busy.CompareAndSwap(false, true) {
		sess.sendError(errors.New("a search is already running"))
		return
	}

	opts.Reporter = solver.ReporterFuncs{
		OnImproved: func(rec solver.Record) {
			sess.sendJSON(wsMessage{Type: "improved", Payload: mustMarshal(newImprovedPayload(rec))})
		},
	}

	ctx, stop := context.WithCancel(sess.ctx)
	sess.mu.Lock()
	sess.stopRun = stop
	sess.mu.Unlock()

	sess.searches.Add(1)
	go func() {
		defer sess.searches.Done()

		res, err := solver.New(b, opts).Solve(ctx)
		stop()
		sess.busy.Store(false)
		if err != nil && !errors.Is(err, solver.ErrTimeout) && !errors.Is(err, context.Canceled) {
			sess.sendError(err)
			return
		}
		sess.sendJSON(wsMessage{Type: "finished", Payload: mustMarshal(newSolveResponse(res))})
	}()
}

// sendJSON queues msg for the writer. It gives up once the session ends.
func (sess *wsSession) sendJSON(msg wsMessage) {
	select {
	case sess.send <- mustMarshal(msg):
	case <-sess.ctx.Done():
	}
}

func (sess *wsSession) sendError(err error) {
	sess.sendJSON(wsMessage{Type: "error", Payload: mustMarshal(map[string]string{"error": err.Error()})})
}

func writeWSWithHeartbeat(conn *websocket.Conn, send <-chan []byte, interval time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	lastWrite := time.Now()
	pingPayload := mustMarshal(wsMessage{Type: "ping"})

	for {
		select {
		case msg, ok := <-send:
			if !ok {
				return nil
			}
			if err := conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				return err
			}
			lastWrite = time.Now()
		case <-ticker.C:
			if time.Since(lastWrite) < interval {
				continue
			}
			if err := conn.WriteMessage(websocket.TextMessage, pingPayload); err != nil {
				return err
			}
			lastWrite = time.Now()
		}
	}
}
