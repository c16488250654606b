// internal/httpserver/routes_train.go
//
// HTTP + WebSocket routes for the train-routing game.
//   - POST   /train/new                          → new game, loop started
//   - GET    /train/{id}                         → snapshot
//   - POST   /train/{id}/junctions/{jid}/toggle  → flip a junction
//   - POST   /train/{id}/pause|resume|reset      → lifecycle
//   - DELETE /train/{id}                         → stop and drop
//   - GET    /train/{id}/ws                      → live snapshots + commands
//
// The runner is bound to the server context, not the request; it stops on
// game over, DELETE, session eviction or Server.Close.

package httpserver

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"github.com/robalobadob/braindev/internal/catalog"
	"github.com/robalobadob/braindev/internal/results"
	"github.com/robalobadob/braindev/internal/train"
)

type trainSession struct {
	runner *train.Runner
	rec    recorder
}

func (s *Server) mountTrain(r chi.Router) {
	r.Post("/train/new", s.handleTrainNew)
	r.Get("/train/{id}", s.withTrain(func(w http.ResponseWriter, r *http.Request, ts *trainSession) {
		writeJSON(w, ts.runner.State().Snapshot())
	}))
	r.Post("/train/{id}/junctions/{jid}/toggle", s.withTrain(func(w http.ResponseWriter, r *http.Request, ts *trainSession) {
		if !ts.runner.State().ToggleJunction(chi.URLParam(r, "jid")) {
			writeError(w, http.StatusNotFound, "unknown_junction")
			return
		}
		writeJSON(w, ts.runner.State().Snapshot())
	}))
	r.Post("/train/{id}/pause", s.withTrain(func(w http.ResponseWriter, r *http.Request, ts *trainSession) {
		ts.runner.Pause()
		writeJSON(w, ts.runner.State().Snapshot())
	}))
	r.Post("/train/{id}/resume", s.withTrain(func(w http.ResponseWriter, r *http.Request, ts *trainSession) {
		ts.runner.Resume()
		writeJSON(w, ts.runner.State().Snapshot())
	}))
	r.Post("/train/{id}/reset", s.withTrain(func(w http.ResponseWriter, r *http.Request, ts *trainSession) {
		ts.rec.rearm()
		ts.runner.Reset()
		writeJSON(w, ts.runner.State().Snapshot())
	}))
	r.Delete("/train/{id}", func(w http.ResponseWriter, r *http.Request) {
		// The eviction hook stops the runner.
		_ = s.trains.Delete(r.Context(), chi.URLParam(r, "id"))
		writeJSON(w, map[string]bool{"ok": true})
	})
}

type trainNewReq struct {
	Width float64 `json:"width"` // client board width; 0 uses the default
}

type trainNewRes struct {
	GameID string         `json:"gameId"`
	State  train.Snapshot `json:"state"`
}

func (s *Server) handleTrainNew(w http.ResponseWriter, r *http.Request) {
	var req trainNewReq
	if err := decode(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_json")
		return
	}
	width := s.cfg.BoardWidth
	if req.Width > 0 {
		width = req.Width
	}

	id := uuid.NewString()
	st := train.NewState(train.NewLayout(width), s.cfg.Now)
	ts := &trainSession{
		runner: train.NewRunner(id, st, nil, s.cfg.FramePeriod),
		rec:    recorder{owner: s.ownerOf(w, r)},
	}
	ts.runner.OnGameOver = func(snap train.Snapshot) {
		s.record(&ts.rec, id, results.Result{
			Kind:      string(catalog.Train),
			Score:     snap.Score,
			Level:     snap.Level,
			Moves:     snap.Arrivals,
			ElapsedMs: snap.TimePlayedMs,
		})
	}
	if err := s.trains.Save(r.Context(), id, ts); err != nil {
		log.Error().Err(err).Msg("save train game")
		writeError(w, http.StatusInternalServerError, "save_failed")
		return
	}
	ts.runner.Start(s.ctx)
	log.Info().Str("gameId", id).Float64("width", width).Msg("train game started")

	writeJSON(w, trainNewRes{GameID: id, State: st.Snapshot()})
}

// withTrain resolves {id} to a live session or answers 404.
func (s *Server) withTrain(h func(http.ResponseWriter, *http.Request, *trainSession)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ts, err := s.trains.Get(r.Context(), chi.URLParam(r, "id"))
		if err != nil {
			writeError(w, http.StatusNotFound, "not_found")
			return
		}
		h(w, r, ts)
	}
}

// ------------------------------- stream ------------------------------------

const (
	// Time allowed to write a message to the peer.
	writeWait = 10 * time.Second
	// Time allowed to read the next pong message from the peer.
	pongWait = 60 * time.Second
	// Send pings to peer with this period. Must be less than pongWait.
	pingPeriod = (pongWait * 9) / 10
	// Maximum message size allowed from peer.
	maxMessageSize = 512
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
}

// trainCommand is an incoming client message.
type trainCommand struct {
	Type       string `json:"type"` // toggle | pause | resume | reset
	JunctionID string `json:"junctionId,omitempty"`
}

// handleTrainWS streams a snapshot every frame until the peer goes away.
func (s *Server) handleTrainWS(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	ts, err := s.trains.Get(r.Context(), id)
	if err != nil {
		writeError(w, http.StatusNotFound, "not_found")
		return
	}
	up := upgrader
	up.CheckOrigin = func(r *http.Request) bool {
		o := r.Header.Get("Origin")
		return o == "" || o == s.cfg.ClientOrigin
	}
	conn, err := up.Upgrade(w, r, nil)
	if err != nil {
		log.Warn().Err(err).Str("gameId", id).Msg("websocket upgrade")
		return
	}
	log.Debug().Str("gameId", id).Msg("train stream opened")

	closed := make(chan struct{})
	go s.trainWritePump(conn, ts, closed)
	s.trainReadPump(conn, ts)
	close(closed)
	log.Debug().Str("gameId", id).Msg("train stream closed")
}

// trainReadPump applies client commands until the connection fails.
func (s *Server) trainReadPump(conn *websocket.Conn, ts *trainSession) {
	defer conn.Close()
	conn.SetReadLimit(maxMessageSize)
	conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})
	for {
		_, message, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Debug().Err(err).Str("gameId", ts.runner.ID).Msg("train stream read")
			}
			return
		}
		var cmd trainCommand
		if err := json.Unmarshal(message, &cmd); err != nil {
			log.Debug().Err(err).Str("gameId", ts.runner.ID).Msg("bad train command")
			continue
		}
		switch cmd.Type {
		case "toggle":
			ts.runner.State().ToggleJunction(cmd.JunctionID)
		case "pause":
			ts.runner.Pause()
		case "resume":
			ts.runner.Resume()
		case "reset":
			ts.rec.rearm()
			ts.runner.Reset()
		default:
			log.Debug().Str("gameId", ts.runner.ID).Str("type", cmd.Type).Msg("unknown train command")
		}
	}
}

// trainWritePump pushes a snapshot every frame and pings the peer.
func (s *Server) trainWritePump(conn *websocket.Conn, ts *trainSession, closed <-chan struct{}) {
	frame := time.NewTicker(s.cfg.FramePeriod)
	ping := time.NewTicker(pingPeriod)
	defer func() {
		frame.Stop()
		ping.Stop()
		conn.Close()
	}()
	for {
		select {
		case <-closed:
			return
		case <-s.ctx.Done():
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			_ = conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseGoingAway, ""))
			return
		case <-frame.C:
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteJSON(ts.runner.State().Snapshot()); err != nil {
				return
			}
		case <-ping.C:
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
