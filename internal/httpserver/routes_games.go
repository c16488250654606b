// internal/httpserver/routes_games.go
//
// Routes for the three turn-based games.
//   - /memory:   POST new, GET {id}, POST {id}/flip, POST {id}/reset
//   - /puzzle:   POST new, GET {id}, POST {id}/move, POST {id}/reset
//   - /scramble: POST new, GET {id}, POST {id}/guess, POST {id}/hint,
//                POST {id}/restart
//
// Invalid moves are not errors; the response simply shows the unchanged
// board. A finished game is recorded once per deal.

package httpserver

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/robalobadob/braindev/internal/catalog"
	"github.com/robalobadob/braindev/internal/memory"
	"github.com/robalobadob/braindev/internal/puzzle"
	"github.com/robalobadob/braindev/internal/results"
	"github.com/robalobadob/braindev/internal/scramble"
	"github.com/robalobadob/braindev/internal/store"
)

// lookup resolves {id} in st or answers 404.
func lookup[T any](w http.ResponseWriter, r *http.Request, st store.Store[T]) (T, bool) {
	v, err := st.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusNotFound, "not_found")
		return v, false
	}
	return v, true
}

type gameRes[V any] struct {
	GameID string `json:"gameId"`
	State  V      `json:"state"`
}

// ------------------------------ MEMORY -------------------------------------

type memorySession struct {
	game *memory.Game
	rec  recorder
}

type flipReq struct {
	Card int `json:"card"`
}

type flipRes struct {
	Outcome memory.Outcome `json:"outcome"`
	State   memory.View    `json:"state"`
}

func (s *Server) mountMemory(r chi.Router) {
	r.Post("/memory/new", func(w http.ResponseWriter, r *http.Request) {
		id := uuid.NewString()
		ms := &memorySession{game: memory.New(id, nil, s.cfg.Now), rec: recorder{owner: s.ownerOf(w, r)}}
		_ = s.memories.Save(r.Context(), id, ms)
		writeJSON(w, gameRes[memory.View]{GameID: id, State: ms.game.View()})
	})
	r.Get("/memory/{id}", func(w http.ResponseWriter, r *http.Request) {
		if ms, ok := lookup(w, r, s.memories); ok {
			writeJSON(w, ms.game.View())
		}
	})
	r.Post("/memory/{id}/flip", func(w http.ResponseWriter, r *http.Request) {
		ms, ok := lookup(w, r, s.memories)
		if !ok {
			return
		}
		var req flipReq
		if err := decode(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, "bad_json")
			return
		}
		out := ms.game.Flip(req.Card)
		view := ms.game.View()
		if view.Complete {
			s.record(&ms.rec, ms.game.ID, results.Result{
				Kind:      string(catalog.Memory),
				Score:     view.Score,
				Moves:     view.Moves,
				ElapsedMs: view.ElapsedMs,
				Won:       true,
			})
		}
		writeJSON(w, flipRes{Outcome: out, State: view})
	})
	r.Post("/memory/{id}/reset", func(w http.ResponseWriter, r *http.Request) {
		if ms, ok := lookup(w, r, s.memories); ok {
			ms.game.Reset()
			ms.rec.rearm()
			writeJSON(w, ms.game.View())
		}
	})
}

// ------------------------------ PUZZLE -------------------------------------

type puzzleSession struct {
	game *puzzle.Game
	rec  recorder
}

type moveReq struct {
	Pos int `json:"pos"`
}

type moveRes struct {
	Moved bool        `json:"moved"`
	State puzzle.View `json:"state"`
}

func (s *Server) mountPuzzle(r chi.Router) {
	r.Post("/puzzle/new", func(w http.ResponseWriter, r *http.Request) {
		id := uuid.NewString()
		ps := &puzzleSession{game: puzzle.New(id, nil, s.cfg.Now), rec: recorder{owner: s.ownerOf(w, r)}}
		_ = s.puzzles.Save(r.Context(), id, ps)
		writeJSON(w, gameRes[puzzle.View]{GameID: id, State: ps.game.View()})
	})
	r.Get("/puzzle/{id}", func(w http.ResponseWriter, r *http.Request) {
		if ps, ok := lookup(w, r, s.puzzles); ok {
			writeJSON(w, ps.game.View())
		}
	})
	r.Post("/puzzle/{id}/move", func(w http.ResponseWriter, r *http.Request) {
		ps, ok := lookup(w, r, s.puzzles)
		if !ok {
			return
		}
		var req moveReq
		if err := decode(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, "bad_json")
			return
		}
		moved := ps.game.Move(req.Pos)
		view := ps.game.View()
		if view.Complete {
			s.record(&ps.rec, ps.game.ID, results.Result{
				Kind:      string(catalog.Puzzle),
				Moves:     view.Moves,
				ElapsedMs: view.ElapsedMs,
				Won:       true,
			})
		}
		writeJSON(w, moveRes{Moved: moved, State: view})
	})
	r.Post("/puzzle/{id}/reset", func(w http.ResponseWriter, r *http.Request) {
		if ps, ok := lookup(w, r, s.puzzles); ok {
			ps.game.Reset()
			ps.rec.rearm()
			writeJSON(w, ps.game.View())
		}
	})
}

// ----------------------------- SCRAMBLE ------------------------------------

type scrambleSession struct {
	game *scramble.Game
	rec  recorder
}

type guessReq struct {
	Guess string `json:"guess"`
}

type guessRes struct {
	scramble.GuessResult
	State scramble.View `json:"state"`
}

func (s *Server) mountScramble(r chi.Router) {
	r.Post("/scramble/new", func(w http.ResponseWriter, r *http.Request) {
		id := uuid.NewString()
		ss := &scrambleSession{game: scramble.New(id, nil, s.cfg.Now, nil), rec: recorder{owner: s.ownerOf(w, r)}}
		_ = s.scrambles.Save(r.Context(), id, ss)
		writeJSON(w, gameRes[scramble.View]{GameID: id, State: ss.game.View()})
	})
	r.Get("/scramble/{id}", func(w http.ResponseWriter, r *http.Request) {
		if ss, ok := lookup(w, r, s.scrambles); ok {
			writeJSON(w, s.scrambleView(ss))
		}
	})
	r.Post("/scramble/{id}/guess", func(w http.ResponseWriter, r *http.Request) {
		ss, ok := lookup(w, r, s.scrambles)
		if !ok {
			return
		}
		var req guessReq
		if err := decode(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, "bad_json")
			return
		}
		res, err := ss.game.Guess(req.Guess)
		if errors.Is(err, scramble.ErrTimeUp) {
			s.recordScrambleIfOver(ss)
			writeError(w, http.StatusConflict, "time_up")
			return
		}
		writeJSON(w, guessRes{GuessResult: res, State: s.scrambleView(ss)})
	})
	r.Post("/scramble/{id}/hint", func(w http.ResponseWriter, r *http.Request) {
		ss, ok := lookup(w, r, s.scrambles)
		if !ok {
			return
		}
		letter, err := ss.game.Hint()
		switch {
		case errors.Is(err, scramble.ErrTimeUp):
			s.recordScrambleIfOver(ss)
			writeError(w, http.StatusConflict, "time_up")
		case errors.Is(err, scramble.ErrNoHints):
			writeError(w, http.StatusConflict, "no_hints")
		default:
			writeJSON(w, map[string]any{"letter": letter, "state": s.scrambleView(ss)})
		}
	})
	r.Post("/scramble/{id}/restart", func(w http.ResponseWriter, r *http.Request) {
		if ss, ok := lookup(w, r, s.scrambles); ok {
			ss.game.Restart()
			ss.rec.rearm()
			writeJSON(w, ss.game.View())
		}
	})
}

// scrambleView reads the game and records it once the clock has run out.
func (s *Server) scrambleView(ss *scrambleSession) scramble.View {
	v := ss.game.View()
	s.recordOverScramble(ss, v)
	return v
}

// recordScrambleIfOver records the game if its clock has run out.
func (s *Server) recordScrambleIfOver(ss *scrambleSession) {
	s.recordOverScramble(ss, ss.game.View())
}

func (s *Server) recordOverScramble(ss *scrambleSession, v scramble.View) {
	if v.Active {
		return
	}
	s.record(&ss.rec, ss.game.ID, results.Result{
		Kind:      string(catalog.Word),
		Score:     v.Score,
		Level:     v.Level,
		ElapsedMs: v.ElapsedMs,
	})
}
