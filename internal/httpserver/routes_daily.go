// internal/httpserver/routes_daily.go
//
// HTTP routes for the daily word scramble.
//   - POST /daily/new         → start today's challenge (creates or reuses session)
//   - POST /daily/guess       → submit a guess for today's word
//   - GET  /daily/leaderboard → top 20 results for today (or ?date=YYYY-MM-DD)
//
// Each player can finish once per day (enforced by DB + session). Sessions
// live in the expiring session store and are persisted to the DB on a win.
// The word is chosen deterministically from date + salt.

package httpserver

import (
	"math/rand/v2"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/robalobadob/braindev/internal/daily"
	"github.com/robalobadob/braindev/internal/scramble"
	"github.com/robalobadob/braindev/internal/words"
)

// dailySession holds transient state for an in-progress challenge.
type dailySession struct {
	mu        sync.Mutex
	GameID    string
	PlayerID  string
	Date      string
	WordIndex int
	Answer    string
	Scrambled string
	Start     time.Time
	Guesses   int
	Finished  bool
}

func (s *Server) mountDaily(r chi.Router) {
	r.Post("/daily/new", s.handleDailyNew)
	r.Post("/daily/guess", s.handleDailyGuess)
	r.Get("/daily/leaderboard", s.handleDailyLeaderboard)
}

func (s *Server) today() daily.Challenge {
	return daily.Today(s.now(), s.cfg.DailySalt, words.All())
}

// playerID is the id daily results are stored under.
func (o owner) playerID() string {
	if o.UserID != "" {
		return o.UserID
	}
	return o.AnonID
}

type dailyNewRes struct {
	GameID    string `json:"gameId"`
	Date      string `json:"date"`
	Played    bool   `json:"played"`
	Scrambled string `json:"scrambled,omitempty"`
	Streak    int    `json:"streak"`
}

// handleDailyNew creates or reuses today's session.
// A player with a stored result for today gets Played=true and no game.
func (s *Server) handleDailyNew(w http.ResponseWriter, r *http.Request) {
	o := s.ownerOf(w, r)
	c := s.today()
	if c.Word == "" {
		writeError(w, http.StatusInternalServerError, "no_words")
		return
	}

	played, err := s.daily.Played(r.Context(), o.playerID(), c.Date)
	if err != nil {
		log.Warn().Err(err).Msg("daily already played")
	}
	if played {
		writeJSON(w, dailyNewRes{Date: c.Date, Played: true, Streak: s.streak(r, o)})
		return
	}

	key := o.key() + "|" + c.Date
	if sess, err := s.dailies.Get(r.Context(), key); err == nil {
		writeJSON(w, dailyNewRes{GameID: sess.GameID, Date: c.Date, Scrambled: sess.Scrambled, Streak: s.streak(r, o)})
		return
	}
	seed := uint64(s.now().UnixNano())
	sess := &dailySession{
		GameID:    uuid.NewString(),
		PlayerID:  o.playerID(),
		Date:      c.Date,
		WordIndex: c.WordIndex,
		Answer:    c.Word,
		Scrambled: scramble.Scramble(c.Word, rand.New(rand.NewPCG(seed, seed>>3))),
		Start:     s.now(),
	}
	_ = s.dailies.Save(r.Context(), key, sess)
	writeJSON(w, dailyNewRes{GameID: sess.GameID, Date: c.Date, Scrambled: sess.Scrambled, Streak: s.streak(r, o)})
}

// streak is the player's current daily streak; lookup failures count as 0.
func (s *Server) streak(r *http.Request, o owner) int {
	n, err := s.daily.Streak(r.Context(), o.playerID(), s.now())
	if err != nil {
		log.Warn().Err(err).Msg("daily streak")
	}
	return n
}

type dailyGuessReq struct {
	GameID string `json:"gameId"`
	Word   string `json:"word"`
}

type dailyGuessRes struct {
	Correct bool   `json:"correct"`
	State   string `json:"state"` // in_progress | won | locked
	Guesses int    `json:"guesses"`
	Streak  int    `json:"streak,omitempty"`
}

// handleDailyGuess checks a guess against today's word; a win is stored.
func (s *Server) handleDailyGuess(w http.ResponseWriter, r *http.Request) {
	o := s.ownerOf(w, r)
	var p dailyGuessReq
	if err := decode(r, &p); err != nil {
		writeError(w, http.StatusBadRequest, "bad_json")
		return
	}
	p.Word = strings.ToUpper(strings.TrimSpace(p.Word))
	if p.GameID == "" || p.Word == "" {
		writeError(w, http.StatusBadRequest, "invalid")
		return
	}

	c := s.today()
	sess, err := s.dailies.Get(r.Context(), o.key()+"|"+c.Date)
	if err != nil || sess.GameID != p.GameID {
		writeError(w, http.StatusConflict, "no_session")
		return
	}

	sess.mu.Lock()
	if sess.Finished {
		res := dailyGuessRes{State: "locked", Guesses: sess.Guesses}
		sess.mu.Unlock()
		writeJSON(w, res)
		return
	}
	sess.Guesses++
	won := p.Word == sess.Answer
	if won {
		sess.Finished = true
	}
	result := daily.Result{
		PlayerID:  sess.PlayerID,
		Date:      sess.Date,
		WordIndex: sess.WordIndex,
		Guesses:   sess.Guesses,
		ElapsedMs: int(s.now().Sub(sess.Start).Milliseconds()),
	}
	sess.mu.Unlock()

	if !won {
		writeJSON(w, dailyGuessRes{State: "in_progress", Guesses: result.Guesses})
		return
	}
	if _, err := s.daily.Save(r.Context(), result); err != nil {
		log.Warn().Err(err).Str("date", result.Date).Msg("save daily result")
	}
	writeJSON(w, dailyGuessRes{Correct: true, State: "won", Guesses: result.Guesses, Streak: s.streak(r, o)})
}

type lbRes struct {
	Date string        `json:"date"`
	Top  []daily.Entry `json:"top"`
}

// handleDailyLeaderboard returns the leaderboard for ?date= (default today).
func (s *Server) handleDailyLeaderboard(w http.ResponseWriter, r *http.Request) {
	date := r.URL.Query().Get("date")
	if date == "" {
		date = daily.DateKey(s.now())
	}
	rows, err := s.daily.Leaderboard(r.Context(), date, 20)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "server_error")
		return
	}
	writeJSON(w, lbRes{Date: date, Top: rows})
}
