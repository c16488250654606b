// internal/httpserver/server.go
//
// HTTP server wiring for the Brain Developer backend.
// Responsibilities:
//   - Router + middleware (request IDs, access logs, panic recovery, CORS,
//     timeouts, JSON content type).
//   - Public endpoints: "/", "/health", "/games".
//   - Game endpoints (optional auth): /train, /memory, /puzzle, /scramble,
//     /daily. Live sessions sit in expiring in-memory stores.
//   - Auth + profile/stat endpoints: /auth/*, /stats/me, /games/mine.
//   - Finished games are recorded once, against the user or the anon cookie.
//
// Notes:
//   - The train WebSocket is mounted outside the timeout group; a hijacked
//     connection cannot answer 504.
//   - Server.Close stops every train loop.

package httpserver

import (
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/hlog"
	"github.com/rs/zerolog/log"

	"github.com/robalobadob/braindev/internal/catalog"
	"github.com/robalobadob/braindev/internal/daily"
	"github.com/robalobadob/braindev/internal/results"
	"github.com/robalobadob/braindev/internal/store"
	"github.com/robalobadob/braindev/internal/train"
)

// Config carries everything the handlers read from the environment.
type Config struct {
	JWTSecret      string
	JWTExpiresDays int
	CookieName     string
	ClientOrigin   string
	Production     bool
	DailySalt      string
	BoardWidth     float64
	FramePeriod    time.Duration
	SessionTTL     time.Duration
	SessionMax     int
	RequestTimeout time.Duration

	// Now overrides the clock for game sessions; nil means time.Now.
	Now func() time.Time
}

// DefaultConfig returns development defaults.
func DefaultConfig() Config {
	return Config{
		JWTSecret:      "dev_secret_change_me",
		JWTExpiresDays: 14,
		CookieName:     "braindev_token",
		ClientOrigin:   "http://localhost:5173",
		DailySalt:      "local_dev_salt",
		BoardWidth:     train.DefaultBoardWidth,
		FramePeriod:    train.DefaultFramePeriod,
		SessionTTL:     store.DefaultTTL,
		SessionMax:     store.DefaultSize,
		RequestTimeout: 10 * time.Second,
	}
}

func (c Config) withDefaults() Config {
	d := DefaultConfig()
	if c.JWTSecret == "" {
		c.JWTSecret = d.JWTSecret
	}
	if c.JWTExpiresDays <= 0 {
		c.JWTExpiresDays = d.JWTExpiresDays
	}
	if c.CookieName == "" {
		c.CookieName = d.CookieName
	}
	if c.ClientOrigin == "" {
		c.ClientOrigin = d.ClientOrigin
	}
	if c.DailySalt == "" {
		c.DailySalt = d.DailySalt
	}
	if c.BoardWidth <= 0 {
		c.BoardWidth = d.BoardWidth
	}
	if c.FramePeriod <= 0 {
		c.FramePeriod = d.FramePeriod
	}
	if c.RequestTimeout <= 0 {
		c.RequestTimeout = d.RequestTimeout
	}
	if c.Now == nil {
		c.Now = time.Now
	}
	return c
}

// Server bundles the router, session stores and database-backed stores.
type Server struct {
	r       *chi.Mux
	cfg     Config
	results *results.Store
	daily   *daily.Store

	ctx    context.Context
	cancel context.CancelFunc

	trains    store.Store[*trainSession]
	memories  store.Store[*memorySession]
	puzzles   store.Store[*puzzleSession]
	scrambles store.Store[*scrambleSession]
	dailies   store.Store[*dailySession]
}

// New constructs a Server on a migrated database and registers routes.
func New(cfg Config, db *sql.DB) *Server {
	cfg = cfg.withDefaults()
	ctx, cancel := context.WithCancel(context.Background())
	s := &Server{
		r:       chi.NewRouter(),
		cfg:     cfg,
		results: results.NewStore(db),
		daily:   daily.NewStore(db),
		ctx:     ctx,
		cancel:  cancel,
	}
	s.trains = store.NewMemoryStore(cfg.SessionMax, cfg.SessionTTL, func(id string, ts *trainSession) {
		ts.runner.Stop()
		log.Debug().Str("gameId", id).Msg("train session evicted")
	})
	s.memories = store.NewMemoryStore[*memorySession](cfg.SessionMax, cfg.SessionTTL, nil)
	s.puzzles = store.NewMemoryStore[*puzzleSession](cfg.SessionMax, cfg.SessionTTL, nil)
	s.scrambles = store.NewMemoryStore[*scrambleSession](cfg.SessionMax, cfg.SessionTTL, nil)
	s.dailies = store.NewMemoryStore[*dailySession](cfg.SessionMax, cfg.SessionTTL, nil)

	// --- middleware ---
	s.r.Use(chimw.RequestID)
	s.r.Use(chimw.RealIP)
	s.r.Use(requestLogger(log.Logger))
	s.r.Use(chimw.Recoverer)
	s.r.Use(s.cors)

	// Train stream: no timeout, optional auth.
	s.r.With(s.withOptionalAuth()).Get("/train/{id}/ws", s.handleTrainWS)

	s.r.Group(func(r chi.Router) {
		r.Use(chimw.Timeout(cfg.RequestTimeout))
		r.Use(jsonContentType)

		r.Get("/", func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, map[string]any{
				"service":   "braindev-go",
				"endpoints": []string{"/health", "/games", "/train", "/memory", "/puzzle", "/scramble", "/daily", "/auth/*"},
			})
		})
		r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, map[string]bool{"ok": true})
		})
		r.Get("/games", func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, catalog.All())
		})
		r.Get("/games/{kind}", func(w http.ResponseWriter, r *http.Request) {
			e, ok := catalog.Lookup(catalog.Kind(chi.URLParam(r, "kind")))
			if !ok {
				writeError(w, http.StatusNotFound, "not_found")
				return
			}
			writeJSON(w, e)
		})

		// Game endpoints: OPTIONAL AUTH (guests can play)
		r.Group(func(r chi.Router) {
			r.Use(s.withOptionalAuth())
			s.mountTrain(r)
			s.mountMemory(r)
			s.mountPuzzle(r)
			s.mountScramble(r)
			s.mountDaily(r)
		})

		s.mountAuthRoutes(r)

		r.NotFound(func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, map[string]string{"error": "not_found", "path": r.URL.Path}, http.StatusNotFound)
		})
	})

	return s
}

// Router exposes the internal router (used by main and tests).
func (s *Server) Router() chi.Router { return s.r }

// Close stops every running train loop.
func (s *Server) Close() {
	s.cancel()
}

func (s *Server) now() time.Time { return s.cfg.Now() }

// ----------------------------- middleware ----------------------------------

// requestLogger attaches l to each request and writes one access line.
func requestLogger(l zerolog.Logger) func(http.Handler) http.Handler {
	withLogger := hlog.NewHandler(l)
	access := hlog.AccessHandler(func(r *http.Request, status, size int, d time.Duration) {
		hlog.FromRequest(r).Info().
			Str("reqId", chimw.GetReqID(r.Context())).
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", status).
			Int("size", size).
			Dur("duration", d).
			Msg("request")
	})
	return func(next http.Handler) http.Handler {
		return withLogger(access(next))
	}
}

// jsonContentType sets a default JSON Content-Type header on all responses.
func jsonContentType(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		next.ServeHTTP(w, r)
	})
}

// cors enables credentialed CORS for the configured client origin.
func (s *Server) cors(next http.Handler) http.Handler {
	origin := s.cfg.ClientOrigin
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Vary", "Origin")
		w.Header().Set("Access-Control-Allow-Origin", origin)
		w.Header().Set("Access-Control-Allow-Credentials", "true")
		w.Header().Set("Access-Control-Allow-Methods", "GET,POST,DELETE,OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// ------------------------------- helpers -----------------------------------

// writeJSON encodes v with an optional status (default 200).
func writeJSON(w http.ResponseWriter, v any, status ...int) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	if len(status) > 0 {
		w.WriteHeader(status[0])
	}
	_ = json.NewEncoder(w).Encode(v)
}

// writeError sends {"error": code}.
func writeError(w http.ResponseWriter, status int, code string) {
	writeJSON(w, map[string]string{"error": code}, status)
}

// decode reads an optional JSON body into v. An empty body is not an error.
func decode(r *http.Request, v any) error {
	if r.Body == nil || r.ContentLength == 0 {
		return nil
	}
	return json.NewDecoder(r.Body).Decode(v)
}

// recorder persists at most one result per finished game.
type recorder struct {
	owner owner
	done  atomic.Bool
}

// rearm allows the next finish to be recorded (after a reset).
func (rc *recorder) rearm() { rc.done.Store(false) }

// record stores res for rc's owner unless this game was already recorded.
// Failures are logged; they never fail the request.
func (s *Server) record(rc *recorder, gameID string, res results.Result) {
	if !rc.done.CompareAndSwap(false, true) {
		return
	}
	if rc.owner.UserID != "" {
		res.UserID = rc.owner.UserID
	} else {
		res.AnonymousID = rc.owner.AnonID
	}
	if res.FinishedAt.IsZero() {
		res.FinishedAt = s.now()
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := s.results.Record(ctx, res); err != nil {
		log.Warn().Err(err).Str("gameId", gameID).Str("kind", res.Kind).Msg("record result")
		return
	}
	log.Info().Str("gameId", gameID).Str("kind", res.Kind).Int("score", res.Score).Msg("result saved")
}
