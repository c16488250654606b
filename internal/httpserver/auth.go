// internal/httpserver/auth.go
//
// Accounts, JWT cookies and per-user history.
// Routes:
//   - POST /auth/signup, POST /auth/login, POST /auth/logout
//   - GET  /auth/me, GET /stats/me, GET /games/mine (require auth)
//
// Guests get a stable anonymous cookie; whatever they finish is claimed by
// the account they sign up or log in with.

package httpserver

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/go-chi/chi/v5"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/robalobadob/braindev/internal/results"
)

const anonCookieName = "braindev_anon"

// authUser is placed into request context by auth middleware.
type authUser struct {
	ID       string `json:"id"`
	Username string `json:"username"`
}

// ctxUserKey is the context key type for storing authUser.
type ctxUserKey struct{}

func currentUser(r *http.Request) *authUser {
	u, _ := r.Context().Value(ctxUserKey{}).(*authUser)
	return u
}

// owner identifies who a game session belongs to.
type owner struct {
	UserID string
	AnonID string
}

// ownerOf returns the logged-in user, or the anon cookie (set if missing).
func (s *Server) ownerOf(w http.ResponseWriter, r *http.Request) owner {
	if me := currentUser(r); me != nil {
		return owner{UserID: me.ID}
	}
	return owner{AnonID: s.ensureAnonID(w, r)}
}

func (o owner) key() string {
	if o.UserID != "" {
		return "u:" + o.UserID
	}
	return "a:" + o.AnonID
}

// mountAuthRoutes registers authentication + gated routes.
func (s *Server) mountAuthRoutes(r chi.Router) {
	r.Post("/auth/signup", s.handleSignup)
	r.Post("/auth/login", s.handleLogin)
	r.Post("/auth/logout", s.handleLogout)

	r.Group(func(r chi.Router) {
		r.Use(s.requireAuth())
		r.Get("/auth/me", func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, currentUser(r))
		})
		r.Get("/stats/me", s.handleStats)
		r.Get("/games/mine", s.handleMyGames)
	})
}

type credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// handleSignup creates a user, signs a JWT, sets the cookie and claims anon history.
func (s *Server) handleSignup(w http.ResponseWriter, r *http.Request) {
	var body credentials
	if err := decode(r, &body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json")
		return
	}
	u, err := s.results.CreateUser(r.Context(), body.Username, body.Password)
	switch {
	case errors.Is(err, results.ErrUsernameTaken):
		writeError(w, http.StatusConflict, "username_taken")
		return
	case err != nil:
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if !s.startSession(w, r, u) {
		return
	}
	writeJSON(w, map[string]any{"id": u.ID, "username": u.Username, "createdAt": u.CreatedAt})
}

// handleLogin authenticates, sets the cookie and claims anon history.
func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var body credentials
	if err := decode(r, &body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json")
		return
	}
	u, err := s.results.Authenticate(r.Context(), body.Username, body.Password)
	switch {
	case errors.Is(err, results.ErrInvalidCredentials):
		writeError(w, http.StatusUnauthorized, "invalid_credentials")
		return
	case err != nil:
		log.Error().Err(err).Msg("login")
		writeError(w, http.StatusInternalServerError, "db_error")
		return
	}
	if !s.startSession(w, r, u) {
		return
	}
	writeJSON(w, map[string]any{"id": u.ID, "username": u.Username})
}

func (s *Server) startSession(w http.ResponseWriter, r *http.Request, u *results.User) bool {
	tok, exp, err := s.signJWT(u.ID, u.Username)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "sign_failed")
		return false
	}
	s.setCookie(w, s.cfg.CookieName, tok, exp)
	if c, err := r.Cookie(anonCookieName); err == nil && c.Value != "" {
		if err := s.results.ClaimAnonymous(r.Context(), c.Value, u.ID); err != nil {
			log.Warn().Err(err).Str("user", u.ID).Msg("claim anon results")
		}
		if err := s.daily.Reassign(r.Context(), c.Value, u.ID); err != nil {
			log.Warn().Err(err).Str("user", u.ID).Msg("claim anon daily results")
		}
	}
	return true
}

// handleLogout clears the auth cookie.
func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	s.setCookie(w, s.cfg.CookieName, "", time.Time{})
	writeJSON(w, map[string]bool{"ok": true})
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	me := currentUser(r)
	stats, err := s.results.Stats(r.Context(), me.ID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "db_error")
		return
	}
	played, won := 0, 0
	for _, k := range stats {
		played += k.Played
		won += k.Won
	}
	writeJSON(w, map[string]any{
		"id":          me.ID,
		"gamesPlayed": played,
		"wins":        won,
		"byKind":      stats,
	})
}

// gameRow is a finished game with a human-friendly age.
type gameRow struct {
	results.Result
	Ago string `json:"ago"`
}

func (s *Server) handleMyGames(w http.ResponseWriter, r *http.Request) {
	rows, err := s.results.Recent(r.Context(), currentUser(r).ID, 50)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "db_error")
		return
	}
	now := s.now()
	out := make([]gameRow, len(rows))
	for i, res := range rows {
		out[i] = gameRow{Result: res, Ago: humanize.RelTime(res.FinishedAt, now, "ago", "from now")}
	}
	writeJSON(w, out)
}

// --------------------------- auth middleware -------------------------------

// withOptionalAuth decorates requests with user context if a valid JWT is
// present. It never 401s.
func (s *Server) withOptionalAuth() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if u, err := s.authenticate(r); err == nil {
				r = r.WithContext(context.WithValue(r.Context(), ctxUserKey{}, u))
			}
			next.ServeHTTP(w, r)
		})
	}
}

// requireAuth enforces a valid JWT for an existing user.
func (s *Server) requireAuth() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			u, err := s.authenticate(r)
			if errors.Is(err, errNoToken) {
				writeError(w, http.StatusUnauthorized, "unauthorized")
				return
			}
			if err != nil {
				writeError(w, http.StatusUnauthorized, "invalid_token")
				return
			}
			next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), ctxUserKey{}, u)))
		})
	}
}

var errNoToken = errors.New("no token")

// authenticate parses the bearer/cookie token and checks the user still exists.
func (s *Server) authenticate(r *http.Request) (*authUser, error) {
	tok := s.bearerOrCookie(r)
	if tok == "" {
		return nil, errNoToken
	}
	claims := jwt.MapClaims{}
	t, err := jwt.ParseWithClaims(tok, claims, func(t *jwt.Token) (interface{}, error) {
		return []byte(s.cfg.JWTSecret), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil || !t.Valid {
		return nil, errors.New("invalid token")
	}
	id, _ := claims["id"].(string)
	if id == "" {
		return nil, errors.New("invalid token")
	}
	u, err := s.results.FindUser(r.Context(), id)
	if err != nil {
		return nil, err
	}
	return &authUser{ID: u.ID, Username: u.Username}, nil
}

// ------------------------------ JWT & cookies ------------------------------

// signJWT creates an HS256 JWT with id/username and the configured expiry.
func (s *Server) signJWT(id, username string) (string, time.Time, error) {
	now := time.Now()
	exp := now.Add(time.Duration(s.cfg.JWTExpiresDays) * 24 * time.Hour)
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"id":       id,
		"username": username,
		"exp":      exp.Unix(),
		"iat":      now.Unix(),
	})
	ss, err := t.SignedString([]byte(s.cfg.JWTSecret))
	return ss, exp, err
}

// setCookie writes an HttpOnly cookie; an empty value deletes it.
func (s *Server) setCookie(w http.ResponseWriter, name, value string, exp time.Time) {
	sameSite := http.SameSiteLaxMode
	if s.cfg.Production {
		sameSite = http.SameSiteNoneMode // required for third-party contexts when Secure
	}
	c := &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		HttpOnly: true,
		Secure:   s.cfg.Production,
		SameSite: sameSite,
		Expires:  exp,
	}
	if value == "" {
		c.Expires = time.Time{}
		c.MaxAge = -1
	}
	http.SetCookie(w, c)
}

// ensureAnonID returns an existing anon cookie or sets a new one.
func (s *Server) ensureAnonID(w http.ResponseWriter, r *http.Request) string {
	if c, err := r.Cookie(anonCookieName); err == nil && c.Value != "" {
		return c.Value
	}
	id := uuid.NewString()
	s.setCookie(w, anonCookieName, id, time.Now().Add(180*24*time.Hour))
	// Later handlers in the same request see the new id.
	r.AddCookie(&http.Cookie{Name: anonCookieName, Value: id})
	return id
}

// bearerOrCookie extracts a bearer token from Authorization or the auth cookie.
func (s *Server) bearerOrCookie(r *http.Request) string {
	if a := r.Header.Get("Authorization"); strings.HasPrefix(strings.ToLower(a), "bearer ") {
		return strings.TrimSpace(a[7:])
	}
	if c, err := r.Cookie(s.cfg.CookieName); err == nil {
		return c.Value
	}
	return ""
}
