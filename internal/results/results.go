// internal/results/results.go
//
// SQLite persistence for accounts and finished games.
// Responsibilities:
//   - User accounts: signup validation, bcrypt hashing, login checks.
//   - Finished-game results owned by a user or an anonymous cookie id.
//   - Claiming anonymous results after signup/login.
//   - Per-kind stats and recent history for a user.

package results

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

var (
	ErrUsernameTaken      = errors.New("username taken")
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrNotFound           = errors.New("not found")
)

// User is an account row.
type User struct {
	ID           string    `json:"id"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"createdAt"`
}

// Result is one finished game.
type Result struct {
	ID          string    `json:"id"`
	UserID      string    `json:"-"`
	AnonymousID string    `json:"-"`
	Kind        string    `json:"kind"`
	Score       int       `json:"score"`
	Level       int       `json:"level"`
	Moves       int       `json:"moves"`
	ElapsedMs   int64     `json:"elapsedMs"`
	Won         bool      `json:"won"`
	FinishedAt  time.Time `json:"finishedAt"`
}

// KindStats aggregates a user's results for one game kind.
type KindStats struct {
	Kind       string `json:"kind"`
	Played     int    `json:"played"`
	Won        int    `json:"won"`
	BestScore  int    `json:"bestScore"`
	TotalScore int    `json:"totalScore"`
}

// finishedLayout is fixed-width so finished_at sorts as text.
const finishedLayout = "2006-01-02T15:04:05.000000000Z07:00"

// Store wraps the database handle.
type Store struct{ db *sql.DB }

// NewStore returns a Store on a migrated database.
func NewStore(db *sql.DB) *Store { return &Store{db: db} }

// ValidateSignup enforces username/password rules.
func ValidateSignup(u, p string) error {
	if len(u) < 3 || len(u) > 24 {
		return errors.New("username must be 3–24 chars")
	}
	for _, r := range u {
		if !(r == '_' || r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z' || r >= '0' && r <= '9') {
			return errors.New("username: letters, numbers, underscore only")
		}
	}
	if len(p) < 8 || len(p) > 72 {
		return errors.New("password must be 8–72 chars")
	}
	return nil
}

// CreateUser validates, hashes and inserts a new account.
func (s *Store) CreateUser(ctx context.Context, username, pw string) (*User, error) {
	username = strings.TrimSpace(username)
	if err := ValidateSignup(username, pw); err != nil {
		return nil, err
	}
	var exists int
	err := s.db.QueryRowContext(ctx, `SELECT 1 FROM users WHERE username=?`, username).Scan(&exists)
	if err == nil {
		return nil, ErrUsernameTaken
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}

	h, err := bcrypt.GenerateFromPassword([]byte(pw), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	u := &User{
		ID:           uuid.NewString(),
		Username:     username,
		PasswordHash: string(h),
		CreatedAt:    time.Now().UTC().Truncate(time.Second),
	}
	_, err = s.db.ExecContext(ctx, `INSERT INTO users (id, username, password_hash, created_at) VALUES (?,?,?,?)`,
		u.ID, u.Username, u.PasswordHash, u.CreatedAt.Format(time.RFC3339))
	if err != nil {
		return nil, err
	}
	return u, nil
}

// Authenticate returns the user when the password matches.
func (s *Store) Authenticate(ctx context.Context, username, pw string) (*User, error) {
	row := s.db.QueryRowContext(ctx, `SELECT id, username, password_hash, created_at FROM users WHERE username=?`,
		strings.TrimSpace(username))
	u, err := scanUser(row)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(pw)) != nil {
		return nil, ErrInvalidCredentials
	}
	return u, nil
}

// FindUser loads a user by id.
func (s *Store) FindUser(ctx context.Context, id string) (*User, error) {
	row := s.db.QueryRowContext(ctx, `SELECT id, username, password_hash, created_at FROM users WHERE id=?`, id)
	return scanUser(row)
}

func scanUser(row *sql.Row) (*User, error) {
	var u User
	var created string
	if err := row.Scan(&u.ID, &u.Username, &u.PasswordHash, &created); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	u.CreatedAt, _ = time.Parse(time.RFC3339, created)
	return &u, nil
}

// Record stores a finished game. Exactly one of UserID/AnonymousID should
// be set; an empty ID is generated.
func (s *Store) Record(ctx context.Context, r Result) error {
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	if r.FinishedAt.IsZero() {
		r.FinishedAt = time.Now()
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT OR IGNORE INTO results
			(id, user_id, anonymous_id, kind, score, level, moves, elapsed_ms, won, finished_at)
		VALUES (?,?,?,?,?,?,?,?,?,?)`,
		r.ID, nullable(r.UserID), nullable(r.AnonymousID), r.Kind, r.Score, r.Level, r.Moves,
		r.ElapsedMs, r.Won, r.FinishedAt.UTC().Format(finishedLayout))
	return err
}

func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}

// ClaimAnonymous moves anonymous results to a user account.
func (s *Store) ClaimAnonymous(ctx context.Context, anonID, userID string) error {
	if anonID == "" || userID == "" {
		return nil
	}
	_, err := s.db.ExecContext(ctx, `UPDATE results SET user_id=?, anonymous_id=NULL WHERE anonymous_id=?`, userID, anonID)
	return err
}

// Recent returns a user's latest results, newest first.
func (s *Store) Recent(ctx context.Context, userID string, limit int) ([]Result, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, kind, score, level, moves, elapsed_ms, won, finished_at
		FROM results WHERE user_id=? ORDER BY finished_at DESC LIMIT ?`, userID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []Result{}
	for rows.Next() {
		var r Result
		var finished string
		if err := rows.Scan(&r.ID, &r.Kind, &r.Score, &r.Level, &r.Moves, &r.ElapsedMs, &r.Won, &finished); err != nil {
			return nil, err
		}
		r.UserID = userID
		r.FinishedAt, _ = time.Parse(finishedLayout, finished)
		out = append(out, r)
	}
	return out, rows.Err()
}

// Stats aggregates a user's results per game kind.
func (s *Store) Stats(ctx context.Context, userID string) ([]KindStats, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT kind, COUNT(*), COALESCE(SUM(won),0), COALESCE(MAX(score),0), COALESCE(SUM(score),0)
		FROM results WHERE user_id=? GROUP BY kind ORDER BY kind`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []KindStats{}
	for rows.Next() {
		var k KindStats
		if err := rows.Scan(&k.Kind, &k.Played, &k.Won, &k.BestScore, &k.TotalScore); err != nil {
			return nil, err
		}
		out = append(out, k)
	}
	return out, rows.Err()
}
