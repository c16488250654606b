package daily

import (
	"context"
	"database/sql"
	"time"
)

// Result is one finished daily challenge.
type Result struct {
	PlayerID  string `json:"playerId"`
	Date      string `json:"date"`
	WordIndex int    `json:"wordIndex"`
	Guesses   int    `json:"guesses"`
	ElapsedMs int    `json:"elapsedMs"`
}

// Entry is one leaderboard line. Username is empty for guests.
type Entry struct {
	Rank      int    `json:"rank"`
	PlayerID  string `json:"playerId"`
	Username  string `json:"username,omitempty"`
	Guesses   int    `json:"guesses"`
	ElapsedMs int    `json:"elapsedMs"`
}

// Store reads and writes daily_results.
type Store struct{ db *sql.DB }

func NewStore(db *sql.DB) *Store { return &Store{db: db} }

// Played reports whether playerID already finished the challenge for date.
func (s *Store) Played(ctx context.Context, playerID, date string) (bool, error) {
	var n int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(1) FROM daily_results WHERE user_id=? AND date=?`, playerID, date).Scan(&n)
	return n > 0, err
}

// Save stores r and reports whether it was new. Only the first result per
// player and date counts.
func (s *Store) Save(ctx context.Context, r Result) (bool, error) {
	res, err := s.db.ExecContext(ctx, `
		INSERT OR IGNORE INTO daily_results (user_id, date, word_index, guesses, elapsed_ms)
		VALUES (?,?,?,?,?)`, r.PlayerID, r.Date, r.WordIndex, r.Guesses, r.ElapsedMs)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	return n == 1, err
}

// Reassign moves results from a guest id to an account. Dates the account
// already has keep the account's result.
func (s *Store) Reassign(ctx context.Context, from, to string) error {
	if from == "" || to == "" {
		return nil
	}
	_, err := s.db.ExecContext(ctx,
		`UPDATE OR IGNORE daily_results SET user_id=? WHERE user_id=?`, to, from)
	return err
}

// Leaderboard ranks date's results by time, then guesses, then who finished first.
func (s *Store) Leaderboard(ctx context.Context, date string, limit int) ([]Entry, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT d.user_id, COALESCE(u.username, ''), d.guesses, d.elapsed_ms
		FROM daily_results d
		LEFT JOIN users u ON u.id = d.user_id
		WHERE d.date=?
		ORDER BY d.elapsed_ms ASC, d.guesses ASC, d.created_at ASC, d.rowid ASC
		LIMIT ?`, date, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []Entry{}
	for rows.Next() {
		e := Entry{Rank: len(out) + 1}
		if err := rows.Scan(&e.PlayerID, &e.Username, &e.Guesses, &e.ElapsedMs); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

// Streak counts consecutive days with a result, ending at today or, if
// today is not played yet, yesterday.
func (s *Store) Streak(ctx context.Context, playerID string, today time.Time) (int, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT date FROM daily_results WHERE user_id=? ORDER BY date DESC`, playerID)
	if err != nil {
		return 0, err
	}
	defer rows.Close()

	day := today
	streak := 0
	for rows.Next() {
		var d string
		if err := rows.Scan(&d); err != nil {
			return 0, err
		}
		if _, err := time.Parse("2006-01-02", d); err != nil || d > DateKey(day) {
			// Malformed keys and future dates are not part of any streak.
			continue
		}
		// A missing today does not break the streak yet.
		if streak == 0 && d != DateKey(day) && d == DateKey(day.AddDate(0, 0, -1)) {
			day = day.AddDate(0, 0, -1)
		}
		if d != DateKey(day) {
			break
		}
		streak++
		day = day.AddDate(0, 0, -1)
	}
	return streak, rows.Err()
}
