// internal/memory/memory.go
//
// Memory-match card game.
// Responsibilities:
//   - Deal 12 shuffled cards (6 emoji pairs).
//   - Flip cards two at a time; matches score, mismatches hide again.
//   - Track score, moves and completion.
//
// Notes:
//   - A mismatched pair stays face up for HideDelay. Hiding is settled
//     lazily against the injected clock whenever the board is touched, so
//     no timer goroutine outlives the game.
//   - Invalid flips are ignored (OutcomeIgnored), never errors.

package memory

import (
	"math/rand/v2"
	"sync"
	"time"
)

// Faces are the card pictures; each appears twice on the board.
var Faces = []string{"🚀", "🎮", "🎯", "🎨", "🎪", "🎭"}

const (
	MatchPoints = 10
	HideDelay   = time.Second
	hidden      = "❓"
)

// Outcome describes what a flip did.
type Outcome string

const (
	OutcomeIgnored  Outcome = "ignored"
	OutcomeFlipped  Outcome = "flipped"
	OutcomeMatch    Outcome = "match"
	OutcomeMismatch Outcome = "mismatch"
)

// Card is one board position.
type Card struct {
	ID      int    `json:"id"`
	Face    string `json:"emoji"`
	Flipped bool   `json:"isFlipped"`
	Matched bool   `json:"isMatched"`
}

// Game holds a single memory-match session.
type Game struct {
	ID string

	mu       sync.Mutex
	rng      *rand.Rand
	now      func() time.Time
	cards    []Card
	flipped  []int
	hideAt   time.Time
	score    int
	moves    int
	complete bool
	started  time.Time
}

// New deals a fresh board. rng and now may be nil.
func New(id string, rng *rand.Rand, now func() time.Time) *Game {
	if rng == nil {
		seed := uint64(time.Now().UnixNano())
		rng = rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
	}
	if now == nil {
		now = time.Now
	}
	g := &Game{ID: id, rng: rng, now: now}
	g.deal()
	return g
}

// Reset re-deals the board and clears the counters.
func (g *Game) Reset() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.deal()
}

func (g *Game) deal() {
	faces := make([]string, 0, len(Faces)*2)
	faces = append(faces, Faces...)
	faces = append(faces, Faces...)
	g.rng.Shuffle(len(faces), func(i, j int) { faces[i], faces[j] = faces[j], faces[i] })

	g.cards = make([]Card, len(faces))
	for i, f := range faces {
		g.cards[i] = Card{ID: i, Face: f}
	}
	g.flipped = nil
	g.hideAt = time.Time{}
	g.score, g.moves = 0, 0
	g.complete = false
	g.started = g.now()
}

// settle hides a mismatched pair once HideDelay has passed.
func (g *Game) settle() {
	if len(g.flipped) != 2 || g.hideAt.IsZero() || g.now().Before(g.hideAt) {
		return
	}
	for _, id := range g.flipped {
		g.cards[id].Flipped = false
	}
	g.flipped = nil
	g.hideAt = time.Time{}
}

// Flip turns card id face up and resolves a pair when it is the second one.
func (g *Game) Flip(id int) Outcome {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.settle()

	if id < 0 || id >= len(g.cards) || len(g.flipped) >= 2 {
		return OutcomeIgnored
	}
	if c := g.cards[id]; c.Flipped || c.Matched {
		return OutcomeIgnored
	}

	g.cards[id].Flipped = true
	g.flipped = append(g.flipped, id)
	if len(g.flipped) < 2 {
		return OutcomeFlipped
	}

	g.moves++
	first, second := g.flipped[0], g.flipped[1]
	if g.cards[first].Face != g.cards[second].Face {
		g.hideAt = g.now().Add(HideDelay)
		return OutcomeMismatch
	}

	g.cards[first].Matched = true
	g.cards[second].Matched = true
	g.score += MatchPoints
	g.flipped = nil
	g.complete = g.allMatched()
	return OutcomeMatch
}

func (g *Game) allMatched() bool {
	for _, c := range g.cards {
		if !c.Matched {
			return false
		}
	}
	return true
}

// View is the client-facing board; face-down cards hide their picture.
type View struct {
	Cards     []Card `json:"cards"`
	Score     int    `json:"score"`
	Moves     int    `json:"moves"`
	Complete  bool   `json:"isComplete"`
	ElapsedMs int64  `json:"elapsedMs"`
}

// View returns the current board.
func (g *Game) View() View {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.settle()

	cards := make([]Card, len(g.cards))
	for i, c := range g.cards {
		if !c.Flipped && !c.Matched {
			c.Face = hidden
		}
		cards[i] = c
	}
	return View{
		Cards:     cards,
		Score:     g.score,
		Moves:     g.moves,
		Complete:  g.complete,
		ElapsedMs: g.now().Sub(g.started).Milliseconds(),
	}
}

// Complete reports whether every pair has been found.
func (g *Game) Complete() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.complete
}
