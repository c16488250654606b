// internal/scramble/scramble.go
//
// Word Scramble game engine.
// Responsibilities:
//   - Pick a word, shuffle its letters, and time the round (RoundTime).
//   - Score correct guesses by speed (10 + seconds left) and level up.
//   - Hand out up to HintsPerRound hints revealing a random letter.
//   - End the game when a round's clock runs out.
//
// Notes:
//   - The clock is injected; expiry is evaluated whenever the game is read
//     or played, so there is no background timer to cancel.
//   - Wrong guesses cost nothing.

package scramble

import (
	"errors"
	"math/rand/v2"
	"strings"
	"sync"
	"time"

	"github.com/robalobadob/braindev/internal/words"
)

const (
	RoundTime     = 60 * time.Second
	HintsPerRound = 3
	BasePoints    = 10
)

var (
	ErrTimeUp  = errors.New("time is up")
	ErrNoHints = errors.New("no hints left")
)

// Picker chooses the next word.
type Picker func(rng *rand.Rand) string

// Game holds a single scramble session.
type Game struct {
	ID string

	mu         sync.Mutex
	rng        *rand.Rand
	now        func() time.Time
	pick       Picker
	word       string
	scrambled  string
	score      int
	level      int
	hints      int
	roundStart time.Time
	started    time.Time
	active     bool
}

// New starts a game. rng, now and pick may be nil; pick defaults to the
// shared word list.
func New(id string, rng *rand.Rand, now func() time.Time, pick Picker) *Game {
	if rng == nil {
		seed := uint64(time.Now().UnixNano())
		rng = rand.New(rand.NewPCG(seed, ^seed))
	}
	if now == nil {
		now = time.Now
	}
	if pick == nil {
		pick = words.Random
	}
	g := &Game{ID: id, rng: rng, now: now, pick: pick}
	g.restart()
	return g
}

// Restart zeroes score and level and begins a new round.
func (g *Game) Restart() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.restart()
}

func (g *Game) restart() {
	g.score = 0
	g.level = 1
	g.started = g.now()
	g.nextRound()
}

func (g *Game) nextRound() {
	g.word = strings.ToUpper(g.pick(g.rng))
	g.scrambled = Scramble(g.word, g.rng)
	g.hints = HintsPerRound
	g.roundStart = g.now()
	g.active = true
}

// Scramble shuffles the letters of word. When a different arrangement
// exists the result never equals word.
func Scramble(word string, rng *rand.Rand) string {
	letters := []rune(word)
	if !hasDistinct(letters) {
		return word
	}
	for {
		for i := len(letters) - 1; i > 0; i-- {
			j := rng.IntN(i + 1)
			letters[i], letters[j] = letters[j], letters[i]
		}
		if s := string(letters); s != word {
			return s
		}
	}
}

func hasDistinct(letters []rune) bool {
	for _, r := range letters[min(1, len(letters)):] {
		if r != letters[0] {
			return true
		}
	}
	return false
}

// expire ends the game once the full round time has elapsed.
func (g *Game) expire() {
	if g.active && g.remaining() <= 0 {
		g.active = false
	}
}

func (g *Game) remaining() time.Duration {
	return RoundTime - g.now().Sub(g.roundStart)
}

// secondsLeft is the countdown shown to the player, rounded up so it reads
// RoundTime down to 1 while any time is left.
func (g *Game) secondsLeft() int {
	left := g.remaining()
	if left <= 0 {
		return 0
	}
	return int((left + time.Second - 1) / time.Second)
}

// GuessResult reports a guess outcome.
type GuessResult struct {
	Correct bool `json:"correct"`
	Points  int  `json:"points"`
}

// Guess checks guess against the current word, case-insensitively.
// A correct guess scores, raises the level and starts the next round.
func (g *Game) Guess(guess string) (GuessResult, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.expire()
	if !g.active {
		return GuessResult{}, ErrTimeUp
	}
	if strings.ToUpper(strings.TrimSpace(guess)) != g.word {
		return GuessResult{}, nil
	}
	points := BasePoints + g.secondsLeft()
	g.score += points
	g.level++
	g.nextRound()
	return GuessResult{Correct: true, Points: points}, nil
}

// Hint spends one hint and returns a random letter of the word.
func (g *Game) Hint() (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.expire()
	if !g.active {
		return "", ErrTimeUp
	}
	if g.hints == 0 {
		return "", ErrNoHints
	}
	g.hints--
	letters := []rune(g.word)
	return string(letters[g.rng.IntN(len(letters))]), nil
}

// View is the client-facing state. The answer is never included.
type View struct {
	Scrambled string `json:"scrambled"`
	Score     int    `json:"score"`
	Level     int    `json:"level"`
	Hints     int    `json:"hints"`
	TimeLeft  int    `json:"timeLeft"`
	Active    bool   `json:"isActive"`
	ElapsedMs int64  `json:"elapsedMs"`
}

// View returns the current state.
func (g *Game) View() View {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.expire()
	return View{
		Scrambled: g.scrambled,
		Score:     g.score,
		Level:     g.level,
		Hints:     g.hints,
		TimeLeft:  g.secondsLeft(),
		Active:    g.active,
		ElapsedMs: g.now().Sub(g.started).Milliseconds(),
	}
}

// Finished reports whether the clock has run out.
func (g *Game) Finished() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.expire()
	return !g.active
}
