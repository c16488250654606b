// internal/puzzle/puzzle.go
//
// 3x3 sliding-tile puzzle ("Puzzle Master").
// The board holds values 1..8 and a blank (0); the goal is 1..8 in reading
// order with the blank in the last cell. Only tiles orthogonally adjacent to
// the blank can slide.

package puzzle

import (
	"fmt"
	"math/rand/v2"
	"sync"
	"time"
)

const (
	Size  = 3
	Cells = Size * Size
	Blank = 0
)

// Game holds a single puzzle session.
type Game struct {
	ID string

	mu       sync.Mutex
	rng      *rand.Rand
	now      func() time.Time
	board    [Cells]int // board[pos] = tile value
	moves    int
	complete bool
	started  time.Time
	finished time.Time
}

// New returns a shuffled, solvable puzzle. rng and now may be nil.
func New(id string, rng *rand.Rand, now func() time.Time) *Game {
	if rng == nil {
		seed := uint64(time.Now().UnixNano())
		rng = rand.New(rand.NewPCG(seed, seed+1))
	}
	if now == nil {
		now = time.Now
	}
	g := &Game{ID: id, rng: rng, now: now}
	g.shuffle()
	return g
}

// FromBoard builds a game from a fixed layout, for tests and replays.
func FromBoard(id string, board [Cells]int, now func() time.Time) (*Game, error) {
	seen := [Cells]bool{}
	for _, v := range board {
		if v < 0 || v >= Cells || seen[v] {
			return nil, fmt.Errorf("puzzle: invalid board %v", board)
		}
		seen[v] = true
	}
	if now == nil {
		now = time.Now
	}
	g := &Game{ID: id, now: now, board: board, started: now()}
	if g.solved() {
		g.complete, g.finished = true, g.started
	}
	return g, nil
}

// Reset deals a new shuffled board.
func (g *Game) Reset() {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.rng == nil {
		seed := uint64(time.Now().UnixNano())
		g.rng = rand.New(rand.NewPCG(seed, seed+1))
	}
	g.shuffle()
}

func (g *Game) shuffle() {
	for i := range g.board {
		g.board[i] = i
	}
	for {
		g.rng.Shuffle(Cells, func(i, j int) { g.board[i], g.board[j] = g.board[j], g.board[i] })
		if !solvable(g.board) {
			g.swapTwoTiles()
		}
		if !g.solved() {
			break
		}
	}
	g.moves = 0
	g.complete = false
	g.started = g.now()
	g.finished = time.Time{}
}

// swapTwoTiles flips permutation parity without moving the blank.
func (g *Game) swapTwoTiles() {
	a, b := -1, -1
	for i, v := range g.board {
		if v == Blank {
			continue
		}
		if a < 0 {
			a = i
		} else {
			b = i
			break
		}
	}
	g.board[a], g.board[b] = g.board[b], g.board[a]
}

// solvable reports whether board can reach the goal. On an odd-width grid
// that holds exactly when the tile inversion count is even.
func solvable(board [Cells]int) bool {
	inv := 0
	for i := 0; i < Cells; i++ {
		for j := i + 1; j < Cells; j++ {
			if board[i] != Blank && board[j] != Blank && board[i] > board[j] {
				inv++
			}
		}
	}
	return inv%2 == 0
}

// target is the goal position of a tile value.
func target(v int) int {
	if v == Blank {
		return Cells - 1
	}
	return v - 1
}

func (g *Game) solved() bool {
	for pos, v := range g.board {
		if target(v) != pos {
			return false
		}
	}
	return true
}

func (g *Game) blank() int {
	for pos, v := range g.board {
		if v == Blank {
			return pos
		}
	}
	return Cells - 1
}

func adjacent(a, b int) bool {
	ar, ac := a/Size, a%Size
	br, bc := b/Size, b%Size
	dr, dc := ar-br, ac-bc
	return (dr*dr == 1 && dc == 0) || (dc*dc == 1 && dr == 0)
}

// Movable reports whether the tile at pos can slide into the blank.
func (g *Game) Movable(pos int) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.movable(pos)
}

func (g *Game) movable(pos int) bool {
	if pos < 0 || pos >= Cells || g.board[pos] == Blank {
		return false
	}
	return adjacent(pos, g.blank())
}

// Move slides the tile at pos into the blank. It reports whether the board
// changed; moves on a finished puzzle or non-adjacent tiles are ignored.
func (g *Game) Move(pos int) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.complete || !g.movable(pos) {
		return false
	}
	b := g.blank()
	g.board[pos], g.board[b] = g.board[b], g.board[pos]
	g.moves++
	if g.solved() {
		g.complete = true
		g.finished = g.now()
	}
	return true
}

// Elapsed is the play time, frozen once the puzzle is solved.
func (g *Game) Elapsed() time.Duration {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.elapsed()
}

func (g *Game) elapsed() time.Duration {
	if g.complete {
		return g.finished.Sub(g.started)
	}
	return g.now().Sub(g.started)
}

// FormatElapsed renders d as m:ss.
func FormatElapsed(d time.Duration) string {
	secs := int(d / time.Second)
	return fmt.Sprintf("%d:%02d", secs/60, secs%60)
}

// View is the client-facing board.
type View struct {
	Board     [Cells]int `json:"board"`
	Movable   []int      `json:"movable"`
	Moves     int        `json:"moves"`
	Complete  bool       `json:"isComplete"`
	ElapsedMs int64      `json:"elapsedMs"`
	Elapsed   string     `json:"elapsed"`
}

// View returns the current board.
func (g *Game) View() View {
	g.mu.Lock()
	defer g.mu.Unlock()
	movable := []int{}
	if !g.complete {
		for pos := range g.board {
			if g.movable(pos) {
				movable = append(movable, pos)
			}
		}
	}
	el := g.elapsed()
	return View{
		Board:     g.board,
		Movable:   movable,
		Moves:     g.moves,
		Complete:  g.complete,
		ElapsedMs: el.Milliseconds(),
		Elapsed:   FormatElapsed(el),
	}
}

// Complete reports whether the goal has been reached.
func (g *Game) Complete() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.complete
}
