package memory

import (
	"math/rand/v2"
	"testing"
	"time"
)

type fakeClock struct{ t time.Time }

func (c *fakeClock) now() time.Time           { return c.t }
func (c *fakeClock) advance(d time.Duration) { c.t = c.t.Add(d) }

func newTestGame() (*Game, *fakeClock) {
	clk := &fakeClock{t: time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)}
	return New("m1", rand.New(rand.NewPCG(1, 2)), clk.now), clk
}

// pairs returns the board indices grouped by face.
func pairs(g *Game) map[string][]int {
	out := map[string][]int{}
	for _, c := range g.cards {
		out[c.Face] = append(out[c.Face], c.ID)
	}
	return out
}

func mismatchedPair(g *Game) (int, int) {
	for i := 1; i < len(g.cards); i++ {
		if g.cards[i].Face != g.cards[0].Face {
			return 0, i
		}
	}
	panic("board has a single face")
}

func TestDealHasSixPairs(t *testing.T) {
	g, _ := newTestGame()
	p := pairs(g)
	if len(g.cards) != 12 || len(p) != 6 {
		t.Fatalf("cards=%d faces=%d", len(g.cards), len(p))
	}
	for face, ids := range p {
		if len(ids) != 2 {
			t.Errorf("face %s appears %d times", face, len(ids))
		}
	}
}

func TestMatchScores(t *testing.T) {
	g, _ := newTestGame()
	ids := pairs(g)[Faces[0]]
	if out := g.Flip(ids[0]); out != OutcomeFlipped {
		t.Fatalf("first flip = %s", out)
	}
	if out := g.Flip(ids[1]); out != OutcomeMatch {
		t.Fatalf("second flip = %s", out)
	}
	v := g.View()
	if v.Score != 10 || v.Moves != 1 {
		t.Errorf("score=%d moves=%d", v.Score, v.Moves)
	}
	if !v.Cards[ids[0]].Matched || !v.Cards[ids[1]].Matched {
		t.Errorf("pair not matched")
	}
}

func TestMismatchHidesAfterDelay(t *testing.T) {
	g, clk := newTestGame()
	a, b := mismatchedPair(g)
	g.Flip(a)
	if out := g.Flip(b); out != OutcomeMismatch {
		t.Fatalf("flip = %s", out)
	}

	// A third card is refused while the pair is showing.
	third := -1
	for i := range g.cards {
		if i != a && i != b {
			third = i
			break
		}
	}
	if out := g.Flip(third); out != OutcomeIgnored {
		t.Errorf("third flip during mismatch = %s", out)
	}
	if v := g.View(); !v.Cards[a].Flipped || v.Cards[a].Face == hidden {
		t.Errorf("mismatched card hidden too early")
	}

	clk.advance(HideDelay)
	v := g.View()
	if v.Cards[a].Flipped || v.Cards[b].Flipped {
		t.Errorf("mismatched pair still face up after delay")
	}
	if v.Cards[a].Face != hidden {
		t.Errorf("face-down card leaked its face %q", v.Cards[a].Face)
	}
	if v.Score != 0 || v.Moves != 1 {
		t.Errorf("score=%d moves=%d", v.Score, v.Moves)
	}
	if out := g.Flip(third); out != OutcomeFlipped {
		t.Errorf("flip after settle = %s", out)
	}
}

func TestIgnoredFlips(t *testing.T) {
	g, _ := newTestGame()
	for _, id := range []int{-1, 12, 99} {
		if out := g.Flip(id); out != OutcomeIgnored {
			t.Errorf("Flip(%d) = %s", id, out)
		}
	}
	g.Flip(3)
	if out := g.Flip(3); out != OutcomeIgnored {
		t.Errorf("re-flip = %s", out)
	}
}

func TestCompleteGame(t *testing.T) {
	g, _ := newTestGame()
	for _, ids := range pairs(g) {
		g.Flip(ids[0])
		g.Flip(ids[1])
	}
	v := g.View()
	if !v.Complete || !g.Complete() {
		t.Fatalf("game not complete")
	}
	if v.Score != 60 || v.Moves != 6 {
		t.Errorf("score=%d moves=%d", v.Score, v.Moves)
	}

	g.Reset()
	v = g.View()
	if v.Complete || v.Score != 0 || v.Moves != 0 {
		t.Errorf("reset view = %+v", v)
	}
}
