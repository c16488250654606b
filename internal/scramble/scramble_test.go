package scramble

import (
	"errors"
	"math/rand/v2"
	"sort"
	"testing"
	"time"
)

type clock struct{ t time.Time }

func (c *clock) now() time.Time { return c.t }

func fixedWords(list ...string) Picker {
	i := 0
	return func(*rand.Rand) string {
		w := list[i%len(list)]
		i++
		return w
	}
}

func newTestGame(list ...string) (*Game, *clock) {
	c := &clock{t: time.Date(2025, 4, 1, 9, 0, 0, 0, time.UTC)}
	return New("w1", rand.New(rand.NewPCG(9, 9)), c.now, fixedWords(list...)), c
}

func sortedLetters(s string) string {
	r := []rune(s)
	sort.Slice(r, func(i, j int) bool { return r[i] < r[j] })
	return string(r)
}

func TestScrambleIsPermutation(t *testing.T) {
	rng := rand.New(rand.NewPCG(1, 1))
	for _, w := range []string{"BRAIN", "PUZZLE", "FUN", "TEST"} {
		for i := 0; i < 50; i++ {
			s := Scramble(w, rng)
			if s == w {
				t.Fatalf("Scramble(%s) returned the word", w)
			}
			if sortedLetters(s) != sortedLetters(w) {
				t.Fatalf("Scramble(%s) = %s is not a permutation", w, s)
			}
		}
	}
	if s := Scramble("AAA", rng); s != "AAA" {
		t.Errorf("Scramble(AAA) = %s", s)
	}
}

func TestCorrectGuessScoresBySpeed(t *testing.T) {
	g, c := newTestGame("BRAIN", "LOGIC")
	c.t = c.t.Add(15 * time.Second)

	res, err := g.Guess(" brain ")
	if err != nil {
		t.Fatal(err)
	}
	if !res.Correct || res.Points != 10+45 {
		t.Errorf("result = %+v", res)
	}
	v := g.View()
	if v.Score != 55 || v.Level != 2 || v.TimeLeft != 60 || v.Hints != HintsPerRound {
		t.Errorf("view = %+v", v)
	}
	if sortedLetters(v.Scrambled) != sortedLetters("LOGIC") {
		t.Errorf("next round scrambled %q", v.Scrambled)
	}
}

func TestWrongGuessCostsNothing(t *testing.T) {
	g, _ := newTestGame("BRAIN")
	res, err := g.Guess("BRIAN")
	if err != nil || res.Correct {
		t.Fatalf("res=%+v err=%v", res, err)
	}
	if v := g.View(); v.Score != 0 || v.Level != 1 || !v.Active {
		t.Errorf("view = %+v", v)
	}
}

func TestHints(t *testing.T) {
	g, _ := newTestGame("BRAIN")
	for i := 0; i < HintsPerRound; i++ {
		h, err := g.Hint()
		if err != nil {
			t.Fatal(err)
		}
		if len(h) != 1 || !containsRune("BRAIN", h) {
			t.Errorf("hint %q not in word", h)
		}
	}
	if _, err := g.Hint(); !errors.Is(err, ErrNoHints) {
		t.Errorf("fourth hint err = %v", err)
	}
}

func containsRune(s, letter string) bool {
	for _, r := range s {
		if string(r) == letter {
			return true
		}
	}
	return false
}

func TestTimeUpEndsGame(t *testing.T) {
	g, c := newTestGame("BRAIN")
	c.t = c.t.Add(RoundTime)
	if !g.Finished() {
		t.Fatal("game not finished after round time")
	}
	if _, err := g.Guess("BRAIN"); !errors.Is(err, ErrTimeUp) {
		t.Errorf("guess err = %v", err)
	}
	if _, err := g.Hint(); !errors.Is(err, ErrTimeUp) {
		t.Errorf("hint err = %v", err)
	}
	if v := g.View(); v.Active || v.TimeLeft != 0 {
		t.Errorf("view = %+v", v)
	}

	g.Restart()
	if v := g.View(); !v.Active || v.Score != 0 || v.Level != 1 || v.TimeLeft != 60 {
		t.Errorf("restart view = %+v", v)
	}
}

func TestRoundLastsFullTime(t *testing.T) {
	g, c := newTestGame("BRAIN")
	c.t = c.t.Add(RoundTime - 500*time.Millisecond)
	if v := g.View(); !v.Active || v.TimeLeft != 1 {
		t.Fatalf("view at 59.5s = %+v", v)
	}
	res, err := g.Guess("brain")
	if err != nil || !res.Correct || res.Points != BasePoints+1 {
		t.Errorf("guess at 59.5s = %+v, %v", res, err)
	}

	g2, c2 := newTestGame("BRAIN")
	c2.t = c2.t.Add(RoundTime)
	if _, err := g2.Guess("BRAIN"); !errors.Is(err, ErrTimeUp) {
		t.Errorf("guess at 60s err = %v", err)
	}
}
