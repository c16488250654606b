// Package catalog lists the games offered on the home screen together with
// their how-to-play steps.
package catalog

// Kind identifies a game.
type Kind string

const (
	Train  Kind = "train"
	Memory Kind = "memory"
	Puzzle Kind = "puzzle"
	Word   Kind = "word"
)

// Entry describes one game.
type Entry struct {
	Kind        Kind     `json:"kind"`
	Title       string   `json:"title"`
	Emoji       string   `json:"emoji"`
	Description string   `json:"description"`
	HowToPlay   []string `json:"howToPlay"`
}

var entries = []Entry{
	{
		Kind:        Train,
		Title:       "Train of Thought",
		Emoji:       "🚂",
		Description: "Route colored trains to their matching stations by controlling junction switches.",
		HowToPlay: []string{
			"Route colored trains to matching stations",
			"Tap junction switches to change track direction",
			"Score points for correct routings",
			"Watch out for wrong destinations!",
		},
	},
	{
		Kind:        Memory,
		Title:       "Memory Match",
		Emoji:       "🎯",
		Description: "Test your memory by matching pairs of cards.",
		HowToPlay: []string{
			"Find matching pairs of cards",
			"Tap cards to flip them",
			"Remember card positions",
			"Complete all pairs to win!",
		},
	},
	{
		Kind:        Puzzle,
		Title:       "Puzzle Master",
		Emoji:       "🧩",
		Description: "Slide the tiles back into order.",
		HowToPlay: []string{
			"Slide tiles to arrange numbers 1-8",
			"Only adjacent tiles can move",
			"Complete the puzzle in fewest moves",
			"Test your spatial reasoning!",
		},
	},
	{
		Kind:        Word,
		Title:       "Word Scramble",
		Emoji:       "🔤",
		Description: "Unscramble the letters before the clock runs out.",
		HowToPlay: []string{
			"Unscramble the given word",
			"Use hints if you get stuck",
			"Score points for speed",
			"Improve your vocabulary!",
		},
	},
}

// All returns every game in menu order.
func All() []Entry {
	out := make([]Entry, len(entries))
	for i, e := range entries {
		e.HowToPlay = append([]string(nil), e.HowToPlay...)
		out[i] = e
	}
	return out
}

// Lookup finds a game by kind.
func Lookup(k Kind) (Entry, bool) {
	for _, e := range All() {
		if e.Kind == k {
			return e, true
		}
	}
	return Entry{}, false
}
