// internal/words/words.go
//
// Provides the word list for Word Scramble and the daily challenge.
//
// Responsibilities:
//   - Load the list from SCRAMBLE_WORDS_FILE, or fall back to the embedded
//     default in the assets package.
//   - Normalize to uppercase, keep letters-only words of MinLen..MaxLen.
//   - Supply Random, Contains, All and Stats.
//
// Initialization runs once (sync.Once). Lookups before Init see the
// embedded defaults through ensure().

package words

import (
	"bufio"
	"errors"
	"math/rand/v2"
	"os"
	"strings"
	"sync"

	"github.com/robalobadob/braindev/assets"
)

const (
	MinLen = 3
	MaxLen = 12
)

var (
	initOnce   sync.Once
	list       []string            // normalized words in file order
	set        map[string]struct{} // list as a set
	initialErr error
)

// Init loads the word list exactly once.
// Returns an error if the list ends up empty or the file cannot be read.
func Init() error {
	initOnce.Do(func() {
		var raw []string
		var err error
		if path := os.Getenv("SCRAMBLE_WORDS_FILE"); path != "" {
			raw, err = readWordFile(path)
		} else {
			raw, err = assets.WordList()
		}
		if err != nil {
			initialErr = err
			return
		}
		list = normalize(raw)
		set = toSet(list)
		if len(list) == 0 {
			initialErr = errors.New("words: list is empty")
		}
	})
	return initialErr
}

func ensure() {
	_ = Init()
}

// readWordFile loads one word per line from a file.
func readWordFile(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	var out []string
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		out = append(out, sc.Text())
	}
	return out, sc.Err()
}

// normalize uppercases, trims and filters raw lines, dropping duplicates.
func normalize(raw []string) []string {
	seen := map[string]struct{}{}
	var out []string
	for _, line := range raw {
		w := strings.ToUpper(strings.TrimSpace(line))
		if len(w) < MinLen || len(w) > MaxLen || !isAlpha(w) {
			continue
		}
		if _, dup := seen[w]; dup {
			continue
		}
		seen[w] = struct{}{}
		out = append(out, w)
	}
	return out
}

func toSet(list []string) map[string]struct{} {
	m := make(map[string]struct{}, len(list))
	for _, w := range list {
		m[w] = struct{}{}
	}
	return m
}

// isAlpha reports whether s is all uppercase ASCII letters.
func isAlpha(s string) bool {
	for _, r := range s {
		if r < 'A' || r > 'Z' {
			return false
		}
	}
	return true
}

// Random returns a word chosen with rng (the global source when nil).
// Falls back to "BRAIN" if no list is loaded.
func Random(rng *rand.Rand) string {
	ensure()
	if len(list) == 0 {
		return "BRAIN"
	}
	if rng == nil {
		return list[rand.IntN(len(list))]
	}
	return list[rng.IntN(len(list))]
}

// Contains reports whether w is in the list (case-insensitive).
func Contains(w string) bool {
	ensure()
	_, ok := set[strings.ToUpper(strings.TrimSpace(w))]
	return ok
}

// All returns a copy of the list in load order.
func All() []string {
	ensure()
	return append([]string(nil), list...)
}

// Stats returns the number of loaded words.
func Stats() int {
	ensure()
	return len(list)
}
