package daily

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/binary"
	"time"
)

// DateKey returns YYYY-MM-DD in UTC.
func DateKey(t time.Time) string {
	return t.UTC().Format("2006-01-02")
}

// WordIndex returns a deterministic index for a date using HMAC(salt, YYYY-MM-DD) % n.
func WordIndex(date time.Time, salt string, n int) int {
	if n <= 0 {
		return 0
	}
	h := hmac.New(sha256.New, []byte(salt))
	h.Write([]byte(DateKey(date)))
	sum := h.Sum(nil)
	v := binary.BigEndian.Uint64(sum[:8])
	return int(v % uint64(n))
}

// Challenge is the word of the day.
type Challenge struct {
	Date      string
	WordIndex int
	Word      string
}

// Today picks the challenge for now from list.
func Today(now time.Time, salt string, list []string) Challenge {
	c := Challenge{Date: DateKey(now)}
	if len(list) == 0 {
		return c
	}
	c.WordIndex = WordIndex(now, salt, len(list))
	c.Word = list[c.WordIndex]
	return c
}
