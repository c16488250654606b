// internal/train/state.go
//
// State is the owned, mutable store for one train game.
// Responsibilities:
//   - Hold entities (trains, junctions, stations) and counters.
//   - Expose one mutation method per store action.
//   - Serialize every transition behind a single mutex so a spawner tick,
//     a motion tick and a user toggle never interleave.
//
// Notes:
//   - Unknown ids are ignored; mutators report whether anything changed.
//   - The exported methods lock; the lower-case variants assume the lock is
//     held and are shared with the spawner and motion loop.

package train

import (
	"math"
	"sync"
	"time"
)

// State holds everything a single train game mutates.
type State struct {
	mu  sync.Mutex
	now func() time.Time

	layout Layout

	trains    []Train
	junctions []Junction
	stations  []Station

	score              int
	lives              int
	level              int
	successfulRoutings int
	arrivals           int
	misses             int
	spawnInterval      time.Duration
	trainSpeed         float64
	paused             bool
	gameOver           bool
	startedAt          time.Time
}

// NewState returns a fresh game on the given layout.
// now may be nil, in which case time.Now is used.
func NewState(layout Layout, now func() time.Time) *State {
	if now == nil {
		now = time.Now
	}
	s := &State{now: now, layout: layout}
	s.reset()
	return s
}

// Snapshot is a read-only copy of the game for clients.
type Snapshot struct {
	Trains             []Train    `json:"trains"`
	Junctions          []Junction `json:"junctions"`
	Stations           []Station  `json:"stations"`
	Score              int        `json:"score"`
	Lives              int        `json:"lives"`
	Level              int        `json:"level"`
	SuccessfulRoutings int        `json:"successfulRoutings"`
	Arrivals           int        `json:"arrivals"`
	Misses             int        `json:"misses"`
	SpawnIntervalMs    int64      `json:"spawnIntervalMs"`
	TrainSpeed         float64    `json:"trainSpeed"`
	Paused             bool       `json:"isPaused"`
	GameOver           bool       `json:"isGameOver"`
	Accuracy           int        `json:"accuracy"`
	TimePlayedMs       int64      `json:"timePlayedMs"`
	StartedAt          time.Time  `json:"startedAt"`
}

// Snapshot copies the current state.
func (s *State) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	trains := make([]Train, len(s.trains))
	for i, t := range s.trains {
		t.Path = append([]Point(nil), t.Path...)
		trains[i] = t
	}
	return Snapshot{
		Trains:             trains,
		Junctions:          append([]Junction(nil), s.junctions...),
		Stations:           append([]Station(nil), s.stations...),
		Score:              s.score,
		Lives:              s.lives,
		Level:              s.level,
		SuccessfulRoutings: s.successfulRoutings,
		Arrivals:           s.arrivals,
		Misses:             s.misses,
		SpawnIntervalMs:    s.spawnInterval.Milliseconds(),
		TrainSpeed:         s.trainSpeed,
		Paused:             s.paused,
		GameOver:           s.gameOver,
		Accuracy:           s.accuracy(),
		TimePlayedMs:       s.now().Sub(s.startedAt).Milliseconds(),
		StartedAt:          s.startedAt,
	}
}

// accuracy is the share of arrivals that reached the right station.
func (s *State) accuracy() int {
	if s.arrivals == 0 {
		return 100
	}
	return int(math.Round(float64(s.successfulRoutings) * 100 / float64(s.arrivals)))
}

// SpawnInterval returns the current spawner period.
func (s *State) SpawnInterval() time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.spawnInterval
}

// Active reports whether ticks should run (not paused, not over).
func (s *State) Active() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return !s.paused && !s.gameOver
}

// GameOver reports the terminal flag.
func (s *State) GameOver() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.gameOver
}

// ---------------------------------------------------------------- trains

// AddTrain inserts t at the end of the train list.
func (s *State) AddTrain(t Train) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.addTrain(t)
}

func (s *State) addTrain(t Train) {
	s.trains = append(s.trains, t)
}

// RemoveTrain deletes the train with the given id.
func (s *State) RemoveTrain(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.removeTrain(id)
}

func (s *State) removeTrain(id string) bool {
	for i := range s.trains {
		if s.trains[i].ID == id {
			s.trains = append(s.trains[:i], s.trains[i+1:]...)
			return true
		}
	}
	return false
}

// UpdateTrainPosition moves a train to p.
func (s *State) UpdateTrainPosition(id string, p Point) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if t := s.train(id); t != nil {
		t.Position = p
		return true
	}
	return false
}

// UpdateTrainPathIndex sets a train's current waypoint index.
func (s *State) UpdateTrainPathIndex(id string, idx int) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if t := s.train(id); t != nil {
		t.PathIndex = idx
		return true
	}
	return false
}

func (s *State) train(id string) *Train {
	for i := range s.trains {
		if s.trains[i].ID == id {
			return &s.trains[i]
		}
	}
	return nil
}

func (s *State) station(id string) (Station, bool) {
	for _, st := range s.stations {
		if st.ID == id {
			return st, true
		}
	}
	return Station{}, false
}

// ToggleJunction flips a junction between left and right.
func (s *State) ToggleJunction(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.junctions {
		if s.junctions[i].ID != id {
			continue
		}
		if s.junctions[i].Direction == Left {
			s.junctions[i].Direction = Right
		} else {
			s.junctions[i].Direction = Left
		}
		return true
	}
	return false
}

// -------------------------------------------------------------- counters

// IncrementScore adds points to the score. Negative points are ignored.
func (s *State) IncrementScore(points int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.incrementScore(points)
}

func (s *State) incrementScore(points int) {
	if points > 0 {
		s.score += points
	}
}

// DecrementLives removes a life; the game ends at zero.
func (s *State) DecrementLives() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.decrementLives()
}

func (s *State) decrementLives() {
	s.lives--
	s.gameOver = s.lives <= 0
}

// IncrementLevel raises the level and tightens difficulty.
func (s *State) IncrementLevel() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.incrementLevel()
}

func (s *State) incrementLevel() {
	s.level++
	s.spawnInterval -= SpawnIntervalStep
	if s.spawnInterval < MinSpawnInterval {
		s.spawnInterval = MinSpawnInterval
	}
	s.trainSpeed += SpeedStep
}

// IncrementSuccessfulRoutings counts a correct arrival and levels up on
// every RoutingsPerLevel-th one. It reports whether a level-up happened.
func (s *State) IncrementSuccessfulRoutings() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.incrementSuccessfulRoutings()
}

func (s *State) incrementSuccessfulRoutings() bool {
	s.successfulRoutings++
	if s.successfulRoutings%RoutingsPerLevel == 0 {
		s.incrementLevel()
		return true
	}
	return false
}

// SetGameOver sets the terminal flag directly.
func (s *State) SetGameOver(over bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.gameOver = over
}

// SetPaused sets the paused flag.
func (s *State) SetPaused(paused bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.paused = paused
}

// Reset restores the initial game.
func (s *State) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reset()
}

func (s *State) reset() {
	s.trains = nil
	s.junctions = s.layout.junctions()
	s.stations = s.layout.stations()
	s.score = 0
	s.lives = InitialLives
	s.level = InitialLevel
	s.successfulRoutings = 0
	s.arrivals = 0
	s.misses = 0
	s.spawnInterval = InitialSpawnInterval
	s.trainSpeed = InitialSpeed
	s.paused = false
	s.gameOver = false
	s.startedAt = s.now()
}
