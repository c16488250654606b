package train

import (
	"math/rand/v2"

	"github.com/google/uuid"
)

// Spawn runs one spawner tick: a train with a random spawn point, color and
// target station is routed and added. It returns the new train, or false
// when the game is paused or over.
func (s *State) Spawn(rng *rand.Rand) (Train, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.paused || s.gameOver || len(s.stations) == 0 || len(s.layout.SpawnPoints) == 0 {
		return Train{}, false
	}

	start := s.layout.SpawnPoints[rng.IntN(len(s.layout.SpawnPoints))]
	color := Palette[rng.IntN(len(Palette))]
	target := s.stations[rng.IntN(len(s.stations))]

	t := Train{
		ID:            "train-" + uuid.NewString(),
		Color:         color,
		Position:      start,
		Path:          GeneratePath(start, target, s.junctions),
		PathIndex:     0,
		TargetStation: target.ID,
		Moving:        true,
	}
	s.addTrain(t)
	return t, true
}
