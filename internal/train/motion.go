package train

import "math"

// StepReport summarizes what a motion tick resolved.
type StepReport struct {
	Arrivals int
	Misses   int
	LevelUps int
	GameOver bool
}

// Step runs one motion tick over every train.
//
// A train whose path index is at its last waypoint is resolved and removed:
// matching colors score RoutingPoints, anything else (wrong color, unknown
// station) costs a life. Other trains advance speed*2 units toward their next
// waypoint and snap onto it once closer than that distance.
func (s *State) Step() StepReport {
	s.mu.Lock()
	defer s.mu.Unlock()

	var rep StepReport
	if s.paused || s.gameOver {
		return rep
	}

	travel := s.trainSpeed * 2
	ids := make([]string, len(s.trains))
	for i, t := range s.trains {
		ids[i] = t.ID
	}

	for _, id := range ids {
		t := s.train(id)
		if t == nil {
			continue
		}
		if t.PathIndex >= len(t.Path)-1 {
			s.arrive(*t, &rep)
			if s.gameOver {
				rep.GameOver = true
				break
			}
			continue
		}
		advance(t, travel)
	}
	return rep
}

// arrive resolves a train at its final waypoint. Lock must be held.
func (s *State) arrive(t Train, rep *StepReport) {
	rep.Arrivals++
	s.arrivals++
	if st, ok := s.station(t.TargetStation); ok && st.Color == t.Color {
		s.incrementScore(RoutingPoints)
		if s.incrementSuccessfulRoutings() {
			rep.LevelUps++
		}
	} else {
		rep.Misses++
		s.misses++
		s.decrementLives()
	}
	s.removeTrain(t.ID)
}

// advance moves t toward its next waypoint by travel units.
func advance(t *Train, travel float64) {
	next := t.Path[t.PathIndex+1]
	dx := next.X - t.Position.X
	dy := next.Y - t.Position.Y
	dist := math.Hypot(dx, dy)
	if dist == 0 {
		// Already on the waypoint: take no step this tick but move on to the
		// next one, so a duplicated waypoint cannot strand the train.
		t.PathIndex++
		return
	}

	pos := Point{
		X: t.Position.X + dx/dist*travel,
		Y: t.Position.Y + dy/dist*travel,
	}
	if math.Hypot(next.X-pos.X, next.Y-pos.Y) < travel {
		pos = next
		t.PathIndex++
	}
	t.Position = pos
}
