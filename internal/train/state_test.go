package train

import (
	"math"
	"math/rand/v2"
	"testing"
	"time"
)

func newTestState() *State {
	fixed := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	return NewState(NewLayout(DefaultBoardWidth), func() time.Time { return fixed })
}

func testRand() *rand.Rand { return rand.New(rand.NewPCG(7, 11)) }

func TestGeneratePathEndpoints(t *testing.T) {
	layout := NewLayout(DefaultBoardWidth)
	for _, sp := range layout.SpawnPoints {
		for _, st := range layout.Stations {
			path := GeneratePath(sp, st, layout.Junctions)
			if path[0] != sp {
				t.Errorf("path from %v to %s starts at %v", sp, st.ID, path[0])
			}
			if path[len(path)-1] != st.Position {
				t.Errorf("path from %v to %s ends at %v", sp, st.ID, path[len(path)-1])
			}
		}
	}
}

func TestGeneratePathJunctionFilter(t *testing.T) {
	junctions := []Junction{
		{ID: "a", Position: Point{300, 190}},
		{ID: "b", Position: Point{100, 150}},
		{ID: "c", Position: Point{100, 200}}, // exactly 50 away: excluded
		{ID: "d", Position: Point{50, 101}},
	}
	target := Station{ID: "s", Position: Point{0, 0}}
	got := GeneratePath(Point{20, 150}, target, junctions)
	want := []Point{{20, 150}, {300, 190}, {100, 150}, {50, 101}, {0, 0}}
	if len(got) != len(want) {
		t.Fatalf("path = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("path[%d] = %v, want %v", i, got[i], want[i])
		}
	}
}

func TestGeneratePathIgnoresDirection(t *testing.T) {
	layout := NewLayout(DefaultBoardWidth)
	before := GeneratePath(Point{20, 150}, layout.Stations[0], layout.Junctions)
	flipped := layout.junctions()
	for i := range flipped {
		flipped[i].Direction = Right
	}
	after := GeneratePath(Point{20, 150}, layout.Stations[0], flipped)
	if len(before) != len(after) {
		t.Fatalf("direction changed path: %v vs %v", before, after)
	}
}

func TestArrivalMatchScores(t *testing.T) {
	s := newTestState()
	s.AddTrain(Train{ID: "t1", Color: "#e74c3c", Position: Point{70, 120},
		Path: []Point{{20, 150}, {70, 120}}, PathIndex: 1, TargetStation: "s1"})

	rep := s.Step()
	snap := s.Snapshot()
	if rep.Arrivals != 1 || rep.Misses != 0 {
		t.Fatalf("report = %+v", rep)
	}
	if snap.Score != 100 || snap.Lives != 3 || snap.SuccessfulRoutings != 1 {
		t.Errorf("score=%d lives=%d routings=%d", snap.Score, snap.Lives, snap.SuccessfulRoutings)
	}
	if len(snap.Trains) != 0 {
		t.Errorf("train not removed: %v", snap.Trains)
	}
}

func TestArrivalMismatchCostsLife(t *testing.T) {
	cases := []struct {
		name, color, station string
	}{
		{"wrong color", "#3498db", "s1"},
		{"unknown station", "#e74c3c", "nope"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			s := newTestState()
			s.AddTrain(Train{ID: "t1", Color: tc.color, Path: []Point{{0, 0}}, TargetStation: tc.station})
			s.Step()
			snap := s.Snapshot()
			if snap.Score != 0 || snap.Lives != 2 || snap.Misses != 1 {
				t.Errorf("score=%d lives=%d misses=%d", snap.Score, snap.Lives, snap.Misses)
			}
			if len(snap.Trains) != 0 {
				t.Errorf("train not removed")
			}
		})
	}
}

func TestTrainConvergesOnStation(t *testing.T) {
	s := newTestState()
	layout := NewLayout(DefaultBoardWidth)
	s1 := layout.Stations[0]
	start := Point{20, 150}
	s.AddTrain(Train{ID: "t1", Color: s1.Color, Position: start,
		Path: GeneratePath(start, s1, layout.Junctions), TargetStation: s1.ID, Moving: true})

	reached := false
	for i := 0; i < 10000; i++ {
		snap := s.Snapshot()
		if len(snap.Trains) == 0 {
			break
		}
		tr := snap.Trains[0]
		if tr.PathIndex == len(tr.Path)-1 && tr.Position == s1.Position {
			reached = true
		}
		s.Step()
	}
	snap := s.Snapshot()
	if !reached {
		t.Fatalf("train never reached %v", s1.Position)
	}
	if len(snap.Trains) != 0 || snap.Score != 100 {
		t.Errorf("trains=%d score=%d", len(snap.Trains), snap.Score)
	}
}

func TestStepMovesBySpeed(t *testing.T) {
	s := newTestState()
	s.AddTrain(Train{ID: "t1", Position: Point{0, 0}, Path: []Point{{0, 0}, {100, 0}}, TargetStation: "s1"})
	s.Step()
	tr := s.Snapshot().Trains[0]
	if math.Abs(tr.Position.X-2) > 1e-9 || tr.Position.Y != 0 || tr.PathIndex != 0 {
		t.Errorf("after one step: %+v", tr)
	}
}

func TestStepZeroLengthSegment(t *testing.T) {
	s := newTestState()
	s.AddTrain(Train{ID: "t1", Position: Point{5, 5}, Path: []Point{{5, 5}, {5, 5}, {50, 5}}, TargetStation: "s1"})
	s.Step()
	tr := s.Snapshot().Trains[0]
	if math.IsNaN(tr.Position.X) || math.IsNaN(tr.Position.Y) {
		t.Fatalf("position became NaN")
	}
	if tr.Position != (Point{5, 5}) || tr.PathIndex != 1 {
		t.Errorf("zero segment: %+v", tr)
	}
}

func TestStepStopsAtGameOver(t *testing.T) {
	s := newTestState()
	s.DecrementLives()
	s.DecrementLives()
	for _, id := range []string{"a", "b", "c"} {
		s.AddTrain(Train{ID: id, Color: "#000000", Path: []Point{{0, 0}}, TargetStation: "s1"})
	}
	rep := s.Step()
	snap := s.Snapshot()
	if !rep.GameOver || !snap.GameOver {
		t.Fatalf("expected game over")
	}
	if snap.Lives != 0 {
		t.Errorf("lives = %d", snap.Lives)
	}
	if len(snap.Trains) != 2 {
		t.Errorf("trains left = %d, want 2", len(snap.Trains))
	}
	if rep := s.Step(); rep.Arrivals != 0 {
		t.Errorf("step after game over resolved %d arrivals", rep.Arrivals)
	}
	if _, ok := s.Spawn(testRand()); ok {
		t.Errorf("spawned after game over")
	}
}

func TestPausedStateDoesNotTick(t *testing.T) {
	s := newTestState()
	s.AddTrain(Train{ID: "t1", Position: Point{0, 0}, Path: []Point{{0, 0}, {100, 0}}})
	s.SetPaused(true)
	s.Step()
	if _, ok := s.Spawn(testRand()); ok {
		t.Errorf("spawned while paused")
	}
	snap := s.Snapshot()
	if len(snap.Trains) != 1 || snap.Trains[0].Position != (Point{0, 0}) {
		t.Errorf("paused state moved: %+v", snap.Trains)
	}
}

func TestLevelUpEveryFiveRoutings(t *testing.T) {
	s := newTestState()
	wantLevel := map[int]int{5: 2, 10: 3, 15: 4}
	levelUps := 0
	for n := 1; n <= 15; n++ {
		if s.IncrementSuccessfulRoutings() {
			levelUps++
			if n%5 != 0 {
				t.Errorf("level up on routing %d", n)
			}
		}
		if want, ok := wantLevel[n]; ok {
			if got := s.Snapshot().Level; got != want {
				t.Errorf("after %d routings level = %d, want %d", n, got, want)
			}
		}
	}
	if levelUps != 3 {
		t.Errorf("level ups = %d, want 3", levelUps)
	}
	snap := s.Snapshot()
	if snap.SpawnIntervalMs != 2400 || math.Abs(snap.TrainSpeed-1.6) > 1e-9 {
		t.Errorf("interval=%d speed=%v", snap.SpawnIntervalMs, snap.TrainSpeed)
	}
}

func TestIncrementLevelFloorsInterval(t *testing.T) {
	s := newTestState()
	for i := 0; i < 20; i++ {
		s.IncrementLevel()
	}
	if got := s.SpawnInterval(); got != MinSpawnInterval {
		t.Errorf("interval = %v, want %v", got, MinSpawnInterval)
	}
	if got := s.Snapshot().Level; got != 21 {
		t.Errorf("level = %d", got)
	}
}

func TestResetRestoresInitialValues(t *testing.T) {
	s := newTestState()
	s.IncrementScore(500)
	s.DecrementLives()
	s.IncrementLevel()
	s.ToggleJunction("j1")
	s.Spawn(testRand())
	s.SetPaused(true)
	s.SetGameOver(true)

	s.Reset()
	snap := s.Snapshot()
	if snap.Score != 0 || snap.Lives != 3 || snap.Level != 1 || len(snap.Trains) != 0 ||
		snap.SpawnIntervalMs != 3000 || snap.TrainSpeed != 1 || snap.Paused || snap.GameOver {
		t.Errorf("reset snapshot = %+v", snap)
	}
	if snap.Junctions[0].Direction != Left {
		t.Errorf("junction not reset")
	}
}

func TestToggleJunction(t *testing.T) {
	s := newTestState()
	if !s.ToggleJunction("j2") {
		t.Fatal("toggle j2 failed")
	}
	if d := s.Snapshot().Junctions[1].Direction; d != Right {
		t.Errorf("j2 = %s", d)
	}
	s.ToggleJunction("j2")
	if d := s.Snapshot().Junctions[1].Direction; d != Left {
		t.Errorf("j2 = %s", d)
	}
	if s.ToggleJunction("j9") {
		t.Errorf("unknown junction toggled")
	}
}

func TestSpawnProducesRoutableTrain(t *testing.T) {
	s := newTestState()
	rng := testRand()
	stations := map[string]Station{}
	for _, st := range NewLayout(DefaultBoardWidth).Stations {
		stations[st.ID] = st
	}
	for i := 0; i < 50; i++ {
		tr, ok := s.Spawn(rng)
		if !ok {
			t.Fatal("spawn refused")
		}
		st, found := stations[tr.TargetStation]
		if !found {
			t.Fatalf("target %q does not exist", tr.TargetStation)
		}
		if tr.PathIndex != 0 || tr.Path[0] != tr.Position || tr.Path[len(tr.Path)-1] != st.Position {
			t.Errorf("bad train %+v", tr)
		}
		inPalette := false
		for _, c := range Palette {
			inPalette = inPalette || c == tr.Color
		}
		if !inPalette {
			t.Errorf("color %s not in palette", tr.Color)
		}
	}
	if n := len(s.Snapshot().Trains); n != 50 {
		t.Errorf("trains = %d", n)
	}
}

func TestAccuracy(t *testing.T) {
	s := newTestState()
	if a := s.Snapshot().Accuracy; a != 100 {
		t.Errorf("initial accuracy = %d", a)
	}
	s.AddTrain(Train{ID: "hit", Color: "#e74c3c", Path: []Point{{0, 0}}, TargetStation: "s1"})
	s.AddTrain(Train{ID: "miss", Color: "#3498db", Path: []Point{{0, 0}}, TargetStation: "s1"})
	s.AddTrain(Train{ID: "hit2", Color: "#2ecc71", Path: []Point{{0, 0}}, TargetStation: "s3"})
	s.Step()
	if a := s.Snapshot().Accuracy; a != 67 {
		t.Errorf("accuracy = %d, want 67", a)
	}
}

func TestDirectMutatorsIgnoreUnknownIDs(t *testing.T) {
	s := newTestState()
	s.AddTrain(Train{ID: "t1", Path: []Point{{0, 0}, {10, 0}}, TargetStation: "s1"})

	if !s.UpdateTrainPosition("t1", Point{4, 0}) || s.UpdateTrainPosition("ghost", Point{}) {
		t.Errorf("UpdateTrainPosition known/unknown mismatch")
	}
	if !s.UpdateTrainPathIndex("t1", 1) || s.UpdateTrainPathIndex("ghost", 1) {
		t.Errorf("UpdateTrainPathIndex known/unknown mismatch")
	}
	snap := s.Snapshot()
	if got := snap.Trains[0]; got.Position != (Point{4, 0}) || got.PathIndex != 1 {
		t.Errorf("train = %+v", got)
	}

	s.IncrementScore(30)
	if s.Snapshot().Score != 30 {
		t.Errorf("score = %d", s.Snapshot().Score)
	}
	if s.RemoveTrain("ghost") || !s.RemoveTrain("t1") || s.RemoveTrain("t1") {
		t.Errorf("RemoveTrain should succeed exactly once")
	}
	if n := len(s.Snapshot().Trains); n != 0 {
		t.Errorf("trains left = %d", n)
	}
}
