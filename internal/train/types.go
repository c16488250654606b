// internal/train/types.go
//
// Core type definitions for the train-routing game.
// Defines:
//   - Point: a board coordinate / waypoint.
//   - Train, Junction, Station: the live game entities.
//   - Layout: the fixed board (junctions, stations, spawn points).
//
// All coordinates are in board units; the board width is configurable so
// right-hand stations follow the client's screen size.

package train

import "time"

// Point is an (x, y) coordinate on the board.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Direction is a junction switch setting.
type Direction string

const (
	Left  Direction = "left"
	Right Direction = "right"
)

// Train is a single moving train.
type Train struct {
	ID            string  `json:"id"`
	Color         string  `json:"color"`
	Position      Point   `json:"position"`
	Path          []Point `json:"path"`
	PathIndex     int     `json:"currentPathIndex"`
	TargetStation string  `json:"targetStation"`
	Moving        bool    `json:"isMoving"`
}

// Junction is a toggleable track switch.
type Junction struct {
	ID        string    `json:"id"`
	Position  Point     `json:"position"`
	Direction Direction `json:"direction"`
}

// Station is a colored destination. Immutable once created.
type Station struct {
	ID       string `json:"id"`
	Position Point  `json:"position"`
	Color    string `json:"color"`
}

// Palette is the fixed set of train colors.
var Palette = []string{"#e74c3c", "#3498db", "#2ecc71", "#f39c12", "#9b59b6", "#1abc9c"}

// Game tuning.
const (
	DefaultBoardWidth = 390.0

	InitialLives         = 3
	InitialLevel         = 1
	InitialSpawnInterval = 3000 * time.Millisecond
	MinSpawnInterval     = 1000 * time.Millisecond
	SpawnIntervalStep    = 200 * time.Millisecond
	InitialSpeed         = 1.0
	SpeedStep            = 0.2
	RoutingPoints        = 100
	RoutingsPerLevel     = 5

	// JunctionReach is the max |dy| between a spawn point and a junction
	// for the junction to join the path.
	JunctionReach = 50.0
)

// Layout is the static board a game is played on.
type Layout struct {
	Width       float64
	Junctions   []Junction
	Stations    []Station
	SpawnPoints []Point
}

// NewLayout builds the standard board for the given width.
// A non-positive width falls back to DefaultBoardWidth.
func NewLayout(width float64) Layout {
	if width <= 0 {
		width = DefaultBoardWidth
	}
	return Layout{
		Width: width,
		Junctions: []Junction{
			{ID: "j1", Position: Point{150, 150}, Direction: Left},
			{ID: "j2", Position: Point{250, 250}, Direction: Left},
			{ID: "j3", Position: Point{350, 350}, Direction: Left},
		},
		Stations: []Station{
			{ID: "s1", Position: Point{70, 120}, Color: "#e74c3c"},
			{ID: "s2", Position: Point{width - 70, 170}, Color: "#3498db"},
			{ID: "s3", Position: Point{70, 420}, Color: "#2ecc71"},
			{ID: "s4", Position: Point{width - 70, 470}, Color: "#f39c12"},
		},
		SpawnPoints: []Point{{20, 150}, {20, 250}, {20, 350}},
	}
}

func (l Layout) junctions() []Junction {
	return append([]Junction(nil), l.Junctions...)
}

func (l Layout) stations() []Station {
	return append([]Station(nil), l.Stations...)
}
