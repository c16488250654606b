package train

import "math"

// GeneratePath returns the waypoints from start to the target station.
//
// Every junction whose y lies within JunctionReach of start.Y is visited in
// list order. Junction direction is not consulted, and the result is not
// sorted or deduplicated, so a path may zigzag.
func GeneratePath(start Point, target Station, junctions []Junction) []Point {
	path := []Point{start}
	for _, j := range junctions {
		if math.Abs(j.Position.Y-start.Y) < JunctionReach {
			path = append(path, j.Position)
		}
	}
	return append(path, target.Position)
}
