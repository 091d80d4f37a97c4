package sim

// Vec2 is a 2D position or extent in map units.
type Vec2 struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Input is one tick's worth of intent from a single session. Seq is
// assigned by the client and strictly increases per session.
type Input struct {
	Seq    uint64 `json:"seq"`
	Left   bool   `json:"left"`
	Right  bool   `json:"right"`
	Up     bool   `json:"up"`
	Down   bool   `json:"down"`
	Attack bool   `json:"attack"`
}

// Move applies one tick of directional intent to pos and clamps the result
// to the map bounds. Opposite directions cancel per axis. The function is
// pure: the server world and the client predictor both call it and must
// agree bit for bit on the result.
func Move(pos Vec2, in Input, cfg Config) Vec2 {
	next := pos
	if in.Left != in.Right {
		if in.Left {
			next.X -= cfg.MoveSpeed
		} else {
			next.X += cfg.MoveSpeed
		}
	}
	if in.Up != in.Down {
		if in.Up {
			next.Y -= cfg.MoveSpeed
		} else {
			next.Y += cfg.MoveSpeed
		}
	}
	next.X = clamp(next.X, 0, cfg.MapWidth)
	next.Y = clamp(next.Y, 0, cfg.MapHeight)
	return next
}

func clamp(value, min, max float64) float64 {
	if value < min {
		return min
	}
	if value > max {
		return max
	}
	return value
}

// aabbOverlap reports whether two axis-aligned boxes, given by center and
// half extents, intersect.
func aabbOverlap(aCenter, aHalf, bCenter, bHalf Vec2) bool {
	if aCenter.X+aHalf.X < bCenter.X-bHalf.X || bCenter.X+bHalf.X < aCenter.X-aHalf.X {
		return false
	}
	if aCenter.Y+aHalf.Y < bCenter.Y-bHalf.Y || bCenter.Y+bHalf.Y < aCenter.Y-aHalf.Y {
		return false
	}
	return true
}
