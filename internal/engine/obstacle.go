package engine

import (
	"github.com/vovakirdan/lane-rush/internal/core"
)

// Direction is a lane change request.
type Direction int

const (
	Left  Direction = -1
	Right Direction = 1
)

// Variant is the cosmetic car model of an obstacle. It never affects
// simulation.
type Variant int

// Obstacle is a car moving down one lane.
// Offset is the vertical center in world units; negative means above the
// visible track.
type Obstacle struct {
	ID      uint64
	Lane    int
	Offset  float64
	Speed   float64
	Variant Variant
}

// laneCenter returns the horizontal center of a lane in world units.
func laneCenter(lane int, laneWidth float64) float64 {
	return float64(lane)*laneWidth + laneWidth/2
}

// hitbox returns the obstacle's collision rectangle.
func (o Obstacle) hitbox(laneWidth, carW, carH float64) core.RectF {
	return core.RectAround(laneCenter(o.Lane, laneWidth), o.Offset, carW, carH)
}
