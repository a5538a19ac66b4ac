package engine

import (
	"math"

	"github.com/vovakirdan/lane-rush/internal/config"
)

// Steer picks a lane change that moves the player toward the lane whose
// nearest approaching obstacle is furthest away. It returns false when the
// current lane is already the best choice.
func Steer(s Snapshot, cfg config.LaneRushConfig) (Direction, bool) {
	best := s.PlayerLane
	bestGap := laneGap(s, cfg, best)
	for lane := 0; lane < cfg.Track.Lanes; lane++ {
		// Prefer staying put, then nearer lanes, on equal gaps
		if gap := laneGap(s, cfg, lane); gap > bestGap ||
			(gap == bestGap && abs(lane-s.PlayerLane) < abs(best-s.PlayerLane)) {
			best, bestGap = lane, gap
		}
	}
	switch {
	case best < s.PlayerLane:
		return Left, true
	case best > s.PlayerLane:
		return Right, true
	}
	return 0, false
}

// laneGap returns the vertical distance between the player car's top edge
// and the lowest obstacle still above it in a lane.
func laneGap(s Snapshot, cfg config.LaneRushConfig, lane int) float64 {
	top := cfg.Track.Length - cfg.Car.Height
	gap := math.Inf(1)
	for _, o := range s.Obstacles {
		if o.Lane != lane {
			continue
		}
		bottom := o.Offset + cfg.Car.Height/2
		if bottom > cfg.Track.Length {
			continue // already past the player
		}
		gap = math.Min(gap, top-bottom)
	}
	return gap
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
