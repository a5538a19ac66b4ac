package engine

import (
	"math/rand"
	"slices"

	"github.com/vovakirdan/lane-rush/internal/config"
)

// spawner decides where new obstacles appear. Each batch draws from its own
// source derived from the seed and the batch number, so a batch can be
// planned, thrown away and planned again with the same result.
type spawner struct {
	seed     int64
	curve    config.Curve
	lanes    int
	variants int
	carH     float64
	train    float64
	batches  int64
	nextID   uint64
}

// Odd 64-bit constant spreading batch numbers across the seed space.
const batchSeedStride = -7046029254386353131 // 0x9E3779B97F4A7C15

func newSpawner(seed int64, cfg config.LaneRushConfig) *spawner {
	return &spawner{
		seed:     seed,
		curve:    config.NewCurve(cfg),
		lanes:    cfg.Track.Lanes,
		variants: cfg.Obstacles.Variants,
		carH:     cfg.Car.Height,
		train:    cfg.Spawn.TrainOffset,
	}
}

// plan returns the next batch for a level without consuming it.
// The first obstacle always spawns. Each extra one draws a lane, retries
// once if the lane is taken in this batch, and is skipped if the retry
// collides too. The third car starts at -train car heights, above the
// others at -1.
func (s *spawner) plan(level int) []Obstacle {
	rng := rand.New(rand.NewSource(s.seed + s.batches*batchSeedStride))
	n := s.curve.BatchSize(level)
	speed := s.curve.ObstacleSpeed(level)

	out := make([]Obstacle, 0, n)
	used := make([]int, 0, n)
	for i := 0; i < n; i++ {
		lane := rng.Intn(s.lanes)
		if i > 0 && slices.Contains(used, lane) {
			lane = rng.Intn(s.lanes)
			if slices.Contains(used, lane) {
				continue
			}
		}
		used = append(used, lane)

		offset := -s.carH
		if i == 2 {
			offset = -s.carH * s.train
		}
		out = append(out, Obstacle{
			ID:      s.nextID + uint64(len(out)) + 1,
			Lane:    lane,
			Offset:  offset,
			Speed:   speed,
			Variant: Variant(rng.Intn(s.variants)),
		})
	}
	return out
}

// accept consumes a planned batch.
func (s *spawner) accept(batch []Obstacle) {
	s.batches++
	s.nextID += uint64(len(batch))
}
