package config

import (
	"math"
	"time"
)

// Curve derives level, speed and spawn parameters from score.
// All methods are pure; the same inputs always give the same outputs.
type Curve struct {
	scoring   ScoringConfig
	spawn     SpawnConfig
	obstacles ObstacleConfig
}

// NewCurve creates the difficulty curve for a configuration.
func NewCurve(cfg LaneRushConfig) Curve {
	return Curve{
		scoring:   cfg.Scoring,
		spawn:     cfg.Spawn,
		obstacles: cfg.Obstacles,
	}
}

// Level returns floor(score / scorePerLevel) + 1.
func (c Curve) Level(score int) int {
	if score < 0 {
		score = 0
	}
	perLevel := c.scoring.ScorePerLevel
	if perLevel < 1 {
		perLevel = 1 // Prevent division by zero
	}
	return score/perLevel + 1
}

// SpeedMultiplier returns 1 + (level-1) * levelSpeedStep, never below 1.
func (c Curve) SpeedMultiplier(level int) float64 {
	m := 1 + float64(level-1)*c.scoring.LevelSpeedStep
	return math.Max(1, m)
}

// SpawnInterval returns the time between spawn batches at a level.
// The level factor shrinks by levelStep per level down to the floor, and the
// result is further divided by the speed multiplier.
func (c Curve) SpawnInterval(level int) time.Duration {
	factor := math.Max(c.spawn.Floor, 1-float64(level-1)*c.spawn.LevelStep)
	base := float64(c.spawn.BaseIntervalMs) * float64(time.Millisecond)
	return time.Duration(base * factor / c.SpeedMultiplier(level))
}

// ObstacleSpeed returns the per-frame speed of newly spawned obstacles.
// Clamped to the base speed so it is always positive.
func (c Curve) ObstacleSpeed(level int) float64 {
	speed := c.obstacles.BaseSpeed + float64(level-1)*c.obstacles.SpeedPerLevel
	return math.Max(c.obstacles.BaseSpeed, speed)
}

// BatchSize returns how many obstacles a spawn attempts at a level (1-3).
// A threshold of zero disables that tier.
func (c Curve) BatchSize(level int) int {
	n := 1
	if c.spawn.DoubleAtLevel > 0 && level >= c.spawn.DoubleAtLevel {
		n++
		if c.spawn.TripleAtLevel > 0 && level >= c.spawn.TripleAtLevel {
			n++
		}
	}
	return n
}
