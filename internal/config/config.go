// Package config provides YAML-based game configuration loading, environment
// settings and the difficulty curve for Lane Rush.
package config

import (
	"fmt"
	"time"
)

// LaneRushConfig contains all tunable parameters of the game.
type LaneRushConfig struct {
	Track       TrackConfig       `yaml:"track"`
	Car         CarConfig         `yaml:"car"`
	Obstacles   ObstacleConfig    `yaml:"obstacles"`
	Spawn       SpawnConfig       `yaml:"spawn"`
	Scoring     ScoringConfig     `yaml:"scoring"`
	Input       InputConfig       `yaml:"input"`
	Submit      SubmitConfig      `yaml:"submit"`
	Leaderboard LeaderboardConfig `yaml:"leaderboard"`
}

// TrackConfig defines the lane layout in world units.
type TrackConfig struct {
	Lanes     int     `yaml:"lanes"`
	LaneWidth float64 `yaml:"lane_width"`
	Length    float64 `yaml:"length"`
}

// CarConfig defines the hitbox size shared by the player and obstacles.
type CarConfig struct {
	Width  float64 `yaml:"width"`
	Height float64 `yaml:"height"`
}

// ObstacleConfig defines obstacle movement.
type ObstacleConfig struct {
	BaseSpeed     float64 `yaml:"base_speed"`
	SpeedPerLevel float64 `yaml:"speed_per_level"`
	Variants      int     `yaml:"variants"`
}

// SpawnConfig defines the spawn policy.
type SpawnConfig struct {
	BaseIntervalMs int     `yaml:"base_interval_ms"`
	LevelStep      float64 `yaml:"level_step"`
	Floor          float64 `yaml:"floor"`
	DoubleAtLevel  int     `yaml:"double_at_level"`
	TripleAtLevel  int     `yaml:"triple_at_level"`
	TrainOffset    float64 `yaml:"train_offset"`
}

// ScoringConfig defines how score and level are derived from play time.
type ScoringConfig struct {
	PointIntervalMs int     `yaml:"point_interval_ms"`
	ScorePerLevel   int     `yaml:"score_per_level"`
	LevelSpeedStep  float64 `yaml:"level_speed_step"`
}

// InputConfig defines input rate limiting.
type InputConfig struct {
	MoveDebounceMs int `yaml:"move_debounce_ms"`
}

// SubmitConfig defines score submission timing.
type SubmitConfig struct {
	TimeoutMs      int `yaml:"timeout_ms"`
	GuardTimeoutMs int `yaml:"guard_timeout_ms"`
}

// LeaderboardConfig defines the ranked list size.
type LeaderboardConfig struct {
	TopN int `yaml:"top_n"`
}

// PointInterval returns the play time worth one point.
func (c ScoringConfig) PointInterval() time.Duration {
	return time.Duration(c.PointIntervalMs) * time.Millisecond
}

// MoveDebounce returns the minimum time between two lane changes.
func (c InputConfig) MoveDebounce() time.Duration {
	return time.Duration(c.MoveDebounceMs) * time.Millisecond
}

// Timeout returns the deadline for a single submission attempt.
func (c SubmitConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutMs) * time.Millisecond
}

// GuardTimeout returns how long the in-flight guard may stay held without a
// completion signal.
func (c SubmitConfig) GuardTimeout() time.Duration {
	return time.Duration(c.GuardTimeoutMs) * time.Millisecond
}

// Validate rejects configurations the simulation cannot run with.
func (c LaneRushConfig) Validate() error {
	switch {
	case c.Track.Lanes < 1:
		return fmt.Errorf("config: track.lanes must be at least 1, got %d", c.Track.Lanes)
	case c.Track.LaneWidth <= 0 || c.Track.Length <= 0:
		return fmt.Errorf("config: track dimensions must be positive")
	case c.Car.Width <= 0 || c.Car.Height <= 0:
		return fmt.Errorf("config: car dimensions must be positive")
	case c.Obstacles.BaseSpeed <= 0:
		return fmt.Errorf("config: obstacles.base_speed must be positive, got %v", c.Obstacles.BaseSpeed)
	case c.Obstacles.SpeedPerLevel < 0:
		return fmt.Errorf("config: obstacles.speed_per_level must not be negative")
	case c.Obstacles.Variants < 1:
		return fmt.Errorf("config: obstacles.variants must be at least 1")
	case c.Spawn.BaseIntervalMs <= 0:
		return fmt.Errorf("config: spawn.base_interval_ms must be positive")
	case c.Spawn.Floor <= 0 || c.Spawn.Floor > 1:
		return fmt.Errorf("config: spawn.floor must be in (0, 1], got %v", c.Spawn.Floor)
	case c.Spawn.LevelStep < 0:
		return fmt.Errorf("config: spawn.level_step must not be negative")
	case c.Scoring.PointIntervalMs <= 0:
		return fmt.Errorf("config: scoring.point_interval_ms must be positive")
	case c.Scoring.ScorePerLevel < 1:
		return fmt.Errorf("config: scoring.score_per_level must be at least 1")
	case c.Scoring.LevelSpeedStep < 0:
		return fmt.Errorf("config: scoring.level_speed_step must not be negative")
	case c.Leaderboard.TopN < 1:
		return fmt.Errorf("config: leaderboard.top_n must be at least 1")
	}
	return nil
}

// DifficultyPreset represents a named difficulty level.
type DifficultyPreset string

const (
	DifficultyEasy   DifficultyPreset = "easy"
	DifficultyNormal DifficultyPreset = "normal"
	DifficultyHard   DifficultyPreset = "hard"
	DifficultyFixed  DifficultyPreset = "fixed"
)

// ParsePreset maps a CLI string to a preset. Empty means "use config as is".
func ParsePreset(s string) (DifficultyPreset, error) {
	switch p := DifficultyPreset(s); p {
	case "", DifficultyEasy, DifficultyNormal, DifficultyHard, DifficultyFixed:
		return p, nil
	default:
		return "", fmt.Errorf("config: unknown difficulty %q (want easy, normal, hard or fixed)", s)
	}
}
