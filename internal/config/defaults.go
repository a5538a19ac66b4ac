package config

import (
	_ "embed"
)

//go:embed defaults/lanerush.yaml
var defaultLaneRushYAML []byte

// DefaultLaneRushConfig returns the hardcoded default configuration.
// It mirrors defaults/lanerush.yaml and is used when the embedded file
// cannot be parsed.
func DefaultLaneRushConfig() LaneRushConfig {
	return LaneRushConfig{
		Track: TrackConfig{
			Lanes:     8,
			LaneWidth: 45,
			Length:    230,
		},
		Car: CarConfig{
			Width:  40,
			Height: 40,
		},
		Obstacles: ObstacleConfig{
			BaseSpeed:     2.0,
			SpeedPerLevel: 1.5,
			Variants:      8,
		},
		Spawn: SpawnConfig{
			BaseIntervalMs: 1200,
			LevelStep:      0.08,
			Floor:          0.3,
			DoubleAtLevel:  5,
			TripleAtLevel:  8,
			TrainOffset:    1.5,
		},
		Scoring: ScoringConfig{
			PointIntervalMs: 1000,
			ScorePerLevel:   20,
			LevelSpeedStep:  0.5,
		},
		Input: InputConfig{
			MoveDebounceMs: 100,
		},
		Submit: SubmitConfig{
			TimeoutMs:      5000,
			GuardTimeoutMs: 2000,
		},
		Leaderboard: LeaderboardConfig{
			TopN: 10,
		},
	}
}

// DefaultYAML returns the embedded default YAML, e.g. for `lanerush config`.
func DefaultYAML() []byte {
	return defaultLaneRushYAML
}
