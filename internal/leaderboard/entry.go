// Package leaderboard provides the ranked list of best scores per player and
// a live feed that delivers it to subscribers whenever it changes.
package leaderboard

import (
	"sort"
	"time"
)

// DefaultTopN is the default number of ranked players.
const DefaultTopN = 10

// Entry is one player's score on the leaderboard.
type Entry struct {
	PlayerID    string
	DisplayName string
	Avatar      string
	Score       int
	UpdatedAt   time.Time
}

// Rank deduplicates entries to the best one per player, sorts them by score
// descending and truncates to n. The input slice is not modified.
// Ties go to the player who reached the score first, then by player ID.
func Rank(entries []Entry, n int) []Entry {
	best := make(map[string]Entry, len(entries))
	for _, e := range entries {
		if cur, ok := best[e.PlayerID]; !ok || e.Score > cur.Score {
			best[e.PlayerID] = e
		}
	}

	ranked := make([]Entry, 0, len(best))
	for _, e := range best {
		ranked = append(ranked, e)
	}

	sort.Slice(ranked, func(i, j int) bool {
		a, b := ranked[i], ranked[j]
		if a.Score != b.Score {
			return a.Score > b.Score
		}
		if !a.UpdatedAt.Equal(b.UpdatedAt) {
			return a.UpdatedAt.Before(b.UpdatedAt)
		}
		return a.PlayerID < b.PlayerID
	})

	if n > 0 && len(ranked) > n {
		ranked = ranked[:n]
	}
	return ranked
}

// Position returns the 1-based rank of playerID in a ranked list, or 0.
func Position(ranked []Entry, playerID string) int {
	for i, e := range ranked {
		if e.PlayerID == playerID {
			return i + 1
		}
	}
	return 0
}

func equalEntries(a, b []Entry) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		x, y := a[i], b[i]
		if x.PlayerID != y.PlayerID || x.DisplayName != y.DisplayName ||
			x.Avatar != y.Avatar || x.Score != y.Score || !x.UpdatedAt.Equal(y.UpdatedAt) {
			return false
		}
	}
	return true
}
