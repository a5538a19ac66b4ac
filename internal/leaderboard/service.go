package leaderboard

import (
	"context"
	"fmt"

	"github.com/charmbracelet/log"
)

// Store persists one best entry per player.
type Store interface {
	// SubmitScore stores e if it beats the player's stored best.
	// Reports whether the stored entry changed.
	SubmitScore(ctx context.Context, e Entry) (bool, error)

	// TopScores returns up to limit entries ordered by score descending.
	TopScores(ctx context.Context, limit int) ([]Entry, error)
}

// Service connects a Store to a Feed: accepted submissions are followed by
// a republish of the ranked list.
type Service struct {
	store  Store
	feed   *Feed
	topN   int
	logger *log.Logger
}

// NewService creates a leaderboard service publishing the top n players.
func NewService(store Store, feed *Feed, n int, logger *log.Logger) *Service {
	if n <= 0 {
		n = DefaultTopN
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Service{
		store:  store,
		feed:   feed,
		topN:   n,
		logger: logger.WithPrefix("leaderboard"),
	}
}

// Feed returns the live feed.
func (s *Service) Feed() *Feed {
	return s.feed
}

// SubmitScore stores the entry and, if it changed the player's best,
// republishes the ranked list.
func (s *Service) SubmitScore(ctx context.Context, e Entry) error {
	changed, err := s.store.SubmitScore(ctx, e)
	if err != nil {
		return fmt.Errorf("leaderboard: submit score: %w", err)
	}
	s.logger.Debug("score submitted", "player", e.PlayerID, "score", e.Score, "changed", changed)
	if !changed {
		return nil
	}
	return s.Refresh(ctx)
}

// Refresh reloads the ranked list from the store and publishes it.
// The store is asked for twice the list size so that Rank can still fill
// the list when the store returns duplicates.
func (s *Service) Refresh(ctx context.Context) error {
	entries, err := s.store.TopScores(ctx, s.topN*2)
	if err != nil {
		return fmt.Errorf("leaderboard: load top scores: %w", err)
	}
	if s.feed.Publish(Rank(entries, s.topN)) {
		s.logger.Debug("leaderboard published", "entries", len(entries), "subscribers", s.feed.Subscribers())
	}
	return nil
}
