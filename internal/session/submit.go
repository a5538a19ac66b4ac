package session

import (
	"context"
	"time"

	"github.com/vovakirdan/lane-rush/internal/leaderboard"
)

func (s *Session) shouldSubmitLocked() bool {
	switch {
	case s.sink == nil:
		return false
	case !s.profile.Complete():
		s.logger.Debug("score not submitted", "reason", "no profile")
		return false
	case s.score <= 0 || s.score <= s.knownBest:
		return false
	case s.submitting:
		s.logger.Debug("score not submitted", "reason", "submission in flight")
		return false
	}
	return true
}

// submitLocked takes the in-flight guard and submits the current score.
// The guard is released when the submission returns, or by a timer if it
// never does. Each guard carries a generation so a stale release is a no-op.
func (s *Session) submitLocked() {
	s.submitting = true
	s.guardGen++
	gen := s.guardGen

	entry := leaderboard.Entry{
		PlayerID:    s.profile.ID,
		DisplayName: s.profile.DisplayName,
		Avatar:      s.profile.AvatarOrDefault(),
		Score:       s.score,
		UpdatedAt:   s.now(),
	}

	guard := time.AfterFunc(s.cfg.Submit.GuardTimeout(), func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		if s.submitting && s.guardGen == gen {
			s.submitting = false
			s.logger.Warn("submission guard expired", "player", entry.PlayerID)
		}
	})

	s.inflight.Add(1)
	go func() {
		defer s.inflight.Done()

		ctx := context.Background()
		if timeout := s.cfg.Submit.Timeout(); timeout > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, timeout)
			defer cancel()
		}
		err := s.sink.SubmitScore(ctx, entry)
		guard.Stop()

		s.mu.Lock()
		defer s.mu.Unlock()
		if s.guardGen == gen {
			s.submitting = false
		}
		if err != nil {
			s.logger.Error("score submission failed", "player", entry.PlayerID, "score", entry.Score, "err", err)
			return
		}
		if entry.Score > s.knownBest {
			s.knownBest = entry.Score
			s.profile.HighScore = entry.Score
		}
		s.logger.Info("score submitted", "player", entry.PlayerID, "score", entry.Score)
	}()
}
