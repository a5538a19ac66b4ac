// Package session implements the game session state machine: lifecycle
// transitions, score and level accounting, and the end-of-round score
// submission.
package session

import (
	"context"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"github.com/vovakirdan/lane-rush/internal/config"
	"github.com/vovakirdan/lane-rush/internal/leaderboard"
	"github.com/vovakirdan/lane-rush/internal/player"
)

// ScoreSink receives finished-round scores. Implementations keep the best
// score per player.
type ScoreSink interface {
	SubmitScore(ctx context.Context, e leaderboard.Entry) error
}

// GameOverEvent describes a round that just ended.
type GameOverEvent struct {
	Score     int
	Level     int
	HighScore int
	NewBest   bool
	Duration  time.Duration
}

// Option configures a Session.
type Option func(*Session)

// WithSink sets where finished scores are submitted.
func WithSink(sink ScoreSink) Option {
	return func(s *Session) { s.sink = sink }
}

// WithPlayer sets the authenticated player and seeds the high score.
func WithPlayer(p player.Profile) Option {
	return func(s *Session) {
		s.profile = p
		s.knownBest = p.HighScore
	}
}

// WithLogger sets the session logger.
func WithLogger(l *log.Logger) Option {
	return func(s *Session) { s.logger = l }
}

// WithClock overrides the wall clock used to stamp submissions.
func WithClock(now func() time.Time) Option {
	return func(s *Session) { s.now = now }
}

// Session tracks one player's game lifecycle and score.
// All methods are safe for concurrent use.
type Session struct {
	mu sync.Mutex

	cfg   config.LaneRushConfig
	curve config.Curve

	state      State
	score      int
	level      int
	multiplier float64
	acc        time.Duration // play time not yet converted to points
	played     time.Duration
	round      uint64
	newBest    bool // last ended round beat the known best

	profile   player.Profile
	knownBest int

	sink       ScoreSink
	submitting bool
	guardGen   uint64
	inflight   sync.WaitGroup

	listeners []func(GameOverEvent)
	logger    *log.Logger
	now       func() time.Time
}

// New creates an idle session.
func New(cfg config.LaneRushConfig, opts ...Option) *Session {
	s := &Session{
		cfg:        cfg,
		curve:      config.NewCurve(cfg),
		level:      1,
		multiplier: 1,
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = log.Default()
	}
	s.logger = s.logger.WithPrefix("session")
	return s
}

// OnGameOver registers fn to be called once per ended round.
// Listeners run on the goroutine that called End, after the lock is released.
func (s *Session) OnGameOver(fn func(GameOverEvent)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listeners = append(s.listeners, fn)
}

// Profile returns the current player's profile.
func (s *Session) Profile() player.Profile {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.profile
}

func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

func (s *Session) Score() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.score
}

func (s *Session) Level() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.level
}

func (s *Session) SpeedMultiplier() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.multiplier
}

// HighScore returns the best score known for the player, including the
// current round.
func (s *Session) HighScore() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return max(s.knownBest, s.score)
}

// Round increments on every Start and Reset.
func (s *Session) Round() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.round
}

// NewBest reports whether the last ended round beat the player's previous
// best. It is cleared when a new round starts.
func (s *Session) NewBest() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.newBest
}

// Submitting reports whether a score submission holds the in-flight guard.
func (s *Session) Submitting() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.submitting
}

// Start begins a new round from idle or game over.
// It does nothing while a round is running.
func (s *Session) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != StateIdle && s.state != StateGameOver {
		return
	}
	s.clearLocked()
	s.state = StatePlaying
	s.logger.Debug("round started", "round", s.round)
}

// Pause suspends a playing round.
func (s *Session) Pause() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == StatePlaying {
		s.state = StatePaused
	}
}

// Resume continues a paused round.
func (s *Session) Resume() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == StatePaused {
		s.state = StatePlaying
	}
}

// Reset returns to idle from any state.
func (s *Session) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.clearLocked()
	s.state = StateIdle
}

func (s *Session) clearLocked() {
	s.score = 0
	s.level = 1
	s.multiplier = 1
	s.acc = 0
	s.played = 0
	s.newBest = false
	s.round++
}

// Preview returns the level and speed multiplier the session would have
// after ReportProgress(elapsed), without changing anything. Outside play it
// returns the current values.
func (s *Session) Preview(elapsed time.Duration) (level int, multiplier float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != StatePlaying || elapsed <= 0 {
		return s.level, s.multiplier
	}
	score := s.score + int((s.acc+elapsed)/s.cfg.Scoring.PointInterval())
	level = s.curve.Level(score)
	if level <= s.level {
		return s.level, s.multiplier
	}
	return level, s.curve.SpeedMultiplier(level)
}

// ReportProgress credits elapsed play time. Every full point interval adds
// one point. It reports whether the level went up.
// Ignored unless the session is playing.
func (s *Session) ReportProgress(elapsed time.Duration) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != StatePlaying || elapsed <= 0 {
		return false
	}

	s.played += elapsed
	s.acc += elapsed
	interval := s.cfg.Scoring.PointInterval()
	for s.acc >= interval {
		s.acc -= interval
		s.score++
	}

	level := s.curve.Level(s.score)
	if level <= s.level {
		return false
	}
	s.level = level
	s.multiplier = s.curve.SpeedMultiplier(level)
	s.logger.Debug("level up", "level", level, "multiplier", s.multiplier)
	return true
}

// End finishes the running round. Calls outside a round are ignored.
// A qualifying score is submitted in the background.
func (s *Session) End() {
	s.mu.Lock()
	if !s.state.Active() {
		s.mu.Unlock()
		return
	}
	s.state = StateGameOver

	ev := GameOverEvent{
		Score:     s.score,
		Level:     s.level,
		HighScore: max(s.knownBest, s.score),
		NewBest:   s.score > 0 && s.score > s.knownBest,
		Duration:  s.played,
	}
	s.newBest = ev.NewBest
	if s.shouldSubmitLocked() {
		s.submitLocked()
	}
	listeners := append([]func(GameOverEvent){}, s.listeners...)
	s.mu.Unlock()

	s.logger.Info("game over", "score", ev.Score, "level", ev.Level, "new_best", ev.NewBest)
	for _, fn := range listeners {
		fn(ev)
	}
}

// Wait blocks until every background submission has returned.
func (s *Session) Wait() {
	s.inflight.Wait()
}
