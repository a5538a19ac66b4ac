// Package engine runs the lane simulation: obstacle movement, spawning,
// collision against the player car, and the per-tick snapshot.
package engine

import (
	"fmt"
	"math"
	"time"

	"github.com/charmbracelet/log"

	"github.com/vovakirdan/lane-rush/internal/config"
	"github.com/vovakirdan/lane-rush/internal/core"
	"github.com/vovakirdan/lane-rush/internal/session"
)

// FrameTime is the reference frame. Obstacle speeds are in world units per
// frame, so one tick of exactly FrameTime advances an obstacle by its speed
// times the session multiplier.
const FrameTime = time.Second / 60

// Option configures an Engine.
type Option func(*Engine)

// WithSeed makes spawning deterministic.
func WithSeed(seed int64) Option {
	return func(e *Engine) { e.seed = seed }
}

// WithClock overrides the clock used for move rate limiting.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

// WithLogger sets the engine logger.
func WithLogger(l *log.Logger) Option {
	return func(e *Engine) { e.logger = l }
}

// Engine advances one session's world. It is driven from a single
// goroutine; the session it wraps may be read concurrently.
type Engine struct {
	sess   *session.Session
	cfg    config.LaneRushConfig
	curve  config.Curve
	spawn  *spawner
	seed   int64
	now    func() time.Time
	logger *log.Logger

	round     uint64
	tick      uint64
	lane      int
	obstacles []Obstacle

	active    time.Duration // playing time in this round
	nextSpawn time.Duration // active time at which the next batch is due
	interval  time.Duration
	lastMove  time.Time

	snap Snapshot
}

// New creates an engine for sess.
func New(sess *session.Session, cfg config.LaneRushConfig, opts ...Option) *Engine {
	e := &Engine{
		sess:  sess,
		cfg:   cfg,
		curve: config.NewCurve(cfg),
		seed:  time.Now().UnixNano(),
		now:   time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.logger == nil {
		e.logger = log.Default()
	}
	e.logger = e.logger.WithPrefix("engine")
	e.spawn = newSpawner(e.seed, cfg)

	e.round = sess.Round()
	e.resetRound()
	return e
}

func (e *Engine) Start() {
	e.sess.Start()
	e.syncRound()
}

func (e *Engine) Pause() {
	e.sess.Pause()
	e.commit()
}

func (e *Engine) Resume() {
	e.sess.Resume()
	e.commit()
}

func (e *Engine) End() {
	e.sess.End()
	e.commit()
}

func (e *Engine) Reset() {
	e.sess.Reset()
	e.syncRound()
}

// Snapshot returns the last committed state with current session counters.
func (e *Engine) Snapshot() Snapshot {
	s := e.snap.clone()
	e.fillSession(&s)
	return s
}

// MovePlayer shifts the player one lane, clamped to the track.
// Moves are accepted while playing or paused, at most once per debounce
// window. Reports whether the lane changed.
func (e *Engine) MovePlayer(dir Direction) bool {
	e.syncRound()
	if !e.sess.State().Active() {
		return false
	}

	now := e.now()
	if !e.lastMove.IsZero() && now.Sub(e.lastMove) < e.cfg.Input.MoveDebounce() {
		return false
	}
	e.lastMove = now

	target := core.Clamp(e.lane+int(dir), 0, e.cfg.Track.Lanes-1)
	if target == e.lane {
		return false
	}
	e.lane = target
	e.commit()
	return true
}

// Tick advances the world by elapsed play time. It does nothing unless the
// session is playing.
//
// The next state is built aside and validated before anything is committed:
// a rejected tick leaves the session counters, the spawn clock and the
// published snapshot untouched.
func (e *Engine) Tick(elapsed time.Duration) {
	e.syncRound()
	if e.sess.State() != session.StatePlaying {
		return
	}
	if elapsed < 0 {
		elapsed = 0
	}

	lane := e.lane
	active := e.active + elapsed
	interval, nextSpawn := e.interval, e.nextSpawn

	level, mult := e.sess.Preview(elapsed)
	if level > e.sess.Level() {
		interval = e.curve.SpawnInterval(level)
		nextSpawn = min(nextSpawn, active+interval)
	}

	next, hit := e.advance(lane, mult, float64(elapsed)/float64(FrameTime))

	var batch []Obstacle
	if active >= nextSpawn {
		batch = e.spawn.plan(level)
		next = append(next, batch...)
		nextSpawn = active + interval
	}

	if hit < 0 {
		hit = e.collide(lane, next)
	}
	if hit >= 0 {
		next = append(next[:hit], next[hit+1:]...)
	}

	if err := e.validate(lane, next); err != nil {
		e.logger.Error("tick discarded", "tick", e.tick+1, "err", err)
		return
	}

	e.active, e.interval, e.nextSpawn = active, interval, nextSpawn
	e.obstacles = next
	e.tick++
	if batch != nil {
		e.spawn.accept(batch)
	}
	e.sess.ReportProgress(elapsed)
	if hit >= 0 {
		e.logger.Debug("collision", "lane", lane, "tick", e.tick)
		e.sess.End()
	}
	e.commit()
}

// advance moves a copy of the obstacles by frames and culls those past the
// track. Movement is split into steps no longer than one car height, with a
// collision test after each, so a fast car cannot pass through the player
// between two ticks. It returns the index of the first obstacle hit, or -1.
func (e *Engine) advance(lane int, mult, frames float64) ([]Obstacle, int) {
	next := append(make([]Obstacle, 0, len(e.obstacles)+3), e.obstacles...)
	if frames <= 0 {
		return next, -1
	}

	fastest := 0.0
	for _, o := range next {
		fastest = math.Max(fastest, o.Speed)
	}
	steps := max(1, int(math.Ceil(fastest*mult*frames/e.cfg.Car.Height)))
	step := frames / float64(steps)
	cull := e.cfg.Track.Length + e.cfg.Car.Height

	for range steps {
		kept := next[:0]
		for _, o := range next {
			o.Offset += o.Speed * mult * step
			if o.Offset >= cull {
				continue
			}
			kept = append(kept, o)
		}
		next = kept
		if hit := e.collide(lane, next); hit >= 0 {
			return next, hit
		}
	}
	return next, -1
}

// collide returns the index of the first obstacle overlapping the player,
// or -1.
func (e *Engine) collide(lane int, obstacles []Obstacle) int {
	player := e.playerHitbox(lane)
	for i, o := range obstacles {
		if player.Intersects(o.hitbox(e.cfg.Track.LaneWidth, e.cfg.Car.Width, e.cfg.Car.Height)) {
			return i
		}
	}
	return -1
}

// playerHitbox returns the player's collision rectangle. The car sits at
// the bottom of the track.
func (e *Engine) playerHitbox(lane int) core.RectF {
	return core.RectAround(
		laneCenter(lane, e.cfg.Track.LaneWidth),
		e.cfg.Track.Length-e.cfg.Car.Height/2,
		e.cfg.Car.Width,
		e.cfg.Car.Height,
	)
}

// syncRound clears the world when the session started or reset a round.
func (e *Engine) syncRound() {
	if r := e.sess.Round(); r != e.round {
		e.round = r
		e.resetRound()
	}
}

func (e *Engine) resetRound() {
	e.tick = 0
	e.lane = e.cfg.Track.Lanes / 2
	e.obstacles = nil
	e.active = 0
	e.nextSpawn = 0
	e.interval = e.curve.SpawnInterval(1)
	e.lastMove = time.Time{}
	e.commit()
}

func (e *Engine) validate(lane int, obstacles []Obstacle) error {
	lanes := e.cfg.Track.Lanes
	if lane < 0 || lane >= lanes {
		return fmt.Errorf("engine: player lane %d out of range", lane)
	}
	for _, o := range obstacles {
		switch {
		case o.Lane < 0 || o.Lane >= lanes:
			return fmt.Errorf("engine: obstacle %d lane %d out of range", o.ID, o.Lane)
		case !(o.Speed > 0):
			return fmt.Errorf("engine: obstacle %d speed %v not positive", o.ID, o.Speed)
		case math.IsNaN(o.Offset) || math.IsInf(o.Offset, 0):
			return fmt.Errorf("engine: obstacle %d offset %v invalid", o.ID, o.Offset)
		}
	}
	return nil
}

func (e *Engine) commit() {
	e.snap = Snapshot{
		Tick:       e.tick,
		Round:      e.round,
		PlayerLane: e.lane,
		Obstacles:  append([]Obstacle(nil), e.obstacles...),
	}
	e.fillSession(&e.snap)
}

func (e *Engine) fillSession(s *Snapshot) {
	s.Score = e.sess.Score()
	s.Level = e.sess.Level()
	s.SpeedMultiplier = e.sess.SpeedMultiplier()
	s.HighScore = e.sess.HighScore()
	s.NewBest = e.sess.NewBest()
	s.State = e.sess.State()
}
