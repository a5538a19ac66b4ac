package engine

import (
	"io"
	"reflect"
	"testing"
	"time"

	"github.com/charmbracelet/log"

	"github.com/vovakirdan/lane-rush/internal/config"
	"github.com/vovakirdan/lane-rush/internal/session"
)

type fakeClock struct {
	t time.Time
}

func (c *fakeClock) now() time.Time { return c.t }

func (c *fakeClock) advance(d time.Duration) { c.t = c.t.Add(d) }

func newTestEngine(t *testing.T, seed int64) (*Engine, *fakeClock) {
	t.Helper()
	cfg := config.DefaultLaneRushConfig()
	quiet := log.New(io.Discard)
	clock := &fakeClock{t: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
	sess := session.New(cfg, session.WithLogger(quiet))
	return New(sess, cfg, WithSeed(seed), WithClock(clock.now), WithLogger(quiet)), clock
}

// holdSpawns pushes the next spawn far into the future.
func holdSpawns(e *Engine) {
	e.nextSpawn = time.Hour
}

func TestTickIgnoredUnlessPlaying(t *testing.T) {
	e, _ := newTestEngine(t, 1)

	e.Tick(FrameTime)
	if s := e.Snapshot(); s.Tick != 0 || len(s.Obstacles) != 0 {
		t.Errorf("idle tick changed state: %+v", s)
	}

	e.Start()
	e.Tick(FrameTime)
	e.Pause()
	before := e.Snapshot()
	for i := 0; i < 10; i++ {
		e.Tick(FrameTime)
	}
	after := e.Snapshot()
	if !reflect.DeepEqual(before, after) {
		t.Errorf("paused ticks changed state:\nbefore %+v\nafter  %+v", before, after)
	}
}

func TestFirstTickSpawns(t *testing.T) {
	e, _ := newTestEngine(t, 7)
	e.Start()
	e.Tick(FrameTime)

	s := e.Snapshot()
	if len(s.Obstacles) != 1 {
		t.Fatalf("expected 1 obstacle after first tick, got %d", len(s.Obstacles))
	}
	o := s.Obstacles[0]
	if o.Offset != -40 {
		t.Errorf("Offset = %v, expected -40", o.Offset)
	}
	if o.Speed != 2 {
		t.Errorf("Speed = %v, expected 2", o.Speed)
	}
}

func TestObstacleAdvance(t *testing.T) {
	e, _ := newTestEngine(t, 1)
	e.Start()
	holdSpawns(e)
	e.obstacles = []Obstacle{{ID: 1, Lane: 0, Offset: 0, Speed: 2}}

	e.Tick(FrameTime)
	if got := e.Snapshot().Obstacles[0].Offset; got != 2 {
		t.Errorf("Offset after one frame = %v, expected 2", got)
	}

	e.Tick(3 * FrameTime)
	if got := e.Snapshot().Obstacles[0].Offset; got != 8 {
		t.Errorf("Offset after four frames = %v, expected 8", got)
	}
}

func TestObstacleCull(t *testing.T) {
	e, _ := newTestEngine(t, 1)
	e.Start()
	holdSpawns(e)
	// Player starts in lane 4, keep the obstacles away from it
	e.obstacles = []Obstacle{
		{ID: 1, Lane: 0, Offset: 267, Speed: 2},
		{ID: 2, Lane: 1, Offset: 269, Speed: 2},
	}

	e.Tick(FrameTime)

	s := e.Snapshot()
	if len(s.Obstacles) != 1 || s.Obstacles[0].ID != 1 {
		t.Fatalf("expected only obstacle 1 to remain, got %+v", s.Obstacles)
	}
	if s.Obstacles[0].Offset != 269 {
		t.Errorf("Offset = %v, expected 269", s.Obstacles[0].Offset)
	}
}

func TestCollision(t *testing.T) {
	tests := []struct {
		name     string
		laneDiff int
		offset   float64
		hit      bool
	}{
		{"overlapping same lane", 0, 171, true},
		{"touching edges", 0, 168, false},
		{"far above", 0, 100, false},
		{"adjacent lane", 1, 208, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e, _ := newTestEngine(t, 1)
			var ends int
			e.sess.OnGameOver(func(session.GameOverEvent) { ends++ })
			e.Start()
			holdSpawns(e)
			e.obstacles = []Obstacle{
				{ID: 1, Lane: e.lane + tt.laneDiff, Offset: tt.offset, Speed: 2},
				{ID: 2, Lane: e.lane, Offset: tt.offset, Speed: 2},
			}
			if tt.laneDiff != 0 {
				e.obstacles = e.obstacles[:1]
			}

			e.Tick(FrameTime)

			s := e.Snapshot()
			if tt.hit {
				if s.State != session.StateGameOver {
					t.Errorf("State = %v, expected game over", s.State)
				}
				if ends != 1 {
					t.Errorf("End called %d times, expected 1", ends)
				}
				if len(s.Obstacles) != 1 || s.Obstacles[0].ID != 2 {
					t.Errorf("expected only the first colliding obstacle removed, got %+v", s.Obstacles)
				}
				return
			}
			if s.State != session.StatePlaying {
				t.Errorf("State = %v, expected playing", s.State)
			}
		})
	}
}

func TestMovePlayer(t *testing.T) {
	e, clock := newTestEngine(t, 1)

	if e.MovePlayer(Left) {
		t.Error("move accepted while idle")
	}

	e.Start()
	if e.lane != 4 {
		t.Fatalf("lane = %d after start, expected 4", e.lane)
	}

	if !e.MovePlayer(Left) {
		t.Fatal("first move rejected")
	}
	clock.advance(50 * time.Millisecond)
	if e.MovePlayer(Left) {
		t.Error("move inside the debounce window accepted")
	}
	clock.advance(50 * time.Millisecond)
	if !e.MovePlayer(Left) {
		t.Error("move after the debounce window rejected")
	}
	if e.lane != 2 {
		t.Errorf("lane = %d, expected 2", e.lane)
	}

	e.Pause()
	clock.advance(time.Second)
	if !e.MovePlayer(Right) {
		t.Error("move rejected while paused")
	}
	if got := e.Snapshot().PlayerLane; got != 3 {
		t.Errorf("snapshot lane = %d, expected 3", got)
	}

	// The lane picked while paused carries into the resumed round
	holdSpawns(e)
	e.obstacles = []Obstacle{{ID: 9, Lane: 0, Offset: 50, Speed: 2}}
	e.Resume()
	e.Tick(FrameTime)

	s := e.Snapshot()
	if s.State != session.StatePlaying || s.PlayerLane != 3 {
		t.Errorf("after resume: state=%v lane=%d, expected playing in lane 3", s.State, s.PlayerLane)
	}
	if len(s.Obstacles) != 1 || s.Obstacles[0].Offset != 52 {
		t.Errorf("obstacles did not advance after resume: %+v", s.Obstacles)
	}
}

func TestMovePlayerClamps(t *testing.T) {
	e, clock := newTestEngine(t, 1)
	e.Start()

	for i := 0; i < 20; i++ {
		e.MovePlayer(Right)
		clock.advance(time.Second)
	}
	if e.lane != 7 {
		t.Errorf("lane = %d, expected 7", e.lane)
	}
	if e.MovePlayer(Right) {
		t.Error("move past the right edge reported a change")
	}

	for i := 0; i < 20; i++ {
		clock.advance(time.Second)
		e.MovePlayer(Left)
	}
	if e.lane != 0 {
		t.Errorf("lane = %d, expected 0", e.lane)
	}
}

func TestStartClearsRound(t *testing.T) {
	e, clock := newTestEngine(t, 3)
	e.Start()
	e.MovePlayer(Left)
	clock.advance(time.Second)
	for i := 0; i < 30; i++ {
		e.Tick(FrameTime)
	}
	e.End()

	e.Start()
	s := e.Snapshot()
	if s.PlayerLane != 4 || len(s.Obstacles) != 0 || s.Tick != 0 {
		t.Errorf("expected a fresh round, got lane=%d obstacles=%d tick=%d", s.PlayerLane, len(s.Obstacles), s.Tick)
	}

	// Session restarted outside the engine
	e.Tick(FrameTime)
	e.sess.End()
	e.sess.Start()
	e.Tick(0)
	if s := e.Snapshot(); s.Round != e.sess.Round() || s.Tick != 1 || len(s.Obstacles) != 1 {
		t.Errorf("engine did not follow the session round: %+v", s)
	}
}

func TestInvalidTickDiscarded(t *testing.T) {
	tests := []struct {
		name    string
		elapsed time.Duration
		hit     bool
	}{
		{"single frame", FrameTime, false},
		{"across point boundaries", 2 * time.Second, false},
		{"with a collision", FrameTime, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e, _ := newTestEngine(t, 1)
			var ends int
			e.sess.OnGameOver(func(session.GameOverEvent) { ends++ })
			e.Start()
			holdSpawns(e)
			e.obstacles = []Obstacle{{ID: 1, Lane: 0, Offset: 0, Speed: 2}}
			e.Tick(FrameTime)

			before := e.Snapshot()
			active, batches := e.active, e.spawn.batches
			e.nextSpawn = e.active // a batch is due

			e.obstacles = append(e.obstacles, Obstacle{ID: 2, Lane: 1, Offset: 0, Speed: 0})
			if tt.hit {
				e.obstacles = append(e.obstacles, Obstacle{ID: 3, Lane: e.lane, Offset: 171, Speed: 2})
			}
			e.Tick(tt.elapsed)

			if got := e.Snapshot(); !reflect.DeepEqual(before, got) {
				t.Errorf("invalid tick was committed:\nbefore %+v\nafter  %+v", before, got)
			}
			if e.sess.Score() != 0 || e.sess.State() != session.StatePlaying || ends != 0 {
				t.Errorf("session changed: score=%d state=%v ends=%d", e.sess.Score(), e.sess.State(), ends)
			}
			if e.active != active || e.nextSpawn != active || e.spawn.batches != batches {
				t.Errorf("spawn clock changed: active=%v nextSpawn=%v batches=%d", e.active, e.nextSpawn, e.spawn.batches)
			}
		})
	}
}

func TestFastObstacleCannotPassThroughPlayer(t *testing.T) {
	e, _ := newTestEngine(t, 1)
	e.Start()
	holdSpawns(e)
	// One frame moves these cars 150 units, from above the player to past
	// the cull line.
	e.obstacles = []Obstacle{
		{ID: 1, Lane: e.lane - 1, Offset: 140, Speed: 150},
		{ID: 2, Lane: e.lane, Offset: 140, Speed: 150},
	}

	e.Tick(FrameTime)

	s := e.Snapshot()
	if s.State != session.StateGameOver {
		t.Fatalf("State = %v, expected the fast car to hit the player", s.State)
	}
	if len(s.Obstacles) != 1 || s.Obstacles[0].ID != 1 {
		t.Errorf("expected only the neighbour car left, got %+v", s.Obstacles)
	}
}

func TestSnapshotIsolated(t *testing.T) {
	e, _ := newTestEngine(t, 1)
	e.Start()
	e.Tick(FrameTime)

	s := e.Snapshot()
	s.Obstacles[0].Lane = 99
	if e.Snapshot().Obstacles[0].Lane == 99 {
		t.Error("snapshot shares memory with the engine")
	}
}

func TestSpawnTimingExcludesPause(t *testing.T) {
	e, _ := newTestEngine(t, 11)
	e.Start()
	e.Tick(FrameTime) // first batch

	// 1100ms of play is short of the 1200ms level 1 interval
	for i := 0; i < 66; i++ {
		e.Tick(FrameTime)
	}
	e.Pause()
	e.Tick(time.Minute)
	e.Resume()
	if n := len(e.Snapshot().Obstacles); n != 1 {
		t.Fatalf("expected 1 obstacle before the interval elapsed, got %d", n)
	}

	for i := 0; i < 10; i++ {
		e.Tick(FrameTime)
	}
	if n := len(e.Snapshot().Obstacles); n != 2 {
		t.Errorf("expected a second batch after 1200ms of play, got %d obstacles", n)
	}
}

func TestLevelUpRecomputesSpawnInterval(t *testing.T) {
	e, _ := newTestEngine(t, 1)
	e.Start()
	e.nextSpawn = e.active + 10*time.Second

	// 20 points cross into level 2
	e.Tick(20 * time.Second)

	if e.sess.Level() != 2 {
		t.Fatalf("Level() = %d, expected 2", e.sess.Level())
	}
	if e.interval != 736*time.Millisecond {
		t.Errorf("interval = %v, expected 736ms", e.interval)
	}
	if e.nextSpawn != 20*time.Second+736*time.Millisecond {
		t.Errorf("nextSpawn = %v, expected one interval after the batch", e.nextSpawn)
	}
}

func TestDeterminism(t *testing.T) {
	run := func() Snapshot {
		e, clock := newTestEngine(t, 42)
		e.Start()
		for i := 0; i < 2000; i++ {
			if dir, ok := Steer(e.Snapshot(), e.cfg); ok {
				e.MovePlayer(dir)
			}
			clock.advance(FrameTime)
			e.Tick(FrameTime)
			if e.sess.State() != session.StatePlaying {
				break
			}
		}
		return e.Snapshot()
	}

	a, b := run(), run()
	if !reflect.DeepEqual(a, b) {
		t.Errorf("runs with the same seed differ:\n%+v\n%+v", a, b)
	}
	if a.Tick == 0 {
		t.Error("expected the run to advance")
	}
}

func TestInvariantsHoldDuringPlay(t *testing.T) {
	e, clock := newTestEngine(t, 99)
	cfg := e.cfg
	e.Start()

	lastScore := 0
	for i := 0; i < 5000 && e.sess.State() == session.StatePlaying; i++ {
		if dir, ok := Steer(e.Snapshot(), cfg); ok {
			e.MovePlayer(dir)
		}
		clock.advance(FrameTime)
		e.Tick(FrameTime)

		s := e.Snapshot()
		if s.PlayerLane < 0 || s.PlayerLane >= cfg.Track.Lanes {
			t.Fatalf("tick %d: player lane %d out of range", s.Tick, s.PlayerLane)
		}
		for _, o := range s.Obstacles {
			if o.Lane < 0 || o.Lane >= cfg.Track.Lanes {
				t.Fatalf("tick %d: obstacle lane %d out of range", s.Tick, o.Lane)
			}
			if o.Offset >= cfg.Track.Length+cfg.Car.Height {
				t.Fatalf("tick %d: obstacle at %v not culled", s.Tick, o.Offset)
			}
		}
		if s.Score < lastScore {
			t.Fatalf("tick %d: score went down from %d to %d", s.Tick, lastScore, s.Score)
		}
		lastScore = s.Score
	}
}
