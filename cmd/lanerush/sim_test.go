package main

import (
	"bytes"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/vovakirdan/lane-rush/internal/config"
	"github.com/vovakirdan/lane-rush/internal/session"
)

func TestSimulateDeterministic(t *testing.T) {
	flagLogLevel = "error"
	cfg := config.DefaultLaneRushConfig()
	step := time.Second / 60

	a := simulate(cfg, 42, step, 30*time.Second, true)
	b := simulate(cfg, 42, step, 30*time.Second, true)

	if !reflect.DeepEqual(a, b) {
		t.Errorf("same seed produced different runs:\n%+v\n%+v", a, b)
	}
	if a.Elapsed > 30*time.Second {
		t.Errorf("Elapsed = %v, beyond the limit", a.Elapsed)
	}
}

func TestSimulateWithoutAutopilotStopsAtLimitOrCrash(t *testing.T) {
	flagLogLevel = "error"
	cfg := config.DefaultLaneRushConfig()

	res := simulate(cfg, 7, time.Second/60, 10*time.Second, false)

	switch res.Snapshot.State {
	case session.StateGameOver:
	case session.StatePlaying:
		if res.Elapsed < 10*time.Second {
			t.Errorf("stopped early at %v while still playing", res.Elapsed)
		}
	default:
		t.Errorf("unexpected final state %v", res.Snapshot.State)
	}
}

func TestPrintSim(t *testing.T) {
	flagLogLevel = "error"
	res := simulate(config.DefaultLaneRushConfig(), 1, time.Second/60, 2*time.Second, true)

	var buf bytes.Buffer
	printSim(&buf, res, 1)

	for _, want := range []string{"seed:       1", "score:", "level:      1"} {
		if !strings.Contains(buf.String(), want) {
			t.Errorf("output missing %q:\n%s", want, buf.String())
		}
	}
}
