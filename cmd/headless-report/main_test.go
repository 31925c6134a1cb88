package main

import (
	"context"
	"testing"

	"github.com/Garsondee/werfs/internal/sim"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testOptions(werfs int) options {
	return options{
		runs:     1,
		frames:   3000,
		seedBase: 42,
		seedStep: 1,
		werfs:    werfs,
		cfg:      sim.DefaultConfig(),
	}
}

func TestScenarios_Registered(t *testing.T) {
	for _, name := range []string{"crossing", "crowd", "corridor"} {
		_, ok := findScenario(name)
		assert.True(t, ok, name)
	}
	_, ok := findScenario("mutual-advance")
	assert.False(t, ok)
	assert.Equal(t, "corridor, crossing, crowd", scenarioNames())
}

func TestRoom(t *testing.T) {
	assert.Equal(t, []string{"####", "#..#", "####"}, room(4, 3))
}

func TestCrossing_PairsSwapEnds(t *testing.T) {
	sc, _ := findScenario("crossing")
	rs := runScenario(sc, 1, 42, testOptions(2), nil)

	assert.Equal(t, 2, rs.werfs)
	assert.Equal(t, 2, rs.issued)
	assert.Zero(t, rs.unreachable)
	assert.GreaterOrEqual(t, rs.settledAt, 0, "both werfs come to rest")
	assert.Len(t, rs.arrivals, 2)
	assert.Positive(t, rs.contactFrames, "head-on pair touches on the way past")
	assert.Empty(t, stragglers(rs))
}

func TestCorridor_EveryoneGetsThrough(t *testing.T) {
	sc, _ := findScenario("corridor")
	o := testOptions(4)
	o.frames = 6000
	rs := runScenario(sc, 1, 7, o, nil)

	require.Equal(t, 4, rs.werfs)
	assert.Equal(t, 4, rs.issued)
	assert.Zero(t, rs.unreachable)
	assert.Len(t, rs.arrivals, 4)
}

func TestCrowd_IsDeterministic(t *testing.T) {
	sc, _ := findScenario("crowd")
	o := testOptions(10)
	o.frames = 300

	a := runScenario(sc, 1, 99, o, nil)
	b := runScenario(sc, 1, 99, o, nil)
	assert.Equal(t, a, b)
	assert.Equal(t, 10, a.werfs)
	assert.Equal(t, 10, a.issued+a.unreachable)
}

func TestRunScenario_ObserverSeesEveryFrame(t *testing.T) {
	sc, _ := findScenario("crossing")
	o := testOptions(2)
	o.frames = 25

	seen := 0
	var last *sim.Sim
	rs := runScenario(sc, 1, 42, o, func(s *sim.Sim) {
		seen++
		last = s
	})
	assert.Equal(t, 25, rs.frames)
	assert.Equal(t, 25, seen)
	require.NotNil(t, last)
	assert.Equal(t, 25, last.Context().Tick)
	assert.Equal(t, "W0,W1", stragglers(rs))
}

func TestRunAll_StopsWhenCancelled(t *testing.T) {
	o := testOptions(2)
	o.runs = 3
	o.scenarios = scenarios

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.Empty(t, runAll(ctx, o, nil))
}

func TestAsyncPlanning_MatchesSync(t *testing.T) {
	sc, _ := findScenario("corridor")
	o := testOptions(3)

	syncRun := runScenario(sc, 1, 5, o, nil)
	o.cfg.AsyncPlanning = true
	asyncRun := runScenario(sc, 1, 5, o, nil)

	assert.Equal(t, syncRun.issued, asyncRun.issued)
	assert.Equal(t, syncRun.settledAt, asyncRun.settledAt)
	assert.Equal(t, syncRun.arrivals, asyncRun.arrivals)
}

func TestAvgHelpers(t *testing.T) {
	assert.Equal(t, 0.0, avg(5, 0))
	assert.Equal(t, 2.5, avg(5, 2))
	assert.Equal(t, "n/a", avgTickString(nil))
	assert.Equal(t, "20.0", avgTickString([]int{10, 30}))
}
