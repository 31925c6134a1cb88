package sim

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/spatial/r2"
)

func testParams() MoveParams {
	return DefaultConfig().MoveParams(10)
}

func TestAdvance_IdleIsUnchanged(t *testing.T) {
	p := testParams()
	pos := r2.Vec{X: 40, Y: 12}
	vel := r2.Vec{X: 0.3, Y: -0.2}

	for i := 0; i < 5; i++ {
		next := Advance(Idle{}, p, pos, &vel, FixedDT)
		assert.Equal(t, Idle{}, next)
	}
	assert.Equal(t, r2.Vec{X: 0.3, Y: -0.2}, vel)
	assert.Equal(t, r2.Vec{X: 40, Y: 12}, pos)
}

func TestAdvance_EmptyRouteGoesIdle(t *testing.T) {
	vel := r2.Vec{}
	next := Advance(NewFollowing(nil), testParams(), r2.Vec{}, &vel, FixedDT)
	assert.Equal(t, Idle{}, next)
	assert.Equal(t, r2.Vec{}, vel)
}

func TestAdvance_ReachesWaypointAndSteersToNext(t *testing.T) {
	p := testParams()
	f := NewFollowing(Route{0, 1})
	pos := TileCentre(0, p.Width, p.TileSize)
	vel := r2.Vec{}

	next := Advance(f, p, pos, &vel, 0.5)
	require.Same(t, f, next)
	assert.Equal(t, 1, f.Cursor())
	// Unit direction (1,0) scaled by impulse*dt.
	assert.InDelta(t, p.Impulse*0.5, vel.X, 1e-12)
	assert.InDelta(t, 0, vel.Y, 1e-12)
}

func TestAdvance_ImpulseIsUnitDirection(t *testing.T) {
	p := testParams()
	f := NewFollowing(Route{99})
	target := TileCentre(99, p.Width, p.TileSize)
	pos := r2.Sub(target, r2.Vec{X: 30, Y: 40})
	vel := r2.Vec{X: 1, Y: 1}

	Advance(f, p, pos, &vel, 1)
	gained := r2.Sub(vel, r2.Vec{X: 1, Y: 1})
	assert.InDelta(t, p.Impulse, r2.Norm(gained), 1e-9)
	assert.InDelta(t, 0.6*p.Impulse, gained.X, 1e-9)
	assert.InDelta(t, 0.8*p.Impulse, gained.Y, 1e-9)
	assert.Equal(t, 0, f.Cursor())
}

func TestAdvance_LastWaypointGoesIdle(t *testing.T) {
	p := testParams()
	f := NewFollowing(Route{0, 1})
	vel := r2.Vec{X: 0.5}

	Advance(f, p, TileCentre(0, p.Width, p.TileSize), &vel, FixedDT)
	require.Equal(t, 1, f.Cursor())

	before := vel
	next := Advance(f, p, TileCentre(1, p.Width, p.TileSize), &vel, FixedDT)
	assert.Equal(t, Idle{}, next)
	assert.Equal(t, 2, f.Cursor())
	assert.Equal(t, before, vel, "arriving adds no impulse")
}

func TestFollowing_CursorMonotonicDuringRun(t *testing.T) {
	ts := NewTestSim(
		WithGrid(10, 10),
		WithWall(5, 0),
		WithWerf(0, 0),
	)
	t.Cleanup(ts.Close)
	require.True(t, ts.CommandTile(0, 9, 0))

	a, _ := ts.Agent(0)
	f := a.State.(*Following)
	routeLen := len(f.Route())
	last := 0
	arrived := false

	for frame := 0; frame < 3000; frame++ {
		ts.Step(FixedDT)
		a, _ := ts.Agent(0)
		if _, idle := a.State.(Idle); idle {
			arrived = true
			break
		}
		cur := a.State.(*Following).Cursor()
		require.GreaterOrEqual(t, cur, last, "frame %d: cursor went backwards", frame)
		require.Less(t, cur, routeLen, "frame %d: following with exhausted route", frame)
		last = cur
	}
	require.True(t, arrived, "werf never arrived")
	assert.Equal(t, routeLen, f.Cursor())
}

func TestScenario_EndToEnd(t *testing.T) {
	ts := NewTestSim(WithGrid(10, 10), WithWerf(0, 0))
	t.Cleanup(ts.Close)

	start, _ := ts.TileAt(ts.TileCentreOf(0, 0))
	goal, _ := ts.TileAt(ts.TileCentreOf(9, 0))
	route, ok := FindRoute(ts.Tiles(), start, goal)
	require.True(t, ok)
	require.Len(t, route, 10)

	require.True(t, ts.CommandTile(0, 9, 0))
	tick := ts.RunUntil(func(ts *TestSim) bool { return ts.AllIdle() }, 3000)
	if tick < 0 {
		t.Fatalf("werf did not arrive:\n%s\n%s", ts.Snapshot().Format(), ts.Log().Format())
	}

	a, _ := ts.Agent(0)
	d2 := r2.Norm2(r2.Sub(a.Pos, ts.TileCentreOf(9, 0)))
	assert.Less(t, d2, ts.Config().ProximityThreshold,
		"arrived %.2f units from goal", math.Sqrt(d2))
	assert.True(t, ts.Log().HasEntry(CatMove, KeyArrived, ""))
	assert.Equal(t, 1, ts.Log().CountCategory(CatCommand, KeyRouteIssued))
	t.Logf("arrived at tick %d", tick)

	// Momentum carries the werf on past the east edge once it is idle.
	ts.RunFrames(300)
	a, _ = ts.Agent(0)
	assert.Equal(t, Idle{}, a.State)
	assert.Greater(t, a.Pos.X, float64(ts.Tiles().Width())*ts.Config().TileSize, "werf coasted off the grid")
	assert.Equal(t, 1, ts.Log().CountCategory(CatMove, KeyArrived))

	// It can still be sent home, starting from the edge tile it left.
	require.True(t, ts.CommandTile(0, 0, 0))
	a, _ = ts.Agent(0)
	back := a.State.(*Following).Route()
	require.Len(t, back, 10)
	assert.Equal(t, goal, back[0])
	assert.Equal(t, start, back[len(back)-1])

	tick = ts.RunUntil(func(ts *TestSim) bool { return ts.AllIdle() }, 3000)
	require.Positive(t, tick, "werf did not return:\n%s", ts.Snapshot().Format())
	a, _ = ts.Agent(0)
	assert.Less(t, r2.Norm2(r2.Sub(a.Pos, ts.TileCentreOf(0, 0))), ts.Config().ProximityThreshold)
	assert.Equal(t, 2, ts.Log().CountCategory(CatMove, KeyArrived))
}

func TestScenario_BlockedTile(t *testing.T) {
	ts := NewTestSim(WithGrid(10, 10), WithWall(5, 0), WithWerf(0, 0))
	t.Cleanup(ts.Close)

	require.True(t, ts.CommandTile(0, 9, 0))
	a, _ := ts.Agent(0)
	route := a.State.(*Following).Route()
	wall, _ := ts.Tiles().Index(5, 0)
	assert.NotContains(t, route, wall)

	tick := ts.RunUntil(func(ts *TestSim) bool { return ts.AllIdle() }, 3000)
	require.Positive(t, tick, "werf did not arrive:\n%s", ts.Snapshot().Format())
}
