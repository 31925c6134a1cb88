package game

import (
	"testing"

	"github.com/Garsondee/werfs/internal/sim"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/spatial/r2"
)

// headlessGame builds a Game without GPU images, for input handling tests.
func headlessGame(ts *sim.TestSim, vpW, vpH int) *Game {
	tiles := ts.Tiles()
	size := ts.Config().TileSize
	worldW, worldH := float64(tiles.Width())*size, float64(tiles.Height())*size
	return &Game{
		sim:      ts.Sim,
		vpW:      vpW,
		vpH:      vpH,
		worldW:   worldW,
		worldH:   worldH,
		cam:      newCamera(worldW, worldH, float64(vpW), float64(vpH), 0, 0),
		panel:    NewEventPanel(),
		simSpeed: 1,
	}
}

func TestPickWerf(t *testing.T) {
	agents := []sim.Agent{
		{ID: 0, Pos: r2.Vec{X: 10, Y: 10}},
		{ID: 1, Pos: r2.Vec{X: 22, Y: 10}},
	}

	tests := []struct {
		name   string
		p      r2.Vec
		want   sim.AgentID
		wantOK bool
	}{
		{"nearest first", r2.Vec{X: 13, Y: 10}, 0, true},
		{"nearest second", r2.Vec{X: 20, Y: 11}, 1, true},
		{"tie keeps lower id", r2.Vec{X: 16, Y: 10}, 0, true},
		{"on the radius", r2.Vec{X: 10, Y: 18}, 0, true},
		{"miss", r2.Vec{X: 100, Y: 100}, 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := pickWerf(agents, tt.p, 8)
			assert.Equal(t, tt.wantOK, ok)
			if tt.wantOK {
				assert.Equal(t, tt.want, got)
			}
		})
	}
}

func TestGame_CommandClickIsClamped(t *testing.T) {
	ts := sim.NewTestSim(sim.WithGrid(10, 10), sim.WithWerf(0, 5))
	t.Cleanup(ts.Close)
	g := headlessGame(ts, 320, 320)
	g.cam.x, g.cam.y, g.cam.zoom = 80, 80, 0.5

	assert.False(t, g.handleCommandClick(400, 10), "outside the viewport")
	require.True(t, g.handleCommandClick(319, 10))

	ts.Step(sim.FixedDT)
	a, _ := ts.Agent(0)
	require.IsType(t, &sim.Following{}, a.State)
	route := a.State.(*sim.Following).Route()
	goal, _ := ts.Tiles().Index(9, 0)
	assert.Equal(t, goal, route[len(route)-1], "click past the level lands on its corner tile")
}

func TestGame_CommandClickNeedsFocus(t *testing.T) {
	ts := sim.NewTestSim(sim.WithGrid(4, 4))
	t.Cleanup(ts.Close)
	g := headlessGame(ts, 128, 128)
	assert.False(t, g.handleCommandClick(10, 10))
}

func TestGame_PickClickMovesFocus(t *testing.T) {
	ts := sim.NewTestSim(sim.WithGrid(8, 8), sim.WithWerf(1, 1), sim.WithWerf(6, 6))
	t.Cleanup(ts.Close)
	g := headlessGame(ts, 256, 256)
	g.cam.x, g.cam.y, g.cam.zoom = 64, 64, 2

	sx, sy := g.cam.worldToScreen(ts.TileCentreOf(6, 6))
	require.True(t, g.handlePickClick(int(sx), int(sy)))
	assert.Equal(t, sim.AgentID(1), g.focus)

	// Empty ground keeps the focus.
	sx, sy = g.cam.worldToScreen(ts.TileCentreOf(3, 5))
	assert.False(t, g.handlePickClick(int(sx), int(sy)))
	assert.Equal(t, sim.AgentID(1), g.focus)
}

func TestGame_HUDLines(t *testing.T) {
	ts := sim.NewTestSim(sim.WithGrid(8, 8), sim.WithWall(2, 0), sim.WithWerf(1, 1))
	t.Cleanup(ts.Close)
	g := headlessGame(ts, 256, 256)
	g.cam.x, g.cam.y, g.cam.zoom = 64, 64, 2

	sx, sy := g.cam.worldToScreen(ts.TileCentreOf(2, 0))
	lines := g.hudLines(int(sx), int(sy))
	assert.Contains(t, lines[1], "werfs: 1  focus: W0 idle")
	assert.Contains(t, lines[2], "(2,0) wall-top")

	g.paused = true
	g.setFlash("hello")
	lines = g.hudLines(-1, -1)
	assert.Contains(t, lines[0], "PAUSED")
	assert.Equal(t, "tile: -", lines[2])
	assert.Equal(t, "hello", lines[len(lines)-1])
}

func TestWerfDebugReport(t *testing.T) {
	ts := sim.NewTestSim(sim.WithGrid(10, 4), sim.WithWerf(0, 0), sim.WithWerf(0, 3))
	t.Cleanup(ts.Close)

	require.True(t, ts.CommandTile(0, 9, 0))
	ts.RunFrames(5)

	report := werfDebugReport(ts.Sim, 0, 120)
	assert.Contains(t, report, "--- werfs debug report ---")
	assert.Contains(t, report, "tick_range=[0..5]")
	assert.Contains(t, report, "grid=10x4 tile=16 werfs=2")
	assert.Contains(t, report, "== W0 ==")
	assert.Contains(t, report, "state: following")
	assert.Contains(t, report, "remaining:")
	assert.Contains(t, report, "(9,0)")
	assert.Contains(t, report, "nearest:\n  W1")
	assert.Contains(t, report, "summary: issued=1 unreachable=0")
	assert.Contains(t, report, "route_issued")
	assert.Contains(t, report, "== ALL WERFS ==")
	assert.Contains(t, report, "tick 5, 2 werfs")

	assert.Empty(t, werfDebugReport(ts.Sim, 7, 120), "unknown werf")
}

func TestNearestNeighbours(t *testing.T) {
	agents := []sim.Agent{
		{ID: 0, Pos: r2.Vec{}},
		{ID: 1, Pos: r2.Vec{X: 30}},
		{ID: 2, Pos: r2.Vec{X: 10}},
		{ID: 3, Pos: r2.Vec{Y: 10}},
	}
	got := nearestNeighbours(agents, &agents[0], 2)
	require.Len(t, got, 2)
	assert.Equal(t, sim.AgentID(2), got[0].id)
	assert.Equal(t, sim.AgentID(3), got[1].id)
	assert.Equal(t, 10.0, got[1].dist)
}

func TestSummarizeEvents(t *testing.T) {
	events := []sim.Event{
		{Key: sim.KeyRouteIssued},
		{Key: sim.KeyWaypoint},
		{Key: sim.KeyWaypoint},
		{Key: sim.KeyArrived},
		{Key: sim.KeyContact},
		{Key: sim.KeyRouteUnreachable},
	}
	got := summarizeEvents(events)
	assert.Equal(t, eventSummary{issued: 1, unreachable: 1, waypoints: 2, arrivals: 1, contacts: 1}, got)
}
