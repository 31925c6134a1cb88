package term

import (
	"strings"
	"testing"

	"github.com/Garsondee/werfs/internal/sim"
	"github.com/gdamore/tcell/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestView(t *testing.T, ts *sim.TestSim) (*View, tcell.SimulationScreen) {
	t.Helper()
	screen := tcell.NewSimulationScreen("UTF-8")
	require.NoError(t, screen.Init())
	screen.SetSize(40, 20)
	t.Cleanup(screen.Fini)
	return NewView(screen, ts.Sim), screen
}

func cell(screen tcell.SimulationScreen, x, y int) rune {
	r, _, _, _ := screen.GetContent(x, y)
	return r
}

func rowText(screen tcell.SimulationScreen, y, width int) string {
	var sb strings.Builder
	for x := 0; x < width; x++ {
		sb.WriteRune(cell(screen, x, y))
	}
	return sb.String()
}

func TestView_DrawsLevelAndWerfs(t *testing.T) {
	ts := sim.NewTestSim(
		sim.WithLevel(
			"#####",
			"#...#",
			"#...#",
			"#####",
		),
		sim.WithWerf(1, 1),
		sim.WithWerf(3, 2),
	)
	t.Cleanup(ts.Close)
	v, screen := newTestView(t, ts)

	v.Draw()
	assert.Equal(t, glyphWall, cell(screen, 0, 0))
	assert.Equal(t, glyphGround, cell(screen, 2, 1))
	assert.Equal(t, glyphFocus, cell(screen, 1, 1), "focused werf")
	assert.Equal(t, agentGlyphs[0], cell(screen, 3, 2))
	assert.Contains(t, rowText(screen, 4, 40), "W0 idle")
	assert.Contains(t, rowText(screen, 4, 40), "2 werfs")
}

func TestView_DrawsFocusedRoute(t *testing.T) {
	ts := sim.NewTestSim(sim.WithGrid(6, 2), sim.WithWerf(0, 0))
	t.Cleanup(ts.Close)
	v, screen := newTestView(t, ts)

	require.True(t, ts.CommandTile(0, 5, 0))
	v.Draw()
	assert.Equal(t, glyphFocus, cell(screen, 0, 0))
	for x := 1; x <= 5; x++ {
		assert.Equal(t, glyphRoute, cell(screen, x, 0), "x=%d", x)
	}
	assert.Equal(t, glyphGround, cell(screen, 1, 1))
	assert.Contains(t, rowText(screen, 2, 40), "W0 following 0/6")
}

func TestView_ClickCommandsFocusedWerf(t *testing.T) {
	ts := sim.NewTestSim(sim.WithGrid(8, 8), sim.WithWerf(0, 0), sim.WithWerf(7, 7))
	t.Cleanup(ts.Close)
	v, _ := newTestView(t, ts)

	v.CycleFocus()
	require.Equal(t, sim.AgentID(1), v.Focus())
	assert.False(t, v.Click(20, 3), "outside the level")
	require.True(t, v.Click(7, 0))

	ts.Step(sim.FixedDT)
	a0, _ := ts.Agent(0)
	a1, _ := ts.Agent(1)
	assert.Equal(t, sim.Idle{}, a0.State)
	require.IsType(t, &sim.Following{}, a1.State)
	route := a1.State.(*sim.Following).Route()
	goal, _ := ts.Tiles().Index(7, 0)
	assert.Equal(t, goal, route[len(route)-1])
}

func TestView_FocusWraps(t *testing.T) {
	ts := sim.NewTestSim(sim.WithGrid(4, 4), sim.WithWerf(0, 0), sim.WithWerf(1, 0), sim.WithWerf(2, 0))
	t.Cleanup(ts.Close)
	v, _ := newTestView(t, ts)

	for i := 0; i < 3; i++ {
		v.CycleFocus()
	}
	assert.Equal(t, sim.AgentID(0), v.Focus())
}

func TestView_QuitKeys(t *testing.T) {
	ts := sim.NewTestSim(sim.WithGrid(4, 4), sim.WithWerf(0, 0), sim.WithWerf(1, 0))
	t.Cleanup(ts.Close)
	v, _ := newTestView(t, ts)

	assert.True(t, v.HandleEvent(tcell.NewEventKey(tcell.KeyTab, 0, tcell.ModNone)))
	assert.Equal(t, sim.AgentID(1), v.Focus())
	assert.False(t, v.HandleEvent(tcell.NewEventKey(tcell.KeyEscape, 0, tcell.ModNone)))
	assert.False(t, v.HandleEvent(tcell.NewEventKey(tcell.KeyRune, 'q', tcell.ModNone)))
	assert.True(t, v.HandleEvent(tcell.NewEventKey(tcell.KeyRune, 'x', tcell.ModNone)))
}

func TestView_MouseClick(t *testing.T) {
	ts := sim.NewTestSim(sim.WithGrid(4, 4), sim.WithWerf(0, 0))
	t.Cleanup(ts.Close)
	v, _ := newTestView(t, ts)

	require.True(t, v.HandleEvent(tcell.NewEventMouse(3, 3, tcell.Button1, tcell.ModNone)))
	ts.Step(sim.FixedDT)
	a, _ := ts.Agent(0)
	assert.IsType(t, &sim.Following{}, a.State)
}
