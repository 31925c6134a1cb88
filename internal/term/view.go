// Package term renders a simulation in a terminal, one cell per tile.
package term

import (
	"fmt"

	"github.com/Garsondee/werfs/internal/sim"
	"github.com/gdamore/tcell/v2"
)

const (
	glyphWall   = '#'
	glyphGround = '.'
	glyphRoute  = ':'
	glyphFocus  = '@'
)

// agentGlyphs picks a werf's glyph by sprite.
var agentGlyphs = []rune{'o', 'w', 'm', 'u'}

var (
	styleWall    = tcell.StyleDefault.Foreground(tcell.ColorGray).Background(tcell.ColorDarkSlateGray)
	styleGround  = tcell.StyleDefault.Foreground(tcell.ColorDarkOliveGreen)
	styleRoute   = tcell.StyleDefault.Foreground(tcell.ColorYellow)
	styleAgent   = tcell.StyleDefault.Foreground(tcell.ColorWhite).Bold(true)
	styleContact = tcell.StyleDefault.Foreground(tcell.ColorRed).Bold(true)
	styleFocus   = tcell.StyleDefault.Foreground(tcell.ColorAqua).Bold(true)
	styleStatus  = tcell.StyleDefault.Foreground(tcell.ColorBlack).Background(tcell.ColorSilver)
)

// View draws a Sim onto a tcell screen and turns terminal input into
// commands for the focused werf. It must be used from the goroutine that
// steps the simulation.
type View struct {
	screen tcell.Screen
	sim    *sim.Sim
	focus  sim.AgentID
}

// NewView returns a view of s focused on the first werf.
func NewView(screen tcell.Screen, s *sim.Sim) *View {
	return &View{screen: screen, sim: s}
}

// Focus returns the werf that clicks command.
func (v *View) Focus() sim.AgentID { return v.focus }

// CycleFocus moves focus to the next werf, wrapping around.
func (v *View) CycleFocus() {
	n := v.sim.Registry().Len()
	if n == 0 {
		return
	}
	v.focus = (v.focus + 1) % sim.AgentID(n)
}

// Click orders the focused werf to the centre of the tile under terminal
// cell (x, y). The command runs at the start of the next frame. It reports
// false when the cell is outside the level.
func (v *View) Click(x, y int) bool {
	tiles := v.sim.Tiles()
	idx, ok := tiles.Index(x, y)
	if !ok {
		return false
	}
	v.sim.Enqueue(sim.Command{
		Agent:  v.focus,
		Target: sim.TileCentre(idx, tiles.Width(), v.sim.Config().TileSize),
	})
	return true
}

// HandleEvent applies one terminal event. It returns false when the user
// asked to quit.
func (v *View) HandleEvent(ev tcell.Event) bool {
	switch ev := ev.(type) {
	case *tcell.EventKey:
		switch {
		case ev.Key() == tcell.KeyEscape, ev.Key() == tcell.KeyCtrlC:
			return false
		case ev.Key() == tcell.KeyRune && ev.Rune() == 'q':
			return false
		case ev.Key() == tcell.KeyTab:
			v.CycleFocus()
		}

	case *tcell.EventMouse:
		if ev.Buttons()&tcell.Button1 != 0 {
			x, y := ev.Position()
			v.Click(x, y)
		}

	case *tcell.EventResize:
		v.screen.Sync()
	}
	return true
}

// Draw renders the level, the focused werf's remaining route, every werf
// and a status line below the level.
func (v *View) Draw() {
	v.screen.Clear()
	tiles := v.sim.Tiles()
	w := tiles.Width()

	for i := 0; i < tiles.Len(); i++ {
		x, y := i%w, i/w
		if tiles.IsBlocked(i) {
			v.screen.SetContent(x, y, glyphWall, nil, styleWall)
		} else {
			v.screen.SetContent(x, y, glyphGround, nil, styleGround)
		}
	}

	if a, ok := v.sim.Agent(v.focus); ok {
		if f, ok := a.State.(*sim.Following); ok {
			for _, idx := range f.Route()[f.Cursor():] {
				v.screen.SetContent(idx%w, idx/w, glyphRoute, nil, styleRoute)
			}
		}
	}

	size := v.sim.Config().TileSize
	for _, a := range v.sim.Agents() {
		cx, cy := sim.CellOf(a.Pos, size)
		if _, ok := tiles.Index(cx, cy); !ok {
			continue
		}
		glyph, style := agentGlyphs[int(a.Sprite)%len(agentGlyphs)], styleAgent
		if a.Contact {
			style = styleContact
		}
		if a.ID == v.focus {
			glyph, style = glyphFocus, styleFocus
		}
		v.screen.SetContent(cx, cy, glyph, nil, style)
	}

	v.drawStatus(tiles.Height())
	v.screen.Show()
}

func (v *View) drawStatus(row int) {
	ctx := v.sim.Context()
	focus := "no werfs"
	if a, ok := v.sim.Agent(v.focus); ok {
		focus = fmt.Sprintf("%s %s", a.ID.Label(), a.State)
		if f, ok := a.State.(*sim.Following); ok {
			focus += fmt.Sprintf(" %d/%d", f.Cursor(), len(f.Route()))
		}
	}
	line := fmt.Sprintf(" %s | %d werfs | tick %d | tab focus, click move, q quit ",
		focus, v.sim.Registry().Len(), ctx.Tick)
	for x, r := range []rune(line) {
		v.screen.SetContent(x, row, r, nil, styleStatus)
	}
}
