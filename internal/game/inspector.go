package game

import (
	"fmt"
	"image/color"
	"math"

	"github.com/Garsondee/werfs/internal/sim"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/vector"
	"gonum.org/v1/gonum/spatial/r2"
)

// Inspector panel, rendered into an offscreen buffer at 1x then blitted at inspScale.
const (
	inspScale = 2
	inspBufW  = 230
	inspBufH  = 120
	inspPad   = 4
	inspLineH = 13
	pickPx    = 16 // pick radius in screen pixels
)

// pickWerf returns the werf nearest to p within radius world units.
func pickWerf(agents []sim.Agent, p r2.Vec, radius float64) (sim.AgentID, bool) {
	limit := radius * radius
	best, hit, found := 0.0, sim.AgentID(0), false
	for i := range agents {
		// Squared distances against the squared radius; ties keep the lower ID.
		d := r2.Sub(agents[i].Pos, p)
		if d2 := r2.Dot(d, d); d2 <= limit && (!found || d2 < best) {
			best = d2
			hit, found = agents[i].ID, true
		}
	}
	return hit, found
}

// handlePickClick focuses the werf under screen pixel (mx, my), if any.
func (g *Game) handlePickClick(mx, my int) bool {
	if !g.cam.inViewport(mx, my) {
		return false
	}
	p := g.cam.screenToWorld(mx, my)
	id, ok := pickWerf(g.sim.Agents(), p, pickPx/g.cam.zoom)
	if ok {
		g.focus = id
	}
	return ok
}

// inspectorLines describes werf a for the inspector panel.
func inspectorLines(a *sim.Agent, tileSize float64) []string {
	cx, cy := sim.CellOf(a.Pos, tileSize)
	route := "-"
	if f, ok := a.State.(*sim.Following); ok {
		route = fmt.Sprintf("%d/%d (%d left)", f.Cursor(), len(f.Route()), f.Remaining())
	}
	contact := "no"
	if a.Contact {
		contact = "YES"
	}
	return []string{
		fmt.Sprintf("state: %s", a.State),
		fmt.Sprintf("route: %s", route),
		fmt.Sprintf("pos:   (%.1f,%.1f) tile (%d,%d)", a.Pos.X, a.Pos.Y, cx, cy),
		fmt.Sprintf("vel:   (%.2f,%.2f) |v|=%.2f", a.Vel.X, a.Vel.Y, math.Hypot(a.Vel.X, a.Vel.Y)),
		fmt.Sprintf("contact: %s  sprite %d/%d", contact, a.Sprite, a.Step),
	}
}

// drawInspector renders the focused werf's panel in the bottom-right of
// the viewport.
func (g *Game) drawInspector(screen *ebiten.Image) {
	a, ok := g.sim.Agent(g.focus)
	if !ok {
		return
	}

	buf := g.inspBuf
	buf.Clear()
	bw, bh := float32(inspBufW), float32(inspBufH)
	border := color.RGBA{R: 55, G: 70, B: 95, A: 255}
	vector.FillRect(buf, 0, 0, bw, bh, color.RGBA{R: 14, G: 16, B: 20, A: 230}, false)
	vector.StrokeRect(buf, 0, 0, bw, bh, 1.0, border, false)

	lx, ly := inspPad, inspPad
	ebitenutil.DebugPrintAt(buf, fmt.Sprintf("[ %s ]", a.ID.Label()), lx, ly)
	ly += inspLineH + 2
	vector.StrokeLine(buf, float32(lx), float32(ly), bw-inspPad, float32(ly), 1.0, border, false)
	ly += 4
	for _, line := range inspectorLines(a, g.sim.Config().TileSize) {
		ebitenutil.DebugPrintAt(buf, line, lx, ly)
		ly += inspLineH
	}

	px := g.offX + g.vpW - inspBufW*inspScale - 8
	py := g.offY + g.vpH - inspBufH*inspScale - 8
	opts := &ebiten.DrawImageOptions{}
	opts.GeoM.Scale(inspScale, inspScale)
	opts.GeoM.Translate(float64(px), float64(py))
	screen.DrawImage(buf, opts)
}
