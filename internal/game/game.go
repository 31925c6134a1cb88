// Package game is the ebiten frontend: it steps a simulation at a fixed
// rate, draws it through a pan-and-zoom camera and turns mouse clicks into
// move commands.
package game

import (
	"fmt"
	"image"
	"image/color"
	"log"
	"math"

	"github.com/Garsondee/werfs/internal/sim"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/hajimehoshi/ebiten/v2/text/v2"
	"github.com/hajimehoshi/ebiten/v2/vector"
	"golang.org/x/image/font/basicfont"
)

// borderWidth is the pixel gap between the window edge and the viewport.
const borderWidth = 24

// hudScale is the integer upscale factor applied to HUD text.
const hudScale = 2

// flashTicks is how long a HUD status message stays up.
const flashTicks = 120

var hudFace = text.NewGoXFace(basicfont.Face7x13)

var tileColors = map[sim.TileKind]color.RGBA{
	sim.TileGround:          {R: 58, G: 74, B: 52, A: 255},
	sim.TileGroundPebbles:   {R: 66, G: 78, B: 58, A: 255},
	sim.TileGroundMoss:      {R: 48, G: 82, B: 48, A: 255},
	sim.TileWallTop:         {R: 92, G: 88, B: 84, A: 255},
	sim.TileWallTopCracked:  {R: 84, G: 80, B: 76, A: 255},
	sim.TileWallTopMoss:     {R: 76, G: 92, B: 72, A: 255},
	sim.TileWallSide:        {R: 64, G: 58, B: 56, A: 255},
	sim.TileWallSideCracked: {R: 58, G: 52, B: 50, A: 255},
	sim.TileWallSideMoss:    {R: 54, G: 66, B: 52, A: 255},
	sim.TileMarked:          {R: 120, G: 110, B: 50, A: 255},
}

var spriteColors = []color.RGBA{
	{R: 230, G: 200, B: 120, A: 255},
	{R: 150, G: 200, B: 240, A: 255},
	{R: 220, G: 150, B: 210, A: 255},
	{R: 170, G: 230, B: 160, A: 255},
}

var (
	colorRing    = color.RGBA{R: 255, G: 255, B: 255, A: 70}
	colorContact = color.RGBA{R: 255, G: 60, B: 50, A: 230}
	colorRoute   = color.RGBA{R: 255, G: 220, B: 80, A: 200}
	colorFocus   = color.RGBA{R: 90, G: 220, B: 255, A: 255}
)

// Game implements ebiten.Game over a simulation.
type Game struct {
	sim *sim.Sim

	width  int // window
	height int
	vpW    int // world viewport
	vpH    int
	offX   int // viewport origin on screen
	offY   int
	worldW float64 // level size in world units
	worldH float64

	cam   camera
	focus sim.AgentID
	panel *EventPanel

	paused    bool
	simSpeed  float64 // steps per displayed frame: 0.5, 1, 2, 4
	tickAccum float64

	showHUD bool
	flash   string
	flashAt int

	// worldBuf holds the whole level; the camera transform is applied on blit.
	worldBuf *ebiten.Image
	// hudBuf is drawn at 1x then scaled by hudScale.
	hudBuf  *ebiten.Image
	inspBuf *ebiten.Image
}

// New returns a frontend for s with a vpW×vpH world viewport.
func New(s *sim.Sim, vpW, vpH int) *Game {
	tiles := s.Tiles()
	size := s.Config().TileSize
	worldW := float64(tiles.Width()) * size
	worldH := float64(tiles.Height()) * size

	g := &Game{
		sim:      s,
		width:    borderWidth + vpW + borderWidth + logPanelWidth,
		height:   borderWidth + vpH + borderWidth,
		vpW:      vpW,
		vpH:      vpH,
		offX:     borderWidth,
		offY:     borderWidth,
		worldW:   worldW,
		worldH:   worldH,
		panel:    NewEventPanel(),
		simSpeed: 1,
		showHUD:  true,
	}
	g.cam = newCamera(worldW, worldH, float64(vpW), float64(vpH), float64(g.offX), float64(g.offY))
	g.worldBuf = ebiten.NewImage(int(math.Ceil(worldW)), int(math.Ceil(worldH)))
	g.hudBuf = ebiten.NewImage(g.width/hudScale, g.height/hudScale)
	g.inspBuf = ebiten.NewImage(inspBufW, inspBufH)
	return g
}

// Size returns the window size Layout reports.
func (g *Game) Size() (int, int) { return g.width, g.height }

func (g *Game) Update() error {
	if inpututil.IsKeyJustPressed(ebiten.KeyEscape) {
		return ebiten.Termination
	}
	g.handleInput()
	g.cam.update(g.worldW, g.worldH)

	if !g.paused {
		g.tickAccum += g.simSpeed
		for g.tickAccum >= 1.0 {
			g.tickAccum -= 1.0
			g.sim.Step(sim.FixedDT)
		}
	}
	g.panel.Sync(g.sim.Log())
	return nil
}

func (g *Game) setFlash(msg string) {
	g.flash = msg
	g.flashAt = g.sim.Context().Tick
}

func (g *Game) handleInput() {
	// Pan: arrows or IJKL accelerate the camera.
	if ebiten.IsKeyPressed(ebiten.KeyArrowUp) || ebiten.IsKeyPressed(ebiten.KeyI) {
		g.cam.push(0, -1)
	}
	if ebiten.IsKeyPressed(ebiten.KeyArrowDown) || ebiten.IsKeyPressed(ebiten.KeyK) {
		g.cam.push(0, 1)
	}
	if ebiten.IsKeyPressed(ebiten.KeyArrowLeft) || ebiten.IsKeyPressed(ebiten.KeyJ) {
		g.cam.push(-1, 0)
	}
	if ebiten.IsKeyPressed(ebiten.KeyArrowRight) || ebiten.IsKeyPressed(ebiten.KeyL) {
		g.cam.push(1, 0)
	}

	_, wy := ebiten.Wheel()
	g.cam.zoomBy(wy)
	if inpututil.IsKeyJustPressed(ebiten.KeyEqual) {
		g.cam.zoomBy(2)
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyMinus) {
		g.cam.zoomBy(-2)
	}

	if inpututil.IsKeyJustPressed(ebiten.KeyTab) {
		if n := g.sim.Registry().Len(); n > 0 {
			g.focus = (g.focus + 1) % sim.AgentID(n)
		}
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyH) {
		g.showHUD = !g.showHUD
	}

	// Sim speed: P pauses, comma and period step through the speeds.
	speeds := []float64{0.5, 1, 2, 4}
	if inpututil.IsKeyJustPressed(ebiten.KeyP) {
		g.paused = !g.paused
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyComma) {
		for i := len(speeds) - 1; i >= 0; i-- {
			if speeds[i] < g.simSpeed {
				g.simSpeed = speeds[i]
				break
			}
		}
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyPeriod) {
		for _, sp := range speeds {
			if sp > g.simSpeed {
				g.simSpeed = sp
				break
			}
		}
	}

	if inpututil.IsKeyJustPressed(ebiten.KeyC) {
		if err := g.copyReport(); err != nil {
			log.Printf("game: %v", err)
			g.setFlash("copy failed")
		} else {
			g.setFlash("report copied to clipboard")
		}
	}

	mx, my := ebiten.CursorPosition()
	if inpututil.IsMouseButtonJustPressed(ebiten.MouseButtonLeft) {
		g.handleCommandClick(mx, my)
	}
	if inpututil.IsMouseButtonJustPressed(ebiten.MouseButtonRight) {
		g.handlePickClick(mx, my)
	}
}

// handleCommandClick sends the focused werf to the clicked point, clamped
// onto the level.
func (g *Game) handleCommandClick(mx, my int) bool {
	if !g.cam.inViewport(mx, my) {
		return false
	}
	if _, ok := g.sim.Agent(g.focus); !ok {
		return false
	}
	target := g.sim.ClampToGrid(g.cam.screenToWorld(mx, my))
	g.sim.Enqueue(sim.Command{Agent: g.focus, Target: target})
	return true
}

func (g *Game) Draw(screen *ebiten.Image) {
	screen.Fill(color.RGBA{R: 12, G: 13, B: 16, A: 255})

	g.worldBuf.Clear()
	g.drawWorld(g.worldBuf)

	// The world buffer may extend past the viewport; clip with a sub-image.
	vp := screen.SubImage(image.Rect(g.offX, g.offY, g.offX+g.vpW, g.offY+g.vpH)).(*ebiten.Image)
	var blit ebiten.DrawImageOptions
	blit.GeoM = g.cam.geoM()
	vp.DrawImage(g.worldBuf, &blit)

	ox, oy := float32(g.offX), float32(g.offY)
	vw, vh := float32(g.vpW), float32(g.vpH)
	vector.StrokeRect(screen, ox-1, oy-1, vw+2, vh+2, 2.0, color.RGBA{R: 65, G: 80, B: 100, A: 255}, false)

	g.panel.Draw(screen, g.offX+g.vpW+g.offX, g.height)
	if g.showHUD {
		g.drawHUD(screen)
	}
	if g.cam.zoom != 1.0 {
		ebitenutil.DebugPrintAt(screen, fmt.Sprintf("zoom: %.1fx", g.cam.zoom), g.offX+6, g.offY+6)
	}
	g.drawInspector(screen)
}

// drawWorld draws tiles, the focused route and every werf in world units.
func (g *Game) drawWorld(dst *ebiten.Image) {
	tiles := g.sim.Tiles()
	cfg := g.sim.Config()
	size := float32(cfg.TileSize)
	w := tiles.Width()

	for i := 0; i < tiles.Len(); i++ {
		c, ok := tileColors[tiles.At(i)]
		if !ok {
			c = tileColors[sim.TileGround]
		}
		x, y := float32(i%w)*size, float32(i/w)*size
		vector.FillRect(dst, x, y, size, size, c, false)
		if tiles.At(i) == sim.TileWallSide || tiles.At(i) == sim.TileWallSideCracked || tiles.At(i) == sim.TileWallSideMoss {
			// Darker lip where the face meets the floor.
			vector.FillRect(dst, x, y+size-2, size, 2, color.RGBA{R: 30, G: 28, B: 26, A: 255}, false)
		}
	}

	g.drawRoute(dst)

	bodyR := float32(cfg.TileSize * 0.3)
	ringR := float32(cfg.CollisionRadius)
	for _, a := range g.sim.Agents() {
		x, y := float32(a.Pos.X), float32(a.Pos.Y)
		body := spriteColors[int(a.Sprite)%len(spriteColors)]
		// Walk frames bob the body by one unit.
		vector.FillCircle(dst, x, y-float32(a.Step), bodyR, body, true)
		if ringR > 0 {
			ring := colorRing
			if a.Contact {
				ring = colorContact
			}
			vector.StrokeCircle(dst, x, y, ringR, 1, ring, true)
		}
		if a.ID == g.focus {
			vector.StrokeCircle(dst, x, y, bodyR+2, 1.5, colorFocus, true)
		}
	}
}

func (g *Game) drawRoute(dst *ebiten.Image) {
	a, ok := g.sim.Agent(g.focus)
	if !ok {
		return
	}
	f, ok := a.State.(*sim.Following)
	if !ok {
		return
	}
	size := g.sim.Config().TileSize
	w := g.sim.Tiles().Width()
	prev := a.Pos
	for _, idx := range f.Route()[f.Cursor():] {
		c := sim.TileCentre(idx, w, size)
		vector.StrokeLine(dst, float32(prev.X), float32(prev.Y), float32(c.X), float32(c.Y), 1, colorRoute, true)
		vector.FillRect(dst, float32(c.X)-1.5, float32(c.Y)-1.5, 3, 3, colorRoute, false)
		prev = c
	}
}

// hudLines returns the HUD text for the current frame.
func (g *Game) hudLines(mx, my int) []string {
	ctx := g.sim.Context()
	speed := fmt.Sprintf("%gx", g.simSpeed)
	if g.paused {
		speed = "PAUSED"
	}
	mouse := "-"
	if g.cam.inViewport(mx, my) {
		if idx, ok := g.sim.TileAt(g.cam.screenToWorld(mx, my)); ok {
			cx, cy := g.sim.Tiles().Cell(idx)
			mouse = fmt.Sprintf("(%d,%d) %s", cx, cy, g.sim.Tiles().At(idx))
		}
	}
	focus := "none"
	if a, ok := g.sim.Agent(g.focus); ok {
		focus = fmt.Sprintf("%s %s", a.ID.Label(), a.State)
	}

	lines := []string{
		fmt.Sprintf("T=%d  %.1fs  SIM %s", ctx.Tick, ctx.Elapsed, speed),
		fmt.Sprintf("werfs: %d  focus: %s", g.sim.Registry().Len(), focus),
		fmt.Sprintf("tile: %s", mouse),
		"LMB=move  RMB=pick  Tab=next",
		"arrows/IJKL=pan  wheel=zoom",
		"P=pause  ,/.=speed  C=copy  H=hud",
	}
	if g.flash != "" && ctx.Tick-g.flashAt < flashTicks {
		lines = append(lines, g.flash)
	}
	return lines
}

// drawHUD renders status and key hints in the bottom-left corner.
func (g *Game) drawHUD(screen *ebiten.Image) {
	lines := g.hudLines(ebiten.CursorPosition())

	const lineH = 13
	const charW = 7
	const padX, padY = 5, 4

	maxLen := 0
	for _, l := range lines {
		maxLen = max(maxLen, len(l))
	}
	boxW := float32(maxLen*charW + padX*2)
	boxH := float32(len(lines)*lineH + padY*2)
	bx := float32(g.offX/hudScale + 4)
	by := float32((g.offY+g.vpH)/hudScale) - boxH - 4

	g.hudBuf.Clear()
	vector.FillRect(g.hudBuf, bx, by, boxW, boxH, color.RGBA{R: 6, G: 8, B: 12, A: 210}, false)
	vector.StrokeRect(g.hudBuf, bx, by, boxW, boxH, 1.0, color.RGBA{R: 60, G: 80, B: 110, A: 180}, false)

	for i, line := range lines {
		op := &text.DrawOptions{}
		op.GeoM.Translate(float64(bx)+padX, float64(by)+padY+float64(i*lineH))
		op.ColorScale.ScaleWithColor(color.RGBA{R: 210, G: 220, B: 230, A: 255})
		text.Draw(g.hudBuf, line, hudFace, op)
	}

	opts := &ebiten.DrawImageOptions{}
	opts.GeoM.Scale(hudScale, hudScale)
	screen.DrawImage(g.hudBuf, opts)
}

func (g *Game) Layout(_, _ int) (int, int) {
	return g.width, g.height
}
