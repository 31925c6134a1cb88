package game

import (
	"math"

	"github.com/hajimehoshi/ebiten/v2"
	"gonum.org/v1/gonum/spatial/r2"
)

const (
	zoomMin   = 0.5
	zoomMax   = 4.0
	zoomStep  = 1.12 // per wheel notch
	panAccel  = 1.5  // screen pixels per frame gained while a pan key is held
	panDecay  = 0.85 // per-frame pan velocity multiplier
	panRestSq = 0.01
)

// camera maps world space onto the viewport:
//
//	screen = (world - centre) * zoom + viewport/2 + offset
type camera struct {
	x, y   float64 // world-space centre
	vx, vy float64 // pan velocity, screen pixels per frame
	zoom   float64

	vpW, vpH   float64 // viewport size in screen pixels
	offX, offY float64 // viewport origin on screen
}

func newCamera(worldW, worldH, vpW, vpH, offX, offY float64) camera {
	c := camera{
		x:    worldW / 2,
		y:    worldH / 2,
		zoom: 1,
		vpW:  vpW,
		vpH:  vpH,
		offX: offX,
		offY: offY,
	}
	// Start zoomed out far enough to see the whole level, within limits.
	fit := math.Min(vpW/worldW, vpH/worldH)
	c.zoom = math.Max(zoomMin, math.Min(zoomMax, math.Floor(fit*4)/4))
	return c
}

// push accelerates the pan in screen-space direction (dx, dy).
func (c *camera) push(dx, dy float64) {
	c.vx += dx * panAccel
	c.vy += dy * panAccel
}

// zoomBy applies wheel notches, keeping the zoom inside its limits.
func (c *camera) zoomBy(notches float64) {
	if notches == 0 {
		return
	}
	c.zoom = math.Max(zoomMin, math.Min(zoomMax, c.zoom*math.Pow(zoomStep, notches)))
}

// update moves the camera by its velocity, decays the velocity and keeps
// the view over the world.
func (c *camera) update(worldW, worldH float64) {
	c.x += c.vx / c.zoom
	c.y += c.vy / c.zoom
	c.vx *= panDecay
	c.vy *= panDecay
	if c.vx*c.vx+c.vy*c.vy < panRestSq {
		c.vx, c.vy = 0, 0
	}
	c.x = clampAxis(c.x, worldW, c.vpW/2/c.zoom)
	c.y = clampAxis(c.y, worldH, c.vpH/2/c.zoom)
}

// clampAxis keeps a camera centre at least half a view from either world
// edge, or centres it when the view is larger than the world.
func clampAxis(v, world, half float64) float64 {
	if 2*half >= world {
		return world / 2
	}
	return math.Max(half, math.Min(world-half, v))
}

func (c camera) geoM() ebiten.GeoM {
	var m ebiten.GeoM
	m.Translate(-c.x, -c.y)
	m.Scale(c.zoom, c.zoom)
	m.Translate(c.vpW/2+c.offX, c.vpH/2+c.offY)
	return m
}

func (c camera) worldToScreen(p r2.Vec) (float64, float64) {
	return (p.X-c.x)*c.zoom + c.vpW/2 + c.offX,
		(p.Y-c.y)*c.zoom + c.vpH/2 + c.offY
}

func (c camera) screenToWorld(mx, my int) r2.Vec {
	return r2.Vec{
		X: (float64(mx)-c.offX-c.vpW/2)/c.zoom + c.x,
		Y: (float64(my)-c.offY-c.vpH/2)/c.zoom + c.y,
	}
}

// inViewport reports whether screen pixel (mx, my) is over the world view.
func (c camera) inViewport(mx, my int) bool {
	x, y := float64(mx)-c.offX, float64(my)-c.offY
	return x >= 0 && y >= 0 && x < c.vpW && y < c.vpH
}
