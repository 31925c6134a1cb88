package sim

import (
	"gonum.org/v1/gonum/spatial/r2"
)

// MoveState is a werf's movement state: Idle or *Following. The route and
// cursor only exist in the Following case.
type MoveState interface {
	isMoveState()
	String() string
}

// Idle contributes no motion.
type Idle struct{}

func (Idle) isMoveState() {}
func (Idle) String() string { return "idle" }

// Following walks a route one waypoint at a time.
type Following struct {
	route  Route
	cursor int // next unreached waypoint; never decreases, never exceeds len(route)
}

// NewFollowing starts a route at its first waypoint.
func NewFollowing(route Route) *Following {
	return &Following{route: route}
}

func (*Following) isMoveState() {}
func (*Following) String() string { return "following" }

// Route returns the route being followed. Callers must not modify it.
func (f *Following) Route() Route { return f.route }

// Cursor returns the index of the next unreached waypoint.
func (f *Following) Cursor() int { return f.cursor }

// Remaining returns the number of unreached waypoints.
func (f *Following) Remaining() int { return len(f.route) - f.cursor }

// MoveParams are the constants the state machine needs each frame.
type MoveParams struct {
	Width     int     // grid width in tiles
	TileSize  float64 // world units per tile
	Threshold float64 // squared distance at which a waypoint counts as reached
	Impulse   float64 // velocity added per second of frame time
}

// Advance runs one frame of the state machine for a werf at pos and returns
// the state to keep. Following adds a unit impulse scaled by dt toward the
// next waypoint to vel; Idle leaves vel untouched.
func Advance(s MoveState, p MoveParams, pos r2.Vec, vel *r2.Vec, dt float64) MoveState {
	f, ok := s.(*Following)
	if !ok {
		return s
	}
	if f.step(p, pos, vel, dt) {
		return Idle{}
	}
	return f
}

// step reports true once the route is exhausted.
func (f *Following) step(p MoveParams, pos r2.Vec, vel *r2.Vec, dt float64) bool {
	if f.cursor >= len(f.route) {
		return true
	}

	dir := r2.Sub(TileCentre(f.route[f.cursor], p.Width, p.TileSize), pos)
	if r2.Norm2(dir) < p.Threshold {
		f.cursor++
		if f.cursor >= len(f.route) {
			return true
		}
		// Steer at the new waypoint now instead of keeping the old heading for one more frame.
		dir = r2.Sub(TileCentre(f.route[f.cursor], p.Width, p.TileSize), pos)
	}

	if l := r2.Norm(dir); l > 0 {
		*vel = r2.Add(*vel, r2.Scale(p.Impulse*dt/l, dir))
	}
	return false
}
