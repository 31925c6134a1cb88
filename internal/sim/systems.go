package sim

import (
	"fmt"

	"gonum.org/v1/gonum/spatial/r2"
)

// Integrate moves every werf by its velocity, then decays the velocity.
// Velocities slower than the rest cutoff snap to zero.
func Integrate(ctx *Context, reg *Registry, cfg Config) {
	agents := reg.Agents()
	for i := range agents {
		a := &agents[i]
		a.Pos = r2.Add(a.Pos, a.Vel)

		if r2.Norm2(a.Vel) < cfg.RestSpeedSq {
			a.Vel = r2.Vec{}
		} else {
			a.Vel = r2.Scale(cfg.VelocityDecay, a.Vel)
		}

		ctx.Log.AddVerbose(ctx.Tick, a.ID.Label(), CatMove, KeyPosition,
			fmt.Sprintf("(%.1f,%.1f)", a.Pos.X, a.Pos.Y), 0)
	}
}

// AdvanceStates runs the movement state machine for every werf against its
// current (collision-resolved) position.
func AdvanceStates(ctx *Context, reg *Registry, width int, cfg Config) {
	params := cfg.MoveParams(width)
	agents := reg.Agents()
	for i := range agents {
		a := &agents[i]
		f, following := a.State.(*Following)
		if !following {
			continue
		}
		before := f.Cursor()
		a.State = Advance(a.State, params, a.Pos, &a.Vel, ctx.DT)

		_, arrived := a.State.(Idle)
		switch {
		case arrived:
			ctx.Log.Add(ctx.Tick, a.ID.Label(), CatMove, KeyArrived,
				fmt.Sprintf("at (%.1f,%.1f) after %d waypoints", a.Pos.X, a.Pos.Y, len(f.Route())),
				float64(len(f.Route())))
		case f.Cursor() > before:
			ctx.Log.Add(ctx.Tick, a.ID.Label(), CatMove, KeyWaypoint,
				fmt.Sprintf("%d/%d", f.Cursor(), len(f.Route())), float64(f.Cursor()))
		}
	}
}

// Animate toggles the two-frame walk cycle of moving werfs every
// AnimInterval seconds of simulated time; resting werfs show frame 0.
func Animate(ctx *Context, reg *Registry, cfg Config) {
	if !ctx.animDue(cfg.AnimInterval) {
		return
	}
	agents := reg.Agents()
	for i := range agents {
		a := &agents[i]
		if r2.Norm2(a.Vel) > cfg.AnimSpeedSq {
			a.Step = (a.Step + 1) % 2
		} else {
			a.Step = 0
		}
	}
}
