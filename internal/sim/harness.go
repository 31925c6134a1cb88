package sim

import (
	"fmt"
	"strings"

	"gonum.org/v1/gonum/spatial/r2"
)

// FixedDT is the frame time used by the headless harness: 60 frames per
// simulated second.
const FixedDT = 1.0 / 60

// TestSim is a headless simulation harness used by tests and the headless
// report. It wraps a Sim with deterministic construction and tile-based
// helpers.
type TestSim struct {
	*Sim

	width, height int
	walls         [][2]int
	rows          []string
	cfg           Config
	buildErr      error
}

// simOptionKind controls the pass in which an option is applied.
type simOptionKind int

const (
	simOptInfra simOptionKind = iota // grid, walls, config; applied first
	simOptWerf                       // werfs; applied once the Sim exists
)

// SimOption is a builder function applied to a TestSim during construction.
type SimOption struct {
	kind simOptionKind
	fn   func(*TestSim)
}

// WithGrid sets the level to a w×h field of ground.
func WithGrid(w, h int) SimOption {
	return SimOption{simOptInfra, func(ts *TestSim) {
		ts.width, ts.height = w, h
	}}
}

// WithWall blocks the tile at (cx, cy).
func WithWall(cx, cy int) SimOption {
	return SimOption{simOptInfra, func(ts *TestSim) {
		ts.walls = append(ts.walls, [2]int{cx, cy})
	}}
}

// WithLevel draws the level from ASCII rows: '#' is wall, anything else
// ground. It overrides WithGrid.
func WithLevel(rows ...string) SimOption {
	return SimOption{simOptInfra, func(ts *TestSim) {
		ts.rows = rows
	}}
}

// WithConfig edits the configuration before the Sim is built.
func WithConfig(edit func(*Config)) SimOption {
	return SimOption{simOptInfra, func(ts *TestSim) {
		edit(&ts.cfg)
	}}
}

// WithSeed sets the RNG seed for deterministic runs.
func WithSeed(seed int64) SimOption {
	return WithConfig(func(c *Config) { c.Seed = seed })
}

// WithVerbose enables per-frame event logging.
func WithVerbose(v bool) SimOption {
	return WithConfig(func(c *Config) { c.Verbose = v })
}

// WithWerf adds a resting werf at the centre of tile (cx, cy).
func WithWerf(cx, cy int) SimOption {
	return SimOption{simOptWerf, func(ts *TestSim) {
		idx, ok := ts.tiles.Index(cx, cy)
		if !ok {
			ts.buildErr = fmt.Errorf("werf at (%d,%d) outside %dx%d grid", cx, cy, ts.tiles.Width(), ts.tiles.Height())
			return
		}
		ts.Spawn(TileCentre(idx, ts.tiles.Width(), ts.cfg.TileSize), r2.Vec{}, 0)
	}}
}

// NewTestSim constructs a TestSim from the given options in ordered passes:
//  1. Infrastructure (grid, walls, config)
//  2. Build the Sim
//  3. Werfs
//
// It panics on an invalid setup; harness misuse is a bug in the caller.
func NewTestSim(opts ...SimOption) *TestSim {
	ts := &TestSim{
		width:  10,
		height: 10,
		cfg:    DefaultConfig(),
	}
	for _, o := range opts {
		if o.kind == simOptInfra {
			o.fn(ts)
		}
	}

	s, err := New(ts.cfg, ts.buildTiles())
	if err != nil {
		panic(fmt.Sprintf("test sim: %v", err))
	}
	ts.Sim = s

	for _, o := range opts {
		if o.kind == simOptWerf {
			o.fn(ts)
		}
	}
	if ts.buildErr != nil {
		panic(fmt.Sprintf("test sim: %v", ts.buildErr))
	}
	return ts
}

func (ts *TestSim) buildTiles() *Tiles {
	var t *Tiles
	if len(ts.rows) > 0 {
		w := len(ts.rows[0])
		kinds := make([]TileKind, 0, w*len(ts.rows))
		for _, row := range ts.rows {
			for x := 0; x < w; x++ {
				k := TileGround
				if x < len(row) && row[x] == '#' {
					k = TileWallTop
				}
				kinds = append(kinds, k)
			}
		}
		t = NewTiles(kinds, w)
	} else {
		t = NewGroundTiles(ts.width, ts.height)
	}
	for _, c := range ts.walls {
		t.SetSquare(c[0], c[1], 1, TileWallTop)
	}
	return t
}

// CommandTile orders werf id to the centre of tile (cx, cy).
func (ts *TestSim) CommandTile(id AgentID, cx, cy int) bool {
	return ts.Command(id, ts.TileCentreOf(cx, cy))
}

// TileCentreOf returns the world centre of tile (cx, cy). Cells outside the
// grid are extrapolated.
func (ts *TestSim) TileCentreOf(cx, cy int) r2.Vec {
	size := ts.cfg.TileSize
	return r2.Vec{X: (float64(cx) + 0.5) * size, Y: (float64(cy) + 0.5) * size}
}

// RunFrames advances the simulation n frames of FixedDT.
func (ts *TestSim) RunFrames(n int) {
	for i := 0; i < n; i++ {
		ts.Step(FixedDT)
	}
}

// RunUntil advances the simulation up to maxFrames, stopping early if
// predicate returns true. Returns the tick at which the predicate was
// satisfied, or -1.
func (ts *TestSim) RunUntil(predicate func(*TestSim) bool, maxFrames int) int {
	for i := 0; i < maxFrames; i++ {
		ts.Step(FixedDT)
		if predicate(ts) {
			return ts.ctx.Tick
		}
	}
	return -1
}

// AllIdle reports whether no werf is following a route.
func (ts *TestSim) AllIdle() bool {
	for _, a := range ts.Agents() {
		if _, ok := a.State.(Idle); !ok {
			return false
		}
	}
	return true
}

// WerfSnapshot is a lightweight copy of a werf at a tick.
type WerfSnapshot struct {
	ID        AgentID
	Label     string
	Pos       r2.Vec
	Vel       r2.Vec
	State     string
	Cursor    int
	RouteLen  int
	Contact   bool
	TileX     int
	TileY     int
	Remaining int
}

// SimSnapshot captures the state of every werf at one tick.
type SimSnapshot struct {
	Tick  int
	Werfs []WerfSnapshot
}

// Snapshot returns the current state of all werfs.
func (ts *TestSim) Snapshot() SimSnapshot {
	return TakeSnapshot(ts.Sim)
}

// TakeSnapshot copies the state of every werf in s.
func TakeSnapshot(s *Sim) SimSnapshot {
	snap := SimSnapshot{Tick: s.ctx.Tick}
	for _, a := range s.Agents() {
		ws := WerfSnapshot{
			ID:      a.ID,
			Label:   a.ID.Label(),
			Pos:     a.Pos,
			Vel:     a.Vel,
			State:   a.State.String(),
			Contact: a.Contact,
		}
		ws.TileX, ws.TileY = CellOf(a.Pos, s.cfg.TileSize)
		if f, ok := a.State.(*Following); ok {
			ws.Cursor = f.Cursor()
			ws.RouteLen = len(f.Route())
			ws.Remaining = f.Remaining()
		}
		snap.Werfs = append(snap.Werfs, ws)
	}
	return snap
}

// Format renders the snapshot as one line per werf.
func (s SimSnapshot) Format() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "tick %d, %d werfs\n", s.Tick, len(s.Werfs))
	for _, w := range s.Werfs {
		fmt.Fprintf(&sb, "  %-4s %-9s tile=(%d,%d) pos=(%.1f,%.1f) route=%d/%d",
			w.Label, w.State, w.TileX, w.TileY, w.Pos.X, w.Pos.Y, w.Cursor, w.RouteLen)
		if w.Contact {
			sb.WriteString(" contact")
		}
		sb.WriteByte('\n')
	}
	return sb.String()
}
