package sim

import (
	"fmt"
	"sync"

	"github.com/zyedidia/generic/queue"
	"gonum.org/v1/gonum/spatial/r2"
)

// plannerBacklog bounds queued asynchronous route searches.
const plannerBacklog = 64

// Command asks a werf to walk to a world position.
type Command struct {
	Agent  AgentID
	Target r2.Vec
}

// Sim owns the level, the werfs and the per-frame systems. All methods
// except Enqueue must be called from one goroutine.
type Sim struct {
	cfg      Config
	tiles    *Tiles
	reg      *Registry
	ctx      *Context
	collider *Collider
	planner  *Planner // nil unless cfg.AsyncPlanning

	// latest command sequence per werf; older async results are stale
	seq     map[AgentID]uint64
	results []PlanResult

	cmdMu sync.Mutex
	cmds  *queue.Queue[Command]
}

// New validates cfg and builds a simulation over tiles.
func New(cfg Config, tiles *Tiles) (*Sim, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if tiles == nil || tiles.Len() == 0 {
		return nil, ErrEmptyLevel
	}
	s := &Sim{
		cfg:      cfg,
		tiles:    tiles,
		reg:      NewRegistry(16),
		ctx:      NewContext(cfg.Seed, NewEventLog(cfg.Verbose, cfg.LogCapacity)),
		collider: NewCollider(16),
		seq:      make(map[AgentID]uint64),
		cmds:     queue.New[Command](),
	}
	if cfg.AsyncPlanning {
		s.planner = NewPlanner(tiles, plannerBacklog)
	}
	return s, nil
}

// Close stops the asynchronous planner, if any.
func (s *Sim) Close() {
	if s.planner != nil {
		s.planner.Close()
	}
}

func (s *Sim) Config() Config { return s.cfg }
func (s *Sim) Tiles() *Tiles { return s.tiles }
func (s *Sim) Registry() *Registry { return s.reg }
func (s *Sim) Context() *Context { return s.ctx }
func (s *Sim) Log() *EventLog { return s.ctx.Log }
func (s *Sim) Planner() *Planner { return s.planner }
func (s *Sim) Agents() []Agent { return s.reg.Agents() }
func (s *Sim) Agent(id AgentID) (*Agent, bool) { return s.reg.Get(id) }

// Spawn adds an idle werf.
func (s *Sim) Spawn(pos, vel r2.Vec, sprite uint8) AgentID {
	return s.reg.Spawn(pos, vel, sprite)
}

// TileAt returns the tile index under world position p.
func (s *Sim) TileAt(p r2.Vec) (int, bool) {
	cx, cy := CellOf(p, s.cfg.TileSize)
	return s.tiles.Index(cx, cy)
}

// ClampToGrid moves p onto the nearest tile of the level.
func (s *Sim) ClampToGrid(p r2.Vec) r2.Vec {
	maxX := float64(s.tiles.Width())*s.cfg.TileSize - 1e-6
	maxY := float64(s.tiles.Height())*s.cfg.TileSize - 1e-6
	return r2.Vec{
		X: min(max(p.X, 0), maxX),
		Y: min(max(p.Y, 0), maxY),
	}
}

// Command routes werf id to target. It reports whether a route was
// installed (or, with async planning, queued). Unreachable targets leave
// the werf's state untouched.
func (s *Sim) Command(id AgentID, target r2.Vec) bool {
	pos, ok := s.reg.Position(id)
	if !ok {
		s.ctx.Log.Add(s.ctx.Tick, id.Label(), CatCommand, KeySkipped, "no such werf", 0)
		return false
	}
	// Momentum can carry a werf past the level edge; it still starts from
	// the nearest tile.
	start, startOK := s.TileAt(s.ClampToGrid(pos))
	goal, goalOK := s.TileAt(target)
	if !startOK || !goalOK {
		s.ctx.Log.Add(s.ctx.Tick, id.Label(), CatCommand, KeyRouteUnreachable,
			fmt.Sprintf("(%.0f,%.0f) off grid", target.X, target.Y), 0)
		return false
	}

	s.seq[id]++
	if s.planner != nil {
		s.planner.Request(id, s.seq[id], start, goal)
		s.ctx.Log.Add(s.ctx.Tick, id.Label(), CatPlan, KeyQueued, s.describeGoal(goal), float64(s.seq[id]))
		return true
	}

	route, found := FindRoute(s.tiles, start, goal)
	return s.accept(id, goal, route, found)
}

// Enqueue schedules a command for the start of the next frame. It is safe
// to call from any goroutine.
func (s *Sim) Enqueue(cmd Command) {
	s.cmdMu.Lock()
	s.cmds.Enqueue(cmd)
	s.cmdMu.Unlock()
}

// Step advances the simulation by one frame of dt seconds.
//
// Order: reclaim async routes, apply queued commands, integrate, resolve
// collisions, advance movement states, animate. Movement therefore sees
// collision-resolved positions in the same frame.
func (s *Sim) Step(dt float64) {
	s.ctx.advance(dt)
	s.reclaimRoutes()
	s.drainCommands()

	Integrate(s.ctx, s.reg, s.cfg)
	s.collider.Resolve(s.ctx, s.reg, s.cfg)
	AdvanceStates(s.ctx, s.reg, s.tiles.Width(), s.cfg)
	Animate(s.ctx, s.reg, s.cfg)
}

func (s *Sim) drainCommands() {
	s.cmdMu.Lock()
	var pending []Command
	for !s.cmds.Empty() {
		pending = append(pending, s.cmds.Dequeue())
	}
	s.cmdMu.Unlock()

	for _, cmd := range pending {
		s.Command(cmd.Agent, cmd.Target)
	}
}

func (s *Sim) reclaimRoutes() {
	if s.planner == nil {
		return
	}
	s.results = s.planner.Reclaim(s.results[:0])
	for _, res := range s.results {
		if res.Seq != s.seq[res.Agent] {
			s.ctx.Log.Add(s.ctx.Tick, res.Agent.Label(), CatPlan, KeyStale,
				fmt.Sprintf("seq %d superseded by %d", res.Seq, s.seq[res.Agent]), float64(res.Seq))
			continue
		}
		s.accept(res.Agent, res.Goal, res.Route, res.Found)
	}
}

// accept installs a finished search on the werf or records why it could
// not. Losing a werf between lookup and install breaks the registry's
// never-remove invariant, so that is a panic.
func (s *Sim) accept(id AgentID, goal int, route Route, found bool) bool {
	if !found {
		s.ctx.Log.Add(s.ctx.Tick, id.Label(), CatCommand, KeyRouteUnreachable, s.describeGoal(goal), 0)
		return false
	}
	if err := s.reg.Install(id, NewFollowing(route)); err != nil {
		panic(fmt.Sprintf("sim: %v", err))
	}
	// The planner goroutine reads the tiles, so marks are sync-only.
	if s.cfg.DebugMarks && s.planner == nil {
		s.tiles.ClearMarks()
		s.tiles.MarkRoute(route)
	}
	s.ctx.Log.Add(s.ctx.Tick, id.Label(), CatCommand, KeyRouteIssued,
		fmt.Sprintf("%d tiles to %s", len(route), s.describeGoal(goal)), float64(len(route)))
	return true
}

func (s *Sim) describeGoal(goal int) string {
	if goal < 0 {
		return "?"
	}
	cx, cy := s.tiles.Cell(goal)
	return fmt.Sprintf("(%d,%d)", cx, cy)
}
