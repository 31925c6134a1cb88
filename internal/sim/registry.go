package sim

import (
	"errors"
	"fmt"

	"gonum.org/v1/gonum/spatial/r2"
)

// ErrUnknownAgent is returned when an AgentID does not name a live werf.
var ErrUnknownAgent = errors.New("unknown agent")

// AgentID is a stable handle to a werf. IDs are dense and never reused.
type AgentID int

// Label returns the short name used in logs, e.g. "W3".
func (id AgentID) Label() string { return fmt.Sprintf("W%d", id) }

// Agent is one werf's row in the registry.
type Agent struct {
	ID     AgentID
	Pos    r2.Vec // world units
	Vel    r2.Vec // world units per frame
	State  MoveState
	Sprite uint8 // appearance, 0..3
	Step   uint8 // walk animation frame, 0 or 1

	// Contact is set when the collision pass moved this werf in the
	// latest frame.
	Contact bool
}

// Registry stores werfs in a dense table addressed by AgentID.
type Registry struct {
	agents []Agent
}

// NewRegistry returns an empty registry with room for n werfs.
func NewRegistry(n int) *Registry {
	return &Registry{agents: make([]Agent, 0, n)}
}

// Spawn adds an idle werf and returns its ID.
func (r *Registry) Spawn(pos, vel r2.Vec, sprite uint8) AgentID {
	id := AgentID(len(r.agents))
	r.agents = append(r.agents, Agent{
		ID:     id,
		Pos:    pos,
		Vel:    vel,
		State:  Idle{},
		Sprite: sprite,
	})
	return id
}

// Len returns the number of werfs.
func (r *Registry) Len() int { return len(r.agents) }

// Agents returns the backing table. Entries may be mutated in place but the
// slice must not be appended to.
func (r *Registry) Agents() []Agent { return r.agents }

// Get returns a pointer to the werf with the given ID.
func (r *Registry) Get(id AgentID) (*Agent, bool) {
	if id < 0 || int(id) >= len(r.agents) {
		return nil, false
	}
	return &r.agents[id], true
}

// Position returns the werf's position, or ok=false if it does not exist.
func (r *Registry) Position(id AgentID) (r2.Vec, bool) {
	a, ok := r.Get(id)
	if !ok {
		return r2.Vec{}, false
	}
	return a.Pos, true
}

// Install replaces the werf's movement state wholesale.
func (r *Registry) Install(id AgentID, s MoveState) error {
	a, ok := r.Get(id)
	if !ok {
		return fmt.Errorf("install %s on %s: %w", s, id.Label(), ErrUnknownAgent)
	}
	a.State = s
	return nil
}

// Snapshot appends every werf's position to buf in ID order.
func (r *Registry) Snapshot(buf []r2.Vec) []r2.Vec {
	for i := range r.agents {
		buf = append(buf, r.agents[i].Pos)
	}
	return buf
}
