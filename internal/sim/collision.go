package sim

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/spatial/kdtree"
	"gonum.org/v1/gonum/spatial/r2"
)

// werfPoint is one werf's position in the per-frame snapshot.
type werfPoint struct {
	id  AgentID
	pos r2.Vec
}

func (p werfPoint) Compare(c kdtree.Comparable, d kdtree.Dim) float64 {
	q := c.(werfPoint)
	switch d {
	case 0:
		return p.pos.X - q.pos.X
	case 1:
		return p.pos.Y - q.pos.Y
	default:
		panic("illegal dimension")
	}
}

func (p werfPoint) Dims() int { return 2 }

// Distance returns the squared Euclidean distance, as kdtree expects.
func (p werfPoint) Distance(c kdtree.Comparable) float64 {
	return r2.Norm2(r2.Sub(p.pos, c.(werfPoint).pos))
}

type werfPoints []werfPoint

func (p werfPoints) Index(i int) kdtree.Comparable { return p[i] }
func (p werfPoints) Len() int { return len(p) }
func (p werfPoints) Pivot(d kdtree.Dim) int { return werfPlane{werfPoints: p, Dim: d}.Pivot() }
func (p werfPoints) Slice(start, end int) kdtree.Interface { return p[start:end] }

// werfPlane sorts a snapshot along one axis while the tree is built.
type werfPlane struct {
	kdtree.Dim
	werfPoints
}

func (p werfPlane) Less(i, j int) bool {
	return p.werfPoints[i].Compare(p.werfPoints[j], p.Dim) < 0
}
func (p werfPlane) Pivot() int { return kdtree.Partition(p, kdtree.MedianOfMedians(p)) }
func (p werfPlane) Slice(start, end int) kdtree.SortSlicer {
	p.werfPoints = p.werfPoints[start:end]
	return p
}
func (p werfPlane) Swap(i, j int) {
	p.werfPoints[i], p.werfPoints[j] = p.werfPoints[j], p.werfPoints[i]
}

// Collider resolves overlapping werfs once per frame. The k-d tree is
// rebuilt from a fresh snapshot every call and never outlives it.
type Collider struct {
	snapshot werfPoints
	byID     []r2.Vec
	jitter   map[[2]AgentID]float64
}

// NewCollider returns a collider with snapshot storage for n werfs.
func NewCollider(n int) *Collider {
	return &Collider{
		snapshot: make(werfPoints, 0, n),
		byID:     make([]r2.Vec, 0, n),
	}
}

// Resolve pushes every werf that lies within 2R of another away from the
// pair's midpoint and damps its velocity. Each werf only reacts to its
// nearest neighbour; ties go to the lowest AgentID. Both partners read
// positions from the snapshot, so a pair moves symmetrically.
func (c *Collider) Resolve(ctx *Context, reg *Registry, cfg Config) {
	agents := reg.Agents()
	for i := range agents {
		agents[i].Contact = false
	}
	if len(agents) < 2 || cfg.CollisionRadius <= 0 {
		return
	}

	c.byID = reg.Snapshot(c.byID[:0])
	c.snapshot = c.snapshot[:0]
	for i, p := range c.byID {
		c.snapshot = append(c.snapshot, werfPoint{id: AgentID(i), pos: p})
	}
	tree := kdtree.New(c.snapshot, false)
	clear(c.jitter)

	reach := 2 * cfg.CollisionRadius
	for i := range agents {
		a := &agents[i]
		self := werfPoint{id: a.ID, pos: c.byID[i]}

		keep := kdtree.NewDistKeeper(reach * reach)
		tree.NearestSet(keep, self)
		other, ok := partner(keep, a.ID)
		if !ok {
			continue
		}

		gap := r2.Sub(self.pos, other.pos)
		if r2.Norm2(gap) == 0 {
			gap = c.splitDirection(ctx, a.ID, other.id, cfg.CollisionRadius)
		}
		mid := r2.Scale(0.5, r2.Add(self.pos, other.pos))
		// Each werf lands gap/setback from the midpoint, so the pair ends up
		// slightly further apart without a hard separation.
		a.Pos = r2.Add(mid, r2.Scale(1/cfg.Setback, gap))
		a.Vel = r2.Scale(cfg.CollisionDamping, a.Vel)
		a.Contact = true

		ctx.Log.AddVerbose(ctx.Tick, a.ID.Label(), CatCollision, KeyContact,
			fmt.Sprintf("with %s at %.1f", other.id.Label(), math.Sqrt(r2.Norm2(r2.Sub(self.pos, other.pos)))),
			float64(other.id))
	}
}

// partner picks the nearest non-self werf from the query result.
func partner(keep *kdtree.DistKeeper, self AgentID) (werfPoint, bool) {
	var best werfPoint
	bestDist := math.Inf(1)
	found := false
	for _, cd := range keep.Heap {
		if cd.Comparable == nil {
			continue
		}
		p := cd.Comparable.(werfPoint)
		if p.id == self {
			continue
		}
		if cd.Dist < bestDist || (cd.Dist == bestDist && p.id < best.id) {
			best, bestDist, found = p, cd.Dist, true
		}
	}
	return best, found
}

// splitDirection returns the separation vector for two werfs standing on
// the same spot. The angle is drawn once per pair per frame from the
// context RNG; the lower ID moves along it and the higher ID against it.
func (c *Collider) splitDirection(ctx *Context, self, other AgentID, radius float64) r2.Vec {
	key := [2]AgentID{min(self, other), max(self, other)}
	if c.jitter == nil {
		c.jitter = make(map[[2]AgentID]float64)
	}
	angle, ok := c.jitter[key]
	if !ok {
		angle = ctx.Rand.Float64() * 2 * math.Pi
		c.jitter[key] = angle
	}
	dir := r2.Vec{X: math.Cos(angle) * radius, Y: math.Sin(angle) * radius}
	if self > other {
		dir = r2.Scale(-1, dir)
	}
	return dir
}
