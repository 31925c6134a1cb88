package game

import (
	"cmp"
	"fmt"
	"slices"
	"strings"

	"github.com/Garsondee/werfs/internal/sim"
	"github.com/atotto/clipboard"
	"gonum.org/v1/gonum/spatial/r2"
)

// reportNeighbours caps the nearby-werf table in a debug report.
const reportNeighbours = 5

type eventSummary struct {
	issued      int
	unreachable int
	waypoints   int
	arrivals    int
	contacts    int
	stale       int
}

func summarizeEvents(events []sim.Event) eventSummary {
	var res eventSummary
	for _, e := range events {
		switch e.Key {
		case sim.KeyRouteIssued:
			res.issued++
		case sim.KeyRouteUnreachable:
			res.unreachable++
		case sim.KeyWaypoint:
			res.waypoints++
		case sim.KeyArrived:
			res.arrivals++
		case sim.KeyContact:
			res.contacts++
		case sim.KeyStale:
			res.stale++
		}
	}
	return res
}

type neighbour struct {
	id      sim.AgentID
	dist    float64
	contact bool
}

func nearestNeighbours(agents []sim.Agent, self *sim.Agent, n int) []neighbour {
	var out []neighbour
	for i := range agents {
		if agents[i].ID == self.ID {
			continue
		}
		out = append(out, neighbour{
			id:      agents[i].ID,
			dist:    r2.Norm(r2.Sub(agents[i].Pos, self.Pos)),
			contact: agents[i].Contact,
		})
	}
	slices.SortFunc(out, func(a, b neighbour) int {
		if c := cmp.Compare(a.dist, b.dist); c != 0 {
			return c
		}
		return cmp.Compare(a.id, b.id)
	})
	if len(out) > n {
		out = out[:n]
	}
	return out
}

// werfDebugReport describes the focused werf over the last lastTicks
// frames: its state, its route, who is near it and what it logged.
func werfDebugReport(s *sim.Sim, focus sim.AgentID, lastTicks int) string {
	a, ok := s.Agent(focus)
	if !ok {
		return ""
	}
	if lastTicks <= 0 {
		lastTicks = 120
	}

	ctx := s.Context()
	cfg := s.Config()
	toTick := ctx.Tick
	fromTick := max(toTick-lastTicks+1, 0)

	var b strings.Builder
	fmt.Fprintf(&b, "--- werfs debug report ---\n")
	fmt.Fprintf(&b, "seed=%d tick_range=[%d..%d] ticks=%d elapsed=%.2fs\n",
		cfg.Seed, fromTick, toTick, toTick-fromTick+1, ctx.Elapsed)
	fmt.Fprintf(&b, "grid=%dx%d tile=%.0f werfs=%d async=%t\n\n",
		s.Tiles().Width(), s.Tiles().Height(), cfg.TileSize, s.Registry().Len(), cfg.AsyncPlanning)

	fmt.Fprintf(&b, "== %s ==\n", a.ID.Label())
	for _, line := range inspectorLines(a, cfg.TileSize) {
		b.WriteString(line)
		b.WriteByte('\n')
	}
	if f, ok := a.State.(*sim.Following); ok {
		b.WriteString("remaining:")
		w := s.Tiles().Width()
		for _, idx := range f.Route()[f.Cursor():] {
			fmt.Fprintf(&b, " (%d,%d)", idx%w, idx/w)
		}
		b.WriteByte('\n')
	}

	if near := nearestNeighbours(s.Agents(), a, reportNeighbours); len(near) > 0 {
		b.WriteString("nearest:\n")
		for _, n := range near {
			tag := ""
			if n.dist < 2*cfg.CollisionRadius {
				tag = " [OVERLAP]"
			}
			fmt.Fprintf(&b, "  %-4s d=%.1f contact=%t%s\n", n.id.Label(), n.dist, n.contact, tag)
		}
	}

	var events []sim.Event
	for _, e := range s.Log().FilterTickRange(fromTick, toTick) {
		if e.Agent == a.ID.Label() {
			events = append(events, e)
		}
	}
	sum := summarizeEvents(events)
	fmt.Fprintf(&b,
		"summary: issued=%d unreachable=%d waypoints=%d arrivals=%d contacts=%d stale=%d\n",
		sum.issued, sum.unreachable, sum.waypoints, sum.arrivals, sum.contacts, sum.stale)
	if len(events) == 0 {
		b.WriteString("(no events in range)\n")
	} else {
		b.WriteString("events:\n")
		for _, e := range events {
			b.WriteString("  ")
			b.WriteString(e.String())
			b.WriteByte('\n')
		}
	}

	b.WriteString("\n== ALL WERFS ==\n")
	b.WriteString(sim.TakeSnapshot(s).Format())
	return b.String()
}

// copyReport puts the focused werf's debug report on the system clipboard.
func (g *Game) copyReport() error {
	report := werfDebugReport(g.sim, g.focus, 120)
	if report == "" {
		return fmt.Errorf("no werf %s to report on", g.focus.Label())
	}
	if err := clipboard.WriteAll(report); err != nil {
		return fmt.Errorf("copy report: %w", err)
	}
	return nil
}
