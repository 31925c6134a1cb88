package main

import (
	"fmt"
	"math/rand"
	"sort"
	"strings"

	"github.com/Garsondee/werfs/internal/sim"
)

// scenario sets up a level, spawns werfs and issues their commands.
type scenario struct {
	name  string
	about string
	build func(cfg sim.Config, werfs int) *sim.TestSim
}

var scenarios = []scenario{
	{"crossing", "pairs swap ends of an open room", buildCrossing},
	{"crowd", "werfs scattered over a generated level walk to random tiles", buildCrowd},
	{"corridor", "a group squeezes through a one-tile gap", buildCorridor},
}

func findScenario(name string) (scenario, bool) {
	for _, sc := range scenarios {
		if sc.name == name {
			return sc, true
		}
	}
	return scenario{}, false
}

func scenarioNames() string {
	names := make([]string, 0, len(scenarios))
	for _, sc := range scenarios {
		names = append(names, sc.name)
	}
	sort.Strings(names)
	return strings.Join(names, ", ")
}

func withConfig(cfg sim.Config) sim.SimOption {
	return sim.WithConfig(func(c *sim.Config) { *c = cfg })
}

// room returns a w×h bordered room as level rows.
func room(w, h int) []string {
	rows := make([]string, h)
	for y := range rows {
		if y == 0 || y == h-1 {
			rows[y] = strings.Repeat("#", w)
			continue
		}
		rows[y] = "#" + strings.Repeat(".", w-2) + "#"
	}
	return rows
}

// crossingRows orders rows outward from the middle of the room.
var crossingRows = []int{0, -2, 2, -1, 1, -3, 3}

func buildCrossing(cfg sim.Config, werfs int) *sim.TestSim {
	const w, h = 20, 9
	pairs := max(1, werfs/2)
	if pairs > len(crossingRows) {
		pairs = len(crossingRows)
	}

	opts := []sim.SimOption{withConfig(cfg), sim.WithLevel(room(w, h)...)}
	type leg struct{ fromX, toX, y int }
	var legs []leg
	for i := 0; i < pairs; i++ {
		y := h/2 + crossingRows[i]
		legs = append(legs, leg{1, w - 2, y}, leg{w - 2, 1, y})
	}
	for _, l := range legs {
		opts = append(opts, sim.WithWerf(l.fromX, l.y))
	}

	ts := sim.NewTestSim(opts...)
	for i, l := range legs {
		ts.CommandTile(sim.AgentID(i), l.toX, l.y)
	}
	return ts
}

func buildCorridor(cfg sim.Config, werfs int) *sim.TestSim {
	const w, h = 24, 11
	rows := room(w, h)
	gap := h / 2
	for y := 1; y < h-1; y++ {
		if y == gap {
			continue
		}
		b := []byte(rows[y])
		b[w/2] = '#'
		rows[y] = string(b)
	}

	n := max(1, werfs)
	opts := []sim.SimOption{withConfig(cfg), sim.WithLevel(rows...)}
	for i := 0; i < n; i++ {
		// Fill the left room column by column from the far wall.
		x, y := 1+i/(h-2), 1+i%(h-2)
		if x >= w/2 {
			break
		}
		opts = append(opts, sim.WithWerf(x, y))
	}

	ts := sim.NewTestSim(opts...)
	for i := 0; i < ts.Registry().Len(); i++ {
		x, y := 1+i/(h-2), 1+i%(h-2)
		ts.CommandTile(sim.AgentID(i), w-1-x, y)
	}
	return ts
}

func buildCrowd(cfg sim.Config, werfs int) *sim.TestSim {
	const w, h = 40, 30
	rng := rand.New(rand.NewSource(cfg.Seed)) // #nosec G404 -- level layout only
	tiles := sim.GenerateLevel(w, h, rng)

	ts := sim.NewTestSim(withConfig(cfg), sim.WithLevel(levelRows(tiles)...))
	ctx := ts.Context()
	sim.SpawnMany(ctx, ts.Registry(), ts.Tiles(), cfg.TileSize, max(1, werfs))

	var ground []int
	for i := 0; i < ts.Tiles().Len(); i++ {
		if !ts.Tiles().IsBlocked(i) {
			ground = append(ground, i)
		}
	}
	for i := 0; i < ts.Registry().Len(); i++ {
		goal := ground[ctx.Rand.Intn(len(ground))]
		ts.Command(sim.AgentID(i), sim.TileCentre(goal, w, cfg.TileSize))
	}
	return ts
}

// levelRows renders tiles in the harness's '#'/'.' row format.
func levelRows(t *sim.Tiles) []string {
	rows := make([]string, t.Height())
	var sb strings.Builder
	for y := range rows {
		sb.Reset()
		for x := 0; x < t.Width(); x++ {
			idx, _ := t.Index(x, y)
			if t.IsBlocked(idx) {
				sb.WriteByte('#')
			} else {
				sb.WriteByte('.')
			}
		}
		rows[y] = sb.String()
	}
	return rows
}

func describeScenarios() string {
	var sb strings.Builder
	for _, sc := range scenarios {
		fmt.Fprintf(&sb, "  %-9s %s\n", sc.name, sc.about)
	}
	return sb.String()
}
