package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os/signal"
	"sort"
	"strings"
	"syscall"

	"github.com/Garsondee/werfs/internal/sim"
)

type runStats struct {
	scenario string
	runIndex int
	seed     int64
	werfs    int

	frames    int // frames stepped
	settledAt int // tick every werf was idle again, -1 if never

	issued      int
	unreachable int
	stale       int
	waypoints   int

	// first arrival tick per werf label
	arrivals map[string]int

	contactFrames int // werf-frames spent in contact
	maxContacts   int // most werfs in contact in a single frame
}

type options struct {
	runs      int
	frames    int
	seedBase  int64
	seedStep  int64
	werfs     int
	scenarios []scenario
	cfg       sim.Config
	serve     string
	pace      bool
}

func main() {
	var o options
	var scenarioName string
	var configPath string
	var async bool

	flag.IntVar(&o.runs, "runs", 5, "number of headless runs per scenario")
	flag.IntVar(&o.frames, "frames", 3600, "maximum frames per run")
	flag.Int64Var(&o.seedBase, "seed-base", 42, "base RNG seed for run 1")
	flag.Int64Var(&o.seedStep, "seed-step", 1, "seed increment between runs")
	flag.IntVar(&o.werfs, "werfs", 8, "werfs per run (crossing uses pairs)")
	flag.StringVar(&scenarioName, "scenario", "all", "scenario name or \"all\"")
	flag.StringVar(&configPath, "config", "", "YAML config file (defaults when empty)")
	flag.BoolVar(&async, "async", false, "plan routes on a worker goroutine")
	flag.StringVar(&o.serve, "serve", "", "stream runs to websocket spectators on this address, e.g. :8080")
	flag.BoolVar(&o.pace, "pace", true, "with -serve, step in real time")
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "usage: headless-report [flags]\n\nscenarios:\n%s\nflags:\n", describeScenarios())
		flag.PrintDefaults()
	}
	flag.Parse()

	if o.runs <= 0 {
		fmt.Println("error: -runs must be > 0")
		return
	}
	if o.frames <= 0 {
		fmt.Println("error: -frames must be > 0")
		return
	}

	o.cfg = sim.DefaultConfig()
	if configPath != "" {
		var err error
		if o.cfg, err = sim.LoadConfig(configPath); err != nil {
			log.Fatal(err)
		}
	}
	o.cfg.AsyncPlanning = o.cfg.AsyncPlanning || async

	if scenarioName == "all" {
		o.scenarios = scenarios
	} else {
		sc, ok := findScenario(scenarioName)
		if !ok {
			fmt.Printf("error: unsupported scenario %q (supported: %s)\n", scenarioName, scenarioNames())
			return
		}
		o.scenarios = []scenario{sc}
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if o.serve != "" {
		if err := serve(ctx, o); err != nil {
			log.Fatal(err)
		}
		return
	}
	runAll(ctx, o, nil)
}

// runAll runs every selected scenario and prints the report. observe, when
// set, sees the simulation after every frame.
func runAll(ctx context.Context, o options, observe func(*sim.Sim)) []runStats {
	fmt.Printf("=== Headless Navigation Report ===\n")
	fmt.Printf("runs=%d frames=%d seed_base=%d seed_step=%d werfs=%d async=%t\n\n",
		o.runs, o.frames, o.seedBase, o.seedStep, o.werfs, o.cfg.AsyncPlanning)

	var all []runStats
	for _, sc := range o.scenarios {
		var runs []runStats
		for i := 0; i < o.runs; i++ {
			if ctx.Err() != nil {
				return all
			}
			seed := o.seedBase + int64(i)*o.seedStep
			rs := runScenario(sc, i+1, seed, o, observe)
			runs = append(runs, rs)
			printRun(rs)
		}
		printAggregate(sc.name, runs)
		all = append(all, runs...)
	}
	return all
}

func runScenario(sc scenario, runIndex int, seed int64, o options, observe func(*sim.Sim)) runStats {
	cfg := o.cfg
	cfg.Seed = seed
	ts := sc.build(cfg, o.werfs)
	defer ts.Close()
	if p := ts.Planner(); p != nil {
		// Let the first frame see every route.
		p.Flush()
	}

	rs := runStats{
		scenario:  sc.name,
		runIndex:  runIndex,
		seed:      seed,
		werfs:     ts.Registry().Len(),
		settledAt: -1,
		arrivals:  map[string]int{},
	}
	for rs.frames < o.frames {
		ts.Step(sim.FixedDT)
		rs.frames++

		inContact := 0
		for _, a := range ts.Agents() {
			if a.Contact {
				inContact++
			}
		}
		rs.contactFrames += inContact
		rs.maxContacts = max(rs.maxContacts, inContact)

		if observe != nil {
			observe(ts.Sim)
		}
		if ts.AllIdle() {
			rs.settledAt = ts.Context().Tick
			break
		}
	}

	events := ts.Log()
	rs.issued = events.CountCategory(sim.CatCommand, sim.KeyRouteIssued)
	rs.unreachable = events.CountCategory(sim.CatCommand, sim.KeyRouteUnreachable)
	rs.stale = events.CountCategory(sim.CatPlan, sim.KeyStale)
	rs.waypoints = events.CountCategory(sim.CatMove, sim.KeyWaypoint)
	for _, e := range events.Filter(sim.CatMove, sim.KeyArrived) {
		if _, seen := rs.arrivals[e.Agent]; !seen {
			rs.arrivals[e.Agent] = e.Tick
		}
	}
	return rs
}

func printRun(rs runStats) {
	fmt.Printf("--- %s run %d (seed=%d) ---\n", rs.scenario, rs.runIndex, rs.seed)
	settled := "never"
	if rs.settledAt >= 0 {
		settled = fmt.Sprintf("T=%d", rs.settledAt)
	}
	fmt.Printf("werfs=%d frames=%d settled=%s\n", rs.werfs, rs.frames, settled)
	fmt.Printf("commands: issued=%d unreachable=%d stale=%d\n", rs.issued, rs.unreachable, rs.stale)
	fmt.Printf("arrivals=%d/%d mean_frames=%s waypoints=%d\n",
		len(rs.arrivals), rs.issued, avgTickString(arrivalTicks(rs)), rs.waypoints)
	fmt.Printf("contacts: werf_frames=%d max_simultaneous=%d\n", rs.contactFrames, rs.maxContacts)
	if late := stragglers(rs); late != "" {
		fmt.Printf("still_walking=[%s]\n", late)
	}
	fmt.Println()
}

func printAggregate(name string, runs []runStats) {
	if len(runs) == 0 {
		return
	}
	totalIssued, totalUnreachable, totalContact, totalArrived := 0, 0, 0, 0
	var settle, arrive []int
	for _, rs := range runs {
		totalIssued += rs.issued
		totalUnreachable += rs.unreachable
		totalContact += rs.contactFrames
		totalArrived += len(rs.arrivals)
		if rs.settledAt >= 0 {
			settle = append(settle, rs.settledAt)
		}
		arrive = append(arrive, arrivalTicks(rs)...)
	}

	fmt.Printf("=== Aggregate: %s ===\n", name)
	fmt.Printf("runs=%d settled=%d/%d\n", len(runs), len(settle), len(runs))
	fmt.Printf("avg_per_run: issued=%.1f arrived=%.1f unreachable=%.1f contact_frames=%.1f\n",
		avg(totalIssued, len(runs)), avg(totalArrived, len(runs)), avg(totalUnreachable, len(runs)), avg(totalContact, len(runs)))
	fmt.Printf("mean_frames: arrival=%s settle=%s\n\n", avgTickString(arrive), avgTickString(settle))
}

func arrivalTicks(rs runStats) []int {
	out := make([]int, 0, len(rs.arrivals))
	for _, t := range rs.arrivals {
		out = append(out, t)
	}
	sort.Ints(out)
	return out
}

// stragglers lists werfs that never arrived.
func stragglers(rs runStats) string {
	if len(rs.arrivals) >= rs.issued {
		return ""
	}
	var labels []string
	for i := 0; i < rs.werfs; i++ {
		label := sim.AgentID(i).Label()
		if _, ok := rs.arrivals[label]; !ok {
			labels = append(labels, label)
		}
	}
	return strings.Join(labels, ",")
}

func avg(sum int, n int) float64 {
	if n <= 0 {
		return 0
	}
	return float64(sum) / float64(n)
}

func avgTickString(vals []int) string {
	if len(vals) == 0 {
		return "n/a"
	}
	sum := 0
	for _, v := range vals {
		sum += v
	}
	return fmt.Sprintf("%.1f", float64(sum)/float64(len(vals)))
}
