package sim

import (
	"sync"
)

// PlanResult is a finished route search waiting to be reclaimed.
type PlanResult struct {
	Agent AgentID
	Seq   uint64 // command sequence number the search answers
	Goal  int
	Route Route
	Found bool
}

type planRequest struct {
	agent       AgentID
	seq         uint64
	start, goal int
}

// Planner runs FindRoute on a worker goroutine. Results are collected until
// the simulation reclaims them at the start of a frame, so werf state is
// still only mutated on the simulation goroutine.
type Planner struct {
	grid     Grid
	requests chan planRequest
	pending  sync.WaitGroup
	done     chan struct{}
	once     sync.Once

	mu      sync.Mutex
	results []PlanResult
}

// NewPlanner starts a planner over grid. backlog bounds the number of
// queued searches before Request blocks.
func NewPlanner(grid Grid, backlog int) *Planner {
	p := &Planner{
		grid:     grid,
		requests: make(chan planRequest, backlog),
		done:     make(chan struct{}),
	}
	go p.run()
	return p
}

func (p *Planner) run() {
	defer close(p.done)
	for req := range p.requests {
		route, ok := FindRoute(p.grid, req.start, req.goal)
		p.mu.Lock()
		p.results = append(p.results, PlanResult{
			Agent: req.agent,
			Seq:   req.seq,
			Goal:  req.goal,
			Route: route,
			Found: ok,
		})
		p.mu.Unlock()
		p.pending.Done()
	}
}

// Request queues a search. It must not be called after Close.
func (p *Planner) Request(agent AgentID, seq uint64, start, goal int) {
	p.pending.Add(1)
	p.requests <- planRequest{agent: agent, seq: seq, start: start, goal: goal}
}

// Reclaim appends every finished result to buf and returns it.
func (p *Planner) Reclaim(buf []PlanResult) []PlanResult {
	p.mu.Lock()
	buf = append(buf, p.results...)
	p.results = p.results[:0]
	p.mu.Unlock()
	return buf
}

// Flush blocks until every queued search has finished.
func (p *Planner) Flush() { p.pending.Wait() }

// Close stops the worker after the queued searches finish.
func (p *Planner) Close() {
	p.once.Do(func() {
		close(p.requests)
		<-p.done
	})
}
