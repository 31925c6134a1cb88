package sim

import (
	"github.com/zyedidia/generic/queue"
)

// Grid is the read-only view of the level that navigation needs.
type Grid interface {
	Len() int
	Width() int
	IsBlocked(idx int) bool
}

// Route is an ordered list of tile indices from the start tile to the goal
// tile, both inclusive. Routes are never modified after FindRoute returns.
type Route []int

// Neighbours appends to buf the walkable cardinal neighbours of idx in the
// order up, right, down, left, and returns the extended slice.
// Left and right never wrap onto the previous or next row.
func Neighbours(g Grid, idx int, buf []int) []int {
	n, w := g.Len(), g.Width()
	if w <= 0 || idx < 0 || idx >= n {
		return buf
	}
	col := idx % w

	if up := idx - w; up >= 0 && !g.IsBlocked(up) {
		buf = append(buf, up)
	}
	if right := idx + 1; col+1 < w && right < n && !g.IsBlocked(right) {
		buf = append(buf, right)
	}
	if down := idx + w; down < n && !g.IsBlocked(down) {
		buf = append(buf, down)
	}
	if left := idx - 1; col > 0 && !g.IsBlocked(left) {
		buf = append(buf, left)
	}
	return buf
}

// FindRoute runs a breadth-first search from start to goal and returns the
// shortest 4-connected route. ok is false when the goal is blocked, out of
// range, or walled off. A blocked start is allowed so that a werf pushed
// into a wall can still walk out.
func FindRoute(g Grid, start, goal int) (route Route, ok bool) {
	n := g.Len()
	if start < 0 || start >= n || goal < 0 || goal >= n {
		return nil, false
	}
	if g.IsBlocked(goal) {
		return nil, false
	}
	if start == goal {
		return Route{start}, true
	}

	visited := make([]bool, n)
	parent := make([]int, n)
	frontier := queue.New[int]()

	visited[start] = true
	frontier.Enqueue(start)

	var buf [4]int
	for !frontier.Empty() {
		cur := frontier.Dequeue()
		for _, next := range Neighbours(g, cur, buf[:0]) {
			if visited[next] {
				continue
			}
			visited[next] = true
			parent[next] = cur
			if next == goal {
				return buildRoute(parent, start, goal), true
			}
			frontier.Enqueue(next)
		}
	}
	return nil, false
}

func buildRoute(parent []int, start, goal int) Route {
	var route Route
	for idx := goal; idx != start; idx = parent[idx] {
		route = append(route, idx)
	}
	route = append(route, start)
	// Reverse
	for i, j := 0, len(route)-1; i < j; i, j = i+1, j-1 {
		route[i], route[j] = route[j], route[i]
	}
	return route
}
