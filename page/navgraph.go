package page

import (
	"context"

	"github.com/autowsgr/helmsman/device"
)

// Action is one navigation edge's effect: a click (or click sequence) plus
// any intermediate confirmations, applied to a device. Two-step submenus
// (Build/Intensify from Sidebar) are expressed as a single Action that
// performs click → delay → click internally; the graph only models the
// edge's existence, not its internal choreography.
type Action func(ctx context.Context, d device.Controller) error

// Edge is one directed edge of the navigation graph.
type Edge struct {
	Source      Name
	Target      Name
	Action      Action
	Description string
}

// Graph is an adjacency-list navigation graph over Name.
type Graph struct {
	edges map[Name][]Edge
	all   []Edge
}

// NewGraph builds a Graph from a flat edge list.
func NewGraph(edges []Edge) *Graph {
	g := &Graph{edges: map[Name][]Edge{}, all: edges}
	for _, e := range edges {
		g.edges[e.Source] = append(g.edges[e.Source], e)
	}
	return g
}

// Edges returns every edge leaving source, in the order they were added.
func (g *Graph) Edges(source Name) []Edge {
	return g.edges[source]
}

// FindPath runs a breadth-first search from source to target and returns
// the edge list forming the shortest path, or (nil, false) if target is
// unreachable. source == target returns an empty, non-nil path.
func (g *Graph) FindPath(source, target Name) ([]Edge, bool) {
	if source == target {
		return []Edge{}, true
	}

	visited := map[Name]bool{source: true}
	type queued struct {
		node Name
		path []Edge
	}
	queue := []queued{{node: source, path: nil}}

	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		for _, e := range g.edges[cur.node] {
			if visited[e.Target] {
				continue
			}
			newPath := append(append([]Edge(nil), cur.path...), e)
			if e.Target == target {
				return newPath, true
			}
			visited[e.Target] = true
			queue = append(queue, queued{node: e.Target, path: newPath})
		}
	}
	return nil, false
}
