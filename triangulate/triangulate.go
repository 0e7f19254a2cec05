package triangulate

import (
	"github.com/katalvlaran/junctiontree/core"
)

// Triangulate eliminates every vertex of g in greedy heuristic order,
// adding fill-in edges so the returned graph is chordal. It returns the
// chordal supergraph (input edges plus fill-ins) and the elimination
// ordering, both freshly allocated; g itself is never modified.
//
// Steps:
//  1. Clone g twice: a working graph that shrinks as vertices are
//     eliminated, and the chordal output that only ever gains edges.
//  2. Repeatedly pick the uneliminated vertex minimizing the heuristic
//     cost (ties broken by lexical vertex ID), append it to the ordering,
//     connect its remaining neighbors pairwise in both graphs, and remove
//     it from the working graph.
//  3. Stop when the working graph is empty.
//
// Disconnected input needs no special casing: greedy elimination visits
// every component and fill-ins never cross components.
//
// Returns ErrNilGraph for nil input and ErrUnknownHeuristic for an
// unrecognized option.
// Complexity: O(V² · D²) worst case for min-fill (D = max degree), O(V²)
// for min-degree; memory O(V + E) beyond the two output structures.
func Triangulate(g *core.UndirectedGraph, opts ...Option) (*core.UndirectedGraph, []string, error) {
	// 1. Validate input and resolve options.
	if g == nil {
		return nil, nil, ErrNilGraph
	}
	options := DefaultOptions()
	for _, opt := range opts {
		opt(&options)
	}
	if options.Heuristic != HeuristicMinFill && options.Heuristic != HeuristicMinDegree {
		return nil, nil, ErrUnknownHeuristic
	}

	// 2. The working graph shrinks; the chordal graph only gains fill-ins.
	work := g.Clone()
	chordal := g.Clone()
	order := make([]string, 0, len(g.Vertices()))

	// 3. Eliminate all vertices.
	for remaining := work.Vertices(); len(remaining) > 0; remaining = work.Vertices() {
		// 3a. Select the cheapest vertex. Vertices() is sorted, so scanning
		//     with a strict '<' comparison breaks ties lexically.
		best := ""
		bestCost := -1
		for _, v := range remaining {
			cost, err := eliminationCost(work, v, options.Heuristic)
			if err != nil {
				return nil, nil, err
			}
			if bestCost < 0 || cost < bestCost {
				best, bestCost = v, cost
			}
		}

		// 3b. Record in the elimination ordering.
		order = append(order, best)

		// 3c. Connect the eliminated vertex's remaining neighbors pairwise,
		//     in both the working graph and the chordal output.
		neighbors, err := work.Neighbors(best)
		if err != nil {
			return nil, nil, err
		}
		for i := 0; i < len(neighbors); i++ {
			for j := i + 1; j < len(neighbors); j++ {
				if err = work.AddEdge(neighbors[i], neighbors[j]); err != nil {
					return nil, nil, err
				}
				if err = chordal.AddEdge(neighbors[i], neighbors[j]); err != nil {
					return nil, nil, err
				}
			}
		}

		// 3d. Remove from further consideration.
		work.RemoveVertex(best)
	}

	return chordal, order, nil
}

// eliminationCost scores v in the current working graph under h.
func eliminationCost(work *core.UndirectedGraph, v string, h Heuristic) (int, error) {
	switch h {
	case HeuristicMinDegree:
		return work.Degree(v)
	case HeuristicMinFill:
		neighbors, err := work.Neighbors(v)
		if err != nil {
			return 0, err
		}
		// Count missing edges among v's neighbors: each is a fill-in that
		// eliminating v would force.
		fill := 0
		for i := 0; i < len(neighbors); i++ {
			for j := i + 1; j < len(neighbors); j++ {
				if !work.HasEdge(neighbors[i], neighbors[j]) {
					fill++
				}
			}
		}

		return fill, nil
	default:
		return 0, ErrUnknownHeuristic
	}
}
