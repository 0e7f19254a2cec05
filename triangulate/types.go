// Package triangulate adds fill-in edges to an undirected graph until it
// is chordal (every cycle of length ≥ 4 has a chord), producing both the
// chordal supergraph and the greedy elimination ordering that induced it.
//
// The ordering matters as much as the graph: downstream clique extraction
// reads maximal cliques straight off it, and the size of the largest
// clique (which bounds the cost of every later factor operation
// exponentially) is one plus the largest back-degree at elimination time.
// The greedy heuristics exist purely to keep those back-degrees small.
//
// Heuristics:
//
//	HeuristicMinFill   - eliminate the vertex needing the fewest fill-in
//	                     edges (default; tends to produce smaller cliques).
//	HeuristicMinDegree - eliminate the vertex of minimum remaining degree
//	                     (cheaper to evaluate, often slightly worse trees).
//
// Ties in either heuristic are broken by lexical vertex ID, so results are
// reproducible and testable.
package triangulate

import "errors"

var (
	// ErrNilGraph indicates a nil *core.UndirectedGraph was supplied.
	ErrNilGraph = errors.New("triangulate: graph is nil")

	// ErrUnknownHeuristic indicates an unrecognized Heuristic value.
	ErrUnknownHeuristic = errors.New("triangulate: unknown elimination heuristic")
)

// Heuristic selects the greedy elimination cost function.
type Heuristic int

const (
	// HeuristicMinFill scores a vertex by the number of fill-in edges its
	// elimination would add (missing edges among its remaining neighbors).
	HeuristicMinFill Heuristic = iota

	// HeuristicMinDegree scores a vertex by its remaining degree.
	HeuristicMinDegree
)

// Options configures Triangulate. Use DefaultOptions as the baseline and
// override via functional options.
type Options struct {
	// Heuristic is the greedy elimination cost function.
	Heuristic Heuristic
}

// Option mutates Options.
type Option func(*Options)

// WithHeuristic selects the elimination heuristic.
func WithHeuristic(h Heuristic) Option {
	return func(o *Options) { o.Heuristic = h }
}

// DefaultOptions returns the default configuration (min-fill).
func DefaultOptions() Options {
	return Options{Heuristic: HeuristicMinFill}
}
