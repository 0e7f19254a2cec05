// Package cliques extracts the maximal cliques of a chordal graph from its
// elimination ordering. For a chordal graph eliminated in a perfect
// elimination order, every maximal clique appears as some vertex together
// with its later-eliminated neighbors, so extraction is a single pass over
// the ordering plus subset pruning; no general clique enumeration is needed.
package cliques

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/katalvlaran/junctiontree/core"
)

var (
	// ErrNilGraph indicates a nil *core.UndirectedGraph was supplied.
	ErrNilGraph = errors.New("cliques: graph is nil")

	// ErrBadOrder indicates the elimination ordering is not a permutation
	// of the graph's vertices.
	ErrBadOrder = errors.New("cliques: elimination order must be a permutation of the vertices")
)

// Clique is a set of variable IDs forming a maximal complete subgraph of
// the triangulated graph. Immutable after construction; the potential a
// clique later carries lives on the junction tree, not here.
type Clique struct {
	vars []string            // sorted variable IDs
	set  map[string]struct{} // membership index over vars
}

// New builds a Clique from the given variable IDs. Duplicates collapse.
func New(vars ...string) Clique {
	set := make(map[string]struct{}, len(vars))
	for _, v := range vars {
		set[v] = struct{}{}
	}
	sorted := make([]string, 0, len(set))
	for v := range set {
		sorted = append(sorted, v)
	}
	sort.Strings(sorted)

	return Clique{vars: sorted, set: set}
}

// ID returns the canonical identifier: member IDs sorted and joined with
// commas. Two cliques are the same set iff their IDs are equal.
func (c Clique) ID() string { return strings.Join(c.vars, ",") }

// Variables returns the member IDs sorted lexicographically ascending.
func (c Clique) Variables() []string {
	vars := make([]string, len(c.vars))
	copy(vars, c.vars)

	return vars
}

// Len returns the number of member variables.
func (c Clique) Len() int { return len(c.vars) }

// Contains reports membership of v.
func (c Clique) Contains(v string) bool {
	_, ok := c.set[v]
	return ok
}

// ContainsAll reports whether every listed variable is a member.
func (c Clique) ContainsAll(vars ...string) bool {
	for _, v := range vars {
		if !c.Contains(v) {
			return false
		}
	}

	return true
}

// Intersect returns the sorted intersection of c and o.
func (c Clique) Intersect(o Clique) []string {
	shared := make([]string, 0, min(len(c.vars), len(o.vars)))
	for _, v := range c.vars {
		if o.Contains(v) {
			shared = append(shared, v)
		}
	}

	return shared
}

// SubsetOf reports whether every member of c is also a member of o.
func (c Clique) SubsetOf(o Clique) bool {
	if len(c.vars) > len(o.vars) {
		return false
	}

	return o.ContainsAll(c.vars...)
}

// Extract reads the maximal cliques of chordal off the elimination order.
//
// For each vertex v in order, the candidate clique is {v} ∪ {later
// neighbors of v in the filled graph}. Candidates that are subsets of an
// already-retained clique are dropped, and a new candidate evicts any
// retained clique it strictly contains; both directions of pruning are
// needed because candidate sizes are not monotone along the ordering.
//
// An isolated vertex yields a singleton clique. The result is sorted by
// clique ID for deterministic downstream tree construction.
//
// Returns ErrNilGraph for nil input and ErrBadOrder when order is not a
// permutation of chordal's vertices.
// Complexity: O(V · D + K²·S) where K = #candidates, S = max clique size.
func Extract(chordal *core.UndirectedGraph, order []string) ([]Clique, error) {
	// 1. Validate inputs: order must cover the vertex set exactly once.
	if chordal == nil {
		return nil, ErrNilGraph
	}
	vertices := chordal.Vertices()
	if len(order) != len(vertices) {
		return nil, fmt.Errorf("%w: %d ordered, %d vertices", ErrBadOrder, len(order), len(vertices))
	}
	position := make(map[string]int, len(order))
	for i, v := range order {
		if !chordal.HasVertex(v) {
			return nil, fmt.Errorf("%w: %q not in graph", ErrBadOrder, v)
		}
		if _, dup := position[v]; dup {
			return nil, fmt.Errorf("%w: %q appears twice", ErrBadOrder, v)
		}
		position[v] = i
	}

	// 2. Scan the ordering, forming and pruning candidates.
	var retained []Clique
	for i, v := range order {
		neighbors, err := chordal.Neighbors(v)
		if err != nil {
			return nil, err
		}
		members := []string{v}
		for _, n := range neighbors {
			if position[n] > i {
				members = append(members, n)
			}
		}
		candidate := New(members...)

		// 2a. Drop the candidate if an existing clique subsumes it.
		subsumed := false
		for _, kept := range retained {
			if candidate.SubsetOf(kept) {
				subsumed = true
				break
			}
		}
		if subsumed {
			continue
		}

		// 2b. Evict existing cliques the candidate strictly contains.
		pruned := retained[:0]
		for _, kept := range retained {
			if !kept.SubsetOf(candidate) {
				pruned = append(pruned, kept)
			}
		}
		retained = append(pruned, candidate)
	}

	// 3. Sort by canonical ID for reproducibility.
	sort.Slice(retained, func(a, b int) bool { return retained[a].ID() < retained[b].ID() })

	return retained, nil
}
