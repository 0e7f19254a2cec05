package jtree

import (
	"fmt"

	"github.com/katalvlaran/junctiontree/factor"
)

// Marginal returns the normalized marginal distribution over the given
// variables, computed from the smallest clique containing all of them
// (ties broken by lexical clique ID). If the tree was propagated with
// evidence, the result is conditioned on that evidence.
//
// Queries are valid only for variable sets jointly contained in a single
// clique; a set spanning multiple cliques fails with
// ErrUnsupportedQueryScope rather than silently producing a table that is
// not the true joint marginal.
//
// Returns ErrNotPropagated before a completed pass, ErrUnsupportedQueryScope
// for an empty or uncovered scope, and factor.ErrZeroMass when the
// propagated evidence has probability zero under the model.
// Complexity: O(T) over the chosen clique's table size.
func (t *Tree) Marginal(vars ...string) (*factor.Factor, error) {
	// 1. Preconditions.
	if !t.propagated {
		return nil, ErrNotPropagated
	}
	if len(vars) == 0 {
		return nil, fmt.Errorf("%w: empty query", ErrUnsupportedQueryScope)
	}

	// 2. Smallest covering clique; nodes are sorted by ID, so the first hit
	//    at the minimal size is the lexical tie-break winner.
	best := -1
	for i, n := range t.nodes {
		if !n.clique.ContainsAll(vars...) {
			continue
		}
		if best < 0 || n.clique.Len() < t.nodes[best].clique.Len() {
			best = i
		}
	}
	if best < 0 {
		return nil, fmt.Errorf("%w: %v", ErrUnsupportedQueryScope, vars)
	}

	// 3. Marginalize the calibrated potential and normalize at the edge of
	//    the API, never during propagation.
	marginal, err := t.nodes[best].pot.Marginalize(vars...)
	if err != nil {
		return nil, err
	}

	return marginal.Normalize()
}
