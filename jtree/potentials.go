package jtree

import (
	"fmt"
	"sort"

	"github.com/katalvlaran/junctiontree/core"
	"github.com/katalvlaran/junctiontree/factor"
)

// InitPotentials assigns initial potentials: every clique starts as the
// unit table over its own scope, every separator as the unit table over
// its scope, and each CPT is multiplied into exactly one clique covering
// its variables. The product of all clique potentials divided by the
// product of all separator potentials then equals the model's joint
// distribution, which is the invariant absorption preserves.
//
// CPTs are validated against dg and placed in a deterministic order
// (sorted by child ID) into the first covering clique in node order.
// Calling InitPotentials again resets the tree to its unpropagated state,
// so a tree can be reused with updated CPTs.
//
// Returns ErrNilModel for a nil model, validation errors from the factor
// package, core.ErrVariableNotFound for clique variables missing from dg,
// and ErrCPTPlacement when a CPT's scope fits no clique.
// Complexity: O(Σ clique table sizes + #CPTs · max table size).
func (t *Tree) InitPotentials(dg *core.DirectedGraph, cpts []factor.CPT) error {
	// 1. Validate inputs up front so a failure leaves the tree untouched.
	if dg == nil {
		return ErrNilModel
	}
	for _, c := range cpts {
		if err := c.Validate(dg); err != nil {
			return err
		}
	}

	// 2. Unit potentials over every clique and separator scope.
	pots := make([]*factor.Factor, len(t.nodes))
	for i, n := range t.nodes {
		unit, err := unitOver(dg, n.clique.Variables())
		if err != nil {
			return err
		}
		pots[i] = unit
	}
	seps := make([]*factor.Factor, len(t.edges))
	for i, e := range t.edges {
		unit, err := unitOver(dg, e.sep)
		if err != nil {
			return err
		}
		seps[i] = unit
	}

	// 3. Place each CPT into the first clique covering its scope. Sorting
	//    by child ID makes placement independent of the caller's CPT order.
	ordered := make([]factor.CPT, len(cpts))
	copy(ordered, cpts)
	sort.Slice(ordered, func(a, b int) bool { return ordered[a].Child < ordered[b].Child })
	for _, c := range ordered {
		scope := c.Scope()
		placed := false
		for i, n := range t.nodes {
			if !n.clique.ContainsAll(scope...) {
				continue
			}
			table, err := c.Factor(dg)
			if err != nil {
				return err
			}
			pots[i], err = pots[i].Multiply(table)
			if err != nil {
				return err
			}
			placed = true
			break
		}
		if !placed {
			return fmt.Errorf("%w: CPT for %q over %v", ErrCPTPlacement, c.Child, scope)
		}
	}

	// 4. Commit.
	for i := range t.nodes {
		t.nodes[i].pot = pots[i]
	}
	for i := range t.edges {
		t.edges[i].pot = seps[i]
	}
	t.propagated = false

	return nil
}

// Potential returns the current potential of cliqueID: the initial product
// of placed CPTs before propagation, the calibrated joint marginal over
// the clique's scope (unnormalized) after.
// Returns ErrCliqueNotFound for an unknown ID and ErrNoPotentials before
// InitPotentials.
func (t *Tree) Potential(cliqueID string) (*factor.Factor, error) {
	i, ok := t.index[cliqueID]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrCliqueNotFound, cliqueID)
	}
	if t.nodes[i].pot == nil {
		return nil, ErrNoPotentials
	}

	return t.nodes[i].pot, nil
}

// SeparatorPotential returns the current separator potential between two
// adjacent cliques. Returns ErrCliqueNotFound, ErrNotAdjacent, or
// ErrNoPotentials accordingly.
func (t *Tree) SeparatorPotential(aID, bID string) (*factor.Factor, error) {
	e, err := t.edgeBetween(aID, bID)
	if err != nil {
		return nil, err
	}
	if e.pot == nil {
		return nil, ErrNoPotentials
	}

	return e.pot, nil
}

// unitOver builds the all-ones factor over the given variables with
// domains pulled from dg.
func unitOver(dg *core.DirectedGraph, vars []string) (*factor.Factor, error) {
	states := make([][]string, len(vars))
	for i, v := range vars {
		domain, err := dg.Domain(v)
		if err != nil {
			return nil, err
		}
		states[i] = domain
	}

	return factor.New(vars, states)
}
