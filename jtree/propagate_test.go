package jtree_test

import (
	"context"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/katalvlaran/junctiontree/core"
	"github.com/katalvlaran/junctiontree/factor"
	"github.com/katalvlaran/junctiontree/jtree"
)

// starModel builds R with four conditionally independent children
// X1..X4. Its tree is a star of four cliques around the root, which is
// the smallest shape where collect has concurrent sibling subtrees.
func starModel(t *testing.T) (*core.DirectedGraph, []factor.CPT) {
	t.Helper()
	dg := core.NewDirectedGraph()
	require.NoError(t, dg.AddVariable("R", "t", "f"))
	cpts := []factor.CPT{{Child: "R", Table: []float64{0.3, 0.7}}}
	for _, id := range []string{"X1", "X2", "X3", "X4"} {
		require.NoError(t, dg.AddVariable(id, "t", "f"))
		require.NoError(t, dg.SetParents(id, "R"))
		cpts = append(cpts, factor.CPT{
			Child:   id,
			Parents: []string{"R"},
			Table:   []float64{0.8, 0.2, 0.4, 0.6},
		})
	}

	return dg, cpts
}

// TestPropagate_Gates verifies the preconditions and option checks.
func TestPropagate_Gates(t *testing.T) {
	tree, _, _ := diamondTree(t)

	err := tree.Propagate(jtree.WithRoot("Z"))
	assert.ErrorIs(t, err, jtree.ErrRootNotFound)

	err = tree.Propagate(jtree.WithEvidence(map[string]string{"Z": "t"}))
	assert.ErrorIs(t, err, jtree.ErrInvalidEvidence)
}

// TestPropagate_NoPotentials verifies propagation refuses an
// uninitialized tree.
func TestPropagate_NoPotentials(t *testing.T) {
	tree, _, _ := diamondTree(t)
	fresh, err := jtree.Build(tree.Cliques())
	require.NoError(t, err)

	err = fresh.Propagate()
	assert.ErrorIs(t, err, jtree.ErrNoPotentials)
}

// TestMarginal_AgainstEnumeration verifies every single-variable and
// in-clique pairwise marginal against brute-force enumeration.
func TestMarginal_AgainstEnumeration(t *testing.T) {
	dg, cpts := diamondModel(t)
	tree, err := jtree.FromNetwork(dg, cpts)
	require.NoError(t, err)

	queries := [][]string{
		{"A"}, {"B"}, {"C"}, {"D"},
		{"B", "C"}, {"A", "B"}, {"C", "D"},
	}
	for _, query := range queries {
		got, mErr := tree.Marginal(query...)
		require.NoError(t, mErr)
		want := bruteMarginal(t, dg, cpts, query, nil)
		enumerate(t, dg, query, func(assignment map[string]string) {
			v, atErr := got.At(assignment)
			require.NoError(t, atErr)
			assert.InDelta(t, want[queryKey(query, assignment)], v, 1e-9,
				"marginal over %v at %v", query, assignment)
		})
	}
}

// TestMarginal_UnsupportedScope verifies queries outside any single
// clique are rejected rather than silently approximated.
func TestMarginal_UnsupportedScope(t *testing.T) {
	dg, cpts := diamondModel(t)
	tree, err := jtree.FromNetwork(dg, cpts)
	require.NoError(t, err)

	_, err = tree.Marginal()
	assert.ErrorIs(t, err, jtree.ErrUnsupportedQueryScope)

	// A and D never share a clique in the diamond tree.
	_, err = tree.Marginal("A", "D")
	assert.ErrorIs(t, err, jtree.ErrUnsupportedQueryScope)

	_, err = tree.Marginal("A", "Z")
	assert.ErrorIs(t, err, jtree.ErrUnsupportedQueryScope)
}

// TestMarginal_RequiresPropagation verifies the calibration gate.
func TestMarginal_RequiresPropagation(t *testing.T) {
	tree, _, _ := diamondTree(t)
	_, err := tree.Marginal("A")
	assert.ErrorIs(t, err, jtree.ErrNotPropagated)
}

// TestPropagate_Consistency verifies the calibration property: both
// cliques adjacent to a separator agree on its marginal, and that
// marginal equals the stored separator potential.
func TestPropagate_Consistency(t *testing.T) {
	tree, _, _ := diamondTree(t)
	require.NoError(t, tree.Propagate())

	abc, err := tree.Potential("A,B,C")
	require.NoError(t, err)
	bcd, err := tree.Potential("B,C,D")
	require.NoError(t, err)
	sep, err := tree.SeparatorPotential("A,B,C", "B,C,D")
	require.NoError(t, err)

	left, err := abc.Marginalize("B", "C")
	require.NoError(t, err)
	right, err := bcd.Marginalize("B", "C")
	require.NoError(t, err)

	opt := cmpopts.EquateApprox(0, 1e-9)
	assert.Empty(t, cmp.Diff(left.Values(), right.Values(), opt))
	assert.Empty(t, cmp.Diff(left.Values(), sep.Values(), opt))
}

// TestPropagate_ConservationOfMass verifies the product of clique
// potentials divided by the product of separator potentials still equals
// the joint distribution after calibration.
func TestPropagate_ConservationOfMass(t *testing.T) {
	tree, dg, cpts := diamondTree(t)
	require.NoError(t, tree.Propagate())

	abc, err := tree.Potential("A,B,C")
	require.NoError(t, err)
	bcd, err := tree.Potential("B,C,D")
	require.NoError(t, err)
	sep, err := tree.SeparatorPotential("A,B,C", "B,C,D")
	require.NoError(t, err)

	product, err := abc.Multiply(bcd)
	require.NoError(t, err)
	joint, err := product.Divide(sep)
	require.NoError(t, err)

	enumerate(t, dg, dg.Variables(), func(assignment map[string]string) {
		got, atErr := joint.At(assignment)
		require.NoError(t, atErr)
		assert.InDelta(t, jointProb(t, dg, cpts, assignment), got, 1e-9)
	})
}

// TestPropagate_Idempotent verifies a second propagation is a fixed
// point: calibrated potentials do not move.
func TestPropagate_Idempotent(t *testing.T) {
	tree, _, _ := diamondTree(t)
	require.NoError(t, tree.Propagate())

	abc, err := tree.Potential("A,B,C")
	require.NoError(t, err)
	bcd, err := tree.Potential("B,C,D")
	require.NoError(t, err)
	before := [][]float64{abc.Values(), bcd.Values()}

	require.NoError(t, tree.Propagate())

	abc, err = tree.Potential("A,B,C")
	require.NoError(t, err)
	bcd, err = tree.Potential("B,C,D")
	require.NoError(t, err)

	opt := cmpopts.EquateApprox(0, 1e-12)
	assert.Empty(t, cmp.Diff(before[0], abc.Values(), opt))
	assert.Empty(t, cmp.Diff(before[1], bcd.Values(), opt))
}

// TestPropagate_RootChoice verifies the answer does not depend on which
// clique anchors the collect/distribute schedule.
func TestPropagate_RootChoice(t *testing.T) {
	dg, cpts := diamondModel(t)

	defaultRoot, err := jtree.FromNetwork(dg, cpts)
	require.NoError(t, err)
	otherRoot, err := jtree.FromNetwork(dg, cpts,
		jtree.WithPropagation(jtree.WithRoot("B,C,D")))
	require.NoError(t, err)

	a1, err := defaultRoot.Marginal("D")
	require.NoError(t, err)
	a2, err := otherRoot.Marginal("D")
	require.NoError(t, err)
	assert.Empty(t, cmp.Diff(a1.Values(), a2.Values(), cmpopts.EquateApprox(0, 1e-12)))
}

// TestPropagate_Evidence verifies conditioning: posteriors with evidence
// entered before propagation match brute-force conditionals.
func TestPropagate_Evidence(t *testing.T) {
	dg, cpts := diamondModel(t)
	evidence := map[string]string{"D": "t"}
	tree, err := jtree.FromNetwork(dg, cpts,
		jtree.WithPropagation(jtree.WithEvidence(evidence)))
	require.NoError(t, err)

	for _, query := range [][]string{{"A"}, {"B"}, {"C"}} {
		got, mErr := tree.Marginal(query...)
		require.NoError(t, mErr)
		want := bruteMarginal(t, dg, cpts, query, evidence)
		enumerate(t, dg, query, func(assignment map[string]string) {
			v, atErr := got.At(assignment)
			require.NoError(t, atErr)
			assert.InDelta(t, want[queryKey(query, assignment)], v, 1e-9,
				"posterior over %v at %v given D=t", query, assignment)
		})
	}
}

// TestPropagate_EvidenceUnknownState verifies a state outside the
// variable's domain is reported, not dropped. Both the evidence sentinel
// and the underlying factor error must stay matchable in the chain.
func TestPropagate_EvidenceUnknownState(t *testing.T) {
	tree, _, _ := diamondTree(t)

	err := tree.Propagate(jtree.WithEvidence(map[string]string{"D": "maybe"}))
	assert.ErrorIs(t, err, jtree.ErrInvalidEvidence)
	assert.ErrorIs(t, err, factor.ErrUnknownState)
}

// TestPropagate_ImpossibleEvidence verifies zero posterior mass surfaces
// on query, using a deterministic gate that forbids the observed state.
func TestPropagate_ImpossibleEvidence(t *testing.T) {
	dg := core.NewDirectedGraph()
	require.NoError(t, dg.AddVariable("A", "t", "f"))
	require.NoError(t, dg.AddVariable("B", "t", "f"))
	require.NoError(t, dg.SetParents("B", "A"))
	cpts := []factor.CPT{
		{Child: "A", Table: []float64{1, 0}},
		{Child: "B", Parents: []string{"A"}, Table: []float64{1, 0, 0, 1}},
	}

	tree, err := jtree.FromNetwork(dg, cpts,
		jtree.WithPropagation(jtree.WithEvidence(map[string]string{"B": "f"})))
	require.NoError(t, err)

	_, err = tree.Marginal("A")
	assert.ErrorIs(t, err, factor.ErrZeroMass)
}

// TestPropagate_ParallelMatchesSequential verifies concurrent collect on
// the star tree produces the same calibrated marginals as the serial
// schedule.
func TestPropagate_ParallelMatchesSequential(t *testing.T) {
	dg, cpts := starModel(t)

	serial, err := jtree.FromNetwork(dg, cpts)
	require.NoError(t, err)
	parallel, err := jtree.FromNetwork(dg, cpts,
		jtree.WithPropagation(jtree.WithParallelCollect()))
	require.NoError(t, err)

	opt := cmpopts.EquateApprox(0, 1e-12)
	for _, v := range dg.Variables() {
		s, mErr := serial.Marginal(v)
		require.NoError(t, mErr)
		p, mErr := parallel.Marginal(v)
		require.NoError(t, mErr)
		assert.Empty(t, cmp.Diff(s.Values(), p.Values(), opt), "marginal of %s", v)
	}

	// Spot-check against enumeration: P(X2=t) = 0.3*0.8 + 0.7*0.4.
	x2, err := parallel.Marginal("X2")
	require.NoError(t, err)
	v, err := x2.At(map[string]string{"X2": "t"})
	require.NoError(t, err)
	assert.InDelta(t, 0.52, v, 1e-9)
}

// TestPropagate_Cancellation verifies an already-cancelled context stops
// propagation before it runs.
func TestPropagate_Cancellation(t *testing.T) {
	tree, _, _ := diamondTree(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := tree.Propagate(jtree.WithCancelContext(ctx))
	assert.ErrorIs(t, err, context.Canceled)
	assert.False(t, tree.Propagated())
}
