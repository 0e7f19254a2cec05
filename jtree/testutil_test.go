package jtree_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/katalvlaran/junctiontree/core"
	"github.com/katalvlaran/junctiontree/factor"
)

// diamondModel builds the binary diamond network A→B, A→C, B→D, C→D with
// fixed CPTs. It is the workhorse network for every end-to-end inference test:
// small enough to enumerate, shaped so moralization (B–C marriage) and a
// nontrivial separator both matter.
func diamondModel(t *testing.T) (*core.DirectedGraph, []factor.CPT) {
	t.Helper()
	dg := core.NewDirectedGraph()
	for _, id := range []string{"A", "B", "C", "D"} {
		require.NoError(t, dg.AddVariable(id, "t", "f"))
	}
	require.NoError(t, dg.SetParents("B", "A"))
	require.NoError(t, dg.SetParents("C", "A"))
	require.NoError(t, dg.SetParents("D", "B", "C"))

	cpts := []factor.CPT{
		{Child: "A", Table: []float64{0.6, 0.4}},
		{Child: "B", Parents: []string{"A"}, Table: []float64{0.7, 0.3, 0.2, 0.8}},
		{Child: "C", Parents: []string{"A"}, Table: []float64{0.9, 0.1, 0.5, 0.5}},
		{Child: "D", Parents: []string{"B", "C"}, Table: []float64{
			0.95, 0.05, // B=t, C=t
			0.60, 0.40, // B=t, C=f
			0.30, 0.70, // B=f, C=t
			0.10, 0.90, // B=f, C=f
		}},
	}

	return dg, cpts
}

// enumerate calls fn with every full assignment of the given variables.
func enumerate(t *testing.T, dg *core.DirectedGraph, vars []string, fn func(assignment map[string]string)) {
	t.Helper()
	assignment := make(map[string]string, len(vars))
	var recurse func(i int)
	recurse = func(i int) {
		if i == len(vars) {
			fn(assignment)
			return
		}
		domain, err := dg.Domain(vars[i])
		require.NoError(t, err)
		for _, s := range domain {
			assignment[vars[i]] = s
			recurse(i + 1)
		}
		delete(assignment, vars[i])
	}
	recurse(0)
}

// jointProb computes the model probability of a full assignment as the
// product of CPT entries: the reference the junction tree must reproduce.
func jointProb(t *testing.T, dg *core.DirectedGraph, cpts []factor.CPT, assignment map[string]string) float64 {
	t.Helper()
	p := 1.0
	for _, c := range cpts {
		f, err := c.Factor(dg)
		require.NoError(t, err)
		restricted := make(map[string]string, len(c.Scope()))
		for _, v := range c.Scope() {
			restricted[v] = assignment[v]
		}
		v, err := f.At(restricted)
		require.NoError(t, err)
		p *= v
	}

	return p
}

// bruteMarginal computes P(query | evidence) by full enumeration over the
// model's variables, normalized over the query variables.
func bruteMarginal(t *testing.T, dg *core.DirectedGraph, cpts []factor.CPT, query []string, evidence map[string]string) map[string]float64 {
	t.Helper()
	unnormalized := make(map[string]float64)
	total := 0.0
	enumerate(t, dg, dg.Variables(), func(assignment map[string]string) {
		for v, s := range evidence {
			if assignment[v] != s {
				return
			}
		}
		p := jointProb(t, dg, cpts, assignment)
		key := ""
		for _, v := range query {
			key += v + "=" + assignment[v] + ";"
		}
		unnormalized[key] += p
		total += p
	})
	require.Greater(t, total, 0.0)

	normalized := make(map[string]float64, len(unnormalized))
	for k, v := range unnormalized {
		normalized[k] = v / total
	}

	return normalized
}

// queryKey formats an assignment of the query variables the same way
// bruteMarginal keys its output.
func queryKey(query []string, assignment map[string]string) string {
	key := ""
	for _, v := range query {
		key += v + "=" + assignment[v] + ";"
	}

	return key
}
