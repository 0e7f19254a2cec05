package factor_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/katalvlaran/junctiontree/core"
	"github.com/katalvlaran/junctiontree/factor"
)

// buildModel declares the binary variables A and B with B's parent A.
func buildModel(t *testing.T) *core.DirectedGraph {
	t.Helper()
	dg := core.NewDirectedGraph()
	require.NoError(t, dg.AddVariable("A", "t", "f"))
	require.NoError(t, dg.AddVariable("B", "t", "f"))
	require.NoError(t, dg.SetParents("B", "A"))

	return dg
}

// TestCPT_Validate_Accepts verifies a proper table passes.
func TestCPT_Validate_Accepts(t *testing.T) {
	dg := buildModel(t)

	// Root CPT: one row summing to one.
	root := factor.CPT{Child: "A", Table: []float64{0.6, 0.4}}
	assert.NoError(t, root.Validate(dg))

	// Conditional CPT: one row per parent state.
	cond := factor.CPT{Child: "B", Parents: []string{"A"}, Table: []float64{0.7, 0.3, 0.2, 0.8}}
	assert.NoError(t, cond.Validate(dg))
}

// TestCPT_Validate_Rejections covers the full validation matrix.
func TestCPT_Validate_Rejections(t *testing.T) {
	dg := buildModel(t)

	// Unknown child.
	err := factor.CPT{Child: "Z", Table: []float64{1}}.Validate(dg)
	assert.ErrorIs(t, err, core.ErrVariableNotFound)

	// Unknown parent.
	err = factor.CPT{Child: "B", Parents: []string{"Z"}, Table: []float64{1, 0, 1, 0}}.Validate(dg)
	assert.ErrorIs(t, err, core.ErrVariableNotFound)

	// Repeated parent.
	err = factor.CPT{
		Child:   "B",
		Parents: []string{"A", "A"},
		Table:   []float64{1, 0, 1, 0, 1, 0, 1, 0},
	}.Validate(dg)
	assert.ErrorIs(t, err, factor.ErrScopeMismatch)

	// Wrong table length.
	err = factor.CPT{Child: "A", Table: []float64{0.6, 0.3, 0.1}}.Validate(dg)
	assert.ErrorIs(t, err, factor.ErrBadTable)

	// Negative probability.
	err = factor.CPT{Child: "A", Table: []float64{1.5, -0.5}}.Validate(dg)
	assert.ErrorIs(t, err, factor.ErrNegativeValue)

	// Row not summing to one.
	err = factor.CPT{Child: "A", Table: []float64{0.6, 0.6}}.Validate(dg)
	assert.ErrorIs(t, err, factor.ErrNotNormalized)

	// Only one row of a conditional table broken.
	err = factor.CPT{
		Child:   "B",
		Parents: []string{"A"},
		Table:   []float64{0.7, 0.3, 0.9, 0.9},
	}.Validate(dg)
	assert.ErrorIs(t, err, factor.ErrNotNormalized)
}

// TestCPT_Factor verifies the layout contract: parents row-major, child
// fastest, mapped into the canonical dense form.
func TestCPT_Factor(t *testing.T) {
	dg := buildModel(t)
	cond := factor.CPT{Child: "B", Parents: []string{"A"}, Table: []float64{0.7, 0.3, 0.2, 0.8}}
	require.NoError(t, cond.Validate(dg))

	f, err := cond.Factor(dg)
	require.NoError(t, err)
	assert.Equal(t, []string{"A", "B"}, f.Scope())

	// Entry (A=a, B=b) must match Table[row(a)*2 + col(b)].
	cases := []struct {
		a, b string
		want float64
	}{
		{"t", "t", 0.7},
		{"t", "f", 0.3},
		{"f", "t", 0.2},
		{"f", "f", 0.8},
	}
	for _, c := range cases {
		v, atErr := f.At(map[string]string{"A": c.a, "B": c.b})
		require.NoError(t, atErr)
		assert.InDelta(t, c.want, v, 1e-12, "P(B=%s|A=%s)", c.b, c.a)
	}
}

// TestCPT_Factor_UnknownVariable verifies conversion fails for variables
// missing from the model.
func TestCPT_Factor_UnknownVariable(t *testing.T) {
	dg := buildModel(t)
	_, err := factor.CPT{Child: "Z", Table: []float64{1}}.Factor(dg)
	assert.ErrorIs(t, err, core.ErrVariableNotFound)
}
