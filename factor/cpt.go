package factor

import (
	"fmt"

	"github.com/katalvlaran/junctiontree/core"
)

// CPT is a conditional probability table P(Child | Parents). Table is laid
// out row-major over (Parents..., Child) in the declared parent order with
// the child's state varying fastest: for binary A with binary parent B,
// Table = [P(a0|b0), P(a1|b0), P(a0|b1), P(a1|b1)].
//
// A CPT is plain data; Validate and Factor interpret it against the model's
// variable catalog.
type CPT struct {
	// Child is the variable whose distribution the table defines.
	Child string

	// Parents are the conditioning variables, in table layout order.
	Parents []string

	// Table holds the probabilities, one entry per joint (parents, child)
	// assignment.
	Table []float64
}

// Scope returns the CPT's variables in table layout order (parents first,
// child last).
func (c CPT) Scope() []string {
	scope := make([]string, 0, len(c.Parents)+1)
	scope = append(scope, c.Parents...)
	scope = append(scope, c.Child)

	return scope
}

// Validate checks c against the model: every scope variable must be
// declared in dg, the table length must match the joint domain size, all
// entries must be non-negative, and for every parent assignment the
// entries must sum to one over the child's domain (within NormTolerance).
//
// Returns core.ErrVariableNotFound, ErrScopeMismatch, ErrBadTable,
// ErrNegativeValue, or ErrNotNormalized accordingly.
// Complexity: O(len(Table))
func (c CPT) Validate(dg *core.DirectedGraph) error {
	// 1. Resolve domains, which also confirms every variable exists.
	childCard, err := dg.Cardinality(c.Child)
	if err != nil {
		return err
	}
	rows := 1
	seen := map[string]struct{}{c.Child: {}}
	for _, p := range c.Parents {
		if _, dup := seen[p]; dup {
			return fmt.Errorf("%w: %q repeated in CPT scope", ErrScopeMismatch, p)
		}
		seen[p] = struct{}{}
		card, cardErr := dg.Cardinality(p)
		if cardErr != nil {
			return cardErr
		}
		rows *= card
	}

	// 2. Shape check.
	if len(c.Table) != rows*childCard {
		return fmt.Errorf("%w: CPT for %q has %d entries, want %d", ErrBadTable, c.Child, len(c.Table), rows*childCard)
	}

	// 3. Per parent assignment, entries over the child must sum to one.
	for r := 0; r < rows; r++ {
		sum := 0.0
		for s := 0; s < childCard; s++ {
			v := c.Table[r*childCard+s]
			if v < 0 {
				return fmt.Errorf("%w: %g in CPT for %q", ErrNegativeValue, v, c.Child)
			}
			sum += v
		}
		if sum < 1-NormTolerance || sum > 1+NormTolerance {
			return fmt.Errorf("%w: CPT for %q, parent row %d sums to %g", ErrNotNormalized, c.Child, r, sum)
		}
	}

	return nil
}

// Factor converts the CPT into a canonical dense factor over
// (Parents..., Child), pulling domains from dg. The caller should Validate
// first; Factor repeats only the structural checks needed to index safely.
// Complexity: O(len(Table))
func (c CPT) Factor(dg *core.DirectedGraph) (*Factor, error) {
	scope := c.Scope()
	states := make([][]string, len(scope))
	for i, v := range scope {
		domain, err := dg.Domain(v)
		if err != nil {
			return nil, err
		}
		states[i] = domain
	}

	// Table layout (parents row-major, child fastest) is exactly row-major
	// over the scope (Parents..., Child), so FromValues re-indexes directly.
	return FromValues(scope, states, c.Table)
}
