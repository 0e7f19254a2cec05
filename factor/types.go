// Package factor implements the dense table algebra behind junction-tree
// propagation: potentials over discrete variable scopes, conditional
// probability tables (CPTs), and the multiply / sum-out / divide /
// normalize operations used to compute and absorb messages.
//
// Representation is canonical and single-form: a Factor's scope is always
// sorted lexicographically by variable ID and its values are stored
// row-major over that order with the last scope variable varying fastest.
// Constructors accept any scope order and re-index into the canonical
// layout, so two factors over the same variables always align cell-for-cell
// regardless of how they were built.
//
// Errors:
//
//	ErrScopeMismatch  - operation over variables absent from a scope, or
//	                    conflicting domains for a shared variable.
//	ErrUnknownState   - a state label not present in a variable's domain.
//	ErrBadTable       - value slice length does not match the scope size.
//	ErrNegativeValue  - a potential entry below zero.
//	ErrZeroMass       - normalization of an all-zero table.
//	ErrNotNormalized  - a CPT column fails to sum to one.
package factor

import "errors"

// Sentinel errors for factor operations.
var (
	// ErrScopeMismatch indicates a factor operation referenced a variable
	// missing from the relevant scope, a duplicated scope variable, or two
	// factors disagreeing on a shared variable's domain.
	ErrScopeMismatch = errors.New("factor: variable scope mismatch")

	// ErrUnknownState indicates a state label outside a variable's domain.
	ErrUnknownState = errors.New("factor: unknown state label")

	// ErrBadTable indicates a value slice whose length does not equal the
	// product of the scope's domain sizes.
	ErrBadTable = errors.New("factor: table length does not match scope")

	// ErrNegativeValue indicates a negative potential entry. Potentials are
	// unnormalized non-negative masses throughout propagation.
	ErrNegativeValue = errors.New("factor: negative value")

	// ErrZeroMass indicates an attempt to normalize a table summing to zero.
	ErrZeroMass = errors.New("factor: cannot normalize zero-mass table")

	// ErrNotNormalized indicates a CPT whose entries do not sum to one over
	// the child's domain for some parent assignment.
	ErrNotNormalized = errors.New("factor: CPT rows must sum to one")
)

// NormTolerance is the absolute tolerance used when validating that CPT
// columns sum to one.
const NormTolerance = 1e-9

// Factor is a dense table of non-negative values over a discrete variable
// scope. The zero value is not usable; build factors with New, FromValues,
// or the CPT conversion.
//
// Internal layout: scope[i] is aligned with states[i] and stride[i];
// values[idx] holds the entry whose multi-index (a_0, ..., a_k) satisfies
// idx = Σ a_i * stride[i]. The last scope variable varies fastest.
type Factor struct {
	scope  []string   // sorted variable IDs
	states [][]string // states[i] = ordered domain of scope[i]
	stride []int      // stride[i] = Π card(scope[j]) for j > i
	values []float64  // row-major table, len = Π card(scope[i])
}

// Scope returns the factor's variable IDs in canonical (sorted) order.
func (f *Factor) Scope() []string {
	scope := make([]string, len(f.scope))
	copy(scope, f.scope)

	return scope
}

// States returns the ordered domain of v and whether v is in scope.
func (f *Factor) States(v string) ([]string, bool) {
	i, ok := f.axis(v)
	if !ok {
		return nil, false
	}
	domain := make([]string, len(f.states[i]))
	copy(domain, f.states[i])

	return domain, true
}

// Len returns the number of table entries.
func (f *Factor) Len() int { return len(f.values) }

// Values returns a copy of the table in canonical row-major order.
func (f *Factor) Values() []float64 {
	values := make([]float64, len(f.values))
	copy(values, f.values)

	return values
}

// Sum returns the total mass of the table.
func (f *Factor) Sum() float64 {
	total := 0.0
	for _, v := range f.values {
		total += v
	}

	return total
}

// axis returns the scope index of v via binary search over the sorted scope.
func (f *Factor) axis(v string) (int, bool) {
	lo, hi := 0, len(f.scope)
	for lo < hi {
		mid := (lo + hi) / 2
		if f.scope[mid] < v {
			lo = mid + 1
		} else {
			hi = mid
		}
	}
	if lo < len(f.scope) && f.scope[lo] == v {
		return lo, true
	}

	return 0, false
}
