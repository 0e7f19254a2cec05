package factor

import (
	"fmt"
	"sort"
)

// New builds the unit potential (all entries 1) over the given scope.
// The scope may be supplied in any order; it is canonicalized internally.
// An empty scope yields the scalar factor with single value 1, which acts
// as the multiplicative identity.
//
// Returns ErrScopeMismatch for duplicated scope variables and ErrBadTable
// via the shared validation path for degenerate domains.
// Complexity: O(T) where T = Π domain sizes.
func New(scope []string, states [][]string) (*Factor, error) {
	f, err := newShell(scope, states)
	if err != nil {
		return nil, err
	}
	for i := range f.values {
		f.values[i] = 1
	}

	return f, nil
}

// FromValues builds a factor from a value table laid out row-major over the
// *provided* scope order (last provided variable varying fastest), then
// re-indexes into the canonical sorted layout. This is the single
// conversion point between caller-facing orderings and the internal form.
//
// Returns ErrBadTable if len(values) != Π domain sizes, ErrNegativeValue
// for any entry below zero, and ErrScopeMismatch for duplicate variables.
// Complexity: O(T)
func FromValues(scope []string, states [][]string, values []float64) (*Factor, error) {
	// 1. Build the canonical shell and remember the permutation from
	//    canonical axis back to the caller's axis.
	f, perm, err := newShellPerm(scope, states)
	if err != nil {
		return nil, err
	}
	if len(values) != len(f.values) {
		return nil, fmt.Errorf("%w: got %d entries, want %d", ErrBadTable, len(values), len(f.values))
	}

	// 2. Strides of the caller's layout, aligned with the caller's order.
	srcStride := strides(states)

	// 3. Per canonical axis, the matching source stride.
	axisStride := make([]int, len(f.scope))
	for i := range f.scope {
		axisStride[i] = srcStride[perm[i]]
	}

	// 4. Odometer walk over canonical indices, reading the source index.
	pos := make([]int, len(f.scope))
	src := 0
	for i := range f.values {
		v := values[src]
		if v < 0 {
			return nil, fmt.Errorf("%w: %g at entry %d", ErrNegativeValue, v, src)
		}
		f.values[i] = v
		src += advance(pos, f, axisStride)
	}

	return f, nil
}

// Multiply returns the product of f and g over the union of their scopes,
// broadcasting each operand as constant over the variables it lacks.
// Neither operand is modified.
//
// Returns ErrScopeMismatch if a shared variable carries different domains.
// Complexity: O(T_result)
func (f *Factor) Multiply(g *Factor) (*Factor, error) {
	// 1. Merge the two sorted scopes, checking shared-variable domains.
	scope, states, err := mergeScopes(f, g)
	if err != nil {
		return nil, err
	}
	out, err := newShell(scope, states)
	if err != nil {
		return nil, err
	}

	// 2. Align each operand's strides with the result's axes (0 = absent,
	//    i.e. the operand is constant along that axis).
	fs, err := alignStrides(out, f)
	if err != nil {
		return nil, err
	}
	gs, err := alignStrides(out, g)
	if err != nil {
		return nil, err
	}

	// 3. Single odometer pass over the result table.
	pos := make([]int, len(out.scope))
	for i := range out.values {
		out.values[i] = f.values[offsetOf(pos, fs)] * g.values[offsetOf(pos, gs)]
		advance(pos, out, nil)
	}

	return out, nil
}

// SumOut marginalizes the listed variables away by summation, returning a
// factor over the remaining scope. Summing out every variable yields the
// scalar factor holding the total mass.
//
// Returns ErrScopeMismatch if any listed variable is absent from the scope
// or listed twice.
// Complexity: O(T_f)
func (f *Factor) SumOut(vars ...string) (*Factor, error) {
	// 1. Mark the axes to eliminate.
	drop := make(map[string]struct{}, len(vars))
	for _, v := range vars {
		if _, dup := drop[v]; dup {
			return nil, fmt.Errorf("%w: %q listed twice", ErrScopeMismatch, v)
		}
		if _, ok := f.axis(v); !ok {
			return nil, fmt.Errorf("%w: %q not in scope %v", ErrScopeMismatch, v, f.scope)
		}
		drop[v] = struct{}{}
	}

	// 2. Build the reduced shell (scope order is preserved, so it stays sorted).
	keepScope := make([]string, 0, len(f.scope)-len(drop))
	keepStates := make([][]string, 0, cap(keepScope))
	for i, v := range f.scope {
		if _, gone := drop[v]; gone {
			continue
		}
		keepScope = append(keepScope, v)
		keepStates = append(keepStates, f.states[i])
	}
	out, err := newShell(keepScope, keepStates)
	if err != nil {
		return nil, err
	}

	// 3. Per f-axis, the result stride (0 for eliminated axes), then a
	//    single accumulation pass over f's table.
	outStride := make([]int, len(f.scope))
	for i, v := range f.scope {
		if _, gone := drop[v]; gone {
			continue
		}
		j, _ := out.axis(v)
		outStride[i] = out.stride[j]
	}
	pos := make([]int, len(f.scope))
	for i := range f.values {
		out.values[offsetOf(pos, outStride)] += f.values[i]
		advance(pos, f, nil)
	}

	return out, nil
}

// Marginalize sums out everything except the listed variables. The keep
// order is irrelevant; the result scope is canonical.
//
// Returns ErrScopeMismatch if a listed variable is absent or duplicated.
// Complexity: O(T_f)
func (f *Factor) Marginalize(keep ...string) (*Factor, error) {
	// 1. Validate the keep set.
	keepSet := make(map[string]struct{}, len(keep))
	for _, v := range keep {
		if _, dup := keepSet[v]; dup {
			return nil, fmt.Errorf("%w: %q listed twice", ErrScopeMismatch, v)
		}
		if _, ok := f.axis(v); !ok {
			return nil, fmt.Errorf("%w: %q not in scope %v", ErrScopeMismatch, v, f.scope)
		}
		keepSet[v] = struct{}{}
	}

	// 2. Delegate to SumOut over the complement.
	drop := make([]string, 0, len(f.scope)-len(keepSet))
	for _, v := range f.scope {
		if _, kept := keepSet[v]; !kept {
			drop = append(drop, v)
		}
	}

	return f.SumOut(drop...)
}

// Normalize returns a copy scaled so the table sums to one.
// Returns ErrZeroMass if the table sums to zero.
// Complexity: O(T_f)
func (f *Factor) Normalize() (*Factor, error) {
	total := f.Sum()
	if total == 0 {
		return nil, ErrZeroMass
	}
	out := f.clone()
	for i := range out.values {
		out.values[i] /= total
	}

	return out, nil
}

// Divide returns f / g elementwise, broadcasting g over the variables it
// lacks. g's scope must be a subset of f's scope. Entries where g is zero
// yield zero: in junction-tree absorption a zero separator entry implies
// the corresponding numerator mass is also zero, so 0/0 := 0 is the
// correct convention and any other x/0 cannot arise from consistent
// potentials.
//
// Returns ErrScopeMismatch if g's scope is not contained in f's or a
// shared variable's domain differs.
// Complexity: O(T_f)
func (f *Factor) Divide(g *Factor) (*Factor, error) {
	// 1. g must broadcast over f, never the reverse.
	gs, err := alignStrides(f, g)
	if err != nil {
		return nil, err
	}
	for _, v := range g.scope {
		if _, ok := f.axis(v); !ok {
			return nil, fmt.Errorf("%w: divisor variable %q not in scope %v", ErrScopeMismatch, v, f.scope)
		}
	}

	// 2. Elementwise pass with the 0-divisor convention.
	out := f.clone()
	pos := make([]int, len(f.scope))
	for i := range out.values {
		d := g.values[offsetOf(pos, gs)]
		if d == 0 {
			out.values[i] = 0
		} else {
			out.values[i] /= d
		}
		advance(pos, f, nil)
	}

	return out, nil
}

// Reduce zeroes every entry inconsistent with the given evidence (variable
// → observed state). Evidence over variables outside the scope is ignored:
// the caller decides which factors an observation applies to. Reduction is
// idempotent, so applying the same evidence twice is harmless.
//
// Returns ErrUnknownState for an observed state outside a variable's domain.
// Complexity: O(T_f)
func (f *Factor) Reduce(evidence map[string]string) (*Factor, error) {
	// 1. Resolve each applicable observation to an axis/state index pair.
	type pin struct{ axis, state int }
	pins := make([]pin, 0, len(evidence))
	for _, v := range f.scope {
		obs, ok := evidence[v]
		if !ok {
			continue
		}
		i, _ := f.axis(v)
		s := stateIndex(f.states[i], obs)
		if s < 0 {
			return nil, fmt.Errorf("%w: %q has no state %q", ErrUnknownState, v, obs)
		}
		pins = append(pins, pin{axis: i, state: s})
	}
	if len(pins) == 0 {
		return f.clone(), nil
	}

	// 2. Zero the inconsistent entries.
	out := f.clone()
	pos := make([]int, len(f.scope))
	for i := range out.values {
		for _, p := range pins {
			if pos[p.axis] != p.state {
				out.values[i] = 0
				break
			}
		}
		advance(pos, f, nil)
	}

	return out, nil
}

// At returns the entry for a full assignment of the factor's scope.
// Returns ErrScopeMismatch if any scope variable is missing from the
// assignment and ErrUnknownState for a label outside a domain.
// Complexity: O(|scope|)
func (f *Factor) At(assignment map[string]string) (float64, error) {
	idx := 0
	for i, v := range f.scope {
		label, ok := assignment[v]
		if !ok {
			return 0, fmt.Errorf("%w: assignment missing %q", ErrScopeMismatch, v)
		}
		s := stateIndex(f.states[i], label)
		if s < 0 {
			return 0, fmt.Errorf("%w: %q has no state %q", ErrUnknownState, v, label)
		}
		idx += s * f.stride[i]
	}

	return f.values[idx], nil
}

// clone returns a deep copy of f.
func (f *Factor) clone() *Factor {
	out := &Factor{
		scope:  append([]string(nil), f.scope...),
		states: f.states, // domains are never mutated, sharing is safe
		stride: append([]int(nil), f.stride...),
		values: append([]float64(nil), f.values...),
	}

	return out
}

// newShell allocates a zeroed factor over the canonicalized scope.
func newShell(scope []string, states [][]string) (*Factor, error) {
	f, _, err := newShellPerm(scope, states)
	return f, err
}

// newShellPerm allocates a zeroed factor over the canonicalized scope and
// returns perm, where perm[i] is the caller's axis matching canonical axis i.
func newShellPerm(scope []string, states [][]string) (*Factor, []int, error) {
	if len(scope) != len(states) {
		return nil, nil, fmt.Errorf("%w: %d variables, %d domains", ErrScopeMismatch, len(scope), len(states))
	}
	for i, domain := range states {
		if scope[i] == "" {
			return nil, nil, fmt.Errorf("%w: empty variable ID", ErrScopeMismatch)
		}
		if len(domain) == 0 {
			return nil, nil, fmt.Errorf("%w: empty domain for %q", ErrBadTable, scope[i])
		}
	}

	// Sort axes by variable ID, carrying the permutation.
	perm := make([]int, len(scope))
	for i := range perm {
		perm[i] = i
	}
	sort.Slice(perm, func(a, b int) bool { return scope[perm[a]] < scope[perm[b]] })

	sortedScope := make([]string, len(scope))
	sortedStates := make([][]string, len(scope))
	for i, p := range perm {
		sortedScope[i] = scope[p]
		sortedStates[i] = append([]string(nil), states[p]...)
	}
	for i := 1; i < len(sortedScope); i++ {
		if sortedScope[i] == sortedScope[i-1] {
			return nil, nil, fmt.Errorf("%w: duplicate variable %q", ErrScopeMismatch, sortedScope[i])
		}
	}

	stride := strides(sortedStates)
	size := 1
	for _, domain := range sortedStates {
		size *= len(domain)
	}
	f := &Factor{
		scope:  sortedScope,
		states: sortedStates,
		stride: stride,
		values: make([]float64, size),
	}

	return f, perm, nil
}

// strides computes row-major strides (last axis fastest) for the given domains.
func strides(states [][]string) []int {
	stride := make([]int, len(states))
	acc := 1
	for i := len(states) - 1; i >= 0; i-- {
		stride[i] = acc
		acc *= len(states[i])
	}

	return stride
}

// mergeScopes computes the sorted union scope of two factors, verifying
// that shared variables agree on their domains.
func mergeScopes(f, g *Factor) ([]string, [][]string, error) {
	scope := make([]string, 0, len(f.scope)+len(g.scope))
	states := make([][]string, 0, cap(scope))
	i, j := 0, 0
	for i < len(f.scope) || j < len(g.scope) {
		switch {
		case j == len(g.scope) || (i < len(f.scope) && f.scope[i] < g.scope[j]):
			scope = append(scope, f.scope[i])
			states = append(states, f.states[i])
			i++
		case i == len(f.scope) || g.scope[j] < f.scope[i]:
			scope = append(scope, g.scope[j])
			states = append(states, g.states[j])
			j++
		default: // shared variable: domains must be identical
			if !sameDomain(f.states[i], g.states[j]) {
				return nil, nil, fmt.Errorf("%w: %q has conflicting domains", ErrScopeMismatch, f.scope[i])
			}
			scope = append(scope, f.scope[i])
			states = append(states, f.states[i])
			i++
			j++
		}
	}

	return scope, states, nil
}

// alignStrides maps operand op's strides onto out's axes; absent axes get
// stride 0 (op is constant along them). Shared variables must carry
// identical domains.
func alignStrides(out, op *Factor) ([]int, error) {
	aligned := make([]int, len(out.scope))
	for j, v := range op.scope {
		i, ok := out.axis(v)
		if !ok {
			continue // caller decides whether op ⊆ out is required
		}
		if !sameDomain(out.states[i], op.states[j]) {
			return nil, fmt.Errorf("%w: %q has conflicting domains", ErrScopeMismatch, v)
		}
		aligned[i] = op.stride[j]
	}

	return aligned, nil
}

// advance increments pos as a mixed-radix odometer over f's axes (last axis
// fastest) and, when src strides are supplied, returns the delta to apply
// to a source offset tracked alongside. With src == nil it returns 0.
func advance(pos []int, f *Factor, src []int) int {
	delta := 0
	for ax := len(pos) - 1; ax >= 0; ax-- {
		pos[ax]++
		if src != nil {
			delta += src[ax]
		}
		if pos[ax] < len(f.states[ax]) {
			return delta
		}
		pos[ax] = 0
		if src != nil {
			delta -= src[ax] * len(f.states[ax])
		}
	}

	return delta
}

// offsetOf computes Σ pos[i]*stride[i].
func offsetOf(pos, stride []int) int {
	off := 0
	for i, p := range pos {
		off += p * stride[i]
	}

	return off
}

// stateIndex returns the index of label in domain, or -1.
func stateIndex(domain []string, label string) int {
	for i, s := range domain {
		if s == label {
			return i
		}
	}

	return -1
}

// sameDomain reports whether two domains are identical label-for-label.
func sameDomain(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}

	return true
}
