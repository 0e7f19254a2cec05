package core

import (
	"fmt"
	"sort"
)

// AddVariable declares a discrete variable with the given ordered domain.
// Returns ErrEmptyVariableID for an empty ID, ErrEmptyDomain for an empty
// state list, and ErrDuplicateVariable if the ID was already declared.
// Complexity: O(|states|)
func (g *DirectedGraph) AddVariable(id string, states ...string) error {
	// 1. Validate identifier and domain.
	if id == "" {
		return ErrEmptyVariableID
	}
	if len(states) == 0 {
		return fmt.Errorf("%w: variable %q", ErrEmptyDomain, id)
	}
	if _, exists := g.vars[id]; exists {
		return fmt.Errorf("%w: %q", ErrDuplicateVariable, id)
	}

	// 2. Register the variable with a private copy of its domain so later
	//    mutation of the caller's slice cannot alias into the model.
	domain := make([]string, len(states))
	copy(domain, states)
	g.vars[id] = Variable{ID: id, States: domain}
	g.parents[id] = make(map[string]struct{})

	return nil
}

// SetParents assigns the full parent set of child, replacing any previous
// assignment. Both child and every parent must already be declared via
// AddVariable. A variable listed as its own parent is rejected with
// ErrMalformedGraph: such a degenerate state would otherwise surface as a
// self-loop during moralization.
// Complexity: O(|parents|)
func (g *DirectedGraph) SetParents(child string, parents ...string) error {
	// 1. The child must exist.
	if _, ok := g.vars[child]; !ok {
		return fmt.Errorf("%w: child %q", ErrVariableNotFound, child)
	}

	// 2. Every parent must exist and differ from the child.
	set := make(map[string]struct{}, len(parents))
	for _, p := range parents {
		if p == child {
			return fmt.Errorf("%w: %q is its own parent", ErrMalformedGraph, child)
		}
		if _, ok := g.vars[p]; !ok {
			return fmt.Errorf("%w: parent %q of %q", ErrVariableNotFound, p, child)
		}
		set[p] = struct{}{}
	}

	// 3. Replace the parent set atomically.
	g.parents[child] = set

	return nil
}

// Variables returns all variable IDs sorted lexicographically ascending.
// Complexity: O(V log V)
func (g *DirectedGraph) Variables() []string {
	ids := make([]string, 0, len(g.vars))
	for id := range g.vars {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	return ids
}

// HasVariable reports whether id was declared.
// Complexity: O(1)
func (g *DirectedGraph) HasVariable(id string) bool {
	_, ok := g.vars[id]
	return ok
}

// Domain returns the ordered state labels of id.
// Returns ErrVariableNotFound for an undeclared variable.
// Complexity: O(|domain|) for the defensive copy.
func (g *DirectedGraph) Domain(id string) ([]string, error) {
	v, ok := g.vars[id]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrVariableNotFound, id)
	}
	domain := make([]string, len(v.States))
	copy(domain, v.States)

	return domain, nil
}

// Cardinality returns the domain size of id.
// Returns ErrVariableNotFound for an undeclared variable.
// Complexity: O(1)
func (g *DirectedGraph) Cardinality(id string) (int, error) {
	v, ok := g.vars[id]
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrVariableNotFound, id)
	}

	return v.Cardinality(), nil
}

// Parents returns the parent IDs of child sorted lexicographically ascending.
// Returns ErrVariableNotFound for an undeclared child.
// Complexity: O(P log P) where P = |parents|.
func (g *DirectedGraph) Parents(child string) ([]string, error) {
	set, ok := g.parents[child]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrVariableNotFound, child)
	}
	ids := make([]string, 0, len(set))
	for p := range set {
		ids = append(ids, p)
	}
	sort.Strings(ids)

	return ids, nil
}

// Visitation states for the acyclicity DFS.
const (
	white = iota // not visited yet
	gray         // on the recursion stack
	black        // fully explored
)

// Validate checks that the structure is a well-formed DAG: every parent
// reference resolves to a declared variable and no directed cycle exists
// following child→parent edges. Cycle detection uses white/gray/black
// vertex coloring; a gray vertex encountered again is a back-edge.
//
// Returns ErrMalformedGraph on any violation; nil for a valid DAG.
// Complexity: O(V + E) time, O(V) memory.
func (g *DirectedGraph) Validate() error {
	// 1. Parent references are already checked by SetParents, but a graph
	//    assembled through multiple calls may still be revalidated cheaply.
	for child, set := range g.parents {
		for p := range set {
			if _, ok := g.vars[p]; !ok {
				return fmt.Errorf("%w: parent %q of %q undeclared", ErrMalformedGraph, p, child)
			}
			if p == child {
				return fmt.Errorf("%w: %q is its own parent", ErrMalformedGraph, child)
			}
		}
	}

	// 2. DFS over child→parent edges from every vertex, deterministic order.
	state := make(map[string]int, len(g.vars))
	var visit func(id string) error
	visit = func(id string) error {
		if state[id] == gray {
			return fmt.Errorf("%w: cycle through %q", ErrMalformedGraph, id)
		}
		if state[id] == black {
			return nil
		}
		state[id] = gray
		parents, err := g.Parents(id)
		if err != nil {
			return err
		}
		for _, p := range parents {
			if err = visit(p); err != nil {
				return err
			}
		}
		state[id] = black

		return nil
	}
	for _, id := range g.Variables() {
		if state[id] == white {
			if err := visit(id); err != nil {
				return err
			}
		}
	}

	return nil
}
