// Package core defines the graph primitives shared by every stage of the
// junction-tree pipeline: discrete variables with finite ordered domains,
// the directed graph describing a Bayesian-network structure (per-node
// parent sets), and the undirected working graph produced by moralization
// and mutated by triangulation.
//
// This file declares Variable, DirectedGraph, UndirectedGraph and the
// sentinel errors shared across the module.
//
// Errors:
//
//	ErrMalformedGraph    - cyclic structure, self-parent, or parent set
//	                       referencing undeclared variables where a valid
//	                       DAG was required.
//	ErrEmptyVariableID   - variable ID is the empty string.
//	ErrVariableNotFound  - requested variable does not exist.
//	ErrDuplicateVariable - variable ID declared twice.
//	ErrEmptyDomain       - variable declared with no states.
//	ErrSelfLoop          - undirected edge from a vertex to itself.
package core

import "errors"

// Sentinel errors for core graph operations.
var (
	// ErrMalformedGraph indicates the directed structure is not a valid DAG:
	// it contains a cycle, a self-parent, or a parent set referencing a
	// variable that was never declared.
	ErrMalformedGraph = errors.New("core: malformed directed graph")

	// ErrEmptyVariableID indicates that the provided variable ID is empty.
	ErrEmptyVariableID = errors.New("core: variable ID is empty")

	// ErrVariableNotFound indicates an operation referenced a non-existent variable.
	ErrVariableNotFound = errors.New("core: variable not found")

	// ErrDuplicateVariable indicates a variable ID was declared more than once.
	ErrDuplicateVariable = errors.New("core: variable already declared")

	// ErrEmptyDomain indicates a variable was declared with zero states.
	ErrEmptyDomain = errors.New("core: variable domain is empty")

	// ErrSelfLoop indicates an undirected edge was attempted from a vertex to itself.
	ErrSelfLoop = errors.New("core: self-loop not allowed")
)

// Variable couples an identifier with an ordered, finite domain of state
// labels. A Variable is immutable once registered in a DirectedGraph.
type Variable struct {
	// ID uniquely identifies this variable within its graph.
	ID string

	// States is the ordered domain. State order fixes the row-major layout
	// of every factor table built over this variable.
	States []string
}

// Cardinality returns the number of states in the variable's domain.
func (v Variable) Cardinality() int { return len(v.States) }

// DirectedGraph is the Bayesian-network structure: a catalog of discrete
// variables plus a parent set per variable. It is built once at
// model-definition time and read-only afterwards; no stage of the pipeline
// mutates it.
//
// All enumeration methods return IDs sorted lexicographically ascending so
// that downstream stages (moralization, triangulation, CPT placement) are
// reproducible.
type DirectedGraph struct {
	vars    map[string]Variable            // variable ID → Variable
	parents map[string]map[string]struct{} // child ID → parent ID set
}

// NewDirectedGraph creates an empty DirectedGraph.
// Complexity: O(1)
func NewDirectedGraph() *DirectedGraph {
	return &DirectedGraph{
		vars:    make(map[string]Variable),
		parents: make(map[string]map[string]struct{}),
	}
}

// UndirectedGraph is a symmetric adjacency structure over variable IDs.
// It is produced by moralization and mutated in place by triangulation
// (fill-in edges, vertex elimination). Each pipeline stage owns the graph
// it produces; stages that need to keep a caller's graph intact work on a
// Clone.
type UndirectedGraph struct {
	adjacency map[string]map[string]struct{} // vertex ID → neighbor ID set
}

// NewUndirectedGraph creates an empty UndirectedGraph.
// Complexity: O(1)
func NewUndirectedGraph() *UndirectedGraph {
	return &UndirectedGraph{adjacency: make(map[string]map[string]struct{})}
}
