package core

import (
	"fmt"
	"sort"
)

// AddVertex registers a vertex if missing (idempotent).
// Returns ErrEmptyVariableID for an empty ID.
// Complexity: O(1)
func (g *UndirectedGraph) AddVertex(id string) error {
	if id == "" {
		return ErrEmptyVariableID
	}
	if _, ok := g.adjacency[id]; !ok {
		g.adjacency[id] = make(map[string]struct{})
	}

	return nil
}

// AddEdge inserts the undirected edge {u, v}, registering missing endpoints.
// Adding an existing edge is a no-op, so moralization and fill-in passes
// never need membership checks first. Self-loops are rejected with
// ErrSelfLoop: no stage of the pipeline can produce or consume one.
// Complexity: O(1)
func (g *UndirectedGraph) AddEdge(u, v string) error {
	// 1. Validate endpoints.
	if u == "" || v == "" {
		return ErrEmptyVariableID
	}
	if u == v {
		return fmt.Errorf("%w: %q", ErrSelfLoop, u)
	}

	// 2. Register endpoints and the symmetric adjacency entries.
	if err := g.AddVertex(u); err != nil {
		return err
	}
	if err := g.AddVertex(v); err != nil {
		return err
	}
	g.adjacency[u][v] = struct{}{}
	g.adjacency[v][u] = struct{}{}

	return nil
}

// HasEdge reports whether the undirected edge {u, v} exists.
// Complexity: O(1)
func (g *UndirectedGraph) HasEdge(u, v string) bool {
	set, ok := g.adjacency[u]
	if !ok {
		return false
	}
	_, ok = set[v]

	return ok
}

// HasVertex reports whether id is registered.
// Complexity: O(1)
func (g *UndirectedGraph) HasVertex(id string) bool {
	_, ok := g.adjacency[id]
	return ok
}

// Vertices returns all vertex IDs sorted lexicographically ascending.
// Complexity: O(V log V)
func (g *UndirectedGraph) Vertices() []string {
	ids := make([]string, 0, len(g.adjacency))
	for id := range g.adjacency {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	return ids
}

// Neighbors returns the neighbor IDs of id sorted lexicographically ascending.
// Returns ErrVariableNotFound for an unregistered vertex.
// Complexity: O(D log D) where D = degree(id).
func (g *UndirectedGraph) Neighbors(id string) ([]string, error) {
	set, ok := g.adjacency[id]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrVariableNotFound, id)
	}
	ids := make([]string, 0, len(set))
	for n := range set {
		ids = append(ids, n)
	}
	sort.Strings(ids)

	return ids, nil
}

// Degree returns the number of neighbors of id.
// Returns ErrVariableNotFound for an unregistered vertex.
// Complexity: O(1)
func (g *UndirectedGraph) Degree(id string) (int, error) {
	set, ok := g.adjacency[id]
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrVariableNotFound, id)
	}

	return len(set), nil
}

// RemoveVertex deletes id and every incident edge. Removing an
// unregistered vertex is a no-op. Used by the triangulator's elimination
// loop on its private working copy.
// Complexity: O(D) where D = degree(id).
func (g *UndirectedGraph) RemoveVertex(id string) {
	set, ok := g.adjacency[id]
	if !ok {
		return
	}
	for n := range set {
		delete(g.adjacency[n], id)
	}
	delete(g.adjacency, id)
}

// Clone returns a deep copy sharing no state with the receiver. Pipeline
// stages that must keep their input intact (triangulation mutates a working
// graph while emitting a separate chordal graph) operate on clones.
// Complexity: O(V + E)
func (g *UndirectedGraph) Clone() *UndirectedGraph {
	clone := NewUndirectedGraph()
	for id, set := range g.adjacency {
		bucket := make(map[string]struct{}, len(set))
		for n := range set {
			bucket[n] = struct{}{}
		}
		clone.adjacency[id] = bucket
	}

	return clone
}

// EdgeCount returns the number of undirected edges.
// Complexity: O(V)
func (g *UndirectedGraph) EdgeCount() int {
	total := 0
	for _, set := range g.adjacency {
		total += len(set)
	}

	// Each undirected edge is stored twice (u→v and v→u).
	return total / 2
}
