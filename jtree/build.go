package jtree

import (
	"fmt"
	"sort"

	"github.com/katalvlaran/junctiontree/cliques"
)

// Build connects the given cliques into a junction tree via a
// maximum-weight spanning tree over pairwise separator sizes, then
// verifies the running intersection property.
//
// For maximal cliques of a chordal graph the maximum-weight spanning tree
// is guaranteed to satisfy the running intersection property; the
// verification still runs unconditionally because a broken triangulation
// or extraction upstream would otherwise surface as silently wrong
// marginals instead of an error here.
//
// Steps:
//  1. Sort cliques by canonical ID and reject duplicates.
//  2. Enumerate all clique pairs as candidate edges weighted by separator
//     size; zero-weight edges participate too, so cliques over disjoint
//     variable sets still join into a single tree (their separator
//     potentials are scalars and propagation across them is a no-op).
//  3. Kruskal with union-find (path-compressing find, union by rank):
//     scan candidates heaviest first (equal weights resolved by the
//     lexicographic clique-ID pair) and accept edges joining distinct
//     components until |cliques|-1 edges are chosen.
//  4. Cache separators, build adjacency, verify running intersection.
//
// Returns ErrNoCliques for an empty input, ErrDuplicateClique for repeated
// variable sets, and ErrStructuralInvariant when verification fails.
// Complexity: O(K² · S + K² log K) where K = #cliques, S = max clique size.
func Build(cs []cliques.Clique) (*Tree, error) {
	// 1. Validate and order the nodes.
	if len(cs) == 0 {
		return nil, ErrNoCliques
	}
	sorted := make([]cliques.Clique, len(cs))
	copy(sorted, cs)
	sort.Slice(sorted, func(a, b int) bool { return sorted[a].ID() < sorted[b].ID() })

	t := &Tree{
		nodes:  make([]treeNode, len(sorted)),
		index:  make(map[string]int, len(sorted)),
		edgeAt: make(map[[2]int]int),
		adj:    make([][]int, len(sorted)),
	}
	for i, c := range sorted {
		if _, dup := t.index[c.ID()]; dup {
			return nil, fmt.Errorf("%w: %q", ErrDuplicateClique, c.ID())
		}
		t.nodes[i] = treeNode{clique: c}
		t.index[c.ID()] = i
	}

	// 2. Candidate edges over all clique pairs.
	type candidate struct {
		a, b   int
		weight int
	}
	candidates := make([]candidate, 0, len(sorted)*(len(sorted)-1)/2)
	for i := 0; i < len(sorted); i++ {
		for j := i + 1; j < len(sorted); j++ {
			candidates = append(candidates, candidate{
				a:      i,
				b:      j,
				weight: len(sorted[i].Intersect(sorted[j])),
			})
		}
	}

	// 3. Heaviest first; ties by the (already sorted) clique-ID pair, which
	//    for indices is plain (a, b) lexicographic order.
	sort.Slice(candidates, func(x, y int) bool {
		if candidates[x].weight != candidates[y].weight {
			return candidates[x].weight > candidates[y].weight
		}
		if candidates[x].a != candidates[y].a {
			return candidates[x].a < candidates[y].a
		}

		return candidates[x].b < candidates[y].b
	})

	// 3a. Disjoint-set union with path compression and union by rank.
	parent := make([]int, len(sorted))
	rank := make([]int, len(sorted))
	for i := range parent {
		parent[i] = i
	}
	find := func(u int) int {
		for parent[u] != u {
			parent[u] = parent[parent[u]] // point u at its grandparent
			u = parent[u]
		}

		return u
	}
	union := func(u, v int) {
		rootU, rootV := find(u), find(v)
		if rootU == rootV {
			return
		}
		if rank[rootU] < rank[rootV] {
			parent[rootU] = rootV
		} else {
			parent[rootV] = rootU
			if rank[rootU] == rank[rootV] {
				rank[rootU]++
			}
		}
	}

	// 3b. Accept component-joining edges until the tree is spanned.
	for _, cand := range candidates {
		if find(cand.a) == find(cand.b) {
			continue
		}
		union(cand.a, cand.b)
		t.edges = append(t.edges, treeEdge{
			a:   cand.a,
			b:   cand.b,
			sep: sorted[cand.a].Intersect(sorted[cand.b]),
		})
		if len(t.edges) == len(sorted)-1 {
			break
		}
	}

	// 4. Adjacency and edge lookup, then the structural check.
	for i, e := range t.edges {
		t.edgeAt[[2]int{e.a, e.b}] = i
		t.adj[e.a] = append(t.adj[e.a], e.b)
		t.adj[e.b] = append(t.adj[e.b], e.a)
	}
	for i := range t.adj {
		sort.Ints(t.adj[i])
	}
	if err := t.verifyRunningIntersection(); err != nil {
		return nil, err
	}

	return t, nil
}

// verifyRunningIntersection checks that for every variable, the cliques
// containing it induce a connected subtree.
func (t *Tree) verifyRunningIntersection() error {
	// 1. Variable → holding node indices (sorted by construction order,
	//    which is node-index order).
	holders := make(map[string][]int)
	for i, n := range t.nodes {
		for _, v := range n.clique.Variables() {
			holders[v] = append(holders[v], i)
		}
	}

	// 2. For each shared variable, BFS restricted to holding nodes must
	//    reach every holder from the first one.
	vars := make([]string, 0, len(holders))
	for v := range holders {
		vars = append(vars, v)
	}
	sort.Strings(vars)
	for _, v := range vars {
		nodes := holders[v]
		if len(nodes) < 2 {
			continue
		}
		member := make(map[int]struct{}, len(nodes))
		for _, i := range nodes {
			member[i] = struct{}{}
		}
		visited := map[int]struct{}{nodes[0]: {}}
		queue := []int{nodes[0]}
		for len(queue) > 0 {
			cur := queue[0]
			queue = queue[1:]
			for _, next := range t.adj[cur] {
				if _, in := member[next]; !in {
					continue
				}
				if _, seen := visited[next]; seen {
					continue
				}
				visited[next] = struct{}{}
				queue = append(queue, next)
			}
		}
		if len(visited) != len(nodes) {
			return fmt.Errorf("%w: variable %q spans a disconnected clique set", ErrStructuralInvariant, v)
		}
	}

	return nil
}

// Cliques returns the tree's cliques sorted by canonical ID.
func (t *Tree) Cliques() []cliques.Clique {
	out := make([]cliques.Clique, len(t.nodes))
	for i, n := range t.nodes {
		out[i] = n.clique
	}

	return out
}

// Neighbors returns the clique IDs adjacent to cliqueID in the tree.
// Returns ErrCliqueNotFound for an unknown ID.
func (t *Tree) Neighbors(cliqueID string) ([]string, error) {
	i, ok := t.index[cliqueID]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrCliqueNotFound, cliqueID)
	}
	ids := make([]string, len(t.adj[i]))
	for k, j := range t.adj[i] {
		ids[k] = t.nodes[j].clique.ID()
	}

	return ids, nil
}

// Separator returns the sorted separator scope between two adjacent cliques.
// Returns ErrCliqueNotFound for unknown IDs and ErrNotAdjacent when the
// cliques share no tree edge.
func (t *Tree) Separator(aID, bID string) ([]string, error) {
	e, err := t.edgeBetween(aID, bID)
	if err != nil {
		return nil, err
	}
	sep := make([]string, len(e.sep))
	copy(sep, e.sep)

	return sep, nil
}

// edgeBetween resolves the tree edge joining two clique IDs.
func (t *Tree) edgeBetween(aID, bID string) (*treeEdge, error) {
	a, ok := t.index[aID]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrCliqueNotFound, aID)
	}
	b, ok := t.index[bID]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrCliqueNotFound, bID)
	}
	if a > b {
		a, b = b, a
	}
	i, ok := t.edgeAt[[2]int{a, b}]
	if !ok {
		return nil, fmt.Errorf("%w: %q and %q", ErrNotAdjacent, aID, bID)
	}

	return &t.edges[i], nil
}
