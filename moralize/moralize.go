// Package moralize converts a directed Bayesian-network structure into its
// undirected moral graph: every parent→child edge is undirected, and all
// pairs of parents of a common child are connected ("married"). The
// married co-parent edges are what distinguish moralization from simply
// dropping edge direction; they guarantee that every CPT's scope becomes a
// complete subgraph and therefore ends up inside a clique after
// triangulation.
//
// Moralize does not detect directed cycles: acyclicity is the
// DirectedGraph's responsibility and should be established with
// (*core.DirectedGraph).Validate before this stage. On cyclic input the
// result is the moral graph of the given parent sets, which is
// well-defined but not meaningful for inference.
package moralize

import (
	"errors"
	"fmt"

	"github.com/katalvlaran/junctiontree/core"
)

// ErrNilGraph indicates a nil *core.DirectedGraph was supplied.
var ErrNilGraph = errors.New("moralize: graph is nil")

// Moralize builds the moral graph of dg. The result is freshly allocated
// and exclusively owned by the caller; dg is not modified.
//
// Steps:
//  1. Register every variable as a vertex (isolated variables survive).
//  2. For each child, connect it to each of its parents.
//  3. For each child, connect all pairs of its parents. Zero or one parent
//     contributes no marriage edges.
//
// A variable listed as its own parent produces core.ErrMalformedGraph:
// SetParents already rejects that state, but a graph assembled elsewhere
// must not slip a self-loop into the pipeline.
//
// Complexity: O(V + Σ deg_parents²) time, output-owned memory.
func Moralize(dg *core.DirectedGraph) (*core.UndirectedGraph, error) {
	// 1. Validate input pointer.
	if dg == nil {
		return nil, ErrNilGraph
	}

	moral := core.NewUndirectedGraph()
	// 2. Iterate variables in sorted order for reproducible construction.
	for _, child := range dg.Variables() {
		if err := moral.AddVertex(child); err != nil {
			return nil, err
		}
		parents, err := dg.Parents(child)
		if err != nil {
			return nil, err
		}
		// 3. Undirect each parent→child edge.
		for _, p := range parents {
			if p == child {
				return nil, fmt.Errorf("%w: %q is its own parent", core.ErrMalformedGraph, child)
			}
			if err = moral.AddEdge(child, p); err != nil {
				return nil, err
			}
		}
		// 4. Marry co-parents pairwise.
		for i := 0; i < len(parents); i++ {
			for j := i + 1; j < len(parents); j++ {
				if err = moral.AddEdge(parents[i], parents[j]); err != nil {
					return nil, err
				}
			}
		}
	}

	return moral, nil
}
