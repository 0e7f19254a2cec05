package jtree

import (
	"github.com/katalvlaran/junctiontree/cliques"
	"github.com/katalvlaran/junctiontree/core"
	"github.com/katalvlaran/junctiontree/factor"
	"github.com/katalvlaran/junctiontree/moralize"
	"github.com/katalvlaran/junctiontree/triangulate"
)

// FromNetwork compiles a Bayesian network into a propagated junction tree,
// running the whole pipeline: DAG validation, moralization, triangulation,
// maximal-clique extraction, tree construction, potential initialization,
// and one collect/distribute pass. The returned tree is ready for Marginal
// queries.
//
// Each stage owns its output: the moral graph is consumed by
// triangulation, the chordal graph and elimination order by extraction,
// and dg itself is never modified, so one model can be compiled many times
// (e.g. once per evidence set).
//
// Use WithTriangulation to tune the elimination heuristic and
// WithPropagation to set root, evidence, cancellation, or parallel collect.
//
// Returns ErrNilModel for a nil model, core.ErrMalformedGraph for a cyclic
// or inconsistent structure, and any stage error unchanged: all failures
// here are structural programming errors that must reach the caller
// immediately.
func FromNetwork(dg *core.DirectedGraph, cpts []factor.CPT, opts ...PipelineOption) (*Tree, error) {
	// 1. Resolve options.
	var options PipelineOptions
	for _, opt := range opts {
		opt(&options)
	}

	// 2. Validate the DAG before moralization: moralize does not detect
	//    cycles on its own.
	if dg == nil {
		return nil, ErrNilModel
	}
	if err := dg.Validate(); err != nil {
		return nil, err
	}

	// 3. Moralize.
	moral, err := moralize.Moralize(dg)
	if err != nil {
		return nil, err
	}

	// 4. Triangulate.
	chordal, order, err := triangulate.Triangulate(moral, options.Triangulation...)
	if err != nil {
		return nil, err
	}

	// 5. Extract maximal cliques.
	cs, err := cliques.Extract(chordal, order)
	if err != nil {
		return nil, err
	}

	// 6. Build the junction tree and verify its structure.
	tree, err := Build(cs)
	if err != nil {
		return nil, err
	}

	// 7. Initialize potentials and propagate.
	if err = tree.InitPotentials(dg, cpts); err != nil {
		return nil, err
	}
	if err = tree.Propagate(options.Propagation...); err != nil {
		return nil, err
	}

	return tree, nil
}
