// Package jtree assembles maximal cliques into a junction tree and runs
// exact inference over it: maximum-weight spanning-tree construction with
// running-intersection verification, CPT-to-clique potential
// initialization, collect/distribute message propagation, and marginal
// queries.
//
// This file declares the Tree type, sentinel errors, and the functional
// options for propagation and the whole-pipeline facade.
package jtree

import (
	"context"
	"errors"

	"github.com/katalvlaran/junctiontree/cliques"
	"github.com/katalvlaran/junctiontree/factor"
	"github.com/katalvlaran/junctiontree/triangulate"
)

// Sentinel errors for junction-tree construction and inference.
var (
	// ErrNilModel indicates a nil *core.DirectedGraph was supplied.
	ErrNilModel = errors.New("jtree: model is nil")

	// ErrNoCliques indicates Build was called with an empty clique list.
	ErrNoCliques = errors.New("jtree: no cliques")

	// ErrDuplicateClique indicates two input cliques share the same variable set.
	ErrDuplicateClique = errors.New("jtree: duplicate clique")

	// ErrStructuralInvariant indicates the constructed tree violates the
	// running intersection property. This signals a bug in triangulation or
	// clique extraction upstream, not a recoverable runtime condition.
	ErrStructuralInvariant = errors.New("jtree: running intersection property violated")

	// ErrCPTPlacement indicates a CPT whose scope fits inside no clique.
	// For cliques extracted from a moralized, triangulated model graph a
	// covering clique always exists, so this too implies an upstream bug.
	ErrCPTPlacement = errors.New("jtree: CPT scope fits no clique")

	// ErrNoPotentials indicates propagation or a query was attempted before
	// InitPotentials.
	ErrNoPotentials = errors.New("jtree: potentials not initialized")

	// ErrNotPropagated indicates a marginal query before a completed
	// collect/distribute pass.
	ErrNotPropagated = errors.New("jtree: tree not propagated")

	// ErrRootNotFound indicates WithRoot named a clique ID absent from the tree.
	ErrRootNotFound = errors.New("jtree: root clique not found")

	// ErrCliqueNotFound indicates an accessor referenced an unknown clique ID.
	ErrCliqueNotFound = errors.New("jtree: clique not found")

	// ErrNotAdjacent indicates a separator lookup between two cliques that
	// do not share a tree edge.
	ErrNotAdjacent = errors.New("jtree: cliques not adjacent")

	// ErrUnsupportedQueryScope indicates a marginal query over variables not
	// jointly contained in any single clique. Cross-clique joint queries are
	// out of scope; failing loudly beats silently returning a wrong table.
	ErrUnsupportedQueryScope = errors.New("jtree: query scope spans no single clique")

	// ErrInvalidEvidence indicates evidence over an unknown variable or an
	// unknown state label.
	ErrInvalidEvidence = errors.New("jtree: invalid evidence")
)

// treeNode is a clique plus the potential it owns. The potential is nil
// until InitPotentials and is the only mutable piece of tree state.
type treeNode struct {
	clique cliques.Clique
	pot    *factor.Factor
}

// treeEdge links nodes a < b (indices into Tree.nodes). sep is the cached
// separator scope; pot is the separator potential maintained by absorption
// (unit until InitPotentials).
type treeEdge struct {
	a, b int
	sep  []string
	pot  *factor.Factor
}

// Tree is a junction tree: cliques at the nodes, separators on the edges,
// topology fixed at Build time and verified against the running
// intersection property. Only potentials change afterwards, first by
// InitPotentials, then by Propagate.
type Tree struct {
	nodes      []treeNode     // sorted by clique ID
	index      map[string]int // clique ID → node index
	edges      []treeEdge
	edgeAt     map[[2]int]int // {min,max} node pair → edge index
	adj        [][]int        // node index → sorted neighbor node indices
	propagated bool
}

// PropOptions configures Propagate. Use DefaultPropOptions as the baseline
// and override via functional options.
type PropOptions struct {
	// Root is the clique ID to root the collect/distribute pass at.
	// Empty selects the lexically smallest clique ID.
	Root string

	// Ctx allows cancellation between node-level absorptions; defaults to
	// context.Background().
	Ctx context.Context

	// Parallel enables concurrent collect over sibling subtrees. Sibling
	// write-sets never overlap, so no locking is involved.
	Parallel bool

	// Evidence maps observed variables to their observed states; entries
	// inconsistent with it are zeroed out of every holding clique before
	// propagation, so queries afterwards are conditioned on it.
	Evidence map[string]string
}

// PropOption mutates PropOptions.
type PropOption func(*PropOptions)

// WithRoot selects the clique to root propagation at.
func WithRoot(cliqueID string) PropOption {
	return func(o *PropOptions) { o.Root = cliqueID }
}

// WithCancelContext sets the cancellation context. A nil context has no effect.
func WithCancelContext(ctx context.Context) PropOption {
	return func(o *PropOptions) {
		if ctx != nil {
			o.Ctx = ctx
		}
	}
}

// WithParallelCollect enables concurrent collect over sibling subtrees.
func WithParallelCollect() PropOption {
	return func(o *PropOptions) { o.Parallel = true }
}

// WithEvidence conditions the pass on the given variable → state observations.
func WithEvidence(evidence map[string]string) PropOption {
	return func(o *PropOptions) { o.Evidence = evidence }
}

// DefaultPropOptions returns the default configuration: lexically smallest
// root, Background context, sequential collect, no evidence.
func DefaultPropOptions() PropOptions {
	return PropOptions{Ctx: context.Background()}
}

// PipelineOptions configures FromNetwork.
type PipelineOptions struct {
	// Triangulation options are forwarded to triangulate.Triangulate.
	Triangulation []triangulate.Option

	// Propagation options are forwarded to (*Tree).Propagate.
	Propagation []PropOption
}

// PipelineOption mutates PipelineOptions.
type PipelineOption func(*PipelineOptions)

// WithTriangulation forwards options to the triangulation stage.
func WithTriangulation(opts ...triangulate.Option) PipelineOption {
	return func(o *PipelineOptions) { o.Triangulation = append(o.Triangulation, opts...) }
}

// WithPropagation forwards options to the propagation pass.
func WithPropagation(opts ...PropOption) PipelineOption {
	return func(o *PipelineOptions) { o.Propagation = append(o.Propagation, opts...) }
}
