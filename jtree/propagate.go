package jtree

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"
)

// Propagate runs one full collect/distribute pass, leaving every clique
// potential proportional to the joint marginal over its scope.
//
// Messages are exchanged by absorption: to pass from clique i to adjacent
// clique j, i's potential is marginalized onto their separator, j is
// multiplied by the ratio of the new separator table to the old one, and
// the separator stores the new table. Dividing by the previous separator
// is exactly the exclusion of the message previously received from j, so
// no per-direction message buffers are needed and a second pass over an
// already-calibrated tree changes nothing (the ratio degenerates to the
// unit table).
//
// Protocol:
//   - Collect: post-order from the root; every clique absorbs from each
//     child after that child's subtree has finished collecting.
//   - Distribute: pre-order from the root; every clique pushes an
//     absorption to each child before the child's subtree is distributed.
//
// After the pass, every clique has absorbed exactly one message from each
// neighbor. Potentials stay unnormalized throughout; normalization happens
// only at query time, so evidence-free and evidence-conditioned trees
// share the same propagation code.
//
// Evidence (WithEvidence) is entered before the pass by zeroing
// inconsistent entries in every clique containing an observed variable;
// zeroing is idempotent, so repeated passes with the same evidence remain
// fixed points.
//
// WithParallelCollect runs sibling subtrees concurrently during collect
// (sibling write-sets are disjoint, so no locking is involved); absorption
// into the shared parent stays sequential. Distribute is inherently
// ordered parent-before-child and runs sequentially.
//
// Returns ErrNoPotentials before InitPotentials, ErrRootNotFound for an
// unknown WithRoot clique, ErrInvalidEvidence for bad observations, and
// the context error when cancelled.
// Complexity: O(Σ clique table sizes) time per pass.
func (t *Tree) Propagate(opts ...PropOption) error {
	// 1. Resolve options and preconditions.
	options := DefaultPropOptions()
	for _, opt := range opts {
		opt(&options)
	}
	for i := range t.nodes {
		if t.nodes[i].pot == nil {
			return ErrNoPotentials
		}
	}
	root := 0 // nodes are sorted by clique ID, so 0 is the lexically smallest
	if options.Root != "" {
		i, ok := t.index[options.Root]
		if !ok {
			return fmt.Errorf("%w: %q", ErrRootNotFound, options.Root)
		}
		root = i
	}

	// 2. Enter evidence.
	if err := t.enterEvidence(options.Evidence); err != nil {
		return err
	}

	// 3. Orient the tree at the root.
	children := t.orient(root)

	// 4. Collect then distribute.
	p := &propagation{tree: t, opts: options, children: children}
	if err := p.collect(options.Ctx, root); err != nil {
		return err
	}
	if err := p.distribute(options.Ctx, root); err != nil {
		return err
	}

	t.propagated = true

	return nil
}

// enterEvidence zeroes entries inconsistent with the observations in every
// clique holding an observed variable. Reducing all holders (rather than a
// single one) changes no nonzero value of the represented distribution and
// keeps the operation idempotent.
func (t *Tree) enterEvidence(evidence map[string]string) error {
	if len(evidence) == 0 {
		return nil
	}
	for v := range evidence {
		held := false
		for i := range t.nodes {
			if t.nodes[i].clique.Contains(v) {
				held = true
				break
			}
		}
		if !held {
			return fmt.Errorf("%w: variable %q not in any clique", ErrInvalidEvidence, v)
		}
	}
	for i := range t.nodes {
		reduced, err := t.nodes[i].pot.Reduce(evidence)
		if err != nil {
			return fmt.Errorf("%w: %w", ErrInvalidEvidence, err)
		}
		t.nodes[i].pot = reduced
	}

	return nil
}

// orient computes per-node child lists for the tree rooted at root via BFS
// over the adjacency lists; children inherit the lists' sorted order.
func (t *Tree) orient(root int) [][]int {
	children := make([][]int, len(t.nodes))
	visited := make([]bool, len(t.nodes))
	visited[root] = true
	queue := []int{root}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		for _, next := range t.adj[cur] {
			if visited[next] {
				continue
			}
			visited[next] = true
			children[cur] = append(children[cur], next)
			queue = append(queue, next)
		}
	}

	return children
}

// propagation carries the per-pass traversal state.
type propagation struct {
	tree     *Tree
	opts     PropOptions
	children [][]int
}

// collect finishes the collect phase for the subtree rooted at node:
// children's subtrees first (optionally in parallel), then each child is
// absorbed into node sequentially.
func (p *propagation) collect(ctx context.Context, node int) error {
	kids := p.children[node]

	// 1. Recurse into child subtrees. Each goroutine writes only inside its
	//    own subtree, so the subtree potentials never race.
	if p.opts.Parallel && len(kids) > 1 {
		eg := new(errgroup.Group)
		for _, c := range kids {
			child := c
			eg.Go(func() error { return p.collect(ctx, child) })
		}
		if err := eg.Wait(); err != nil {
			return err
		}
	} else {
		for _, c := range kids {
			if err := p.collect(ctx, c); err != nil {
				return err
			}
		}
	}

	// 2. Absorb each finished child into this node. These writes share the
	//    node's potential, so they stay sequential even in parallel mode.
	for _, c := range kids {
		if err := checkCancel(ctx); err != nil {
			return err
		}
		if err := p.tree.absorb(c, node); err != nil {
			return err
		}
	}

	return nil
}

// distribute pushes the root's calibrated belief down: absorb parent into
// child, then recurse.
func (p *propagation) distribute(ctx context.Context, node int) error {
	for _, c := range p.children[node] {
		if err := checkCancel(ctx); err != nil {
			return err
		}
		if err := p.tree.absorb(node, c); err != nil {
			return err
		}
		if err := p.distribute(ctx, c); err != nil {
			return err
		}
	}

	return nil
}

// absorb passes one message across the edge from → to: marginalize the
// sender onto the separator, multiply the receiver by the new/old
// separator ratio, store the new separator table.
func (t *Tree) absorb(from, to int) error {
	a, b := from, to
	if a > b {
		a, b = b, a
	}
	e := &t.edges[t.edgeAt[[2]int{a, b}]]

	// 1. Message over the separator scope.
	message, err := t.nodes[from].pot.Marginalize(e.sep...)
	if err != nil {
		return err
	}

	// 2. Ratio against what this edge has already transported.
	update, err := message.Divide(e.pot)
	if err != nil {
		return err
	}

	// 3. Receiver absorbs; separator records the message.
	absorbed, err := t.nodes[to].pot.Multiply(update)
	if err != nil {
		return err
	}
	t.nodes[to].pot = absorbed
	e.pot = message

	return nil
}

// checkCancel polls the context without blocking.
func checkCancel(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
		return nil
	}
}

// Propagated reports whether a full collect/distribute pass has completed
// since the last InitPotentials.
func (t *Tree) Propagated() bool { return t.propagated }
