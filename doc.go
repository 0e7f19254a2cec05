// Package junctiontree is an in-memory engine for exact probabilistic
// inference on discrete Bayesian networks, built around the classic
// junction-tree (clique-tree) algorithm.
//
// 🚀 What is junctiontree?
//
//	A pure-Go library that turns a directed model into calibrated marginals:
//		• core:        variables with finite domains, DAG and undirected graph primitives
//		• moralize:    DAG → moral graph (undirect edges, marry co-parents)
//		• triangulate: greedy min-fill / min-degree elimination into a chordal graph
//		• cliques:     maximal cliques read off the elimination ordering
//		• factor:      dense potential tables: multiply, marginalize, divide, normalize
//		• jtree:       maximum-weight spanning tree over separators, running-intersection
//		  verification, collect/distribute propagation, marginal queries, evidence
//
// ✨ Why choose junctiontree?
//
//   - Exact by construction – textbook multiplicative semantics, verified
//     running intersection property, structural errors instead of silently
//     wrong numbers
//   - Deterministic – every tie (elimination, spanning tree, CPT placement)
//     breaks by fixed lexical order, so results are reproducible and testable
//   - Pure Go core – no cgo; concurrency only where it is free
//     (sibling subtrees during collect, opt-in)
//
// Quick ASCII example, the diamond network A→B, A→C, B→D, C→D:
//
//	    A            A
//	   ↙ ↘          ╱ ╲
//	  B   C   ⇒    B───C      ⇒   [A B C]──(B C)──[B C D]
//	   ↘ ↙          ╲ ╱
//	    D            D
//	 (model)     (moralized,         (junction tree)
//	              triangulated)
//
//	dg := core.NewDirectedGraph()
//	_ = dg.AddVariable("A", "t", "f") // ... declare B, C, D, set parents
//	tree, err := jtree.FromNetwork(dg, cpts)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	pd, _ := tree.Marginal("D") // P(D), exact
//
// Pipeline stages own their outputs and never alias a predecessor's
// mutable state; the directed model itself is read-only throughout.
// See each subpackage's documentation for contracts, errors, and
// complexity notes.
package junctiontree
