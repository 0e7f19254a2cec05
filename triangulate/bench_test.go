package triangulate_test

import (
	"fmt"
	"math/rand"
	"testing"

	"github.com/katalvlaran/junctiontree/core"
	"github.com/katalvlaran/junctiontree/triangulate"
)

// benchGraph builds a seeded random graph with n vertices and edge
// probability p, the same shape the property tests use.
func benchGraph(n int, p float64, seed int64) *core.UndirectedGraph {
	rng := rand.New(rand.NewSource(seed))
	g := core.NewUndirectedGraph()
	for i := 0; i < n; i++ {
		_ = g.AddVertex(fmt.Sprintf("V%03d", i))
	}
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			if rng.Float64() < p {
				_ = g.AddEdge(fmt.Sprintf("V%03d", i), fmt.Sprintf("V%03d", j))
			}
		}
	}

	return g
}

// BenchmarkTriangulate_MinFill_N50 measures the default heuristic on a
// 50-vertex random graph. Min-fill rescans pair adjacency per step, so
// this is the expensive end of the package.
func BenchmarkTriangulate_MinFill_N50(b *testing.B) {
	g := benchGraph(50, 0.15, 42)
	b.ResetTimer()

	for i := 0; i < b.N; i++ {
		if _, _, err := triangulate.Triangulate(g); err != nil {
			b.Fatal(err)
		}
	}
}

// BenchmarkTriangulate_MinDegree_N50 measures the cheaper degree
// heuristic on the same graph for comparison.
func BenchmarkTriangulate_MinDegree_N50(b *testing.B) {
	g := benchGraph(50, 0.15, 42)
	b.ResetTimer()

	for i := 0; i < b.N; i++ {
		_, _, err := triangulate.Triangulate(g,
			triangulate.WithHeuristic(triangulate.HeuristicMinDegree))
		if err != nil {
			b.Fatal(err)
		}
	}
}
