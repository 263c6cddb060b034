package core_test

import (
	"testing"

	"github.com/katalvlaran/opalg/core"
)

// buildChain composes depth scaling nodes over R^dim.
func buildChain(b *testing.B, depth, dim int) *core.Operator {
	b.Helper()
	scale := func(x []float64) ([]float64, error) {
		out := make([]float64, len(x))
		for i, v := range x {
			out[i] = 1.0001 * v
		}

		return out, nil
	}
	leaf, err := core.New(
		core.Shape{Codim: dim, Dim: dim},
		core.NewPropertySet(core.Linear),
		core.WithApply(scale),
		core.WithAdjoint(scale),
		core.WithLipschitz(1.0001),
	)
	if err != nil {
		b.Fatalf("New failed: %v", err)
	}

	chain := leaf
	for i := 1; i < depth; i++ {
		chain, err = core.Compose(chain, leaf)
		if err != nil {
			b.Fatalf("Compose failed: %v", err)
		}
	}

	return chain
}

// BenchmarkApply_DeepChain measures forward evaluation through a
// 64-node composition over a 1024-vector.
func BenchmarkApply_DeepChain(b *testing.B) {
	chain := buildChain(b, 64, 1024)
	x := make([]float64, 1024)
	for i := range x {
		x[i] = float64(i)
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := chain.Apply(x); err != nil {
			b.Fatalf("Apply failed: %v", err)
		}
	}
}

// BenchmarkAdd_Construction measures lazy graph construction alone.
func BenchmarkAdd_Construction(b *testing.B) {
	leaf := buildChain(b, 1, 16)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := core.Add(leaf, leaf); err != nil {
			b.Fatalf("Add failed: %v", err)
		}
	}
}
