package core_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/katalvlaran/opalg/core"
)

// Hermetic primitive builders used across the core test files. They
// mirror the shapes of real operators (scaling maps, norms, linear
// functionals) without importing the concrete packages, so the core
// suite tests the engine in isolation.

func cloneVec(x []float64) []float64 {
	out := make([]float64, len(x))
	copy(out, x)

	return out
}

// newHomothety builds the linear scaling map x ↦ c·x on R^dim.
func newHomothety(t *testing.T, c float64, dim int) *core.Operator {
	t.Helper()
	scale := func(x []float64) ([]float64, error) {
		out := cloneVec(x)
		for i := range out {
			out[i] *= c
		}

		return out, nil
	}
	props := core.NewPropertySet(core.Linear)
	if math.Abs(c) == 1 {
		props = core.NewPropertySet(core.Unitary)
	}

	op, err := core.New(
		core.Shape{Codim: dim, Dim: dim},
		props,
		core.WithName("H"),
		core.WithApply(scale),
		core.WithAdjoint(scale),
		core.WithLipschitz(math.Abs(c)),
	)
	require.NoError(t, err)

	return op
}

// newL1 builds the ‖·‖₁ functional with soft-threshold prox.
func newL1(t *testing.T, dim int) *core.Operator {
	t.Helper()
	op, err := core.New(
		core.Shape{Codim: 1, Dim: dim},
		core.NewPropertySet(core.Proximable),
		core.WithName("l1"),
		core.WithApply(func(x []float64) ([]float64, error) {
			total := 0.0
			for _, v := range x {
				total += math.Abs(v)
			}

			return []float64{total}, nil
		}),
		core.WithProx(func(x []float64, tau float64) ([]float64, error) {
			out := make([]float64, len(x))
			for i, v := range x {
				out[i] = math.Copysign(math.Max(math.Abs(v)-tau, 0), v)
			}

			return out, nil
		}),
	)
	require.NoError(t, err)

	return op
}

// newSqL2 builds the quadratic functional ‖x‖₂² with gradient 2x.
func newSqL2(t *testing.T, dim int) *core.Operator {
	t.Helper()
	op, err := core.New(
		core.Shape{Codim: 1, Dim: dim},
		core.NewPropertySet(core.Quadratic),
		core.WithName("sq"),
		core.WithApply(func(x []float64) ([]float64, error) {
			total := 0.0
			for _, v := range x {
				total += v * v
			}

			return []float64{total}, nil
		}),
		core.WithGradient(func(x []float64) ([]float64, error) {
			out := cloneVec(x)
			for i := range out {
				out[i] *= 2
			}

			return out, nil
		}),
		core.WithDiffLipschitz(2),
	)
	require.NoError(t, err)

	return op
}

// newDot builds the linear functional x ↦ ⟨a, x⟩.
func newDot(t *testing.T, a []float64) *core.Operator {
	t.Helper()
	a = cloneVec(a)
	norm := 0.0
	for _, v := range a {
		norm += v * v
	}

	op, err := core.New(
		core.Shape{Codim: 1, Dim: len(a)},
		core.NewPropertySet(core.LinFunctional),
		core.WithName("dot"),
		core.WithApply(func(x []float64) ([]float64, error) {
			total := 0.0
			for i := range a {
				total += a[i] * x[i]
			}

			return []float64{total}, nil
		}),
		core.WithAdjoint(func(y []float64) ([]float64, error) {
			out := cloneVec(a)
			for i := range out {
				out[i] *= y[0]
			}

			return out, nil
		}),
		core.WithLipschitz(math.Sqrt(norm)),
	)
	require.NoError(t, err)

	return op
}

// newSquareMap builds the non-linear differentiable map F(x)ᵢ = xᵢ² with
// Jacobian diag(2x).
func newSquareMap(t *testing.T, dim int) *core.Operator {
	t.Helper()
	op, err := core.New(
		core.Shape{Codim: dim, Dim: dim},
		core.NewPropertySet(core.Differentiable),
		core.WithName("square"),
		core.WithApply(func(x []float64) ([]float64, error) {
			out := make([]float64, len(x))
			for i, v := range x {
				out[i] = v * v
			}

			return out, nil
		}),
		core.WithJacobian(func(x []float64) (*core.Operator, error) {
			d := cloneVec(x)
			for i := range d {
				d[i] *= 2
			}
			mul := func(y []float64) ([]float64, error) {
				out := make([]float64, len(d))
				for i := range d {
					out[i] = d[i] * y[i]
				}

				return out, nil
			}

			return core.New(
				core.Shape{Codim: len(d), Dim: len(d)},
				core.NewPropertySet(core.Linear),
				core.WithName("J_square"),
				core.WithApply(mul),
				core.WithAdjoint(mul),
			)
		}),
		core.WithDiffLipschitz(2),
	)
	require.NoError(t, err)

	return op
}
