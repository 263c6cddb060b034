package funcs

import (
	"errors"
	"fmt"
	"math"
	"sort"

	"gonum.org/v1/gonum/floats"

	"github.com/katalvlaran/opalg/core"
)

// Sentinel errors for functional construction.
var (
	// ErrBadDimension indicates a negative dimension argument.
	ErrBadDimension = errors.New("funcs: dimension must be positive or DomainAgnostic")

	// ErrEmptyVector indicates an empty vector argument.
	ErrEmptyVector = errors.New("funcs: vector argument must be non-empty")
)

func checkDim(dim int) error {
	if dim < 0 {
		return fmt.Errorf("dimension %d: %w", dim, ErrBadDimension)
	}

	return nil
}

func cloneVec(x []float64) []float64 {
	out := make([]float64, len(x))
	copy(out, x)

	return out
}

// L1Norm returns the functional ‖x‖₁ = Σ|xᵢ|. It is proximable: the
// prox is element-wise soft-thresholding,
// prox(x, τ)ᵢ = sign(xᵢ)·max(|xᵢ| − τ, 0).
//
// The Lipschitz constant is √dim; it degrades to +Inf when dim is
// core.DomainAgnostic, so set dim explicitly when a tight bound matters.
func L1Norm(dim int) (*core.Operator, error) {
	if err := checkDim(dim); err != nil {
		return nil, err
	}
	lip := math.Inf(1)
	if dim != core.DomainAgnostic {
		lip = math.Sqrt(float64(dim))
	}

	return core.New(
		core.Shape{Codim: 1, Dim: dim},
		core.NewPropertySet(core.Proximable),
		core.WithName("L1Norm"),
		core.WithApply(func(x []float64) ([]float64, error) {
			return []float64{floats.Norm(x, 1)}, nil
		}),
		core.WithProx(func(x []float64, tau float64) ([]float64, error) {
			out := make([]float64, len(x))
			for i, v := range x {
				shrunk := math.Max(math.Abs(v)-tau, 0)
				out[i] = math.Copysign(shrunk, v)
			}

			return out, nil
		}),
		core.WithLipschitz(lip),
	)
}

// L2Norm returns the functional ‖x‖₂. It is proximable: the prox
// shrinks x towards the origin, prox(x, τ) = (1 − τ/max(‖x‖₂, τ))·x.
// Lipschitz constant 1.
func L2Norm(dim int) (*core.Operator, error) {
	if err := checkDim(dim); err != nil {
		return nil, err
	}

	return core.New(
		core.Shape{Codim: 1, Dim: dim},
		core.NewPropertySet(core.Proximable),
		core.WithName("L2Norm"),
		core.WithApply(func(x []float64) ([]float64, error) {
			return []float64{floats.Norm(x, 2)}, nil
		}),
		core.WithProx(func(x []float64, tau float64) ([]float64, error) {
			scale := 1 - tau/math.Max(floats.Norm(x, 2), tau)
			out := cloneVec(x)
			floats.Scale(scale, out)

			return out, nil
		}),
		core.WithLipschitz(1),
	)
}

// LInfinityNorm returns the Chebyshev norm ‖x‖∞ = maxᵢ|xᵢ|. It is
// proximable through Moreau decomposition:
// prox(x, τ) = x − τ·proj(x/τ), where proj is the Euclidean projection
// onto the unit ℓ₁ ball. Lipschitz constant 1 in any dimension.
func LInfinityNorm(dim int) (*core.Operator, error) {
	if err := checkDim(dim); err != nil {
		return nil, err
	}

	return core.New(
		core.Shape{Codim: 1, Dim: dim},
		core.NewPropertySet(core.Proximable),
		core.WithName("LInfinityNorm"),
		core.WithApply(func(x []float64) ([]float64, error) {
			return []float64{floats.Norm(x, math.Inf(1))}, nil
		}),
		core.WithProx(func(x []float64, tau float64) ([]float64, error) {
			scaled := cloneVec(x)
			floats.Scale(1/tau, scaled)
			p := projectL1Ball(scaled)
			out := cloneVec(x)
			floats.AddScaled(out, -tau, p)

			return out, nil
		}),
		core.WithLipschitz(1),
	)
}

// projectL1Ball returns the Euclidean projection of v onto the unit
// ℓ₁ ball, using the sorted cumulative-threshold method. Interior
// points project to themselves.
func projectL1Ball(v []float64) []float64 {
	if floats.Norm(v, 1) <= 1 {
		return v
	}

	w := make([]float64, len(v))
	for i, val := range v {
		w[i] = math.Abs(val)
	}
	sort.Sort(sort.Reverse(sort.Float64Slice(w)))

	var theta, cum float64
	for i, wi := range w {
		cum += wi
		t := (cum - 1) / float64(i+1)
		if wi <= t {
			break
		}
		theta = t
	}

	out := make([]float64, len(v))
	for i, val := range v {
		out[i] = math.Copysign(math.Max(math.Abs(val)-theta, 0), val)
	}

	return out
}

// SquaredL2Norm returns the functional ‖x‖₂² = Σxᵢ². It is quadratic
// with gradient 2x and diff-Lipschitz constant 2 (exact); the prox is
// the closed form x/(1 + 2τ). The Lipschitz constant of the functional
// itself is unbounded.
func SquaredL2Norm(dim int) (*core.Operator, error) {
	if err := checkDim(dim); err != nil {
		return nil, err
	}

	return core.New(
		core.Shape{Codim: 1, Dim: dim},
		core.NewPropertySet(core.Quadratic, core.Proximable),
		core.WithName("SquaredL2Norm"),
		core.WithApply(func(x []float64) ([]float64, error) {
			n := floats.Norm(x, 2)

			return []float64{n * n}, nil
		}),
		core.WithGradient(func(x []float64) ([]float64, error) {
			out := cloneVec(x)
			floats.Scale(2, out)

			return out, nil
		}),
		core.WithProx(func(x []float64, tau float64) ([]float64, error) {
			out := cloneVec(x)
			floats.Scale(1/(1+2*tau), out)

			return out, nil
		}),
		core.WithDiffLipschitz(2),
	)
}

// Dot returns the linear functional x ↦ ⟨a, x⟩. Its adjoint is
// y ↦ y₁·a, its gradient is the constant a, and its prox is the shift
// x − τ·a — all supplied by the algebra from the LinFunctional property.
// Lipschitz constant ‖a‖₂ (exact).
func Dot(a []float64) (*core.Operator, error) {
	if len(a) == 0 {
		return nil, fmt.Errorf("dot-product functional: %w", ErrEmptyVector)
	}
	a = cloneVec(a)

	return core.New(
		core.Shape{Codim: 1, Dim: len(a)},
		core.NewPropertySet(core.LinFunctional),
		core.WithName(fmt.Sprintf("Dot(%d)", len(a))),
		core.WithApply(func(x []float64) ([]float64, error) {
			return []float64{floats.Dot(a, x)}, nil
		}),
		core.WithAdjoint(func(y []float64) ([]float64, error) {
			out := cloneVec(a)
			floats.Scale(y[0], out)

			return out, nil
		}),
		core.WithLipschitz(floats.Norm(a, 2)),
	)
}

// ShiftedLoss returns x ↦ f(x − data): the data-fidelity version of a
// functional, built through the argument-shift rule so every analytic
// property of f (convexity, differentiability, proximability) survives.
func ShiftedLoss(f *core.Operator, data []float64) (*core.Operator, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("shifted loss of %s: %w", f.Name(), ErrEmptyVector)
	}
	neg := make([]float64, len(data))
	for i, v := range data {
		neg[i] = -v
	}

	return core.ArgShift(f, neg)
}
