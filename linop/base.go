package linop

import (
	"errors"
	"fmt"
	"math"

	"github.com/katalvlaran/opalg/core"
)

// Sentinel errors for linear-primitive construction.
var (
	// ErrBadDimension indicates a non-positive dimension argument.
	ErrBadDimension = errors.New("linop: dimension must be positive")

	// ErrEmptyDiagonal indicates Diagonal received an empty vector.
	ErrEmptyDiagonal = errors.New("linop: diagonal vector must be non-empty")

	// ErrNilMatrix indicates Matrix received a nil matrix.
	ErrNilMatrix = errors.New("linop: matrix must be non-nil")
)

func cloneVec(x []float64) []float64 {
	out := make([]float64, len(x))
	copy(out, x)

	return out
}

// Identity returns the dim-dimensional identity operator. It is unitary
// with Lipschitz constant 1; Apply and Adjoint both return a copy of the
// input.
func Identity(dim int) (*core.Operator, error) {
	if dim < 1 {
		return nil, fmt.Errorf("identity of dimension %d: %w", dim, ErrBadDimension)
	}
	passthrough := func(x []float64) ([]float64, error) {
		return cloneVec(x), nil
	}

	return core.New(
		core.Shape{Codim: dim, Dim: dim},
		core.NewPropertySet(core.Unitary),
		core.WithName(fmt.Sprintf("Identity(%d)", dim)),
		core.WithApply(passthrough),
		core.WithAdjoint(passthrough),
		core.WithLipschitz(1),
	)
}

// Null returns the (codim, dim) operator mapping every input to the
// zero vector. Its Lipschitz constant is 0; when codim is 1 it is the
// null functional, a (degenerate) linear functional.
func Null(codim, dim int) (*core.Operator, error) {
	if codim < 1 || dim < 1 {
		return nil, fmt.Errorf("null operator of shape (%d, %d): %w", codim, dim, ErrBadDimension)
	}
	props := core.NewPropertySet(core.Linear)
	if codim == 1 {
		props = core.NewPropertySet(core.LinFunctional)
	}

	return core.New(
		core.Shape{Codim: codim, Dim: dim},
		props,
		core.WithName(fmt.Sprintf("Null(%d, %d)", codim, dim)),
		core.WithApply(func(_ []float64) ([]float64, error) {
			return make([]float64, codim), nil
		}),
		core.WithAdjoint(func(_ []float64) ([]float64, error) {
			return make([]float64, dim), nil
		}),
		core.WithLipschitz(0),
	)
}

// Homothety returns the scaling operator x ↦ c·x on R^dim. The special
// cases fold: c = 0 yields Null, c = 1 yields Identity. For |c| = 1 the
// operator is unitary. Lipschitz constant |c|.
func Homothety(c float64, dim int) (*core.Operator, error) {
	if dim < 1 {
		return nil, fmt.Errorf("homothety of dimension %d: %w", dim, ErrBadDimension)
	}
	switch c {
	case 0:
		return Null(dim, dim)
	case 1:
		return Identity(dim)
	}

	props := core.NewPropertySet(core.Linear)
	if math.Abs(c) == 1 {
		props = core.NewPropertySet(core.Unitary)
	}
	scale := func(x []float64) ([]float64, error) {
		out := cloneVec(x)
		for i := range out {
			out[i] *= c
		}

		return out, nil
	}

	return core.New(
		core.Shape{Codim: dim, Dim: dim},
		props,
		core.WithName(fmt.Sprintf("Homothety(%v, %d)", c, dim)),
		core.WithApply(scale),
		core.WithAdjoint(scale),
		core.WithLipschitz(math.Abs(c)),
	)
}

// Diagonal returns the operator multiplying element-wise by d. It is
// self-adjoint; the Lipschitz constant is max|dᵢ| (exact, the spectral
// norm of a diagonal matrix).
func Diagonal(d []float64) (*core.Operator, error) {
	if len(d) == 0 {
		return nil, ErrEmptyDiagonal
	}
	d = cloneVec(d)
	lip := 0.0
	for _, v := range d {
		lip = math.Max(lip, math.Abs(v))
	}
	mul := func(x []float64) ([]float64, error) {
		out := make([]float64, len(d))
		for i := range d {
			out[i] = d[i] * x[i]
		}

		return out, nil
	}

	return core.New(
		core.Shape{Codim: len(d), Dim: len(d)},
		core.NewPropertySet(core.Linear),
		core.WithName(fmt.Sprintf("Diagonal(%d)", len(d))),
		core.WithApply(mul),
		core.WithAdjoint(mul),
		core.WithLipschitz(lip),
	)
}
