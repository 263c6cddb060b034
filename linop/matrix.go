package linop

import (
	"fmt"

	"gonum.org/v1/gonum/mat"

	"github.com/katalvlaran/opalg/core"
)

// Matrix returns the dense linear map x ↦ A·x. The matrix is cloned at
// construction, so later mutation of a does not leak into the operator.
//
// The adjoint is the exact transpose map y ↦ Aᵀ·y. The Lipschitz
// estimate is the Frobenius norm of A — an upper bound on the spectral
// norm, computed lazily on first request and memoized.
//
// Time Complexity: O(rows×cols) per Apply/Adjoint.
func Matrix(a *mat.Dense) (*core.Operator, error) {
	if a == nil {
		return nil, ErrNilMatrix
	}
	rows, cols := a.Dims()
	if rows < 1 || cols < 1 {
		return nil, fmt.Errorf("matrix of shape (%d, %d): %w", rows, cols, ErrBadDimension)
	}

	var m mat.Dense
	m.CloneFrom(a)

	props := core.NewPropertySet(core.Linear)
	if rows == 1 {
		props = core.NewPropertySet(core.LinFunctional)
	}

	return core.New(
		core.Shape{Codim: rows, Dim: cols},
		props,
		core.WithName(fmt.Sprintf("Matrix(%d, %d)", rows, cols)),
		core.WithApply(func(x []float64) ([]float64, error) {
			y := mat.NewVecDense(rows, nil)
			y.MulVec(&m, mat.NewVecDense(cols, x))

			return y.RawVector().Data, nil
		}),
		core.WithAdjoint(func(y []float64) ([]float64, error) {
			x := mat.NewVecDense(cols, nil)
			x.MulVec(m.T(), mat.NewVecDense(rows, y))

			return x.RawVector().Data, nil
		}),
		core.WithLipschitzBound(func() float64 {
			return mat.Norm(&m, 2)
		}),
	)
}
