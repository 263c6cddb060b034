// Package linop provides ready-made linear primitives for the operator
// algebra: identity, null, scaling, diagonal, and dense-matrix maps.
//
// What:
//
//   - Identity(dim) — the unitary do-nothing map.
//   - Null(codim, dim) — maps every input to the zero vector.
//   - Homothety(c, dim) — c·x, folding to Null (c = 0) or Identity (c = 1).
//   - Diagonal(d) — element-wise multiplication by a fixed vector.
//   - Matrix(A) — a dense matrix map over gonum, with an exact adjoint.
//
// Why:
//
//   - Forward models: sensing matrices, masks and gains are the linear
//     backbone of most imaging inverse problems.
//   - Algebra fuel: these primitives carry exact adjoints and tight
//     Lipschitz bounds, so composites built from them keep useful
//     estimates for solver step sizes.
//
// Complexity:
//
//   - Identity/Null/Homothety/Diagonal: O(n) per Apply/Adjoint.
//   - Matrix: O(rows×cols) per Apply/Adjoint; the Lipschitz estimate is
//     the Frobenius norm — an upper bound on the spectral norm, cheap to
//     compute and safe for step-size selection.
//
// Errors:
//
//   - ErrBadDimension: a dimension argument is not positive.
//   - ErrEmptyDiagonal: Diagonal received an empty vector.
//   - ErrNilMatrix: Matrix received a nil matrix.
package linop
