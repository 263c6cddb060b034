// Package funcs provides ready-made functionals for the operator
// algebra: the usual norms of variational imaging, the dot-product
// functional, and data-fidelity shifts.
//
// What:
//
//   - L1Norm(dim) — ‖x‖₁, proximable via soft-thresholding.
//   - L2Norm(dim) — ‖x‖₂, proximable via ball shrinkage.
//   - LInfinityNorm(dim) — ‖x‖∞, proximable via ℓ₁-ball projection.
//   - SquaredL2Norm(dim) — ‖x‖₂², quadratic with gradient 2x.
//   - Dot(a) — the linear functional ⟨a, x⟩.
//   - ShiftedLoss(f, data) — x ↦ f(x − data), turning a norm into a
//     data-fidelity term.
//
// Why:
//
//   - Regularizers: L1 promotes sparsity, L2 and its square penalize
//     energy; every proximal-splitting solver consumes them through
//     Prox.
//   - Objectives: ShiftedLoss(SquaredL2Norm(n), b) composed with a
//     forward model A is the classic ½-free least-squares fidelity
//     ‖A·x − b‖₂².
//
// A dimension of core.DomainAgnostic makes a norm accept vectors of any
// length; the Lipschitz constant of L1Norm is then +Inf, so prefer a
// concrete dim when a tight bound matters.
//
// Complexity: O(n) per Apply/Gradient/Prox for every functional here,
// except the LInfinityNorm prox at O(n log n) for the sort inside the
// ball projection.
//
// Errors:
//
//   - ErrBadDimension: a dimension argument is negative.
//   - ErrEmptyVector: Dot or ShiftedLoss received an empty vector.
package funcs
