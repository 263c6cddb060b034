// Package core defines the central Operator, Shape, and Property types,
// and provides the composition algebra for building operator DAGs.
//
// What:
//
//   - Shape models the (codomain, domain) dimensions of an operator,
//     with a DomainAgnostic marker for symbolic axes resolved lazily.
//   - Property and PropertySet encode the mathematical capabilities of
//     an operator (Linear, Differentiable, Proximable, Convex, …) with
//     an implication lattice closed once at package init.
//   - Operator is the single polymorphic node type: primitives carry
//     user kernels, composites carry children by shared reference and
//     evaluate lazily per their kind (Sum, ScalarMul, Compose, VStack,
//     HStack, ArgShift, ArgScale).
//   - Add, Scale, Compose, VStack, HStack, ArgShift, ArgScale validate
//     shapes, derive the resulting PropertySet via the combination rule
//     table, and return a new immutable node — no numerical work happens
//     at construction time.
//
// Why:
//
//   - Inverse problems: assemble forward models and regularizers whose
//     solvers rely on correct property bookkeeping (a gradient step on a
//     non-differentiable operator is a silent bug — here it is a checked
//     error instead).
//   - Shared subgraphs: identical sub-computations are held once and
//     referenced by many parents; nodes are immutable, so the DAG is
//     safe to evaluate from concurrent goroutines.
//
// Complexity:
//
//   - Construction: O(1) per composite (shape + property table lookups).
//   - Apply/Adjoint/Gradient/Prox: one recursive pass over the graph,
//     O(nodes) delegations plus the cost of each primitive kernel.
//   - Lipschitz / DiffLipschitz: O(nodes) on first call, O(1) after
//     (memoized per node, at-most-once semantics under concurrency).
//
// Errors:
//
//   - ErrShapeMismatch          - incompatible dimensions at composition or first concrete evaluation.
//   - ErrUnsupportedOperation   - capability invoked without the required property.
//   - ErrInvalidCombination     - malformed property-rule lookup (internal inconsistency).
//   - ErrPropertyKernelMismatch - primitive declares a kernel without its property, or vice versa.
//   - ErrNonPositiveStep        - prox invoked with a step size τ ≤ 0.
package core
